package analytics

import (
	"math"
	"sort"
	"time"

	"github.com/fixora/assetdash/internal/domain"
)

// TrendForecastPeriods is how many periods the event trend is projected
const TrendForecastPeriods = 3

// Trend directions
const (
	TrendIncreasing = "increasing"
	TrendDecreasing = "decreasing"
	TrendStable     = "stable"
)

// TrendPeriod holds the events of one period
type TrendPeriod struct {
	Period     string               `json:"period"`
	EventCount int                  `json:"eventCount"`
	Events     []*domain.AssetEvent `json:"events"`
}

// TrendIndicator compares the two halves of the series
type TrendIndicator struct {
	Direction     string  `json:"direction"`
	ChangePercent float64 `json:"changePercent"`
}

// TrendForecastPoint is a projected event count
type TrendForecastPoint struct {
	Period    string `json:"period"`
	Predicted int    `json:"predicted"`
}

// TrendResult is the output of the trend calculator
type TrendResult struct {
	Periods  []TrendPeriod        `json:"periods"`
	Trend    TrendIndicator       `json:"trend"`
	Forecast []TrendForecastPoint `json:"forecast"`
}

// CalculateTrend buckets events into periods and projects the event count forward
func CalculateTrend(events []*domain.AssetEvent, q *domain.AnalyticsQuery) (*TrendResult, error) {
	periods := Periods(q.DateRange, q.GroupBy)

	sorted := make([]*domain.AssetEvent, 0, len(events))
	for _, e := range events {
		if q.DateRange.Contains(e.At) {
			sorted = append(sorted, e)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].At.Before(sorted[j].At) })

	buckets := make([]TrendPeriod, len(periods))
	next := 0
	for i, p := range periods {
		bucket := TrendPeriod{Period: p.Label, Events: make([]*domain.AssetEvent, 0)}
		for next < len(sorted) && sorted[next].At.Before(p.End) {
			bucket.Events = append(bucket.Events, sorted[next])
			next++
		}
		bucket.EventCount = len(bucket.Events)
		buckets[i] = bucket
	}

	counts := make([]float64, len(buckets))
	for i, b := range buckets {
		counts[i] = float64(b.EventCount)
	}

	indicator := TrendDirection(counts)
	if err := checkFinite("trend", map[string]float64{"changePercent": indicator.ChangePercent}); err != nil {
		return nil, err
	}

	var last time.Time
	if len(periods) > 0 {
		last = periods[len(periods)-1].Start
	} else {
		last = PeriodStart(q.DateRange.End, q.GroupBy)
	}
	labels := FollowingPeriods(last, q.GroupBy, TrendForecastPeriods)
	projected := ForecastCounts(counts, TrendForecastPeriods)
	forecast := make([]TrendForecastPoint, len(projected))
	for i, v := range projected {
		forecast[i] = TrendForecastPoint{Period: labels[i].Label, Predicted: v}
	}

	return &TrendResult{Periods: buckets, Trend: indicator, Forecast: forecast}, nil
}

// TrendDirection compares the mean of the first half of counts with the second half.
// A change beyond 10% either way is a trend.
func TrendDirection(counts []float64) TrendIndicator {
	if len(counts) < 2 {
		return TrendIndicator{Direction: TrendStable}
	}
	half := len(counts) / 2
	first := mean(counts[:half])
	second := mean(counts[half:])

	if first == 0 {
		if second > 0 {
			return TrendIndicator{Direction: TrendIncreasing, ChangePercent: 100}
		}
		return TrendIndicator{Direction: TrendStable}
	}

	change := (second - first) / first * 100
	direction := TrendStable
	switch {
	case change > 10:
		direction = TrendIncreasing
	case change < -10:
		direction = TrendDecreasing
	}
	return TrendIndicator{Direction: direction, ChangePercent: round2(change)}
}

// ForecastCounts projects n future values of counts by least squares, rounded and floored at 0
func ForecastCounts(counts []float64, n int) []int {
	fit := FitIndexSeries(counts)
	out := make([]int, n)
	for i := range out {
		v := fit.At(float64(len(counts) + i))
		out[i] = int(math.Max(0, math.Round(v)))
	}
	return out
}
