package analytics

import (
	"sort"
	"time"

	"github.com/fixora/assetdash/internal/domain"
)

// UnderutilizedAfter is how long an available asset may go unused before it is flagged
const UnderutilizedAfter = 30 * 24 * time.Hour

// UtilizationPoint is the in-use share of the asset base in one period
type UtilizationPoint struct {
	Period      string  `json:"period"`
	Utilization float64 `json:"utilization"`
	InUse       int     `json:"inUse"`
	TotalAssets int     `json:"totalAssets"`
}

// PeakUtilization is the highest point of a utilization series
type PeakUtilization struct {
	Value  float64 `json:"value"`
	Period string  `json:"period"`
}

// UnderutilizedAsset is an available asset with no recent use
type UnderutilizedAsset struct {
	ID       string     `json:"id"`
	Name     string     `json:"name"`
	LastUsed *time.Time `json:"lastUsed"`
}

// UtilizationSummary aggregates a utilization series
type UtilizationSummary struct {
	AverageUtilization  float64              `json:"averageUtilization"`
	PeakUtilization     PeakUtilization      `json:"peakUtilization"`
	UnderutilizedAssets []UnderutilizedAsset `json:"underutilizedAssets"`
}

// UtilizationResult is the output of the utilization calculator
type UtilizationResult struct {
	Utilization []UtilizationPoint `json:"utilization"`
	Summary     UtilizationSummary `json:"summary"`
}

// CalculateUtilization derives the per-period in-use share of assets from status change events
func CalculateUtilization(assets []*domain.Asset, events []*domain.AssetEvent, q *domain.AnalyticsQuery, now time.Time) (*UtilizationResult, error) {
	series := UtilizationSeries(assets, events, q.DateRange, q.GroupBy)

	values := make([]float64, len(series))
	peak := PeakUtilization{}
	for i, p := range series {
		values[i] = p.Utilization
		if i == 0 || p.Utilization > peak.Value {
			peak = PeakUtilization{Value: p.Utilization, Period: p.Period}
		}
	}

	result := &UtilizationResult{
		Utilization: series,
		Summary: UtilizationSummary{
			AverageUtilization:  round2(mean(values)),
			PeakUtilization:     peak,
			UnderutilizedAssets: underutilizedAssets(assets, now),
		},
	}

	if err := checkFinite("utilization", map[string]float64{
		"averageUtilization": result.Summary.AverageUtilization,
		"peakUtilization":    peak.Value,
	}); err != nil {
		return nil, err
	}
	return result, nil
}

// UtilizationSeries replays in-range status changes over every period of r.
// The counter starts at the in-use count implied before the first event so
// that the series ends at the present in-use count.
func UtilizationSeries(assets []*domain.Asset, events []*domain.AssetEvent, r domain.DateRange, g domain.GroupBy) []UtilizationPoint {
	total := len(assets)
	current := 0
	for _, a := range assets {
		if a.AvailableStatus == domain.AssetStatusInUse {
			current++
		}
	}

	changes := make([]*domain.AssetEvent, 0, len(events))
	net := 0
	for _, e := range events {
		if e.IsStatusChange() && r.Contains(e.At) {
			changes = append(changes, e)
			net += e.InUseDelta()
		}
	}
	sort.SliceStable(changes, func(i, j int) bool { return changes[i].At.Before(changes[j].At) })

	counter := current - net
	if counter < 0 {
		counter = 0
	}

	periods := Periods(r, g)
	series := make([]UtilizationPoint, 0, len(periods))
	next := 0
	for _, p := range periods {
		for next < len(changes) && changes[next].At.Before(p.End) {
			counter += changes[next].InUseDelta()
			next++
		}
		inUse := counter
		if inUse < 0 {
			inUse = 0
		}
		series = append(series, UtilizationPoint{
			Period:      p.Label,
			Utilization: round2(clamp(percent(float64(inUse), float64(total)), 0, 100)),
			InUse:       inUse,
			TotalAssets: total,
		})
	}
	return series
}

func underutilizedAssets(assets []*domain.Asset, now time.Time) []UnderutilizedAsset {
	cutoff := now.Add(-UnderutilizedAfter)
	out := make([]UnderutilizedAsset, 0)
	for _, a := range assets {
		if a.AvailableStatus != domain.AssetStatusAvailable {
			continue
		}
		if a.LastUsedAt == nil || a.LastUsedAt.Before(cutoff) {
			out = append(out, UnderutilizedAsset{ID: a.ID, Name: a.Name, LastUsed: a.LastUsedAt})
		}
	}
	return out
}
