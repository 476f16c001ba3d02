package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fixora/assetdash/internal/domain"
)

func TestCalculateTrend_LinearSeries(t *testing.T) {
	var events []*domain.AssetEvent
	for month := 1; month <= 5; month++ {
		for i := 0; i < month; i++ {
			events = append(events, &domain.AssetEvent{
				AssetID:   "a1",
				EventType: domain.EventTypeCheckout,
				At:        date(2024, time.Month(month), i+1),
			})
		}
	}
	// outside the range
	events = append(events, &domain.AssetEvent{AssetID: "a1", EventType: domain.EventTypeCheckin, At: date(2023, time.December, 31)})

	q := &domain.AnalyticsQuery{
		DateRange: domain.DateRange{Start: date(2024, time.January, 1), End: date(2024, time.May, 31)},
		GroupBy:   domain.GroupByMonth,
	}

	result, err := CalculateTrend(events, q)
	require.NoError(t, err)

	require.Len(t, result.Periods, 5)
	for i, p := range result.Periods {
		assert.Equal(t, i+1, p.EventCount)
		assert.Len(t, p.Events, i+1)
	}
	assert.Equal(t, "2024-01", result.Periods[0].Period)

	assert.Equal(t, TrendIncreasing, result.Trend.Direction)
	require.Len(t, result.Forecast, 3)
	assert.Equal(t, TrendForecastPoint{Period: "2024-06", Predicted: 6}, result.Forecast[0])
	assert.Equal(t, TrendForecastPoint{Period: "2024-07", Predicted: 7}, result.Forecast[1])
	assert.Equal(t, TrendForecastPoint{Period: "2024-08", Predicted: 8}, result.Forecast[2])
}

func TestCalculateTrend_EmptyPeriodsAreListed(t *testing.T) {
	q := &domain.AnalyticsQuery{
		DateRange: domain.DateRange{Start: date(2024, time.January, 1), End: date(2024, time.January, 21)},
		GroupBy:   domain.GroupByWeek,
	}

	result, err := CalculateTrend(nil, q)
	require.NoError(t, err)
	require.Len(t, result.Periods, 3)
	assert.Equal(t, "2024-W01", result.Periods[0].Period)
	assert.Equal(t, 0, result.Periods[2].EventCount)
	assert.NotNil(t, result.Periods[2].Events)
	assert.Equal(t, TrendStable, result.Trend.Direction)
	assert.Equal(t, "2024-W04", result.Forecast[0].Period)
}

func TestTrendDirection(t *testing.T) {
	tests := []struct {
		name      string
		counts    []float64
		direction string
		change    float64
	}{
		{"increasing", []float64{1, 2, 3, 4, 5}, TrendIncreasing, 166.67},
		{"decreasing", []float64{10, 10, 5, 5}, TrendDecreasing, -50},
		{"within ten percent", []float64{10, 10.5}, TrendStable, 5},
		{"single period", []float64{4}, TrendStable, 0},
		{"zero first half", []float64{0, 0, 3}, TrendIncreasing, 100},
		{"all zero", []float64{0, 0}, TrendStable, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TrendDirection(tt.counts)
			assert.Equal(t, tt.direction, got.Direction)
			assert.Equal(t, tt.change, got.ChangePercent)
		})
	}
}

func TestForecastCounts_FloorsAtZero(t *testing.T) {
	assert.Equal(t, []int{0, 0, 0}, ForecastCounts([]float64{5, 3, 1}, 3))
	assert.Equal(t, []int{4, 4}, ForecastCounts([]float64{4}, 2))
}
