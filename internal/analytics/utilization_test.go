package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fixora/assetdash/internal/domain"
)

func statusChange(assetID string, at time.Time, from, to domain.AssetStatus) *domain.AssetEvent {
	return &domain.AssetEvent{
		AssetID:   assetID,
		EventType: domain.EventTypeStatusChange,
		FromValue: string(from),
		ToValue:   string(to),
		At:        at,
	}
}

func timePtr(t time.Time) *time.Time {
	return &t
}

func TestCalculateUtilization(t *testing.T) {
	now := date(2024, time.April, 1)
	assets := []*domain.Asset{
		{ID: "a1", Name: "Laptop 1", AvailableStatus: domain.AssetStatusInUse},
		{ID: "a2", Name: "Laptop 2", AvailableStatus: domain.AssetStatusInUse},
		{ID: "a3", Name: "Projector", AvailableStatus: domain.AssetStatusAvailable},
		{ID: "a4", Name: "Forklift", AvailableStatus: domain.AssetStatusAvailable, LastUsedAt: timePtr(now.AddDate(0, 0, -60))},
	}
	events := []*domain.AssetEvent{
		statusChange("a3", date(2024, time.March, 3), domain.AssetStatusAvailable, domain.AssetStatusInUse),
		statusChange("a1", date(2024, time.January, 10), domain.AssetStatusAvailable, domain.AssetStatusInUse),
		statusChange("a2", date(2024, time.February, 5), domain.AssetStatusInUse, domain.AssetStatusMaintenance),
		{AssetID: "a1", EventType: domain.EventTypeAssignment, FromValue: "x", ToValue: "IN_USE", At: date(2024, time.January, 20)},
	}
	q := &domain.AnalyticsQuery{
		DateRange: domain.DateRange{Start: date(2024, time.January, 1), End: date(2024, time.March, 31)},
		GroupBy:   domain.GroupByMonth,
	}

	result, err := CalculateUtilization(assets, events, q, now)
	require.NoError(t, err)

	require.Len(t, result.Utilization, 3)
	assert.Equal(t, "2024-01", result.Utilization[0].Period)
	assert.Equal(t, 50.0, result.Utilization[0].Utilization)
	assert.Equal(t, 25.0, result.Utilization[1].Utilization)
	assert.Equal(t, 50.0, result.Utilization[2].Utilization)
	assert.Equal(t, 4, result.Utilization[2].TotalAssets)

	assert.Equal(t, 41.67, result.Summary.AverageUtilization)
	assert.Equal(t, PeakUtilization{Value: 50, Period: "2024-01"}, result.Summary.PeakUtilization)

	require.Len(t, result.Summary.UnderutilizedAssets, 2)
	assert.Equal(t, "a3", result.Summary.UnderutilizedAssets[0].ID)
	assert.Nil(t, result.Summary.UnderutilizedAssets[0].LastUsed)
	assert.Equal(t, "a4", result.Summary.UnderutilizedAssets[1].ID)
}

func TestCalculateUtilization_RecentlyUsedIsNotUnderutilized(t *testing.T) {
	now := date(2024, time.April, 1)
	assets := []*domain.Asset{
		{ID: "a1", AvailableStatus: domain.AssetStatusAvailable, LastUsedAt: timePtr(now.AddDate(0, 0, -10))},
	}
	q := &domain.AnalyticsQuery{
		DateRange: domain.DateRange{Start: date(2024, time.March, 1), End: date(2024, time.March, 31)},
		GroupBy:   domain.GroupByMonth,
	}

	result, err := CalculateUtilization(assets, nil, q, now)
	require.NoError(t, err)
	assert.Empty(t, result.Summary.UnderutilizedAssets)
}

func TestCalculateUtilization_NoAssets(t *testing.T) {
	q := &domain.AnalyticsQuery{
		DateRange: domain.DateRange{Start: date(2024, time.January, 1), End: date(2024, time.February, 15)},
		GroupBy:   domain.GroupByMonth,
	}

	result, err := CalculateUtilization(nil, nil, q, date(2024, time.March, 1))
	require.NoError(t, err)
	require.Len(t, result.Utilization, 2)
	for _, p := range result.Utilization {
		assert.Equal(t, 0.0, p.Utilization)
	}
	assert.Equal(t, 0.0, result.Summary.AverageUtilization)
}

func TestUtilizationSeries_BaselineFloorsAtZero(t *testing.T) {
	assets := []*domain.Asset{{ID: "a1", AvailableStatus: domain.AssetStatusAvailable}}
	events := []*domain.AssetEvent{
		statusChange("a1", date(2024, time.January, 5), domain.AssetStatusAvailable, domain.AssetStatusInUse),
	}
	r := domain.DateRange{Start: date(2024, time.January, 1), End: date(2024, time.January, 31)}

	series := UtilizationSeries(assets, events, r, domain.GroupByMonth)
	require.Len(t, series, 1)
	assert.Equal(t, 100.0, series[0].Utilization)
}
