package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fixora/assetdash/internal/domain"
)

func toMaintenance(assetID string, at time.Time) *domain.AssetEvent {
	return statusChange(assetID, at, domain.AssetStatusInUse, domain.AssetStatusMaintenance)
}

func TestMaintenanceSchedule(t *testing.T) {
	now := date(2024, time.June, 1)
	assets := []*domain.Asset{
		{ID: "m1", Name: "Generator"},
		{ID: "m2", Name: "Printer"},
		{ID: "m3", Name: "Van"},
		{ID: "m4", Name: "Desk"},
	}
	events := []*domain.AssetEvent{
		toMaintenance("m1", date(2024, time.March, 1)),
		toMaintenance("m1", date(2024, time.January, 1)),
		toMaintenance("m2", date(2024, time.March, 15)),
		toMaintenance("m3", date(2024, time.May, 30)),
	}
	issues := []*domain.AssetIssue{
		issue("m2", domain.IssueTypeMalfunction, date(2024, time.February, 1), 3*time.Hour),
		issue("m2", domain.IssueTypeMalfunction, date(2024, time.February, 9), 7*time.Hour),
		issue("m2", domain.IssueTypeMalfunction, date(2024, time.February, 10), 0),
	}

	schedule := MaintenanceSchedule(assets, events, issues, now)
	require.Len(t, schedule, 2)

	overdue := schedule[0]
	assert.Equal(t, "m1", overdue.AssetID)
	assert.Equal(t, 60.0, overdue.IntervalDays)
	assert.Equal(t, date(2024, time.April, 30), overdue.NextDue)
	assert.Equal(t, -32, overdue.DaysUntilDue)
	assert.Equal(t, PriorityOverdue, overdue.Priority)
	assert.Equal(t, DefaultRepairHours, overdue.EstimatedDurationHours)

	upcoming := schedule[1]
	assert.Equal(t, "m2", upcoming.AssetID)
	assert.Equal(t, 90.0, upcoming.IntervalDays)
	assert.Equal(t, 12, upcoming.DaysUntilDue)
	assert.Equal(t, PriorityMedium, upcoming.Priority)
	assert.Equal(t, 5.0, upcoming.EstimatedDurationHours)
}

func TestMaintenancePriority(t *testing.T) {
	assert.Equal(t, PriorityOverdue, maintenancePriority(0))
	assert.Equal(t, PriorityHigh, maintenancePriority(1))
	assert.Equal(t, PriorityHigh, maintenancePriority(7))
	assert.Equal(t, PriorityMedium, maintenancePriority(8))
}

func TestLifecycleForecast(t *testing.T) {
	now := date(2024, time.June, 1)
	assets := []*domain.Asset{
		{
			ID: "v1", Category: domain.AssetCategoryVehicle, CurrentCondition: domain.AssetConditionGood,
			PurchaseDate: timePtr(now.AddDate(-7, 0, 0)),
		},
		{
			ID: "it1", Category: domain.AssetCategoryITEquipment, CurrentCondition: domain.AssetConditionGood,
			PurchaseDate: timePtr(now.AddDate(-5, 0, 0)),
		},
		{
			ID: "mc1", Category: domain.AssetCategoryMachinery, CurrentCondition: domain.AssetConditionNew,
			PurchaseDate: timePtr(now.AddDate(-1, 0, 0)),
		},
		{
			ID: "f1", Category: domain.AssetCategoryOfficeFurniture, CurrentCondition: domain.AssetConditionPoor,
			PurchaseDate: timePtr(now.AddDate(-4, 0, 0)),
		},
	}

	items := LifecycleForecast(assets, now)
	require.Len(t, items, 3)

	assert.Equal(t, "v1", items[0].AssetID)
	assert.Equal(t, 7, items[0].AgeYears)
	assert.Equal(t, 1.0, items[0].RemainingYears)
	assert.Equal(t, RecommendPlanReplacement, items[0].Recommendation)

	assert.Equal(t, "it1", items[1].AssetID)
	assert.Equal(t, 0.0, items[1].RemainingYears)
	assert.Equal(t, RecommendConsiderReplacement, items[1].Recommendation)

	// (10 - 4) * 0.4
	assert.Equal(t, "f1", items[2].AssetID)
	assert.Equal(t, 2.4, items[2].RemainingYears)
	assert.Equal(t, RecommendMonitorCondition, items[2].Recommendation)
}

func TestForecastUtilization_ClampsAtHundred(t *testing.T) {
	assets := []*domain.Asset{
		{ID: "a1", AvailableStatus: domain.AssetStatusInUse},
		{ID: "a2", AvailableStatus: domain.AssetStatusInUse},
		{ID: "a3", AvailableStatus: domain.AssetStatusInUse},
		{ID: "a4", AvailableStatus: domain.AssetStatusInUse},
	}
	events := []*domain.AssetEvent{
		statusChange("a3", date(2024, time.February, 5), domain.AssetStatusAvailable, domain.AssetStatusInUse),
		statusChange("a4", date(2024, time.March, 5), domain.AssetStatusAvailable, domain.AssetStatusInUse),
	}
	r := domain.DateRange{Start: date(2024, time.January, 1), End: date(2024, time.March, 31)}

	forecast := ForecastUtilization(assets, events, r)

	require.Len(t, forecast.Historical, 3)
	assert.Equal(t, 50.0, forecast.Historical[0].Utilization)
	assert.Equal(t, 75.0, forecast.Historical[1].Utilization)
	assert.Equal(t, 100.0, forecast.Historical[2].Utilization)
	assert.InDelta(t, 25.0, forecast.Fit.Slope, 1e-9)

	require.Len(t, forecast.Forecast, ForecastMonths)
	assert.Equal(t, "2024-04", forecast.Forecast[0].Period)
	assert.Equal(t, "2024-09", forecast.Forecast[5].Period)
	for _, p := range forecast.Forecast {
		assert.Equal(t, 100.0, p.Utilization)
	}
}

func TestCalculatePredictive_Recommendations(t *testing.T) {
	now := date(2024, time.June, 1)
	assets := []*domain.Asset{
		{
			ID: "it1", Category: domain.AssetCategoryITEquipment, CurrentCondition: domain.AssetConditionDamaged,
			PurchaseDate: timePtr(now.AddDate(-3, 0, 0)),
		},
		{ID: "m1", Category: domain.AssetCategoryMachinery, CurrentCondition: domain.AssetConditionGood},
	}
	events := []*domain.AssetEvent{toMaintenance("m1", date(2024, time.January, 2))}
	q := &domain.AnalyticsQuery{
		DateRange: domain.DateRange{Start: date(2024, time.January, 1), End: date(2024, time.May, 31)},
		GroupBy:   domain.GroupByWeek,
	}

	result, err := CalculatePredictive(assets, events, nil, q, now)
	require.NoError(t, err)

	require.Len(t, result.MaintenanceSchedule, 1)
	require.Len(t, result.Lifecycle, 1)
	require.Len(t, result.UtilizationForecast.Historical, 5)
	require.Len(t, result.Recommendations, 2)
	assert.Equal(t, "critical", result.Recommendations[0].Priority)
	assert.Equal(t, 1, result.Recommendations[0].Count)
	assert.Equal(t, "high", result.Recommendations[1].Priority)
}

func TestCalculatePredictive_NothingToReport(t *testing.T) {
	q := &domain.AnalyticsQuery{
		DateRange: domain.DateRange{Start: date(2024, time.January, 1), End: date(2024, time.January, 31)},
		GroupBy:   domain.GroupByMonth,
	}

	result, err := CalculatePredictive(nil, nil, nil, q, date(2024, time.February, 1))
	require.NoError(t, err)
	assert.Empty(t, result.MaintenanceSchedule)
	assert.Empty(t, result.Lifecycle)
	assert.Empty(t, result.Recommendations)
	for _, p := range result.UtilizationForecast.Forecast {
		assert.Equal(t, 0.0, p.Utilization)
	}
}
