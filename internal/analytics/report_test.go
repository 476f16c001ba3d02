package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fixora/assetdash/internal/domain"
)

func TestEvaluateReportMetric(t *testing.T) {
	now := date(2024, 6, 1)
	assets := []*domain.Asset{
		{ID: "a", PurchasePrice: 100.125, PurchaseDate: timePtr(date(2021, 6, 1))},
		{ID: "b", PurchasePrice: 200, PurchaseDate: timePtr(date(2023, 6, 2))},
		{ID: "c", PurchasePrice: 0},
	}

	assert.Equal(t, 3, EvaluateReportMetric(domain.ReportMetricCount, assets, now))
	assert.Equal(t, 300.13, EvaluateReportMetric(domain.ReportMetricTotalValue, assets, now))
	assert.Equal(t, 1.0, EvaluateReportMetric(domain.ReportMetricAverageAge, assets, now))
	assert.Nil(t, EvaluateReportMetric("depreciation", assets, now))
}

func TestEvaluateReportMetric_Empty(t *testing.T) {
	now := date(2024, 6, 1)
	assert.Equal(t, 0, EvaluateReportMetric(domain.ReportMetricCount, nil, now))
	assert.Equal(t, 0.0, EvaluateReportMetric(domain.ReportMetricTotalValue, nil, now))
	assert.Equal(t, 0.0, EvaluateReportMetric(domain.ReportMetricAverageAge, nil, now))
}

func TestPartitionAssets(t *testing.T) {
	assets := []*domain.Asset{
		{ID: "1", Department: "IT", AvailableStatus: domain.AssetStatusInUse},
		{ID: "2", Department: "HR", AvailableStatus: domain.AssetStatusInUse},
		{ID: "3", Department: "IT", AvailableStatus: domain.AssetStatusInUse},
		{ID: "4", AvailableStatus: domain.AssetStatusRetired},
	}

	groups := PartitionAssets(assets, []string{"department", "availableStatus"})

	assert.Len(t, groups, 3)
	assert.Equal(t, []*domain.Asset{assets[0], assets[2]}, groups["IT_IN_USE"])
	assert.Equal(t, []*domain.Asset{assets[1]}, groups["HR_IN_USE"])
	assert.Equal(t, []*domain.Asset{assets[3]}, groups["unknown_RETIRED"])
}

func TestGroupKey_UnknownField(t *testing.T) {
	a := &domain.Asset{ID: "1", Department: "IT"}
	assert.Equal(t, "IT_unknown", GroupKey(a, []string{"department", "serialNumber"}))
}
