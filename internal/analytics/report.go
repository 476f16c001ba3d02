package analytics

import (
	"strings"
	"time"

	"github.com/fixora/assetdash/internal/domain"
)

// UnknownGroupValue stands in for a missing group-by field value
const UnknownGroupValue = "unknown"

// EvaluateReportMetric computes a named custom report metric over assets.
// Unsupported metric names evaluate to nil.
func EvaluateReportMetric(name string, assets []*domain.Asset, now time.Time) interface{} {
	switch name {
	case domain.ReportMetricCount:
		return len(assets)
	case domain.ReportMetricTotalValue:
		total := 0.0
		for _, a := range assets {
			total += a.PurchasePrice
		}
		return round2(total)
	case domain.ReportMetricAverageAge:
		ages := make([]float64, len(assets))
		for i, a := range assets {
			ages[i] = float64(a.AgeYears(now))
		}
		return round2(mean(ages))
	default:
		return nil
	}
}

// EvaluateReportMetrics computes every metric in names
func EvaluateReportMetrics(names []string, assets []*domain.Asset, now time.Time) map[string]interface{} {
	out := make(map[string]interface{}, len(names))
	for _, name := range names {
		out[name] = EvaluateReportMetric(name, assets, now)
	}
	return out
}

// GroupKey joins the asset's values for fields with an underscore
func GroupKey(a *domain.Asset, fields []string) string {
	parts := make([]string, len(fields))
	for i, f := range fields {
		v, ok := domain.AssetFieldValue(a, f)
		if !ok {
			v = UnknownGroupValue
		}
		parts[i] = v
	}
	return strings.Join(parts, "_")
}

// PartitionAssets groups assets by GroupKey, keeping record order within a group
func PartitionAssets(assets []*domain.Asset, fields []string) map[string][]*domain.Asset {
	groups := make(map[string][]*domain.Asset)
	for _, a := range assets {
		key := GroupKey(a, fields)
		groups[key] = append(groups[key], a)
	}
	return groups
}
