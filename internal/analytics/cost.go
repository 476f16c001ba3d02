package analytics

import (
	"math"
	"time"

	"github.com/fixora/assetdash/internal/domain"
)

// ROI summarizes how much of the asset base is earning its keep
type ROI struct {
	UtilizationROI float64 `json:"utilizationROI"`
	ValueRetention float64 `json:"valueRetention"`
}

// CostResult is the output of the cost calculator
type CostResult struct {
	TotalValue       float64            `json:"totalValue"`
	DepreciatedValue float64            `json:"depreciatedValue"`
	MaintenanceCosts float64            `json:"maintenanceCosts"`
	CostByDepartment map[string]float64 `json:"costByDepartment"`
	CostByCategory   map[string]float64 `json:"costByCategory"`
	ROI              ROI                `json:"roi"`
	AssetCount       int                `json:"assetCount"`
}

// DepreciatedValue applies declining-balance depreciation for the asset's whole years of age
func DepreciatedValue(a *domain.Asset, now time.Time) float64 {
	rate := domain.DepreciationRate(a.Category)
	value := a.PurchasePrice * math.Pow(1-rate, float64(a.AgeYears(now)))
	return math.Max(0, value)
}

// CalculateCost totals purchase and depreciated value of assets.
// Record data carries no maintenance cost, so MaintenanceCosts is always 0.
func CalculateCost(assets []*domain.Asset, now time.Time) (*CostResult, error) {
	result := &CostResult{
		CostByDepartment: make(map[string]float64),
		CostByCategory:   make(map[string]float64),
		AssetCount:       len(assets),
	}

	inUse := 0
	for _, a := range assets {
		result.TotalValue += a.PurchasePrice
		result.DepreciatedValue += DepreciatedValue(a, now)
		result.CostByDepartment[a.Department] += a.PurchasePrice
		result.CostByCategory[string(a.Category)] += a.PurchasePrice
		if a.AvailableStatus == domain.AssetStatusInUse {
			inUse++
		}
	}

	result.ROI = ROI{
		UtilizationROI: round2(percent(float64(inUse), float64(len(assets)))),
		ValueRetention: round2(percent(result.DepreciatedValue, result.TotalValue)),
	}
	result.TotalValue = round2(result.TotalValue)
	result.DepreciatedValue = round2(result.DepreciatedValue)
	for k, v := range result.CostByDepartment {
		result.CostByDepartment[k] = round2(v)
	}
	for k, v := range result.CostByCategory {
		result.CostByCategory[k] = round2(v)
	}

	if err := checkFinite("cost", map[string]float64{
		"totalValue":       result.TotalValue,
		"depreciatedValue": result.DepreciatedValue,
		"valueRetention":   result.ROI.ValueRetention,
	}); err != nil {
		return nil, err
	}
	return result, nil
}
