package analytics

import (
	"sort"
	"time"

	"github.com/fixora/assetdash/internal/domain"
)

// NoFailuresRecorded is the MTBF interpretation when fewer than two issues exist
const NoFailuresRecorded = "No failures recorded"

// MTBF is the mean time between failures in days. Value is nil when infinite.
type MTBF struct {
	Value          *float64 `json:"value"`
	Unit           string   `json:"unit"`
	Interpretation string   `json:"interpretation"`
	Infinite       bool     `json:"infinite"`
}

// MTTR is the mean time to repair in hours
type MTTR struct {
	Value          float64 `json:"value"`
	Unit           string  `json:"unit"`
	Interpretation string  `json:"interpretation"`
}

// Availability is the expected uptime share
type Availability struct {
	Percentage float64 `json:"percentage"`
	Rating     string  `json:"rating"`
}

// MaintenanceEfficiency compares preventive maintenance against breakdowns
type MaintenanceEfficiency struct {
	Ratio            float64 `json:"ratio"`
	PreventiveEvents int     `json:"preventiveEvents"`
	CorrectiveIssues int     `json:"correctiveIssues"`
	Rating           string  `json:"rating"`
}

// PerformanceResult is the output of the performance calculator
type PerformanceResult struct {
	MTBF                  MTBF                  `json:"mtbf"`
	MTTR                  MTTR                  `json:"mttr"`
	Availability          Availability          `json:"availability"`
	FailureRate           float64               `json:"failureRate"`
	MaintenanceEfficiency MaintenanceEfficiency `json:"maintenanceEfficiency"`
	IssueCount            int                   `json:"issueCount"`
}

// CalculatePerformance computes reliability metrics from issues and maintenance events
func CalculatePerformance(issues []*domain.AssetIssue, events []*domain.AssetEvent) (*PerformanceResult, error) {
	mtbfDays, finite := meanTimeBetweenFailures(issues)
	mttrHours := meanTimeToRepair(issues)

	result := &PerformanceResult{
		MTTR: MTTR{
			Value:          round2(mttrHours),
			Unit:           "hours",
			Interpretation: interpretMTTR(mttrHours),
		},
		FailureRate:           round2(failureRate(issues)),
		MaintenanceEfficiency: maintenanceEfficiency(issues, events),
		IssueCount:            len(issues),
	}

	availability := 100.0
	if finite {
		v := round2(mtbfDays)
		result.MTBF = MTBF{Value: &v, Unit: "days", Interpretation: interpretMTBF(mtbfDays)}
		mtbfHours := mtbfDays * 24
		if denom := mtbfHours + mttrHours; denom > 0 {
			availability = mtbfHours / denom * 100
		}
	} else {
		result.MTBF = MTBF{Unit: "days", Interpretation: NoFailuresRecorded, Infinite: true}
	}
	result.Availability = Availability{
		Percentage: round2(availability),
		Rating:     rateAvailability(availability),
	}

	if err := checkFinite("performance", map[string]float64{
		"mtbf":         mtbfDays,
		"mttr":         mttrHours,
		"availability": availability,
		"failureRate":  result.FailureRate,
		"efficiency":   result.MaintenanceEfficiency.Ratio,
	}); err != nil {
		return nil, err
	}
	return result, nil
}

// meanTimeBetweenFailures returns the mean gap in days between consecutive
// issue reports. finite is false when there are fewer than two issues.
func meanTimeBetweenFailures(issues []*domain.AssetIssue) (days float64, finite bool) {
	if len(issues) < 2 {
		return 0, false
	}
	reported := make([]time.Time, len(issues))
	for i, issue := range issues {
		reported[i] = issue.ReportedAt
	}
	sort.Slice(reported, func(i, j int) bool { return reported[i].Before(reported[j]) })

	gaps := make([]float64, 0, len(reported)-1)
	for i := 1; i < len(reported); i++ {
		gaps = append(gaps, reported[i].Sub(reported[i-1]).Hours()/24)
	}
	return mean(gaps), true
}

func meanTimeToRepair(issues []*domain.AssetIssue) float64 {
	var hours []float64
	for _, issue := range issues {
		if issue.IsResolved() {
			hours = append(hours, issue.ResolutionTime().Hours())
		}
	}
	return mean(hours)
}

// failureRate is issues per distinct calendar month in which issues were reported
func failureRate(issues []*domain.AssetIssue) float64 {
	if len(issues) == 0 {
		return 0
	}
	months := make(map[string]struct{})
	for _, issue := range issues {
		months[issue.ReportedAt.UTC().Format("2006-01")] = struct{}{}
	}
	return float64(len(issues)) / float64(len(months))
}

func maintenanceEfficiency(issues []*domain.AssetIssue, events []*domain.AssetEvent) MaintenanceEfficiency {
	preventive := 0
	for _, e := range events {
		if e.IsMaintenance() {
			preventive++
		}
	}
	corrective := 0
	for _, issue := range issues {
		if issue.IssueType == domain.IssueTypeBreakdown {
			corrective++
		}
	}

	denom := corrective
	if denom < 1 {
		denom = 1
	}
	ratio := float64(preventive) / float64(denom)

	rating := "Low"
	switch {
	case ratio > 2:
		rating = "High"
	case ratio > 1:
		rating = "Medium"
	}
	return MaintenanceEfficiency{
		Ratio:            round2(ratio),
		PreventiveEvents: preventive,
		CorrectiveIssues: corrective,
		Rating:           rating,
	}
}

func interpretMTBF(days float64) string {
	switch {
	case days > 365:
		return "Excellent"
	case days > 180:
		return "Good"
	case days > 90:
		return "Average"
	case days > 30:
		return "Below average"
	default:
		return "Poor"
	}
}

func interpretMTTR(hours float64) string {
	switch {
	case hours < 4:
		return "Excellent"
	case hours < 8:
		return "Good"
	case hours < 24:
		return "Average"
	case hours < 48:
		return "Slow"
	default:
		return "Very slow"
	}
}

func rateAvailability(pct float64) string {
	switch {
	case pct >= 99.9:
		return "World-class"
	case pct >= 99:
		return "Excellent"
	case pct >= 95:
		return "Good"
	case pct >= 90:
		return "Fair"
	default:
		return "Poor"
	}
}
