package analytics

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/fixora/assetdash/internal/domain"
)

const (
	// DefaultMaintenanceInterval applies to assets with fewer than two maintenance events
	DefaultMaintenanceInterval = 90 * 24 * time.Hour
	// MaintenanceHorizonDays bounds how far ahead scheduled maintenance is surfaced
	MaintenanceHorizonDays = 30
	// DefaultRepairHours is the estimated duration when an asset has no resolved issues
	DefaultRepairHours = 4.0
	// LifecycleThresholdYears bounds which assets are reported as nearing end of life
	LifecycleThresholdYears = 3.0
	// ForecastMonths is the utilization forecast horizon
	ForecastMonths = 6
)

// Maintenance priorities
const (
	PriorityOverdue = "Overdue"
	PriorityHigh    = "High"
	PriorityMedium  = "Medium"
)

// Lifecycle recommendations
const (
	RecommendConsiderReplacement = "Consider replacement"
	RecommendPlanReplacement     = "Plan for replacement"
	RecommendMonitorCondition    = "Monitor condition"
)

// MaintenanceItem is a predicted upcoming maintenance for one asset
type MaintenanceItem struct {
	AssetID                string    `json:"assetId"`
	AssetName              string    `json:"assetName"`
	LastMaintenance        time.Time `json:"lastMaintenance"`
	NextDue                time.Time `json:"nextDue"`
	DaysUntilDue           int       `json:"daysUntilDue"`
	IntervalDays           float64   `json:"intervalDays"`
	Priority               string    `json:"priority"`
	EstimatedDurationHours float64   `json:"estimatedDurationHours"`
}

// LifecycleItem is an asset nearing the end of its expected service life
type LifecycleItem struct {
	AssetID        string                `json:"assetId"`
	AssetName      string                `json:"assetName"`
	Category       domain.AssetCategory  `json:"category"`
	Condition      domain.AssetCondition `json:"condition"`
	AgeYears       int                   `json:"ageYears"`
	RemainingYears float64               `json:"remainingYears"`
	Recommendation string                `json:"recommendation"`
}

// ForecastPoint is one projected utilization value
type ForecastPoint struct {
	Period      string  `json:"period"`
	Utilization float64 `json:"utilization"`
}

// UtilizationForecast pairs the monthly history with its linear projection
type UtilizationForecast struct {
	Historical []UtilizationPoint `json:"historical"`
	Fit        LinearFit          `json:"fit"`
	Forecast   []ForecastPoint    `json:"forecast"`
}

// Recommendation is an action derived from the predictions
type Recommendation struct {
	Priority string `json:"priority"`
	Type     string `json:"type"`
	Message  string `json:"message"`
	Count    int    `json:"count"`
}

// PredictiveResult is the output of the predictive calculator
type PredictiveResult struct {
	MaintenanceSchedule []MaintenanceItem   `json:"maintenanceSchedule"`
	Lifecycle           []LifecycleItem     `json:"lifecycle"`
	UtilizationForecast UtilizationForecast `json:"utilizationForecast"`
	Recommendations     []Recommendation    `json:"recommendations"`
}

// CalculatePredictive combines maintenance scheduling, end-of-life and utilization forecasts
func CalculatePredictive(assets []*domain.Asset, events []*domain.AssetEvent, issues []*domain.AssetIssue, q *domain.AnalyticsQuery, now time.Time) (*PredictiveResult, error) {
	schedule := MaintenanceSchedule(assets, events, issues, now)
	lifecycle := LifecycleForecast(assets, now)
	forecast := ForecastUtilization(assets, events, q.DateRange)

	for _, p := range forecast.Forecast {
		if err := checkFinite("predictive", map[string]float64{"forecast " + p.Period: p.Utilization}); err != nil {
			return nil, err
		}
	}

	return &PredictiveResult{
		MaintenanceSchedule: schedule,
		Lifecycle:           lifecycle,
		UtilizationForecast: forecast,
		Recommendations:     recommendations(schedule, lifecycle),
	}, nil
}

// MaintenanceSchedule predicts the next maintenance of every asset with maintenance
// history and returns those due within the horizon, soonest first.
func MaintenanceSchedule(assets []*domain.Asset, events []*domain.AssetEvent, issues []*domain.AssetIssue, now time.Time) []MaintenanceItem {
	history := make(map[string][]time.Time)
	for _, e := range events {
		if e.IsMaintenance() {
			history[e.AssetID] = append(history[e.AssetID], e.At)
		}
	}
	repairs := make(map[string][]float64)
	for _, issue := range issues {
		if issue.IsResolved() {
			repairs[issue.AssetID] = append(repairs[issue.AssetID], issue.ResolutionTime().Hours())
		}
	}

	items := make([]MaintenanceItem, 0)
	for _, a := range assets {
		dates := history[a.ID]
		if len(dates) == 0 {
			continue
		}
		sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

		interval := DefaultMaintenanceInterval
		if len(dates) >= 2 {
			gaps := make([]float64, 0, len(dates)-1)
			for i := 1; i < len(dates); i++ {
				gaps = append(gaps, float64(dates[i].Sub(dates[i-1])))
			}
			interval = time.Duration(mean(gaps))
		}

		last := dates[len(dates)-1]
		nextDue := last.Add(interval)
		days := int(math.Ceil(nextDue.Sub(now).Hours() / 24))
		if days > MaintenanceHorizonDays {
			continue
		}

		estimate := DefaultRepairHours
		if hours := repairs[a.ID]; len(hours) > 0 {
			estimate = mean(hours)
		}

		items = append(items, MaintenanceItem{
			AssetID:                a.ID,
			AssetName:              a.Name,
			LastMaintenance:        last,
			NextDue:                nextDue,
			DaysUntilDue:           days,
			IntervalDays:           round2(interval.Hours() / 24),
			Priority:               maintenancePriority(days),
			EstimatedDurationHours: round2(estimate),
		})
	}

	sort.SliceStable(items, func(i, j int) bool { return items[i].DaysUntilDue < items[j].DaysUntilDue })
	return items
}

func maintenancePriority(daysUntilDue int) string {
	switch {
	case daysUntilDue <= 0:
		return PriorityOverdue
	case daysUntilDue <= 7:
		return PriorityHigh
	default:
		return PriorityMedium
	}
}

// RemainingLife returns the condition-adjusted years of service left for an asset
func RemainingLife(a *domain.Asset, now time.Time) float64 {
	left := math.Max(0, domain.ExpectedLifespan(a.Category)-float64(a.AgeYears(now)))
	return left * domain.ConditionFactor(a.CurrentCondition)
}

// LifecycleForecast returns assets with less than three years of remaining life
func LifecycleForecast(assets []*domain.Asset, now time.Time) []LifecycleItem {
	items := make([]LifecycleItem, 0)
	for _, a := range assets {
		remaining := RemainingLife(a, now)
		if remaining >= LifecycleThresholdYears {
			continue
		}
		items = append(items, LifecycleItem{
			AssetID:        a.ID,
			AssetName:      a.Name,
			Category:       a.Category,
			Condition:      a.CurrentCondition,
			AgeYears:       a.AgeYears(now),
			RemainingYears: round2(remaining),
			Recommendation: lifecycleRecommendation(remaining),
		})
	}
	return items
}

func lifecycleRecommendation(remaining float64) string {
	switch {
	case remaining < 1:
		return RecommendConsiderReplacement
	case remaining < 2:
		return RecommendPlanReplacement
	default:
		return RecommendMonitorCondition
	}
}

// ForecastUtilization fits a line through the monthly utilization series of r
// and projects it forward, clamped to [0,100].
func ForecastUtilization(assets []*domain.Asset, events []*domain.AssetEvent, r domain.DateRange) UtilizationForecast {
	historical := UtilizationSeries(assets, events, r, domain.GroupByMonth)
	values := make([]float64, len(historical))
	for i, p := range historical {
		values[i] = p.Utilization
	}
	fit := FitIndexSeries(values)

	last := PeriodStart(r.End, domain.GroupByMonth)
	forecast := make([]ForecastPoint, 0, ForecastMonths)
	for i, p := range FollowingPeriods(last, domain.GroupByMonth, ForecastMonths) {
		v := fit.At(float64(len(values) + i))
		forecast = append(forecast, ForecastPoint{Period: p.Label, Utilization: round2(clamp(v, 0, 100))})
	}

	return UtilizationForecast{
		Historical: historical,
		Fit:        LinearFit{Intercept: round(fit.Intercept, 4), Slope: round(fit.Slope, 4)},
		Forecast:   forecast,
	}
}

func recommendations(schedule []MaintenanceItem, lifecycle []LifecycleItem) []Recommendation {
	recs := make([]Recommendation, 0, 2)

	overdue := 0
	for _, item := range schedule {
		if item.Priority == PriorityOverdue {
			overdue++
		}
	}
	if overdue > 0 {
		recs = append(recs, Recommendation{
			Priority: "critical",
			Type:     "maintenance",
			Message:  fmt.Sprintf("%d asset(s) are overdue for maintenance", overdue),
			Count:    overdue,
		})
	}

	replace := 0
	for _, item := range lifecycle {
		if item.Recommendation == RecommendConsiderReplacement {
			replace++
		}
	}
	if replace > 0 {
		recs = append(recs, Recommendation{
			Priority: "high",
			Type:     "replacement",
			Message:  fmt.Sprintf("%d asset(s) should be considered for replacement", replace),
			Count:    replace,
		})
	}
	return recs
}
