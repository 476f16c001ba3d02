package domain

import (
	"encoding/json"
	"time"
)

// AnalyticsType selects which calculator answers a query
type AnalyticsType string

const (
	AnalyticsTypeUtilization AnalyticsType = "utilization"
	AnalyticsTypeCost        AnalyticsType = "cost"
	AnalyticsTypePerformance AnalyticsType = "performance"
	AnalyticsTypePredictive  AnalyticsType = "predictive"
	AnalyticsTypeTrend       AnalyticsType = "trend"
	// AnalyticsTypeNone requests the composite of all calculators.
	AnalyticsTypeNone AnalyticsType = "none"
)

// CalculatorTypes lists the five calculators in the order the composite reports them
var CalculatorTypes = []AnalyticsType{
	AnalyticsTypeUtilization,
	AnalyticsTypeCost,
	AnalyticsTypePerformance,
	AnalyticsTypePredictive,
	AnalyticsTypeTrend,
}

// IsValid reports whether t is a known analytics type
func (t AnalyticsType) IsValid() bool {
	switch t {
	case AnalyticsTypeUtilization, AnalyticsTypeCost, AnalyticsTypePerformance,
		AnalyticsTypePredictive, AnalyticsTypeTrend, AnalyticsTypeNone:
		return true
	}
	return false
}

// GroupBy is the period granularity used for time series
type GroupBy string

const (
	GroupByDay     GroupBy = "day"
	GroupByWeek    GroupBy = "week"
	GroupByMonth   GroupBy = "month"
	GroupByQuarter GroupBy = "quarter"
	GroupByYear    GroupBy = "year"
)

// DefaultGroupBy is applied when a query names no granularity
const DefaultGroupBy = GroupByMonth

// IsValid reports whether g is a known granularity
func (g GroupBy) IsValid() bool {
	switch g {
	case GroupByDay, GroupByWeek, GroupByMonth, GroupByQuarter, GroupByYear:
		return true
	}
	return false
}

// DateRange is an inclusive time window
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// IsZero reports whether neither bound is set
func (r DateRange) IsZero() bool {
	return r.Start.IsZero() && r.End.IsZero()
}

// Contains reports whether t falls inside the range, bounds included
func (r DateRange) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}

// OrLookback returns r, or the window of the given length ending at now when r is zero
func (r DateRange) OrLookback(now time.Time, lookback time.Duration) DateRange {
	if !r.IsZero() {
		return r
	}
	return DateRange{Start: now.Add(-lookback), End: now}
}

// AnalyticsQuery is a validated analytics request
type AnalyticsQuery struct {
	Type       AnalyticsType `json:"type"`
	Department string        `json:"department,omitempty"`
	Category   string        `json:"category,omitempty"`
	DateRange  DateRange     `json:"dateRange"`
	GroupBy    GroupBy       `json:"groupBy"`
	Metrics    []string      `json:"metrics,omitempty"`
}

type canonicalQuery struct {
	Type       AnalyticsType `json:"type"`
	Department string        `json:"department"`
	Category   string        `json:"category"`
	Start      string        `json:"start"`
	End        string        `json:"end"`
	GroupBy    GroupBy       `json:"groupBy"`
	Metrics    []string      `json:"metrics"`
}

// CanonicalKey returns a deterministic serialization used to address the result cache.
// Field order is fixed, values are JSON-quoted and instants are normalized to UTC.
func (q *AnalyticsQuery) CanonicalKey() string {
	metrics := q.Metrics
	if metrics == nil {
		metrics = []string{}
	}
	b, _ := json.Marshal(canonicalQuery{
		Type:       q.Type,
		Department: q.Department,
		Category:   q.Category,
		Start:      q.DateRange.Start.UTC().Format(time.RFC3339Nano),
		End:        q.DateRange.End.UTC().Format(time.RFC3339Nano),
		GroupBy:    q.GroupBy,
		Metrics:    metrics,
	})
	return string(b)
}

// WantsSection reports whether the composite should include the given calculator.
// An empty metric list includes everything.
func (q *AnalyticsQuery) WantsSection(t AnalyticsType) bool {
	if len(q.Metrics) == 0 {
		return true
	}
	for _, m := range q.Metrics {
		if m == string(t) {
			return true
		}
	}
	return false
}
