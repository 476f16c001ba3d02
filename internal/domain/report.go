package domain

import (
	"encoding/json"
	"strings"
	"time"
)

// Report metric names with built-in implementations
const (
	ReportMetricCount      = "count"
	ReportMetricTotalValue = "totalValue"
	ReportMetricAverageAge = "averageAge"
)

// ReportFilters narrows the assets a custom report covers
type ReportFilters struct {
	Departments []string   `json:"departments,omitempty"`
	Categories  []string   `json:"categories,omitempty"`
	Statuses    []string   `json:"statuses,omitempty"`
	DateRange   *DateRange `json:"dateRange"`
}

// UnmarshalJSON decodes filters leniently: an unparseable dateRange or instant
// decodes to a zero time so that Validate reports it with the other problems.
func (f *ReportFilters) UnmarshalJSON(data []byte) error {
	var raw struct {
		Departments []string        `json:"departments"`
		Categories  []string        `json:"categories"`
		Statuses    []string        `json:"statuses"`
		DateRange   json.RawMessage `json:"dateRange"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*f = ReportFilters{
		Departments: raw.Departments,
		Categories:  raw.Categories,
		Statuses:    raw.Statuses,
	}
	if len(raw.DateRange) == 0 || string(raw.DateRange) == "null" {
		return nil
	}

	var instants struct {
		Start interface{} `json:"start"`
		End   interface{} `json:"end"`
	}
	f.DateRange = &DateRange{}
	if err := json.Unmarshal(raw.DateRange, &instants); err != nil {
		return nil
	}
	f.DateRange.Start = parseReportInstant(instants.Start)
	f.DateRange.End = parseReportInstant(instants.End)
	return nil
}

func parseReportInstant(v interface{}) time.Time {
	s, ok := v.(string)
	if !ok {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}
	}
	return t.UTC()
}

// ReportRequest describes an ad-hoc report
type ReportRequest struct {
	Name         string        `json:"name"`
	Description  string        `json:"description,omitempty"`
	Metrics      []string      `json:"metrics"`
	Filters      ReportFilters `json:"filters"`
	Aggregations []string      `json:"aggregations,omitempty"`
	GroupBy      []string      `json:"groupBy,omitempty"`
}

// Validate returns a ValidationError listing every problem with the request
func (r *ReportRequest) Validate() error {
	verr := &ValidationError{}
	if r.Name == "" {
		verr.Add("name", "is required")
	}
	if len(r.Metrics) == 0 {
		verr.Add("metrics", "at least one metric is required")
	}
	for _, m := range r.Metrics {
		if m == "" {
			verr.Add("metrics", "metric names must not be empty")
			break
		}
	}
	if r.Filters.DateRange == nil {
		verr.Add("filters.dateRange", "is required")
	} else {
		if r.Filters.DateRange.Start.IsZero() {
			verr.Add("filters.dateRange.start", "must be an ISO-8601 datetime")
		}
		if r.Filters.DateRange.End.IsZero() {
			verr.Add("filters.dateRange.end", "must be an ISO-8601 datetime")
		}
		if !r.Filters.DateRange.Start.IsZero() && !r.Filters.DateRange.End.IsZero() &&
			r.Filters.DateRange.Start.After(r.Filters.DateRange.End) {
			verr.Add("filters.dateRange", "start must not be after end")
		}
	}
	for _, f := range r.GroupBy {
		if f == "" {
			verr.Add("groupBy", "field names must not be empty")
			break
		}
	}
	return verr.OrNil()
}

// AssetFieldValue returns the string value of a named asset field for grouping.
// The second result is false for unknown fields and empty values.
func AssetFieldValue(a *Asset, field string) (string, bool) {
	var v string
	switch field {
	case "$id", "id":
		v = a.ID
	case "name":
		v = a.Name
	case "category":
		v = string(a.Category)
	case "department":
		v = a.Department
	case "availableStatus", "status":
		v = string(a.AvailableStatus)
	case "currentCondition", "condition":
		v = string(a.CurrentCondition)
	default:
		return "", false
	}
	return v, v != ""
}
