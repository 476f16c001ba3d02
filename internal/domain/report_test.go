package domain

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestReportRequest_Validate(t *testing.T) {
	valid := ReportRequest{
		Name:    "Fleet",
		Metrics: []string{"count"},
		Filters: ReportFilters{DateRange: &DateRange{Start: day(2024, 1, 1), End: day(2024, 3, 31)}},
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("Expected valid request, got %v", err)
	}

	inverted := valid
	inverted.Filters.DateRange = &DateRange{Start: day(2024, 3, 31), End: day(2024, 1, 1)}
	inverted.GroupBy = []string{"department", ""}

	err := inverted.Validate()
	verr, ok := err.(*ValidationError)
	if !ok {
		t.Fatalf("Expected *ValidationError, got %T", err)
	}
	if len(verr.Problems) != 2 {
		t.Fatalf("Expected 2 problems, got %v", verr.Problems)
	}
	if verr.Problems[0].Field != "filters.dateRange" || verr.Problems[1].Field != "groupBy" {
		t.Errorf("Unexpected problem fields: %v", verr.Problems)
	}
}

func TestReportRequest_DecodeReportsEveryProblem(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		fields []string
	}{
		{
			name:   "malformed start with missing name",
			body:   `{"metrics":["count"],"filters":{"dateRange":{"start":"last tuesday","end":"2024-03-31T00:00:00Z"}}}`,
			fields: []string{"name", "filters.dateRange.start"},
		},
		{
			name:   "both instants malformed",
			body:   `{"name":"Fleet","metrics":["count"],"filters":{"dateRange":{"start":"2024-01-01","end":42}}}`,
			fields: []string{"filters.dateRange.start", "filters.dateRange.end"},
		},
		{
			name:   "date range not an object",
			body:   `{"name":"Fleet","filters":{"dateRange":"Q1"}}`,
			fields: []string{"metrics", "filters.dateRange.start", "filters.dateRange.end"},
		},
		{
			name:   "date range missing",
			body:   `{"name":"Fleet","metrics":["count"],"filters":{"departments":["IT"]}}`,
			fields: []string{"filters.dateRange"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req ReportRequest
			if err := json.Unmarshal([]byte(tt.body), &req); err != nil {
				t.Fatalf("Expected body to decode, got %v", err)
			}
			verr, ok := req.Validate().(*ValidationError)
			if !ok {
				t.Fatalf("Expected *ValidationError for %s", tt.body)
			}
			var fields []string
			for _, p := range verr.Problems {
				fields = append(fields, p.Field)
			}
			if !reflect.DeepEqual(fields, tt.fields) {
				t.Errorf("Expected problems on %v, got %v", tt.fields, fields)
			}
		})
	}
}

func TestReportFilters_DecodeValidRange(t *testing.T) {
	var f ReportFilters
	body := `{"departments":["IT"],"dateRange":{"start":"2024-01-01T07:00:00+07:00","end":"2024-03-31T00:00:00Z"}}`
	if err := json.Unmarshal([]byte(body), &f); err != nil {
		t.Fatalf("Expected filters to decode, got %v", err)
	}
	if f.DateRange == nil || !f.DateRange.Start.Equal(day(2024, 1, 1)) || !f.DateRange.End.Equal(day(2024, 3, 31)) {
		t.Errorf("Unexpected date range %+v", f.DateRange)
	}
	if !reflect.DeepEqual(f.Departments, []string{"IT"}) {
		t.Errorf("Unexpected departments %v", f.Departments)
	}
}

func TestAssetFieldValue(t *testing.T) {
	a := &Asset{ID: "a1", Department: "IT", Category: AssetCategoryVehicle}

	if v, ok := AssetFieldValue(a, "category"); !ok || v != "VEHICLE" {
		t.Errorf("Expected VEHICLE, got %q (%v)", v, ok)
	}
	if _, ok := AssetFieldValue(a, "name"); ok {
		t.Error("Expected empty name to be reported as missing")
	}
	if _, ok := AssetFieldValue(a, "serialNumber"); ok {
		t.Error("Expected unknown field to be reported as missing")
	}
}
