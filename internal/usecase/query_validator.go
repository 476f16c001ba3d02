package usecase

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/fixora/assetdash/internal/analytics"
	"github.com/fixora/assetdash/internal/domain"
)

// MaxQueryPeriods bounds how many periods a query may span, both at the
// requested granularity and as the monthly history used for forecasting.
const MaxQueryPeriods = 1000

// Query string parameter names accepted by the analytics endpoint
const (
	ParamType       = "type"
	ParamDepartment = "department"
	ParamCategory   = "category"
	ParamDateRange  = "dateRange"
	ParamGroupBy    = "groupBy"
	ParamMetrics    = "metrics"
)

type rawDateRange struct {
	Start *string `json:"start"`
	End   *string `json:"end"`
}

// ParseAnalyticsQuery validates flat query-string values into an AnalyticsQuery.
// Every violated constraint is reported in the returned ValidationError.
func ParseAnalyticsQuery(values map[string]string) (*domain.AnalyticsQuery, error) {
	verr := &domain.ValidationError{}
	q := &domain.AnalyticsQuery{
		Type:       domain.AnalyticsTypeNone,
		Department: strings.TrimSpace(values[ParamDepartment]),
		Category:   strings.TrimSpace(values[ParamCategory]),
		GroupBy:    domain.DefaultGroupBy,
	}

	if raw := strings.TrimSpace(values[ParamType]); raw != "" {
		t := domain.AnalyticsType(raw)
		if t.IsValid() {
			q.Type = t
		} else {
			verr.Add(ParamType, "must be one of utilization, cost, performance, predictive, trend")
		}
	}

	if raw := strings.TrimSpace(values[ParamGroupBy]); raw != "" {
		g := domain.GroupBy(raw)
		if g.IsValid() {
			q.GroupBy = g
		} else {
			verr.Add(ParamGroupBy, "must be one of day, week, month, quarter, year")
		}
	}

	if r, ok := parseDateRange(values[ParamDateRange], verr); ok {
		q.DateRange = r
		if n := analytics.PeriodCount(r, q.GroupBy); n > MaxQueryPeriods {
			verr.Add(ParamDateRange, fmt.Sprintf("spans %d %s periods, at most %d are allowed", n, q.GroupBy, MaxQueryPeriods))
		} else if n := analytics.PeriodCount(r, domain.GroupByMonth); n > MaxQueryPeriods {
			verr.Add(ParamDateRange, fmt.Sprintf("spans %d months, at most %d are allowed", n, MaxQueryPeriods))
		}
	}

	q.Metrics = parseMetrics(values[ParamMetrics])

	if err := verr.OrNil(); err != nil {
		return nil, err
	}
	return q, nil
}

func parseDateRange(raw string, verr *domain.ValidationError) (domain.DateRange, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		verr.Add(ParamDateRange, "is required")
		return domain.DateRange{}, false
	}

	var rdr rawDateRange
	if err := json.Unmarshal([]byte(raw), &rdr); err != nil {
		verr.Add(ParamDateRange, "must be a JSON object with start and end")
		return domain.DateRange{}, false
	}

	start, startOK := parseInstant(rdr.Start, ParamDateRange+".start", verr)
	end, endOK := parseInstant(rdr.End, ParamDateRange+".end", verr)
	if !startOK || !endOK {
		return domain.DateRange{}, false
	}
	if start.After(end) {
		verr.Add(ParamDateRange, "start must not be after end")
		return domain.DateRange{}, false
	}
	return domain.DateRange{Start: start.UTC(), End: end.UTC()}, true
}

func parseInstant(raw *string, field string, verr *domain.ValidationError) (time.Time, bool) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		verr.Add(field, "is required")
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, strings.TrimSpace(*raw))
	if err != nil {
		verr.Add(field, "must be an ISO-8601 datetime")
		return time.Time{}, false
	}
	return t, true
}

// parseMetrics splits a comma-separated list into an ordered set without empty names
func parseMetrics(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	seen := make(map[string]struct{})
	var metrics []string
	for _, part := range strings.Split(raw, ",") {
		m := strings.TrimSpace(part)
		if m == "" {
			continue
		}
		if _, dup := seen[m]; dup {
			continue
		}
		seen[m] = struct{}{}
		metrics = append(metrics, m)
	}
	return metrics
}
