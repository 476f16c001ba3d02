package analytics

import (
	"fmt"
	"time"

	"github.com/fixora/assetdash/internal/domain"
)

// Period is one bucket of a time series. End is exclusive.
type Period struct {
	Label string
	Start time.Time
	End   time.Time
}

// PeriodStart truncates t to the start of its period in UTC. Weeks start on Monday.
func PeriodStart(t time.Time, g domain.GroupBy) time.Time {
	t = t.UTC()
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	switch g {
	case domain.GroupByDay:
		return day
	case domain.GroupByWeek:
		offset := (int(day.Weekday()) + 6) % 7
		return day.AddDate(0, 0, -offset)
	case domain.GroupByQuarter:
		month := (int(t.Month())-1)/3*3 + 1
		return time.Date(t.Year(), time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	case domain.GroupByYear:
		return time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	default:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	}
}

// NextPeriodStart returns the start of the period following the one beginning at start
func NextPeriodStart(start time.Time, g domain.GroupBy) time.Time {
	switch g {
	case domain.GroupByDay:
		return start.AddDate(0, 0, 1)
	case domain.GroupByWeek:
		return start.AddDate(0, 0, 7)
	case domain.GroupByQuarter:
		return start.AddDate(0, 3, 0)
	case domain.GroupByYear:
		return start.AddDate(1, 0, 0)
	default:
		return start.AddDate(0, 1, 0)
	}
}

// PeriodLabel formats the label of the period beginning at start.
// Weeks use ISO week numbering, e.g. 2024-W07.
func PeriodLabel(start time.Time, g domain.GroupBy) string {
	switch g {
	case domain.GroupByDay:
		return start.Format("2006-01-02")
	case domain.GroupByWeek:
		year, week := start.ISOWeek()
		return fmt.Sprintf("%d-W%02d", year, week)
	case domain.GroupByQuarter:
		return fmt.Sprintf("%d-Q%d", start.Year(), (int(start.Month())-1)/3+1)
	case domain.GroupByYear:
		return start.Format("2006")
	default:
		return start.Format("2006-01")
	}
}

// Periods lists every period overlapping r in chronological order
func Periods(r domain.DateRange, g domain.GroupBy) []Period {
	if r.End.Before(r.Start) {
		return nil
	}
	var periods []Period
	for start := PeriodStart(r.Start, g); !start.After(r.End); {
		next := NextPeriodStart(start, g)
		periods = append(periods, Period{Label: PeriodLabel(start, g), Start: start, End: next})
		start = next
	}
	return periods
}

// PeriodCount returns len(Periods(r, g)) without building the periods
func PeriodCount(r domain.DateRange, g domain.GroupBy) int {
	if r.End.Before(r.Start) {
		return 0
	}
	first := PeriodStart(r.Start, g)
	last := PeriodStart(r.End, g)
	months := (last.Year()-first.Year())*12 + int(last.Month()) - int(first.Month())
	switch g {
	case domain.GroupByDay:
		return int((last.Unix()-first.Unix())/86400) + 1
	case domain.GroupByWeek:
		return int((last.Unix()-first.Unix())/(7*86400)) + 1
	case domain.GroupByQuarter:
		return months/3 + 1
	case domain.GroupByYear:
		return last.Year() - first.Year() + 1
	default:
		return months + 1
	}
}

// FollowingPeriods lists n periods after the period beginning at last
func FollowingPeriods(last time.Time, g domain.GroupBy, n int) []Period {
	periods := make([]Period, 0, n)
	start := last
	for i := 0; i < n; i++ {
		start = NextPeriodStart(start, g)
		periods = append(periods, Period{Label: PeriodLabel(start, g), Start: start, End: NextPeriodStart(start, g)})
	}
	return periods
}
