// Package daterange turns the day and week filters of a request into one
// interval that both data stores are queried with.
package daterange

import (
	"math"
	"time"

	"github.com/vladimiradmaev/health-tracker/internal/utils"
)

// Filter is the raw date selection of a request. Date wins over the week pair;
// the week pair only applies when both ends are present.
type Filter struct {
	Date      string `json:"date,omitempty"`
	WeekStart string `json:"weekStart,omitempty"`
	WeekEnd   string `json:"weekEnd,omitempty"`
}

// Empty reports whether the filter selects no interval at all.
func (f Filter) Empty() bool {
	return f.Date == "" && (f.WeekStart == "" || f.WeekEnd == "")
}

// Echo returns the raw input a computed row reports as its timestamp:
// the day, else the week start, else the week end.
func (f Filter) Echo() string {
	switch {
	case f.Date != "":
		return f.Date
	case f.WeekStart != "":
		return f.WeekStart
	default:
		return f.WeekEnd
	}
}

// Interval is a time range derived from one computation. The primary store
// reads Start/End directly; the device store reads the epoch accessors.
// End is inclusive unless HalfOpen is set.
type Interval struct {
	Start    time.Time
	End      time.Time
	HalfOpen bool
}

// Resolve converts f into an interval in loc. It returns nil when f selects
// nothing. weekStart after weekEnd is accepted as given and simply matches no
// records.
func Resolve(f Filter, loc *time.Location) (*Interval, error) {
	if f.Date != "" {
		day, err := utils.ParseDay(f.Date, loc)
		if err != nil {
			return nil, err
		}
		iv := Day(day)
		return &iv, nil
	}
	if f.WeekStart != "" && f.WeekEnd != "" {
		start, err := utils.ParseDay(f.WeekStart, loc)
		if err != nil {
			return nil, err
		}
		end, err := utils.ParseDay(f.WeekEnd, loc)
		if err != nil {
			return nil, err
		}
		return &Interval{Start: utils.StartOfDay(start), End: utils.EndOfDay(end)}, nil
	}
	return nil, nil
}

// Day spans the calendar day of t in t's location, 00:00:00.000 to 23:59:59.999.
func Day(t time.Time) Interval {
	return Interval{Start: utils.StartOfDay(t), End: utils.EndOfDay(t)}
}

// Month spans [first of month, first of next month) in UTC.
func Month(year int, month time.Month) Interval {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return Interval{Start: start, End: start.AddDate(0, 1, 0), HalfOpen: true}
}

// StartEpoch is Start in whole seconds, floored.
func (i Interval) StartEpoch() int64 {
	return i.Start.Unix()
}

// EndEpoch is End in whole seconds, floored.
func (i Interval) EndEpoch() int64 {
	return i.End.Unix()
}

// Contains reports whether t falls inside the interval.
func (i Interval) Contains(t time.Time) bool {
	if t.Before(i.Start) {
		return false
	}
	if i.HalfOpen {
		return t.Before(i.End)
	}
	return !t.After(i.End)
}

// SpanDays counts the calendar days a filter covers, inclusive of both ends,
// computed from the raw input rather than the expanded interval. It returns 1
// when the input cannot be parsed.
func SpanDays(f Filter) int {
	startRaw, endRaw := f.WeekStart, f.WeekEnd
	if startRaw == "" {
		startRaw = f.Date
	}
	if endRaw == "" {
		endRaw = f.Date
	}
	start, err := utils.ParseDay(startRaw, time.UTC)
	if err != nil {
		return 1
	}
	end, err := utils.ParseDay(endRaw, time.UTC)
	if err != nil {
		return 1
	}
	days := end.Sub(start).Hours() / 24
	return int(math.Ceil(days)) + 1
}
