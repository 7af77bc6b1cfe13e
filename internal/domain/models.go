package domain

import (
	"encoding/json"
	"math"
	"strconv"
	"time"
)

// ActivityType is the kind of measurement a log carries
type ActivityType string

const (
	HeartRate        ActivityType = "heart_rate"
	Calories         ActivityType = "calories"
	Steps            ActivityType = "steps"
	Sleep            ActivityType = "sleep"
	Stress           ActivityType = "stress"
	SpO2             ActivityType = "spo2"
	RestingHeartRate ActivityType = "resting_heart_rate"
)

// ActivityTypes lists every accepted activity type
var ActivityTypes = []ActivityType{
	HeartRate,
	Calories,
	Steps,
	Sleep,
	Stress,
	SpO2,
	RestingHeartRate,
}

// Valid reports whether a is one of ActivityTypes
func (a ActivityType) Valid() bool {
	for _, t := range ActivityTypes {
		if t == a {
			return true
		}
	}
	return false
}

var units = map[ActivityType]string{
	HeartRate:        "bpm",
	RestingHeartRate: "bpm",
	SpO2:             "%",
	Stress:           "score",
	Steps:            "steps",
	Calories:         "kcal",
	Sleep:            "phút",
}

// Unit is the label values of this type are recorded in; empty for unknown types
func (a ActivityType) Unit() string {
	return units[a]
}

// Source tags where a LogItem came from
type Source string

const (
	SourceHealthLog  Source = "healthlog"
	SourceMiFit      Source = "mifit"
	SourceCalculated Source = "calculated"
	SourceTotal      Source = "tổng"
)

// HealthLog is a user-entered measurement in the primary store
type HealthLog struct {
	ID           uint         `json:"id"`
	ActivityType ActivityType `json:"activityType"`
	Value        float64      `json:"value"`
	Unit         string       `json:"unit,omitempty"`
	Note         string       `json:"note,omitempty"`
	OccurredAt   time.Time    `json:"occurredAt"`
	CreatedAt    time.Time    `json:"createdAt"`
	UpdatedAt    time.Time    `json:"updatedAt"`
}

// Item converts the record into its merged-view shape
func (h HealthLog) Item() LogItem {
	return LogItem{
		ID:           strconv.FormatUint(uint64(h.ID), 10),
		ActivityType: h.ActivityType,
		Value:        h.Value,
		Unit:         h.Unit,
		Note:         h.Note,
		OccurredAt:   At(h.OccurredAt),
		Source:       SourceHealthLog,
	}
}

// HealthLogPatch is a partial update; nil fields are left untouched
type HealthLogPatch struct {
	ActivityType *ActivityType
	Value        *float64
	Unit         *string
	Note         *string
	OccurredAt   *time.Time
}

// Empty reports whether the patch changes nothing
func (p HealthLogPatch) Empty() bool {
	return p.ActivityType == nil && p.Value == nil && p.Unit == nil && p.Note == nil && p.OccurredAt == nil
}

// EventTime is the timestamp of a LogItem. Computed rows may echo the raw
// request input instead of an instant; Raw then takes precedence.
type EventTime struct {
	Time time.Time
	Raw  string
}

// At wraps an instant
func At(t time.Time) EventTime {
	return EventTime{Time: t}
}

// Echo wraps a raw input string
func Echo(raw string) EventTime {
	return EventTime{Raw: raw}
}

// MarshalJSON renders Raw verbatim, a zero Time as null, otherwise RFC 3339.
func (e EventTime) MarshalJSON() ([]byte, error) {
	if e.Raw != "" {
		return json.Marshal(e.Raw)
	}
	if e.Time.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(e.Time)
}

// UnmarshalJSON accepts null, an RFC 3339 timestamp or any other string (kept as Raw).
func (e *EventTime) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*e = EventTime{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		*e = EventTime{Time: t}
		return nil
	}
	*e = EventTime{Raw: s}
	return nil
}

// LogItem is the merged, source-tagged view of a measurement
type LogItem struct {
	ID           string       `json:"id,omitempty"`
	ActivityType ActivityType `json:"activityType"`
	Value        float64      `json:"value"`
	Unit         string       `json:"unit"`
	Note         string       `json:"note,omitempty"`
	OccurredAt   EventTime    `json:"occurredAt"`
	Source       Source       `json:"source"`
	IsAverage    bool         `json:"isAverage,omitempty"`
}

// SourceResult is one page of items from a single store plus its match count
type SourceResult struct {
	Items []LogItem
	Total int64
}

// LogPage is the paginated envelope returned to callers
type LogPage struct {
	Items []LogItem `json:"items"`
	Total int64     `json:"total"`
	Page  int       `json:"page"`
	Pages int       `json:"pages"`
	Limit int       `json:"limit"`
}

// NewLogPage builds an envelope; pages is ceil(total/limit)
func NewLogPage(items []LogItem, total int64, page, limit int) *LogPage {
	if items == nil {
		items = []LogItem{}
	}
	pages := 0
	if limit > 0 {
		pages = int(math.Ceil(float64(total) / float64(limit)))
	}
	return &LogPage{Items: items, Total: total, Page: page, Pages: pages, Limit: limit}
}

// ActivityCount is the number of primary-store logs of one type
type ActivityCount struct {
	ActivityType ActivityType `json:"activityType"`
	Count        int64        `json:"count"`
}

// MonthlyStats groups ActivityCount rows for one calendar month
type MonthlyStats struct {
	Year  int             `json:"year"`
	Month int             `json:"month"`
	Stats []ActivityCount `json:"stats"`
}
