package domain

import (
	"math"
	"time"
)

// SleepQuality is the rule-based rating of one sleep session
type SleepQuality string

const (
	SleepGood SleepQuality = "good"
	SleepFair SleepQuality = "fair"
	SleepPoor SleepQuality = "poor"
)

// SleepSession is one tracker-recorded night. Pointer fields are null when the
// tracker did not report them.
type SleepSession struct {
	ID         string         `json:"id"`
	UID        any            `json:"uid"`
	SID        any            `json:"sid"`
	Time       int64          `json:"time"`
	OccurredAt *time.Time     `json:"occurredAt"`
	Duration   *float64       `json:"duration"`
	MinHR      *float64       `json:"minHr"`
	AvgHR      *float64       `json:"avgHr"`
	MaxHR      *float64       `json:"maxHr"`
	Timezone   any            `json:"timezone"`
	Stages     SleepStages    `json:"stages"`
	Quality    SleepQuality   `json:"quality"`
	Raw        map[string]any `json:"raw"`
}

// SleepStages holds stage shares of the total duration, in whole percent
type SleepStages struct {
	Light int `json:"light"`
	Deep  int `json:"deep"`
	REM   int `json:"rem"`
	Awake int `json:"awake"`
}

// SleepPage is the paginated envelope of sleep sessions
type SleepPage struct {
	Items []SleepSession `json:"items"`
	Total int64          `json:"total"`
	Page  int            `json:"page"`
	Pages int            `json:"pages"`
	Limit int            `json:"limit"`
}

// NewSleepPage builds an envelope; pages is ceil(total/limit)
func NewSleepPage(items []SleepSession, total int64, page, limit int) *SleepPage {
	if items == nil {
		items = []SleepSession{}
	}
	pages := 0
	if limit > 0 {
		pages = int(math.Ceil(float64(total) / float64(limit)))
	}
	return &SleepPage{Items: items, Total: total, Page: page, Pages: pages, Limit: limit}
}

// DayReport is the per-day warning row of the monthly health report
type DayReport struct {
	Date         string   `json:"date"`
	MinHeartRate *float64 `json:"minHeartRate"`
	MaxHeartRate *float64 `json:"maxHeartRate"`
	MinSpO2      *float64 `json:"minSpo2"`
	SleepMinutes *float64 `json:"sleepMinutes"`
	Warnings     []string `json:"warnings"`
}

// Warning codes raised by DayReport
const (
	WarningAbnormalHeartRate = "abnormal_heart_rate"
	WarningLowSpO2           = "low_spo2"
	WarningShortSleep        = "short_sleep"
)
