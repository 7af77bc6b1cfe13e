package menus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/vladimiradmaev/health-tracker/internal/domain"
)

func ptr(v float64) *float64 { return &v }

func TestFormatToday(t *testing.T) {
	text := FormatToday("2025-09-05", []TodayRow{
		{ActivityType: domain.HeartRate, Item: &domain.LogItem{Value: 70.5, Unit: "bpm"}},
		{ActivityType: domain.SpO2},
	})

	assert.Contains(t, text, "2025-09-05")
	assert.Contains(t, text, "70.5 bpm")
	assert.Contains(t, text, "SpO2: -")
}

func TestFormatMonthlyStats(t *testing.T) {
	empty := FormatMonthlyStats(&domain.MonthlyStats{Year: 2025, Month: 9})
	assert.Contains(t, empty, "09/2025")
	assert.Contains(t, empty, "Chưa có bản ghi")

	text := FormatMonthlyStats(&domain.MonthlyStats{Year: 2025, Month: 9, Stats: []domain.ActivityCount{
		{ActivityType: domain.Steps, Count: 12},
	}})
	assert.Contains(t, text, "12 bản ghi")
}

func TestFormatWarnings(t *testing.T) {
	text := FormatWarnings(2025, 9, []domain.DayReport{
		{Date: "2025-09-01"},
		{Date: "2025-09-02", MinHeartRate: ptr(45), MaxHeartRate: ptr(130), Warnings: []string{domain.WarningAbnormalHeartRate}},
		{Date: "2025-09-03", MinSpO2: ptr(91), Warnings: []string{domain.WarningLowSpO2, domain.WarningShortSleep}},
	})

	assert.NotContains(t, text, "2025-09-01")
	assert.Contains(t, text, "2025-09-02: nhịp tim bất thường (45–130 bpm)")
	assert.Contains(t, text, "SpO2 thấp (91%)")
	assert.Contains(t, text, "ngủ ít (? phút)")
}

func TestFormatWarnings_NoneRaised(t *testing.T) {
	text := FormatWarnings(2025, 2, []domain.DayReport{{Date: "2025-02-01"}})

	assert.Contains(t, text, "Không có cảnh báo")
}
