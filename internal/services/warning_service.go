package services

import (
	"context"
	"time"

	"github.com/samber/lo"
	"github.com/vladimiradmaev/health-tracker/internal/daterange"
	"github.com/vladimiradmaev/health-tracker/internal/domain"
	"github.com/vladimiradmaev/health-tracker/internal/logger"
	"github.com/vladimiradmaev/health-tracker/internal/utils"
	"golang.org/x/sync/errgroup"
)

const (
	maxHeartRate    = 120
	minHeartRate    = 50
	minSpO2         = 94
	minSleepMinutes = 360

	// dayReadLimit is the listing size read per day and activity type
	dayReadLimit = 100
	// sleepReadLimit bounds the sleep sessions read for one month
	sleepReadLimit = 100
	dayWorkers     = 4
)

// LogQuerier runs health log queries; AggregateService implements it
type LogQuerier interface {
	Query(ctx context.Context, q LogQuery) (*domain.LogPage, error)
}

// WarningService builds the per-day health report of a month
type WarningService struct {
	logs  LogQuerier
	sleep domain.SleepSource
}

func NewWarningService(logs LogQuerier, sleep domain.SleepSource) *WarningService {
	return &WarningService{logs: logs, sleep: sleep}
}

// MonthlyWarnings reports every calendar day of the month. A failing sleep
// source leaves sleepMinutes null instead of failing the report.
func (s *WarningService) MonthlyWarnings(ctx context.Context, year, month int) ([]domain.DayReport, error) {
	sleepByDay := s.sleepMinutesByDay(ctx, year, month)

	days := utils.DaysInMonth(year, time.Month(month))
	reports := make([]domain.DayReport, days)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(dayWorkers)
	for i := 0; i < days; i++ {
		i := i
		day := time.Date(year, time.Month(month), i+1, 0, 0, 0, 0, time.UTC).Format(utils.DayLayout)
		g.Go(func() error {
			heartRates, err := s.dayValues(gctx, domain.HeartRate, day)
			if err != nil {
				return err
			}
			spo2s, err := s.dayValues(gctx, domain.SpO2, day)
			if err != nil {
				return err
			}
			reports[i] = DayReport(day, heartRates, spo2s, sleepByDay[day])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}

func (s *WarningService) dayValues(ctx context.Context, activityType domain.ActivityType, day string) ([]float64, error) {
	page, err := s.logs.Query(ctx, LogQuery{
		ActivityType: activityType,
		Filter:       daterange.Filter{Date: day},
		Page:         1,
		Limit:        dayReadLimit,
	})
	if err != nil {
		return nil, err
	}
	return lo.Map(page.Items, func(item domain.LogItem, _ int) float64 {
		return item.Value
	}), nil
}

// sleepMinutesByDay sums session durations per UTC calendar day
func (s *WarningService) sleepMinutesByDay(ctx context.Context, year, month int) map[string]*float64 {
	byDay := make(map[string]*float64)
	if s.sleep == nil {
		return byDay
	}
	iv := daterange.Month(year, time.Month(month))
	sessions, _, err := s.sleep.Sleep(ctx, domain.SleepQuery{Interval: &iv, Limit: sleepReadLimit})
	if err != nil {
		logger.WithContext(ctx).Warn("Monthly report without sleep data", "error", err)
		return byDay
	}

	for _, session := range sessions {
		if session.OccurredAt == nil {
			continue
		}
		day := session.OccurredAt.UTC().Format(utils.DayLayout)
		total := byDay[day]
		if total == nil {
			total = new(float64)
			byDay[day] = total
		}
		if session.Duration != nil {
			*total += *session.Duration
		}
	}
	return byDay
}

// DayReport applies the warning rules to one day's readings
func DayReport(day string, heartRates, spo2s []float64, sleepMinutes *float64) domain.DayReport {
	report := domain.DayReport{
		Date:         day,
		SleepMinutes: sleepMinutes,
		Warnings:     []string{},
	}
	if len(heartRates) > 0 {
		lowest, highest := lo.Min(heartRates), lo.Max(heartRates)
		report.MinHeartRate, report.MaxHeartRate = &lowest, &highest
		if highest > maxHeartRate || lowest < minHeartRate {
			report.Warnings = append(report.Warnings, domain.WarningAbnormalHeartRate)
		}
	}
	if len(spo2s) > 0 {
		lowest := lo.Min(spo2s)
		report.MinSpO2 = &lowest
		if lowest < minSpO2 {
			report.Warnings = append(report.Warnings, domain.WarningLowSpO2)
		}
	}
	if sleepMinutes != nil && *sleepMinutes < minSleepMinutes {
		report.Warnings = append(report.Warnings, domain.WarningShortSleep)
	}
	return report
}
