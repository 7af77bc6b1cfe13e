package handlers

import (
	"context"

	"github.com/vladimiradmaev/health-tracker/internal/bot/menus"
	"github.com/vladimiradmaev/health-tracker/internal/daterange"
	"github.com/vladimiradmaev/health-tracker/internal/domain"
	"github.com/vladimiradmaev/health-tracker/internal/services"
	"github.com/vladimiradmaev/health-tracker/internal/utils"
)

// reporter builds the read-only summaries shared by commands and buttons
type reporter struct {
	deps Dependencies
}

// today reads one figure per activity type for the current day: the calories
// total and the average of every other type.
func (r reporter) today(ctx context.Context) (string, error) {
	day := r.deps.now().Format(utils.DayLayout)
	rows := make([]menus.TodayRow, 0, len(domain.ActivityTypes))
	for _, t := range domain.ActivityTypes {
		page, err := r.deps.Aggregate.Query(ctx, services.LogQuery{
			ActivityType:     t,
			Filter:           daterange.Filter{Date: day},
			CalculateAverage: t != domain.Calories,
			Page:             1,
			Limit:            1,
		})
		if err != nil {
			return "", err
		}
		row := menus.TodayRow{ActivityType: t}
		if len(page.Items) > 0 {
			item := page.Items[0]
			row.Item = &item
		}
		rows = append(rows, row)
	}
	return menus.FormatToday(day, rows), nil
}

func (r reporter) month(ctx context.Context) (string, error) {
	now := r.deps.now()
	stats, err := r.deps.Stats.MonthlyStats(ctx, now.Year(), int(now.Month()))
	if err != nil {
		return "", err
	}
	return menus.FormatMonthlyStats(stats), nil
}

func (r reporter) warnings(ctx context.Context) (string, error) {
	now := r.deps.now()
	year, month := now.Year(), int(now.Month())
	days, err := r.deps.Warnings.MonthlyWarnings(ctx, year, month)
	if err != nil {
		return "", err
	}
	return menus.FormatWarnings(year, month, days), nil
}
