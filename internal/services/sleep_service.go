package services

import (
	"context"
	"time"

	"github.com/vladimiradmaev/health-tracker/internal/daterange"
	"github.com/vladimiradmaev/health-tracker/internal/domain"
)

// SleepFilter selects sleep sessions. Date wins over Year+Month, which wins
// over the week pair.
type SleepFilter struct {
	daterange.Filter
	Year  int
	Month int
}

type SleepService struct {
	source domain.SleepSource
	loc    *time.Location
}

func NewSleepService(source domain.SleepSource, loc *time.Location) *SleepService {
	if loc == nil {
		loc = time.Local
	}
	return &SleepService{source: source, loc: loc}
}

// Sessions returns one page of sleep sessions matching f
func (s *SleepService) Sessions(ctx context.Context, f SleepFilter, page, limit int) (*domain.SleepPage, error) {
	if page < 1 {
		page = 1
	}
	iv, err := s.interval(f)
	if err != nil {
		return nil, invalidDate(f.Filter, s.loc, err)
	}
	sessions, total, err := s.source.Sleep(ctx, domain.SleepQuery{
		Interval: iv,
		Skip:     (page - 1) * limit,
		Limit:    limit,
	})
	if err != nil {
		return nil, err
	}
	return domain.NewSleepPage(sessions, total, page, limit), nil
}

func (s *SleepService) interval(f SleepFilter) (*daterange.Interval, error) {
	if f.Date == "" && f.Year > 0 && f.Month > 0 {
		iv := daterange.Month(f.Year, time.Month(f.Month))
		return &iv, nil
	}
	return daterange.Resolve(f.Filter, s.loc)
}
