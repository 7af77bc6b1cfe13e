package services

import (
	"context"
	"sort"
	"time"

	"github.com/vladimiradmaev/health-tracker/internal/daterange"
	"github.com/vladimiradmaev/health-tracker/internal/domain"
)

// StatsService counts user-entered logs per activity type. Device records
// are not part of these counts.
type StatsService struct {
	store domain.HealthLogStore
}

func NewStatsService(store domain.HealthLogStore) *StatsService {
	return &StatsService{store: store}
}

// MonthlyStats counts logs per type within the UTC calendar month, sorted by type
func (s *StatsService) MonthlyStats(ctx context.Context, year, month int) (*domain.MonthlyStats, error) {
	iv := daterange.Month(year, time.Month(month))
	counts, err := s.store.CountByActivityType(ctx, iv.Start, iv.End)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(counts, func(i, j int) bool {
		return counts[i].ActivityType < counts[j].ActivityType
	})
	if counts == nil {
		counts = []domain.ActivityCount{}
	}
	return &domain.MonthlyStats{Year: year, Month: month, Stats: counts}, nil
}
