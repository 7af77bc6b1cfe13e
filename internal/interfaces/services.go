package interfaces

import (
	"context"

	"github.com/vladimiradmaev/health-tracker/internal/domain"
	"github.com/vladimiradmaev/health-tracker/internal/services"
)

// HealthLogServiceInterface defines the contract for health log CRUD operations
type HealthLogServiceInterface interface {
	Create(ctx context.Context, log *domain.HealthLog) error
	Get(ctx context.Context, id uint) (*domain.HealthLog, error)
	Update(ctx context.Context, id uint, patch domain.HealthLogPatch) (*domain.HealthLog, error)
	Delete(ctx context.Context, id uint) error
}

// AggregateServiceInterface defines the contract for merged log queries
type AggregateServiceInterface interface {
	Query(ctx context.Context, q services.LogQuery) (*domain.LogPage, error)
}

// StatsServiceInterface defines the contract for monthly statistics
type StatsServiceInterface interface {
	MonthlyStats(ctx context.Context, year, month int) (*domain.MonthlyStats, error)
}

// WarningServiceInterface defines the contract for the monthly health report
type WarningServiceInterface interface {
	MonthlyWarnings(ctx context.Context, year, month int) ([]domain.DayReport, error)
}

// SleepServiceInterface defines the contract for device sleep sessions
type SleepServiceInterface interface {
	Sessions(ctx context.Context, f services.SleepFilter, page, limit int) (*domain.SleepPage, error)
}
