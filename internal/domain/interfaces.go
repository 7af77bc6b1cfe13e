package domain

import (
	"context"
	"time"

	"github.com/vladimiradmaev/health-tracker/internal/daterange"
)

// LogFilter narrows primary-store queries. Zero values mean "no restriction".
type LogFilter struct {
	ActivityType ActivityType
	Interval     *daterange.Interval
}

// HealthLogStore is the primary store of user-entered logs
type HealthLogStore interface {
	Create(ctx context.Context, log *HealthLog) error
	GetByID(ctx context.Context, id uint) (*HealthLog, error)
	Update(ctx context.Context, id uint, patch HealthLogPatch) (*HealthLog, error)
	Delete(ctx context.Context, id uint) error
	Sum(ctx context.Context, filter LogFilter) (float64, error)
	ListPage(ctx context.Context, filter LogFilter, skip, limit int) ([]HealthLog, int64, error)
	FindAll(ctx context.Context, filter LogFilter) ([]HealthLog, error)
	CountByActivityType(ctx context.Context, from, to time.Time) ([]ActivityCount, error)
}

// DeviceSource reads the tracker-synced store. Fetch never fails: an
// unreachable store yields an empty result.
type DeviceSource interface {
	Supports(activityType ActivityType) bool
	Fetch(ctx context.Context, activityType ActivityType, interval *daterange.Interval, skip, limit int) SourceResult
}

// SleepQuery selects a page of sleep sessions
type SleepQuery struct {
	Interval *daterange.Interval
	Skip     int
	Limit    int
}

// SleepSource reads tracker sleep sessions and reports store failures
type SleepSource interface {
	Sleep(ctx context.Context, query SleepQuery) ([]SleepSession, int64, error)
}
