package mifit

import (
	"context"
	"fmt"
	"time"

	"github.com/vladimiradmaev/health-tracker/internal/daterange"
	"github.com/vladimiradmaev/health-tracker/internal/domain"
	apperrors "github.com/vladimiradmaev/health-tracker/internal/errors"
	"github.com/vladimiradmaev/health-tracker/internal/logger"
	"github.com/vladimiradmaev/health-tracker/internal/metrics"
)

// listedTypes are the collections merged into plain log listings. Sleep is
// served by its own endpoint instead.
var listedTypes = map[domain.ActivityType]bool{
	domain.HeartRate:        true,
	domain.Steps:            true,
	domain.Calories:         true,
	domain.Stress:           true,
	domain.SpO2:             true,
	domain.RestingHeartRate: true,
}

// Adapter exposes the device store as a domain.DeviceSource
type Adapter struct {
	finder  Finder
	metrics *metrics.Metrics
}

func NewAdapter(finder Finder, m *metrics.Metrics) *Adapter {
	return &Adapter{finder: finder, metrics: m}
}

// Supports reports whether listings of activityType include device records
func (a *Adapter) Supports(activityType domain.ActivityType) bool {
	return listedTypes[activityType]
}

// Fetch reads one page of the activityType collection. Store failures are
// logged and reported as an empty result.
func (a *Adapter) Fetch(ctx context.Context, activityType domain.ActivityType, iv *daterange.Interval, skip, limit int) domain.SourceResult {
	key := string(activityType)
	records, total, err := a.finder.Find(ctx, Query{
		Collection: key,
		Filter:     KeyFilter(key, iv),
		Skip:       int64(skip),
		Limit:      int64(limit),
	})
	if err != nil {
		appErr := apperrors.NewSourceUnavailableError(err, "mifit").WithContext("activity_type", key)
		logger.WithContext(ctx).Warn("Cannot read MiFit data", appErr.LogFields()...)
		a.metrics.DeviceSourceFailed(key)
		return domain.SourceResult{Items: []domain.LogItem{}, Total: 0}
	}

	items := make([]domain.LogItem, 0, len(records))
	for _, rec := range records {
		items = append(items, ToLogItem(activityType, rec))
	}
	return domain.SourceResult{Items: items, Total: total}
}

// ToLogItem normalizes one record into the canonical shape
func ToLogItem(activityType domain.ActivityType, rec Record) domain.LogItem {
	value, unit := Normalize(activityType, rec.Value)
	return domain.LogItem{
		ID:           rec.IDString(),
		ActivityType: activityType,
		Value:        value,
		Unit:         unit,
		Note:         fmt.Sprintf("MiFit %s", activityType),
		OccurredAt:   domain.At(EpochTime(rec.Time)),
		Source:       domain.SourceMiFit,
	}
}

// EpochTime converts epoch seconds to UTC; 0 means "unknown" and yields the zero time.
func EpochTime(sec int64) time.Time {
	if sec == 0 {
		return time.Time{}
	}
	return time.Unix(sec, 0).UTC()
}
