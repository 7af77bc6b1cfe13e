package repository

import (
	"context"
	"errors"
	"time"

	"github.com/vladimiradmaev/health-tracker/internal/database"
	"github.com/vladimiradmaev/health-tracker/internal/domain"
	apperrors "github.com/vladimiradmaev/health-tracker/internal/errors"
	"gorm.io/gorm"
)

const resourceHealthLog = "HealthLog"

// HealthLogRepository handles health log data operations
type HealthLogRepository struct {
	db *gorm.DB
}

// NewHealthLogRepository creates a new health log repository
func NewHealthLogRepository(db *gorm.DB) *HealthLogRepository {
	return &HealthLogRepository{db: db}
}

// scoped starts a fresh query over health_logs restricted by filter
func (r *HealthLogRepository) scoped(ctx context.Context, filter domain.LogFilter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&database.HealthLog{})
	if filter.ActivityType != "" {
		q = q.Where("activity_type = ?", string(filter.ActivityType))
	}
	if iv := filter.Interval; iv != nil {
		q = q.Where("occurred_at >= ?", iv.Start)
		if iv.HalfOpen {
			q = q.Where("occurred_at < ?", iv.End)
		} else {
			q = q.Where("occurred_at <= ?", iv.End)
		}
	}
	return q
}

// Create inserts log and fills in its ID and timestamps
func (r *HealthLogRepository) Create(ctx context.Context, log *domain.HealthLog) error {
	row := database.FromDomain(*log)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return apperrors.NewDatabaseError(err)
	}
	*log = row.ToDomain()
	return nil
}

// GetByID returns the log with the given id
func (r *HealthLogRepository) GetByID(ctx context.Context, id uint) (*domain.HealthLog, error) {
	var row database.HealthLog
	if err := r.db.WithContext(ctx).First(&row, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError(resourceHealthLog, id)
		}
		return nil, apperrors.NewDatabaseError(err)
	}
	log := row.ToDomain()
	return &log, nil
}

// Update applies the non-nil fields of patch and returns the stored record
func (r *HealthLogRepository) Update(ctx context.Context, id uint, patch domain.HealthLogPatch) (*domain.HealthLog, error) {
	if patch.Empty() {
		return r.GetByID(ctx, id)
	}

	changes := make(map[string]interface{})
	if patch.ActivityType != nil {
		changes["activity_type"] = string(*patch.ActivityType)
	}
	if patch.Value != nil {
		changes["value"] = *patch.Value
	}
	if patch.Unit != nil {
		changes["unit"] = *patch.Unit
	}
	if patch.Note != nil {
		changes["note"] = *patch.Note
	}
	if patch.OccurredAt != nil {
		changes["occurred_at"] = *patch.OccurredAt
	}

	result := r.db.WithContext(ctx).Model(&database.HealthLog{ID: id}).Updates(changes)
	if result.Error != nil {
		return nil, apperrors.NewDatabaseError(result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, apperrors.NewNotFoundError(resourceHealthLog, id)
	}
	return r.GetByID(ctx, id)
}

// Delete removes the log permanently
func (r *HealthLogRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&database.HealthLog{}, id)
	if result.Error != nil {
		return apperrors.NewDatabaseError(result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.NewNotFoundError(resourceHealthLog, id)
	}
	return nil
}

// Sum totals value over matching logs; no matches sum to 0
func (r *HealthLogRepository) Sum(ctx context.Context, filter domain.LogFilter) (float64, error) {
	var total float64
	if err := r.scoped(ctx, filter).Select("COALESCE(SUM(value), 0)").Scan(&total).Error; err != nil {
		return 0, apperrors.NewDatabaseError(err)
	}
	return total, nil
}

// ListPage returns one page of matching logs, newest first, and the match count
func (r *HealthLogRepository) ListPage(ctx context.Context, filter domain.LogFilter, skip, limit int) ([]domain.HealthLog, int64, error) {
	var total int64
	if err := r.scoped(ctx, filter).Count(&total).Error; err != nil {
		return nil, 0, apperrors.NewDatabaseError(err)
	}

	var rows []database.HealthLog
	if err := r.scoped(ctx, filter).
		Order("occurred_at DESC").
		Order("id DESC").
		Offset(skip).
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, 0, apperrors.NewDatabaseError(err)
	}
	return toDomain(rows), total, nil
}

// FindAll returns every matching log, newest first
func (r *HealthLogRepository) FindAll(ctx context.Context, filter domain.LogFilter) ([]domain.HealthLog, error) {
	var rows []database.HealthLog
	if err := r.scoped(ctx, filter).
		Order("occurred_at DESC").
		Order("id DESC").
		Find(&rows).Error; err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}
	return toDomain(rows), nil
}

// CountByActivityType counts logs per type with occurred_at in [from, to),
// ordered by type name.
func (r *HealthLogRepository) CountByActivityType(ctx context.Context, from, to time.Time) ([]domain.ActivityCount, error) {
	var rows []struct {
		ActivityType string
		Count        int64
	}
	if err := r.db.WithContext(ctx).Model(&database.HealthLog{}).
		Select("activity_type, COUNT(*) AS count").
		Where("occurred_at >= ? AND occurred_at < ?", from, to).
		Group("activity_type").
		Order("activity_type ASC").
		Scan(&rows).Error; err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}

	stats := make([]domain.ActivityCount, 0, len(rows))
	for _, row := range rows {
		stats = append(stats, domain.ActivityCount{
			ActivityType: domain.ActivityType(row.ActivityType),
			Count:        row.Count,
		})
	}
	return stats, nil
}

func toDomain(rows []database.HealthLog) []domain.HealthLog {
	logs := make([]domain.HealthLog, 0, len(rows))
	for _, row := range rows {
		logs = append(logs, row.ToDomain())
	}
	return logs
}
