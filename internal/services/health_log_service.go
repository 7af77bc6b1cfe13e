package services

import (
	"context"

	"github.com/vladimiradmaev/health-tracker/internal/cache"
	"github.com/vladimiradmaev/health-tracker/internal/domain"
	"github.com/vladimiradmaev/health-tracker/internal/logger"
)

// HealthLogService is the CRUD front of the primary store. Every successful
// write flushes the query cache.
type HealthLogService struct {
	store domain.HealthLogStore
	cache cache.Cache
}

func NewHealthLogService(store domain.HealthLogStore, c cache.Cache) *HealthLogService {
	return &HealthLogService{
		store: store,
		cache: c,
	}
}

func (s *HealthLogService) Create(ctx context.Context, log *domain.HealthLog) error {
	if err := s.store.Create(ctx, log); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *HealthLogService) Get(ctx context.Context, id uint) (*domain.HealthLog, error) {
	return s.store.GetByID(ctx, id)
}

func (s *HealthLogService) Update(ctx context.Context, id uint, patch domain.HealthLogPatch) (*domain.HealthLog, error) {
	log, err := s.store.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return log, nil
}

func (s *HealthLogService) Delete(ctx context.Context, id uint) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *HealthLogService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Flush(ctx); err != nil {
		logger.WithContext(ctx).Warn("Failed to flush query cache", "error", err)
	}
}
