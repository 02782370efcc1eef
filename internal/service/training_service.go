package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/event-reg-api/internal/models"
	appErrors "github.com/noah-isme/event-reg-api/pkg/errors"
)

const trainingCatalogKey = "catalog:trainings"

type trainingReader interface {
	List(ctx context.Context) ([]models.Training, error)
}

type catalogCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// TrainingService serves the training catalog through a read-through
// cache. The catalog only changes when registrations are written, so
// writers call Invalidate and readers repopulate lazily.
type TrainingService struct {
	repo    trainingReader
	cache   catalogCache
	metrics *MetricsService
	ttl     time.Duration
	logger  *zap.Logger
}

// NewTrainingService constructs TrainingService.
func NewTrainingService(repo trainingReader, cache catalogCache, metrics *MetricsService, ttl time.Duration, logger *zap.Logger) *TrainingService {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TrainingService{repo: repo, cache: cache, metrics: metrics, ttl: ttl, logger: logger}
}

// List returns the catalog, served from cache when possible. The second
// return reports whether the cache was hit.
func (s *TrainingService) List(ctx context.Context) ([]models.Training, bool, error) {
	if s.cache != nil {
		start := time.Now()
		var cached []models.Training
		err := s.cache.Get(ctx, trainingCatalogKey, &cached)
		if err == nil {
			s.metrics.RecordCacheOperation(true, time.Since(start))
			return cached, true, nil
		}
		s.metrics.RecordCacheOperation(false, time.Since(start))
		if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("training catalog cache read failed", zap.Error(err))
		}
	}

	trainings, err := s.repo.List(ctx)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list trainings")
	}

	if s.cache != nil {
		start := time.Now()
		if err := s.cache.Set(ctx, trainingCatalogKey, trainings, s.ttl); err != nil {
			s.logger.Warn("training catalog cache write failed", zap.Error(err))
		}
		s.metrics.ObserveCacheWrite(time.Since(start))
	}
	return trainings, false, nil
}

// Invalidate drops the cached catalog after registration writes.
func (s *TrainingService) Invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, trainingCatalogKey); err != nil {
		s.logger.Warn("training catalog cache invalidate failed", zap.Error(err))
	}
}
