package service

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"time"

	"go.uber.org/zap"

	appErrors "github.com/noah-isme/noticeboard-api/pkg/errors"
)

// CacheRepository abstracts persistence for cached payloads.
type CacheRepository interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// CacheService is an explicit read-through cache. Backend failures are logged
// and treated as misses so callers fall through to the source of truth.
type CacheService struct {
	repo       CacheRepository
	metrics    *MetricsService
	defaultTTL time.Duration
	logger     *zap.Logger
}

// NewCacheService constructs a cache service. A nil repo disables caching.
func NewCacheService(repo CacheRepository, metrics *MetricsService, defaultTTL time.Duration, logger *zap.Logger) *CacheService {
	if defaultTTL <= 0 {
		defaultTTL = 10 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CacheService{repo: repo, metrics: metrics, defaultTTL: defaultTTL, logger: logger}
}

// Enabled indicates whether caching is active.
func (s *CacheService) Enabled() bool {
	return s != nil && s.repo != nil
}

// GetOrCompute fills dest from the cache, or runs compute, stores its result
// under key and copies it into dest. dest must be a pointer to the type
// compute returns. Concurrent misses may both compute; the last write wins.
func (s *CacheService) GetOrCompute(ctx context.Context, key string, dest interface{}, ttl time.Duration, compute func(ctx context.Context) (interface{}, error)) error {
	if s.Enabled() {
		start := time.Now()
		err := s.repo.Get(ctx, key, dest)
		s.metrics.RecordCacheOperation(key, err == nil, time.Since(start))
		if err == nil {
			return nil
		}
		if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("cache get failed", zap.String("key", key), zap.Error(err))
		}
	}

	value, err := compute(ctx)
	if err != nil {
		return err
	}
	if err := assign(dest, value); err != nil {
		return err
	}

	if s.Enabled() {
		if ttl <= 0 {
			ttl = s.defaultTTL
		}
		start := time.Now()
		if err := s.repo.Set(ctx, key, value, ttl); err != nil {
			s.logger.Warn("cache set failed", zap.String("key", key), zap.Error(err))
		}
		s.metrics.ObserveCacheWrite(time.Since(start))
	}
	return nil
}

// Invalidate evicts key. Failures are logged; the entry then ages out by TTL.
func (s *CacheService) Invalidate(ctx context.Context, key string) {
	if !s.Enabled() {
		return
	}
	s.metrics.RecordCacheInvalidation()
	if err := s.repo.Delete(ctx, key); err != nil {
		s.logger.Warn("cache invalidate failed", zap.String("key", key), zap.Error(err))
	}
}

func assign(dest, value interface{}) error {
	dv := reflect.ValueOf(dest)
	if dv.Kind() != reflect.Pointer || dv.IsNil() {
		return fmt.Errorf("cache destination must be a non-nil pointer, got %T", dest)
	}
	vv := reflect.ValueOf(value)
	if !vv.IsValid() {
		dv.Elem().Set(reflect.Zero(dv.Elem().Type()))
		return nil
	}
	if !vv.Type().AssignableTo(dv.Elem().Type()) {
		return fmt.Errorf("cache value %T not assignable to %T", value, dest)
	}
	dv.Elem().Set(vv)
	return nil
}
