package task

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/mfcoelho/go-todo-api/app/cache"
	"github.com/mfcoelho/go-todo-api/app/observability/metrics"
	"github.com/mfcoelho/go-todo-api/config"
	"github.com/mfcoelho/go-todo-api/internal/types"
)

var _ TaskService = (*TaskServiceImpl)(nil)

// TaskService fronts task persistence with a read-through cache.
//
// Listing consults the cache first and only falls back to persistence on a
// miss, repopulating the cache with the configured TTL. Every mutation
// performs the persistence write first and then deletes the cache key
// unconditionally: the whole cached list is invalidated rather than patched,
// so a stale partial merge can never be served. Deleting an absent key is a
// no-op, which keeps concurrent mutations convergent without locking.
type TaskService interface {
	List(ctx context.Context) ([]types.Task, error)
	Get(ctx context.Context, id uuid.UUID) (*types.Task, error)
	Create(ctx context.Context, description string) (*types.Task, error)
	Update(ctx context.Context, id uuid.UUID, params types.UpdateTaskParams) (*types.Task, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type TaskServiceImpl struct {
	logger   *slog.Logger
	repo     TaskRepo
	cache    cache.Client
	cacheKey string
	ttl      time.Duration
	metrics  *metrics.AppMetrics
	group    singleflight.Group
}

func NewTaskService(repo TaskRepo, cacheClient cache.Client, cfg config.CacheConfig, m *metrics.AppMetrics, logger *slog.Logger) *TaskServiceImpl {
	return &TaskServiceImpl{
		logger:   logger,
		repo:     repo,
		cache:    cacheClient,
		cacheKey: fmt.Sprintf("%s:tasks", cfg.Namespace),
		ttl:      cfg.TTL,
		metrics:  m,
	}
}

// List returns the full task collection, served from cache when possible.
func (s *TaskServiceImpl) List(ctx context.Context) ([]types.Task, error) {
	l := s.logger.With(slog.String("method", "List"), slog.String("cache_key", s.cacheKey))

	cached, err := s.cache.Get(ctx, s.cacheKey)
	if err == nil {
		l.InfoContext(ctx, "cache hit")
		if s.metrics != nil {
			s.metrics.CacheHitsTotal.Add(ctx, 1)
		}
		var tasks []types.Task
		if err := json.Unmarshal([]byte(cached), &tasks); err != nil {
			return nil, fmt.Errorf("failed to decode cached tasks: %w", err)
		}
		return tasks, nil
	}
	if !errors.Is(err, cache.ErrMiss) {
		// Cache unavailability is fatal for the read path; persistence is
		// not consulted as a fallback.
		return nil, fmt.Errorf("cache read failed: %w", err)
	}

	l.InfoContext(ctx, "cache miss")
	if s.metrics != nil {
		s.metrics.CacheMissesTotal.Add(ctx, 1)
	}

	// Collapse concurrent misses into a single repopulation.
	v, err, _ := s.group.Do(s.cacheKey, func() (interface{}, error) {
		start := time.Now()
		tasks, err := s.repo.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to read tasks from persistence: %w", err)
		}
		if s.metrics != nil {
			s.metrics.DbQueryDurationSeconds.Record(ctx, time.Since(start).Seconds())
		}

		payload, err := json.Marshal(tasks)
		if err != nil {
			return nil, fmt.Errorf("failed to encode tasks for cache: %w", err)
		}
		if err := s.cache.Set(ctx, s.cacheKey, string(payload), s.ttl); err != nil {
			return nil, fmt.Errorf("failed to populate cache: %w", err)
		}
		return tasks, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]types.Task), nil
}

func (s *TaskServiceImpl) Get(ctx context.Context, id uuid.UUID) (*types.Task, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *TaskServiceImpl) Create(ctx context.Context, description string) (*types.Task, error) {
	t, err := s.repo.Create(ctx, description)
	if err != nil {
		return nil, err
	}
	if err := s.invalidate(ctx); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *TaskServiceImpl) Update(ctx context.Context, id uuid.UUID, params types.UpdateTaskParams) (*types.Task, error) {
	t, err := s.repo.Update(ctx, id, params)
	if err != nil {
		return nil, err
	}
	if err := s.invalidate(ctx); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *TaskServiceImpl) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	return s.invalidate(ctx)
}

// invalidate deletes the cached list unconditionally after a successful
// mutation. Idempotent: the key may already be absent.
func (s *TaskServiceImpl) invalidate(ctx context.Context) error {
	if err := s.cache.Del(ctx, s.cacheKey); err != nil {
		return fmt.Errorf("failed to invalidate cache: %w", err)
	}
	if s.metrics != nil {
		s.metrics.CacheInvalidationsTotal.Add(ctx, 1)
	}
	s.logger.InfoContext(ctx, "cache invalidated", slog.String("cache_key", s.cacheKey))
	return nil
}
