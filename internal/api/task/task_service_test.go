package task

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/mfcoelho/go-todo-api/app/cache"
	"github.com/mfcoelho/go-todo-api/config"
	"github.com/mfcoelho/go-todo-api/internal/types"
)

// MockTaskRepo is a mock implementation of the TaskRepo interface
type MockTaskRepo struct {
	mock.Mock
}

func (m *MockTaskRepo) List(ctx context.Context) ([]types.Task, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.Task), args.Error(1)
}

func (m *MockTaskRepo) GetByID(ctx context.Context, id uuid.UUID) (*types.Task, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Task), args.Error(1)
}

func (m *MockTaskRepo) Create(ctx context.Context, description string) (*types.Task, error) {
	args := m.Called(ctx, description)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Task), args.Error(1)
}

func (m *MockTaskRepo) Update(ctx context.Context, id uuid.UUID, params types.UpdateTaskParams) (*types.Task, error) {
	args := m.Called(ctx, id, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Task), args.Error(1)
}

func (m *MockTaskRepo) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// fakeCache is an in-memory cache.Client for exercising the read-through
// path without a running Redis.
type fakeCache struct {
	mu     sync.Mutex
	data   map[string]string
	getErr error
	setErr error
	delErr error
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: make(map[string]string)}
}

func (c *fakeCache) Get(ctx context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return "", c.getErr
	}
	val, ok := c.data[key]
	if !ok {
		return "", cache.ErrMiss
	}
	return val, nil
}

func (c *fakeCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.setErr != nil {
		return c.setErr
	}
	c.data[key] = value
	return nil
}

func (c *fakeCache) Del(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.delErr != nil {
		return c.delErr
	}
	delete(c.data, key)
	return nil
}

func (c *fakeCache) Close() error { return nil }

func newTestTaskService(repo TaskRepo, c cache.Client) *TaskServiceImpl {
	cfg := config.CacheConfig{Namespace: "todoapp", TTL: time.Minute}
	return NewTaskService(repo, c, cfg, nil, slog.Default())
}

func sampleTasks() []types.Task {
	return []types.Task{
		{ID: uuid.New(), Description: "buy milk"},
		{ID: uuid.New(), Description: "walk the dog", Completed: true},
	}
}

func TestListReadThrough(t *testing.T) {
	t.Run("MissPopulatesCache", func(t *testing.T) {
		ctx := context.Background()
		mockRepo := new(MockTaskRepo)
		fake := newFakeCache()
		service := newTestTaskService(mockRepo, fake)
		expected := sampleTasks()

		// Persistence must be consulted exactly once: the second call is
		// served from the cache populated by the first.
		mockRepo.On("List", ctx).Return(expected, nil).Once()

		first, err := service.List(ctx)
		require.NoError(t, err)
		assert.Equal(t, expected, first)

		second, err := service.List(ctx)
		require.NoError(t, err)
		assert.Equal(t, expected, second)

		mockRepo.AssertExpectations(t)
		mockRepo.AssertNumberOfCalls(t, "List", 1)
	})

	t.Run("EmptyListIsCachedToo", func(t *testing.T) {
		ctx := context.Background()
		mockRepo := new(MockTaskRepo)
		fake := newFakeCache()
		service := newTestTaskService(mockRepo, fake)

		mockRepo.On("List", ctx).Return([]types.Task{}, nil).Once()

		tasks, err := service.List(ctx)
		require.NoError(t, err)
		assert.NotNil(t, tasks)
		assert.Empty(t, tasks)

		// An empty collection is a real cached value, not a miss.
		tasks, err = service.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, tasks)
		mockRepo.AssertNumberOfCalls(t, "List", 1)
	})

	t.Run("CacheReadErrorPropagates", func(t *testing.T) {
		ctx := context.Background()
		mockRepo := new(MockTaskRepo)
		fake := newFakeCache()
		fake.getErr = errors.New("connection refused")
		service := newTestTaskService(mockRepo, fake)

		_, err := service.List(ctx)

		// No persistence fallback when the cache is down.
		assert.Error(t, err)
		assert.NotErrorIs(t, err, cache.ErrMiss)
		mockRepo.AssertNotCalled(t, "List", ctx)
	})

	t.Run("RepoErrorPropagates", func(t *testing.T) {
		ctx := context.Background()
		mockRepo := new(MockTaskRepo)
		fake := newFakeCache()
		service := newTestTaskService(mockRepo, fake)
		dbErr := errors.New("relation does not exist")

		mockRepo.On("List", ctx).Return(nil, dbErr).Once()

		_, err := service.List(ctx)

		assert.ErrorIs(t, err, dbErr)
		// A failed repopulation must not leave a cache entry behind.
		_, err = fake.Get(ctx, "todoapp:tasks")
		assert.ErrorIs(t, err, cache.ErrMiss)
		mockRepo.AssertExpectations(t)
	})
}

func TestMutationsInvalidateCache(t *testing.T) {
	t.Run("CreateDeletesCachedList", func(t *testing.T) {
		ctx := context.Background()
		mockRepo := new(MockTaskRepo)
		fake := newFakeCache()
		service := newTestTaskService(mockRepo, fake)
		tasks := sampleTasks()

		mockRepo.On("List", ctx).Return(tasks, nil).Twice()
		created := &types.Task{ID: uuid.New(), Description: "new task"}
		mockRepo.On("Create", ctx, "new task").Return(created, nil).Once()

		_, err := service.List(ctx)
		require.NoError(t, err)

		got, err := service.Create(ctx, "new task")
		require.NoError(t, err)
		assert.Equal(t, created, got)

		// The next read must go back to persistence.
		_, err = service.List(ctx)
		require.NoError(t, err)
		mockRepo.AssertNumberOfCalls(t, "List", 2)
	})

	t.Run("UpdateDeletesCachedList", func(t *testing.T) {
		ctx := context.Background()
		mockRepo := new(MockTaskRepo)
		fake := newFakeCache()
		service := newTestTaskService(mockRepo, fake)
		id := uuid.New()
		completed := true
		updated := &types.Task{ID: id, Description: "buy milk", Completed: true}

		mockRepo.On("List", ctx).Return(sampleTasks(), nil).Twice()
		mockRepo.On("Update", ctx, id, types.UpdateTaskParams{Completed: &completed}).
			Return(updated, nil).Once()

		_, err := service.List(ctx)
		require.NoError(t, err)

		got, err := service.Update(ctx, id, types.UpdateTaskParams{Completed: &completed})
		require.NoError(t, err)
		assert.Equal(t, updated, got)

		_, err = service.List(ctx)
		require.NoError(t, err)
		mockRepo.AssertNumberOfCalls(t, "List", 2)
	})

	t.Run("DeleteDeletesCachedList", func(t *testing.T) {
		ctx := context.Background()
		mockRepo := new(MockTaskRepo)
		fake := newFakeCache()
		service := newTestTaskService(mockRepo, fake)
		id := uuid.New()

		mockRepo.On("Delete", ctx, id).Return(nil).Once()

		// Nothing cached yet: invalidating an absent key is a no-op.
		require.NoError(t, service.Delete(ctx, id))
		mockRepo.AssertExpectations(t)
	})

	t.Run("FailedWriteSkipsInvalidation", func(t *testing.T) {
		ctx := context.Background()
		mockRepo := new(MockTaskRepo)
		fake := newFakeCache()
		service := newTestTaskService(mockRepo, fake)
		id := uuid.New()

		mockRepo.On("List", ctx).Return(sampleTasks(), nil).Once()
		mockRepo.On("Delete", ctx, id).Return(types.ErrNotFound).Once()

		_, err := service.List(ctx)
		require.NoError(t, err)

		err = service.Delete(ctx, id)
		assert.ErrorIs(t, err, types.ErrNotFound)

		// The cached list survives a rejected mutation.
		_, err = service.List(ctx)
		require.NoError(t, err)
		mockRepo.AssertNumberOfCalls(t, "List", 1)
	})

	t.Run("InvalidationErrorPropagates", func(t *testing.T) {
		ctx := context.Background()
		mockRepo := new(MockTaskRepo)
		fake := newFakeCache()
		fake.delErr = errors.New("connection refused")
		service := newTestTaskService(mockRepo, fake)

		created := &types.Task{ID: uuid.New(), Description: "new task"}
		mockRepo.On("Create", ctx, "new task").Return(created, nil).Once()

		_, err := service.Create(ctx, "new task")
		assert.Error(t, err)
		mockRepo.AssertExpectations(t)
	})
}

func TestGetBypassesCache(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockTaskRepo)
	fake := newFakeCache()
	service := newTestTaskService(mockRepo, fake)
	id := uuid.New()
	task := &types.Task{ID: id, Description: "buy milk"}

	mockRepo.On("GetByID", ctx, id).Return(task, nil).Once()

	got, err := service.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, task, got)
	assert.Empty(t, fake.data)
	mockRepo.AssertExpectations(t)
}
