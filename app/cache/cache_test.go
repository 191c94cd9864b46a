package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryClient(t *testing.T) {
	ctx := context.Background()
	c := newMemoryClient()

	t.Run("GetMissingKey", func(t *testing.T) {
		_, err := c.Get(ctx, "todoapp:tasks")
		assert.ErrorIs(t, err, ErrMiss)
	})

	t.Run("SetThenGet", func(t *testing.T) {
		require.NoError(t, c.Set(ctx, "todoapp:tasks", `[{"id":"1"}]`, time.Minute))

		val, err := c.Get(ctx, "todoapp:tasks")
		require.NoError(t, err)
		assert.Equal(t, `[{"id":"1"}]`, val)
	})

	t.Run("DelIsIdempotent", func(t *testing.T) {
		require.NoError(t, c.Set(ctx, "todoapp:tasks", "x", time.Minute))

		require.NoError(t, c.Del(ctx, "todoapp:tasks"))
		_, err := c.Get(ctx, "todoapp:tasks")
		assert.ErrorIs(t, err, ErrMiss)

		// Deleting an absent key must succeed as well
		require.NoError(t, c.Del(ctx, "todoapp:tasks"))
	})

	t.Run("EntryExpiresAfterTTL", func(t *testing.T) {
		require.NoError(t, c.Set(ctx, "todoapp:expiring", "x", 10*time.Millisecond))

		time.Sleep(20 * time.Millisecond)

		_, err := c.Get(ctx, "todoapp:expiring")
		assert.ErrorIs(t, err, ErrMiss)
	})
}
