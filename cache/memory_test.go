package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemorySetGet(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	require.NoError(t, m.Set(ctx, "a", "1", time.Minute))

	got, err := m.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "1", got)
}

func TestMemoryMiss(t *testing.T) {
	m := NewMemory()

	_, err := m.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestMemoryExpiry(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	require.NoError(t, m.Set(ctx, "a", "1", 10*time.Millisecond))
	time.Sleep(20 * time.Millisecond)

	_, err := m.Get(ctx, "a")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestMemoryInvalidatePrefix(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	require.NoError(t, m.Set(ctx, "breakdown:emp-1:a", "1", time.Minute))
	require.NoError(t, m.Set(ctx, "breakdown:emp-1:b", "2", time.Minute))
	require.NoError(t, m.Set(ctx, "breakdown:emp-2:a", "3", time.Minute))

	require.NoError(t, m.Invalidate(ctx, "breakdown:emp-1"))

	_, err := m.Get(ctx, "breakdown:emp-1:a")
	assert.ErrorIs(t, err, ErrMiss)
	_, err = m.Get(ctx, "breakdown:emp-1:b")
	assert.ErrorIs(t, err, ErrMiss)

	got, err := m.Get(ctx, "breakdown:emp-2:a")
	require.NoError(t, err)
	assert.Equal(t, "3", got)
}

func TestMemoryInvalidateAll(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	require.NoError(t, m.Set(ctx, "a", "1", time.Minute))
	require.NoError(t, m.Set(ctx, "b", "2", time.Minute))

	require.NoError(t, m.InvalidateAll(ctx))

	_, err := m.Get(ctx, "a")
	assert.ErrorIs(t, err, ErrMiss)
	_, err = m.Get(ctx, "b")
	assert.ErrorIs(t, err, ErrMiss)
}
