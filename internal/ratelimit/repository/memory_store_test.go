package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_Incr(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	first, err := store.Incr(ctx, "admin:1.2.3.4", time.Minute, start)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Count)
	assert.Equal(t, start, first.WindowStart)

	second, err := store.Incr(ctx, "admin:1.2.3.4", time.Minute, start.Add(30*time.Second))
	require.NoError(t, err)
	assert.Equal(t, 2, second.Count)
	assert.Equal(t, start, second.WindowStart)
	assert.Equal(t, start.Add(30*time.Second), second.LastSeen)

	other, err := store.Incr(ctx, "form:1.2.3.4", time.Minute, start)
	require.NoError(t, err)
	assert.Equal(t, 1, other.Count, "keys are independent")

	reset, err := store.Incr(ctx, "admin:1.2.3.4", time.Minute, start.Add(61*time.Second))
	require.NoError(t, err)
	assert.Equal(t, 1, reset.Count)
	assert.Equal(t, start.Add(61*time.Second), reset.WindowStart)
}

func TestMemoryStore_IncrReturnsCopy(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	now := time.Now()

	w, err := store.Incr(ctx, "k", time.Minute, now)
	require.NoError(t, err)
	w.Count = 1000

	next, err := store.Incr(ctx, "k", time.Minute, now)
	require.NoError(t, err)
	assert.Equal(t, 2, next.Count)
}

func TestMemoryStore_Sweep(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	_, _ = store.Incr(ctx, "old", time.Minute, now.Add(-20*time.Minute))
	_, _ = store.Incr(ctx, "fresh", time.Minute, now.Add(-time.Minute))

	removed, err := store.Sweep(ctx, now.Add(-10*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
	assert.Equal(t, 1, store.Len())

	w, err := store.Incr(ctx, "fresh", time.Hour, now)
	require.NoError(t, err)
	assert.Equal(t, 2, w.Count)
}

func TestMemoryStore_ConcurrentIncr(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	now := time.Now()

	const workers = 200
	counts := make(chan int, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w, err := store.Incr(ctx, "same-caller", time.Minute, now)
			if err == nil {
				counts <- w.Count
			}
		}()
	}
	wg.Wait()
	close(counts)

	seen := make(map[int]bool, workers)
	for c := range counts {
		assert.False(t, seen[c], "count %d observed twice", c)
		seen[c] = true
	}
	assert.Len(t, seen, workers)
}
