package statuscache

import (
	"context"
	"testing"
	"time"

	"judgecore/internal/evaluation"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func setupCache(t *testing.T) *Cache {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache := NewWithClient(client, time.Minute)

	t.Cleanup(func() {
		_ = cache.Close()
		mr.Close()
	})
	return cache
}

func TestStoreAndFetchRoundTrip(t *testing.T) {
	cache := setupCache(t)
	ctx := context.Background()

	result := evaluation.EvaluationResult{
		SubmissionID:  "sub-1",
		OverallStatus: evaluation.OverallAccepted,
		Tests: []evaluation.TestResult{
			{TestID: "1", Status: evaluation.Accepted, TimeMs: 12},
		},
		MaxTimeMs: 12,
	}

	require.NoError(t, cache.Store(ctx, result))

	got, found, err := cache.Fetch(ctx, "sub-1")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, result, got)
}

func TestFetchMissingReturnsNotFound(t *testing.T) {
	cache := setupCache(t)

	_, found, err := cache.Fetch(context.Background(), "does-not-exist")
	require.NoError(t, err)
	require.False(t, found)
}

func TestStoreRequiresSubmissionID(t *testing.T) {
	cache := setupCache(t)

	err := cache.Store(context.Background(), evaluation.EvaluationResult{})
	require.Error(t, err)
}

func TestFetchExpiresAfterTTL(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache := NewWithClient(client, 50*time.Millisecond)
	defer cache.Close()

	ctx := context.Background()
	require.NoError(t, cache.Store(ctx, evaluation.EvaluationResult{SubmissionID: "sub-2"}))

	mr.FastForward(time.Second)

	_, found, err := cache.Fetch(ctx, "sub-2")
	require.NoError(t, err)
	require.False(t, found)
}
