package idempotency

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupManager(t *testing.T) (Manager, Store) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := NewRedisStore(client, log)
	return NewManager(store, log), store
}

func TestManager_ExecutesOperationOnce(t *testing.T) {
	manager, _ := setupManager(t)
	ctx := context.Background()

	calls := 0
	op := func(context.Context) (interface{}, error) {
		calls++
		return "credentials issued", nil
	}

	first, err := manager.Execute(ctx, "update-1", time.Hour, op)
	require.NoError(t, err)
	assert.False(t, first.FromCache)
	assert.Equal(t, "credentials issued", first.Response)

	second, err := manager.Execute(ctx, "update-1", time.Hour, op)
	require.NoError(t, err)
	assert.True(t, second.FromCache)
	assert.Equal(t, "credentials issued", second.Response)

	assert.Equal(t, 1, calls)
}

func TestManager_DistinctKeysExecuteIndependently(t *testing.T) {
	manager, _ := setupManager(t)
	ctx := context.Background()

	calls := 0
	op := func(context.Context) (interface{}, error) {
		calls++
		return nil, nil
	}

	_, err := manager.Execute(ctx, "update-1", time.Hour, op)
	require.NoError(t, err)
	_, err = manager.Execute(ctx, "update-2", time.Hour, op)
	require.NoError(t, err)

	assert.Equal(t, 2, calls)
}

func TestManager_MarksKeyProcessingDuringExecution(t *testing.T) {
	manager, store := setupManager(t)
	ctx := context.Background()

	var observed *Record
	_, err := manager.Execute(ctx, "update-1", time.Hour, func(context.Context) (interface{}, error) {
		rec, getErr := store.Get(ctx, "update-1")
		require.NoError(t, getErr)
		observed = rec
		return nil, nil
	})
	require.NoError(t, err)

	require.NotNil(t, observed)
	assert.Equal(t, StatusProcessing, observed.Status)

	final, err := store.Get(ctx, "update-1")
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, final.Status)
}

func TestManager_InProgressKeyIsRejected(t *testing.T) {
	manager, store := setupManager(t)
	ctx := context.Background()

	locked, err := store.Lock(ctx, "update-1", time.Minute)
	require.NoError(t, err)
	require.True(t, locked)
	require.NoError(t, store.Set(ctx, "update-1", &Record{Status: StatusProcessing}, time.Minute))

	_, err = manager.Execute(ctx, "update-1", time.Hour, func(context.Context) (interface{}, error) {
		return nil, nil
	})

	assert.ErrorIs(t, err, ErrRequestInProgress)
}

func TestManager_FailedOperationIsNotCached(t *testing.T) {
	manager, _ := setupManager(t)
	ctx := context.Background()

	calls := 0
	_, err := manager.Execute(ctx, "update-1", time.Hour, func(context.Context) (interface{}, error) {
		calls++
		return nil, assert.AnError
	})
	require.Error(t, err)

	result, err := manager.Execute(ctx, "update-1", time.Hour, func(context.Context) (interface{}, error) {
		calls++
		return "ok", nil
	})
	require.NoError(t, err)
	assert.False(t, result.FromCache)
	assert.Equal(t, 2, calls)
}

func TestGenerateKey_Stable(t *testing.T) {
	a := GenerateKey("cb", "callback-1")
	b := GenerateKey("cb", "callback-1")
	c := GenerateKey("cb", "callback-2")
	d := GenerateKey("msg", "callback-1")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.NotEqual(t, a, d)
}
