package async_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/pkg/async"
)

func TestPoolExecute(t *testing.T) {
	pool := async.NewPool(2)

	var running, peak int32
	task := func(name string, value int) async.Task {
		return async.Task{
			Name: name,
			Execute: func(ctx context.Context) (any, error) {
				now := atomic.AddInt32(&running, 1)
				for {
					old := atomic.LoadInt32(&peak)
					if now <= old || atomic.CompareAndSwapInt32(&peak, old, now) {
						break
					}
				}
				time.Sleep(10 * time.Millisecond)
				atomic.AddInt32(&running, -1)
				return value, nil
			},
		}
	}

	results := pool.Execute(context.Background(), []async.Task{
		task("a", 1), task("b", 2), task("c", 3), task("d", 4),
	})

	require.Len(t, results, 4)
	assert.Equal(t, 3, results["c"].Data)
	assert.NoError(t, results["d"].Err)
	assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(2))
}

func TestPoolExecuteReportsErrors(t *testing.T) {
	pool := async.NewPool(3)
	boom := errors.New("boom")

	results := pool.Execute(context.Background(), []async.Task{
		{Name: "ok", Execute: func(ctx context.Context) (any, error) { return "fine", nil }},
		{Name: "failing", Execute: func(ctx context.Context) (any, error) { return nil, boom }},
		{Name: "panicking", Execute: func(ctx context.Context) (any, error) { panic("unexpected") }},
	})

	assert.Equal(t, "fine", results["ok"].Data)
	assert.ErrorIs(t, results["failing"].Err, boom)
	assert.ErrorContains(t, results["panicking"].Err, "panicked")
}

func TestPoolExecuteCancelled(t *testing.T) {
	pool := async.NewPool(1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := pool.Execute(ctx, []async.Task{
		{Name: "first", Execute: func(ctx context.Context) (any, error) { return 1, nil }},
		{Name: "second", Execute: func(ctx context.Context) (any, error) { return 2, nil }},
	})

	require.Len(t, results, 2)
	for _, result := range results {
		assert.ErrorIs(t, result.Err, context.Canceled)
	}
}

func TestPoolReusable(t *testing.T) {
	pool := async.NewPool(2)
	tasks := []async.Task{{Name: "x", Execute: func(ctx context.Context) (any, error) { return 1, nil }}}

	assert.Equal(t, 1, pool.Execute(context.Background(), tasks)["x"].Data)
	assert.Equal(t, 1, pool.Execute(context.Background(), tasks)["x"].Data)
	assert.Empty(t, pool.Execute(context.Background(), nil))
}
