package queue

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/0xkanth/solana-confirmation-service/internal/metrics"
)

func newTestQueue(t *testing.T) *Queue {
	t.Helper()
	sink := metrics.New(prometheus.NewRegistry())
	return New(sink)
}

func TestQueue_PushPopFIFO(t *testing.T) {
	q := newTestQueue(t)
	ctx := context.Background()

	q.Push(Interval{Start: 1, End: 10})
	q.Push(Interval{Start: 11, End: 20})

	first, err := q.Pop(ctx)
	require.NoError(t, err)
	require.Equal(t, Interval{Start: 1, End: 10}, first)

	second, err := q.Pop(ctx)
	require.NoError(t, err)
	require.Equal(t, Interval{Start: 11, End: 20}, second)
}

func TestQueue_PopBlocksUntilPush(t *testing.T) {
	q := newTestQueue(t)
	ctx := context.Background()

	result := make(chan Interval, 1)
	go func() {
		iv, err := q.Pop(ctx)
		require.NoError(t, err)
		result <- iv
	}()

	time.Sleep(20 * time.Millisecond)
	q.Push(Interval{Start: 5, End: 5})

	select {
	case iv := <-result:
		require.Equal(t, Interval{Start: 5, End: 5}, iv)
	case <-time.After(time.Second):
		t.Fatal("Pop did not return after Push")
	}
}

func TestQueue_PopReturnsOnContextCancel(t *testing.T) {
	q := newTestQueue(t)
	ctx, cancel := context.WithCancel(context.Background())

	errCh := make(chan error, 1)
	go func() {
		_, err := q.Pop(ctx)
		errCh <- err
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("Pop did not return after context cancellation")
	}
}

func TestQueue_ConcurrentProducersConsumers(t *testing.T) {
	q := newTestQueue(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	const n = 100
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			q.Push(Interval{Start: uint64(i), End: uint64(i)})
		}(i)
	}
	wg.Wait()

	seen := make(map[uint64]bool)
	var mu sync.Mutex
	var consumers sync.WaitGroup
	for i := 0; i < 10; i++ {
		consumers.Add(1)
		go func() {
			defer consumers.Done()
			for {
				popCtx, cancelPop := context.WithTimeout(ctx, 200*time.Millisecond)
				iv, err := q.Pop(popCtx)
				cancelPop()
				if err != nil {
					return
				}
				mu.Lock()
				seen[iv.Start] = true
				mu.Unlock()
			}
		}()
	}
	consumers.Wait()

	require.Equal(t, n, len(seen))
	require.Equal(t, 0, q.Len())
}

func TestInterval_Size(t *testing.T) {
	require.Equal(t, uint64(1), Interval{Start: 5, End: 5}.Size())
	require.Equal(t, uint64(10), Interval{Start: 1, End: 10}.Size())
}
