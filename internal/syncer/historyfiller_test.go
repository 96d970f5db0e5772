package syncer

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/0xkanth/solana-confirmation-service/internal/app"
	"github.com/0xkanth/solana-confirmation-service/internal/cache"
	"github.com/0xkanth/solana-confirmation-service/internal/metrics"
	"github.com/0xkanth/solana-confirmation-service/internal/queue"
)

type scriptedRPC struct {
	mu        sync.Mutex
	calls     int32
	failFirst bool
	confirmed []uint64
}

func (s *scriptedRPC) GetSlot(ctx context.Context) (uint64, error) {
	return 0, nil
}

func (s *scriptedRPC) GetBlocks(ctx context.Context, start, end uint64) ([]uint64, error) {
	n := atomic.AddInt32(&s.calls, 1)
	if s.failFirst && n == 1 {
		return nil, errors.New("transient failure")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []uint64
	for _, c := range s.confirmed {
		if c >= start && c <= end {
			out = append(out, c)
		}
	}
	return out, nil
}

func newTestHistoryFiller(t *testing.T, rpc app.RPCClient, cfg HistoryFillerConfig) (*HistoryFiller, *app.App, *queue.Queue) {
	t.Helper()
	sink := metrics.New(prometheus.NewRegistry())
	c, err := cache.New(1000, sink)
	require.NoError(t, err)
	a := app.New(c, rpc, sink, zerolog.Nop())
	q := queue.New(sink)
	return NewHistoryFiller(a, q, zerolog.Nop(), cfg), a, q
}

func TestHistoryFiller_ScanOne_EnqueuesGaps(t *testing.T) {
	rpc := &scriptedRPC{confirmed: []uint64{3, 4, 7}}
	hf, _, q := newTestHistoryFiller(t, rpc, HistoryFillerConfig{MinIntervalSize: 1})

	hf.scanOne(context.Background(), zerolog.Nop(), queue.Interval{Start: 1, End: 10})

	require.Equal(t, 3, q.Len())
}

func TestHistoryFiller_ScanOne_RequeuesWholeIntervalOnFailure(t *testing.T) {
	rpc := &scriptedRPC{failFirst: true}
	hf, _, q := newTestHistoryFiller(t, rpc, HistoryFillerConfig{MinIntervalSize: 1, RetryBackoff: time.Millisecond})

	hf.scanOne(context.Background(), zerolog.Nop(), queue.Interval{Start: 1, End: 10})

	require.Equal(t, 1, q.Len())
	iv, err := q.Pop(context.Background())
	require.NoError(t, err)
	require.Equal(t, queue.Interval{Start: 1, End: 10}, iv)
}

func TestHistoryFiller_Run_DrainsQueueAndStopsOnCancel(t *testing.T) {
	rpc := &scriptedRPC{confirmed: []uint64{5}}
	hf, _, q := newTestHistoryFiller(t, rpc, HistoryFillerConfig{Workers: 3, MinIntervalSize: 100})

	q.Push(queue.Interval{Start: 1, End: 10})
	q.Push(queue.Interval{Start: 11, End: 20})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		hf.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool {
		return q.Len() == 0
	}, time.Second, 5*time.Millisecond)

	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after context cancellation")
	}
}

func TestHistoryFiller_DefaultsWorkersToOne(t *testing.T) {
	rpc := &scriptedRPC{}
	hf, _, _ := newTestHistoryFiller(t, rpc, HistoryFillerConfig{Workers: 0})
	require.Equal(t, 1, hf.cfg.Workers)
}
