// Package queue implements the Interval Queue: a FIFO of inclusive
// [start, end] slot intervals awaiting scan, shared by the synchronizer's
// tip follower (producer) and worker pool (consumers that also push gaps
// and failed intervals back).
package queue

import (
	"container/list"
	"context"
	"sync"

	"github.com/0xkanth/solana-confirmation-service/internal/metrics"
)

// Interval is an inclusive range of slots still to be scanned.
type Interval struct {
	Start uint64
	End   uint64
}

// Size returns the number of slots covered by the interval.
func (iv Interval) Size() uint64 {
	return iv.End - iv.Start + 1
}

// Queue is an unbounded, FIFO, multi-producer/multi-consumer interval
// queue. Push never blocks; Pop blocks until an interval is available or
// the context is canceled.
type Queue struct {
	mu      sync.Mutex
	items   *list.List
	notify  chan struct{}
	metrics *metrics.Sink
}

// New creates an empty Queue.
func New(sink *metrics.Sink) *Queue {
	return &Queue{
		items:   list.New(),
		notify:  make(chan struct{}, 1),
		metrics: sink,
	}
}

// Push enqueues an interval. Never blocks.
func (q *Queue) Push(iv Interval) {
	q.mu.Lock()
	q.items.PushBack(iv)
	depth := q.items.Len()
	q.mu.Unlock()

	q.metrics.QueueDepth.Set(float64(depth))

	// Non-blocking wake-up: if a Pop is already waiting, let it through;
	// if the buffer already holds a pending signal, there's nothing to add.
	select {
	case q.notify <- struct{}{}:
	default:
	}
}

// Pop removes and returns the oldest interval, blocking until one is
// available or ctx is canceled.
func (q *Queue) Pop(ctx context.Context) (Interval, error) {
	for {
		q.mu.Lock()
		front := q.items.Front()
		if front != nil {
			q.items.Remove(front)
			depth := q.items.Len()
			q.mu.Unlock()
			q.metrics.QueueDepth.Set(float64(depth))
			return front.Value.(Interval), nil
		}
		q.mu.Unlock()

		select {
		case <-ctx.Done():
			return Interval{}, ctx.Err()
		case <-q.notify:
			// Something was pushed (or a prior waiter drained the buffer);
			// loop and try again. Multiple waiters may race here, which is
			// fine: the losers simply loop back to waiting.
		}
	}
}

// Len reports the current queue depth. Observational, for metrics/tests.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.items.Len()
}
