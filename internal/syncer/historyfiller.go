package syncer

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/0xkanth/solana-confirmation-service/internal/app"
	"github.com/0xkanth/solana-confirmation-service/internal/queue"
)

// HistoryFillerConfig configures the worker pool.
type HistoryFillerConfig struct {
	Workers         int           // WORKERS_COUNT
	MinIntervalSize uint64        // MIN_INTERVAL_SIZE
	WorkerThrottle  time.Duration // WORKER_THROTTLE_MS, optional pacing after a successful scan
	RetryBackoff    time.Duration // sleep before re-queueing an interval after a transient RPC failure
}

// HistoryFiller owns a pool of worker goroutines, each pulling intervals
// from the queue, scanning them via the Application Logic, and
// re-queueing any gaps (or the whole interval, on RPC failure).
//
// This is the teacher's processBatch worker-pool idiom — goroutines over
// disjoint work synchronized via sync.WaitGroup — turned from a one-shot
// batch split into a long-lived pull-from-queue pool.
type HistoryFiller struct {
	app    *app.App
	queue  *queue.Queue
	logger zerolog.Logger
	cfg    HistoryFillerConfig
}

// NewHistoryFiller creates a HistoryFiller.
func NewHistoryFiller(a *app.App, q *queue.Queue, logger zerolog.Logger, cfg HistoryFillerConfig) *HistoryFiller {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	return &HistoryFiller{
		app:    a,
		queue:  q,
		logger: logger.With().Str("component", "history_filler").Logger(),
		cfg:    cfg,
	}
}

// Run starts cfg.Workers worker goroutines and blocks until ctx is
// canceled and every worker has exited its current iteration.
func (h *HistoryFiller) Run(ctx context.Context) {
	var wg sync.WaitGroup
	for i := 0; i < h.cfg.Workers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			h.worker(ctx, id)
		}(i)
	}
	wg.Wait()
}

func (h *HistoryFiller) worker(ctx context.Context, id int) {
	log := h.logger.With().Int("worker", id).Logger()
	for {
		iv, err := h.queue.Pop(ctx)
		if err != nil {
			// Context canceled: cooperative shutdown, not an error.
			return
		}

		h.scanOne(ctx, log, iv)
	}
}

// scanOne processes a single interval: scan, on success enqueue gaps, on
// transient failure back off and re-queue the whole interval.
func (h *HistoryFiller) scanOne(ctx context.Context, log zerolog.Logger, iv queue.Interval) {
	confirmedSlots, err := h.app.RangeConfirmed(ctx, iv.Start, iv.End)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return
		}
		log.Warn().Err(err).Uint64("start", iv.Start).Uint64("end", iv.End).Msg("scan failed, requeueing interval")
		if h.cfg.RetryBackoff > 0 {
			select {
			case <-ctx.Done():
				return
			case <-time.After(h.cfg.RetryBackoff):
			}
		}
		h.queue.Push(iv)
		return
	}

	for _, gap := range Gaps(iv, confirmedSlots, h.cfg.MinIntervalSize) {
		h.queue.Push(gap)
	}

	log.Debug().
		Uint64("start", iv.Start).
		Uint64("end", iv.End).
		Int("confirmed", len(confirmedSlots)).
		Msg("scanned interval")

	if h.cfg.WorkerThrottle > 0 {
		select {
		case <-ctx.Done():
		case <-time.After(h.cfg.WorkerThrottle):
		}
	}
}
