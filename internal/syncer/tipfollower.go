package syncer

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/0xkanth/solana-confirmation-service/internal/app"
	"github.com/0xkanth/solana-confirmation-service/internal/metrics"
	"github.com/0xkanth/solana-confirmation-service/internal/queue"
)

// TipFollower periodically reads the chain tip and enqueues the interval
// between the previously observed tip and the new one, clamped to a
// configured maximum lookback depth.
//
// Structurally this is the teacher's runRealtime loop (ticker + select on
// ctx.Done()), adapted from single-block polling to clamp-and-split
// interval enqueueing. Like the teacher's Syncer, state read by the
// health endpoint (lastTip, healthy) is guarded by a mutex since it is
// written from the poll goroutine and read from HTTP handler goroutines.
type TipFollower struct {
	app       *app.App
	queue     *queue.Queue
	metrics   *metrics.Sink
	logger    zerolog.Logger
	interval  time.Duration
	depth     uint64
	preferred uint64

	mu      sync.RWMutex
	lastTip uint64
	primed  bool
	healthy bool
}

// Config configures the TipFollower.
type Config struct {
	PollInterval          time.Duration // MONITOR_INTERVAL_MS
	MonitoringDepth       uint64        // MONITORING_DEPTH
	PreferredIntervalSize uint64        // PREFERRED_INTERVAL_SIZE
}

// NewTipFollower creates a TipFollower. Call Prime before Run if the
// caller wants last_tip seeded deterministically (e.g. in tests); Run
// primes it automatically on first tick otherwise.
func NewTipFollower(a *app.App, q *queue.Queue, sink *metrics.Sink, logger zerolog.Logger, cfg Config) *TipFollower {
	return &TipFollower{
		app:       a,
		queue:     q,
		metrics:   sink,
		logger:    logger.With().Str("component", "tip_follower").Logger(),
		interval:  cfg.PollInterval,
		depth:     cfg.MonitoringDepth,
		preferred: cfg.PreferredIntervalSize,
		healthy:   true,
	}
}

// Prime seeds last_tip from the given tip, clamped by MonitoringDepth. It
// is idempotent after the first call.
func (t *TipFollower) Prime(tip uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.primed {
		return
	}
	t.lastTip = clampSub(tip, t.depth)
	t.primed = true
}

// LastTip returns the last observed tip. Per spec.md, last_tip is
// otherwise owned exclusively by this task; this accessor is read-only
// and used by the health endpoint and tests.
func (t *TipFollower) LastTip() uint64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.lastTip
}

// Healthy reports whether the most recent tip fetch succeeded.
func (t *TipFollower) Healthy() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.healthy
}

// Run executes the poll loop until ctx is canceled.
func (t *TipFollower) Run(ctx context.Context) {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.tick(ctx)
		}
	}
}

func (t *TipFollower) tick(ctx context.Context) {
	tip, err := t.app.CurrentTip(ctx)
	if err != nil {
		t.logger.Error().Err(err).Msg("failed to fetch tip, will retry next tick")
		t.mu.Lock()
		t.healthy = false
		t.mu.Unlock()
		return
	}

	t.Prime(tip)

	t.mu.Lock()
	lastTip := t.lastTip
	if tip <= lastTip {
		// Tip did not advance, or moved backwards (tolerated per spec.md
		// §8: "do not enqueue; last_tip unchanged").
		t.healthy = true
		t.mu.Unlock()
		return
	}

	start := lastTip + 1
	if clamped := clampSub(tip, t.depth); clamped > start {
		start = clamped
	}
	t.lastTip = tip
	t.healthy = true
	t.mu.Unlock()

	for _, iv := range Split(start, tip, t.preferred) {
		t.queue.Push(iv)
	}

	t.metrics.CurrentTip.Set(float64(tip))
}

// clampSub returns max(0, tip-depth) without underflowing uint64.
func clampSub(tip, depth uint64) uint64 {
	if depth >= tip {
		return 0
	}
	return tip - depth
}
