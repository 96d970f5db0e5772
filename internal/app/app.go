// Package app implements the Application Logic that mediates between
// clients, the confirmation cache, and the upstream RPC client. All
// external callers — the HTTP handler and the synchronizer — go through
// this layer so caching and metrics are applied uniformly.
package app

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/0xkanth/solana-confirmation-service/internal/cache"
	"github.com/0xkanth/solana-confirmation-service/internal/metrics"
	slotrpc "github.com/0xkanth/solana-confirmation-service/internal/rpc"
)

// Status is the outcome of an is_confirmed lookup.
type Status int

const (
	// NotConfirmed means a successful RPC lookup found the slot absent.
	NotConfirmed Status = iota
	// Confirmed means the slot is known confirmed, from cache or RPC.
	Confirmed
	// RPCFailure means the upstream RPC could not answer.
	RPCFailure
)

// ErrRPCFailure is returned alongside RPCFailure and wraps the underlying
// transport/protocol error for logging.
var ErrRPCFailure = errors.New("upstream rpc failure")

// RPCClient is the subset of rpc.Client the application depends on. It is
// an interface so tests can substitute a fake endpoint.
type RPCClient interface {
	GetSlot(ctx context.Context) (uint64, error)
	GetBlocks(ctx context.Context, start, end uint64) ([]uint64, error)
}

// App wires the confirmation cache, RPC client, and metrics sink behind
// the four operations spec.md assigns to the Application Logic layer.
type App struct {
	cache   *cache.Cache
	rpc     RPCClient
	metrics *metrics.Sink
	logger  zerolog.Logger
}

// New creates an App.
func New(c *cache.Cache, rpc RPCClient, sink *metrics.Sink, logger zerolog.Logger) *App {
	return &App{
		cache:   c,
		rpc:     rpc,
		metrics: sink,
		logger:  logger.With().Str("component", "app").Logger(),
	}
}

// IsConfirmed answers whether slot is confirmed, preferring the cache and
// falling back to a single-slot RPC lookup on miss. A cache hit never
// touches the network.
func (a *App) IsConfirmed(ctx context.Context, slot uint64) (Status, error) {
	start := time.Now()
	defer func() { a.metrics.ObserveIsConfirmed(time.Since(start)) }()

	if a.cache.Contains(slot) {
		return Confirmed, nil
	}

	rpcStart := time.Now()
	slots, err := a.rpc.GetBlocks(ctx, slot, slot)
	a.metrics.ObserveRPCCall(time.Since(rpcStart), err != nil)
	if err != nil {
		a.logger.Error().Err(err).Uint64("slot", slot).Msg("rpc failure checking slot")
		return RPCFailure, errors.Join(ErrRPCFailure, err)
	}

	if len(slots) > 0 && slots[0] == slot {
		a.cache.Insert(slot)
		return Confirmed, nil
	}
	return NotConfirmed, nil
}

// RangeConfirmed fetches confirmed slots in [start, end] from RPC and
// inserts every result into the cache. Used only by the synchronizer; the
// HTTP query path never calls this, since it always pays for an RPC round
// trip.
func (a *App) RangeConfirmed(ctx context.Context, start, end uint64) ([]uint64, error) {
	rpcStart := time.Now()
	slots, err := a.rpc.GetBlocks(ctx, start, end)
	a.metrics.ObserveRPCCall(time.Since(rpcStart), err != nil)
	if err != nil {
		a.logger.Error().Err(err).Uint64("start", start).Uint64("end", end).Msg("rpc failure scanning range")
		return nil, errors.Join(ErrRPCFailure, err)
	}

	a.cache.InsertMany(slots)
	return slots, nil
}

// CurrentTip returns the latest slot the upstream endpoint reports.
func (a *App) CurrentTip(ctx context.Context) (uint64, error) {
	rpcStart := time.Now()
	tip, err := a.rpc.GetSlot(ctx)
	a.metrics.ObserveRPCCall(time.Since(rpcStart), err != nil)
	if err != nil {
		a.logger.Error().Err(err).Msg("rpc failure fetching tip")
		return 0, errors.Join(ErrRPCFailure, err)
	}
	a.metrics.CurrentTip.Set(float64(tip))
	return tip, nil
}

// PrimeTip fetches the tip once at startup to seed the Tip Follower's
// last-observed-tip state. Unlike CurrentTip it retries on failure since
// the synchronizer cannot start without an initial value.
func (a *App) PrimeTip(ctx context.Context) uint64 {
	for {
		tip, err := a.CurrentTip(ctx)
		if err == nil {
			return tip
		}
		select {
		case <-ctx.Done():
			return 0
		case <-time.After(time.Second):
		}
	}
}

var _ RPCClient = (*slotrpc.Client)(nil)
