// Package metrics provides the Prometheus-backed Metrics Sink used by the
// cache, application logic, and synchronizer.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Sink is the Metrics Sink described in the design: counters and latency
// histograms for cache hits/misses, RPC call durations, query latencies,
// and gauges for cache size, current tip, and queue depth.
//
// Unlike the teacher's package-level promauto vars, Sink is an instance so
// tests can register it against an isolated registry instead of fighting
// over the global default registry.
type Sink struct {
	CacheHits      prometheus.Counter
	CacheMisses    prometheus.Counter
	RPCCallsTotal  prometheus.Counter
	RPCFailures    prometheus.Counter
	CacheSize      prometheus.Gauge
	CurrentTip     prometheus.Gauge
	QueueDepth     prometheus.Gauge
	IsConfirmedMs  prometheus.Histogram
	RPCCallLatency prometheus.Histogram
}

// New creates a Sink and registers all of its collectors against reg.
// Passing prometheus.NewRegistry() isolates the metrics for a test; passing
// prometheus.DefaultRegisterer wires them into the process-wide /metrics
// endpoint, the way the teacher exposes syncer metrics via promauto.
func New(reg prometheus.Registerer) *Sink {
	s := &Sink{
		CacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "slotconf_cache_hits_total",
			Help: "Number of is_confirmed queries answered from cache.",
		}),
		CacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "slotconf_cache_misses_total",
			Help: "Number of is_confirmed queries that missed the cache.",
		}),
		RPCCallsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "slotconf_rpc_calls_total",
			Help: "Total number of upstream RPC calls issued.",
		}),
		RPCFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "slotconf_rpc_failures_total",
			Help: "Total number of upstream RPC calls that failed.",
		}),
		CacheSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "slotconf_cache_size",
			Help: "Current number of entries in the confirmation cache.",
		}),
		CurrentTip: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "slotconf_current_tip",
			Help: "Most recently observed chain tip slot.",
		}),
		QueueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "slotconf_queue_depth",
			Help: "Number of intervals currently queued for scanning.",
		}),
		IsConfirmedMs: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "slotconf_is_confirmed_latency_ms",
			Help:    "Latency of is_confirmed calls in milliseconds.",
			Buckets: prometheus.ExponentialBuckets(1, 2, 14),
		}),
		RPCCallLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "slotconf_rpc_call_latency_ms",
			Help:    "Latency of upstream RPC calls in milliseconds.",
			Buckets: prometheus.ExponentialBuckets(1, 2, 14),
		}),
	}

	if reg != nil {
		reg.MustRegister(
			s.CacheHits,
			s.CacheMisses,
			s.RPCCallsTotal,
			s.RPCFailures,
			s.CacheSize,
			s.CurrentTip,
			s.QueueDepth,
			s.IsConfirmedMs,
			s.RPCCallLatency,
		)
	}

	return s
}

// ObserveIsConfirmed records the latency of an is_confirmed call.
func (s *Sink) ObserveIsConfirmed(d time.Duration) {
	s.IsConfirmedMs.Observe(float64(d.Milliseconds()))
}

// ObserveRPCCall records an RPC call's latency and whether it failed.
func (s *Sink) ObserveRPCCall(d time.Duration, failed bool) {
	s.RPCCallsTotal.Inc()
	s.RPCCallLatency.Observe(float64(d.Milliseconds()))
	if failed {
		s.RPCFailures.Inc()
	}
}
