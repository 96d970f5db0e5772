// Main slot confirmation service.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/0xkanth/solana-confirmation-service/internal/app"
	"github.com/0xkanth/solana-confirmation-service/internal/cache"
	"github.com/0xkanth/solana-confirmation-service/internal/config"
	"github.com/0xkanth/solana-confirmation-service/internal/httpapi"
	"github.com/0xkanth/solana-confirmation-service/internal/metrics"
	"github.com/0xkanth/solana-confirmation-service/internal/queue"
	"github.com/0xkanth/solana-confirmation-service/internal/rpc"
	"github.com/0xkanth/solana-confirmation-service/internal/syncer"
	"github.com/0xkanth/solana-confirmation-service/internal/util"
)

func main() {
	logger := util.InitLogger()
	logger.Info().Msg("starting solana confirmation service")

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load configuration")
	}
	util.UpdateLogLevel(logger, cfg.LogLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rpcClient, err := rpc.Dial(ctx, cfg.SolanaRPCURL, cfg.RPCTimeout)
	if err != nil {
		logger.Fatal().Err(err).Str("url", cfg.SolanaRPCURL).Msg("failed to dial rpc endpoint")
	}
	defer rpcClient.Close()
	logger.Info().Str("url", cfg.SolanaRPCURL).Msg("dialed rpc endpoint")

	reg := prometheus.NewRegistry()
	sink := metrics.New(reg)

	confirmCache, err := cache.New(cfg.CacheCapacity, sink)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create confirmation cache")
	}

	a := app.New(confirmCache, rpcClient, sink, logger)
	q := queue.New(sink)

	tipFollower := syncer.NewTipFollower(a, q, sink, logger, syncer.Config{
		PollInterval:          cfg.MonitorInterval,
		MonitoringDepth:       cfg.MonitoringDepth,
		PreferredIntervalSize: cfg.PreferredIntervalSize,
	})

	historyFiller := syncer.NewHistoryFiller(a, q, logger, syncer.HistoryFillerConfig{
		Workers:         cfg.WorkersCount,
		MinIntervalSize: cfg.MinIntervalSize,
		WorkerThrottle:  cfg.WorkerThrottle,
		RetryBackoff:    cfg.WorkerBackoff,
	})

	// Seed last_tip before either background task starts so the tip
	// follower's first tick enqueues from a known starting point.
	initialTip := a.PrimeTip(ctx)
	tipFollower.Prime(initialTip)
	logger.Info().Uint64("tip", initialTip).Msg("primed initial tip")

	httpServer := &http.Server{
		Addr:    cfg.HTTPAddress,
		Handler: httpapi.NewRouter(a, logger),
	}
	metricsServer := &http.Server{
		Addr:    cfg.MetricsAddress,
		Handler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
	}
	healthServer := &http.Server{
		Addr:    cfg.HealthAddress,
		Handler: httpapi.NewHealthHandler(tipFollower, q.Len),
	}

	go func() {
		logger.Info().Str("address", cfg.HTTPAddress).Msg("starting query server")
		if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("query server error")
		}
	}()
	go func() {
		logger.Info().Str("address", cfg.MetricsAddress).Msg("starting metrics server")
		if err := metricsServer.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("metrics server error")
		}
	}()
	go func() {
		logger.Info().Str("address", cfg.HealthAddress).Msg("starting health check server")
		if err := healthServer.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("health check server error")
		}
	}()

	go tipFollower.Run(ctx)
	go historyFiller.Run(ctx)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	sig := <-sigChan
	logger.Info().Str("signal", sig.String()).Msg("received shutdown signal")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("query server shutdown error")
	}
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("metrics server shutdown error")
	}
	if err := healthServer.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("health server shutdown error")
	}

	logger.Info().Msg("shutdown complete")
}
