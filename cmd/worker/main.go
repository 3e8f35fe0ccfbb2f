package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sani-e-zehra/book-rag/internal/bootstrap"
	"github.com/sani-e-zehra/book-rag/internal/config"
	"github.com/sani-e-zehra/book-rag/internal/observability/logging"
	"github.com/sani-e-zehra/book-rag/internal/observability/metrics"
)

var errNoContent = errors.New("no content loaded")

func main() {
	cfg := config.Load()
	logger := logging.NewJSONLogger("worker", cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := bootstrap.New(cfg, logger)
	defer app.Close()

	workerMetrics := metrics.NewWorkerMetrics("worker")
	metricsServer := &http.Server{
		Addr:    ":" + cfg.WorkerMetricsPort,
		Handler: workerMetrics.Handler(),
	}
	go func() {
		logger.Info("worker metrics listening", "port", cfg.WorkerMetricsPort)
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("worker metrics server error", "error", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}()

	runReindex := func(runCtx context.Context, reason string, force bool) error {
		workerMetrics.StartReindex()
		start := time.Now()

		before := app.Index.Count(runCtx)
		var loaded bool
		if force {
			loaded = app.Loader.Reload(runCtx)
		} else {
			loaded = app.Loader.EnsureDataLoaded(runCtx)
		}
		after := app.Index.Count(runCtx)
		workerMetrics.ObserveLoadedChunks("worker", after-before)

		var err error
		if !loaded {
			err = errNoContent
		}
		workerMetrics.FinishReindex("worker", time.Since(start), err)
		logger.Info("reindex finished", "reason", reason, "loaded", loaded, "points", after)
		return nil
	}

	// seed the collection before taking requests
	_ = runReindex(ctx, "startup", false)

	if app.Queue == nil {
		logger.Warn("nats unavailable, worker idles until shutdown")
		<-ctx.Done()
		return
	}

	logger.Info("worker subscribed", "subject", cfg.NATSSubject)
	err := app.Queue.SubscribeReindexRequested(ctx, func(handlerCtx context.Context, reason string) error {
		reindexCtx, cancel := context.WithTimeout(handlerCtx, 10*time.Minute)
		defer cancel()
		return runReindex(reindexCtx, reason, true)
	})
	if err != nil && ctx.Err() == nil {
		log.Fatalf("worker subscribe error: %v", err)
	}
}
