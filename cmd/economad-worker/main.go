package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"economad/internal/backend"
	"economad/internal/cli"
	applog "economad/internal/log"
	"economad/internal/metrics"
	"economad/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(applog.ComponentWorker)
	logger.Info("Starting economad-worker")

	cfg := cli.LoadAndValidateConfig(logger)
	if cfg.DataBackend != string(backend.SQLiteBackend) {
		logger.Error("The worker reads the shared SQLite database; set DATA_BACKEND=sqlite", "backend", cfg.DataBackend)
		os.Exit(1)
	}

	ctx, stop := cli.SignalContext(logger)
	defer stop()

	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", "error", err)
		os.Exit(1)
	}

	factory := backend.NewFactory(logger.Logger)
	res, err := factory.CreateBackend(ctx, bcfg)
	if err != nil {
		logger.Error("Failed to create backend", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := res.Cleanup(); err != nil {
			logger.Error("Failed to close backend", "error", err)
		}
	}()

	writer, err := factory.CreateSheetWriter(ctx, bcfg)
	if err != nil {
		logger.Error("Failed to create sheet writer", "error", err)
		os.Exit(1)
	}

	m := metrics.New()
	sw := worker.NewSyncWorker(res.Backend, writer, m, cfg.SyncBatchSize)

	g, gctx := errgroup.WithContext(ctx)

	if consumer := factory.CreateConsumer(bcfg); consumer != nil {
		defer func() { _ = consumer.Close() }()
		g.Go(func() error {
			return consumer.ConsumeExpenseSync(gctx, sw.HandleSyncMessage)
		})
	} else {
		logger.Info("AMQP not available, relying on periodic sync only")
	}

	g.Go(func() error {
		return sw.RunPending(gctx, cfg.SyncInterval)
	})

	// Metrics on PORT so the worker can be scraped like the server.
	metricsSrv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           m.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	g.Go(func() error {
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return metricsSrv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("Worker shutdown complete")
}
