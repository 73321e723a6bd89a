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
	apphttp "economad/internal/http"
	applog "economad/internal/log"
	"economad/internal/metrics"
	"economad/internal/services"
	"economad/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(applog.ComponentApp)
	cfg := cli.LoadAndValidateConfig(logger)

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
		logger.Error("Failed to create backend", "error", err, "backend", bcfg.Type)
		os.Exit(1)
	}
	defer func() {
		if err := res.Cleanup(); err != nil {
			logger.Error("Failed to close backend", "error", err)
		}
	}()

	m := metrics.New()
	publisher, closePublisher := factory.CreatePublisher(bcfg)
	if closePublisher != nil {
		defer func() { _ = closePublisher() }()
	}

	svc := services.NewExpenseService(res.Backend, publisher, m)
	if salary, ok := cfg.SalaryAmount(); ok {
		if err := svc.SeedSalary(ctx, salary); err != nil {
			logger.Error("Failed to seed salary", "error", err)
			os.Exit(1)
		}
	}

	srv := apphttp.NewServer(":"+cfg.Port, svc, m, apphttp.Options{
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		Logger:             logger.WithComponent(applog.ComponentHTTP),
	})

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting economad server", "port", cfg.Port, "backend", bcfg.Type)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	// Without a broker nothing else reads the sync backlog, so the server
	// drains it itself.
	if publisher == nil {
		writer, err := factory.CreateSheetWriter(ctx, bcfg)
		if err != nil {
			logger.Error("Failed to create sheet writer", "error", err)
			os.Exit(1)
		}
		sw := worker.NewSyncWorker(res.Backend, writer, m, cfg.SyncBatchSize)
		g.Go(func() error {
			return sw.RunPending(gctx, cfg.SyncInterval)
		})
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Server error", "error", err)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}
