package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lineupwatch/lineup-tracker/internal/app"
	"github.com/lineupwatch/lineup-tracker/internal/config"
	"github.com/lineupwatch/lineup-tracker/internal/observability"
	"github.com/lineupwatch/lineup-tracker/internal/platform/logging"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := logging.NewJSON(cfg.LogLevel)
	logging.SetDefault(logger)

	shutdownTracing, err := observability.InitUptrace(cfg, logger)
	if err != nil {
		logger.Error("init tracing", "error", err)
		os.Exit(1)
	}

	stopProfiler, err := observability.InitPyroscope(cfg, logger)
	if err != nil {
		logger.Error("init profiler", "error", err)
		os.Exit(1)
	}

	pprofSrv, err := observability.StartPprofServer(cfg, logger)
	if err != nil {
		logger.Error("start pprof server", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("build app", "error", err)
		os.Exit(1)
	}

	if err := application.Notifier.Announce(ctx, "Lineup monitoring started.", time.Now()); err != nil {
		logger.Warn("startup notice failed", "error", err)
	}

	go func() {
		logger.Info("http server starting", "addr", cfg.HTTPAddr)
		if err := application.HTTPServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server failed", "error", err)
			stop()
		}
	}()

	if application.Export != nil {
		go func() {
			if err := application.Export.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("export loop failed", "error", err)
			}
		}()
	}

	if err := application.Schedule.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("schedule loop failed", "error", err)
	}

	noticeCtx, noticeCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	if err := application.Notifier.Announce(noticeCtx, "Lineup monitoring stopped.", time.Now()); err != nil {
		logger.Warn("shutdown notice failed", "error", err)
	}
	noticeCancel()

	if err := application.ShutdownHTTP(shutdownTimeout); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}

	if err := application.Close(); err != nil {
		logger.Error("close resources", "error", err)
	}

	if err := observability.StopPprofServer(pprofSrv, logger, shutdownTimeout); err != nil {
		logger.Error("stop pprof server", "error", err)
	}
	if err := stopProfiler(); err != nil {
		logger.Error("stop profiler", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Error("flush traces", "error", err)
	}

	logger.Info("monitor stopped")
}
