package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/angeloszaimis/movieflix-keepalive/config"
	"github.com/angeloszaimis/movieflix-keepalive/internal/httpserver"
	"github.com/angeloszaimis/movieflix-keepalive/internal/keepalive"
	"github.com/angeloszaimis/movieflix-keepalive/internal/metrics"
	"github.com/angeloszaimis/movieflix-keepalive/pkg/logger"
)

const metricsBufferSize = 1000

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.Any("err", err))
		os.Exit(1)
	}

	log := logger.New(os.Stdout, cfg.Logging.Level, cfg.Server.Environment, "keepalive", false)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, cfg, log)
	cancel()

	os.Exit(code)
}

// run pings until ctx is cancelled (exit code 0) or the service stops on
// its own or the status server fails (exit code 1).
func run(ctx context.Context, cfg *config.Config, log *slog.Logger) int {
	kcfg, err := cfg.KeepAlive()
	if err != nil {
		log.Error("Invalid keep-alive configuration", slog.Any("err", err))
		return 1
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	collectorCtx, stopCollector := context.WithCancel(context.Background())
	defer stopCollector()

	collector := metrics.NewCollector(metricsBufferSize, registry, log.With(slog.String("component", "metrics")))
	collector.Start(collectorCtx)

	svc, err := keepalive.New(kcfg,
		keepalive.WithLogger(log.With(slog.String("component", "keepalive"))),
		keepalive.WithRecorder(collector),
	)
	if err != nil {
		log.Error("Failed to create keep-alive service", slog.Any("err", err))
		return 1
	}

	var srv *httpserver.Server
	srvErrCh := make(chan error, 1)

	if cfg.Status.Address != "" {
		srv, err = httpserver.New(cfg.Status.Address, setupRouter(svc, collector, registry))
		if err != nil {
			log.Error("Failed to create status server", slog.Any("err", err))
			return 1
		}

		if err := srv.Listen(); err != nil {
			log.Error("Failed to bind status server", slog.String("address", cfg.Status.Address), slog.Any("err", err))
			return 1
		}

		log.Info("Status server listening", slog.String("address", srv.Addr()))

		go func() {
			srvErrCh <- srv.Start()
		}()
	}

	// The run outlives the signal context so Stop can report final statistics.
	svc.Start(context.Background())

	exitCode := 0

	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
		svc.Stop()
	case <-svc.Done():
		log.Error("Keep-alive service stopped on its own, exiting")
		exitCode = 1
	case err := <-srvErrCh:
		if err != nil {
			log.Error("Status server failed", slog.Any("err", err))
			exitCode = 1
		}
		svc.Stop()
	}

	if srv != nil {
		if err := srv.Shutdown(context.Background()); err != nil {
			log.Error("Error during shutdown", slog.Any("err", err))
		}
	}

	return exitCode
}

var _ keepalive.Recorder = (*metrics.Collector)(nil)
