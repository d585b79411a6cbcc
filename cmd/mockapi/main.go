// Mockapi serves a small stand-in for the MovieFlix backend, used to run the
// keep-alive service and the stress test locally.
//
// Usage:
//
//	go run ./cmd/mockapi -port 8080
//	go run ./cmd/mockapi -port 8080 -fail-health   # health endpoints return 500
//
// Point the keep-alive service at it with BACKEND_URL=http://localhost:8080.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/angeloszaimis/movieflix-keepalive/internal/httpserver"
	"github.com/angeloszaimis/movieflix-keepalive/internal/mockapi"
	"github.com/angeloszaimis/movieflix-keepalive/pkg/logger"
)

func main() {
	port := flag.Int("port", 8080, "port to listen on")
	failHealth := flag.Bool("fail-health", false, "answer health endpoints with 500")
	latency := flag.Duration("latency", 0, "delay added to every request")
	logLevel := flag.String("log-level", "debug", "log level (debug, info, warn, error)")
	flag.Parse()

	log := logger.New(os.Stdout, *logLevel, "dev", "mockapi", false)

	handler := mockapi.NewHandler(mockapi.Options{
		FailHealth: *failHealth,
		Latency:    *latency,
		Logger:     log,
	})

	srv, err := httpserver.New(fmt.Sprintf(":%d", *port), handler)
	if err != nil {
		log.Error("Failed to create server", slog.Any("err", err))
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	srvErrCh := make(chan error, 1)
	go func() {
		srvErrCh <- srv.Start()
	}()

	log.Info("Mock API listening", slog.Int("port", *port), slog.Bool("fail_health", *failHealth))

	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
		if err := srv.Shutdown(context.Background()); err != nil {
			log.Error("Error during shutdown", slog.Any("err", err))
		}
	case err := <-srvErrCh:
		if err != nil {
			log.Error("Server failed", slog.Any("err", err))
			os.Exit(1)
		}
	}
}
