package main

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/angeloszaimis/movieflix-keepalive/config"
)

var _ = Describe("run", func() {
	var (
		status atomic.Int32
		hits   atomic.Int32
		server *httptest.Server
		cfg    *config.Config
		log    *slog.Logger
		ctx    context.Context
		cancel context.CancelFunc
	)

	BeforeEach(func() {
		status.Store(http.StatusOK)
		hits.Store(0)
		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits.Add(1)
			w.WriteHeader(int(status.Load()))
		}))

		cfg = &config.Config{
			Server:         config.ServerConfig{Environment: config.EnvDev},
			Logging:        config.LoggingConfig{Level: config.LogLevelInfo},
			Status:         config.StatusConfig{Address: "127.0.0.1:0"},
			PingInterval:   "10m",
			MaxRetries:     0,
			RetryDelay:     "1s",
			RequestTimeout: "5s",
			OnExhaustion:   "stop",
			Endpoints: []config.EndpointConfig{
				{Name: "Backend Ping", URL: server.URL + "/api/health/ping"},
				{Name: "Frontend", URL: server.URL},
			},
		}
		log = slog.New(slog.NewTextHandler(GinkgoWriter, nil))
		ctx, cancel = context.WithCancel(context.Background())
	})

	AfterEach(func() {
		cancel()
		server.Close()
	})

	start := func() <-chan int {
		result := make(chan int, 1)
		go func() {
			result <- run(ctx, cfg, log)
		}()
		return result
	}

	It("should exit 0 after a shutdown signal", func() {
		result := start()

		Eventually(hits.Load).Should(BeNumerically(">=", 2))
		Consistently(result, 50*time.Millisecond).ShouldNot(Receive())

		cancel()
		Eventually(result, 5*time.Second).Should(Receive(Equal(0)))
	})

	It("should exit 1 when retries are exhausted", func() {
		status.Store(http.StatusInternalServerError)

		result := start()

		Eventually(result, 5*time.Second).Should(Receive(Equal(1)))
		Expect(hits.Load()).To(Equal(int32(2)))
	})

	It("should exit 1 on an invalid ping interval", func() {
		cfg.PingInterval = "soon"

		Expect(run(ctx, cfg, log)).To(Equal(1))
		Expect(hits.Load()).To(BeZero())
	})
})
