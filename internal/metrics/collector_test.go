package metrics_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/angeloszaimis/movieflix-keepalive/internal/metrics"
)

var _ = Describe("Collector", func() {
	var (
		collector *metrics.Collector
		registry  *prometheus.Registry
		log       *slog.Logger
		ctx       context.Context
		cancel    context.CancelFunc
	)

	BeforeEach(func() {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
		registry = prometheus.NewRegistry()
		ctx, cancel = context.WithCancel(context.Background())
		collector = metrics.NewCollector(100, registry, log)
	})

	AfterEach(func() {
		cancel()
	})

	Describe("Start and event processing", func() {
		It("should process attempts", func() {
			collector.Start(ctx)

			collector.RecordAttempt("Backend Ping", 20*time.Millisecond, 200, true)
			collector.RecordAttempt("Backend Ping", 30*time.Millisecond, 503, false)

			Eventually(func() int64 {
				return collector.Snapshot().Endpoints["Backend Ping"].Attempts
			}).Should(Equal(int64(2)))

			Expect(collector.Snapshot().Endpoints["Backend Ping"].Failures).To(Equal(int64(1)))
		})

		It("should process consecutive failures", func() {
			collector.Start(ctx)

			collector.RecordAttempt("Frontend", 0, 0, false)
			collector.RecordConsecutiveFailures("Frontend", 1)

			Eventually(func() int {
				return collector.Snapshot().Endpoints["Frontend"].ConsecutiveFailures
			}).Should(Equal(1))
		})

		It("should process active changes", func() {
			collector.Start(ctx)

			collector.SetActive(true)

			Eventually(func() bool {
				return collector.Snapshot().Active
			}).Should(BeTrue())
		})
	})

	Describe("Prometheus export", func() {
		It("should count attempts by result", func() {
			collector.Start(ctx)

			collector.RecordAttempt("Backend Ping", 20*time.Millisecond, 200, true)
			collector.RecordAttempt("Backend Ping", 20*time.Millisecond, 200, true)
			collector.RecordAttempt("Backend Ping", 0, 0, false)

			Eventually(func() (int, error) {
				return testutil.GatherAndCount(registry, "keepalive_ping_attempts_total")
			}).Should(Equal(2))

			Eventually(func() (float64, error) {
				return gatherValue(registry, "keepalive_ping_attempts_total", map[string]string{
					"endpoint": "Backend Ping",
					"result":   "success",
				})
			}).Should(Equal(2.0))

			Eventually(func() (float64, error) {
				return gatherValue(registry, "keepalive_ping_attempts_total", map[string]string{
					"endpoint": "Backend Ping",
					"result":   "failure",
				})
			}).Should(Equal(1.0))
		})

		It("should track the active gauge", func() {
			collector.Start(ctx)

			collector.SetActive(true)
			Eventually(func() (float64, error) {
				return gatherValue(registry, "keepalive_service_active", nil)
			}).Should(Equal(1.0))

			collector.SetActive(false)
			Eventually(func() (float64, error) {
				return gatherValue(registry, "keepalive_service_active", nil)
			}).Should(Equal(0.0))
		})

		It("should register on the given registry only", func() {
			other := prometheus.NewRegistry()
			Expect(func() {
				metrics.NewCollector(10, other, log)
			}).NotTo(Panic())
		})
	})

	Describe("Backpressure", func() {
		It("should drop events when the buffer is full", func() {
			small := metrics.NewCollector(1, prometheus.NewRegistry(), log)

			small.RecordAttempt("Frontend", time.Millisecond, 200, true)
			small.RecordAttempt("Frontend", time.Millisecond, 200, true)
			small.RecordAttempt("Frontend", time.Millisecond, 200, true)

			Expect(small.Snapshot().Dropped).To(Equal(int64(2)))
		})
	})

	Describe("Shutdown", func() {
		It("should drain buffered events", func() {
			collector.RecordAttempt("Frontend", time.Millisecond, 200, true)
			collector.RecordAttempt("Frontend", time.Millisecond, 200, true)

			cancel()
			collector.Start(ctx)

			Eventually(func() int64 {
				return collector.Snapshot().TotalAttempts
			}).Should(Equal(int64(2)))
		})
	})

	Describe("Handler", func() {
		It("should serve the snapshot as JSON", func() {
			collector.Start(ctx)
			collector.RecordAttempt("Backend Health", 40*time.Millisecond, 200, true)

			Eventually(func() int64 {
				return collector.Snapshot().TotalAttempts
			}).Should(Equal(int64(1)))

			rec := httptest.NewRecorder()
			collector.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/stats", nil))

			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(rec.Header().Get("Content-Type")).To(Equal("application/json"))

			var snap metrics.Snapshot
			Expect(json.Unmarshal(rec.Body.Bytes(), &snap)).To(Succeed())
			Expect(snap.TotalAttempts).To(Equal(int64(1)))
			Expect(snap.Endpoints).To(HaveKey("Backend Health"))
		})
	})
})

func gatherValue(reg *prometheus.Registry, name string, labels map[string]string) (float64, error) {
	families, err := reg.Gather()
	if err != nil {
		return 0, err
	}

	for _, family := range families {
		if family.GetName() != name {
			continue
		}

	metricLoop:
		for _, metric := range family.GetMetric() {
			for _, pair := range metric.GetLabel() {
				if want, ok := labels[pair.GetName()]; ok && want != pair.GetValue() {
					continue metricLoop
				}
			}

			switch {
			case metric.GetCounter() != nil:
				return metric.GetCounter().GetValue(), nil
			case metric.GetGauge() != nil:
				return metric.GetGauge().GetValue(), nil
			}
		}
	}

	return -1, nil
}
