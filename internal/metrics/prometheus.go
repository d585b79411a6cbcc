package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "keepalive"

type exporter struct {
	attempts    *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	statusCodes *prometheus.CounterVec
	consecutive *prometheus.GaugeVec
	active      prometheus.Gauge
	dropped     prometheus.Counter
}

func newExporter(reg prometheus.Registerer) *exporter {
	factory := promauto.With(reg)

	return &exporter{
		// attempts counts ping attempts by endpoint and result.
		attempts: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ping_attempts_total",
			Help:      "Total number of ping attempts, retries included",
		}, []string{"endpoint", "result"}),

		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "ping_duration_seconds",
			Help:      "Ping round-trip time in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"endpoint"}),

		statusCodes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ping_status_codes_total",
			Help:      "HTTP status codes returned to ping attempts",
		}, []string{"endpoint", "code"}),

		consecutive: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "consecutive_failures",
			Help:      "Consecutive failed attempts of the endpoint being retried",
		}, []string{"endpoint"}),

		active: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "service_active",
			Help:      "1 while the keep-alive service is running",
		}),

		dropped: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dropped_events_total",
			Help:      "Metric events dropped because the buffer was full",
		}),
	}
}

func (e *exporter) observe(event MetricEvent) {
	switch event.Type {
	case EventAttempt:
		result := "failure"
		if event.Success {
			result = "success"
		}
		e.attempts.WithLabelValues(event.Endpoint, result).Inc()

		if event.Duration > 0 {
			e.duration.WithLabelValues(event.Endpoint).Observe(event.Duration.Seconds())
		}
		if event.StatusCode != 0 {
			e.statusCodes.WithLabelValues(event.Endpoint, strconv.Itoa(event.StatusCode)).Inc()
		}

	case EventConsecutiveFailures:
		e.consecutive.WithLabelValues(event.Endpoint).Set(float64(event.Failures))

	case EventActiveChanged:
		if event.Active {
			e.active.Set(1)
		} else {
			e.active.Set(0)
		}
	}
}
