package metrics

import (
	"context"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type EventType string

const (
	EventAttempt             EventType = "attempt"
	EventConsecutiveFailures EventType = "consecutive_failures"
	EventActiveChanged       EventType = "active_changed"
)

type MetricEvent struct {
	Type       EventType
	Timestamp  time.Time
	Endpoint   string
	Duration   time.Duration
	StatusCode int
	Success    bool
	Failures   int
	Active     bool
}

// Collector implements keepalive.Recorder.
type Collector struct {
	eventCh  chan MetricEvent
	metrics  *Metrics
	exporter *exporter
	logger   *slog.Logger
}

func NewCollector(bufferSize int, reg prometheus.Registerer, logger *slog.Logger) *Collector {
	return &Collector{
		eventCh:  make(chan MetricEvent, bufferSize),
		metrics:  NewMetrics(),
		exporter: newExporter(reg),
		logger:   logger,
	}
}

func (c *Collector) Start(ctx context.Context) {
	go c.run(ctx)
}

func (c *Collector) run(ctx context.Context) {
	c.logger.Info("Metrics collector started")
	defer c.logger.Info("Metrics collector stopped")

	for {
		select {
		case event := <-c.eventCh:
			c.processEvent(event)
		case <-ctx.Done():
			// Drain remaining events before shutdown
			c.drain()
			return
		}
	}
}

func (c *Collector) RecordAttempt(endpoint string, duration time.Duration, statusCode int, success bool) {
	c.emit(MetricEvent{
		Type:       EventAttempt,
		Timestamp:  time.Now(),
		Endpoint:   endpoint,
		Duration:   duration,
		StatusCode: statusCode,
		Success:    success,
	})
}

func (c *Collector) RecordConsecutiveFailures(endpoint string, failures int) {
	c.emit(MetricEvent{
		Type:      EventConsecutiveFailures,
		Timestamp: time.Now(),
		Endpoint:  endpoint,
		Failures:  failures,
	})
}

func (c *Collector) SetActive(active bool) {
	c.emit(MetricEvent{
		Type:      EventActiveChanged,
		Timestamp: time.Now(),
		Active:    active,
	})
}

func (c *Collector) emit(event MetricEvent) {
	select {
	case c.eventCh <- event:
	default:
		c.metrics.IncrementDropped()
		c.exporter.dropped.Inc()
		c.logger.Debug("Metric event dropped", slog.String("type", string(event.Type)))
	}
}

func (c *Collector) processEvent(event MetricEvent) {
	switch event.Type {
	case EventAttempt:
		c.metrics.RecordAttempt(event.Endpoint, event.Duration, event.StatusCode, event.Success)

	case EventConsecutiveFailures:
		c.metrics.SetConsecutiveFailures(event.Endpoint, event.Failures)

	case EventActiveChanged:
		c.metrics.SetActive(event.Active)
	}

	c.exporter.observe(event)
}

func (c *Collector) drain() {
	for {
		select {
		case event := <-c.eventCh:
			c.processEvent(event)
		default:
			return
		}
	}
}

func (c *Collector) Snapshot() Snapshot {
	return c.metrics.Snapshot()
}
