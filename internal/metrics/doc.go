// Package metrics collects statistics about keep-alive ping attempts.
//
// It uses a channel-based event pipeline to asynchronously collect:
//   - Attempt, success and failure counts per endpoint
//   - Response times with percentile calculations (P50, P95, P99)
//   - HTTP status code distribution
//   - Endpoint health and consecutive failures
//
// Every event is also exported through Prometheus collectors registered on
// the Registerer given to NewCollector.
//
// Example usage:
//
//	collector := metrics.NewCollector(1000, prometheus.DefaultRegisterer, logger)
//	collector.Start(ctx)
//
//	svc, _ := keepalive.New(cfg, keepalive.WithRecorder(collector))
//
//	// Get metrics snapshot
//	snapshot := collector.Snapshot()
//
// Recording never blocks the ping loop: when the buffer is full the event is
// dropped and counted. On shutdown the collector drains buffered events.
package metrics
