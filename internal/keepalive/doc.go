// Package keepalive implements the keep-alive pinger: a service that
// periodically issues HTTP GET requests to a fixed list of endpoints so that
// an idle free-tier host is never suspended.
//
// Each ping cycle visits the endpoints strictly in order, waiting for every
// ping (and its retries) to finish before the next endpoint is contacted.
// A failed attempt is retried after the configured delay until the number of
// consecutive failures exceeds MaxRetries. What happens then is set by
// OnExhaustion:
//
//   - ExhaustionStop: the cycle is finished and the whole service stops
//   - ExhaustionSkip: the endpoint is abandoned for this cycle only
//
// Timers come from an injected clock.Clock and requests from an injected
// Prober, so tests can drive the service deterministically:
//
//	clk := clock.NewManual(time.Now())
//	svc, _ := keepalive.New(cfg, keepalive.WithClock(clk))
//	svc.Start(ctx)
//	clk.BlockUntil(1) // first cycle done, interval timer armed
//	clk.Advance(cfg.PingInterval)
//
// All counters live in a single State guarded by the service mutex; the
// service goroutine and the public methods never mutate it concurrently.
package keepalive
