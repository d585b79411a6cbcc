package keepalive

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/angeloszaimis/movieflix-keepalive/internal/clock"
	"github.com/angeloszaimis/movieflix-keepalive/internal/endpoint"
	"github.com/angeloszaimis/movieflix-keepalive/internal/probe"
	"github.com/angeloszaimis/movieflix-keepalive/internal/retry"
)

// Prober performs one HTTP attempt. *probe.Prober is the production
// implementation.
type Prober interface {
	Probe(ctx context.Context, target *url.URL) (probe.Response, error)
}

// Service periodically pings the configured endpoints.
type Service struct {
	cfg      Config
	prober   Prober
	clock    clock.Clock
	logger   *slog.Logger
	recorder Recorder
	trackers []*endpoint.Tracker
	policy   retry.Policy
	retries  *retry.Tracker

	// pingMutex serializes logical pings, retries included.
	pingMutex sync.Mutex

	mutex  sync.Mutex
	state  State
	cancel context.CancelFunc
	done   chan struct{}
}

type Option func(*Service)

func WithClock(c clock.Clock) Option {
	return func(s *Service) {
		s.clock = c
	}
}

func WithProber(p Prober) Option {
	return func(s *Service) {
		s.prober = p
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithRecorder(r Recorder) Option {
	return func(s *Service) {
		s.recorder = r
	}
}

// New validates cfg and returns a stopped Service.
func New(cfg Config, opts ...Option) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid keep-alive config: %w", err)
	}

	if cfg.OnExhaustion == "" {
		cfg.OnExhaustion = ExhaustionStop
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = probe.DefaultUserAgent
	}

	done := make(chan struct{})
	close(done)

	s := &Service{
		cfg:      cfg,
		clock:    clock.Real(),
		logger:   slog.Default(),
		recorder: nopRecorder{},
		policy:   retry.Policy{MaxRetries: cfg.MaxRetries, Delay: cfg.RetryDelay},
		retries:  retry.NewTracker(),
		done:     done,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.prober == nil {
		s.prober = probe.New(cfg.RequestTimeout, probe.WithUserAgent(cfg.UserAgent))
	}

	s.trackers = make([]*endpoint.Tracker, 0, len(cfg.Endpoints))
	for _, ep := range cfg.Endpoints {
		s.trackers = append(s.trackers, endpoint.NewTracker(ep))
	}

	return s, nil
}

// Start marks the service active, runs one ping cycle immediately and then
// one cycle every PingInterval until Stop is called, ctx is cancelled or
// retries are exhausted in stop mode. Calling Start on an active service
// only logs.
func (s *Service) Start(ctx context.Context) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.state.IsActive {
		s.logger.Warn("Keep-alive service is already running")
		return
	}

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	s.state.IsActive = true
	s.state.StartedAt = s.clock.Now()
	s.state.ConsecutiveFailures = 0
	s.retries.Reset()
	s.cancel = cancel
	s.done = done
	s.recorder.SetActive(true)

	s.logger.Info("Starting keep-alive service",
		slog.Int("endpoints", len(s.trackers)),
		slog.Duration("ping_interval", s.cfg.PingInterval),
		slog.Int("max_retries", s.cfg.MaxRetries),
		slog.Duration("retry_delay", s.cfg.RetryDelay),
		slog.Duration("request_timeout", s.cfg.RequestTimeout),
		slog.String("on_exhaustion", string(s.cfg.OnExhaustion)))

	go s.run(runCtx, done)
}

// Stop cancels the interval timer, any pending retry and any in-flight
// request, and returns once the service goroutine has exited. It must not
// be called from a Recorder.
func (s *Service) Stop() {
	s.mutex.Lock()

	if !s.state.IsActive {
		s.mutex.Unlock()
		s.logger.Info("Keep-alive service is not running")
		s.logStats("Keep-alive statistics")
		return
	}

	s.state.IsActive = false
	s.recorder.SetActive(false)
	s.cancel()
	done := s.done
	s.mutex.Unlock()

	<-done

	s.logger.Info("Keep-alive service stopped")
	s.logStats("Final statistics")
}

// Done is closed when the current run ends. It is already closed when the
// service has never been started.
func (s *Service) Done() <-chan struct{} {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.done
}

func (s *Service) IsActive() bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.state.IsActive
}

func (s *Service) run(ctx context.Context, done chan struct{}) {
	defer func() {
		s.mutex.Lock()
		if s.done == done && s.state.IsActive {
			// parent context cancelled
			s.state.IsActive = false
			s.recorder.SetActive(false)
		}
		s.mutex.Unlock()
		close(done)
	}()

	s.PingAll(ctx)

	for ctx.Err() == nil {
		timer := s.clock.NewTimer(s.cfg.PingInterval)

		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C():
			s.PingAll(ctx)
		}
	}
}

// PingAll visits every endpoint in order. Each ping, retries included,
// completes before the next endpoint is contacted. In stop mode an exhausted
// endpoint halts an active service once the cycle is over.
func (s *Service) PingAll(ctx context.Context) {
	s.logger.Info("Pinging endpoints", slog.Int("endpoints", len(s.trackers)))

	exhausted := false
	for _, t := range s.trackers {
		if ctx.Err() != nil {
			return
		}

		if _, ok := s.ping(ctx, t); !ok {
			exhausted = true
		}
	}

	if ctx.Err() != nil {
		return
	}

	s.logStats("Ping cycle complete")

	if exhausted && s.cfg.OnExhaustion == ExhaustionStop {
		s.halt()
	}
}

// PingOne pings ep, retrying per the retry policy, and returns the last
// attempt. ep does not have to be one of the configured endpoints. It waits
// for any ping already in progress, and in stop mode exhausting the retries
// halts an active service.
func (s *Service) PingOne(ctx context.Context, ep endpoint.Endpoint) PingResult {
	res, ok := s.ping(ctx, s.trackerFor(ep))
	if !ok && s.cfg.OnExhaustion == ExhaustionStop {
		s.halt()
	}
	return res
}

func (s *Service) trackerFor(ep endpoint.Endpoint) *endpoint.Tracker {
	for _, t := range s.trackers {
		other := t.Endpoint()
		if other.Name() == ep.Name() && other.URL().String() == ep.URL().String() {
			return t
		}
	}
	return endpoint.NewTracker(ep)
}

// ping returns false when the retry budget ran out.
func (s *Service) ping(ctx context.Context, t *endpoint.Tracker) (PingResult, bool) {
	s.pingMutex.Lock()
	defer s.pingMutex.Unlock()

	name := t.Endpoint().Name()

	var last PingResult
	err := retry.Do(ctx, s.clock, s.policy,
		func(attempt int) error {
			last = s.attempt(ctx, t, attempt)
			return last.Err
		},
		func(attempt int, _ error, delay time.Duration) {
			s.logger.Info("Scheduling retry",
				slog.String("endpoint", name),
				slog.String("decision", retry.DecisionRetry.String()),
				slog.Int("next_attempt", attempt+1),
				slog.Duration("delay", delay))
		})

	if !errors.Is(err, retry.ErrExhausted) {
		return last, true
	}

	s.logger.Error("Retry attempts exhausted",
		slog.String("endpoint", name),
		slog.String("decision", retry.DecisionExhausted.String()),
		slog.Int("attempts", last.Attempt),
		slog.Int("max_retries", s.cfg.MaxRetries),
		slog.String("action", string(s.cfg.OnExhaustion)))

	s.mutex.Lock()
	s.retries.Reset()
	s.state.ConsecutiveFailures = 0
	s.mutex.Unlock()

	return last, false
}

func (s *Service) attempt(ctx context.Context, t *endpoint.Tracker, attempt int) PingResult {
	ep := t.Endpoint()

	res, err := s.prober.Probe(ctx, ep.URL())
	result := PingResult{
		Endpoint:   ep,
		Attempt:    attempt,
		StatusCode: res.StatusCode,
		Duration:   res.Duration,
		Err:        err,
	}

	s.mutex.Lock()
	s.state.TotalPings++
	if err == nil {
		s.state.SuccessfulPings++
		s.retries.RecordSuccess()
	} else {
		s.state.FailedPings++
		s.retries.RecordFailure()
	}
	s.state.ConsecutiveFailures = s.retries.Failures()
	failures := s.state.ConsecutiveFailures
	s.mutex.Unlock()

	s.recorder.RecordAttempt(ep.Name(), res.Duration, res.StatusCode, err == nil)
	s.recorder.RecordConsecutiveFailures(ep.Name(), failures)

	if err == nil {
		s.logger.Info("Ping succeeded",
			slog.String("endpoint", ep.Name()),
			slog.Int("status", res.StatusCode),
			slog.Duration("duration", res.Duration),
			slog.Int("attempt", attempt))
	} else {
		s.logger.Warn("Ping failed",
			slog.String("endpoint", ep.Name()),
			slog.Int("status", res.StatusCode),
			slog.Duration("duration", res.Duration),
			slog.Int("attempt", attempt),
			slog.Int("consecutive_failures", failures),
			slog.String("error", err.Error()))
	}

	if t.Observe(err == nil, res.Duration, s.clock.Now()) {
		if err == nil {
			s.logger.Info("Endpoint is back up", slog.String("endpoint", ep.String()))
		} else {
			s.logger.Warn("Endpoint is down", slog.String("endpoint", ep.String()))
		}
	}

	return result
}

// halt stops an active run from inside the service goroutine.
func (s *Service) halt() {
	s.mutex.Lock()
	if !s.state.IsActive {
		s.mutex.Unlock()
		return
	}
	s.state.IsActive = false
	s.recorder.SetActive(false)
	s.cancel()
	s.mutex.Unlock()

	s.logger.Error("Keep-alive service stopped after retry exhaustion")
	s.logStats("Final statistics")
}

// Stats returns a snapshot of the counters and endpoint health.
func (s *Service) Stats() Stats {
	s.mutex.Lock()
	state := s.state
	s.mutex.Unlock()

	stats := Stats{
		State:     state,
		Endpoints: make([]endpoint.Status, 0, len(s.trackers)),
	}

	if state.TotalPings > 0 {
		stats.SuccessRate = float64(state.SuccessfulPings) / float64(state.TotalPings) * 100
	}

	if !state.StartedAt.IsZero() {
		stats.Uptime = s.clock.Now().Sub(state.StartedAt)
	}

	for _, t := range s.trackers {
		stats.Endpoints = append(stats.Endpoints, t.Status())
	}

	return stats
}

func (s *Service) logStats(msg string) {
	stats := s.Stats()
	s.logger.Info(msg,
		slog.Int("total_pings", stats.TotalPings),
		slog.Int("successful", stats.SuccessfulPings),
		slog.Int("failed", stats.FailedPings),
		slog.String("success_rate", fmt.Sprintf("%.1f%%", stats.SuccessRate)),
		slog.String("uptime", formatUptime(stats.Uptime)),
		slog.Bool("active", stats.IsActive))
}

var _ Prober = (*probe.Prober)(nil)
