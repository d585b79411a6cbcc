package stress

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"golang.org/x/sync/errgroup"
)

// Runner executes the four test phases against one API.
type Runner struct {
	cfg    Config
	client *Client
	stats  *Stats
	logger *slog.Logger
	pick   func(n int) int
}

type RunnerOption func(*Runner)

func WithLogger(logger *slog.Logger) RunnerOption {
	return func(r *Runner) {
		r.logger = logger
	}
}

// WithPicker replaces the random choice of search queries and movie IDs.
func WithPicker(pick func(n int) int) RunnerOption {
	return func(r *Runner) {
		r.pick = pick
	}
}

func WithClient(c *Client) RunnerOption {
	return func(r *Runner) {
		r.client = c
	}
}

func NewRunner(cfg Config, stats *Stats, opts ...RunnerOption) (*Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid stress config: %w", err)
	}

	r := &Runner{
		cfg:    cfg,
		stats:  stats,
		logger: slog.Default(),
		pick:   rand.IntN,
	}

	for _, opt := range opts {
		opt(r)
	}

	if r.client == nil {
		r.client = NewClient(cfg.BaseURL, cfg.RequestTimeout, stats, WithRateLimit(cfg.RequestsPerSecond))
	}

	return r, nil
}

// Run executes every phase and always returns a report. The error is set
// when authentication or a basic endpoint failed, in which case the later
// phases are skipped.
func (r *Runner) Run(ctx context.Context) (Report, error) {
	r.logger.Info("Stress test starting",
		slog.String("target", r.cfg.BaseURL),
		slog.Int("concurrent_users", r.cfg.ConcurrentUsers),
		slog.Int("requests_per_user", r.cfg.RequestsPerUser))

	start := time.Now()
	err := r.runPhases(ctx)
	elapsed := time.Since(start)

	if err != nil {
		r.logger.Error("Test suite failed", slog.String("error", err.Error()))
	}

	return NewReport(r.cfg, r.stats.Summarize(elapsed), err), err
}

func (r *Runner) runPhases(ctx context.Context) error {
	r.logger.Info("TEST 1: Authentication")
	if _, err := r.client.Login(ctx, r.cfg.Admin); err != nil {
		return err
	}
	token, err := r.client.Login(ctx, r.cfg.User)
	if err != nil {
		return err
	}
	r.logger.Info("Authentication successful for admin and user")

	r.logger.Info("TEST 2: Basic API Endpoints")
	if err := r.basicEndpoints(ctx, token); err != nil {
		return err
	}
	r.logger.Info("Basic endpoints working correctly")

	r.logger.Info("TEST 3: Concurrent User Load", slog.Int("users", r.cfg.ConcurrentUsers))
	r.concurrentUsers(ctx, token)
	r.logger.Info("Concurrent user test completed")

	r.logger.Info("TEST 4: Rapid Requests Stress Test", slog.Int("requests", r.cfg.RapidRequests))
	r.rapidBurst(ctx, token)
	r.logger.Info("Rapid requests completed")

	return nil
}

func (r *Runner) basicEndpoints(ctx context.Context, token string) error {
	if _, err := r.client.BrowseMovies(ctx, token); err != nil {
		return fmt.Errorf("browse: %w", err)
	}
	if _, err := r.client.SearchMovies(ctx, token, r.cfg.SearchQueries[0]); err != nil {
		return fmt.Errorf("search %q: %w", r.cfg.SearchQueries[0], err)
	}
	if _, err := r.client.MovieDetails(ctx, token, r.cfg.MovieIDs[0]); err != nil {
		return fmt.Errorf("details %s: %w", r.cfg.MovieIDs[0], err)
	}
	if _, err := r.client.Stats(ctx, token); err != nil {
		return fmt.Errorf("stats: %w", err)
	}
	return nil
}

func (r *Runner) concurrentUsers(ctx context.Context, token string) {
	g, gctx := errgroup.WithContext(ctx)

	for i := 1; i <= r.cfg.ConcurrentUsers; i++ {
		g.Go(func() error {
			start := time.Now()
			if err := r.simulateUser(gctx, token); err != nil {
				r.logger.Warn("User encountered errors", slog.Int("user", i), slog.String("error", err.Error()))
				return nil
			}
			r.logger.Info("User completed", slog.Int("user", i), slog.Duration("duration", time.Since(start)))
			return nil
		})
	}

	g.Wait()
}

// simulateUser stops at the first failed request.
func (r *Runner) simulateUser(ctx context.Context, token string) error {
	if _, err := r.client.BrowseMovies(ctx, token); err != nil {
		return err
	}
	if err := pause(ctx, r.cfg.BrowsePause); err != nil {
		return err
	}

	for range r.cfg.RequestsPerUser {
		query := r.cfg.SearchQueries[r.pick(len(r.cfg.SearchQueries))]
		if _, err := r.client.SearchMovies(ctx, token, query); err != nil {
			return err
		}
		if err := pause(ctx, r.cfg.QueryPause); err != nil {
			return err
		}
	}

	id := r.cfg.MovieIDs[r.pick(len(r.cfg.MovieIDs))]
	if _, err := r.client.MovieDetails(ctx, token, id); err != nil {
		return err
	}
	if err := pause(ctx, r.cfg.QueryPause); err != nil {
		return err
	}

	_, err := r.client.Stats(ctx, token)
	return err
}

func (r *Runner) rapidBurst(ctx context.Context, token string) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.RapidRequests)

	for range r.cfg.RapidRequests {
		g.Go(func() error {
			// failures are already in the stats
			r.client.BrowseMovies(gctx, token)
			return nil
		})
	}

	g.Wait()
}

func pause(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
