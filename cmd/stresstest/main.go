// Stresstest drives the MovieFlix API through authentication, basic endpoint
// checks, concurrent simulated users and a burst of rapid requests, then
// prints a graded summary.
//
// Usage:
//
//	go run ./cmd/stresstest -url http://localhost:8080 -users 10 -requests 5
//	API_URL=https://movieflix-moengage.onrender.com go run ./cmd/stresstest -out summary.json -csv results.csv
//
// Exit status is 1 when setup fails and 2 when any request failed.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/angeloszaimis/movieflix-keepalive/internal/stress"
	"github.com/angeloszaimis/movieflix-keepalive/pkg/logger"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	defaults := stress.DefaultConfig()

	baseURL := defaults.BaseURL
	if env := os.Getenv("API_URL"); env != "" {
		baseURL = env
	}

	fs := flag.NewFlagSet("stresstest", flag.ContinueOnError)
	var (
		url       = fs.String("url", baseURL, "API base URL (defaults to $API_URL)")
		users     = fs.Int("users", defaults.ConcurrentUsers, "Number of concurrent simulated users")
		requests  = fs.Int("requests", defaults.RequestsPerUser, "Searches per simulated user")
		rapid     = fs.Int("rapid", defaults.RapidRequests, "Requests in the rapid burst")
		rps       = fs.Float64("rps", 0, "Cap on requests per second (0 = unlimited)")
		timeout   = fs.Duration("timeout", defaults.RequestTimeout, "Per-request timeout")
		browse    = fs.Duration("browse-pause", defaults.BrowsePause, "Think time after browsing")
		pauseQ    = fs.Duration("query-pause", defaults.QueryPause, "Think time after a search or details lookup")
		queries   = fs.String("queries", strings.Join(defaults.SearchQueries, ","), "Comma separated search queries")
		movieIDs  = fs.String("movies", strings.Join(defaults.MovieIDs, ","), "Comma separated IMDb IDs")
		outJSON   = fs.String("out", "", "Write JSON summary to this file (optional)")
		outCSV    = fs.String("csv", "", "Write per-request CSV to this file (optional)")
		logLevel  = fs.String("log-level", "info", "Log level (debug, info, warn, error)")
		adminUser = fs.String("admin-user", defaults.Admin.Username, "Admin username")
		adminPass = fs.String("admin-password", defaults.Admin.Password, "Admin password")
		user      = fs.String("user", defaults.User.Username, "User username")
		userPass  = fs.String("user-password", defaults.User.Password, "User password")
	)
	if err := fs.Parse(args); err != nil {
		return 1
	}

	log := logger.New(os.Stderr, *logLevel, "dev", "stresstest", false)

	cfg := stress.Config{
		BaseURL:           *url,
		Admin:             stress.Credentials{Username: *adminUser, Password: *adminPass},
		User:              stress.Credentials{Username: *user, Password: *userPass},
		ConcurrentUsers:   *users,
		RequestsPerUser:   *requests,
		RapidRequests:     *rapid,
		SearchQueries:     splitList(*queries),
		MovieIDs:          splitList(*movieIDs),
		BrowsePause:       *browse,
		QueryPause:        *pauseQ,
		RequestTimeout:    *timeout,
		RequestsPerSecond: *rps,
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	stats := stress.NewStats()
	runner, err := stress.NewRunner(cfg, stats, stress.WithLogger(log))
	if err != nil {
		log.Error("Invalid configuration", slog.Any("err", err))
		return 1
	}

	report, runErr := runner.Run(ctx)
	report.Print(os.Stdout)

	if *outJSON != "" {
		if err := writeFile(*outJSON, report.WriteJSON); err != nil {
			log.Error("Failed to write JSON summary", slog.String("file", *outJSON), slog.Any("err", err))
			return 1
		}
		fmt.Printf("\nWrote JSON summary to %s\n", *outJSON)
	}

	if *outCSV != "" {
		write := func(w io.Writer) error { return stress.WriteCSV(w, stats.Samples()) }
		if err := writeFile(*outCSV, write); err != nil {
			log.Error("Failed to write CSV", slog.String("file", *outCSV), slog.Any("err", err))
			return 1
		}
		fmt.Printf("Wrote per-request CSV to %s\n", *outCSV)
	}

	switch {
	case runErr != nil:
		return 1
	case report.Failed > 0:
		return 2
	default:
		return 0
	}
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	if err := write(f); err != nil {
		f.Close()
		return err
	}

	return f.Close()
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
