package keepalive

import (
	"fmt"
	"time"

	"github.com/angeloszaimis/movieflix-keepalive/internal/endpoint"
)

// State is owned by the Service and only mutated under its mutex.
type State struct {
	IsActive            bool      `json:"is_active"`
	ConsecutiveFailures int       `json:"consecutive_failures"`
	TotalPings          int       `json:"total_pings"`
	SuccessfulPings     int       `json:"successful_pings"`
	FailedPings         int       `json:"failed_pings"`
	StartedAt           time.Time `json:"started_at,omitempty"`
}

// Stats is a consistent snapshot of the service.
type Stats struct {
	State
	SuccessRate float64           `json:"success_rate"`
	Uptime      time.Duration     `json:"uptime"`
	Endpoints   []endpoint.Status `json:"endpoints"`
}

// PingResult describes one attempt.
type PingResult struct {
	Endpoint   endpoint.Endpoint
	Attempt    int
	StatusCode int
	Duration   time.Duration
	Err        error
}

func (r PingResult) Success() bool {
	return r.Err == nil
}

func formatUptime(d time.Duration) string {
	secs := int64(d / time.Second)
	return fmt.Sprintf("%dm %ds", secs/60, secs%60)
}
