package endpoint

import (
	"sync"
	"time"
)

const ewmaAlpha = 0.2

// Tracker records the observed health and response time of one endpoint.
type Tracker struct {
	endpoint  Endpoint
	mutex     sync.Mutex
	isHealthy bool
	lastCheck time.Time
	ewma      time.Duration
	hasEWMA   bool
}

// Status is a point-in-time view of a Tracker.
type Status struct {
	Name         string        `json:"name"`
	URL          string        `json:"url"`
	Healthy      bool          `json:"healthy"`
	LastChecked  time.Time     `json:"last_checked,omitempty"`
	ResponseTime time.Duration `json:"ewma_response_time"`
}

// NewTracker creates a tracker for ep. Endpoints start healthy so the first
// failure is reported as a transition.
func NewTracker(ep Endpoint) *Tracker {
	return &Tracker{
		endpoint:  ep,
		isHealthy: true,
	}
}

// Endpoint returns the tracked endpoint.
func (t *Tracker) Endpoint() Endpoint {
	return t.endpoint
}

// Observe records the outcome of an attempt made at when.
// Returns true if the health status changed.
func (t *Tracker) Observe(healthy bool, duration time.Duration, when time.Time) (changed bool) {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	t.lastCheck = when
	if healthy {
		t.recordResponse(duration)
	}

	if t.isHealthy == healthy {
		return false
	}

	t.isHealthy = healthy
	return true
}

// ewma = (1 - α) * ewma + α * latest
func (t *Tracker) recordResponse(duration time.Duration) {
	if !t.hasEWMA {
		t.ewma = duration
		t.hasEWMA = true
		return
	}
	t.ewma = time.Duration((1-ewmaAlpha)*float64(t.ewma) + ewmaAlpha*float64(duration))
}

// Status returns a snapshot of the tracker.
func (t *Tracker) Status() Status {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	return Status{
		Name:         t.endpoint.Name(),
		URL:          t.endpoint.URL().String(),
		Healthy:      t.isHealthy,
		LastChecked:  t.lastCheck,
		ResponseTime: t.ewma,
	}
}
