package retry

import (
	"sync"
)

type Decision int

const (
	DecisionRetry     Decision = iota // Schedule another attempt
	DecisionExhausted                 // Give up on the target
)

func (d Decision) String() string {
	switch d {
	case DecisionRetry:
		return "RETRY"
	case DecisionExhausted:
		return "EXHAUSTED"
	default:
		return "UNKNOWN"
	}
}

// Tracker counts consecutive failed attempts across every target.
type Tracker struct {
	mutex    sync.Mutex
	failures int
}

func NewTracker() *Tracker {
	return &Tracker{}
}

// RecordFailure counts a failed attempt and returns the new count.
func (t *Tracker) RecordFailure() int {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	t.failures++
	return t.failures
}

func (t *Tracker) RecordSuccess() {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	t.failures = 0
}

// Reset clears the count after an exhausted target has been abandoned.
func (t *Tracker) Reset() {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	t.failures = 0
}

// Failures returns the number of consecutive failures.
func (t *Tracker) Failures() int {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	return t.failures
}
