package keepalive

import "time"

// Recorder receives every attempt made by the service. It is called from the
// service goroutine and must not block.
type Recorder interface {
	RecordAttempt(endpoint string, duration time.Duration, statusCode int, success bool)
	RecordConsecutiveFailures(endpoint string, failures int)
	SetActive(active bool)
}

type nopRecorder struct{}

func (nopRecorder) RecordAttempt(string, time.Duration, int, bool) {}
func (nopRecorder) RecordConsecutiveFailures(string, int)          {}
func (nopRecorder) SetActive(bool)                                 {}
