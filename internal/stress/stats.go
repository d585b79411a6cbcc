package stress

import (
	"sort"
	"sync"
	"time"
)

const maxReportedErrors = 10

// Sample is one timed API request.
type Sample struct {
	Operation  string
	Detail     string
	Start      time.Time
	Duration   time.Duration
	StatusCode int
	Err        error
}

func (s Sample) Success() bool {
	return s.Err == nil
}

type ErrorRecord struct {
	Operation string `json:"operation"`
	Detail    string `json:"detail,omitempty"`
	Error     string `json:"error"`
}

// Stats is safe for concurrent use by simulated users.
type Stats struct {
	mutex   sync.Mutex
	samples []Sample
}

func NewStats() *Stats {
	return &Stats{}
}

func (s *Stats) Record(sample Sample) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.samples = append(s.samples, sample)
}

func (s *Stats) Samples() []Sample {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	out := make([]Sample, len(s.samples))
	copy(out, s.samples)
	return out
}

type Summary struct {
	TotalRequests int
	Successful    int
	Failed        int
	SuccessRate   float64
	Elapsed       time.Duration
	Throughput    float64
	Avg           time.Duration
	Min           time.Duration
	Max           time.Duration
	P50           time.Duration
	P95           time.Duration
	P99           time.Duration
	Errors        []ErrorRecord
}

// Summarize aggregates every recorded sample. Latency figures only include
// requests that succeeded.
func (s *Stats) Summarize(elapsed time.Duration) Summary {
	samples := s.Samples()

	sum := Summary{
		TotalRequests: len(samples),
		Elapsed:       elapsed,
		Errors:        []ErrorRecord{},
	}

	latencies := make([]time.Duration, 0, len(samples))
	for _, sample := range samples {
		if sample.Success() {
			sum.Successful++
			latencies = append(latencies, sample.Duration)
			continue
		}

		sum.Failed++
		sum.Errors = append(sum.Errors, ErrorRecord{
			Operation: sample.Operation,
			Detail:    sample.Detail,
			Error:     sample.Err.Error(),
		})
	}

	if sum.TotalRequests > 0 {
		sum.SuccessRate = float64(sum.Successful) / float64(sum.TotalRequests) * 100
	}

	if elapsed > 0 {
		sum.Throughput = float64(sum.TotalRequests) / elapsed.Seconds()
	}

	if len(latencies) > 0 {
		sort.Slice(latencies, func(i, j int) bool { return latencies[i] < latencies[j] })

		var total time.Duration
		for _, d := range latencies {
			total += d
		}

		sum.Avg = total / time.Duration(len(latencies))
		sum.Min = latencies[0]
		sum.Max = latencies[len(latencies)-1]
		sum.P50 = percentile(latencies, 0.50)
		sum.P95 = percentile(latencies, 0.95)
		sum.P99 = percentile(latencies, 0.99)
	}

	return sum
}

// percentile uses the same nearest-rank index as the keep-alive metrics.
func percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}

	index := int(float64(len(sorted)) * p)
	if index >= len(sorted) {
		index = len(sorted) - 1
	}

	return sorted[index]
}

type Grade string

const (
	GradeExcellent        Grade = "EXCELLENT"
	GradeGood             Grade = "GOOD"
	GradeAcceptable       Grade = "ACCEPTABLE"
	GradePoor             Grade = "POOR"
	GradeNeedsImprovement Grade = "NEEDS IMPROVEMENT"
)

func LatencyGrade(avg time.Duration) Grade {
	switch {
	case avg < 500*time.Millisecond:
		return GradeExcellent
	case avg < time.Second:
		return GradeGood
	case avg < 2*time.Second:
		return GradeAcceptable
	default:
		return GradePoor
	}
}

func SuccessGrade(rate float64) Grade {
	switch {
	case rate >= 95:
		return GradeExcellent
	case rate >= 90:
		return GradeGood
	default:
		return GradeNeedsImprovement
	}
}
