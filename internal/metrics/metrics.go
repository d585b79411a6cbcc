package metrics

import (
	"sort"
	"sync"
	"time"
)

const maxSamples = 1000

type Metrics struct {
	mutex         sync.RWMutex
	attempts      map[string]int64
	successes     map[string]int64
	failures      map[string]int64
	responseTimes map[string][]time.Duration
	statusCodes   map[string]map[int]int64
	consecutive   map[string]int
	healthStatus  map[string]bool
	active        bool
	dropped       int64
	startTime     time.Time
}

type Snapshot struct {
	TotalAttempts int64                      `json:"total_attempts"`
	TotalFailures int64                      `json:"total_failures"`
	Active        bool                       `json:"active"`
	Dropped       int64                      `json:"dropped_events"`
	Uptime        time.Duration              `json:"uptime"`
	Endpoints     map[string]EndpointMetrics `json:"endpoints"`
}

type EndpointMetrics struct {
	Attempts            int64         `json:"attempts"`
	Successes           int64         `json:"successes"`
	Failures            int64         `json:"failures"`
	ConsecutiveFailures int           `json:"consecutive_failures"`
	Healthy             bool          `json:"healthy"`
	AvgResponse         time.Duration `json:"avg_response"`
	P50Response         time.Duration `json:"p50_response"`
	P95Response         time.Duration `json:"p95_response"`
	P99Response         time.Duration `json:"p99_response"`
	StatusCodes         map[int]int64 `json:"status_codes"`
}

func NewMetrics() *Metrics {
	return &Metrics{
		attempts:      make(map[string]int64),
		successes:     make(map[string]int64),
		failures:      make(map[string]int64),
		responseTimes: make(map[string][]time.Duration),
		statusCodes:   make(map[string]map[int]int64),
		consecutive:   make(map[string]int),
		healthStatus:  make(map[string]bool),
		startTime:     time.Now(),
	}
}

// RecordAttempt counts one attempt. A zero statusCode means no response was
// received and is left out of the status distribution.
func (m *Metrics) RecordAttempt(endpoint string, duration time.Duration, statusCode int, success bool) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.attempts[endpoint]++
	if success {
		m.successes[endpoint]++
	} else {
		m.failures[endpoint]++
	}
	m.healthStatus[endpoint] = success

	if duration > 0 {
		m.responseTimes[endpoint] = append(m.responseTimes[endpoint], duration)
		if len(m.responseTimes[endpoint]) > maxSamples {
			m.responseTimes[endpoint] = m.responseTimes[endpoint][1:]
		}
	}

	if statusCode != 0 {
		if m.statusCodes[endpoint] == nil {
			m.statusCodes[endpoint] = make(map[int]int64)
		}
		m.statusCodes[endpoint][statusCode]++
	}
}

func (m *Metrics) SetConsecutiveFailures(endpoint string, failures int) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.consecutive[endpoint] = failures
}

func (m *Metrics) SetActive(active bool) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.active = active
}

func (m *Metrics) IncrementDropped() {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.dropped++
}

func (m *Metrics) Snapshot() Snapshot {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	snap := Snapshot{
		Active:    m.active,
		Dropped:   m.dropped,
		Uptime:    time.Since(m.startTime),
		Endpoints: make(map[string]EndpointMetrics),
	}

	for endpoint, attempts := range m.attempts {
		snap.TotalAttempts += attempts
		snap.TotalFailures += m.failures[endpoint]

		em := EndpointMetrics{
			Attempts:            attempts,
			Successes:           m.successes[endpoint],
			Failures:            m.failures[endpoint],
			ConsecutiveFailures: m.consecutive[endpoint],
			Healthy:             m.healthStatus[endpoint],
			StatusCodes:         make(map[int]int64, len(m.statusCodes[endpoint])),
		}

		for code, n := range m.statusCodes[endpoint] {
			em.StatusCodes[code] = n
		}

		durations := m.responseTimes[endpoint]
		if len(durations) > 0 {
			sorted := make([]time.Duration, len(durations))
			copy(sorted, durations)
			sort.Slice(sorted, func(i, j int) bool {
				return sorted[i] < sorted[j]
			})

			em.AvgResponse = average(sorted)
			em.P50Response = percentile(sorted, 0.50)
			em.P95Response = percentile(sorted, 0.95)
			em.P99Response = percentile(sorted, 0.99)
		}

		snap.Endpoints[endpoint] = em
	}

	return snap
}

func average(durations []time.Duration) time.Duration {
	if len(durations) == 0 {
		return 0
	}

	var sum time.Duration
	for _, d := range durations {
		sum += d
	}

	return sum / time.Duration(len(durations))
}

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
