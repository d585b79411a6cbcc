package clock

import (
	"sort"
	"sync"
	"time"
)

// Manual is a Clock whose time only moves when Advance is called.
type Manual struct {
	mutex  sync.Mutex
	cond   *sync.Cond
	now    time.Time
	timers []*manualTimer
}

type manualTimer struct {
	clock    *Manual
	deadline time.Time
	ch       chan time.Time
}

// NewManual creates a manual clock set to start.
func NewManual(start time.Time) *Manual {
	m := &Manual{now: start}
	m.cond = sync.NewCond(&m.mutex)
	return m
}

func (m *Manual) Now() time.Time {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return m.now
}

func (m *Manual) NewTimer(d time.Duration) Timer {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	t := &manualTimer{
		clock:    m,
		deadline: m.now.Add(d),
		ch:       make(chan time.Time, 1),
	}

	if d <= 0 {
		t.ch <- m.now
		return t
	}

	m.timers = append(m.timers, t)
	m.cond.Broadcast()
	return t
}

// Advance moves the clock forward and fires every timer whose deadline
// has been reached, earliest first.
func (m *Manual) Advance(d time.Duration) {
	m.mutex.Lock()
	m.now = m.now.Add(d)

	var due, pending []*manualTimer
	for _, t := range m.timers {
		if !t.deadline.After(m.now) {
			due = append(due, t)
		} else {
			pending = append(pending, t)
		}
	}
	m.timers = pending
	now := m.now
	m.cond.Broadcast()
	m.mutex.Unlock()

	sort.SliceStable(due, func(i, j int) bool {
		return due[i].deadline.Before(due[j].deadline)
	})

	for _, t := range due {
		select {
		case t.ch <- now:
		default:
		}
	}
}

// BlockUntil waits until at least n timers are armed and not yet fired.
func (m *Manual) BlockUntil(n int) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	for len(m.timers) < n {
		m.cond.Wait()
	}
}

// Pending returns the number of armed timers.
func (m *Manual) Pending() int {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return len(m.timers)
}

func (t *manualTimer) C() <-chan time.Time {
	return t.ch
}

func (t *manualTimer) Stop() bool {
	m := t.clock
	m.mutex.Lock()
	defer m.mutex.Unlock()

	for i, pending := range m.timers {
		if pending == t {
			m.timers = append(m.timers[:i], m.timers[i+1:]...)
			m.cond.Broadcast()
			return true
		}
	}
	return false
}
