package munch

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// Stats accumulates the enqueue/dequeue activity of one queue. All methods are safe for
// concurrent use.
type Stats struct {
	name    string
	metrics *Metrics

	mu           sync.Mutex
	enqueueCount int
	dequeueCount int
	enqueueTime  time.Duration
	dequeueTime  time.Duration
}

// StatsSnapshot is a consistent copy of a Stats accumulators.
type StatsSnapshot struct {
	Name         string
	EnqueueCount int
	DequeueCount int
	EnqueueTime  time.Duration
	DequeueTime  time.Duration
}

// NewStats creates an empty recorder labelled name. metrics may be nil.
func NewStats(name string, metrics *Metrics) *Stats {
	return &Stats{name: name, metrics: metrics}
}

// RecordEnqueue adds count to the enqueue counter.
func (s *Stats) RecordEnqueue(count int) {
	s.mu.Lock()
	s.enqueueCount += count
	s.mu.Unlock()
	s.metrics.addEnqueue(s.name, count)
}

// RecordDequeue adds count to the dequeue counter.
func (s *Stats) RecordDequeue(count int) {
	s.mu.Lock()
	s.dequeueCount += count
	s.mu.Unlock()
	s.metrics.addDequeue(s.name, count)
}

// RecordEnqueueDuration adds d to the cumulative enqueue time.
func (s *Stats) RecordEnqueueDuration(d time.Duration) {
	s.mu.Lock()
	s.enqueueTime += d
	s.mu.Unlock()
	s.metrics.observeEnqueue(s.name, d)
}

// RecordDequeueDuration adds d to the cumulative dequeue time.
func (s *Stats) RecordDequeueDuration(d time.Duration) {
	s.mu.Lock()
	s.dequeueTime += d
	s.mu.Unlock()
	s.metrics.observeDequeue(s.name, d)
}

// Snapshot returns the current accumulators.
func (s *Stats) Snapshot() StatsSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Stats) snapshotLocked() StatsSnapshot {
	return StatsSnapshot{
		Name:         s.name,
		EnqueueCount: s.enqueueCount,
		DequeueCount: s.dequeueCount,
		EnqueueTime:  s.enqueueTime,
		DequeueTime:  s.dequeueTime,
	}
}

// Render writes the five line report followed by a blank line. The lock is held while
// writing so the report never mixes values from two instants.
func (s *Stats) Render(w io.Writer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.snapshotLocked()
	_, err := fmt.Fprintf(w,
		"Statistics of %s -\nEnqueue count is %d\nDequeue count is %d\nEnqueue time is %f\nDequeue time is %f\n\n",
		snap.Name, snap.EnqueueCount, snap.DequeueCount, snap.EnqueueTime.Seconds(), snap.DequeueTime.Seconds())
	if err != nil {
		return newError("Statistics", s.name, "Render", err)
	}
	return nil
}
