package observability

import (
	"math"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// Metrics collects in-process counters for submissions and model calls.
type Metrics struct {
	mu sync.Mutex

	submissionTotal  atomic.Int64
	submissionFailed atomic.Int64
	historyWritten   atomic.Int64
	generationTotal  atomic.Int64
	generationFailed atomic.Int64

	failuresByCode map[string]int64

	// Ring of the most recent submission durations.
	durations    []time.Duration
	maxDurations int
}

// NewMetrics creates a new metrics collector.
func NewMetrics(maxDurations int) *Metrics {
	if maxDurations <= 0 {
		maxDurations = 1000 // Default to keeping last 1000 durations
	}
	return &Metrics{
		failuresByCode: make(map[string]int64),
		durations:      make([]time.Duration, 0, maxDurations),
		maxDurations:   maxDurations,
	}
}

// RecordSubmission records a finished submission and how long it took.
// An empty code means success; rows is the number of history rows written.
func (m *Metrics) RecordSubmission(code string, rows int, duration time.Duration) {
	m.submissionTotal.Add(1)
	m.historyWritten.Add(int64(rows))

	m.mu.Lock()
	defer m.mu.Unlock()
	if code != "" {
		m.submissionFailed.Add(1)
		m.failuresByCode[code]++
	}
	if len(m.durations) >= m.maxDurations {
		// Remove oldest duration (FIFO)
		m.durations = m.durations[1:]
	}
	m.durations = append(m.durations, duration)
}

// RecordGeneration records one model call.
func (m *Metrics) RecordGeneration(failed bool) {
	m.generationTotal.Add(1)
	if failed {
		m.generationFailed.Add(1)
	}
}

// Reset resets all metrics (useful for testing).
func (m *Metrics) Reset() {
	m.submissionTotal.Store(0)
	m.submissionFailed.Store(0)
	m.historyWritten.Store(0)
	m.generationTotal.Store(0)
	m.generationFailed.Store(0)

	m.mu.Lock()
	m.failuresByCode = make(map[string]int64)
	m.durations = make([]time.Duration, 0, m.maxDurations)
	m.mu.Unlock()
}

// Snapshot returns a snapshot of current metrics.
func (m *Metrics) Snapshot() *MetricsSnapshot {
	m.mu.Lock()
	failures := make(map[string]int64, len(m.failuresByCode))
	for code, count := range m.failuresByCode {
		failures[code] = count
	}
	durations := make([]time.Duration, len(m.durations))
	copy(durations, m.durations)
	m.mu.Unlock()

	sort.Slice(durations, func(i, j int) bool { return durations[i] < durations[j] })

	return &MetricsSnapshot{
		SubmissionTotal:  m.submissionTotal.Load(),
		SubmissionFailed: m.submissionFailed.Load(),
		HistoryWritten:   m.historyWritten.Load(),
		GenerationTotal:  m.generationTotal.Load(),
		GenerationFailed: m.generationFailed.Load(),
		FailuresByCode:   failures,
		DurationCount:    len(durations),
		P50Duration:      percentile(durations, 0.50),
		P95Duration:      percentile(durations, 0.95),
	}
}

// percentile expects sorted input and uses the nearest-rank method.
func percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	rank := int(math.Ceil(p*float64(len(sorted)))) - 1
	if rank < 0 {
		rank = 0
	}
	return sorted[rank]
}

// MetricsSnapshot represents a point-in-time snapshot of metrics.
type MetricsSnapshot struct {
	SubmissionTotal  int64
	SubmissionFailed int64
	HistoryWritten   int64
	GenerationTotal  int64
	GenerationFailed int64
	FailuresByCode   map[string]int64
	DurationCount    int
	P50Duration      time.Duration
	P95Duration      time.Duration
}

// SuccessRate returns the success rate as a percentage (0-100).
func (s *MetricsSnapshot) SuccessRate() float64 {
	if s.SubmissionTotal == 0 {
		return 100.0
	}
	return float64(s.SubmissionTotal-s.SubmissionFailed) / float64(s.SubmissionTotal) * 100.0
}
