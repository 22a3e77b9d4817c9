package monitoring

import (
	"sync"
	"time"
)

// PredictionMetrics counts predictions per label, failures per kind and
// request latency. All methods are safe for concurrent use.
type PredictionMetrics struct {
	mu sync.RWMutex

	startTime   time.Time
	byLabel     map[string]int64
	errorsByKey map[string]int64
	reloads     int64
	reloadFails int64

	count        int64
	totalLatency time.Duration
	maxLatency   time.Duration
}

// MetricsSnapshot is a point-in-time copy of PredictionMetrics.
type MetricsSnapshot struct {
	Uptime       string           `json:"uptime"`
	Predictions  int64            `json:"predictions"`
	ByLabel      map[string]int64 `json:"by_label"`
	Errors       map[string]int64 `json:"errors"`
	Reloads      int64            `json:"reloads"`
	ReloadFails  int64            `json:"reload_failures"`
	AvgLatencyUS float64          `json:"avg_latency_us"`
	MaxLatencyUS float64          `json:"max_latency_us"`
}

// NewPredictionMetrics creates an empty collector.
func NewPredictionMetrics() *PredictionMetrics {
	return &PredictionMetrics{
		startTime:   time.Now(),
		byLabel:     make(map[string]int64),
		errorsByKey: make(map[string]int64),
	}
}

// RecordPrediction counts a successful prediction.
func (m *PredictionMetrics) RecordPrediction(label string, latency time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byLabel[label]++
	m.count++
	m.totalLatency += latency
	if latency > m.maxLatency {
		m.maxLatency = latency
	}
}

// RecordError counts a failed request under kind.
func (m *PredictionMetrics) RecordError(kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errorsByKey[kind]++
}

// RecordReload counts a model reload attempt.
func (m *PredictionMetrics) RecordReload(ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if ok {
		m.reloads++
	} else {
		m.reloadFails++
	}
}

// Snapshot copies the current counters.
func (m *PredictionMetrics) Snapshot() MetricsSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s := MetricsSnapshot{
		Uptime:       time.Since(m.startTime).Round(time.Second).String(),
		Predictions:  m.count,
		ByLabel:      make(map[string]int64, len(m.byLabel)),
		Errors:       make(map[string]int64, len(m.errorsByKey)),
		Reloads:      m.reloads,
		ReloadFails:  m.reloadFails,
		MaxLatencyUS: float64(m.maxLatency) / float64(time.Microsecond),
	}
	for k, v := range m.byLabel {
		s.ByLabel[k] = v
	}
	for k, v := range m.errorsByKey {
		s.Errors[k] = v
	}
	if m.count > 0 {
		s.AvgLatencyUS = float64(m.totalLatency) / float64(m.count) / float64(time.Microsecond)
	}
	return s
}
