package observability

import "sync"

// Metrics provides counter and histogram recording primitives.
type Metrics interface {
	IncCounter(name string, value float64, labels map[string]string)
	ObserveHistogram(name string, value float64, labels map[string]string)
}

var defaultMetrics Metrics = noopMetrics{}

// SetMetrics overrides the global metrics implementation used by the client.
func SetMetrics(metrics Metrics) {
	if metrics == nil {
		defaultMetrics = noopMetrics{}
		return
	}
	defaultMetrics = metrics
}

// Telemetry returns the current global metrics collector.
func Telemetry() Metrics {
	return defaultMetrics
}

type noopMetrics struct{}

func (noopMetrics) IncCounter(string, float64, map[string]string)       {}
func (noopMetrics) ObserveHistogram(string, float64, map[string]string) {}

// OperationStatsSnapshot captures per-operation runtime counters.
type OperationStatsSnapshot struct {
	Requests            map[string]int64 `json:"requests"`
	Failures            map[string]int64 `json:"failures"`
	LatencyMilliseconds map[string]int64 `json:"latency_ms"`
}

// OperationStats accumulates per-operation counters in-memory for periodic export.
type OperationStats struct {
	mu    sync.Mutex
	stats OperationStatsSnapshot
}

// NewOperationStats constructs a stats accumulator with empty maps.
func NewOperationStats() *OperationStats {
	stats := new(OperationStats)
	stats.stats = OperationStatsSnapshot{
		Requests:            make(map[string]int64),
		Failures:            make(map[string]int64),
		LatencyMilliseconds: make(map[string]int64),
	}
	return stats
}

// RecordRequest tracks one completed request and its latency for an operation.
func (s *OperationStats) RecordRequest(operation string, latencyMs int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stats.Requests[operation]++
	s.stats.LatencyMilliseconds[operation] += latencyMs
}

// IncrementFailures increments the failure counter for an operation.
func (s *OperationStats) IncrementFailures(operation string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stats.Failures[operation]++
}

// Snapshot copies the current per-operation counters for reporting.
func (s *OperationStats) Snapshot() OperationStatsSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot := OperationStatsSnapshot{
		Requests:            make(map[string]int64, len(s.stats.Requests)),
		Failures:            make(map[string]int64, len(s.stats.Failures)),
		LatencyMilliseconds: make(map[string]int64, len(s.stats.LatencyMilliseconds)),
	}
	for k, v := range s.stats.Requests {
		snapshot.Requests[k] = v
	}
	for k, v := range s.stats.Failures {
		snapshot.Failures[k] = v
	}
	for k, v := range s.stats.LatencyMilliseconds {
		snapshot.LatencyMilliseconds[k] = v
	}
	return snapshot
}
