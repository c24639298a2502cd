package metrics

import (
	"sync/atomic"
	"time"
)

type upstreamCounters struct {
	calls   int64
	errors  int64
	latency int64 // total nanoseconds
}

var (
	generation upstreamCounters
	export     upstreamCounters
	conflicts  int64
)

// Snapshot is a point-in-time copy of the counters.
type Snapshot struct {
	GenerationCalls     int64   `json:"generation_calls"`
	GenerationErrors    int64   `json:"generation_errors"`
	GenerationLatencyMs float64 `json:"generation_avg_latency_ms"`
	ExportCalls         int64   `json:"export_calls"`
	ExportErrors        int64   `json:"export_errors"`
	ExportLatencyMs     float64 `json:"export_avg_latency_ms"`
	StateConflicts      int64   `json:"state_conflicts"`
}

func Get() Snapshot {
	return Snapshot{
		GenerationCalls:     atomic.LoadInt64(&generation.calls),
		GenerationErrors:    atomic.LoadInt64(&generation.errors),
		GenerationLatencyMs: generation.avgMs(),
		ExportCalls:         atomic.LoadInt64(&export.calls),
		ExportErrors:        atomic.LoadInt64(&export.errors),
		ExportLatencyMs:     export.avgMs(),
		StateConflicts:      atomic.LoadInt64(&conflicts),
	}
}

// Reset zeroes every counter (tests).
func Reset() {
	for _, c := range []*upstreamCounters{&generation, &export} {
		atomic.StoreInt64(&c.calls, 0)
		atomic.StoreInt64(&c.errors, 0)
		atomic.StoreInt64(&c.latency, 0)
	}
	atomic.StoreInt64(&conflicts, 0)
}

func RecordGeneration(d time.Duration, err error) { generation.record(d, err) }

func RecordExport(d time.Duration, err error) { export.record(d, err) }

// RecordConflict counts a rejected concurrent or out-of-order section call.
func RecordConflict() {
	atomic.AddInt64(&conflicts, 1)
}

func (c *upstreamCounters) record(d time.Duration, err error) {
	atomic.AddInt64(&c.calls, 1)
	atomic.AddInt64(&c.latency, d.Nanoseconds())
	if err != nil {
		atomic.AddInt64(&c.errors, 1)
	}
}

func (c *upstreamCounters) avgMs() float64 {
	calls := atomic.LoadInt64(&c.calls)
	if calls == 0 {
		return 0
	}
	return float64(atomic.LoadInt64(&c.latency)) / float64(calls) / 1e6
}
