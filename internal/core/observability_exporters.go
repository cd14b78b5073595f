package core

import (
	"context"
	"encoding/json"
	"expvar"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"
)

var expvarSeq atomic.Uint64

// ExpvarMetricsRecorder aggregates per-operation durations and outcome counts
// and publishes the snapshot through the process expvar registry. Each
// recorder publishes under a unique name so independent services (and tests)
// never collide.
type ExpvarMetricsRecorder struct {
	name string

	mu        sync.Mutex
	durations map[string]float64
	results   map[string]map[string]int64
}

// NewExpvarMetricsRecorder constructs a recorder and registers its snapshot
// function with expvar.
func NewExpvarMetricsRecorder() *ExpvarMetricsRecorder {
	r := &ExpvarMetricsRecorder{
		name:      fmt.Sprintf("assetcore_service_metrics_%d", expvarSeq.Add(1)),
		durations: make(map[string]float64),
		results:   make(map[string]map[string]int64),
	}
	expvar.Publish(r.name, expvar.Func(func() any { return r.Snapshot() }))
	return r
}

// Name returns the expvar variable name the recorder publishes under.
func (r *ExpvarMetricsRecorder) Name() string { return r.name }

// Observe implements MetricsRecorder.
func (r *ExpvarMetricsRecorder) Observe(_ context.Context, operation string, success bool, duration time.Duration) {
	if operation == "" {
		return
	}
	status := "error"
	if success {
		status = "success"
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.durations[operation] += float64(duration) / float64(time.Millisecond)
	byStatus, ok := r.results[operation]
	if !ok {
		byStatus = make(map[string]int64)
		r.results[operation] = byStatus
	}
	byStatus[status]++
}

// Snapshot returns a copy of the aggregated metrics keyed by operation.
func (r *ExpvarMetricsRecorder) Snapshot() map[string]any {
	r.mu.Lock()
	defer r.mu.Unlock()
	durations := make(map[string]float64, len(r.durations))
	for op, total := range r.durations {
		durations[op] = total
	}
	results := make(map[string]map[string]int64, len(r.results))
	for op, byStatus := range r.results {
		copied := make(map[string]int64, len(byStatus))
		for status, count := range byStatus {
			copied[status] = count
		}
		results[op] = copied
	}
	return map[string]any{
		"durations_ms": durations,
		"results":      results,
	}
}

// TraceEntry is one completed span emitted by JSONTraceTracer.
type TraceEntry struct {
	Operation  string    `json:"operation"`
	StartedAt  time.Time `json:"started_at"`
	EndedAt    time.Time `json:"ended_at"`
	DurationMS float64   `json:"duration_ms"`
	Error      string    `json:"error,omitempty"`
}

// JSONTraceTracer writes one JSON line per completed span and retains the
// entries for inspection.
type JSONTraceTracer struct {
	mu      sync.Mutex
	encoder *json.Encoder
	entries []TraceEntry
}

// NewJSONTracer constructs a tracer writing to w. A nil writer only retains
// entries in memory.
func NewJSONTracer(w io.Writer) *JSONTraceTracer {
	t := &JSONTraceTracer{}
	if w != nil {
		t.encoder = json.NewEncoder(w)
	}
	return t
}

// Start implements Tracer.
func (t *JSONTraceTracer) Start(ctx context.Context, operation string) (context.Context, TraceSpan) {
	return ctx, &jsonTraceSpan{tracer: t, operation: operation, started: time.Now().UTC()}
}

// Entries returns a copy of all completed spans.
func (t *JSONTraceTracer) Entries() []TraceEntry {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]TraceEntry, len(t.entries))
	copy(out, t.entries)
	return out
}

func (t *JSONTraceTracer) record(entry TraceEntry) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries = append(t.entries, entry)
	if t.encoder != nil {
		// Encoding failures are ignored; tracing must never break operations.
		_ = t.encoder.Encode(entry)
	}
}

type jsonTraceSpan struct {
	tracer    *JSONTraceTracer
	operation string
	started   time.Time
}

func (s *jsonTraceSpan) End(err error) {
	ended := time.Now().UTC()
	entry := TraceEntry{
		Operation:  s.operation,
		StartedAt:  s.started,
		EndedAt:    ended,
		DurationMS: float64(ended.Sub(s.started)) / float64(time.Millisecond),
	}
	if err != nil {
		entry.Error = err.Error()
	}
	s.tracer.record(entry)
}
