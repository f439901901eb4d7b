// Package stats records per-stage processing latency.
package stats

import (
	"sort"
	"sync"
	"time"

	"gonum.org/v1/gonum/stat"
)

// DefaultWindow is the number of recent samples kept per stage.
const DefaultWindow = 512

// StageStats summarizes one stage. Latencies are in milliseconds over the
// sample window; Count covers the recorder's lifetime.
type StageStats struct {
	Count  uint64  `json:"count"`
	MeanMs float64 `json:"mean_ms"`
	P50Ms  float64 `json:"p50_ms"`
	P95Ms  float64 `json:"p95_ms"`
	MaxMs  float64 `json:"max_ms"`
}

// Recorder collects latency samples by stage name. A nil *Recorder
// discards everything, so stages can take one optionally.
type Recorder struct {
	mu     sync.Mutex
	window int
	stages map[string]*series
}

type series struct {
	samples []float64 // ring, milliseconds
	next    int
	count   uint64
}

// NewRecorder creates a recorder keeping window samples per stage.
// window <= 0 selects DefaultWindow.
func NewRecorder(window int) *Recorder {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Recorder{window: window, stages: make(map[string]*series)}
}

// Observe records one latency sample for stage.
func (r *Recorder) Observe(stage string, d time.Duration) {
	if r == nil {
		return
	}
	ms := float64(d) / float64(time.Millisecond)

	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.stages[stage]
	if !ok {
		s = &series{samples: make([]float64, 0, r.window)}
		r.stages[stage] = s
	}
	if len(s.samples) < r.window {
		s.samples = append(s.samples, ms)
	} else {
		s.samples[s.next] = ms
	}
	s.next = (s.next + 1) % r.window
	s.count++
}

// Since records the time elapsed since start for stage.
func (r *Recorder) Since(stage string, start time.Time) {
	r.Observe(stage, time.Since(start))
}

// Snapshot summarizes every stage.
func (r *Recorder) Snapshot() map[string]StageStats {
	out := make(map[string]StageStats)
	if r == nil {
		return out
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for name, s := range r.stages {
		out[name] = summarize(s)
	}
	return out
}

func summarize(s *series) StageStats {
	st := StageStats{Count: s.count}
	if len(s.samples) == 0 {
		return st
	}

	sorted := make([]float64, len(s.samples))
	copy(sorted, s.samples)
	sort.Float64s(sorted)

	st.MeanMs = stat.Mean(sorted, nil)
	st.P50Ms = stat.Quantile(0.5, stat.Empirical, sorted, nil)
	st.P95Ms = stat.Quantile(0.95, stat.Empirical, sorted, nil)
	st.MaxMs = sorted[len(sorted)-1]
	return st
}
