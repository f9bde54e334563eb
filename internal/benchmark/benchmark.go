// Package benchmark measures the generation stages of a loaded model.
package benchmark

import (
	"context"
	"fmt"
	"io"
	"runtime"
	"sync"
	"time"

	"github.com/MeKo-Tech/wordgen/internal/pipeline"
)

// Timer provides simple timing utilities for benchmarking.
type Timer struct {
	start    time.Time
	name     string
	duration time.Duration
}

// NewTimer creates a new timer with the given name.
func NewTimer(name string) *Timer {
	return &Timer{
		name:  name,
		start: time.Now(),
	}
}

// Stop stops the timer and returns the elapsed duration.
func (t *Timer) Stop() time.Duration {
	t.duration = time.Since(t.start)
	return t.duration
}

// Duration returns the recorded duration (only valid after Stop()).
func (t *Timer) Duration() time.Duration {
	return t.duration
}

func (t *Timer) String() string {
	return fmt.Sprintf("%s: %v", t.name, t.duration)
}

// MemoryStats holds memory usage statistics.
type MemoryStats struct {
	AllocBytes      uint64
	TotalAllocBytes uint64
	NumGC           uint32
}

// GetMemoryStats returns current memory statistics.
func GetMemoryStats() MemoryStats {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	return MemoryStats{
		AllocBytes:      m.Alloc,
		TotalAllocBytes: m.TotalAlloc,
		NumGC:           m.NumGC,
	}
}

// Result holds the outcome of one benchmark.
type Result struct {
	Name         string        `json:"name"`
	Iterations   int           `json:"iterations"`
	Duration     time.Duration `json:"duration_ns"`
	AllocatedKB  uint64        `json:"allocated_kb"`
	GCRuns       uint32        `json:"gc_runs"`
	Error        error         `json:"-"`
	ErrorMessage string        `json:"error,omitempty"`
}

// Average returns the mean duration of one iteration.
func (r Result) Average() time.Duration {
	if r.Iterations == 0 {
		return 0
	}
	return r.Duration / time.Duration(r.Iterations)
}

func (r Result) String() string {
	if r.Error != nil {
		return fmt.Sprintf("%s: ERROR - %v", r.Name, r.Error)
	}
	return fmt.Sprintf("%s: %d iterations, avg: %v, total: %v, alloc: %d KB, gc: %d",
		r.Name, r.Iterations, r.Average(), r.Duration, r.AllocatedKB, r.GCRuns)
}

type benchmark struct {
	name string
	fn   func() error
}

// Suite runs named benchmarks in registration order.
type Suite struct {
	benchmarks []benchmark
	results    []Result
	mu         sync.Mutex
}

// NewSuite creates an empty suite.
func NewSuite() *Suite {
	return &Suite{}
}

// Add registers a benchmark.
func (s *Suite) Add(name string, fn func() error) {
	s.benchmarks = append(s.benchmarks, benchmark{name: name, fn: fn})
}

// Names lists the registered benchmarks.
func (s *Suite) Names() []string {
	names := make([]string, len(s.benchmarks))
	for i, b := range s.benchmarks {
		names[i] = b.name
	}
	return names
}

// Run runs a single benchmark with the specified number of iterations.
func (s *Suite) Run(name string, iterations int) Result {
	for _, b := range s.benchmarks {
		if b.name == name {
			return runBenchmark(b, iterations)
		}
	}
	err := fmt.Errorf("benchmark '%s' not found", name)
	return Result{Name: name, Error: err, ErrorMessage: err.Error()}
}

// RunAll runs every benchmark, stopping early when ctx is done.
func (s *Suite) RunAll(ctx context.Context, iterations int) ([]Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.results = make([]Result, 0, len(s.benchmarks))
	for _, b := range s.benchmarks {
		if err := ctx.Err(); err != nil {
			return s.results, err
		}
		s.results = append(s.results, runBenchmark(b, iterations))
	}
	return s.results, nil
}

// Results returns the last RunAll results.
func (s *Suite) Results() []Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.results
}

// WriteResults prints one line per result.
func (s *Suite) WriteResults(w io.Writer) {
	_, _ = fmt.Fprintln(w, "Benchmark Results:")
	_, _ = fmt.Fprintln(w, "==================")
	for _, r := range s.Results() {
		_, _ = fmt.Fprintln(w, r.String())
	}
}

func runBenchmark(b benchmark, iterations int) Result {
	runtime.GC()
	before := GetMemoryStats()

	timer := NewTimer(b.name)
	var err error
	done := 0
	for range iterations {
		if err = b.fn(); err != nil {
			break
		}
		done++
	}
	duration := timer.Stop()
	after := GetMemoryStats()

	res := Result{
		Name:        b.name,
		Iterations:  done,
		Duration:    duration,
		AllocatedKB: (after.TotalAllocBytes - before.TotalAllocBytes) / 1024,
		GCRuns:      after.NumGC - before.NumGC,
		Error:       err,
	}
	if err != nil {
		res.ErrorMessage = err.Error()
	}
	return res
}

// Stage names registered by NewGeneratorSuite.
const (
	StageTopWords   = "top_words"
	StageSuccessors = "successors"
	StageGreedy     = "greedy"
	StageBeam       = "beam"
	StageRun        = "run"
)

// NewGeneratorSuite registers one benchmark per generation stage of g plus
// a full run.
func NewGeneratorSuite(ctx context.Context, g *pipeline.Generator) *Suite {
	cfg := g.Config()
	s := NewSuite()
	s.Add(StageTopWords, func() error {
		_ = g.Model.TopWords(cfg.TopWords)
		return nil
	})
	s.Add(StageSuccessors, func() error {
		_ = g.Model.Successors()
		return nil
	})
	s.Add(StageGreedy, func() error {
		_ = g.Greedy()
		return nil
	})
	s.Add(StageBeam, func() error {
		_ = g.Beam()
		return nil
	})
	s.Add(StageRun, func() error {
		_, err := g.RunContext(ctx)
		return err
	})
	return s
}
