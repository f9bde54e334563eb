package pipeline

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"
)

// ParallelConfig holds configuration for multi-model runs.
type ParallelConfig struct {
	MaxWorkers       int                      // parallel workers (0 = runtime.NumCPU())
	ProgressCallback ProgressCallback         // optional progress reporting
	ErrorHandler     func(int, string, error) // optional per-model error handler
}

// DefaultParallelConfig returns defaults for multi-model runs.
func DefaultParallelConfig() ParallelConfig {
	return ParallelConfig{MaxWorkers: runtime.NumCPU()}
}

type modelJob struct {
	index int
	path  string
}

type modelResult struct {
	index  int
	result *Result
	err    error
}

// RunFiles generates for each model file with cfg's decoder settings,
// using a worker pool. Results keep the order of paths; a failed model
// leaves a nil entry and the first failure is returned as the error.
func RunFiles(ctx context.Context, paths []string, cfg Config) ([]*Result, error) {
	if len(paths) == 0 {
		return nil, errors.New("no model files provided")
	}

	par := cfg.Parallel
	if par.MaxWorkers <= 0 {
		par.MaxWorkers = runtime.NumCPU()
	}
	par.MaxWorkers = min(par.MaxWorkers, len(paths))

	if par.ProgressCallback != nil {
		par.ProgressCallback.OnStart(len(paths))
		defer par.ProgressCallback.OnComplete()
	}

	jobs := make(chan modelJob, len(paths))
	results := make(chan modelResult, len(paths))

	var wg sync.WaitGroup
	for range par.MaxWorkers {
		wg.Add(1)
		go worker(ctx, cfg, jobs, results, &wg)
	}

	go func() {
		defer close(jobs)
		for i, p := range paths {
			select {
			case jobs <- modelJob{index: i, path: p}:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	ordered := make([]*Result, len(paths))
	errs := make([]error, len(paths))
	processed := 0
	for r := range results {
		ordered[r.index] = r.result
		errs[r.index] = r.err
		processed++
		if par.ProgressCallback != nil {
			if r.err != nil {
				par.ProgressCallback.OnError(r.index, r.err)
			}
			par.ProgressCallback.OnProgress(processed, len(paths))
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var firstError error
	for i, err := range errs {
		if err == nil {
			continue
		}
		if firstError == nil {
			firstError = fmt.Errorf("model %d (%s): %w", i, paths[i], err)
		}
		if par.ErrorHandler != nil {
			par.ErrorHandler(i, paths[i], err)
		}
	}
	return ordered, firstError
}

func worker(ctx context.Context, cfg Config, jobs <-chan modelJob, results chan<- modelResult, wg *sync.WaitGroup) {
	defer wg.Done()

	for {
		select {
		case job, ok := <-jobs:
			if !ok {
				return
			}
			res, err := runFile(ctx, cfg, job.path)
			select {
			case results <- modelResult{index: job.index, result: res, err: err}:
			case <-ctx.Done():
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

func runFile(ctx context.Context, cfg Config, path string) (*Result, error) {
	b := NewBuilder().WithModelPath(path).WithDecoderConfig(cfg.Decoder).WithTopWords(cfg.TopWords)
	b.cfg.Start = cfg.Start
	g, err := b.Build()
	if err != nil {
		return nil, err
	}
	return g.RunContext(ctx)
}

// ParallelStats summarizes a multi-model run.
type ParallelStats struct {
	TotalModels      int           `json:"total_models"`
	ProcessedModels  int           `json:"processed_models"`
	FailedModels     int           `json:"failed_models"`
	WorkerCount      int           `json:"worker_count"`
	TotalDuration    time.Duration `json:"total_duration_ns"`
	AveragePerModel  time.Duration `json:"average_per_model_ns"`
	ThroughputPerSec float64       `json:"throughput_per_sec"`
}

// CalculateParallelStats computes throughput figures for results returned by RunFiles.
func CalculateParallelStats(results []*Result, duration time.Duration, workerCount int) ParallelStats {
	stats := ParallelStats{TotalModels: len(results), WorkerCount: workerCount, TotalDuration: duration}
	for _, r := range results {
		if r != nil {
			stats.ProcessedModels++
		} else {
			stats.FailedModels++
		}
	}
	if stats.ProcessedModels > 0 && duration > 0 {
		stats.AveragePerModel = duration / time.Duration(stats.ProcessedModels)
		stats.ThroughputPerSec = float64(stats.ProcessedModels) / duration.Seconds()
	}
	return stats
}
