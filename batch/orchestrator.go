// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package batch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"time"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/textmill/core"
	"github.com/poiesic/textmill/pipeline"
	"github.com/poiesic/textmill/scan"
)

// DefaultBatchCount is the number of sub-batches a run is split into.
const DefaultBatchCount = 10

// Runner processes one job to a terminal state.
type Runner interface {
	Run(ctx context.Context, job core.Job) pipeline.Result
}

// Report summarizes a run.
type Report struct {
	RunID     uuid.UUID
	Total     int
	Succeeded int // Includes Skipped
	Failed    int
	Skipped   int
	Batches   []core.BatchResult
	Elapsed   time.Duration
}

// Orchestrator runs a Runner over a file set, one sub-batch at a time.
type Orchestrator struct {
	runner     Runner
	outputDir  string
	ext        string
	batchCount int
	poolSize   int
	jobTimeout time.Duration
	progress   io.Writer
	onBatch    func(core.BatchResult)
	logger     *slog.Logger
	pool       *ants.Pool
}

// Option configures an Orchestrator.
type Option func(*Orchestrator) error

// WithBatchCount sets the number of sub-batches.
// Default is DefaultBatchCount. Values below 1 are treated as 1.
func WithBatchCount(n int) Option {
	return func(o *Orchestrator) error {
		o.batchCount = max(1, n)
		return nil
	}
}

// WithPoolSize sets the number of concurrent workers.
// Default is runtime.NumCPU(). Values below 1 are treated as 1.
func WithPoolSize(size int) Option {
	return func(o *Orchestrator) error {
		o.poolSize = max(1, size)
		return nil
	}
}

// WithJobTimeout bounds the time a single file may take. Zero disables the limit.
func WithJobTimeout(d time.Duration) Option {
	return func(o *Orchestrator) error {
		if d < 0 {
			return fmt.Errorf("job timeout must not be negative: %s", d)
		}
		o.jobTimeout = d
		return nil
	}
}

// WithProgress enables a progress line written to w.
func WithProgress(w io.Writer) Option {
	return func(o *Orchestrator) error {
		o.progress = w
		return nil
	}
}

// WithBatchDone registers fn to be called after each sub-batch completes.
// fn runs on the goroutine that called Run.
func WithBatchDone(fn func(core.BatchResult)) Option {
	return func(o *Orchestrator) error {
		o.onBatch = fn
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) error {
		if logger == nil {
			logger = slog.Default()
		}
		o.logger = logger
		return nil
	}
}

// NewOrchestrator creates an orchestrator writing artifacts named
// {outputDir}/{base name}.{ext}.
// Call Release when done to stop the worker pool.
func NewOrchestrator(runner Runner, outputDir, ext string, opts ...Option) (*Orchestrator, error) {
	if runner == nil {
		return nil, ErrRunnerRequired
	}
	if outputDir == "" {
		return nil, ErrOutputDirRequired
	}
	if ext == "" {
		return nil, ErrExtensionRequired
	}

	o := &Orchestrator{
		runner:     runner,
		outputDir:  outputDir,
		ext:        ext,
		batchCount: DefaultBatchCount,
		poolSize:   runtime.NumCPU(),
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}

	pool, err := ants.NewPool(o.poolSize)
	if err != nil {
		return nil, err
	}
	o.pool = pool
	return o, nil
}

// Release stops the worker pool.
// The orchestrator should not be used after calling Release.
func (o *Orchestrator) Release() {
	if o.pool != nil {
		o.pool.Release()
	}
}

// Run processes every path and returns the tally. Per-file failures are
// counted, never returned. An error is returned only when the output
// directory cannot be created or ctx is cancelled; in the latter case the
// report covers the sub-batches that completed.
func (o *Orchestrator) Run(ctx context.Context, paths []string) (*Report, error) {
	start := time.Now()
	report := &Report{RunID: uuid.New()}
	logger := o.logger.With("run", report.RunID)

	if err := scan.EnsureDir(o.outputDir); err != nil {
		return nil, fmt.Errorf("preparing output directory: %w", err)
	}

	jobs := make([]core.Job, len(paths))
	for i, path := range paths {
		jobs[i] = core.Job{SourcePath: path, OutputPath: scan.OutputPath(o.outputDir, path, o.ext)}
	}
	batches := Partition(jobs, o.batchCount)
	logger.Info("starting run", "files", len(jobs), "batches", len(batches), "workers", o.poolSize)

	var tracker *ProgressTracker
	if o.progress != nil {
		tracker = NewProgressTracker(o.progress, len(jobs), 1)
		tracker.Start()
	}

	var err error
	for i, sub := range batches {
		if err = ctx.Err(); err != nil {
			logger.Warn("run cancelled", "completed_batches", i, "err", err)
			break
		}

		result := o.runBatch(ctx, sub, tracker, logger)
		result.Index = i
		report.Batches = append(report.Batches, result)
		report.Total += result.Total
		report.Succeeded += result.Succeeded
		report.Failed += result.Failed
		report.Skipped += result.Skipped

		logger.Info("batch complete", "batch", i+1, "of", len(batches),
			"succeeded", result.Succeeded, "failed", result.Failed, "skipped", result.Skipped)
		if o.onBatch != nil {
			o.onBatch(result)
		}
	}

	if tracker != nil {
		tracker.Finish()
	}
	report.Elapsed = time.Since(start)
	logger.Info("run complete", "succeeded", report.Succeeded, "total", report.Total, "elapsed", report.Elapsed)
	return report, err
}

// runBatch dispatches every job of one sub-batch and waits for all results.
func (o *Orchestrator) runBatch(ctx context.Context, jobs []core.Job, tracker *ProgressTracker, logger *slog.Logger) core.BatchResult {
	results := make(chan pipeline.Result, len(jobs))
	for _, job := range jobs {
		err := o.pool.Submit(func() {
			results <- o.runJob(ctx, job)
		})
		if err != nil {
			results <- pipeline.Result{
				Job:   job,
				State: pipeline.StateFailed,
				Err:   fmt.Errorf("submitting job: %w", err),
			}
		}
	}

	result := core.BatchResult{Total: len(jobs)}
	for range jobs {
		res := <-results
		switch {
		case res.State == pipeline.StateSkipped:
			result.Succeeded++
			result.Skipped++
			logger.Debug("document skipped", "path", res.Job.SourcePath)
		case res.OK():
			result.Succeeded++
			logger.Debug("document saved", "path", res.Job.SourcePath, "output", res.Job.OutputPath,
				"chunks", res.Chunks, "elapsed", res.Elapsed)
		default:
			result.Failed++
			logger.Warn("document failed", "path", res.Job.SourcePath, "state", res.Reached, "err", res.Err)
		}
		if tracker != nil {
			tracker.Record(res.OK())
		}
	}
	return result
}

// runJob runs one job under the per-job timeout. A panicking runner is
// reported as a failed result so the batch still drains.
func (o *Orchestrator) runJob(ctx context.Context, job core.Job) (res pipeline.Result) {
	defer func() {
		if r := recover(); r != nil {
			res = pipeline.Result{
				Job:   job,
				State: pipeline.StateFailed,
				Err:   fmt.Errorf("runner panic: %v", r),
			}
		}
	}()

	if o.jobTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.jobTimeout)
		defer cancel()
	}
	return o.runner.Run(ctx, job)
}
