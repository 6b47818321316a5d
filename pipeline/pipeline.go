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

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/poiesic/textmill/chunking"
	"github.com/poiesic/textmill/core"
	"github.com/poiesic/textmill/extract"
	"github.com/poiesic/textmill/storage"
)

// Resolver finds the extractor for a source path.
type Resolver interface {
	Lookup(path string) (extract.Extractor, error)
}

// Result is the outcome of running one job.
type Result struct {
	Job core.Job

	// State is the terminal state: Saved, Skipped or Failed.
	State State

	// Reached is the last state completed before a failure.
	// Equal to State on success.
	Reached State

	Chunks  int
	Err     error
	Elapsed time.Duration
}

// OK reports whether the job succeeded.
func (r Result) OK() bool {
	return r.State == StateSaved || r.State == StateSkipped
}

// Pipeline turns source documents into stored chunk lists.
// It is safe for concurrent use.
type Pipeline struct {
	resolver    Resolver
	sink        storage.ChunkSink
	checkpoints storage.CheckpointRepository
	chunking    chunking.Config
	logger      *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// WithChunking sets the chunking configuration.
// Default is chunking.DefaultConfig().
func WithChunking(cfg chunking.Config) Option {
	return func(p *Pipeline) error {
		if err := cfg.Validate(); err != nil {
			return err
		}
		p.chunking = cfg
		return nil
	}
}

// WithCheckpoints enables resumable runs backed by repo.
func WithCheckpoints(repo storage.CheckpointRepository) Option {
	return func(p *Pipeline) error {
		p.checkpoints = repo
		return nil
	}
}

// NewPipeline creates a document pipeline.
func NewPipeline(resolver Resolver, sink storage.ChunkSink, opts ...Option) (*Pipeline, error) {
	if resolver == nil {
		return nil, ErrResolverRequired
	}
	if sink == nil {
		return nil, ErrSinkRequired
	}

	p := &Pipeline{
		resolver: resolver,
		sink:     sink,
		chunking: chunking.DefaultConfig(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// Run processes one job to a terminal state.
func (p *Pipeline) Run(ctx context.Context, job core.Job) Result {
	start := time.Now()

	var res Result
	if _, ok := ctx.Deadline(); ok {
		res = p.runWithDeadline(ctx, job)
	} else {
		res = p.process(ctx, job)
	}

	res.Job = job
	res.Elapsed = time.Since(start)
	return res
}

// runWithDeadline returns as soon as ctx is done. The abandoned work keeps
// running until its next context check, and never saves or checkpoints once
// ctx is done.
func (p *Pipeline) runWithDeadline(ctx context.Context, job core.Job) Result {
	done := make(chan Result, 1)
	go func() {
		done <- p.process(ctx, job)
	}()

	select {
	case res := <-done:
		return res
	case <-ctx.Done():
		return Result{State: StateFailed, Reached: StateCreated, Err: contextError(ctx.Err())}
	}
}

func (p *Pipeline) process(ctx context.Context, job core.Job) (res Result) {
	logger := p.logger.With("path", job.SourcePath)
	reached := StateCreated

	fail := func(err error) Result {
		return Result{State: StateFailed, Reached: reached, Err: err}
	}

	defer func() {
		if r := recover(); r != nil {
			logger.Error("panic while processing document", "state", reached, "panic", r)
			res = fail(fmt.Errorf("%w: panic after %s: %v", core.ErrOpen, reached, r))
		}
	}()

	if err := core.ValidateJob(job); err != nil {
		return fail(err)
	}

	extractor, err := p.resolver.Lookup(job.SourcePath)
	if err != nil {
		return fail(err)
	}

	var fingerprint core.ID
	if p.checkpoints != nil {
		fingerprint, err = p.fingerprint(job.SourcePath)
		if err != nil {
			return fail(fmt.Errorf("%w: %w", core.ErrOpen, err))
		}
		if chunks, ok := p.alreadyDone(ctx, job, fingerprint, logger); ok {
			return Result{State: StateSkipped, Reached: StateSkipped, Chunks: chunks}
		}
	}

	h, err := extractor.Open(ctx, job.SourcePath)
	if err != nil {
		return fail(classify(err, core.ErrOpen))
	}
	defer func() {
		if err := h.Close(); err != nil {
			logger.Warn("error closing source", "err", err)
		}
	}()
	reached = StateOpened

	unit, err := extractor.ExtractRaw(ctx, h)
	if err != nil {
		return fail(classify(err, core.ErrOpen))
	}
	reached = StateExtracted

	chunks, err := chunking.Postprocess(unit, extractor.Kind(), p.chunking)
	if err != nil {
		return fail(err)
	}
	reached = StateChunked
	logger.Debug("chunked document", "kind", extractor.Kind(), "chunks", len(chunks), "words", chunks.Words())

	doc := &core.StoredDocument{
		Name:   job.Name(),
		Source: job.SourcePath,
		Kind:   extractor.Kind(),
		Chunks: chunks,
	}
	if err := core.ValidateStoredDocument(doc); err != nil {
		return fail(err)
	}
	reached = StateValidated

	if err := ctx.Err(); err != nil {
		return fail(contextError(err))
	}
	if err := p.sink.Save(ctx, job.OutputPath, doc); err != nil {
		return fail(classify(err, core.ErrPersist))
	}
	reached = StateSaved

	// The caller has already reported a timeout for this job.
	if err := ctx.Err(); err != nil {
		logger.Warn("artifact written after job was abandoned, not checkpointing", "err", err)
		return fail(contextError(err))
	}

	if p.checkpoints != nil {
		cp := &core.Checkpoint{
			Source:      job.SourcePath,
			Fingerprint: fingerprint,
			Chunks:      len(chunks),
		}
		if err := p.checkpoints.SaveCheckpoint(ctx, cp); err != nil {
			logger.Warn("error saving checkpoint", "err", err)
		}
	}

	return Result{State: StateSaved, Reached: StateSaved, Chunks: len(chunks)}
}

// alreadyDone reports whether the checkpoint for job matches fingerprint and
// its artifact still exists. Lookup errors are logged and treated as a miss.
func (p *Pipeline) alreadyDone(ctx context.Context, job core.Job, fingerprint core.ID, logger *slog.Logger) (int, bool) {
	cp, err := p.checkpoints.LoadCheckpoint(ctx, job.SourcePath)
	if err != nil {
		logger.Warn("error loading checkpoint", "err", err)
		return 0, false
	}
	if cp == nil || cp.Fingerprint != fingerprint {
		return 0, false
	}
	exists, err := p.sink.Exists(ctx, job.OutputPath)
	if err != nil {
		logger.Warn("error checking artifact", "output", job.OutputPath, "err", err)
		return 0, false
	}
	if !exists {
		return 0, false
	}
	logger.Debug("source unchanged since last run, skipping", "chunks", cp.Chunks)
	return cp.Chunks, true
}

// fingerprint identifies the inputs that determine a document's chunks.
func (p *Pipeline) fingerprint(path string) (core.ID, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	return core.Fingerprint(
		path,
		strconv.FormatInt(info.Size(), 10),
		strconv.FormatInt(info.ModTime().UnixNano(), 10),
		strconv.Itoa(p.chunking.WordLimit),
		strings.Join(p.chunking.EOSMarkers, "\x1f"),
	), nil
}

// classify keeps errors that already belong to the error taxonomy and wraps
// anything else in fallback.
func classify(err, fallback error) error {
	for _, known := range []error{
		core.ErrOpen,
		core.ErrEmptyContent,
		core.ErrUnsupportedKind,
		core.ErrPersist,
		core.ErrTimeout,
	} {
		if errors.Is(err, known) {
			return err
		}
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return contextError(err)
	}
	return fmt.Errorf("%w: %w", fallback, err)
}

func contextError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", core.ErrTimeout, err)
	}
	return err
}
