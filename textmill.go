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

package textmill

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/poiesic/textmill/batch"
	"github.com/poiesic/textmill/config"
	"github.com/poiesic/textmill/core"
	"github.com/poiesic/textmill/extract"
	"github.com/poiesic/textmill/pipeline"
	"github.com/poiesic/textmill/scan"
	"github.com/poiesic/textmill/storage"
	"github.com/poiesic/textmill/storage/badger"
	"github.com/poiesic/textmill/storage/parquet"
)

// Engine wires a Config into a ready-to-run chunking job: extractor registry,
// artifact store, optional checkpoints, pipeline and orchestrator.
type Engine struct {
	cfg          *config.Config
	registry     *extract.Registry
	backend      *badger.Backend
	sink         storage.ChunkSink
	checkpoints  storage.CheckpointRepository
	pipeline     *pipeline.Pipeline
	orchestrator *batch.Orchestrator
	logger       *slog.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*engineOptions)

type engineOptions struct {
	logger   *slog.Logger
	progress io.Writer
	onBatch  func(core.BatchResult)
}

// WithLogger sets the logger shared by every component.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) EngineOption {
	return func(o *engineOptions) {
		o.logger = logger
	}
}

// WithProgress writes a progress line to w while a run is in flight.
func WithProgress(w io.Writer) EngineOption {
	return func(o *engineOptions) {
		o.progress = w
	}
}

// WithBatchDone registers fn to be called after each sub-batch.
func WithBatchDone(fn func(core.BatchResult)) EngineOption {
	return func(o *engineOptions) {
		o.onBatch = fn
	}
}

// NewEngine validates cfg and opens everything a run needs.
// Call Close when done.
func NewEngine(cfg *config.Config, opts ...EngineOption) (*Engine, error) {
	if cfg == nil {
		return nil, config.ErrNoSourceDir
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	options := &engineOptions{}
	for _, opt := range opts {
		opt(options)
	}
	logger := options.logger
	if logger == nil {
		logger = slog.Default()
	}

	e := &Engine{
		cfg:      cfg,
		registry: extract.NewDefaultRegistry(extract.WithDJVUCommand(cfg.DJVUCommand)),
		logger:   logger,
	}

	if cfg.NeedsDB() {
		if err := scan.EnsureDir(cfg.OutputDir); err != nil {
			return nil, err
		}
		backend, err := badger.OpenBackend(cfg.DBPath, false, badger.WithLogger(logger))
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		e.backend = backend
		if cfg.Resume {
			e.checkpoints = badger.NewCheckpointRepository(backend)
		}
	}

	switch cfg.Format {
	case config.FormatBadger:
		e.sink = badger.NewChunkStore(e.backend)
	default:
		e.sink = parquet.NewSink()
	}

	pipelineOpts := []pipeline.Option{
		pipeline.WithLogger(logger),
		pipeline.WithChunking(cfg.Chunking()),
	}
	if e.checkpoints != nil {
		pipelineOpts = append(pipelineOpts, pipeline.WithCheckpoints(e.checkpoints))
	}
	p, err := pipeline.NewPipeline(e.registry, e.sink, pipelineOpts...)
	if err != nil {
		e.Close()
		return nil, err
	}
	e.pipeline = p

	batchOpts := []batch.Option{
		batch.WithBatchCount(cfg.BatchCount),
		batch.WithPoolSize(cfg.Workers),
		batch.WithJobTimeout(cfg.JobTimeout.Duration),
		batch.WithLogger(logger),
	}
	if options.progress != nil {
		batchOpts = append(batchOpts, batch.WithProgress(options.progress))
	}
	if options.onBatch != nil {
		batchOpts = append(batchOpts, batch.WithBatchDone(options.onBatch))
	}
	o, err := batch.NewOrchestrator(p, cfg.OutputDir, e.sink.Extension(), batchOpts...)
	if err != nil {
		e.Close()
		return nil, err
	}
	e.orchestrator = o

	return e, nil
}

// Files lists the source files a run would process: the files under the
// source directory matching the pattern, narrowed by the mission list if one
// is configured.
func (e *Engine) Files() ([]string, error) {
	var allow scan.AllowList
	if e.cfg.MissionFilesList != "" {
		list, err := scan.ReadMissionList(e.cfg.MissionFilesList)
		if err != nil {
			return nil, fmt.Errorf("failed to load mission list: %w", err)
		}
		allow = list
	}
	files, err := scan.ReadFilenames(e.cfg.SourceDir, e.cfg.Pattern, allow)
	if err != nil {
		return nil, fmt.Errorf("failed to read source directory: %w", err)
	}
	return files, nil
}

// Run processes files. Per-file failures are tallied in the report; only
// cancellation or an unusable output directory fail the run.
func (e *Engine) Run(ctx context.Context, files []string) (*batch.Report, error) {
	e.logger.Debug("run settings",
		"source", e.cfg.SourceDir,
		"output", e.cfg.OutputDir,
		"format", e.cfg.Format,
		"word_limit", e.cfg.WordLimit,
		"resume", e.cfg.Resume)
	return e.orchestrator.Run(ctx, files)
}

// Config returns the validated configuration.
func (e *Engine) Config() *config.Config {
	return e.cfg
}

// Registry returns the extractor registry.
func (e *Engine) Registry() *extract.Registry {
	return e.registry
}

// Source returns a reader for the artifacts this engine writes.
func (e *Engine) Source() storage.ChunkSource {
	if src, ok := e.sink.(storage.ChunkSource); ok {
		return src
	}
	return nil
}

// Close stops the worker pool and closes the database, if one was opened.
func (e *Engine) Close() error {
	if e.orchestrator != nil {
		e.orchestrator.Release()
	}
	if e.backend != nil && !e.backend.IsClosed() {
		if err := e.backend.Close(); err != nil {
			e.logger.Error("error closing backend storage", "err", err)
			return err
		}
	}
	return nil
}
