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

package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/poiesic/textmill/chunking"
	"github.com/poiesic/textmill/scan"
)

// Format selects where chunk artifacts are written.
type Format string

const (
	// FormatParquet writes one Parquet file per document.
	FormatParquet Format = "parquet"
	// FormatBadger writes every document into one BadgerDB store.
	FormatBadger Format = "badger"
)

// Defaults.
const (
	DefaultOutputDir  = "output"
	DefaultBatchCount = 10
	DefaultDBDirName  = ".textmill-db"
)

var (
	// ErrNoSourceDir is returned when no source directory is configured.
	ErrNoSourceDir = errors.New("source directory is required")

	// ErrInvalidConfig is returned when a setting is out of range.
	ErrInvalidConfig = errors.New("invalid config")
)

// Duration is a time.Duration written as a string such as "90s" in TOML.
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Config holds the settings of a chunking run.
type Config struct {
	// SourceDir is the directory scanned for input documents.
	SourceDir string `toml:"source_dir"`

	// OutputDir receives one artifact per document.
	// Default: "output"
	OutputDir string `toml:"output_dir"`

	// MissionFilesList is an optional JSON array of base file names to process.
	// Empty means every file found.
	MissionFilesList string `toml:"mission_files_list"`

	// Pattern is the doublestar glob matched inside SourceDir.
	// Default: "*"
	Pattern string `toml:"pattern"`

	// BatchCount is the number of sequential sub-batches.
	// Default: 10
	BatchCount int `toml:"batch_count"`

	// Workers is the number of documents processed concurrently.
	// Default: runtime.NumCPU()
	Workers int `toml:"workers"`

	// WordLimit is the soft word bound per chunk.
	// Default: 1500
	WordLimit int `toml:"word_limit"`

	// EOSMarkers end a sentence when they end a token.
	// Default: ".", "!", "?"
	EOSMarkers []string `toml:"eos_markers"`

	// Format selects the artifact store.
	// Default: "parquet"
	Format Format `toml:"format"`

	// DBPath is the BadgerDB directory used by the badger format and by Resume.
	// Default: OutputDir/.textmill-db
	DBPath string `toml:"db"`

	// Resume skips sources whose checkpoint matches and whose artifact exists.
	Resume bool `toml:"resume"`

	// JobTimeout bounds the time spent on one document. Zero disables it.
	JobTimeout Duration `toml:"job_timeout"`

	// DJVUCommand converts a DjVu file to text on stdout.
	// Default: "djvutxt"
	DJVUCommand string `toml:"djvu_command"`
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithSourceDir sets the input directory.
func WithSourceDir(dir string) ConfigOption {
	return func(c *Config) {
		c.SourceDir = dir
	}
}

// WithOutputDir sets the artifact directory.
func WithOutputDir(dir string) ConfigOption {
	return func(c *Config) {
		c.OutputDir = dir
	}
}

// WithMissionFilesList sets the allow-list file.
func WithMissionFilesList(path string) ConfigOption {
	return func(c *Config) {
		c.MissionFilesList = path
	}
}

// WithPattern sets the glob matched inside the source directory.
func WithPattern(pattern string) ConfigOption {
	return func(c *Config) {
		c.Pattern = pattern
	}
}

// WithBatchCount sets the number of sub-batches.
func WithBatchCount(n int) ConfigOption {
	return func(c *Config) {
		c.BatchCount = n
	}
}

// WithWorkers sets the worker pool size.
func WithWorkers(n int) ConfigOption {
	return func(c *Config) {
		c.Workers = n
	}
}

// WithWordLimit sets the per-chunk word limit.
func WithWordLimit(limit int) ConfigOption {
	return func(c *Config) {
		c.WordLimit = limit
	}
}

// WithEOSMarkers replaces the end-of-sentence markers.
func WithEOSMarkers(markers ...string) ConfigOption {
	return func(c *Config) {
		c.EOSMarkers = append([]string(nil), markers...)
	}
}

// WithFormat sets the artifact format.
func WithFormat(format Format) ConfigOption {
	return func(c *Config) {
		c.Format = format
	}
}

// WithDBPath sets the BadgerDB directory.
func WithDBPath(path string) ConfigOption {
	return func(c *Config) {
		c.DBPath = path
	}
}

// WithResume enables checkpoint-based skipping.
func WithResume(resume bool) ConfigOption {
	return func(c *Config) {
		c.Resume = resume
	}
}

// WithJobTimeout sets the per-document timeout.
func WithJobTimeout(d time.Duration) ConfigOption {
	return func(c *Config) {
		c.JobTimeout = Duration{d}
	}
}

// WithDJVUCommand sets the DjVu converter command.
func WithDJVUCommand(command string) ConfigOption {
	return func(c *Config) {
		c.DJVUCommand = command
	}
}

// DefaultConfig returns a Config with the default settings and no source directory.
func DefaultConfig() *Config {
	chunk := chunking.DefaultConfig()
	return &Config{
		OutputDir:   DefaultOutputDir,
		Pattern:     scan.DefaultPattern,
		BatchCount:  DefaultBatchCount,
		Workers:     runtime.NumCPU(),
		WordLimit:   chunk.WordLimit,
		EOSMarkers:  chunk.EOSMarkers,
		Format:      FormatParquet,
		DJVUCommand: "djvutxt",
	}
}

// NewConfig creates a Config with the default values and applies the provided options.
//
// Example:
//
//	cfg := NewConfig(
//	    WithSourceDir("/data/books"),
//	    WithWordLimit(800),
//	)
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	cfg.Apply(opts...)
	return cfg
}

// Load reads a TOML file over the defaults. Keys absent from the file keep
// their default values; unknown keys are an error.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	dec := toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidConfig, path, err)
	}
	return cfg, nil
}

// Apply applies opts to c.
func (c *Config) Apply(opts ...ConfigOption) {
	for _, opt := range opts {
		opt(c)
	}
}

// Chunking returns the chunking settings.
func (c *Config) Chunking() chunking.Config {
	return chunking.NewConfig(
		chunking.WithWordLimit(c.WordLimit),
		chunking.WithEOSMarkers(c.EOSMarkers...),
	)
}

// NeedsDB reports whether the run opens a BadgerDB store.
func (c *Config) NeedsDB() bool {
	return c.Format == FormatBadger || c.Resume
}

// Normalize fills derived settings.
func (c *Config) Normalize() {
	if c.DBPath == "" && c.NeedsDB() && c.OutputDir != "" {
		c.DBPath = filepath.Join(c.OutputDir, DefaultDBDirName)
	}
}

// Validate checks that the configuration is valid and complete.
// It normalizes the configuration first.
func (c *Config) Validate() error {
	c.Normalize()

	if c.SourceDir == "" {
		return ErrNoSourceDir
	}
	if c.OutputDir == "" {
		return fmt.Errorf("%w: output directory is required", ErrInvalidConfig)
	}
	if c.BatchCount < 1 {
		return fmt.Errorf("%w: batch count must be at least 1, got %d", ErrInvalidConfig, c.BatchCount)
	}
	if c.Workers < 1 {
		return fmt.Errorf("%w: workers must be at least 1, got %d", ErrInvalidConfig, c.Workers)
	}
	if err := c.Chunking().Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	switch c.Format {
	case FormatParquet, FormatBadger:
	default:
		return fmt.Errorf("%w: unknown format %q", ErrInvalidConfig, c.Format)
	}
	if c.JobTimeout.Duration < 0 {
		return fmt.Errorf("%w: job timeout must not be negative", ErrInvalidConfig)
	}
	return nil
}
