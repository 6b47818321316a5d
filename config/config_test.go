package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "", cfg.SourceDir)
	assert.Equal(t, "output", cfg.OutputDir)
	assert.Equal(t, "*", cfg.Pattern)
	assert.Equal(t, 10, cfg.BatchCount)
	assert.Equal(t, runtime.NumCPU(), cfg.Workers)
	assert.Equal(t, 1500, cfg.WordLimit)
	assert.Equal(t, []string{".", "!", "?"}, cfg.EOSMarkers)
	assert.Equal(t, FormatParquet, cfg.Format)
	assert.Equal(t, "djvutxt", cfg.DJVUCommand)
	assert.False(t, cfg.Resume)
	assert.Zero(t, cfg.JobTimeout.Duration)

	assert.ErrorIs(t, cfg.Validate(), ErrNoSourceDir)
}

func TestNewConfig_WithOptions(t *testing.T) {
	cfg := NewConfig(
		WithSourceDir("/in"),
		WithOutputDir("/out"),
		WithMissionFilesList("/m.json"),
		WithPattern("**/*.pdf"),
		WithBatchCount(3),
		WithWorkers(2),
		WithWordLimit(50),
		WithEOSMarkers(";"),
		WithFormat(FormatBadger),
		WithDBPath("/db"),
		WithResume(true),
		WithJobTimeout(time.Minute),
		WithDJVUCommand("/usr/local/bin/djvutxt"),
	)

	assert.Equal(t, "/in", cfg.SourceDir)
	assert.Equal(t, "/out", cfg.OutputDir)
	assert.Equal(t, "/m.json", cfg.MissionFilesList)
	assert.Equal(t, "**/*.pdf", cfg.Pattern)
	assert.Equal(t, 3, cfg.BatchCount)
	assert.Equal(t, 2, cfg.Workers)
	assert.Equal(t, 50, cfg.WordLimit)
	assert.Equal(t, []string{";"}, cfg.EOSMarkers)
	assert.Equal(t, FormatBadger, cfg.Format)
	assert.Equal(t, "/db", cfg.DBPath)
	assert.True(t, cfg.Resume)
	assert.Equal(t, time.Minute, cfg.JobTimeout.Duration)
	assert.Equal(t, "/usr/local/bin/djvutxt", cfg.DJVUCommand)
	assert.NoError(t, cfg.Validate())
}

func TestConfig_Chunking(t *testing.T) {
	cfg := NewConfig(WithWordLimit(7), WithEOSMarkers("!"))
	chunk := cfg.Chunking()
	assert.Equal(t, 7, chunk.WordLimit)
	assert.Equal(t, []string{"!"}, chunk.EOSMarkers)
}

func TestConfig_NormalizeDBPath(t *testing.T) {
	tests := []struct {
		name string
		opts []ConfigOption
		want string
	}{
		{"parquet without resume", []ConfigOption{WithOutputDir("out")}, ""},
		{"badger format", []ConfigOption{WithOutputDir("out"), WithFormat(FormatBadger)}, filepath.Join("out", DefaultDBDirName)},
		{"resume", []ConfigOption{WithOutputDir("out"), WithResume(true)}, filepath.Join("out", DefaultDBDirName)},
		{"explicit path kept", []ConfigOption{WithResume(true), WithDBPath("/db")}, "/db"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig(tt.opts...)
			cfg.Normalize()
			assert.Equal(t, tt.want, cfg.DBPath)
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		opts    []ConfigOption
		wantErr error
	}{
		{"valid", nil, nil},
		{"no source", []ConfigOption{WithSourceDir("")}, ErrNoSourceDir},
		{"no output", []ConfigOption{WithOutputDir("")}, ErrInvalidConfig},
		{"zero batches", []ConfigOption{WithBatchCount(0)}, ErrInvalidConfig},
		{"zero workers", []ConfigOption{WithWorkers(0)}, ErrInvalidConfig},
		{"zero word limit", []ConfigOption{WithWordLimit(0)}, ErrInvalidConfig},
		{"no markers", []ConfigOption{WithEOSMarkers()}, ErrInvalidConfig},
		{"bad format", []ConfigOption{WithFormat("csv")}, ErrInvalidConfig},
		{"negative timeout", []ConfigOption{WithJobTimeout(-time.Second)}, ErrInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := append([]ConfigOption{WithSourceDir("/in")}, tt.opts...)
			err := NewConfig(opts...).Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "textmill.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
source_dir = "/data/library"
output_dir = "/data/chunks"
batch_count = 4
word_limit = 800
eos_markers = [".", "。"]
format = "badger"
resume = true
job_timeout = "2m30s"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/data/library", cfg.SourceDir)
	assert.Equal(t, "/data/chunks", cfg.OutputDir)
	assert.Equal(t, 4, cfg.BatchCount)
	assert.Equal(t, 800, cfg.WordLimit)
	assert.Equal(t, []string{".", "。"}, cfg.EOSMarkers)
	assert.Equal(t, FormatBadger, cfg.Format)
	assert.True(t, cfg.Resume)
	assert.Equal(t, 150*time.Second, cfg.JobTimeout.Duration)

	// Unset keys keep their defaults.
	assert.Equal(t, runtime.NumCPU(), cfg.Workers)
	assert.Equal(t, "djvutxt", cfg.DJVUCommand)

	require.NoError(t, cfg.Validate())
	assert.Equal(t, filepath.Join("/data/chunks", DefaultDBDirName), cfg.DBPath)
}

func TestLoad_OptionsOverrideFile(t *testing.T) {
	path := writeConfig(t, `
source_dir = "/from/file"
word_limit = 800
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	cfg.Apply(WithWordLimit(100))
	assert.Equal(t, "/from/file", cfg.SourceDir)
	assert.Equal(t, 100, cfg.WordLimit)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = Load(writeConfig(t, `word_limits = 5`))
	assert.ErrorIs(t, err, ErrInvalidConfig, "unknown keys are rejected")

	_, err = Load(writeConfig(t, `job_timeout = "soon"`))
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = Load(writeConfig(t, `batch_count = "many"`))
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestDuration_MarshalText(t *testing.T) {
	text, err := Duration{90 * time.Second}.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "1m30s", string(text))
}
