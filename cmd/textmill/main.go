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

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/poiesic/textmill"
	"github.com/poiesic/textmill/config"
	"github.com/poiesic/textmill/core"
	"github.com/poiesic/textmill/storage/badger"
	"github.com/poiesic/textmill/storage/parquet"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "textmill",
		Usage: "Split document collections into sentence-aligned text chunks",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "run",
				Usage:  "Chunk every supported document in a directory",
				Action: runCommand,
				Flags:  runFlags(),
			},
			{
				Name:      "show",
				Usage:     "Print the chunks stored for a document",
				ArgsUsage: "[parquet file]",
				Action:    showCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "db",
						Aliases: []string{"d"},
						Usage:   "Path to BadgerDB database directory",
					},
					&cli.StringFlag{
						Name:    "name",
						Aliases: []string{"n"},
						Usage:   "Document name to show from the database; lists names when empty",
					},
				},
			},
		},
	}
}

func runFlags() []cli.Flag {
	defaults := config.DefaultConfig()
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "TOML file with run settings; flags override it",
		},
		&cli.StringFlag{
			Name:    "source-dir",
			Aliases: []string{"s"},
			Usage:   "Directory containing the documents to chunk",
		},
		&cli.StringFlag{
			Name:    "output-dir",
			Aliases: []string{"o"},
			Usage:   "Directory receiving one artifact per document",
			Value:   defaults.OutputDir,
		},
		&cli.StringFlag{
			Name:  "mission-files-list",
			Usage: "JSON array of base file names to process",
		},
		&cli.StringFlag{
			Name:  "pattern",
			Usage: "Glob matched inside the source directory (supports **)",
			Value: defaults.Pattern,
		},
		&cli.IntFlag{
			Name:  "batch-count",
			Usage: "Number of sequential sub-batches",
			Value: defaults.BatchCount,
		},
		&cli.IntFlag{
			Name:    "workers",
			Aliases: []string{"w"},
			Usage:   "Number of documents processed concurrently",
			Value:   defaults.Workers,
		},
		&cli.IntFlag{
			Name:  "word-limit",
			Usage: "Soft word bound per chunk",
			Value: defaults.WordLimit,
		},
		&cli.StringSliceFlag{
			Name:  "eos",
			Usage: "End-of-sentence marker (repeatable)",
			Value: cli.NewStringSlice(defaults.EOSMarkers...),
		},
		&cli.StringFlag{
			Name:  "format",
			Usage: "Artifact format (parquet, badger)",
			Value: string(defaults.Format),
		},
		&cli.StringFlag{
			Name:    "db",
			Aliases: []string{"d"},
			Usage:   "Path to BadgerDB database directory (default: <output-dir>/" + config.DefaultDBDirName + ")",
		},
		&cli.BoolFlag{
			Name:  "resume",
			Usage: "Skip documents unchanged since their last successful run",
		},
		&cli.DurationFlag{
			Name:  "job-timeout",
			Usage: "Maximum time spent on one document (0 disables)",
		},
		&cli.StringFlag{
			Name:  "djvu-command",
			Usage: "Command converting a DjVu file to text on stdout",
			Value: defaults.DJVUCommand,
		},
	}
}

// loadConfig builds the run configuration: defaults, then the config file,
// then any flag set on the command line.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if path := c.String("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	var opts []config.ConfigOption
	if c.IsSet("source-dir") {
		opts = append(opts, config.WithSourceDir(c.String("source-dir")))
	}
	if c.IsSet("output-dir") {
		opts = append(opts, config.WithOutputDir(c.String("output-dir")))
	}
	if c.IsSet("mission-files-list") {
		opts = append(opts, config.WithMissionFilesList(c.String("mission-files-list")))
	}
	if c.IsSet("pattern") {
		opts = append(opts, config.WithPattern(c.String("pattern")))
	}
	if c.IsSet("batch-count") {
		opts = append(opts, config.WithBatchCount(c.Int("batch-count")))
	}
	if c.IsSet("workers") {
		opts = append(opts, config.WithWorkers(c.Int("workers")))
	}
	if c.IsSet("word-limit") {
		opts = append(opts, config.WithWordLimit(c.Int("word-limit")))
	}
	if c.IsSet("eos") {
		opts = append(opts, config.WithEOSMarkers(c.StringSlice("eos")...))
	}
	if c.IsSet("format") {
		opts = append(opts, config.WithFormat(config.Format(strings.ToLower(c.String("format")))))
	}
	if c.IsSet("db") {
		opts = append(opts, config.WithDBPath(c.String("db")))
	}
	if c.IsSet("resume") {
		opts = append(opts, config.WithResume(c.Bool("resume")))
	}
	if c.IsSet("job-timeout") {
		opts = append(opts, config.WithJobTimeout(c.Duration("job-timeout")))
	}
	if c.IsSet("djvu-command") {
		opts = append(opts, config.WithDJVUCommand(c.String("djvu-command")))
	}
	cfg.Apply(opts...)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func runCommand(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	out := c.App.Writer

	engine, err := textmill.NewEngine(cfg,
		textmill.WithProgress(c.App.ErrWriter),
		textmill.WithBatchDone(func(r core.BatchResult) {
			fmt.Fprintf(out, "Batch %d: %d/%d succeeded (%d skipped, %d failed)\n",
				r.Index+1, r.Succeeded, r.Total, r.Skipped, r.Failed)
		}),
	)
	if err != nil {
		return err
	}
	defer engine.Close()

	files, err := engine.Files()
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Found %d files in %s\n", len(files), cfg.SourceDir)
	if len(files) == 0 {
		fmt.Fprintln(out, "No files found, exiting")
		return nil
	}

	start := time.Now()
	report, err := engine.Run(ctx, files)
	if report != nil {
		printReport(out, report.Succeeded, report.Total, report.Skipped, time.Since(start))
	}
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return fmt.Errorf("run interrupted: %w", err)
		}
		return fmt.Errorf("run failed: %w", err)
	}
	return nil
}

func printReport(w io.Writer, succeeded, total, skipped int, elapsed time.Duration) {
	fmt.Fprintf(w, "Processed %d/%d files successfully", succeeded, total)
	if skipped > 0 {
		fmt.Fprintf(w, " (%d unchanged)", skipped)
	}
	fmt.Fprintf(w, "\nElapsed: %s\n", elapsed.Round(time.Millisecond))
}

func showCommand(c *cli.Context) error {
	ctx := c.Context
	out := c.App.Writer

	if c.NArg() > 0 {
		doc, err := parquet.NewSink().Load(ctx, c.Args().First())
		if err != nil {
			return fmt.Errorf("failed to read artifact: %w", err)
		}
		printDocument(out, doc)
		return nil
	}

	dbPath := c.String("db")
	if dbPath == "" {
		return fmt.Errorf("either a parquet file or --db is required")
	}
	backend, err := badger.OpenBackend(dbPath, false, badger.WithLogger(slog.Default()))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer backend.Close()
	store := badger.NewChunkStore(backend)

	name := c.String("name")
	if name == "" {
		names, err := store.Names(ctx)
		if err != nil {
			return fmt.Errorf("failed to list documents: %w", err)
		}
		for _, n := range names {
			fmt.Fprintln(out, n)
		}
		return nil
	}

	doc, err := store.Load(ctx, name)
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", name, err)
	}
	printDocument(out, doc)
	return nil
}

func printDocument(w io.Writer, doc *core.StoredDocument) {
	fmt.Fprintf(w, "Source: %s\n", doc.Source)
	fmt.Fprintf(w, "Kind: %s\n", doc.Kind)
	fmt.Fprintf(w, "Chunks: %d (%d words)\n", len(doc.Chunks), doc.Chunks.Words())
	for i, chunk := range doc.Chunks {
		fmt.Fprintf(w, "\n[%d] %s\n", i+1, chunk)
	}
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
