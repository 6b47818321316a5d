// Package config holds the settings of a chunking run.
//
// Settings come from DefaultConfig, optionally overlaid by a TOML file via
// Load, then by functional options (the CLI maps explicitly set flags to
// options). Validate must pass before a run starts.
//
// Example file:
//
//	source_dir = "/data/library"
//	output_dir = "/data/chunks"
//	batch_count = 4
//	word_limit = 800
//	eos_markers = [".", "!", "?", "。"]
//	format = "parquet"
//	job_timeout = "2m"
package config
