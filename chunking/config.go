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

package chunking

import (
	"errors"
	"strings"
)

// Defaults used when no configuration is supplied.
const (
	DefaultWordLimit = 1500
)

// DefaultEOSMarkers returns the default end-of-sentence markers.
func DefaultEOSMarkers() []string {
	return []string{".", "!", "?"}
}

// Config holds the parameters shared by every chunking strategy.
type Config struct {
	// WordLimit is the soft bound on words per chunk. A new chunk may only
	// start once the running word count has reached it.
	// Default: 1500
	WordLimit int

	// EOSMarkers are the suffixes that mark a token as sentence-terminal.
	// Default: ".", "!", "?"
	EOSMarkers []string
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithWordLimit sets the word limit.
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

// DefaultConfig returns a Config with the default word limit and markers.
func DefaultConfig() Config {
	return Config{
		WordLimit:  DefaultWordLimit,
		EOSMarkers: DefaultEOSMarkers(),
	}
}

// NewConfig creates a Config with the default values and applies the provided options.
func NewConfig(opts ...ConfigOption) Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// Validate checks that the configuration can drive a chunker.
func (c Config) Validate() error {
	if c.WordLimit < 1 {
		return errors.New("chunking config: WordLimit must be at least 1")
	}
	for _, m := range c.EOSMarkers {
		if strings.TrimSpace(m) != "" {
			return nil
		}
	}
	return errors.New("chunking config: at least one non-blank EOS marker is required")
}
