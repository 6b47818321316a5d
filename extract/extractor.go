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

package extract

import (
	"context"
	"io"
	"slices"
	"strings"
	"sync"

	"github.com/poiesic/textmill/core"
)

// Handle is an opened source document.
// It must be closed once extraction is done.
type Handle interface {
	io.Closer
}

// Extractor opens and extracts one document kind.
// Implementations must be safe for concurrent use; per-document state
// lives in the Handle.
type Extractor interface {
	// Kind returns the document kind this extractor produces units for.
	Kind() core.Kind

	// Open opens the source at path. Unreadable or corrupt sources are
	// reported as core.ErrOpen.
	Open(ctx context.Context, path string) (Handle, error)

	// ExtractRaw extracts the raw unit from an opened handle.
	ExtractRaw(ctx context.Context, h Handle) (core.RawUnit, error)
}

// Registry maps file extensions to extractors.
type Registry struct {
	mu         sync.RWMutex
	extractors map[string]Extractor
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		extractors: make(map[string]Extractor),
	}
}

// NewDefaultRegistry creates a registry with every built-in extractor registered
// under its canonical extension.
func NewDefaultRegistry(opts ...Option) *Registry {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	r := NewRegistry()
	r.Register(string(core.KindPDF), NewPDFExtractor())
	r.Register(string(core.KindEPUB), NewEPUBExtractor())
	r.Register(string(core.KindDOCX), NewDOCXExtractor())
	r.Register(string(core.KindTXT), NewTextExtractor())
	r.Register(string(core.KindDJVU), NewDJVUExtractor(o.djvuCommand))
	return r
}

// Register adds an extractor for ext. The extension is matched
// case-insensitively and may be given with or without a leading dot.
// A later registration for the same extension replaces the earlier one.
func (r *Registry) Register(ext string, e Extractor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.extractors[normalizeExt(ext)] = e
}

// Lookup returns the extractor registered for the final extension of path.
// Returns an error wrapping core.ErrUnsupportedKind if none is registered.
func (r *Registry) Lookup(path string) (Extractor, error) {
	ext := core.Extension(path)

	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.extractors[ext]
	if !ok {
		return nil, core.UnsupportedKindError(ext)
	}
	return e, nil
}

// Extensions returns the registered extensions in sorted order.
func (r *Registry) Extensions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	exts := make([]string, 0, len(r.extractors))
	for ext := range r.extractors {
		exts = append(exts, ext)
	}
	slices.Sort(exts)
	return exts
}

func normalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// Option configures the default registry.
type Option func(*options)

type options struct {
	djvuCommand string
}

func defaultOptions() *options {
	return &options{
		djvuCommand: DefaultDJVUCommand,
	}
}

// WithDJVUCommand sets the external command used to convert DjVu files to text.
// An empty command keeps the default.
func WithDJVUCommand(command string) Option {
	return func(o *options) {
		if command != "" {
			o.djvuCommand = command
		}
	}
}
