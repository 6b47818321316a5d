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

package core

import (
	"errors"
	"fmt"
)

// File-scoped processing errors. None of them is fatal to a run.
var (
	// ErrOpen indicates the source could not be opened or is corrupt.
	ErrOpen = errors.New("cannot open source")

	// ErrEmptyContent indicates extraction or chunking produced nothing.
	ErrEmptyContent = errors.New("empty content")

	// ErrUnsupportedKind indicates no extractor or strategy exists for a document kind.
	ErrUnsupportedKind = errors.New("unsupported document kind")

	// ErrPersist indicates the chunk list could not be written.
	ErrPersist = errors.New("cannot persist chunks")

	// ErrTimeout indicates a job exceeded its deadline.
	ErrTimeout = errors.New("job timed out")
)

// Domain validation errors
var (
	// ErrInvalidJob indicates a Job failed validation.
	ErrInvalidJob = errors.New("invalid job")

	// ErrInvalidDocument indicates a StoredDocument failed validation.
	ErrInvalidDocument = errors.New("invalid document")
)

// UnsupportedKindError wraps ErrUnsupportedKind with the offending extension.
func UnsupportedKindError(ext string) error {
	if ext == "" {
		return fmt.Errorf("%w: file has no extension", ErrUnsupportedKind)
	}
	return fmt.Errorf("%w: %q", ErrUnsupportedKind, ext)
}
