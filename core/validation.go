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
	"fmt"
	"strings"
)

// ValidateChunkList checks that a chunk list carries content.
//
// A nil list, an empty list, or a list whose chunks are all blank is
// reported as ErrEmptyContent.
func ValidateChunkList(chunks ChunkList) error {
	for _, c := range chunks {
		if strings.TrimSpace(c) != "" {
			return nil
		}
	}
	return ErrEmptyContent
}

// ValidateJob validates a Job before dispatch.
//
// Validation rules:
//   - SourcePath must not be empty
//   - OutputPath must not be empty
//   - OutputPath must differ from SourcePath
func ValidateJob(job Job) error {
	if job.SourcePath == "" {
		return fmt.Errorf("%w: source path is empty", ErrInvalidJob)
	}
	if job.OutputPath == "" {
		return fmt.Errorf("%w: output path is empty", ErrInvalidJob)
	}
	if job.OutputPath == job.SourcePath {
		return fmt.Errorf("%w: output path equals source path", ErrInvalidJob)
	}
	return nil
}

// ValidateStoredDocument validates a document before it is written to a store.
//
// Validation rules:
//   - document must not be nil
//   - Name must not be empty
//   - Kind must be a known kind
//   - Chunks must pass ValidateChunkList
func ValidateStoredDocument(doc *StoredDocument) error {
	if doc == nil {
		return fmt.Errorf("%w: document is nil", ErrInvalidDocument)
	}
	if doc.Name == "" {
		return fmt.Errorf("%w: name is empty", ErrInvalidDocument)
	}
	if !doc.Kind.Valid() {
		return fmt.Errorf("%w: kind %q", ErrInvalidDocument, doc.Kind)
	}
	if err := ValidateChunkList(doc.Chunks); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}
	return nil
}
