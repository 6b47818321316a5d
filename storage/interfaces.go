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

package storage

import (
	"context"

	"github.com/poiesic/textmill/core"
)

// ChunkSink persists the chunk list of one document under an output path.
// Implementations must be safe for concurrent use by pipeline workers.
type ChunkSink interface {
	// Save writes doc as the artifact at outputPath, replacing any previous one.
	// Failures are reported wrapped in core.ErrPersist.
	Save(ctx context.Context, outputPath string, doc *core.StoredDocument) error

	// Exists reports whether an artifact is already stored at outputPath.
	Exists(ctx context.Context, outputPath string) (bool, error)

	// Extension returns the file extension used for artifact paths, without a dot.
	Extension() string
}

// ChunkSource reads back a stored artifact.
type ChunkSource interface {
	// Load returns the document stored at outputPath.
	// Returns ErrNotFound if no artifact exists there.
	Load(ctx context.Context, outputPath string) (*core.StoredDocument, error)
}

// CheckpointRepository provides persistence for per-source checkpoints.
// Checkpoints let an interrupted run skip files whose inputs are unchanged.
type CheckpointRepository interface {
	// SaveCheckpoint persists the checkpoint for checkpoint.Source.
	// Sets CompletedAt if it is zero.
	SaveCheckpoint(ctx context.Context, checkpoint *core.Checkpoint) error

	// LoadCheckpoint retrieves the checkpoint for a source path.
	// Returns nil, nil if no checkpoint exists.
	LoadCheckpoint(ctx context.Context, source string) (*core.Checkpoint, error)
}
