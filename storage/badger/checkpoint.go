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

package badger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/textmill/core"
	"github.com/poiesic/textmill/storage"
)

// errNoSource is returned for checkpoints without a source path.
var errNoSource = errors.New("checkpoint has no source path")

// CheckpointRepository records which sources were fully processed, keyed by
// the full source path so files sharing a base name never collide.
type CheckpointRepository struct {
	backend *Backend
}

var _ storage.CheckpointRepository = (*CheckpointRepository)(nil)

// NewCheckpointRepository creates a checkpoint repository on backend.
func NewCheckpointRepository(backend *Backend) *CheckpointRepository {
	return &CheckpointRepository{backend: backend}
}

// SaveCheckpoint implements storage.CheckpointRepository.
func (r *CheckpointRepository) SaveCheckpoint(ctx context.Context, cp *core.Checkpoint) error {
	if r.backend.IsClosed() {
		return storage.ErrStorageClosed
	}
	if cp == nil || cp.Source == "" {
		return errNoSource
	}
	if cp.CompletedAt.IsZero() {
		cp.CompletedAt = time.Now().UTC()
	}

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Set(makeCheckpointKey(cp.Source), storage.MarshalCheckpoint(cp)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return fmt.Errorf("saving checkpoint for %s: %w", cp.Source, err)
	}
	return nil
}

// LoadCheckpoint implements storage.CheckpointRepository.
// A stored record whose source differs from the requested one is reported as
// corrupt rather than returned.
func (r *CheckpointRepository) LoadCheckpoint(ctx context.Context, source string) (*core.Checkpoint, error) {
	if r.backend.IsClosed() {
		return nil, storage.ErrStorageClosed
	}
	if source == "" {
		return nil, errNoSource
	}

	var cp *core.Checkpoint
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeCheckpointKey(source))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			loaded, err := storage.UnmarshalCheckpoint(val)
			if err != nil {
				return err
			}
			if loaded.Source != source {
				return fmt.Errorf("%w: checkpoint key %q holds %q", storage.ErrSerializationFailed, source, loaded.Source)
			}
			cp = loaded
			return nil
		})
	}, false)
	if err != nil {
		return nil, fmt.Errorf("loading checkpoint for %s: %w", source, err)
	}
	return cp, nil
}
