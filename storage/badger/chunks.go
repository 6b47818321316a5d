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

// ChunkExtension is the artifact extension used for documents kept in BadgerDB.
// Artifact paths only supply the document name.
const ChunkExtension = "chunks"

// ChunkStore implements storage.ChunkSink and storage.ChunkSource for BadgerDB.
// Documents are keyed by output name, so two sources with the same base name
// overwrite each other just as they would as files in one output directory.
type ChunkStore struct {
	backend *Backend
}

var (
	_ storage.ChunkSink   = (*ChunkStore)(nil)
	_ storage.ChunkSource = (*ChunkStore)(nil)
)

// NewChunkStore creates a new ChunkStore.
func NewChunkStore(backend *Backend) *ChunkStore {
	return &ChunkStore{
		backend: backend,
	}
}

// Extension implements storage.ChunkSink.
func (s *ChunkStore) Extension() string {
	return ChunkExtension
}

// Save stores doc under the name derived from outputPath.
// Sets Name and Id from the output path and CreatedAt if it is zero.
func (s *ChunkStore) Save(ctx context.Context, outputPath string, doc *core.StoredDocument) error {
	if s.backend.IsClosed() {
		return fmt.Errorf("%w: %w", core.ErrPersist, storage.ErrStorageClosed)
	}
	if doc == nil {
		return fmt.Errorf("%w: %w", core.ErrPersist, core.ValidateStoredDocument(nil))
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", core.ErrPersist, err)
	}
	doc.Name = documentName(outputPath)
	doc.Id = core.IDFromContent(doc.Name)
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now().UTC()
	}
	if err := core.ValidateStoredDocument(doc); err != nil {
		return fmt.Errorf("%w: %w", core.ErrPersist, err)
	}

	err := s.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Set(makeDocumentKey(doc.Name), storage.MarshalStoredDocument(doc)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", core.ErrPersist, doc.Name, err)
	}
	return nil
}

// Exists implements storage.ChunkSink.
func (s *ChunkStore) Exists(ctx context.Context, outputPath string) (bool, error) {
	found := false
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		_, err := tx.Get(makeDocumentKey(documentName(outputPath)))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		return nil
	}, false)
	return found, err
}

// Load retrieves the document stored under the name derived from outputPath.
// A bare document name works as well.
// Returns storage.ErrNotFound if no such document exists.
func (s *ChunkStore) Load(ctx context.Context, outputPath string) (*core.StoredDocument, error) {
	var doc *core.StoredDocument
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeDocumentKey(documentName(outputPath)))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return storage.ErrNotFound
			}
			return err
		}
		return item.Value(func(val []byte) error {
			var unmarshalErr error
			doc, unmarshalErr = storage.UnmarshalStoredDocument(val)
			return unmarshalErr
		})
	}, false)
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// Names returns the names of all stored documents in key order.
func (s *ChunkStore) Names(ctx context.Context) ([]string, error) {
	var names []string
	err := s.backend.scanPrefix([]byte(documentPrefix+":"), func(suffix, _ []byte) error {
		names = append(names, string(suffix))
		return nil
	})
	return names, err
}
