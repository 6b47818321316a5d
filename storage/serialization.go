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
	"fmt"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"
	"github.com/poiesic/textmill/core"
)

// MarshalID serializes an ID to bytes.
func MarshalID(id core.ID) []byte {
	buf := make([]byte, core.IDMUS.Size(id))
	core.IDMUS.Marshal(id, buf)
	return buf
}

// UnmarshalID deserializes an ID from bytes.
func UnmarshalID(data []byte) (core.ID, error) {
	id, _, err := core.IDMUS.Unmarshal(data)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return id, nil
}

// MarshalStoredDocument serializes a StoredDocument to bytes.
func MarshalStoredDocument(doc *core.StoredDocument) []byte {
	buf := make([]byte, core.StoredDocumentMUS.Size(*doc))
	core.StoredDocumentMUS.Marshal(*doc, buf)
	return buf
}

// UnmarshalStoredDocument deserializes a StoredDocument from bytes.
// Times are returned in UTC.
func UnmarshalStoredDocument(data []byte) (*core.StoredDocument, error) {
	if err := checkChunkCount(data); err != nil {
		return nil, err
	}
	doc, _, err := core.StoredDocumentMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: stored document: %w", ErrSerializationFailed, err)
	}
	doc.CreatedAt = doc.CreatedAt.UTC()
	return &doc, nil
}

// checkChunkCount rejects a stored document whose chunk count cannot fit in
// the remaining bytes. Every chunk takes at least one byte, so this bounds
// the allocation made when the list is decoded.
func checkChunkCount(data []byte) error {
	n, err := core.IDMUS.Skip(data)
	if err != nil {
		return fmt.Errorf("%w: stored document: %w", ErrSerializationFailed, err)
	}
	// Name, Source and Kind.
	for range 3 {
		n1, err := ord.String.Skip(data[n:])
		if err != nil {
			return fmt.Errorf("%w: stored document: %w", ErrSerializationFailed, err)
		}
		n += n1
	}
	count, n1, err := varint.Uint64.Unmarshal(data[n:])
	if err != nil {
		return fmt.Errorf("%w: stored document: %w", ErrSerializationFailed, err)
	}
	if remaining := uint64(len(data) - n - n1); count > remaining {
		return fmt.Errorf("%w: %d chunks in %d bytes", ErrTruncatedData, count, remaining)
	}
	return nil
}

// MarshalCheckpoint serializes a Checkpoint to bytes.
func MarshalCheckpoint(checkpoint *core.Checkpoint) []byte {
	buf := make([]byte, core.CheckpointMUS.Size(*checkpoint))
	core.CheckpointMUS.Marshal(*checkpoint, buf)
	return buf
}

// UnmarshalCheckpoint deserializes a Checkpoint from bytes.
// Times are returned in UTC.
func UnmarshalCheckpoint(data []byte) (*core.Checkpoint, error) {
	checkpoint, _, err := core.CheckpointMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: checkpoint: %w", ErrSerializationFailed, err)
	}
	checkpoint.CompletedAt = checkpoint.CompletedAt.UTC()
	return &checkpoint, nil
}
