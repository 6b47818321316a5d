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

// Package storage provides the persistence layer for chunked documents.
//
// This package defines the ports the document pipeline writes through and
// the binary encoding shared by the stores. Concrete backends live in
// subpackages:
//
//   - storage/parquet: one Parquet file per document with a single
//     "chunks" column, one row per chunk in order
//   - storage/badger: every document in one BadgerDB store keyed by its
//     output name, plus per-source checkpoints for resumable runs
//
// # Usage
//
// Write artifacts as Parquet files:
//
//	sink := parquet.NewSink()
//	err := sink.Save(ctx, "out/report.parquet", doc)
//
// Or keep everything in BadgerDB:
//
//	backend, err := badger.OpenBackend("/path/to/db", false)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer backend.Close()
//	store := badger.NewChunkStore(backend)
//
// Use in tests with in-memory storage:
//
//	store, checkpoints, backend, err := badger.NewMemoryStores()
//
// # Thread Safety
//
// All sink and repository implementations must be safe for concurrent
// use from multiple pipeline workers.
//
// # Serialization
//
// StoredDocument and Checkpoint values are encoded with the mus-go serializers
// generated into core (see cmd/musgen). Timestamps are stored in microseconds
// and decoded as UTC.
package storage
