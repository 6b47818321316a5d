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

//go:generate go run ../cmd/musgen

import (
	"encoding/binary"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for stored entities.
// It is generated using content-based hashing.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// Fingerprint hashes an ordered tuple of values into an ID.
// Parts are separated by a NUL byte so ("ab", "c") and ("a", "bc") differ.
func Fingerprint(parts ...string) ID {
	return IDFromContent(strings.Join(parts, "\x00"))
}

// Kind identifies a document family and selects its extractor and chunking strategy.
type Kind string

const (
	// KindPDF is the paginated page-based family.
	KindPDF Kind = "pdf"
	// KindEPUB is a paginated e-book rendered to flat text.
	KindEPUB Kind = "epub"
	// KindDOCX is the flowed paragraph-based family.
	KindDOCX Kind = "docx"
	// KindTXT is plain text.
	KindTXT Kind = "txt"
	// KindDJVU is converted to text by an external tool.
	KindDJVU Kind = "djvu"
)

// Kinds lists every kind known to the system in a stable order.
func Kinds() []Kind {
	return []Kind{KindPDF, KindEPUB, KindDOCX, KindTXT, KindDJVU}
}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	for _, known := range Kinds() {
		if k == known {
			return true
		}
	}
	return false
}

// Extension returns the lower-case final extension of path without the dot.
// Returns "" when the base name has no extension.
func Extension(path string) string {
	ext := filepath.Ext(filepath.Base(path))
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// KindFromPath maps the final extension of path to a Kind.
func KindFromPath(path string) (Kind, error) {
	ext := Extension(path)
	k := Kind(ext)
	if !k.Valid() {
		return "", UnsupportedKindError(ext)
	}
	return k, nil
}

type unitVariant int

const (
	variantFlat unitVariant = iota + 1
	variantFragments
)

// RawUnit is the output of an extractor: either one flat, already concatenated
// string or an ordered sequence of paragraph-like fragments.
// The zero value is an empty flat unit.
type RawUnit struct {
	variant   unitVariant
	text      string
	fragments []string
}

// FlatText builds a flat-text RawUnit.
func FlatText(text string) RawUnit {
	return RawUnit{variant: variantFlat, text: text}
}

// FragmentSequence builds a fragment-sequence RawUnit.
// The slice is copied.
func FragmentSequence(fragments []string) RawUnit {
	cp := make([]string, len(fragments))
	copy(cp, fragments)
	return RawUnit{variant: variantFragments, fragments: cp}
}

// IsFlat reports whether the unit is the flat-text variant.
func (u RawUnit) IsFlat() bool {
	return u.variant != variantFragments
}

// Text returns the flat text. Empty for fragment sequences.
func (u RawUnit) Text() string {
	return u.text
}

// Fragments returns the fragments. Nil for flat text.
func (u RawUnit) Fragments() []string {
	return u.fragments
}

// IsEmpty reports whether the unit carries no non-whitespace content.
func (u RawUnit) IsEmpty() bool {
	if u.IsFlat() {
		return strings.TrimSpace(u.text) == ""
	}
	for _, f := range u.fragments {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

// ChunkList is the ordered sequence of chunks belonging to one document.
type ChunkList []string

// Words returns the total number of whitespace-delimited words across all chunks.
func (c ChunkList) Words() int {
	n := 0
	for _, chunk := range c {
		n += len(strings.Fields(chunk))
	}
	return n
}

// Job is one unit of work for the orchestrator: a source file and the
// artifact path its chunks are written to.
type Job struct {
	SourcePath string
	OutputPath string
}

// Name returns the base name of the source without its final extension.
func (j Job) Name() string {
	base := filepath.Base(j.SourcePath)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// BatchResult tallies one sub-batch.
type BatchResult struct {
	Index     int
	Total     int
	Succeeded int
	Failed    int
	Skipped   int // Counted in Succeeded as well
}

// StoredDocument is the persisted form of a chunked document.
type StoredDocument struct {
	Id        ID
	Name      string    // Output key: base name without extension
	Source    string    // Source file path
	Kind      Kind
	Chunks    ChunkList
	CreatedAt time.Time // When the chunks were written
}

// Checkpoint records that a source file was processed with a given input fingerprint.
type Checkpoint struct {
	Source      string
	Fingerprint ID
	Chunks      int
	CompletedAt time.Time
}
