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
	"fmt"
	"strings"

	"github.com/poiesic/textmill/core"
)

// Divide splits flat text into word-bounded chunks that end on sentence boundaries.
//
// Tokens are appended to the current chunk one at a time. Once the chunk
// already holds at least wordLimit words, the next token ending with one of
// eosMarkers is appended and closes the chunk. A terminal token that only
// brings the chunk up to wordLimit does not close it. Tokens left over at the end form a final,
// possibly shorter chunk. Chunks are the original tokens joined by one space.
func Divide(text string, wordLimit int, eosMarkers []string) core.ChunkList {
	tokens := strings.Fields(text)
	if len(tokens) == 0 {
		return nil
	}

	var chunks core.ChunkList
	start := 0
	count := 0
	for i, token := range tokens {
		reached := count >= wordLimit
		count++
		if reached && isTerminal(token, eosMarkers) {
			chunks = append(chunks, strings.Join(tokens[start:i+1], " "))
			start = i + 1
			count = 0
		}
	}

	if start < len(tokens) {
		chunks = append(chunks, strings.Join(tokens[start:], " "))
	}

	return chunks
}

// ConcatenateBounded packs paragraph-like fragments into chunks.
//
// A fragment is appended to the current chunk while the chunk holds fewer
// than wordLimit words. Once the limit is reached, the next fragment closes
// the current chunk and starts a new one. Every fragment is trimmed and
// appended with a leading space, so a blank fragment adds a lone space.
// A trailing chunk with no words is dropped.
func ConcatenateBounded(fragments []string, wordLimit int) core.ChunkList {
	var (
		chunks core.ChunkList
		buf    strings.Builder
		count  int
	)

	for _, fragment := range fragments {
		content := strings.TrimSpace(fragment)

		if count >= wordLimit {
			chunks = append(chunks, buf.String())
			buf.Reset()
			count = 0
		}

		buf.WriteString(" ")
		buf.WriteString(content)
		count += countWords(content)
	}

	if count > 0 {
		chunks = append(chunks, buf.String())
	}

	return chunks
}

// Postprocess selects the strategy for kind and chunks unit with it.
//
// Paginated, plain and externally converted kinds are divided on sentence
// boundaries. The flowed paragraph kind is concatenated fragment by fragment.
// An empty result is reported as core.ErrEmptyContent.
func Postprocess(unit core.RawUnit, kind core.Kind, cfg Config) (core.ChunkList, error) {
	var chunks core.ChunkList

	switch kind {
	case core.KindPDF, core.KindEPUB, core.KindTXT, core.KindDJVU:
		if !unit.IsFlat() {
			return nil, fmt.Errorf("%w: %s expects flat text", ErrVariantMismatch, kind)
		}
		chunks = Divide(unit.Text(), cfg.WordLimit, cfg.EOSMarkers)
	case core.KindDOCX:
		if unit.IsFlat() {
			return nil, fmt.Errorf("%w: %s expects fragments", ErrVariantMismatch, kind)
		}
		chunks = ConcatenateBounded(unit.Fragments(), cfg.WordLimit)
	default:
		return nil, core.UnsupportedKindError(string(kind))
	}

	if err := core.ValidateChunkList(chunks); err != nil {
		return nil, fmt.Errorf("%s: %w", kind, err)
	}

	return chunks, nil
}

// isTerminal reports whether token ends with any non-empty marker.
func isTerminal(token string, markers []string) bool {
	for _, m := range markers {
		if m != "" && strings.HasSuffix(token, m) {
			return true
		}
	}
	return false
}

func countWords(s string) int {
	return len(strings.Fields(s))
}
