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
	"fmt"
	"path/filepath"
	"strings"
)

// Key prefixes for different data types
const (
	documentPrefix   = "doc"
	checkpointPrefix = "chkpt"
)

// makeDocumentKey generates a key for a stored document by its output name.
// Format: prefix:name
func makeDocumentKey(name string) []byte {
	return []byte(fmt.Sprintf("%s:%s", documentPrefix, name))
}

// makeCheckpointKey generates a key for the checkpoint of a source path.
// Format: prefix:source
func makeCheckpointKey(source string) []byte {
	return []byte(fmt.Sprintf("%s:%s", checkpointPrefix, source))
}

// documentName derives the store key from an artifact path: the base name
// without its final extension.
func documentName(outputPath string) string {
	base := filepath.Base(outputPath)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
