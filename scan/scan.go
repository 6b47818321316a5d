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

// Package scan builds the file list of a run and names its output artifacts.
package scan

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// DefaultPattern matches every entry directly inside the source directory.
const DefaultPattern = "*"

var (
	// ErrNotDirectory is returned when the source path is not a directory.
	ErrNotDirectory = errors.New("not a directory")

	// ErrInvalidMissionList is returned when a mission list is not a JSON array of strings.
	ErrInvalidMissionList = errors.New("invalid mission list")
)

// AllowList is a set of base file names without extension.
// A nil AllowList allows every file.
type AllowList map[string]struct{}

// NewAllowList builds an allow-list from names. Surrounding whitespace is trimmed
// and blank names are dropped.
func NewAllowList(names ...string) AllowList {
	allow := make(AllowList, len(names))
	for _, name := range names {
		if name = strings.TrimSpace(name); name != "" {
			allow[name] = struct{}{}
		}
	}
	return allow
}

// Allows reports whether path passes the list. Only the base name without its
// final extension is compared.
func (a AllowList) Allows(path string) bool {
	if a == nil {
		return true
	}
	_, ok := a[BaseName(path)]
	return ok
}

// ReadFilenames returns the regular files under dir matching pattern, sorted,
// and filtered by allow. An empty pattern means DefaultPattern. Patterns
// support doublestar syntax, so "**/*" walks subdirectories.
func ReadFilenames(dir, pattern string, allow AllowList) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotDirectory, dir)
	}
	if pattern == "" {
		pattern = DefaultPattern
	}

	matches, err := doublestar.FilepathGlob(filepath.Join(dir, pattern))
	if err != nil {
		return nil, fmt.Errorf("pattern %q: %w", pattern, err)
	}

	files := make([]string, 0, len(matches))
	for _, path := range matches {
		fi, err := os.Stat(path)
		if err != nil || !fi.Mode().IsRegular() {
			continue
		}
		if allow.Allows(path) {
			files = append(files, path)
		}
	}
	slices.Sort(files)
	return files, nil
}

// ReadMissionList loads a JSON array of base file names as an allow-list.
func ReadMissionList(path string) (AllowList, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var names []string
	if err := json.Unmarshal(data, &names); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidMissionList, path, err)
	}
	return NewAllowList(names...), nil
}

// BaseName returns the base name of path with only its final extension removed.
func BaseName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// OutputPath names the artifact for source: {outputDir}/{base name}.{ext}.
func OutputPath(outputDir, source, ext string) string {
	return filepath.Join(outputDir, BaseName(source)+"."+strings.TrimPrefix(ext, "."))
}

// EnsureDir creates dir and any missing parents.
func EnsureDir(dir string) error {
	return os.MkdirAll(dir, 0755)
}
