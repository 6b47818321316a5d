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

package batch

// Partition deals items round-robin into b sub-batches: items[i] goes to
// sub-batch i mod b. b is clamped to [1, len(items)] so no sub-batch is empty,
// and sub-batch sizes differ by at most one. Order within a sub-batch follows
// input order. Returns nil for no items.
func Partition[T any](items []T, b int) [][]T {
	if len(items) == 0 {
		return nil
	}
	b = max(1, min(b, len(items)))

	out := make([][]T, b)
	for i := range out {
		out[i] = make([]T, 0, (len(items)+b-1-i)/b)
	}
	for i, item := range items {
		out[i%b] = append(out[i%b], item)
	}
	return out
}
