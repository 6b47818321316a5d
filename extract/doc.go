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

// Package extract turns source documents into raw text units.
//
// Each supported kind has an Extractor that opens the source and extracts
// either one flat string (pdf, epub, txt, djvu) or an ordered sequence of
// paragraph fragments (docx). A Registry resolves the extractor for a path
// by its final extension. Content is sniffed before opening so a file whose
// bytes do not match its extension fails with core.ErrOpen.
package extract
