// Package chunking turns extracted document text into ordered, word-bounded chunks.
//
// Two strategies are provided:
//   - Divide works on a flat string and only cuts at a token ending in an
//     end-of-sentence marker once the word limit has been reached.
//   - ConcatenateBounded works on paragraph fragments and cuts at the first
//     fragment boundary after the word limit has been reached.
//
// Postprocess picks the strategy from the document kind. All functions are
// pure and deterministic; the same input always yields the same chunks.
package chunking
