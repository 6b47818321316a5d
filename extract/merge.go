package extract

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// MergeBlocks flattens text blocks, each made of ordered spans, into one string.
//
// Blank spans are dropped. Inside a block, a span is appended directly when
// the text so far ends in a non-letter, and after a single space when it ends
// in a letter. Each block is appended to the result after a single space.
func MergeBlocks(blocks [][]string) string {
	var out strings.Builder
	for _, spans := range blocks {
		out.WriteString(" ")
		out.WriteString(mergeSpans(spans))
	}
	return out.String()
}

func mergeSpans(spans []string) string {
	var block strings.Builder
	for _, span := range spans {
		if strings.TrimSpace(span) == "" {
			continue
		}
		if block.Len() > 0 {
			last, _ := utf8.DecodeLastRuneInString(block.String())
			if unicode.IsLetter(last) {
				block.WriteString(" ")
			}
		}
		block.WriteString(span)
	}
	return block.String()
}

// nonBlankLines splits text into lines and drops the blank ones.
func nonBlankLines(text string) []string {
	lines := strings.Split(text, "\n")
	spans := lines[:0]
	for _, line := range lines {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) != "" {
			spans = append(spans, line)
		}
	}
	return spans
}
