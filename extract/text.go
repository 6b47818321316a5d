package extract

import (
	"context"
	"os"
	"strings"

	"github.com/poiesic/textmill/core"
	"github.com/tmc/langchaingo/documentloaders"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// TextExtractor reads plain-text documents. Content is decoded as UTF-8
// unless a UTF-16 byte-order mark says otherwise.
type TextExtractor struct{}

// NewTextExtractor creates a plain-text extractor.
func NewTextExtractor() *TextExtractor {
	return &TextExtractor{}
}

type textHandle struct {
	file *os.File
}

func (h *textHandle) Close() error {
	return h.file.Close()
}

// Kind implements Extractor.
func (e *TextExtractor) Kind() core.Kind {
	return core.KindTXT
}

// Open implements Extractor.
func (e *TextExtractor) Open(ctx context.Context, path string) (Handle, error) {
	if err := sniffText(path); err != nil {
		return nil, openError(path, err)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, openError(path, err)
	}
	return &textHandle{file: f}, nil
}

// ExtractRaw implements Extractor.
func (e *TextExtractor) ExtractRaw(ctx context.Context, h Handle) (core.RawUnit, error) {
	th, ok := h.(*textHandle)
	if !ok {
		return core.RawUnit{}, ErrHandleMismatch
	}

	decoded := transform.NewReader(th.file, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	docs, err := documentloaders.NewText(decoded).Load(ctx)
	if err != nil {
		return core.RawUnit{}, openError(th.file.Name(), err)
	}

	var sb strings.Builder
	for _, doc := range docs {
		sb.WriteString(doc.PageContent)
	}
	return core.FlatText(sb.String()), nil
}
