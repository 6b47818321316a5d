package extract

import (
	"context"
	"fmt"
	"os"

	"github.com/ledongthuc/pdf"
	"github.com/poiesic/textmill/core"
)

// PDFExtractor extracts text from PDF documents. Each page is a block and
// each non-blank line of the page's plain text is a span.
type PDFExtractor struct{}

// NewPDFExtractor creates a PDF extractor.
func NewPDFExtractor() *PDFExtractor {
	return &PDFExtractor{}
}

type pdfHandle struct {
	file   *os.File
	reader *pdf.Reader
}

func (h *pdfHandle) Close() error {
	return h.file.Close()
}

// Kind implements Extractor.
func (e *PDFExtractor) Kind() core.Kind {
	return core.KindPDF
}

// Open implements Extractor.
func (e *PDFExtractor) Open(ctx context.Context, path string) (Handle, error) {
	if err := sniffAs(path, mimePDF); err != nil {
		return nil, openError(path, err)
	}
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, openError(path, err)
	}
	return &pdfHandle{file: f, reader: r}, nil
}

// ExtractRaw implements Extractor.
func (e *PDFExtractor) ExtractRaw(ctx context.Context, h Handle) (core.RawUnit, error) {
	ph, ok := h.(*pdfHandle)
	if !ok {
		return core.RawUnit{}, ErrHandleMismatch
	}

	total := ph.reader.NumPage()
	blocks := make([][]string, 0, total)
	for i := 1; i <= total; i++ {
		if err := ctx.Err(); err != nil {
			return core.RawUnit{}, err
		}
		page := ph.reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return core.RawUnit{}, openError(ph.file.Name(), fmt.Errorf("page %d: %w", i, err))
		}
		blocks = append(blocks, nonBlankLines(text))
	}
	return core.FlatText(MergeBlocks(blocks)), nil
}
