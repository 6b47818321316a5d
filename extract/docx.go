package extract

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"io"
	"strings"

	"github.com/poiesic/textmill/core"
)

// DOCXExtractor extracts the body paragraphs of Word documents as an
// ordered fragment sequence.
type DOCXExtractor struct{}

// NewDOCXExtractor creates a DOCX extractor.
func NewDOCXExtractor() *DOCXExtractor {
	return &DOCXExtractor{}
}

type docxHandle struct {
	*zipHandle
}

// Kind implements Extractor.
func (e *DOCXExtractor) Kind() core.Kind {
	return core.KindDOCX
}

// Open implements Extractor.
func (e *DOCXExtractor) Open(ctx context.Context, path string) (Handle, error) {
	h, err := openZip(path)
	if err != nil {
		return nil, err
	}
	if h.file("word/document.xml") == nil {
		h.Close()
		return nil, openError(path, ErrMissingEntry)
	}
	return &docxHandle{zipHandle: h}, nil
}

// ExtractRaw implements Extractor.
func (e *DOCXExtractor) ExtractRaw(ctx context.Context, h Handle) (core.RawUnit, error) {
	dh, ok := h.(*docxHandle)
	if !ok {
		return core.RawUnit{}, ErrHandleMismatch
	}
	data, err := dh.read("word/document.xml")
	if err != nil {
		return core.RawUnit{}, openError(dh.path, err)
	}
	paragraphs, err := bodyParagraphs(data)
	if err != nil {
		return core.RawUnit{}, openError(dh.path, err)
	}
	return core.FragmentSequence(paragraphs), nil
}

// bodyParagraphs returns the text of each paragraph that is a direct child
// of the document body, in document order. Paragraphs nested in tables,
// headers or text boxes are not included.
func bodyParagraphs(data []byte) ([]string, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))

	var (
		paragraphs []string
		stack      []string
		text       strings.Builder
		inPara     bool
		inText     bool
	)
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			name := t.Name.Local
			switch {
			case name == "p" && len(stack) > 0 && stack[len(stack)-1] == "body":
				inPara = true
				text.Reset()
			case inPara && name == "t":
				inText = true
			case inPara && name == "tab":
				text.WriteString("\t")
			case inPara && (name == "br" || name == "cr"):
				text.WriteString("\n")
			}
			stack = append(stack, name)
		case xml.EndElement:
			if len(stack) == 0 {
				continue
			}
			stack = stack[:len(stack)-1]
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				if inPara && len(stack) > 0 && stack[len(stack)-1] == "body" {
					paragraphs = append(paragraphs, text.String())
					inPara = false
				}
			}
		case xml.CharData:
			if inText {
				text.Write(t)
			}
		}
	}
	return paragraphs, nil
}
