package extract

import (
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// Detected content types accepted by the extractors.
const (
	mimePDF = "application/pdf"
	mimeZip = "application/zip"
)

// sniffAs detects the content type of the file at path and checks that it,
// or one of its parent types, is one of accepted.
func sniffAs(path string, accepted ...string) error {
	mt, err := mimetype.DetectFile(path)
	if err != nil {
		return err
	}
	for m := mt; m != nil; m = m.Parent() {
		for _, want := range accepted {
			if m.Is(want) {
				return nil
			}
		}
	}
	return fmt.Errorf("%w: detected %s", ErrUnexpectedFormat, mt.String())
}

// sniffText checks that the file at path is detected as some text/* type.
func sniffText(path string) error {
	mt, err := mimetype.DetectFile(path)
	if err != nil {
		return err
	}
	for m := mt; m != nil; m = m.Parent() {
		if strings.HasPrefix(m.String(), "text/") {
			return nil
		}
	}
	return fmt.Errorf("%w: detected %s", ErrUnexpectedFormat, mt.String())
}
