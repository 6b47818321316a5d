package extract

import (
	"errors"
	"fmt"

	"github.com/poiesic/textmill/core"
)

var (
	// ErrHandleMismatch is returned when a handle from one extractor is passed to another.
	ErrHandleMismatch = errors.New("handle was not opened by this extractor")

	// ErrUnexpectedFormat is returned when a file's content does not match its extension.
	ErrUnexpectedFormat = errors.New("content does not match extension")
)

// openError wraps err as a core.ErrOpen for path.
func openError(path string, err error) error {
	return fmt.Errorf("%w: %s: %w", core.ErrOpen, path, err)
}
