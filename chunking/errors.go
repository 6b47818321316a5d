package chunking

import "errors"

var (
	// ErrVariantMismatch is returned when a RawUnit variant does not match the strategy of its kind.
	ErrVariantMismatch = errors.New("raw unit variant does not match document kind")
)
