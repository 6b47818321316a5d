package pipeline

import "errors"

var (
	// ErrResolverRequired is returned when no extractor resolver is provided.
	ErrResolverRequired = errors.New("extractor resolver required")

	// ErrSinkRequired is returned when no chunk sink is provided.
	ErrSinkRequired = errors.New("chunk sink required")
)
