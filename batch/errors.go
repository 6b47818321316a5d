package batch

import "errors"

var (
	// ErrRunnerRequired is returned when no job runner is provided.
	ErrRunnerRequired = errors.New("job runner required")

	// ErrOutputDirRequired is returned when the output directory is empty.
	ErrOutputDirRequired = errors.New("output directory required")

	// ErrExtensionRequired is returned when the artifact extension is empty.
	ErrExtensionRequired = errors.New("artifact extension required")
)
