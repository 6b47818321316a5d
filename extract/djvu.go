package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/poiesic/textmill/core"
)

// DefaultDJVUCommand is the external converter run for DjVu files.
const DefaultDJVUCommand = "djvutxt"

// DJVUExtractor converts DjVu documents to text with an external command
// that takes the source path as its only argument and writes text to stdout.
type DJVUExtractor struct {
	command string
}

// NewDJVUExtractor creates a DjVu extractor running command.
func NewDJVUExtractor(command string) *DJVUExtractor {
	if command == "" {
		command = DefaultDJVUCommand
	}
	return &DJVUExtractor{command: command}
}

// djvuHandle holds the converter output; conversion happens at open time.
type djvuHandle struct {
	text string
}

func (h *djvuHandle) Close() error {
	return nil
}

// Kind implements Extractor.
func (e *DJVUExtractor) Kind() core.Kind {
	return core.KindDJVU
}

// Open implements Extractor.
func (e *DJVUExtractor) Open(ctx context.Context, path string) (Handle, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, openError(path, err)
	}
	if !info.Mode().IsRegular() {
		return nil, openError(path, errors.New("not a regular file"))
	}

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, e.command, path)
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			err = fmt.Errorf("%w: %s", err, msg)
		}
		return nil, openError(path, fmt.Errorf("%s: %w", e.command, err))
	}
	return &djvuHandle{text: string(out)}, nil
}

// ExtractRaw implements Extractor.
func (e *DJVUExtractor) ExtractRaw(ctx context.Context, h Handle) (core.RawUnit, error) {
	dh, ok := h.(*djvuHandle)
	if !ok {
		return core.RawUnit{}, ErrHandleMismatch
	}
	return core.FlatText(dh.text), nil
}
