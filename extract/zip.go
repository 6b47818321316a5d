package extract

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
)

// ErrMissingEntry is returned when a required archive entry is absent.
var ErrMissingEntry = errors.New("missing archive entry")

// zipHandle is an opened zip-based document.
type zipHandle struct {
	path string
	zr   *zip.ReadCloser
}

func openZip(path string) (*zipHandle, error) {
	if err := sniffAs(path, mimeZip); err != nil {
		return nil, openError(path, err)
	}
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, openError(path, err)
	}
	return &zipHandle{path: path, zr: zr}, nil
}

func (h *zipHandle) Close() error {
	return h.zr.Close()
}

func (h *zipHandle) file(name string) *zip.File {
	for _, f := range h.zr.File {
		if f.Name == name {
			return f
		}
	}
	return nil
}

func (h *zipHandle) read(name string) ([]byte, error) {
	f := h.file(name)
	if f == nil {
		return nil, fmt.Errorf("%w: %s", ErrMissingEntry, name)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}
