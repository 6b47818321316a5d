// Package parquet writes chunk lists as Parquet files with a single
// "chunks" column, one row per chunk in order.
package parquet

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/parquet-go/parquet-go"
	"github.com/poiesic/textmill/core"
	"github.com/poiesic/textmill/storage"
)

// Extension is the artifact extension written by Sink.
const Extension = "parquet"

// File metadata keys.
const (
	metaSource = "textmill.source"
	metaKind   = "textmill.kind"
)

// chunkRow is the on-disk row layout.
type chunkRow struct {
	Chunks string `parquet:"chunks"`
}

// Sink implements storage.ChunkSink and storage.ChunkSource with one Parquet
// file per document.
type Sink struct{}

var (
	_ storage.ChunkSink   = (*Sink)(nil)
	_ storage.ChunkSource = (*Sink)(nil)
)

// NewSink creates a Parquet sink.
func NewSink() *Sink {
	return &Sink{}
}

// Extension implements storage.ChunkSink.
func (s *Sink) Extension() string {
	return Extension
}

// Save writes doc.Chunks to outputPath. The file is written next to its final
// path and renamed into place, so readers never see a partial artifact.
// Nothing is renamed into place once ctx is done.
func (s *Sink) Save(ctx context.Context, outputPath string, doc *core.StoredDocument) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %s: %w", core.ErrPersist, outputPath, err)
	}
	if err := core.ValidateChunkList(docChunks(doc)); err != nil {
		return fmt.Errorf("%w: %s: %w", core.ErrPersist, outputPath, err)
	}

	rows := make([]chunkRow, len(doc.Chunks))
	for i, chunk := range doc.Chunks {
		rows[i] = chunkRow{Chunks: chunk}
	}

	tmp, err := os.CreateTemp(filepath.Dir(outputPath), "."+filepath.Base(outputPath)+".*")
	if err != nil {
		return fmt.Errorf("%w: %w", core.ErrPersist, err)
	}
	tmpPath := tmp.Name()
	tmp.Close()

	err = parquet.WriteFile(tmpPath, rows,
		parquet.KeyValueMetadata(metaSource, doc.Source),
		parquet.KeyValueMetadata(metaKind, string(doc.Kind)),
	)
	if err == nil {
		err = ctx.Err()
	}
	if err == nil {
		err = os.Rename(tmpPath, outputPath)
	}
	if err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("%w: %s: %w", core.ErrPersist, outputPath, err)
	}
	return nil
}

// Exists implements storage.ChunkSink.
func (s *Sink) Exists(ctx context.Context, outputPath string) (bool, error) {
	info, err := os.Stat(outputPath)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return info.Mode().IsRegular(), nil
}

// Load reads the artifact at outputPath.
// Returns storage.ErrNotFound if the file does not exist.
func (s *Sink) Load(ctx context.Context, outputPath string) (*core.StoredDocument, error) {
	f, err := os.Open(outputPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", storage.ErrNotFound, outputPath)
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	pf, err := parquet.OpenFile(f, info.Size())
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", storage.ErrSerializationFailed, outputPath, err)
	}
	rows, err := parquet.Read[chunkRow](f, info.Size())
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", storage.ErrSerializationFailed, outputPath, err)
	}

	base := filepath.Base(outputPath)
	doc := &core.StoredDocument{
		Name:      strings.TrimSuffix(base, filepath.Ext(base)),
		Chunks:    make(core.ChunkList, len(rows)),
		CreatedAt: info.ModTime().UTC(),
	}
	doc.Id = core.IDFromContent(doc.Name)
	doc.Source, _ = pf.Lookup(metaSource)
	if kind, ok := pf.Lookup(metaKind); ok {
		doc.Kind = core.Kind(kind)
	}
	for i, row := range rows {
		doc.Chunks[i] = row.Chunks
	}
	return doc, nil
}

func docChunks(doc *core.StoredDocument) core.ChunkList {
	if doc == nil {
		return nil
	}
	return doc.Chunks
}
