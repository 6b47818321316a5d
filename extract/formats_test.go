package extract

import (
	"archive/zip"
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/poiesic/textmill/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/unicode"
)

func writeZip(t *testing.T, path string, entries [][2]string) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	zw := zip.NewWriter(f)
	for _, entry := range entries {
		w, err := zw.Create(entry[0])
		require.NoError(t, err)
		_, err = w.Write([]byte(entry[1]))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
}

func extractFile(t *testing.T, e Extractor, path string) core.RawUnit {
	t.Helper()
	ctx := context.Background()
	h, err := e.Open(ctx, path)
	require.NoError(t, err)
	defer h.Close()

	unit, err := e.ExtractRaw(ctx, h)
	require.NoError(t, err)
	return unit
}

func TestTextExtractor_UTF8(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plain.txt")
	require.NoError(t, os.WriteFile(path, []byte("First line.\nSecond line!\n"), 0644))

	unit := extractFile(t, NewTextExtractor(), path)
	require.True(t, unit.IsFlat())
	assert.Equal(t, "First line.\nSecond line!\n", unit.Text())
}

func TestTextExtractor_UTF16WithBOM(t *testing.T) {
	enc := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder()
	data, err := enc.String("Grüße aus Köln. Bis bald.")
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "wide.txt")
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	unit := extractFile(t, NewTextExtractor(), path)
	assert.Equal(t, "Grüße aus Köln. Bis bald.", unit.Text())
}

func TestTextExtractor_RejectsBinary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fake.txt")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4\n\x00\x01\x02\x03binary"), 0644))

	_, err := NewTextExtractor().Open(context.Background(), path)
	assert.ErrorIs(t, err, core.ErrOpen)
	assert.ErrorIs(t, err, ErrUnexpectedFormat)
}

const docxBody = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>First paragraph </w:t></w:r><w:r><w:t>continues.</w:t></w:r></w:p>
    <w:p></w:p>
    <w:tbl><w:tr><w:tc><w:p><w:r><w:t>table cell</w:t></w:r></w:p></w:tc></w:tr></w:tbl>
    <w:p><w:r><w:t>Col A</w:t><w:tab/><w:t>Col B</w:t></w:r></w:p>
    <w:p><w:hyperlink><w:r><w:t>linked text</w:t></w:r></w:hyperlink></w:p>
    <w:sectPr/>
  </w:body>
</w:document>`

func TestDOCXExtractor(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.docx")
	writeZip(t, path, [][2]string{
		{"[Content_Types].xml", `<?xml version="1.0"?><Types/>`},
		{"word/document.xml", docxBody},
	})

	unit := extractFile(t, NewDOCXExtractor(), path)
	require.False(t, unit.IsFlat())
	assert.Equal(t, []string{
		"First paragraph continues.",
		"",
		"Col A\tCol B",
		"linked text",
	}, unit.Fragments())
}

func TestDOCXExtractor_MissingDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.docx")
	writeZip(t, path, [][2]string{{"other.xml", "<x/>"}})

	_, err := NewDOCXExtractor().Open(context.Background(), path)
	assert.ErrorIs(t, err, core.ErrOpen)
	assert.ErrorIs(t, err, ErrMissingEntry)
}

func TestDOCXExtractor_NotAZip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plain.docx")
	require.NoError(t, os.WriteFile(path, []byte("just some words"), 0644))

	_, err := NewDOCXExtractor().Open(context.Background(), path)
	assert.ErrorIs(t, err, core.ErrOpen)
}

func TestEPUBExtractor(t *testing.T) {
	path := filepath.Join(t.TempDir(), "book.epub")
	writeZip(t, path, [][2]string{
		{"mimetype", "application/epub+zip"},
		{"META-INF/container.xml", `<?xml version="1.0"?>
<container version="1.0" xmlns="urn:oasis:names:tc:opendocument:xmlns:container">
  <rootfiles>
    <rootfile full-path="OEBPS/content.opf" media-type="application/oebps-package+xml"/>
  </rootfiles>
</container>`},
		{"OEBPS/content.opf", `<?xml version="1.0"?>
<package xmlns="http://www.idpf.org/2007/opf" version="3.0">
  <manifest>
    <item id="c2" href="text/chapter%202.xhtml" media-type="application/xhtml+xml"/>
    <item id="c1" href="text/chapter1.xhtml" media-type="application/xhtml+xml"/>
    <item id="css" href="style.css" media-type="text/css"/>
  </manifest>
  <spine>
    <itemref idref="c1"/>
    <itemref idref="c2"/>
    <itemref idref="missing"/>
  </spine>
</package>`},
		{"OEBPS/text/chapter1.xhtml", `<html><head><title>Ignored</title><style>p{}</style></head>
<body><h1>Chapter One</h1><p>It was a <em>dark</em> night.</p></body></html>`},
		{"OEBPS/text/chapter 2.xhtml", `<html><body><p>The end.</p></body></html>`},
	})

	unit := extractFile(t, NewEPUBExtractor(), path)
	require.True(t, unit.IsFlat())

	text := unit.Text()
	assert.NotContains(t, text, "Ignored")
	assert.Equal(t, "Chapter One It was a dark night. The end.", strings.Join(strings.Fields(text), " "))
	assert.Less(t, strings.Index(text, "Chapter One"), strings.Index(text, "The end."))
}

func TestEPUBExtractor_NoContainer(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bare.epub")
	writeZip(t, path, [][2]string{{"mimetype", "application/epub+zip"}})

	e := NewEPUBExtractor()
	ctx := context.Background()
	h, err := e.Open(ctx, path)
	require.NoError(t, err)
	defer h.Close()

	_, err = e.ExtractRaw(ctx, h)
	assert.ErrorIs(t, err, core.ErrOpen)
	assert.ErrorIs(t, err, ErrMissingEntry)
}

func TestPDFExtractor_RejectsNonPDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fake.pdf")
	require.NoError(t, os.WriteFile(path, []byte("this is not a pdf"), 0644))

	_, err := NewPDFExtractor().Open(context.Background(), path)
	assert.ErrorIs(t, err, core.ErrOpen)
	assert.ErrorIs(t, err, ErrUnexpectedFormat)
}

func TestDJVUExtractor_RunsCommand(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell script converter")
	}
	dir := t.TempDir()
	script := filepath.Join(dir, "fake-djvutxt")
	require.NoError(t, os.WriteFile(script, []byte("#!/bin/sh\necho \"converted from $(basename \"$1\").\"\n"), 0755))

	src := filepath.Join(dir, "scan.djvu")
	require.NoError(t, os.WriteFile(src, []byte("AT&TFORM"), 0644))

	unit := extractFile(t, NewDJVUExtractor(script), src)
	assert.Equal(t, "converted from scan.djvu.\n", unit.Text())
}

func TestDJVUExtractor_CommandFails(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell script converter")
	}
	dir := t.TempDir()
	script := filepath.Join(dir, "broken-djvutxt")
	require.NoError(t, os.WriteFile(script, []byte("#!/bin/sh\necho corrupt >&2\nexit 3\n"), 0755))

	src := filepath.Join(dir, "scan.djvu")
	require.NoError(t, os.WriteFile(src, []byte("AT&TFORM"), 0644))

	_, err := NewDJVUExtractor(script).Open(context.Background(), src)
	require.ErrorIs(t, err, core.ErrOpen)
	assert.Contains(t, err.Error(), "corrupt")
}

func TestWithDJVUCommand(t *testing.T) {
	o := defaultOptions()
	WithDJVUCommand("")(o)
	assert.Equal(t, DefaultDJVUCommand, o.djvuCommand)
	WithDJVUCommand("/opt/bin/djvutxt")(o)
	assert.Equal(t, "/opt/bin/djvutxt", o.djvuCommand)
}
