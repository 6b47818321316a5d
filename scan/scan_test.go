package scan

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))
}

func TestReadFilenames(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.pdf", "a.txt", "c.report.docx", "sub/d.epub"} {
		touch(t, filepath.Join(dir, name))
	}

	files, err := ReadFilenames(dir, "", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.txt"),
		filepath.Join(dir, "b.pdf"),
		filepath.Join(dir, "c.report.docx"),
	}, files, "directories are skipped and results sorted")
}

func TestReadFilenames_Recursive(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "top.txt"))
	touch(t, filepath.Join(dir, "x", "y", "deep.pdf"))

	files, err := ReadFilenames(dir, "**/*.pdf", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "x", "y", "deep.pdf")}, files)
}

func TestReadFilenames_AllowList(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"keep.pdf", "keep.txt", "drop.pdf", "c.report.docx"} {
		touch(t, filepath.Join(dir, name))
	}

	files, err := ReadFilenames(dir, "", NewAllowList("keep", "c.report", " "))
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "c.report.docx"),
		filepath.Join(dir, "keep.pdf"),
		filepath.Join(dir, "keep.txt"),
	}, files)
}

func TestReadFilenames_EmptyAllowListMatchesNothing(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "a.txt"))

	files, err := ReadFilenames(dir, "", NewAllowList())
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestReadFilenames_Errors(t *testing.T) {
	_, err := ReadFilenames(filepath.Join(t.TempDir(), "missing"), "", nil)
	assert.ErrorIs(t, err, os.ErrNotExist)

	file := filepath.Join(t.TempDir(), "file.txt")
	touch(t, file)
	_, err = ReadFilenames(file, "", nil)
	assert.ErrorIs(t, err, ErrNotDirectory)

	_, err = ReadFilenames(t.TempDir(), "[", nil)
	assert.Error(t, err)
}

func TestReadMissionList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mission.json")
	require.NoError(t, os.WriteFile(path, []byte(`["alpha", "beta.v2", ""]`), 0644))

	allow, err := ReadMissionList(path)
	require.NoError(t, err)
	assert.Len(t, allow, 2)
	assert.True(t, allow.Allows("/in/alpha.pdf"))
	assert.True(t, allow.Allows("beta.v2.txt"))
	assert.False(t, allow.Allows("beta.txt"))
}

func TestReadMissionList_Errors(t *testing.T) {
	_, err := ReadMissionList(filepath.Join(t.TempDir(), "none.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"alpha": 1}`), 0644))
	_, err = ReadMissionList(path)
	assert.ErrorIs(t, err, ErrInvalidMissionList)
}

func TestAllowList_NilAllowsAll(t *testing.T) {
	var allow AllowList
	assert.True(t, allow.Allows("anything.pdf"))
}

func TestOutputPath(t *testing.T) {
	tests := []struct {
		outDir, source, ext, want string
	}{
		{"out", "/in/report.pdf", "parquet", filepath.Join("out", "report.parquet")},
		{"out", "/in/archive.tar.gz", "parquet", filepath.Join("out", "archive.tar.parquet")},
		{"out", "/in/README", ".parquet", filepath.Join("out", "README.parquet")},
		{"/abs/out", "notes.TXT", "chunks", filepath.Join("/abs/out", "notes.chunks")},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, OutputPath(tt.outDir, tt.source, tt.ext), tt.source)
	}
}

func TestEnsureDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")
	require.NoError(t, EnsureDir(dir))
	require.NoError(t, EnsureDir(dir))

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
