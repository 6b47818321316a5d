package badger

import (
	"context"
	"testing"
	"time"

	"github.com/poiesic/textmill/core"
	"github.com/poiesic/textmill/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckpointRepository_SaveLoad(t *testing.T) {
	_, repo := newTestStore(t)
	ctx := context.Background()

	cp := &core.Checkpoint{
		Source:      "/in/book.epub",
		Fingerprint: core.Fingerprint("/in/book.epub", "2048"),
		Chunks:      12,
	}
	require.NoError(t, repo.SaveCheckpoint(ctx, cp))
	assert.False(t, cp.CompletedAt.IsZero())

	loaded, err := repo.LoadCheckpoint(ctx, "/in/book.epub")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, cp.Fingerprint, loaded.Fingerprint)
	assert.Equal(t, 12, loaded.Chunks)
	assert.WithinDuration(t, cp.CompletedAt, loaded.CompletedAt, time.Microsecond)
}

func TestCheckpointRepository_LoadMissing(t *testing.T) {
	_, repo := newTestStore(t)

	loaded, err := repo.LoadCheckpoint(context.Background(), "/never/seen.pdf")
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestCheckpointRepository_KeepsExplicitCompletedAt(t *testing.T) {
	_, repo := newTestStore(t)
	ctx := context.Background()

	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, repo.SaveCheckpoint(ctx, &core.Checkpoint{Source: "s", CompletedAt: at}))

	loaded, err := repo.LoadCheckpoint(ctx, "s")
	require.NoError(t, err)
	assert.True(t, at.Equal(loaded.CompletedAt))
}

func TestCheckpointRepository_Replace(t *testing.T) {
	_, repo := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, repo.SaveCheckpoint(ctx, &core.Checkpoint{Source: "s", Fingerprint: 1}))
	require.NoError(t, repo.SaveCheckpoint(ctx, &core.Checkpoint{Source: "s", Fingerprint: 2}))

	loaded, err := repo.LoadCheckpoint(ctx, "s")
	require.NoError(t, err)
	assert.Equal(t, core.ID(2), loaded.Fingerprint)
}

func TestCheckpointRepository_SameBaseNameDifferentSources(t *testing.T) {
	_, repo := newTestStore(t)
	ctx := context.Background()

	a := &core.Checkpoint{Source: "/a/book.pdf", Fingerprint: core.Fingerprint("/a/book.pdf", "100"), Chunks: 3}
	b := &core.Checkpoint{Source: "/b/book.pdf", Fingerprint: core.Fingerprint("/b/book.pdf", "200"), Chunks: 7}
	require.NoError(t, repo.SaveCheckpoint(ctx, a))
	require.NoError(t, repo.SaveCheckpoint(ctx, b))

	loadedA, err := repo.LoadCheckpoint(ctx, "/a/book.pdf")
	require.NoError(t, err)
	require.NotNil(t, loadedA)
	loadedB, err := repo.LoadCheckpoint(ctx, "/b/book.pdf")
	require.NoError(t, err)
	require.NotNil(t, loadedB)

	assert.Equal(t, "/a/book.pdf", loadedA.Source)
	assert.Equal(t, a.Fingerprint, loadedA.Fingerprint)
	assert.Equal(t, 3, loadedA.Chunks)
	assert.Equal(t, "/b/book.pdf", loadedB.Source)
	assert.Equal(t, b.Fingerprint, loadedB.Fingerprint)
	assert.Equal(t, 7, loadedB.Chunks)

	missing, err := repo.LoadCheckpoint(ctx, "/c/book.pdf")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestCheckpointRepository_RequiresSource(t *testing.T) {
	_, repo := newTestStore(t)
	ctx := context.Background()

	assert.ErrorIs(t, repo.SaveCheckpoint(ctx, &core.Checkpoint{Fingerprint: 1}), errNoSource)
	assert.ErrorIs(t, repo.SaveCheckpoint(ctx, nil), errNoSource)

	_, err := repo.LoadCheckpoint(ctx, "")
	assert.ErrorIs(t, err, errNoSource)
}

func TestCheckpointRepository_Closed(t *testing.T) {
	_, repo, backend, err := NewMemoryStores()
	require.NoError(t, err)
	require.NoError(t, backend.Close())

	ctx := context.Background()
	assert.ErrorIs(t, repo.SaveCheckpoint(ctx, &core.Checkpoint{Source: "s"}), storage.ErrStorageClosed)
	_, err = repo.LoadCheckpoint(ctx, "s")
	assert.ErrorIs(t, err, storage.ErrStorageClosed)
}
