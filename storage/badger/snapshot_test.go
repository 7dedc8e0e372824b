package badger

import (
	"context"
	"fmt"
	"testing"

	badgerdb "github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/evidex/core"
	"github.com/poiesic/evidex/storage"
)

func makeTestChunk(docID string, page, idx, dim int) core.Chunk {
	vec := make([]float32, dim)
	for i := range vec {
		vec[i] = float32(i+page+idx) * 0.01
	}
	return core.Chunk{
		ID:     core.ChunkID(docID, page, idx),
		Text:   fmt.Sprintf("passage %d on page %d", idx, page),
		Vector: vec,
		Metadata: core.Metadata{
			DocID:       docID,
			Filename:    "rulebook.pdf",
			Page:        page,
			ChunkIndex:  idx,
			SectionID:   1100 + idx,
			Subrule:     "A",
			SubjectRole: core.RoleGeneral,
			TopicTags:   []string{"membership"},
		},
	}
}

func TestSnapshotStore_LoadEmpty(t *testing.T) {
	snapshots, _, backend, err := NewMemoryStores()
	require.NoError(t, err)
	defer backend.Close()

	ctx := context.Background()

	chunks, err := snapshots.LoadSnapshot(ctx)
	require.NoError(t, err)
	assert.Empty(t, chunks)

	gen, err := snapshots.Generation(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), gen)
}

func TestSnapshotStore_SaveAndLoad(t *testing.T) {
	snapshots, _, backend, err := NewMemoryStores()
	require.NoError(t, err)
	defer backend.Close()

	ctx := context.Background()

	want := []core.Chunk{
		makeTestChunk("deadbeef00000000", 1, 0, 8),
		makeTestChunk("deadbeef00000000", 1, 1, 8),
		makeTestChunk("deadbeef00000000", 2, 0, 8),
	}

	require.NoError(t, snapshots.SaveSnapshot(ctx, want))

	got, err := snapshots.LoadSnapshot(ctx)
	require.NoError(t, err)
	require.Len(t, got, len(want))
	for i := range want {
		assert.Equal(t, want[i].ID, got[i].ID)
		assert.Equal(t, want[i].Text, got[i].Text)
		assert.Equal(t, want[i].Vector, got[i].Vector)
		assert.Equal(t, want[i].Metadata, got[i].Metadata)
	}

	gen, err := snapshots.Generation(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), gen)
}

func TestSnapshotStore_SaveReplacesPrevious(t *testing.T) {
	snapshots, _, backend, err := NewMemoryStores()
	require.NoError(t, err)
	defer backend.Close()

	ctx := context.Background()

	first := []core.Chunk{
		makeTestChunk("aaaa000000000000", 1, 0, 8),
		makeTestChunk("aaaa000000000000", 1, 1, 8),
	}
	require.NoError(t, snapshots.SaveSnapshot(ctx, first))

	second := []core.Chunk{
		makeTestChunk("bbbb000000000000", 7, 0, 8),
	}
	require.NoError(t, snapshots.SaveSnapshot(ctx, second))

	got, err := snapshots.LoadSnapshot(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, second[0].ID, got[0].ID)

	gen, err := snapshots.Generation(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), gen)

	// Rows of the superseded generation should be gone.
	err = backend.WithTx(func(tx *badgerdb.Txn) error {
		_, err := tx.Get(makeSnapshotRowKey(1, 0))
		return err
	}, false)
	assert.ErrorIs(t, err, badgerdb.ErrKeyNotFound)
}

func TestSnapshotStore_SaveEmptyReplacesPrevious(t *testing.T) {
	snapshots, _, backend, err := NewMemoryStores()
	require.NoError(t, err)
	defer backend.Close()

	ctx := context.Background()

	require.NoError(t, snapshots.SaveSnapshot(ctx, []core.Chunk{
		makeTestChunk("cccc000000000000", 3, 0, 8),
	}))
	require.NoError(t, snapshots.SaveSnapshot(ctx, nil))

	got, err := snapshots.LoadSnapshot(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)

	gen, err := snapshots.Generation(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), gen)
}

func TestSnapshotStore_ManyRowsCrossBatches(t *testing.T) {
	snapshots, _, backend, err := NewMemoryStores()
	require.NoError(t, err)
	defer backend.Close()

	ctx := context.Background()

	var want []core.Chunk
	for i := 0; i < snapshotWriteBatch*2+7; i++ {
		want = append(want, makeTestChunk("dddd000000000000", i/10, i%10, 8))
	}

	require.NoError(t, snapshots.SaveSnapshot(ctx, want))

	got, err := snapshots.LoadSnapshot(ctx)
	require.NoError(t, err)
	require.Len(t, got, len(want))
	assert.Equal(t, want[len(want)-1].ID, got[len(got)-1].ID)
}

func TestSnapshotStore_MissingRowIsCorrupt(t *testing.T) {
	snapshots, _, backend, err := NewMemoryStores()
	require.NoError(t, err)
	defer backend.Close()

	ctx := context.Background()

	require.NoError(t, snapshots.SaveSnapshot(ctx, []core.Chunk{
		makeTestChunk("eeee000000000000", 1, 0, 8),
		makeTestChunk("eeee000000000000", 1, 1, 8),
	}))

	// Remove one row behind the store's back.
	err = backend.WithTx(func(tx *badgerdb.Txn) error {
		if err := tx.Delete(makeSnapshotRowKey(1, 1)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
	require.NoError(t, err)

	_, err = snapshots.LoadSnapshot(ctx)
	assert.ErrorIs(t, err, storage.ErrCorruptSnapshot)
}

func TestSnapshotStore_MissingRowCountIsCorrupt(t *testing.T) {
	snapshots, _, backend, err := NewMemoryStores()
	require.NoError(t, err)
	defer backend.Close()

	ctx := context.Background()

	// Manifest points at a generation that was never written.
	err = backend.WithTx(func(tx *badgerdb.Txn) error {
		if err := tx.Set([]byte(snapshotManifestKey), storage.MarshalUint64(5)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
	require.NoError(t, err)

	_, err = snapshots.LoadSnapshot(ctx)
	assert.ErrorIs(t, err, storage.ErrCorruptSnapshot)
}

func TestSnapshotStore_DimensionMismatchIsCorrupt(t *testing.T) {
	snapshots, _, backend, err := NewMemoryStores()
	require.NoError(t, err)
	defer backend.Close()

	ctx := context.Background()

	a := makeTestChunk("ffff000000000000", 1, 0, 8)
	b := makeTestChunk("ffff000000000000", 1, 1, 16)

	err = backend.WithTx(func(tx *badgerdb.Txn) error {
		if err := tx.Set(makeSnapshotRowKey(1, 0), storage.MarshalChunk(&a)); err != nil {
			return err
		}
		if err := tx.Set(makeSnapshotRowKey(1, 1), storage.MarshalChunk(&b)); err != nil {
			return err
		}
		if err := tx.Set(makeSnapshotMetaKey(1), storage.MarshalUint64(2)); err != nil {
			return err
		}
		if err := tx.Set([]byte(snapshotManifestKey), storage.MarshalUint64(1)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
	require.NoError(t, err)

	_, err = snapshots.LoadSnapshot(ctx)
	assert.ErrorIs(t, err, storage.ErrCorruptSnapshot)
}

func TestSnapshotStore_GarbageRowIsCorrupt(t *testing.T) {
	snapshots, _, backend, err := NewMemoryStores()
	require.NoError(t, err)
	defer backend.Close()

	ctx := context.Background()

	err = backend.WithTx(func(tx *badgerdb.Txn) error {
		if err := tx.Set(makeSnapshotRowKey(1, 0), []byte{0x01, 0x02}); err != nil {
			return err
		}
		if err := tx.Set(makeSnapshotMetaKey(1), storage.MarshalUint64(1)); err != nil {
			return err
		}
		if err := tx.Set([]byte(snapshotManifestKey), storage.MarshalUint64(1)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
	require.NoError(t, err)

	_, err = snapshots.LoadSnapshot(ctx)
	assert.ErrorIs(t, err, storage.ErrCorruptSnapshot)
}

func TestSnapshotStore_CancelledContext(t *testing.T) {
	snapshots, _, backend, err := NewMemoryStores()
	require.NoError(t, err)
	defer backend.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var chunks []core.Chunk
	for i := 0; i < snapshotWriteBatch+1; i++ {
		chunks = append(chunks, makeTestChunk("abcd000000000000", 1, i, 8))
	}

	err = snapshots.SaveSnapshot(ctx, chunks)
	assert.ErrorIs(t, err, context.Canceled)

	// The manifest never flipped, so the store still reads as empty.
	got, err := snapshots.LoadSnapshot(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got)
}
