package badger

import (
	"testing"

	badgerdb "github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenBackend_InMemory(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	require.NotNil(t, backend)
	defer backend.Close()

	assert.False(t, backend.IsClosed())
}

func TestOpenBackend_FileSystem(t *testing.T) {
	tmpDir := t.TempDir()
	backend, err := OpenBackend(tmpDir, false)
	require.NoError(t, err)
	require.NotNil(t, backend)
	defer backend.Close()

	assert.False(t, backend.IsClosed())
}

func TestBackendClose(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	require.NotNil(t, backend)

	assert.False(t, backend.IsClosed())

	err = backend.Close()
	require.NoError(t, err)

	assert.True(t, backend.IsClosed())
}

func TestWithTx_WriteAndRead(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	defer backend.Close()

	key := []byte("test:key")
	value := []byte("test value")

	err = backend.WithTx(func(tx *badgerdb.Txn) error {
		if err := tx.Set(key, value); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
	require.NoError(t, err)

	var got []byte
	err = backend.WithTx(func(tx *badgerdb.Txn) error {
		item, err := tx.Get(key)
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			got = append([]byte(nil), val...)
			return nil
		})
	}, false)
	require.NoError(t, err)
	assert.Equal(t, value, got)
}

func TestWithTx_ErrorDiscardsWrites(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	defer backend.Close()

	key := []byte("test:discarded")

	err = backend.WithTx(func(tx *badgerdb.Txn) error {
		if err := tx.Set(key, []byte("never committed")); err != nil {
			return err
		}
		return assert.AnError
	}, true)
	require.Error(t, err)

	err = backend.WithTx(func(tx *badgerdb.Txn) error {
		_, err := tx.Get(key)
		return err
	}, false)
	assert.ErrorIs(t, err, badgerdb.ErrKeyNotFound)
}

func TestDropPrefix(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	defer backend.Close()

	err = backend.WithTx(func(tx *badgerdb.Txn) error {
		if err := tx.Set([]byte("drop:a"), []byte("1")); err != nil {
			return err
		}
		if err := tx.Set([]byte("drop:b"), []byte("2")); err != nil {
			return err
		}
		if err := tx.Set([]byte("keep:a"), []byte("3")); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
	require.NoError(t, err)

	require.NoError(t, backend.DropPrefix([]byte("drop:")))

	err = backend.WithTx(func(tx *badgerdb.Txn) error {
		if _, err := tx.Get([]byte("drop:a")); err != badgerdb.ErrKeyNotFound {
			t.Errorf("drop:a still present, err = %v", err)
		}
		if _, err := tx.Get([]byte("keep:a")); err != nil {
			return err
		}
		return nil
	}, false)
	require.NoError(t, err)
}

func TestNewMemoryStores(t *testing.T) {
	snapshots, queries, backend, err := NewMemoryStores()
	require.NoError(t, err)
	require.NotNil(t, snapshots)
	require.NotNil(t, queries)
	require.NotNil(t, backend)

	defer func() {
		queries.Close()
		snapshots.Close()
		backend.Close()
	}()

	assert.False(t, backend.IsClosed())
}
