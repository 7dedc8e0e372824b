package badger

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/evidex/core"
	"github.com/poiesic/evidex/storage"
)

// snapshotWriteBatch bounds how many rows go into one transaction so a large
// snapshot never exceeds BadgerDB's transaction size limit.
const snapshotWriteBatch = 64

// SnapshotStore implements storage.SnapshotStore for BadgerDB.
//
// Each save writes a complete new generation of rows and then flips a single
// manifest key to point at it, so a reader sees either the previous snapshot
// or the new one, never a partial write.
type SnapshotStore struct {
	backend *Backend
	logger  *slog.Logger

	// Serializes saves so two writers cannot interleave generations.
	mu sync.Mutex
}

var _ storage.SnapshotStore = (*SnapshotStore)(nil)

// NewSnapshotStore creates a new SnapshotStore.
func NewSnapshotStore(backend *Backend) *SnapshotStore {
	return &SnapshotStore{
		backend: backend,
		logger:  slog.Default().With("component", "snapshot_store"),
	}
}

// Close releases resources held by the store.
func (s *SnapshotStore) Close() error {
	return nil
}

// SaveSnapshot persists the full chunk set as a new generation.
// An empty chunk set is valid and replaces the current snapshot.
func (s *SnapshotStore) SaveSnapshot(ctx context.Context, chunks []core.Chunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var oldGeneration uint64
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		oldGeneration, err = readGeneration(tx)
		return err
	}, false)
	if err != nil {
		return fmt.Errorf("read snapshot generation: %w", err)
	}

	newGeneration := oldGeneration + 1

	// Write rows in bounded batches before the manifest flip. A crash here
	// leaves orphan rows under a generation the manifest never references.
	for start := 0; start < len(chunks); start += snapshotWriteBatch {
		if err := ctx.Err(); err != nil {
			return err
		}

		end := start + snapshotWriteBatch
		if end > len(chunks) {
			end = len(chunks)
		}

		err := s.backend.WithTx(func(tx *badger.Txn) error {
			for i := start; i < end; i++ {
				key := makeSnapshotRowKey(newGeneration, i)
				if err := tx.Set(key, storage.MarshalChunk(&chunks[i])); err != nil {
					return err
				}
			}
			return tx.Commit()
		}, true)
		if err != nil {
			return fmt.Errorf("write snapshot rows: %w", err)
		}
	}

	// Record the row count and flip the manifest in one transaction.
	err = s.backend.WithTx(func(tx *badger.Txn) error {
		count := storage.MarshalUint64(uint64(len(chunks)))
		if err := tx.Set(makeSnapshotMetaKey(newGeneration), count); err != nil {
			return err
		}
		if err := tx.Set([]byte(snapshotManifestKey), storage.MarshalUint64(newGeneration)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return fmt.Errorf("activate snapshot generation %d: %w", newGeneration, err)
	}

	if oldGeneration > 0 {
		s.dropGeneration(oldGeneration)
	}

	return nil
}

// LoadSnapshot reads the current generation in full.
// Returns an empty slice when no snapshot has been saved yet.
func (s *SnapshotStore) LoadSnapshot(ctx context.Context) ([]core.Chunk, error) {
	var chunks []core.Chunk

	err := s.backend.WithTx(func(tx *badger.Txn) error {
		generation, err := readGeneration(tx)
		if err != nil {
			return err
		}
		if generation == 0 {
			chunks = []core.Chunk{}
			return nil
		}

		count, err := readRowCount(tx, generation)
		if err != nil {
			return err
		}

		chunks = make([]core.Chunk, 0, count)
		dim := -1
		for i := 0; i < count; i++ {
			// Rows are fetched by exact key, not prefix scan, so surplus
			// rows left by an interrupted save cannot leak into the result.
			item, err := tx.Get(makeSnapshotRowKey(generation, i))
			if err != nil {
				if err == badger.ErrKeyNotFound {
					return fmt.Errorf("%w: generation %d missing row %d of %d",
						storage.ErrCorruptSnapshot, generation, i, count)
				}
				return err
			}

			var chunk *core.Chunk
			if err := item.Value(func(val []byte) error {
				var unmarshalErr error
				chunk, unmarshalErr = storage.UnmarshalChunk(val)
				return unmarshalErr
			}); err != nil {
				return fmt.Errorf("%w: generation %d row %d: %v",
					storage.ErrCorruptSnapshot, generation, i, err)
			}

			if len(chunk.Vector) == 0 {
				return fmt.Errorf("%w: generation %d row %d has no vector",
					storage.ErrCorruptSnapshot, generation, i)
			}
			if dim == -1 {
				dim = len(chunk.Vector)
			} else if len(chunk.Vector) != dim {
				return fmt.Errorf("%w: generation %d row %d has dimension %d, want %d",
					storage.ErrCorruptSnapshot, generation, i, len(chunk.Vector), dim)
			}

			chunks = append(chunks, *chunk)
		}
		return nil
	}, false)

	if err != nil {
		return nil, err
	}
	return chunks, nil
}

// Generation returns the current generation number, zero before the first save.
func (s *SnapshotStore) Generation(ctx context.Context) (uint64, error) {
	var generation uint64
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		generation, err = readGeneration(tx)
		return err
	}, false)
	return generation, err
}

// dropGeneration removes the rows and meta key of a superseded generation.
// Failures are logged, not returned: the rows are unreachable through the
// manifest either way.
func (s *SnapshotStore) dropGeneration(generation uint64) {
	if err := s.backend.DropPrefix(makeSnapshotGenerationPrefix(generation)); err != nil {
		s.logger.Warn("failed to drop superseded snapshot rows",
			"generation", generation, "error", err)
		return
	}

	err := s.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Delete(makeSnapshotMetaKey(generation)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
	if err != nil {
		s.logger.Warn("failed to drop superseded snapshot meta",
			"generation", generation, "error", err)
	}
}

// readGeneration reads the manifest key; zero means no snapshot saved yet.
func readGeneration(tx *badger.Txn) (uint64, error) {
	item, err := tx.Get([]byte(snapshotManifestKey))
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return 0, nil
		}
		return 0, err
	}

	var generation uint64
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		generation, unmarshalErr = storage.UnmarshalUint64(val)
		return unmarshalErr
	})
	return generation, err
}

// readRowCount reads the row count recorded for a generation.
func readRowCount(tx *badger.Txn, generation uint64) (int, error) {
	item, err := tx.Get(makeSnapshotMetaKey(generation))
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return 0, fmt.Errorf("%w: generation %d has no row count",
				storage.ErrCorruptSnapshot, generation)
		}
		return 0, err
	}

	var count uint64
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		count, unmarshalErr = storage.UnmarshalUint64(val)
		return unmarshalErr
	})
	if err != nil {
		return 0, fmt.Errorf("%w: generation %d row count: %v",
			storage.ErrCorruptSnapshot, generation, err)
	}
	return int(count), nil
}
