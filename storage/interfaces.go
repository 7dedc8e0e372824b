package storage

import (
	"context"

	"github.com/poiesic/evidex/core"
)

// SnapshotStore persists the index's ordered chunk list as a single durable
// snapshot. Implementations must be thread-safe and support concurrent access.
//
// The snapshot is the only durable artifact of the index: row order is
// load-bearing (row i of the persisted snapshot is chunk i of the rebuilt
// index) and must survive process restarts byte-for-byte.
type SnapshotStore interface {
	// SaveSnapshot replaces the persisted snapshot with the given chunks, in
	// order. The write is new-then-swap: rows land under a fresh generation
	// and the live-generation pointer flips only after every row is written,
	// so a failed or interrupted save leaves the previous snapshot intact.
	SaveSnapshot(ctx context.Context, chunks []core.Chunk) error

	// LoadSnapshot returns the live snapshot's chunks in stored order.
	// A database with no snapshot yields an empty slice, not an error.
	// Returns ErrCorruptSnapshot when rows are missing, the stored row count
	// disagrees, or vector dimensionalities are inconsistent.
	LoadSnapshot(ctx context.Context) ([]core.Chunk, error)

	// Generation returns the live snapshot generation, 0 when none exists.
	Generation(ctx context.Context) (uint64, error)

	// Close releases resources held by the store.
	Close() error
}

// QueryLog is an append-only record of retrievals, kept for inspection and
// threshold tuning. Implementations must be thread-safe.
type QueryLog interface {
	// AppendQuery stores one query record.
	// Sets CreatedAt to the current time if unset.
	AppendQuery(ctx context.Context, rec *core.QueryRecord) error

	// RecentQueries retrieves up to limit records, most recent first.
	RecentQueries(ctx context.Context, limit int) ([]*core.QueryRecord, error)

	// Close releases resources held by the log.
	Close() error
}
