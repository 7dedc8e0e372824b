package badger

import (
	"context"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/poiesic/evidex/core"
	"github.com/poiesic/evidex/storage"
)

// QueryLog implements storage.QueryLog for BadgerDB.
type QueryLog struct {
	backend *Backend
}

var _ storage.QueryLog = (*QueryLog)(nil)

// NewQueryLog creates a new QueryLog.
func NewQueryLog(backend *Backend) *QueryLog {
	return &QueryLog{backend: backend}
}

// Close releases resources held by the log.
func (l *QueryLog) Close() error {
	return nil
}

// AppendQuery records one answered query.
// A missing ID or timestamp is filled in before the write.
func (l *QueryLog) AppendQuery(ctx context.Context, record *core.QueryRecord) error {
	if record == nil {
		return storage.ErrInvalidQuery
	}
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}

	return l.backend.WithTx(func(tx *badger.Txn) error {
		key := makeQueryLogKey(record.CreatedAt, record.ID)
		if err := tx.Set(key, storage.MarshalQueryRecord(record)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// RecentQueries retrieves the N most recent query records, ordered by timestamp descending.
func (l *QueryLog) RecentQueries(ctx context.Context, limit int) ([]*core.QueryRecord, error) {
	if limit < 0 {
		return nil, storage.ErrInvalidQuery
	}
	if limit == 0 {
		return []*core.QueryRecord{}, nil
	}

	var results []*core.QueryRecord
	err := l.backend.WithTx(func(tx *badger.Txn) error {
		// Use reverse iterator to get most recent records first
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true

		iter := tx.NewIterator(opts)
		defer iter.Close()

		// Seek to the last possible key with the query log prefix
		startKey := makePartialQueryLogKey(time.Date(9999, 12, 31, 23, 59, 59, 999999999, time.UTC))

		prefix := []byte(queryLogPrefix + ":")

		count := 0
		for iter.Seek(startKey); iter.Valid() && count < limit; iter.Next() {
			key := iter.Item().Key()

			// Check if we're still in the query log keyspace
			if len(key) < len(prefix) || slices.Compare(key[:len(prefix)], prefix) != 0 {
				break
			}

			var record *core.QueryRecord
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				record, err = storage.UnmarshalQueryRecord(val)
				return err
			}); err != nil {
				return err
			}
			if record != nil {
				results = append(results, record)
				count++
			}
		}
		return nil
	}, false)

	return results, err
}
