package badger

import (
	"encoding/binary"
	"fmt"
	"time"
)

// Key prefixes for different data types
const (
	snapshotManifestKey = "snapmf"
	snapshotRowPrefix   = "snaprow"
	snapshotMetaPrefix  = "snapmeta"
	queryLogPrefix      = "qlog"
)

// makeSnapshotRowKey generates a key for one snapshot row.
// Format: prefix:generation:row
func makeSnapshotRowKey(generation uint64, row int) []byte {
	prefix := snapshotRowPrefix + ":"
	prefixBytes := []byte(prefix)
	prefixSize := len(prefixBytes)
	totalSize := prefixSize + 12 // 8 bytes for generation + 4 bytes for row
	buf := make([]byte, totalSize)
	offset := copy(buf, prefixBytes)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], generation)
	offset += 8
	binary.BigEndian.PutUint32(buf[offset:], uint32(row))
	return buf
}

// makeSnapshotGenerationPrefix generates the partial key shared by all rows
// of one generation, for prefix drops.
func makeSnapshotGenerationPrefix(generation uint64) []byte {
	prefix := snapshotRowPrefix + ":"
	prefixBytes := []byte(prefix)
	prefixSize := len(prefixBytes)
	totalSize := prefixSize + 8 // 8 bytes for generation
	buf := make([]byte, totalSize)
	offset := copy(buf, prefixBytes)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], generation)
	return buf
}

// makeSnapshotMetaKey generates the key holding the row count of a generation.
func makeSnapshotMetaKey(generation uint64) []byte {
	return []byte(fmt.Sprintf("%s:%d", snapshotMetaPrefix, generation))
}

// makeQueryLogKey generates a composite key for a query log entry.
// Format: prefix:timestamp:id
func makeQueryLogKey(timestamp time.Time, id string) []byte {
	prefix := queryLogPrefix + ":"
	prefixBytes := []byte(prefix)
	prefixSize := len(prefixBytes)
	totalSize := prefixSize + 8 + len(id) // 8 bytes for timestamp + id string
	buf := make([]byte, totalSize)
	offset := copy(buf, prefixBytes)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], uint64(timestamp.UnixMicro()))
	offset += 8
	copy(buf[offset:], []byte(id))
	return buf
}

// makePartialQueryLogKey generates a partial key for time-ordered scans.
// Format: prefix:timestamp
func makePartialQueryLogKey(timestamp time.Time) []byte {
	prefix := queryLogPrefix + ":"
	prefixBytes := []byte(prefix)
	prefixSize := len(prefixBytes)
	totalSize := prefixSize + 8 // 8 bytes for timestamp
	buf := make([]byte, totalSize)
	offset := copy(buf, prefixBytes)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], uint64(timestamp.UnixMicro()))
	return buf
}
