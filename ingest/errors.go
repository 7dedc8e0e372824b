package ingest

import "errors"

var (
	// ErrIndexerRequired is returned when an indexer is not provided.
	ErrIndexerRequired = errors.New("indexer required")

	// ErrEmptyDocument is returned when a document contains no usable text.
	ErrEmptyDocument = errors.New("document has no usable text")
)
