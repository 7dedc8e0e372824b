// Package ingest turns source documents into indexed chunks.
//
// The Chunker splits page text into overlapping pieces and extracts the
// metadata the retrieval layer filters and boosts on: section numbers,
// subject roles and topic tags. The Pipeline drives whole documents,
// chunking pages concurrently on a worker pool and handing the complete
// chunk set to the index in a single batch.
package ingest
