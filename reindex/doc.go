// Package reindex re-embeds every stored chunk after an embedding-model
// change.
//
// A run reads the full chunk set, embeds it in batches with retry and
// progress reporting, and commits the new vectors in a single swap, so
// the index keeps serving its old embeddings until the whole run has
// succeeded. Changing the vector dimension is legal here; that is the
// point of the tool.
package reindex
