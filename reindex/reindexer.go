// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package reindex

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/poiesic/evidex/ai"
	"github.com/poiesic/evidex/core"
	"github.com/poiesic/evidex/index"
)

const (
	// DefaultBatchSize is the default number of chunks per embedding call
	DefaultBatchSize = 100
)

// Config holds configuration for a reindexing run.
type Config struct {
	// BatchSize is the number of chunks embedded per provider call
	BatchSize int

	// ReportInterval is how often to report progress (number of chunks)
	ReportInterval int

	// MaxAttempts is the number of attempts for each embedding call
	MaxAttempts int

	// RetryDelay is the base delay for exponential backoff
	RetryDelay time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		BatchSize:      DefaultBatchSize,
		ReportInterval: 100,
		MaxAttempts:    3,
		RetryDelay:     1 * time.Second,
	}
}

// Arena is the slice of the index a reindexing run needs: the stored
// chunks and the swap that commits their new embeddings.
type Arena interface {
	Chunks() []core.Chunk
	SwapVectors(ctx context.Context, vectors [][]float32) error
}

var _ Arena = (*index.Index)(nil)

// Reindexer re-embeds every stored chunk with a new embedder and swaps
// the result into the index in one step. Until the swap, the index keeps
// serving its old vectors, so a failed run changes nothing.
type Reindexer struct {
	arena    Arena
	embedder ai.Embedder
	config   *Config
	progress io.Writer
}

// NewReindexer creates a reindexer.
// progress: where to write progress output (typically os.Stderr)
func NewReindexer(arena Arena, embedder ai.Embedder, config *Config, progress io.Writer) *Reindexer {
	if config == nil {
		config = DefaultConfig()
	}
	if progress == nil {
		progress = io.Discard
	}

	return &Reindexer{
		arena:    arena,
		embedder: embedder,
		config:   config,
		progress: progress,
	}
}

// Run re-embeds all stored chunks in batches and commits the new arena.
// Embedding calls are retried with exponential backoff; progress goes to
// the configured writer. The swap persists the final snapshot.
func (r *Reindexer) Run(ctx context.Context) error {
	chunks := r.arena.Chunks()
	if len(chunks) == 0 {
		fmt.Fprintf(r.progress, "no chunks to reindex\n")
		return nil
	}

	batchSize := r.config.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	fmt.Fprintf(r.progress, "reindexing %d chunks (batch size: %d)\n",
		len(chunks), batchSize)

	tracker := NewProgressTracker(r.progress, len(chunks), r.config.ReportInterval)
	tracker.Start()

	vectors := make([][]float32, len(chunks))
	for start := 0; start < len(chunks); start += batchSize {
		end := start + batchSize
		if end > len(chunks) {
			end = len(chunks)
		}

		texts := make([]string, end-start)
		for i, chunk := range chunks[start:end] {
			texts[i] = chunk.Text
		}

		var embedded [][]float32
		err := retryBackoff(ctx, r.config.MaxAttempts, r.config.RetryDelay, func() error {
			var embedErr error
			embedded, embedErr = r.embedder.EmbedTexts(ctx, texts)
			return embedErr
		})
		if err != nil {
			return fmt.Errorf("failed to embed batch at chunk %d after %d attempts: %w",
				start, r.config.MaxAttempts, err)
		}
		if len(embedded) != len(texts) {
			return fmt.Errorf("embedding count mismatch: expected %d, got %d",
				len(texts), len(embedded))
		}

		copy(vectors[start:end], embedded)
		tracker.Add(end - start)
	}

	if err := r.arena.SwapVectors(ctx, vectors); err != nil {
		return fmt.Errorf("failed to swap vectors: %w", err)
	}

	tracker.Finish()

	elapsed := tracker.Elapsed()
	fmt.Fprintf(r.progress, "reindexing complete: %d chunks in %v (%.1f chunks/sec)\n",
		len(chunks), elapsed.Round(time.Second), float64(len(chunks))/elapsed.Seconds())
	return nil
}
