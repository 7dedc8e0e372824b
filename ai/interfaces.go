package ai

import (
	"context"

	"github.com/poiesic/evidex/core"
)

// Embedder generates vector embeddings from text for semantic similarity search.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// The returned vector represents the semantic meaning of the text.
	// Returns an error if the embedding generation fails.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a batch.
	// Batch processing is more efficient than calling EmbedText multiple times.
	// The returned slice contains embeddings in the same order as the input texts.
	// Returns an error if any embedding generation fails.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// AnswerGenerator synthesizes a prose answer from a question and its
// supporting evidence. Implementations must be thread-safe for concurrent use.
type AnswerGenerator interface {
	// GenerateAnswer produces an answer grounded in the given evidence.
	// The evidence list is expected in ranked order, best first; generators
	// may truncate it to fit their context budget but must not reorder it.
	// An empty evidence list is valid and yields a refusal-style answer.
	// Returns an error if the generation call fails.
	GenerateAnswer(ctx context.Context, question string, evidence []core.Evidence) (*Answer, error)
}

// AIProvider aggregates AI services for convenient initialization and lifecycle management.
// A provider creates and manages Embedder and AnswerGenerator instances,
// ensuring they share configuration and resources appropriately.
type AIProvider interface {
	// Embedder returns the text embedding service.
	// The returned Embedder is safe for concurrent use.
	Embedder() Embedder

	// AnswerGenerator returns the answer synthesis service.
	// The returned AnswerGenerator is safe for concurrent use.
	AnswerGenerator() AnswerGenerator

	// Close releases resources held by the provider and its services.
	// After Close is called, the provider and its services should not be used.
	Close() error
}
