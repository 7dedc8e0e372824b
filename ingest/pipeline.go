package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/poiesic/evidex/core"
	"github.com/poiesic/evidex/index"
)

// Indexer receives the chunk batches the pipeline produces.
type Indexer interface {
	Add(ctx context.Context, chunks []core.Chunk) (*core.IngestSummary, error)
}

var _ Indexer = (*index.Index)(nil)

// Pipeline turns whole documents into indexed chunks. Pages are chunked
// concurrently on a worker pool; the complete chunk set is handed to the
// indexer in one batch, so a document is indexed entirely or not at all.
type Pipeline struct {
	indexer Indexer
	chunker *Chunker
	pool    *ants.Pool
	logger  *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for concurrent page chunking.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}

		// Release old pool
		if p.pool != nil {
			p.pool.Release()
		}

		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		p.pool = pool
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewPipeline creates a document ingestion pipeline.
func NewPipeline(indexer Indexer, opts ...Option) (*Pipeline, error) {
	if indexer == nil {
		return nil, ErrIndexerRequired
	}

	// Default pool size
	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}

	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		indexer: indexer,
		chunker: NewChunker(),
		pool:    pool,
		logger:  slog.Default().With("component", "ingest"),
	}

	// Apply options (may override defaults)
	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}

	return p, nil
}

// Process chunks every page of doc and indexes the result. Pages that
// clean to nothing are skipped; a document with no usable text at all is
// rejected with ErrEmptyDocument.
func (p *Pipeline) Process(ctx context.Context, doc Document) (*core.IngestSummary, error) {
	docID := doc.ID()

	type pageJob struct {
		number int
		text   string
	}
	jobs := make([]pageJob, 0, len(doc.Pages))
	for _, page := range doc.Pages {
		text := CleanText(page.Text)
		if text == "" {
			continue
		}
		jobs = append(jobs, pageJob{number: page.Number, text: text})
	}
	if len(jobs) == 0 {
		return nil, ErrEmptyDocument
	}

	// Chunk pages concurrently. Results land in per-page slots so chunk
	// order follows page order regardless of which worker finishes first.
	perPage := make([][]core.Chunk, len(jobs))
	errs := make([]error, len(jobs))
	var wg sync.WaitGroup
	for i, job := range jobs {
		wg.Add(1)
		submitErr := p.pool.Submit(func() {
			defer wg.Done()
			perPage[i], errs[i] = p.chunker.ChunkPage(docID, doc.Filename, job.number, job.text)
		})
		if submitErr != nil {
			wg.Done()
			errs[i] = submitErr
		}
	}
	wg.Wait()

	var chunks []core.Chunk
	for i, job := range jobs {
		if errs[i] != nil {
			return nil, fmt.Errorf("failed to chunk page %d: %w", job.number, errs[i])
		}
		chunks = append(chunks, perPage[i]...)
	}
	if len(chunks) == 0 {
		return nil, ErrEmptyDocument
	}

	p.logger.Debug("document chunked",
		"doc_id", docID,
		"pages", len(jobs),
		"chunks", len(chunks))

	return p.indexer.Add(ctx, chunks)
}

// Release releases the worker pool.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.pool != nil {
		p.pool.Release()
	}
}
