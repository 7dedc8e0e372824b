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


package evidex

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/poiesic/evidex/ai"
	"github.com/poiesic/evidex/ai/openai"
	"github.com/poiesic/evidex/core"
	"github.com/poiesic/evidex/index"
	"github.com/poiesic/evidex/ingest"
	"github.com/poiesic/evidex/reindex"
	"github.com/poiesic/evidex/retrieval"
	"github.com/poiesic/evidex/router"
	"github.com/poiesic/evidex/storage"
	"github.com/poiesic/evidex/storage/badger"
)

// Engine owns the full retrieval stack: storage backend, AI provider,
// vector index, router, orchestrator and ingestion pipeline. The
// application's lifetime is the Engine's lifetime; Close releases
// everything in reverse construction order.
type Engine struct {
	backend      *badger.Backend
	snapshots    storage.SnapshotStore
	queries      storage.QueryLog
	provider     ai.AIProvider
	index        *index.Index
	router       *router.Router
	orchestrator *retrieval.Orchestrator
	pipeline     *ingest.Pipeline
	queryTimeout time.Duration
	logger       *slog.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*engineOptions)

type engineOptions struct {
	aiConfig     *ai.Config
	provider     ai.AIProvider
	table        *router.Table
	thresholds   *retrieval.Thresholds
	queryTimeout time.Duration
	poolSize     int
	inMemory     bool
	logger       *slog.Logger
}

// WithAIProvider supplies a pre-built AI provider instead of the default
// OpenAI-compatible one. The engine takes ownership and closes it.
func WithAIProvider(provider ai.AIProvider) EngineOption {
	return func(o *engineOptions) {
		o.provider = provider
	}
}

// WithAIConfig overrides the configuration used to build the default
// provider. Ignored when WithAIProvider is also given.
func WithAIConfig(config *ai.Config) EngineOption {
	return func(o *engineOptions) {
		o.aiConfig = config
	}
}

// WithRouterTable replaces the built-in category table.
func WithRouterTable(table *router.Table) EngineOption {
	return func(o *engineOptions) {
		o.table = table
	}
}

// WithThresholds replaces the retrieval scoring thresholds.
func WithThresholds(t retrieval.Thresholds) EngineOption {
	return func(o *engineOptions) {
		o.thresholds = &t
	}
}

// WithQueryTimeout bounds each Query call. On deadline the query returns
// empty evidence rather than an error. Zero means no bound.
func WithQueryTimeout(d time.Duration) EngineOption {
	return func(o *engineOptions) {
		o.queryTimeout = d
	}
}

// WithPoolSize sets the worker pool sizes for embedding and chunking.
func WithPoolSize(size int) EngineOption {
	return func(o *engineOptions) {
		o.poolSize = size
	}
}

// WithInMemory keeps all storage in memory; dbPath is ignored.
// Intended for tests and throwaway runs.
func WithInMemory() EngineOption {
	return func(o *engineOptions) {
		o.inMemory = true
	}
}

// WithLogger sets the logger for the engine and every component it
// builds. Default is slog.Default with per-component tags.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(o *engineOptions) {
		o.logger = logger
	}
}

// NewEngine opens the store at dbPath and wires the full stack.
// Construction is transactional: any failure closes everything opened so
// far. A corrupt snapshot does not fail startup; it is logged and the
// index starts empty.
func NewEngine(dbPath string, opts ...EngineOption) (*Engine, error) {
	// Apply options
	options := &engineOptions{
		aiConfig: ai.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(options)
	}

	logger := options.logger
	if logger == nil {
		logger = slog.Default().With("component", "engine")
	}

	// Open backend
	backend, err := badger.OpenBackend(dbPath, options.inMemory)
	if err != nil {
		return nil, err
	}

	snapshots := badger.NewSnapshotStore(backend)
	queries := badger.NewQueryLog(backend)

	// AI provider
	provider := options.provider
	if provider == nil {
		provider, err = openai.NewProvider(options.aiConfig)
		if err != nil {
			queries.Close()
			snapshots.Close()
			backend.Close()
			return nil, err
		}
	}

	// Index
	ixOpts := []index.Option{}
	if options.logger != nil {
		ixOpts = append(ixOpts, index.WithLogger(options.logger))
	}
	if options.poolSize > 0 {
		ixOpts = append(ixOpts, index.WithPoolSize(options.poolSize))
	}
	ix, err := index.New(provider.Embedder(), snapshots, ixOpts...)
	if err != nil {
		provider.Close()
		queries.Close()
		snapshots.Close()
		backend.Close()
		return nil, err
	}

	if err := ix.Load(context.Background()); err != nil {
		if errors.Is(err, storage.ErrCorruptSnapshot) {
			logger.Warn("snapshot unreadable, starting with an empty index", "err", err)
		} else {
			ix.Release()
			provider.Close()
			queries.Close()
			snapshots.Close()
			backend.Close()
			return nil, err
		}
	}

	// Router
	rt, err := router.New(options.table)
	if err != nil {
		ix.Release()
		provider.Close()
		queries.Close()
		snapshots.Close()
		backend.Close()
		return nil, err
	}

	// Orchestrator
	roOpts := []retrieval.Option{}
	if options.logger != nil {
		roOpts = append(roOpts, retrieval.WithLogger(options.logger))
	}
	if options.thresholds != nil {
		roOpts = append(roOpts, retrieval.WithThresholds(*options.thresholds))
	}
	orchestrator, err := retrieval.New(ix, rt, roOpts...)
	if err != nil {
		ix.Release()
		provider.Close()
		queries.Close()
		snapshots.Close()
		backend.Close()
		return nil, err
	}

	// Ingestion pipeline
	inOpts := []ingest.Option{}
	if options.logger != nil {
		inOpts = append(inOpts, ingest.WithLogger(options.logger))
	}
	if options.poolSize > 0 {
		inOpts = append(inOpts, ingest.WithPoolSize(options.poolSize))
	}
	pipeline, err := ingest.NewPipeline(ix, inOpts...)
	if err != nil {
		ix.Release()
		provider.Close()
		queries.Close()
		snapshots.Close()
		backend.Close()
		return nil, err
	}

	return &Engine{
		backend:      backend,
		snapshots:    snapshots,
		queries:      queries,
		provider:     provider,
		index:        ix,
		router:       rt,
		orchestrator: orchestrator,
		pipeline:     pipeline,
		queryTimeout: options.queryTimeout,
		logger:       logger,
	}, nil
}

// Ingest chunks and indexes one document.
func (e *Engine) Ingest(ctx context.Context, doc ingest.Document) (*core.IngestSummary, error) {
	return e.pipeline.Process(ctx, doc)
}

// QueryOption adjusts a single retrieval call.
type QueryOption func(*queryOptions)

type queryOptions struct {
	docID string
}

// WithDocFilter restricts retrieval to one document.
func WithDocFilter(docID string) QueryOption {
	return func(o *queryOptions) {
		o.docID = docID
	}
}

// Query runs the retrieval pipeline for a question and returns the
// ranked evidence. Every query is appended to the query log.
func (e *Engine) Query(ctx context.Context, question string, opts ...QueryOption) (*retrieval.Result, error) {
	options := &queryOptions{}
	for _, opt := range opts {
		opt(options)
	}

	if e.queryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.queryTimeout)
		defer cancel()
	}

	result, err := e.orchestrator.Retrieve(ctx, question, options.docID)
	if err != nil {
		return nil, err
	}

	e.logQuery(question, result)
	return result, nil
}

// Answer runs Query and synthesizes a grounded answer from the evidence.
func (e *Engine) Answer(ctx context.Context, question string, opts ...QueryOption) (*ai.Answer, error) {
	result, err := e.Query(ctx, question, opts...)
	if err != nil {
		return nil, err
	}
	return e.provider.AnswerGenerator().GenerateAnswer(ctx, question, result.Evidence)
}

// logQuery appends one record to the query log. The append is
// best-effort and independent of the query deadline: a logging failure
// never fails the query.
func (e *Engine) logQuery(question string, result *retrieval.Result) {
	rec := &core.QueryRecord{
		Question:      question,
		Mode:          string(result.Intent.Mode),
		EvidenceCount: len(result.Evidence),
	}
	if len(result.Evidence) > 0 {
		rec.TopScore = result.Evidence[0].Score
	}

	if err := e.queries.AppendQuery(context.Background(), rec); err != nil {
		e.logger.Warn("failed to append query log", "err", err)
	}
}

// Remove deletes every chunk of a document and persists the result.
func (e *Engine) Remove(ctx context.Context, docID string) (*core.RemoveSummary, error) {
	return e.index.Delete(ctx, docID)
}

// Documents lists the indexed documents.
func (e *Engine) Documents(ctx context.Context) []core.DocumentInfo {
	return e.index.Documents()
}

// Stats reports index counters.
func (e *Engine) Stats(ctx context.Context) index.Stats {
	return e.index.Stats()
}

// RecentQueries returns up to n logged queries, most recent first.
func (e *Engine) RecentQueries(ctx context.Context, n int) ([]*core.QueryRecord, error) {
	return e.queries.RecentQueries(ctx, n)
}

// NewReindexer builds a reindexer over the engine's index and the
// currently configured embedder. Run it after an embedding-model change.
func (e *Engine) NewReindexer(config *reindex.Config, progress io.Writer) *reindex.Reindexer {
	return reindex.NewReindexer(e.index, e.provider.Embedder(), config, progress)
}

// Index exposes the underlying index.
func (e *Engine) Index() *index.Index {
	return e.index
}

// Close releases every component in reverse construction order.
func (e *Engine) Close() error {
	e.pipeline.Release()
	e.index.Release()

	// Close AI provider first
	if err := e.provider.Close(); err != nil {
		e.logger.Error("error closing AI provider", "err", err)
	}

	if err := e.queries.Close(); err != nil {
		e.logger.Error("error closing query log", "err", err)
		return err
	}
	if err := e.snapshots.Close(); err != nil {
		e.logger.Error("error closing snapshot store", "err", err)
		return err
	}
	if err := e.backend.Close(); err != nil {
		e.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}
