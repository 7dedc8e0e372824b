package index

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/evidex/ai"
	"github.com/poiesic/evidex/core"
	"github.com/poiesic/evidex/storage"
)

// embedBatch bounds how many texts go into one embedding-provider call.
const embedBatch = 16

// Index owns the corpus of stored chunks and their embedding arena.
//
// The chunk list and the vector matrix are parallel: row i of the matrix
// is exactly the embedding of chunks[i]. Every mutation maintains the two
// in lockstep and persists a full snapshot before returning, so a crash
// never leaves a half-written state behind.
type Index struct {
	embedder  ai.Embedder
	snapshots storage.SnapshotStore
	pool      *ants.Pool
	logger    *slog.Logger

	mu      sync.RWMutex
	chunks  []core.Chunk
	vectors [][]float32
	dim     int

	// Secondary indices over chunk rows, rebuilt on every compaction.
	byDoc     map[string][]int
	byDocPage map[string][]int
	byBucket  map[string][]int
	byTopic   map[string][]int

	lastPersist time.Time
}

// Option configures an Index.
type Option func(*Index) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(ix *Index) error {
		if logger == nil {
			logger = slog.Default()
		}
		ix.logger = logger
		return nil
	}
}

// WithPoolSize sets the worker pool size for concurrent embedding calls.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(ix *Index) error {
		if size < 1 {
			size = 1
		}

		if ix.pool != nil {
			ix.pool.Release()
		}

		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		ix.pool = pool
		return nil
	}
}

// New creates an empty Index.
// Call Load to populate it from the snapshot store.
func New(embedder ai.Embedder, snapshots storage.SnapshotStore, opts ...Option) (*Index, error) {
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if snapshots == nil {
		return nil, ErrSnapshotStoreRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}

	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	ix := &Index{
		embedder:  embedder,
		snapshots: snapshots,
		pool:      pool,
		logger:    slog.Default().With("component", "index"),
		byDoc:     make(map[string][]int),
		byDocPage: make(map[string][]int),
		byBucket:  make(map[string][]int),
		byTopic:   make(map[string][]int),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(ix); err != nil {
			ix.pool.Release()
			return nil, err
		}
	}

	return ix, nil
}

// Release frees the embedding worker pool.
// The index should not be used after calling Release.
func (ix *Index) Release() {
	if ix.pool != nil {
		ix.pool.Release()
	}
}

// Load replaces the in-memory state with the persisted snapshot.
// A missing snapshot leaves the index empty and is not an error. The
// row-alignment and dimensionality invariants are re-validated here
// because they are load-bearing for every later search.
func (ix *Index) Load(ctx context.Context) error {
	chunks, err := ix.snapshots.LoadSnapshot(ctx)
	if err != nil {
		return err
	}

	dim := 0
	vectors := make([][]float32, len(chunks))
	for i := range chunks {
		if len(chunks[i].Vector) == 0 {
			return fmt.Errorf("%w: chunk %s has no vector", storage.ErrCorruptSnapshot, chunks[i].ID)
		}
		if dim == 0 {
			dim = len(chunks[i].Vector)
		} else if len(chunks[i].Vector) != dim {
			return fmt.Errorf("%w: chunk %s has dimension %d, want %d",
				storage.ErrCorruptSnapshot, chunks[i].ID, len(chunks[i].Vector), dim)
		}
		vectors[i] = chunks[i].Vector
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()

	ix.chunks = chunks
	ix.vectors = vectors
	ix.dim = dim
	ix.rebuildLocked()

	ix.logger.Info("index loaded", "chunks", len(chunks), "dimension", dim)
	return nil
}

// Add embeds and indexes a batch of chunks, then persists the snapshot.
// All-or-nothing: an embedding failure or dimension mismatch leaves the
// index unchanged. A persistence failure is returned after the in-memory
// state has already changed; the caller decides whether to retry the
// flush.
func (ix *Index) Add(ctx context.Context, chunks []core.Chunk) (*core.IngestSummary, error) {
	if len(chunks) == 0 {
		return &core.IngestSummary{Status: "indexed", ChunksIndexed: 0}, nil
	}

	for i := range chunks {
		if err := core.ValidateChunk(&chunks[i]); err != nil {
			return nil, err
		}
	}

	vectors, err := ix.embedAll(ctx, chunks)
	if err != nil {
		return nil, err
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()

	// Validate dimensionality before touching the arena.
	dim := ix.dim
	for i, vec := range vectors {
		if len(vec) == 0 {
			return nil, fmt.Errorf("%w: provider returned empty vector for chunk %s",
				ErrDimensionMismatch, chunks[i].ID)
		}
		if dim == 0 {
			dim = len(vec)
		} else if len(vec) != dim {
			return nil, fmt.Errorf("%w: chunk %s has dimension %d, want %d",
				ErrDimensionMismatch, chunks[i].ID, len(vec), dim)
		}
	}

	for i := range chunks {
		chunks[i].Vector = vectors[i]
		row := len(ix.chunks)
		ix.chunks = append(ix.chunks, chunks[i])
		ix.vectors = append(ix.vectors, vectors[i])
		ix.indexChunkLocked(row)
	}
	ix.dim = dim

	if err := ix.persistLocked(ctx); err != nil {
		return nil, fmt.Errorf("persist after add: %w", err)
	}

	ix.logger.Info("chunks indexed", "count", len(chunks), "total", len(ix.chunks))
	return &core.IngestSummary{Status: "indexed", ChunksIndexed: len(chunks)}, nil
}

// embedAll embeds chunk texts in bounded-concurrency batches through the
// worker pool. Any batch failure fails the whole call.
func (ix *Index) embedAll(ctx context.Context, chunks []core.Chunk) ([][]float32, error) {
	texts := make([]string, len(chunks))
	for i := range chunks {
		texts[i] = chunks[i].Text
	}

	vectors := make([][]float32, len(texts))
	batches := (len(texts) + embedBatch - 1) / embedBatch
	errs := make([]error, batches)

	var wg sync.WaitGroup
	for b := 0; b < batches; b++ {
		b := b
		start := b * embedBatch
		end := start + embedBatch
		if end > len(texts) {
			end = len(texts)
		}

		wg.Add(1)
		task := func() {
			defer wg.Done()
			embedded, err := ix.embedder.EmbedTexts(ctx, texts[start:end])
			if err != nil {
				errs[b] = err
				return
			}
			if len(embedded) != end-start {
				errs[b] = fmt.Errorf("embedding count mismatch: expected %d, got %d",
					end-start, len(embedded))
				return
			}
			copy(vectors[start:end], embedded)
		}
		if err := ix.pool.Submit(task); err != nil {
			wg.Done()
			errs[b] = err
		}
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return vectors, nil
}

// Search embeds the query and returns the top-k stored chunks by cosine
// similarity, descending. Ties break by insertion order. A non-empty
// filterDocID restricts the scan to that document. Searching an empty
// index returns an empty list, not an error.
func (ix *Index) Search(ctx context.Context, queryText string, k int, filterDocID string) ([]core.SearchResult, error) {
	if strings.TrimSpace(queryText) == "" {
		return nil, ErrEmptyQuery
	}
	if k <= 0 {
		return []core.SearchResult{}, nil
	}

	queryVec, err := ix.embedder.EmbedText(ctx, queryText)
	if err != nil {
		return nil, err
	}

	ix.mu.RLock()
	defer ix.mu.RUnlock()

	score := func(row int) core.SearchResult {
		s := cosineSimilarity(queryVec, ix.vectors[row])
		if s < 0 {
			s = 0
		}
		return core.SearchResult{
			Text:     ix.chunks[row].Text,
			Metadata: ix.chunks[row].Metadata,
			Score:    s,
		}
	}

	var results []core.SearchResult
	if filterDocID == "" {
		results = make([]core.SearchResult, 0, len(ix.vectors))
		for row := range ix.vectors {
			results = append(results, score(row))
		}
	} else {
		rows := ix.byDoc[filterDocID]
		results = make([]core.SearchResult, 0, len(rows))
		for _, row := range rows {
			results = append(results, score(row))
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}

// KeywordScan scores stored chunks by whole-word term matches,
// independent of embeddings. A chunk matching n of the terms scores
// min(1.0, 0.5 + 0.1*n); chunks matching nothing are omitted. Ties keep
// storage order.
func (ix *Index) KeywordScan(terms []string, limit int) []core.SearchResult {
	patterns := compileTermPatterns(terms)
	if len(patterns) == 0 {
		return []core.SearchResult{}
	}

	ix.mu.RLock()
	defer ix.mu.RUnlock()

	var results []core.SearchResult
	for row := range ix.chunks {
		matches := 0
		for _, re := range patterns {
			if re.MatchString(ix.chunks[row].Text) {
				matches++
			}
		}
		if matches == 0 {
			continue
		}

		s := 0.5 + 0.1*float64(matches)
		if s > 1.0 {
			s = 1.0
		}
		results = append(results, core.SearchResult{
			Text:     ix.chunks[row].Text,
			Metadata: ix.chunks[row].Metadata,
			Score:    s,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results
}

// Delete removes every chunk of one document, compacts the arena in
// place, and persists the snapshot. Returns storage.ErrNotFound when the
// document has no chunks. Compaction keeps search cost proportional to
// live data only.
func (ix *Index) Delete(ctx context.Context, docID string) (*core.RemoveSummary, error) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	removed := len(ix.byDoc[docID])
	if removed == 0 {
		return nil, fmt.Errorf("%w: document %s", storage.ErrNotFound, docID)
	}

	kept := make([]core.Chunk, 0, len(ix.chunks)-removed)
	keptVectors := make([][]float32, 0, len(ix.vectors)-removed)
	for row := range ix.chunks {
		if ix.chunks[row].Metadata.DocID == docID {
			continue
		}
		kept = append(kept, ix.chunks[row])
		keptVectors = append(keptVectors, ix.vectors[row])
	}
	ix.chunks = kept
	ix.vectors = keptVectors
	if len(ix.chunks) == 0 {
		ix.dim = 0
	}
	ix.rebuildLocked()

	if err := ix.persistLocked(ctx); err != nil {
		return nil, fmt.Errorf("persist after delete: %w", err)
	}

	ix.logger.Info("document removed", "doc_id", docID, "chunks_removed", removed)
	return &core.RemoveSummary{Status: "removed", ChunksRemoved: removed}, nil
}

// Documents summarizes the indexed documents, sorted by document id.
func (ix *Index) Documents() []core.DocumentInfo {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	infos := make([]core.DocumentInfo, 0, len(ix.byDoc))
	for docID, rows := range ix.byDoc {
		pages := make(map[int]bool)
		filename := ""
		for _, row := range rows {
			m := &ix.chunks[row].Metadata
			if filename == "" {
				filename = m.Filename
			}
			if m.Page > 0 {
				pages[m.Page] = true
			}
		}
		infos = append(infos, core.DocumentInfo{
			DocID:    docID,
			Filename: filename,
			Chunks:   len(rows),
			Pages:    len(pages),
		})
	}

	sort.Slice(infos, func(i, j int) bool {
		return infos[i].DocID < infos[j].DocID
	})
	return infos
}

// Stats holds index counters.
type Stats struct {
	Documents   int
	Chunks      int
	Dimension   int
	LastPersist time.Time
}

// Stats reports current index counters.
func (ix *Index) Stats() Stats {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	return Stats{
		Documents:   len(ix.byDoc),
		Chunks:      len(ix.chunks),
		Dimension:   ix.dim,
		LastPersist: ix.lastPersist,
	}
}

// Chunks returns a copy of every stored chunk in arena order. The chunk
// values are copies but their Vector and TopicTags slices share backing
// arrays with the index; callers must treat them as read-only.
func (ix *Index) Chunks() []core.Chunk {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	out := make([]core.Chunk, len(ix.chunks))
	copy(out, ix.chunks)
	return out
}

// SwapVectors replaces the whole embedding arena and persists the result.
// vectors must be parallel to the stored chunks: one non-empty vector per
// chunk, in arena order, all of one dimension. Unlike Add, a dimension
// change is legal; this is the path an embedding-model migration takes.
// The swap is all-or-nothing: any validation failure leaves the index
// serving its old vectors.
func (ix *Index) SwapVectors(ctx context.Context, vectors [][]float32) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	if len(vectors) != len(ix.chunks) {
		return fmt.Errorf("vector count mismatch: have %d chunks, got %d vectors",
			len(ix.chunks), len(vectors))
	}

	dim := 0
	for i, vec := range vectors {
		if len(vec) == 0 {
			return fmt.Errorf("%w: empty vector for chunk %s",
				ErrDimensionMismatch, ix.chunks[i].ID)
		}
		if dim == 0 {
			dim = len(vec)
		} else if len(vec) != dim {
			return fmt.Errorf("%w: chunk %s has dimension %d, want %d",
				ErrDimensionMismatch, ix.chunks[i].ID, len(vec), dim)
		}
	}

	for i := range ix.chunks {
		ix.chunks[i].Vector = vectors[i]
		ix.vectors[i] = vectors[i]
	}
	ix.dim = dim

	if err := ix.persistLocked(ctx); err != nil {
		return fmt.Errorf("persist after swap: %w", err)
	}

	ix.logger.Info("vector arena swapped", "chunks", len(ix.chunks), "dimension", dim)
	return nil
}

// persistLocked writes the full chunk list to the snapshot store.
// Holding the write lock keeps snapshot order aligned with mutation
// order. Caller must hold the write lock.
func (ix *Index) persistLocked(ctx context.Context) error {
	if err := ix.snapshots.SaveSnapshot(ctx, ix.chunks); err != nil {
		return err
	}
	ix.lastPersist = time.Now().UTC()
	return nil
}

// rebuildLocked rebuilds the secondary indices from the chunk list.
// Caller must hold the write lock.
func (ix *Index) rebuildLocked() {
	ix.byDoc = make(map[string][]int)
	ix.byDocPage = make(map[string][]int)
	ix.byBucket = make(map[string][]int)
	ix.byTopic = make(map[string][]int)
	for row := range ix.chunks {
		ix.indexChunkLocked(row)
	}
}

// indexChunkLocked registers one chunk row in the secondary indices.
// Caller must hold the write lock.
func (ix *Index) indexChunkLocked(row int) {
	m := &ix.chunks[row].Metadata
	ix.byDoc[m.DocID] = append(ix.byDoc[m.DocID], row)
	if m.Page > 0 {
		key := docPageKey(m.DocID, m.Page)
		ix.byDocPage[key] = append(ix.byDocPage[key], row)
	}
	if bucket := m.SectionBucket(); bucket >= 0 {
		key := docBucketKey(m.DocID, bucket)
		ix.byBucket[key] = append(ix.byBucket[key], row)
	}
	for _, tag := range m.TopicTags {
		ix.byTopic[tag] = append(ix.byTopic[tag], row)
	}
}

func docPageKey(docID string, page int) string {
	return fmt.Sprintf("%s:%d", docID, page)
}

func docBucketKey(docID string, bucket int) string {
	return fmt.Sprintf("%s:s%d", docID, bucket)
}
