package ingest

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/evidex/ai/mock"
	"github.com/poiesic/evidex/index"
	"github.com/poiesic/evidex/storage/badger"
)

func setupTestIndex(t *testing.T) *index.Index {
	t.Helper()

	snapshots, queryLog, backend, err := badger.NewMemoryStores()
	require.NoError(t, err)
	t.Cleanup(func() {
		queryLog.Close()
		snapshots.Close()
		backend.Close()
	})

	ix, err := index.New(mock.NewMockEmbedder(), snapshots, index.WithPoolSize(2))
	require.NoError(t, err)
	t.Cleanup(ix.Release)

	return ix
}

func TestNewPipeline(t *testing.T) {
	ix := setupTestIndex(t)

	t.Run("valid", func(t *testing.T) {
		p, err := NewPipeline(ix)
		require.NoError(t, err)
		require.NotNil(t, p)
		p.Release()
	})

	t.Run("nil indexer", func(t *testing.T) {
		p, err := NewPipeline(nil)
		require.ErrorIs(t, err, ErrIndexerRequired)
		assert.Nil(t, p)
	})

	t.Run("pool size clamps to one", func(t *testing.T) {
		p, err := NewPipeline(ix, WithPoolSize(0))
		require.NoError(t, err)
		p.Release()
	})

	t.Run("nil logger uses default", func(t *testing.T) {
		p, err := NewPipeline(ix, WithLogger(nil))
		require.NoError(t, err)
		require.NotNil(t, p.logger)
		p.Release()
	})
}

func TestPipeline_Process(t *testing.T) {
	ix := setupTestIndex(t)

	p, err := NewPipeline(ix, WithPoolSize(2))
	require.NoError(t, err)
	t.Cleanup(p.Release)

	doc := NewDocument("rulebook.txt", []byte(
		"Rule 1102.A A coach must be at least 21 years old."+
			"\fSection 5401 The prize list must be posted two weeks prior."))

	summary, err := p.Process(context.Background(), doc)
	require.NoError(t, err)
	require.NotNil(t, summary)
	assert.Equal(t, "indexed", summary.Status)
	assert.Equal(t, 2, summary.ChunksIndexed)

	stats := ix.Stats()
	assert.Equal(t, 1, stats.Documents)
	assert.Equal(t, 2, stats.Chunks)

	docs := ix.Documents()
	require.Len(t, docs, 1)
	assert.Equal(t, doc.ID(), docs[0].DocID)
	assert.Equal(t, "rulebook.txt", docs[0].Filename)
	assert.Equal(t, 2, docs[0].Pages)
}

func TestPipeline_Process_SkipsBlankPages(t *testing.T) {
	ix := setupTestIndex(t)

	p, err := NewPipeline(ix)
	require.NoError(t, err)
	t.Cleanup(p.Release)

	doc := NewDocument("gaps.txt", []byte("First page text.\f   \n \fThird page text."))

	summary, err := p.Process(context.Background(), doc)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.ChunksIndexed)

	docs := ix.Documents()
	require.Len(t, docs, 1)
	assert.Equal(t, 2, docs[0].Pages)
}

func TestPipeline_Process_EmptyDocument(t *testing.T) {
	ix := setupTestIndex(t)

	p, err := NewPipeline(ix)
	require.NoError(t, err)
	t.Cleanup(p.Release)

	_, err = p.Process(context.Background(), NewDocument("blank.txt", []byte("  \n\t \f   ")))
	require.ErrorIs(t, err, ErrEmptyDocument)

	_, err = p.Process(context.Background(), Document{Filename: "empty.txt"})
	require.ErrorIs(t, err, ErrEmptyDocument)

	assert.Equal(t, 0, ix.Stats().Chunks)
}

func TestPipeline_Process_ManyPages(t *testing.T) {
	ix := setupTestIndex(t)

	p, err := NewPipeline(ix, WithPoolSize(2))
	require.NoError(t, err)
	t.Cleanup(p.Release)

	pages := make([]string, 30)
	for i := range pages {
		pages[i] = fmt.Sprintf("Rule %d0%d covers situation %d.", i+1, i+1, i+1)
	}
	doc := NewDocument("many.txt", []byte(strings.Join(pages, "\f")))

	summary, err := p.Process(context.Background(), doc)
	require.NoError(t, err)
	assert.Equal(t, 30, summary.ChunksIndexed)

	docs := ix.Documents()
	require.Len(t, docs, 1)
	assert.Equal(t, 30, docs[0].Pages)
	assert.Equal(t, 30, docs[0].Chunks)
}
