package storage

import (
	"testing"
	"time"

	"github.com/poiesic/evidex/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalUnmarshalChunk(t *testing.T) {
	tests := []struct {
		name  string
		chunk *core.Chunk
	}{
		{
			name: "minimal chunk",
			chunk: &core.Chunk{
				ID:       "doc1_p1_c0",
				Text:     "Each coach must be at least 21 years old.",
				Metadata: core.Metadata{DocID: "doc1", Page: 1},
			},
		},
		{
			name: "chunk with full metadata",
			chunk: &core.Chunk{
				ID:   "ab12cd34ef56ab78_p12_c3",
				Text: "Rule 1102.A. Coaches must be 21 years of age.",
				Metadata: core.Metadata{
					DocID:       "ab12cd34ef56ab78",
					Filename:    "rulebook.pdf",
					Page:        12,
					ChunkIndex:  3,
					SectionID:   1102,
					Subrule:     "A",
					SubjectRole: core.RoleCoach,
					TopicTags:   []string{"coaching", "eligibility"},
				},
			},
		},
		{
			name: "chunk with vector",
			chunk: &core.Chunk{
				ID:       "doc2_p1_c0",
				Text:     "Ponies must not exceed 14.2 hands.",
				Vector:   []float32{0.25, -0.5, 0.75, 1.0},
				Metadata: core.Metadata{DocID: "doc2", Page: 1, SubjectRole: core.RoleHorse},
			},
		},
		{
			name: "chunk with unicode text",
			chunk: &core.Chunk{
				ID:       "doc3_p2_c1",
				Text:     "Hauteur maximale : 14,2 mains — aucune exception.",
				Metadata: core.Metadata{DocID: "doc3", Page: 2, ChunkIndex: 1},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := MarshalChunk(tt.chunk)
			require.NotNil(t, data)
			require.NotEmpty(t, data)

			decoded, err := UnmarshalChunk(data)
			require.NoError(t, err)

			assert.Equal(t, tt.chunk.ID, decoded.ID)
			assert.Equal(t, tt.chunk.Text, decoded.Text)
			assert.Equal(t, tt.chunk.Vector, decoded.Vector)
			assert.Equal(t, tt.chunk.Metadata.DocID, decoded.Metadata.DocID)
			assert.Equal(t, tt.chunk.Metadata.Filename, decoded.Metadata.Filename)
			assert.Equal(t, tt.chunk.Metadata.Page, decoded.Metadata.Page)
			assert.Equal(t, tt.chunk.Metadata.ChunkIndex, decoded.Metadata.ChunkIndex)
			assert.Equal(t, tt.chunk.Metadata.SectionID, decoded.Metadata.SectionID)
			assert.Equal(t, tt.chunk.Metadata.Subrule, decoded.Metadata.Subrule)
			assert.Equal(t, tt.chunk.Metadata.SubjectRole, decoded.Metadata.SubjectRole)
			assert.Equal(t, tt.chunk.Metadata.TopicTags, decoded.Metadata.TopicTags)
		})
	}
}

func TestUnmarshalChunk_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty data", []byte{}},
		{"garbage data", []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := UnmarshalChunk(tt.data)
			assert.Error(t, err)
		})
	}
}

func TestUnmarshalChunk_Truncated(t *testing.T) {
	chunk := &core.Chunk{
		ID:     "doc1_p1_c0",
		Text:   "Rule 1102. Coaches must be 21 years of age.",
		Vector: []float32{0.1, 0.2, 0.3},
		Metadata: core.Metadata{
			DocID:     "doc1",
			Page:      1,
			SectionID: 1102,
		},
	}

	data := MarshalChunk(chunk)

	// Every strict prefix of the encoding must fail, never panic
	for cut := 0; cut < len(data); cut++ {
		_, err := UnmarshalChunk(data[:cut])
		assert.Error(t, err, "prefix of %d bytes should not decode", cut)
	}
}

func TestMarshalUnmarshalQueryRecord(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Microsecond)

	tests := []struct {
		name string
		rec  *core.QueryRecord
	}{
		{
			name: "direct query",
			rec: &core.QueryRecord{
				ID:            "7f9c1c7e-6a1a-4f0d-93ce-3b8d6f6f3a11",
				Question:      "How old do I have to be to coach?",
				Mode:          "direct",
				EvidenceCount: 5,
				TopScore:      0.91,
				CreatedAt:     now,
			},
		},
		{
			name: "coverage query with no evidence",
			rec: &core.QueryRecord{
				ID:            "0d7c2b9a-52cd-4b3f-8f7e-bb4f0e2d9c44",
				Question:      "What are the requirements for regionals?",
				Mode:          "coverage",
				EvidenceCount: 0,
				TopScore:      0,
				CreatedAt:     now,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := MarshalQueryRecord(tt.rec)
			require.NotEmpty(t, data)

			decoded, err := UnmarshalQueryRecord(data)
			require.NoError(t, err)
			assert.Equal(t, tt.rec.ID, decoded.ID)
			assert.Equal(t, tt.rec.Question, decoded.Question)
			assert.Equal(t, tt.rec.Mode, decoded.Mode)
			assert.Equal(t, tt.rec.EvidenceCount, decoded.EvidenceCount)
			assert.Equal(t, tt.rec.TopScore, decoded.TopScore)
			assert.True(t, tt.rec.CreatedAt.Equal(decoded.CreatedAt))
		})
	}
}

func TestMarshalUnmarshalUint64(t *testing.T) {
	for _, v := range []uint64{0, 1, 42, 1 << 40, ^uint64(0)} {
		data := MarshalUint64(v)
		require.NotEmpty(t, data)

		decoded, err := UnmarshalUint64(data)
		require.NoError(t, err)
		assert.Equal(t, v, decoded)
	}

	_, err := UnmarshalUint64(nil)
	assert.Error(t, err)
}
