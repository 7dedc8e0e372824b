package core

import (
	"encoding/hex"
	"fmt"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// SubjectRole classifies whom a passage of rule text applies to.
// Roles form a small closed set; anything unrecognized is treated as general.
type SubjectRole string

const (
	// RoleGeneral is the default role for text that addresses no one in particular.
	RoleGeneral SubjectRole = "general"
	// RoleCoach marks text governing coaches.
	RoleCoach SubjectRole = "coach"
	// RoleRider marks text governing riders and members.
	RoleRider SubjectRole = "rider"
	// RoleOfficial marks text governing judges, stewards and show officials.
	RoleOfficial SubjectRole = "official"
	// RoleHorse marks text governing horses and equipment.
	RoleHorse SubjectRole = "horse"
)

// Metadata carries the provenance and document structure of a chunk.
// DocID, Page and ChunkIndex together identify a chunk's position in its
// source document; the remaining fields are extracted from the text itself.
type Metadata struct {
	DocID       string
	Filename    string
	Page        int // 1-based page number, 0 when the source has no pages
	ChunkIndex  int // ordinal within the page
	SectionID   int // extracted rule/section number, 0 when absent
	Subrule     string // subrule letter, e.g. "A" in "1102.A"
	SubjectRole SubjectRole
	TopicTags   []string
}

// Key returns the deduplication identity of a chunk: document, page and
// ordinal. Two results with the same key describe the same stored chunk.
func (m Metadata) Key() string {
	return fmt.Sprintf("%s_%d_%d", m.DocID, m.Page, m.ChunkIndex)
}

// HasTag reports whether the chunk carries the given topic tag.
func (m Metadata) HasTag(tag string) bool {
	for _, t := range m.TopicTags {
		if t == tag {
			return true
		}
	}
	return false
}

// SectionBucket returns the decade bucket of the section id (1102 -> 1100),
// used to group neighboring rules. Returns -1 when no section id is present.
func (m Metadata) SectionBucket() int {
	if m.SectionID <= 0 {
		return -1
	}
	return m.SectionID / 10 * 10
}

// Chunk is an immutable unit of retrievable document text.
// Vector is populated by the index when the chunk is added.
type Chunk struct {
	ID       string
	Text     string
	Vector   []float32
	Metadata Metadata
}

// Key returns the chunk's deduplication identity. See Metadata.Key.
func (c *Chunk) Key() string {
	return c.Metadata.Key()
}

// ChunkID builds the deterministic id for a chunk from its position.
// Identical ingestions of the same document produce identical ids.
func ChunkID(docID string, page, chunkIndex int) string {
	return fmt.Sprintf("%s_p%d_c%d", docID, page, chunkIndex)
}

// DocumentIDFromContent derives a stable document id from raw content using
// BLAKE2b hashing. Identical content produces identical ids.
func DocumentIDFromContent(content []byte) string {
	h, _ := blake2b.New(8, nil) // 8 bytes = 16 hex characters
	h.Write(content)
	return hex.EncodeToString(h.Sum(nil))
}

// SearchResult pairs a chunk's text and metadata with a relevance score.
// Results are produced fresh per query and never persisted.
type SearchResult struct {
	Text     string
	Metadata Metadata
	Score    float64
}

// Evidence is one element of the ranked set handed to answer generation.
// Score is the internal ranking score; Confidence is the rescaled value
// shown to users. Ranking decisions never read Confidence.
type Evidence struct {
	Text       string
	Metadata   Metadata
	Score      float64
	Confidence float64
}

// QueryRecord is one logged retrieval, kept for inspection and tuning.
type QueryRecord struct {
	ID            string
	Question      string
	Mode          string
	EvidenceCount int
	TopScore      float64
	CreatedAt     time.Time
}

// DocumentInfo summarizes one ingested document.
type DocumentInfo struct {
	DocID    string
	Filename string
	Chunks   int
	Pages    int
}

// IngestSummary reports the outcome of adding a document's chunks.
type IngestSummary struct {
	Status        string
	ChunksIndexed int
}

// RemoveSummary reports the outcome of deleting a document.
type RemoveSummary struct {
	Status        string
	ChunksRemoved int
}
