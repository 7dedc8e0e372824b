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


package ingest

import (
	"strings"

	"github.com/tmc/langchaingo/textsplitter"

	"github.com/poiesic/evidex/core"
)

const (
	chunkSize    = 1000
	chunkOverlap = 150
)

// Chunker splits page text into overlapping chunks and annotates each
// chunk with the metadata extracted from its own text. Splitting prefers
// paragraph breaks, then line breaks, then sentence ends, so rule
// boundaries tend to survive intact.
type Chunker struct {
	splitter textsplitter.RecursiveCharacter
}

// NewChunker creates a chunker with the standard splitting configuration.
func NewChunker() *Chunker {
	return &Chunker{
		splitter: textsplitter.NewRecursiveCharacter(
			textsplitter.WithChunkSize(chunkSize),
			textsplitter.WithChunkOverlap(chunkOverlap),
			textsplitter.WithSeparators([]string{"\n\n", "\n", ". ", " ", ""}),
		),
	}
}

// ChunkPage splits one page of text into chunks. Chunk ids encode the
// document, page and ordinal, so identical content always chunks to
// identical ids. Pieces that are empty after trimming are skipped but
// keep their ordinal, so surviving ids stay stable.
func (c *Chunker) ChunkPage(docID, filename string, page int, text string) ([]core.Chunk, error) {
	pieces, err := c.splitter.SplitText(text)
	if err != nil {
		return nil, err
	}

	chunks := make([]core.Chunk, 0, len(pieces))
	for i, piece := range pieces {
		piece = strings.TrimSpace(piece)
		if piece == "" {
			continue
		}

		sectionID, subrule := extractSection(piece)
		chunks = append(chunks, core.Chunk{
			ID:   core.ChunkID(docID, page, i),
			Text: piece,
			Metadata: core.Metadata{
				DocID:       docID,
				Filename:    filename,
				Page:        page,
				ChunkIndex:  i,
				SectionID:   sectionID,
				Subrule:     subrule,
				SubjectRole: detectRole(piece),
				TopicTags:   detectTopics(piece),
			},
		})
	}
	return chunks, nil
}
