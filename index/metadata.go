package index

import "github.com/poiesic/evidex/core"

// MetadataFilter selects stored chunks by metadata predicates. Zero
// fields are ignored, except Bucket where -1 means ignore: bucket 0 is
// the real section range 0-9. Prefer the Filter* constructors, which get
// the sentinel right.
type MetadataFilter struct {
	DocID  string
	Page   int
	Bucket int
	Topic  string
}

// FilterByDocPage matches chunks of one document on one page.
func FilterByDocPage(docID string, page int) MetadataFilter {
	return MetadataFilter{DocID: docID, Page: page, Bucket: -1}
}

// FilterByDocBucket matches chunks of one document within one section
// decade bucket.
func FilterByDocBucket(docID string, bucket int) MetadataFilter {
	return MetadataFilter{DocID: docID, Bucket: bucket}
}

// FilterByTopic matches chunks carrying one topic tag, across documents.
func FilterByTopic(tag string) MetadataFilter {
	return MetadataFilter{Topic: tag, Bucket: -1}
}

// SearchByMetadata returns stored chunks matching the filter, in storage
// order, with zero scores; callers assign their own. Selection goes
// through the narrowest secondary index available, so neighbor expansion
// never scans the full chunk list.
func (ix *Index) SearchByMetadata(filter MetadataFilter, limit int) []core.SearchResult {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	var candidates []int
	switch {
	case filter.Topic != "":
		candidates = ix.byTopic[filter.Topic]
	case filter.DocID != "" && filter.Page > 0:
		candidates = ix.byDocPage[docPageKey(filter.DocID, filter.Page)]
	case filter.DocID != "" && filter.Bucket >= 0:
		candidates = ix.byBucket[docBucketKey(filter.DocID, filter.Bucket)]
	case filter.DocID != "":
		candidates = ix.byDoc[filter.DocID]
	default:
		return []core.SearchResult{}
	}

	results := make([]core.SearchResult, 0, len(candidates))
	for _, row := range candidates {
		m := &ix.chunks[row].Metadata
		if filter.DocID != "" && m.DocID != filter.DocID {
			continue
		}
		if filter.Page > 0 && m.Page != filter.Page {
			continue
		}
		if filter.Bucket >= 0 && m.SectionBucket() != filter.Bucket {
			continue
		}
		if filter.Topic != "" && !m.HasTag(filter.Topic) {
			continue
		}

		results = append(results, core.SearchResult{
			Text:     ix.chunks[row].Text,
			Metadata: ix.chunks[row].Metadata,
		})
		if limit > 0 && len(results) == limit {
			break
		}
	}
	return results
}
