package ingest

import (
	"regexp"
	"strings"

	"github.com/poiesic/evidex/core"
)

// Page is one page of source text. Number is 1-based.
type Page struct {
	Number int
	Text   string
}

// Document is the unit the pipeline ingests: a named sequence of pages.
// The document id is derived from the page contents, so re-ingesting the
// same content always produces the same id.
type Document struct {
	Filename string
	Pages    []Page
}

// NewDocument builds a paged document from raw file content. Pages are
// split on form feeds, the page marker most text extractors emit;
// content without form feeds becomes a single page.
func NewDocument(filename string, content []byte) Document {
	doc := Document{Filename: filename}
	for i, part := range strings.Split(string(content), "\f") {
		doc.Pages = append(doc.Pages, Page{Number: i + 1, Text: part})
	}
	return doc
}

// ID derives the stable document id from the raw page contents.
func (d Document) ID() string {
	var b strings.Builder
	for i, page := range d.Pages {
		if i > 0 {
			b.WriteByte('\f')
		}
		b.WriteString(page.Text)
	}
	return core.DocumentIDFromContent([]byte(b.String()))
}

var (
	pageFooterPattern = regexp.MustCompile(`Page \d+ of \d+`)
	spaceRunPattern   = regexp.MustCompile(`[ \t]+`)
	blankRunPattern   = regexp.MustCompile(`\n{3,}`)
)

// CleanText normalizes extracted page text: page footers are dropped,
// runs of spaces and tabs collapse to one space, and runs of blank lines
// collapse to a single blank line. Newlines survive so paragraph breaks
// stay visible to the chunker.
func CleanText(text string) string {
	text = pageFooterPattern.ReplaceAllString(text, "")
	text = spaceRunPattern.ReplaceAllString(text, " ")
	text = blankRunPattern.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}
