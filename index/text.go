package index

import (
	"regexp"
	"strings"
)

// compileTermPatterns builds case-insensitive whole-word matchers for a
// term list, skipping blank terms. Terms are quoted, so a term like
// "1102.A" matches literally.
func compileTermPatterns(terms []string) []*regexp.Regexp {
	patterns := make([]*regexp.Regexp, 0, len(terms))
	for _, term := range terms {
		term = strings.TrimSpace(term)
		if term == "" {
			continue
		}
		patterns = append(patterns, regexp.MustCompile(`(?i)\b`+regexp.QuoteMeta(term)+`\b`))
	}
	return patterns
}
