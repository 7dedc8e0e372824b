package retrieval

import "strings"

// countTerms counts how many terms occur in the lowered text as
// substrings. Each term counts once however often it repeats.
func countTerms(lowered string, terms []string) int {
	count := 0
	for _, term := range terms {
		if term == "" {
			continue
		}
		if strings.Contains(lowered, strings.ToLower(term)) {
			count++
		}
	}
	return count
}

// matchesAnyTerm reports whether at least one term occurs in the text,
// case-insensitively.
func matchesAnyTerm(text string, terms []string) bool {
	lowered := strings.ToLower(text)
	for _, term := range terms {
		if term != "" && strings.Contains(lowered, strings.ToLower(term)) {
			return true
		}
	}
	return false
}
