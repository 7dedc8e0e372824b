package openai

import "strings"

// clipText truncates s to at most max bytes, cutting back to the last word
// boundary so a passage never ends mid-word. Clipped text is marked with a
// trailing ellipsis.
func clipText(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	cut := s[:max]
	if i := strings.LastIndexByte(cut, ' '); i > 0 {
		cut = cut[:i]
	}
	return cut + " ..."
}
