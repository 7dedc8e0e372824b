package router

import "github.com/poiesic/evidex/core"

// AnswerMode describes how broad an answer a question wants.
type AnswerMode string

const (
	// ModeDirect wants a short factual answer backed by few passages.
	ModeDirect AnswerMode = "direct"
	// ModeCoverage wants breadth: lists, enumerations, full requirements.
	ModeCoverage AnswerMode = "coverage"
)

// Intent is the router's classification of one question. It is transient:
// produced per query, never stored.
type Intent struct {
	Mode        AnswerMode
	SubjectRole core.SubjectRole

	// MustHaveTerms anchor the lexical side of retrieval; order reflects
	// detection priority.
	MustHaveTerms []string

	// Expansions are extra query strings searched alongside the original
	// question.
	Expansions []string

	// Categories are the matched table entries, in table order. Their
	// boost terms drive category scoring downstream.
	Categories []Category

	// NeedsNeighborExpansion is derived from Mode: coverage questions
	// pull in page, section, and topic neighbors of the top results.
	NeedsNeighborExpansion bool
}
