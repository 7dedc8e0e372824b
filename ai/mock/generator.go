package mock

import (
	"context"
	"fmt"

	"github.com/poiesic/evidex/ai"
	"github.com/poiesic/evidex/core"
)

// MockGenerator is a test double for ai.AnswerGenerator.
// It allows custom behavior injection via function fields.
type MockGenerator struct {
	// GenerateAnswerFunc is called by GenerateAnswer if set.
	// If nil, uses default canned behavior.
	GenerateAnswerFunc func(ctx context.Context, question string, evidence []core.Evidence) (*ai.Answer, error)

	callCount int
}

// NewMockGenerator creates a mock generator with default canned behavior.
// Note: Returns concrete type to allow test assertions via GetMockGenerator().
func NewMockGenerator() *MockGenerator {
	return &MockGenerator{}
}

// GenerateAnswer returns a canned answer summarizing the evidence it was given.
// Default behavior: echoes the question and the best passage's section id, so
// tests can assert the evidence actually reached the generator.
func (m *MockGenerator) GenerateAnswer(ctx context.Context, question string, evidence []core.Evidence) (*ai.Answer, error) {
	m.callCount++

	if m.GenerateAnswerFunc != nil {
		return m.GenerateAnswerFunc(ctx, question, evidence)
	}

	if len(evidence) == 0 {
		return &ai.Answer{Text: "no supporting passages found", Confidence: 0, Passages: 0}, nil
	}

	var confidence float64
	for _, ev := range evidence {
		if ev.Confidence > confidence {
			confidence = ev.Confidence
		}
	}

	text := fmt.Sprintf("mock answer to %q from %d passages", question, len(evidence))
	if sid := evidence[0].Metadata.SectionID; sid > 0 {
		text = fmt.Sprintf("%s (best: Rule %d)", text, sid)
	}

	return &ai.Answer{
		Text:       text,
		Confidence: confidence,
		Passages:   len(evidence),
	}, nil
}

// CallCount returns the number of times GenerateAnswer was called.
func (m *MockGenerator) CallCount() int {
	return m.callCount
}

// Reset clears the call count and any injected behavior.
func (m *MockGenerator) Reset() {
	m.callCount = 0
	m.GenerateAnswerFunc = nil
}
