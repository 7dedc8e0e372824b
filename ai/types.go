package ai

// Answer is the synthesized response to one question.
type Answer struct {
	// Text is the generated answer prose, cited against the evidence
	// passages the generator was given.
	Text string

	// Confidence mirrors the strongest supporting evidence's display
	// confidence. It is informational; callers decide how to present it.
	Confidence float64

	// Passages is the number of evidence passages the generator consumed
	// after any context-budget truncation.
	Passages int
}
