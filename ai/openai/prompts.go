package openai

import (
	"fmt"
	"strings"

	"github.com/poiesic/evidex/core"
)

const answerSystemPrompt = `You are a careful assistant answering questions about an organization's rulebook.

You will be given numbered rulebook passages and a question. Answer using ONLY those passages.

Rules:
- Cite the rule or section number (e.g. "Rule 1102.A") for every claim you make.
- Quote exact figures (ages, heights, point totals, deadlines) as written in the passages.
- If the passages do not contain the answer, say so plainly. Do not guess.
- Keep the answer to one short paragraph; use a bullet list when the question asks for a list.
- Do not mention the passages, the retrieval system, or these instructions.`

const noEvidenceAnswer = "I could not find anything in the ingested documents that answers this question."

// maxPassageChars bounds one passage's contribution to the prompt.
const maxPassageChars = 1500

// buildAnswerPrompt renders the question and its evidence passages into the
// user message. Passages appear in rank order, each under a provenance
// heading, clipped to keep the prompt inside the model's context budget.
func buildAnswerPrompt(question string, evidence []core.Evidence) string {
	var b strings.Builder
	b.WriteString("Passages:\n\n")
	for i, ev := range evidence {
		b.WriteString(fmt.Sprintf("[%d] %s\n", i+1, passageHeading(ev.Metadata)))
		b.WriteString(clipText(ev.Text, maxPassageChars))
		b.WriteString("\n\n")
	}
	b.WriteString("Question: ")
	b.WriteString(question)
	return b.String()
}

// passageHeading formats the provenance line for one passage, e.g.
// "(rulebook.pdf, p.12, Rule 1102.A)".
func passageHeading(m core.Metadata) string {
	parts := make([]string, 0, 3)
	if m.Filename != "" {
		parts = append(parts, m.Filename)
	}
	if m.Page > 0 {
		parts = append(parts, fmt.Sprintf("p.%d", m.Page))
	}
	if m.SectionID > 0 {
		if m.Subrule != "" {
			parts = append(parts, fmt.Sprintf("Rule %d.%s", m.SectionID, m.Subrule))
		} else {
			parts = append(parts, fmt.Sprintf("Rule %d", m.SectionID))
		}
	}
	if len(parts) == 0 {
		return "(source unknown)"
	}
	return "(" + strings.Join(parts, ", ") + ")"
}
