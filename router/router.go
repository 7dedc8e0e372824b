package router

import (
	"strings"

	"github.com/poiesic/evidex/core"
)

// coverageTriggers flag breadth questions: any of these phrases in the
// lowered question switches the answer mode to coverage.
var coverageTriggers = []string{"list", "what are", "how many", "requirements", "rules for"}

// roleTriggers detect a subject role when no matched category implies
// one. Order is detection priority.
var roleTriggers = []struct {
	role  core.SubjectRole
	terms []string
}{
	{core.RoleCoach, []string{"coach", "instructor", "trainer"}},
	{core.RoleOfficial, []string{"judge", "steward", "show official", "show management"}},
	{core.RoleHorse, []string{"horse", "pony", "equine"}},
	{core.RoleRider, []string{"rider", "exhibitor", "member"}},
}

// Router classifies questions into retrieval intents.
// Routing is heuristic, deterministic, and makes no external calls, so
// every question can afford it.
type Router struct {
	table *Table
}

// New creates a Router over a category table.
// A nil table uses DefaultTable.
func New(table *Table) (*Router, error) {
	if table == nil {
		table = DefaultTable()
	}
	if err := table.Validate(); err != nil {
		return nil, err
	}
	return &Router{table: table}, nil
}

// Route classifies one question. A question may match zero, one, or
// several categories; their contributions are unioned in table order.
func (r *Router) Route(question string) Intent {
	lowered := strings.ToLower(question)

	intent := Intent{
		Mode:        ModeDirect,
		SubjectRole: core.RoleGeneral,
	}

	seenTerms := make(map[string]bool)
	for _, cat := range r.table.Categories {
		if !containsAny(lowered, cat.Triggers) {
			continue
		}

		intent.Categories = append(intent.Categories, cat)
		for _, term := range cat.MustHave {
			if term == "" || seenTerms[term] {
				continue
			}
			seenTerms[term] = true
			intent.MustHaveTerms = append(intent.MustHaveTerms, term)
		}
		intent.Expansions = append(intent.Expansions, cat.Expansions...)

		if intent.SubjectRole == core.RoleGeneral && cat.Role != "" {
			intent.SubjectRole = core.SubjectRole(cat.Role)
		}
	}

	if intent.SubjectRole == core.RoleGeneral {
		intent.SubjectRole = detectRole(lowered)
	}

	if containsAny(lowered, coverageTriggers) {
		intent.Mode = ModeCoverage
	}
	intent.NeedsNeighborExpansion = intent.Mode == ModeCoverage

	return intent
}

// detectRole finds the first role whose trigger terms appear in the
// lowered question.
func detectRole(lowered string) core.SubjectRole {
	for _, rt := range roleTriggers {
		if containsAny(lowered, rt.terms) {
			return rt.role
		}
	}
	return core.RoleGeneral
}

// containsAny reports whether any needle occurs as a substring.
func containsAny(haystack string, needles []string) bool {
	for _, needle := range needles {
		if needle != "" && strings.Contains(haystack, needle) {
			return true
		}
	}
	return false
}
