package retrieval

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/poiesic/evidex/core"
	"github.com/poiesic/evidex/index"
	"github.com/poiesic/evidex/router"
)

// SearchIndex is the slice of the vector index the orchestrator drives.
type SearchIndex interface {
	Search(ctx context.Context, queryText string, k int, filterDocID string) ([]core.SearchResult, error)
	KeywordScan(terms []string, limit int) []core.SearchResult
	SearchByMetadata(filter index.MetadataFilter, limit int) []core.SearchResult
}

var _ SearchIndex = (*index.Index)(nil)

// Result is the outcome of one retrieval: the bounded, ranked evidence
// list plus the intent that shaped it.
type Result struct {
	Evidence []core.Evidence
	Intent   router.Intent
}

// Orchestrator runs the multi-signal retrieval pipeline over one query:
// route, expand, search, lexical augmentation, boosting, neighbor
// expansion, gating, bounding. It never calls a language model.
type Orchestrator struct {
	index      SearchIndex
	router     *router.Router
	thresholds Thresholds
	logger     *slog.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) error {
		if logger == nil {
			logger = slog.Default()
		}
		o.logger = logger
		return nil
	}
}

// WithThresholds overrides the pipeline constants.
func WithThresholds(t Thresholds) Option {
	return func(o *Orchestrator) error {
		if err := t.Validate(); err != nil {
			return err
		}
		o.thresholds = t
		return nil
	}
}

// New creates an orchestrator over a search index and a router.
func New(ix SearchIndex, rt *router.Router, opts ...Option) (*Orchestrator, error) {
	if ix == nil {
		return nil, ErrIndexRequired
	}
	if rt == nil {
		return nil, ErrRouterRequired
	}

	o := &Orchestrator{
		index:      ix,
		router:     rt,
		thresholds: DefaultThresholds(),
		logger:     slog.Default().With("component", "retrieval"),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}

	return o, nil
}

// Retrieve answers one question with a bounded, ranked evidence set.
// filterDocID, when non-empty, restricts every signal to one document.
func (o *Orchestrator) Retrieve(ctx context.Context, question, filterDocID string) (*Result, error) {
	return o.RetrieveWithMonitor(ctx, question, filterDocID, nil)
}

// RetrieveWithMonitor runs the pipeline with stage callbacks.
// The monitor receives every intermediate result as the query moves
// through routing, searching, boosting, expansion and gating.
func (o *Orchestrator) RetrieveWithMonitor(ctx context.Context, question, filterDocID string, monitor Monitor) (*Result, error) {
	// Use noop monitor if none provided
	if monitor == nil {
		monitor = &noopMonitor{}
	}
	monitor.Start(question)

	// 1. Route the question.
	intent := o.router.Route(question)
	monitor.AfterRoute(intent)

	// 2. Expand. The identity expansion always runs first so the raw
	// question anchors the merge order.
	queries := make([]string, 0, 1+len(intent.Expansions))
	queries = append(queries, question)
	queries = append(queries, intent.Expansions...)
	monitor.AfterExpansion(queries)

	// 3. Semantic retrieval. Branches run concurrently; the merge walks
	// expansion order, first occurrence winning, so output stays
	// deterministic.
	acc := o.searchExpansions(ctx, queries, filterDocID)
	monitor.AfterSemanticMerge(acc.results)

	if ctx.Err() != nil {
		o.logger.Warn("query deadline hit, returning no evidence", "question", question)
		return &Result{Evidence: []core.Evidence{}, Intent: intent}, nil
	}

	// 4. Lexical augmentation. Keyword hits absent from the semantic set
	// enter with a fixed high score.
	if len(intent.MustHaveTerms) > 0 {
		for _, hit := range o.index.KeywordScan(intent.MustHaveTerms, o.thresholds.KeywordLimit) {
			if filterDocID != "" && hit.Metadata.DocID != filterDocID {
				continue
			}
			hit.Score = o.thresholds.KeywordInjectScore
			if acc.add(hit) {
				monitor.KeywordInjected(hit)
			}
		}
	}

	// 5. Boost and rank.
	o.boost(acc, intent)
	monitor.AfterBoost(acc.results)

	// 6. Neighbor expansion for coverage questions.
	if intent.NeedsNeighborExpansion {
		o.expandNeighbors(acc, filterDocID, monitor)
	}

	// 7. Evidence gates.
	kept := o.applyGates(acc.results, intent, monitor)

	// 8. Bound, with one fallback pass if the gates dropped everything.
	bound := o.thresholds.CoverageBound
	if intent.Mode == router.ModeDirect {
		bound = o.thresholds.DirectBound
	}
	if len(kept) == 0 && len(acc.results) > 0 {
		monitor.FallbackTriggered()
		kept = o.fallback(acc.results, filterDocID, monitor)
	}
	if len(kept) > bound {
		kept = kept[:bound]
	}

	evidence := make([]core.Evidence, 0, len(kept))
	for _, r := range kept {
		evidence = append(evidence, core.Evidence{
			Text:       r.Text,
			Metadata:   r.Metadata,
			Score:      r.Score,
			Confidence: index.DisplayConfidence(r.Score),
		})
	}
	monitor.Finish(evidence)

	return &Result{Evidence: evidence, Intent: intent}, nil
}

// searchExpansions runs one semantic search per expanded query. A failed
// branch is logged and skipped; partial evidence from the surviving
// branches still flows.
func (o *Orchestrator) searchExpansions(ctx context.Context, queries []string, filterDocID string) *accumulator {
	branches := make([][]core.SearchResult, len(queries))

	var wg sync.WaitGroup
	for i, query := range queries {
		wg.Add(1)
		go func(slot int, q string) {
			defer wg.Done()
			results, err := o.index.Search(ctx, q, o.thresholds.SearchK, filterDocID)
			if err != nil {
				o.logger.Warn("expansion search failed", "query", q, "err", err)
				return
			}
			branches[slot] = results
		}(i, query)
	}
	wg.Wait()

	acc := newAccumulator()
	for _, branch := range branches {
		for _, r := range branch {
			acc.add(r)
		}
	}
	return acc
}

// boost applies the intent bonuses to every accumulated result and
// ranks them. Ties keep their prior order.
func (o *Orchestrator) boost(acc *accumulator, intent router.Intent) {
	for i := range acc.results {
		r := &acc.results[i]
		score := r.Score
		lowered := strings.ToLower(r.Text)

		// Role-match bonus, only for a non-general intent role.
		if intent.SubjectRole != core.RoleGeneral && r.Metadata.SubjectRole == intent.SubjectRole {
			score += o.thresholds.RoleBonus
		}

		// Must-have-term bonus, once per matched term.
		score += o.thresholds.TermBonus * float64(countTerms(lowered, intent.MustHaveTerms))

		// Category bonus, capped per detected category.
		for _, cat := range intent.Categories {
			if matched := countTerms(lowered, cat.BoostTerms); matched > 0 {
				bonus := o.thresholds.CategoryBonusStep * float64(matched)
				if bonus > o.thresholds.CategoryBonusCap {
					bonus = o.thresholds.CategoryBonusCap
				}
				score += bonus
			}
		}

		if score > o.thresholds.ScoreCap {
			score = o.thresholds.ScoreCap
		}
		r.Score = score
	}

	sort.SliceStable(acc.results, func(i, j int) bool {
		return acc.results[i].Score > acc.results[j].Score
	})
}

// expandNeighbors pulls in chunks adjacent to the current top seeds by
// page, section decade, and shared topic. New chunks enter with fixed
// injected scores; chunks already present are never rescored.
func (o *Orchestrator) expandNeighbors(acc *accumulator, filterDocID string, monitor Monitor) {
	seedCount := o.thresholds.SeedCount
	if seedCount > len(acc.results) {
		seedCount = len(acc.results)
	}
	// Copy seed metadata out before the loop grows the result slice.
	seeds := make([]core.Metadata, seedCount)
	for i := range seeds {
		seeds[i] = acc.results[i].Metadata
	}

	inject := func(neighbors []core.SearchResult, score float64) {
		for _, n := range neighbors {
			if filterDocID != "" && n.Metadata.DocID != filterDocID {
				continue
			}
			n.Score = score
			if acc.add(n) {
				monitor.NeighborIntroduced(n)
			}
		}
	}

	for _, seed := range seeds {
		if seed.Page > 0 {
			for page := seed.Page - 1; page <= seed.Page+1; page++ {
				if page <= 0 {
					continue
				}
				inject(o.index.SearchByMetadata(index.FilterByDocPage(seed.DocID, page), 0), o.thresholds.NeighborPageScore)
			}
		}
		if bucket := seed.SectionBucket(); bucket >= 0 {
			inject(o.index.SearchByMetadata(index.FilterByDocBucket(seed.DocID, bucket), 0), o.thresholds.NeighborSectionScore)
		}
		for _, tag := range seed.TopicTags {
			inject(o.index.SearchByMetadata(index.FilterByTopic(tag), 0), o.thresholds.NeighborTopicScore)
		}
	}

	sort.SliceStable(acc.results, func(i, j int) bool {
		return acc.results[i].Score > acc.results[j].Score
	})
}

// applyGates drops results that fail the role gate or the term gate.
func (o *Orchestrator) applyGates(results []core.SearchResult, intent router.Intent, monitor Monitor) []core.SearchResult {
	kept := make([]core.SearchResult, 0, len(results))
	for _, r := range results {
		if !o.passesRoleGate(r, intent) {
			monitor.RoleGateDropped(r)
			continue
		}
		if !o.passesTermGate(r, intent) {
			monitor.TermGateDropped(r)
			continue
		}
		kept = append(kept, r)
	}
	return kept
}

// passesRoleGate drops chunks addressed to a different audience than the
// question. The mismatch is forgiven when the chunk text itself carries
// a must-have term.
func (o *Orchestrator) passesRoleGate(r core.SearchResult, intent router.Intent) bool {
	if intent.SubjectRole == core.RoleGeneral {
		return true
	}
	role := core.NormalizeRole(r.Metadata.SubjectRole)
	if role == core.RoleGeneral || role == intent.SubjectRole {
		return true
	}
	return matchesAnyTerm(r.Text, intent.MustHaveTerms)
}

// passesTermGate drops low-scoring results that match no must-have term.
// Coverage mode keeps a lower floor because breadth is the point.
func (o *Orchestrator) passesTermGate(r core.SearchResult, intent router.Intent) bool {
	if len(intent.MustHaveTerms) == 0 {
		return true
	}
	if matchesAnyTerm(r.Text, intent.MustHaveTerms) {
		return true
	}
	floor := o.thresholds.GateBCoverage
	if intent.Mode == router.ModeDirect {
		floor = o.thresholds.GateBDirect
	}
	return r.Score >= floor
}

// fallback rebuilds a best-effort evidence set when the gates dropped
// everything: the strongest pre-filter results plus their neighbors.
func (o *Orchestrator) fallback(preFilter []core.SearchResult, filterDocID string, monitor Monitor) []core.SearchResult {
	seeds := o.thresholds.FallbackSeeds
	if seeds > len(preFilter) {
		seeds = len(preFilter)
	}

	acc := newAccumulator()
	for _, r := range preFilter[:seeds] {
		acc.add(r)
	}
	o.expandNeighbors(acc, filterDocID, monitor)
	return acc.results
}

// accumulator collects results in arrival order, deduplicated by chunk
// key. Scores of results already present are kept; later arrivals with
// the same key are discarded.
type accumulator struct {
	results []core.SearchResult
	seen    map[string]bool
}

func newAccumulator() *accumulator {
	return &accumulator{seen: make(map[string]bool)}
}

// add appends the result unless its chunk key is already present.
// Reports whether the result was added.
func (a *accumulator) add(r core.SearchResult) bool {
	key := r.Metadata.Key()
	if a.seen[key] {
		return false
	}
	a.seen[key] = true
	a.results = append(a.results, r)
	return true
}
