package retrieval

import "fmt"

// Thresholds collects every tunable constant of the retrieval pipeline.
// The defaults were tuned empirically against a small rulebook corpus,
// not derived from a model; deployments may override them wholesale
// through WithThresholds.
type Thresholds struct {
	// SearchK is the per-expansion semantic search depth.
	SearchK int

	// KeywordLimit bounds the keyword scan during lexical augmentation.
	KeywordLimit int

	// KeywordInjectScore is assigned to keyword hits absent from the
	// semantic results. Keyword hits are treated as high-confidence
	// signals, overriding a weak or missing semantic score.
	KeywordInjectScore float64

	// RoleBonus is added when a chunk's subject role matches a
	// non-general intent role.
	RoleBonus float64

	// TermBonus is added once per must-have term found in the chunk text.
	TermBonus float64

	// CategoryBonusStep and CategoryBonusCap shape the per-category
	// boost: step * matched boost terms, capped per category.
	CategoryBonusStep float64
	CategoryBonusCap  float64

	// ScoreCap bounds every boosted score.
	ScoreCap float64

	// SeedCount is how many top results seed neighbor expansion.
	SeedCount int

	// Injected scores for chunks introduced by neighbor expansion.
	NeighborPageScore    float64
	NeighborSectionScore float64
	NeighborTopicScore   float64

	// Term-gate score floors for results that match no must-have term.
	GateBDirect   float64
	GateBCoverage float64

	// Evidence bounds per answer mode.
	DirectBound   int
	CoverageBound int

	// FallbackSeeds is how many pre-filter results seed the fallback
	// when the gates drop everything.
	FallbackSeeds int
}

// DefaultThresholds returns the tuned defaults.
func DefaultThresholds() Thresholds {
	return Thresholds{
		SearchK:              5,
		KeywordLimit:         5,
		KeywordInjectScore:   0.85,
		RoleBonus:            0.15,
		TermBonus:            0.08,
		CategoryBonusStep:    0.05,
		CategoryBonusCap:     0.2,
		ScoreCap:             0.99,
		SeedCount:            8,
		NeighborPageScore:    0.8,
		NeighborSectionScore: 0.85,
		NeighborTopicScore:   0.75,
		GateBDirect:          0.8,
		GateBCoverage:        0.65,
		DirectBound:          5,
		CoverageBound:        15,
		FallbackSeeds:        3,
	}
}

// Validate checks that the counting knobs can drive the pipeline.
// Score knobs are intentionally unconstrained; zero bonuses are a valid
// way to switch a signal off.
func (t Thresholds) Validate() error {
	if t.SearchK <= 0 {
		return fmt.Errorf("%w: SearchK must be positive, got %d", ErrInvalidThresholds, t.SearchK)
	}
	if t.DirectBound <= 0 || t.CoverageBound <= 0 {
		return fmt.Errorf("%w: evidence bounds must be positive, got %d/%d",
			ErrInvalidThresholds, t.DirectBound, t.CoverageBound)
	}
	if t.SeedCount <= 0 {
		return fmt.Errorf("%w: SeedCount must be positive, got %d", ErrInvalidThresholds, t.SeedCount)
	}
	if t.FallbackSeeds <= 0 {
		return fmt.Errorf("%w: FallbackSeeds must be positive, got %d", ErrInvalidThresholds, t.FallbackSeeds)
	}
	return nil
}
