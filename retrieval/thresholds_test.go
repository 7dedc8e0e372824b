package retrieval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestThresholds(t *testing.T) {
	t.Run("defaults validate", func(t *testing.T) {
		require.NoError(t, DefaultThresholds().Validate())
	})

	t.Run("zero search depth rejected", func(t *testing.T) {
		th := DefaultThresholds()
		th.SearchK = 0
		assert.ErrorIs(t, th.Validate(), ErrInvalidThresholds)
	})

	t.Run("zero bounds rejected", func(t *testing.T) {
		th := DefaultThresholds()
		th.DirectBound = 0
		assert.ErrorIs(t, th.Validate(), ErrInvalidThresholds)

		th = DefaultThresholds()
		th.CoverageBound = -1
		assert.ErrorIs(t, th.Validate(), ErrInvalidThresholds)
	})

	t.Run("zero seed counts rejected", func(t *testing.T) {
		th := DefaultThresholds()
		th.SeedCount = 0
		assert.ErrorIs(t, th.Validate(), ErrInvalidThresholds)

		th = DefaultThresholds()
		th.FallbackSeeds = 0
		assert.ErrorIs(t, th.Validate(), ErrInvalidThresholds)
	})

	t.Run("zero bonuses are legal", func(t *testing.T) {
		th := DefaultThresholds()
		th.RoleBonus = 0
		th.TermBonus = 0
		th.CategoryBonusStep = 0
		assert.NoError(t, th.Validate())
	})
}
