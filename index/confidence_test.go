package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDisplayConfidence(t *testing.T) {
	tests := []struct {
		name string
		raw  float64
		want float64
	}{
		{"negative clamps to floor", -0.5, 0.01},
		{"zero clamps to floor", 0.0, 0.01},
		{"below knee passes through", 0.2, 0.2},
		{"at knee passes through", 0.4, 0.4},
		{"above knee rescales", 0.5, 0.676},
		{"mid range rescales", 0.7, 0.828},
		{"top of raw range", 0.9, 0.98},
		{"perfect match clamps to ceiling", 1.0, 0.99},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, DisplayConfidence(tt.raw), 1e-9)
		})
	}
}

func TestDisplayConfidence_Monotonic(t *testing.T) {
	prev := DisplayConfidence(-1.0)
	for raw := -1.0; raw <= 1.2; raw += 0.005 {
		got := DisplayConfidence(raw)
		assert.GreaterOrEqual(t, got, prev, "raw=%f", raw)
		prev = got
	}
}

func TestDisplayConfidence_Bounds(t *testing.T) {
	for raw := -2.0; raw <= 2.0; raw += 0.01 {
		got := DisplayConfidence(raw)
		assert.GreaterOrEqual(t, got, 0.01)
		assert.LessOrEqual(t, got, 0.99)
	}
}
