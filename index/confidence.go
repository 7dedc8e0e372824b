package index

// Display rescaling constants. Raw cosine similarity reads low to users
// even for strong matches, so scores past the knee are stretched toward
// the top of the display range.
const (
	confidenceKnee  = 0.4
	confidenceSlope = 0.76 // maps raw (0.4, 0.9) onto display (0.6, 0.98)
	confidenceFloor = 0.01
	confidenceCeil  = 0.99
)

// DisplayConfidence rescales a raw similarity score for user-facing
// display. Values at or below the knee pass through unchanged; values
// above it are remapped linearly, and the result is clamped to
// [0.01, 0.99]. The map is non-decreasing, so display order always
// matches raw order. Cosmetic only: ranking decisions use raw scores.
func DisplayConfidence(raw float64) float64 {
	display := raw
	if raw > confidenceKnee {
		display = 0.6 + (raw-confidenceKnee)*confidenceSlope
	}

	if display < confidenceFloor {
		return confidenceFloor
	}
	if display > confidenceCeil {
		return confidenceCeil
	}
	return display
}
