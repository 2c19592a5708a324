// Package scoring contains the match scoring and weight normalization logic.
package scoring

const (
	// SmoothingAlpha is the exponential smoothing factor applied to each
	// round's match outcome.
	SmoothingAlpha = 0.9
)

// MatchScore returns 1 when the miner's generated hash equals the expected
// digest, else 0.
func MatchScore(generated, expected string) float64 {
	if generated != "" && generated == expected {
		return 1
	}
	return 0
}

// SmoothScore applies the smoothing update to a round outcome:
// new = alpha*match + (1-alpha)*0. The previous score does not carry over;
// a miss zeroes the peer's score.
func SmoothScore(match float64) float64 {
	return SmoothingAlpha*match + (1-SmoothingAlpha)*0
}
