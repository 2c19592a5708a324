package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"gonum.org/v1/gonum/floats"
)

func TestMatchScore(t *testing.T) {
	digest := "9f86d081884c7d659a2feaa0c55ad015a3bf4f1b2b0b822cd15d6c15b0f00a08"

	assert.Equal(t, 1.0, MatchScore(digest, digest))
	assert.Equal(t, 0.0, MatchScore("deadbeef", digest))
	// empty responses never match, even against an empty expectation
	assert.Equal(t, 0.0, MatchScore("", ""))
}

func TestSmoothScore(t *testing.T) {
	assert.InDelta(t, 0.9, SmoothScore(1), 1e-12)
	assert.Equal(t, 0.0, SmoothScore(0))
}

func TestL1Normalize(t *testing.T) {
	t.Run("sums to one", func(t *testing.T) {
		w := L1Normalize([]float64{0.9, 0.9, 0})
		assert.InDelta(t, 1.0, floats.Sum(w), 1e-12)
		assert.InDelta(t, 0.5, w[0], 1e-12)
		assert.Equal(t, 0.0, w[2])
	})

	t.Run("zero vector unchanged", func(t *testing.T) {
		w := L1Normalize([]float64{0, 0})
		assert.Equal(t, []float64{0, 0}, w)
	})

	t.Run("input not mutated", func(t *testing.T) {
		in := []float64{1, 3}
		_ = L1Normalize(in)
		assert.Equal(t, []float64{1, 3}, in)
	})
}
