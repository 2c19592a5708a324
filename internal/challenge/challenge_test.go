package challenge

import (
	"crypto/sha256"
	"encoding/hex"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateIsDeterministic(t *testing.T) {
	a := Generate(42, 10)
	b := Generate(42, 10)
	assert.Equal(t, a.Pairs, b.Pairs)

	c := Generate(43, 10)
	assert.NotEqual(t, a.Pairs, c.Pairs)
}

func TestGeneratedPairsMatchSha256(t *testing.T) {
	s := Generate(7, 25)
	require.NotEmpty(t, s.Pairs)

	for key, digest := range s.Pairs {
		assert.GreaterOrEqual(t, key, 0)
		assert.LessOrEqual(t, key, MaxKey)

		sum := sha256.Sum256([]byte(strconv.Itoa(key)))
		assert.Equal(t, hex.EncodeToString(sum[:]), digest)
	}
}

func TestEnsureCreatesAndReusesCache(t *testing.T) {
	path := filepath.Join(t.TempDir(), "validationset.json")

	first, err := Ensure(path, 42, 10)
	require.NoError(t, err)

	// same seed: cached set is reused as-is
	second, err := Ensure(path, 42, 10)
	require.NoError(t, err)
	assert.Equal(t, first.Pairs, second.Pairs)
	assert.Equal(t, int64(42), second.Seed)
}

func TestEnsureRegeneratesOnSeedChange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "validationset.json")

	first, err := Ensure(path, 42, 10)
	require.NoError(t, err)

	changed, err := Ensure(path, 99, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(99), changed.Seed)
	assert.NotEqual(t, first.Pairs, changed.Pairs)

	// the regenerated set must be persisted
	reloaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, changed.Pairs, reloaded.Pairs)
}

func TestEnsureZeroSeedKeepsCache(t *testing.T) {
	path := filepath.Join(t.TempDir(), "validationset.json")

	first, err := Ensure(path, 42, 10)
	require.NoError(t, err)

	// seed 0 means "not set": the cached set wins
	kept, err := Ensure(path, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, first.Seed, kept.Seed)
	assert.Equal(t, first.Pairs, kept.Pairs)
}
