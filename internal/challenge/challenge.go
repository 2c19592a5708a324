// Package challenge builds and caches the deterministic key→hash validation
// set used to probe miners.
package challenge

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"math/rand"
	"os"
	"strconv"

	"github.com/bytedance/sonic"
	"github.com/rs/zerolog/log"
)

const (
	// DefaultSetFileName is where the generated set is cached between runs.
	DefaultSetFileName = "validationset.json"

	// MaxKey bounds the challenge keys; values are sha256 digests of the
	// decimal key string.
	MaxKey = 10000
)

// Set is the persisted challenge set: the seed it was derived from and the
// key→hex-digest pairs.
type Set struct {
	Seed  int64          `json:"seed"`
	Pairs map[int]string `json:"pairs"`
}

// Generate derives length key/hash pairs from the seed. Keys are drawn in
// [0, MaxKey]; duplicate draws collapse into one entry, mirroring the
// original generator.
func Generate(seed int64, length int) *Set {
	r := rand.New(rand.NewSource(seed))
	pairs := make(map[int]string, length)
	for i := 0; i < length; i++ {
		key := r.Intn(MaxKey + 1)
		pairs[key] = HashKey(key)
	}
	return &Set{Seed: seed, Pairs: pairs}
}

// HashKey returns the hex SHA-256 digest of the key's decimal representation.
func HashKey(key int) string {
	sum := sha256.Sum256([]byte(strconv.Itoa(key)))
	return hex.EncodeToString(sum[:])
}

// Load reads a cached set from path.
func Load(path string) (*Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read challenge set: %w", err)
	}
	var s Set
	if err := sonic.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("unmarshal challenge set: %w", err)
	}
	return &s, nil
}

// Store writes the set to path.
func (s *Set) Store(path string) error {
	data, err := sonic.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal challenge set: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write challenge set: %w", err)
	}
	return nil
}

// Ensure returns the cached set at path, generating and persisting a fresh
// one when no cache exists or when an explicit non-zero seed differs from the
// cached seed.
func Ensure(path string, seed int64, length int) (*Set, error) {
	cached, err := Load(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
		log.Info().Int64("seed", seed).Int("length", length).Msg("no cached challenge set, generating")
		s := Generate(seed, length)
		if err := s.Store(path); err != nil {
			return nil, err
		}
		return s, nil
	}

	log.Debug().Int64("saved_seed", cached.Seed).Msg("loaded cached challenge set")

	if seed != 0 && cached.Seed != seed {
		log.Info().Int64("old_seed", cached.Seed).Int64("new_seed", seed).Msg("seed has changed, regenerating challenge set")
		s := Generate(seed, length)
		if err := s.Store(path); err != nil {
			return nil, err
		}
		return s, nil
	}

	return cached, nil
}
