package validator

import (
	"fmt"
	"os"

	"github.com/bytedance/sonic"
	"github.com/rs/zerolog/log"
)

func loadScores(path string) (ScoresData, error) {
	var data ScoresData

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Info().Msg("scores file not found, initializing with default scores")
			data = ScoresData{Step: 0, Scores: []float64{}}
			if err := saveScores(path, data); err != nil {
				return data, err
			}
			return data, nil
		}
		return data, fmt.Errorf("read scores file: %w", err)
	}

	if err := sonic.Unmarshal(raw, &data); err != nil {
		return data, fmt.Errorf("unmarshal scores file: %w", err)
	}
	return data, nil
}

func saveScores(path string, data ScoresData) error {
	raw, err := sonic.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal scores: %w", err)
	}
	if err := os.WriteFile(path, raw, 0o600); err != nil {
		return fmt.Errorf("write scores file: %w", err)
	}
	return nil
}

// ensureScoresSize grows the score vector to n entries. New peers start at 1,
// matching the all-ones initialization of a fresh validator.
func ensureScoresSize(scores []float64, n int) []float64 {
	for len(scores) < n {
		scores = append(scores, 1.0)
	}
	return scores
}
