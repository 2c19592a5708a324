// Package validator contains the validator runtime: metagraph sync, the
// challenge loop, score smoothing, and on-chain weight submission.
package validator

import (
	"context"

	"github.com/hashnet-labs/hashcheck/internal/dendrite"
	"github.com/hashnet-labs/hashcheck/internal/kami"
)

const (
	scoresFileName = "scores.json"

	redisChallengeRoundKey = "validator:challenge_round"
	redisMatchStatsPrefix  = "validator:match_stats"
	redisLastBlockKey      = "validator:last_block"

	// submitEvery controls weight submission cadence inside a round: the
	// normalized vector is pushed on every other response.
	submitEvery = 2
)

// MetagraphData holds the current subnet metagraph snapshot.
type MetagraphData struct {
	Metagraph kami.SubnetMetagraph
}

// ScoresData is the persisted smoothed score vector, indexed by uid.
type ScoresData struct {
	Step   int       `json:"step"`
	Scores []float64 `json:"scores"`
}

// DendriteInterface is the peer-query surface the validator depends on.
type DendriteInterface interface {
	Query(ctx context.Context, axons []kami.AxonInfo, ch dendrite.HashChallenge) ([]dendrite.HashResponse, []error)
	Close()
}
