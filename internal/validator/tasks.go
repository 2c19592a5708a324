package validator

import (
	"fmt"
	"slices"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/hashnet-labs/hashcheck/internal/dendrite"
	"github.com/hashnet-labs/hashcheck/internal/kami"
	"github.com/hashnet-labs/hashcheck/internal/scoring"
	chainutils "github.com/hashnet-labs/hashcheck/internal/utils/chainutils"
)

func (v *Validator) syncMetagraph() {
	log.Info().Msgf("syncing metagraph data for subnet: %d", v.ValidatorConfig.Netuid)

	newMetagraph, err := v.Kami.GetMetagraph(v.ValidatorConfig.Netuid)
	if err != nil {
		log.Error().Err(err).Msg("failed to get metagraph")
		return
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	v.MetagraphData.Metagraph = newMetagraph.Data
	v.LatestScoresData.Scores = ensureScoresSize(v.LatestScoresData.Scores, len(newMetagraph.Data.Hotkeys))

	log.Info().Int("peers", len(newMetagraph.Data.Hotkeys)).Msg("metagraph synced")
}

func (v *Validator) syncBlock() {
	newBlockResp, err := v.Kami.GetLatestBlock()
	if err != nil {
		log.Error().Err(err).Msg("failed to get latest block")
		return
	}
	v.mu.Lock()
	defer v.mu.Unlock()

	v.LatestBlock = int64(newBlockResp.Data.BlockNumber)
}

// challengeRound sends the next challenge key to every axon, scores the
// responses by exact hash match, and submits normalized weights on every
// other response. Errors are logged and the loop carries on.
func (v *Validator) challengeRound() {
	if !v.roundRunning.CompareAndSwap(false, true) {
		return
	}
	defer v.roundRunning.Store(false)

	v.mu.Lock()
	axons := v.MetagraphData.Metagraph.Axons
	key := v.keys[v.nextKey]
	v.nextKey = (v.nextKey + 1) % len(v.keys)
	block := v.LatestBlock
	v.mu.Unlock()

	if len(axons) == 0 {
		log.Info().Msg("metagraph has no axons, skipping challenge round")
		return
	}

	expected := v.ChallengeSet.Pairs[key]
	log.Info().Int("nonce", key).Int("peers", len(axons)).Int64("block", block).Msg("sending challenge to axons")

	responses, errs := v.Dendrite.Query(v.Ctx, axons, dendrite.HashChallenge{Nonce: key})

	// Kami calls are slow; collect the score snapshots under the lock and
	// submit after releasing it so the sync tickers are not stalled.
	var pendingSubmits [][]float64

	v.mu.Lock()
	v.LatestScoresData.Scores = ensureScoresSize(v.LatestScoresData.Scores, len(responses))
	for i, resp := range responses {
		if errs[i] != nil {
			log.Debug().Err(errs[i]).Int("uid", i).Msg("no response from axon")
		}

		match := scoring.MatchScore(resp.GeneratedHash, expected)
		v.LatestScoresData.Scores[i] = scoring.SmoothScore(match)
		log.Debug().Int("uid", i).Float64("score", match).Msg("scored response")

		if i%submitEvery == 0 {
			pendingSubmits = append(pendingSubmits, slices.Clone(v.LatestScoresData.Scores))
		}
	}
	v.LatestScoresData.Step++
	scoresSnapshot := v.LatestScoresData
	versionKey := v.MetagraphData.Metagraph.WeightsVersion
	v.mu.Unlock()

	for _, scores := range pendingSubmits {
		v.submitWeights(scores, versionKey)
	}

	if err := saveScores(v.scoresPath, scoresSnapshot); err != nil {
		log.Error().Err(err).Msg("failed to persist scores")
	}

	v.recordRound(key, block, responses)

	// resync peer state before the next key goes out
	v.syncMetagraph()
}

// submitWeights normalizes the given score vector and pushes it on chain.
func (v *Validator) submitWeights(scores []float64, versionKey int) {
	clamped := chainutils.ClampNegativeWeights(scores)
	weights := scoring.L1Normalize(clamped)
	log.Info().Floats64("weights", weights).Msg("setting weights")

	uids := make([]int64, len(weights))
	for i := range uids {
		uids[i] = int64(i)
	}

	dests, vals, err := chainutils.ConvertWeightsAndUidsForEmit(uids, weights)
	if err != nil {
		log.Error().Err(err).Msg("failed to convert weights for emit")
		return
	}
	if len(dests) == 0 {
		log.Info().Msg("no non-zero weights to submit")
		return
	}

	res, err := v.Kami.SetWeights(kami.SetWeightsParams{
		Netuid:     v.ValidatorConfig.Netuid,
		Dests:      dests,
		Weights:    vals,
		VersionKey: versionKey,
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to set weights")
		return
	}
	log.Info().Str("extrinsic", res.Data).Msg("successfully set weights")
}

// recordRound tracks the round counter, the block it ran at, and per-uid
// match stats in redis when a client is configured.
func (v *Validator) recordRound(key int, block int64, responses []dendrite.HashResponse) {
	if v.Redis == nil {
		return
	}

	round, err := v.Redis.Incr(v.Ctx, redisChallengeRoundKey)
	if err != nil {
		log.Error().Err(err).Msg("failed to increment challenge round")
		return
	}

	expected := v.ChallengeSet.Pairs[key]
	stats := make(map[string]string, len(responses)+1)
	stats[redisLastBlockKey] = strconv.FormatInt(block, 10)
	for i, resp := range responses {
		statKey := fmt.Sprintf("%s:%d", redisMatchStatsPrefix, i)
		stats[statKey] = strconv.FormatFloat(scoring.MatchScore(resp.GeneratedHash, expected), 'f', -1, 64)
	}
	if err := v.Redis.SetMulti(v.Ctx, stats); err != nil {
		log.Error().Err(err).Msg("failed to store match stats")
		return
	}

	log.Debug().Int64("round", round).Int("nonce", key).Int64("block", block).Time("at", time.Now()).Msg("recorded challenge round")
}
