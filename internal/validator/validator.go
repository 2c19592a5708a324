package validator

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/hashnet-labs/hashcheck/internal/challenge"
	"github.com/hashnet-labs/hashcheck/internal/config"
	"github.com/hashnet-labs/hashcheck/internal/kami"
	"github.com/hashnet-labs/hashcheck/internal/utils/redis"
)

// Validator coordinates challenge rounds and on-chain state for a subnet.
type Validator struct {
	Kami     kami.KamiInterface
	Dendrite DendriteInterface
	Redis    redis.RedisInterface

	// Chain global state
	LatestBlock      int64
	MetagraphData    MetagraphData
	ValidatorHotkey  string
	ValidatorUID     int
	LatestScoresData ScoresData

	ChallengeSet *challenge.Set
	keys         []int // sorted challenge keys, cycled round by round
	nextKey      int
	scoresPath   string

	IntervalConfig  *config.IntervalConfig
	ValidatorConfig *config.ValidatorEnvConfig

	Ctx    context.Context
	Cancel context.CancelFunc
	Wg     sync.WaitGroup

	mu           sync.Mutex  // protects shared chain and score state
	roundRunning atomic.Bool // set while a challenge round is in flight
}

// NewValidator constructs a Validator with intervals based on environment.
func NewValidator(
	cfg *config.ValidatorEnvConfig,
	k kami.KamiInterface,
	d DendriteInterface,
	r redis.RedisInterface,
	set *challenge.Set,
) (*Validator, error) {
	intervalConfig := config.NewIntervalConfig(cfg.Environment)

	keyringData, err := k.GetKeyringPair()
	if err != nil {
		return nil, fmt.Errorf("failed to get validator hotkey: %w", err)
	}

	scoresData, err := loadScores(scoresFileName)
	if err != nil {
		return nil, fmt.Errorf("failed to load scores: %w", err)
	}
	log.Info().Int("step", scoresData.Step).Int("peers", len(scoresData.Scores)).Msg("loaded latest scores from file")

	keys := make([]int, 0, len(set.Pairs))
	for key := range set.Pairs {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	if len(keys) == 0 {
		return nil, fmt.Errorf("challenge set is empty")
	}

	ctx, cancel := context.WithCancel(context.Background())

	hotkey := keyringData.Data.KeyringPair.Address
	log.Info().Str("hotkey", hotkey).Msg("validator hotkey loaded")

	return &Validator{
		Kami:     k,
		Dendrite: d,
		Redis:    r,

		LatestBlock:      0,
		MetagraphData:    MetagraphData{},
		ValidatorHotkey:  hotkey,
		ValidatorUID:     -1,
		LatestScoresData: scoresData,

		ChallengeSet: set,
		keys:         keys,
		scoresPath:   scoresFileName,

		IntervalConfig:  intervalConfig,
		ValidatorConfig: cfg,

		Ctx:    ctx,
		Cancel: cancel,
	}, nil
}

// runTicker runs a function periodically until the provided context is
// canceled. fn is executed in its own goroutine so the ticker loop can exit
// quickly when the context is canceled. Each invocation joins the WaitGroup
// so Stop does not release shared resources under an in-flight tick.
func (v *Validator) runTicker(ctx context.Context, d time.Duration, fn func()) {
	defer v.Wg.Done()
	t := time.NewTicker(d)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			v.Wg.Add(1)
			go func() {
				defer v.Wg.Done()
				fn()
			}()
		}
	}
}

// Start checks registration and kicks off the periodic routines. It fails
// when the validator hotkey is not registered on the subnet.
func (v *Validator) Start() error {
	if err := v.checkRegistration(); err != nil {
		return err
	}

	v.Wg.Add(1)
	go v.runTicker(v.Ctx, v.IntervalConfig.MetagraphInterval, func() {
		v.syncMetagraph()
	})

	v.Wg.Add(1)
	go v.runTicker(v.Ctx, v.IntervalConfig.BlockInterval, func() {
		v.syncBlock()
	})

	v.Wg.Add(1)
	go v.runTicker(v.Ctx, v.IntervalConfig.ChallengeInterval, func() {
		v.challengeRound()
	})

	return nil
}

// checkRegistration fetches the metagraph and resolves the validator's uid.
func (v *Validator) checkRegistration() error {
	resp, err := v.Kami.GetMetagraph(v.ValidatorConfig.Netuid)
	if err != nil {
		return fmt.Errorf("fetch metagraph: %w", err)
	}

	uid := slices.Index(resp.Data.Hotkeys, v.ValidatorHotkey)
	if uid < 0 {
		return fmt.Errorf("validator hotkey %s is not registered on subnet %d, run btcli register and try again",
			v.ValidatorHotkey, v.ValidatorConfig.Netuid)
	}

	v.mu.Lock()
	v.MetagraphData.Metagraph = resp.Data
	v.ValidatorUID = uid
	v.LatestScoresData.Scores = ensureScoresSize(v.LatestScoresData.Scores, len(resp.Data.Hotkeys))
	v.mu.Unlock()

	log.Info().Int("uid", uid).Int("netuid", v.ValidatorConfig.Netuid).Msg("running validator on uid")
	return nil
}

// Stop cancels background routines and waits for them to finish.
func (v *Validator) Stop() {
	if v.Cancel != nil {
		v.Cancel()
	}
	v.Wg.Wait()
	if v.Dendrite != nil {
		v.Dendrite.Close()
	}
}
