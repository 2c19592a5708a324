package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/hashnet-labs/hashcheck/internal/challenge"
	"github.com/hashnet-labs/hashcheck/internal/config"
	"github.com/hashnet-labs/hashcheck/internal/dendrite"
	"github.com/hashnet-labs/hashcheck/internal/kami"
	"github.com/hashnet-labs/hashcheck/internal/utils/logger"
	"github.com/hashnet-labs/hashcheck/internal/utils/redis"
	"github.com/hashnet-labs/hashcheck/internal/validator"
	"github.com/hashnet-labs/hashcheck/pkg/signature"
)

func main() {
	logger.Init()
	log.Info().Msg("Starting validator...")

	if err := godotenv.Load(); err != nil {
		log.Debug().Msg(".env not loaded; continuing with existing environment")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load environment configuration")
	}
	config.ApplyFlags(&cfg.ValidatorEnvConfig)

	k, err := kami.NewKami(&cfg.KamiEnvConfig)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to init kami client")
	}

	var r redis.RedisInterface
	if rc, err := redis.NewRedis(&cfg.RedisEnvConfig); err != nil {
		log.Error().Err(err).Msg("failed to init redis client, continuing without redis")
	} else {
		r = rc
	}

	set, err := challenge.Ensure(challenge.DefaultSetFileName, cfg.Seed, cfg.ValidationLot)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to prepare challenge set")
	}
	log.Info().Int64("seed", set.Seed).Int("keys", len(set.Pairs)).Msg("challenge set ready")

	var keyring *signature.Keyring
	if keypair, err := signature.LoadKeypairFromHotkey(cfg.WalletColdkey, cfg.WalletHotkey); err != nil {
		log.Warn().Err(err).Msg("hotkey not loaded, challenge requests will be unsigned")
	} else if keyring, err = signature.NewKeyring(keypair); err != nil {
		log.Fatal().Err(err).Msg("failed to init keyring")
	}

	d, err := dendrite.NewDendrite(&cfg.ClientEnvConfig, keyring)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to init dendrite client")
	}

	v, err := validator.NewValidator(&cfg.ValidatorEnvConfig, k, d, r, set)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to init validator")
	}

	// setup signal handling for graceful shutdown before starting validator
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// listen for shutdown signal in a separate goroutine so we can start the validator
	go func() {
		<-sigChan
		log.Info().Msg("shutdown signal received, stopping validator")
		v.Stop()
	}()

	if err := v.Start(); err != nil {
		log.Fatal().Err(err).Msg("validator failed to start")
	}

	// wait until validator context is cancelled (v.Stop will call Cancel())
	<-v.Ctx.Done()
	log.Info().Msg("validator stopped")
}
