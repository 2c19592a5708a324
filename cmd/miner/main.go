package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/hashnet-labs/hashcheck/internal/config"
	"github.com/hashnet-labs/hashcheck/internal/kami"
	"github.com/hashnet-labs/hashcheck/internal/miner"
	"github.com/hashnet-labs/hashcheck/internal/utils/logger"
	"github.com/hashnet-labs/hashcheck/pkg/signature"
)

func main() {
	logger.Init()
	log.Info().Msg("Starting miner...")

	if err := godotenv.Load(); err != nil {
		log.Debug().Msg(".env not loaded; continuing with existing environment")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load environment configuration")
	}

	k, err := kami.NewKami(&cfg.KamiEnvConfig)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to init kami client")
	}

	m := miner.NewMiner(&cfg.ServerEnvConfig, &cfg.ChainEnvConfig, k, signature.NewVerifier())

	if err := m.AnnounceAxon(); err != nil {
		log.Error().Err(err).Msg("failed to announce axon on chain, serving anyway")
	}

	m.Run()

	// Setup signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	log.Info().Msg("Miner is running. Press Ctrl+C to shutdown...")

	<-sigChan
	log.Info().Msg("Shutdown signal received, gracefully shutting down...")

	m.Stop()
	log.Info().Msg("Miner shutdown complete")
}
