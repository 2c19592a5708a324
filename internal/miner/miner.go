// Package miner implements the axon server that answers hash challenges.
package miner

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog/log"

	"github.com/hashnet-labs/hashcheck/internal/challenge"
	"github.com/hashnet-labs/hashcheck/internal/config"
	"github.com/hashnet-labs/hashcheck/internal/dendrite"
	"github.com/hashnet-labs/hashcheck/internal/kami"
	chainutils "github.com/hashnet-labs/hashcheck/internal/utils/chainutils"
	"github.com/hashnet-labs/hashcheck/pkg/signature"
)

// Miner serves the axon endpoint and keeps its registration on chain.
type Miner struct {
	app  *fiber.App
	cfg  *config.ServerEnvConfig
	kami kami.KamiInterface
	axon kami.ServeAxonParams

	ctx    context.Context
	cancel context.CancelFunc
}

// NewMiner wires the fiber app with compression and signature middleware and
// resolves the axon announcement parameters.
func NewMiner(cfg *config.ServerEnvConfig, chainCfg *config.ChainEnvConfig, k kami.KamiInterface, verifier signature.Verifier) *Miner {
	app := fiber.New(fiber.Config{
		BodyLimit:   cfg.BodySizeLimit,
		JSONEncoder: sonic.Marshal,
		JSONDecoder: sonic.Unmarshal,
	})

	app.Use(recover.New())
	app.Use(ZstdMiddleware())
	if verifier != nil {
		app.Use(SignatureMiddleware(verifier))
	}

	ctx, cancel := context.WithCancel(context.Background())

	m := &Miner{
		app:    app,
		cfg:    cfg,
		kami:   k,
		axon:   resolveAxonParams(cfg, chainCfg),
		ctx:    ctx,
		cancel: cancel,
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Post("/HashChallenge", m.handleHashChallenge)

	return m
}

func resolveAxonParams(cfg *config.ServerEnvConfig, chainCfg *config.ChainEnvConfig) kami.ServeAxonParams {
	var ipInt int
	if cfg.Address != "" {
		p := net.ParseIP(cfg.Address)
		if p == nil {
			if addrs, err := net.LookupIP(cfg.Address); err == nil && len(addrs) > 0 {
				p = addrs[0]
			}
		}
		if p != nil {
			if v, err := chainutils.IPv4ToInt(p); err == nil {
				ipInt = int(v)
			}
		}
	}
	if ipInt == 0 {
		if ext, err := chainutils.GetExternalIPInt(); err == nil {
			ipInt = int(ext)
		} else {
			log.Error().Err(err).Msg("failed to determine external IP")
		}
	}

	return kami.ServeAxonParams{
		Netuid:   chainCfg.Netuid,
		Version:  1,
		IP:       ipInt,
		Port:     cfg.Port,
		IPType:   4,
		Protocol: 4,
	}
}

// handleHashChallenge answers a challenge with the sha256 digest of the
// nonce's decimal string.
func (m *Miner) handleHashChallenge(c *fiber.Ctx) error {
	var ch dendrite.HashChallenge
	if err := sonic.Unmarshal(c.Body(), &ch); err != nil {
		log.Error().Err(err).Msg("failed to unmarshal hash challenge")
		return c.Status(fiber.StatusBadRequest).JSON(errorResponse(fmt.Errorf("invalid payload: %w", err)))
	}

	if ch.Nonce < 0 || ch.Nonce > challenge.MaxKey {
		return c.Status(fiber.StatusBadRequest).JSON(errorResponse(fmt.Errorf("nonce %d out of range", ch.Nonce)))
	}

	resp := dendrite.StdResponse[dendrite.HashResponse]{
		Body: dendrite.HashResponse{
			GeneratedHash: challenge.HashKey(ch.Nonce),
			Timestamp:     time.Now().UnixNano(),
		},
	}

	log.Debug().Int("nonce", ch.Nonce).Msg("answered hash challenge")
	return c.JSON(resp)
}

// AnnounceAxon publishes the axon endpoint on chain through Kami.
func (m *Miner) AnnounceAxon() error {
	if m.kami == nil {
		return fmt.Errorf("kami client not configured")
	}
	res, err := m.kami.ServeAxon(m.axon)
	if err != nil {
		return fmt.Errorf("serve axon: %w", err)
	}
	log.Info().Str("extrinsic", res.Data).Int("port", m.axon.Port).Msg("axon announced on chain")
	return nil
}

// Run starts the server in the background.
func (m *Miner) Run() {
	go func() {
		addr := fmt.Sprintf(":%d", m.cfg.Port)
		if err := m.app.Listen(addr); err != nil {
			log.Error().Err(err).Msg("miner server listen failed")
		}
	}()
	log.Info().Int("port", m.cfg.Port).Msg("miner server started")
}

// Stop shuts the server down.
func (m *Miner) Stop() {
	if m.cancel != nil {
		m.cancel()
	}
	if err := m.app.Shutdown(); err != nil {
		log.Error().Err(err).Msg("miner server shutdown failed")
	}
	log.Info().Msg("miner stopped")
}

// App exposes the fiber app for tests.
func (m *Miner) App() *fiber.App {
	return m.app
}
