// Package config defines environment configuration structs and loaders.
package config

import (
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

type AppConfig struct {
	ChainEnvConfig
	WalletEnvConfig
	KamiEnvConfig
	ServerEnvConfig
	ClientEnvConfig
	RedisEnvConfig
	ValidatorEnvConfig
}

func LoadConfig() (*AppConfig, error) {
	cfg := &AppConfig{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ChainEnvConfig holds chain-specific environment values.
type ChainEnvConfig struct {
	Netuid int `env:"NETUID" envDefault:"1"`
}

// WalletEnvConfig holds wallet key configuration.
type WalletEnvConfig struct {
	WalletHotkey  string `env:"WALLET_HOTKEY"`
	WalletColdkey string `env:"WALLET_COLDKEY"`
	BittensorDir  string `env:"BITTENSOR_DIR" envDefault:"~/.bittensor"`
}

// KamiEnvConfig contains the subtensor bridge target and keys.
type KamiEnvConfig struct {
	WalletEnvConfig
	SubtensorNetwork string `env:"SUBTENSOR_NETWORK" envDefault:"test"`
	KamiHost         string `env:"KAMI_HOST" envDefault:"127.0.0.1"`
	KamiPort         string `env:"KAMI_PORT" envDefault:"3000"`
}

// ServerEnvConfig configures the miner axon server.
type ServerEnvConfig struct {
	Address       string `env:"AXON_IP" envDefault:"127.0.0.1"`
	Port          int    `env:"AXON_PORT" envDefault:"8080"`
	BodySizeLimit int    `env:"SERVER_BODY_LIMIT" envDefault:"1048576"`
}

// ClientEnvConfig configures the dendrite client.
type ClientEnvConfig struct {
	ClientTimeout time.Duration `env:"CLIENT_TIMEOUT" envDefault:"30s"`
	RetryMax      int           `env:"CLIENT_RETRY_MAX" envDefault:"3"`
}

// RedisEnvConfig configures the Redis connection.
type RedisEnvConfig struct {
	RedisHost     string `env:"REDIS_HOST" envDefault:"127.0.0.1"`
	RedisPort     int    `env:"REDIS_PORT" envDefault:"6379"`
	RedisPassword string `env:"REDIS_PASSWORD" envDefault:"password"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`
	RedisUsername string `env:"REDIS_USERNAME" envDefault:"admin"`
}

// ValidatorEnvConfig configures the validator runtime. Seed and ValidationLot
// drive the deterministic challenge set; both can be overridden on the
// command line.
type ValidatorEnvConfig struct {
	ChainEnvConfig
	ClientEnvConfig
	Seed          int64  `env:"CHALLENGE_SEED" envDefault:"0"`
	ValidationLot int    `env:"VALIDATION_LOT" envDefault:"10"`
	Environment   string `env:"ENVIRONMENT" envDefault:"dev"`
}

// IntervalConfig groups ticker intervals used by the validator runtime.
// ChallengeInterval approximates one chain block between challenge keys.
type IntervalConfig struct {
	MetagraphInterval time.Duration
	ChallengeInterval time.Duration
	BlockInterval     time.Duration
}

var (
	DevIntervalConfig = &IntervalConfig{
		MetagraphInterval: 5 * time.Second,
		ChallengeInterval: 3 * time.Second,
		BlockInterval:     2 * time.Second,
	}
	TestIntervalConfig = &IntervalConfig{
		MetagraphInterval: 30 * time.Second,
		ChallengeInterval: 12 * time.Second,
		BlockInterval:     12 * time.Second,
	}

	ProdIntervalConfig = &IntervalConfig{
		MetagraphInterval: 30 * time.Second,
		ChallengeInterval: 12 * time.Second,
		BlockInterval:     12 * time.Second,
	}
)

func NewIntervalConfig(environment string) *IntervalConfig {
	switch strings.ToLower(environment) {
	case "dev":
		return DevIntervalConfig
	case "test":
		return TestIntervalConfig
	case "prod":
		return ProdIntervalConfig
	}

	return DevIntervalConfig
}
