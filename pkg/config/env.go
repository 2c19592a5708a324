// Package config holds environment structs shared by the pkg layer.
package config

// WalletEnvConfig locates the bittensor wallet files on disk.
type WalletEnvConfig struct {
	WalletHotkey  string `env:"WALLET_HOTKEY"`
	WalletColdkey string `env:"WALLET_COLDKEY"`
	BittensorDir  string `env:"BITTENSOR_DIR,default=~/.bittensor"`
}
