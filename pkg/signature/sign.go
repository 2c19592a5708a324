package signature

import (
	"encoding/hex"
	"fmt"

	"github.com/ChainSafe/gossamer/lib/crypto/sr25519"
	"github.com/vedhavyas/go-subkey"
)

// NewKeyring wraps an sr25519 keypair.
func NewKeyring(keypair *sr25519.Keypair) (*Keyring, error) {
	if keypair == nil {
		return nil, fmt.Errorf("keypair cannot be nil")
	}
	return &Keyring{keypair: keypair}, nil
}

// Sign signs the message with the hotkey and returns the signature as a hex
// string with 0x prefix.
func (k *Keyring) Sign(message string) (string, error) {
	if k.keypair == nil {
		return "", fmt.Errorf("private key not initialized")
	}

	sig, err := k.keypair.Sign([]byte(message))
	if err != nil {
		return "", fmt.Errorf("failed to sign message: %w", err)
	}

	return "0x" + hex.EncodeToString(sig), nil
}

// Address returns the SS58 address of the keypair on the substrate network.
func (k *Keyring) Address() string {
	return subkey.SS58Encode(k.keypair.Public().Encode(), SubstrateNetworkID)
}
