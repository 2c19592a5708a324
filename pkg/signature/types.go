package signature

import "github.com/ChainSafe/gossamer/lib/crypto/sr25519"

const (
	SubstrateNetworkID = 42

	DefaultBittensorDir = "~/.bittensor"
)

// Verifier checks sr25519 signatures against an SS58 address.
type Verifier interface {
	Verify(message, signature, ss58Address string) (bool, error)
}

// Signer produces hex-encoded sr25519 signatures.
type Signer interface {
	Sign(message string) (string, error)
}

// Keyring wraps a loaded sr25519 keypair and implements Signer.
type Keyring struct {
	keypair *sr25519.Keypair
}

// SS58Verifier is the stateless Verifier implementation.
type SS58Verifier struct{}

func NewVerifier() *SS58Verifier {
	return &SS58Verifier{}
}
