package signature

import (
	"testing"

	"github.com/ChainSafe/gossamer/lib/crypto/sr25519"
	"github.com/vedhavyas/go-subkey"
)

func TestSignAndVerifyRoundTrip(t *testing.T) {
	keypair, err := sr25519.GenerateKeypair()
	if err != nil {
		t.Fatalf("Failed to generate keypair: %v", err)
	}

	keyring, err := NewKeyring(keypair)
	if err != nil {
		t.Fatalf("Failed to create keyring: %v", err)
	}

	message := "challenge:42"

	sig, err := keyring.Sign(message)
	if err != nil {
		t.Fatalf("Failed to sign message: %v", err)
	}

	if len(sig) < 2 || sig[:2] != "0x" {
		t.Error("Expected signature to start with '0x'")
	}
	if len(sig) != 130 { // 0x + 128 hex chars (64 bytes)
		t.Errorf("Expected signature length 130, got %d", len(sig))
	}

	ok, err := Verify(message, sig, keyring.Address())
	if err != nil {
		t.Fatalf("Verification failed: %v", err)
	}
	if !ok {
		t.Error("Expected signature to be valid, but verification failed")
	}
}

func TestSignWithKnownSeed(t *testing.T) {
	keypair, err := sr25519.NewKeypairFromMnenomic(subkey.DevPhrase, "")
	if err != nil {
		t.Fatalf("Failed to create keypair from seed: %v", err)
	}

	keyring, err := NewKeyring(keypair)
	if err != nil {
		t.Fatalf("Failed to create keyring: %v", err)
	}

	sig, err := keyring.Sign("hello")
	if err != nil {
		t.Fatalf("Failed to sign: %v", err)
	}

	ok, err := Verify("hello", sig, keyring.Address())
	if err != nil {
		t.Fatalf("Verification errored: %v", err)
	}
	if !ok {
		t.Error("Expected valid signature from known seed")
	}

	// a tampered message must not verify
	ok, err = Verify("hello!", sig, keyring.Address())
	if err != nil {
		t.Fatalf("Verification errored: %v", err)
	}
	if ok {
		t.Error("Expected tampered message to fail verification")
	}
}

func TestNewKeyringNil(t *testing.T) {
	if _, err := NewKeyring(nil); err == nil {
		t.Error("Expected error for nil keypair")
	}
}
