// Package crypto wraps the ed25519 and SHA-256 primitives used to sign
// transactions and blocks.
package crypto

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
)

// PrivateKey is a raw ed25519 private key.
type PrivateKey []byte

// PublicKey is a raw ed25519 public key. Its hex form is the account address.
type PublicKey []byte

// GenerateKeyPair returns a fresh ed25519 key pair.
func GenerateKeyPair() (PrivateKey, PublicKey, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, nil, err
	}
	return PrivateKey(priv), PublicKey(pub), nil
}

// Hex returns the 64-char hex encoding of the public key.
func (pub PublicKey) Hex() string { return hex.EncodeToString(pub) }

// Short returns the first 20 bytes of SHA-256(pubkey) as hex, for display.
func (pub PublicKey) Short() string {
	return hex.EncodeToString(HashBytes(pub)[:20])
}

// Hex returns the hex encoding of the private key.
func (priv PrivateKey) Hex() string { return hex.EncodeToString(priv) }

// Public derives the public half of priv.
func (priv PrivateKey) Public() PublicKey {
	return PublicKey(ed25519.PrivateKey(priv).Public().(ed25519.PublicKey))
}

// PubKeyFromHex decodes and length-checks a hex public key.
func PubKeyFromHex(s string) (PublicKey, error) {
	b, err := decodeKey(s, ed25519.PublicKeySize)
	if err != nil {
		return nil, fmt.Errorf("pubkey: %w", err)
	}
	return PublicKey(b), nil
}

// PrivKeyFromHex decodes and length-checks a hex private key.
func PrivKeyFromHex(s string) (PrivateKey, error) {
	b, err := decodeKey(s, ed25519.PrivateKeySize)
	if err != nil {
		return nil, fmt.Errorf("privkey: %w", err)
	}
	return PrivateKey(b), nil
}

func decodeKey(s string, size int) ([]byte, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid hex: %w", err)
	}
	if len(b) != size {
		return nil, fmt.Errorf("want %d bytes, got %d", size, len(b))
	}
	return b, nil
}

// Sign returns the hex ed25519 signature of data.
func Sign(priv PrivateKey, data []byte) string {
	return hex.EncodeToString(ed25519.Sign(ed25519.PrivateKey(priv), data))
}

// Verify checks a hex signature over data.
func Verify(pub PublicKey, data []byte, sigHex string) error {
	sig, err := hex.DecodeString(sigHex)
	if err != nil {
		return fmt.Errorf("invalid signature hex: %w", err)
	}
	if !ed25519.Verify(ed25519.PublicKey(pub), data, sig) {
		return errors.New("signature verification failed")
	}
	return nil
}
