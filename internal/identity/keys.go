package identity

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"strings"
)

// Generate creates a fresh key pair and the meta and ID for seed.
func Generate(seed string) (*Meta, ed25519.PrivateKey, ID, error) {
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, nil, ID{}, fmt.Errorf("generate key: %w", err)
	}
	meta, id, err := GenerateFromKey(seed, priv)
	if err != nil {
		return nil, nil, ID{}, err
	}
	return meta, priv, id, nil
}

// GenerateFromKey builds the meta and ID for seed around an existing key.
// Ed25519 signatures are deterministic, so the result depends only on the
// inputs.
func GenerateFromKey(seed string, priv ed25519.PrivateKey) (*Meta, ID, error) {
	if seed != "" && !namePattern.MatchString(seed) {
		return nil, ID{}, fmt.Errorf("%w: bad seed %q", ErrInvalidID, seed)
	}
	pub := priv.Public().(ed25519.PublicKey)
	meta := &Meta{
		Version: MetaVersion,
		Key: PublicKey{
			Algorithm: AlgorithmEd25519,
			Data:      base64.StdEncoding.EncodeToString(pub),
		},
	}
	if seed != "" {
		meta.Seed = seed
		meta.Fingerprint = Sign(priv, []byte(seed))
	}
	addr, err := meta.Address()
	if err != nil {
		return nil, ID{}, err
	}
	return meta, ID{Name: seed, Address: addr}, nil
}

// DeriveKey returns a private key derived from a passphrase. Only for
// fixtures and scenarios; the derivation has no stretching.
func DeriveKey(passphrase string) ed25519.PrivateKey {
	sum := sha256.Sum256([]byte(passphrase))
	return ed25519.NewKeyFromSeed(sum[:])
}

// Sign returns the base64 ed25519 signature of data.
func Sign(priv ed25519.PrivateKey, data []byte) string {
	return base64.StdEncoding.EncodeToString(ed25519.Sign(priv, data))
}

// EncodePrivateKey serializes a private key as base64 of its 32-byte seed.
func EncodePrivateKey(priv ed25519.PrivateKey) string {
	return base64.StdEncoding.EncodeToString(priv.Seed())
}

// DecodePrivateKey parses the output of EncodePrivateKey.
func DecodePrivateKey(s string) (ed25519.PrivateKey, error) {
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Errorf("decode private key: %w", err)
	}
	if len(raw) != ed25519.SeedSize {
		return nil, fmt.Errorf("decode private key: size %d", len(raw))
	}
	return ed25519.NewKeyFromSeed(raw), nil
}
