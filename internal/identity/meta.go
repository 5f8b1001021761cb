package identity

import (
	"crypto/ed25519"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
)

// AlgorithmEd25519 is the only supported key algorithm.
const AlgorithmEd25519 = "ED25519"

// MetaVersion is the version written by Generate.
const MetaVersion = 1

// addressBytes is how many digest bytes make up an address.
const addressBytes = 10

// ErrInvalidMeta is returned for metas that fail validation.
var ErrInvalidMeta = errors.New("invalid meta")

// PublicKey is a serialized public key.
type PublicKey struct {
	Algorithm string `json:"algorithm"`
	Data      string `json:"data"` // base64
}

// Meta is a sender's cryptographic metadata.
type Meta struct {
	Version     int       `json:"version"`
	Key         PublicKey `json:"key"`
	Seed        string    `json:"seed,omitempty"`
	Fingerprint string    `json:"fingerprint,omitempty"` // base64 signature over Seed
}

// ParseMeta decodes and validates a JSON meta.
func ParseMeta(data []byte) (*Meta, error) {
	var m Meta
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMeta, err)
	}
	if err := m.Valid(); err != nil {
		return nil, err
	}
	return &m, nil
}

// PublicKey decodes the ed25519 public key.
func (m *Meta) PublicKey() (ed25519.PublicKey, error) {
	if m.Key.Algorithm != AlgorithmEd25519 {
		return nil, fmt.Errorf("%w: unsupported algorithm %q", ErrInvalidMeta, m.Key.Algorithm)
	}
	raw, err := base64.StdEncoding.DecodeString(m.Key.Data)
	if err != nil {
		return nil, fmt.Errorf("%w: key data: %v", ErrInvalidMeta, err)
	}
	if len(raw) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("%w: key size %d", ErrInvalidMeta, len(raw))
	}
	return ed25519.PublicKey(raw), nil
}

// Valid checks the key and, when a seed is present, that the fingerprint is
// the key's signature over the seed.
func (m *Meta) Valid() error {
	pub, err := m.PublicKey()
	if err != nil {
		return err
	}
	if m.Seed == "" {
		return nil
	}
	fp, err := base64.StdEncoding.DecodeString(m.Fingerprint)
	if err != nil {
		return fmt.Errorf("%w: fingerprint: %v", ErrInvalidMeta, err)
	}
	if !ed25519.Verify(pub, []byte(m.Seed), fp) {
		return fmt.Errorf("%w: fingerprint does not match seed", ErrInvalidMeta)
	}
	return nil
}

// Address derives the sender address: hex of the leading bytes of
// SHA-256 over the fingerprint, or over the public key for seedless metas.
func (m *Meta) Address() (string, error) {
	var material []byte
	if m.Seed != "" {
		fp, err := base64.StdEncoding.DecodeString(m.Fingerprint)
		if err != nil {
			return "", fmt.Errorf("%w: fingerprint: %v", ErrInvalidMeta, err)
		}
		material = fp
	} else {
		pub, err := m.PublicKey()
		if err != nil {
			return "", err
		}
		material = pub
	}
	sum := sha256.Sum256(material)
	return hex.EncodeToString(sum[:addressBytes]), nil
}

// Matches reports whether the meta describes id.
func (m *Meta) Matches(id ID) bool {
	addr, err := m.Address()
	if err != nil || addr != id.Address {
		return false
	}
	if id.Name != "" && m.Seed != "" && id.Name != m.Seed {
		return false
	}
	return true
}

// Verify checks a raw signature over data.
func (m *Meta) Verify(data, signature []byte) bool {
	pub, err := m.PublicKey()
	if err != nil {
		return false
	}
	return ed25519.Verify(pub, data, signature)
}
