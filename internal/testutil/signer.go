package testutil

import (
	"crypto/ed25519"
	"encoding/json"
	"fmt"
	"time"

	"github.com/roach88/dwitter/internal/identity"
	"github.com/roach88/dwitter/internal/message"
	"github.com/roach88/dwitter/internal/page"
)

// Signer is a deterministic identity for fixtures. The same seed always
// yields the same key, meta and ID.
type Signer struct {
	ID   identity.ID
	Meta *identity.Meta
	Key  ed25519.PrivateKey
}

// NewSigner derives a signer from seed, which must be a valid ID name.
func NewSigner(seed string) (*Signer, error) {
	key := identity.DeriveKey(seed)
	meta, id, err := identity.GenerateFromKey(seed, key)
	if err != nil {
		return nil, fmt.Errorf("signer %q: %w", seed, err)
	}
	return &Signer{ID: id, Meta: meta, Key: key}, nil
}

// Message returns a message carrying text signed by s. A zero at leaves
// the timestamp out.
func (s *Signer) Message(text string, at time.Time) (*message.Message, error) {
	return identity.NewSignedMessage(s.Key, s.ID, text, at)
}

// MetaJSON returns the signer's meta as a wire document.
func (s *Signer) MetaJSON() ([]byte, error) {
	return json.Marshal(s.Meta)
}

// MetaPath returns the resource path announcing the signer's meta.
func (s *Signer) MetaPath() string {
	return "/meta/" + s.ID.String() + ".js"
}

// ChannelJSON wraps msgs in a channel event. A nil entry becomes an item
// with a null msg.
func ChannelJSON(title string, msgs ...*message.Message) ([]byte, error) {
	return page.EncodeChannel(title, msgs...)
}
