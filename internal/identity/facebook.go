package identity

import (
	"context"
	"crypto/ed25519"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/roach88/dwitter/internal/message"
)

// ErrSignatureMismatch is returned when a message signature does not verify.
var ErrSignatureMismatch = errors.New("signature mismatch")

// MetaStore persists metas beyond the page session.
type MetaStore interface {
	SaveMeta(ctx context.Context, id ID, meta *Meta) error
	LoadMeta(ctx context.Context, id ID) (*Meta, bool, error)
}

// Facebook is the identity framework: readiness, ID resolution, the meta
// registry and signature verification.
type Facebook struct {
	mu    sync.RWMutex
	ready bool
	metas map[string]*Meta

	store  MetaStore
	logger *slog.Logger
}

// Option configures a Facebook.
type Option func(*Facebook)

// WithMetaStore backs the registry with a persistent store.
func WithMetaStore(s MetaStore) Option {
	return func(f *Facebook) { f.store = s }
}

// WithLogger sets the framework logger.
func WithLogger(l *slog.Logger) Option {
	return func(f *Facebook) { f.logger = l }
}

// WithReady starts the framework in the loaded state.
func WithReady() Option {
	return func(f *Facebook) { f.ready = true }
}

// NewFacebook creates a framework that is not yet loaded.
func NewFacebook(opts ...Option) *Facebook {
	f := &Facebook{metas: make(map[string]*Meta)}
	for _, opt := range opts {
		opt(f)
	}
	if f.logger == nil {
		f.logger = slog.Default()
	}
	return f
}

// Ready reports whether the framework has finished loading.
func (f *Facebook) Ready() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.ready
}

// SetReady flips the loaded state.
func (f *Facebook) SetReady(ready bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ready = ready
}

// Identifier resolves a sender string.
func (f *Facebook) Identifier(sender string) (ID, error) {
	return ParseID(sender)
}

// Meta returns the meta for id from the registry, falling back to the store.
// Store failures are logged and reported as not found.
func (f *Facebook) Meta(ctx context.Context, id ID) (*Meta, bool) {
	key := id.String()

	f.mu.RLock()
	meta, ok := f.metas[key]
	f.mu.RUnlock()
	if ok {
		return meta, true
	}
	if f.store == nil {
		return nil, false
	}

	meta, ok, err := f.store.LoadMeta(ctx, id)
	if err != nil {
		f.logger.Error("meta lookup failed", "id", key, "error", err)
		return nil, false
	}
	if !ok {
		return nil, false
	}

	f.mu.Lock()
	f.metas[key] = meta
	f.mu.Unlock()
	return meta, true
}

// SaveMeta validates meta against id and registers it.
func (f *Facebook) SaveMeta(ctx context.Context, id ID, meta *Meta) error {
	if meta == nil {
		return fmt.Errorf("%w: nil", ErrInvalidMeta)
	}
	if err := meta.Valid(); err != nil {
		return err
	}
	if !meta.Matches(id) {
		return fmt.Errorf("%w: meta does not match %s", ErrInvalidMeta, id)
	}
	if f.store != nil {
		if err := f.store.SaveMeta(ctx, id, meta); err != nil {
			return fmt.Errorf("save meta %s: %w", id, err)
		}
	}

	f.mu.Lock()
	f.metas[id.String()] = meta
	f.mu.Unlock()

	f.logger.Debug("meta registered", "id", id.String())
	return nil
}

// VerifyMessage checks msg.Signature (base64) over the bytes of msg.Data.
func (f *Facebook) VerifyMessage(msg *message.Message, meta *Meta) error {
	sig, err := base64.StdEncoding.DecodeString(msg.Signature)
	if err != nil {
		return fmt.Errorf("%w: signature encoding: %v", ErrSignatureMismatch, err)
	}
	if !meta.Verify([]byte(msg.Data), sig) {
		return ErrSignatureMismatch
	}
	return nil
}

// Reset forgets cached metas and returns to the unloaded state. Stored metas
// are kept.
func (f *Facebook) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ready = false
	f.metas = make(map[string]*Meta)
}

// NewSignedMessage builds a message from sender carrying text, signed by priv.
func NewSignedMessage(priv ed25519.PrivateKey, sender ID, text string, at time.Time) (*message.Message, error) {
	data, err := message.EncodeContent(message.Content{Text: text})
	if err != nil {
		return nil, err
	}
	msg := &message.Message{
		Sender:    sender.String(),
		Data:      data,
		Signature: Sign(priv, []byte(data)),
	}
	if !at.IsZero() {
		msg.Time = at.Unix()
	}
	return msg, nil
}
