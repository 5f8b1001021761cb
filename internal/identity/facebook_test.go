package identity

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mapStore struct {
	metas   map[string]*Meta
	loads   int
	loadErr error
}

func newMapStore() *mapStore {
	return &mapStore{metas: make(map[string]*Meta)}
}

func (s *mapStore) SaveMeta(_ context.Context, id ID, meta *Meta) error {
	s.metas[id.String()] = meta
	return nil
}

func (s *mapStore) LoadMeta(_ context.Context, id ID) (*Meta, bool, error) {
	s.loads++
	if s.loadErr != nil {
		return nil, false, s.loadErr
	}
	m, ok := s.metas[id.String()]
	return m, ok, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestFacebook_Readiness(t *testing.T) {
	fb := NewFacebook(WithLogger(discardLogger()))
	assert.False(t, fb.Ready())

	fb.SetReady(true)
	assert.True(t, fb.Ready())

	fb.Reset()
	assert.False(t, fb.Ready())

	assert.True(t, NewFacebook(WithReady()).Ready())
}

func TestFacebook_SaveAndLoadMeta(t *testing.T) {
	ctx := context.Background()
	st := newMapStore()
	fb := NewFacebook(WithMetaStore(st), WithLogger(discardLogger()))

	meta, id, err := GenerateFromKey("alice", DeriveKey("alice"))
	require.NoError(t, err)

	_, ok := fb.Meta(ctx, id)
	assert.False(t, ok)

	require.NoError(t, fb.SaveMeta(ctx, id, meta))
	assert.Contains(t, st.metas, id.String())

	got, ok := fb.Meta(ctx, id)
	require.True(t, ok)
	assert.Equal(t, meta, got)
}

func TestFacebook_MetaReadThroughCaches(t *testing.T) {
	ctx := context.Background()
	st := newMapStore()
	meta, id, err := GenerateFromKey("bob", DeriveKey("bob"))
	require.NoError(t, err)
	st.metas[id.String()] = meta

	fb := NewFacebook(WithMetaStore(st), WithLogger(discardLogger()))

	got, ok := fb.Meta(ctx, id)
	require.True(t, ok)
	assert.Equal(t, meta, got)

	_, ok = fb.Meta(ctx, id)
	require.True(t, ok)
	assert.Equal(t, 1, st.loads, "second lookup served from cache")
}

func TestFacebook_MetaStoreErrorIsNotFound(t *testing.T) {
	st := newMapStore()
	st.loadErr = errors.New("disk on fire")
	fb := NewFacebook(WithMetaStore(st), WithLogger(discardLogger()))

	_, ok := fb.Meta(context.Background(), ID{Address: "abc"})
	assert.False(t, ok)
}

func TestFacebook_SaveMetaRejectsMismatch(t *testing.T) {
	ctx := context.Background()
	fb := NewFacebook(WithLogger(discardLogger()))

	meta, _, err := GenerateFromKey("alice", DeriveKey("alice"))
	require.NoError(t, err)
	_, otherID, err := GenerateFromKey("bob", DeriveKey("bob"))
	require.NoError(t, err)

	err = fb.SaveMeta(ctx, otherID, meta)
	require.ErrorIs(t, err, ErrInvalidMeta)

	err = fb.SaveMeta(ctx, otherID, nil)
	require.ErrorIs(t, err, ErrInvalidMeta)

	_, ok := fb.Meta(ctx, otherID)
	assert.False(t, ok)
}

func TestFacebook_VerifyMessage(t *testing.T) {
	priv := DeriveKey("carol")
	meta, id, err := GenerateFromKey("carol", priv)
	require.NoError(t, err)
	fb := NewFacebook(WithLogger(discardLogger()))

	msg, err := NewSignedMessage(priv, id, "hello", time.Unix(1700000000, 0))
	require.NoError(t, err)
	assert.Equal(t, id.String(), msg.Sender)
	assert.Equal(t, int64(1700000000), msg.Time)
	require.NoError(t, fb.VerifyMessage(msg, meta))

	tampered := *msg
	tampered.Data = `{"text":"goodbye"}`
	assert.ErrorIs(t, fb.VerifyMessage(&tampered, meta), ErrSignatureMismatch)

	garbled := *msg
	garbled.Signature = "%%%"
	assert.ErrorIs(t, fb.VerifyMessage(&garbled, meta), ErrSignatureMismatch)

	otherMeta, _, err := GenerateFromKey("dave", DeriveKey("dave"))
	require.NoError(t, err)
	assert.ErrorIs(t, fb.VerifyMessage(msg, otherMeta), ErrSignatureMismatch)
}

func TestFacebook_Identifier(t *testing.T) {
	fb := NewFacebook(WithLogger(discardLogger()))
	id, err := fb.Identifier("x@y1")
	require.NoError(t, err)
	assert.Equal(t, "x@y1", id.String())

	_, err = fb.Identifier("not an id")
	assert.ErrorIs(t, err, ErrInvalidID)
}
