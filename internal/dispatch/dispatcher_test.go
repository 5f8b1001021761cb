package dispatch

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDispatcher() *Dispatcher {
	return New(
		WithIDGenerator(NewSequenceGenerator("req")),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
}

func TestDispatch_MatchesInRegistrationOrder(t *testing.T) {
	d := newTestDispatcher()
	var calls []string

	require.NoError(t, d.Handle("receive", `^/channel/[^/]+\.js$`, func(_ context.Context, req *Request) error {
		calls = append(calls, "receive:"+req.ID)
		return nil
	}))
	require.NoError(t, d.Handle("show", `^/channel/[^/]+\.js$`, func(_ context.Context, req *Request) error {
		calls = append(calls, "show:"+req.ID)
		return nil
	}))
	require.NoError(t, d.Handle("meta", `^/meta/[^.]+\.js$`, func(_ context.Context, req *Request) error {
		calls = append(calls, "meta:"+req.ID)
		return nil
	}))

	assert.Equal(t, 2, d.Dispatch(context.Background(), "/channel/moky.js", nil))
	assert.Equal(t, 1, d.Dispatch(context.Background(), "/meta/moky@abc.js", nil))

	assert.Equal(t, []string{"receive:req-1", "show:req-1", "meta:req-2"}, calls)
}

func TestDispatch_NoMatch(t *testing.T) {
	d := newTestDispatcher()
	require.NoError(t, d.Handle("channel", `^/channel/[^/]+\.js$`, func(context.Context, *Request) error {
		t.Fatal("should not run")
		return nil
	}))

	assert.Equal(t, 0, d.Dispatch(context.Background(), "/channel/a/b.js", nil))
	assert.Equal(t, 0, d.Dispatch(context.Background(), "/channel/.json", nil))
}

func TestDispatch_HandlerErrorDoesNotStopLaterRoutes(t *testing.T) {
	d := newTestDispatcher()
	ran := false

	require.NoError(t, d.Handle("fails", `^/x$`, func(context.Context, *Request) error {
		return errors.New("boom")
	}))
	require.NoError(t, d.Handle("runs", `^/x$`, func(context.Context, *Request) error {
		ran = true
		return nil
	}))

	assert.Equal(t, 2, d.Dispatch(context.Background(), "/x", nil))
	assert.True(t, ran)
}

func TestDispatch_PassesBody(t *testing.T) {
	d := newTestDispatcher()
	var got []byte
	require.NoError(t, d.Handle("body", `.*`, func(_ context.Context, req *Request) error {
		got = req.Body
		return nil
	}))

	d.Dispatch(context.Background(), "/anything", []byte(`{"a":1}`))
	assert.Equal(t, `{"a":1}`, string(got))
}

func TestHandle_Errors(t *testing.T) {
	d := newTestDispatcher()
	assert.Error(t, d.Handle("bad", `(`, func(context.Context, *Request) error { return nil }))
	assert.Error(t, d.Handle("nil", `.*`, nil))
	assert.Empty(t, d.Routes())
}

func TestUUIDv7Generator(t *testing.T) {
	token := UUIDv7Generator{}.Generate()

	parsed, err := uuid.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), parsed.Version())
	assert.Len(t, token, 36)
}

func TestDefaultGeneratorIsUUIDv7(t *testing.T) {
	var id string
	d := New(WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	require.NoError(t, d.Handle("capture", `.*`, func(_ context.Context, req *Request) error {
		id = req.ID
		return nil
	}))

	d.Dispatch(context.Background(), "/", nil)
	parsed, err := uuid.Parse(id)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), parsed.Version())
}

func TestSequenceGenerator(t *testing.T) {
	g := NewSequenceGenerator("r")
	assert.Equal(t, "r-1", g.Generate())
	assert.Equal(t, "r-2", g.Generate())
}
