package render

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/roach88/dwitter/internal/identity"
	"github.com/roach88/dwitter/internal/message"
)

// fakeVerifier accepts any signature not listed in bad.
type fakeVerifier struct {
	ready bool
	metas map[string]*identity.Meta
	bad   map[string]bool
}

func newFakeVerifier(ready bool, senders ...string) *fakeVerifier {
	v := &fakeVerifier{
		ready: ready,
		metas: make(map[string]*identity.Meta),
		bad:   make(map[string]bool),
	}
	for _, s := range senders {
		v.metas[s] = &identity.Meta{Version: 1}
	}
	return v
}

func (v *fakeVerifier) Ready() bool { return v.ready }

func (v *fakeVerifier) Identifier(sender string) (identity.ID, error) {
	return identity.ParseID(sender)
}

func (v *fakeVerifier) Meta(_ context.Context, id identity.ID) (*identity.Meta, bool) {
	m, ok := v.metas[id.String()]
	return m, ok
}

func (v *fakeVerifier) VerifyMessage(msg *message.Message, _ *identity.Meta) error {
	if v.bad[msg.Signature] {
		return errors.New("bad signature")
	}
	return nil
}

// recordingQueue records suspended messages.
type recordingQueue struct {
	msgs []*message.Message
}

func (q *recordingQueue) Suspend(msg *message.Message) bool {
	q.msgs = append(q.msgs, msg)
	return true
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

const testTemplate = `<li data-sender="${sender}"><a href="${link}">${title}</a></li>`

func textMsg(sender, signature, text string) *message.Message {
	data, err := message.EncodeContent(message.Content{Text: text})
	if err != nil {
		panic(err)
	}
	return &message.Message{Sender: sender, Signature: signature, Data: data}
}
