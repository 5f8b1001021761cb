package page

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/dwitter/internal/dispatch"
	"github.com/roach88/dwitter/internal/identity"
	"github.com/roach88/dwitter/internal/message"
	"github.com/roach88/dwitter/internal/notify"
)

// ErrMalformedChannel is returned for channel payloads without a channel.
var ErrMalformedChannel = errors.New("malformed channel payload")

// ErrEmptyIdentifier is returned for meta paths with nothing between
// "/meta/" and ".js".
var ErrEmptyIdentifier = errors.New("empty identifier in meta path")

const (
	metaPrefix = "/meta/"
	metaSuffix = ".js"
)

type channelPayload struct {
	Channel json.RawMessage `json:"channel"`
}

type channelBody struct {
	Items []json.RawMessage `json:"item"`
}

type channelItem struct {
	Msg *message.Message `json:"msg"`
}

type outboundChannel struct {
	Channel struct {
		Title string        `json:"title,omitempty"`
		Items []channelItem `json:"item"`
	} `json:"channel"`
}

// EncodeChannel builds a channel event carrying msgs. A nil entry becomes an
// item whose msg is null.
func EncodeChannel(title string, msgs ...*message.Message) ([]byte, error) {
	var out outboundChannel
	out.Channel.Title = title
	out.Channel.Items = make([]channelItem, len(msgs))
	for i, m := range msgs {
		out.Channel.Items[i] = channelItem{Msg: m}
	}
	return json.Marshal(out)
}

// receiveChannel queues every message of a channel event and posts
// MessageReceived. Items that fail to decode are logged and skipped; a nil
// msg goes through Suspend's empty-message alert.
func (p *Page) receiveChannel(_ context.Context, req *dispatch.Request) error {
	var payload channelPayload
	if err := json.Unmarshal(req.Body, &payload); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedChannel, err)
	}
	if len(payload.Channel) == 0 || bytes.Equal(payload.Channel, []byte("null")) {
		return fmt.Errorf("%w: no channel", ErrMalformedChannel)
	}

	var body channelBody
	if err := json.Unmarshal(payload.Channel, &body); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedChannel, err)
	}
	if len(body.Items) == 0 {
		p.logger.Info("message empty", "request_id", req.ID, "path", req.Path)
		return nil
	}

	queued := 0
	for i, raw := range body.Items {
		var item channelItem
		if err := json.Unmarshal(raw, &item); err != nil {
			p.logger.Error("channel item undecodable", "request_id", req.ID, "index", i, "error", err)
			continue
		}
		if p.queue.Suspend(item.Msg) {
			queued++
		}
	}
	p.logger.Info("received messages", "request_id", req.ID, "items", len(body.Items), "queued", queued)

	p.center.Post(notify.MessageReceived, p, map[string]any{
		"channel": payload.Channel,
		"count":   queued,
	})
	return nil
}

// showSuspended renders everything in the queue.
func (p *Page) showSuspended(ctx context.Context, _ *dispatch.Request) error {
	p.show(ctx, "")
	return nil
}

// receiveMeta registers the meta carried by the body, if any, then renders
// the messages waiting for that sender. A meta that fails to register is
// logged; the drain still runs so messages whose meta is already known
// are not held back.
func (p *Page) receiveMeta(ctx context.Context, req *dispatch.Request) error {
	identifier := MetaIdentifier(req.Path)
	if identifier == "" {
		return fmt.Errorf("%w: %s", ErrEmptyIdentifier, req.Path)
	}

	if len(bytes.TrimSpace(req.Body)) > 0 {
		if err := p.registerMeta(ctx, identifier, req.Body); err != nil {
			p.logger.Error("meta rejected", "request_id", req.ID, "id", identifier, "error", err)
		}
	}

	p.show(ctx, identifier)
	return nil
}

func (p *Page) registerMeta(ctx context.Context, identifier string, body []byte) error {
	id, err := p.framework.Identifier(identifier)
	if err != nil {
		return err
	}

	var wrapped struct {
		Meta json.RawMessage `json:"meta"`
	}
	raw := body
	if err := json.Unmarshal(body, &wrapped); err == nil && len(wrapped.Meta) > 0 {
		raw = wrapped.Meta
	}

	meta, err := identity.ParseMeta(raw)
	if err != nil {
		return err
	}
	return p.framework.SaveMeta(ctx, id, meta)
}

// MetaIdentifier extracts the sender identifier from a meta path: the text
// between "/meta/" and the first ".js". Returns "" when there is none.
func MetaIdentifier(path string) string {
	if !strings.HasPrefix(path, metaPrefix) {
		return ""
	}
	rest := path[len(metaPrefix):]
	end := strings.Index(rest, metaSuffix)
	if end < 0 {
		return ""
	}
	return rest[:end]
}
