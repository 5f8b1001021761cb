package render

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/roach88/dwitter/internal/identity"
	"github.com/roach88/dwitter/internal/message"
)

// Verifier is the identity framework as seen by the pipeline.
type Verifier interface {
	Ready() bool
	Identifier(sender string) (identity.ID, error)
	Meta(ctx context.Context, id identity.ID) (*identity.Meta, bool)
	VerifyMessage(msg *message.Message, meta *identity.Meta) error
}

// Suspender takes back messages that cannot be verified yet.
type Suspender interface {
	Suspend(msg *message.Message) bool
}

// Refresher updates relative timestamps in a container after rendering.
type Refresher interface {
	RefreshTimestamps(container *Element)
}

// RefreshFunc adapts a function to Refresher.
type RefreshFunc func(container *Element)

// RefreshTimestamps calls f(container).
func (f RefreshFunc) RefreshTimestamps(container *Element) { f(container) }

type nopRefresher struct{}

func (nopRefresher) RefreshTimestamps(*Element) {}

// Stats counts message outcomes since the pipeline was created.
type Stats struct {
	Rendered  int64 `json:"rendered"`
	Suspended int64 `json:"suspended"`
	Dropped   int64 `json:"dropped"`
}

// Pipeline verifies and renders messages.
type Pipeline struct {
	verifier  Verifier
	queue     Suspender
	doc       *Document
	refresher Refresher
	onRender  func(*message.Message)
	logger    *slog.Logger

	linkPrefix  string
	containerID string
	templateID  string

	rendered  atomic.Int64
	suspended atomic.Int64
	dropped   atomic.Int64
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithRefresher sets the post-render timestamp refresher.
func WithRefresher(r Refresher) Option {
	return func(p *Pipeline) { p.refresher = r }
}

// WithLinkPrefix sets the prefix for derived message links.
func WithLinkPrefix(prefix string) Option {
	return func(p *Pipeline) { p.linkPrefix = prefix }
}

// WithContainerID sets the default container element ID.
func WithContainerID(id string) Option {
	return func(p *Pipeline) { p.containerID = id }
}

// WithTemplateID sets the default template element ID.
func WithTemplateID(id string) Option {
	return func(p *Pipeline) { p.templateID = id }
}

// WithRenderObserver calls fn with each message after its fragment is
// appended.
func WithRenderObserver(fn func(*message.Message)) Option {
	return func(p *Pipeline) { p.onRender = fn }
}

// WithLogger sets the pipeline logger.
func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) { p.logger = l }
}

// New creates a pipeline verifying against v, re-suspending into q and
// rendering into doc.
func New(v Verifier, q Suspender, doc *Document, opts ...Option) *Pipeline {
	p := &Pipeline{
		verifier:    v,
		queue:       q,
		doc:         doc,
		refresher:   nopRefresher{},
		linkPrefix:  message.DefaultLinkPrefix,
		containerID: DefaultContainerID,
		templateID:  DefaultTemplateID,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	return p
}

type renderTarget struct {
	container *Element
	template  *Template
}

// RenderOption overrides the default container or template for one call.
type RenderOption func(*renderTarget)

// WithContainer renders into el instead of the default container.
func WithContainer(el *Element) RenderOption {
	return func(t *renderTarget) { t.container = el }
}

// WithTemplate renders with source instead of the default template element.
func WithTemplate(source string) RenderOption {
	return func(t *renderTarget) { t.template = ParseTemplate(source) }
}

// Render verifies and renders msgs into the container and returns how many
// were rendered. Messages that fail verification are re-suspended or dropped;
// nothing is returned to the caller as an error.
func (p *Pipeline) Render(ctx context.Context, msgs []*message.Message, opts ...RenderOption) int {
	if len(msgs) == 0 {
		return 0
	}

	var target renderTarget
	for _, opt := range opts {
		opt(&target)
	}
	if target.container == nil {
		target.container = p.doc.ElementByID(p.containerID)
		if target.container == nil {
			p.logger.Error("container element not found", "id", p.containerID, "pending", len(msgs))
			p.suspendAll(msgs)
			return 0
		}
	}
	if target.template == nil {
		el := p.doc.ElementByID(p.templateID)
		if el == nil {
			p.logger.Error("template element not found", "id", p.templateID, "pending", len(msgs))
			p.suspendAll(msgs)
			return 0
		}
		target.template = ParseTemplate(el.HTML())
	}

	n := 0
	for _, msg := range msgs {
		fragment, ok := p.Prepare(ctx, msg, target.template)
		if !ok {
			continue
		}
		target.container.Append(fragment)
		n++
		if p.onRender != nil {
			p.onRender(msg)
		}
	}
	p.rendered.Add(int64(n))

	p.refresher.RefreshTimestamps(target.container)
	p.logger.Debug("messages rendered", "rendered", n, "total", len(msgs), "container", target.container.ID)
	return n
}

// Prepare verifies msg, fills in a missing title and link, and returns the
// rendered fragment. The bool is false when msg was suspended or dropped.
func (p *Pipeline) Prepare(ctx context.Context, msg *message.Message, tmpl *Template) (string, bool) {
	if _, err := p.Verify(ctx, msg); err != nil {
		return "", false
	}

	if msg.Title == "" {
		content, err := message.DecodeContent(msg.Data)
		if err != nil {
			p.logger.Warn("message content undecodable", "sender", msg.Sender, "error", err)
		} else {
			msg.Title = content.Text
		}
	}
	if msg.Link == "" {
		msg.Link = message.Link(p.linkPrefix, msg.Signature)
	}

	return tmpl.Execute(msg.Fields()), true
}

// Verify checks that msg is genuine.
//
// When the framework is not ready or the sender's meta is unknown, msg is
// suspended again and a retryable *VerifyError is returned. An unresolvable
// sender or a bad signature drops msg.
func (p *Pipeline) Verify(ctx context.Context, msg *message.Message) (*message.Message, error) {
	if msg == nil {
		p.dropped.Add(1)
		p.logger.Error("message error: nil message")
		return nil, newVerifyError(ErrCodeInvalidSender, "", "nil message", nil)
	}

	if !p.verifier.Ready() {
		p.logger.Info("framework not loaded yet, add message to waiting list", "sender", msg.Sender)
		p.suspend(msg)
		return nil, newVerifyError(ErrCodeFrameworkNotReady, msg.Sender, "framework not loaded", nil)
	}

	sender, err := p.verifier.Identifier(msg.Sender)
	if err != nil {
		p.dropped.Add(1)
		p.logger.Error("message error: sender unresolvable", "sender", msg.Sender, "error", err)
		return nil, newVerifyError(ErrCodeInvalidSender, msg.Sender, "sender unresolvable", err)
	}

	meta, ok := p.verifier.Meta(ctx, sender)
	if !ok {
		p.logger.Info("meta not found, waiting meta", "sender", sender.String())
		p.suspend(msg)
		return nil, newVerifyError(ErrCodeMetaNotFound, msg.Sender, "meta not found", nil)
	}

	if err := p.verifier.VerifyMessage(msg, meta); err != nil {
		p.dropped.Add(1)
		p.logger.Error("message error: signature rejected", "sender", sender.String(), "error", err)
		return nil, newVerifyError(ErrCodeSignatureMismatch, msg.Sender, "signature rejected", err)
	}

	return msg, nil
}

func (p *Pipeline) suspend(msg *message.Message) {
	if p.queue.Suspend(msg) {
		p.suspended.Add(1)
	}
}

// suspendAll hands msgs back untouched when there is nowhere to render them.
func (p *Pipeline) suspendAll(msgs []*message.Message) {
	for _, msg := range msgs {
		if msg != nil {
			p.suspend(msg)
		}
	}
}

// Stats returns the outcome counters.
func (p *Pipeline) Stats() Stats {
	return Stats{
		Rendered:  p.rendered.Load(),
		Suspended: p.suspended.Load(),
		Dropped:   p.dropped.Load(),
	}
}
