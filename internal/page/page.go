package page

import (
	"context"
	"log/slog"

	"github.com/roach88/dwitter/internal/dispatch"
	"github.com/roach88/dwitter/internal/identity"
	"github.com/roach88/dwitter/internal/message"
	"github.com/roach88/dwitter/internal/notify"
	"github.com/roach88/dwitter/internal/render"
	"github.com/roach88/dwitter/internal/suspend"
)

// Route patterns.
const (
	ChannelPattern = `^/channel/[^/]+\.js$`
	MetaPattern    = `^/meta/[^.]+\.js$`
)

// Options configures a Page.
type Options struct {
	// Template is the default message template. Required unless Document
	// already has a template element.
	Template string

	// Document overrides the default page document.
	Document *render.Document

	ContainerID string
	TemplateID  string
	LinkPrefix  string

	// MetaStore persists metas; nil keeps them in memory only.
	MetaStore identity.MetaStore

	Alerter   suspend.Alerter
	Refresher render.Refresher

	// OnRender is called with every message after it is rendered.
	OnRender func(*message.Message)

	IDGenerator dispatch.IDGenerator
	Logger      *slog.Logger
}

// Page owns one page session's components.
type Page struct {
	queue      *suspend.Queue
	framework  *identity.Facebook
	pipeline   *render.Pipeline
	center     *notify.Center
	dispatcher *dispatch.Dispatcher
	document   *render.Document
	logger     *slog.Logger

	containerID string
}

// New builds a page and registers its routes.
func New(opts Options) (*Page, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	queueOpts := []suspend.Option{suspend.WithLogger(logger)}
	if opts.Alerter != nil {
		queueOpts = append(queueOpts, suspend.WithAlerter(opts.Alerter))
	}
	queue := suspend.New(queueOpts...)

	fbOpts := []identity.Option{identity.WithLogger(logger)}
	if opts.MetaStore != nil {
		fbOpts = append(fbOpts, identity.WithMetaStore(opts.MetaStore))
	}
	framework := identity.NewFacebook(fbOpts...)

	containerID := opts.ContainerID
	if containerID == "" {
		containerID = render.DefaultContainerID
	}
	templateID := opts.TemplateID
	if templateID == "" {
		templateID = render.DefaultTemplateID
	}
	doc := opts.Document
	if doc == nil {
		doc = render.NewDocument(
			render.NewElement(containerID, ""),
			render.NewElement(templateID, opts.Template),
		)
	}

	pipeOpts := []render.Option{
		render.WithLogger(logger),
		render.WithContainerID(containerID),
		render.WithTemplateID(templateID),
	}
	if opts.LinkPrefix != "" {
		pipeOpts = append(pipeOpts, render.WithLinkPrefix(opts.LinkPrefix))
	}
	if opts.Refresher != nil {
		pipeOpts = append(pipeOpts, render.WithRefresher(opts.Refresher))
	}
	if opts.OnRender != nil {
		pipeOpts = append(pipeOpts, render.WithRenderObserver(opts.OnRender))
	}
	pipeline := render.New(framework, queue, doc, pipeOpts...)

	dispOpts := []dispatch.Option{dispatch.WithLogger(logger)}
	if opts.IDGenerator != nil {
		dispOpts = append(dispOpts, dispatch.WithIDGenerator(opts.IDGenerator))
	}

	p := &Page{
		queue:      queue,
		framework:  framework,
		pipeline:   pipeline,
		center:     notify.NewCenter(logger),
		dispatcher: dispatch.New(dispOpts...),
		document:   doc,
		logger:     logger,

		containerID: containerID,
	}
	if err := p.registerRoutes(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Page) registerRoutes() error {
	routes := []struct {
		name    string
		pattern string
		handler dispatch.Handler
	}{
		{"channel.receive", ChannelPattern, p.receiveChannel},
		{"channel.show", ChannelPattern, p.showSuspended},
		{"meta.show", MetaPattern, p.receiveMeta},
	}
	for _, r := range routes {
		if err := p.dispatcher.Handle(r.name, r.pattern, r.handler); err != nil {
			return err
		}
	}
	return nil
}

// Deliver dispatches an inbound resource event and returns the number of
// routes that handled it.
func (p *Page) Deliver(ctx context.Context, path string, body []byte) int {
	return p.dispatcher.Dispatch(ctx, path, body)
}

// FrameworkLoaded marks the identity framework ready and renders every
// suspended message. Returns the number rendered.
func (p *Page) FrameworkLoaded(ctx context.Context) int {
	p.framework.SetReady(true)
	p.logger.Info("framework loaded", "suspended", p.queue.Len())
	return p.show(ctx, "")
}

// show drains the queue (everything when sender is empty) into the pipeline.
func (p *Page) show(ctx context.Context, sender string) int {
	msgs := p.queue.Drain(sender)
	if len(msgs) == 0 {
		return 0
	}
	return p.pipeline.Render(ctx, msgs)
}

// Reset discards queued messages, cached metas, observers and rendered
// content, and returns the framework to the unloaded state.
func (p *Page) Reset() {
	p.queue.Reset()
	p.framework.Reset()
	p.center.Reset()
	if el := p.Container(); el != nil {
		el.SetHTML("")
	}
}

// Container returns the default container element, or nil.
func (p *Page) Container() *render.Element {
	return p.document.ElementByID(p.containerID)
}

// Queue returns the suspend queue.
func (p *Page) Queue() *suspend.Queue { return p.queue }

// Framework returns the identity framework.
func (p *Page) Framework() *identity.Facebook { return p.framework }

// Pipeline returns the display pipeline.
func (p *Page) Pipeline() *render.Pipeline { return p.pipeline }

// Document returns the page document.
func (p *Page) Document() *render.Document { return p.document }

// Notifications returns the notification center.
func (p *Page) Notifications() *notify.Center { return p.center }

// Suspended returns a copy of the queued messages without draining them.
func (p *Page) Suspended() []*message.Message { return p.queue.Copy("") }
