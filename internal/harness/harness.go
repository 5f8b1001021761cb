package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/dwitter/internal/config"
	"github.com/roach88/dwitter/internal/dispatch"
	"github.com/roach88/dwitter/internal/message"
	"github.com/roach88/dwitter/internal/page"
	"github.com/roach88/dwitter/internal/store"
	"github.com/roach88/dwitter/internal/suspend"
	"github.com/roach88/dwitter/internal/testutil"
)

// itemTemplate is the page template when no config is given.
const itemTemplate = `<li>${title}</li>`

// Harness drives one scenario run.
type Harness struct {
	page     *page.Page
	signers  map[string]*testutil.Signer
	clock    *testutil.DeterministicClock
	stamps   *testutil.DeterministicClock
	rendered []string
	alerts   int
	logger   *slog.Logger
}

// Option configures a run.
type Option func(*runConfig)

type runConfig struct {
	logger *slog.Logger
	page   *config.Config
}

// WithLogger routes page logs to l instead of discarding them.
func WithLogger(l *slog.Logger) Option {
	return func(c *runConfig) { c.logger = l }
}

// WithConfig builds the page from cfg: element ids, link prefix and the
// template file. Its database setting is ignored; runs always use an
// in-memory store.
func WithConfig(cfg *config.Config) Option {
	return func(c *runConfig) { c.page = cfg }
}

func (c *runConfig) pageOptions() (page.Options, error) {
	if c.page == nil {
		return page.Options{Template: itemTemplate}, nil
	}
	tmpl, err := c.page.LoadTemplate()
	if err != nil {
		return page.Options{}, err
	}
	return page.Options{
		Template:    tmpl,
		ContainerID: c.page.Container,
		TemplateID:  c.page.Template,
		LinkPrefix:  c.page.LinkPrefix,
	}, nil
}

// Run executes scenario against a fresh page backed by an in-memory store
// and evaluates its assertions. An error means the scenario could not be
// executed; assertion failures are reported in the Result.
func Run(scenario *Scenario, opts ...Option) (*Result, error) {
	cfg := runConfig{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(&cfg)
	}

	pageOpts, err := cfg.pageOptions()
	if err != nil {
		return nil, fmt.Errorf("failed to build page options: %w", err)
	}

	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	h := &Harness{
		signers: make(map[string]*testutil.Signer, len(scenario.Signers)),
		clock:   testutil.NewDeterministicClock(),
		stamps:  testutil.NewDeterministicClock(),
		logger:  cfg.logger,
	}

	pageOpts.MetaStore = st
	pageOpts.Alerter = suspend.AlertFunc(func(string) { h.alerts++ })
	pageOpts.OnRender = func(msg *message.Message) { h.rendered = append(h.rendered, msg.Title) }
	pageOpts.IDGenerator = dispatch.NewSequenceGenerator("req")
	pageOpts.Logger = cfg.logger

	p, err := page.New(pageOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to create page: %w", err)
	}
	h.page = p

	ctx := context.Background()
	if err := h.setup(ctx, scenario); err != nil {
		return nil, fmt.Errorf("failed to execute setup: %w", err)
	}

	result := NewResult()
	for i, step := range scenario.Steps {
		event, err := h.execute(ctx, step)
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", i, err)
		}
		result.AddTrace(event)
	}

	result.Final.Queue = p.Queue().Len()
	result.Final.Dropped = p.Pipeline().Stats().Dropped
	result.Final.Alerts = h.alerts
	if el := p.Container(); el != nil {
		result.HTML = el.HTML()
	}

	for _, msg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(msg)
	}
	return result, nil
}

func (h *Harness) setup(ctx context.Context, scenario *Scenario) error {
	for _, name := range scenario.Signers {
		s, err := testutil.NewSigner(name)
		if err != nil {
			return err
		}
		h.signers[name] = s
	}
	for _, name := range scenario.Known {
		s := h.signers[name]
		if err := h.page.Framework().SaveMeta(ctx, s.ID, s.Meta); err != nil {
			return fmt.Errorf("register %s: %w", name, err)
		}
	}
	if scenario.Ready {
		h.page.Framework().SetReady(true)
	}
	return nil
}

// execute delivers one step and records what it rendered.
func (h *Harness) execute(ctx context.Context, step Step) (TraceEvent, error) {
	before := len(h.rendered)
	event := TraceEvent{Seq: h.clock.Next()}

	switch {
	case step.Channel != nil:
		body, err := h.channelBody(step.Channel)
		if err != nil {
			return event, err
		}
		event.Step = StepChannel
		event.Target = "/channel/" + step.Channel.NameOrDefault() + ".js"
		h.page.Deliver(ctx, event.Target, body)

	case step.Meta != "":
		s := h.signers[step.Meta]
		body, err := s.MetaJSON()
		if err != nil {
			return event, err
		}
		event.Step = StepMeta
		event.Target = step.Meta
		h.page.Deliver(ctx, s.MetaPath(), body)

	case step.Load:
		event.Step = StepLoad
		h.page.FrameworkLoaded(ctx)

	default:
		return event, fmt.Errorf("empty step")
	}

	event.Rendered = h.renderedSince(before)
	event.Queue = h.page.Queue().Len()

	h.logger.Info("scenario step completed",
		"seq", event.Seq,
		"step", event.Step,
		"rendered", len(event.Rendered),
		"queue", event.Queue,
	)
	return event, nil
}

func (h *Harness) channelBody(step *ChannelStep) ([]byte, error) {
	msgs := make([]*message.Message, len(step.Items))
	for i, item := range step.Items {
		msg, err := h.buildMessage(item)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		msgs[i] = msg
	}
	return testutil.ChannelJSON(step.NameOrDefault(), msgs...)
}

func (h *Harness) buildMessage(item ChannelItem) (*message.Message, error) {
	if item.Null {
		return nil, nil
	}

	if item.Sender != "" {
		data, err := message.EncodeContent(message.Content{Text: item.Text})
		if err != nil {
			return nil, err
		}
		return &message.Message{Sender: item.Sender, Data: data, Title: item.Title}, nil
	}

	msg, err := h.signers[item.From].Message(item.Text, h.stamps.Now())
	if err != nil {
		return nil, err
	}
	msg.Title = item.Title
	if item.Tamper {
		msg.Data, err = message.EncodeContent(message.Content{Text: item.Text + " (edited)"})
		if err != nil {
			return nil, err
		}
	}
	return msg, nil
}

// NameOrDefault returns the channel name, or the default when unset.
func (c *ChannelStep) NameOrDefault() string {
	if c.Name == "" {
		return defaultChannelName
	}
	return c.Name
}

func (h *Harness) renderedSince(before int) []string {
	if before >= len(h.rendered) {
		return []string{}
	}
	return append([]string(nil), h.rendered[before:]...)
}
