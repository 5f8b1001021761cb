package suspend

import (
	"log/slog"
	"slices"
	"sync"

	"github.com/roach88/dwitter/internal/message"
)

// Alerter surfaces blocking, user-facing errors.
type Alerter interface {
	Alert(text string)
}

// AlertFunc adapts a function to Alerter.
type AlertFunc func(text string)

// Alert calls f(text).
func (f AlertFunc) Alert(text string) { f(text) }

// logAlerter is the default Alerter; it reports through slog.
type logAlerter struct {
	logger *slog.Logger
}

func (a logAlerter) Alert(text string) {
	a.logger.Error("alert", "text", text)
}

// Queue is the suspended message holding area.
//
// Every method runs under the queue mutex, so a drain's read and clear are
// atomic with respect to other callers.
type Queue struct {
	mu       sync.Mutex
	messages []*message.Message

	alerter Alerter
	logger  *slog.Logger
}

// Option configures a Queue.
type Option func(*Queue)

// WithAlerter sets the user-facing alert sink used for empty messages.
func WithAlerter(a Alerter) Option {
	return func(q *Queue) { q.alerter = a }
}

// WithLogger sets the queue logger.
func WithLogger(l *slog.Logger) Option {
	return func(q *Queue) { q.logger = l }
}

// New creates an empty queue.
func New(opts ...Option) *Queue {
	q := &Queue{}
	for _, opt := range opts {
		opt(q)
	}
	if q.logger == nil {
		q.logger = slog.Default()
	}
	if q.alerter == nil {
		q.alerter = logAlerter{logger: q.logger}
	}
	return q
}

// Suspend appends msg to the tail of the queue.
//
// A nil or empty message raises an alert and is not queued; Suspend then
// returns false. Duplicates are accepted.
func (q *Queue) Suspend(msg *message.Message) bool {
	if msg.IsEmpty() {
		q.alerter.Alert("message empty")
		return false
	}
	// TODO: reject a message whose signature is already queued once senders
	// agree on signature uniqueness.

	q.mu.Lock()
	q.messages = append(q.messages, msg)
	n := len(q.messages)
	q.mu.Unlock()

	q.logger.Debug("message suspended", "sender", msg.Sender, "queued", n)
	return true
}

// Drain removes and returns queued messages.
//
// An empty sender drains everything in insertion order. Otherwise only
// messages whose Sender equals sender are removed, returned in their original
// relative order; the rest stay queued in order. The result is never nil.
func (q *Queue) Drain(sender string) []*message.Message {
	q.mu.Lock()
	defer q.mu.Unlock()

	if sender == "" {
		out := q.messages
		q.messages = nil
		if out == nil {
			out = []*message.Message{}
		}
		return out
	}

	matched, retained := q.partition(sender)
	q.messages = retained
	return matched
}

// Copy returns the messages Drain would return without removing them.
// The returned slice never aliases queue storage.
func (q *Queue) Copy(sender string) []*message.Message {
	q.mu.Lock()
	defer q.mu.Unlock()

	if sender == "" {
		out := make([]*message.Message, len(q.messages))
		copy(out, q.messages)
		return out
	}

	matched, _ := q.partition(sender)
	return matched
}

// partition splits the queue into messages from sender and the rest.
//
// A single backward pass fills both lists, which are then reversed back into
// insertion order. The queue itself is not touched; the caller decides
// whether to swap the retained list in. Caller must hold q.mu.
func (q *Queue) partition(sender string) (matched, retained []*message.Message) {
	matched = []*message.Message{}
	retained = make([]*message.Message, 0, len(q.messages))
	for i := len(q.messages) - 1; i >= 0; i-- {
		msg := q.messages[i]
		if msg.Sender == sender {
			matched = append(matched, msg)
		} else {
			retained = append(retained, msg)
		}
	}
	slices.Reverse(matched)
	slices.Reverse(retained)
	return matched, retained
}

// Len returns the number of queued messages.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.messages)
}

// Reset discards every queued message.
func (q *Queue) Reset() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.messages = nil
}
