// Package notify is a small synchronous notification center.
package notify

import (
	"log/slog"
	"sync"
)

// MessageReceived is posted after a channel event's messages were queued.
const MessageReceived = "MessageReceived"

// Notification is one posted event.
type Notification struct {
	Name   string
	Sender any
	Info   map[string]any
}

// Observer receives notifications.
type Observer func(n Notification)

type entry struct {
	id       uint64
	observer Observer
}

// Center dispatches notifications to observers registered by name.
// Observers run synchronously, in registration order, on the posting
// goroutine.
type Center struct {
	mu        sync.Mutex
	nextID    uint64
	observers map[string][]entry
	logger    *slog.Logger
}

// NewCenter creates an empty center. A nil logger means slog.Default().
func NewCenter(logger *slog.Logger) *Center {
	if logger == nil {
		logger = slog.Default()
	}
	return &Center{
		observers: make(map[string][]entry),
		logger:    logger,
	}
}

// AddObserver registers fn for name and returns a function that removes it.
func (c *Center) AddObserver(name string, fn Observer) (remove func()) {
	c.mu.Lock()
	c.nextID++
	id := c.nextID
	c.observers[name] = append(c.observers[name], entry{id: id, observer: fn})
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		list := c.observers[name]
		for i, e := range list {
			if e.id == id {
				c.observers[name] = append(list[:i:i], list[i+1:]...)
				return
			}
		}
	}
}

// Post delivers a notification to every observer of name.
// Observers added or removed during delivery take effect on the next Post.
func (c *Center) Post(name string, sender any, info map[string]any) {
	c.mu.Lock()
	list := make([]entry, len(c.observers[name]))
	copy(list, c.observers[name])
	c.mu.Unlock()

	c.logger.Debug("notification posted", "name", name, "observers", len(list))

	n := Notification{Name: name, Sender: sender, Info: info}
	for _, e := range list {
		e.observer(n)
	}
}

// Reset removes every observer.
func (c *Center) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.observers = make(map[string][]entry)
}
