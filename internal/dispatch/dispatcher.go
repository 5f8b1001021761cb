package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"sync"
)

// Request is one inbound resource event.
type Request struct {
	ID   string
	Path string
	Body []byte
}

// Handler processes a matched request. Returned errors are logged.
type Handler func(ctx context.Context, req *Request) error

// Route is a registered pattern and handler.
type Route struct {
	Name    string
	Pattern *regexp.Regexp
	Handler Handler
}

// Dispatcher is the explicit route table.
type Dispatcher struct {
	mu     sync.RWMutex
	routes []Route

	ids    IDGenerator
	logger *slog.Logger
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithIDGenerator overrides the default UUIDv7 request IDs.
func WithIDGenerator(g IDGenerator) Option {
	return func(d *Dispatcher) { d.ids = g }
}

// WithLogger sets the dispatcher logger.
func WithLogger(l *slog.Logger) Option {
	return func(d *Dispatcher) { d.logger = l }
}

// New creates an empty dispatcher.
func New(opts ...Option) *Dispatcher {
	d := &Dispatcher{}
	for _, opt := range opts {
		opt(d)
	}
	if d.ids == nil {
		d.ids = UUIDv7Generator{}
	}
	if d.logger == nil {
		d.logger = slog.Default()
	}
	return d
}

// Handle registers handler for paths matching pattern.
// Returns an error if pattern does not compile.
func (d *Dispatcher) Handle(name, pattern string, handler Handler) error {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return fmt.Errorf("route %s: %w", name, err)
	}
	if handler == nil {
		return fmt.Errorf("route %s: nil handler", name)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.routes = append(d.routes, Route{Name: name, Pattern: re, Handler: handler})
	return nil
}

// Routes returns a copy of the route table.
func (d *Dispatcher) Routes() []Route {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]Route, len(d.routes))
	copy(out, d.routes)
	return out
}

// Dispatch runs every route matching path, in registration order, and
// returns how many matched. Handler errors are logged and do not stop later
// routes.
func (d *Dispatcher) Dispatch(ctx context.Context, path string, body []byte) int {
	req := &Request{ID: d.ids.Generate(), Path: path, Body: body}

	matched := 0
	for _, route := range d.Routes() {
		if !route.Pattern.MatchString(path) {
			continue
		}
		matched++
		d.logger.Debug("dispatching", "request_id", req.ID, "route", route.Name, "path", path)
		if err := route.Handler(ctx, req); err != nil {
			d.logger.Error("handler failed",
				"request_id", req.ID,
				"route", route.Name,
				"path", path,
				"error", err,
			)
		}
	}

	if matched == 0 {
		d.logger.Debug("no route matched", "request_id", req.ID, "path", path)
	}
	return matched
}
