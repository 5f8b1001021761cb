// Package dispatch routes inbound resource events to handlers.
//
// A route pairs a path pattern with a handler. Routes are registered once,
// at the page's composition point, and matched in registration order; every
// matching route runs. Each dispatched request gets an ID for log
// correlation.
package dispatch
