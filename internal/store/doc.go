// Package store provides SQLite-backed persistence for sender metas.
//
// Metas outlive a page session: once a sender's meta has been seen, messages
// from that sender can be verified immediately on the next load instead of
// waiting in the suspend queue for a meta event.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//
// Rows carry a monotonic seq so listings are stable: ORDER BY seq, identifier.
package store
