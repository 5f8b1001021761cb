// Package suspend holds messages that cannot be displayed yet.
//
// A message is suspended when the verification framework has not loaded or
// when its sender's meta is still unknown. It stays queued until a readiness
// event drains it: a full drain when the framework loads, a sender-scoped
// drain when that sender's meta arrives. Queued messages never expire and are
// never retried on their own.
//
// The queue keeps insertion order, performs no deduplication and has no
// capacity bound.
package suspend
