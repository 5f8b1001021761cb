// Package page wires the suspend queue, the identity framework, the display
// pipeline and the event routes together.
//
// New is the single composition point: it owns every component and
// registers the routes. Three kinds of event drive the page:
//
//   - channel events deliver messages; each is queued, MessageReceived is
//     posted and the whole queue is drained into the pipeline;
//   - meta events register a sender's meta and drain that sender only;
//   - FrameworkLoaded marks the framework ready and drains everything.
//
// Messages that still cannot be verified end up back in the queue until the
// next event.
package page
