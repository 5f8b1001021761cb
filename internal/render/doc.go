// Package render is the display pipeline: it verifies messages, fills in
// derived presentation fields and renders them into a page container.
//
// Verification has two kinds of failure. Transient ones (the framework has
// not loaded, the sender's meta is unknown) put the message back into the
// suspend queue to be retried by a later readiness event. Permanent ones (an
// unresolvable sender, a bad signature) drop the message; it is logged and
// counted, never shown.
//
// The page itself is modelled by Document, a set of named elements. The
// container and the template are looked up there once per Render call.
package render
