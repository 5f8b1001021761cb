// Package message defines the chat message record that flows through the
// suspend queue and the display pipeline.
//
// Messages arrive as loosely shaped JSON objects. The record keeps the fields
// the pipeline reads by name (sender, signature, data, title, link, time) and
// carries everything else in an open Extra map so nothing is lost on a round
// trip. Validation happens once, at the wire boundary, in UnmarshalJSON.
//
// Link derivation folds a base64 signature down to its trailing 16 characters
// and makes it URL friendly; see Filename.
package message
