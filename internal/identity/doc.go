// Package identity is the verification framework the display pipeline
// checks messages against.
//
// A sender is named by an ID of the form "name@address". Its meta carries
// the ed25519 public key, the seed (the ID's name) and a fingerprint: the
// key's signature over the seed. The address is derived from the fingerprint,
// so a meta can be checked against the ID it claims to describe.
//
// Facebook holds the framework's readiness flag and a meta registry backed by
// an optional MetaStore.
package identity
