// Package harness runs YAML page scenarios against a fresh page session and
// checks the outcome.
//
// # Scenario Format
//
//	name: scoped_meta
//	description: "A meta event renders only that sender's messages"
//	signers: [Z, other]
//	known: []          # signers whose metas are registered up front
//	ready: true        # framework already loaded
//	steps:
//	  - channel:
//	      name: moments
//	      items:
//	        - {from: Z, text: z1}
//	        - {from: other, text: o1}
//	  - meta: Z
//	  - load: true
//	assertions:
//	  - {type: queue_length, count: 1}
//	  - {type: rendered_order, titles: [z1]}
//
// Signers are derived from their seed names, so identities and signatures
// are identical across runs. Channel items may set tamper (change the data
// after signing), sender (a raw sender string instead of a signer) or null
// (an item whose msg is null).
//
// # Assertion Types
//
//   - queue_length: messages still suspended at the end
//   - rendered_count: messages rendered across all steps
//   - dropped_count: messages dropped by verification
//   - rendered_contains: a title was rendered
//   - rendered_order: titles were rendered in this relative order
//
// Each run uses an in-memory store, a sequence request ID generator and a
// deterministic clock, and the trace it produces is stable enough for golden
// comparison.
package harness
