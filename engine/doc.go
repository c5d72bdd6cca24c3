// Package engine is the transport layer for a remote matrix-script engine.
// It defines the value model shared with the wire codec, connection profiles,
// the HTTP client that submits scripts with Arrow-encoded inputs, and the
// execution Context that serializes round trips for one session.
package engine
