// Package algorithm exposes the engine's builtin algorithms as typed,
// lazily evaluated constructors. Each builtin takes a named-parameter
// struct and returns a pending handle (or a MultiReturn for builtins with
// several outputs); nothing executes until that handle is computed.
//
// These wrappers are deliberately thin and uniform: they validate required
// parameters, map struct fields to the builtin's keyword arguments, and
// hand the rest to the dag layer. Optional numeric and boolean parameters
// are only forwarded when set, so the engine's own defaults apply
// otherwise.
package algorithm
