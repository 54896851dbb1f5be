// Package config resolves environment-derived configuration into an immutable
// snapshot consumed by every other stackup component.
//
// Resolution merges two sources:
//
//  1. An optional env file with newline-separated KEY=VALUE pairs. Lines
//     starting with # and blank lines are ignored. No quoting or escaping is
//     applied.
//  2. The process environment, which overrides file values for the same key.
//
// The merged result is validated against a list of required keys; a missing
// required key is a terminal error. The returned ResolvedConfig never changes
// after resolution and is safe to share across concurrent service starts
// without locking.
//
// Resolution is idempotent: calling Resolve twice with identical inputs yields
// an identical snapshot. The resolver never mutates the process environment.
package config
