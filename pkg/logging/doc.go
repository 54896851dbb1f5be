// Package logging provides a structured logging system for stackup with
// subsystem-tagged log entries and level filtering.
//
// The package wraps Go's standard slog with a small convenience API. Every log
// entry carries a subsystem identifier (Bootstrap, Config, Descriptor,
// Orchestrator, HealthGate, ...) so that output from concurrent service starts
// can be attributed and filtered.
//
// # Usage
//
//	import "stackup/pkg/logging"
//
//	// Initialize once at startup, before anything logs.
//	logging.Init(logging.LevelInfo, os.Stderr, false)
//
//	logging.Info("Bootstrap", "Loaded %d service descriptors", n)
//	logging.Debug("HealthGate", "Attempt %d for %s", attempt, name)
//	logging.Error("Orchestrator", err, "Service %s failed to start", name)
//
// Output goes through a tint handler, which produces colorized, human-readable
// lines on terminals. Color can be disabled for non-TTY output or when
// NO_COLOR semantics are wanted.
//
// The package is safe for concurrent use from multiple goroutines.
package logging
