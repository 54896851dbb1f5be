// Package services defines the service abstraction the orchestrator drives
// and its process-backed implementation.
//
// # Architecture
//
// Service is the core interface: lifecycle (Start/Stop), state and health
// accessors, and metadata (name, kind, dependencies). BaseService provides the
// guarded state machine that concrete services embed, including state change
// callbacks so the orchestrator can react to transitions without polling.
//
// ExecService is the concrete implementation backing both service kinds: it
// launches the descriptor's command as an OS process in its own process
// group, streams stdout/stderr into the logger, and tracks process exit on a
// done channel. Long-running services are started and stopped; one-shot
// services are run to completion with Run, where exit code 0 means the task
// completed.
//
// # State Model
//
// Per run, a service moves through:
//
//	pending -> starting -> ready               (long-running, success)
//	pending -> starting -> stopped             (one-shot, completed)
//	pending -> starting -> failed              (either kind, failure)
//	ready   -> stopping -> stopped             (teardown)
//
// Transitions are monotonic within a run except ready -> stopped during
// teardown. The orchestrator is the single writer of run-level state; a
// service reports its own transitions through the state change callback.
package services
