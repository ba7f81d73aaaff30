// Package logging provides a minimal logging interface and adapters for the
// agent harness.
//
// The Logger interface defines the standard logging methods (Debug, Info, Warn, Error)
// that the orchestrator, planners and cognitive modules use for observability.
// This package includes:
//
//   - Logger interface for dependency injection
//   - SlogAdapter wrapping Go's structured logging
//   - StructuredLogger with component scoping and step / LLM call helpers
//   - NoOpLogger for silent operation (testing, minimal setups)
//
// Usage:
//
//	logger := logging.NewSlogLogger(logging.LogLevelInfo, "json", false)
//	a, err := agent.New(llm, cfg, func(o *agent.Options) { o.Logger = logger })
//
// The design keeps the interface minimal so any structured logger can be
// plugged in.
package logging
