// Package core provides the foundational domain types and contracts shared by
// every part of the agent harness. It defines:
//
//   - Identity (shared per-episode context read by every cognitive module)
//   - Observation and action spaces (environment encodings consumed as contracts)
//   - StepInfo (the ephemeral per-turn diagnostics record)
//   - Memory (stage/commit record accumulated across steps)
//   - Cost and reset registries used by the orchestrator
//   - Environment and ArtifactStore contracts used by the episode runner
//
// The package intentionally keeps implementation concerns (prompting, search,
// persistence, concrete spaces) out of scope, exposing small interfaces so the
// orchestrator never depends on a concrete module.
package core
