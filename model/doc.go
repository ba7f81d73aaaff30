// Package model defines the provider‑agnostic abstractions and concrete
// helpers for interacting with language models inside the agent harness.
//
// Core goals:
//   - Unify streaming + non‑streaming generation behind a single interface
//   - Keep request/response shapes minimal and transport independent
//   - Report token usage so every cognitive role can account its own cost
//   - Facilitate lightweight mocking for tests (MockModel)
//
// Providers (e.g. OpenAI, Anthropic) implement the Model interface from this
// package so higher layers (cognitive modules, memories) remain decoupled
// from vendor SDKs. Parser layers a tagged-output grammar, retries and a
// running cost accumulator on top of a Model for one cognitive role.
package model
