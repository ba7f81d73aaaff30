// Package runner implements the environment loop: it resets a browser
// environment with a goal, alternates agent and environment steps under a
// per-step timeout, and persists the resulting episode record.
package runner
