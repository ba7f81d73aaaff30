// Package memory contains the step memories used by the agent. Both
// implementations satisfy core.Memory: fields are staged with Update and
// committed with Step, and the committed history is rendered into prompts.
//
// StepKeyValue stores the configured fields verbatim. StepPrompted
// additionally asks an LLM for a short summary of every step and stages it
// under the memory_update key.
package memory
