// Package cognitive contains the LLM-role modules of the agent: Encoder,
// Policy, WorldModel, Critic and Actor.
//
// Every role returns a fixed output record instead of a loosely typed map.
// The prompted implementations render a role template from the prompt
// package, call a model.Parser and copy the parsed tags into the record.
// Each prompted module reports the cost of its parser through Cost so the
// orchestrator can aggregate spend without knowing concrete types.
//
// Modules never mutate Memory; they only read its rendered history.
package cognitive
