// Package agent contains the ReasonerAgent orchestrator.
//
// Every call to Step runs one pass of a fixed pipeline:
//
//  1. parse the raw observation (an early return action ends the step here)
//  2. refresh the identity with the current instruction
//  3. encode the observation into a state
//  4. plan
//  5. act
//  6. stage the step into memory
//  7. commit the memory, recompute the total cost and emit the action
//
// A stage that produces no usable output collapses the step into the
// configured module-error action. Only context cancellation is returned as
// an error, and a canceled step never commits memory.
//
// All modules are built from a config.Config plus a model.Model. Options can
// replace individual modules, which is how tests inject stubs.
package agent
