// Package reasoner is a generic model-based planning harness.
//
// A planning problem is described by three pieces, all generic over a state
// type S, an action type A and an example type E:
//
//   - WorldModel simulates transitions and decides termination,
//   - SearchConfig enumerates candidate actions and scores transitions,
//   - SearchAlgorithm owns the search strategy and returns an AlgorithmOutput.
//
// Reasoner composes the three. Run binds the example (and an optional prompt
// override) into the world model and the search config, invokes the
// algorithm and returns its output unchanged. Concrete strategies live in
// the beam and dfs subpackages.
package reasoner
