// Package planner turns an encoded state into a plan. PolicyPlanner asks the
// policy once. SearchPlanner runs lookahead search through the generic
// reasoner package, composing the policy (candidate plans), the world model
// (predicted consequences) and the critic (scores).
//
// Both planners report their result under the configured policy output name
// so the agent does not depend on which one is installed.
package planner
