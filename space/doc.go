// Package space implements the observation and action spaces of the
// supported browsing environments.
//
// An observation space turns a raw environment observation into the text
// prompt view consumed by the cognitive modules and extracts metadata such as
// the goal. An action space describes the available browser functions and
// normalizes the actor's output before it is sent to the environment.
package space
