// Package testutil contains stub modules and builders used across tests to
// reduce boilerplate when wiring an agent: cognitive module stubs with call
// counters, a counting memory wrapper, a scripted environment and a fluent
// raw observation builder. Not intended for production usage.
package testutil
