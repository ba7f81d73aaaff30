package testutil

import "github.com/hupe1980/webreasoner/core"

// ObservationBuilder provides a fluent helper for constructing raw browser
// observations in tests.
//
//	raw := NewObservationBuilder().Goal("buy shoes").AXTree("[1] link 'Home'").Build()
type ObservationBuilder struct {
	raw core.RawObservation
}

// NewObservationBuilder creates a builder with an about:blank page.
func NewObservationBuilder() *ObservationBuilder {
	return &ObservationBuilder{raw: core.RawObservation{
		"url":             "about:blank",
		"open_pages_urls": []any{"about:blank"},
	}}
}

// Goal sets the user instruction (chainable).
func (b *ObservationBuilder) Goal(g string) *ObservationBuilder { b.raw["goal"] = g; return b }

// URL sets the active page URL (chainable).
func (b *ObservationBuilder) URL(u string) *ObservationBuilder { b.raw["url"] = u; return b }

// AXTree sets the accessibility tree text (chainable).
func (b *ObservationBuilder) AXTree(t string) *ObservationBuilder { b.raw["axtree_txt"] = t; return b }

// LastAction sets the previous action and its error, if any (chainable).
func (b *ObservationBuilder) LastAction(action, err string) *ObservationBuilder {
	b.raw["last_action"] = action
	b.raw["last_action_error"] = err
	return b
}

// Set stores an arbitrary key (chainable).
func (b *ObservationBuilder) Set(k string, v any) *ObservationBuilder { b.raw[k] = v; return b }

// Build returns a copy of the observation.
func (b *ObservationBuilder) Build() core.RawObservation {
	out := make(core.RawObservation, len(b.raw))
	for k, v := range b.raw {
		out[k] = v
	}
	return out
}
