package core

// RawObservation is the untyped observation payload produced by a browsing
// environment (decoded JSON).
type RawObservation map[string]any

// ObsInfo carries metadata extracted while parsing an observation.
type ObsInfo struct {
	// Goal is the current user instruction.
	Goal string `json:"goal"`
	// URL of the active page, if known.
	URL string `json:"url,omitempty"`
	// ReturnAction, when set, is emitted directly and bypasses every module.
	ReturnAction string `json:"return_action,omitempty"`
	// Extra holds space specific diagnostics.
	Extra map[string]any `json:"extra,omitempty"`
}

// HasReturnAction reports whether the observation resolved the step already.
func (o ObsInfo) HasReturnAction() bool { return o.ReturnAction != "" }

// ObservationSpace turns a raw environment observation into the text the
// cognitive modules consume.
type ObservationSpace interface {
	Describer
	ParseObservation(raw RawObservation) (string, ObsInfo, error)
}

// ActionSpace serializes the chosen action for the environment. It is the
// final emission step of every agent step, including failed ones.
type ActionSpace interface {
	Describer
	ParseAction(action string, info StepInfo) (string, StepInfo)
}
