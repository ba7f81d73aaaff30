package core

// Well-known step field names.
const (
	FieldObs    = "obs"
	FieldState  = "state"
	FieldPlan   = "plan"
	FieldAction = "action"
)

// StepInfo accumulates everything produced during one agent step. It is
// created fresh every step and only persisted through the episode record.
type StepInfo struct {
	Obs              string         `json:"obs"`
	ObsInfo          ObsInfo        `json:"obs_info"`
	State            string         `json:"state,omitempty"`
	Plan             string         `json:"plan,omitempty"`
	PolicyOutputName string         `json:"policy_output_name,omitempty"`
	Action           string         `json:"action,omitempty"`
	Memory           Record         `json:"memory,omitempty"`
	Cost             float64        `json:"cost"`
	ModuleError      string         `json:"module_error,omitempty"`
	Extra            map[string]any `json:"extra,omitempty"`
}

// Fields returns the non-empty step values keyed by field name. The plan is
// exposed both as "plan" and under the configured policy output name so that
// memories keyed by either can be staged.
func (s StepInfo) Fields() map[string]string {
	fields := make(map[string]string, 5)
	set := func(k, v string) {
		if k != "" && v != "" {
			fields[k] = v
		}
	}
	set(FieldObs, s.Obs)
	set(FieldState, s.State)
	set(FieldPlan, s.Plan)
	set(s.PolicyOutputName, s.Plan)
	set(FieldAction, s.Action)
	return fields
}

// SetExtra records a diagnostic value, allocating the map lazily.
func (s *StepInfo) SetExtra(key string, value any) {
	if s.Extra == nil {
		s.Extra = make(map[string]any)
	}
	s.Extra[key] = value
}
