package core

// CostReporter is implemented by anything that accumulates LLM spend. The
// value must be monotonically non-decreasing between resets.
type CostReporter interface {
	Cost() float64
}

// Resetter is implemented by per-episode state holders.
type Resetter interface {
	Reset()
}

// TotalCost sums the current cost of every reporter. It is recomputed from
// scratch each call, so calling it repeatedly is idempotent.
func TotalCost(reporters ...CostReporter) float64 {
	total := 0.0
	for _, r := range reporters {
		if r == nil {
			continue
		}
		total += r.Cost()
	}
	return total
}

// ResetAll resets every state holder in order.
func ResetAll(resettables ...Resetter) {
	for _, r := range resettables {
		if r != nil {
			r.Reset()
		}
	}
}
