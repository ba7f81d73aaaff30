package model

import "strings"

// Price is the USD cost per million tokens.
type Price struct {
	Prompt     float64
	Completion float64
}

// Pricing maps model names (or name prefixes) to token prices.
type Pricing map[string]Price

// DefaultPricing covers the models the harness is usually run with. Locally
// served models are free.
var DefaultPricing = Pricing{
	"gpt-4o-mini":       {Prompt: 0.15, Completion: 0.60},
	"gpt-4o":            {Prompt: 2.50, Completion: 10.00},
	"gpt-4.1":           {Prompt: 2.00, Completion: 8.00},
	"claude-3-5-sonnet": {Prompt: 3.00, Completion: 15.00},
	"claude-3-5-haiku":  {Prompt: 0.80, Completion: 4.00},
}

// Cost returns the USD cost of usage for the named model. Exact names win over
// the longest matching prefix; unknown models cost nothing.
func (p Pricing) Cost(modelName string, usage TokenUsage) float64 {
	price, ok := p[modelName]
	if !ok {
		best := ""
		for name, pr := range p {
			if strings.HasPrefix(modelName, name) && len(name) > len(best) {
				best, price = name, pr
			}
		}
		if best == "" {
			return 0
		}
	}
	return (float64(usage.PromptTokens)*price.Prompt + float64(usage.CompletionTokens)*price.Completion) / 1e6
}
