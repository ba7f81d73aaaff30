package model

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/hupe1980/webreasoner/core"
	"github.com/hupe1980/webreasoner/logging"
)

// ErrMissingOutput is returned when a completion still lacks a required
// output key after all retries.
var ErrMissingOutput = errors.New("model output missing required keys")

// ParserOptions configure a Parser.
type ParserOptions struct {
	// OptionalKeys are extracted when present but never trigger a retry.
	OptionalKeys []string
	// MaxRetries bounds the attempts made per call when required keys are missing.
	MaxRetries int
	// Temperature overrides the provider default when non-nil.
	Temperature *float64
	// Stream requests streaming generation (collected before parsing).
	Stream bool
	// Pricing converts token usage into cost.
	Pricing Pricing
	// Limiter, when set, is charged once per model call.
	Limiter *core.CallLimiter
	// Logger receives one entry per model call.
	Logger logging.Logger
}

// Parser is the LLM handle of one cognitive role. It renders a two message
// chat request, extracts <key>value</key> blocks from the completion and keeps
// a running cost accumulator. Parser is safe for concurrent use.
type Parser struct {
	model   Model
	keys    []string
	opts    ParserOptions
	logger  logging.Logger
	pattern map[string]*regexp.Regexp

	mu   sync.Mutex
	cost float64
}

// NewParser creates a Parser extracting the given required keys.
func NewParser(m Model, keys []string, optFns ...func(o *ParserOptions)) *Parser {
	opts := ParserOptions{
		MaxRetries: 3,
		Pricing:    DefaultPricing,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.MaxRetries < 1 {
		opts.MaxRetries = 1
	}

	p := &Parser{
		model:   m,
		keys:    append([]string(nil), keys...),
		opts:    opts,
		logger:  logging.Ensure(opts.Logger),
		pattern: make(map[string]*regexp.Regexp, len(keys)+len(opts.OptionalKeys)),
	}
	for _, k := range append(append([]string(nil), keys...), opts.OptionalKeys...) {
		p.pattern[k] = regexp.MustCompile(`(?s)<` + regexp.QuoteMeta(k) + `>(.*?)</` + regexp.QuoteMeta(k) + `>`)
	}
	return p
}

// Keys returns the required output keys.
func (p *Parser) Keys() []string { return append([]string(nil), p.keys...) }

// Cost returns the accumulated USD cost of every call made through this parser.
func (p *Parser) Cost() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cost
}

// Call performs one completion and returns the extracted fields. Missing
// required keys trigger up to MaxRetries attempts before ErrMissingOutput.
func (p *Parser) Call(ctx context.Context, system, user string) (map[string]string, error) {
	var missing []string
	for attempt := 0; attempt < p.opts.MaxRetries; attempt++ {
		text, err := p.complete(ctx, system, user)
		if err != nil {
			return nil, err
		}
		fields := p.Parse(text)
		missing = p.missingKeys(fields)
		if len(missing) == 0 {
			return fields, nil
		}
		p.logger.Debug("completion missing keys, retrying", "missing", missing, "attempt", attempt+1)
	}
	return nil, fmt.Errorf("%w: %s", ErrMissingOutput, strings.Join(missing, ", "))
}

// Sample performs n independent calls. Failed samples are skipped; an error
// is returned only when no sample succeeded.
func (p *Parser) Sample(ctx context.Context, system, user string, n int) ([]map[string]string, error) {
	if n < 1 {
		n = 1
	}
	out := make([]map[string]string, 0, n)
	var lastErr error
	for i := 0; i < n; i++ {
		fields, err := p.Call(ctx, system, user)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err
			continue
		}
		out = append(out, fields)
	}
	if len(out) == 0 {
		return nil, lastErr
	}
	return out, nil
}

// Parse extracts every configured key present in text.
func (p *Parser) Parse(text string) map[string]string {
	fields := make(map[string]string, len(p.pattern))
	for k, re := range p.pattern {
		if m := re.FindStringSubmatch(text); m != nil {
			fields[k] = strings.TrimSpace(m[1])
		}
	}
	return fields
}

func (p *Parser) missingKeys(fields map[string]string) []string {
	var missing []string
	for _, k := range p.keys {
		if _, ok := fields[k]; !ok {
			missing = append(missing, k)
		}
	}
	return missing
}

func (p *Parser) complete(ctx context.Context, system, user string) (string, error) {
	if p.opts.Limiter != nil {
		if err := p.opts.Limiter.Increment(); err != nil {
			return "", err
		}
	}

	req := Request{
		Messages:    []Message{SystemMessage(system), UserMessage(user)},
		Temperature: p.opts.Temperature,
		Stream:      p.opts.Stream,
	}
	start := time.Now()
	resp, err := Collect(ctx, p.model, req)
	name := p.model.Info().Name
	if err != nil {
		p.logCall(name, 0, 0, time.Since(start), err)
		return "", err
	}

	var cost float64
	tokens := 0
	if resp.Usage != nil {
		cost = p.opts.Pricing.Cost(name, *resp.Usage)
		tokens = resp.Usage.TotalTokens
		p.mu.Lock()
		p.cost += cost
		p.mu.Unlock()
	}
	p.logCall(name, tokens, cost, time.Since(start), nil)
	return resp.Text, nil
}

// llmCallLogger is implemented by logging.StructuredLogger.
type llmCallLogger interface {
	LogLLMCall(model string, tokens int, cost float64, dur time.Duration, err error)
}

func (p *Parser) logCall(name string, tokens int, cost float64, dur time.Duration, err error) {
	if l, ok := p.logger.(llmCallLogger); ok {
		l.LogLLMCall(name, tokens, cost, dur, err)
		return
	}
	if err != nil {
		p.logger.Error("LLM call failed", "model", name, "duration", dur, "error", err.Error())
		return
	}
	p.logger.Debug("LLM call completed", "model", name, "token_count", tokens, "cost", cost, "duration", dur)
}
