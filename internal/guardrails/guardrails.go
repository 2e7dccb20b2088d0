// Package guardrails screens user text before it is sent to an LLM.
package guardrails

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"
)

var ErrRejectedInput = errors.New("input rejected")

// Result holds the outcome of a safety check.
type Result struct {
	Allowed bool               `json:"allowed"`
	Flags   []string           `json:"flags,omitempty"`
	Scores  map[string]float64 `json:"scores,omitempty"`
	Reason  string             `json:"reason,omitempty"`
}

// Guardrail is a single check applied to input text.
type Guardrail interface {
	Check(ctx context.Context, text string) (*Result, error)
	Name() string
}

// Pipeline chains guardrails. Every guard runs so the flags are complete.
type Pipeline struct {
	guards []Guardrail
}

func NewPipeline(guards ...Guardrail) *Pipeline {
	return &Pipeline{guards: guards}
}

// DefaultPipeline is the set of checks applied to generation requests.
func DefaultPipeline() *Pipeline {
	return NewPipeline(
		NewPromptInjectionDetector(),
		NewContentFilter(),
		NewInputLengthGuard(8000),
	)
}

func (p *Pipeline) Check(ctx context.Context, text string) (*Result, error) {
	combined := &Result{
		Allowed: true,
		Scores:  make(map[string]float64),
	}

	for _, g := range p.guards {
		result, err := g.Check(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("guardrail %s: %w", g.Name(), err)
		}
		if !result.Allowed && combined.Allowed {
			combined.Allowed = false
			combined.Reason = fmt.Sprintf("blocked by %s: %s", g.Name(), result.Reason)
		}
		combined.Flags = append(combined.Flags, result.Flags...)
		for k, v := range result.Scores {
			combined.Scores[k] = v
		}
	}

	return combined, nil
}

// Screen runs the pipeline over each text and returns an error wrapping
// ErrRejectedInput for the first one that is blocked.
func (p *Pipeline) Screen(ctx context.Context, texts ...string) error {
	for _, text := range texts {
		if text == "" {
			continue
		}
		res, err := p.Check(ctx, text)
		if err != nil {
			return err
		}
		if !res.Allowed {
			return fmt.Errorf("%w: %s", ErrRejectedInput, res.Reason)
		}
	}
	return nil
}

// InputLengthGuard rejects inputs that are too long.
type InputLengthGuard struct {
	maxLength int
}

func NewInputLengthGuard(maxLen int) *InputLengthGuard {
	return &InputLengthGuard{maxLength: maxLen}
}

func (g *InputLengthGuard) Name() string { return "input_length" }

func (g *InputLengthGuard) Check(_ context.Context, text string) (*Result, error) {
	if utf8.RuneCountInString(text) > g.maxLength {
		return &Result{
			Allowed: false,
			Reason:  fmt.Sprintf("input exceeds %d characters", g.maxLength),
			Flags:   []string{"input_too_long"},
		}, nil
	}
	return &Result{Allowed: true}, nil
}
