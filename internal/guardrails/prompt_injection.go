package guardrails

import (
	"context"
	"strings"
)

// PromptInjectionDetector flags text that tries to override the generator's own
// instructions. Role-play phrasing ("act as", "you are") is normal in prompts and is
// not flagged.
type PromptInjectionDetector struct {
	threshold float64
}

func NewPromptInjectionDetector() *PromptInjectionDetector {
	return &PromptInjectionDetector{threshold: 0.8}
}

func (d *PromptInjectionDetector) Name() string { return "prompt_injection" }

var injectionPatterns = []struct {
	pattern string
	weight  float64
	flag    string
}{
	{"ignore previous instructions", 0.9, "override_attempt"},
	{"ignore all previous", 0.9, "override_attempt"},
	{"disregard your instructions", 0.9, "override_attempt"},
	{"forget your instructions", 0.85, "override_attempt"},
	{"reveal your system", 0.8, "system_leak"},
	{"show me your prompt", 0.8, "system_leak"},
	{"print your system prompt", 0.9, "system_leak"},
	{"ignore safety", 0.9, "safety_bypass"},
	{"bypass your filters", 0.9, "safety_bypass"},
	{"dan mode", 0.9, "jailbreak"},
	{"do anything now", 0.85, "jailbreak"},
	{"</system>", 0.8, "tag_injection"},
	{"<system>", 0.8, "tag_injection"},
	{"```system", 0.7, "format_injection"},
}

func (d *PromptInjectionDetector) Check(_ context.Context, text string) (*Result, error) {
	score, flags := heuristicScore(text)
	if score >= d.threshold {
		return &Result{
			Allowed: false,
			Reason:  "potential prompt injection detected",
			Flags:   flags,
			Scores:  map[string]float64{"injection_score": score},
		}, nil
	}
	return &Result{Allowed: true, Flags: flags}, nil
}

func heuristicScore(text string) (float64, []string) {
	lower := strings.ToLower(text)
	var flags []string
	score := 0.0

	for _, p := range injectionPatterns {
		if strings.Contains(lower, p.pattern) {
			if p.weight > score {
				score = p.weight
			}
			flags = append(flags, p.flag)
		}
	}
	return score, flags
}
