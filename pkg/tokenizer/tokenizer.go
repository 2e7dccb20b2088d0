// Package tokenizer estimates how many tokens a prompt will cost.
package tokenizer

import (
	"strings"
	"unicode/utf8"
)

// CountTokens provides a rough token count estimate. It takes the larger of a
// word based and a character based guess so dense text without spaces is not
// undercounted.
func CountTokens(text string) int {
	if strings.TrimSpace(text) == "" {
		return 0
	}
	byWords := len(strings.Fields(text)) * 4 / 3
	byChars := utf8.RuneCountInString(text) / 4
	return max(byWords, byChars, 1)
}

// Estimate is the token cost of a prompt and how much of the target's budget it uses.
type Estimate struct {
	Tokens int `json:"tokens"`
	Limit  int `json:"limit"`
}

// Midjourney and CLIP based models read a short window; text models read far more.
var contextLimits = map[string]int{
	"midjourney":       350,
	"sdxl":             77,
	"stable-diffusion": 77,
}

const defaultLimit = 8192

// EstimateFor returns the token estimate for text sent to the named model.
func EstimateFor(text, model string) Estimate {
	limit, ok := contextLimits[model]
	if !ok {
		limit = defaultLimit
	}
	return Estimate{Tokens: CountTokens(text), Limit: limit}
}
