package guardrails

import (
	"context"
	"sort"
	"strings"
)

// ContentFilter blocks requests for clearly harmful content using keyword heuristics.
type ContentFilter struct {
	blockedCategories map[string][]string
}

func NewContentFilter() *ContentFilter {
	return &ContentFilter{
		blockedCategories: map[string][]string{
			"violence": {
				"how to make a bomb", "how to make explosives",
			},
			"malware": {
				"write malware", "create a virus",
				"write ransomware", "create a trojan",
			},
			"csam": {
				"sexual image of a child", "sexualized minor",
			},
		},
	}
}

func (f *ContentFilter) Name() string { return "content_filter" }

func (f *ContentFilter) Check(_ context.Context, text string) (*Result, error) {
	lower := strings.ToLower(text)

	categories := make([]string, 0, len(f.blockedCategories))
	for c := range f.blockedCategories {
		categories = append(categories, c)
	}
	sort.Strings(categories)

	for _, category := range categories {
		for _, p := range f.blockedCategories[category] {
			if strings.Contains(lower, p) {
				return &Result{
					Allowed: false,
					Reason:  "content policy violation: " + category,
					Flags:   []string{"blocked_" + category},
					Scores:  map[string]float64{category: 1.0},
				}, nil
			}
		}
	}

	return &Result{Allowed: true}, nil
}
