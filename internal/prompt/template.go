package prompt

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var ErrMissingVariables = errors.New("missing template variables")

// placeholderPattern matches either an escaped opening brace pair or a {{name}}
// placeholder. Escaped pairs carry no name.
var placeholderPattern = regexp.MustCompile(`\\\{\{|\{\{(\w+)\}\}`)

const escapedBraces = `\{{`

// EscapeBraces makes literal text safe to embed in a template: "{{" becomes "\{{",
// which rendering turns back into "{{" instead of reading a placeholder.
func EscapeBraces(s string) string {
	return strings.ReplaceAll(s, "{{", escapedBraces)
}

// Render fills {{name}} placeholders from vars. Every placeholder must have a value.
func Render(template string, vars map[string]string) (string, error) {
	if missing := missingVariables(template, vars); len(missing) > 0 {
		return "", fmt.Errorf("%w: %s", ErrMissingVariables, strings.Join(missing, ", "))
	}

	return placeholderPattern.ReplaceAllStringFunc(template, func(match string) string {
		if match == escapedBraces {
			return "{{"
		}
		return vars[match[2:len(match)-2]]
	}), nil
}

// ExtractVariables lists placeholder names in order of first appearance.
func ExtractVariables(template string) []string {
	seen := make(map[string]bool)
	var names []string
	for _, m := range placeholderPattern.FindAllStringSubmatch(template, -1) {
		if m[1] != "" && !seen[m[1]] {
			seen[m[1]] = true
			names = append(names, m[1])
		}
	}
	return names
}

// Reuse fills a generated template with a new objective, whichever slot name it uses.
// Other placeholders are left untouched.
func Reuse(template, objective string) string {
	return placeholderPattern.ReplaceAllStringFunc(template, func(match string) string {
		if match == escapedBraces {
			return "{{"
		}
		switch match[2 : len(match)-2] {
		case objectivePlaceholder, subjectPlaceholder:
			return objective
		}
		return match
	})
}

func missingVariables(template string, vars map[string]string) []string {
	var missing []string
	for _, name := range ExtractVariables(template) {
		if _, ok := vars[name]; !ok {
			missing = append(missing, name)
		}
	}
	return missing
}
