package prompt

import "strings"

// composer writes the final prompt and its template side by side. Literal text goes to
// both outputs; slot values go to the final prompt while the template receives the
// placeholder, so slot positions are known at construction time. Literal text is
// escaped in the template so user braces never read as placeholders.
type composer struct {
	final       strings.Builder
	template    strings.Builder
	placeholder string
}

func newComposer(slotName string) *composer {
	return &composer{placeholder: "{{" + slotName + "}}"}
}

type part struct {
	value string
	slot  bool
}

func lit(s string) part  { return part{value: s} }
func slot(s string) part { return part{value: s, slot: true} }

func (c *composer) write(p part) {
	c.final.WriteString(p.value)
	if p.slot {
		c.template.WriteString(c.placeholder)
		return
	}
	c.template.WriteString(EscapeBraces(p.value))
}

func (c *composer) text(s string) {
	c.write(lit(s))
}

// join writes the non-empty parts separated by sep.
func (c *composer) join(sep string, parts []part) {
	first := true
	for _, p := range parts {
		if p.value == "" {
			continue
		}
		if !first {
			c.text(sep)
		}
		c.write(p)
		first = false
	}
}

func (c *composer) result() (string, string) {
	return c.final.String(), c.template.String()
}

func nonEmpty(parts []part) bool {
	for _, p := range parts {
		if p.value != "" {
			return true
		}
	}
	return false
}
