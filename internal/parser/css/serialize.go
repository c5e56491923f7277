package css

import (
	"strings"
)

// String renders the stylesheet back to CSS text
func (s *Stylesheet) String() string {
	var b strings.Builder
	for i, rule := range s.Rules {
		if i > 0 {
			b.WriteByte('\n')
		}
		rule.write(&b, 0)
	}
	return b.String()
}

// Append adds the rules of other to the stylesheet
func (s *Stylesheet) Append(other *Stylesheet) {
	if other == nil {
		return
	}
	s.Rules = append(s.Rules, other.Rules...)
}

// Find returns the first rule whose selector list contains selector
func (s *Stylesheet) Find(selector string) *Rule {
	for _, rule := range s.Rules {
		for _, sel := range rule.Selectors {
			if sel == selector {
				return rule
			}
		}
	}
	return nil
}

// Get returns the value of the last declaration of property in the rule
func (r *Rule) Get(property string) (string, bool) {
	for i := len(r.Declarations) - 1; i >= 0; i-- {
		if r.Declarations[i].Property == property {
			return r.Declarations[i].Value, true
		}
	}
	return "", false
}

// String renders a single declaration
func (d *Declaration) String() string {
	s := d.Property + ": " + d.Value
	if d.Important {
		s += " !important"
	}
	return s + ";"
}

func (r *Rule) write(b *strings.Builder, depth int) {
	indent := strings.Repeat("  ", depth)
	b.WriteString(indent)
	b.WriteString(strings.Join(r.Selectors, ", "))
	b.WriteString(" {\n")
	for _, d := range r.Declarations {
		b.WriteString(indent)
		b.WriteString("  ")
		b.WriteString(d.String())
		b.WriteByte('\n')
	}
	for _, nested := range r.Rules {
		b.WriteByte('\n')
		nested.write(b, depth+1)
	}
	b.WriteString(indent)
	b.WriteString("}\n")
}

// Quote returns s as a double-quoted CSS string
func Quote(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\A `)
	return `"` + r.Replace(s) + `"`
}
