package render

import (
	"html"
	"regexp"
	"strings"
)

var placeholderPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// Template is an HTML fragment with ${field} placeholders.
type Template struct {
	source   string
	literals []string
	fields   []string
}

// ParseTemplate splits source into literal text and placeholders.
// Text that looks like a placeholder but isn't a valid field name is kept
// verbatim.
func ParseTemplate(source string) *Template {
	t := &Template{source: source}
	last := 0
	for _, loc := range placeholderPattern.FindAllStringSubmatchIndex(source, -1) {
		t.literals = append(t.literals, source[last:loc[0]])
		t.fields = append(t.fields, source[loc[2]:loc[3]])
		last = loc[1]
	}
	t.literals = append(t.literals, source[last:])
	return t
}

// Source returns the unparsed template.
func (t *Template) Source() string {
	return t.source
}

// Execute substitutes HTML-escaped field values. Missing fields render empty.
func (t *Template) Execute(fields map[string]string) string {
	var b strings.Builder
	b.Grow(len(t.source))
	for i, field := range t.fields {
		b.WriteString(t.literals[i])
		b.WriteString(html.EscapeString(fields[field]))
	}
	b.WriteString(t.literals[len(t.literals)-1])
	return b.String()
}
