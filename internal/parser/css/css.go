package css

import (
	"errors"
	"io"
	"strings"
)

// Parser represents a CSS parser
type Parser struct{}

// Rule represents a CSS rule. At-rules such as @page keep their prelude in
// Selectors and may carry nested rules (for example @top-center margin boxes).
type Rule struct {
	Selectors    []string
	Declarations []*Declaration
	Rules        []*Rule
}

// Declaration represents a CSS declaration (property-value pair)
type Declaration struct {
	Property  string
	Value     string
	Important bool
}

// Stylesheet represents a parsed CSS stylesheet
type Stylesheet struct {
	Rules []*Rule
}

// NewParser creates a new CSS parser
func NewParser() *Parser {
	return &Parser{}
}

// ParseString parses CSS from a string
func (p *Parser) ParseString(content string) (*Stylesheet, error) {
	return p.Parse(strings.NewReader(content))
}

// Parse parses CSS from an io.Reader
func (p *Parser) Parse(r io.Reader) (*Stylesheet, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return p.parseCSS(string(content))
}

// parseCSS parses CSS content
func (p *Parser) parseCSS(content string) (*Stylesheet, error) {
	stylesheet := &Stylesheet{
		Rules: []*Rule{},
	}

	content = removeComments(content)
	for _, ruleStr := range splitRules(content) {
		rule, err := p.parseRule(ruleStr)
		if err != nil {
			continue // Skip invalid rules
		}
		stylesheet.Rules = append(stylesheet.Rules, rule)
	}

	return stylesheet, nil
}

// parseRule parses a single CSS rule, recursing into nested blocks
func (p *Parser) parseRule(ruleStr string) (*Rule, error) {
	open := strings.IndexByte(ruleStr, '{')
	if open < 0 || !strings.HasSuffix(ruleStr, "}") {
		return nil, errors.New("invalid rule format")
	}

	selectorStr := strings.TrimSpace(ruleStr[:open])
	body := strings.TrimSpace(ruleStr[open+1 : len(ruleStr)-1])

	selectors := parseSelectors(selectorStr)
	if len(selectors) == 0 {
		return nil, errors.New("no selectors found")
	}

	rule := &Rule{Selectors: selectors}

	flat, nested := splitBody(body)
	rule.Declarations = parseDeclarations(flat)
	for _, n := range nested {
		child, err := p.parseRule(n)
		if err != nil {
			continue
		}
		rule.Rules = append(rule.Rules, child)
	}

	return rule, nil
}

// parseSelectors parses CSS selectors
func parseSelectors(selectorStr string) []string {
	selectors := strings.Split(selectorStr, ",")
	result := make([]string, 0, len(selectors))

	for _, selector := range selectors {
		selector = strings.Join(strings.Fields(selector), " ")
		if selector != "" {
			result = append(result, selector)
		}
	}

	return result
}

// parseDeclarations parses CSS declarations
func parseDeclarations(declarationsStr string) []*Declaration {
	declarationStrings := splitOutsideQuotes(declarationsStr, ';')
	result := make([]*Declaration, 0, len(declarationStrings))

	for _, declStr := range declarationStrings {
		declStr = strings.TrimSpace(declStr)
		if declStr == "" {
			continue
		}

		parts := strings.SplitN(declStr, ":", 2)
		if len(parts) != 2 {
			continue
		}

		property := strings.ToLower(strings.TrimSpace(parts[0]))
		value := strings.TrimSpace(parts[1])

		important := false
		if strings.HasSuffix(value, "!important") {
			important = true
			value = strings.TrimSpace(strings.TrimSuffix(value, "!important"))
		}

		result = append(result, &Declaration{
			Property:  property,
			Value:     value,
			Important: important,
		})
	}

	return result
}

// splitBody separates the declarations of a block from nested rule blocks
func splitBody(body string) (string, []string) {
	var flat strings.Builder
	var nested []string
	var current strings.Builder
	depth := 0
	var quote byte

	// start of the current statement inside flat, so a nested prelude can be
	// moved out of the declaration text once its '{' is seen
	stmtStart := 0

	for i := 0; i < len(body); i++ {
		c := body[i]
		if quote != 0 {
			if depth > 0 {
				current.WriteByte(c)
			} else {
				flat.WriteByte(c)
			}
			if c == quote && (i == 0 || body[i-1] != '\\') {
				quote = 0
			}
			continue
		}
		switch {
		case c == '"' || c == '\'':
			quote = c
		case c == '{':
			if depth == 0 {
				prelude := flat.String()[stmtStart:]
				rest := flat.String()[:stmtStart]
				flat.Reset()
				flat.WriteString(rest)
				current.WriteString(strings.TrimSpace(prelude))
			}
			depth++
			current.WriteByte(c)
			continue
		case c == '}':
			depth--
			current.WriteByte(c)
			if depth == 0 {
				nested = append(nested, current.String())
				current.Reset()
				stmtStart = flat.Len()
			}
			continue
		}
		if depth > 0 {
			current.WriteByte(c)
			continue
		}
		flat.WriteByte(c)
		if c == ';' {
			stmtStart = flat.Len()
		}
	}

	return flat.String(), nested
}

// splitOutsideQuotes splits s on sep, ignoring separators inside quotes
func splitOutsideQuotes(s string, sep byte) []string {
	var parts []string
	var quote byte
	start := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case quote != 0:
			if c == quote && s[i-1] != '\\' {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == sep:
			parts = append(parts, s[start:i])
			start = i + 1
		}
	}
	return append(parts, s[start:])
}

// removeComments removes CSS comments
func removeComments(content string) string {
	var result strings.Builder
	i := 0

	for i < len(content) {
		if i+1 < len(content) && content[i] == '/' && content[i+1] == '*' {
			commentEnd := strings.Index(content[i+2:], "*/")
			if commentEnd == -1 {
				break
			}
			i += commentEnd + 4
		} else {
			result.WriteByte(content[i])
			i++
		}
	}

	return result.String()
}

// splitRules splits CSS content into individual top-level rules
func splitRules(content string) []string {
	var rules []string
	var currentRule strings.Builder
	braceCount := 0
	var quote byte

	for i := 0; i < len(content); i++ {
		char := content[i]

		if quote != 0 {
			currentRule.WriteByte(char)
			if char == quote && content[i-1] != '\\' {
				quote = 0
			}
			continue
		}

		switch char {
		case '"', '\'':
			quote = char
		case '{':
			braceCount++
		case '}':
			braceCount--
			if braceCount == 0 {
				currentRule.WriteByte(char)
				rules = append(rules, strings.TrimSpace(currentRule.String()))
				currentRule.Reset()
				continue
			}
		}

		if braceCount > 0 || !isWhitespace(char) || currentRule.Len() > 0 {
			currentRule.WriteByte(char)
		}
	}

	return rules
}

// isWhitespace checks if a character is whitespace
func isWhitespace(char byte) bool {
	return char == ' ' || char == '\t' || char == '\n' || char == '\r'
}
