// Package style computes CSS styles for the HTML form of document blocks.
// It is used by the measurer to size blocks the way the editor renders them.
package style

import (
	"strconv"
	"strings"

	"github.com/gompdf/pagedit/internal/parser/css"
	"github.com/gompdf/pagedit/internal/parser/html"
	xhtml "golang.org/x/net/html"
)

// DefaultFontSize is the browser default font size in CSS pixels
const DefaultFontSize = 16.0

// Specificity represents the specificity of a CSS selector
type Specificity struct {
	ID      int
	Class   int
	Element int
}

// StyleProperty represents a computed style property
type StyleProperty struct {
	Name        string
	Value       string
	Important   bool
	Source      Source
	Specificity Specificity
}

// Source represents the source of a style property
type Source int

const (
	SourceInherited Source = iota
	SourceUserAgent
	SourceAuthor
	SourceInline
)

// inherited lists the properties a child takes from its parent when it
// declares none of its own.
var inherited = []string{
	"font-family", "font-size", "font-weight", "font-style", "line-height",
	"text-align", "color", "white-space", "direction",
}

// ComputedStyle represents the computed style for an element
type ComputedStyle map[string]StyleProperty

// Get returns the value of a property or "" when unset
func (s ComputedStyle) Get(name string) string {
	return strings.TrimSpace(s[name].Value)
}

// FontSize returns the computed font size in pixels
func (s ComputedStyle) FontSize() float64 {
	if v, ok := Length(s.Get("font-size"), DefaultFontSize, 0); ok && v > 0 {
		return v
	}
	return DefaultFontSize
}

// LineHeight returns the computed line height in pixels
func (s ComputedStyle) LineHeight() float64 {
	fs := s.FontSize()
	v := s.Get("line-height")
	if v == "" || v == "normal" {
		return 1.2 * fs
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return f * fs
	}
	if px, ok := Length(v, fs, fs); ok {
		return px
	}
	return 1.2 * fs
}

// Box returns the top, right, bottom and left pixel values of a box
// property such as margin or padding, merging the shorthand with the
// per-side longhands.
func (s ComputedStyle) Box(property string, container float64) (top, right, bottom, left float64) {
	fs := s.FontSize()
	top, right, bottom, left = parseBoxShorthand(s.Get(property), fs, container)
	side := func(name string, v *float64) {
		if raw := s.Get(property + "-" + name); raw != "" {
			if px, ok := Length(raw, fs, container); ok {
				*v = px
			}
		}
	}
	side("top", &top)
	side("right", &right)
	side("bottom", &bottom)
	side("left", &left)
	return top, right, bottom, left
}

// BorderWidths returns the widths of the four borders in pixels
func (s ComputedStyle) BorderWidths() (top, right, bottom, left float64) {
	width := func(v string) float64 {
		for _, part := range strings.Fields(v) {
			if part == "none" || part == "hidden" {
				return 0
			}
			if px, ok := Length(part, s.FontSize(), 0); ok {
				return px
			}
		}
		return 0
	}
	all := width(s.Get("border"))
	top, right, bottom, left = all, all, all, all
	for name, v := range map[string]*float64{"top": &top, "right": &right, "bottom": &bottom, "left": &left} {
		if raw := s.Get("border-" + name); raw != "" {
			*v = width(raw)
		}
	}
	return top, right, bottom, left
}

// StyleEngine handles the CSS cascade and style computation
type StyleEngine struct {
	userAgentStyles *css.Stylesheet
	authorStyles    []*css.Stylesheet
}

// NewStyleEngine creates a style engine using the editor's content styles
// as the user agent stylesheet
func NewStyleEngine() *StyleEngine {
	return &StyleEngine{userAgentStyles: ContentStylesheet()}
}

// AddStylesheet adds an author stylesheet to the style engine
func (e *StyleEngine) AddStylesheet(stylesheet *css.Stylesheet) {
	if stylesheet != nil {
		e.authorStyles = append(e.authorStyles, stylesheet)
	}
}

// ComputeStyles computes styles for root and all of its element descendants
func (e *StyleEngine) ComputeStyles(root *html.Node) map[*html.Node]ComputedStyle {
	result := make(map[*html.Node]ComputedStyle)
	e.computeStylesRecursive(root, nil, result)
	return result
}

func (e *StyleEngine) computeStylesRecursive(node *html.Node, parent ComputedStyle, result map[*html.Node]ComputedStyle) {
	if node == nil {
		return
	}

	current := parent
	if node.Type == xhtml.ElementNode {
		current = e.computeStyleForElement(node, parent)
		result[node] = current
	}

	for child := node.FirstChild; child != nil; child = child.NextSibling {
		e.computeStylesRecursive(child, current, result)
	}
}

// computeStyleForElement computes the style for a single element
func (e *StyleEngine) computeStyleForElement(node *html.Node, parent ComputedStyle) ComputedStyle {
	style := make(ComputedStyle)

	e.applyStylesheet(style, node, e.userAgentStyles, SourceUserAgent)
	for _, stylesheet := range e.authorStyles {
		e.applyStylesheet(style, node, stylesheet, SourceAuthor)
	}
	e.applyInlineStyles(style, node)

	parentSize := DefaultFontSize
	if parent != nil {
		parentSize = parent.FontSize()
	}
	// relative font sizes resolve against the parent so children do not compound them
	if fs := style.Get("font-size"); fs != "" {
		if px, ok := Length(fs, parentSize, parentSize); ok {
			p := style["font-size"]
			p.Value = formatPx(px)
			style["font-size"] = p
		}
	}

	for _, name := range inherited {
		if _, ok := style[name]; ok {
			continue
		}
		if p, ok := parent[name]; ok {
			p.Source = SourceInherited
			p.Specificity = Specificity{}
			style[name] = p
		}
	}
	return style
}

// applyStylesheet applies styles from a stylesheet to an element
func (e *StyleEngine) applyStylesheet(style ComputedStyle, node *html.Node, stylesheet *css.Stylesheet, source Source) {
	if stylesheet == nil {
		return
	}
	for _, rule := range stylesheet.Rules {
		for _, selector := range rule.Selectors {
			if strings.HasPrefix(selector, "@") {
				continue
			}
			if selectorMatches(node, selector) {
				e.applyDeclarations(style, rule.Declarations, calculateSpecificity(selector), source)
			}
		}
	}
}

// applyInlineStyles applies the style attribute of an element
func (e *StyleEngine) applyInlineStyles(style ComputedStyle, node *html.Node) {
	attr, ok := node.GetAttr("style")
	if !ok || strings.TrimSpace(attr) == "" {
		return
	}
	inlineStyles, err := css.NewParser().ParseString("inline { " + attr + " }")
	if err != nil || len(inlineStyles.Rules) == 0 {
		return
	}
	e.applyDeclarations(style, inlineStyles.Rules[0].Declarations, Specificity{ID: 1}, SourceInline)
}

// applyDeclarations applies CSS declarations to a style. A declaration wins
// over the existing value when it is more important, or equally important
// and from a later origin, or from the same origin with at least the same
// specificity.
func (e *StyleEngine) applyDeclarations(style ComputedStyle, declarations []*css.Declaration, specificity Specificity, source Source) {
	for _, decl := range declarations {
		existing, exists := style[decl.Property]

		wins := !exists ||
			(decl.Important && !existing.Important) ||
			(decl.Important == existing.Important && source > existing.Source) ||
			(decl.Important == existing.Important && source == existing.Source &&
				compareSpecificity(specificity, existing.Specificity) >= 0)
		if !wins {
			continue
		}
		style[decl.Property] = StyleProperty{
			Name:        decl.Property,
			Value:       decl.Value,
			Important:   decl.Important,
			Source:      source,
			Specificity: specificity,
		}
	}
}

// selectorMatches checks if an element matches a descendant selector
func selectorMatches(node *html.Node, selector string) bool {
	parts := strings.Fields(selector)
	if len(parts) == 0 || node == nil {
		return false
	}
	if !matchCompoundSelector(node, parts[len(parts)-1]) {
		return false
	}

	current := node.Parent
	for i := len(parts) - 2; i >= 0; i-- {
		found := false
		for anc := current; anc != nil; anc = anc.Parent {
			if anc.Type == xhtml.ElementNode && matchCompoundSelector(anc, parts[i]) {
				found = true
				current = anc.Parent
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// matchCompoundSelector matches a single compound selector against a node.
// Compound selectors can be forms like:
//   - tag
//   - .class
//   - #id
//   - [attr]
//   - tag#id.class1.class2[attr]
//
// Pseudo-classes and combinators other than descendant are not supported.
func matchCompoundSelector(node *html.Node, sel string) bool {
	if node == nil || node.Type != xhtml.ElementNode || sel == "" {
		return false
	}

	var wantTag, wantID string
	var wantClasses, wantAttrs []string

	stop := func(c byte) bool { return c == '#' || c == '.' || c == '[' }

	i := 0
	if !stop(sel[0]) {
		j := i
		for j < len(sel) && !stop(sel[j]) {
			j++
		}
		wantTag = sel[i:j]
		i = j
	}
	for i < len(sel) {
		switch sel[i] {
		case '#', '.':
			j := i + 1
			for j < len(sel) && !stop(sel[j]) {
				j++
			}
			if sel[i] == '#' {
				wantID = sel[i+1 : j]
			} else {
				wantClasses = append(wantClasses, sel[i+1:j])
			}
			i = j
		case '[':
			end := strings.IndexByte(sel[i:], ']')
			if end < 0 {
				return false
			}
			// only presence tests; [a=b] compares nothing
			name, _, _ := strings.Cut(sel[i+1:i+end], "=")
			wantAttrs = append(wantAttrs, strings.TrimSpace(name))
			i += end + 1
		default:
			return false
		}
	}

	if strings.ContainsRune(wantTag, ':') {
		return false
	}
	if wantTag != "" && wantTag != "*" && !strings.EqualFold(wantTag, node.Data) {
		return false
	}
	if wantID != "" {
		if id, _ := node.GetAttr("id"); id != wantID {
			return false
		}
	}
	for _, a := range wantAttrs {
		if _, ok := node.GetAttr(a); !ok {
			return false
		}
	}
	if len(wantClasses) > 0 {
		classAttr, _ := node.GetAttr("class")
		have := make(map[string]struct{})
		for _, c := range strings.Fields(classAttr) {
			have[c] = struct{}{}
		}
		for _, need := range wantClasses {
			if _, ok := have[need]; !ok {
				return false
			}
		}
	}
	return true
}

// calculateSpecificity calculates the specificity of a CSS selector
func calculateSpecificity(selector string) Specificity {
	specificity := Specificity{}

	specificity.ID = strings.Count(selector, "#")
	specificity.Class = strings.Count(selector, ".") +
		strings.Count(selector, "[") +
		strings.Count(selector, ":")

	for _, part := range strings.Fields(selector) {
		if part != "" && part[0] != '#' && part[0] != '.' && part[0] != '[' && part[0] != '*' {
			specificity.Element++
		}
	}
	return specificity
}

// compareSpecificity compares two specificities
func compareSpecificity(a, b Specificity) int {
	if a.ID != b.ID {
		return a.ID - b.ID
	}
	if a.Class != b.Class {
		return a.Class - b.Class
	}
	return a.Element - b.Element
}
