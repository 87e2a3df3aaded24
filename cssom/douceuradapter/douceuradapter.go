/*
Package douceuradapter is a concrete implementation of interface cssom.StyleSheet.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>
*/
package douceuradapter

import (
	"strings"

	"github.com/aymerick/douceur/css"
	"github.com/aymerick/douceur/parser"
	"github.com/npillmayer/cssync/cssom"
	"github.com/npillmayer/cssync/resolve"
	"github.com/npillmayer/cssync/tree"
	"github.com/npillmayer/schuko/tracing"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// tracer traces with key 'cssync.cssom'.
func tracer() tracing.Trace {
	return tracing.Select("cssync.cssom")
}

// CSSStyles is an adapter for interface cssom.StyleSheet.
type CSSStyles struct {
	css css.Stylesheet
}

// Wrap a douceur.css.Stylesheet into CssStyles.
// The stylesheet is now managed by the wrapper.
func Wrap(css *css.Stylesheet) *CSSStyles {
	sheet := &CSSStyles{*css}
	return sheet
}

// Parse reads plain CSS text into a stylesheet.
func Parse(text string) (*CSSStyles, error) {
	sheet, err := parser.Parse(text)
	if err != nil {
		return nil, err
	}
	return Wrap(sheet), nil
}

// FromResolved converts a resolved tree into a stylesheet. Declarations at
// the top level of the tree, which have no CSS equivalent, are skipped.
func FromResolved(root *resolve.Node) *CSSStyles {
	sheet := &CSSStyles{}
	sheet.css.Rules = convertRules(root, 0)
	tracer().Debugf("converted resolved tree into %d rules", len(sheet.css.Rules))
	return sheet
}

func convertRules(n *resolve.Node, level int) []*css.Rule {
	var rules []*css.Rule
	for _, ch := range n.Children() {
		switch ch.Kind() {
		case tree.KindAtRule:
			r := css.NewRule(css.AtRule)
			r.Name, r.Prelude, r.EmbedLevel = ch.Name(), ch.Value(), level
			rules = append(rules, r)
		case tree.KindSection:
			var r *css.Rule
			if strings.HasPrefix(ch.Name(), "@") {
				r = css.NewRule(css.AtRule)
				r.Name, r.Prelude = splitAtRule(ch.Name())
				r.Rules = convertRules(ch, level+1)
			} else {
				r = css.NewRule(css.QualifiedRule)
				r.Prelude = ch.Name()
				r.Selectors = splitSelectors(ch.Name())
			}
			r.EmbedLevel = level
			for _, prop := range ch.Properties() {
				r.Declarations = append(r.Declarations, declaration(prop.Name(), prop.Value()))
			}
			rules = append(rules, r)
		}
	}
	return rules
}

func declaration(name, value string) *css.Declaration {
	d := css.NewDeclaration()
	d.Property, d.Value = name, value
	if v := strings.TrimSpace(strings.TrimSuffix(value, "!important")); v != value {
		d.Value, d.Important = v, true
	}
	return d
}

func splitAtRule(head string) (string, string) {
	if i := strings.IndexAny(head, " \t\n("); i > 0 {
		return head[:i], strings.TrimSpace(head[i:])
	}
	return head, ""
}

// splitSelectors splits a selector list at top-level commas.
func splitSelectors(prelude string) []string {
	var sels []string
	depth, start := 0, 0
	for i := 0; i < len(prelude); i++ {
		switch prelude[i] {
		case '(', '[':
			depth++
		case ')', ']':
			depth--
		case ',':
			if depth == 0 {
				sels = append(sels, strings.TrimSpace(prelude[start:i]))
				start = i + 1
			}
		}
	}
	return append(sels, strings.TrimSpace(prelude[start:]))
}

// Empty checks if this stylesheet contains any rules.
//
// Interface cssom.StyleSheet
func (sheet *CSSStyles) Empty() bool {
	return len(sheet.css.Rules) == 0
}

// AppendRules appends rules from another stylesheet.
//
// Interface cssom.StyleSheet
func (sheet *CSSStyles) AppendRules(other cssom.StyleSheet) {
	if othercss, ok := other.(*CSSStyles); ok {
		sheet.css.Rules = append(sheet.css.Rules, othercss.css.Rules...)
		return
	}
	tracer().Errorf("cannot append rules of foreign stylesheet type %T", other)
}

// Rules returns all the rules of a stylesheet.
//
// Interface cssom.StyleSheet
func (sheet *CSSStyles) Rules() []cssom.Rule {
	return wrapRules(sheet.css.Rules)
}

// String renders the stylesheet as CSS text.
//
// Interface cssom.StyleSheet
func (sheet *CSSStyles) String() string {
	return sheet.css.String()
}

func wrapRules(list []*css.Rule) []cssom.Rule {
	rules := make([]cssom.Rule, len(list))
	for i, r := range list {
		rules[i] = Rule(*r)
	}
	return rules
}

var _ cssom.StyleSheet = &CSSStyles{}

// Rule is an adapter for interface cssom.Rule.
type Rule css.Rule

// Selector returns the prelude / selectors of the rule. For at-rules, the
// at-keyword is included.
func (r Rule) Selector() string {
	if r.Kind == css.AtRule {
		return strings.TrimSpace(r.Name + " " + r.Prelude)
	}
	return r.Prelude
}

// Properties returns the property keys of a rule,
// e.g. "margin-top"
func (r Rule) Properties() []string {
	decl := r.Declarations
	props := make([]string, 0, len(decl))
	for _, d := range decl {
		props = append(props, d.Property)
	}
	return props
}

// Value returns the property values for given key with this rule, e.g. "15px"
func (r Rule) Value(key string) string {
	for _, d := range r.Declarations {
		if d.Property == key {
			return d.Value
		}
	}
	return ""
}

// IsImportant returns true if a style key is marked as important ("!").
func (r Rule) IsImportant(key string) bool {
	for _, d := range r.Declarations {
		if d.Property == key {
			return d.Important
		}
	}
	return false
}

// Embedded returns the embedded rules of an at-rule.
func (r Rule) Embedded() []cssom.Rule {
	return wrapRules(r.Rules)
}

var _ cssom.Rule = &Rule{}

// StyleSources visits an HTML parse tree and returns the text content of
// all embedded <style> elements in document order.
func StyleSources(htmldoc *html.Node) []string {
	var sources []string
	var visit func(h *html.Node)
	visit = func(h *html.Node) {
		if h.Type == html.ElementNode && h.DataAtom == atom.Style {
			var b strings.Builder
			for ch := h.FirstChild; ch != nil; ch = ch.NextSibling {
				if ch.Type == html.TextNode {
					b.WriteString(ch.Data)
				}
			}
			sources = append(sources, b.String())
			return
		}
		for ch := h.FirstChild; ch != nil; ch = ch.NextSibling {
			visit(ch)
		}
	}
	if htmldoc != nil {
		visit(htmldoc)
	}
	return sources
}

// ExtractStyleElements searches an HTML parse tree for embedded <style>s.
// It returns the content of style-elements as style sheets. Style elements
// which fail to parse are skipped.
func ExtractStyleElements(htmldoc *html.Node) []*CSSStyles {
	var sheets []*CSSStyles
	for _, src := range StyleSources(htmldoc) {
		c, err := Parse(src)
		if err != nil {
			tracer().Infof("skipping style element: %v", err)
			continue
		}
		sheets = append(sheets, c)
	}
	return sheets
}
