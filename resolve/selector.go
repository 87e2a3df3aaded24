package resolve

/*
License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/

import (
	"strings"

	"github.com/gorilla/css/scanner"
	"github.com/npillmayer/cssync/locator"
)

// fragments decomposes a single selector into simple selectors and
// combinators. Combinators are returned as " ", ">", "+" or "~".
//
//	"ul > li.item:hover a"  =>  [ul > li .item :hover " " a]
func fragments(sel string) []string {
	f := &fragmenter{}
	s := scanner.New(sel)
	for tok := s.Next(); ; tok = s.Next() {
		switch tok.Type {
		case scanner.TokenEOF:
			f.end()
			return f.frags
		case scanner.TokenError:
			return []string{strings.TrimSpace(sel)}
		case scanner.TokenS, scanner.TokenComment:
			f.end()
			f.space = true
		case scanner.TokenHash:
			f.start(tok.Value)
		case scanner.TokenChar:
			f.char(tok.Value, s)
		case scanner.TokenFunction:
			if f.cur.Len() == 0 {
				f.start("")
			}
			f.cur.WriteString(tok.Value)
			f.group(s, "(", ")")
		case scanner.TokenIdent, scanner.TokenNumber, scanner.TokenPercentage, scanner.TokenDimension:
			if f.cur.Len() > 0 {
				f.cur.WriteString(tok.Value)
			} else {
				f.start(tok.Value)
			}
		default:
			f.cur.WriteString(tok.Value)
		}
	}
}

type fragmenter struct {
	frags []string
	cur   strings.Builder
	space bool // whitespace seen since the last simple selector
}

// start begins a new simple selector.
func (f *fragmenter) start(text string) {
	f.end()
	if f.space && len(f.frags) > 0 && !isCombinator(f.frags[len(f.frags)-1]) {
		f.frags = append(f.frags, " ")
	}
	f.space = false
	f.cur.WriteString(text)
}

func (f *fragmenter) end() {
	if f.cur.Len() > 0 {
		f.frags = append(f.frags, f.cur.String())
		f.cur.Reset()
	}
}

func (f *fragmenter) char(c string, s *scanner.Scanner) {
	switch c {
	case ">", "+", "~":
		f.end()
		f.frags = append(f.frags, c)
		f.space = false
	case ":":
		if f.cur.String() == ":" { // pseudo element
			f.cur.WriteString(c)
			return
		}
		f.start(c)
	case ".", "%", "&", "*", "#":
		f.start(c)
	case "[":
		f.start(c)
		f.group(s, "[", "]")
		f.end()
	case "(":
		f.cur.WriteString(c)
		f.group(s, "(", ")")
	default:
		f.cur.WriteString(c)
	}
}

// group copies tokens up to and including the closing bracket.
func (f *fragmenter) group(s *scanner.Scanner, open, close string) {
	depth := 1
	for tok := s.Next(); tok.Type != scanner.TokenEOF && tok.Type != scanner.TokenError; tok = s.Next() {
		switch {
		case tok.Type == scanner.TokenFunction && open == "(":
			depth++
		case tok.Type == scanner.TokenChar && tok.Value == open:
			depth++
		case tok.Type == scanner.TokenChar && tok.Value == close:
			depth--
		}
		f.cur.WriteString(tok.Value)
		if depth == 0 {
			return
		}
	}
}

func isCombinator(s string) bool {
	return s == " " || s == ">" || s == "+" || s == "~"
}

// joinFragments renders fragments as a normalized selector.
func joinFragments(frags []string) string {
	var b strings.Builder
	for _, fr := range frags {
		switch fr {
		case " ":
			b.WriteByte(' ')
		case ">", "+", "~":
			b.WriteString(" " + fr + " ")
		default:
			b.WriteString(fr)
		}
	}
	return locator.NormalizeName(b.String())
}

// indexFragments returns the positions at which pattern occurs as a
// contiguous run of fragments in frags.
func indexFragments(frags, pattern []string) []int {
	var at []int
	if len(pattern) == 0 {
		return at
	}
outer:
	for i := 0; i+len(pattern) <= len(frags); i++ {
		for j := range pattern {
			if frags[i+j] != pattern[j] {
				continue outer
			}
		}
		at = append(at, i)
	}
	return at
}

// --- Selector lists and nesting --------------------------------------------

// splitList splits text at top-level commas, outside of brackets and
// strings, trimming the parts and dropping empty ones.
func splitList(text string) []string {
	return splitTop(text, ',')
}

func splitTop(text string, sep byte) []string {
	var parts []string
	depth, start := 0, 0
	add := func(s string) {
		if s = strings.TrimSpace(s); s != "" {
			parts = append(parts, s)
		}
	}
	for i := 0; i < len(text); i++ {
		switch c := text[i]; c {
		case '\\':
			i++
		case '"', '\'':
			if j := strings.IndexByte(text[i+1:], c); j >= 0 {
				i += j + 1
			}
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		default:
			if c == sep && depth == 0 {
				add(text[start:i])
				start = i + 1
			}
		}
	}
	add(text[start:])
	return parts
}

// hasTop is true if sep occurs in text outside of brackets and strings.
func hasTop(text string, sep byte) bool {
	return len(splitTop("x"+text+"x", sep)) > 1
}

// nest combines the selectors of an enclosing rule with the selectors of a
// nested rule. Selectors containing `&` substitute the parent selectors
// positionally, enumerating every combination; other selectors are
// prefixed by each parent selector. LESS orders the result by child
// selector, SCSS by parent selector.
func nest(parents, children []string, syntax Syntax) []string {
	if len(parents) == 0 {
		out := make([]string, 0, len(children))
		for _, c := range children {
			if s := locator.NormalizeName(strings.ReplaceAll(c, "&", "")); s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	var out []string
	seen := make(map[string]bool)
	add := func(s string) {
		s = locator.NormalizeName(s)
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	if syntax == SCSS {
		for _, p := range parents {
			for _, c := range children {
				if strings.Contains(c, "&") {
					for _, s := range substitute(c, []string{p}) {
						add(s)
					}
				} else {
					add(p + " " + c)
				}
			}
		}
		return out
	}
	for _, c := range children {
		if strings.Contains(c, "&") {
			for _, s := range substitute(c, parents) {
				add(s)
			}
			continue
		}
		for _, p := range parents {
			add(p + " " + c)
		}
	}
	return out
}

// substitute replaces every `&` in sel by each of parents, producing the
// full replacement matrix: a selector with k ampersands yields
// len(parents)^k selectors.
func substitute(sel string, parents []string) []string {
	parts := strings.Split(sel, "&")
	acc := []string{parts[0]}
	for _, part := range parts[1:] {
		next := make([]string, 0, len(acc)*len(parents))
		for _, a := range acc {
			for _, p := range parents {
				next = append(next, a+p+part)
			}
		}
		acc = next
	}
	return acc
}

// combineQueries joins the queries of nested media blocks with `and`.
func combineQueries(outer, inner []string) []string {
	if len(outer) == 0 {
		return inner
	}
	out := make([]string, 0, len(outer)*len(inner))
	for _, o := range outer {
		for _, i := range inner {
			out = append(out, o+" and "+i)
		}
	}
	return out
}
