package patch

/*
License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/

import (
	"strings"

	"github.com/npillmayer/cssync/tree"
)

// style is the formatting of a source, learned from existing declarations.
type style struct {
	unit    string // one level of indentation
	colon   string // separator between property name and value
	newline string // line break, or a space for single-line sources
}

func (s style) indent(depth int) string {
	if depth <= 0 {
		return ""
	}
	return strings.Repeat(s.unit, depth)
}

var defaultStyle = style{unit: "\t", colon: ": ", newline: "\n"}

// learner accumulates the formatting of declarations, starting from a base
// style.
type learner struct {
	s                     style
	seenColon, seenIndent bool
	sawProperty           bool
}

// observe learns from a declaration. It returns true once both the
// separator and the indentation are known.
func (l *learner) observe(n *tree.Node) bool {
	l.sawProperty = true
	if !l.seenColon {
		src := n.Tree().Source()
		if sep := src[n.NameRange().End:n.ValueRange().Start]; strings.TrimSpace(sep) == ":" {
			l.s.colon = ":"
			if strings.HasSuffix(sep, " ") || strings.HasSuffix(sep, "\t") {
				l.s.colon = ": "
			}
			l.seenColon = true
		}
	}
	if l.seenIndent {
		return l.seenColon
	}
	ws := leadingSpace(n)
	nl := strings.LastIndexByte(ws, '\n')
	if nl < 0 {
		return false
	}
	ind, d := ws[nl+1:], depth(n)
	if ind != "" && d > 0 && len(ind)%d == 0 {
		l.s.unit = ind[:len(ind)/d]
	}
	l.s.newline = "\n"
	l.seenIndent = true
	return l.seenColon
}

// result is the learned style. Declarations none of which is on a line of
// its own make a single-line style.
func (l *learner) result() style {
	if l.sawProperty && !l.seenIndent {
		l.s.unit, l.s.newline = "", " "
	}
	return l.s
}

// learnStyle inspects the declarations of a tree. The separator is taken
// from the first declaration, the indentation from the first declaration
// on a line of its own. Sources without any such declaration are
// considered single-line.
func learnStyle(t *tree.Tree) style {
	l := learner{s: defaultStyle}
	t.Root().Walk(func(n *tree.Node) bool {
		if l.seenIndent {
			return false
		}
		if n.Kind() == tree.KindProperty && n.Parent().Kind() != tree.KindRoot {
			l.observe(n)
		}
		return true
	})
	s := l.result()
	tracer().Debugf("learned style: indent=%q colon=%q newline=%q", s.unit, s.colon, s.newline)
	return s
}

// styleNear learns the formatting for an edit inside container from the
// nearest section holding declarations. Candidates are the container, its
// nested sections (last first) and its siblings (nearest first), repeated
// for every ancestor. Aspects no donor shows are taken from base.
func styleNear(container *tree.Node, base style) style {
	for n := container; n != nil; n = n.Parent() {
		if s, ok := donorStyle(n, base); ok {
			return s
		}
		for i := n.ChildCount() - 1; i >= 0; i-- {
			if ch, _ := n.Child(i); ch.Kind() == tree.KindSection {
				if s, ok := donorStyle(ch, base); ok {
					return s
				}
			}
		}
		p := n.Parent()
		if p == nil {
			break
		}
		at := p.IndexOfChild(n)
		for dist := 1; dist < p.ChildCount(); dist++ {
			for _, i := range [2]int{at - dist, at + dist} {
				if sib, ok := p.Child(i); ok && sib.Kind() == tree.KindSection {
					if s, ok := donorStyle(sib, base); ok {
						return s
					}
				}
			}
		}
	}
	return base
}

// donorStyle learns from the declarations directly inside a section.
func donorStyle(sect *tree.Node, base style) (style, bool) {
	if sect.Kind() != tree.KindSection {
		return base, false
	}
	l := learner{s: base}
	for _, ch := range sect.Children() {
		if ch.Kind() == tree.KindProperty && l.observe(ch) {
			break
		}
	}
	if !l.sawProperty {
		return base, false
	}
	return l.result(), true
}

// leadingSpace returns the run of whitespace in front of a node.
func leadingSpace(n *tree.Node) string {
	parent := n.Parent()
	if parent == nil || n.Tree() == nil {
		return ""
	}
	src := n.Tree().Source()
	lower := parent.ValueRange().Start
	if i := parent.IndexOfChild(n); i > 0 {
		prev, _ := parent.Child(i - 1)
		lower = prev.End()
	}
	text := src[lower:n.Start()]
	j := len(text)
	for j > 0 && strings.IndexByte(" \t\n\r\f", text[j-1]) >= 0 {
		j--
	}
	return text[j:]
}
