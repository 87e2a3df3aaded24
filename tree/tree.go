package tree

/*
License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/

import (
	"fmt"
	"sync"

	"github.com/xlab/treeprint"
)

// Tree is a source tree for a stylesheet. It owns the backing source string
// and an arena of all attached nodes.
type Tree struct {
	src   string
	root  *Node
	arena []*Node
	rev   uint64     // incremented with every edit
	mu    sync.Mutex // guards node memos and annotations
}

// Build tokenizes and parses a stylesheet source. It fails with a
// *ParseError if the source is malformed; no partial tree is returned.
func Build(source string) (*Tree, error) {
	tokens, err := Tokenize(source)
	if err != nil {
		return nil, err
	}
	t := &Tree{src: source}
	t.root = newNode(KindRoot, t)
	t.root.value = Range{Start: 0, End: len(source)}
	t.root.end = len(source)
	t.arena = append(t.arena, t.root)
	p := &parser{tree: t, tokens: tokens}
	if err := p.parseBody(t.root, -1); err != nil {
		return nil, err
	}
	tracer().Debugf("built tree with %d nodes from %d tokens", len(t.arena), len(tokens))
	return t, nil
}

// MustBuild is like Build, but panics on parse errors. It is intended for
// sources known to be well-formed, e.g. in tests.
func MustBuild(source string) *Tree {
	t, err := Build(source)
	if err != nil {
		panic(fmt.Sprintf("tree: %v", err))
	}
	return t
}

// Root returns the root node of the tree.
func (t *Tree) Root() *Node {
	return t.root
}

// Source returns the current backing source of the tree.
func (t *Tree) Source() string {
	return t.src
}

// Revision returns a counter which changes with every edit of the tree.
func (t *Tree) Revision() uint64 {
	return t.rev
}

// Size returns the number of nodes attached to the tree, including the root.
func (t *Tree) Size() int {
	return len(t.arena)
}

// Dump renders the tree structure for debugging purposes.
func (t *Tree) Dump() string {
	tp := treeprint.New()
	tp.SetValue("root")
	for _, ch := range t.root.children {
		dumpNode(tp, ch)
	}
	return tp.String()
}

func dumpNode(tp treeprint.Tree, node *Node) {
	label := fmt.Sprintf("%s %q", node.kind, node.Name())
	if node.kind != KindSection {
		label = fmt.Sprintf("%s %q = %q", node.kind, node.Name(), node.Value())
	}
	if len(node.children) == 0 {
		tp.AddNode(label)
		return
	}
	branch := tp.AddBranch(label)
	for _, ch := range node.children {
		dumpNode(branch, ch)
	}
}

// --- Parser ----------------------------------------------------------------

type parser struct {
	tree   *Tree
	tokens []Token
	pos    int
}

// parseBody consumes statements into parent until a closing brace (if
// openAt >= 0, the offset of the opening brace) or the end of input.
func (p *parser) parseBody(parent *Node, openAt int) error {
	for {
		p.skipTrivia()
		if p.pos >= len(p.tokens) {
			if openAt >= 0 {
				return newParseError(p.tree.src, openAt, "unterminated section, missing '}'")
			}
			return nil
		}
		tok := p.tokens[p.pos]
		switch tok.Kind {
		case TokRBrace:
			if openAt < 0 {
				return newParseError(p.tree.src, tok.Start, "unexpected '}'")
			}
			return nil
		case TokSemicolon:
			p.pos++
			continue
		}
		if err := p.parseStatement(parent); err != nil {
			return err
		}
	}
}

// parseStatement parses a section, a property or an at-rule.
func (p *parser) parseStatement(parent *Node) error {
	first := p.pos
	colon := -1
	lastEnd := p.tokens[first].End
	for p.pos < len(p.tokens) {
		tok := p.tokens[p.pos]
		switch tok.Kind {
		case TokLBrace:
			return p.parseSection(parent, first, lastEnd)
		case TokSemicolon, TokRBrace:
			p.makeDeclaration(parent, first, colon, lastEnd, tok)
			if tok.Kind == TokSemicolon {
				p.pos++
			}
			return nil
		case TokColon:
			if colon < 0 {
				colon = p.pos
			}
		}
		if !tok.IsTrivia() {
			lastEnd = tok.End
		}
		p.pos++
	}
	p.makeDeclaration(parent, first, colon, lastEnd, Token{Kind: TokEOF})
	return nil
}

func (p *parser) parseSection(parent *Node, first, nameEnd int) error {
	brace := p.tokens[p.pos]
	node := newNode(KindSection, p.tree)
	node.name = Range{Start: p.tokens[first].Start, End: nameEnd}
	node.value.Start = brace.End
	p.attach(parent, node)
	p.pos++
	if err := p.parseBody(node, brace.Start); err != nil {
		return err
	}
	closing := p.tokens[p.pos] // parseBody stops at '}'
	node.value.End = closing.Start
	node.end = closing.End
	p.pos++
	return nil
}

func (p *parser) makeDeclaration(parent *Node, first, colon, lastEnd int, term Token) {
	start := p.tokens[first]
	end := lastEnd
	if term.Kind == TokSemicolon {
		end = term.End
	}
	if start.Kind == TokAtKeyword && !p.colonFollows(first) {
		// at-rule: @import url(x);
		node := newNode(KindAtRule, p.tree)
		node.name = Range{Start: start.Start, End: start.End}
		node.value = p.trimmed(first+1, lastEnd, start.End)
		node.end = end
		p.attach(parent, node)
		return
	}
	node := newNode(KindProperty, p.tree)
	if colon < 0 { // LESS mixin call: .mixin();
		node.name = Range{Start: start.Start, End: lastEnd}
		node.value = Range{Start: lastEnd, End: lastEnd}
	} else {
		nameEnd := start.Start
		for i := first; i < colon; i++ {
			if !p.tokens[i].IsTrivia() {
				nameEnd = p.tokens[i].End
			}
		}
		node.name = Range{Start: start.Start, End: nameEnd}
		node.value = p.trimmed(colon+1, lastEnd, p.tokens[colon].End)
	}
	node.end = end
	p.attach(parent, node)
}

// colonFollows is true if the token after the at-keyword at index i (skipping
// whitespace) is a colon, as in a LESS variable declaration.
func (p *parser) colonFollows(i int) bool {
	for j := i + 1; j < len(p.tokens); j++ {
		if p.tokens[j].Kind == TokWhitespace {
			continue
		}
		return p.tokens[j].Kind == TokColon
	}
	return false
}

// trimmed returns the range from the first non-trivia token at or after
// index i up to lastEnd. If there is none, an empty range at fallback is
// returned.
func (p *parser) trimmed(i, lastEnd, fallback int) Range {
	for ; i < len(p.tokens) && p.tokens[i].Start < lastEnd; i++ {
		if p.tokens[i].Kind != TokWhitespace {
			return Range{Start: p.tokens[i].Start, End: lastEnd}
		}
	}
	return Range{Start: fallback, End: fallback}
}

func (p *parser) attach(parent *Node, node *Node) {
	parent.addChild(node)
	p.tree.arena = append(p.tree.arena, node)
}

func (p *parser) skipTrivia() {
	for p.pos < len(p.tokens) && p.tokens[p.pos].IsTrivia() {
		p.pos++
	}
}
