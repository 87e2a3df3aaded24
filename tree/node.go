package tree

/*
License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/

import (
	"fmt"
)

// Kind is the type of a tree node. The set of kinds is closed.
type Kind uint8

// Node kinds.
const (
	KindRoot     Kind = iota // top-level node of a tree
	KindSection              // selector or at-rule head with a braced body
	KindProperty             // declaration `name: value`
	KindAtRule               // at-rule terminated by a semicolon
)

func (k Kind) String() string {
	switch k {
	case KindRoot:
		return "root"
	case KindSection:
		return "section"
	case KindProperty:
		return "property"
	case KindAtRule:
		return "at-rule"
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// Range is a half-open byte range [Start, End) into the source of a tree.
type Range struct {
	Start int
	End   int
}

// Len returns the number of bytes spanned by r.
func (r Range) Len() int {
	return r.End - r.Start
}

// Contains is true if offset lies within r. An offset equal to r.End is
// considered to be contained, as this is the position of a cursor at the
// end of a range.
func (r Range) Contains(offset int) bool {
	return offset >= r.Start && offset <= r.End
}

// memo caches a substring of the source, keyed by the range it was cut from
// and the tree revision it was cut at.
type memo struct {
	key   Range
	rev   uint64
	text  string
	valid bool
}

// Node is the base type our trees are built of.
//
// The name range of a section covers its selector, the value range covers
// the body between the braces (exclusive). For properties and at-rules the
// value range covers the value without the terminating semicolon.
type Node struct {
	kind     Kind
	tree     *Tree   // owning tree, nil if detached
	parent   *Node   // parent node of this node
	children []*Node // child nodes in document order
	name     Range
	value    Range
	end      int // end of the node's full text, including '}' or ';'
	nameMemo memo
	valMemo  memo
	anno     annotation
}

// annotation holds a client value, valid for a single tree revision.
type annotation struct {
	rev   uint64
	value interface{}
	set   bool
}

func newNode(kind Kind, t *Tree) *Node {
	return &Node{kind: kind, tree: t}
}

func (node *Node) String() string {
	return fmt.Sprintf("(%s %q #ch=%d [%d,%d))", node.kind, node.Name(), node.ChildCount(),
		node.Start(), node.End())
}

// Kind returns the kind of the node.
func (node *Node) Kind() Kind {
	return node.kind
}

// Tree returns the tree a node is attached to, or nil.
func (node *Node) Tree() *Tree {
	return node.tree
}

// Parent returns the parent node or nil (for the root of the tree).
func (node *Node) Parent() *Node {
	return node.parent
}

// ChildCount returns the number of children-nodes for a node.
func (node *Node) ChildCount() int {
	return len(node.children)
}

// Child returns the n-th child of a node.
func (node *Node) Child(n int) (*Node, bool) {
	if n < 0 || len(node.children) <= n {
		return nil, false
	}
	return node.children[n], true
}

// Children returns a slice with all children of a node.
// The slice is a copy and may be modified by clients.
func (node *Node) Children() []*Node {
	children := make([]*Node, len(node.children))
	copy(children, node.children)
	return children
}

// IndexOfChild returns the index of a child within the list of children
// of its parent, or -1.
func (node *Node) IndexOfChild(ch *Node) int {
	for i, child := range node.children {
		if ch == child {
			return i
		}
	}
	return -1
}

// IsContainer is true for nodes which may hold child nodes.
func (node *Node) IsContainer() bool {
	return node.kind == KindRoot || node.kind == KindSection
}

// NameRange returns the byte range of the node's name.
func (node *Node) NameRange() Range {
	return node.name
}

// ValueRange returns the byte range of the node's value. For sections
// this is the body between the braces.
func (node *Node) ValueRange() Range {
	return node.value
}

// Start returns the offset of the first byte of the node.
func (node *Node) Start() int {
	if node.kind == KindRoot {
		return 0
	}
	return node.name.Start
}

// End returns the offset after the last byte of the node, including a
// closing brace or a terminating semicolon.
func (node *Node) End() int {
	return node.end
}

// FullRange returns the range covering the complete text of the node.
func (node *Node) FullRange() Range {
	return Range{Start: node.Start(), End: node.End()}
}

// Name returns the name of a node: the selector of a section, the property
// name of a property or the at-keyword of an at-rule. The root has an empty
// name.
//
// Names are computed lazily and cached until the name range or the tree
// changes.
func (node *Node) Name() string {
	if node.kind == KindRoot {
		return ""
	}
	return node.cut(node.name, &node.nameMemo)
}

// Value returns the value of a node. For sections, this is the source text
// of the body.
func (node *Node) Value() string {
	return node.cut(node.value, &node.valMemo)
}

// Text returns the complete source text of a node.
func (node *Node) Text() string {
	if node.tree == nil {
		return ""
	}
	return node.tree.src[node.Start():node.End()]
}

func (node *Node) cut(r Range, m *memo) string {
	t := node.tree
	if t == nil {
		return m.text
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if m.valid && m.key == r && m.rev == t.rev {
		return m.text
	}
	if r.End > len(t.src) || r.Start > r.End {
		return m.text
	}
	m.key, m.rev, m.text, m.valid = r, t.rev, t.src[r.Start:r.End], true
	return m.text
}

// Annotation returns a value previously stored with Annotate, provided the
// tree has not been edited since.
func (node *Node) Annotation() (interface{}, bool) {
	t := node.tree
	if t == nil {
		return nil, false
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if !node.anno.set || node.anno.rev != t.rev {
		return nil, false
	}
	return node.anno.value, true
}

// Annotate stores a client value with the node. The value is invalidated by
// the next edit of the tree.
func (node *Node) Annotate(v interface{}) {
	t := node.tree
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	node.anno = annotation{rev: t.rev, value: v, set: true}
}

// Ancestors returns the chain of parents, nearest first.
func (node *Node) Ancestors() []*Node {
	var chain []*Node
	for p := node.parent; p != nil; p = p.parent {
		chain = append(chain, p)
	}
	return chain
}

// Walk calls f for node and every descendant in document order. Descent
// into the children of a node stops if f returns false for it.
func (node *Node) Walk(f func(*Node) bool) {
	if !f(node) {
		return
	}
	for _, ch := range node.children {
		ch.Walk(f)
	}
}

// --- Structural helpers ----------------------------------------------------

// addChild appends a child node and connects it to this node as its parent.
func (node *Node) addChild(ch *Node) {
	node.children = append(node.children, ch)
	ch.parent = node
}

// insertChildAt inserts a child node at position i, shifting children at
// later positions.
func (node *Node) insertChildAt(i int, ch *Node) {
	if i >= len(node.children) {
		node.addChild(ch)
		return
	}
	node.children = append(node.children, nil)   // make room for one child
	copy(node.children[i+1:], node.children[i:]) // shift i+1..n
	node.children[i] = ch
	ch.parent = node
}

// isolate removes a node from its parent.
func (node *Node) isolate() *Node {
	if node.parent != nil {
		if i := node.parent.IndexOfChild(node); i >= 0 {
			node.parent.children = append(node.parent.children[:i], node.parent.children[i+1:]...)
		}
		node.parent = nil
	}
	return node
}
