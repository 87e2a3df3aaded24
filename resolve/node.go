package resolve

/*
License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/

import (
	"fmt"
	"strings"

	"github.com/npillmayer/cssync/locator"
	"github.com/npillmayer/cssync/tree"
	"github.com/xlab/treeprint"
)

// Node is a node of a resolved tree. Resolved trees are detached from any
// source; they only reference their source nodes for provenance.
type Node struct {
	kind     tree.Kind
	name     string
	value    string
	parent   *Node
	children []*Node
	origin   *tree.Node
}

// NewNode creates a detached resolved node. It is used by clients which
// build resolved trees from other sources, e.g. a CSS object model.
func NewNode(kind tree.Kind, name, value string) *Node {
	return &Node{kind: kind, name: name, value: value}
}

func newRoot() *Node {
	return &Node{kind: tree.KindRoot}
}

func (n *Node) String() string {
	return fmt.Sprintf("(%s %q #ch=%d)", n.kind, n.name, len(n.children))
}

// Kind returns the node kind.
func (n *Node) Kind() tree.Kind { return n.kind }

// Name returns the resolved selector, property name or at-keyword.
func (n *Node) Name() string { return n.name }

// Value returns the resolved value of a property or an at-rule.
func (n *Node) Value() string { return n.value }

// Parent returns the parent node, or nil for the root.
func (n *Node) Parent() *Node { return n.parent }

// Children returns the child nodes. The slice must not be modified.
func (n *Node) Children() []*Node { return n.children }

// ChildCount returns the number of children.
func (n *Node) ChildCount() int { return len(n.children) }

// Origin returns the source node this node was resolved from. It may be
// nil for nodes not built from a source tree.
func (n *Node) Origin() *tree.Node { return n.origin }

// AddChild appends ch to the children of n.
func (n *Node) AddChild(ch *Node) *Node {
	n.children = append(n.children, ch)
	ch.parent = n
	return ch
}

// Properties returns the property children of a section.
func (n *Node) Properties() []*Node {
	var props []*Node
	for _, ch := range n.children {
		if ch.kind == tree.KindProperty {
			props = append(props, ch)
		}
	}
	return props
}

func (n *Node) add(kind tree.Kind, name, value string, origin *tree.Node) *Node {
	return n.AddChild(&Node{kind: kind, name: name, value: value, origin: origin})
}

func (n *Node) removeChild(ch *Node) {
	for i, c := range n.children {
		if c == ch {
			n.children = append(n.children[:i], n.children[i+1:]...)
			ch.parent = nil
			return
		}
	}
}

// Walk calls f for n and all its descendants in document order.
func (n *Node) Walk(f func(*Node)) {
	f(n)
	for _, ch := range n.children {
		ch.Walk(f)
	}
}

// Dump renders the resolved tree for debugging purposes.
func (n *Node) Dump() string {
	tp := treeprint.New()
	tp.SetValue("resolved")
	for _, ch := range n.children {
		dumpResolved(tp, ch)
	}
	return tp.String()
}

func dumpResolved(tp treeprint.Tree, n *Node) {
	if n.kind != tree.KindSection {
		tp.AddNode(fmt.Sprintf("%s: %s", n.name, n.value))
		return
	}
	branch := tp.AddBranch(n.name)
	for _, ch := range n.children {
		dumpResolved(branch, ch)
	}
}

// CSS renders the resolved tree as plain CSS text, one rule per line.
func (n *Node) CSS() string {
	var b strings.Builder
	for _, ch := range n.children {
		writeCSS(&b, ch, "")
	}
	return b.String()
}

func writeCSS(b *strings.Builder, n *Node, indent string) {
	switch n.kind {
	case tree.KindSection:
		b.WriteString(indent + n.name + " {")
		nested := false
		for _, ch := range n.children {
			if ch.kind == tree.KindProperty {
				fmt.Fprintf(b, " %s: %s;", ch.name, ch.value)
			} else {
				nested = true
			}
		}
		if nested {
			b.WriteString("\n")
			for _, ch := range n.children {
				if ch.kind != tree.KindProperty {
					writeCSS(b, ch, indent+"  ")
				}
			}
			b.WriteString(indent)
		} else {
			b.WriteString(" ")
		}
		b.WriteString("}\n")
	case tree.KindAtRule:
		fmt.Fprintf(b, "%s%s %s;\n", indent, n.name, n.value)
	case tree.KindProperty:
		fmt.Fprintf(b, "%s%s: %s;\n", indent, n.name, n.value)
	}
}

// --- Section lists ---------------------------------------------------------

// Section is an entry of a resolved section list: a section or a
// value-compared at-rule together with its path.
type Section struct {
	Path       locator.Path
	PathString string
	Node       *Node
}

// IsValueCompared is true for sections whose identity is their whole value,
// like @import or @charset, rather than a set of properties.
func (s Section) IsValueCompared() bool {
	return s.Node.kind == tree.KindAtRule
}

// Sections lists all sections and at-rules of a resolved tree in document
// order, together with their paths. Paths are the same as computed by
// locator.CreatePath.
func Sections(root *Node) []Section {
	var list []Section
	var walk func(n *Node, prefix locator.Path)
	walk = func(n *Node, prefix locator.Path) {
		seen := make(map[string]int, len(n.children))
		for _, ch := range n.children {
			name := locator.NormalizeName(ch.name)
			seen[name]++
			if ch.kind != tree.KindSection && ch.kind != tree.KindAtRule {
				continue
			}
			p := prefix.Append(name, seen[name])
			list = append(list, Section{Path: p, PathString: p.String(), Node: ch})
			walk(ch, p)
		}
	}
	walk(root, locator.Path{})
	return list
}
