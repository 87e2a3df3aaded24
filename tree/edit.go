package tree

/*
License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/

// Insert splices the text of a detached subtree into the body of node,
// before the child at index (or after the last child if index is out of
// range). sub must not be part of node's tree; if sub is the root of a
// tree, the complete source of that tree is inserted and all of its
// top-level nodes become children of node.
//
// Insert returns the newly attached nodes. The ranges of all nodes following
// the insertion point are shifted by the length of the inserted text.
func (node *Node) Insert(sub *Node, index int) ([]*Node, error) {
	if node.tree == nil {
		return nil, ErrNotAttached
	}
	if !node.IsContainer() {
		return nil, ErrNoContainer
	}
	if sub == nil || sub.tree == nil || sub.tree == node.tree {
		return nil, ErrNotDetached
	}
	var text string
	var graft []*Node
	base := 0
	if sub.kind == KindRoot {
		text, graft = sub.tree.src, sub.children
	} else {
		text, graft, base = sub.Text(), []*Node{sub}, sub.Start()
	}
	offset := node.insertionOffset(index)
	t := node.tree
	t.splice(offset, offset, text, node)
	if index < 0 || index > len(node.children) {
		index = len(node.children)
	}
	inserted := make([]*Node, 0, len(graft))
	for i, g := range graft {
		clone := t.clone(g, offset-base)
		node.insertChildAt(index+i, clone)
		inserted = append(inserted, clone)
	}
	tracer().Debugf("inserted %d bytes at %d into %v", len(text), offset, node)
	return inserted, nil
}

// InsertText parses text and inserts the resulting nodes into node at
// index. It is a shortcut for Build followed by Insert.
func (node *Node) InsertText(text string, index int) ([]*Node, error) {
	sub, err := Build(text)
	if err != nil {
		return nil, err
	}
	return node.Insert(sub.root, index)
}

// insertionOffset returns the source offset where a child inserted at
// index will start.
func (node *Node) insertionOffset(index int) int {
	if index >= 0 && index < len(node.children) {
		return node.children[index].Start()
	}
	if n := len(node.children); n > 0 {
		return node.children[n-1].End()
	}
	if node.kind == KindRoot {
		return node.value.End
	}
	return node.value.Start
}

// Remove deletes the node and all its descendants from the tree, splicing
// its text out of the source. If keepFormatting is false, the run of
// whitespace in front of the node is removed as well; for the first node in
// a container the following run of whitespace is removed instead.
//
// After removal the node is detached and may not be edited any more.
func (node *Node) Remove(keepFormatting bool) error {
	if node.tree == nil {
		return ErrNotAttached
	}
	if node.kind == KindRoot {
		return ErrRemoveRoot
	}
	t := node.tree
	start, end := node.Start(), node.End()
	if !keepFormatting {
		start, end = node.swallowWhitespace(start, end)
	}
	parent := node.parent
	node.isolate()
	t.detach(node)
	t.splice(start, end, "", parent)
	tracer().Debugf("removed [%d,%d) from %v", start, end, parent)
	return nil
}

// swallowWhitespace widens [start,end) over adjacent whitespace inside the
// node's container.
func (node *Node) swallowWhitespace(start, end int) (int, int) {
	src := node.tree.src
	parent := node.parent
	lower := parent.value.Start
	upper := parent.value.End
	if i := parent.IndexOfChild(node); i > 0 {
		lower = parent.children[i-1].End()
	}
	if i := parent.IndexOfChild(node); i >= 0 && i+1 < len(parent.children) {
		upper = parent.children[i+1].Start()
	}
	s := start
	for s > lower && isSpace(src[s-1]) {
		s--
	}
	if s < start {
		return s, end
	}
	e := end
	for e < upper && isSpace(src[e]) {
		e++
	}
	return start, e
}

// Replace substitutes the node by a detached subtree, keeping the position
// of the node among its siblings. It is a composition of Insert and Remove.
func (node *Node) Replace(sub *Node) ([]*Node, error) {
	if node.tree == nil {
		return nil, ErrNotAttached
	}
	if node.kind == KindRoot {
		return nil, ErrRemoveRoot
	}
	parent := node.parent
	index := parent.IndexOfChild(node)
	inserted, err := parent.Insert(sub, index)
	if err != nil {
		return nil, err
	}
	if err := node.Remove(true); err != nil {
		return inserted, err
	}
	return inserted, nil
}

// ReplaceText parses text and replaces node by the resulting nodes.
func (node *Node) ReplaceText(text string) ([]*Node, error) {
	sub, err := Build(text)
	if err != nil {
		return nil, err
	}
	return node.Replace(sub.root)
}

// SetValue overwrites the value range of a property or at-rule with text.
// The text is not parsed; it must not change the structure of the tree.
func (node *Node) SetValue(text string) error {
	if node.tree == nil {
		return ErrNotAttached
	}
	if node.IsContainer() {
		return ErrNoContainer
	}
	node.tree.spliceValue(node, text)
	return nil
}

// --- Arena maintenance -----------------------------------------------------

// splice replaces src[start:end] by text and shifts ranges. container is the
// innermost node whose body encloses the edit.
func (t *Tree) splice(start, end int, text string, container *Node) {
	t.src = t.src[:start] + text + t.src[end:]
	delta := len(text) - (end - start)
	t.rev++
	if delta == 0 {
		return
	}
	enclosing := make(map[*Node]bool)
	for n := container; n != nil; n = n.parent {
		enclosing[n] = true
	}
	for _, n := range t.arena {
		if enclosing[n] {
			n.shiftEnds(end, delta)
		} else if n.Start() >= end {
			n.shiftAll(delta)
		}
	}
}

// spliceValue replaces the value range of a leaf node.
func (t *Tree) spliceValue(node *Node, text string) {
	start, end := node.value.Start, node.value.End
	t.src = t.src[:start] + text + t.src[end:]
	delta := len(text) - (end - start)
	t.rev++
	node.value.End += delta
	node.end += delta
	if delta == 0 {
		return
	}
	enclosing := make(map[*Node]bool)
	for n := node.parent; n != nil; n = n.parent {
		enclosing[n] = true
	}
	for _, n := range t.arena {
		if n == node {
			continue
		}
		if enclosing[n] {
			n.shiftEnds(end, delta)
		} else if n.Start() >= end {
			n.shiftAll(delta)
		}
	}
}

func (node *Node) shiftAll(delta int) {
	node.name.Start += delta
	node.name.End += delta
	node.value.Start += delta
	node.value.End += delta
	node.end += delta
}

// shiftEnds shifts the end positions of an enclosing node.
func (node *Node) shiftEnds(at, delta int) {
	if node.value.End >= at {
		node.value.End += delta
	}
	if node.end >= at {
		node.end += delta
	}
}

// clone copies a node of another tree, including its descendants, into
// the arena of t, shifting its ranges by delta.
func (t *Tree) clone(n *Node, delta int) *Node {
	c := newNode(n.kind, t)
	c.name = Range{Start: n.name.Start + delta, End: n.name.End + delta}
	c.value = Range{Start: n.value.Start + delta, End: n.value.End + delta}
	c.end = n.end + delta
	t.arena = append(t.arena, c)
	for _, ch := range n.children {
		c.addChild(t.clone(ch, delta))
	}
	return c
}

// detach removes a node and its descendants from the arena.
func (t *Tree) detach(node *Node) {
	gone := make(map[*Node]bool)
	node.Walk(func(n *Node) bool {
		gone[n] = true
		n.nameMemo.text = n.Name() // keep names readable after detaching
		n.valMemo.text = n.Value()
		return true
	})
	arena := t.arena[:0]
	for _, n := range t.arena {
		if !gone[n] {
			arena = append(arena, n)
		}
	}
	t.arena = arena
	for n := range gone {
		n.tree = nil
	}
}
