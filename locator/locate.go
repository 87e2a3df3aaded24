package locator

/*
License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/

import (
	"github.com/npillmayer/cssync/tree"
)

// Addressable is the interface a node type has to implement to be addressed
// by paths. The root of a tree returns the zero value of N as its parent.
type Addressable[N comparable] interface {
	comparable
	Name() string
	Parent() N
	Children() []N
}

// annotator is implemented by node types able to memoize client values for
// the lifetime of a tree revision.
type annotator interface {
	Annotation() (interface{}, bool)
	Annotate(interface{})
}

// CreatePath computes the path of node. If the node type supports
// annotations, the path is memoized until the node's tree is edited.
func CreatePath[N Addressable[N]](node N) Path {
	anno, canMemo := any(node).(annotator)
	if canMemo {
		if v, ok := anno.Annotation(); ok {
			if p, ok := v.(Path); ok {
				return p
			}
		}
	}
	var zero N
	var path Path
	for n := node; n != zero; {
		parent := n.Parent()
		if parent == zero {
			break
		}
		path = append(path, Segment{Name: NormalizeName(n.Name()), Index: occurrence(parent, n)})
		n = parent
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	if canMemo {
		anno.Annotate(path)
	}
	return path
}

// occurrence counts the children of parent sharing n's normalized name, up
// to and including n.
func occurrence[N Addressable[N]](parent, n N) int {
	name := NormalizeName(n.Name())
	count := 0
	for _, ch := range parent.Children() {
		if NormalizeName(ch.Name()) == name {
			count++
		}
		if ch == n {
			return count
		}
	}
	return count
}

// Locate walks path from root, matching normalized name and occurrence index
// at each level. It fails as soon as one level has no match.
func Locate[N Addressable[N]](root N, path Path) (N, bool) {
	ctx := root
	for _, seg := range path {
		ch, ok := childAt(ctx, seg)
		if !ok {
			var zero N
			return zero, false
		}
		ctx = ch
	}
	return ctx, true
}

// Guess is the result of a best-effort location. Node is the deepest node
// which could be matched, Rest the part of the path below Node which could
// not be matched at all. Found is true if Rest is empty.
type Guess[N any] struct {
	Found bool
	Node  N
	Rest  Path
}

// GuessLocation walks path from root like Locate. On a miss at some level it
// falls back to any child with the segment's name, ignoring the occurrence
// index. If more than one child qualifies and the path continues, the first
// candidate having a child named like the next segment is preferred;
// otherwise the last candidate is taken. If no child matches by name the
// walk stops and the remaining segments are returned as Rest.
func GuessLocation[N Addressable[N]](root N, path Path) Guess[N] {
	ctx := root
	for i, seg := range path {
		if ch, ok := childAt(ctx, seg); ok {
			ctx = ch
			continue
		}
		candidates := childrenNamed(ctx, seg.Name)
		if len(candidates) == 0 {
			tracer().Debugf("guess: no match for %q below %q", seg.Name, ctx.Name())
			return Guess[N]{Node: ctx, Rest: path[i:]}
		}
		pick := candidates[len(candidates)-1]
		if i+1 < len(path) {
			next := path[i+1].Name
			for _, c := range candidates {
				if len(childrenNamed(c, next)) > 0 {
					pick = c
					break
				}
			}
		}
		ctx = pick
	}
	return Guess[N]{Found: true, Node: ctx}
}

func childAt[N Addressable[N]](ctx N, seg Segment) (N, bool) {
	count := 0
	for _, ch := range ctx.Children() {
		if NormalizeName(ch.Name()) == seg.Name {
			count++
			if count == seg.index() {
				return ch, true
			}
		}
	}
	var zero N
	return zero, false
}

func childrenNamed[N Addressable[N]](ctx N, name string) []N {
	var named []N
	for _, ch := range ctx.Children() {
		if NormalizeName(ch.Name()) == name {
			named = append(named, ch)
		}
	}
	return named
}

// LocateByPos returns the deepest node of a source tree whose text contains
// the byte offset, or nil if offset lies outside of the source. An offset
// between two nodes resolves to their common container.
func LocateByPos(root *tree.Node, offset int) *tree.Node {
	if root == nil || offset < root.Start() || offset > root.End() {
		return nil
	}
	ctx := root
	for {
		var next *tree.Node
		for _, ch := range ctx.Children() {
			if ch.Start() <= offset && offset < ch.End() {
				next = ch
				break
			}
		}
		if next == nil {
			return ctx
		}
		ctx = next
	}
}
