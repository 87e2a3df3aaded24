/*
Package tree implements a position-preserving source tree for CSS, LESS
and SCSS stylesheets.

A tree is built from a source string and consists of nodes of four kinds:
the root, sections (a selector or at-rule head with a braced body),
properties (declarations like `color: red`) and at-rules terminated by a
semicolon (e.g. `@import url(x.css)`). Every node knows the exact byte
ranges of its name and value inside the source string of its tree.

Nodes may be edited in place: Insert, Remove and Replace splice the backing
source string of the tree exactly once per call and shift the ranges of
every node following the edit point by the size delta. Ranges of nodes
before the edit point are untouched, which makes the tree usable as a live
model of an editor buffer.

	t, err := tree.Build("a { color: red; }")
	if err != nil { … }
	sect, _ := t.Root().Child(0)
	prop, _ := sect.Child(0)
	fmt.Println(sect.Name(), prop.Name(), prop.Value()) // a color red

Nodes are kept in an arena owned by the tree. Shifting after an edit is a
single linear pass over the arena.

Reading a tree from more than one goroutine is safe, as long as nobody
edits it. Edits are not synchronized; clients mutating a tree shared
between goroutines have to synchronize externally.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package tree

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'cssync.tree'.
func tracer() tracing.Trace {
	return tracing.Select("cssync.tree")
}
