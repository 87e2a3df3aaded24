/*
Package locator computes and resolves canonical paths to stylesheet nodes.

A path is an ordered list of segments, one per tree level below the root.
Each segment holds the normalized name of a node and its occurrence index,
i.e. the 1-based count of preceding siblings sharing the same normalized
name, including the node itself. Paths are stable across two independent
parses of a stylesheet as long as the relative order of equally named
siblings does not change, and they are insensitive to formatting.

The string form of a path joins its segments with '/', appending '|index'
to a segment only if the index is greater than 1:

	@media screen/a:hover|2/color

Path functions are generic over the node type, so the same code addresses
source trees (package tree) and resolved trees (package resolve).

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package locator

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'cssync.locator'.
func tracer() tracing.Trace {
	return tracing.Select("cssync.locator")
}
