/*
Package diff computes the patches which turn one stylesheet into another.

Both stylesheets are resolved to their flat section lists first, so that a
LESS or SCSS source may be compared to another source of the same or of a
different syntax. Sections are matched by their path strings. Matching
sections are compared declaration by declaration; the declaration lists are
aligned in a single pass, which keeps the patches small if declarations
have been inserted or deleted in the middle of a section.

Patches are ordered: updates and additions come first, in the order of the
second stylesheet, followed by removals in the order of the first one.
patch.Apply relies on this order.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package diff

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'cssync.diff'.
func tracer() tracing.Trace {
	return tracing.Select("cssync.diff")
}
