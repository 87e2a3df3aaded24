/*
Package resolve turns the source tree of a stylesheet into the flat list of
sections a browser would see.

For plain CSS the resolved tree mirrors the source tree. For LESS and SCSS
the resolver approximates what the preprocessor would compile: it expands
nested selectors (including `&` back-references), evaluates variables and
expressions, applies mixins (LESS mixin calls with guards, SCSS
@mixin/@include with @content and @function), resolves extends, flattens
nested media queries to the top level and runs SCSS control flow
(@if/@else, @for, @each, @while).

Resolution is best-effort. Problems such as undefined variables, failing
expressions or unmatched mixin calls never abort resolution: the offending
construct is skipped or left as literal text, and a *ResolutionError is
delivered to Options.OnWarning. Runaway recursion in mixins and loops is
cut off by configurable limits.

Every resolved node keeps a reference to the source node it originated
from, which lets clients map a resolved section back to the text which
produced it.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package resolve

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'cssync.resolve'.
func tracer() tracing.Trace {
	return tracing.Select("cssync.resolve")
}
