/*
Package expr evaluates LESS and SCSS value expressions.

The evaluator is a small recursive-descent interpreter over a token stream.
It understands numbers with units, hex and named colors, quoted and
unquoted strings, space- and comma-separated lists, SCSS maps, variable
references, parenthesized groups, the arithmetic operators + - * / %,
comparisons, boolean operators and function calls. A table of builtin
color, math, type-checking and string functions is available to every
evaluation; callers may supply user-defined functions through an Env.

Units propagate through arithmetic: the unit of the left operand wins, or
the unit of the right one if the left operand is unitless. Colors are RGBA
quadruples; arithmetic on colors works channel-wise with clamping.

Literal values keep the spelling they were written with, so evaluating a
value which contains no computations reproduces its source text.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package expr

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'cssync.resolve'.
func tracer() tracing.Trace {
	return tracing.Select("cssync.resolve")
}
