/*
Package cssync keeps stylesheets in sync between an editor and a browser.

Both sides hold their own version of a stylesheet, possibly in different
syntaxes: the editor may hold the LESS or SCSS source, while the browser
holds the compiled CSS. Whenever one side changes, the engine computes the
difference as a list of patches addressed by canonical paths, and applies
the patches to the other side's source. Patched sources keep their
formatting; new code follows the indentation and spacing found in the
source it is inserted into.

Package cssync is a facade over the sub-packages doing the actual work:

	tree     source trees with exact text positions and in-place editing
	locator  canonical paths and node lookup
	resolve  LESS and SCSS resolution to flat CSS sections
	diff     structural diff of resolved section lists
	patch    text-preserving application of patches
	depcache cache for parsed dependency sources
	cssom    CSS object model export

An Engine is configured once, typically from the application configuration
via ConfigFromSchuko, and caches the dependencies (imported variable and
mixin libraries) of the stylesheets it is asked to diff.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package cssync

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'cssync'.
func tracer() tracing.Trace {
	return tracing.Select("cssync")
}
