/*
Package patch describes structural changes to a stylesheet and applies them
to a live source tree.

A patch addresses a section by its path (package locator) and adds, updates
or removes it. Updates carry the properties to set and the property names
to remove. Sections whose identity is their whole value, like @import or
@charset, carry a value instead of properties.

Apply mutates a source tree in place. Targets which do not exist are
synthesized, including any missing enclosing sections, formatted like the
surrounding code. For LESS and SCSS sources, paths address the resolved
sections of the document; edits are routed to the source nodes the resolved
sections originate from.

Patches which cannot be applied are dropped without aborting the rest of an
apply pass.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package patch

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'cssync.patch'.
func tracer() tracing.Trace {
	return tracing.Select("cssync.patch")
}
