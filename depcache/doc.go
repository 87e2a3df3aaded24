/*
Package depcache caches parsed dependency stylesheets.

LESS and SCSS sources import variables and mixins from other files. Clients
hand these files to the resolver as source trees (resolve.Options.Dependencies).
As dependencies change rarely but are needed for every diff, their trees are
kept in a Cache keyed by URL and a checksum of their content. A changed file
therefore never hits a stale entry. Entries are evicted when the cache is
full (least recently used first), or explicitly if they have not been
accessed for some time.

Trees handed out by the cache are shared and must not be edited.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package depcache

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'cssync.depcache'.
func tracer() tracing.Trace {
	return tracing.Select("cssync.depcache")
}
