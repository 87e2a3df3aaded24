package diff

/*
License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/

import (
	"github.com/npillmayer/cssync/locator"
	"github.com/npillmayer/cssync/patch"
	"github.com/npillmayer/cssync/resolve"
	"github.com/npillmayer/cssync/tree"
)

// Options control a diff. The embedded resolver options apply to the first
// source, and to the second one unless B is set.
type Options struct {
	resolve.Options
	B *resolve.Options // resolution of the second source, for cross-syntax diffs
}

// DefaultOptions returns diff options for two sources of the same syntax.
func DefaultOptions(syntax resolve.Syntax) Options {
	return Options{Options: resolve.DefaultOptions(syntax)}
}

// Diff computes the patches turning source a into source b. Parse errors of
// either source are returned; problems during resolution are reported to
// the OnWarning callbacks of the options.
func Diff(a, b string, opts Options) ([]patch.Patch, error) {
	ta, err := tree.Build(a)
	if err != nil {
		return nil, err
	}
	tb, err := tree.Build(b)
	if err != nil {
		return nil, err
	}
	return Trees(ta, tb, opts), nil
}

// Trees computes the patches turning source tree a into source tree b.
func Trees(a, b *tree.Tree, opts Options) []patch.Patch {
	optsB := opts.Options
	if opts.B != nil {
		optsB = *opts.B
	}
	ra := resolve.Resolve(a, opts.Options)
	rb := resolve.Resolve(b, optsB)
	return Sections(resolve.Sections(ra), resolve.Sections(rb))
}

// Sections computes the patches turning section list a into section list b.
func Sections(a, b []resolve.Section) []patch.Patch {
	indexA := make(map[string]int, len(a))
	for i, s := range a {
		indexA[s.PathString] = i
	}
	matched := make([]bool, len(a))
	var patches []patch.Patch
	for k, sb := range b {
		i, ok := indexA[sb.PathString]
		if !ok {
			if !sb.IsValueCompared() && len(sb.Node.Properties()) == 0 && hasDescendant(b, k) {
				continue // created implicitly with its descendants
			}
			patches = append(patches, added(sb))
			continue
		}
		matched[i] = true
		if p, changed := updated(a[i], sb); changed {
			patches = append(patches, p)
		}
	}
	var removed []locator.Path
	for i, sa := range a {
		if matched[i] || below(sa.Path, removed) {
			continue
		}
		removed = append(removed, sa.Path)
		patches = append(patches, patch.Patch{Path: sa.Path, Action: patch.Remove})
	}
	tracer().Debugf("diff of %d and %d sections: %d patches", len(a), len(b), len(patches))
	return patches
}

func added(s resolve.Section) patch.Patch {
	p := patch.Patch{Path: s.Path, Action: patch.Add}
	if s.IsValueCompared() {
		p.Value = s.Node.Value()
		return p
	}
	for _, prop := range s.Node.Properties() {
		p.Properties = append(p.Properties, patch.Property{Name: prop.Name(), Value: prop.Value()})
	}
	return p
}

// updated compares two sections with equal paths.
func updated(a, b resolve.Section) (patch.Patch, bool) {
	p := patch.Patch{Path: b.Path, Action: patch.Update}
	if a.IsValueCompared() || b.IsValueCompared() {
		if a.IsValueCompared() == b.IsValueCompared() && a.Node.Value() == b.Node.Value() {
			return p, false
		}
		p.Value = b.Node.Value()
		return p, b.IsValueCompared()
	}
	pa, pb := a.Node.Properties(), b.Node.Properties()
	if equalProperties(pa, pb) {
		return p, false
	}
	p.Properties, p.Removed = align(pa, pb)
	return p, len(p.Properties) > 0 || len(p.Removed) > 0
}

func equalProperties(pa, pb []*resolve.Node) bool {
	if len(pa) != len(pb) {
		return false
	}
	for i := range pa {
		if pa[i].Name() != pb[i].Name() || pa[i].Value() != pb[i].Value() {
			return false
		}
	}
	return true
}

// align walks the declarations of b, advancing through the declarations of
// a in lockstep as long as names match. On a name mismatch a later exact
// match in a is searched for; the declarations of a skipped over are
// removed. Declarations of b without a counterpart are added with their
// index. Removed names which are set again are not reported as removed.
func align(pa, pb []*resolve.Node) ([]patch.Property, []patch.Removed) {
	var props []patch.Property
	var removed []patch.Removed
	i := 0
	for j, q := range pb {
		if i < len(pa) && pa[i].Name() == q.Name() {
			if pa[i].Value() != q.Value() {
				props = append(props, patch.Property{Name: q.Name(), Value: q.Value()})
			}
			i++
			continue
		}
		if k := exactMatch(pa, i, q); k >= 0 {
			for _, skipped := range pa[i:k] {
				removed = append(removed, patch.Removed{Name: skipped.Name()})
			}
			i = k + 1
			continue
		}
		props = append(props, patch.Property{Name: q.Name(), Value: q.Value(), Index: patch.At(j)})
	}
	for _, rest := range pa[i:] {
		removed = append(removed, patch.Removed{Name: rest.Name()})
	}
	if len(props) == 0 || len(removed) == 0 {
		return props, removed
	}
	set := make(map[string]bool, len(props))
	for _, p := range props {
		set[p.Name] = true
	}
	kept := removed[:0]
	for _, r := range removed {
		if !set[r.Name] {
			kept = append(kept, r)
		}
	}
	return props, kept
}

func exactMatch(pa []*resolve.Node, from int, q *resolve.Node) int {
	for k := from; k < len(pa); k++ {
		if pa[k].Name() == q.Name() && pa[k].Value() == q.Value() {
			return k
		}
	}
	return -1
}

// hasDescendant is true if the section following b[k] is nested within it.
// Section lists are in document order, parents first.
func hasDescendant(b []resolve.Section, k int) bool {
	return k+1 < len(b) && isPrefix(b[k].Path, b[k+1].Path)
}

func below(p locator.Path, parents []locator.Path) bool {
	for _, parent := range parents {
		if len(parent) < len(p) && isPrefix(parent, p) {
			return true
		}
	}
	return false
}

func isPrefix(prefix, p locator.Path) bool {
	return len(prefix) < len(p) && prefix.Equal(p[:len(prefix)])
}
