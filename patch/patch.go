package patch

/*
License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/

import (
	"fmt"
	"sort"

	"github.com/npillmayer/cssync/locator"
)

// Action is the kind of change a patch describes.
type Action string

// Patch actions.
const (
	Add    Action = "add"
	Update Action = "update"
	Remove Action = "remove"
)

// Property is a declaration to set. Index is the position of the property
// within the target section after patching; it is optional.
type Property struct {
	Name  string `json:"name"`
	Value string `json:"value"`
	Index *int   `json:"index,omitempty"`
}

// At returns a property index.
func At(i int) *int {
	return &i
}

// Removed names a declaration to delete.
type Removed struct {
	Name string `json:"name"`
}

// Patch is a change to a single section. Value is set only for sections
// whose identity is their whole value, like @import.
type Patch struct {
	Path       locator.Path `json:"path"`
	Action     Action       `json:"action"`
	Properties []Property   `json:"properties,omitempty"`
	Removed    []Removed    `json:"removed,omitempty"`
	Value      string       `json:"value,omitempty"`
}

func (p Patch) String() string {
	return fmt.Sprintf("%s %q (+%d -%d)", p.Action, p.Path.String(), len(p.Properties), len(p.Removed))
}

// IsValueCompared is true for patches of value-compared sections.
func (p Patch) IsValueCompared() bool {
	return p.Value != ""
}

// Condense merges the patches of a list, so that at most one patch per path
// survives. A removal cancels all earlier patches for its path. Updates
// following an addition are folded into the addition; consecutive updates
// are merged, later properties winning. No property name is both set and
// removed by a condensed update.
//
// Surviving patches keep the position of the first patch for their path,
// except removals, which take the position of the removal.
func Condense(patches []Patch) []Patch {
	type slot struct {
		patch Patch
		order int
	}
	slots := make(map[string]*slot)
	order := 0
	for _, p := range patches {
		key := p.Path.String()
		s, ok := slots[key]
		order++
		if !ok || p.Action == Remove {
			slots[key] = &slot{patch: clone(p), order: order}
			continue
		}
		s.patch = merge(s.patch, p)
	}
	list := make([]*slot, 0, len(slots))
	for _, s := range slots {
		list = append(list, s)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].order < list[j].order })
	out := make([]Patch, len(list))
	for i, s := range list {
		out[i] = s.patch
	}
	tracer().Debugf("condensed %d patches into %d", len(patches), len(out))
	return out
}

func clone(p Patch) Patch {
	p.Properties = append([]Property(nil), p.Properties...)
	p.Removed = append([]Removed(nil), p.Removed...)
	return p
}

// merge folds patch q into an earlier patch p for the same path.
func merge(p, q Patch) Patch {
	switch {
	case p.Action == Remove:
		// re-created after removal
		q = clone(q)
		if q.Action == Update {
			q.Action = Add
		}
		return q
	case q.IsValueCompared() || p.IsValueCompared():
		action := p.Action
		p = clone(q)
		p.Action = action
		return p
	}
	for _, prop := range q.Properties {
		p.Properties = setProperty(p.Properties, prop)
		p.Removed = dropRemoved(p.Removed, prop.Name)
	}
	for _, r := range q.Removed {
		p.Properties = dropProperty(p.Properties, r.Name)
		if p.Action == Add {
			continue // the property never existed
		}
		if !hasRemoved(p.Removed, r.Name) {
			p.Removed = append(p.Removed, r)
		}
	}
	return p
}

func setProperty(props []Property, prop Property) []Property {
	for i := range props {
		if props[i].Name == prop.Name {
			props[i] = prop
			return props
		}
	}
	return append(props, prop)
}

func dropProperty(props []Property, name string) []Property {
	out := props[:0]
	for _, p := range props {
		if p.Name != name {
			out = append(out, p)
		}
	}
	return out
}

func hasRemoved(removed []Removed, name string) bool {
	for _, r := range removed {
		if r.Name == name {
			return true
		}
	}
	return false
}

func dropRemoved(removed []Removed, name string) []Removed {
	out := removed[:0]
	for _, r := range removed {
		if r.Name != name {
			out = append(out, r)
		}
	}
	return out
}
