package patch

/*
License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/

import (
	"errors"
	"math"
	"sort"
	"strings"

	"github.com/npillmayer/cssync/locator"
	"github.com/npillmayer/cssync/resolve"
	"github.com/npillmayer/cssync/tree"
)

// Errors reported for dropped patches.
var (
	ErrNotFound = errors.New("patch target not found")
	ErrNoSource = errors.New("resolved section has no editable source")
)

// Options control an apply pass. The embedded resolver options select the
// syntax of the target and are used to resolve preprocessor sources.
type Options struct {
	resolve.Options
}

// DefaultOptions returns apply options for a syntax.
func DefaultOptions(syntax resolve.Syntax) Options {
	return Options{Options: resolve.DefaultOptions(syntax)}
}

// Result reports an apply pass.
type Result struct {
	Source  string  // source after patching
	Applied []Patch // condensed patches which have been applied
	Dropped []Patch // condensed patches which could not be applied
}

// Apply condenses a list of patches and applies them to t in order. The
// tree and its source are modified in place. Patches which cannot be
// applied are dropped and listed in the result.
func Apply(t *tree.Tree, patches []Patch, opts Options) Result {
	a := &applier{tree: t, opts: opts, style: learnStyle(t)}
	var res Result
	for _, p := range Condense(patches) {
		if err := a.apply(p); err != nil {
			tracer().Infof("dropping patch %s: %v", p, err)
			res.Dropped = append(res.Dropped, p)
			continue
		}
		res.Applied = append(res.Applied, p)
	}
	res.Source = t.Source()
	return res
}

// ApplySource parses src and applies patches to it. Only parse errors are
// returned.
func ApplySource(src string, patches []Patch, opts Options) (Result, error) {
	t, err := tree.Build(src)
	if err != nil {
		return Result{Source: src}, err
	}
	return Apply(t, patches, opts), nil
}

type applier struct {
	tree     *tree.Tree
	opts     Options
	style    style
	resolved int // number of resolutions so far
}

func (a *applier) apply(p Patch) error {
	ropts := a.opts.Options
	if a.resolved > 0 {
		ropts.OnWarning = nil // reported with the first resolution
	}
	a.resolved++
	resolved := resolve.Resolve(a.tree, ropts)
	g := locator.GuessLocation(resolved, p.Path)
	exact := g.Found && locator.CreatePath(g.Node).Equal(p.Path)
	tracer().Debugf("patch %s: found=%v exact=%v rest=%q", p, g.Found, exact, g.Rest.String())
	switch p.Action {
	case Remove:
		if !exact {
			return ErrNotFound
		}
		return a.remove(g.Node)
	case Add:
		if g.Found && !exact {
			// only a namesake exists: create the target next to it
			last, _ := p.Path.Last()
			return a.synthesize(g.Node.Parent(), locator.Path{last}, p)
		}
	}
	if g.Found {
		return a.update(g.Node, p)
	}
	return a.synthesize(g.Node, g.Rest, p)
}

func (a *applier) attached(n *tree.Node) bool {
	return n != nil && n.Tree() == a.tree
}

func (a *applier) remove(rn *resolve.Node) error {
	origin := rn.Origin()
	if !a.attached(origin) || origin.Kind() == tree.KindRoot {
		return ErrNoSource
	}
	if !hasSections(origin) {
		return origin.Remove(false)
	}
	// the source section produces more than this resolved section
	for _, prop := range rn.Properties() {
		if o := prop.Origin(); a.attached(o) && o.Parent() == origin {
			if err := o.Remove(false); err != nil {
				return err
			}
		}
	}
	return nil
}

func hasSections(n *tree.Node) bool {
	for _, ch := range n.Children() {
		if ch.Kind() == tree.KindSection {
			return true
		}
	}
	return false
}

func (a *applier) update(rn *resolve.Node, p Patch) error {
	origin := rn.Origin()
	if !a.attached(origin) {
		return ErrNoSource
	}
	if p.IsValueCompared() || rn.Kind() == tree.KindAtRule {
		if origin.Kind() != tree.KindAtRule {
			return ErrNoSource
		}
		return origin.SetValue(p.Value)
	}
	if !origin.IsContainer() {
		return tree.ErrNoContainer
	}
	props := rn.Properties()
	for _, r := range p.Removed {
		if prop := findProperty(props, r.Name); prop != nil && a.attached(prop.Origin()) {
			if err := prop.Origin().Remove(false); err != nil {
				return err
			}
		}
	}
	// declarations of the section in resolved order, as edited so far
	var live []decl
	for _, prop := range props {
		if o := prop.Origin(); a.attached(o) {
			live = append(live, decl{name: prop.Name(), origin: o})
		}
	}
	var pending []Property
	for _, np := range p.Properties {
		at, ok := findDecl(live, np)
		if !ok || live[at].origin.Kind() != tree.KindProperty {
			pending = append(pending, np)
			continue
		}
		d := live[at]
		if np.Index != nil && *np.Index != at && d.origin.Parent() == origin {
			// moved within the section: re-insert at its new position
			if err := d.origin.Remove(false); err != nil {
				return err
			}
			live = append(live[:at], live[at+1:]...)
			pending = append(pending, np)
			continue
		}
		if d.origin.Value() != np.Value {
			if err := d.origin.SetValue(np.Value); err != nil {
				return err
			}
		}
	}
	sort.SliceStable(pending, func(i, j int) bool {
		return position(pending[i]) < position(pending[j])
	})
	for _, np := range pending {
		k := len(live)
		if np.Index != nil && *np.Index >= 0 && *np.Index < k {
			k = *np.Index
		}
		index := origin.ChildCount()
		if k < len(live) && live[k].origin.Parent() == origin {
			index = origin.IndexOfChild(live[k].origin)
		}
		inserted, err := a.insertProperty(origin, np, index)
		if err != nil {
			return err
		}
		if len(inserted) > 0 {
			live = append(live[:k], append([]decl{{name: np.Name, origin: inserted[0]}}, live[k:]...)...)
		}
	}
	return nil
}

// position orders declarations to insert by their target index. Declarations
// without an index go last.
func position(np Property) int {
	if np.Index == nil || *np.Index < 0 {
		return math.MaxInt
	}
	return *np.Index
}

// decl is a declaration of a resolved section and its source node.
type decl struct {
	name   string
	origin *tree.Node
}

// findDecl finds the position of the declaration a property patch refers
// to. The declaration at the patch index is preferred, so that repeated
// names address the right occurrence.
func findDecl(live []decl, np Property) (int, bool) {
	if np.Index != nil && *np.Index >= 0 && *np.Index < len(live) && live[*np.Index].name == np.Name {
		return *np.Index, true
	}
	for i, d := range live {
		if d.name == np.Name {
			return i, true
		}
	}
	return -1, false
}

func findProperty(props []*resolve.Node, name string) *resolve.Node {
	for _, p := range props {
		if p.Name() == name {
			return p
		}
	}
	return nil
}

func (a *applier) insertProperty(container *tree.Node, prop Property, index int) ([]*tree.Node, error) {
	st := styleNear(container, a.style)
	line := prop.Name + st.colon + prop.Value + ";"
	count := container.ChildCount()
	var text string
	switch {
	case count == 0:
		d := depth(container)
		if body := container.Value(); strings.TrimSpace(body) == "" && strings.Contains(body, "\n") {
			text = "\n" + st.indent(d+1) + line
		} else {
			text = st.newline + st.indent(d+1) + line + st.newline + st.indent(d)
		}
	case index < count:
		ref, _ := container.Child(index)
		text = line + leadingSpace(ref)
	default:
		ref, _ := container.Child(count - 1)
		text = leadingSpace(ref) + line
		if ref.Kind() == tree.KindProperty && !strings.HasSuffix(ref.Text(), ";") {
			text = ";" + text
		}
	}
	return container.InsertText(text, index)
}

// synthesize creates the sections of path rest below the resolved node rn,
// which has been located as the deepest existing part of the patch path.
func (a *applier) synthesize(rn *resolve.Node, rest locator.Path, p Patch) error {
	if p.Action == Remove || len(rest) == 0 {
		return ErrNotFound
	}
	container, segs := a.container(rn, rest, p.Path)
	if container == nil {
		return tree.ErrNoContainer
	}
	st := styleNear(container, a.style)
	d := depth(container) + 1
	body := render(st, segs, p, d)
	index := synthIndex(container, segs[0].Name)
	count := container.ChildCount()
	var text string
	switch {
	case count == 0 && container.Kind() == tree.KindRoot:
		text = body
		if strings.TrimSpace(a.tree.Source()) != "" {
			text = st.newline + body
		}
	case count == 0 && strings.TrimSpace(container.Value()) == "" && strings.Contains(container.Value(), "\n"):
		text = "\n" + body
	case count == 0:
		text = st.newline + body + st.newline + st.indent(d-1)
	case index < count:
		text = body + st.newline + st.indent(d)
	default:
		text = st.newline + body
	}
	_, err := container.InsertText(text, index)
	return err
}

// container selects the source node receiving synthesized sections. For
// preprocessor sources only the root and top-level at-rule blocks qualify;
// otherwise the complete path is synthesized at the root.
func (a *applier) container(rn *resolve.Node, rest, full locator.Path) (*tree.Node, locator.Path) {
	if rn == nil || rn.Parent() == nil {
		return a.tree.Root(), rest
	}
	origin := rn.Origin()
	if !a.attached(origin) || !origin.IsContainer() {
		return a.tree.Root(), full
	}
	if a.opts.Syntax == resolve.CSS {
		return origin, rest
	}
	if origin.Parent() == a.tree.Root() && strings.HasPrefix(origin.Name(), "@") &&
		locator.NormalizeName(origin.Name()) == locator.NormalizeName(rn.Name()) {
		return origin, rest
	}
	return a.tree.Root(), full
}

// render produces the text of nested sections for path segs at depth d.
func render(st style, segs locator.Path, p Patch, d int) string {
	ind := st.indent(d)
	name := segs[0].Name
	if len(segs) == 1 && p.IsValueCompared() {
		return ind + name + " " + p.Value + ";"
	}
	var b strings.Builder
	b.WriteString(ind + name + " {")
	if len(segs) == 1 {
		for _, prop := range p.Properties {
			b.WriteString(st.newline + st.indent(d+1) + prop.Name + st.colon + prop.Value + ";")
		}
	} else {
		b.WriteString(st.newline + render(st, segs[1:], p, d+1))
	}
	b.WriteString(st.newline + ind + "}")
	return b.String()
}

// synthIndex is the insertion index for a new section: @charset goes
// first, @import after existing @charset and @import rules, everything
// else last.
func synthIndex(container *tree.Node, name string) int {
	kw := strings.ToLower(name)
	switch {
	case strings.HasPrefix(kw, "@charset"):
		return 0
	case strings.HasPrefix(kw, "@import"):
		last := -1
		for i, ch := range container.Children() {
			chkw := strings.ToLower(ch.Name())
			if ch.Kind() == tree.KindAtRule && (chkw == "@charset" || chkw == "@import") {
				last = i
			}
		}
		return last + 1
	}
	return container.ChildCount()
}

// depth is the nesting level of a node; top-level nodes have depth 0.
func depth(n *tree.Node) int {
	return len(n.Ancestors()) - 1
}
