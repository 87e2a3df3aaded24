package resolve

/*
License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/

import (
	"errors"
	"fmt"
	"strings"

	"github.com/npillmayer/cssync/resolve/expr"
	"github.com/npillmayer/cssync/tree"
)

// ErrRecursion is reported if a mixin or function call exceeds the
// recursion limits of Options.
var ErrRecursion = errors.New("recursion limit exceeded")

// Resolve expands the preprocessor semantics of a source tree and returns
// the resulting resolved tree, which resembles the CSS the source compiles
// to. For plain CSS the resolved tree mirrors the source tree.
//
// Resolve never fails: constructs which cannot be resolved are reported to
// Options.OnWarning and skipped or kept as literal text.
func Resolve(t *tree.Tree, opts Options) *Node {
	opts = opts.withDefaults()
	if opts.Syntax == CSS {
		return mirror(t.Root())
	}
	r := &resolver{opts: opts, root: newRoot()}
	r.root.origin = t.Root()
	deps := newScope(nil)
	r.global = deps
	for _, dep := range opts.Dependencies {
		r.collectDependency(dep, deps)
	}
	r.global = newScope(deps)
	r.block(t.Root().Children(), &context{container: r.root}, r.global)
	r.applyExtends()
	prune(r.root)
	tracer().Debugf("resolved %s source into %d sections", opts.Syntax, len(Sections(r.root)))
	return r.root
}

// ResolveSource parses src and resolves it. Parse errors are returned;
// resolution problems are not.
func ResolveSource(src string, opts Options) (*Node, error) {
	t, err := tree.Build(src)
	if err != nil {
		return nil, err
	}
	return Resolve(t, opts), nil
}

func mirror(src *tree.Node) *Node {
	root := newRoot()
	root.origin = src
	var copyChildren func(from *tree.Node, to *Node)
	copyChildren = func(from *tree.Node, to *Node) {
		for _, ch := range from.Children() {
			value := ""
			if ch.Kind() != tree.KindSection {
				value = ch.Value()
			}
			copyChildren(ch, to.add(ch.Kind(), ch.Name(), value, ch))
		}
	}
	copyChildren(src, root)
	return root
}

// resolver holds the state of a single resolution.
type resolver struct {
	opts    Options
	root    *Node
	global  *scope // document scope, target of SCSS !global
	extends []*extendReq
	stack   []string // signatures of active mixin and function calls
}

// context is the output position of a block.
type context struct {
	selectors   []string // selectors of the enclosing rule
	rule        *Node    // receives properties
	container   *Node    // receives rules: the root, a media block or an at-rule
	atName      string   // keyword of the enclosing bubbling at-rule
	queries     []string // its (combined) query list
	mediaParent *Node    // container of the enclosing bubbling at-rule
	important   bool     // mixin called with !important
}

func (r *resolver) dialect() expr.Dialect {
	if r.opts.Syntax == SCSS {
		return expr.SCSS
	}
	return expr.LESS
}

func (r *resolver) warn(n *tree.Node, msg, construct string, err error) {
	pos := -1
	if n != nil {
		pos = n.Start()
		if construct == "" {
			construct = abbreviate(n.Text())
		}
	}
	e := &ResolutionError{Construct: construct, Msg: msg, Pos: pos, Err: err}
	tracer().Infof("%v", e)
	if r.opts.OnWarning != nil {
		r.opts.OnWarning(e)
	}
}

func abbreviate(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if len(s) > 40 {
		return s[:37] + "..."
	}
	return s
}

func (r *resolver) push(sig string) error {
	if len(r.stack) >= r.opts.MixinStackLimit {
		return fmt.Errorf("%w: call depth %d at %s", ErrRecursion, len(r.stack), sig)
	}
	count := 0
	for _, s := range r.stack {
		if s == sig {
			count++
		}
	}
	if count >= r.opts.MixinRepeatLimit {
		return fmt.Errorf("%w: %s repeated %d times", ErrRecursion, sig, count)
	}
	r.stack = append(r.stack, sig)
	return nil
}

func (r *resolver) pop() {
	r.stack = r.stack[:len(r.stack)-1]
}

func (r *resolver) collectDependency(dep *tree.Tree, sc *scope) {
	nodes := dep.Root().Children()
	r.collect(nodes, sc)
	if r.opts.Syntax != SCSS {
		return
	}
	for _, n := range nodes {
		if n.Kind() == tree.KindProperty && strings.HasPrefix(strings.TrimSpace(n.Name()), "$") {
			r.assign(sc, n.Name(), n.Value(), n)
		}
	}
}

// --- Blocks ----------------------------------------------------------------

// block resolves a list of sibling nodes. Definitions are collected before
// any of the nodes is resolved.
func (r *resolver) block(nodes []*tree.Node, ctx *context, sc *scope) {
	r.collect(nodes, sc)
	for i := 0; i < len(nodes); i++ {
		n := nodes[i]
		switch n.Kind() {
		case tree.KindProperty:
			r.property(n, ctx, sc)
		case tree.KindAtRule:
			r.atRule(n, ctx, sc)
		case tree.KindSection:
			i = r.section(nodes, i, ctx, sc)
		}
	}
}

// collect registers the LESS variables and the mixin and function
// definitions of a block.
func (r *resolver) collect(nodes []*tree.Node, sc *scope) {
	for _, n := range nodes {
		switch n.Kind() {
		case tree.KindProperty:
			if r.opts.Syntax == LESS && isLessVariable(n.Name()) {
				sc.define(n.Name(), &binding{raw: n.Value(), lazy: true, scope: sc})
			}
		case tree.KindSection:
			for _, def := range r.definitions(n, sc) {
				if def.function {
					sc.funcs[def.key] = def
				} else {
					sc.mixins[def.key] = append(sc.mixins[def.key], def)
				}
			}
		}
	}
}

func isLessVariable(name string) bool {
	name = strings.TrimSpace(name)
	return len(name) > 1 && name[0] == '@' && name[1] != '{'
}

func (r *resolver) property(n *tree.Node, ctx *context, sc *scope) {
	name := strings.TrimSpace(n.Name())
	switch r.opts.Syntax {
	case LESS:
		if isLessVariable(name) {
			return
		}
		if n.Value() == "" && name != "" && (name[0] == '.' || name[0] == '#') {
			r.callLess(name, n, ctx, sc)
			return
		}
		if name == "&" && strings.HasPrefix(n.Value(), "extend(") {
			r.extendLess(n.Value(), ctx, n)
			return
		}
	case SCSS:
		if strings.HasPrefix(name, "$") {
			r.assign(sc, name, n.Value(), n)
			return
		}
	}
	r.emit(name, n.Value(), n, ctx, sc)
}

func (r *resolver) emit(name, value string, n *tree.Node, ctx *context, sc *scope) {
	if ctx.rule == nil {
		r.warn(n, "property outside of a rule", "", nil)
		return
	}
	name = r.interpolate(name, sc, n)
	value = r.value(value, sc, n)
	if ctx.important && !strings.HasSuffix(value, "!important") {
		value += " !important"
	}
	ctx.rule.add(tree.KindProperty, name, value, n)
}

func (r *resolver) atRule(n *tree.Node, ctx *context, sc *scope) {
	kw := strings.ToLower(strings.TrimSpace(n.Name()))
	value := n.Value()
	if r.opts.Syntax == SCSS {
		switch kw {
		case "@include":
			r.include(value, nil, n, ctx, sc)
			return
		case "@extend":
			r.extendSCSS(value, ctx, n)
			return
		case "@content":
			r.content(ctx, sc)
			return
		case "@return":
			r.warn(n, "@return outside of a function", "", nil)
			return
		case "@debug", "@warn":
			tracer().Infof("%s %s", kw, r.value(value, sc, n))
			return
		case "@error":
			r.warn(n, r.value(value, sc, n), "", nil)
			return
		case "@use", "@forward":
			return
		}
	} else {
		if kw == "@plugin" {
			return
		}
		if defs := sc.findMixins(kw); len(defs) > 0 {
			r.callDetached(defs[len(defs)-1], n, ctx)
			return
		}
	}
	value = r.interpolate(value, sc, n)
	if kw == "@import" && !isCSSImport(value) {
		tracer().Debugf("dropping preprocessor import %s", value)
		return
	}
	ctx.container.add(tree.KindAtRule, strings.TrimSpace(n.Name()), value, n)
}

// isCSSImport is true for imports which survive compilation.
func isCSSImport(value string) bool {
	v := strings.ToLower(value)
	return strings.HasPrefix(v, "url(") || strings.Contains(v, ".css") ||
		strings.Contains(v, "//") || strings.Contains(v, "(css)")
}

// section resolves the section at nodes[i] and returns the index of the
// last node consumed.
func (r *resolver) section(nodes []*tree.Node, i int, ctx *context, sc *scope) int {
	n := nodes[i]
	name := strings.TrimSpace(n.Name())
	kw, rest := splitDirective(name)
	if r.opts.Syntax == SCSS {
		switch kw {
		case "@mixin", "@function":
			return i
		case "@if":
			branch, last := r.ifChain(nodes, i, sc)
			if branch != nil {
				r.block(branch.Children(), ctx, newFlowScope(sc))
			}
			return last
		case "@else":
			r.warn(n, "@else without @if", "", nil)
			return i
		case "@for", "@each", "@while":
			r.loop(n, sc, func(it *scope) bool {
				r.block(n.Children(), ctx, it)
				return false
			})
			return i
		case "@include":
			r.include(rest, n, n, ctx, sc)
			return i
		case "@at-root":
			r.atRoot(rest, n, ctx, sc)
			return i
		}
	}
	switch {
	case kw == "@media" || kw == "@supports":
		r.media(kw, rest, n, ctx, sc)
	case kw != "":
		if r.opts.Syntax == LESS && strings.HasSuffix(name, ":") {
			return i // detached ruleset
		}
		r.opaque(n, ctx, sc)
	case r.opts.Syntax == LESS && isParametricMixin(name):
		// definitions only produce output when called
	case r.opts.Syntax == SCSS && strings.HasSuffix(name, ":"):
		r.nestedProperties(strings.TrimSpace(strings.TrimSuffix(name, ":")), n, ctx, sc)
	default:
		r.rule(name, n, ctx, sc)
	}
	return i
}

// splitDirective separates the lower-case at-keyword of a section name from
// the rest of the name. kw is empty if name does not start with '@'.
func splitDirective(name string) (kw, rest string) {
	name = strings.TrimSpace(name)
	if !strings.HasPrefix(name, "@") {
		return "", name
	}
	i := 1
	for i < len(name) && (isNameByte(name[i])) {
		i++
	}
	return strings.ToLower(name[:i]), strings.TrimSpace(name[i:])
}

func isNameByte(c byte) bool {
	return c == '-' || c == '_' || c >= '0' && c <= '9' || c >= 'a' && c <= 'z' ||
		c >= 'A' && c <= 'Z' || c >= 0x80
}

// rule resolves a style rule with selector text sel.
func (r *resolver) rule(sel string, n *tree.Node, ctx *context, sc *scope) {
	sel = r.interpolate(sel, sc, n)
	if r.opts.Syntax == LESS {
		var guard string
		if sel, guard = splitGuard(sel); guard != "" {
			ok, err := expr.Guard(guard, r.env(sc))
			if err != nil {
				r.warn(n, "cannot evaluate guard", guard, err)
				return
			}
			if !ok {
				return
			}
		}
	}
	var items []string
	type extension struct {
		item    string
		targets []string
	}
	var exts []extension
	for _, item := range splitList(sel) {
		item, targets := stripExtend(item)
		items = append(items, item)
		if len(targets) > 0 {
			exts = append(exts, extension{item, targets})
		}
	}
	full := nest(ctx.selectors, items, r.opts.Syntax)
	if len(full) == 0 {
		r.warn(n, "empty selector", sel, nil)
		return
	}
	for _, ext := range exts {
		extenders := nest(ctx.selectors, []string{ext.item}, r.opts.Syntax)
		for _, target := range ext.targets {
			r.addExtend(extenders, target, n)
		}
	}
	rule := ctx.container.add(tree.KindSection, strings.Join(full, ", "), "", n)
	inner := *ctx
	inner.selectors = full
	inner.rule = rule
	r.block(n.Children(), &inner, newScope(sc))
}

// media resolves a bubbling at-rule (@media or @supports). Nested blocks of
// the same kind are merged into a single block with combined queries,
// placed next to the outermost one.
func (r *resolver) media(kw, query string, n *tree.Node, ctx *context, sc *scope) {
	query = r.substituteVars(r.interpolate(query, sc, n), sc)
	queries := splitList(query)
	parent, combined := ctx.container, queries
	if ctx.atName == kw {
		parent, combined = ctx.mediaParent, combineQueries(ctx.queries, queries)
	}
	m := parent.add(tree.KindSection, kw+" "+strings.Join(combined, ", "), "", n)
	inner := *ctx
	inner.atName, inner.queries, inner.mediaParent = kw, combined, parent
	inner.container, inner.rule = m, nil
	if len(ctx.selectors) > 0 {
		inner.rule = m.add(tree.KindSection, strings.Join(ctx.selectors, ", "), "", n)
	}
	r.block(n.Children(), &inner, newScope(sc))
}

// opaque resolves an at-rule with a body which neither bubbles nor nests
// selectors, e.g. @font-face or @keyframes.
func (r *resolver) opaque(n *tree.Node, ctx *context, sc *scope) {
	name := r.interpolate(strings.TrimSpace(n.Name()), sc, n)
	s := ctx.container.add(tree.KindSection, name, "", n)
	inner := *ctx
	inner.selectors, inner.rule, inner.container = nil, s, s
	inner.atName, inner.queries, inner.mediaParent = "", nil, nil
	r.block(n.Children(), &inner, newScope(sc))
}

// substituteVars replaces plain variable references in text, as used in
// media queries.
func (r *resolver) substituteVars(text string, sc *scope) string {
	if !strings.ContainsAny(text, "@$") {
		return text
	}
	var b strings.Builder
	for i := 0; i < len(text); i++ {
		c := text[i]
		if (c == '@' || c == '$') && i+1 < len(text) && isNameByte(text[i+1]) {
			j := i + 1
			for j < len(text) && isNameByte(text[j]) {
				j++
			}
			if v, ok := r.lookup(sc, text[i:j]); ok {
				b.WriteString(expr.Unquote(v))
				i = j - 1
				continue
			}
		}
		b.WriteByte(c)
	}
	return b.String()
}

func (r *resolver) interpolate(text string, sc *scope, n *tree.Node) string {
	s, err := expr.Interpolate(text, r.env(sc))
	if err != nil {
		r.warn(n, "cannot interpolate", text, err)
		return text
	}
	return s
}

// value resolves the value of a declaration. Values which cannot be
// evaluated are kept literally.
func (r *resolver) value(text string, sc *scope, n *tree.Node) string {
	text = r.interpolate(text, sc, n)
	if !strings.ContainsAny(text, "@$(*+/") && !strings.Contains(text, " - ") {
		return text
	}
	v, err := expr.Eval(text, r.env(sc))
	if err != nil {
		if strings.ContainsAny(text, "@$") {
			r.warn(n, "cannot evaluate value", text, err)
		}
		return text
	}
	return v.String()
}

// eval evaluates an expression, falling back to its literal text.
func (r *resolver) eval(text string, sc *scope, n *tree.Node) expr.Value {
	text = r.interpolate(text, sc, n)
	v, err := expr.Eval(text, r.env(sc))
	if err != nil {
		if n != nil && strings.ContainsAny(text, "@$") {
			r.warn(n, "cannot evaluate expression", text, err)
		}
		return expr.Keyword(strings.TrimSpace(text))
	}
	return v
}

// prune removes rules without declarations.
func prune(n *Node) {
	for _, ch := range append([]*Node(nil), n.children...) {
		if ch.kind != tree.KindSection {
			continue
		}
		prune(ch)
		if len(ch.children) == 0 {
			n.removeChild(ch)
		}
	}
}
