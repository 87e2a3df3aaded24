package resolve

/*
License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/

import (
	"strings"

	"github.com/npillmayer/cssync/resolve/expr"
	"github.com/npillmayer/cssync/tree"
)

// mixinDef is a mixin (LESS ruleset or parametric mixin, SCSS @mixin), an
// SCSS @function or a LESS detached ruleset.
type mixinDef struct {
	key      string
	params   []param
	guard    string
	body     *tree.Node
	scope    *scope // scope of the definition
	function bool
}

// param is a formal parameter of a mixin or function.
type param struct {
	name    string // including the sigil; empty for patterns and anonymous rest
	def     string // default value
	hasDef  bool
	pattern string // LESS pattern-matching literal
	rest    bool
}

// definitions extracts the mixin or function definitions declared by a
// section.
func (r *resolver) definitions(n *tree.Node, sc *scope) []*mixinDef {
	name := strings.TrimSpace(n.Name())
	if r.opts.Syntax == SCSS {
		kw, rest := splitDirective(name)
		if kw != "@mixin" && kw != "@function" {
			return nil
		}
		head, params, _ := splitCall(rest)
		return []*mixinDef{{
			key:      strings.ReplaceAll(head, "_", "-"),
			params:   parseParams(params, SCSS),
			body:     n,
			scope:    sc,
			function: kw == "@function",
		}}
	}
	if strings.HasPrefix(name, "@") {
		if strings.HasSuffix(name, ":") { // detached ruleset
			key := strings.ToLower(strings.TrimSpace(strings.TrimSuffix(name, ":")))
			return []*mixinDef{{key: key, body: n, scope: sc}}
		}
		return nil
	}
	sel, guard := splitGuard(name)
	if head, params, ok := splitCall(sel); ok && isMixinSelector(head) {
		return []*mixinDef{{
			key:    mixinKey(head),
			params: parseParams(params, LESS),
			guard:  guard,
			body:   n,
			scope:  sc,
		}}
	}
	var defs []*mixinDef
	for _, item := range splitList(sel) {
		if isMixinSelector(item) {
			defs = append(defs, &mixinDef{key: mixinKey(item), guard: guard, body: n, scope: sc})
		}
	}
	return defs
}

// isParametricMixin is true for LESS sections which only define a mixin,
// like `.m(@a) {}` or `.m() when (iscolor(@c)) {}`.
func isParametricMixin(name string) bool {
	sel, _ := splitGuard(name)
	head, _, ok := splitCall(sel)
	return ok && isMixinSelector(head)
}

// isMixinSelector is true for selectors made of classes and ids only.
func isMixinSelector(sel string) bool {
	if sel == "" || (sel[0] != '.' && sel[0] != '#') || hasTop(sel, ',') {
		return false
	}
	for _, fr := range fragments(sel) {
		if isCombinator(fr) {
			continue
		}
		if fr[0] != '.' && fr[0] != '#' || strings.ContainsAny(fr, ":[(&") || len(fr) < 2 {
			return false
		}
	}
	return true
}

// mixinParts splits a mixin name into its operator-stripped fragments.
func mixinParts(sel string) []string {
	var parts []string
	for _, fr := range fragments(sel) {
		if !isCombinator(fr) {
			parts = append(parts, fr)
		}
	}
	return parts
}

func mixinKey(sel string) string {
	return strings.Join(mixinParts(sel), " ")
}

// splitGuard separates a LESS `when` guard from a selector.
func splitGuard(text string) (sel, guard string) {
	depth := 0
	for i := 0; i < len(text); i++ {
		switch c := text[i]; c {
		case '(', '[':
			depth++
		case ')', ']':
			depth--
		case '"', '\'':
			if j := strings.IndexByte(text[i+1:], c); j >= 0 {
				i += j + 1
			}
		case ' ', '\t', '\n':
			if depth == 0 && len(text) > i+5 && strings.HasPrefix(text[i+1:], "when") && isSpaceOrParen(text[i+5]) {
				return strings.TrimSpace(text[:i]), strings.TrimSpace(text[i+5:])
			}
		}
	}
	return strings.TrimSpace(text), ""
}

func isSpaceOrParen(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '('
}

// splitCall separates a trailing parenthesized argument list from a name:
// ".m(1; 2)" => ".m", "1; 2". ok is false if there is no argument list.
func splitCall(s string) (head, args string, ok bool) {
	s = strings.TrimSpace(s)
	if !strings.HasSuffix(s, ")") {
		return s, "", false
	}
	depth := 0
	for i := len(s) - 1; i >= 0; i-- {
		switch s[i] {
		case ')':
			depth++
		case '(':
			depth--
			if depth == 0 {
				return strings.TrimSpace(s[:i]), s[i+1 : len(s)-1], true
			}
		}
	}
	return s, "", false
}

// splitArgs splits a parameter or argument list. LESS prefers semicolons
// as separators if present, so that comma lists may be passed.
func splitArgs(text string, syntax Syntax) []string {
	if syntax == LESS && hasTop(text, ';') {
		return splitTop(text, ';')
	}
	return splitTop(text, ',')
}

func isVarName(s string) bool {
	if len(s) < 2 || (s[0] != '@' && s[0] != '$') {
		return false
	}
	for i := 1; i < len(s); i++ {
		if !isNameByte(s[i]) {
			return false
		}
	}
	return true
}

// splitNamed splits `@name: value`.
func splitNamed(s string) (name, value string, ok bool) {
	i := strings.IndexByte(s, ':')
	if i < 0 {
		return "", "", false
	}
	name = strings.TrimSpace(s[:i])
	if !isVarName(name) {
		return "", "", false
	}
	return name, strings.TrimSpace(s[i+1:]), true
}

func parseParams(text string, syntax Syntax) []param {
	var params []param
	for _, item := range splitArgs(text, syntax) {
		switch {
		case item == "...":
			params = append(params, param{rest: true})
		case strings.HasSuffix(item, "...") && isVarName(strings.TrimSuffix(item, "...")):
			params = append(params, param{name: strings.TrimSuffix(item, "..."), rest: true})
		case isVarName(item):
			params = append(params, param{name: item})
		default:
			if name, def, ok := splitNamed(item); ok {
				params = append(params, param{name: name, def: def, hasDef: true})
			} else {
				params = append(params, param{pattern: item})
			}
		}
	}
	return params
}

// args evaluates the arguments of a call in the caller's scope.
func (r *resolver) args(text string, sc *scope, n *tree.Node) []expr.Arg {
	var args []expr.Arg
	for _, item := range splitArgs(text, r.opts.Syntax) {
		if name, value, ok := splitNamed(item); ok {
			args = append(args, expr.Arg{Name: name, Value: r.eval(value, sc, n)})
		} else if strings.HasSuffix(item, "...") {
			for _, v := range expr.Items(r.eval(strings.TrimSuffix(item, "..."), sc, n)) {
				args = append(args, expr.Arg{Value: v})
			}
		} else {
			args = append(args, expr.Arg{Value: r.eval(item, sc, n)})
		}
	}
	return args
}

func signature(key string, args []expr.Arg) string {
	parts := make([]string, len(args))
	for i, a := range args {
		if a.Name != "" {
			parts[i] = a.Name + ": " + a.Value.String()
		} else {
			parts[i] = a.Value.String()
		}
	}
	return key + "(" + strings.Join(parts, ", ") + ")"
}

// bind binds call arguments to the parameters of a definition. It fails if
// the arguments do not match the definition: too many arguments, unknown
// named arguments, missing mandatory arguments or non-matching patterns.
//
// LESS mixin bodies also see the variables of the caller.
func (r *resolver) bind(def *mixinDef, args []expr.Arg, caller *scope) (*scope, bool) {
	ps := newScope(def.scope)
	if r.opts.Syntax == LESS {
		ps.fallback = caller
	}
	var pos []expr.Value
	named := make(map[string]expr.Value)
	for _, a := range args {
		if a.Name != "" {
			named[varKey(a.Name)] = a.Value
		} else {
			pos = append(pos, a.Value)
		}
	}
	j := 0
	all := make([]expr.Value, 0, len(pos))
	for _, p := range def.params {
		switch {
		case p.rest:
			rest := append([]expr.Value(nil), pos[j:]...)
			if p.name != "" {
				sep := " "
				if r.opts.Syntax == SCSS {
					sep = ", "
				}
				ps.define(p.name, &binding{value: expr.List{Items: rest, Sep: sep}})
			}
			all = append(all, rest...)
			j = len(pos)
		case p.pattern != "":
			if j >= len(pos) {
				return nil, false
			}
			want := r.eval(p.pattern, def.scope, nil)
			if !expr.Equal(want, pos[j]) && want.String() != pos[j].String() {
				return nil, false
			}
			all = append(all, pos[j])
			j++
		default:
			key := varKey(p.name)
			var v expr.Value
			if nv, ok := named[key]; ok {
				v = nv
				delete(named, key)
			} else if j < len(pos) {
				v = pos[j]
				j++
			} else if p.hasDef {
				v = r.eval(p.def, ps, nil)
			} else {
				return nil, false
			}
			ps.define(p.name, &binding{value: v})
			all = append(all, v)
		}
	}
	if j < len(pos) || len(named) > 0 {
		return nil, false
	}
	if r.opts.Syntax == LESS {
		ps.define("@arguments", &binding{value: expr.List{Items: all, Sep: " "}})
	}
	return ps, true
}

// --- LESS mixin calls ------------------------------------------------------

type mixinMatch struct {
	def   *mixinDef
	scope *scope
}

// callLess expands a LESS mixin call like `.m(1; 2) !important`.
func (r *resolver) callLess(text string, n *tree.Node, ctx *context, sc *scope) {
	important := false
	if strings.HasSuffix(text, "!important") {
		important = true
		text = strings.TrimSpace(strings.TrimSuffix(text, "!important"))
	}
	text = strings.TrimSuffix(text, ";")
	head, argText, _ := splitCall(text)
	parts := mixinParts(head)
	defs := r.findLessMixins(sc, parts)
	if len(defs) == 0 {
		r.warn(n, "undefined mixin", head, nil)
		return
	}
	args := r.args(argText, sc, n)
	if err := r.push(signature(strings.Join(parts, " "), args)); err != nil {
		r.warn(n, "mixin not expanded", head, err)
		return
	}
	defer r.pop()
	matches, bound := r.matchLess(defs, args, sc, n)
	if len(matches) == 0 {
		if !bound {
			r.warn(n, "no matching mixin definition", head, nil)
		}
		return
	}
	inner := *ctx
	inner.important = ctx.important || important
	for _, m := range matches {
		r.block(m.def.body.Children(), &inner, newScope(m.scope))
	}
}

// findLessMixins looks up the definitions for a (possibly namespaced)
// mixin name. Namespaces are searched through the bodies of their
// definitions.
func (r *resolver) findLessMixins(sc *scope, parts []string) []*mixinDef {
	if len(parts) == 0 {
		return nil
	}
	if defs := sc.findMixins(strings.Join(parts, " ")); len(defs) > 0 || len(parts) == 1 {
		return defs
	}
	var found []*mixinDef
	for _, ns := range sc.findMixins(parts[0]) {
		found = append(found, r.namespaceMixins(ns, parts[1:])...)
	}
	return found
}

func (r *resolver) namespaceMixins(ns *mixinDef, parts []string) []*mixinDef {
	inner := newScope(ns.scope)
	r.collect(ns.body.Children(), inner)
	if defs := inner.mixins[strings.Join(parts, " ")]; len(defs) > 0 || len(parts) == 1 {
		return defs
	}
	var found []*mixinDef
	for _, d := range inner.mixins[parts[0]] {
		found = append(found, r.namespaceMixins(d, parts[1:])...)
	}
	return found
}

// matchLess selects the definitions matching a call. Guards are evaluated
// with the arguments bound. Definitions guarded by `default()` apply only
// if no other definition matches. bound is true if at least one definition
// accepts the arguments, regardless of its guard.
func (r *resolver) matchLess(defs []*mixinDef, args []expr.Arg, caller *scope, n *tree.Node) (matches []mixinMatch, bound bool) {
	var fallbacks []mixinMatch
	for _, d := range defs {
		ps, ok := r.bind(d, args, caller)
		if !ok {
			continue
		}
		bound = true
		if d.guard == "" {
			matches = append(matches, mixinMatch{d, ps})
			continue
		}
		isDefault := false
		env := r.env(ps)
		env.Default = func() bool { return isDefault }
		ok, err := expr.Guard(d.guard, env)
		if err != nil {
			r.warn(n, "cannot evaluate guard", d.guard, err)
			continue
		}
		if ok {
			matches = append(matches, mixinMatch{d, ps})
			continue
		}
		if strings.Contains(d.guard, "default()") {
			isDefault = true
			if ok, _ := expr.Guard(d.guard, env); ok {
				fallbacks = append(fallbacks, mixinMatch{d, ps})
			}
		}
	}
	if len(matches) == 0 {
		return fallbacks, bound
	}
	return matches, bound
}

// callDetached expands a call of a LESS detached ruleset, `@detached();`.
func (r *resolver) callDetached(def *mixinDef, n *tree.Node, ctx *context) {
	if err := r.push(def.key + "()"); err != nil {
		r.warn(n, "detached ruleset not expanded", def.key, err)
		return
	}
	defer r.pop()
	r.block(def.body.Children(), ctx, newScope(def.scope))
}
