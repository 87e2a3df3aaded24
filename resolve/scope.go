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

// binding is a variable of a scope.
//
// LESS variables are lazy: they keep their source text together with the
// scope they have been declared in, and are evaluated on every reference.
// SCSS variables and mixin parameters carry a value.
type binding struct {
	raw        string
	lazy       bool
	value      expr.Value
	scope      *scope
	evaluating bool
}

// scope is a lexical scope of variables, mixins and functions.
type scope struct {
	parent   *scope
	fallback *scope // caller scope, searched after the parent chain
	flow     bool   // scope of an SCSS control directive
	vars     map[string]*binding
	mixins   map[string][]*mixinDef
	funcs    map[string]*mixinDef
	content  *contentBlock // content block of the active SCSS @include
}

// contentBlock is the block passed to an SCSS mixin with @include.
type contentBlock struct {
	nodes []*tree.Node
	scope *scope
}

func newScope(parent *scope) *scope {
	return &scope{
		parent: parent,
		vars:   make(map[string]*binding),
		mixins: make(map[string][]*mixinDef),
		funcs:  make(map[string]*mixinDef),
	}
}

func newFlowScope(parent *scope) *scope {
	sc := newScope(parent)
	sc.flow = true
	return sc
}

// varKey normalizes a variable name. SCSS treats `-` and `_` as the same
// character in identifiers.
func varKey(name string) string {
	name = strings.TrimSpace(name)
	if strings.HasPrefix(name, "$") {
		return strings.ReplaceAll(name, "_", "-")
	}
	return name
}

// chain calls f for sc and its ancestors, then for the fallback chain of
// each scope visited. It stops as soon as f returns true.
func (sc *scope) chain(f func(*scope) bool) bool {
	seen := make(map[*scope]bool)
	var visit func(s *scope) bool
	visit = func(s *scope) bool {
		var fallbacks []*scope
		for ; s != nil; s = s.parent {
			if seen[s] {
				break
			}
			seen[s] = true
			if f(s) {
				return true
			}
			if s.fallback != nil {
				fallbacks = append(fallbacks, s.fallback)
			}
		}
		for _, fb := range fallbacks {
			if visit(fb) {
				return true
			}
		}
		return false
	}
	return visit(sc)
}

func (sc *scope) find(name string) *binding {
	key := varKey(name)
	var b *binding
	sc.chain(func(s *scope) bool {
		b = s.vars[key]
		return b != nil
	})
	return b
}

func (sc *scope) define(name string, b *binding) {
	sc.vars[varKey(name)] = b
}

func (sc *scope) findMixins(key string) []*mixinDef {
	var defs []*mixinDef
	sc.chain(func(s *scope) bool {
		defs = s.mixins[key]
		return len(defs) > 0
	})
	return defs
}

func (sc *scope) findFunction(name string) *mixinDef {
	name = strings.ReplaceAll(name, "_", "-")
	var def *mixinDef
	sc.chain(func(s *scope) bool {
		def = s.funcs[name]
		return def != nil
	})
	return def
}

func (sc *scope) findContent() *contentBlock {
	for s := sc; s != nil; s = s.parent {
		if s.content != nil {
			return s.content
		}
	}
	return nil
}

// --- Evaluation environment ------------------------------------------------

// env creates the expression environment for a scope.
func (r *resolver) env(sc *scope) *expr.Env {
	return &expr.Env{
		Dialect: r.dialect(),
		Lookup: func(name string) (expr.Value, bool) {
			return r.lookup(sc, name)
		},
		Call: func(name string, args []expr.Arg) (expr.Value, bool, error) {
			return r.callFunction(sc, name, args)
		},
	}
}

// lookup returns the value of a variable visible in sc. Lazy bindings are
// evaluated in their declaring scope; text which is not an expression is
// taken literally. A variable referencing itself is undefined.
func (r *resolver) lookup(sc *scope, name string) (expr.Value, bool) {
	if strings.HasPrefix(name, "@@") { // variable variable
		v, ok := r.lookup(sc, name[1:])
		if !ok {
			return nil, false
		}
		return r.lookup(sc, "@"+expr.Unquote(v))
	}
	b := sc.find(name)
	if b == nil {
		return nil, false
	}
	if !b.lazy {
		return b.value, true
	}
	if b.evaluating {
		r.warn(nil, "recursive variable definition", name, nil)
		return nil, false
	}
	b.evaluating = true
	defer func() { b.evaluating = false }()
	text := r.interpolate(b.raw, b.scope, nil)
	v, err := expr.Eval(text, r.env(b.scope))
	if err != nil {
		tracer().Debugf("taking value of %s literally: %v", name, err)
		return expr.Keyword(text), true
	}
	return v, true
}
