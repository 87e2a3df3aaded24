package resolve

/*
License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/

import (
	"fmt"
	"strings"

	"github.com/npillmayer/cssync/resolve/expr"
	"github.com/npillmayer/cssync/tree"
)

// assign evaluates an SCSS variable assignment. Assignments inside control
// directives update an existing variable of an enclosing scope; otherwise
// the variable is local to the current scope, unless flagged !global.
func (r *resolver) assign(sc *scope, name, text string, n *tree.Node) {
	text, isDefault, isGlobal := assignmentFlags(text)
	key := varKey(name)
	target := sc
	if isGlobal {
		target = r.global
	} else {
		for s := sc; s != nil; s = s.parent {
			if _, ok := s.vars[key]; ok {
				target = s
				break
			}
			if !s.flow {
				break
			}
		}
	}
	if isDefault {
		if b := target.find(key); b != nil && b.value != nil {
			if _, null := b.value.(expr.Null); !null {
				return
			}
		}
	}
	target.vars[key] = &binding{value: r.eval(text, sc, n)}
}

func assignmentFlags(text string) (value string, isDefault, isGlobal bool) {
	value = strings.TrimSpace(text)
	for {
		lower := strings.ToLower(value)
		switch {
		case strings.HasSuffix(lower, "!default"):
			isDefault = true
			value = strings.TrimSpace(value[:len(value)-len("!default")])
		case strings.HasSuffix(lower, "!global"):
			isGlobal = true
			value = strings.TrimSpace(value[:len(value)-len("!global")])
		default:
			return
		}
	}
}

// include expands `@include name(args)`, optionally with a content block.
func (r *resolver) include(text string, content *tree.Node, n *tree.Node, ctx *context, sc *scope) {
	text = strings.TrimSpace(text)
	if i := strings.Index(text, " using "); i >= 0 {
		text = strings.TrimSpace(text[:i])
	}
	head, argText, _ := splitCall(text)
	name := strings.ReplaceAll(head, "_", "-")
	defs := sc.findMixins(name)
	if len(defs) == 0 {
		r.warn(n, "undefined mixin", name, nil)
		return
	}
	def := defs[len(defs)-1]
	args := r.args(argText, sc, n)
	ps, ok := r.bind(def, args, sc)
	if !ok {
		r.warn(n, "arguments do not match mixin", name, nil)
		return
	}
	if err := r.push(signature(name, args)); err != nil {
		r.warn(n, "mixin not expanded", name, err)
		return
	}
	defer r.pop()
	if content != nil {
		ps.content = &contentBlock{nodes: content.Children(), scope: sc}
	}
	r.block(def.body.Children(), ctx, newScope(ps))
}

// content expands the content block of the innermost active @include.
func (r *resolver) content(ctx *context, sc *scope) {
	if cb := sc.findContent(); cb != nil {
		r.block(cb.nodes, ctx, newScope(cb.scope))
	}
}

// callFunction calls a user-defined SCSS function. It reports false for
// unknown functions, which are then handled by the expression evaluator.
func (r *resolver) callFunction(sc *scope, name string, args []expr.Arg) (expr.Value, bool, error) {
	if r.opts.Syntax != SCSS {
		return nil, false, nil
	}
	def := sc.findFunction(name)
	if def == nil {
		return nil, false, nil
	}
	ps, ok := r.bind(def, args, sc)
	if !ok {
		return nil, true, fmt.Errorf("%w: arguments do not match function %s", expr.ErrType, name)
	}
	if err := r.push(signature(name, args)); err != nil {
		return nil, true, err
	}
	defer r.pop()
	v, found, err := r.runFunction(def.body.Children(), newScope(ps))
	if err != nil {
		return nil, true, err
	}
	if !found {
		tracer().Infof("function %s did not @return a value", name)
		return expr.Null{}, true, nil
	}
	return v, true, nil
}

// runFunction executes the body of a function until a @return.
func (r *resolver) runFunction(nodes []*tree.Node, sc *scope) (expr.Value, bool, error) {
	for i := 0; i < len(nodes); i++ {
		n := nodes[i]
		switch n.Kind() {
		case tree.KindProperty:
			if strings.HasPrefix(strings.TrimSpace(n.Name()), "$") {
				r.assign(sc, n.Name(), n.Value(), n)
			} else {
				r.warn(n, "declaration inside a function", "", nil)
			}
		case tree.KindAtRule:
			switch strings.ToLower(strings.TrimSpace(n.Name())) {
			case "@return":
				v, err := expr.Eval(r.interpolate(n.Value(), sc, n), r.env(sc))
				return v, true, err
			case "@error":
				return nil, true, fmt.Errorf("@error %s", r.value(n.Value(), sc, n))
			case "@debug", "@warn":
				tracer().Infof("%s %s", n.Name(), r.value(n.Value(), sc, n))
			}
		case tree.KindSection:
			kw, _ := splitDirective(n.Name())
			switch kw {
			case "@if":
				branch, last := r.ifChain(nodes, i, sc)
				i = last
				if branch != nil {
					if v, found, err := r.runFunction(branch.Children(), newFlowScope(sc)); found || err != nil {
						return v, found, err
					}
				}
			case "@for", "@each", "@while":
				var v expr.Value
				var found bool
				var err error
				r.loop(n, sc, func(it *scope) bool {
					v, found, err = r.runFunction(n.Children(), it)
					return found || err != nil
				})
				if found || err != nil {
					return v, found, err
				}
			}
		}
	}
	return nil, false, nil
}

// nestedProperties expands SCSS nested properties like
// `font: { family: x; size: 1em; }`.
func (r *resolver) nestedProperties(prefix string, n *tree.Node, ctx *context, sc *scope) {
	for _, ch := range n.Children() {
		name := strings.TrimSpace(ch.Name())
		switch ch.Kind() {
		case tree.KindProperty:
			r.emit(prefix+"-"+name, ch.Value(), ch, ctx, sc)
		case tree.KindSection:
			if strings.HasSuffix(name, ":") {
				r.nestedProperties(prefix+"-"+strings.TrimSpace(strings.TrimSuffix(name, ":")), ch, ctx, sc)
			}
		}
	}
}

// atRoot resolves `@at-root` blocks, which leave the selector nesting.
func (r *resolver) atRoot(sel string, n *tree.Node, ctx *context, sc *scope) {
	inner := *ctx
	inner.selectors, inner.rule = nil, nil
	if sel != "" {
		r.rule(sel, n, &inner, sc)
		return
	}
	r.block(n.Children(), &inner, newScope(sc))
}
