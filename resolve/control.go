package resolve

/*
License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/

import (
	"fmt"
	"math"
	"strings"

	"github.com/npillmayer/cssync/resolve/expr"
	"github.com/npillmayer/cssync/tree"
)

// ifChain evaluates the @if/@else chain starting at nodes[i]. It returns
// the section of the branch to take, or nil, and the index of the last
// node belonging to the chain.
func (r *resolver) ifChain(nodes []*tree.Node, i int, sc *scope) (*tree.Node, int) {
	var chosen *tree.Node
	last := i
	for j := i; j < len(nodes); j++ {
		n := nodes[j]
		if n.Kind() != tree.KindSection {
			break
		}
		kw, cond := splitDirective(n.Name())
		if j > i {
			if kw != "@else" {
				break
			}
			if lower := strings.ToLower(cond); strings.HasPrefix(lower, "if ") || strings.HasPrefix(lower, "if(") {
				cond = strings.TrimSpace(cond[2:])
			} else if cond != "" {
				r.warn(n, "malformed @else", "", nil)
				break
			}
		}
		last = j
		if chosen != nil {
			continue
		}
		if cond == "" && j > i {
			chosen = n
			continue
		}
		ok, err := expr.Cond(r.interpolate(cond, sc, n), r.env(sc))
		if err != nil {
			r.warn(n, "cannot evaluate condition", cond, err)
			continue
		}
		if ok {
			chosen = n
		}
	}
	return chosen, last
}

// loop runs the iterations of an @for, @each or @while directive. Every
// iteration gets a fresh scope holding the loop variables; body returns
// true to stop the loop. Loops are cut off after Options.LoopLimit
// iterations.
func (r *resolver) loop(n *tree.Node, sc *scope, body func(it *scope) bool) {
	kw, head := splitDirective(n.Name())
	head = r.interpolate(head, sc, n)
	var err error
	switch kw {
	case "@for":
		err = r.loopFor(head, n, sc, body)
	case "@each":
		err = r.loopEach(head, n, sc, body)
	case "@while":
		err = r.loopWhile(head, n, sc, body)
	}
	if err != nil {
		r.warn(n, "cannot run "+kw, head, err)
	}
}

func (r *resolver) limitReached(count int, n *tree.Node) bool {
	if count < r.opts.LoopLimit {
		return false
	}
	r.warn(n, fmt.Sprintf("loop stopped after %d iterations", count), "", nil)
	return true
}

// loopFor runs `$i from <a> through|to <b>`.
func (r *resolver) loopFor(head string, n *tree.Node, sc *scope, body func(*scope) bool) error {
	from := strings.Index(head, " from ")
	if from < 0 {
		return fmt.Errorf("%w: missing 'from'", expr.ErrSyntax)
	}
	name := strings.TrimSpace(head[:from])
	bounds := head[from+len(" from "):]
	inclusive, word := true, " through "
	sep := strings.Index(bounds, word)
	if sep < 0 {
		inclusive, word = false, " to "
		if sep = strings.Index(bounds, word); sep < 0 {
			return fmt.Errorf("%w: missing 'through' or 'to'", expr.ErrSyntax)
		}
	}
	a, err := r.number(bounds[:sep], sc)
	if err != nil {
		return err
	}
	b, err := r.number(bounds[sep+len(word):], sc)
	if err != nil {
		return err
	}
	start, end := math.Round(a.Val), math.Round(b.Val)
	step := 1.0
	if start > end {
		step = -1
	}
	if !inclusive {
		end -= step
	}
	count := 0
	for x := start; (step > 0 && x <= end) || (step < 0 && x >= end); x += step {
		if r.limitReached(count, n) {
			return nil
		}
		count++
		it := newFlowScope(sc)
		it.define(name, &binding{value: expr.Num(x, a.Unit)})
		if body(it) {
			return nil
		}
	}
	return nil
}

func (r *resolver) number(text string, sc *scope) (expr.Number, error) {
	v, err := expr.Eval(text, r.env(sc))
	if err != nil {
		return expr.Number{}, err
	}
	num, ok := v.(expr.Number)
	if !ok {
		return expr.Number{}, fmt.Errorf("%w: %s is not a number", expr.ErrType, v)
	}
	return num, nil
}

// loopEach runs `$x in <list>` and `$k, $v in <map>`.
func (r *resolver) loopEach(head string, n *tree.Node, sc *scope, body func(*scope) bool) error {
	in := strings.Index(head, " in ")
	if in < 0 {
		return fmt.Errorf("%w: missing 'in'", expr.ErrSyntax)
	}
	names := splitList(head[:in])
	if len(names) == 0 {
		return fmt.Errorf("%w: missing loop variable", expr.ErrSyntax)
	}
	v, err := expr.Eval(head[in+len(" in "):], r.env(sc))
	if err != nil {
		return err
	}
	var rows [][]expr.Value
	if m, ok := v.(expr.Map); ok {
		for i := range m.Keys {
			rows = append(rows, []expr.Value{m.Keys[i], m.Vals[i]})
		}
	} else {
		for _, item := range expr.Items(v) {
			if len(names) > 1 {
				rows = append(rows, expr.Items(item))
			} else {
				rows = append(rows, []expr.Value{item})
			}
		}
	}
	for count, row := range rows {
		if r.limitReached(count, n) {
			return nil
		}
		it := newFlowScope(sc)
		for i, name := range names {
			var val expr.Value = expr.Null{}
			if i < len(row) {
				val = row[i]
			}
			it.define(name, &binding{value: val})
		}
		if body(it) {
			return nil
		}
	}
	return nil
}

// loopWhile runs while a condition holds. The condition is evaluated in the
// enclosing scope, which the body updates through its assignments.
func (r *resolver) loopWhile(cond string, n *tree.Node, sc *scope, body func(*scope) bool) error {
	for count := 0; ; count++ {
		ok, err := expr.Cond(cond, r.env(sc))
		if err != nil {
			return err
		}
		if !ok || r.limitReached(count, n) {
			return nil
		}
		if body(newFlowScope(sc)) {
			return nil
		}
	}
}
