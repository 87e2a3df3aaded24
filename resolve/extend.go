package resolve

/*
License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/

import (
	"strings"

	"github.com/npillmayer/cssync/locator"
	"github.com/npillmayer/cssync/tree"
)

// extendReq is a request to add extenders to every rule matching target.
// Requests are applied in the order of their stamps, which follow document
// order.
type extendReq struct {
	stamp     int
	extenders []string
	target    string   // normalized target selector
	targetFr  []string // fragments of target
	all       bool     // partial match within compound selectors
	optional  bool     // no warning if nothing matches
	matched   bool
	node      *tree.Node
}

// addExtend registers a LESS `:extend(target)`; target may carry the
// `all` flag.
func (r *resolver) addExtend(extenders []string, target string, n *tree.Node) {
	target = strings.TrimSpace(target)
	all := false
	if strings.HasSuffix(target, " all") {
		all = true
		target = strings.TrimSpace(strings.TrimSuffix(target, " all"))
	}
	r.request(extenders, target, all, true, n)
}

func (r *resolver) request(extenders []string, target string, all, optional bool, n *tree.Node) {
	if len(extenders) == 0 {
		r.warn(n, "extend outside of a rule", "", nil)
		return
	}
	req := &extendReq{
		stamp:     len(r.extends),
		extenders: extenders,
		target:    locator.NormalizeName(target),
		targetFr:  fragments(target),
		all:       all,
		optional:  optional,
		node:      n,
	}
	r.extends = append(r.extends, req)
}

// extendLess handles `&:extend(.a, .b all);` inside a rule.
func (r *resolver) extendLess(value string, ctx *context, n *tree.Node) {
	_, inner, ok := splitCall(value)
	if !ok {
		r.warn(n, "malformed extend", value, nil)
		return
	}
	for _, target := range splitList(inner) {
		r.addExtend(ctx.selectors, target, n)
	}
}

// extendSCSS handles `@extend .a, .b !optional;`.
func (r *resolver) extendSCSS(value string, ctx *context, n *tree.Node) {
	value = strings.TrimSpace(value)
	optional := false
	if strings.HasSuffix(value, "!optional") {
		optional = true
		value = strings.TrimSpace(strings.TrimSuffix(value, "!optional"))
	}
	for _, target := range splitList(value) {
		r.request(ctx.selectors, target, true, optional, n)
	}
}

// stripExtend removes `:extend(...)` pseudo-classes from a selector and
// returns their targets.
func stripExtend(sel string) (string, []string) {
	var targets []string
	for {
		i := strings.Index(sel, ":extend(")
		if i < 0 {
			return strings.TrimSpace(sel), targets
		}
		open := i + len(":extend")
		depth, end := 0, -1
		for j := open; j < len(sel) && end < 0; j++ {
			switch sel[j] {
			case '(':
				depth++
			case ')':
				if depth--; depth == 0 {
					end = j
				}
			}
		}
		if end < 0 {
			return strings.TrimSpace(sel), targets
		}
		targets = append(targets, splitList(sel[open+1:end])...)
		sel = sel[:i] + sel[end+1:]
	}
}

// applyExtends unions the extenders of all requests into the selector lists
// of matching rules. Chained extends are followed by repeating the pass
// until no selector list changes; selectors already present are never
// added twice, which makes circular extends terminate.
func (r *resolver) applyExtends() {
	type ruleSels struct {
		node *Node
		sels []string
	}
	var rules []*ruleSels
	r.root.Walk(func(n *Node) {
		if n.kind == tree.KindSection && !strings.HasPrefix(n.name, "@") {
			rules = append(rules, &ruleSels{node: n, sels: splitList(n.name)})
		}
	})
	if len(r.extends) > 0 {
		passes := 0
		for changed := true; changed; passes++ {
			if passes == r.opts.ExtendPasses {
				r.warn(nil, "extend passes exhausted", "", nil)
				break
			}
			changed = false
			for _, req := range r.extends {
				for _, rule := range rules {
					for _, s := range rule.sels {
						produced := req.apply(s)
						if len(produced) > 0 {
							req.matched = true
						}
						for _, p := range produced {
							if !contains(rule.sels, p) {
								rule.sels = append(rule.sels, p)
								changed = true
							}
						}
					}
				}
			}
		}
		for _, req := range r.extends {
			if !req.matched && !req.optional {
				r.warn(req.node, "extend target not found", req.target, nil)
			}
		}
	}
	for _, rule := range rules {
		sels := rule.sels[:0]
		for _, s := range rule.sels {
			if !isPlaceholder(s) {
				sels = append(sels, s)
			}
		}
		if len(sels) == 0 {
			if rule.node.parent != nil {
				rule.node.parent.removeChild(rule.node)
			}
			continue
		}
		rule.node.name = strings.Join(sels, ", ")
	}
}

// apply returns the selectors a request derives from selector s.
func (req *extendReq) apply(s string) []string {
	if !req.all {
		if locator.NormalizeName(s) == req.target {
			return req.extenders
		}
		return nil
	}
	frags := fragments(s)
	var produced []string
	for _, at := range indexFragments(frags, req.targetFr) {
		for _, e := range req.extenders {
			replaced := make([]string, 0, len(frags)+4)
			replaced = append(replaced, frags[:at]...)
			replaced = append(replaced, fragments(e)...)
			replaced = append(replaced, frags[at+len(req.targetFr):]...)
			produced = append(produced, joinFragments(replaced))
		}
	}
	return produced
}

// isPlaceholder is true for selectors containing an SCSS placeholder.
func isPlaceholder(sel string) bool {
	if !strings.Contains(sel, "%") {
		return false
	}
	for _, fr := range fragments(sel) {
		if strings.HasPrefix(fr, "%") {
			return true
		}
	}
	return false
}

func contains(list []string, s string) bool {
	for _, x := range list {
		if x == s {
			return true
		}
	}
	return false
}
