package cssync

/*
License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/

import (
	"time"

	"github.com/npillmayer/cssync/cssom/douceuradapter"
	"github.com/npillmayer/cssync/depcache"
	"github.com/npillmayer/cssync/diff"
	"github.com/npillmayer/cssync/patch"
	"github.com/npillmayer/cssync/resolve"
	"github.com/npillmayer/cssync/tree"
)

// Source is a dependency of a stylesheet, e.g. an imported file holding
// variables and mixins.
type Source struct {
	URL     string
	Content string
}

// Engine diffs and patches stylesheets. An Engine may be used from more
// than one goroutine. Trees of the sources handed to a call are private to
// that call, cached dependency trees are shared but only read.
type Engine struct {
	conf Config
	deps *depcache.Cache
}

// New creates an engine.
func New(conf Config) (*Engine, error) {
	cache, err := depcache.New(conf.CacheSize)
	if err != nil {
		return nil, err
	}
	return &Engine{conf: conf, deps: cache}, nil
}

// Config returns the configuration of the engine.
func (e *Engine) Config() Config {
	return e.conf
}

func (e *Engine) options(syntax resolve.Syntax, deps []Source) (resolve.Options, error) {
	opts := e.conf.resolveOptions(syntax)
	if syntax == resolve.CSS {
		return opts, nil
	}
	for _, dep := range deps {
		t, err := e.deps.Tree(dep.URL, dep.Content)
		if err != nil {
			return opts, tree.WrapErrorWithSource(err, dep.Content)
		}
		opts.Dependencies = append(opts.Dependencies, t)
	}
	return opts, nil
}

// Diff computes the patches turning stylesheet a into stylesheet b. Both
// are in the configured syntax.
func (e *Engine) Diff(a, b string, deps ...Source) ([]patch.Patch, error) {
	opts, err := e.options(e.conf.Syntax, deps)
	if err != nil {
		return nil, err
	}
	return diff.Diff(a, b, diff.Options{Options: opts})
}

// DiffCSS computes the patches turning stylesheet a, in the configured
// syntax, into the plain CSS stylesheet css, as held by a browser.
func (e *Engine) DiffCSS(a, css string, deps ...Source) ([]patch.Patch, error) {
	opts, err := e.options(e.conf.Syntax, deps)
	if err != nil {
		return nil, err
	}
	optsB := e.conf.resolveOptions(resolve.CSS)
	return diff.Diff(a, css, diff.Options{Options: opts, B: &optsB})
}

// Patch applies patches to a stylesheet in the configured syntax.
func (e *Engine) Patch(src string, patches []patch.Patch, deps ...Source) (patch.Result, error) {
	opts, err := e.options(e.conf.Syntax, deps)
	if err != nil {
		return patch.Result{Source: src}, err
	}
	res, err := patch.ApplySource(src, patches, patch.Options{Options: opts})
	if err != nil {
		return res, tree.WrapErrorWithSource(err, src)
	}
	if len(res.Dropped) > 0 {
		tracer().Infof("%d of %d patches could not be applied", len(res.Dropped), len(res.Dropped)+len(res.Applied))
	}
	return res, nil
}

// PatchCSS applies patches to a plain CSS stylesheet.
func (e *Engine) PatchCSS(css string, patches []patch.Patch) (patch.Result, error) {
	res, err := patch.ApplySource(css, patches, patch.Options{Options: e.conf.resolveOptions(resolve.CSS)})
	if err != nil {
		return res, tree.WrapErrorWithSource(err, css)
	}
	return res, nil
}

// Compile renders the CSS a stylesheet in the configured syntax resolves to.
func (e *Engine) Compile(src string, deps ...Source) (string, error) {
	opts, err := e.options(e.conf.Syntax, deps)
	if err != nil {
		return "", err
	}
	root, err := resolve.ResolveSource(src, opts)
	if err != nil {
		return "", tree.WrapErrorWithSource(err, src)
	}
	return douceuradapter.FromResolved(root).String(), nil
}

// EvictDependencies drops cached dependencies which have not been used
// within d and returns their number.
func (e *Engine) EvictDependencies(d time.Duration) int {
	return e.deps.EvictOlderThan(d)
}
