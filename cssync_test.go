package cssync_test

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/npillmayer/cssync"
	"github.com/npillmayer/cssync/patch"
	"github.com/npillmayer/cssync/resolve"
	"github.com/npillmayer/cssync/tree"
	"github.com/npillmayer/schuko/schukonf/testconfig"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigFromSchuko(t *testing.T) {
	conf, err := cssync.ConfigFromSchuko(testconfig.Conf{
		cssync.KeySyntax:    "less",
		cssync.KeyLoopLimit: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, resolve.LESS, conf.Syntax)
	assert.Equal(t, 10, conf.LoopLimit)
	assert.Equal(t, resolve.DefaultMixinStackLimit, conf.MixinStackLimit)
	_, err = cssync.ConfigFromSchuko(testconfig.Conf{cssync.KeySyntax: "stylus"})
	assert.Error(t, err)
	_, err = cssync.ConfigFromSchuko(testconfig.Conf{cssync.KeyCacheSize: "none"})
	assert.Error(t, err)
}

func TestEngineRoundTrip(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "cssync")
	tracing.Select("cssync").SetTraceLevel(tracing.LevelError)
	defer teardown()
	//
	conf := cssync.DefaultConfig()
	conf.Syntax = resolve.LESS
	var warnings []error
	conf.OnWarning = func(err error) { warnings = append(warnings, err) }
	engine, err := cssync.New(conf)
	require.NoError(t, err)
	vars := cssync.Source{URL: "vars.less", Content: "@main: red;\n.rounded() { border-radius: 2px; }"}
	//
	editor := ".box {\n  color: @main;\n  .title {\n    .rounded();\n  }\n}\n"
	css, err := engine.Compile(editor, vars)
	require.NoError(t, err)
	assert.Equal(t, ".box {\n  color: red;\n}\n.box .title {\n  border-radius: 2px;\n}", css)
	assert.Empty(t, warnings)
	//
	// the browser changed a value: carry it over to the LESS source
	browser := ".box { color: red; }\n.box .title { border-radius: 4px; }"
	patches, err := engine.DiffCSS(editor, browser, vars)
	require.NoError(t, err)
	require.Len(t, patches, 1)
	assert.Equal(t, ".box .title", patches[0].Path.String())
	res, err := engine.Patch(editor, patches, vars)
	require.NoError(t, err)
	require.Len(t, res.Dropped, 0)
	t.Logf("patched:\n%s", res.Source)
	// the mixin body lives in another file: the declaration is added locally
	assert.Equal(t, ".box {\n  color: @main;\n  .title {\n    .rounded();\n    border-radius: 4px;\n  }\n}\n", res.Source)
	//
	// the editor changed the source: carry it over to the browser CSS
	edited := ".box {\n  color: blue;\n  .title {\n    .rounded();\n  }\n}\n"
	patches, err = engine.Diff(editor, edited, vars)
	require.NoError(t, err)
	out, err := engine.PatchCSS(browser, patches)
	require.NoError(t, err)
	assert.Equal(t, ".box { color: blue; }\n.box .title { border-radius: 4px; }", out.Source)
	edits := patch.TextEdits(browser, out.Source)
	require.Len(t, edits, 1)
	assert.Equal(t, out.Source, patch.ApplyEdits(browser, edits))
	assert.Equal(t, 0, engine.EvictDependencies(time.Hour))
}

func TestEngineParseErrors(t *testing.T) {
	engine, err := cssync.New(cssync.DefaultConfig())
	require.NoError(t, err)
	_, err = engine.Patch("a { b: 1;", nil)
	var perr *tree.ParseError
	assert.True(t, errors.As(err, &perr), "expected parse error, have %v", err)
	_, err = engine.Compile("a { b: 1; } }")
	assert.True(t, errors.As(err, &perr))
}

func TestEngineSharesDependenciesBetweenGoroutines(t *testing.T) {
	conf := cssync.DefaultConfig()
	conf.Syntax = resolve.LESS
	engine, err := cssync.New(conf)
	require.NoError(t, err)
	vars := cssync.Source{URL: "vars.less", Content: "@main: red;\n.rounded() { border-radius: 2px; }"}
	a := ".box { color: @main; .title { .rounded(); } }"
	b := ".box { color: blue; .title { .rounded(); } }"
	//
	var wg sync.WaitGroup
	counts := make([]int, 8)
	errs := make([]error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			patches, err := engine.Diff(a, b, vars)
			counts[i], errs[i] = len(patches), err
		}(i)
	}
	wg.Wait()
	for i := range counts {
		require.NoError(t, errs[i])
		assert.Equal(t, 1, counts[i], "expected a single patch for run %d, isn't", i)
	}
}
