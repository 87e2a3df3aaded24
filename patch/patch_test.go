package patch

import (
	"encoding/json"
	"testing"

	"github.com/npillmayer/cssync/locator"
	"github.com/npillmayer/cssync/resolve"
	"github.com/npillmayer/cssync/tree"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func apply(t *testing.T, syntax resolve.Syntax, src string, patches ...Patch) Result {
	t.Helper()
	res, err := ApplySource(src, patches, DefaultOptions(syntax))
	require.NoError(t, err)
	return res
}

func TestAddSectionLearnsStyle(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "cssync.patch")
	tracer().SetTraceLevel(tracing.LevelError)
	defer teardown()
	//
	res := apply(t, resolve.CSS, "a{\n\tb:1;\n}", Patch{
		Path:       locator.MustParse("c"),
		Action:     Add,
		Properties: []Property{{Name: "d", Value: "2"}},
	})
	assert.Equal(t, "a{\n\tb:1;\n}\nc {\n\td:2;\n}", res.Source)
	assert.Len(t, res.Applied, 1)
	assert.Empty(t, res.Dropped)
}

func TestStyleFromNearestSection(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "cssync.patch")
	tracer().SetTraceLevel(tracing.LevelError)
	defer teardown()
	//
	src := "a {\n    b: 1;\n}\nc {\n\td:2;\n}\ne {}"
	res := apply(t, resolve.CSS, src, Patch{
		Path:       locator.MustParse("e"),
		Action:     Update,
		Properties: []Property{{Name: "f", Value: "1"}},
	})
	assert.Equal(t, "a {\n    b: 1;\n}\nc {\n\td:2;\n}\ne {\n\tf:1;\n}", res.Source)
	res = apply(t, resolve.CSS, "a {\n    b: 1;\n}\nc {\n\td:2;\n}", Patch{
		Path:       locator.MustParse("g"),
		Action:     Add,
		Properties: []Property{{Name: "h", Value: "1"}},
	})
	assert.Equal(t, "a {\n    b: 1;\n}\nc {\n\td:2;\n}\ng {\n\th:1;\n}", res.Source)
}

func TestAddNestedSections(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "cssync.patch")
	tracer().SetTraceLevel(tracing.LevelError)
	defer teardown()
	//
	res := apply(t, resolve.CSS, "a {\n  b: 1;\n}", Patch{
		Path:       locator.MustParse("@media print/.x"),
		Action:     Add,
		Properties: []Property{{Name: "color", Value: "black"}},
	})
	assert.Equal(t, "a {\n  b: 1;\n}\n@media print {\n  .x {\n    color: black;\n  }\n}", res.Source)
}

func TestUpdateProperties(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "cssync.patch")
	tracer().SetTraceLevel(tracing.LevelError)
	defer teardown()
	//
	src := "a {\n\tcolor: red;\n\tmargin: 0;\n}"
	res := apply(t, resolve.CSS, src, Patch{
		Path:   locator.MustParse("a"),
		Action: Update,
		Properties: []Property{
			{Name: "color", Value: "blue"},
			{Name: "padding", Value: "1px", Index: At(1)},
		},
	})
	assert.Equal(t, "a {\n\tcolor: blue;\n\tpadding: 1px;\n\tmargin: 0;\n}", res.Source)
	res = apply(t, resolve.CSS, src, Patch{
		Path:    locator.MustParse("a"),
		Action:  Update,
		Removed: []Removed{{Name: "margin"}},
	})
	assert.Equal(t, "a {\n\tcolor: red;\n}", res.Source)
	res = apply(t, resolve.CSS, "a{}", Patch{
		Path:       locator.MustParse("a"),
		Action:     Update,
		Properties: []Property{{Name: "b", Value: "1"}},
	})
	assert.Equal(t, "a{\n\tb: 1;\n}", res.Source)
}

func TestUpdateMovesProperties(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "cssync.patch")
	tracer().SetTraceLevel(tracing.LevelError)
	defer teardown()
	//
	res := apply(t, resolve.CSS, "a{b:1;c:2}", Patch{
		Path:   locator.MustParse("a"),
		Action: Update,
		Properties: []Property{
			{Name: "d", Value: "4", Index: At(1)},
			{Name: "b", Value: "1", Index: At(2)},
		},
	})
	assert.Equal(t, "a{c:2;d:4;b:1;}", res.Source)
	res = apply(t, resolve.CSS, "a {\n\tb: 1;\n\tc: 2;\n}", Patch{
		Path:       locator.MustParse("a"),
		Action:     Update,
		Properties: []Property{{Name: "b", Value: "3", Index: At(1)}},
	})
	assert.Equal(t, "a {\n\tc: 2;\n\tb: 3;\n}", res.Source)
}

func TestApplyKeepsTreeCurrent(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "cssync.patch")
	tracer().SetTraceLevel(tracing.LevelError)
	defer teardown()
	//
	tr := tree.MustBuild("a{b:1} c{d:1}")
	res := Apply(tr, []Patch{
		{Path: locator.MustParse("a"), Action: Update, Properties: []Property{{Name: "b", Value: "2"}}},
		{Path: locator.MustParse("c"), Action: Update, Properties: []Property{{Name: "d", Value: "2"}}},
	}, DefaultOptions(resolve.CSS))
	assert.Equal(t, "a{b:2} c{d:2}", res.Source)
	root := resolve.Resolve(tr, resolve.DefaultOptions(resolve.CSS))
	for _, sect := range resolve.Sections(root) {
		props := sect.Node.Properties()
		require.Len(t, props, 1)
		assert.Equal(t, "2", props[0].Value(), "expected value of %s to be current, isn't", sect.PathString)
	}
}

func TestRemoveSection(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "cssync.patch")
	tracer().SetTraceLevel(tracing.LevelError)
	defer teardown()
	//
	res := apply(t, resolve.CSS, "a{b:1;}\nc{d:2;}\nc{e:3;}",
		Patch{Path: locator.MustParse("c|2"), Action: Remove},
		Patch{Path: locator.MustParse("x"), Action: Remove},
	)
	assert.Equal(t, "a{b:1;}\nc{d:2;}", res.Source)
	require.Len(t, res.Dropped, 1)
	assert.Equal(t, "x", res.Dropped[0].Path.String())
}

func TestAtRuleOrdering(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "cssync.patch")
	tracer().SetTraceLevel(tracing.LevelError)
	defer teardown()
	//
	src := "@import url(a.css);\nb {\n\tc: 1;\n}"
	res := apply(t, resolve.CSS, src,
		Patch{Path: locator.MustParse("@import|2"), Action: Add, Value: "url(b.css)"},
		Patch{Path: locator.MustParse("@charset"), Action: Add, Value: `"utf-8"`},
	)
	assert.Equal(t, "@charset \"utf-8\";\n@import url(a.css);\n@import url(b.css);\nb {\n\tc: 1;\n}", res.Source)
	res = apply(t, resolve.CSS, src,
		Patch{Path: locator.MustParse("@import"), Action: Update, Value: "url(z.css)"})
	assert.Equal(t, "@import url(z.css);\nb {\n\tc: 1;\n}", res.Source)
}

func TestPatchLessThroughOrigins(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "cssync.patch")
	tracer().SetTraceLevel(tracing.LevelError)
	defer teardown()
	//
	src := ".a {\n  color: red;\n  .b {\n    margin: 0;\n  }\n}"
	res := apply(t, resolve.LESS, src, Patch{
		Path:   locator.MustParse(".a .b"),
		Action: Update,
		Properties: []Property{
			{Name: "margin", Value: "1px"},
			{Name: "padding", Value: "2px"},
		},
	})
	assert.Equal(t, ".a {\n  color: red;\n  .b {\n    margin: 1px;\n    padding: 2px;\n  }\n}", res.Source)
	res = apply(t, resolve.LESS, src, Patch{Path: locator.MustParse(".a .b"), Action: Remove})
	assert.Equal(t, ".a {\n  color: red;\n}", res.Source)
	res = apply(t, resolve.LESS, src, Patch{
		Path:       locator.MustParse(".c"),
		Action:     Add,
		Properties: []Property{{Name: "top", Value: "0"}},
	})
	assert.Equal(t, src+"\n.c {\n  top: 0;\n}", res.Source)
}

func TestCondense(t *testing.T) {
	a := locator.MustParse("a")
	patches := Condense([]Patch{
		{Path: a, Action: Add, Properties: []Property{{Name: "x", Value: "1"}}},
		{Path: locator.MustParse("b"), Action: Update, Removed: []Removed{{Name: "y"}}},
		{Path: a, Action: Update, Properties: []Property{{Name: "x", Value: "2"}, {Name: "z", Value: "3"}}},
		{Path: a, Action: Update, Removed: []Removed{{Name: "z"}}},
		{Path: locator.MustParse("b"), Action: Update, Properties: []Property{{Name: "y", Value: "0"}}},
	})
	require.Len(t, patches, 2)
	assert.Equal(t, Add, patches[0].Action)
	assert.Equal(t, []Property{{Name: "x", Value: "2"}}, patches[0].Properties)
	assert.Empty(t, patches[0].Removed)
	assert.Equal(t, []Property{{Name: "y", Value: "0"}}, patches[1].Properties)
	assert.Empty(t, patches[1].Removed)
	//
	patches = Condense([]Patch{
		{Path: locator.MustParse("c"), Action: Update},
		{Path: a, Action: Update, Properties: []Property{{Name: "x", Value: "1"}}},
		{Path: a, Action: Remove},
	})
	require.Len(t, patches, 2)
	assert.Equal(t, "c", patches[0].Path.String())
	assert.Equal(t, Remove, patches[1].Action)
	assert.Empty(t, patches[1].Properties)
	//
	patches = Condense([]Patch{
		{Path: a, Action: Remove},
		{Path: a, Action: Update, Properties: []Property{{Name: "x", Value: "1"}}},
	})
	require.Len(t, patches, 1)
	assert.Equal(t, Add, patches[0].Action)
}

func TestPatchJSON(t *testing.T) {
	in := `{"path":[[".a", 2], ["b"]], "action":"update",
		"properties":[{"name":"c","value":"1","index":0}], "removed":[{"name":"d"}]}`
	var p Patch
	require.NoError(t, json.Unmarshal([]byte(in), &p))
	assert.Equal(t, ".a|2/b", p.Path.String())
	require.Len(t, p.Properties, 1)
	require.NotNil(t, p.Properties[0].Index)
	assert.Equal(t, 0, *p.Properties[0].Index)
	out, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, `{"path":".a|2/b","action":"update",
		"properties":[{"name":"c","value":"1","index":0}],"removed":[{"name":"d"}]}`, string(out))
}

func TestTextEdits(t *testing.T) {
	before := "a {\n\tcolor: red;\n}\n"
	after := "a {\n\tcolor: blue;\n\tmargin: 0;\n}\n"
	edits := TextEdits(before, after)
	require.NotEmpty(t, edits)
	for i := 1; i < len(edits); i++ {
		if edits[i].Start < edits[i-1].End {
			t.Errorf("expected edits to be ordered and disjoint, aren't: %v", edits)
		}
	}
	assert.Equal(t, after, ApplyEdits(before, edits))
	assert.Empty(t, TextEdits(before, before))
}
