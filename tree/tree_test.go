package tree

import (
	"errors"
	"strings"
	"testing"

	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenizeKinds(t *testing.T) {
	tokens, err := Tokenize(`a:hover{b:"x;y" (1;2) -moz-foo -1.5em #{$x}}`)
	require.NoError(t, err)
	kinds := make([]TokenKind, 0, len(tokens))
	for _, tok := range tokens {
		if tok.Kind != TokWhitespace {
			kinds = append(kinds, tok.Kind)
		}
	}
	expected := []TokenKind{TokIdent, TokColon, TokIdent, TokLBrace, TokIdent, TokColon,
		TokString, TokGroup, TokIdent, TokNumber, TokInterpolation, TokRBrace}
	assert.Equal(t, expected, kinds)
}

func TestTokenizeErrors(t *testing.T) {
	for _, src := range []string{
		`a { b: "abc }`,
		"a { b: 'x\ny'; }",
		`a { /* open`,
		`a { b: url(x; }`,
		`a { b: x) }`,
		"a { b: \x01 }",
	} {
		_, err := Build(src)
		var perr *ParseError
		if !errors.As(err, &perr) {
			t.Errorf("expected parse error for %q, have %v", src, err)
			continue
		}
		t.Logf("%q -> %v", src, err)
	}
}

func TestBuildSimple(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "cssync.tree")
	defer teardown()
	//
	tr, err := Build("a { color: red; margin : 0 auto }\n@import url(x.css);\n.b{}")
	require.NoError(t, err)
	t.Logf("tree =\n%s", tr.Dump())
	root := tr.Root()
	if root.ChildCount() != 3 {
		t.Fatalf("expected root to have 3 children, has %d", root.ChildCount())
	}
	a, _ := root.Child(0)
	assert.Equal(t, KindSection, a.Kind())
	assert.Equal(t, "a", a.Name())
	color, _ := a.Child(0)
	assert.Equal(t, "color", color.Name())
	assert.Equal(t, "red", color.Value())
	assert.Equal(t, "color: red;", color.Text())
	margin, _ := a.Child(1)
	assert.Equal(t, "margin", margin.Name())
	assert.Equal(t, "0 auto", margin.Value())
	imp, _ := root.Child(1)
	assert.Equal(t, KindAtRule, imp.Kind())
	assert.Equal(t, "@import", imp.Name())
	assert.Equal(t, "url(x.css)", imp.Value())
	b, _ := root.Child(2)
	assert.Equal(t, ".b", b.Name())
	assert.Equal(t, 0, b.ChildCount())
}

func TestBuildNested(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "cssync.tree")
	tracer().SetTraceLevel(tracing.LevelError)
	defer teardown()
	//
	src := `@v: 12px; // comment
table { th { font-weight: bold; } td { a: @v + 2; .mixin(1; 2); &:extend(.x all); } }
@media screen { .a { b: #{$c}; } }`
	tr, err := Build(src)
	require.NoError(t, err)
	t.Logf("tree =\n%s", tr.Dump())
	v, _ := tr.Root().Child(0)
	assert.Equal(t, KindProperty, v.Kind())
	assert.Equal(t, "@v", v.Name())
	assert.Equal(t, "12px", v.Value())
	table, _ := tr.Root().Child(1)
	td, _ := table.Child(1)
	assert.Equal(t, "td", td.Name())
	mixin, _ := td.Child(1)
	assert.Equal(t, ".mixin(1; 2)", mixin.Name())
	assert.Equal(t, "", mixin.Value())
	extend, _ := td.Child(2)
	assert.Equal(t, "&", extend.Name())
	assert.Equal(t, "extend(.x all)", extend.Value())
	media, _ := tr.Root().Child(2)
	assert.Equal(t, "@media screen", media.Name())
	checkRanges(t, tr)
}

func TestBuildUnterminatedBrace(t *testing.T) {
	_, err := Build("a { b { c: d; }")
	var perr *ParseError
	require.True(t, errors.As(err, &perr), "expected ParseError, have %v", err)
	assert.Equal(t, 1, perr.Line)
	assert.Equal(t, 3, perr.Col)
	_, err = Build("a { } }")
	assert.True(t, errors.As(err, &perr))
	wrapped := WrapErrorWithSource(err, "a { } }")
	assert.Contains(t, wrapped.Error(), "^")
	assert.True(t, errors.As(wrapped, &perr))
}

func TestInsertShiftsFollowingRanges(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "cssync.tree")
	tracer().SetTraceLevel(tracing.LevelError)
	defer teardown()
	//
	tr := MustBuild("a {\n\tb: 1;\n}\nc {\n\td: 2;\n}")
	a, _ := tr.Root().Child(0)
	c, _ := tr.Root().Child(1)
	d, _ := c.Child(0)
	nodes, err := a.InsertText("\n\tx: 9;", 1)
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	assert.Equal(t, "a {\n\tb: 1;\n\tx: 9;\n}\nc {\n\td: 2;\n}", tr.Source())
	assert.Equal(t, "x", nodes[0].Name())
	assert.Equal(t, "9", nodes[0].Value())
	assert.Equal(t, "c", c.Name())
	assert.Equal(t, "d", d.Name())
	assert.Equal(t, "2", d.Value())
	assert.Equal(t, 2, a.ChildCount())
	checkRanges(t, tr)
}

func TestInsertIntoEmptyBodies(t *testing.T) {
	tr := MustBuild("a{}")
	a, _ := tr.Root().Child(0)
	_, err := a.InsertText("b:1;", 0)
	require.NoError(t, err)
	assert.Equal(t, "a{b:1;}", tr.Source())
	empty := MustBuild("")
	_, err = empty.Root().InsertText("c {}", 0)
	require.NoError(t, err)
	assert.Equal(t, "c {}", empty.Source())
	checkRanges(t, tr)
	checkRanges(t, empty)
}

func TestInsertRejectsAttachedSubtree(t *testing.T) {
	tr := MustBuild("a{b:1;} c{}")
	a, _ := tr.Root().Child(0)
	c, _ := tr.Root().Child(1)
	_, err := c.Insert(a, 0)
	assert.ErrorIs(t, err, ErrNotDetached)
	b, _ := a.Child(0)
	_, err = b.InsertText("x:1;", 0)
	assert.ErrorIs(t, err, ErrNoContainer)
}

func TestRemoveSwallowsWhitespace(t *testing.T) {
	tr := MustBuild("a {\n\tb: 1;\n\tc: 2;\n}\nd {}")
	a, _ := tr.Root().Child(0)
	b, _ := a.Child(0)
	require.NoError(t, b.Remove(false))
	assert.Equal(t, "a {\n\tc: 2;\n}\nd {}", tr.Source())
	assert.Nil(t, b.Tree())
	assert.Equal(t, "b", b.Name())
	require.NoError(t, a.Remove(false))
	assert.Equal(t, "d {}", tr.Source())
	d, _ := tr.Root().Child(0)
	assert.Equal(t, "d", d.Name())
	assert.Equal(t, 2, tr.Size())
	assert.ErrorIs(t, b.Remove(false), ErrNotAttached)
	assert.ErrorIs(t, tr.Root().Remove(true), ErrRemoveRoot)
	checkRanges(t, tr)
}

func TestRemoveKeepFormatting(t *testing.T) {
	tr := MustBuild("a{b:1; c:2;}")
	a, _ := tr.Root().Child(0)
	c, _ := a.Child(1)
	require.NoError(t, c.Remove(true))
	assert.Equal(t, "a{b:1; }", tr.Source())
	checkRanges(t, tr)
}

func TestReplaceKeepsPosition(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "cssync.tree")
	tracer().SetTraceLevel(tracing.LevelError)
	defer teardown()
	//
	tr := MustBuild("x{} a { b: 1; } y{}")
	a, _ := tr.Root().Child(1)
	nodes, err := a.ReplaceText("a { b: 2; c: 3; }")
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	assert.Equal(t, "x{} a { b: 2; c: 3; } y{}", tr.Source())
	assert.Equal(t, 1, tr.Root().IndexOfChild(nodes[0]))
	y, _ := tr.Root().Child(2)
	assert.Equal(t, "y", y.Name())
	checkRanges(t, tr)
}

func TestSetValue(t *testing.T) {
	tr := MustBuild("a { b: 1; } c { d: 2 }")
	a, _ := tr.Root().Child(0)
	b, _ := a.Child(0)
	require.NoError(t, b.SetValue("100px"))
	assert.Equal(t, "a { b: 100px; } c { d: 2 }", tr.Source())
	c, _ := tr.Root().Child(1)
	d, _ := c.Child(0)
	assert.Equal(t, "2", d.Value())
	checkRanges(t, tr)
}

func TestSameLengthEditRefreshesValues(t *testing.T) {
	tr := MustBuild("a{b:1} c{d:1}")
	a, _ := tr.Root().Child(0)
	b, _ := a.Child(0)
	assert.Equal(t, "1", b.Value())
	assert.Equal(t, "b:1", a.Value())
	require.NoError(t, b.SetValue("2"))
	assert.Equal(t, "a{b:2} c{d:1}", tr.Source())
	assert.Equal(t, "2", b.Value())
	assert.Equal(t, "b:2", a.Value())
	c, _ := tr.Root().Child(1)
	d, _ := c.Child(0)
	assert.Equal(t, "1", d.Value())
	require.NoError(t, d.SetValue("3"))
	assert.Equal(t, "3", d.Value())
}

func TestNameCacheInvalidation(t *testing.T) {
	tr := MustBuild("a{} b{}")
	b, _ := tr.Root().Child(1)
	assert.Equal(t, "b", b.Name())
	a, _ := tr.Root().Child(0)
	_, err := a.InsertText("x:1;", 0)
	require.NoError(t, err)
	assert.Equal(t, "b", b.Name())
	rev := tr.Revision()
	b.Annotate("memo")
	v, ok := b.Annotation()
	assert.True(t, ok)
	assert.Equal(t, "memo", v)
	_, _ = b.InsertText("y:2;", 0)
	assert.NotEqual(t, rev, tr.Revision())
	_, ok = b.Annotation()
	assert.False(t, ok)
}

// checkRanges verifies that child ranges are contained in, and do not
// overlap inside, their parent's value range, and that names match the
// source.
func checkRanges(t *testing.T, tr *Tree) {
	t.Helper()
	tr.Root().Walk(func(n *Node) bool {
		prev := n.ValueRange().Start
		for _, ch := range n.children {
			if ch.Start() < prev || ch.End() > n.ValueRange().End {
				t.Errorf("child %v not within/after [%d,%d) of %v", ch, prev, n.ValueRange().End, n)
			}
			if ch.tree != tr {
				t.Errorf("child %v not attached to tree", ch)
			}
			if !strings.HasPrefix(tr.Source()[ch.Start():], ch.Name()) {
				t.Errorf("name of %v does not match source", ch)
			}
			prev = ch.End()
		}
		return true
	})
}
