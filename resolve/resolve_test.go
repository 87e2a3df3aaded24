package resolve

import (
	"errors"
	"strings"
	"testing"

	"github.com/npillmayer/cssync/resolve/expr"
	"github.com/npillmayer/cssync/tree"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resolveTest(t *testing.T, syntax Syntax, src string) (*Node, []error) {
	t.Helper()
	var warnings []error
	opts := DefaultOptions(syntax)
	opts.OnWarning = func(err error) { warnings = append(warnings, err) }
	root, err := ResolveSource(src, opts)
	require.NoError(t, err)
	t.Logf("resolved =\n%s", root.Dump())
	return root, warnings
}

func paths(root *Node) []string {
	var list []string
	for _, s := range Sections(root) {
		list = append(list, s.PathString)
	}
	return list
}

// declarations renders the properties of the section at path.
func declarations(t *testing.T, root *Node, path string) string {
	t.Helper()
	for _, s := range Sections(root) {
		if s.PathString == path {
			var parts []string
			for _, p := range s.Node.Properties() {
				parts = append(parts, p.Name()+": "+p.Value())
			}
			return strings.Join(parts, "; ")
		}
	}
	t.Errorf("expected section at %q, isn't", path)
	return ""
}

func TestFragments(t *testing.T) {
	assert.Equal(t, []string{"ul", ">", "li", ".item", ":hover", " ", "a"},
		fragments("ul > li.item:hover a"))
	assert.Equal(t, []string{"a", ":not(.b, .c)", "::before"}, fragments("a:not(.b, .c)::before"))
	assert.Equal(t, []string{"%msg"}, fragments("%msg"))
	assert.Equal(t, "ul > li.item:hover a", joinFragments(fragments("ul>li.item:hover   a")))
	assert.Equal(t, []int{0, 3}, indexFragments([]string{".a", " ", "b", ".a"}, []string{".a"}))
}

func TestTopLevelSeparators(t *testing.T) {
	assert.True(t, hasTop("1px; 2px", ';'))
	assert.True(t, hasTop(";", ';'))
	assert.False(t, hasTop("1px, 2px", ';'))
	assert.False(t, hasTop("f(a; b)", ';'))
	assert.False(t, hasTop(`"a;b"`, ';'))
	assert.False(t, hasTop("", ','))
	assert.True(t, isMixinSelector(".bordered"))
	assert.True(t, isMixinSelector(".m"))
	assert.True(t, isMixinSelector("#ns > .m"))
	assert.False(t, isMixinSelector(".a, .b"))
	assert.False(t, isMixinSelector("a.b"))
	assert.False(t, isMixinSelector(".a:hover"))
	assert.Equal(t, []string{"1px", "2px"}, splitArgs("1px, 2px", LESS))
	assert.Equal(t, []string{"1px, 2px", "3px"}, splitArgs("1px, 2px; 3px", LESS))
}

func TestNestingMatrix(t *testing.T) {
	assert.Equal(t, []string{".a + .a", ".a + .b", ".b + .a", ".b + .b"},
		nest([]string{".a", ".b"}, []string{"& + &"}, LESS))
	assert.Equal(t, []string{"a c", "b c", "a d", "b d"},
		nest([]string{"a", "b"}, []string{"c", "d"}, LESS))
	assert.Equal(t, []string{"a c", "a d", "b c", "b d"},
		nest([]string{"a", "b"}, []string{"c", "d"}, SCSS))
	assert.Equal(t, []string{".btn-primary"}, nest([]string{".btn"}, []string{"&-primary"}, SCSS))
	assert.Equal(t, []string{"x"}, nest(nil, []string{"x"}, LESS))
	assert.Equal(t, []string{"screen and (color)", "print and (color)"},
		combineQueries([]string{"screen", "print"}, []string{"(color)"}))
}

func TestLessVariablesInNestedRules(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "cssync.resolve")
	tracer().SetTraceLevel(tracing.LevelError)
	defer teardown()
	//
	root, warnings := resolveTest(t, LESS,
		"table { th {font-weight: bold;} td {@v: 12px; a: @v + 2; b: @v;} }")
	assert.Empty(t, warnings)
	assert.Equal(t, []string{"table th", "table td"}, paths(root))
	assert.Equal(t, "font-weight: bold", declarations(t, root, "table th"))
	assert.Equal(t, "a: 14px; b: 12px", declarations(t, root, "table td"))
}

func TestLessLazyVariables(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "cssync.resolve")
	tracer().SetTraceLevel(tracing.LevelError)
	defer teardown()
	//
	root, _ := resolveTest(t, LESS, "@x: 1px;\n.a { b: @y; @y: @x * 2; }\n@x: 3px;")
	assert.Equal(t, "b: 6px", declarations(t, root, ".a"))
}

func TestAmpersandNesting(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "cssync.resolve")
	tracer().SetTraceLevel(tracing.LevelError)
	defer teardown()
	//
	root, _ := resolveTest(t, LESS, ".section{ a{color:red; &:hover{color:blue;}} }")
	assert.Equal(t, []string{".section a", ".section a:hover"}, paths(root))
	assert.Equal(t, "color: blue", declarations(t, root, ".section a:hover"))
}

func TestMediaBubbling(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "cssync.resolve")
	tracer().SetTraceLevel(tracing.LevelError)
	defer teardown()
	//
	src := `.a { color: red; @media screen { color: blue; @media (min-width: 768px) { color: green; } } }
@media print { .x { a: b; } }`
	root, _ := resolveTest(t, LESS, src)
	assert.Equal(t, []string{
		".a",
		"@media screen",
		"@media screen/.a",
		"@media screen and (min-width: 768px)",
		"@media screen and (min-width: 768px)/.a",
		"@media print",
		"@media print/.x",
	}, paths(root))
	assert.Equal(t, "color: blue", declarations(t, root, "@media screen/.a"))
	assert.Equal(t, "color: green", declarations(t, root, "@media screen and (min-width: 768px)/.a"))
}

func TestLessMixins(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "cssync.resolve")
	tracer().SetTraceLevel(tracing.LevelError)
	defer teardown()
	//
	src := `.bordered(@width: 2px; @style: solid) { border: @width @style black; }
#header { .bordered(4px); }
.box { .bordered(@style: dashed) !important; }
.shadow(@x; @y) { box-shadow: @arguments; }
.s { .shadow(2px; 5px); }
#ns { .m() { c: d; } }
.n { #ns > .m(); }
.plain { e: f; }
.p { .plain; }`
	root, warnings := resolveTest(t, LESS, src)
	assert.Empty(t, warnings)
	assert.Equal(t, []string{"#header", ".box", ".s", ".n", ".plain", ".p"}, paths(root))
	assert.Equal(t, "border: 4px solid black", declarations(t, root, "#header"))
	assert.Equal(t, "border: 2px dashed black !important", declarations(t, root, ".box"))
	assert.Equal(t, "box-shadow: 2px 5px", declarations(t, root, ".s"))
	assert.Equal(t, "c: d", declarations(t, root, ".n"))
	assert.Equal(t, "e: f", declarations(t, root, ".p"))
}

func TestLessMixinCommaArguments(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "cssync.resolve")
	tracer().SetTraceLevel(tracing.LevelError)
	defer teardown()
	//
	root, warnings := resolveTest(t, LESS, ".m(@a, @b) { w: @a; h: @b; }\n.x { .m(1px, 2px); }")
	assert.Empty(t, warnings)
	assert.Equal(t, []string{".x"}, paths(root))
	assert.Equal(t, "w: 1px; h: 2px", declarations(t, root, ".x"))
}

func TestLessGuardsAndDefault(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "cssync.resolve")
	tracer().SetTraceLevel(tracing.LevelError)
	defer teardown()
	//
	src := `.m(@a) when (@a > 10) { x: big; }
.m(@a) when (default()) { x: small; }
.a { .m(20); }
.b { .m(5); }
@mode: dark;
.c when (@mode = dark) { y: 1; }
.d when (@mode = light) { y: 2; }`
	root, _ := resolveTest(t, LESS, src)
	assert.Equal(t, "x: big", declarations(t, root, ".a"))
	assert.Equal(t, "x: small", declarations(t, root, ".b"))
	assert.Equal(t, []string{".a", ".b", ".c"}, paths(root))
}

func TestLessGuardedLoopEndsSilently(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "cssync.resolve")
	tracer().SetTraceLevel(tracing.LevelError)
	defer teardown()
	//
	src := `.loop(@i) when (@i > 0) { w: @i; .loop(@i - 1); }
.a { .loop(2); }
.b { .loop(0); y: 1; }`
	root, warnings := resolveTest(t, LESS, src)
	assert.Empty(t, warnings)
	assert.Equal(t, "w: 2; w: 1", declarations(t, root, ".a"))
	assert.Equal(t, "y: 1", declarations(t, root, ".b"))
	//
	// a call no definition accepts is still reported
	_, warnings = resolveTest(t, LESS, ".m(@a) when (@a > 0) { x: @a; }\n.c { .m(1; 2); }")
	assert.Len(t, warnings, 1)
}

func TestLessDetachedRuleset(t *testing.T) {
	root, _ := resolveTest(t, LESS, "@d: { color: red; };\n.a { @d(); }")
	assert.Equal(t, "color: red", declarations(t, root, ".a"))
}

func TestMixinRecursionIsCut(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "cssync.resolve")
	tracer().SetTraceLevel(tracing.LevelError)
	defer teardown()
	//
	root, warnings := resolveTest(t, LESS, ".a { .a; } .b { c: d; }")
	require.Len(t, warnings, 1)
	assert.True(t, errors.Is(warnings[0], ErrRecursion), "expected recursion error, is %v", warnings[0])
	var rerr *ResolutionError
	require.True(t, errors.As(warnings[0], &rerr))
	assert.Equal(t, 5, rerr.Pos)
	assert.Equal(t, []string{".b"}, paths(root))
}

func TestUnresolvedValueIsKept(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "cssync.resolve")
	tracer().SetTraceLevel(tracing.LevelError)
	defer teardown()
	//
	root, warnings := resolveTest(t, LESS, ".a { b: @missing; c: 1; }")
	require.Len(t, warnings, 1)
	assert.True(t, errors.Is(warnings[0], expr.ErrUndefined))
	assert.Equal(t, "b: @missing; c: 1", declarations(t, root, ".a"))
}

func TestLessExtend(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "cssync.resolve")
	tracer().SetTraceLevel(tracing.LevelError)
	defer teardown()
	//
	src := `.a { color: red; }
.b:extend(.a) { margin: 0; }
.c { &:extend(.a all); }
.a:hover { color: blue; }`
	root, _ := resolveTest(t, LESS, src)
	assert.Equal(t, []string{".a, .b, .c", ".b", ".a:hover, .c:hover"}, paths(root))
}

func TestCircularExtendTerminates(t *testing.T) {
	root, _ := resolveTest(t, LESS, ".a { x: 1; &:extend(.b); } .b { y: 2; &:extend(.a); }")
	assert.Equal(t, []string{".a, .b", ".b, .a"}, paths(root))
}

func TestSCSSResolution(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "cssync.resolve")
	tracer().SetTraceLevel(tracing.LevelError)
	defer teardown()
	//
	src := `$base: 10px;
%msg { border: 1px solid; }
@mixin pad($n: 2) { padding: $base * $n; }
@function double($x) { @return $x * 2; }
.alert { @extend %msg; @include pad(3); width: double(5px); }
@each $name, $color in (ok: green, bad: red) { .is-#{$name} { color: $color; } }
@for $i from 1 through 3 { .m-#{$i} { margin: $i * 4px; } }
$i: 0;
@while $i < 2 { .w-#{$i} { z: $i; } $i: $i + 1; }
@if $base > 5px { .big { a: b; } } @else { .small { a: b; } }
.f { font: { family: x; size: 2px; } }`
	root, warnings := resolveTest(t, SCSS, src)
	assert.Empty(t, warnings)
	assert.Equal(t, []string{
		".alert", ".alert|2", ".is-ok", ".is-bad", ".m-1", ".m-2", ".m-3",
		".w-0", ".w-1", ".big", ".f",
	}, paths(root))
	assert.Equal(t, "border: 1px solid", declarations(t, root, ".alert"))
	assert.Equal(t, "padding: 30px; width: 10px", declarations(t, root, ".alert|2"))
	assert.Equal(t, "color: red", declarations(t, root, ".is-bad"))
	assert.Equal(t, "margin: 12px", declarations(t, root, ".m-3"))
	assert.Equal(t, "z: 1", declarations(t, root, ".w-1"))
	assert.Equal(t, "font-family: x; font-size: 2px", declarations(t, root, ".f"))
}

func TestSCSSContentBlocks(t *testing.T) {
	src := `@mixin mq($w) { @media (min-width: $w) { @content; } }
.a { @include mq(10px) { color: red; } }`
	root, _ := resolveTest(t, SCSS, src)
	assert.Equal(t, []string{"@media (min-width: 10px)", "@media (min-width: 10px)/.a"}, paths(root))
	assert.Equal(t, "color: red", declarations(t, root, "@media (min-width: 10px)/.a"))
}

func TestSCSSDefaultsAndDependencies(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "cssync.resolve")
	tracer().SetTraceLevel(tracing.LevelError)
	defer teardown()
	//
	opts := DefaultOptions(SCSS)
	opts.Dependencies = []*tree.Tree{tree.MustBuild("$brand: red; @mixin m { x: $brand; }")}
	src := "$a: 1; $a: 2 !default; .x { y: $a; @include m; color: $brand; }"
	root, err := ResolveSource(src, opts)
	require.NoError(t, err)
	assert.Equal(t, "y: 1; x: red; color: red", declarations(t, root, ".x"))
}

func TestPreprocessorImportsAreDropped(t *testing.T) {
	root, _ := resolveTest(t, LESS, `@import "vars.less"; @import url(base.css); .a { b: c; }`)
	assert.Equal(t, []string{"@import", ".a"}, paths(root))
}

func TestCSSIsMirrored(t *testing.T) {
	tr := tree.MustBuild("a { b: 1; } @media print { c { d: 2; } } @charset \"utf-8\";")
	root := Resolve(tr, DefaultOptions(CSS))
	assert.Equal(t, []string{"a", "@media print", "@media print/c", "@charset"}, paths(root))
	a := root.Children()[0]
	assert.Same(t, tr.Root().Children()[0], a.Origin())
	assert.Equal(t, "b: 1", declarations(t, root, "a"))
}

func TestResolveSourceReportsParseErrors(t *testing.T) {
	_, err := ResolveSource("a {", DefaultOptions(LESS))
	var perr *tree.ParseError
	assert.True(t, errors.As(err, &perr), "expected parse error, is %v", err)
}
