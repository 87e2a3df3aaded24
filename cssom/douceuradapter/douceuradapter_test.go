package douceuradapter

import (
	"strings"
	"testing"

	"github.com/npillmayer/cssync/resolve"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

func TestFromResolved(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "cssync.cssom")
	tracer().SetTraceLevel(tracing.LevelError)
	defer teardown()
	//
	src := `@import url(x.css);
@c: red;
.a, .z { color: @c; .b { top: 0 !important; } }
@media print { .a { x: 1; } }`
	root, err := resolve.ResolveSource(src, resolve.DefaultOptions(resolve.LESS))
	require.NoError(t, err)
	sheet := FromResolved(root)
	require.False(t, sheet.Empty())
	rules := sheet.Rules()
	require.Len(t, rules, 4)
	assert.Equal(t, "@import url(x.css)", rules[0].Selector())
	assert.Equal(t, ".a, .z", rules[1].Selector())
	assert.Equal(t, "red", rules[1].Value("color"))
	assert.Equal(t, []string{"top"}, rules[2].Properties())
	assert.Equal(t, "0", rules[2].Value("top"))
	assert.True(t, rules[2].IsImportant("top"))
	assert.Equal(t, "@media print", rules[3].Selector())
	require.Len(t, rules[3].Embedded(), 1)
	assert.Equal(t, "1", rules[3].Embedded()[0].Value("x"))
	expected := "@import url(x.css);\n.a, .z {\n  color: red;\n}\n.a .b, .z .b {\n  top: 0 !important;\n}\n" +
		"@media print {\n  .a {\n    x: 1;\n  }\n}"
	assert.Equal(t, expected, sheet.String())
}

func TestParseAndAppend(t *testing.T) {
	a, err := Parse("a { b: 1; }")
	require.NoError(t, err)
	b, err := Parse("@media screen { c { d: 2 } }")
	require.NoError(t, err)
	a.AppendRules(b)
	rules := a.Rules()
	require.Len(t, rules, 2)
	assert.Equal(t, "a", rules[0].Selector())
	assert.Equal(t, "@media screen", rules[1].Selector())
	assert.Equal(t, "2", rules[1].Embedded()[0].Value("d"))
}

func TestStyleSources(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "cssync.cssom")
	tracer().SetTraceLevel(tracing.LevelError)
	defer teardown()
	//
	page := `<html><head><style>a { color: red; }</style></head>
<body><p>x</p><div><style>b { margin: 0 }</style></div><style></style></body></html>`
	doc, err := html.Parse(strings.NewReader(page))
	require.NoError(t, err)
	sources := StyleSources(doc)
	assert.Equal(t, []string{"a { color: red; }", "b { margin: 0 }", ""}, sources)
	sheets := ExtractStyleElements(doc)
	require.Len(t, sheets, 3)
	assert.Equal(t, "red", sheets[0].Rules()[0].Value("color"))
	assert.True(t, sheets[2].Empty())
}
