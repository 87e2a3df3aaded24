package diff

import (
	"os"
	"testing"

	"github.com/npillmayer/cssync/patch"
	"github.com/npillmayer/cssync/resolve"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

type scenario struct {
	Name    string          `yaml:"name"`
	Syntax  string          `yaml:"syntax"`
	A       string          `yaml:"a"`
	B       string          `yaml:"b"`
	Patches []scenarioPatch `yaml:"patches"`
}

type scenarioPatch struct {
	Path       string `yaml:"path"`
	Action     string `yaml:"action"`
	Properties []struct {
		Name  string `yaml:"name"`
		Value string `yaml:"value"`
	} `yaml:"properties"`
	Removed []string `yaml:"removed"`
	Value   string   `yaml:"value"`
}

func loadScenarios(t *testing.T) []scenario {
	t.Helper()
	data, err := os.ReadFile("testdata/scenarios.yaml")
	require.NoError(t, err)
	var scenarios []scenario
	require.NoError(t, yaml.Unmarshal(data, &scenarios))
	require.NotEmpty(t, scenarios)
	return scenarios
}

func TestScenarios(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "cssync.diff")
	tracer().SetTraceLevel(tracing.LevelError)
	defer teardown()
	//
	for _, sc := range loadScenarios(t) {
		sc := sc
		t.Run(sc.Name, func(t *testing.T) {
			syntax, err := resolve.ParseSyntax(sc.Syntax)
			require.NoError(t, err)
			patches, err := Diff(sc.A, sc.B, DefaultOptions(syntax))
			require.NoError(t, err)
			for _, p := range patches {
				t.Logf("patch %s", p)
			}
			require.Len(t, patches, len(sc.Patches))
			for i, expected := range sc.Patches {
				p := patches[i]
				assert.Equal(t, expected.Path, p.Path.String())
				assert.Equal(t, patch.Action(expected.Action), p.Action)
				assert.Equal(t, expected.Value, p.Value)
				require.Len(t, p.Properties, len(expected.Properties), "properties of %s", p)
				for j, prop := range expected.Properties {
					assert.Equal(t, prop.Name, p.Properties[j].Name)
					assert.Equal(t, prop.Value, p.Properties[j].Value)
				}
				names := make([]string, len(p.Removed))
				for j, r := range p.Removed {
					names[j] = r.Name
				}
				if len(expected.Removed) == 0 {
					assert.Empty(t, names)
				} else {
					assert.Equal(t, expected.Removed, names)
				}
			}
		})
	}
}

func TestDiffIdentity(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "cssync.diff")
	tracer().SetTraceLevel(tracing.LevelError)
	defer teardown()
	//
	for _, sc := range loadScenarios(t) {
		syntax, _ := resolve.ParseSyntax(sc.Syntax)
		for _, src := range []string{sc.A, sc.B} {
			patches, err := Diff(src, src, DefaultOptions(syntax))
			require.NoError(t, err)
			if len(patches) != 0 {
				t.Errorf("expected diff of %q with itself to be empty, isn't: %v", src, patches)
			}
		}
	}
}

func TestDiffCrossSyntax(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "cssync.diff")
	tracer().SetTraceLevel(tracing.LevelError)
	defer teardown()
	//
	css := resolve.DefaultOptions(resolve.CSS)
	opts := Options{Options: resolve.DefaultOptions(resolve.LESS), B: &css}
	patches, err := Diff("@w: 1px; .a { .b { c: @w; } }", ".a .b { c: 2px; }", opts)
	require.NoError(t, err)
	require.Len(t, patches, 1)
	assert.Equal(t, ".a .b", patches[0].Path.String())
	assert.Equal(t, []patch.Property{{Name: "c", Value: "2px"}}, patches[0].Properties)
}

func TestDiffParseError(t *testing.T) {
	_, err := Diff("a{b:1;}", "a{b:1;", DefaultOptions(resolve.CSS))
	assert.Error(t, err)
}

// Applying the diff of two plain CSS sources to the first one yields a
// source which resolves to the same sections as the second one.
func TestDiffThenPatch(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "cssync.diff")
	tracer().SetTraceLevel(tracing.LevelError)
	defer teardown()
	//
	pairs := [][2]string{
		{"a {\n\tb: 1;\n}\n", "a {\n\tb: 2;\n\tc: 3;\n}\nd {\n\te: 4;\n}\n"},
		{"a{x:1;y:2;z:3;}", "a{x:1;z:3;w:4;}"},
		{"a{b:1;}\nc{d:2;}", "a{b:1;}"},
		{"@import url(a.css);\na{b:1;}", "@charset \"x\";\n@import url(b.css);\na{b:1;}\n@media print{a{b:2;}}"},
		{"a {\n  b: 1;\n}\n@media print {\n  a {\n    b: 2;\n  }\n}", "a {\n  b: 1;\n}\n@media print {\n  a {\n    b: 2;\n  }\n  .x {\n    y: 0;\n  }\n}"},
		{"a{b:1;} a{b:2;}", "a{b:1;} a{b:2; c:3;} e{f:4;}"},
		{"a{b:1;c:2}", "a{c:2;d:4;b:1}"},
		{"a {\n\tb: 1;\n\tc: 2;\n}\n", "a {\n\tc: 2;\n\tb: 3;\n}\n"},
	}
	opts := DefaultOptions(resolve.CSS)
	for _, pair := range pairs {
		patches, err := Diff(pair[0], pair[1], opts)
		require.NoError(t, err)
		res, err := patch.ApplySource(pair[0], patches, patch.DefaultOptions(resolve.CSS))
		require.NoError(t, err)
		assert.Empty(t, res.Dropped, "dropped patches for %q", pair[0])
		rest, err := Diff(res.Source, pair[1], opts)
		require.NoError(t, err)
		if len(rest) != 0 {
			t.Errorf("expected patched source to match target, isn't:\n%s\nremaining: %v", res.Source, rest)
		}
	}
}
