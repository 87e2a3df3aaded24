package depcache

import (
	"testing"
	"time"

	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type clock struct {
	t time.Time
}

func (c *clock) now() time.Time { return c.t }

func TestChecksum(t *testing.T) {
	assert.Equal(t, "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", Checksum(""))
	assert.NotEqual(t, Checksum("a{}"), Checksum("a{ }"))
}

func TestTreeIsCachedByContent(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "cssync.depcache")
	tracer().SetTraceLevel(tracing.LevelError)
	defer teardown()
	//
	c, err := New(4)
	require.NoError(t, err)
	t1, err := c.Tree("vars.less", "@c: red;")
	require.NoError(t, err)
	t2, err := c.Tree("vars.less", "@c: red;")
	require.NoError(t, err)
	if t1 != t2 {
		t.Errorf("expected second lookup to hit the cache, didn't")
	}
	t3, err := c.Tree("vars.less", "@c: blue;")
	require.NoError(t, err)
	assert.NotSame(t, t1, t3)
	assert.Equal(t, 2, c.Len())
	_, err = c.Tree("broken.less", "a {")
	assert.Error(t, err)
	assert.Equal(t, 2, c.Len())
}

func TestCapacity(t *testing.T) {
	c, err := New(2)
	require.NoError(t, err)
	for _, src := range []string{"a{}", "b{}", "c{}"} {
		_, err := c.Tree("x.css", src)
		require.NoError(t, err)
	}
	assert.Equal(t, 2, c.Len())
	_, ok := c.Get(KeyFor("x.css", "a{}"))
	assert.False(t, ok)
}

func TestEvictOlderThan(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "cssync.depcache")
	tracer().SetTraceLevel(tracing.LevelError)
	defer teardown()
	//
	clk := &clock{t: time.Date(2022, 1, 1, 12, 0, 0, 0, time.UTC)}
	c, err := New(0)
	require.NoError(t, err)
	c.SetClock(clk.now)
	_, _ = c.Tree("a.scss", "$a: 1;")
	clk.t = clk.t.Add(10 * time.Minute)
	_, _ = c.Tree("b.scss", "$b: 1;")
	clk.t = clk.t.Add(10 * time.Minute)
	_, ok := c.Get(KeyFor("b.scss", "$b: 1;")) // touch b
	require.True(t, ok)
	assert.Equal(t, 1, c.EvictOlderThan(15*time.Minute))
	_, ok = c.Get(KeyFor("a.scss", "$a: 1;"))
	assert.False(t, ok)
	assert.Equal(t, 1, c.Len())
	assert.Equal(t, 0, c.EvictOlderThan(time.Hour))
}
