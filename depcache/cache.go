package depcache

/*
License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/npillmayer/cssync/tree"
)

// DefaultSize is the capacity of a cache created with size 0.
const DefaultSize = 128

// Key identifies a version of a dependency.
type Key struct {
	URL      string
	Checksum string
}

// Checksum returns the hex encoded SHA-256 of content.
func Checksum(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}

// KeyFor returns the key of a dependency with the given content.
func KeyFor(url, content string) Key {
	return Key{URL: url, Checksum: Checksum(content)}
}

type entry struct {
	tree       *tree.Tree
	lastAccess time.Time
}

// Cache holds parsed dependency trees. It is safe for concurrent use.
type Cache struct {
	mu      sync.Mutex
	entries *lru.Cache[Key, *entry]
	now     func() time.Time
}

// New creates a cache holding at most size trees.
func New(size int) (*Cache, error) {
	if size <= 0 {
		size = DefaultSize
	}
	entries, err := lru.New[Key, *entry](size)
	if err != nil {
		return nil, err
	}
	return &Cache{entries: entries, now: time.Now}, nil
}

// SetClock replaces the time source of the cache.
func (c *Cache) SetClock(now func() time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

// Get returns the tree for key and marks it as accessed.
func (c *Cache) Get(key Key) (*tree.Tree, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries.Get(key)
	if !ok {
		return nil, false
	}
	e.lastAccess = c.now()
	return e.tree, true
}

// Put stores a tree for key.
func (c *Cache) Put(key Key, t *tree.Tree) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.entries.Add(key, &entry{tree: t, lastAccess: c.now()}) {
		tracer().Debugf("dependency cache full, evicted oldest entry")
	}
}

// Tree returns the tree for a dependency, parsing and caching content if no
// tree is cached for its current checksum.
func (c *Cache) Tree(url, content string) (*tree.Tree, error) {
	key := KeyFor(url, content)
	if t, ok := c.Get(key); ok {
		return t, nil
	}
	t, err := tree.Build(content)
	if err != nil {
		return nil, err
	}
	tracer().Debugf("caching dependency %s", url)
	c.Put(key, t)
	return t, nil
}

// Len returns the number of cached trees.
func (c *Cache) Len() int {
	return c.entries.Len()
}

// EvictOlderThan removes all entries which have not been accessed within d
// and returns their number.
func (c *Cache) EvictOlderThan(d time.Duration) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	limit := c.now().Add(-d)
	evicted := 0
	for _, key := range c.entries.Keys() {
		if e, ok := c.entries.Peek(key); ok && e.lastAccess.Before(limit) {
			c.entries.Remove(key)
			evicted++
		}
	}
	if evicted > 0 {
		tracer().Infof("evicted %d dependencies older than %s", evicted, d)
	}
	return evicted
}
