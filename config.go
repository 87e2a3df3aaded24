package cssync

/*
License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/

import (
	"fmt"

	"github.com/npillmayer/cssync/depcache"
	"github.com/npillmayer/cssync/resolve"
	"github.com/npillmayer/schuko"
)

// Configuration keys.
const (
	KeySyntax           = "cssync.syntax"
	KeyMixinStackLimit  = "cssync.mixin-stack-limit"
	KeyMixinRepeatLimit = "cssync.mixin-repeat-limit"
	KeyLoopLimit        = "cssync.loop-limit"
	KeyExtendPasses     = "cssync.extend-passes"
	KeyCacheSize        = "cssync.cache-size"
)

// Config configures an Engine.
type Config struct {
	Syntax           resolve.Syntax // syntax of editor-side sources
	MixinStackLimit  int
	MixinRepeatLimit int
	LoopLimit        int
	ExtendPasses     int
	CacheSize        int // capacity of the dependency cache
	// OnWarning receives resolution problems; it may be nil.
	OnWarning func(error)
}

// DefaultConfig returns the configuration for plain CSS with default limits.
func DefaultConfig() Config {
	return Config{
		Syntax:           resolve.CSS,
		MixinStackLimit:  resolve.DefaultMixinStackLimit,
		MixinRepeatLimit: resolve.DefaultMixinRepeatLimit,
		LoopLimit:        resolve.DefaultLoopLimit,
		ExtendPasses:     resolve.DefaultExtendPasses,
		CacheSize:        depcache.DefaultSize,
	}
}

// ConfigFromSchuko reads a configuration from an application configuration.
// Keys which are not set keep their defaults.
func ConfigFromSchuko(conf schuko.Configuration) (Config, error) {
	c := DefaultConfig()
	if conf.IsSet(KeySyntax) {
		syntax, err := resolve.ParseSyntax(conf.GetString(KeySyntax))
		if err != nil {
			return c, err
		}
		c.Syntax = syntax
	}
	limits := []struct {
		key   string
		value *int
	}{
		{KeyMixinStackLimit, &c.MixinStackLimit},
		{KeyMixinRepeatLimit, &c.MixinRepeatLimit},
		{KeyLoopLimit, &c.LoopLimit},
		{KeyExtendPasses, &c.ExtendPasses},
		{KeyCacheSize, &c.CacheSize},
	}
	for _, l := range limits {
		if !conf.IsSet(l.key) {
			continue
		}
		n := conf.GetInt(l.key)
		if n <= 0 {
			return c, fmt.Errorf("configuration %s must be a positive number, is %q", l.key, conf.GetString(l.key))
		}
		*l.value = n
	}
	tracer().Debugf("configuration: syntax=%s cache=%d", c.Syntax, c.CacheSize)
	return c, nil
}

// resolveOptions returns resolver options for a syntax.
func (c Config) resolveOptions(syntax resolve.Syntax) resolve.Options {
	return resolve.Options{
		Syntax:           syntax,
		MixinStackLimit:  c.MixinStackLimit,
		MixinRepeatLimit: c.MixinRepeatLimit,
		LoopLimit:        c.LoopLimit,
		ExtendPasses:     c.ExtendPasses,
		OnWarning:        c.OnWarning,
	}
}
