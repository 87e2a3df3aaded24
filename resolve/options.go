package resolve

/*
License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/

import (
	"fmt"
	"strings"

	"github.com/npillmayer/cssync/tree"
)

// Syntax is the stylesheet language of a source.
type Syntax uint8

// Supported syntaxes.
const (
	CSS Syntax = iota
	LESS
	SCSS
)

func (s Syntax) String() string {
	switch s {
	case CSS:
		return "css"
	case LESS:
		return "less"
	case SCSS:
		return "scss"
	}
	return fmt.Sprintf("Syntax(%d)", s)
}

// ParseSyntax reads a syntax name, ignoring case. The empty string denotes
// CSS; "sass" is accepted for SCSS.
func ParseSyntax(s string) (Syntax, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "css":
		return CSS, nil
	case "less":
		return LESS, nil
	case "scss", "sass":
		return SCSS, nil
	}
	return CSS, fmt.Errorf("unknown stylesheet syntax %q", s)
}

// Options control a resolution.
type Options struct {
	Syntax           Syntax
	MixinStackLimit  int // max depth of nested mixin calls
	MixinRepeatLimit int // max identical call signatures on the stack
	LoopLimit        int // max iterations of a single SCSS loop
	ExtendPasses     int // max passes for chained extends
	// OnWarning receives non-fatal problems; it may be nil.
	OnWarning func(error)
	// Dependencies hold external sources whose top-level variables,
	// mixins and functions are visible to the resolved document.
	Dependencies []*tree.Tree
}

// Default limits.
const (
	DefaultMixinStackLimit  = 64
	DefaultMixinRepeatLimit = 3
	DefaultLoopLimit        = 1000
	DefaultExtendPasses     = 16
)

// DefaultOptions returns options for a syntax with default limits.
func DefaultOptions(syntax Syntax) Options {
	return Options{
		Syntax:           syntax,
		MixinStackLimit:  DefaultMixinStackLimit,
		MixinRepeatLimit: DefaultMixinRepeatLimit,
		LoopLimit:        DefaultLoopLimit,
		ExtendPasses:     DefaultExtendPasses,
	}
}

func (o Options) withDefaults() Options {
	if o.MixinStackLimit <= 0 {
		o.MixinStackLimit = DefaultMixinStackLimit
	}
	if o.MixinRepeatLimit <= 0 {
		o.MixinRepeatLimit = DefaultMixinRepeatLimit
	}
	if o.LoopLimit <= 0 {
		o.LoopLimit = DefaultLoopLimit
	}
	if o.ExtendPasses <= 0 {
		o.ExtendPasses = DefaultExtendPasses
	}
	return o
}

// ResolutionError describes a construct which could not be resolved. It is
// never returned from Resolve; it is delivered to Options.OnWarning.
type ResolutionError struct {
	Construct string // source text of the construct, possibly abbreviated
	Msg       string
	Pos       int // byte offset into the source, -1 if unknown
	Err       error
}

func (e *ResolutionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("cannot resolve %q at %d: %s: %v", e.Construct, e.Pos, e.Msg, e.Err)
	}
	return fmt.Sprintf("cannot resolve %q at %d: %s", e.Construct, e.Pos, e.Msg)
}

// Unwrap returns the underlying cause, if any.
func (e *ResolutionError) Unwrap() error {
	return e.Err
}
