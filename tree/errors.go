package tree

/*
License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotAttached is returned for edits on nodes which are not part of a tree.
var ErrNotAttached = errors.New("node is not attached to a tree")

// ErrNotDetached is returned if a subtree to insert is part of the target tree.
var ErrNotDetached = errors.New("subtree to insert must be detached from target tree")

// ErrNoContainer is returned when inserting into a node which cannot hold children.
var ErrNoContainer = errors.New("node cannot hold child nodes")

// ErrRemoveRoot is returned when trying to remove the root node.
var ErrRemoveRoot = errors.New("cannot remove root node")

// ParseError is returned for malformed sources: unterminated strings,
// comments, groups or braces, or characters which cannot start a token.
// Line and Col are 1-based, Pos is the byte offset into the source.
type ParseError struct {
	Msg  string
	Pos  int
	Line int
	Col  int
}

func newParseError(src string, pos int, msg string) *ParseError {
	line, col := lineCol(src, pos)
	return &ParseError{Msg: msg, Pos: pos, Line: line, Col: col}
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at %d:%d: %s", e.Line, e.Col, e.Msg)
}

func lineCol(src string, pos int) (int, int) {
	if pos > len(src) {
		pos = len(src)
	}
	line := 1 + strings.Count(src[:pos], "\n")
	col := pos - strings.LastIndexByte(src[:pos], '\n')
	return line, col
}

// WrapErrorWithSource returns an error augmented with a caret-annotated
// snippet of src if err is a *ParseError. Other errors are returned
// unchanged.
//
//	parse error at 2:5: unterminated string
//
//	   1 | a {
//	   2 |   b: "x;
//	     |      ^
//	   3 | }
func WrapErrorWithSource(err error, src string) error {
	var perr *ParseError
	if !errors.As(err, &perr) {
		return err
	}
	lines := strings.Split(src, "\n")
	line := perr.Line
	if line < 1 {
		line = 1
	}
	if line > len(lines) {
		line = len(lines)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\n", perr.Error())
	if line > 1 {
		fmt.Fprintf(&b, "%4d | %s\n", line-1, lines[line-2])
	}
	fmt.Fprintf(&b, "%4d | %s\n", line, lines[line-1])
	pad := perr.Col - 1
	if pad < 0 {
		pad = 0
	}
	fmt.Fprintf(&b, "     | %s^\n", strings.Repeat(" ", pad))
	if line < len(lines) {
		fmt.Fprintf(&b, "%4d | %s\n", line+1, lines[line])
	}
	return &snippetError{snippet: strings.TrimRight(b.String(), "\n"), err: perr}
}

// snippetError carries a rendered source snippet and unwraps to the
// underlying *ParseError.
type snippetError struct {
	snippet string
	err     *ParseError
}

func (e *snippetError) Error() string { return e.snippet }
func (e *snippetError) Unwrap() error { return e.err }
