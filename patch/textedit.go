package patch

/*
License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/

import (
	"time"

	"github.com/sergi/go-diff/diffmatchpatch"
)

var dmp = diffmatchpatch.New()

func init() {
	dmp.DiffTimeout = 200 * time.Millisecond
}

// TextEdit replaces the byte range [Start,End) of a source by Text. Offsets
// refer to the source before any edit has been applied.
type TextEdit struct {
	Start int    `json:"start"`
	End   int    `json:"end"`
	Text  string `json:"text"`
}

// TextEdits computes a minimal list of non-overlapping edits turning before
// into after, e.g. to hand the result of Apply to an editor. Edits are
// ordered by offset.
func TextEdits(before, after string) []TextEdit {
	diffs := dmp.DiffMain(before, after, false)
	diffs = dmp.DiffCleanupSemantic(diffs)
	var edits []TextEdit
	pos := 0
	var pending *TextEdit
	flush := func() {
		if pending != nil {
			edits = append(edits, *pending)
			pending = nil
		}
	}
	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			flush()
			pos += len(d.Text)
		case diffmatchpatch.DiffDelete:
			if pending == nil {
				pending = &TextEdit{Start: pos, End: pos}
			}
			pos += len(d.Text)
			pending.End = pos
		case diffmatchpatch.DiffInsert:
			if pending == nil {
				pending = &TextEdit{Start: pos, End: pos}
			}
			pending.Text += d.Text
		}
	}
	flush()
	return edits
}

// ApplyEdits applies a list of text edits, as produced by TextEdits, to
// source.
func ApplyEdits(source string, edits []TextEdit) string {
	for i := len(edits) - 1; i >= 0; i-- {
		e := edits[i]
		source = source[:e.Start] + e.Text + source[e.End:]
	}
	return source
}
