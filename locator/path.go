package locator

/*
License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrMalformedPath is returned when parsing an invalid path string.
var ErrMalformedPath = errors.New("malformed path")

// Segment is one level of a path: a normalized node name and the 1-based
// occurrence index of the node among its equally named siblings.
type Segment struct {
	Name  string
	Index int
}

func (s Segment) String() string {
	if s.Index > 1 {
		return s.Name + "|" + strconv.Itoa(s.Index)
	}
	return s.Name
}

// Path addresses a node relative to the root of its tree. The root itself
// has the empty path. Paths are values and must not be modified after
// creation; use Append to derive a new path.
type Path []Segment

// String returns the canonical string form of a path, which serves as the
// equality key for paths of different trees.
func (p Path) String() string {
	var b strings.Builder
	for i, seg := range p {
		if i > 0 {
			b.WriteByte('/')
		}
		b.WriteString(seg.String())
	}
	return b.String()
}

// Equal is true if p and q address the same node.
func (p Path) Equal(q Path) bool {
	if len(p) != len(q) {
		return false
	}
	for i := range p {
		if p[i].Name != q[i].Name || p[i].index() != q[i].index() {
			return false
		}
	}
	return true
}

func (s Segment) index() int {
	if s.Index < 1 {
		return 1
	}
	return s.Index
}

// Last returns the final segment of a path.
func (p Path) Last() (Segment, bool) {
	if len(p) == 0 {
		return Segment{}, false
	}
	return p[len(p)-1], true
}

// Parent returns p without its final segment.
func (p Path) Parent() Path {
	if len(p) == 0 {
		return nil
	}
	return p[:len(p)-1:len(p)-1]
}

// Append returns a new path extending p by a segment. name is normalized.
func (p Path) Append(name string, index int) Path {
	q := make(Path, len(p), len(p)+1)
	copy(q, p)
	return append(q, Segment{Name: NormalizeName(name), Index: index})
}

// Parse reads the string form of a path. Segments are separated by '/'
// outside of brackets, parentheses and quotes; a trailing '|' followed by
// digits is the occurrence index of a segment. Names are normalized.
func Parse(s string) (Path, error) {
	if strings.TrimSpace(s) == "" {
		return Path{}, nil
	}
	parts, err := splitPath(s)
	if err != nil {
		return nil, err
	}
	path := make(Path, 0, len(parts))
	for _, part := range parts {
		name, index := part, 1
		if bar := strings.LastIndexByte(part, '|'); bar >= 0 && isDigits(part[bar+1:]) {
			n, err := strconv.Atoi(part[bar+1:])
			if err != nil || n < 1 {
				return nil, fmt.Errorf("%w: invalid index in segment %q", ErrMalformedPath, part)
			}
			name, index = part[:bar], n
		}
		name = NormalizeName(name)
		if name == "" {
			return nil, fmt.Errorf("%w: empty segment in %q", ErrMalformedPath, s)
		}
		path = append(path, Segment{Name: name, Index: index})
	}
	return path, nil
}

// MustParse is like Parse but panics on malformed input.
func MustParse(s string) Path {
	p, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return p
}

func splitPath(s string) ([]string, error) {
	var parts []string
	depth, start := 0, 0
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '\\':
			i++
		case '"', '\'':
			j := quoteEnd(s, i)
			if j < 0 {
				return nil, fmt.Errorf("%w: unterminated string in %q", ErrMalformedPath, s)
			}
			i = j - 1
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		case '/':
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	if depth != 0 {
		return nil, fmt.Errorf("%w: unbalanced brackets in %q", ErrMalformedPath, s)
	}
	return append(parts, s[start:]), nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// quoteEnd returns the offset after the string literal starting at i, or -1.
func quoteEnd(s string, i int) int {
	q := s[i]
	for j := i + 1; j < len(s); j++ {
		switch s[j] {
		case '\\':
			j++
		case q:
			return j + 1
		}
	}
	return -1
}

// MarshalJSON encodes a path as its string form.
func (p Path) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

// UnmarshalJSON accepts either the string form of a path or an array of
// [name, index] pairs. The index of a pair may be omitted.
func (p *Path) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		path, err := Parse(s)
		if err != nil {
			return err
		}
		*p = path
		return nil
	}
	var pairs [][]json.RawMessage
	if err := json.Unmarshal(data, &pairs); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedPath, err)
	}
	path := make(Path, 0, len(pairs))
	for _, pair := range pairs {
		if len(pair) == 0 || len(pair) > 2 {
			return fmt.Errorf("%w: segment must be [name, index]", ErrMalformedPath)
		}
		seg := Segment{Index: 1}
		if err := json.Unmarshal(pair[0], &seg.Name); err != nil {
			return fmt.Errorf("%w: %v", ErrMalformedPath, err)
		}
		if len(pair) == 2 {
			if err := json.Unmarshal(pair[1], &seg.Index); err != nil || seg.Index < 1 {
				return fmt.Errorf("%w: invalid index for %q", ErrMalformedPath, seg.Name)
			}
		}
		seg.Name = NormalizeName(seg.Name)
		path = append(path, seg)
	}
	*p = path
	return nil
}

// --- Name normalization ----------------------------------------------------

// NormalizeName brings a node name into canonical form, so that cosmetic
// differences never break matching: comments are dropped, runs of
// whitespace are collapsed to a single space, top-level selector lists are
// re-joined with ", " and selector combinators are surrounded by single
// spaces. In at-rule heads, a colon inside parentheses is followed by a
// single space, and `@page:first` is spelled `@page :first`. Text inside
// strings is left untouched.
func NormalizeName(name string) string {
	name = strings.TrimSpace(name)
	selector := !strings.HasPrefix(name, "@")
	var b strings.Builder
	b.Grow(len(name))
	depth := 0
	space := false
	emit := func(s string) {
		if space && b.Len() > 0 {
			b.WriteByte(' ')
		}
		space = false
		b.WriteString(s)
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c == '/' && i+1 < len(name) && name[i+1] == '*':
			end := strings.Index(name[i+2:], "*/")
			if end < 0 {
				i = len(name)
			} else {
				i += end + 3
			}
			space = true
		case c == '"' || c == '\'':
			j := quoteEnd(name, i)
			if j < 0 {
				j = len(name)
			}
			emit(name[i:j])
			i = j - 1
		case c == '\\' && i+1 < len(name):
			emit(name[i : i+2])
			i++
		case c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f':
			space = true
		case c == '(' || c == '[' || c == '{':
			depth++
			emit(string(c))
		case c == ')' || c == ']' || c == '}':
			depth--
			space = false
			b.WriteByte(c)
		case depth > 0 && !selector && c == ':':
			space = false
			b.WriteByte(':')
			space = true
		case depth == 0 && c == ',':
			space = false
			b.WriteByte(',')
			space = true
		case depth == 0 && selector && (c == '>' || c == '+' || c == '~'):
			space = b.Len() > 0
			emit(string(c))
			space = true
		default:
			emit(string(c))
		}
	}
	s := b.String()
	if strings.HasPrefix(s, "@page:") {
		s = "@page :" + s[len("@page:"):]
	}
	return s
}
