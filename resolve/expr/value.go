package expr

/*
License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Value is the result of evaluating an expression. String renders a value
// as CSS text.
type Value interface {
	String() string
	Type() string
}

// Number is a numeric value with an optional unit ("px", "%", "em", …).
type Number struct {
	Val  float64
	Unit string
	raw  string // source spelling of an unmodified literal
}

// Num creates a number value.
func Num(v float64, unit string) Number {
	return Number{Val: v, Unit: unit}
}

func (n Number) String() string {
	if n.raw != "" {
		return n.raw
	}
	return formatFloat(n.Val) + n.Unit
}

// Type returns "number".
func (n Number) Type() string { return "number" }

func formatFloat(f float64) string {
	f = math.Round(f*1e8) / 1e8
	if f == 0 {
		return "0"
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Color is an RGBA color. Channels R, G, B range from 0 to 255, A from 0 to 1.
type Color struct {
	R, G, B float64
	A       float64
	raw     string // source spelling of an unmodified literal
}

// RGBA creates a color value, clamping all channels.
func RGBA(r, g, b, a float64) Color {
	return Color{R: clamp(r, 0, 255), G: clamp(g, 0, 255), B: clamp(b, 0, 255), A: clamp(a, 0, 1)}
}

func (c Color) String() string {
	if c.raw != "" {
		return c.raw
	}
	r, g, b := channel(c.R), channel(c.G), channel(c.B)
	if c.A >= 1 {
		return fmt.Sprintf("#%02x%02x%02x", r, g, b)
	}
	if c.A <= 0 && r == 0 && g == 0 && b == 0 {
		return "transparent"
	}
	return fmt.Sprintf("rgba(%d, %d, %d, %s)", r, g, b, formatFloat(c.A))
}

// Type returns "color".
func (c Color) Type() string { return "color" }

func channel(v float64) int {
	return int(math.Round(clamp(v, 0, 255)))
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, v))
}

// Str is a string. Quote is the quote character of a quoted string or 0.
type Str struct {
	S     string
	Quote byte
}

func (s Str) String() string {
	if s.Quote == 0 {
		return s.S
	}
	return string(s.Quote) + s.S + string(s.Quote)
}

// Type returns "string".
func (s Str) Type() string { return "string" }

// Keyword is an unquoted identifier, such as `solid` or `auto`.
type Keyword string

func (k Keyword) String() string { return string(k) }

// Type returns "keyword".
func (k Keyword) Type() string { return "keyword" }

// Bool is a boolean.
type Bool bool

func (b Bool) String() string {
	if b {
		return "true"
	}
	return "false"
}

// Type returns "bool".
func (b Bool) Type() string { return "bool" }

// Null is the SCSS null value. It renders as the empty string.
type Null struct{}

func (Null) String() string { return "" }

// Type returns "null".
func (Null) Type() string { return "null" }

// List is a space-, comma- or slash-separated list of values.
type List struct {
	Items []Value
	Sep   string // " ", ", " or "/"
}

func (l List) String() string {
	parts := make([]string, 0, len(l.Items))
	for _, it := range l.Items {
		if s := it.String(); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, l.Sep)
}

// Type returns "list".
func (l List) Type() string { return "list" }

// Map is an ordered SCSS map.
type Map struct {
	Keys []Value
	Vals []Value
}

func (m Map) String() string {
	var b strings.Builder
	b.WriteByte('(')
	for i := range m.Keys {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(m.Keys[i].String())
		b.WriteString(": ")
		b.WriteString(m.Vals[i].String())
	}
	b.WriteByte(')')
	return b.String()
}

// Type returns "map".
func (m Map) Type() string { return "map" }

// Get returns the value for a key, comparing keys by their unquoted text.
func (m Map) Get(key Value) (Value, bool) {
	k := Unquote(key)
	for i := range m.Keys {
		if Unquote(m.Keys[i]) == k {
			return m.Vals[i], true
		}
	}
	return nil, false
}

// Unquote returns the text of a value without surrounding quotes.
func Unquote(v Value) string {
	if s, ok := v.(Str); ok {
		return s.S
	}
	return v.String()
}

// Items returns the elements of a list value. Maps yield key/value pairs as
// two-element lists, every other value is a list of itself.
func Items(v Value) []Value {
	switch x := v.(type) {
	case List:
		return x.Items
	case Map:
		pairs := make([]Value, len(x.Keys))
		for i := range x.Keys {
			pairs[i] = List{Items: []Value{x.Keys[i], x.Vals[i]}, Sep: " "}
		}
		return pairs
	case Null:
		return nil
	}
	return []Value{v}
}

// Equal compares two values the way guard and @if comparisons do: numbers
// by magnitude (ignoring a missing unit), everything else by rendered text,
// ignoring quotes.
func Equal(a, b Value) bool {
	na, ok1 := a.(Number)
	nb, ok2 := b.(Number)
	if ok1 && ok2 {
		if na.Unit != "" && nb.Unit != "" && na.Unit != nb.Unit {
			return false
		}
		return math.Abs(na.Val-nb.Val) < 1e-9
	}
	ca, ok1 := a.(Color)
	cb, ok2 := b.(Color)
	if ok1 && ok2 {
		return channel(ca.R) == channel(cb.R) && channel(ca.G) == channel(cb.G) &&
			channel(ca.B) == channel(cb.B) && math.Abs(ca.A-cb.A) < 1e-9
	}
	return Unquote(a) == Unquote(b)
}

// Truthy reports whether a value counts as true in a condition. In LESS
// guards only the keyword `true` is true; in SCSS every value except false
// and null is true.
func Truthy(v Value, d Dialect) bool {
	switch x := v.(type) {
	case Bool:
		return bool(x)
	case Null:
		return false
	case Keyword:
		if d == LESS {
			return x == "true"
		}
		return x != "false" && x != "null"
	}
	return d == SCSS && v != nil
}
