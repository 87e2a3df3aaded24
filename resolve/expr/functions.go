package expr

/*
License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/

import (
	"math"
	"net/url"
	"strings"
)

type builtin func(args []Value, env *Env) (Value, error)

// builtins is the table of functions available to every evaluation.
// Names are lower case.
var builtins = map[string]builtin{
	// color construction and channels
	"rgb":        fnRGB,
	"rgba":       fnRGB,
	"hsl":        fnHSL,
	"hsla":       fnHSL,
	"red":        channelFn(func(c Color) Value { return Num(math.Round(c.R), "") }),
	"green":      channelFn(func(c Color) Value { return Num(math.Round(c.G), "") }),
	"blue":       channelFn(func(c Color) Value { return Num(math.Round(c.B), "") }),
	"alpha":      channelFn(func(c Color) Value { return Num(c.A, "") }),
	"opacity":    channelFn(func(c Color) Value { return Num(c.A, "") }),
	"hue":        channelFn(func(c Color) Value { h, _, _ := c.HSL(); return Num(math.Round(h), "") }),
	"saturation": channelFn(func(c Color) Value { _, s, _ := c.HSL(); return Num(math.Round(s*100), "%") }),
	"lightness":  channelFn(func(c Color) Value { _, _, l := c.HSL(); return Num(math.Round(l*100), "%") }),
	"luma":       channelFn(func(c Color) Value { return Num(round(c.Luma()*100, 8), "%") }),
	"luminance":  channelFn(func(c Color) Value { return Num(round(c.Luminance()*100, 8), "%") }),
	// color operations
	"lighten":        hslFn(func(h, s, l, amt float64) (float64, float64, float64) { return h, s, l + amt }),
	"darken":         hslFn(func(h, s, l, amt float64) (float64, float64, float64) { return h, s, l - amt }),
	"saturate":       hslFn(func(h, s, l, amt float64) (float64, float64, float64) { return h, s + amt, l }),
	"desaturate":     hslFn(func(h, s, l, amt float64) (float64, float64, float64) { return h, s - amt, l }),
	"spin":           fnSpin,
	"adjust-hue":     fnSpin,
	"fadein":         alphaFn(func(a, amt float64) float64 { return a + amt }),
	"fadeout":        alphaFn(func(a, amt float64) float64 { return a - amt }),
	"fade":           alphaFn(func(_, amt float64) float64 { return amt }),
	"opacify":        alphaFn(func(a, amt float64) float64 { return a + amt }),
	"fade-in":        alphaFn(func(a, amt float64) float64 { return a + amt }),
	"transparentize": alphaFn(func(a, amt float64) float64 { return a - amt }),
	"fade-out":       alphaFn(func(a, amt float64) float64 { return a - amt }),
	"mix":            fnMix,
	"tint":           fnTint(Color{R: 255, G: 255, B: 255, A: 1}),
	"shade":          fnTint(Color{A: 1}),
	"greyscale":      hslFn(func(h, _, l, _ float64) (float64, float64, float64) { return h, 0, l }),
	"grayscale":      hslFn(func(h, _, l, _ float64) (float64, float64, float64) { return h, 0, l }),
	"complement":     hslFn(func(h, s, l, _ float64) (float64, float64, float64) { return h + 180, s, l }),
	"invert":         fnInvert,
	"contrast":       fnContrast,
	// math
	"percentage": mathFn(func(n Number) Number { return Num(n.Val*100, "%") }),
	"ceil":       mathFn(func(n Number) Number { return Num(math.Ceil(n.Val), n.Unit) }),
	"floor":      mathFn(func(n Number) Number { return Num(math.Floor(n.Val), n.Unit) }),
	"abs":        mathFn(func(n Number) Number { return Num(math.Abs(n.Val), n.Unit) }),
	"sqrt":       mathFn(func(n Number) Number { return Num(math.Sqrt(n.Val), n.Unit) }),
	"sin":        trigFn(math.Sin),
	"cos":        trigFn(math.Cos),
	"tan":        trigFn(math.Tan),
	"asin":       mathFn(func(n Number) Number { return Num(math.Asin(n.Val), "rad") }),
	"acos":       mathFn(func(n Number) Number { return Num(math.Acos(n.Val), "rad") }),
	"atan":       mathFn(func(n Number) Number { return Num(math.Atan(n.Val), "rad") }),
	"pi":         func([]Value, *Env) (Value, error) { return Num(math.Pi, ""), nil },
	"round":      fnRound,
	"pow":        fnPow,
	"mod":        fnMod,
	"min":        minMax(func(a, b float64) bool { return a < b }),
	"max":        minMax(func(a, b float64) bool { return a > b }),
	"unit":       fnUnit,
	"get-unit":   mathFnV(func(n Number) Value { return Keyword(n.Unit) }),
	"unitless":   predicate(func(v Value) bool { n, ok := v.(Number); return ok && n.Unit == "" }),
	// type checks
	"isnumber":     predicate(func(v Value) bool { return v.Type() == "number" }),
	"isstring":     predicate(func(v Value) bool { return v.Type() == "string" }),
	"iscolor":      predicate(func(v Value) bool { return v.Type() == "color" }),
	"iskeyword":    predicate(func(v Value) bool { return v.Type() == "keyword" && !isURL(v) }),
	"isurl":        predicate(isURL),
	"ispixel":      predicate(hasUnit("px")),
	"isem":         predicate(hasUnit("em")),
	"ispercentage": predicate(hasUnit("%")),
	"isunit":       fnIsUnit,
	"type-of":      fnTypeOf,
	// strings and lists
	"e":              fnUnquote,
	"unquote":        fnUnquote,
	"quote":          fnQuote,
	"escape":         fnEscape,
	"%":              fnFormat,
	"to-upper-case":  strFn(strings.ToUpper),
	"to-lower-case":  strFn(strings.ToLower),
	"str-length":     fnStrLength,
	"length":         fnLength,
	"extract":        fnNth,
	"nth":            fnNth,
	"index":          fnIndex,
	"join":           fnJoin,
	"append":         fnAppend,
	"map-get":        fnMapGet,
	"map-has-key":    fnMapHasKey,
	"map-keys":       fnMapKeys,
	"map-values":     fnMapValues,
	"if":             fnIf,
	"boolean":        fnBoolean,
}

// --- Argument helpers ------------------------------------------------------

func arity(args []Value, min int, fn string) error {
	if len(args) < min {
		return typeError("%s() expects at least %d arguments, has %d", fn, min, len(args))
	}
	return nil
}

func numArg(args []Value, i int) (Number, error) {
	if i >= len(args) {
		return Number{}, typeError("missing argument %d", i+1)
	}
	n, ok := args[i].(Number)
	if !ok {
		return Number{}, typeError("argument %d is a %s, not a number", i+1, args[i].Type())
	}
	return n, nil
}

func colorArg(args []Value, i int) (Color, error) {
	if i >= len(args) {
		return Color{}, typeError("missing argument %d", i+1)
	}
	c, ok := args[i].(Color)
	if !ok {
		return Color{}, typeError("argument %d is a %s, not a color", i+1, args[i].Type())
	}
	return c, nil
}

// percent reads an amount given in percent, e.g. 10% or 10, as a fraction.
func percent(n Number) float64 {
	return n.Val / 100
}

// fraction reads an amount which is a fraction unless given in percent.
func fraction(n Number) float64 {
	if n.Unit == "%" {
		return n.Val / 100
	}
	return n.Val
}

func boolValue(b bool, env *Env) Value {
	if env.dialect() == SCSS {
		return Bool(b)
	}
	return Keyword(boolText(b))
}

func boolText(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

// --- Color functions -------------------------------------------------------

func fnRGB(args []Value, env *Env) (Value, error) {
	if len(args) == 2 { // rgba(color, alpha)
		c, err := colorArg(args, 0)
		if err != nil {
			return nil, err
		}
		a, err := numArg(args, 1)
		if err != nil {
			return nil, err
		}
		return RGBA(c.R, c.G, c.B, fraction(a)), nil
	}
	if err := arity(args, 3, "rgb"); err != nil {
		return nil, err
	}
	var ch [4]float64
	ch[3] = 1
	for i := range args {
		if i > 3 {
			break
		}
		n, err := numArg(args, i)
		if err != nil {
			return nil, err
		}
		switch {
		case i == 3:
			ch[i] = fraction(n)
		case n.Unit == "%":
			ch[i] = n.Val * 2.55
		default:
			ch[i] = n.Val
		}
	}
	return RGBA(ch[0], ch[1], ch[2], ch[3]), nil
}

func fnHSL(args []Value, env *Env) (Value, error) {
	if err := arity(args, 3, "hsl"); err != nil {
		return nil, err
	}
	var v [4]float64
	v[3] = 1
	for i := range args {
		if i > 3 {
			break
		}
		n, err := numArg(args, i)
		if err != nil {
			return nil, err
		}
		switch {
		case i == 0:
			v[i] = n.Val
		case n.Unit == "%" || n.Val > 1 && i < 3:
			v[i] = n.Val / 100
		default:
			v[i] = n.Val
		}
	}
	return FromHSL(v[0], v[1], v[2], v[3]), nil
}

func channelFn(f func(Color) Value) builtin {
	return func(args []Value, env *Env) (Value, error) {
		c, err := colorArg(args, 0)
		if err != nil {
			return nil, err
		}
		return f(c), nil
	}
}

func hslFn(f func(h, s, l, amt float64) (float64, float64, float64)) builtin {
	return func(args []Value, env *Env) (Value, error) {
		c, err := colorArg(args, 0)
		if err != nil {
			return nil, err
		}
		amt := 0.0
		if len(args) > 1 {
			n, err := numArg(args, 1)
			if err != nil {
				return nil, err
			}
			amt = percent(n)
		}
		h, s, l := c.HSL()
		h, s, l = f(h, s, l, amt)
		return FromHSL(h, s, l, c.A), nil
	}
}

func fnSpin(args []Value, env *Env) (Value, error) {
	c, err := colorArg(args, 0)
	if err != nil {
		return nil, err
	}
	deg, err := numArg(args, 1)
	if err != nil {
		return nil, err
	}
	h, s, l := c.HSL()
	return FromHSL(h+deg.Val, s, l, c.A), nil
}

func alphaFn(f func(a, amt float64) float64) builtin {
	return func(args []Value, env *Env) (Value, error) {
		c, err := colorArg(args, 0)
		if err != nil {
			return nil, err
		}
		n, err := numArg(args, 1)
		if err != nil {
			return nil, err
		}
		return RGBA(c.R, c.G, c.B, f(c.A, fraction(n))), nil
	}
}

func fnMix(args []Value, env *Env) (Value, error) {
	c1, err := colorArg(args, 0)
	if err != nil {
		return nil, err
	}
	c2, err := colorArg(args, 1)
	if err != nil {
		return nil, err
	}
	weight := 0.5
	if len(args) > 2 {
		n, err := numArg(args, 2)
		if err != nil {
			return nil, err
		}
		weight = percent(n)
	}
	return mix(c1, c2, weight), nil
}

func fnTint(base Color) builtin {
	return func(args []Value, env *Env) (Value, error) {
		c, err := colorArg(args, 0)
		if err != nil {
			return nil, err
		}
		weight := 0.5
		if len(args) > 1 {
			n, err := numArg(args, 1)
			if err != nil {
				return nil, err
			}
			weight = percent(n)
		}
		return mix(base, c, weight), nil
	}
}

func fnInvert(args []Value, env *Env) (Value, error) {
	c, err := colorArg(args, 0)
	if err != nil {
		return nil, err
	}
	return RGBA(255-c.R, 255-c.G, 255-c.B, c.A), nil
}

// contrast(color, dark, light, threshold) chooses whichever of dark or light
// contrasts more with color.
func fnContrast(args []Value, env *Env) (Value, error) {
	c, err := colorArg(args, 0)
	if err != nil {
		return nil, err
	}
	dark, light := Color{A: 1}, Color{R: 255, G: 255, B: 255, A: 1}
	threshold := 0.43
	if len(args) > 1 {
		if dark, err = colorArg(args, 1); err != nil {
			return nil, err
		}
	}
	if len(args) > 2 {
		if light, err = colorArg(args, 2); err != nil {
			return nil, err
		}
	}
	if len(args) > 3 {
		n, err := numArg(args, 3)
		if err != nil {
			return nil, err
		}
		threshold = fraction(n)
	}
	if dark.Luma() > light.Luma() {
		dark, light = light, dark
	}
	if c.Luma() < threshold {
		return light, nil
	}
	return dark, nil
}

// --- Math functions --------------------------------------------------------

func mathFn(f func(Number) Number) builtin {
	return func(args []Value, env *Env) (Value, error) {
		n, err := numArg(args, 0)
		if err != nil {
			return nil, err
		}
		return f(n), nil
	}
}

func mathFnV(f func(Number) Value) builtin {
	return func(args []Value, env *Env) (Value, error) {
		n, err := numArg(args, 0)
		if err != nil {
			return nil, err
		}
		return f(n), nil
	}
}

func trigFn(f func(float64) float64) builtin {
	return mathFn(func(n Number) Number {
		v := n.Val
		switch n.Unit {
		case "deg":
			v = v * math.Pi / 180
		case "grad":
			v = v * math.Pi / 200
		case "turn":
			v = v * 2 * math.Pi
		}
		return Num(f(v), "")
	})
}

func fnRound(args []Value, env *Env) (Value, error) {
	n, err := numArg(args, 0)
	if err != nil {
		return nil, err
	}
	places := 0
	if len(args) > 1 {
		p, err := numArg(args, 1)
		if err != nil {
			return nil, err
		}
		places = int(p.Val)
	}
	return Num(round(n.Val, places), n.Unit), nil
}

func fnPow(args []Value, env *Env) (Value, error) {
	a, err := numArg(args, 0)
	if err != nil {
		return nil, err
	}
	b, err := numArg(args, 1)
	if err != nil {
		return nil, err
	}
	return Num(math.Pow(a.Val, b.Val), a.Unit), nil
}

func fnMod(args []Value, env *Env) (Value, error) {
	a, err := numArg(args, 0)
	if err != nil {
		return nil, err
	}
	b, err := numArg(args, 1)
	if err != nil {
		return nil, err
	}
	v, err := numOp("%", a.Val, b.Val)
	return Num(v, a.Unit), err
}

func minMax(better func(a, b float64) bool) builtin {
	return func(args []Value, env *Env) (Value, error) {
		if len(args) == 1 {
			args = Items(args[0])
		}
		if err := arity(args, 1, "min/max"); err != nil {
			return nil, err
		}
		best, err := numArg(args, 0)
		if err != nil {
			return nil, err
		}
		for i := 1; i < len(args); i++ {
			n, err := numArg(args, i)
			if err != nil {
				return nil, err
			}
			if better(n.Val, best.Val) {
				best = n
			}
		}
		return best, nil
	}
}

func fnUnit(args []Value, env *Env) (Value, error) {
	n, err := numArg(args, 0)
	if err != nil {
		return nil, err
	}
	unit := ""
	if len(args) > 1 {
		unit = Unquote(args[1])
	}
	return Num(n.Val, unit), nil
}

// --- Type checks -----------------------------------------------------------

func predicate(f func(Value) bool) builtin {
	return func(args []Value, env *Env) (Value, error) {
		if err := arity(args, 1, "type check"); err != nil {
			return nil, err
		}
		return boolValue(f(args[0]), env), nil
	}
}

func isURL(v Value) bool {
	k, ok := v.(Keyword)
	return ok && strings.HasPrefix(strings.ToLower(string(k)), "url(")
}

func hasUnit(unit string) func(Value) bool {
	return func(v Value) bool {
		n, ok := v.(Number)
		return ok && n.Unit == unit
	}
}

func fnIsUnit(args []Value, env *Env) (Value, error) {
	if err := arity(args, 2, "isunit"); err != nil {
		return nil, err
	}
	n, ok := args[0].(Number)
	return boolValue(ok && n.Unit == Unquote(args[1]), env), nil
}

func fnTypeOf(args []Value, env *Env) (Value, error) {
	if err := arity(args, 1, "type-of"); err != nil {
		return nil, err
	}
	return Keyword(args[0].Type()), nil
}

// --- Strings and lists -----------------------------------------------------

func fnUnquote(args []Value, env *Env) (Value, error) {
	if err := arity(args, 1, "unquote"); err != nil {
		return nil, err
	}
	return Str{S: Unquote(args[0])}, nil
}

func fnQuote(args []Value, env *Env) (Value, error) {
	if err := arity(args, 1, "quote"); err != nil {
		return nil, err
	}
	return Str{S: Unquote(args[0]), Quote: '"'}, nil
}

func fnEscape(args []Value, env *Env) (Value, error) {
	if err := arity(args, 1, "escape"); err != nil {
		return nil, err
	}
	return Str{S: url.PathEscape(Unquote(args[0]))}, nil
}

// fnFormat implements LESS' %(format, args…) with %s, %d and %a
// placeholders; upper-case placeholders URL-escape their argument.
func fnFormat(args []Value, env *Env) (Value, error) {
	if err := arity(args, 1, "%"); err != nil {
		return nil, err
	}
	format, ok := args[0].(Str)
	if !ok {
		return nil, typeError("format string expected")
	}
	var b strings.Builder
	next := 1
	for i := 0; i < len(format.S); i++ {
		c := format.S[i]
		if c == '%' && i+1 < len(format.S) && strings.ContainsRune("sdaSDA", rune(format.S[i+1])) && next < len(args) {
			s := Unquote(args[next])
			if p := format.S[i+1]; p >= 'A' && p <= 'Z' {
				s = url.PathEscape(s)
			}
			b.WriteString(s)
			next++
			i++
			continue
		}
		b.WriteByte(c)
	}
	return Str{S: b.String(), Quote: format.Quote}, nil
}

func strFn(f func(string) string) builtin {
	return func(args []Value, env *Env) (Value, error) {
		if err := arity(args, 1, "string function"); err != nil {
			return nil, err
		}
		if s, ok := args[0].(Str); ok {
			return Str{S: f(s.S), Quote: s.Quote}, nil
		}
		return Keyword(f(args[0].String())), nil
	}
}

func fnStrLength(args []Value, env *Env) (Value, error) {
	if err := arity(args, 1, "str-length"); err != nil {
		return nil, err
	}
	return Num(float64(len([]rune(Unquote(args[0])))), ""), nil
}

func fnLength(args []Value, env *Env) (Value, error) {
	if len(args) != 1 {
		return Num(float64(len(args)), ""), nil // length(a, b, c)
	}
	return Num(float64(len(Items(args[0]))), ""), nil
}

// fnNth returns the n-th element (1-based) of a list; negative indexes count
// from the end.
func fnNth(args []Value, env *Env) (Value, error) {
	if err := arity(args, 2, "nth"); err != nil {
		return nil, err
	}
	items := Items(args[0])
	n, err := numArg(args, 1)
	if err != nil {
		return nil, err
	}
	i := int(n.Val)
	if i < 0 {
		i = len(items) + i + 1
	}
	if i < 1 || i > len(items) {
		return nil, typeError("index %d out of bounds for list of length %d", int(n.Val), len(items))
	}
	return items[i-1], nil
}

func fnIndex(args []Value, env *Env) (Value, error) {
	if err := arity(args, 2, "index"); err != nil {
		return nil, err
	}
	for i, it := range Items(args[0]) {
		if Equal(it, args[1]) {
			return Num(float64(i+1), ""), nil
		}
	}
	return Null{}, nil
}

func listSep(v Value, def string) string {
	if l, ok := v.(List); ok && len(l.Items) > 1 {
		return l.Sep
	}
	return def
}

func sepArg(args []Value, i int, def string) string {
	if i < len(args) {
		switch Unquote(args[i]) {
		case "comma":
			return ", "
		case "space":
			return " "
		}
	}
	return def
}

func fnJoin(args []Value, env *Env) (Value, error) {
	if err := arity(args, 2, "join"); err != nil {
		return nil, err
	}
	items := append(append([]Value{}, Items(args[0])...), Items(args[1])...)
	return List{Items: items, Sep: sepArg(args, 2, listSep(args[0], listSep(args[1], " ")))}, nil
}

func fnAppend(args []Value, env *Env) (Value, error) {
	if err := arity(args, 2, "append"); err != nil {
		return nil, err
	}
	items := append(append([]Value{}, Items(args[0])...), args[1])
	return List{Items: items, Sep: sepArg(args, 2, listSep(args[0], " "))}, nil
}

func mapArg(args []Value, fn string) (Map, error) {
	if err := arity(args, 1, fn); err != nil {
		return Map{}, err
	}
	switch m := args[0].(type) {
	case Map:
		return m, nil
	case List:
		if len(m.Items) == 0 {
			return Map{}, nil
		}
	}
	return Map{}, typeError("%s() expects a map, has %s", fn, args[0].Type())
}

func fnMapGet(args []Value, env *Env) (Value, error) {
	m, err := mapArg(args, "map-get")
	if err != nil {
		return nil, err
	}
	if err := arity(args, 2, "map-get"); err != nil {
		return nil, err
	}
	if v, ok := m.Get(args[1]); ok {
		return v, nil
	}
	return Null{}, nil
}

func fnMapHasKey(args []Value, env *Env) (Value, error) {
	m, err := mapArg(args, "map-has-key")
	if err != nil {
		return nil, err
	}
	if err := arity(args, 2, "map-has-key"); err != nil {
		return nil, err
	}
	_, ok := m.Get(args[1])
	return boolValue(ok, env), nil
}

func fnMapKeys(args []Value, env *Env) (Value, error) {
	m, err := mapArg(args, "map-keys")
	if err != nil {
		return nil, err
	}
	return List{Items: append([]Value{}, m.Keys...), Sep: ", "}, nil
}

func fnMapValues(args []Value, env *Env) (Value, error) {
	m, err := mapArg(args, "map-values")
	if err != nil {
		return nil, err
	}
	return List{Items: append([]Value{}, m.Vals...), Sep: ", "}, nil
}

func fnIf(args []Value, env *Env) (Value, error) {
	if err := arity(args, 2, "if"); err != nil {
		return nil, err
	}
	if Truthy(args[0], SCSS) && args[0].String() != "false" {
		return args[1], nil
	}
	if len(args) > 2 {
		return args[2], nil
	}
	return Null{}, nil
}

func fnBoolean(args []Value, env *Env) (Value, error) {
	if err := arity(args, 1, "boolean"); err != nil {
		return nil, err
	}
	return boolValue(Truthy(args[0], SCSS) && args[0].String() != "false", env), nil
}
