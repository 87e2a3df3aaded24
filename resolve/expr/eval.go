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

// Dialect selects the preprocessor flavour of an evaluation.
type Dialect uint8

// Supported dialects.
const (
	LESS Dialect = iota
	SCSS
)

// Arg is an argument of a function call. Name is set for named arguments.
type Arg struct {
	Name  string
	Value Value
}

// Env is the environment of an evaluation.
type Env struct {
	Dialect Dialect
	// Lookup returns the value of a variable; name includes the sigil.
	Lookup func(name string) (Value, bool)
	// Call is consulted before the builtin functions. It reports false if
	// it does not know the function.
	Call func(name string, args []Arg) (Value, bool, error)
	// Default implements the LESS `default()` guard function.
	Default func() bool
}

func (env *Env) lookup(name string) (Value, bool) {
	if env == nil || env.Lookup == nil {
		return nil, false
	}
	return env.Lookup(name)
}

func (env *Env) dialect() Dialect {
	if env == nil {
		return LESS
	}
	return env.Dialect
}

// Eval evaluates a complete value, e.g. the right-hand side of a
// declaration. Comma- and space-separated parts produce lists.
func Eval(src string, env *Env) (Value, error) {
	e, err := newEvaluator(src, env)
	if err != nil {
		return nil, err
	}
	v, err := e.commaList()
	if err != nil {
		return nil, err
	}
	if t := e.peek(); t.kind != tEOF {
		return nil, syntaxError(t.pos, fmt.Sprintf("unexpected %q", t.text))
	}
	return v, nil
}

// Cond evaluates a condition such as an SCSS `@if` expression.
func Cond(src string, env *Env) (bool, error) {
	v, err := Eval(src, env)
	if err != nil {
		return false, err
	}
	return Truthy(v, env.dialect()), nil
}

// Guard evaluates a LESS mixin guard: comma-separated groups of
// conditions, combined with `and` and `not`. The guard is true if any
// group is true.
func Guard(src string, env *Env) (bool, error) {
	e, err := newEvaluator(src, env)
	if err != nil {
		return false, err
	}
	result := false
	for {
		v, err := e.spaceList()
		if err != nil {
			return false, err
		}
		if Truthy(v, LESS) {
			result = true
		}
		t := e.peek()
		if t.kind == tEOF {
			return result, nil
		}
		if t.kind != tComma {
			return false, syntaxError(t.pos, fmt.Sprintf("unexpected %q in guard", t.text))
		}
		e.next()
	}
}

// Interpolate substitutes `@{name}` (LESS) and `#{expr}` (SCSS) sequences
// in text. Quoted string values are inserted without quotes.
func Interpolate(text string, env *Env) (string, error) {
	if !strings.Contains(text, "@{") && !strings.Contains(text, "#{") {
		return text, nil
	}
	var b strings.Builder
	for i := 0; i < len(text); i++ {
		c := text[i]
		if (c == '@' || c == '#') && i+1 < len(text) && text[i+1] == '{' {
			end := matchBrace(text, i+1)
			if end < 0 {
				return "", syntaxError(i, "unterminated interpolation")
			}
			inner := text[i+2 : end]
			var v Value
			var err error
			if c == '@' {
				var ok bool
				if v, ok = env.lookup("@" + strings.TrimSpace(inner)); !ok {
					return "", fmt.Errorf("%w: @%s", ErrUndefined, inner)
				}
			} else if v, err = Eval(inner, env); err != nil {
				return "", err
			}
			b.WriteString(Unquote(v))
			i = end
			continue
		}
		b.WriteByte(c)
	}
	return b.String(), nil
}

func matchBrace(s string, open int) int {
	depth := 0
	for j := open; j < len(s); j++ {
		switch s[j] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return j
			}
		}
	}
	return -1
}

// --- Evaluator -------------------------------------------------------------

type evaluator struct {
	src   string
	toks  []token
	pos   int
	env   *Env
	depth int // nesting of parentheses
}

func newEvaluator(src string, env *Env) (*evaluator, error) {
	toks, err := tokenize(src)
	if err != nil {
		return nil, err
	}
	return &evaluator{src: src, toks: toks, env: env}, nil
}

func (e *evaluator) peek() token {
	return e.toks[e.pos]
}

func (e *evaluator) peekAt(n int) token {
	if e.pos+n < len(e.toks) {
		return e.toks[e.pos+n]
	}
	return e.toks[len(e.toks)-1]
}

func (e *evaluator) next() token {
	t := e.toks[e.pos]
	if t.kind != tEOF {
		e.pos++
	}
	return t
}

func (e *evaluator) expect(kind tokKind, what string) error {
	if t := e.next(); t.kind != kind {
		return syntaxError(t.pos, fmt.Sprintf("expected %s, have %q", what, t.text))
	}
	return nil
}

func (e *evaluator) commaList() (Value, error) {
	first, err := e.spaceList()
	if err != nil {
		return nil, err
	}
	if e.peek().kind != tComma {
		return first, nil
	}
	items := []Value{first}
	for e.peek().kind == tComma {
		e.next()
		if k := e.peek().kind; k == tEOF || k == tRParen {
			break
		}
		v, err := e.spaceList()
		if err != nil {
			return nil, err
		}
		items = append(items, v)
	}
	return List{Items: items, Sep: ", "}, nil
}

func (e *evaluator) spaceList() (Value, error) {
	first, err := e.logicOr()
	if err != nil {
		return nil, err
	}
	if !e.startsTerm() {
		return first, nil
	}
	items := []Value{first}
	for e.startsTerm() {
		v, err := e.logicOr()
		if err != nil {
			return nil, err
		}
		items = append(items, v)
	}
	return List{Items: items, Sep: " "}, nil
}

// startsTerm is true if the next token begins a new item of a space list.
func (e *evaluator) startsTerm() bool {
	t := e.peek()
	switch t.kind {
	case tNumber, tHash, tFunc, tVar, tString, tURL, tLParen:
		return true
	case tIdent:
		return t.text != "and" && t.text != "or"
	case tOp:
		return (t.text == "-" || t.text == "+") && t.space && !e.peekAt(1).space
	}
	return false
}

func (e *evaluator) logicOr() (Value, error) {
	l, err := e.logicAnd()
	if err != nil {
		return nil, err
	}
	for t := e.peek(); t.kind == tIdent && t.text == "or"; t = e.peek() {
		e.next()
		r, err := e.logicAnd()
		if err != nil {
			return nil, err
		}
		d := e.env.dialect()
		l = Bool(Truthy(l, d) || Truthy(r, d))
	}
	return l, nil
}

func (e *evaluator) logicAnd() (Value, error) {
	l, err := e.logicNot()
	if err != nil {
		return nil, err
	}
	for t := e.peek(); t.kind == tIdent && t.text == "and"; t = e.peek() {
		e.next()
		r, err := e.logicNot()
		if err != nil {
			return nil, err
		}
		d := e.env.dialect()
		l = Bool(Truthy(l, d) && Truthy(r, d))
	}
	return l, nil
}

func (e *evaluator) logicNot() (Value, error) {
	if t := e.peek(); t.kind == tIdent && t.text == "not" {
		e.next()
		v, err := e.logicNot()
		if err != nil {
			return nil, err
		}
		return Bool(!Truthy(v, e.env.dialect())), nil
	}
	return e.comparison()
}

func (e *evaluator) comparison() (Value, error) {
	l, err := e.additive()
	if err != nil {
		return nil, err
	}
	t := e.peek()
	if t.kind != tOp {
		return l, nil
	}
	switch t.text {
	case "=", "==", "!=", "<", ">", "<=", ">=", "=<":
	default:
		return l, nil
	}
	e.next()
	r, err := e.additive()
	if err != nil {
		return nil, err
	}
	return compare(t.text, l, r)
}

func compare(op string, l, r Value) (Value, error) {
	switch op {
	case "=", "==":
		return Bool(Equal(l, r)), nil
	case "!=":
		return Bool(!Equal(l, r)), nil
	}
	nl, ok1 := l.(Number)
	nr, ok2 := r.(Number)
	if !ok1 || !ok2 {
		return nil, typeError("cannot compare %s %s %s", l.Type(), op, r.Type())
	}
	switch op {
	case "<":
		return Bool(nl.Val < nr.Val), nil
	case ">":
		return Bool(nl.Val > nr.Val), nil
	case "<=", "=<":
		return Bool(nl.Val <= nr.Val), nil
	}
	return Bool(nl.Val >= nr.Val), nil
}

func (e *evaluator) additive() (Value, error) {
	l, _, err := e.multiplicative()
	if err != nil {
		return nil, err
	}
	for {
		t := e.peek()
		if t.kind != tOp || (t.text != "+" && t.text != "-") {
			return l, nil
		}
		if t.space && !e.peekAt(1).space { // `1px -2px` is a list
			return l, nil
		}
		e.next()
		r, _, err := e.multiplicative()
		if err != nil {
			return nil, err
		}
		if l, err = arith(t.text, l, r); err != nil {
			return nil, err
		}
	}
}

// multiplicative reports whether the result is an untouched number literal,
// which decides whether '/' divides or separates.
func (e *evaluator) multiplicative() (Value, bool, error) {
	l, literal, err := e.unary()
	if err != nil {
		return nil, false, err
	}
	for {
		t := e.peek()
		if t.kind != tOp || (t.text != "*" && t.text != "/" && t.text != "%") {
			return l, literal, nil
		}
		e.next()
		r, rlit, err := e.unary()
		if err != nil {
			return nil, false, err
		}
		if t.text == "/" && e.depth == 0 && literal && rlit {
			l = List{Items: []Value{l, r}, Sep: "/"} // font: 12px/1.5
		} else if l, err = arith(t.text, l, r); err != nil {
			return nil, false, err
		}
		literal = false
	}
}

func (e *evaluator) unary() (Value, bool, error) {
	t := e.peek()
	if t.kind == tOp && (t.text == "-" || t.text == "+") {
		e.next()
		v, literal, err := e.unary()
		if err != nil {
			return nil, false, err
		}
		if t.text == "+" {
			return v, literal, nil
		}
		switch x := v.(type) {
		case Number:
			n := Number{Val: -x.Val, Unit: x.Unit}
			if x.raw != "" {
				n.raw = "-" + x.raw
			}
			return n, literal, nil
		case Keyword:
			return Keyword("-" + string(x)), false, nil
		}
		return nil, false, typeError("cannot negate %s", v.Type())
	}
	v, err := e.primary()
	return v, err == nil && t.kind == tNumber, err
}

func (e *evaluator) primary() (Value, error) {
	t := e.next()
	switch t.kind {
	case tNumber:
		return parseNumber(t.text)
	case tHash:
		if c, ok := parseHex(t.text); ok {
			return c, nil
		}
		return Keyword(t.text), nil
	case tString:
		return e.stringValue(t.text)
	case tURL:
		s, err := Interpolate(t.text, e.env)
		if err != nil {
			return nil, err
		}
		return Keyword(s), nil
	case tVar:
		return e.variable(t)
	case tIdent:
		return e.ident(t.text), nil
	case tFunc:
		return e.call(t)
	case tLParen:
		return e.group()
	}
	if t.kind == tEOF {
		return nil, syntaxError(t.pos, "unexpected end of expression")
	}
	return nil, syntaxError(t.pos, fmt.Sprintf("unexpected %q", t.text))
}

func parseNumber(text string) (Value, error) {
	i := len(text)
	for i > 0 && !isDigit(text[i-1]) {
		i--
	}
	v, err := strconv.ParseFloat(text[:i], 64)
	if err != nil {
		return nil, syntaxError(0, fmt.Sprintf("invalid number %q", text))
	}
	return Number{Val: v, Unit: text[i:], raw: text}, nil
}

func (e *evaluator) stringValue(text string) (Value, error) {
	escaped := text[0] == '~'
	if escaped {
		text = text[1:]
	}
	inner, err := Interpolate(text[1:len(text)-1], e.env)
	if err != nil {
		return nil, err
	}
	if escaped {
		return Str{S: inner}, nil
	}
	return Str{S: inner, Quote: text[0]}, nil
}

func (e *evaluator) variable(t token) (Value, error) {
	name := t.text
	if strings.HasPrefix(name, "@@") {
		ref, ok := e.env.lookup(name[1:])
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUndefined, name[1:])
		}
		name = "@" + Unquote(ref)
	}
	v, ok := e.env.lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUndefined, name)
	}
	return v, nil
}

func (e *evaluator) ident(name string) Value {
	lower := strings.ToLower(name)
	if e.env.dialect() == SCSS {
		switch lower {
		case "true":
			return Bool(true)
		case "false":
			return Bool(false)
		case "null":
			return Null{}
		}
	}
	if c, ok := namedColor(lower); ok {
		c.raw = name
		return c
	}
	return Keyword(name)
}

// group evaluates a parenthesized expression, an SCSS map or an empty list.
func (e *evaluator) group() (Value, error) {
	e.depth++
	defer func() { e.depth-- }()
	if e.peek().kind == tRParen {
		e.next()
		return List{Sep: ", "}, nil
	}
	first, err := e.spaceList()
	if err != nil {
		return nil, err
	}
	if e.peek().kind == tColon {
		return e.mapLiteral(first)
	}
	v := first
	if e.peek().kind == tComma {
		items := []Value{first}
		for e.peek().kind == tComma {
			e.next()
			if e.peek().kind == tRParen {
				break
			}
			it, err := e.spaceList()
			if err != nil {
				return nil, err
			}
			items = append(items, it)
		}
		v = List{Items: items, Sep: ", "}
	}
	if err := e.expect(tRParen, "')'"); err != nil {
		return nil, err
	}
	return v, nil
}

func (e *evaluator) mapLiteral(firstKey Value) (Value, error) {
	m := Map{}
	key := firstKey
	for {
		if err := e.expect(tColon, "':'"); err != nil {
			return nil, err
		}
		val, err := e.spaceList()
		if err != nil {
			return nil, err
		}
		m.Keys = append(m.Keys, key)
		m.Vals = append(m.Vals, val)
		if e.peek().kind != tComma {
			break
		}
		e.next()
		if e.peek().kind == tRParen {
			break
		}
		if key, err = e.spaceList(); err != nil {
			return nil, err
		}
	}
	if err := e.expect(tRParen, "')'"); err != nil {
		return nil, err
	}
	return m, nil
}

// rawFunctions keep their arguments as written, substituting variables only.
var rawFunctions = map[string]bool{
	"calc": true, "var": true, "env": true, "attr": true, "counter": true,
	"counters": true, "format": true, "local": true, "expression": true,
	"-webkit-calc": true, "-moz-calc": true,
}

func (e *evaluator) call(t token) (Value, error) {
	name := strings.TrimSuffix(t.text, "(")
	if rawFunctions[strings.ToLower(name)] {
		return e.rawCall(name)
	}
	e.depth++
	args, err := e.callArgs()
	e.depth--
	if err != nil {
		return nil, err
	}
	if e.env != nil && e.env.Call != nil {
		if v, ok, err := e.env.Call(name, args); ok || err != nil {
			return v, err
		}
	}
	if name == "default" && e.env != nil && e.env.Default != nil {
		return Keyword(strconv.FormatBool(e.env.Default())), nil
	}
	if fn, ok := builtins[strings.ToLower(name)]; ok {
		values := make([]Value, len(args))
		for i, a := range args {
			values[i] = a.Value
		}
		return fn(values, e.env)
	}
	// unknown functions are rendered literally with evaluated arguments
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = a.Value.String()
	}
	return Keyword(name + "(" + strings.Join(parts, ", ") + ")"), nil
}

func (e *evaluator) callArgs() ([]Arg, error) {
	var args []Arg
	if e.peek().kind == tRParen {
		e.next()
		return args, nil
	}
	for {
		var a Arg
		if e.peek().kind == tVar && e.peekAt(1).kind == tColon {
			a.Name = e.next().text
			e.next()
		}
		v, err := e.spaceList()
		if err != nil {
			return nil, err
		}
		if e.peek().kind == tEllipsis {
			e.next()
			for _, it := range Items(v) {
				args = append(args, Arg{Value: it})
			}
		} else {
			a.Value = v
			args = append(args, a)
		}
		t := e.next()
		if t.kind == tRParen {
			return args, nil
		}
		if t.kind != tComma {
			return nil, syntaxError(t.pos, fmt.Sprintf("expected ',' or ')', have %q", t.text))
		}
	}
}

// rawCall reproduces the source text of a call up to the matching ')',
// replacing variable references by their values.
func (e *evaluator) rawCall(name string) (Value, error) {
	var b strings.Builder
	b.WriteString(name)
	b.WriteByte('(')
	depth := 1
	for {
		t := e.next()
		switch t.kind {
		case tEOF:
			return nil, syntaxError(t.pos, "unterminated "+name+"()")
		case tFunc, tLParen:
			depth++
		case tRParen:
			depth--
		}
		if depth == 0 {
			b.WriteByte(')')
			return Keyword(b.String()), nil
		}
		if t.space && b.Len() > len(name)+1 {
			b.WriteByte(' ')
		}
		if t.kind == tVar {
			v, err := e.variable(t)
			if err != nil {
				return nil, err
			}
			b.WriteString(v.String())
			continue
		}
		b.WriteString(t.text)
	}
}

// --- Arithmetic ------------------------------------------------------------

func arith(op string, l, r Value) (Value, error) {
	switch a := l.(type) {
	case Number:
		switch b := r.(type) {
		case Number:
			unit := a.Unit
			if unit == "" {
				unit = b.Unit
			}
			v, err := numOp(op, a.Val, b.Val)
			return Number{Val: v, Unit: unit}, err
		case Color:
			return colorOp(op, RGBA(a.Val, a.Val, a.Val, b.A), b, b.A)
		}
	case Color:
		switch b := r.(type) {
		case Number:
			return colorOp(op, a, RGBA(b.Val, b.Val, b.Val, a.A), a.A)
		case Color:
			return colorOp(op, a, b, a.A)
		}
	}
	if op == "+" {
		if s, ok := l.(Str); ok {
			return Str{S: s.S + Unquote(r), Quote: s.Quote}, nil
		}
		if k, ok := l.(Keyword); ok {
			if s, ok := r.(Str); ok {
				return Str{S: string(k) + s.S, Quote: s.Quote}, nil
			}
			return Keyword(string(k) + r.String()), nil
		}
	}
	return nil, typeError("cannot apply %q to %s and %s", op, l.Type(), r.Type())
}

func numOp(op string, a, b float64) (float64, error) {
	switch op {
	case "+":
		return a + b, nil
	case "-":
		return a - b, nil
	case "*":
		return a * b, nil
	case "/":
		if b == 0 {
			return 0, typeError("division by zero")
		}
		return a / b, nil
	case "%":
		if b == 0 {
			return 0, typeError("modulo by zero")
		}
		return math.Mod(a, b), nil
	}
	return 0, typeError("unknown operator %q", op)
}

func colorOp(op string, a, b Color, alpha float64) (Value, error) {
	r, err := numOp(op, a.R, b.R)
	if err != nil {
		return nil, err
	}
	g, err := numOp(op, a.G, b.G)
	if err != nil {
		return nil, err
	}
	bl, err := numOp(op, a.B, b.B)
	if err != nil {
		return nil, err
	}
	return RGBA(r, g, bl, alpha), nil
}
