package expr

/*
License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/

import (
	"fmt"
	"strings"
)

type tokKind uint8

const (
	tEOF tokKind = iota
	tNumber
	tHash     // #abc
	tIdent    // solid, -moz-box, !important
	tFunc     // name( ; the '(' is consumed
	tVar      // @var, @@var, $var
	tString   // "x", 'x', ~"x"
	tURL      // url(…) as a raw literal
	tOp       // + - * / % = == != < > <= >= =<
	tLParen   // (
	tRParen   // )
	tComma    // ,
	tColon    // :
	tEllipsis // ...
)

type token struct {
	kind  tokKind
	text  string
	pos   int
	space bool // whitespace precedes the token
}

func (t token) String() string {
	return fmt.Sprintf("%d:%q", t.kind, t.text)
}

func tokenize(src string) ([]token, error) {
	var toks []token
	i := 0
	for {
		space := false
		for i < len(src) && isWS(src[i]) {
			i++
			space = true
		}
		if i+1 < len(src) && src[i] == '/' && src[i+1] == '*' {
			end := strings.Index(src[i+2:], "*/")
			if end < 0 {
				return nil, syntaxError(i, "unterminated comment")
			}
			i += end + 4
			continue
		}
		if i >= len(src) {
			return append(toks, token{kind: tEOF, pos: i, space: space}), nil
		}
		start := i
		c := src[i]
		var kind tokKind
		switch {
		case isDigit(c) || (c == '.' && i+1 < len(src) && isDigit(src[i+1])):
			i = scanNumber(src, i)
			kind = tNumber
		case c == '"' || c == '\'':
			j, err := scanString(src, i)
			if err != nil {
				return nil, err
			}
			i, kind = j, tString
		case c == '~' && i+1 < len(src) && (src[i+1] == '"' || src[i+1] == '\''):
			j, err := scanString(src, i+1)
			if err != nil {
				return nil, err
			}
			i, kind = j, tString
		case c == '#' && i+1 < len(src) && isNameChar(src[i+1]):
			i = scanName(src, i+1)
			kind = tHash
		case (c == '@' || c == '$') && i+1 < len(src) && (isNameStart(src[i+1]) || (c == '@' && src[i+1] == '@')):
			i++
			if src[i] == '@' {
				i++
			}
			i = scanName(src, i)
			kind = tVar
		case c == '!' && i+1 < len(src) && isNameStart(src[i+1]):
			i = scanName(src, i+1)
			kind = tIdent
		case isNameStart(c) || (c == '-' && i+1 < len(src) && (isNameStart(src[i+1]) || src[i+1] == '-')):
			i = scanName(src, i)
			kind = tIdent
			if i < len(src) && src[i] == '(' {
				if strings.EqualFold(src[start:i], "url") {
					j, err := scanGroup(src, i)
					if err != nil {
						return nil, err
					}
					i, kind = j, tURL
				} else {
					i++
					kind = tFunc
				}
			}
		case c == '%' && i+1 < len(src) && src[i+1] == '(':
			i += 2
			kind = tFunc
		case c == '(':
			i++
			kind = tLParen
		case c == ')':
			i++
			kind = tRParen
		case c == ',':
			i++
			kind = tComma
		case c == ':':
			i++
			kind = tColon
		case c == '.' && strings.HasPrefix(src[i:], "..."):
			i += 3
			kind = tEllipsis
		case strings.ContainsRune("+-*/%<>=!", rune(c)):
			i++
			if i < len(src) && (src[i] == '=' || (c == '=' && src[i] == '<')) {
				i++
			}
			kind = tOp
			if src[start:i] == "!" {
				return nil, syntaxError(start, "unexpected '!'")
			}
		default:
			return nil, syntaxError(i, fmt.Sprintf("unexpected character %q", c))
		}
		toks = append(toks, token{kind: kind, text: src[start:i], pos: start, space: space})
	}
}

func scanNumber(src string, i int) int {
	seenDot := false
	for i < len(src) {
		c := src[i]
		if isDigit(c) {
			i++
		} else if c == '.' && !seenDot && i+1 < len(src) && isDigit(src[i+1]) {
			seenDot = true
			i++
		} else {
			break
		}
	}
	if i < len(src) && src[i] == '%' {
		return i + 1
	}
	for i < len(src) && (isLetter(src[i])) {
		i++
	}
	return i
}

func scanString(src string, i int) (int, error) {
	q := src[i]
	for j := i + 1; j < len(src); j++ {
		switch src[j] {
		case '\\':
			j++
		case q:
			return j + 1, nil
		}
	}
	return 0, syntaxError(i, "unterminated string")
}

// scanGroup returns the offset after the parenthesis group starting at i.
func scanGroup(src string, i int) (int, error) {
	depth := 0
	for j := i; j < len(src); j++ {
		switch c := src[j]; c {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return j + 1, nil
			}
		case '"', '\'':
			k, err := scanString(src, j)
			if err != nil {
				return 0, err
			}
			j = k - 1
		case '\\':
			j++
		}
	}
	return 0, syntaxError(i, "unterminated group")
}

func scanName(src string, i int) int {
	for i < len(src) {
		if src[i] == '\\' && i+1 < len(src) {
			i += 2
			continue
		}
		if !isNameChar(src[i]) {
			break
		}
		i++
	}
	return i
}

func isWS(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f'
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isNameStart(c byte) bool {
	return isLetter(c) || c == '_' || c == '\\' || c >= 0x80
}

func isNameChar(c byte) bool {
	return isNameStart(c) || isDigit(c) || c == '-'
}
