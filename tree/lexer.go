package tree

/*
License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/

import (
	"fmt"
)

// TokenKind classifies a lexical token of a stylesheet.
type TokenKind uint8

// Token kinds produced by the lexer.
const (
	TokEOF           TokenKind = iota
	TokWhitespace              // spaces, tabs, newlines
	TokComment                 // /* … */
	TokLineComment             // // … (LESS, SCSS)
	TokString                  // "…" or '…'
	TokGroup                   // balanced (…) or […]
	TokInterpolation           // #{…} or @{…}
	TokNumber                  // 12, -1.5, .5em, 10%
	TokIdent                   // letters, digits, _, -, &
	TokAtKeyword               // @media, @var
	TokVariable                // $var
	TokOperator                // single or double character operator
	TokLBrace                  // {
	TokRBrace                  // }
	TokSemicolon               // ;
	TokColon                   // :
)

var tokenNames = [...]string{
	"EOF", "WS", "COMMENT", "LINE-COMMENT", "STRING", "GROUP", "INTERPOLATION",
	"NUMBER", "IDENT", "AT-KEYWORD", "VARIABLE", "OPERATOR", "{", "}", ";", ":",
}

func (k TokenKind) String() string {
	if int(k) < len(tokenNames) {
		return tokenNames[k]
	}
	return fmt.Sprintf("TokenKind(%d)", k)
}

// Token is a lexical token, referencing a half-open byte range of the source.
type Token struct {
	Kind  TokenKind
	Start int
	End   int
}

// IsTrivia is true for whitespace and comments.
func (t Token) IsTrivia() bool {
	return t.Kind == TokWhitespace || t.Kind == TokComment || t.Kind == TokLineComment
}

// twoCharOps lists operators consisting of two characters.
var twoCharOps = map[string]bool{
	">=": true, "<=": true, "==": true, "!=": true, "=<": true,
	"~=": true, "|=": true, "^=": true, "$=": true, "*=": true,
}

// Lexer splits a stylesheet source into tokens.
type Lexer struct {
	src    string
	cur    int
	tokens []Token
}

// Tokenize returns the token stream for src, excluding the final EOF token.
// It fails with a *ParseError for unterminated strings, comments and groups
// and for characters which cannot start any token.
func Tokenize(src string) ([]Token, error) {
	lx := &Lexer{src: src}
	if err := lx.scan(); err != nil {
		return nil, err
	}
	return lx.tokens, nil
}

func (lx *Lexer) scan() error {
	for lx.cur < len(lx.src) {
		start := lx.cur
		kind, err := lx.next()
		if err != nil {
			return err
		}
		lx.tokens = append(lx.tokens, Token{Kind: kind, Start: start, End: lx.cur})
	}
	return nil
}

func (lx *Lexer) peek(offset int) byte {
	if lx.cur+offset < len(lx.src) {
		return lx.src[lx.cur+offset]
	}
	return 0
}

func (lx *Lexer) next() (TokenKind, error) {
	c := lx.src[lx.cur]
	switch {
	case isSpace(c):
		for lx.cur < len(lx.src) && isSpace(lx.src[lx.cur]) {
			lx.cur++
		}
		return TokWhitespace, nil
	case c == '/' && lx.peek(1) == '*':
		return TokComment, lx.blockComment()
	case c == '/' && lx.peek(1) == '/':
		for lx.cur < len(lx.src) && lx.src[lx.cur] != '\n' {
			lx.cur++
		}
		return TokLineComment, nil
	case c == '"' || c == '\'':
		return TokString, lx.quoted(c)
	case c == '(' || c == '[':
		return TokGroup, lx.group()
	case (c == '#' || c == '@') && lx.peek(1) == '{':
		lx.cur++
		return TokInterpolation, lx.group()
	case c == ')' || c == ']':
		return TokEOF, lx.errorf(lx.cur, "unexpected %q", c)
	case c == '{':
		lx.cur++
		return TokLBrace, nil
	case c == '}':
		lx.cur++
		return TokRBrace, nil
	case c == ';':
		lx.cur++
		return TokSemicolon, nil
	case c == ':':
		lx.cur++
		return TokColon, nil
	case isDigit(c) || (c == '.' && isDigit(lx.peek(1))) ||
		(c == '-' && (isDigit(lx.peek(1)) || (lx.peek(1) == '.' && isDigit(lx.peek(2))))):
		lx.number()
		return TokNumber, nil
	case c == '@' && isIdentStart(lx.peek(1)):
		lx.cur++
		lx.ident()
		return TokAtKeyword, nil
	case c == '$' && isIdentStart(lx.peek(1)):
		lx.cur++
		lx.ident()
		return TokVariable, nil
	case isIdentStart(c) || (c == '-' && (isIdentStart(lx.peek(1)) || lx.peek(1) == '-')):
		lx.ident()
		return TokIdent, nil
	case c < 0x20 || c == 0x7f:
		return TokEOF, lx.errorf(lx.cur, "unrecognized character %#U", rune(c))
	}
	if lx.cur+1 < len(lx.src) && twoCharOps[lx.src[lx.cur:lx.cur+2]] {
		lx.cur += 2
	} else {
		lx.cur++
	}
	return TokOperator, nil
}

func (lx *Lexer) blockComment() error {
	start := lx.cur
	lx.cur += 2
	for lx.cur+1 < len(lx.src) {
		if lx.src[lx.cur] == '*' && lx.src[lx.cur+1] == '/' {
			lx.cur += 2
			return nil
		}
		lx.cur++
	}
	lx.cur = len(lx.src)
	return lx.errorf(start, "unterminated comment")
}

// quoted consumes a string literal. A newline inside the string has to be
// escaped by a backslash.
func (lx *Lexer) quoted(quote byte) error {
	start := lx.cur
	lx.cur++
	for lx.cur < len(lx.src) {
		c := lx.src[lx.cur]
		switch c {
		case '\\':
			lx.cur += 2
			continue
		case '\n', '\r', '\f':
			return lx.errorf(start, "unterminated string")
		case quote:
			lx.cur++
			return nil
		}
		lx.cur++
	}
	lx.cur = len(lx.src)
	return lx.errorf(start, "unterminated string")
}

// group consumes a balanced bracket group, starting at an opening bracket.
// Strings and comments inside a group are skipped as a whole.
func (lx *Lexer) group() error {
	start := lx.cur
	var stack []byte
	for lx.cur < len(lx.src) {
		c := lx.src[lx.cur]
		switch c {
		case '(':
			stack = append(stack, ')')
		case '[':
			stack = append(stack, ']')
		case '{':
			stack = append(stack, '}')
		case ')', ']', '}':
			if len(stack) == 0 || stack[len(stack)-1] != c {
				return lx.errorf(lx.cur, "unbalanced %q", c)
			}
			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				lx.cur++
				return nil
			}
		case '"', '\'':
			if err := lx.quoted(c); err != nil {
				return err
			}
			continue
		case '/':
			if lx.peek(1) == '*' {
				if err := lx.blockComment(); err != nil {
					return err
				}
				continue
			}
		case '\\':
			lx.cur++
		}
		lx.cur++
	}
	lx.cur = len(lx.src)
	return lx.errorf(start, "unterminated %q", lx.src[start])
}

func (lx *Lexer) number() {
	if lx.src[lx.cur] == '-' {
		lx.cur++
	}
	seenDot := false
	for lx.cur < len(lx.src) {
		c := lx.src[lx.cur]
		if isDigit(c) {
			lx.cur++
		} else if c == '.' && !seenDot && isDigit(lx.peek(1)) {
			seenDot = true
			lx.cur++
		} else {
			break
		}
	}
	if lx.cur < len(lx.src) && lx.src[lx.cur] == '%' {
		lx.cur++
		return
	}
	for lx.cur < len(lx.src) && isLetter(lx.src[lx.cur]) {
		lx.cur++
	}
}

func (lx *Lexer) ident() {
	for lx.cur < len(lx.src) {
		c := lx.src[lx.cur]
		if c == '\\' && lx.cur+1 < len(lx.src) {
			lx.cur += 2
			continue
		}
		if !isIdentChar(c) {
			break
		}
		lx.cur++
	}
}

func (lx *Lexer) errorf(pos int, format string, args ...interface{}) error {
	return newParseError(lx.src, pos, fmt.Sprintf(format, args...))
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f'
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentStart(c byte) bool {
	return isLetter(c) || c == '_' || c == '&' || c == '\\' || c >= 0x80
}

func isIdentChar(c byte) bool {
	return isIdentStart(c) || isDigit(c) || c == '-'
}
