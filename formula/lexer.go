package formula

import (
	"fmt"
	"sort"
	"strings"
)

// TokenType is type of formula token.
type TokenType byte

// Token types.
const (
	TokenEOF TokenType = iota
	TokenNumber
	TokenName   // column name or identifier
	TokenString // 'value' or "value"
	TokenGet    // get(
	TokenPlus
	TokenMinus
	TokenMul
	TokenDiv
	TokenOpen
	TokenClose
)

var tokenNames = [...]string{
	TokenEOF:    "EOF",
	TokenNumber: "number",
	TokenName:   "name",
	TokenString: "string",
	TokenGet:    "get(",
	TokenPlus:   "+",
	TokenMinus:  "-",
	TokenMul:    "*",
	TokenDiv:    "/",
	TokenOpen:   "(",
	TokenClose:  ")",
}

func (t TokenType) String() string {
	if int(t) < len(tokenNames) {
		return tokenNames[t]
	}
	return fmt.Sprintf("TokenType(%d)", byte(t))
}

// Token of formula.
type Token struct {
	Type    TokenType
	Literal string
	Pos     int
}

func (t Token) String() string {
	return fmt.Sprintf("%s(%q)@%d", t.Type, t.Literal, t.Pos)
}

// SyntaxError reports invalid formula.
type SyntaxError struct {
	Input string
	Pos   int
	Msg   string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("formula %q: at %d: %s", e.Input, e.Pos, e.Msg)
}

// Lexer splits formula into tokens.
//
// Known column names are matched first, longest name wins, so names
// can contain characters that are operators otherwise, like "P3.Py" or
// "evt/P3". Unknown identifiers are [A-Za-z_][A-Za-z0-9_.:]*.
type Lexer struct {
	input string
	pos   int
	names []string
}

// NewLexer initializes lexer of input with provided column names.
func NewLexer(input string, names []string) *Lexer {
	sorted := make([]string, 0, len(names))
	for _, n := range names {
		if n != "" {
			sorted = append(sorted, n)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return len(sorted[i]) > len(sorted[j])
	})
	return &Lexer{
		input: input,
		names: sorted,
	}
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isIdent(c byte) bool {
	return isIdentStart(c) || isDigit(c) || c == '.' || c == ':'
}

func (l *Lexer) errorf(pos int, format string, args ...interface{}) error {
	return &SyntaxError{
		Input: l.input,
		Pos:   pos,
		Msg:   fmt.Sprintf(format, args...),
	}
}

func (l *Lexer) skipWhitespace() {
	for l.pos < len(l.input) {
		switch l.input[l.pos] {
		case ' ', '\t', '\n', '\r':
			l.pos++
		default:
			return
		}
	}
}

// matchName returns longest known name at current position.
func (l *Lexer) matchName() string {
	rest := l.input[l.pos:]
	for _, name := range l.names {
		if !strings.HasPrefix(rest, name) {
			continue
		}
		// Name must not be prefix of longer identifier.
		if len(rest) > len(name) && isIdent(rest[len(name)]) && isIdent(name[len(name)-1]) {
			continue
		}
		return name
	}
	return ""
}

// Next returns next token.
func (l *Lexer) Next() (Token, error) {
	l.skipWhitespace()
	start := l.pos
	if l.pos >= len(l.input) {
		return Token{Type: TokenEOF, Pos: start}, nil
	}
	tok := func(t TokenType, n int) (Token, error) {
		l.pos += n
		return Token{Type: t, Literal: l.input[start:l.pos], Pos: start}, nil
	}
	if strings.HasPrefix(l.input[l.pos:], "get(") {
		return tok(TokenGet, len("get("))
	}
	if name := l.matchName(); name != "" {
		return tok(TokenName, len(name))
	}
	c := l.input[l.pos]
	switch c {
	case '+':
		return tok(TokenPlus, 1)
	case '-':
		return tok(TokenMinus, 1)
	case '*':
		return tok(TokenMul, 1)
	case '/':
		return tok(TokenDiv, 1)
	case '(':
		return tok(TokenOpen, 1)
	case ')':
		return tok(TokenClose, 1)
	case '\'', '"':
		end := strings.IndexByte(l.input[l.pos+1:], c)
		if end < 0 {
			return Token{}, l.errorf(start, "unterminated string")
		}
		l.pos += end + 2
		return Token{Type: TokenString, Literal: l.input[start+1 : l.pos-1], Pos: start}, nil
	}
	if isDigit(c) || (c == '.' && l.pos+1 < len(l.input) && isDigit(l.input[l.pos+1])) {
		return tok(TokenNumber, l.numberLen())
	}
	if isIdentStart(c) {
		n := 1
		for l.pos+n < len(l.input) && isIdent(l.input[l.pos+n]) {
			n++
		}
		return tok(TokenName, n)
	}
	return Token{}, l.errorf(start, "unexpected %q", c)
}

// numberLen returns length of number at current position:
// digits, optional fraction and exponent.
func (l *Lexer) numberLen() int {
	s := l.input[l.pos:]
	i := 0
	for i < len(s) && isDigit(s[i]) {
		i++
	}
	if i < len(s) && s[i] == '.' {
		i++
		for i < len(s) && isDigit(s[i]) {
			i++
		}
	}
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		if j < len(s) && isDigit(s[j]) {
			for j < len(s) && isDigit(s[j]) {
				j++
			}
			i = j
		}
	}
	return i
}

// Tokens returns all tokens of input, excluding EOF.
func Tokens(input string, names []string) ([]Token, error) {
	l := NewLexer(input, names)
	var out []Token
	for {
		t, err := l.Next()
		if err != nil {
			return nil, err
		}
		if t.Type == TokenEOF {
			return out, nil
		}
		out = append(out, t)
	}
}
