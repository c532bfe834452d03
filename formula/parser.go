package formula

import (
	"strconv"
)

// Expr is parsed formula.
type Expr struct {
	Source string
	Root   Node
}

func (e *Expr) String() string { return e.Root.String() }

// Columns returns names referenced by e in order of appearance,
// without duplicates.
func (e *Expr) Columns() []string {
	return e.collect(func(n Node) (string, bool) {
		c, ok := n.(*ColumnRef)
		if !ok {
			return "", false
		}
		return c.Name, true
	})
}

// Paths returns get(path) arguments of e, without duplicates.
func (e *Expr) Paths() []string {
	return e.collect(func(n Node) (string, bool) {
		p, ok := n.(*PathLookup)
		if !ok {
			return "", false
		}
		return p.Path, true
	})
}

func (e *Expr) collect(f func(n Node) (string, bool)) []string {
	var (
		out  []string
		seen = map[string]struct{}{}
	)
	Walk(e.Root, func(n Node) {
		s, ok := f(n)
		if !ok {
			return
		}
		if _, ok := seen[s]; ok {
			return
		}
		seen[s] = struct{}{}
		out = append(out, s)
	})
	return out
}

// Parse formula, matching provided column names first.
//
// Grammar:
//
//	expr  := term (("+" | "-") term)*
//	term  := unary (("*" | "/") unary)*
//	unary := "-" unary | atom
//	atom  := number | name | "get(" string ")" | "(" expr ")"
func Parse(input string, names []string) (*Expr, error) {
	p := &parser{lex: NewLexer(input, names), input: input}
	if err := p.next(); err != nil {
		return nil, err
	}
	root, err := p.expr()
	if err != nil {
		return nil, err
	}
	if p.tok.Type != TokenEOF {
		return nil, p.errorf("unexpected %s", p.tok.Type)
	}
	return &Expr{Source: input, Root: root}, nil
}

type parser struct {
	lex   *Lexer
	input string
	tok   Token
}

func (p *parser) next() error {
	t, err := p.lex.Next()
	if err != nil {
		return err
	}
	p.tok = t
	return nil
}

func (p *parser) errorf(format string, args ...interface{}) error {
	return p.lex.errorf(p.tok.Pos, format, args...)
}

func (p *parser) expr() (Node, error) {
	x, err := p.term()
	if err != nil {
		return nil, err
	}
	for p.tok.Type == TokenPlus || p.tok.Type == TokenMinus {
		op := OpAdd
		if p.tok.Type == TokenMinus {
			op = OpSub
		}
		if err := p.next(); err != nil {
			return nil, err
		}
		y, err := p.term()
		if err != nil {
			return nil, err
		}
		x = &Binary{Op: op, X: x, Y: y}
	}
	return x, nil
}

func (p *parser) term() (Node, error) {
	x, err := p.unary()
	if err != nil {
		return nil, err
	}
	for p.tok.Type == TokenMul || p.tok.Type == TokenDiv {
		op := OpMul
		if p.tok.Type == TokenDiv {
			op = OpDiv
		}
		if err := p.next(); err != nil {
			return nil, err
		}
		y, err := p.unary()
		if err != nil {
			return nil, err
		}
		x = &Binary{Op: op, X: x, Y: y}
	}
	return x, nil
}

func (p *parser) unary() (Node, error) {
	if p.tok.Type != TokenMinus {
		return p.atom()
	}
	if err := p.next(); err != nil {
		return nil, err
	}
	x, err := p.unary()
	if err != nil {
		return nil, err
	}
	return &Unary{Op: OpSub, X: x}, nil
}

func (p *parser) atom() (Node, error) {
	t := p.tok
	switch t.Type {
	case TokenNumber:
		l, err := parseNumber(t.Literal)
		if err != nil {
			return nil, p.errorf("invalid number %q", t.Literal)
		}
		return l, p.next()
	case TokenName:
		return &ColumnRef{Name: t.Literal}, p.next()
	case TokenGet:
		if err := p.next(); err != nil {
			return nil, err
		}
		if p.tok.Type != TokenString {
			return nil, p.errorf("expected string argument of get, got %s", p.tok.Type)
		}
		path := p.tok.Literal
		if err := p.next(); err != nil {
			return nil, err
		}
		if p.tok.Type != TokenClose {
			return nil, p.errorf("expected ) after get argument, got %s", p.tok.Type)
		}
		return &PathLookup{Path: path}, p.next()
	case TokenOpen:
		if err := p.next(); err != nil {
			return nil, err
		}
		x, err := p.expr()
		if err != nil {
			return nil, err
		}
		if p.tok.Type != TokenClose {
			return nil, p.errorf("expected ), got %s", p.tok.Type)
		}
		return x, p.next()
	default:
		return nil, p.errorf("unexpected %s", t.Type)
	}
}

func parseNumber(s string) (*Literal, error) {
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return &Literal{Int: true, IntVal: v, Value: float64(v), Literal: s}, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, err
	}
	return &Literal{Value: v, Literal: s}, nil
}
