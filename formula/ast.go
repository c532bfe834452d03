package formula

import (
	"strconv"
	"strings"
)

// Node of formula syntax tree.
//
// Closed set: *Literal, *ColumnRef, *PathLookup, *Unary and *Binary.
type Node interface {
	String() string
	node()
}

// Compile-time assertions for Node.
var (
	_ Node = (*Literal)(nil)
	_ Node = (*ColumnRef)(nil)
	_ Node = (*PathLookup)(nil)
	_ Node = (*Unary)(nil)
	_ Node = (*Binary)(nil)
)

// Literal is numeric constant. Integer literals are Int, others are
// float64 Value.
type Literal struct {
	Int     bool
	IntVal  int64
	Value   float64
	Literal string
}

func (*Literal) node() {}

func (l *Literal) String() string { return l.Literal }

// ColumnRef references column by name.
type ColumnRef struct {
	Name string
}

func (*ColumnRef) node() {}

func (c *ColumnRef) String() string { return c.Name }

// PathLookup is get(path): column by full branch path.
type PathLookup struct {
	Path string
}

func (*PathLookup) node() {}

func (p *PathLookup) String() string {
	return "get(" + strconv.Quote(p.Path) + ")"
}

// Unary is negation.
type Unary struct {
	Op Op
	X  Node
}

func (*Unary) node() {}

func (u *Unary) String() string {
	return "(" + u.Op.String() + u.X.String() + ")"
}

// Binary is arithmetic operation.
type Binary struct {
	Op Op
	X  Node
	Y  Node
}

func (*Binary) node() {}

func (b *Binary) String() string {
	var s strings.Builder
	s.WriteRune('(')
	s.WriteString(b.X.String())
	s.WriteRune(' ')
	s.WriteString(b.Op.String())
	s.WriteRune(' ')
	s.WriteString(b.Y.String())
	s.WriteRune(')')
	return s.String()
}

// Op is arithmetic operator.
type Op byte

// Operators.
const (
	OpAdd Op = '+'
	OpSub Op = '-'
	OpMul Op = '*'
	OpDiv Op = '/'
)

func (o Op) String() string { return string(rune(o)) }

// Walk calls fn for n and all its descendants, parents first.
func Walk(n Node, fn func(n Node)) {
	fn(n)
	switch n := n.(type) {
	case *Unary:
		Walk(n.X, fn)
	case *Binary:
		Walk(n.X, fn)
		Walk(n.Y, fn)
	}
}
