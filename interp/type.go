package interp

import (
	"strconv"
	"strings"
)

// Type describes shape and element type of Array.
//
// Nested levels are prefixed to the element type: "var * float64" is
// jagged array of float64, "3 * float32" is array of fixed-size [3]float32
// and "var * var * string" is vector of vectors of strings.
type Type string

func (t Type) String() string {
	return string(t)
}

const (
	TypeString Type = "string"
	typeVar         = "var * "
)

// Var returns jagged Type with t elements.
func (t Type) Var() Type {
	return Type(typeVar + string(t))
}

// Fixed returns Type of fixed-size arrays of n elements of t.
func (t Type) Fixed(n int) Type {
	return Type(strconv.Itoa(n) + " * " + string(t))
}

// IsVar reports whether t is jagged.
func (t Type) IsVar() bool {
	return strings.HasPrefix(string(t), typeVar)
}

// Depth returns count of nested levels of t.
func (t Type) Depth() int {
	var depth int
	for e := t; e != e.Elem(); e = e.Elem() {
		depth++
	}
	return depth
}

// Elem returns Type of single entry element, stripping one nested level.
//
// Returns t if t is not nested.
func (t Type) Elem() Type {
	s := string(t)
	idx := strings.Index(s, " * ")
	if idx <= 0 || strings.HasPrefix(s, "{") {
		return t
	}
	prefix := s[:idx]
	if prefix != "var" {
		if _, err := strconv.Atoi(prefix); err != nil {
			return t
		}
	}
	return Type(s[idx+len(" * "):])
}
