package interp

import (
	"strings"
)

// Array is decoded column: ordered sequence of entries.
//
// Implemented by Numbers, Bools, Strings, *Jagged, *Regular and *Record.
type Array interface {
	// Rows returns count of entries.
	Rows() int
	// Type of array.
	Type() Type
	// Slice returns entries from start up to end, not copying data.
	Slice(start, end int) Array
	// Row returns i-th entry as Go value, see Interface.
	Row(i int) interface{}
}

// Number is constraint of primitive numeric element.
type Number interface {
	~int8 | ~int16 | ~int32 | ~int64 |
		~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

// Numeric is Array of numbers with element access by conversion.
type Numeric interface {
	Array
	Kind() Kind
	Float64(i int) float64
	Int64(i int) int64
}

// Numbers is flat array of numeric values.
type Numbers[T Number] []T

// Compile-time assertions for Array implementations.
var (
	_ Numeric = Numbers[float64](nil)
	_ Numeric = Numbers[int32](nil)
	_ Array   = Bools(nil)
	_ Array   = Strings(nil)
	_ Array   = (*Jagged)(nil)
	_ Array   = (*Regular)(nil)
	_ Array   = (*Record)(nil)
)

// Kind of element.
func (c Numbers[T]) Kind() Kind {
	var v T
	switch interface{}(v).(type) {
	case int8:
		return KindInt8
	case int16:
		return KindInt16
	case int32:
		return KindInt32
	case int64:
		return KindInt64
	case uint8:
		return KindUInt8
	case uint16:
		return KindUInt16
	case uint32:
		return KindUInt32
	case uint64:
		return KindUInt64
	case float32:
		return KindFloat32
	case float64:
		return KindFloat64
	default:
		return KindInvalid
	}
}

func (c Numbers[T]) Rows() int { return len(c) }
func (c Numbers[T]) Type() Type { return c.Kind().Type() }
func (c Numbers[T]) Row(i int) interface{} { return c[i] }
func (c Numbers[T]) Float64(i int) float64 { return float64(c[i]) }
func (c Numbers[T]) Int64(i int) int64 { return int64(c[i]) }

func (c Numbers[T]) Slice(start, end int) Array {
	return c[start:end]
}

func (c Numbers[T]) values() interface{} {
	return append([]T{}, c...)
}

// Bools is flat array of booleans.
type Bools []bool

func (c Bools) Rows() int { return len(c) }
func (c Bools) Type() Type { return KindBool.Type() }
func (c Bools) Row(i int) interface{} { return c[i] }
func (c Bools) Slice(start, end int) Array { return c[start:end] }

func (c Bools) values() interface{} {
	return append([]bool{}, c...)
}

// Strings is flat array of strings.
type Strings []string

func (c Strings) Rows() int { return len(c) }
func (c Strings) Type() Type { return TypeString }
func (c Strings) Row(i int) interface{} { return c[i] }
func (c Strings) Slice(start, end int) Array { return c[start:end] }

func (c Strings) values() interface{} {
	return append([]string{}, c...)
}

// Jagged is array of variable-length entries: entry i is
// Content[Offsets[i]:Offsets[i+1]].
type Jagged struct {
	Offsets Offsets
	Content Array
}

// Rows returns count of entries.
func (c *Jagged) Rows() int {
	if len(c.Offsets) == 0 {
		return 0
	}
	return len(c.Offsets) - 1
}

// Type returns "var * T".
func (c *Jagged) Type() Type { return c.Content.Type().Var() }

// Elem returns i-th entry as Array.
func (c *Jagged) Elem(i int) Array {
	return c.Content.Slice(int(c.Offsets[i]), int(c.Offsets[i+1]))
}

// Row returns i-th entry converted by Interface.
func (c *Jagged) Row(i int) interface{} { return Interface(c.Elem(i)) }

// Slice returns entries from start up to end.
func (c *Jagged) Slice(start, end int) Array {
	return &Jagged{
		Offsets: c.Offsets[start : end+1],
		Content: c.Content,
	}
}

// Regular is array of fixed-size entries of Size elements.
type Regular struct {
	Size    int
	Content Array
}

// Rows returns count of entries.
func (c *Regular) Rows() int {
	if c.Size == 0 {
		return 0
	}
	return c.Content.Rows() / c.Size
}

// Type returns "N * T".
func (c *Regular) Type() Type { return c.Content.Type().Fixed(c.Size) }

// Elem returns i-th entry as Array.
func (c *Regular) Elem(i int) Array {
	return c.Content.Slice(i*c.Size, (i+1)*c.Size)
}

// Row returns i-th entry converted by Interface.
func (c *Regular) Row(i int) interface{} { return Interface(c.Elem(i)) }

// Slice returns entries from start up to end.
func (c *Regular) Slice(start, end int) Array {
	return &Regular{
		Size:    c.Size,
		Content: c.Content.Slice(start*c.Size, end*c.Size),
	}
}

// Field is named Array.
type Field struct {
	Name  string
	Array Array
}

// Record is array of split objects: every member is stored as
// separate Array with equal count of entries.
type Record struct {
	Fields []Field
}

// Rows returns count of entries.
func (c *Record) Rows() int {
	if len(c.Fields) == 0 {
		return 0
	}
	return c.Fields[0].Array.Rows()
}

// Type returns "{name: T, ...}".
func (c *Record) Type() Type {
	var b strings.Builder
	b.WriteRune('{')
	for i, f := range c.Fields {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(f.Name)
		b.WriteString(": ")
		b.WriteString(f.Array.Type().String())
	}
	b.WriteRune('}')
	return Type(b.String())
}

// Member returns Array of member with provided name.
func (c *Record) Member(name string) (Array, error) {
	for _, f := range c.Fields {
		if f.Name == name {
			return f.Array, nil
		}
	}
	return nil, &NotFoundError{Name: name}
}

// Row returns i-th entry as map of member name to value.
func (c *Record) Row(i int) interface{} {
	v := make(map[string]interface{}, len(c.Fields))
	for _, f := range c.Fields {
		v[f.Name] = f.Array.Row(i)
	}
	return v
}

// Slice returns entries from start up to end.
func (c *Record) Slice(start, end int) Array {
	fields := make([]Field, len(c.Fields))
	for i, f := range c.Fields {
		fields[i] = Field{Name: f.Name, Array: f.Array.Slice(start, end)}
	}
	return &Record{Fields: fields}
}

type flat interface {
	values() interface{}
}

// Interface returns all entries of a as Go values.
//
// Flat arrays become typed slices ([]float64, []string, ...), nested
// arrays become []interface{} of converted entries. Empty entries are
// empty non-nil slices.
func Interface(a Array) interface{} {
	if f, ok := a.(flat); ok {
		return f.values()
	}
	out := make([]interface{}, a.Rows())
	for i := range out {
		out[i] = a.Row(i)
	}
	return out
}
