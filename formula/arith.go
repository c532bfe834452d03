package formula

import (
	"fmt"

	"github.com/go-faster/ttree/interp"
)

// promote returns kind of result of op on elements of provided kinds.
func promote(op Op, a, b interp.Kind) interp.Kind {
	switch {
	case op == OpDiv:
		return interp.KindFloat64
	case a == interp.KindFloat64 || b == interp.KindFloat64:
		return interp.KindFloat64
	case a == interp.KindFloat32 && b == interp.KindFloat32:
		return interp.KindFloat32
	case a == interp.KindFloat32 || b == interp.KindFloat32:
		return interp.KindFloat64
	default:
		return interp.KindInt64
	}
}

// resultKind is promote for operands, keeping uint64 when both
// operands are unsigned or non-negative literals. Other integers mixed
// with uint64 give float64.
func resultKind(op Op, x operand, xk interp.Kind, y operand, yk interp.Kind) interp.Kind {
	k := promote(op, xk, yk)
	if k != interp.KindInt64 || (xk != interp.KindUInt64 && yk != interp.KindUInt64) {
		return k
	}
	if x.unsigned(xk) && y.unsigned(yk) {
		return interp.KindUInt64
	}
	return interp.KindFloat64
}

func intOp(op Op, x, y int64) int64 {
	switch op {
	case OpAdd:
		return x + y
	case OpSub:
		return x - y
	default:
		return x * y
	}
}

func uintOp(op Op, x, y uint64) uint64 {
	switch op {
	case OpAdd:
		return x + y
	case OpSub:
		return x - y
	default:
		return x * y
	}
}

func float32Op(op Op, x, y float32) float32 {
	switch op {
	case OpAdd:
		return x + y
	case OpSub:
		return x - y
	case OpMul:
		return x * y
	default:
		return x / y
	}
}

func float64Op(op Op, x, y float64) float64 {
	switch op {
	case OpAdd:
		return x + y
	case OpSub:
		return x - y
	case OpMul:
		return x * y
	default:
		return x / y
	}
}

type scalar struct {
	kind interp.Kind // KindInt64, KindFloat32 or KindFloat64
	i    int64
	f    float64
}

func (s *scalar) negate() *scalar {
	if s.kind == interp.KindInt64 {
		return &scalar{kind: s.kind, i: -s.i, f: -s.f}
	}
	return &scalar{kind: s.kind, f: -s.f}
}

func scalarOp(op Op, x, y *scalar) *scalar {
	switch k := promote(op, x.kind, y.kind); k {
	case interp.KindInt64:
		v := intOp(op, x.i, y.i)
		return &scalar{kind: k, i: v, f: float64(v)}
	case interp.KindFloat32:
		return &scalar{kind: k, f: float64(float32Op(op, float32(x.f), float32(y.f)))}
	default:
		return &scalar{kind: k, f: float64Op(op, x.f, y.f)}
	}
}

// broadcast returns array of n copies of s.
func (s *scalar) broadcast(n int) interp.Array {
	switch s.kind {
	case interp.KindInt64:
		out := make(interp.Numbers[int64], n)
		for i := range out {
			out[i] = s.i
		}
		return out
	case interp.KindFloat32:
		out := make(interp.Numbers[float32], n)
		for i := range out {
			out[i] = float32(s.f)
		}
		return out
	default:
		out := make(interp.Numbers[float64], n)
		for i := range out {
			out[i] = s.f
		}
		return out
	}
}

// operand of elementwise operation: array, subset of rows of flat array
// or scalar broadcast to any count of rows.
type operand struct {
	arr   interp.Array
	s     *scalar
	index []int // rows of arr, nil for all rows
}

func (o operand) rows() int {
	if o.index != nil {
		return len(o.index)
	}
	return o.arr.Rows()
}

func (o operand) row(i int) int {
	if o.index != nil {
		return o.index[i]
	}
	return i
}

// repeat returns operand where row i of o is repeated counts[i] times.
func (o operand) repeat(counts []int64) operand {
	var total int64
	for _, n := range counts {
		total += n
	}
	idx := make([]int, 0, total)
	for i, n := range counts {
		src := o.row(i)
		for j := int64(0); j < n; j++ {
			idx = append(idx, src)
		}
	}
	return operand{arr: o.arr, index: idx}
}

func (o operand) unsigned(k interp.Kind) bool {
	if o.s != nil {
		return o.s.kind == interp.KindInt64 && o.s.i >= 0
	}
	return k.IsUnsigned()
}

func (o operand) numeric() (interp.Numeric, interp.Kind, error) {
	if o.s != nil {
		return nil, o.s.kind, nil
	}
	n, ok := o.arr.(interp.Numeric)
	if !ok {
		return nil, 0, &interp.UnsupportedError{Feature: "arithmetic on " + o.arr.Type().String()}
	}
	return n, n.Kind(), nil
}

// nested is array split to per-entry counts and content.
type nested struct {
	counts  []int64
	content interp.Array
	rebuild func(content interp.Array) interp.Array
}

func splitNested(a interp.Array) (nested, bool) {
	switch a := a.(type) {
	case *interp.Jagged:
		o := a.Offsets
		if len(o) == 0 {
			o = interp.Offsets{0}
		}
		base := o[0]
		offsets := make(interp.Offsets, len(o))
		for i, v := range o {
			offsets[i] = v - base
		}
		return nested{
			counts:  o.Counts(),
			content: a.Content.Slice(int(base), int(o[len(o)-1])),
			rebuild: func(c interp.Array) interp.Array {
				return &interp.Jagged{Offsets: offsets, Content: c}
			},
		}, true
	case *interp.Regular:
		counts := make([]int64, a.Rows())
		for i := range counts {
			counts[i] = int64(a.Size)
		}
		return nested{
			counts:  counts,
			content: a.Content.Slice(0, a.Rows()*a.Size),
			rebuild: func(c interp.Array) interp.Array {
				return &interp.Regular{Size: a.Size, Content: c}
			},
		}, true
	default:
		return nested{}, false
	}
}

func (o operand) nested() (nested, bool) {
	if o.s != nil || o.index != nil {
		return nested{}, false
	}
	return splitNested(o.arr)
}

func equalCounts(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// combine applies op elementwise, matching structure of operands.
//
// Nested operands must have equal counts of elements in every entry.
// Flat operand is broadcast to entries of nested one, scalar is
// broadcast to every element.
func combine(op Op, x, y operand) (interp.Array, error) {
	xn, xNested := x.nested()
	yn, yNested := y.nested()
	switch {
	case xNested && yNested:
		if !equalCounts(xn.counts, yn.counts) {
			return nil, &interp.MalformedError{Msg: "operands have different structure"}
		}
		c, err := combine(op, operand{arr: xn.content}, operand{arr: yn.content})
		if err != nil {
			return nil, err
		}
		return xn.rebuild(c), nil
	case xNested:
		if y.s == nil {
			if y.rows() != len(xn.counts) {
				return nil, rowsMismatch(len(xn.counts), y.rows())
			}
			y = y.repeat(xn.counts)
		}
		c, err := combine(op, operand{arr: xn.content}, y)
		if err != nil {
			return nil, err
		}
		return xn.rebuild(c), nil
	case yNested:
		if x.s == nil {
			if x.rows() != len(yn.counts) {
				return nil, rowsMismatch(x.rows(), len(yn.counts))
			}
			x = x.repeat(yn.counts)
		}
		c, err := combine(op, x, operand{arr: yn.content})
		if err != nil {
			return nil, err
		}
		return yn.rebuild(c), nil
	default:
		return compute(op, x, y)
	}
}

func rowsMismatch(x, y int) error {
	return &interp.MalformedError{Msg: fmt.Sprintf("operands have %d and %d entries", x, y)}
}

// compute applies op to flat operands.
func compute(op Op, x, y operand) (interp.Array, error) {
	xa, xk, err := x.numeric()
	if err != nil {
		return nil, err
	}
	ya, yk, err := y.numeric()
	if err != nil {
		return nil, err
	}
	var n int
	switch {
	case x.s == nil && y.s == nil:
		if x.rows() != y.rows() {
			return nil, rowsMismatch(x.rows(), y.rows())
		}
		n = x.rows()
	case x.s == nil:
		n = x.rows()
	default:
		n = y.rows()
	}
	i64 := func(o operand, a interp.Numeric, i int) int64 {
		if a == nil {
			return o.s.i
		}
		return a.Int64(o.row(i))
	}
	f64 := func(o operand, a interp.Numeric, i int) float64 {
		if a == nil {
			return o.s.f
		}
		return a.Float64(o.row(i))
	}
	switch resultKind(op, x, xk, y, yk) {
	case interp.KindUInt64:
		// Int64 keeps bits of uint64 elements.
		out := make(interp.Numbers[uint64], n)
		for i := range out {
			out[i] = uintOp(op, uint64(i64(x, xa, i)), uint64(i64(y, ya, i)))
		}
		return out, nil
	case interp.KindInt64:
		out := make(interp.Numbers[int64], n)
		for i := range out {
			out[i] = intOp(op, i64(x, xa, i), i64(y, ya, i))
		}
		return out, nil
	case interp.KindFloat32:
		out := make(interp.Numbers[float32], n)
		for i := range out {
			out[i] = float32Op(op, float32(f64(x, xa, i)), float32(f64(y, ya, i)))
		}
		return out, nil
	default:
		out := make(interp.Numbers[float64], n)
		for i := range out {
			out[i] = float64Op(op, f64(x, xa, i), f64(y, ya, i))
		}
		return out, nil
	}
}

// negate returns elementwise negation of a.
func negate(a interp.Array) (interp.Array, error) {
	if n, ok := splitNested(a); ok {
		c, err := negate(n.content)
		if err != nil {
			return nil, err
		}
		return n.rebuild(c), nil
	}
	num, ok := a.(interp.Numeric)
	if !ok {
		return nil, &interp.UnsupportedError{Feature: "negation of " + a.Type().String()}
	}
	switch num.Kind() {
	case interp.KindUInt64:
		out := make(interp.Numbers[float64], num.Rows())
		for i := range out {
			out[i] = -num.Float64(i)
		}
		return out, nil
	case interp.KindFloat32:
		out := make(interp.Numbers[float32], num.Rows())
		for i := range out {
			out[i] = -float32(num.Float64(i))
		}
		return out, nil
	case interp.KindFloat64:
		out := make(interp.Numbers[float64], num.Rows())
		for i := range out {
			out[i] = -num.Float64(i)
		}
		return out, nil
	default:
		out := make(interp.Numbers[int64], num.Rows())
		for i := range out {
			out[i] = -num.Int64(i)
		}
		return out, nil
	}
}
