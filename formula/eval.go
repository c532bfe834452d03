package formula

import (
	"context"

	"github.com/go-faster/errors"

	"github.com/go-faster/ttree/interp"
)

// Resolver provides columns referenced by formula.
type Resolver interface {
	// Resolve returns column by name.
	Resolve(ctx context.Context, name string) (interp.Array, error)
	// ResolvePath returns column by full branch path.
	ResolvePath(ctx context.Context, path string) (interp.Array, error)
	// Entries returns count of entries, used to broadcast formulas
	// without columns.
	Entries() int
}

// Eval evaluates e elementwise over columns of r.
//
// Integer arithmetic (+, -, *) is done in int64, float64 and mixed
// integer with float32 arithmetic in float64, float32 arithmetic in
// float32. Division is always float64.
func (e *Expr) Eval(ctx context.Context, r Resolver) (interp.Array, error) {
	v, err := eval(ctx, e.Root, r)
	if err != nil {
		return nil, err
	}
	if v.arr != nil {
		return v.arr, nil
	}
	return v.s.broadcast(r.Entries()), nil
}

// value is result of evaluation of node: array or scalar.
type value struct {
	arr interp.Array
	s   *scalar
}

func eval(ctx context.Context, n Node, r Resolver) (value, error) {
	switch n := n.(type) {
	case *Literal:
		if n.Int {
			return value{s: &scalar{kind: interp.KindInt64, i: n.IntVal, f: float64(n.IntVal)}}, nil
		}
		return value{s: &scalar{kind: interp.KindFloat64, f: n.Value}}, nil
	case *ColumnRef:
		arr, err := r.Resolve(ctx, n.Name)
		if err != nil {
			return value{}, err
		}
		return value{arr: arr}, nil
	case *PathLookup:
		arr, err := r.ResolvePath(ctx, n.Path)
		if err != nil {
			return value{}, err
		}
		return value{arr: arr}, nil
	case *Unary:
		x, err := eval(ctx, n.X, r)
		if err != nil {
			return value{}, err
		}
		if x.s != nil {
			return value{s: x.s.negate()}, nil
		}
		arr, err := negate(x.arr)
		if err != nil {
			return value{}, errors.Wrapf(err, "%s", n)
		}
		return value{arr: arr}, nil
	case *Binary:
		x, err := eval(ctx, n.X, r)
		if err != nil {
			return value{}, err
		}
		y, err := eval(ctx, n.Y, r)
		if err != nil {
			return value{}, err
		}
		if x.s != nil && y.s != nil {
			return value{s: scalarOp(n.Op, x.s, y.s)}, nil
		}
		arr, err := combine(n.Op, operand{arr: x.arr, s: x.s}, operand{arr: y.arr, s: y.s})
		if err != nil {
			return value{}, errors.Wrapf(err, "%s", n)
		}
		return value{arr: arr}, nil
	default:
		return value{}, errors.Errorf("unexpected node %T", n)
	}
}
