// Package arrowconv converts decoded arrays to Apache Arrow arrays.
//
// Jagged arrays become large lists, regular arrays fixed size lists
// and records structs. No value is null.
package arrowconv

import (
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/go-faster/errors"

	"github.com/go-faster/ttree/interp"
)

// DataType returns Arrow type of a.
func DataType(a interp.Array) (arrow.DataType, error) {
	switch a := a.(type) {
	case interp.Numbers[int8]:
		return arrow.PrimitiveTypes.Int8, nil
	case interp.Numbers[int16]:
		return arrow.PrimitiveTypes.Int16, nil
	case interp.Numbers[int32]:
		return arrow.PrimitiveTypes.Int32, nil
	case interp.Numbers[int64]:
		return arrow.PrimitiveTypes.Int64, nil
	case interp.Numbers[uint8]:
		return arrow.PrimitiveTypes.Uint8, nil
	case interp.Numbers[uint16]:
		return arrow.PrimitiveTypes.Uint16, nil
	case interp.Numbers[uint32]:
		return arrow.PrimitiveTypes.Uint32, nil
	case interp.Numbers[uint64]:
		return arrow.PrimitiveTypes.Uint64, nil
	case interp.Numbers[float32]:
		return arrow.PrimitiveTypes.Float32, nil
	case interp.Numbers[float64]:
		return arrow.PrimitiveTypes.Float64, nil
	case interp.Bools:
		return arrow.FixedWidthTypes.Boolean, nil
	case interp.Strings:
		return arrow.BinaryTypes.String, nil
	case *interp.Jagged:
		elem, err := DataType(a.Content)
		if err != nil {
			return nil, err
		}
		return arrow.LargeListOf(elem), nil
	case *interp.Regular:
		elem, err := DataType(a.Content)
		if err != nil {
			return nil, err
		}
		return arrow.FixedSizeListOf(int32(a.Size), elem), nil
	case *interp.Record:
		fields := make([]arrow.Field, len(a.Fields))
		for i, f := range a.Fields {
			t, err := DataType(f.Array)
			if err != nil {
				return nil, errors.Wrapf(err, "field %q", f.Name)
			}
			fields[i] = arrow.Field{Name: f.Name, Type: t}
		}
		return arrow.StructOf(fields...), nil
	default:
		return nil, errors.Errorf("unsupported array %T", a)
	}
}

// Convert returns Arrow array with values of a, allocated by mem.
// Caller must release returned array.
func Convert(mem memory.Allocator, a interp.Array) (arrow.Array, error) {
	t, err := DataType(a)
	if err != nil {
		return nil, err
	}
	b := array.NewBuilder(mem, t)
	defer b.Release()

	if err := appendArray(b, a); err != nil {
		return nil, err
	}
	return b.NewArray(), nil
}

// appendArray appends all entries of a to b, which must be builder
// of DataType(a).
func appendArray(b array.Builder, a interp.Array) error {
	switch a := a.(type) {
	case interp.Numbers[int8]:
		b.(*array.Int8Builder).AppendValues(a, nil)
	case interp.Numbers[int16]:
		b.(*array.Int16Builder).AppendValues(a, nil)
	case interp.Numbers[int32]:
		b.(*array.Int32Builder).AppendValues(a, nil)
	case interp.Numbers[int64]:
		b.(*array.Int64Builder).AppendValues(a, nil)
	case interp.Numbers[uint8]:
		b.(*array.Uint8Builder).AppendValues(a, nil)
	case interp.Numbers[uint16]:
		b.(*array.Uint16Builder).AppendValues(a, nil)
	case interp.Numbers[uint32]:
		b.(*array.Uint32Builder).AppendValues(a, nil)
	case interp.Numbers[uint64]:
		b.(*array.Uint64Builder).AppendValues(a, nil)
	case interp.Numbers[float32]:
		b.(*array.Float32Builder).AppendValues(a, nil)
	case interp.Numbers[float64]:
		b.(*array.Float64Builder).AppendValues(a, nil)
	case interp.Bools:
		b.(*array.BooleanBuilder).AppendValues(a, nil)
	case interp.Strings:
		b.(*array.StringBuilder).AppendValues(a, nil)
	case *interp.Jagged:
		lb := b.(*array.LargeListBuilder)
		vb := lb.ValueBuilder()
		for i := 0; i < a.Rows(); i++ {
			lb.Append(true)
			if err := appendArray(vb, a.Elem(i)); err != nil {
				return err
			}
		}
	case *interp.Regular:
		lb := b.(*array.FixedSizeListBuilder)
		vb := lb.ValueBuilder()
		for i := 0; i < a.Rows(); i++ {
			lb.Append(true)
			if err := appendArray(vb, a.Elem(i)); err != nil {
				return err
			}
		}
	case *interp.Record:
		sb := b.(*array.StructBuilder)
		for i := 0; i < a.Rows(); i++ {
			sb.Append(true)
		}
		for i, f := range a.Fields {
			if err := appendArray(sb.FieldBuilder(i), f.Array); err != nil {
				return errors.Wrapf(err, "field %q", f.Name)
			}
		}
	default:
		return errors.Errorf("unsupported array %T", a)
	}
	return nil
}
