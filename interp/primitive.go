package interp

import (
	"math"
	"strings"

	"github.com/go-faster/errors"
)

// AsDtype interprets data as fixed-width big-endian primitives,
// optionally grouped into fixed-size arrays of Dims shape per entry
// (leaf arrays like "x[3]/D").
type AsDtype struct {
	Elem Kind
	Dims []int
}

func (AsDtype) interpretation() {}

var dtypeCodes = [...]string{
	KindBool:    "?",
	KindInt8:    "i1",
	KindInt16:   "i2",
	KindInt32:   "i4",
	KindInt64:   "i8",
	KindUInt8:   "u1",
	KindUInt16:  "u2",
	KindUInt32:  "u4",
	KindUInt64:  "u8",
	KindFloat32: "f4",
	KindFloat64: "f8",
}

// String returns identity like AsDtype('>f8') or
// AsDtype('>i4', to_dims=(3,)).
func (d AsDtype) String() string {
	var b strings.Builder
	b.WriteString("AsDtype('")
	if d.Elem.Width() > 1 {
		b.WriteRune('>')
	} else {
		b.WriteRune('|')
	}
	if int(d.Elem) < len(dtypeCodes) && d.Elem != KindInvalid {
		b.WriteString(dtypeCodes[d.Elem])
	} else {
		b.WriteString(d.Elem.String())
	}
	b.WriteRune('\'')
	if len(d.Dims) > 0 {
		b.WriteString(", to_dims=")
		b.WriteString(formatDims(d.Dims))
	}
	b.WriteRune(')')
	return b.String()
}

// Type of decoded array.
func (d AsDtype) Type() Type {
	return shapeType(d.Elem.Type(), d.Dims)
}

// Width returns size of single entry in bytes.
func (d AsDtype) Width() int {
	return d.Elem.Width() * dimsSize(d.Dims)
}

func (d AsDtype) decode(in Input) (Array, error) {
	count := in.Entries
	if count >= 0 {
		count *= dimsSize(d.Dims)
	}
	flat, err := DecodePrimitive(in.Data, d.Elem, count)
	if err != nil {
		return nil, err
	}
	return BuildRegular(flat, d.Dims...)
}

// DecodePrimitive decodes count big-endian elements of provided kind.
//
// If count is negative, it is inferred from data length.
func DecodePrimitive(data []byte, kind Kind, count int) (Array, error) {
	width := kind.Width()
	if width == 0 {
		return nil, errors.Errorf("invalid kind %s", kind)
	}
	if count < 0 {
		if len(data)%width != 0 {
			return nil, malformed("%d bytes is not multiple of %s width %d", len(data), kind, width)
		}
		count = len(data) / width
	}
	if len(data) != count*width {
		return nil, malformed("%d bytes for %d elements of %s", len(data), count, kind)
	}
	switch kind {
	case KindBool:
		out := make(Bools, count)
		for i, v := range data {
			out[i] = v != 0
		}
		return out, nil
	case KindInt8:
		out := make(Numbers[int8], count)
		for i, v := range data {
			out[i] = int8(v)
		}
		return out, nil
	case KindUInt8:
		return append(Numbers[uint8]{}, data...), nil
	case KindInt16:
		out := make(Numbers[int16], count)
		for i := range out {
			out[i] = int16(bin.Uint16(data[i*2:]))
		}
		return out, nil
	case KindUInt16:
		out := make(Numbers[uint16], count)
		for i := range out {
			out[i] = bin.Uint16(data[i*2:])
		}
		return out, nil
	case KindInt32:
		out := make(Numbers[int32], count)
		for i := range out {
			out[i] = int32(bin.Uint32(data[i*4:]))
		}
		return out, nil
	case KindUInt32:
		out := make(Numbers[uint32], count)
		for i := range out {
			out[i] = bin.Uint32(data[i*4:])
		}
		return out, nil
	case KindFloat32:
		out := make(Numbers[float32], count)
		for i := range out {
			out[i] = math.Float32frombits(bin.Uint32(data[i*4:]))
		}
		return out, nil
	case KindInt64:
		return decode64[int64](data), nil
	case KindUInt64:
		return decode64[uint64](data), nil
	case KindFloat64:
		return decode64[float64](data), nil
	default:
		return nil, errors.Errorf("invalid kind %s", kind)
	}
}
