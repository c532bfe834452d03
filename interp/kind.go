package interp

import "fmt"

// Kind is kind of fixed-width primitive element.
type Kind byte

// Primitive element kinds.
const (
	KindInvalid Kind = iota
	KindBool
	KindInt8
	KindInt16
	KindInt32
	KindInt64
	KindUInt8
	KindUInt16
	KindUInt32
	KindUInt64
	KindFloat32
	KindFloat64
)

var kindNames = [...]string{
	KindInvalid: "invalid",
	KindBool:    "bool",
	KindInt8:    "int8",
	KindInt16:   "int16",
	KindInt32:   "int32",
	KindInt64:   "int64",
	KindUInt8:   "uint8",
	KindUInt16:  "uint16",
	KindUInt32:  "uint32",
	KindUInt64:  "uint64",
	KindFloat32: "float32",
	KindFloat64: "float64",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", byte(k))
}

// Width returns size of single big-endian element in bytes.
func (k Kind) Width() int {
	switch k {
	case KindBool, KindInt8, KindUInt8:
		return 1
	case KindInt16, KindUInt16:
		return 2
	case KindInt32, KindUInt32, KindFloat32:
		return 4
	case KindInt64, KindUInt64, KindFloat64:
		return 8
	default:
		return 0
	}
}

// IsFloat reports whether k is floating point kind.
func (k Kind) IsFloat() bool {
	return k == KindFloat32 || k == KindFloat64
}

// IsInteger reports whether k is signed or unsigned integer kind.
func (k Kind) IsInteger() bool {
	return k >= KindInt8 && k <= KindUInt64
}

// IsUnsigned reports whether k is unsigned integer kind.
func (k Kind) IsUnsigned() bool {
	return k >= KindUInt8 && k <= KindUInt64
}

// Type returns Type of single element of kind k.
func (k Kind) Type() Type {
	return Type(k.String())
}
