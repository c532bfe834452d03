// Package interp implements interpretation of decompressed ROOT TTree
// branch data as typed arrays.
//
// Data of every branch is big-endian. Fixed-width branches are flat
// sequences of elements, variable-width branches are delimited by
// per-entry byte offsets.
package interp

import (
	"github.com/go-faster/errors"
)

// Interpretation describes how to decode branch data.
//
// Closed set of variants: AsDtype, Codec, AsJagged, AsStrings, AsVector
// and AsObject.
type Interpretation interface {
	// String returns human-readable identity. Equal interpretations have
	// equal identities.
	String() string
	// Type of decoded array.
	Type() Type

	interpretation()
}

// Compile-time assertions for Interpretation.
var (
	_ Interpretation = AsDtype{}
	_ Interpretation = Codec{}
	_ Interpretation = AsJagged{}
	_ Interpretation = AsStrings{}
	_ Interpretation = AsVector{}
	_ Interpretation = AsObject{}
)

// Input is decompressed data of single branch.
//
// Data is never modified by decoding and is not retained by returned
// arrays.
type Input struct {
	Data []byte
	// Entries is count of entries, negative if unknown.
	Entries int
	// Offsets are byte offsets of entries in Data, required for
	// variable-width entries. Either Entries+1 offsets, or Entries offsets
	// with the last entry ending at the end of Data. Data starts at
	// Offsets[0], which is not required to be zero.
	Offsets []int64
	// Counts are element counts of entries taken from counter branch,
	// used by AsJagged if Offsets are not set.
	Counts []int64
	// Members are decoded member branches of split objects.
	Members []Field
}

// Decode data of single branch using provided interpretation.
func Decode(i Interpretation, in Input) (Array, error) {
	switch i := i.(type) {
	case AsDtype:
		return i.decode(in)
	case Codec:
		if err := i.Validate(); err != nil {
			return nil, errors.Wrap(err, "codec")
		}
		return i.DecodeArray(in.Data, in.Entries)
	case AsJagged:
		return i.decode(in)
	case AsStrings:
		return i.decode(in)
	case AsVector:
		return i.decode(in)
	case AsObject:
		return i.decode(in)
	case nil:
		return nil, errors.New("nil interpretation")
	default:
		return nil, errors.Errorf("unknown interpretation %T", i)
	}
}
