//go:build amd64 && !nounsafe

package interp

import (
	"unsafe"

	"github.com/segmentio/asm/bswap"
)

// decode64 decodes 8-byte big-endian elements.
//
// Data is copied to memory of result, swapped in place and interpreted
// as []T. Little-endian only.
func decode64[T int64 | uint64 | float64](data []byte) Numbers[T] {
	out := make(Numbers[T], len(data)/8)
	if len(out) == 0 {
		return out
	}
	dst := unsafe.Slice((*byte)(unsafe.Pointer(unsafe.SliceData(out))), len(out)*8)
	copy(dst, data)
	bswap.Swap64(dst)
	return out
}
