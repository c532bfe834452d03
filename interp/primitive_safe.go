//go:build !(amd64 && !nounsafe)

package interp

import "math"

// decode64 decodes 8-byte big-endian elements.
func decode64[T int64 | uint64 | float64](data []byte) Numbers[T] {
	out := make(Numbers[T], len(data)/8)
	switch v := interface{}(out).(type) {
	case Numbers[float64]:
		for i := range v {
			v[i] = math.Float64frombits(bin.Uint64(data[i*8:]))
		}
	case Numbers[int64]:
		for i := range v {
			v[i] = int64(bin.Uint64(data[i*8:]))
		}
	case Numbers[uint64]:
		for i := range v {
			v[i] = bin.Uint64(data[i*8:])
		}
	}
	return out
}
