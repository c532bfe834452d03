package interp

import (
	"fmt"
	"math"
	"strings"

	"github.com/go-faster/errors"
)

// CodecFormat selects reduced precision floating point encoding.
type CodecFormat byte

const (
	// Double32 decodes to float64 (Double32_t).
	Double32 CodecFormat = iota
	// Float16 decodes to float32 (Float16_t).
	Float16
)

func (f CodecFormat) String() string {
	switch f {
	case Double32:
		return "Double32"
	case Float16:
		return "Float16"
	default:
		return fmt.Sprintf("CodecFormat(%d)", byte(f))
	}
}

// Codec describes fixed-precision floating point encoding, where value
// is stored in Bits bits instead of its canonical width.
//
// Encoding depends on range:
//   - Low and High set: value quantized to 2^Bits levels of the range,
//     stored as 4-byte integer;
//   - no range and Bits < 32: float32 with mantissa truncated to Bits bits,
//     stored as 1 byte of exponent and 2 bytes of sign and mantissa;
//   - no range and Bits == 32: plain float32.
//
// Non-empty Dims reshapes every entry to fixed-size array of that shape.
type Codec struct {
	Format CodecFormat
	Low    float64
	High   float64
	Bits   int
	Dims   []int
}

// Validate reports whether codec parameters are consistent.
func (c Codec) Validate() error {
	if c.Format != Double32 && c.Format != Float16 {
		return errors.Errorf("unknown format %s", c.Format)
	}
	if c.Bits < 2 || c.Bits > 32 {
		return errors.Errorf("bits %d not in [2, 32]", c.Bits)
	}
	if !c.Truncated() && c.High <= c.Low {
		return errors.Errorf("empty range [%v, %v]", c.Low, c.High)
	}
	if c.Truncated() && !c.Plain() && c.Bits > maxMantissaBits {
		return errors.Errorf("truncated mantissa of %d bits exceeds %d", c.Bits, maxMantissaBits)
	}
	for _, d := range c.Dims {
		if d <= 0 {
			return errors.Errorf("invalid dimension %d", d)
		}
	}
	return nil
}

// Sign and mantissa of truncated value share 16 bits.
const maxMantissaBits = 14

// Truncated reports whether codec has no range, so values are stored
// as truncated (or plain) float32.
func (c Codec) Truncated() bool {
	return c.Low == 0 && c.High == 0
}

// Plain reports whether values are stored as plain float32.
func (c Codec) Plain() bool {
	return c.Truncated() && c.Bits == 32
}

// Width returns count of bytes of single encoded value.
func (c Codec) Width() int {
	if c.Truncated() && !c.Plain() {
		return 3
	}
	return 4
}

// Kind returns kind of decoded value.
func (c Codec) Kind() Kind {
	if c.Format == Float16 {
		return KindFloat32
	}
	return KindFloat64
}

// String returns codec identity, like AsDouble32(-2.71, 10.0, 30) or
// AsFloat16(-2.71, 10.0, 10, to_dims=(3,)).
//
// Codecs with equal parameters have equal identities.
func (c Codec) String() string {
	var b strings.Builder
	b.WriteString("As")
	b.WriteString(c.Format.String())
	b.WriteRune('(')
	b.WriteString(formatFloat(c.Low))
	b.WriteString(", ")
	b.WriteString(formatFloat(c.High))
	b.WriteString(", ")
	fmt.Fprintf(&b, "%d", c.Bits)
	if len(c.Dims) > 0 {
		b.WriteString(", to_dims=")
		b.WriteString(formatDims(c.Dims))
	}
	b.WriteRune(')')
	return b.String()
}

// Equal reports whether c and other are interchangeable.
func (c Codec) Equal(other Codec) bool {
	return c.String() == other.String()
}

// scale returns size of single quantization step.
func (c Codec) scale() float64 {
	return (c.High - c.Low) / float64(uint64(1)<<uint(c.Bits))
}

// Decode returns value encoded by raw bits.
//
// For truncated encoding raw is exponent<<16 | mantissa.
func (c Codec) Decode(raw uint32) float64 {
	if c.Format == Float16 {
		return float64(c.decode32(raw))
	}
	if c.Truncated() {
		return float64(c.truncated(raw))
	}
	// Explicit conversion forbids fused multiply-add.
	v := float64(float64(raw) * c.scale())
	return v + c.Low
}

func (c Codec) decode32(raw uint32) float32 {
	if c.Truncated() {
		return c.truncated(raw)
	}
	v := float32(float32(raw) * float32(c.scale()))
	return v + float32(c.Low)
}

func (c Codec) truncated(raw uint32) float32 {
	if c.Plain() {
		return math.Float32frombits(raw)
	}
	var (
		exp  = raw >> 16 & 0xff
		man  = raw & 0xffff
		bits = uint(c.Bits)
	)
	v := exp << 23
	v |= (man & (1<<(bits+1) - 1)) << (23 - bits)
	f := math.Float32frombits(v)
	if man&(1<<(bits+1)) != 0 {
		f = -f
	}
	return f
}

func (c Codec) raw(b []byte) uint32 {
	if c.Width() == 3 {
		return uint32(b[0])<<16 | uint32(bin.Uint16(b[1:3]))
	}
	return bin.Uint32(b)
}

// DecodeArray decodes count entries from data.
//
// Returns Numbers[float64] for Double32 and Numbers[float32] for
// Float16, wrapped in Regular arrays if Dims are set.
func (c Codec) DecodeArray(data []byte, count int) (Array, error) {
	width := c.Width()
	if len(data)%width != 0 {
		return nil, malformed("%s: %d bytes is not multiple of %d", c, len(data), width)
	}
	n := len(data) / width
	size := dimsSize(c.Dims)
	if n%size != 0 {
		return nil, malformed("%s: %d values do not divide into entries of %d", c, n, size)
	}
	if count >= 0 && n/size != count {
		return nil, malformed("%s: %d bytes for %d entries", c, len(data), count)
	}
	var flat Array
	if c.Format == Float16 {
		out := make(Numbers[float32], n)
		for i := range out {
			out[i] = c.decode32(c.raw(data[i*width:]))
		}
		flat = out
	} else {
		out := make(Numbers[float64], n)
		for i := range out {
			out[i] = c.Decode(c.raw(data[i*width:]))
		}
		flat = out
	}
	return BuildRegular(flat, c.Dims...)
}

func dimsSize(dims []int) int {
	size := 1
	for _, d := range dims {
		size *= d
	}
	return size
}

func (Codec) interpretation() {}

// Type of decoded array.
func (c Codec) Type() Type {
	return shapeType(c.Kind().Type(), c.Dims)
}

func shapeType(t Type, dims []int) Type {
	for i := len(dims) - 1; i >= 0; i-- {
		t = t.Fixed(dims[i])
	}
	return t
}
