package interp

import "math"

// Buffer implements big-endian encoding of raw entry data.
//
// Used to assemble raw buffers in the layout ROOT writes them, for
// example in tests and fixtures.
type Buffer struct {
	Buf []byte
	// Offsets of entries started by NewEntry.
	Offsets []int64
}

// NewEntry records start of new entry at current position.
func (b *Buffer) NewEntry() {
	b.Offsets = append(b.Offsets, int64(len(b.Buf)))
}

// EntryOffsets returns offsets of all entries, including end of the
// last one.
func (b *Buffer) EntryOffsets() []int64 {
	return append(append([]int64{}, b.Offsets...), int64(len(b.Buf)))
}

// Reset buffer to zero length.
func (b *Buffer) Reset() {
	b.Buf = b.Buf[:0]
	b.Offsets = b.Offsets[:0]
}

// PutRaw writes v as raw bytes to buffer.
func (b *Buffer) PutRaw(v []byte) {
	b.Buf = append(b.Buf, v...)
}

func (b *Buffer) PutUInt8(x uint8) {
	b.Buf = append(b.Buf, x)
}

func (b *Buffer) PutUInt16(x uint16) {
	b.Buf = bin.AppendUint16(b.Buf, x)
}

func (b *Buffer) PutUInt32(x uint32) {
	b.Buf = bin.AppendUint32(b.Buf, x)
}

func (b *Buffer) PutUInt64(x uint64) {
	b.Buf = bin.AppendUint64(b.Buf, x)
}

func (b *Buffer) PutInt32(x int32) {
	b.PutUInt32(uint32(x))
}

func (b *Buffer) PutInt64(x int64) {
	b.PutUInt64(uint64(x))
}

func (b *Buffer) PutFloat32(v float32) {
	b.PutUInt32(math.Float32bits(v))
}

func (b *Buffer) PutFloat64(v float64) {
	b.PutUInt64(math.Float64bits(v))
}

// PutString encodes string with length prefix in provided format.
func (b *Buffer) PutString(f LengthFormat, s string) {
	switch f {
	case Length1To5:
		if len(s) < 255 {
			b.PutUInt8(uint8(len(s)))
		} else {
			b.PutUInt8(255)
			b.PutUInt32(uint32(len(s)))
		}
	case Length4:
		b.PutUInt32(uint32(len(s)))
	}
	b.Buf = append(b.Buf, s...)
}

// PutHeader encodes object header with byte count of n bytes following
// the byte count field.
func (b *Buffer) PutHeader(n int, version uint16) {
	b.PutUInt32(uint32(n) | byteCountMask)
	b.PutUInt16(version)
}
