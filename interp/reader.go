package interp

import (
	"encoding/binary"
	"io"

	"github.com/go-faster/errors"
)

var bin = binary.BigEndian

// Reader implements big-endian decoding of serialized entry data.
//
// Reader never modifies the underlying slice.
type Reader struct {
	buf []byte
	pos int
}

// NewReader initializes new Reader from provided data.
func NewReader(data []byte) *Reader {
	return &Reader{buf: data}
}

// Pos returns current position.
func (r *Reader) Pos() int { return r.pos }

// Len returns count of unread bytes.
func (r *Reader) Len() int { return len(r.buf) - r.pos }

// ReadRaw returns next n bytes.
//
// Do not modify returned slice.
func (r *Reader) ReadRaw(n int) ([]byte, error) {
	if n < 0 {
		return nil, errors.Errorf("negative length %d", n)
	}
	if r.Len() < n {
		return nil, io.ErrUnexpectedEOF
	}
	v := r.buf[r.pos : r.pos+n]
	r.pos += n
	return v, nil
}

// Skip n bytes.
func (r *Reader) Skip(n int) error {
	_, err := r.ReadRaw(n)
	return err
}

// UInt8 decodes uint8 value.
func (r *Reader) UInt8() (uint8, error) {
	b, err := r.ReadRaw(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// UInt16 decodes uint16 value.
func (r *Reader) UInt16() (uint16, error) {
	b, err := r.ReadRaw(2)
	if err != nil {
		return 0, err
	}
	return bin.Uint16(b), nil
}

// UInt32 decodes uint32 value.
func (r *Reader) UInt32() (uint32, error) {
	b, err := r.ReadRaw(4)
	if err != nil {
		return 0, err
	}
	return bin.Uint32(b), nil
}

// Int32 decodes int32 value.
func (r *Reader) Int32() (int32, error) {
	v, err := r.UInt32()
	return int32(v), err
}

// StrLen decodes string length prefix in provided format.
func (r *Reader) StrLen(f LengthFormat) (int, error) {
	switch f {
	case Length1To5:
		n, err := r.UInt8()
		if err != nil {
			return 0, errors.Wrap(err, "short length")
		}
		if n != 255 {
			return int(n), nil
		}
		v, err := r.UInt32()
		if err != nil {
			return 0, errors.Wrap(err, "long length")
		}
		return int(v), nil
	case Length4:
		v, err := r.UInt32()
		if err != nil {
			return 0, errors.Wrap(err, "length")
		}
		return int(v), nil
	default:
		return r.Len(), nil
	}
}

// StrBytes decodes string in provided format.
//
// Do not modify returned slice.
func (r *Reader) StrBytes(f LengthFormat) ([]byte, error) {
	n, err := r.StrLen(f)
	if err != nil {
		return nil, errors.Wrap(err, "read length")
	}
	b, err := r.ReadRaw(n)
	if err != nil {
		return nil, errors.Wrap(err, "read str")
	}
	return b, nil
}

// Header decodes object header: 4 bytes of byte count with
// kByteCountMask flag followed by 2 bytes of class version.
//
// Returns byte count of object after the byte count field.
func (r *Reader) Header() (int, error) {
	n, err := r.UInt32()
	if err != nil {
		return 0, errors.Wrap(err, "byte count")
	}
	if n&byteCountMask == 0 {
		return 0, malformed("object header without byte count flag: 0x%08x", n)
	}
	if _, err := r.UInt16(); err != nil {
		return 0, errors.Wrap(err, "version")
	}
	return int(n &^ byteCountMask), nil
}

const (
	byteCountMask = 0x40000000
	headerSize    = 4 + 2
)
