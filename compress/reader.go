package compress

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/cespare/xxhash/v2"
	"github.com/go-faster/errors"
	"github.com/klauspost/compress/zlib"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/ulikunitz/xz"
)

// ChecksumError reports mismatch of LZ4 block checksum.
type ChecksumError struct {
	Expected uint64
	Actual   uint64
}

func (e *ChecksumError) Error() string {
	return fmt.Sprintf("checksum mismatch: expected %016x, got %016x", e.Expected, e.Actual)
}

// UnsupportedError reports algorithm that is not implemented.
type UnsupportedError struct {
	Algorithm Algorithm
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("compression %q not implemented", e.Algorithm.String())
}

// Reader decompresses blocks, reusing decoders between calls.
//
// Not safe for concurrent use.
type Reader struct {
	zstd *zstd.Decoder
}

// NewReader initializes Reader.
func NewReader() *Reader {
	return &Reader{}
}

// Close releases decoder resources.
func (r *Reader) Close() {
	if r.zstd != nil {
		r.zstd.Close()
		r.zstd = nil
	}
}

// Decompress appends rawSize decompressed bytes of src to dst[:0].
//
// Data with size equal to rawSize is stored uncompressed and is copied
// as is.
func (r *Reader) Decompress(dst, src []byte, rawSize int) ([]byte, error) {
	if rawSize < 0 {
		return nil, errors.Errorf("invalid raw size %d", rawSize)
	}
	dst = dst[:0]
	if len(src) == rawSize {
		return append(dst, src...), nil
	}
	for i := 0; len(dst) < rawSize; i++ {
		h, ok := ParseHeader(src)
		if !ok {
			return nil, errors.Errorf("block %d: truncated header", i)
		}
		src = src[headerSize:]
		if h.DataSize > len(src) {
			return nil, errors.Errorf("block %d: data size %d exceeds %d remaining bytes", i, h.DataSize, len(src))
		}
		if h.RawSize == 0 || h.RawSize > rawSize-len(dst) {
			return nil, errors.Errorf("block %d: raw size %d, expected up to %d", i, h.RawSize, rawSize-len(dst))
		}

		start := len(dst)
		dst = append(dst, make([]byte, h.RawSize)...)
		if err := r.block(h.Algorithm, dst[start:], src[:h.DataSize]); err != nil {
			return nil, errors.Wrapf(err, "block %d (%s)", i, h.Algorithm)
		}
		src = src[h.DataSize:]
	}
	if len(src) != 0 {
		return nil, errors.Errorf("%d trailing bytes", len(src))
	}
	return dst, nil
}

func (r *Reader) block(a Algorithm, out, data []byte) error {
	switch a {
	case ZLIB:
		zr, err := zlib.NewReader(bytes.NewReader(data))
		if err != nil {
			return errors.Wrap(err, "zlib")
		}
		defer func() { _ = zr.Close() }()
		if _, err := io.ReadFull(zr, out); err != nil {
			return errors.Wrap(err, "zlib")
		}
		return nil
	case LZMA:
		xr, err := xz.NewReader(bytes.NewReader(data))
		if err != nil {
			return errors.Wrap(err, "xz")
		}
		if _, err := io.ReadFull(xr, out); err != nil {
			return errors.Wrap(err, "xz")
		}
		return nil
	case LZ4:
		if len(data) < checksumSize {
			return errors.Errorf("lz4 block of %d bytes is shorter than checksum", len(data))
		}
		var (
			expected = binary.BigEndian.Uint64(data[:checksumSize])
			actual   = xxhash.Sum64(data[checksumSize:])
		)
		if expected != actual {
			return &ChecksumError{Expected: expected, Actual: actual}
		}
		n, err := lz4.UncompressBlock(data[checksumSize:], out)
		if err != nil {
			return errors.Wrap(err, "lz4")
		}
		if n != len(out) {
			return errors.Errorf("lz4: decompressed %d bytes, expected %d", n, len(out))
		}
		return nil
	case ZSTD:
		if r.zstd == nil {
			d, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))
			if err != nil {
				return errors.Wrap(err, "zstd init")
			}
			r.zstd = d
		}
		res, err := r.zstd.DecodeAll(data, out[:0])
		if err != nil {
			return errors.Wrap(err, "zstd")
		}
		if len(res) != len(out) {
			return errors.Errorf("zstd: decompressed %d bytes, expected %d", len(res), len(out))
		}
		copy(out, res)
		return nil
	default:
		return &UnsupportedError{Algorithm: a}
	}
}

// Decompress returns rawSize decompressed bytes of src.
func Decompress(src []byte, rawSize int) ([]byte, error) {
	r := NewReader()
	defer r.Close()
	return r.Decompress(nil, src, rawSize)
}
