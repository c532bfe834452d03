// Package compress implements decompression of ROOT basket data.
//
// Compressed data is sequence of blocks, each prefixed by 9-byte
// header: 2-byte algorithm, 1-byte method and 3-byte little-endian
// compressed and uncompressed sizes.
package compress

// Algorithm of compressed block.
type Algorithm [2]byte

// Supported algorithms.
var (
	ZLIB = Algorithm{'Z', 'L'}
	LZMA = Algorithm{'X', 'Z'}
	LZ4  = Algorithm{'L', '4'}
	ZSTD = Algorithm{'Z', 'S'}
	// Old is legacy ROOT algorithm, not supported.
	Old = Algorithm{'C', 'S'}
)

func (a Algorithm) String() string {
	switch a {
	case ZLIB:
		return "zlib"
	case LZMA:
		return "lzma"
	case LZ4:
		return "lz4"
	case ZSTD:
		return "zstd"
	case Old:
		return "old"
	default:
		return string(a[:])
	}
}

const (
	headerSize   = 9
	checksumSize = 8 // xxh64 of LZ4 block
	maxBlockSize = 0xffffff

	hAlgorithm = 0
	hMethod    = 2
	hDataSize  = 3
	hRawSize   = 6
)

// size decodes 3-byte little-endian size.
func size(b []byte) int {
	return int(b[0]) | int(b[1])<<8 | int(b[2])<<16
}

func putSize(b []byte, v int) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
}

// Header of compressed block.
type Header struct {
	Algorithm Algorithm
	Method    byte
	DataSize  int // compressed
	RawSize   int // uncompressed
}

// ParseHeader decodes block header.
func ParseHeader(b []byte) (Header, bool) {
	if len(b) < headerSize {
		return Header{}, false
	}
	return Header{
		Algorithm: Algorithm{b[hAlgorithm], b[hAlgorithm+1]},
		Method:    b[hMethod],
		DataSize:  size(b[hDataSize:]),
		RawSize:   size(b[hRawSize:]),
	}, true
}

// Put encodes header to b.
func (h Header) Put(b []byte) {
	_ = b[headerSize-1]
	b[hAlgorithm] = h.Algorithm[0]
	b[hAlgorithm+1] = h.Algorithm[1]
	b[hMethod] = h.Method
	putSize(b[hDataSize:], h.DataSize)
	putSize(b[hRawSize:], h.RawSize)
}
