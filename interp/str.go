package interp

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/go-faster/errors"
)

// LengthFormat is format of string length prefix.
type LengthFormat byte

const (
	// Length1To5 is single byte of length, where 255 is followed by
	// 4 bytes of actual length (TString, std::string).
	Length1To5 LengthFormat = iota
	// Length4 is 4 bytes of length.
	Length4
	// LengthNone means no prefix: string spans whole entry.
	LengthNone
)

func (f LengthFormat) String() string {
	switch f {
	case Length1To5:
		return "1-5"
	case Length4:
		return "4"
	case LengthNone:
		return "none"
	default:
		return "LengthFormat(" + strconv.Itoa(int(f)) + ")"
	}
}

// AsStrings interprets every entry as single string, optionally
// prefixed by HeaderBytes bytes (6 for std::string in split branches).
//
// Bytes are kept as is, unless StrictUTF8 is set.
type AsStrings struct {
	HeaderBytes int
	Length      LengthFormat
	StrictUTF8  bool
}

func (AsStrings) interpretation() {}

func (s AsStrings) String() string {
	var opts []string
	if s.HeaderBytes != 0 {
		opts = append(opts, "header_bytes="+strconv.Itoa(s.HeaderBytes))
	}
	if s.Length != Length1To5 {
		opts = append(opts, "length_bytes='"+s.Length.String()+"'")
	}
	if s.StrictUTF8 {
		opts = append(opts, "typename='utf8'")
	}
	return "AsStrings(" + strings.Join(opts, ", ") + ")"
}

// Type of decoded array.
func (AsStrings) Type() Type { return TypeString }

// read decodes single string at current position of r.
func (s AsStrings) read(r *Reader) (string, error) {
	if err := r.Skip(s.HeaderBytes); err != nil {
		return "", errors.Wrap(err, "header")
	}
	b, err := r.StrBytes(s.Length)
	if err != nil {
		return "", err
	}
	if s.StrictUTF8 && !utf8.Valid(b) {
		return "", malformed("invalid UTF-8 string at %d", r.Pos()-len(b))
	}
	return string(b), nil
}

func (s AsStrings) decode(in Input) (Array, error) {
	if in.Offsets == nil {
		// Strings follow each other.
		if s.Length == LengthNone {
			return nil, malformed("strings without length prefix require entry offsets")
		}
		r := NewReader(in.Data)
		var out Strings
		for i := 0; (in.Entries < 0 && r.Len() > 0) || i < in.Entries; i++ {
			v, err := s.read(r)
			if err != nil {
				return nil, errors.Wrapf(err, "entry %d", i)
			}
			out = append(out, v)
		}
		if r.Len() != 0 {
			return nil, malformed("%d trailing bytes after %d strings", r.Len(), len(out))
		}
		if out == nil {
			out = Strings{}
		}
		return out, nil
	}
	spans, err := entrySpans(in.Offsets, in.Entries, len(in.Data))
	if err != nil {
		return nil, errors.Wrap(err, "entry offsets")
	}
	out := make(Strings, spans.Rows())
	for i := range out {
		r := NewReader(in.Data[spans[i]:spans[i+1]])
		v, err := s.read(r)
		if err != nil {
			return nil, errors.Wrapf(err, "entry %d", i)
		}
		if r.Len() != 0 {
			return nil, malformed("entry %d: %d trailing bytes", i, r.Len())
		}
		out[i] = v
	}
	return out, nil
}

// BuildStrings returns strings delimited by offsets in data: string i
// is data[offsets[i]:offsets[i+1]].
func BuildStrings(data []byte, offsets Offsets) (Strings, error) {
	if err := offsets.Validate(len(data)); err != nil {
		return nil, err
	}
	out := make(Strings, offsets.Rows())
	for i := range out {
		out[i] = string(data[offsets[i]:offsets[i+1]])
	}
	return out, nil
}
