package interp

import (
	"github.com/go-faster/errors"
)

// AsVector interprets entries as streamed std::vector: optional object
// header, int32 count and count elements.
//
// Elem is AsDtype or Codec for vector<T>, AsStrings for vector<string>
// and AsVector for vector<vector<T>>. Nested vectors are streamed
// without header.
type AsVector struct {
	Header bool
	Elem   Interpretation
}

func (AsVector) interpretation() {}

func (v AsVector) String() string {
	h := "False"
	if v.Header {
		h = "True"
	}
	return "AsVector(" + h + ", " + v.Elem.String() + ")"
}

// Type of decoded array.
func (v AsVector) Type() Type { return v.Elem.Type().Var() }

// depth returns count of nested vectors, including v.
func (v AsVector) depth() int {
	if e, ok := v.Elem.(AsVector); ok {
		return e.depth() + 1
	}
	return 1
}

type vectorState struct {
	levels []Offsets
	width  int     // of fixed-width leaf
	raw    []byte  // fixed-width leaf data
	str    Strings // string leaf
}

func (v AsVector) read(r *Reader, s *vectorState, depth int) error {
	if v.Header {
		if _, err := r.Header(); err != nil {
			return errors.Wrap(err, "header")
		}
	}
	n, err := r.Int32()
	if err != nil {
		return errors.Wrap(err, "count")
	}
	if n < 0 {
		return malformed("negative vector size %d", n)
	}
	switch e := v.Elem.(type) {
	case AsVector:
		for i := 0; i < int(n); i++ {
			if err := e.read(r, s, depth+1); err != nil {
				return errors.Wrapf(err, "element %d", i)
			}
		}
	case AsStrings:
		for i := 0; i < int(n); i++ {
			str, err := e.read(r)
			if err != nil {
				return errors.Wrapf(err, "element %d", i)
			}
			s.str = append(s.str, str)
		}
	default:
		b, err := r.ReadRaw(int(n) * s.width)
		if err != nil {
			return errors.Wrapf(err, "%d elements", n)
		}
		s.raw = append(s.raw, b...)
	}
	o := s.levels[depth]
	s.levels[depth] = append(o, o[len(o)-1]+int64(n))
	return nil
}

func (v AsVector) leaf() Interpretation {
	if e, ok := v.Elem.(AsVector); ok {
		return e.leaf()
	}
	return v.Elem
}

func (v AsVector) decode(in Input) (Array, error) {
	s := &vectorState{
		levels: make([]Offsets, v.depth()),
	}
	for i := range s.levels {
		s.levels[i] = Offsets{0}
	}
	leaf := v.leaf()
	if _, ok := leaf.(AsStrings); !ok {
		width, err := itemWidth(leaf)
		if err != nil {
			return nil, err
		}
		s.width = width
	}

	if in.Offsets == nil {
		r := NewReader(in.Data)
		for i := 0; (in.Entries < 0 && r.Len() > 0) || i < in.Entries; i++ {
			if err := v.read(r, s, 0); err != nil {
				return nil, errors.Wrapf(err, "entry %d", i)
			}
		}
		if r.Len() != 0 {
			return nil, malformed("%d trailing bytes after %d entries", r.Len(), s.levels[0].Rows())
		}
	} else {
		spans, err := entrySpans(in.Offsets, in.Entries, len(in.Data))
		if err != nil {
			return nil, errors.Wrap(err, "entry offsets")
		}
		for i := 0; i < spans.Rows(); i++ {
			r := NewReader(in.Data[spans[i]:spans[i+1]])
			if err := v.read(r, s, 0); err != nil {
				return nil, errors.Wrapf(err, "entry %d", i)
			}
			if r.Len() != 0 {
				return nil, malformed("entry %d: %d trailing bytes", i, r.Len())
			}
		}
	}

	var content Array
	if _, ok := leaf.(AsStrings); ok {
		if s.str == nil {
			s.str = Strings{}
		}
		content = s.str
	} else {
		c, err := Decode(leaf, Input{Data: s.raw, Entries: -1})
		if err != nil {
			return nil, errors.Wrap(err, "content")
		}
		content = c
	}
	return BuildNested(content, s.levels...)
}
