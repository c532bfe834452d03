package interp

import (
	"strconv"

	"github.com/go-faster/errors"
)

// BuildJagged returns jagged array with len(offsets)-1 entries, where
// entry i is content[offsets[i]:offsets[i+1]].
func BuildJagged(content Array, offsets Offsets) (*Jagged, error) {
	if err := offsets.Validate(content.Rows()); err != nil {
		return nil, err
	}
	return &Jagged{
		Offsets: offsets,
		Content: content,
	}, nil
}

// BuildNested applies BuildJagged once per nesting level, starting from
// the innermost one. Levels are ordered from outermost to innermost:
// levels[len(levels)-1] delimits content itself.
func BuildNested(content Array, levels ...Offsets) (Array, error) {
	out := content
	for i := len(levels) - 1; i >= 0; i-- {
		j, err := BuildJagged(out, levels[i])
		if err != nil {
			return nil, errors.Wrapf(err, "level %d", i)
		}
		out = j
	}
	return out, nil
}

// BuildRegular reshapes content into fixed-size entries of provided
// shape. Returns content unchanged for empty shape.
func BuildRegular(content Array, dims ...int) (Array, error) {
	size := dimsSize(dims)
	if size <= 0 {
		return nil, malformed("invalid shape %v", dims)
	}
	if content.Rows()%size != 0 {
		return nil, malformed("%d values do not divide into entries of shape %v", content.Rows(), dims)
	}
	out := content
	for i := len(dims) - 1; i >= 0; i-- {
		out = &Regular{Size: dims[i], Content: out}
	}
	return out, nil
}

// AsJagged interprets entries as variable-length sequences of Content
// elements, each entry optionally prefixed by HeaderBytes bytes.
//
// Split std::vector branches have 10 header bytes: object header
// and element count. Leaf arrays sized by counter branch have none.
type AsJagged struct {
	Content     Interpretation
	HeaderBytes int
}

func (AsJagged) interpretation() {}

func (j AsJagged) String() string {
	if j.HeaderBytes == 0 {
		return "AsJagged(" + j.Content.String() + ")"
	}
	return "AsJagged(" + j.Content.String() + ", header_bytes=" + strconv.Itoa(j.HeaderBytes) + ")"
}

// Type of decoded array.
func (j AsJagged) Type() Type { return j.Content.Type().Var() }

func (j AsJagged) decode(in Input) (Array, error) {
	width, err := itemWidth(j.Content)
	if err != nil {
		return nil, err
	}
	if in.Offsets == nil && in.Counts != nil {
		// Leaf array sized by counter branch, no headers.
		offsets, err := OffsetsFromCounts(in.Counts)
		if err != nil {
			return nil, errors.Wrap(err, "counts")
		}
		if in.Entries >= 0 && offsets.Rows() != in.Entries {
			return nil, malformed("%d counts for %d entries", offsets.Rows(), in.Entries)
		}
		content, err := Decode(j.Content, Input{Data: in.Data, Entries: -1})
		if err != nil {
			return nil, errors.Wrap(err, "content")
		}
		if total := offsets[len(offsets)-1]; total != int64(content.Rows()) {
			return nil, malformed("counts total %d, decoded %d elements", total, content.Rows())
		}
		return BuildJagged(content, offsets)
	}
	spans, err := entrySpans(in.Offsets, in.Entries, len(in.Data))
	if err != nil {
		return nil, errors.Wrap(err, "entry offsets")
	}
	// Strip headers and convert byte spans to element offsets.
	var (
		data    = in.Data
		flat    = make([]byte, 0, len(data))
		offsets = make(Offsets, len(spans))
	)
	for i := 0; i < spans.Rows(); i++ {
		start, end := int(spans[i])+j.HeaderBytes, int(spans[i+1])
		if end < start {
			return nil, malformed("entry %d: %d bytes shorter than header of %d", i, spans.Len(i), j.HeaderBytes)
		}
		if (end-start)%width != 0 {
			return nil, malformed("entry %d: %d bytes is not multiple of %d", i, end-start, width)
		}
		flat = append(flat, data[start:end]...)
		offsets[i+1] = offsets[i] + int64((end-start)/width)
	}
	content, err := Decode(j.Content, Input{Data: flat, Entries: -1})
	if err != nil {
		return nil, errors.Wrap(err, "content")
	}
	return BuildJagged(content, offsets)
}

func itemWidth(i Interpretation) (int, error) {
	switch i := i.(type) {
	case AsDtype:
		return i.Width(), nil
	case Codec:
		return i.Width() * dimsSize(i.Dims), nil
	default:
		return 0, &UnsupportedError{Feature: "jagged content of " + i.String()}
	}
}
