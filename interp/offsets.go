package interp

// Offsets delimit variable-length entries in flat content: entry i
// spans [Offsets[i], Offsets[i+1]).
//
// The first offset is not required to be zero.
type Offsets []int64

// Rows returns count of entries delimited by offsets.
func (o Offsets) Rows() int {
	if len(o) == 0 {
		return 0
	}
	return len(o) - 1
}

// Validate checks that offsets are non-negative, non-decreasing and
// fit into content of provided length.
func (o Offsets) Validate(contentLen int) error {
	if len(o) == 0 {
		return malformed("empty offsets")
	}
	if o[0] < 0 {
		return malformed("negative first offset %d", o[0])
	}
	for i := 1; i < len(o); i++ {
		if o[i] < o[i-1] {
			return malformed("offsets[%d]=%d < offsets[%d]=%d", i, o[i], i-1, o[i-1])
		}
	}
	if last := o[len(o)-1]; last > int64(contentLen) {
		return malformed("last offset %d out of content length %d", last, contentLen)
	}
	return nil
}

// Len returns length of i-th entry.
func (o Offsets) Len(i int) int {
	return int(o[i+1] - o[i])
}

// Counts returns lengths of all entries.
func (o Offsets) Counts() []int64 {
	if len(o) == 0 {
		return nil
	}
	counts := make([]int64, len(o)-1)
	for i := range counts {
		counts[i] = o[i+1] - o[i]
	}
	return counts
}

// OffsetsFromCounts returns zero-based offsets of entries with provided
// lengths.
func OffsetsFromCounts(counts []int64) (Offsets, error) {
	o := make(Offsets, len(counts)+1)
	for i, n := range counts {
		if n < 0 {
			return nil, malformed("negative count %d of entry %d", n, i)
		}
		o[i+1] = o[i] + n
	}
	return o, nil
}

// entrySpans normalizes byte offsets of entries to zero-based offsets
// into data.
//
// Offsets may either have entries+1 elements or entries elements, in
// the latter case the last entry ends at the end of data. Negative
// entries means entries+1 offsets.
func entrySpans(offsets []int64, entries, dataLen int) (Offsets, error) {
	if entries < 0 {
		if len(offsets) == 0 {
			return nil, malformed("no entry offsets")
		}
		entries = len(offsets) - 1
	}
	if entries == 0 && len(offsets) <= 1 {
		return Offsets{0}, nil
	}
	if len(offsets) == 0 {
		return nil, malformed("no entry offsets for %d entries", entries)
	}
	base := offsets[0]
	spans := make(Offsets, entries+1)
	switch len(offsets) {
	case entries + 1:
		for i, v := range offsets {
			spans[i] = v - base
		}
	case entries:
		for i, v := range offsets {
			spans[i] = v - base
		}
		spans[entries] = int64(dataLen)
	default:
		return nil, malformed("%d entry offsets for %d entries", len(offsets), entries)
	}
	if err := spans.Validate(dataLen); err != nil {
		return nil, err
	}
	return spans, nil
}
