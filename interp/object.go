package interp

// AsObject interprets entries as objects of Class.
//
// Split objects are reconstructed from member branches, passed as
// Input.Members. Decoding of unsplit objects requires class streamer
// metadata and is not supported.
type AsObject struct {
	Class string
	Split bool
}

func (AsObject) interpretation() {}

func (o AsObject) String() string {
	if o.Split {
		return "AsObject(" + o.Class + ", split=True)"
	}
	return "AsObject(" + o.Class + ")"
}

// Type returns class name. Decoded Record reports member types.
func (o AsObject) Type() Type { return Type(o.Class) }

func (o AsObject) decode(in Input) (Array, error) {
	if !o.Split {
		return nil, &UnsupportedError{Feature: "unsplit object of class " + o.Class}
	}
	return BuildRecord(in.Entries, in.Members...)
}

// BuildRecord returns Record of provided members. All members must have
// the same count of entries, equal to entries if it is not negative.
func BuildRecord(entries int, members ...Field) (*Record, error) {
	if len(members) == 0 {
		return nil, malformed("split object without members")
	}
	seen := make(map[string]struct{}, len(members))
	for _, m := range members {
		if _, ok := seen[m.Name]; ok {
			return nil, malformed("duplicate member %q", m.Name)
		}
		seen[m.Name] = struct{}{}
		if m.Array == nil {
			return nil, malformed("member %q without data", m.Name)
		}
		if entries < 0 {
			entries = m.Array.Rows()
		}
		if m.Array.Rows() != entries {
			return nil, malformed("member %q has %d entries, expected %d", m.Name, m.Array.Rows(), entries)
		}
	}
	return &Record{Fields: append([]Field(nil), members...)}, nil
}
