package interp

import (
	"math"
	"strconv"
	"strings"

	"github.com/go-faster/errors"
)

var primitiveTypes = map[string]Kind{
	"Bool_t":             KindBool,
	"bool":               KindBool,
	"Char_t":             KindInt8,
	"char":               KindInt8,
	"Int8_t":             KindInt8,
	"int8_t":             KindInt8,
	"UChar_t":            KindUInt8,
	"unsigned char":      KindUInt8,
	"UInt8_t":            KindUInt8,
	"uint8_t":            KindUInt8,
	"Short_t":            KindInt16,
	"short":              KindInt16,
	"Int16_t":            KindInt16,
	"int16_t":            KindInt16,
	"UShort_t":           KindUInt16,
	"unsigned short":     KindUInt16,
	"UInt16_t":           KindUInt16,
	"uint16_t":           KindUInt16,
	"Int_t":              KindInt32,
	"int":                KindInt32,
	"Int32_t":            KindInt32,
	"int32_t":            KindInt32,
	"UInt_t":             KindUInt32,
	"unsigned int":       KindUInt32,
	"unsigned":           KindUInt32,
	"UInt32_t":           KindUInt32,
	"uint32_t":           KindUInt32,
	"Long_t":             KindInt64,
	"Long64_t":           KindInt64,
	"long":               KindInt64,
	"long long":          KindInt64,
	"Int64_t":            KindInt64,
	"int64_t":            KindInt64,
	"ULong_t":            KindUInt64,
	"ULong64_t":          KindUInt64,
	"unsigned long":      KindUInt64,
	"unsigned long long": KindUInt64,
	"UInt64_t":           KindUInt64,
	"uint64_t":           KindUInt64,
	"Float_t":            KindFloat32,
	"float":              KindFloat32,
	"Double_t":           KindFloat64,
	"double":             KindFloat64,
}

// Leaf type codes of TLeaf titles, like "x/D".
var leafCodes = map[byte]Kind{
	'O': KindBool,
	'B': KindInt8,
	'b': KindUInt8,
	'S': KindInt16,
	's': KindUInt16,
	'I': KindInt32,
	'i': KindUInt32,
	'L': KindInt64,
	'l': KindUInt64,
	'F': KindFloat32,
	'D': KindFloat64,
}

// ParseType returns interpretation of branch with provided ROOT type
// name and title.
//
// Title carries fixed dimensions ("x[3]"), counter name of variable
// length arrays ("x[n]") and range of Double32_t and Float16_t
// values ("[-2.71, 10.0, 30]", "[0, 2*pi]", "[0, 0, 10]"). For leaf
// titles without type name, type is taken from the leaf code ("x/D").
func ParseType(typeName, title string) (Interpretation, error) {
	t, err := parseTitle(title)
	if err != nil {
		return nil, errors.Wrapf(err, "title %q", title)
	}
	typeName = normalizeType(typeName)
	if typeName == "" {
		if t.code == 0 {
			return nil, errors.Errorf("no type for title %q", title)
		}
		switch t.code {
		case 'C':
			typeName = "TString"
		case 'd':
			typeName = "Double32_t"
		case 'f':
			typeName = "Float16_t"
		default:
			k, ok := leafCodes[t.code]
			if !ok {
				return nil, &UnsupportedError{Feature: "leaf type code " + string(t.code)}
			}
			typeName = k.String()
		}
	}
	i, err := parseTypeName(typeName, t)
	if err != nil {
		return nil, err
	}
	if t.counter != "" {
		return AsJagged{Content: i}, nil
	}
	return i, nil
}

// CounterName returns name of counter branch from title of variable
// length array, like "n" for "px[n]/F". Returns empty string if title
// has no counter or is invalid.
func CounterName(title string) string {
	t, err := parseTitle(title)
	if err != nil {
		return ""
	}
	return t.counter
}

func parseTypeName(typeName string, t title) (Interpretation, error) {
	if k, ok := primitiveTypes[typeName]; ok {
		return AsDtype{Elem: k, Dims: t.dims}, nil
	}
	if k, ok := kindByName[typeName]; ok {
		return AsDtype{Elem: k, Dims: t.dims}, nil
	}
	switch typeName {
	case "Double32_t", "Float16_t":
		return t.codec(typeName)
	case "TString", "char*", "Char_t*":
		return AsStrings{}, nil
	case "string", "std::string":
		return AsStrings{HeaderBytes: headerSize}, nil
	}
	if elem, ok := templateArg(typeName, "vector"); ok {
		return parseVector(elem, t)
	}
	return AsObject{Class: typeName}, nil
}

func parseVector(elem string, t title) (Interpretation, error) {
	if k, ok := primitiveTypes[elem]; ok {
		return AsJagged{Content: AsDtype{Elem: k}, HeaderBytes: headerSize + 4}, nil
	}
	switch elem {
	case "Double32_t", "Float16_t":
		c, err := t.codec(elem)
		if err != nil {
			return nil, err
		}
		return AsJagged{Content: c, HeaderBytes: headerSize + 4}, nil
	case "string", "std::string", "TString":
		return AsVector{Header: true, Elem: AsStrings{}}, nil
	}
	if inner, ok := templateArg(elem, "vector"); ok {
		v, err := parseVector(inner, t)
		if err != nil {
			return nil, err
		}
		return AsVector{Header: true, Elem: unheadered(v)}, nil
	}
	return nil, &UnsupportedError{Feature: "vector of " + elem}
}

// unheadered converts top-level vector interpretation to nested one.
func unheadered(i Interpretation) Interpretation {
	switch i := i.(type) {
	case AsJagged:
		return AsVector{Elem: i.Content}
	case AsVector:
		i.Header = false
		return i
	default:
		return i
	}
}

var kindByName = func() map[string]Kind {
	m := make(map[string]Kind)
	for k := KindBool; k <= KindFloat64; k++ {
		m[k.String()] = k
	}
	return m
}()

// normalizeType trims spaces and std:: prefix of vector.
func normalizeType(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "std::vector", "vector")
	s = strings.ReplaceAll(s, " >", ">")
	s = strings.ReplaceAll(s, "< ", "<")
	return s
}

// templateArg returns argument of template like "vector<T>".
func templateArg(s, name string) (string, bool) {
	if !strings.HasPrefix(s, name+"<") || !strings.HasSuffix(s, ">") {
		return "", false
	}
	return strings.TrimSpace(s[len(name)+1 : len(s)-1]), true
}

type title struct {
	dims    []int
	counter string
	code    byte
	rng     []float64
}

func parseTitle(s string) (title, error) {
	var t title
	depth := 0
	for i := 0; i < len(s)-1; i++ {
		switch s[i] {
		case '[':
			depth++
		case ']':
			depth--
		case '/':
			if depth == 0 {
				// Leaf type code, optionally followed by range.
				t.code = s[i+1]
			}
		}
	}
	for {
		start := strings.IndexByte(s, '[')
		if start < 0 {
			break
		}
		end := strings.IndexByte(s[start:], ']')
		if end < 0 {
			return t, errors.New("unbalanced brackets")
		}
		group := strings.TrimSpace(s[start+1 : start+end])
		s = s[start+end+1:]
		switch {
		case strings.Contains(group, ","):
			rng, err := parseRange(group)
			if err != nil {
				return t, errors.Wrapf(err, "range %q", group)
			}
			t.rng = rng
		case group == "":
			return t, errors.New("empty dimension")
		default:
			if n, err := strconv.Atoi(group); err == nil {
				if n <= 0 {
					return t, errors.Errorf("invalid dimension %d", n)
				}
				t.dims = append(t.dims, n)
				continue
			}
			if t.counter != "" || len(t.dims) > 0 {
				return t, &UnsupportedError{Feature: "multiple variable dimensions"}
			}
			t.counter = group
		}
	}
	return t, nil
}

func parseRange(group string) ([]float64, error) {
	parts := strings.Split(group, ",")
	if len(parts) > 3 {
		return nil, errors.Errorf("%d range parameters", len(parts))
	}
	out := make([]float64, len(parts))
	for i, p := range parts {
		v, err := evalBound(strings.TrimSpace(p))
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// evalBound evaluates range bound: number or product and quotient of
// numbers and pi, like "-2*pi" or "pi/2".
func evalBound(s string) (float64, error) {
	if s == "" {
		return 0, errors.New("empty bound")
	}
	sign := 1.0
	switch s[0] {
	case '-':
		sign, s = -1, s[1:]
	case '+':
		s = s[1:]
	}
	var (
		v   = 1.0
		op  = byte('*')
		tok strings.Builder
	)
	apply := func() error {
		f := strings.TrimSpace(tok.String())
		tok.Reset()
		var x float64
		switch strings.ToLower(f) {
		case "pi":
			x = math.Pi
		case "twopi", "2pi":
			x = 2 * math.Pi
		default:
			n, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return errors.Errorf("invalid number %q", f)
			}
			x = n
		}
		if op == '/' {
			v /= x
		} else {
			v *= x
		}
		return nil
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c == '*' || c == '/') && tok.Len() > 0 {
			if err := apply(); err != nil {
				return 0, err
			}
			op = c
			continue
		}
		tok.WriteByte(c)
	}
	if err := apply(); err != nil {
		return 0, err
	}
	return sign * v, nil
}

func (t title) codec(typeName string) (Codec, error) {
	c := Codec{Format: Double32, Bits: 32, Dims: t.dims}
	if typeName == "Float16_t" {
		c.Format = Float16
		c.Bits = 12
	}
	switch len(t.rng) {
	case 0:
	case 1:
		return Codec{}, errors.New("range without upper bound")
	default:
		c.Low, c.High = t.rng[0], t.rng[1]
		if len(t.rng) == 3 {
			c.Bits = int(t.rng[2])
		}
	}
	if c.Bits < 2 || c.Bits > 32 {
		c.Bits = 32
	}
	if c.Truncated() && c.Bits > maxMantissaBits {
		// Too many bits for mantissa, stored as float.
		c.Bits = 32
	}
	if err := c.Validate(); err != nil {
		return Codec{}, err
	}
	return c, nil
}
