package ttree

import (
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/go-faster/errors"

	"github.com/go-faster/ttree/interp"
)

// Library selects representation of returned arrays.
type Library byte

const (
	// LibraryGo returns interp arrays only.
	LibraryGo Library = iota
	// LibraryArrow additionally converts arrays to Apache Arrow.
	LibraryArrow
)

func (l Library) String() string {
	switch l {
	case LibraryGo:
		return "go"
	case LibraryArrow:
		return "arrow"
	default:
		return "unknown"
	}
}

// ParseLibrary parses name of Library, as returned by Library.String.
func ParseLibrary(s string) (Library, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "go":
		return LibraryGo, nil
	case "arrow", "pa", "pyarrow":
		return LibraryArrow, nil
	default:
		return 0, errors.Errorf("unknown library %q", s)
	}
}

// ReadOptions of single Array or Arrays request.
type ReadOptions struct {
	Library Library
	// Allocator for Arrow arrays, defaults to memory.DefaultAllocator.
	Allocator memory.Allocator
}

func (o ReadOptions) allocator() memory.Allocator {
	if o.Allocator == nil {
		return memory.DefaultAllocator
	}
	return o.Allocator
}

// Value is column or formula result.
type Value struct {
	// Name is requested column name or formula string.
	Name string
	Data interp.Array
	// Arrow is Data converted to Arrow, set only for LibraryArrow.
	// Owned by caller, see Release.
	Arrow arrow.Array
}

// Release releases Arrow array, if any.
func (v Value) Release() {
	if v.Arrow != nil {
		v.Arrow.Release()
	}
}

// Columns is result of batch request.
type Columns struct {
	// Values of successful columns in order of request.
	Values []Value
	// Errors of failed columns by name.
	Errors map[string]error
}

func (c *Columns) fail(name string, err error) {
	if c.Errors == nil {
		c.Errors = map[string]error{}
	}
	c.Errors[name] = err
}

// Get returns value by name.
func (c Columns) Get(name string) (Value, bool) {
	for _, v := range c.Values {
		if v.Name == name {
			return v, true
		}
	}
	return Value{}, false
}

// Names returns names of successful columns.
func (c Columns) Names() []string {
	out := make([]string, len(c.Values))
	for i, v := range c.Values {
		out[i] = v.Name
	}
	return out
}

// Release releases all Arrow arrays.
func (c Columns) Release() {
	for _, v := range c.Values {
		v.Release()
	}
}
