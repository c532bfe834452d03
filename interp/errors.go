package interp

import (
	"fmt"

	"github.com/go-faster/errors"
)

// MalformedError reports that column data violates size or offset
// invariants. Fatal for the column, other columns are not affected.
type MalformedError struct {
	Msg string
}

func (e *MalformedError) Error() string {
	return "malformed data: " + e.Msg
}

func malformed(format string, args ...interface{}) error {
	return &MalformedError{Msg: fmt.Sprintf(format, args...)}
}

// NotFoundError reports that requested column, path or formula
// identifier is absent.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("column %q not found", e.Name)
}

// UnsupportedError reports that data uses layout that is not
// implemented, for example members of unsplit objects.
type UnsupportedError struct {
	Feature string
}

func (e *UnsupportedError) Error() string {
	return "not implemented: " + e.Feature
}

// AsNotFound finds first *NotFoundError in err chain.
func AsNotFound(err error) (*NotFoundError, bool) {
	var e *NotFoundError
	if !errors.As(err, &e) {
		return nil, false
	}
	return e, true
}

// IsNotFound reports whether err is *NotFoundError.
func IsNotFound(err error) bool {
	_, ok := AsNotFound(err)
	return ok
}

// IsMalformed reports whether err is *MalformedError.
func IsMalformed(err error) bool {
	var e *MalformedError
	return errors.As(err, &e)
}

// IsUnsupported reports whether err is *UnsupportedError.
func IsUnsupported(err error) bool {
	var e *UnsupportedError
	return errors.As(err, &e)
}
