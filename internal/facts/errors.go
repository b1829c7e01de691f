package facts

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// Distro lookup failure kinds. Match them with errors.Is.
var (
	// ErrDistroFileUnavailable means the os-release file could not be opened.
	ErrDistroFileUnavailable = errors.New("distro file unavailable")

	// ErrDistroFileMalformed means the first line carries no quoted value.
	ErrDistroFileMalformed = errors.New("distro file malformed")
)

// DistroLookupError is returned when the distribution name cannot be
// obtained from the os-release file.
type DistroLookupError struct {
	// Path is the os-release file that was consulted.
	Path string

	// Kind is ErrDistroFileUnavailable or ErrDistroFileMalformed.
	Kind error

	// Err is the underlying cause.
	Err error
}

func (e *DistroLookupError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %v", e.Path, e.Kind)
	}
	return fmt.Sprintf("%v: %v", e.Kind, e.Err)
}

// Unwrap returns the underlying cause.
func (e *DistroLookupError) Unwrap() error {
	return e.Err
}

// Is reports whether target is the failure kind of e.
func (e *DistroLookupError) Is(target error) bool {
	return target == e.Kind
}
