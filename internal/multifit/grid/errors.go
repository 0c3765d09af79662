package grid

import (
	"errors"
	"fmt"
)

// ErrInvalidDefinition is wrapped by every compile-time rejection of a
// definition: empty frame set, missing components, inconsistent WCS
// configuration, or degenerate bases.
var ErrInvalidDefinition = errors.New("invalid definition")

// ErrNotFound is returned by the Find lookups when no record carries
// the requested ID.
var ErrNotFound = errors.New("not found")

func invalidDefinition(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidDefinition, fmt.Sprintf(format, args...))
}
