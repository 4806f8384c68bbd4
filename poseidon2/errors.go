package poseidon2

import (
	"fmt"

	"github.com/go-errors/errors"
)

var (
	// ErrInvalidOutputLength is returned when a digest of fewer than one lane is requested.
	ErrInvalidOutputLength = errors.Errorf("poseidon2: output length must be at least 1")

	// ErrInvalidParameters is returned by NewPermutation for malformed parameter tables.
	ErrInvalidParameters = errors.Errorf("poseidon2: invalid parameters")
)

// UnsupportedWidthError is returned when the external linear layer is asked to mix a
// state whose width has no external matrix. It signals an integration bug rather than
// bad data.
type UnsupportedWidthError struct {
	Width int
}

func (e *UnsupportedWidthError) Error() string {
	return fmt.Sprintf("poseidon2: state width %d is not supported (external matrix only defined for width %d)", e.Width, defaultWidth)
}

func unsupportedWidth(width int) error {
	return errors.Wrap(&UnsupportedWidthError{Width: width}, 1)
}

func invalidParameters(format string, args ...interface{}) error {
	return errors.WrapPrefix(ErrInvalidParameters, fmt.Sprintf(format, args...), 1)
}
