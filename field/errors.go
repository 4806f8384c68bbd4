package field

import (
	"fmt"
	"math/big"

	"github.com/go-errors/errors"
)

// ErrNilInteger is returned when a nil *big.Int is passed to a strict constructor.
var ErrNilInteger = errors.Errorf("field: nil integer")

// OutOfRangeError is returned by the strict constructors when the supplied integer is
// negative or not smaller than Modulus. The value is never clamped.
type OutOfRangeError struct {
	Value *big.Int
}

func (e *OutOfRangeError) Error() string {
	if e.Value.Sign() < 0 {
		return fmt.Sprintf("field: value %#x is negative", e.Value)
	}
	return fmt.Sprintf("field: value %#x is greater or equal to field modulus", e.Value)
}

// EncodingError reports a malformed external representation (hex text or CBOR).
type EncodingError struct {
	Format string
	Err    error
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("field: invalid %s encoding: %v", e.Format, e.Err)
}

func (e *EncodingError) Unwrap() error {
	return e.Err
}

func outOfRange(v *big.Int) error {
	return errors.Wrap(&OutOfRangeError{Value: new(big.Int).Set(v)}, 1)
}

func badEncoding(format string, err error) error {
	return errors.Wrap(&EncodingError{Format: format, Err: err}, 1)
}
