package stackvec

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrOutOfRange is matched by every *RangeError.
	ErrOutOfRange = errors.New("stackvec: index out of range")

	// ErrFrameExhausted is the panic value raised when a frame configured
	// with WithMaxBytes cannot satisfy a reservation. It is the analogue of
	// a stack overflow.
	ErrFrameExhausted = errors.New("stackvec: frame exhausted")

	// ErrReleased is the panic value raised when a released frame is used.
	ErrReleased = errors.New("stackvec: use after Release()")
)

// RangeError is returned by Vector.At for an index outside [0, Len()).
// It carries enough context to build a diagnostic without consulting the
// vector again.
type RangeError struct {
	Index int // offending index
	Len   int // live elements at the time of the call
	Cap   int // fixed capacity of the vector
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("stackvec: index %d is not a valid index for a vector of length %d (max size %d)",
		e.Index, e.Len, e.Cap)
}

// Unwrap lets errors.Is(err, ErrOutOfRange) match.
func (e *RangeError) Unwrap() error { return ErrOutOfRange }
