// Package serial implements the typed serializers shared by message bodies
// and persisted values. Each serializer is a stateless bidirectional codec:
// Serialize emits the one canonical byte string for a value, Deserialize
// accepts exactly that form and rejects everything else with a malformed
// encoding error.
package serial

import (
	"errors"
	"fmt"
)

// Serializer converts values of one Go type to and from canonical bytes.
//
// Canonical means a value has exactly one encoding, so byte equality of
// encodings coincides with value equality. Implementations hold no state and
// are safe for unsynchronized concurrent use. Serialize allocates; the
// caller owns the returned slice. Deserialize never retains its input.
type Serializer[T any] interface {
	Serialize(v T) []byte
	Deserialize(b []byte) (T, error)
}

// ErrMalformed is the root of every deserialization failure; the specific
// causes below wrap it, so errors.Is(err, ErrMalformed) matches any rejected
// input. Deserialization never silently truncates, wraps around, or
// substitutes defaults.
var ErrMalformed = errors.New("serial: malformed encoding")

var (
	ErrTruncated     = fmt.Errorf("%w: truncated varint", ErrMalformed)
	ErrOverflow      = fmt.Errorf("%w: varint overflows 64 bits", ErrMalformed)
	ErrNonCanonical  = fmt.Errorf("%w: non-minimal varint", ErrMalformed)
	ErrTrailingBytes = fmt.Errorf("%w: trailing bytes", ErrMalformed)
	ErrWrongLength   = fmt.Errorf("%w: wrong length", ErrMalformed)
	ErrOutOfRange    = fmt.Errorf("%w: value out of range", ErrMalformed)
	ErrInvalidUTF8   = fmt.Errorf("%w: invalid utf-8", ErrMalformed)
)

// IsMalformed reports whether err came from rejecting a malformed encoding.
func IsMalformed(err error) bool { return errors.Is(err, ErrMalformed) }
