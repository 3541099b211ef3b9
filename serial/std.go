package serial

import (
	"crypto/ed25519"
	"encoding/binary"
	"math"
	"unicode/utf8"

	"ledgernet.dev/sbmf/crypto"
	"ledgernet.dev/sbmf/hashing"
)

// Standard serializer instances. All are stateless; share them freely.
var (
	// Bool encodes to a single byte, 0x00 or 0x01.
	Bool Serializer[bool] = boolSerializer{}

	// Fixed32 and Fixed64 are fixed-width little-endian words.
	Fixed32 Serializer[uint32] = fixed32Serializer{}
	Fixed64 Serializer[uint64] = fixed64Serializer{}

	// Uint32 and Uint64 are minimal base-128 varints.
	Uint32 Serializer[uint32] = uint32Serializer{}
	Uint64 Serializer[uint64] = uint64Serializer{}

	// Sint32 and Sint64 are zig-zag varints; small magnitudes of either
	// sign stay short.
	Sint32 Serializer[int32] = sint32Serializer{}
	Sint64 Serializer[int64] = sint64Serializer{}

	// Float32 and Float64 are IEEE-754 bit patterns, little-endian.
	// Values round-trip by bit pattern.
	Float32 Serializer[float32] = float32Serializer{}
	Float64 Serializer[float64] = float64Serializer{}

	// String is the raw UTF-8 bytes; Deserialize rejects invalid UTF-8.
	// The value domain is valid UTF-8 strings.
	String Serializer[string] = stringSerializer{}

	// Bytes is the identity codec with defensive copies on both sides.
	Bytes Serializer[[]byte] = bytesSerializer{}

	// Digest is the raw 32 digest bytes.
	Digest Serializer[hashing.Digest] = digestSerializer{}

	// PublicKey is the raw key bytes at ed25519 width.
	PublicKey Serializer[crypto.PublicKey] = publicKeySerializer{}
)

type boolSerializer struct{}

func (boolSerializer) Serialize(v bool) []byte {
	if v {
		return []byte{1}
	}
	return []byte{0}
}

func (boolSerializer) Deserialize(b []byte) (bool, error) {
	if len(b) != 1 {
		return false, ErrWrongLength
	}
	switch b[0] {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, ErrOutOfRange
	}
}

type fixed32Serializer struct{}

func (fixed32Serializer) Serialize(v uint32) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, v)
	return b
}

func (fixed32Serializer) Deserialize(b []byte) (uint32, error) {
	if len(b) != 4 {
		return 0, ErrWrongLength
	}
	return binary.LittleEndian.Uint32(b), nil
}

type fixed64Serializer struct{}

func (fixed64Serializer) Serialize(v uint64) []byte {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, v)
	return b
}

func (fixed64Serializer) Deserialize(b []byte) (uint64, error) {
	if len(b) != 8 {
		return 0, ErrWrongLength
	}
	return binary.LittleEndian.Uint64(b), nil
}

type uint32Serializer struct{}

func (uint32Serializer) Serialize(v uint32) []byte {
	return appendUvarint(nil, uint64(v))
}

func (uint32Serializer) Deserialize(b []byte) (uint32, error) {
	v, err := consumeUvarint(b)
	if err != nil {
		return 0, err
	}
	if v > math.MaxUint32 {
		return 0, ErrOutOfRange
	}
	return uint32(v), nil
}

type uint64Serializer struct{}

func (uint64Serializer) Serialize(v uint64) []byte {
	return appendUvarint(nil, v)
}

func (uint64Serializer) Deserialize(b []byte) (uint64, error) {
	return consumeUvarint(b)
}

type sint32Serializer struct{}

func (sint32Serializer) Serialize(v int32) []byte {
	return appendZigZag(nil, int64(v))
}

func (sint32Serializer) Deserialize(b []byte) (int32, error) {
	v, err := consumeZigZag(b)
	if err != nil {
		return 0, err
	}
	if v < math.MinInt32 || v > math.MaxInt32 {
		return 0, ErrOutOfRange
	}
	return int32(v), nil
}

type sint64Serializer struct{}

func (sint64Serializer) Serialize(v int64) []byte {
	return appendZigZag(nil, v)
}

func (sint64Serializer) Deserialize(b []byte) (int64, error) {
	return consumeZigZag(b)
}

type float32Serializer struct{}

func (float32Serializer) Serialize(v float32) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, math.Float32bits(v))
	return b
}

func (float32Serializer) Deserialize(b []byte) (float32, error) {
	if len(b) != 4 {
		return 0, ErrWrongLength
	}
	return math.Float32frombits(binary.LittleEndian.Uint32(b)), nil
}

type float64Serializer struct{}

func (float64Serializer) Serialize(v float64) []byte {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, math.Float64bits(v))
	return b
}

func (float64Serializer) Deserialize(b []byte) (float64, error) {
	if len(b) != 8 {
		return 0, ErrWrongLength
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(b)), nil
}

type stringSerializer struct{}

func (stringSerializer) Serialize(v string) []byte {
	return []byte(v)
}

func (stringSerializer) Deserialize(b []byte) (string, error) {
	if !utf8.Valid(b) {
		return "", ErrInvalidUTF8
	}
	return string(b), nil
}

type bytesSerializer struct{}

func (bytesSerializer) Serialize(v []byte) []byte {
	return append([]byte(nil), v...)
}

func (bytesSerializer) Deserialize(b []byte) ([]byte, error) {
	return append([]byte(nil), b...), nil
}

type digestSerializer struct{}

func (digestSerializer) Serialize(v hashing.Digest) []byte {
	return v.Bytes()
}

func (digestSerializer) Deserialize(b []byte) (hashing.Digest, error) {
	var d hashing.Digest
	if len(b) != hashing.Size {
		return d, ErrWrongLength
	}
	copy(d[:], b)
	return d, nil
}

type publicKeySerializer struct{}

func (publicKeySerializer) Serialize(v crypto.PublicKey) []byte {
	return v.Bytes()
}

func (publicKeySerializer) Deserialize(b []byte) (crypto.PublicKey, error) {
	if len(b) != ed25519.PublicKeySize {
		return crypto.PublicKey{}, ErrWrongLength
	}
	return crypto.NewPublicKey(b), nil
}
