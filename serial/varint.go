package serial

import (
	"errors"
	"io"

	"google.golang.org/protobuf/encoding/protowire"
)

// appendUvarint emits the base-128 varint encoding of v.
func appendUvarint(dst []byte, v uint64) []byte {
	return protowire.AppendVarint(dst, v)
}

// consumeUvarint decodes b as one whole canonical varint. protowire itself
// tolerates padded encodings and leaves trailing bytes to the caller; both
// are rejected here.
func consumeUvarint(b []byte) (uint64, error) {
	v, n := protowire.ConsumeVarint(b)
	if n < 0 {
		if errors.Is(protowire.ParseError(n), io.ErrUnexpectedEOF) {
			return 0, ErrTruncated
		}
		return 0, ErrOverflow
	}
	if n != len(b) {
		return 0, ErrTrailingBytes
	}
	if n != protowire.SizeVarint(v) {
		return 0, ErrNonCanonical
	}
	return v, nil
}

// appendZigZag emits the zig-zag varint encoding of v, mapping small
// magnitudes of either sign to short encodings.
func appendZigZag(dst []byte, v int64) []byte {
	return protowire.AppendVarint(dst, protowire.EncodeZigZag(v))
}

func consumeZigZag(b []byte) (int64, error) {
	u, err := consumeUvarint(b)
	if err != nil {
		return 0, err
	}
	return protowire.DecodeZigZag(u), nil
}
