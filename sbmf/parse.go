package sbmf

import (
	"encoding/binary"
	"fmt"
)

// Parse strictly decodes one whole SBMF v1 message. The input must be
// exactly one message: at least MinMessageSize bytes, with the embedded
// payloadLength equal to the input length. Anything shorter, longer, or
// inconsistent is rejected with a Parse-kind error.
//
// The bytes are copied; mutating b afterwards cannot reach the returned
// Message.
func Parse(b []byte) (*Message, error) {
	if len(b) < MinMessageSize {
		return nil, newError(KindParse, "SBMF-PARSE-001",
			fmt.Sprintf("message too short: %d bytes, minimum %d", len(b), MinMessageSize))
	}
	declared := binary.LittleEndian.Uint32(b[offPayloadLength:])
	if uint64(declared) != uint64(len(b)) {
		return nil, newError(KindParse, "SBMF-PARSE-002",
			fmt.Sprintf("payload length field %d does not match message length %d", declared, len(b)))
	}
	return &Message{raw: append([]byte(nil), b...)}, nil
}

// Canonicalize is the strict choke point for externally supplied bytes: it
// parses b and returns a copy of the canonical encoding. SBMF v1 framing is
// self-canonical, so the output equals the input byte for byte; the value of
// the call is the rejection of everything malformed.
func Canonicalize(b []byte) ([]byte, error) {
	m, err := Parse(b)
	if err != nil {
		return nil, err
	}
	return m.Bytes(), nil
}
