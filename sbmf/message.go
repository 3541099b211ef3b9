// Package sbmf implements version 1 of the Signed Binary Message Format:
// fixed little-endian framing, hashing, and signing of the messages ledger
// nodes exchange.
//
// A Message is immutable once constructed. Construction goes through a
// Builder or through Parse; both end in the same canonical byte string, and
// every accessor reads that string. Signing returns a new Message and leaves
// the receiver untouched. Verification is a boolean predicate, never an
// error.
package sbmf

import (
	"encoding/binary"
	"fmt"

	"github.com/ipfs/go-cid"

	"ledgernet.dev/sbmf/crypto"
	"ledgernet.dev/sbmf/hashing"
)

// Layout constants for SBMF v1. All multi-byte fields are little-endian,
// in fixed order, with no padding.
const (
	// HeaderSize is the fixed prefix: networkID (1) + version (1) +
	// messageType (2) + serviceID (2) + payloadLength (4).
	HeaderSize = 10

	// SignatureSize is the fixed trailing signature field.
	SignatureSize = 64

	// MinMessageSize is the size of an empty-body message.
	MinMessageSize = HeaderSize + SignatureSize

	// MaxMessageSize is the largest total length the payloadLength field
	// can carry.
	MaxMessageSize = 1<<32 - 1
)

// Field offsets within the encoding.
const (
	offNetworkID     = 0
	offVersion       = 1
	offMessageType   = 2
	offServiceID     = 4
	offPayloadLength = 6
	offBody          = HeaderSize
)

// Message is one SBMF v1 message backed by its canonical encoding.
//
// The payloadLength field counts the entire encoding: header, body and
// trailing signature. The signable prefix is everything except the
// signature; hashing, signing and verification all consume exactly that
// prefix.
//
// The zero value is not a valid Message; obtain one from a Builder or Parse.
type Message struct {
	raw []byte // canonical encoding, never aliased outside the struct
}

// NetworkID returns the network discriminator byte.
func (m *Message) NetworkID() byte { return m.raw[offNetworkID] }

// Version returns the format version byte.
func (m *Message) Version() byte { return m.raw[offVersion] }

// MessageType returns the message kind within the target service.
func (m *Message) MessageType() uint16 {
	return binary.LittleEndian.Uint16(m.raw[offMessageType:])
}

// ServiceID returns the identifier of the service the message targets.
func (m *Message) ServiceID() uint16 {
	return binary.LittleEndian.Uint16(m.raw[offServiceID:])
}

// PayloadLength returns the embedded total length field. For a valid
// Message it always equals Size().
func (m *Message) PayloadLength() uint32 {
	return binary.LittleEndian.Uint32(m.raw[offPayloadLength:])
}

// Body returns a copy of the opaque payload.
func (m *Message) Body() []byte {
	return append([]byte(nil), m.raw[offBody:len(m.raw)-SignatureSize]...)
}

// Signature returns a copy of the trailing signature field. For an unsigned
// message this is the all-zero placeholder.
func (m *Message) Signature() []byte {
	return append([]byte(nil), m.raw[len(m.raw)-SignatureSize:]...)
}

// SignedBytes returns a copy of the signable prefix: every byte of the
// encoding except the trailing signature.
func (m *Message) SignedBytes() []byte {
	return append([]byte(nil), m.signedPrefix()...)
}

// Bytes returns a copy of the full canonical encoding.
func (m *Message) Bytes() []byte {
	return append([]byte(nil), m.raw...)
}

// Size returns the total encoded length in bytes.
func (m *Message) Size() int { return len(m.raw) }

// signedPrefix is the non-copying view used internally; callers must not
// mutate or retain it.
func (m *Message) signedPrefix() []byte {
	return m.raw[:len(m.raw)-SignatureSize]
}

// Hash returns the message identity: the SHA-256 digest of the signable
// prefix. The signature does not contribute, so signing never changes a
// message's identity.
func (m *Message) Hash() hashing.Digest {
	return hashing.Sum256(m.signedPrefix())
}

// ID returns the message identity as a CIDv1 (raw + sha2-256) for
// content-addressed stores.
func (m *Message) ID() (cid.Cid, error) {
	return hashing.ContentID(m.signedPrefix())
}

// Sign computes fn's signature over the signable prefix and returns a new
// Message carrying it. The receiver is unchanged; signing an already signed
// message overwrites the signature in the returned instance only.
//
// The signature must be exactly SignatureSize bytes. Schemes with wider
// signatures (dilithium3) cannot frame an SBMF v1 message and fail here with
// a Crypto-kind error.
func (m *Message) Sign(fn crypto.Function, key crypto.PrivateKey) (*Message, error) {
	if m == nil {
		return nil, newError(KindCrypto, "SBMF-CRYPTO-001", "nil message")
	}
	if fn == nil {
		return nil, newError(KindCrypto, "SBMF-CRYPTO-002", "nil crypto function")
	}
	sig, err := fn.Sign(m.SignedBytes(), key)
	if err != nil {
		return nil, wrapError(KindCrypto, "SBMF-CRYPTO-003", "signing failed", err)
	}
	if len(sig) != SignatureSize {
		return nil, newError(KindCrypto, "SBMF-CRYPTO-004",
			fmt.Sprintf("algorithm %q produced a %d-byte signature; the signature field holds exactly %d",
				fn.Name(), len(sig), SignatureSize))
	}
	raw := append([]byte(nil), m.raw...)
	copy(raw[len(raw)-SignatureSize:], sig)
	return &Message{raw: raw}, nil
}

// Verify reports whether the embedded signature is valid under fn and key
// over the signable prefix. It is a pure predicate: the message is never
// mutated, repeated calls return the same result, and every failure mode
// (wrong key, corrupted signature, zero placeholder, size mismatch) is
// false, not an error.
func (m *Message) Verify(fn crypto.Function, key crypto.PublicKey) bool {
	if m == nil || fn == nil {
		return false
	}
	return fn.Verify(m.SignedBytes(), m.Signature(), key)
}
