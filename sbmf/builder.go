package sbmf

import (
	"encoding/binary"
	"fmt"
)

// Builder assembles a Message field by field. Setters may run in any order
// and may overwrite earlier values; nothing is validated until Build, which
// checks every construction invariant at once and emits the canonical bytes.
//
// A Builder is single-owner state: it is not safe for concurrent use. Build
// does not consume it; a builder can be adjusted and built again, and built
// messages never alias builder state.
type Builder struct {
	networkID   byte
	version     byte
	messageType uint16
	serviceID   uint16
	body        []byte
	hasBody     bool
	signature   []byte
	hasSig      bool
}

// NewBuilder returns an empty Builder. Numeric fields default to zero;
// the body starts unset and must be provided before Build.
func NewBuilder() *Builder {
	return &Builder{}
}

// SetNetworkID sets the network discriminator.
func (b *Builder) SetNetworkID(id byte) *Builder {
	b.networkID = id
	return b
}

// SetVersion sets the format version.
func (b *Builder) SetVersion(v byte) *Builder {
	b.version = v
	return b
}

// SetMessageType sets the message kind.
func (b *Builder) SetMessageType(mt uint16) *Builder {
	b.messageType = mt
	return b
}

// SetServiceID sets the target service.
func (b *Builder) SetServiceID(id uint16) *Builder {
	b.serviceID = id
	return b
}

// SetBody replaces the body. The bytes are copied. A nil body clears the
// field back to unset; an empty non-nil body is a valid zero-length body.
func (b *Builder) SetBody(body []byte) *Builder {
	if body == nil {
		b.body, b.hasBody = nil, false
		return b
	}
	b.body = append([]byte(nil), body...)
	b.hasBody = true
	return b
}

// SetSignature replaces the signature field. The bytes are copied; Build
// requires exactly SignatureSize of them. Left unset, Build fills the field
// with the all-zero placeholder. A nil signature clears back to unset.
func (b *Builder) SetSignature(sig []byte) *Builder {
	if sig == nil {
		b.signature, b.hasSig = nil, false
		return b
	}
	b.signature = append([]byte(nil), sig...)
	b.hasSig = true
	return b
}

// MergeFrom copies every field of m into the builder, including body and
// signature, overwriting anything set earlier. Follow with setters to derive
// a message that differs from m in just those fields.
func (b *Builder) MergeFrom(m *Message) *Builder {
	b.networkID = m.NetworkID()
	b.version = m.Version()
	b.messageType = m.MessageType()
	b.serviceID = m.ServiceID()
	b.body = m.Body()
	b.hasBody = true
	b.signature = m.Signature()
	b.hasSig = true
	return b
}

// Build validates the builder state and assembles the canonical encoding.
// It is the only place construction invariants are enforced:
//
//   - the body must be set (zero-length is fine, absent is not);
//   - a set signature must be exactly SignatureSize bytes;
//   - the total length must fit the 32-bit payloadLength field.
//
// The buffer is allocated zeroed, so an unset signature is the all-zero
// placeholder without further work.
func (b *Builder) Build() (*Message, error) {
	if !b.hasBody {
		return nil, newError(KindBuild, "SBMF-BUILD-001", "message body is not set")
	}
	if b.hasSig && len(b.signature) != SignatureSize {
		return nil, newError(KindBuild, "SBMF-BUILD-002",
			fmt.Sprintf("signature must be exactly %d bytes, got %d", SignatureSize, len(b.signature)))
	}
	total := uint64(HeaderSize) + uint64(len(b.body)) + uint64(SignatureSize)
	if total > MaxMessageSize {
		return nil, newError(KindBuild, "SBMF-BUILD-003",
			fmt.Sprintf("message length %d exceeds the framing limit %d", total, uint64(MaxMessageSize)))
	}

	raw := make([]byte, total)
	raw[offNetworkID] = b.networkID
	raw[offVersion] = b.version
	binary.LittleEndian.PutUint16(raw[offMessageType:], b.messageType)
	binary.LittleEndian.PutUint16(raw[offServiceID:], b.serviceID)
	binary.LittleEndian.PutUint32(raw[offPayloadLength:], uint32(total))
	copy(raw[offBody:], b.body)
	if b.hasSig {
		copy(raw[len(raw)-SignatureSize:], b.signature)
	}
	return &Message{raw: raw}, nil
}
