// Package hashing provides the fixed-width digest type used for message
// identity, plus CIDv1 content identifiers for canonical byte strings.
package hashing

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"
)

const (
	// Size is the digest width in bytes.
	Size = sha256.Size
	// SizeBits is the digest width in bits.
	SizeBits = Size * 8
)

// Digest is a fixed 256-bit hash value. It is a comparable value type;
// two digests are equal iff their bytes are equal.
type Digest [Size]byte

// Sum256 returns the SHA-256 digest of data.
func Sum256(data []byte) Digest {
	return Digest(sha256.Sum256(data))
}

// FromHex parses a lowercase or uppercase hex-encoded digest.
func FromHex(s string) (Digest, error) {
	var d Digest
	b, err := hex.DecodeString(s)
	if err != nil {
		return d, fmt.Errorf("hashing: invalid digest hex: %w", err)
	}
	if len(b) != Size {
		return d, fmt.Errorf("hashing: digest must be %d bytes, got %d", Size, len(b))
	}
	copy(d[:], b)
	return d, nil
}

// Bytes returns a copy of the digest bytes.
func (d Digest) Bytes() []byte {
	out := make([]byte, Size)
	copy(out, d[:])
	return out
}

// Hex returns the lowercase hex encoding of the digest.
func (d Digest) Hex() string {
	return hex.EncodeToString(d[:])
}

func (d Digest) String() string {
	return d.Hex()
}

// Bits reports the digest width in bits.
func (d Digest) Bits() int {
	return SizeBits
}

// Equal reports whether two digests hold the same bytes.
func (d Digest) Equal(other Digest) bool {
	return d == other
}

// ContentID returns a CIDv1 (raw multicodec + sha2-256 multihash) derived
// from data.
func ContentID(data []byte) (cid.Cid, error) {
	sum, err := multihash.Sum(data, multihash.SHA2_256, -1)
	if err != nil {
		return cid.Undef, err
	}
	return cid.NewCidV1(cid.Raw, sum), nil
}

// ContentIDString returns the string form of ContentID.
func ContentIDString(data []byte) string {
	id, err := ContentID(data)
	if err != nil {
		// multihash.Sum only errors for invalid inputs; with SHA2_256 and -1
		// length, this should be unreachable.
		return ""
	}
	return id.String()
}
