// Package crypto defines the capability set used to authenticate SBMF
// messages: key pair generation, detached signing, boolean verification, and
// hashing. Implementations are selected by algorithm name through a process
// registry, so alternate schemes plug in without changing callers.
//
// The package registers "ed25519" (the default) and "dilithium3" in init.
package crypto

import (
	"bytes"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"

	"ledgernet.dev/sbmf/hashing"
)

// PublicKey is an opaque public key. The zero value is invalid.
type PublicKey struct {
	b []byte
}

// NewPublicKey copies b into a PublicKey. Length is not checked here;
// functions validate sizes at the point of use.
func NewPublicKey(b []byte) PublicKey {
	return PublicKey{b: append([]byte(nil), b...)}
}

// Bytes returns a copy of the raw key bytes.
func (k PublicKey) Bytes() []byte {
	return append([]byte(nil), k.b...)
}

// Size returns the key length in bytes.
func (k PublicKey) Size() int {
	return len(k.b)
}

// Equal reports whether both keys hold the same bytes.
func (k PublicKey) Equal(other PublicKey) bool {
	return bytes.Equal(k.b, other.b)
}

// String returns the lowercase hex encoding of the key.
func (k PublicKey) String() string {
	return hex.EncodeToString(k.b)
}

// PrivateKey is an opaque private key. The zero value is invalid.
type PrivateKey struct {
	b []byte
}

// NewPrivateKey copies b into a PrivateKey.
func NewPrivateKey(b []byte) PrivateKey {
	return PrivateKey{b: append([]byte(nil), b...)}
}

// Bytes returns a copy of the raw key bytes.
func (k PrivateKey) Bytes() []byte {
	return append([]byte(nil), k.b...)
}

// Size returns the key length in bytes.
func (k PrivateKey) Size() int {
	return len(k.b)
}

// String never reveals key material.
func (k PrivateKey) String() string {
	return "<private key>"
}

// KeyPair holds a matching public and private key.
type KeyPair struct {
	Public  PublicKey
	Private PrivateKey
}

// Function is one named signature scheme together with its hash.
//
// Sign and Verify operate over the message bytes exactly as given; for SBMF
// messages that is the signable prefix. Verify is a pure predicate: any
// defect (wrong key size, wrong signature size, corrupted bytes, all-zero
// placeholder signature) yields false, never an error and never a panic.
type Function interface {
	// Name is the registry name, e.g. "ed25519".
	Name() string

	// GenerateKeyPair creates a fresh random key pair.
	GenerateKeyPair() (KeyPair, error)

	// KeyPairFromSeed derives a key pair deterministically from a seed of
	// exactly SeedSize bytes.
	KeyPairFromSeed(seed []byte) (KeyPair, error)

	// Sign returns a detached signature over message.
	Sign(message []byte, key PrivateKey) ([]byte, error)

	// Verify reports whether signature is a valid signature of message
	// under key.
	Verify(message, signature []byte, key PublicKey) bool

	// Hash returns this scheme's digest of data.
	Hash(data []byte) hashing.Digest

	// SignatureSize, PublicKeySize and SeedSize are fixed per scheme.
	SignatureSize() int
	PublicKeySize() int
	SeedSize() int
}

// Public key string encoding: "<alg>:<base64>", e.g. "ed25519:MCowBQ...".

// FormatPublicKey renders pub as an algorithm-qualified key string.
func FormatPublicKey(fn Function, pub PublicKey) string {
	return fn.Name() + ":" + base64.StdEncoding.EncodeToString(pub.b)
}

// ParsePublicKeyString parses an "<alg>:<base64>" key string, resolving the
// algorithm through the registry and checking the key length.
func ParsePublicKeyString(s string) (Function, PublicKey, error) {
	alg, enc, ok := strings.Cut(s, ":")
	if !ok {
		return nil, PublicKey{}, fmt.Errorf("crypto: invalid public key encoding (want \"alg:base64\")")
	}
	fn, err := Lookup(alg)
	if err != nil {
		return nil, PublicKey{}, err
	}
	b, err := decodeBase64(enc)
	if err != nil {
		return nil, PublicKey{}, fmt.Errorf("crypto: invalid public key base64: %w", err)
	}
	if len(b) != fn.PublicKeySize() {
		return nil, PublicKey{}, fmt.Errorf("crypto: invalid %s public key length %d, want %d",
			fn.Name(), len(b), fn.PublicKeySize())
	}
	return fn, PublicKey{b: b}, nil
}

func decodeBase64(s string) ([]byte, error) {
	// Prefer standard padded encoding, but accept raw encoding too.
	if b, err := base64.StdEncoding.DecodeString(s); err == nil {
		return b, nil
	}
	return base64.RawStdEncoding.DecodeString(s)
}
