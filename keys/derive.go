package keys

import (
	"crypto/sha256"
	"errors"
	"fmt"

	"ledgernet.dev/sbmf/crypto"
)

// deriveDomain separates keystore role derivation from every other SHA-256
// use in the system.
const deriveDomain = "sbmf-keystore-v1"

// DeriveRoleSeed deterministically derives a role-scoped ed25519 seed from a
// root seed. The same root and role always yield the same seed, so the CLI
// and the signer daemon agree on derived keys without coordination.
func DeriveRoleSeed(rootSeed []byte, role string) ([]byte, error) {
	seedSize := crypto.Default().SeedSize()
	if len(rootSeed) != seedSize {
		return nil, fmt.Errorf("keys: root seed must be %d bytes", seedSize)
	}
	if err := CheckRole(role); err != nil {
		return nil, err
	}

	h := sha256.New()
	_, _ = h.Write(rootSeed)
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte(deriveDomain))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte("role:"))
	_, _ = h.Write([]byte(role))
	sum := h.Sum(nil)
	if len(sum) < seedSize {
		return nil, errors.New("keys: kdf output too short")
	}
	out := make([]byte, seedSize)
	copy(out, sum[:seedSize])
	return out, nil
}

// PublicKeyStringFromSeed expands an ed25519 seed and renders its public key
// in the "<alg>:<base64>" form used across the tooling.
func PublicKeyStringFromSeed(seed []byte) (string, error) {
	fn := crypto.Default()
	kp, err := fn.KeyPairFromSeed(seed)
	if err != nil {
		return "", err
	}
	return crypto.FormatPublicKey(fn, kp.Public), nil
}
