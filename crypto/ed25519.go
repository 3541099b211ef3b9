package crypto

import (
	"crypto/ed25519"
	"crypto/rand"
	"fmt"

	"ledgernet.dev/sbmf/hashing"
)

// ed25519Function is the default scheme: Ed25519 over the raw message bytes,
// SHA-256 for hashing. Signature and key widths match the SBMF v1 layout.
type ed25519Function struct{}

func (ed25519Function) Name() string { return AlgorithmEd25519 }

func (ed25519Function) GenerateKeyPair() (KeyPair, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return KeyPair{}, fmt.Errorf("crypto: ed25519 keygen: %w", err)
	}
	return KeyPair{Public: PublicKey{b: pub}, Private: PrivateKey{b: priv}}, nil
}

func (ed25519Function) KeyPairFromSeed(seed []byte) (KeyPair, error) {
	if len(seed) != ed25519.SeedSize {
		return KeyPair{}, fmt.Errorf("crypto: ed25519 seed must be %d bytes, got %d",
			ed25519.SeedSize, len(seed))
	}
	priv := ed25519.NewKeyFromSeed(seed)
	pub := append([]byte(nil), priv.Public().(ed25519.PublicKey)...)
	return KeyPair{Public: PublicKey{b: pub}, Private: PrivateKey{b: priv}}, nil
}

func (ed25519Function) Sign(message []byte, key PrivateKey) ([]byte, error) {
	if len(key.b) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("crypto: invalid ed25519 private key length %d, want %d",
			len(key.b), ed25519.PrivateKeySize)
	}
	return ed25519.Sign(ed25519.PrivateKey(key.b), message), nil
}

func (ed25519Function) Verify(message, signature []byte, key PublicKey) bool {
	// Size checks keep ed25519.Verify from panicking on malformed keys.
	if len(key.b) != ed25519.PublicKeySize || len(signature) != ed25519.SignatureSize {
		return false
	}
	return ed25519.Verify(ed25519.PublicKey(key.b), message, signature)
}

func (ed25519Function) Hash(data []byte) hashing.Digest {
	return hashing.Sum256(data)
}

func (ed25519Function) SignatureSize() int { return ed25519.SignatureSize }
func (ed25519Function) PublicKeySize() int { return ed25519.PublicKeySize }
func (ed25519Function) SeedSize() int      { return ed25519.SeedSize }
