package crypto

import (
	"crypto/rand"
	"fmt"

	"github.com/cloudflare/circl/sign/dilithium/mode3"
	"golang.org/x/crypto/sha3"

	"ledgernet.dev/sbmf/hashing"
)

// dilithium3Function is the post-quantum alternate: Dilithium mode3 over the
// raw message bytes, SHA3-256 for hashing. Its signatures exceed the fixed
// SBMF v1 signature field, so it serves detached blob signing; framing a
// message with it fails at sign time.
type dilithium3Function struct{}

func (dilithium3Function) Name() string { return AlgorithmDilithium3 }

func (dilithium3Function) GenerateKeyPair() (KeyPair, error) {
	pub, priv, err := mode3.GenerateKey(rand.Reader)
	if err != nil {
		return KeyPair{}, fmt.Errorf("crypto: dilithium3 keygen: %w", err)
	}
	return keyPairFromMode3(pub, priv)
}

func (dilithium3Function) KeyPairFromSeed(seed []byte) (KeyPair, error) {
	if len(seed) != mode3.SeedSize {
		return KeyPair{}, fmt.Errorf("crypto: dilithium3 seed must be %d bytes, got %d",
			mode3.SeedSize, len(seed))
	}
	var s [mode3.SeedSize]byte
	copy(s[:], seed)
	pub, priv := mode3.NewKeyFromSeed(&s)
	return keyPairFromMode3(pub, priv)
}

func keyPairFromMode3(pub *mode3.PublicKey, priv *mode3.PrivateKey) (KeyPair, error) {
	pb, err := pub.MarshalBinary()
	if err != nil {
		return KeyPair{}, fmt.Errorf("crypto: marshal dilithium3 public key: %w", err)
	}
	sb, err := priv.MarshalBinary()
	if err != nil {
		return KeyPair{}, fmt.Errorf("crypto: marshal dilithium3 private key: %w", err)
	}
	return KeyPair{Public: PublicKey{b: pb}, Private: PrivateKey{b: sb}}, nil
}

func (dilithium3Function) Sign(message []byte, key PrivateKey) ([]byte, error) {
	var priv mode3.PrivateKey
	if err := priv.UnmarshalBinary(key.b); err != nil {
		return nil, fmt.Errorf("crypto: invalid dilithium3 private key: %w", err)
	}
	sig := make([]byte, mode3.SignatureSize)
	mode3.SignTo(&priv, message, sig)
	return sig, nil
}

func (dilithium3Function) Verify(message, signature []byte, key PublicKey) bool {
	if len(signature) != mode3.SignatureSize {
		return false
	}
	var pub mode3.PublicKey
	if err := pub.UnmarshalBinary(key.b); err != nil {
		return false
	}
	return mode3.Verify(&pub, message, signature)
}

func (dilithium3Function) Hash(data []byte) hashing.Digest {
	return hashing.Digest(sha3.Sum256(data))
}

func (dilithium3Function) SignatureSize() int { return mode3.SignatureSize }
func (dilithium3Function) PublicKeySize() int { return mode3.PublicKeySize }
func (dilithium3Function) SeedSize() int      { return mode3.SeedSize }
