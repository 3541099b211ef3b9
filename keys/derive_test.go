package keys

import (
	"bytes"
	"strings"
	"testing"

	"ledgernet.dev/sbmf/crypto"
)

func TestDeriveRoleSeedDeterministic(t *testing.T) {
	root := make([]byte, crypto.Default().SeedSize())
	for i := range root {
		root[i] = byte(i)
	}

	a, err := DeriveRoleSeed(root, "approver")
	if err != nil {
		t.Fatalf("DeriveRoleSeed: %v", err)
	}
	b, err := DeriveRoleSeed(root, "approver")
	if err != nil {
		t.Fatalf("DeriveRoleSeed: %v", err)
	}
	if !bytes.Equal(a, b) {
		t.Fatalf("expected deterministic derivation")
	}

	c, err := DeriveRoleSeed(root, "issuer")
	if err != nil {
		t.Fatalf("DeriveRoleSeed: %v", err)
	}
	if bytes.Equal(a, c) {
		t.Fatalf("expected different roles to derive different seeds")
	}

	otherRoot := bytes.Repeat([]byte{0xEE}, crypto.Default().SeedSize())
	d, err := DeriveRoleSeed(otherRoot, "approver")
	if err != nil {
		t.Fatalf("DeriveRoleSeed: %v", err)
	}
	if bytes.Equal(a, d) {
		t.Fatalf("expected different roots to derive different seeds")
	}
}

func TestDeriveRoleSeedValidatesInput(t *testing.T) {
	if _, err := DeriveRoleSeed([]byte{1, 2, 3}, "approver"); err == nil {
		t.Fatal("short root seed accepted")
	}
	root := make([]byte, crypto.Default().SeedSize())
	if _, err := DeriveRoleSeed(root, ""); err == nil {
		t.Fatal("empty role accepted")
	}
	if _, err := DeriveRoleSeed(root, "bad/role"); err == nil {
		t.Fatal("role with path separator accepted")
	}
}

func TestPublicKeyStringFromSeedFormat(t *testing.T) {
	seed := bytes.Repeat([]byte{0x42}, crypto.Default().SeedSize())
	keyString, err := PublicKeyStringFromSeed(seed)
	if err != nil {
		t.Fatalf("PublicKeyStringFromSeed: %v", err)
	}
	if !strings.HasPrefix(keyString, crypto.AlgorithmEd25519+":") {
		t.Fatalf("expected ed25519 prefix, got %q", keyString)
	}

	fn, pub, err := crypto.ParsePublicKeyString(keyString)
	if err != nil {
		t.Fatalf("ParsePublicKeyString: %v", err)
	}
	if fn.Name() != crypto.AlgorithmEd25519 {
		t.Fatalf("parsed algorithm %q", fn.Name())
	}
	kp, err := fn.KeyPairFromSeed(seed)
	if err != nil {
		t.Fatalf("KeyPairFromSeed: %v", err)
	}
	if !pub.Equal(kp.Public) {
		t.Fatal("key string does not round-trip to the seed's public key")
	}
}
