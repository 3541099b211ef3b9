package keys

import (
	"bytes"
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"ledgernet.dev/sbmf/crypto"
)

func testSeed(fill byte) []byte {
	return bytes.Repeat([]byte{fill}, crypto.Default().SeedSize())
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return s
}

func TestInitAndExport(t *testing.T) {
	s := newTestStore(t)
	keyString, path, err := s.Init("node1", testSeed(0x01), false)
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	if want := filepath.Join(s.Directory, "node1", "root.key"); path != want {
		t.Fatalf("path = %q, want %q", path, want)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat seed file: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Fatalf("seed file mode = %o, want 600", perm)
	}

	exported, err := s.Export("node1", "")
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if exported != keyString {
		t.Fatalf("Export = %q, Init returned %q", exported, keyString)
	}
	if !strings.HasPrefix(exported, "ed25519:") {
		t.Fatalf("key string %q missing algorithm prefix", exported)
	}
}

func TestInitRefusesOverwrite(t *testing.T) {
	s := newTestStore(t)
	if _, _, err := s.Init("node1", testSeed(0x01), false); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if _, _, err := s.Init("node1", testSeed(0x02), false); err == nil {
		t.Fatal("second Init silently rotated the root key")
	}
	keyString, _, err := s.Init("node1", testSeed(0x02), true)
	if err != nil {
		t.Fatalf("Init with overwrite: %v", err)
	}
	exported, err := s.Export("node1", "")
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if exported != keyString {
		t.Fatal("overwrite did not take effect")
	}
}

func TestDeriveRoleKey(t *testing.T) {
	s := newTestStore(t)
	if _, _, err := s.Init("node1", testSeed(0x01), false); err != nil {
		t.Fatalf("Init: %v", err)
	}
	keyString, path, err := s.Derive("node1", "validator", false)
	if err != nil {
		t.Fatalf("Derive: %v", err)
	}
	if want := filepath.Join(s.Directory, "node1", "roles", "validator.key"); path != want {
		t.Fatalf("path = %q, want %q", path, want)
	}

	exported, err := s.Export("node1", "validator")
	if err != nil {
		t.Fatalf("Export role: %v", err)
	}
	if exported != keyString {
		t.Fatalf("Export = %q, Derive returned %q", exported, keyString)
	}

	// The stored role seed must match the pure derivation.
	wantSeed, err := DeriveRoleSeed(testSeed(0x01), "validator")
	if err != nil {
		t.Fatalf("DeriveRoleSeed: %v", err)
	}
	gotSeed, err := s.LoadSeed("", "node1", "validator", "")
	if err != nil {
		t.Fatalf("LoadSeed: %v", err)
	}
	if !bytes.Equal(gotSeed, wantSeed) {
		t.Fatal("stored role seed differs from DeriveRoleSeed")
	}
}

func TestDeriveRequiresRootKey(t *testing.T) {
	s := newTestStore(t)
	if _, _, err := s.Derive("ghost", "validator", false); err == nil {
		t.Fatal("Derive succeeded without a root key")
	}
}

func TestLoadSeedPrecedence(t *testing.T) {
	s := newTestStore(t)
	if _, _, err := s.Init("node1", testSeed(0x01), false); err != nil {
		t.Fatalf("Init: %v", err)
	}

	fileSeed := testSeed(0x03)
	seedFile := filepath.Join(t.TempDir(), "external.key")
	if err := os.WriteFile(seedFile, []byte(hex.EncodeToString(fileSeed)+"\n"), 0o600); err != nil {
		t.Fatalf("write seed file: %v", err)
	}

	// Explicit hex wins over everything.
	hexSeed := testSeed(0x02)
	got, err := s.LoadSeed(hex.EncodeToString(hexSeed), "node1", "", seedFile)
	if err != nil {
		t.Fatalf("LoadSeed(hex): %v", err)
	}
	if !bytes.Equal(got, hexSeed) {
		t.Fatal("explicit hex seed did not take precedence")
	}

	// A seed file wins over a stored name.
	got, err = s.LoadSeed("", "node1", "", seedFile)
	if err != nil {
		t.Fatalf("LoadSeed(file): %v", err)
	}
	if !bytes.Equal(got, fileSeed) {
		t.Fatal("seed file did not take precedence over the store")
	}

	// A stored name resolves last.
	got, err = s.LoadSeed("", "node1", "", "")
	if err != nil {
		t.Fatalf("LoadSeed(name): %v", err)
	}
	if !bytes.Equal(got, testSeed(0x01)) {
		t.Fatal("stored seed mismatch")
	}

	if _, err := s.LoadSeed("", "", "", ""); err == nil {
		t.Fatal("LoadSeed with no selector succeeded")
	}
}

func TestSignerProducesWorkingKeyPair(t *testing.T) {
	s := newTestStore(t)
	if _, _, err := s.Init("node1", testSeed(0x01), false); err != nil {
		t.Fatalf("Init: %v", err)
	}
	kp, err := s.Signer("", "node1", "", "")
	if err != nil {
		t.Fatalf("Signer: %v", err)
	}
	fn := crypto.Default()
	msg := []byte("keystore signer")
	sig, err := fn.Sign(msg, kp.Private)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if !fn.Verify(msg, sig, kp.Public) {
		t.Fatal("keystore-loaded key pair cannot round-trip a signature")
	}
}

func TestListKeys(t *testing.T) {
	s := newTestStore(t)
	entries, err := s.List()
	if err != nil {
		t.Fatalf("List on empty store: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("List on empty store = %v", entries)
	}

	for _, name := range []string{"beta", "alpha"} {
		if _, _, err := s.Init(name, testSeed(0x01), false); err != nil {
			t.Fatalf("Init(%s): %v", name, err)
		}
	}
	for _, role := range []string{"validator", "auditor"} {
		if _, _, err := s.Derive("alpha", role, false); err != nil {
			t.Fatalf("Derive(alpha, %s): %v", role, err)
		}
	}

	entries, err = s.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 2 || entries[0].Name != "alpha" || entries[1].Name != "beta" {
		t.Fatalf("List = %+v, want alpha then beta", entries)
	}
	if len(entries[0].Roles) != 2 || entries[0].Roles[0] != "auditor" || entries[0].Roles[1] != "validator" {
		t.Fatalf("alpha roles = %v, want sorted [auditor validator]", entries[0].Roles)
	}
	if len(entries[1].Roles) != 0 {
		t.Fatalf("beta roles = %v, want none", entries[1].Roles)
	}
}

func TestCheckNameAndRole(t *testing.T) {
	for _, ok := range []string{"node1", "Node-1", "a_b-C9"} {
		if err := CheckName(ok); err != nil {
			t.Errorf("CheckName(%q): %v", ok, err)
		}
	}
	for _, bad := range []string{"", "bad/name", "dot.dot", "space x", "ünïcode", ".."} {
		if err := CheckName(bad); err == nil {
			t.Errorf("CheckName(%q): expected error", bad)
		}
		if bad != "" {
			if err := CheckRole(bad); err == nil {
				t.Errorf("CheckRole(%q): expected error", bad)
			}
		}
	}
}

func TestParseSeedHex(t *testing.T) {
	seed := testSeed(0x17)
	enc := hex.EncodeToString(seed)

	for _, in := range []string{enc, "0x" + enc, "  " + enc + "\n"} {
		got, err := ParseSeedHex(in)
		if err != nil {
			t.Errorf("ParseSeedHex(%q): %v", in, err)
			continue
		}
		if !bytes.Equal(got, seed) {
			t.Errorf("ParseSeedHex(%q) decoded wrong bytes", in)
		}
	}

	for _, bad := range []string{"", "abcd", enc + "00", "zz" + enc[2:]} {
		if _, err := ParseSeedHex(bad); err == nil {
			t.Errorf("ParseSeedHex(%q): expected error", bad)
		}
	}
}
