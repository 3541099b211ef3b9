package sbmf

import (
	"bytes"
	"testing"

	"ledgernet.dev/sbmf/crypto"
)

func mustKeyPair(t *testing.T, fill byte) crypto.KeyPair {
	t.Helper()
	fn := crypto.Default()
	kp, err := fn.KeyPairFromSeed(bytes.Repeat([]byte{fill}, fn.SeedSize()))
	if err != nil {
		t.Fatalf("KeyPairFromSeed: %v", err)
	}
	return kp
}

func TestSignVerifyRoundTrip(t *testing.T) {
	fn := crypto.Default()
	kp := mustKeyPair(t, 0x42)
	m := mustBuildFixture(t)

	signed, err := m.Sign(fn, kp.Private)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if !signed.Verify(fn, kp.Public) {
		t.Fatal("freshly signed message does not verify")
	}
}

func TestVerifyWrongKeyIsFalse(t *testing.T) {
	fn := crypto.Default()
	signer := mustKeyPair(t, 0x01)
	other := mustKeyPair(t, 0x02)

	signed, err := mustBuildFixture(t).Sign(fn, signer.Private)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if signed.Verify(fn, other.Public) {
		t.Fatal("message verified under a different key")
	}
}

func TestSignLeavesReceiverUnchanged(t *testing.T) {
	fn := crypto.Default()
	kp := mustKeyPair(t, 0x11)
	m := mustBuildFixture(t)
	before := m.Bytes()

	signed, err := m.Sign(fn, kp.Private)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	if !bytes.Equal(m.Bytes(), before) {
		t.Fatal("signing mutated the receiver")
	}
	if !bytes.Equal(m.Signature(), make([]byte, SignatureSize)) {
		t.Fatal("receiver's signature field changed")
	}
	if !bytes.Equal(signed.SignedBytes(), m.SignedBytes()) {
		t.Fatal("signing changed the signable prefix")
	}
	if signed.Hash() != m.Hash() {
		t.Fatal("signing changed the message identity")
	}
	if bytes.Equal(signed.Signature(), m.Signature()) {
		t.Fatal("signed message still carries the placeholder signature")
	}
}

func TestPlaceholderSignatureVerifiesFalse(t *testing.T) {
	fn := crypto.Default()
	kp := mustKeyPair(t, 0x33)
	m := mustBuildFixture(t)
	if m.Verify(fn, kp.Public) {
		t.Fatal("unsigned message verified")
	}
}

func TestVerifyIsPureAndRepeatable(t *testing.T) {
	fn := crypto.Default()
	kp := mustKeyPair(t, 0x44)
	signed, err := mustBuildFixture(t).Sign(fn, kp.Private)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	snapshot := signed.Bytes()
	for i := 0; i < 4; i++ {
		if !signed.Verify(fn, kp.Public) {
			t.Fatalf("iteration %d: verification flipped to false", i)
		}
	}
	if !bytes.Equal(signed.Bytes(), snapshot) {
		t.Fatal("Verify mutated the message")
	}
}

func TestTamperingFlipsVerifyToFalse(t *testing.T) {
	fn := crypto.Default()
	kp := mustKeyPair(t, 0x55)
	signed, err := mustBuildFixture(t).Sign(fn, kp.Private)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	good := signed.Bytes()

	// Flip one byte per region; lengths stay intact so Parse succeeds and
	// the damage is visible only to Verify.
	regions := map[string]int{
		"network id":     offNetworkID,
		"version":        offVersion,
		"message type":   offMessageType,
		"service id":     offServiceID,
		"body":           offBody,
		"signature byte": len(good) - 1,
	}
	for name, idx := range regions {
		tampered := append([]byte(nil), good...)
		tampered[idx] ^= 0x01
		m, err := Parse(tampered)
		if err != nil {
			t.Fatalf("%s: Parse: %v", name, err)
		}
		if m.Verify(fn, kp.Public) {
			t.Errorf("%s: tampered message verified", name)
		}
	}
}

func TestResignOverwritesSignature(t *testing.T) {
	fn := crypto.Default()
	k1 := mustKeyPair(t, 0x61)
	k2 := mustKeyPair(t, 0x62)

	first, err := mustBuildFixture(t).Sign(fn, k1.Private)
	if err != nil {
		t.Fatalf("first Sign: %v", err)
	}
	second, err := first.Sign(fn, k2.Private)
	if err != nil {
		t.Fatalf("second Sign: %v", err)
	}

	if !second.Verify(fn, k2.Public) {
		t.Fatal("re-signed message does not verify under the new key")
	}
	if second.Verify(fn, k1.Public) {
		t.Fatal("re-signed message still verifies under the old key")
	}
	if !first.Verify(fn, k1.Public) {
		t.Fatal("re-signing invalidated the original instance")
	}
}

func TestSignedMessageSurvivesTheWire(t *testing.T) {
	fn := crypto.Default()
	kp := mustKeyPair(t, 0x71)
	signed, err := mustBuildFixture(t).Sign(fn, kp.Private)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	parsed, err := Parse(signed.Bytes())
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !parsed.Verify(fn, kp.Public) {
		t.Fatal("signature did not survive a parse round trip")
	}
}

func TestDilithium3CannotFrame(t *testing.T) {
	fn, err := crypto.Lookup(crypto.AlgorithmDilithium3)
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	kp, err := fn.KeyPairFromSeed(bytes.Repeat([]byte{0x42}, fn.SeedSize()))
	if err != nil {
		t.Fatalf("KeyPairFromSeed: %v", err)
	}

	_, err = mustBuildFixture(t).Sign(fn, kp.Private)
	if err == nil {
		t.Fatal("Sign framed a dilithium3 signature into the 64-byte field")
	}
	if !IsKind(err, KindCrypto) {
		t.Fatalf("err = %v, want Crypto kind", err)
	}
	if RuleID(err) != "SBMF-CRYPTO-004" {
		t.Fatalf("RuleID = %q, want SBMF-CRYPTO-004", RuleID(err))
	}
}

func TestVerifyNilSafety(t *testing.T) {
	fn := crypto.Default()
	kp := mustKeyPair(t, 0x13)
	var nilMsg *Message
	if nilMsg.Verify(fn, kp.Public) {
		t.Fatal("nil message verified")
	}
	if mustBuildFixture(t).Verify(nil, kp.Public) {
		t.Fatal("nil function verified")
	}
}

func TestSignRejectsBadPrivateKey(t *testing.T) {
	fn := crypto.Default()
	_, err := mustBuildFixture(t).Sign(fn, crypto.PrivateKey{})
	if err == nil {
		t.Fatal("Sign accepted a zero value private key")
	}
	if !IsKind(err, KindCrypto) {
		t.Fatalf("err = %v, want Crypto kind", err)
	}
}
