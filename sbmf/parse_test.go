package sbmf

import (
	"bytes"
	"encoding/binary"
	"testing"
)

func TestParseRoundTrip(t *testing.T) {
	m := mustBuildFixture(t)
	parsed, err := Parse(m.Bytes())
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !bytes.Equal(parsed.Bytes(), m.Bytes()) {
		t.Fatal("parse round trip changed the bytes")
	}
	if parsed.NetworkID() != m.NetworkID() ||
		parsed.Version() != m.Version() ||
		parsed.MessageType() != m.MessageType() ||
		parsed.ServiceID() != m.ServiceID() ||
		!bytes.Equal(parsed.Body(), m.Body()) {
		t.Fatal("parse round trip changed field values")
	}
}

func TestParseMinimalMessage(t *testing.T) {
	raw := make([]byte, MinMessageSize)
	binary.LittleEndian.PutUint32(raw[offPayloadLength:], MinMessageSize)
	m, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse(minimal): %v", err)
	}
	if len(m.Body()) != 0 {
		t.Fatalf("Body() = %x, want empty", m.Body())
	}
}

func TestParseRejectsTruncated(t *testing.T) {
	for _, n := range []int{0, 1, HeaderSize, MinMessageSize - 1} {
		_, err := Parse(make([]byte, n))
		if err == nil {
			t.Errorf("Parse accepted %d bytes", n)
			continue
		}
		if !IsKind(err, KindParse) {
			t.Errorf("%d bytes: err = %v, want Parse kind", n, err)
		}
		if RuleID(err) != "SBMF-PARSE-001" {
			t.Errorf("%d bytes: RuleID = %q, want SBMF-PARSE-001", n, RuleID(err))
		}
	}
}

func TestParseRejectsLengthMismatch(t *testing.T) {
	m := mustBuildFixture(t)
	good := m.Bytes()

	cases := []struct {
		name string
		in   []byte
	}{
		{"one byte chopped", good[:len(good)-1]},
		{"one byte appended", append(append([]byte(nil), good...), 0x00)},
		{"declared one short", func() []byte {
			b := append([]byte(nil), good...)
			binary.LittleEndian.PutUint32(b[offPayloadLength:], uint32(len(b)-1))
			return b
		}()},
		{"declared one long", func() []byte {
			b := append([]byte(nil), good...)
			binary.LittleEndian.PutUint32(b[offPayloadLength:], uint32(len(b)+1))
			return b
		}()},
		{"declared zero", func() []byte {
			b := append([]byte(nil), good...)
			binary.LittleEndian.PutUint32(b[offPayloadLength:], 0)
			return b
		}()},
	}
	for _, tc := range cases {
		_, err := Parse(tc.in)
		if err == nil {
			t.Errorf("%s: Parse accepted the input", tc.name)
			continue
		}
		if !IsKind(err, KindParse) {
			t.Errorf("%s: err = %v, want Parse kind", tc.name, err)
		}
		if RuleID(err) != "SBMF-PARSE-002" && RuleID(err) != "SBMF-PARSE-001" {
			t.Errorf("%s: unexpected RuleID %q", tc.name, RuleID(err))
		}
	}
}

func TestCanonicalizeIdentityAndIdempotence(t *testing.T) {
	m := mustBuildFixture(t)
	in := m.Bytes()

	canon, err := Canonicalize(in)
	if err != nil {
		t.Fatalf("Canonicalize: %v", err)
	}
	if !bytes.Equal(canon, in) {
		t.Fatal("canonical form differs from valid input")
	}

	again, err := Canonicalize(canon)
	if err != nil {
		t.Fatalf("Canonicalize(canonical): %v", err)
	}
	if !bytes.Equal(again, canon) {
		t.Fatal("canonicalization is not idempotent")
	}

	if _, err := Canonicalize(in[:10]); err == nil {
		t.Fatal("Canonicalize accepted truncated input")
	}
}
