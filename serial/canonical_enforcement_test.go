package serial

import (
	"bytes"
	"errors"
	"testing"
)

// Every varint-backed serializer must reject the same malformed shapes:
// truncated, padded (non-minimal), overflowing, and trailing-garbage inputs.
func TestVarintRejectionGrid(t *testing.T) {
	deserializers := []struct {
		name string
		fn   func([]byte) error
	}{
		{"uint64", func(b []byte) error { _, err := Uint64.Deserialize(b); return err }},
		{"uint32", func(b []byte) error { _, err := Uint32.Deserialize(b); return err }},
		{"sint64", func(b []byte) error { _, err := Sint64.Deserialize(b); return err }},
		{"sint32", func(b []byte) error { _, err := Sint32.Deserialize(b); return err }},
	}

	cases := []struct {
		name string
		in   []byte
		want error
	}{
		{"empty input", nil, ErrTruncated},
		{"lone continuation byte", []byte{0x80}, ErrTruncated},
		{"continuation at end", []byte{0xFF, 0xFF, 0x80}, ErrTruncated},
		{"padded zero", []byte{0x80, 0x00}, ErrNonCanonical},
		{"padded 300", []byte{0xAC, 0x82, 0x80, 0x00}, ErrNonCanonical},
		{"trailing garbage", []byte{0x01, 0x00}, ErrTrailingBytes},
		{"eleven bytes", bytes.Repeat([]byte{0xFF}, 11), ErrOverflow},
		{"65 bit value", append(bytes.Repeat([]byte{0xFF}, 9), 0x7F), ErrOverflow},
	}

	for _, d := range deserializers {
		for _, tc := range cases {
			err := d.fn(tc.in)
			if err == nil {
				t.Errorf("%s/%s: accepted %x", d.name, tc.name, tc.in)
				continue
			}
			if !errors.Is(err, tc.want) {
				t.Errorf("%s/%s: err = %v, want %v", d.name, tc.name, err, tc.want)
			}
			if !errors.Is(err, ErrMalformed) {
				t.Errorf("%s/%s: err = %v does not match ErrMalformed", d.name, tc.name, err)
			}
		}
	}
}

// A 64-bit value must never be silently truncated into a 32-bit serializer.
func TestNoSilentNarrowing(t *testing.T) {
	twoTo32 := []byte{0x80, 0x80, 0x80, 0x80, 0x10} // 1 << 32, minimal encoding
	if _, err := Uint64.Deserialize(twoTo32); err != nil {
		t.Fatalf("sanity: uint64 rejected 1<<32: %v", err)
	}
	if _, err := Uint32.Deserialize(twoTo32); !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("uint32 on 1<<32: err = %v, want ErrOutOfRange", err)
	}

	// zigzag(1<<32) decodes to 1<<31, one past MaxInt32.
	if _, err := Sint32.Deserialize(twoTo32); !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("sint32 on zigzag 1<<32: err = %v, want ErrOutOfRange", err)
	}
	if _, err := Sint64.Deserialize(twoTo32); err != nil {
		t.Fatalf("sanity: sint64 rejected zigzag 1<<32: %v", err)
	}
}

func TestSint32AcceptsFullRange(t *testing.T) {
	// MinInt32 zigzags to 2^32-1, the largest encoding Sint32 may accept.
	minEnc := Sint32.Serialize(-1 << 31)
	if !bytes.Equal(minEnc, []byte{0xFF, 0xFF, 0xFF, 0xFF, 0x0F}) {
		t.Fatalf("Serialize(MinInt32) = %x", minEnc)
	}
	v, err := Sint32.Deserialize(minEnc)
	if err != nil {
		t.Fatalf("Deserialize(MinInt32 encoding): %v", err)
	}
	if v != -1<<31 {
		t.Fatalf("got %d, want MinInt32", v)
	}
}

func TestBoolStrictness(t *testing.T) {
	cases := []struct {
		in   []byte
		want error
	}{
		{nil, ErrWrongLength},
		{[]byte{0, 0}, ErrWrongLength},
		{[]byte{2}, ErrOutOfRange},
		{[]byte{0xFF}, ErrOutOfRange},
	}
	for _, tc := range cases {
		if _, err := Bool.Deserialize(tc.in); !errors.Is(err, tc.want) {
			t.Errorf("Bool.Deserialize(%x): err = %v, want %v", tc.in, err, tc.want)
		}
	}
}

func TestFixedWidthStrictness(t *testing.T) {
	for _, n := range []int{0, 1, 3, 5, 8} {
		if _, err := Fixed32.Deserialize(make([]byte, n)); !errors.Is(err, ErrWrongLength) {
			t.Errorf("Fixed32 on %d bytes: err = %v, want ErrWrongLength", n, err)
		}
	}
	for _, n := range []int{0, 4, 7, 9} {
		if _, err := Fixed64.Deserialize(make([]byte, n)); !errors.Is(err, ErrWrongLength) {
			t.Errorf("Fixed64 on %d bytes: err = %v, want ErrWrongLength", n, err)
		}
		if _, err := Float64.Deserialize(make([]byte, n)); !errors.Is(err, ErrWrongLength) {
			t.Errorf("Float64 on %d bytes: err = %v, want ErrWrongLength", n, err)
		}
	}
}

func TestStringRejectsInvalidUTF8(t *testing.T) {
	bad := [][]byte{
		{0xFF},
		{0xC0, 0xAF},       // overlong encoding
		{0xED, 0xA0, 0x80}, // UTF-16 surrogate half
		{'o', 'k', 0x80},   // stray continuation byte
	}
	for _, in := range bad {
		if _, err := String.Deserialize(in); !errors.Is(err, ErrInvalidUTF8) {
			t.Errorf("String.Deserialize(%x): err = %v, want ErrInvalidUTF8", in, err)
		}
	}
}

func TestDigestAndKeyWidthStrictness(t *testing.T) {
	for _, n := range []int{0, 31, 33, 64} {
		if _, err := Digest.Deserialize(make([]byte, n)); !errors.Is(err, ErrWrongLength) {
			t.Errorf("Digest on %d bytes: err = %v, want ErrWrongLength", n, err)
		}
		if _, err := PublicKey.Deserialize(make([]byte, n)); !errors.Is(err, ErrWrongLength) {
			t.Errorf("PublicKey on %d bytes: err = %v, want ErrWrongLength", n, err)
		}
	}
}

func TestIsMalformed(t *testing.T) {
	_, err := Uint64.Deserialize([]byte{0x80})
	if !IsMalformed(err) {
		t.Fatalf("IsMalformed(%v) = false", err)
	}
	if IsMalformed(nil) {
		t.Fatal("IsMalformed(nil) = true")
	}
}
