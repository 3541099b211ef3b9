package main

import (
	"bytes"
	"encoding/hex"
	"flag"
	"fmt"
	"os"

	"ledgernet.dev/sbmf/sbmf"
)

// One framing vector: header fields plus body. The signable prefix is not
// stored here; it is recomputed through the codec on every run, so the file
// can only ever disagree with the implementation, never with itself.
type vector struct {
	name        string
	networkID   byte
	version     byte
	messageType uint16
	serviceID   uint16
	bodyHex     string
}

var vectors = []vector{
	{"baseline", 0x01, 0x02, 0xB204, 0xA103, "0000"},
	{"empty-body", 0x00, 0x01, 0x0000, 0x0080, ""},
	{"max-header-fields", 0xFF, 0x7F, 0xFFFF, 0x0001, "deadbeef"},
	{"ascii-body", 0x10, 0x01, 0x00A0, 0x0B00, "73626d66"},
}

const header = `# SBMF v1 framing conformance vectors.
#
# Each vector lists header fields and body, plus the expected canonical
# signable prefix (header || body) in hex. The full unsigned encoding is the
# prefix followed by the 64-byte zero signature placeholder.
#
# Regenerate with: go run ./internal/tools/sbmf-vector-gen
`

func main() {
	outPath := flag.String("out", "testdata/conformance/sbmf-v1/vectors.toml", "output path (relative to the repo root)")
	flag.Parse()

	var buf bytes.Buffer
	buf.WriteString(header)
	for _, v := range vectors {
		body, err := hex.DecodeString(v.bodyHex)
		if err != nil {
			fatalf("vector %s: bad body hex: %v", v.name, err)
		}
		m, err := sbmf.NewBuilder().
			SetNetworkID(v.networkID).
			SetVersion(v.version).
			SetMessageType(v.messageType).
			SetServiceID(v.serviceID).
			SetBody(body).
			Build()
		if err != nil {
			fatalf("vector %s: build: %v", v.name, err)
		}

		fmt.Fprintf(&buf, "\n[[vector]]\n")
		fmt.Fprintf(&buf, "name = %q\n", v.name)
		fmt.Fprintf(&buf, "network_id = 0x%02X\n", v.networkID)
		fmt.Fprintf(&buf, "version = 0x%02X\n", v.version)
		fmt.Fprintf(&buf, "message_type = 0x%04X\n", v.messageType)
		fmt.Fprintf(&buf, "service_id = 0x%04X\n", v.serviceID)
		fmt.Fprintf(&buf, "body_hex = %q\n", v.bodyHex)
		fmt.Fprintf(&buf, "signable_hex = \"%x\"\n", m.SignedBytes())
	}

	if err := os.WriteFile(*outPath, buf.Bytes(), 0o644); err != nil {
		fatalf("write vectors: %v", err)
	}
	fmt.Printf("wrote %s (%d vectors)\n", *outPath, len(vectors))
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
