package main

import (
	"crypto/rand"
	"encoding/hex"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"ledgernet.dev/sbmf/crypto"
	"ledgernet.dev/sbmf/keys"
	"ledgernet.dev/sbmf/sbmf"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, out io.Writer, errOut io.Writer) int {
	if len(args) == 0 {
		printUsage(errOut)
		return 2
	}

	switch args[0] {
	case "build":
		return cmdBuild(args[1:], out, errOut)
	case "sign":
		return cmdSign(args[1:], out, errOut)
	case "verify":
		return cmdVerify(args[1:], out, errOut)
	case "hash":
		return cmdHash(args[1:], out, errOut)
	case "id":
		return cmdID(args[1:], out, errOut)
	case "inspect":
		return cmdInspect(args[1:], out, errOut)
	case "key":
		return cmdKey(args[1:], out, errOut)
	case "help", "-h", "--help":
		printUsage(out)
		return 0
	default:
		fmt.Fprintf(errOut, "unknown command: %s\n\n", args[0])
		printUsage(errOut)
		return 2
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "sbmf: SBMF v1 message framing and signing CLI")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  sbmf build --network-id <n> --version <n> --message-type <n> --service-id <n> (--body-hex <hex> | --body-file <file>) [--out <file>]")
	fmt.Fprintln(w, "  sbmf sign --in <file> (--seed-hex <64hex> | --signer <name> [--signer-role <role>] | --key-file <path>) [--out <file>]")
	fmt.Fprintln(w, "  sbmf verify --in <file> --key <alg:base64>")
	fmt.Fprintln(w, "  sbmf hash --in <file>")
	fmt.Fprintln(w, "  sbmf id --in <file>")
	fmt.Fprintln(w, "  sbmf inspect --in <file>")
	fmt.Fprintln(w, "  sbmf key init --name <name> [--seed-hex <64hex>] [--force]")
	fmt.Fprintln(w, "  sbmf key derive --from <name> --role <role> [--force]")
	fmt.Fprintln(w, "  sbmf key list")
	fmt.Fprintln(w, "  sbmf key export --name <name> [--role <role>]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Notes:")
	fmt.Fprintln(w, "  - numeric flags accept decimal or 0x-prefixed hex")
	fmt.Fprintln(w, "  - --seed-hex must be 32 bytes (64 hex chars)")
	fmt.Fprintln(w, "  - keys are stored under ~/.sbmf/keys/<name> (0600 seed files)")
	fmt.Fprintln(w, "  - build and sign write canonical message bytes to stdout (no trailing newline)")
	fmt.Fprintln(w, "  - verify prints true or false and exits 0 only on true")
}

// parseField parses a required numeric flag, accepting decimal and 0x hex.
func parseField(errOut io.Writer, name, value string, bits int) (uint64, bool) {
	if value == "" {
		fmt.Fprintf(errOut, "missing --%s\n", name)
		return 0, false
	}
	n, err := strconv.ParseUint(value, 0, bits)
	if err != nil {
		fmt.Fprintf(errOut, "invalid --%s: %v\n", name, err)
		return 0, false
	}
	return n, true
}

// writeOutput sends message bytes to --out when set, stdout otherwise.
func writeOutput(out io.Writer, errOut io.Writer, path string, b []byte) int {
	if path == "" {
		if _, err := out.Write(b); err != nil {
			fmt.Fprintf(errOut, "write: %v\n", err)
			return 1
		}
		return 0
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		fmt.Fprintf(errOut, "write %s: %v\n", path, err)
		return 1
	}
	return 0
}

// loadMessage reads one framed message from path. Callers check --in first;
// failures here are operational, not usage.
func loadMessage(path string, errOut io.Writer) (*sbmf.Message, bool) {
	raw, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(errOut, "read %s: %v\n", filepath.Base(path), err)
		return nil, false
	}
	msg, err := sbmf.Parse(raw)
	if err != nil {
		fmt.Fprintf(errOut, "parse message: %v\n", err)
		return nil, false
	}
	return msg, true
}

func cmdBuild(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("build", flag.ContinueOnError)
	fs.SetOutput(errOut)

	var networkID string
	var version string
	var messageType string
	var serviceID string
	var bodyHex string
	var bodyFile string
	var outPath string

	fs.StringVar(&networkID, "network-id", "", "Network discriminator (0-255)")
	fs.StringVar(&version, "version", "", "Format version (0-255)")
	fs.StringVar(&messageType, "message-type", "", "Message kind within the service (0-65535)")
	fs.StringVar(&serviceID, "service-id", "", "Target service (0-65535)")
	fs.StringVar(&bodyHex, "body-hex", "", "Body bytes as hex")
	fs.StringVar(&bodyFile, "body-file", "", "File holding raw body bytes")
	fs.StringVar(&outPath, "out", "", "Write message bytes to a file instead of stdout")

	if err := fs.Parse(args); err != nil {
		return 2
	}

	netID, ok := parseField(errOut, "network-id", networkID, 8)
	if !ok {
		return 2
	}
	ver, ok := parseField(errOut, "version", version, 8)
	if !ok {
		return 2
	}
	msgType, ok := parseField(errOut, "message-type", messageType, 16)
	if !ok {
		return 2
	}
	svcID, ok := parseField(errOut, "service-id", serviceID, 16)
	if !ok {
		return 2
	}

	var body []byte
	switch {
	case bodyHex != "" && bodyFile != "":
		fmt.Fprintln(errOut, "conflicting body flags: --body-hex cannot be combined with --body-file")
		return 2
	case bodyHex != "":
		b, err := hex.DecodeString(strings.TrimSpace(bodyHex))
		if err != nil {
			fmt.Fprintf(errOut, "invalid --body-hex: %v\n", err)
			return 2
		}
		body = b
	case bodyFile != "":
		b, err := os.ReadFile(bodyFile)
		if err != nil {
			fmt.Fprintf(errOut, "read --body-file: %v\n", err)
			return 1
		}
		body = b
	default:
		fmt.Fprintln(errOut, "missing body: use --body-hex or --body-file")
		return 2
	}

	msg, err := sbmf.NewBuilder().
		SetNetworkID(byte(netID)).
		SetVersion(byte(ver)).
		SetMessageType(uint16(msgType)).
		SetServiceID(uint16(svcID)).
		SetBody(body).
		Build()
	if err != nil {
		fmt.Fprintf(errOut, "build: %v\n", err)
		return 1
	}
	return writeOutput(out, errOut, outPath, msg.Bytes())
}

func cmdSign(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("sign", flag.ContinueOnError)
	fs.SetOutput(errOut)

	var inPath string
	var outPath string
	var seedHex string
	var signerName string
	var signerRole string
	var keyFile string
	var keyDir string
	var printKey bool

	fs.StringVar(&inPath, "in", "", "Message file to sign")
	fs.StringVar(&outPath, "out", "", "Write signed message bytes to a file instead of stdout")
	fs.StringVar(&seedHex, "seed-hex", "", "Seed as 64 hex chars")
	fs.StringVar(&signerName, "signer", "", "Use a stored key by name (from 'sbmf key init')")
	fs.StringVar(&signerRole, "signer-role", "", "When using --signer, optionally use a derived role key")
	fs.StringVar(&keyFile, "key-file", "", "Path to a seed file (hex) created by 'sbmf key init/derive'")
	fs.StringVar(&keyDir, "key-dir", "", "Keystore directory (default ~/.sbmf/keys)")
	fs.BoolVar(&printKey, "print-key", true, "Print the signer public key to stderr")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if inPath == "" {
		fmt.Fprintln(errOut, "missing --in")
		return 2
	}
	if seedHex == "" && signerName == "" && keyFile == "" {
		fmt.Fprintln(errOut, "missing signer: use --seed-hex, --signer, or --key-file")
		return 2
	}
	if seedHex != "" && (signerName != "" || keyFile != "") {
		fmt.Fprintln(errOut, "conflicting signer flags: --seed-hex cannot be combined with --signer or --key-file")
		return 2
	}
	if signerName != "" && keyFile != "" {
		fmt.Fprintln(errOut, "conflicting signer flags: --signer cannot be combined with --key-file")
		return 2
	}

	store, err := keys.Open(keyDir)
	if err != nil {
		fmt.Fprintf(errOut, "keys: %v\n", err)
		return 1
	}
	kp, err := store.Signer(seedHex, signerName, signerRole, keyFile)
	if err != nil {
		fmt.Fprintf(errOut, "invalid signer: %v\n", err)
		return 2
	}

	msg, ok := loadMessage(inPath, errOut)
	if !ok {
		return 1
	}
	signed, err := msg.Sign(crypto.Default(), kp.Private)
	if err != nil {
		fmt.Fprintf(errOut, "sign: %v\n", err)
		return 1
	}
	if printKey {
		fmt.Fprintf(errOut, "Public-Key: %s\n", crypto.FormatPublicKey(crypto.Default(), kp.Public))
	}
	return writeOutput(out, errOut, outPath, signed.Bytes())
}

func cmdVerify(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("verify", flag.ContinueOnError)
	fs.SetOutput(errOut)

	var inPath string
	var keyString string

	fs.StringVar(&inPath, "in", "", "Message file to verify")
	fs.StringVar(&keyString, "key", "", "Public key as <alg>:<base64>")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if inPath == "" {
		fmt.Fprintln(errOut, "missing --in")
		return 2
	}
	if keyString == "" {
		fmt.Fprintln(errOut, "missing --key")
		return 2
	}

	fn, pub, err := crypto.ParsePublicKeyString(keyString)
	if err != nil {
		fmt.Fprintf(errOut, "invalid --key: %v\n", err)
		return 2
	}
	msg, ok := loadMessage(inPath, errOut)
	if !ok {
		return 1
	}

	valid := msg.Verify(fn, pub)
	_, _ = fmt.Fprintln(out, valid)
	if !valid {
		return 1
	}
	return 0
}

func cmdHash(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("hash", flag.ContinueOnError)
	fs.SetOutput(errOut)

	var inPath string
	fs.StringVar(&inPath, "in", "", "Message file")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if inPath == "" {
		fmt.Fprintln(errOut, "missing --in")
		return 2
	}
	msg, ok := loadMessage(inPath, errOut)
	if !ok {
		return 1
	}
	_, _ = fmt.Fprintln(out, msg.Hash().Hex())
	return 0
}

func cmdID(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("id", flag.ContinueOnError)
	fs.SetOutput(errOut)

	var inPath string
	fs.StringVar(&inPath, "in", "", "Message file")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if inPath == "" {
		fmt.Fprintln(errOut, "missing --in")
		return 2
	}
	msg, ok := loadMessage(inPath, errOut)
	if !ok {
		return 1
	}
	id, err := msg.ID()
	if err != nil {
		fmt.Fprintf(errOut, "cid: %v\n", err)
		return 1
	}
	_, _ = fmt.Fprintln(out, id.String())
	return 0
}

func cmdInspect(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("inspect", flag.ContinueOnError)
	fs.SetOutput(errOut)

	var inPath string
	fs.StringVar(&inPath, "in", "", "Message file")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if inPath == "" {
		fmt.Fprintln(errOut, "missing --in")
		return 2
	}
	msg, ok := loadMessage(inPath, errOut)
	if !ok {
		return 1
	}

	body := msg.Body()
	fmt.Fprintf(out, "network-id: 0x%02x\n", msg.NetworkID())
	fmt.Fprintf(out, "version: %d\n", msg.Version())
	fmt.Fprintf(out, "message-type: 0x%04x\n", msg.MessageType())
	fmt.Fprintf(out, "service-id: 0x%04x\n", msg.ServiceID())
	fmt.Fprintf(out, "payload-length: %d\n", msg.PayloadLength())
	fmt.Fprintf(out, "body-size: %d\n", len(body))
	if len(body) > 0 {
		fmt.Fprintf(out, "body-hex: %x\n", body)
	}
	if sig := msg.Signature(); isZeroSignature(sig) {
		fmt.Fprintln(out, "signature: unsigned (zero placeholder)")
	} else {
		fmt.Fprintf(out, "signature: %x\n", sig)
	}
	fmt.Fprintf(out, "hash: %s\n", msg.Hash())
	if id, err := msg.ID(); err == nil {
		fmt.Fprintf(out, "id: %s\n", id)
	}
	return 0
}

func isZeroSignature(sig []byte) bool {
	for _, b := range sig {
		if b != 0 {
			return false
		}
	}
	return true
}

func cmdKey(args []string, out io.Writer, errOut io.Writer) int {
	if len(args) == 0 {
		printKeyUsage(errOut)
		return 2
	}
	switch args[0] {
	case "init":
		return cmdKeyInit(args[1:], out, errOut)
	case "derive":
		return cmdKeyDerive(args[1:], out, errOut)
	case "list":
		return cmdKeyList(args[1:], out, errOut)
	case "export":
		return cmdKeyExport(args[1:], out, errOut)
	case "help", "-h", "--help":
		printKeyUsage(out)
		return 0
	default:
		fmt.Fprintf(errOut, "unknown key subcommand: %s\n\n", args[0])
		printKeyUsage(errOut)
		return 2
	}
}

func printKeyUsage(w io.Writer) {
	fmt.Fprintln(w, "sbmf key: minimal local key management")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  sbmf key init --name <name> [--seed-hex <64hex>] [--force]")
	fmt.Fprintln(w, "  sbmf key derive --from <name> --role <role> [--force]")
	fmt.Fprintln(w, "  sbmf key list")
	fmt.Fprintln(w, "  sbmf key export --name <name> [--role <role>]")
}

func cmdKeyInit(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("key init", flag.ContinueOnError)
	fs.SetOutput(errOut)

	var name string
	var seedHex string
	var keyDir string
	var force bool

	fs.StringVar(&name, "name", "", "Key name (directory under the keystore)")
	fs.StringVar(&seedHex, "seed-hex", "", "Optional seed as 64 hex chars (for reproducible setups)")
	fs.StringVar(&keyDir, "key-dir", "", "Keystore directory (default ~/.sbmf/keys)")
	fs.BoolVar(&force, "force", false, "Overwrite existing key files")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if name == "" {
		fmt.Fprintln(errOut, "missing --name")
		return 2
	}
	if err := keys.CheckName(name); err != nil {
		fmt.Fprintf(errOut, "invalid --name: %v\n", err)
		return 2
	}
	store, err := keys.Open(keyDir)
	if err != nil {
		fmt.Fprintf(errOut, "keys: %v\n", err)
		return 1
	}

	var seed []byte
	if seedHex != "" {
		seed, err = keys.ParseSeedHex(seedHex)
		if err != nil {
			fmt.Fprintf(errOut, "invalid --seed-hex: %v\n", err)
			return 2
		}
	} else {
		seed = make([]byte, crypto.Default().SeedSize())
		if _, err := rand.Read(seed); err != nil {
			fmt.Fprintf(errOut, "rand: %v\n", err)
			return 1
		}
	}

	keyString, path, err := store.Init(name, seed, force)
	if err != nil {
		fmt.Fprintf(errOut, "write key: %v\n", err)
		return 1
	}
	fmt.Fprintf(out, "Created root key: %s\n", keyString)
	fmt.Fprintf(out, "Stored at: %s\n", path)
	return 0
}

func cmdKeyDerive(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("key derive", flag.ContinueOnError)
	fs.SetOutput(errOut)

	var from string
	var role string
	var keyDir string
	var force bool

	fs.StringVar(&from, "from", "", "Root key name")
	fs.StringVar(&role, "role", "", "Role identifier (e.g. validator, auditor)")
	fs.StringVar(&keyDir, "key-dir", "", "Keystore directory (default ~/.sbmf/keys)")
	fs.BoolVar(&force, "force", false, "Overwrite existing key files")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if from == "" {
		fmt.Fprintln(errOut, "missing --from")
		return 2
	}
	if role == "" {
		fmt.Fprintln(errOut, "missing --role")
		return 2
	}
	if err := keys.CheckName(from); err != nil {
		fmt.Fprintf(errOut, "invalid --from: %v\n", err)
		return 2
	}
	if err := keys.CheckRole(role); err != nil {
		fmt.Fprintf(errOut, "invalid --role: %v\n", err)
		return 2
	}
	store, err := keys.Open(keyDir)
	if err != nil {
		fmt.Fprintf(errOut, "keys: %v\n", err)
		return 1
	}
	keyString, path, err := store.Derive(from, role, force)
	if err != nil {
		fmt.Fprintf(errOut, "derive role key: %v\n", err)
		return 1
	}
	fmt.Fprintf(out, "Created role key: %s\n", keyString)
	fmt.Fprintf(out, "Stored at: %s\n", path)
	return 0
}

func cmdKeyList(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("key list", flag.ContinueOnError)
	fs.SetOutput(errOut)

	var keyDir string
	fs.StringVar(&keyDir, "key-dir", "", "Keystore directory (default ~/.sbmf/keys)")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	store, err := keys.Open(keyDir)
	if err != nil {
		fmt.Fprintf(errOut, "keys: %v\n", err)
		return 1
	}
	entries, err := store.List()
	if err != nil {
		fmt.Fprintf(errOut, "list keys: %v\n", err)
		return 1
	}
	for _, e := range entries {
		fmt.Fprintf(out, "%s\n", e.Name)
		for _, r := range e.Roles {
			fmt.Fprintf(out, "  - %s\n", r)
		}
	}
	return 0
}

func cmdKeyExport(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("key export", flag.ContinueOnError)
	fs.SetOutput(errOut)

	var name string
	var role string
	var keyDir string

	fs.StringVar(&name, "name", "", "Key name")
	fs.StringVar(&role, "role", "", "Optional role (if set, exports the derived role key)")
	fs.StringVar(&keyDir, "key-dir", "", "Keystore directory (default ~/.sbmf/keys)")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if name == "" {
		fmt.Fprintln(errOut, "missing --name")
		return 2
	}
	if err := keys.CheckName(name); err != nil {
		fmt.Fprintf(errOut, "invalid --name: %v\n", err)
		return 2
	}
	if role != "" {
		if err := keys.CheckRole(role); err != nil {
			fmt.Fprintf(errOut, "invalid --role: %v\n", err)
			return 2
		}
	}
	store, err := keys.Open(keyDir)
	if err != nil {
		fmt.Fprintf(errOut, "keys: %v\n", err)
		return 1
	}
	keyString, err := store.Export(name, role)
	if err != nil {
		fmt.Fprintf(errOut, "export key: %v\n", err)
		return 1
	}
	_, _ = fmt.Fprintln(out, keyString)
	return 0
}
