// Package keys implements the local filesystem keystore used by the SBMF
// CLI and the signer daemon.
//
// Layout: <dir>/<name>/root.key holds a hex-encoded ed25519 seed; roles
// derived from it live under <dir>/<name>/roles/<role>.key. Seed files are
// written 0600 and never overwritten unless explicitly requested.
//
// The keystore manages ed25519 seeds only. Other algorithms load their seeds
// from explicit files or flags.
package keys

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"ledgernet.dev/sbmf/crypto"
)

// Store is a directory-backed keystore. Methods are safe for concurrent use
// to the extent the underlying filesystem is; there is no locking beyond
// O_EXCL creation.
type Store struct {
	Directory string
}

// Entry describes one named key and its derived roles.
type Entry struct {
	Name  string
	Roles []string
}

// DefaultDirectory returns the conventional keystore location under the
// user's home directory.
func DefaultDirectory() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".sbmf", "keys"), nil
}

// Open returns a Store rooted at directory, or at DefaultDirectory when
// directory is empty. The directory is created lazily on first write.
func Open(directory string) (*Store, error) {
	if directory == "" {
		var err error
		directory, err = DefaultDirectory()
		if err != nil {
			return nil, err
		}
	}
	return &Store{Directory: directory}, nil
}

func (s *Store) rootKeyPath(name string) string {
	return filepath.Join(s.Directory, name, "root.key")
}

func (s *Store) roleKeyPath(name, role string) string {
	return filepath.Join(s.Directory, name, "roles", role+".key")
}

// CheckName validates a key name: non-empty, [A-Za-z0-9_-] only. Names
// become directory components, so anything else is rejected.
func CheckName(name string) error {
	return checkIdentifier("name", name)
}

// CheckRole validates a role with the same charset as CheckName.
func CheckRole(role string) error {
	return checkIdentifier("role", role)
}

func checkIdentifier(what, s string) error {
	if s == "" {
		return fmt.Errorf("keys: %s cannot be empty", what)
	}
	for _, char := range s {
		if (char >= 'a' && char <= 'z') || (char >= 'A' && char <= 'Z') ||
			(char >= '0' && char <= '9') || char == '-' || char == '_' {
			continue
		}
		return fmt.Errorf("keys: invalid character %q in %s", char, what)
	}
	return nil
}

// ParseSeedHex decodes a hex seed, tolerating whitespace and an 0x prefix,
// and enforces the ed25519 seed width.
func ParseSeedHex(seedHex string) ([]byte, error) {
	seedHex = strings.TrimSpace(seedHex)
	seedHex = strings.TrimPrefix(seedHex, "0x")
	data, err := hex.DecodeString(seedHex)
	if err != nil {
		return nil, fmt.Errorf("keys: invalid seed hex: %w", err)
	}
	if want := crypto.Default().SeedSize(); len(data) != want {
		return nil, fmt.Errorf("keys: expected seed length of %d bytes, got %d", want, len(data))
	}
	return data, nil
}

func (s *Store) writeSeedFile(path string, seed []byte, overwrite bool) error {
	if want := crypto.Default().SeedSize(); len(seed) != want {
		return fmt.Errorf("keys: expected seed length of %d bytes", want)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	flags := os.O_WRONLY | os.O_CREATE
	if overwrite {
		flags |= os.O_TRUNC
	} else {
		flags |= os.O_EXCL
	}
	file, err := os.OpenFile(path, flags, 0o600)
	if err != nil {
		return err
	}
	defer file.Close()
	if _, err := file.WriteString(hex.EncodeToString(seed) + "\n"); err != nil {
		return err
	}
	return file.Close()
}

func (s *Store) readSeedFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseSeedHex(strings.TrimSpace(string(data)))
}

// Init writes seed as the root key for name and returns the public key
// string plus the file path. Without overwrite, an existing root key makes
// Init fail rather than silently rotate a key.
func (s *Store) Init(name string, seed []byte, overwrite bool) (keyString, path string, err error) {
	if err := CheckName(name); err != nil {
		return "", "", err
	}
	path = s.rootKeyPath(name)
	if err := s.writeSeedFile(path, seed, overwrite); err != nil {
		return "", "", err
	}
	keyString, err = PublicKeyStringFromSeed(seed)
	if err != nil {
		return "", "", err
	}
	return keyString, path, nil
}

// Derive deterministically derives the role key for an existing root key,
// stores it, and returns its public key string plus the file path.
func (s *Store) Derive(from, role string, overwrite bool) (keyString, path string, err error) {
	if err := CheckName(from); err != nil {
		return "", "", err
	}
	if err := CheckRole(role); err != nil {
		return "", "", err
	}
	rootSeed, err := s.readSeedFile(s.rootKeyPath(from))
	if err != nil {
		return "", "", err
	}
	roleSeed, err := DeriveRoleSeed(rootSeed, role)
	if err != nil {
		return "", "", err
	}
	path = s.roleKeyPath(from, role)
	if err := s.writeSeedFile(path, roleSeed, overwrite); err != nil {
		return "", "", err
	}
	keyString, err = PublicKeyStringFromSeed(roleSeed)
	if err != nil {
		return "", "", err
	}
	return keyString, path, nil
}

// Export returns the public key string for a stored key; role may be empty
// for the root key. Private material never leaves the store through Export.
func (s *Store) Export(name, role string) (string, error) {
	if err := CheckName(name); err != nil {
		return "", err
	}
	var seed []byte
	var err error
	if role == "" {
		seed, err = s.readSeedFile(s.rootKeyPath(name))
	} else {
		if err := CheckRole(role); err != nil {
			return "", err
		}
		seed, err = s.readSeedFile(s.roleKeyPath(name, role))
	}
	if err != nil {
		return "", err
	}
	return PublicKeyStringFromSeed(seed)
}

// LoadSeed resolves a signing seed from, in order of precedence: an explicit
// hex seed, an explicit seed file, then a stored name (plus optional role).
func (s *Store) LoadSeed(seedHex, name, role, file string) ([]byte, error) {
	if seedHex != "" {
		return ParseSeedHex(seedHex)
	}
	if file != "" {
		return s.readSeedFile(file)
	}
	if name != "" {
		if err := CheckName(name); err != nil {
			return nil, err
		}
		if role == "" {
			return s.readSeedFile(s.rootKeyPath(name))
		}
		if err := CheckRole(role); err != nil {
			return nil, err
		}
		return s.readSeedFile(s.roleKeyPath(name, role))
	}
	return nil, errors.New("keys: no signer key selected")
}

// Signer resolves a seed like LoadSeed and expands it into an ed25519 key
// pair ready for signing.
func (s *Store) Signer(seedHex, name, role, file string) (crypto.KeyPair, error) {
	seed, err := s.LoadSeed(seedHex, name, role, file)
	if err != nil {
		return crypto.KeyPair{}, err
	}
	return crypto.Default().KeyPairFromSeed(seed)
}

// List enumerates stored keys and their derived roles, sorted by name.
func (s *Store) List() ([]Entry, error) {
	entries, err := os.ReadDir(s.Directory)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	var result []Entry
	for _, name := range names {
		rolesDir := filepath.Join(s.Directory, name, "roles")
		roleEntries, rerr := os.ReadDir(rolesDir)
		var roles []string
		if rerr == nil {
			for _, roleEntry := range roleEntries {
				if roleEntry.IsDir() {
					continue
				}
				if strings.HasSuffix(roleEntry.Name(), ".key") {
					roles = append(roles, strings.TrimSuffix(roleEntry.Name(), ".key"))
				}
			}
			sort.Strings(roles)
		}
		result = append(result, Entry{Name: name, Roles: roles})
	}
	return result, nil
}
