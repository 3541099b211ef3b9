// Package signerd wires the remote signer daemon: configuration, logging
// and gRPC server assembly. Library packages stay free of all three.
package signerd

import (
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"ledgernet.dev/sbmf/crypto"
)

// Config describes one signer daemon instance. Values come from an optional
// TOML file with per-flag overrides applied by the caller afterwards.
type Config struct {
	Listen    string `toml:"listen"`
	Algorithm string `toml:"algorithm"`
	LogLevel  string `toml:"log_level"`

	Keystore KeystoreConfig `toml:"keystore"`
}

// KeystoreConfig selects the daemon's signing seed. Exactly one source must
// resolve: an explicit seed (flag only), a seed file, or a stored key
// name/role.
type KeystoreConfig struct {
	Directory string `toml:"directory"`
	Name      string `toml:"name"`
	Role      string `toml:"role"`
	SeedFile  string `toml:"seed_file"`

	// SeedHex is settable only by flag; raw seeds do not belong in
	// config files.
	SeedHex string `toml:"-"`
}

func Default() Config {
	return Config{
		Listen:    "127.0.0.1:7878",
		Algorithm: crypto.AlgorithmEd25519,
		LogLevel:  "info",
	}
}

// Load reads the TOML file at path over the defaults. An empty path yields
// the defaults. The result is validated.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("signerd: config load failed (%s): %w", path, err)
		}
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("signerd: config parse failed (%s): %w", path, err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.Listen) == "" {
		return fmt.Errorf("signerd: listen address is required")
	}
	if _, err := crypto.Lookup(c.Algorithm); err != nil {
		return fmt.Errorf("signerd: %w", err)
	}
	switch c.LogLevel {
	case "trace", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("signerd: invalid log level %q", c.LogLevel)
	}
	return nil
}
