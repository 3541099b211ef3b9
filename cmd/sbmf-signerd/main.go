package main

import (
	"flag"
	"fmt"
	"net"
	"os"

	"ledgernet.dev/sbmf/crypto"
	"ledgernet.dev/sbmf/internal/signerd"
)

func main() {
	fs := flag.NewFlagSet("sbmf-signerd", flag.ExitOnError)
	configPath := fs.String("config", "", "path to TOML config file")
	listen := fs.String("listen", "", "listen address (overrides config)")
	algorithm := fs.String("algorithm", "", "signature algorithm (overrides config)")
	logLevel := fs.String("log-level", "", "log level: trace, debug, info, warn, error (overrides config)")
	keyDir := fs.String("key-dir", "", "keystore directory (overrides config)")
	signerName := fs.String("signer", "", "keystore entry name (overrides config)")
	signerRole := fs.String("signer-role", "", "keystore role under the entry (overrides config)")
	seedFile := fs.String("seed-file", "", "file holding a hex seed (overrides config)")
	seedHex := fs.String("seed-hex", "", "hex seed (takes precedence over all other key sources)")
	listAlgorithms := fs.Bool("list-algorithms", false, "List supported algorithms and exit")

	_ = fs.Parse(os.Args[1:])
	if *listAlgorithms {
		for _, name := range crypto.Names() {
			_, _ = fmt.Fprintf(os.Stdout, "%s\n", name)
		}
		return
	}

	cfg, err := signerd.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if *listen != "" {
		cfg.Listen = *listen
	}
	if *algorithm != "" {
		cfg.Algorithm = *algorithm
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	if *keyDir != "" {
		cfg.Keystore.Directory = *keyDir
	}
	if *signerName != "" {
		cfg.Keystore.Name = *signerName
	}
	if *signerRole != "" {
		cfg.Keystore.Role = *signerRole
	}
	if *seedFile != "" {
		cfg.Keystore.SeedFile = *seedFile
	}
	if *seedHex != "" {
		cfg.Keystore.SeedHex = *seedHex
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	logger := signerd.NewLogger(cfg.LogLevel)

	signer, err := signerd.BuildSigner(cfg)
	if err != nil {
		logger.Error().Err(err).Msg("signer setup failed")
		os.Exit(2)
	}

	lis, err := net.Listen("tcp", cfg.Listen)
	if err != nil {
		logger.Error().Err(err).Msg("listen failed")
		os.Exit(1)
	}
	defer lis.Close()

	srv := signerd.NewServer(logger, signer)

	logger.Info().
		Str("listen", lis.Addr().String()).
		Str("algorithm", cfg.Algorithm).
		Str("public_key", crypto.FormatPublicKey(signer.Function, signer.Keys.Public)).
		Msg("sbmf-signerd listening")
	if err := srv.Serve(lis); err != nil {
		logger.Error().Err(err).Msg("serve failed")
		os.Exit(1)
	}
}
