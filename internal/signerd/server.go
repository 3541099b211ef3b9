package signerd

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"

	"ledgernet.dev/sbmf/crypto"
	"ledgernet.dev/sbmf/grpcsigner"
	"ledgernet.dev/sbmf/keys"
)

// BuildSigner resolves the configured algorithm and key material into a
// ready signer. The seed source follows the keystore precedence rules:
// explicit hex, then seed file, then stored name/role.
func BuildSigner(cfg Config) (grpcsigner.Signer, error) {
	fn, err := crypto.Lookup(cfg.Algorithm)
	if err != nil {
		return grpcsigner.Signer{}, err
	}

	store, err := keys.Open(cfg.Keystore.Directory)
	if err != nil {
		return grpcsigner.Signer{}, err
	}
	seed, err := store.LoadSeed(cfg.Keystore.SeedHex, cfg.Keystore.Name, cfg.Keystore.Role, cfg.Keystore.SeedFile)
	if err != nil {
		return grpcsigner.Signer{}, err
	}
	kp, err := fn.KeyPairFromSeed(seed)
	if err != nil {
		return grpcsigner.Signer{}, err
	}
	return grpcsigner.Signer{Function: fn, Keys: kp}, nil
}

// NewServer assembles the gRPC server with per-RPC logging.
func NewServer(logger zerolog.Logger, signer grpcsigner.Signer) *grpc.Server {
	srv := grpc.NewServer(grpc.UnaryInterceptor(loggingInterceptor(logger)))
	grpcsigner.RegisterSignerServer(srv, &grpcsigner.Server{Signer: signer})
	return srv
}

// loggingInterceptor emits one line per RPC: method, status code, duration.
func loggingInterceptor(logger zerolog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)

		evt := logger.Info()
		if err != nil {
			evt = logger.Warn().Err(err)
		}
		evt.Str("method", info.FullMethod).
			Stringer("code", status.Code(err)).
			Dur("duration", time.Since(start)).
			Msg("rpc")
		return resp, err
	}
}
