package grpcsigner

import (
	"context"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"ledgernet.dev/sbmf/crypto"
	"ledgernet.dev/sbmf/sbmf"
)

// Signer couples a registered algorithm with the key material a daemon
// holds. The private key never leaves the process; callers reach it only
// through the service RPCs.
type Signer struct {
	Function crypto.Function
	Keys     crypto.KeyPair
}

// Server exposes one Signer over the Signer gRPC service.
type Server struct {
	UnimplementedSignerServer
	Signer Signer
}

func (s *Server) ready() error {
	if s == nil || s.Signer.Function == nil {
		return status.Error(codes.FailedPrecondition, "missing signer")
	}
	return nil
}

func (s *Server) SignMessage(ctx context.Context, in *wrapperspb.BytesValue) (*wrapperspb.BytesValue, error) {
	_ = ctx
	if err := s.ready(); err != nil {
		return nil, err
	}
	msg, err := sbmf.Parse(in.GetValue())
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	signed, err := msg.Sign(s.Signer.Function, s.Signer.Keys.Private)
	if err != nil {
		// Sign fails only when the held algorithm cannot produce a
		// signature that fits the frame or the key material is unusable.
		return nil, status.Error(codes.FailedPrecondition, err.Error())
	}
	return wrapperspb.Bytes(signed.Bytes()), nil
}

func (s *Server) SignBlob(ctx context.Context, in *wrapperspb.BytesValue) (*wrapperspb.BytesValue, error) {
	_ = ctx
	if err := s.ready(); err != nil {
		return nil, err
	}
	sig, err := s.Signer.Function.Sign(in.GetValue(), s.Signer.Keys.Private)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return wrapperspb.Bytes(sig), nil
}

func (s *Server) VerifyMessage(ctx context.Context, in *wrapperspb.BytesValue) (*wrapperspb.BoolValue, error) {
	_ = ctx
	if err := s.ready(); err != nil {
		return nil, err
	}
	msg, err := sbmf.Parse(in.GetValue())
	if err != nil {
		// Malformed framing is a caller error; only a signature mismatch
		// answers false.
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	return wrapperspb.Bool(msg.Verify(s.Signer.Function, s.Signer.Keys.Public)), nil
}

func (s *Server) PublicKey(ctx context.Context, _ *emptypb.Empty) (*wrapperspb.StringValue, error) {
	_ = ctx
	if err := s.ready(); err != nil {
		return nil, err
	}
	return wrapperspb.String(crypto.FormatPublicKey(s.Signer.Function, s.Signer.Keys.Public)), nil
}
