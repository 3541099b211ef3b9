package grpcsigner

import (
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var (
	// ErrInvalidMessage reports that the remote signer rejected the bytes
	// as not being a well-formed framed message.
	ErrInvalidMessage = errors.New("grpcsigner: invalid message")

	// ErrSignerUnavailable reports that the remote signer cannot serve the
	// request with its configured algorithm or key material.
	ErrSignerUnavailable = errors.New("grpcsigner: signer unavailable")
)

func mapRPC(err error) error {
	if err == nil {
		return nil
	}
	st, ok := status.FromError(err)
	if !ok {
		return err
	}

	switch st.Code() {
	case codes.InvalidArgument:
		// Server uses InvalidArgument for malformed framing.
		return ErrInvalidMessage
	case codes.FailedPrecondition:
		// Server uses FailedPrecondition when its algorithm or keys
		// cannot serve the request.
		return ErrSignerUnavailable
	default:
		return err
	}
}
