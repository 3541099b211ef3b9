package grpcsigner

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"ledgernet.dev/sbmf/crypto"
	"ledgernet.dev/sbmf/sbmf"
)

// Client talks to a remote Signer service.
type Client struct {
	cc     *grpc.ClientConn
	client SignerClient

	// Timeout applies per RPC when non-zero.
	Timeout time.Duration
}

type DialOptions struct {
	// Timeout applies to the initial dial when non-zero.
	Timeout time.Duration

	// MaxMsgBytes sets both send/recv max sizes when non-zero.
	MaxMsgBytes int
}

func Dial(target string, opts DialOptions) (*Client, error) {
	dialOpts := []grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	}
	if opts.MaxMsgBytes > 0 {
		dialOpts = append(dialOpts,
			grpc.WithDefaultCallOptions(
				grpc.MaxCallRecvMsgSize(opts.MaxMsgBytes),
				grpc.MaxCallSendMsgSize(opts.MaxMsgBytes),
			),
		)
	}

	ctx := context.Background()
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	cc, err := grpc.DialContext(ctx, target, dialOpts...)
	if err != nil {
		return nil, err
	}
	return &Client{cc: cc, client: NewSignerClient(cc), Timeout: 0}, nil
}

func (c *Client) Close() error {
	if c == nil || c.cc == nil {
		return nil
	}
	return c.cc.Close()
}

// SignMessage sends framed message bytes for signing and returns the signed
// message. The reply is parsed locally, so malformed reply bytes can never
// escape this method.
func (c *Client) SignMessage(raw []byte) (*sbmf.Message, error) {
	ctx, cancel := c.ctx()
	defer cancel()

	reply, err := c.client.SignMessage(ctx, wrapperspb.Bytes(raw))
	if err != nil {
		return nil, mapRPC(err)
	}
	return sbmf.Parse(reply.GetValue())
}

// SignBlob returns a detached signature over data. This works for any
// registered algorithm, including those whose signatures do not fit a
// message frame.
func (c *Client) SignBlob(data []byte) ([]byte, error) {
	ctx, cancel := c.ctx()
	defer cancel()

	reply, err := c.client.SignBlob(ctx, wrapperspb.Bytes(data))
	if err != nil {
		return nil, mapRPC(err)
	}
	return reply.GetValue(), nil
}

// VerifyMessage asks the signer to check framed message bytes against its
// own public key. Malformed framing is an error; a signature mismatch is
// (false, nil).
func (c *Client) VerifyMessage(raw []byte) (bool, error) {
	ctx, cancel := c.ctx()
	defer cancel()

	reply, err := c.client.VerifyMessage(ctx, wrapperspb.Bytes(raw))
	if err != nil {
		return false, mapRPC(err)
	}
	return reply.GetValue(), nil
}

// PublicKey fetches the signer's public key string and resolves it against
// the local algorithm registry.
func (c *Client) PublicKey() (crypto.Function, crypto.PublicKey, error) {
	ctx, cancel := c.ctx()
	defer cancel()

	reply, err := c.client.PublicKey(ctx, &emptypb.Empty{})
	if err != nil {
		return nil, crypto.PublicKey{}, mapRPC(err)
	}
	return crypto.ParsePublicKeyString(reply.GetValue())
}

func (c *Client) ctx() (context.Context, context.CancelFunc) {
	if c.Timeout <= 0 {
		return context.WithCancel(context.Background())
	}
	return context.WithTimeout(context.Background(), c.Timeout)
}
