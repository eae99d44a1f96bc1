package grpc

import (
	"context"
	"fmt"

	"github.com/ALEYI17/InfraSight_mpi/internal/collective"
	"github.com/ALEYI17/InfraSight_mpi/pkg/logutil"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
)

// Client is the communicator of every rank other than 0.
type Client struct {
	conn   *grpc.ClientConn
	rank   int
	size   int
	seq    uint64
	closed bool
}

const maxMsgSize = 64 * 1024 * 1024

// NewGrpcClient connects rank to the coordinator at address. Calls wait
// for the coordinator to come up, so ranks may start in any order.
func NewGrpcClient(address string, rank, size int) (*Client, error) {
	if rank <= 0 || rank >= size {
		return nil, fmt.Errorf("grpc: client rank %d outside (0,%d)", rank, size)
	}
	conn, err := grpc.NewClient(address,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(
			grpc.MaxCallRecvMsgSize(maxMsgSize),
			grpc.MaxCallSendMsgSize(maxMsgSize),
			grpc.CallContentSubtype(codecName),
			grpc.WaitForReady(true),
		))
	if err != nil {
		return nil, err
	}

	return &Client{conn: conn, rank: rank, size: size}, nil
}

func (c *Client) Rank() int { return c.rank }
func (c *Client) Size() int { return c.size }

func (c *Client) contribute(ctx context.Context, in *contributeRequest) (*contributeReply, error) {
	out := new(contributeReply)
	if err := c.conn.Invoke(ctx, contributeMethod, in, out); err != nil {
		st, _ := status.FromError(err)
		logutil.GetLogger().Warn("collective call failed",
			zap.Int("rank", c.rank),
			zap.Uint64("seq", in.Seq),
			zap.String("code", st.Code().String()),
			zap.Error(err))
		return nil, err
	}
	return out, nil
}

func (c *Client) Barrier(ctx context.Context) error {
	if c.closed {
		return collective.ErrClosed
	}
	c.seq++
	_, err := c.contribute(ctx, &contributeRequest{Seq: c.seq, Rank: c.rank})
	return err
}

func (c *Client) ReduceSum(ctx context.Context, root int, ints []int64, floats []float64) error {
	if c.closed {
		return collective.ErrClosed
	}
	c.seq++
	reply, err := c.contribute(ctx, &contributeRequest{
		Seq:    c.seq,
		Rank:   c.rank,
		Root:   root,
		Ints:   ints,
		Floats: floats,
	})
	if err != nil {
		return err
	}
	if c.rank == root {
		if len(reply.Ints) != len(ints) || len(reply.Floats) != len(floats) {
			return fmt.Errorf("%w: reply %d/%d, sent %d/%d",
				collective.ErrSizeMismatch, len(reply.Ints), len(reply.Floats), len(ints), len(floats))
		}
		copy(ints, reply.Ints)
		copy(floats, reply.Floats)
	}
	return nil
}

func (c *Client) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	return c.conn.Close()
}
