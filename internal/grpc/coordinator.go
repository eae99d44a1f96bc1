package grpc

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/ALEYI17/InfraSight_mpi/internal/collective"
	"github.com/ALEYI17/InfraSight_mpi/pkg/logutil"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Coordinator is the communicator of rank 0. It serves the collective
// service for the other ranks and takes part in every round itself.
type Coordinator struct {
	rv     *collective.Rendezvous
	server *grpc.Server
	lis    net.Listener
	served chan error
	seq    uint64
	closed bool
}

// NewCoordinator listens on address and serves a job of size ranks.
func NewCoordinator(address string, size int) (*Coordinator, error) {
	if size < 1 {
		return nil, fmt.Errorf("grpc: job size %d", size)
	}
	lis, err := net.Listen("tcp", address)
	if err != nil {
		return nil, fmt.Errorf("grpc: listen %s: %w", address, err)
	}

	c := &Coordinator{
		rv:     collective.NewRendezvous(size),
		server: grpc.NewServer(grpc.MaxRecvMsgSize(maxMsgSize), grpc.MaxSendMsgSize(maxMsgSize)),
		lis:    lis,
		served: make(chan error, 1),
	}
	c.server.RegisterService(&serviceDesc, c)

	go func() {
		c.served <- c.server.Serve(lis)
	}()

	logutil.GetLogger().Info("collective coordinator listening",
		zap.String("address", lis.Addr().String()),
		zap.Int("size", size))
	return c, nil
}

// Addr returns the address the coordinator is listening on.
func (c *Coordinator) Addr() string {
	return c.lis.Addr().String()
}

func (c *Coordinator) Rank() int { return 0 }
func (c *Coordinator) Size() int { return c.rv.Size() }

func (c *Coordinator) Barrier(ctx context.Context) error {
	if c.closed {
		return collective.ErrClosed
	}
	c.seq++
	_, _, err := c.rv.Join(ctx, c.seq, 0, nil, nil)
	return err
}

func (c *Coordinator) ReduceSum(ctx context.Context, root int, ints []int64, floats []float64) error {
	if c.closed {
		return collective.ErrClosed
	}
	c.seq++
	sumInts, sumFloats, err := c.rv.Join(ctx, c.seq, 0, ints, floats)
	if err != nil {
		return err
	}
	if root == 0 {
		copy(ints, sumInts)
		copy(floats, sumFloats)
	}
	return nil
}

func (c *Coordinator) contribute(ctx context.Context, req *contributeRequest) (*contributeReply, error) {
	if req.Rank <= 0 || req.Rank >= c.rv.Size() {
		return nil, status.Errorf(codes.InvalidArgument, "rank %d not served by this coordinator", req.Rank)
	}

	ints, floats, err := c.rv.Join(ctx, req.Seq, req.Rank, req.Ints, req.Floats)
	switch {
	case err == nil:
	case errors.Is(err, collective.ErrSizeMismatch):
		return nil, status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, collective.ErrBadRank):
		return nil, status.Error(codes.InvalidArgument, err.Error())
	default:
		return nil, status.FromContextError(err).Err()
	}

	reply := &contributeReply{}
	if req.Rank == req.Root {
		reply.Ints = ints
		reply.Floats = floats
	}
	return reply, nil
}

// Close waits for in-flight replies to be sent, then stops serving.
func (c *Coordinator) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	c.server.GracefulStop()
	if err := <-c.served; err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return err
	}
	return nil
}
