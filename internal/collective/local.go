package collective

import (
	"context"
	"errors"

	"github.com/ALEYI17/InfraSight_mpi/pkg/types"
)

// ErrClosed is returned by a communicator used after Close.
var ErrClosed = errors.New("collective: communicator closed")

// Single is the communicator of a one-process job.
type Single struct{}

func (Single) Rank() int { return 0 }
func (Single) Size() int { return 1 }

func (Single) Barrier(ctx context.Context) error { return ctx.Err() }

func (Single) ReduceSum(ctx context.Context, root int, ints []int64, floats []float64) error {
	return ctx.Err()
}

func (Single) Close() error { return nil }

type localComm struct {
	rv     *Rendezvous
	rank   int
	seq    uint64
	closed bool
}

// NewLocalGroup returns n communicators that reduce among themselves
// inside one process, one per simulated rank. Each one must be driven by
// its own goroutine.
func NewLocalGroup(n int) []types.Communicator {
	rv := NewRendezvous(n)
	comms := make([]types.Communicator, n)
	for i := range comms {
		comms[i] = &localComm{rv: rv, rank: i}
	}
	return comms
}

func (c *localComm) Rank() int { return c.rank }
func (c *localComm) Size() int { return c.rv.Size() }

func (c *localComm) Barrier(ctx context.Context) error {
	if c.closed {
		return ErrClosed
	}
	c.seq++
	_, _, err := c.rv.Join(ctx, c.seq, c.rank, nil, nil)
	return err
}

func (c *localComm) ReduceSum(ctx context.Context, root int, ints []int64, floats []float64) error {
	if c.closed {
		return ErrClosed
	}
	c.seq++
	sumInts, sumFloats, err := c.rv.Join(ctx, c.seq, c.rank, ints, floats)
	if err != nil {
		return err
	}
	if c.rank == root {
		copy(ints, sumInts)
		copy(floats, sumFloats)
	}
	return nil
}

func (c *localComm) Close() error {
	c.closed = true
	return nil
}
