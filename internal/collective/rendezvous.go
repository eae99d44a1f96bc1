// Package collective provides the barrier and sum-reduce primitives the
// engine synchronizes ranks with at shutdown.
package collective

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

var (
	// ErrSizeMismatch is returned to every participant of a round in which
	// ranks contributed arrays of different lengths.
	ErrSizeMismatch = errors.New("collective: contribution length mismatch")
	// ErrBadRank is returned for a rank outside the job or one that joined
	// the same round twice.
	ErrBadRank = errors.New("collective: invalid rank")
)

type round struct {
	arrived int
	seen    []bool
	ints    []int64
	floats  []float64
	err     error
	done    chan struct{}
}

// Rendezvous matches contributions of size ranks by round number. A round
// completes once every rank has joined it; all of them then see the
// element-wise sums.
type Rendezvous struct {
	mu     sync.Mutex
	size   int
	rounds map[uint64]*round
}

func NewRendezvous(size int) *Rendezvous {
	return &Rendezvous{size: size, rounds: make(map[uint64]*round)}
}

// Size returns the number of ranks a round waits for.
func (r *Rendezvous) Size() int { return r.size }

// Join adds rank's arrays to round seq and blocks until the round is
// complete or ctx is done. The returned sums are shared between
// participants and must be treated as read-only.
//
// A contribution stays in its round when ctx ends first, so the rank
// cannot join that round again, and a round that never completes is kept
// for the life of the Rendezvous. Each job runs a few rounds at shutdown,
// which bounds what can be held this way.
func (r *Rendezvous) Join(ctx context.Context, seq uint64, rank int, ints []int64, floats []float64) ([]int64, []float64, error) {
	if rank < 0 || rank >= r.size {
		return nil, nil, fmt.Errorf("%w: %d not in [0,%d)", ErrBadRank, rank, r.size)
	}

	r.mu.Lock()
	rd, ok := r.rounds[seq]
	if !ok {
		rd = &round{seen: make([]bool, r.size), done: make(chan struct{})}
		r.rounds[seq] = rd
	}
	if rd.seen[rank] {
		r.mu.Unlock()
		return nil, nil, fmt.Errorf("%w: %d joined round %d twice", ErrBadRank, rank, seq)
	}
	rd.seen[rank] = true
	rd.contribute(ints, floats)
	rd.arrived++
	if rd.arrived == r.size {
		delete(r.rounds, seq)
		close(rd.done)
	}
	r.mu.Unlock()

	select {
	case <-rd.done:
		if rd.err != nil {
			return nil, nil, rd.err
		}
		return rd.ints, rd.floats, nil
	case <-ctx.Done():
		return nil, nil, ctx.Err()
	}
}

func (rd *round) contribute(ints []int64, floats []float64) {
	if rd.arrived == 0 {
		rd.ints = append([]int64(nil), ints...)
		rd.floats = append([]float64(nil), floats...)
		return
	}
	if len(ints) != len(rd.ints) || len(floats) != len(rd.floats) {
		if rd.err == nil {
			rd.err = fmt.Errorf("%w: got %d/%d, round has %d/%d",
				ErrSizeMismatch, len(ints), len(floats), len(rd.ints), len(rd.floats))
		}
		return
	}
	for i, v := range ints {
		rd.ints[i] += v
	}
	for i, v := range floats {
		rd.floats[i] += v
	}
}
