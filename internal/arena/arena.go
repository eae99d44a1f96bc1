// Package arena is a growable pool of fixed-capacity blocks of event nodes.
//
// Nodes are handed out by bumping an index in the active block. When the
// block is full a new one of the same capacity is chained after it. Blocks
// are never reused, moved or freed before Release, so every node pointer
// returned by Allocate stays valid until the pool is released.
//
// A Pool has a single owner and is not safe for concurrent use.
package arena

import (
	"errors"
	"fmt"

	"github.com/ALEYI17/InfraSight_mpi/pkg/types"
	"go.uber.org/multierr"
)

// DefaultBlockCapacity is the number of nodes per block when none is set.
const DefaultBlockCapacity = 4096

var (
	// ErrOutOfMemory is returned when a new block cannot be obtained.
	ErrOutOfMemory = errors.New("arena: out of memory")
	// ErrReleased is returned by any use of a pool after Release.
	ErrReleased = errors.New("arena: pool released")
)

// Node is one arena slot: an event and the link used by the event log.
type Node struct {
	Event types.Event
	Next  *Node
}

type block struct {
	nodes   []Node
	free    int
	next    *block
	release func() error
}

// Config controls block size, growth budget and backing memory.
type Config struct {
	// BlockCapacity is the number of nodes per block.
	BlockCapacity int
	// MaxBlocks bounds growth. Zero means unbounded.
	MaxBlocks int
	// Source provides block memory. Nil selects DefaultSource.
	Source Source
}

// Pool is the block chain. head never changes after New; tail is the block
// receiving allocations.
type Pool struct {
	head     *block
	tail     *block
	capacity int
	max      int
	blocks   int
	issued   int
	source   Source
	released bool
}

// New creates a pool and allocates its first block.
func New(cfg Config) (*Pool, error) {
	if cfg.BlockCapacity <= 0 {
		cfg.BlockCapacity = DefaultBlockCapacity
	}
	if cfg.MaxBlocks < 0 {
		return nil, fmt.Errorf("arena: negative block budget %d", cfg.MaxBlocks)
	}
	if cfg.Source == nil {
		cfg.Source = DefaultSource()
	}

	p := &Pool{
		capacity: cfg.BlockCapacity,
		max:      cfg.MaxBlocks,
		source:   cfg.Source,
	}
	b, err := p.grow()
	if err != nil {
		return nil, err
	}
	p.head = b
	p.tail = b
	return p, nil
}

func (p *Pool) grow() (*block, error) {
	if p.max > 0 && p.blocks >= p.max {
		return nil, fmt.Errorf("%w: block budget of %d exhausted", ErrOutOfMemory, p.max)
	}
	nodes, release, err := p.source.Alloc(p.capacity)
	if err != nil {
		if errors.Is(err, ErrOutOfMemory) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrOutOfMemory, err)
	}
	if len(nodes) != p.capacity {
		if release != nil {
			release()
		}
		return nil, fmt.Errorf("%w: source returned %d nodes, want %d", ErrOutOfMemory, len(nodes), p.capacity)
	}
	p.blocks++
	return &block{nodes: nodes, release: release}, nil
}

// Allocate returns a zeroed node. It fails only with ErrOutOfMemory or
// ErrReleased; a failed growth leaves earlier nodes intact.
func (p *Pool) Allocate() (*Node, error) {
	if p.released {
		return nil, ErrReleased
	}
	if p.tail.free == len(p.tail.nodes) {
		b, err := p.grow()
		if err != nil {
			return nil, err
		}
		p.tail.next = b
		p.tail = b
	}
	n := &p.tail.nodes[p.tail.free]
	p.tail.free++
	p.issued++
	return n, nil
}

// Blocks returns the number of blocks in the chain.
func (p *Pool) Blocks() int { return p.blocks }

// Issued returns the number of nodes handed out so far.
func (p *Pool) Issued() int { return p.issued }

// BlockCapacity returns the fixed number of nodes per block.
func (p *Pool) BlockCapacity() int { return p.capacity }

// Released reports whether Release has run.
func (p *Pool) Released() bool { return p.released }

// Release frees every block in chain order. All node pointers become
// invalid. A second call returns ErrReleased.
func (p *Pool) Release() error {
	if p.released {
		return ErrReleased
	}
	p.released = true

	var err error
	for b := p.head; b != nil; {
		next := b.next
		if b.release != nil {
			err = multierr.Append(err, b.release())
		}
		b.nodes = nil
		b.next = nil
		b = next
	}
	p.head = nil
	p.tail = nil
	p.blocks = 0
	return err
}
