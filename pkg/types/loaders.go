package types

import "context"

// LocalityClassifier reports whether a buffer address resides in
// accelerator memory.
type LocalityClassifier interface {
	IsDevice(addr uintptr) bool
}

// LocalityFunc adapts a function to LocalityClassifier.
type LocalityFunc func(addr uintptr) bool

func (f LocalityFunc) IsDevice(addr uintptr) bool { return f(addr) }

// HostOnly classifies every buffer as host memory.
var HostOnly LocalityClassifier = LocalityFunc(func(uintptr) bool { return false })

// MessageSizer computes the byte size of count elements of a datatype.
type MessageSizer interface {
	MessageSize(count int, dt Datatype) int
}

// Communicator is the distributed primitive the engine reduces through.
// Every rank of the job must make the same sequence of collective calls.
type Communicator interface {
	Rank() int
	Size() int
	// Barrier returns once every rank has entered it.
	Barrier(ctx context.Context) error
	// ReduceSum sums ints and floats element-wise over all ranks. On root
	// the slices are overwritten with the totals; elsewhere they are left
	// untouched and carry no cluster meaning.
	ReduceSum(ctx context.Context, root int, ints []int64, floats []float64) error
	Close() error
}
