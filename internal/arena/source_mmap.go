//go:build linux || darwin || freebsd

package arena

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"
)

// MmapSource maps each block as anonymous private memory outside the Go
// heap. Node links only ever point into other mapped blocks or out of the
// heap-resident log sentinels, never from a mapping into the heap.
type MmapSource struct{}

func mmapSource() (Source, bool) { return MmapSource{}, true }

func (MmapSource) Alloc(capacity int) ([]Node, func() error, error) {
	size := capacity * int(unsafe.Sizeof(Node{}))
	mem, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: mmap %d bytes: %v", ErrOutOfMemory, size, err)
	}
	nodes := unsafe.Slice((*Node)(unsafe.Pointer(unsafe.SliceData(mem))), capacity)
	return nodes, func() error { return unix.Munmap(mem) }, nil
}
