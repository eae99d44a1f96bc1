package arena

// Source supplies the memory behind one block. Alloc returns exactly
// capacity zeroed nodes and a function that gives the memory back.
type Source interface {
	Alloc(capacity int) ([]Node, func() error, error)
}

// HeapSource allocates blocks on the Go heap.
type HeapSource struct{}

func (HeapSource) Alloc(capacity int) ([]Node, func() error, error) {
	return make([]Node, capacity), nil, nil
}

// SourceFunc adapts a function to Source.
type SourceFunc func(capacity int) ([]Node, func() error, error)

func (f SourceFunc) Alloc(capacity int) ([]Node, func() error, error) {
	return f(capacity)
}

// SourceByName returns the source for a configured backing name. Unknown
// names and "mmap" on platforms without it fall back to DefaultSource.
func SourceByName(name string) Source {
	switch name {
	case "heap":
		return HeapSource{}
	case "mmap":
		if s, ok := mmapSource(); ok {
			return s
		}
		return HeapSource{}
	default:
		return DefaultSource()
	}
}

// DefaultSource is the mmap source where the platform provides one and
// the heap source otherwise.
func DefaultSource() Source {
	if s, ok := mmapSource(); ok {
		return s
	}
	return HeapSource{}
}
