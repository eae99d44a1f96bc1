package arena

import (
	"errors"
	"testing"

	"github.com/ALEYI17/InfraSight_mpi/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAllocatesFirstBlock(t *testing.T) {
	p, err := New(Config{BlockCapacity: 8, Source: HeapSource{}})
	require.NoError(t, err)
	defer p.Release()

	assert.Equal(t, 1, p.Blocks())
	assert.Equal(t, 0, p.Issued())
	assert.Equal(t, 8, p.BlockCapacity())
}

func TestNewDefaults(t *testing.T) {
	p, err := New(Config{})
	require.NoError(t, err)
	defer p.Release()

	assert.Equal(t, DefaultBlockCapacity, p.BlockCapacity())
}

func TestNewRejectsNegativeBudget(t *testing.T) {
	_, err := New(Config{MaxBlocks: -1, Source: HeapSource{}})
	require.Error(t, err)
}

func TestAllocateZeroedNodes(t *testing.T) {
	p, err := New(Config{BlockCapacity: 4, Source: HeapSource{}})
	require.NoError(t, err)
	defer p.Release()

	for i := 0; i < 10; i++ {
		n, err := p.Allocate()
		require.NoError(t, err)
		assert.Equal(t, Node{}, *n)
	}
	assert.Equal(t, 10, p.Issued())
	assert.Equal(t, 3, p.Blocks())
}

func TestGrowthKeepsIssuedNodesStable(t *testing.T) {
	sources := map[string]Source{
		"heap":    HeapSource{},
		"default": DefaultSource(),
	}
	for name, src := range sources {
		t.Run(name, func(t *testing.T) {
			p, err := New(Config{BlockCapacity: 3, Source: src})
			require.NoError(t, err)
			defer p.Release()

			var issued []*Node
			for i := 0; i < 20; i++ {
				n, err := p.Allocate()
				require.NoError(t, err)
				n.Event = types.Event{Start: float64(i), End: float64(i) + 0.5, Size: int32(i * 10)}
				issued = append(issued, n)
			}
			require.Equal(t, 7, p.Blocks())

			for i, n := range issued {
				assert.Equal(t, float64(i), n.Event.Start)
				assert.Equal(t, float64(i)+0.5, n.Event.End)
				assert.Equal(t, int32(i*10), n.Event.Size)
			}
			for i := 1; i < len(issued); i++ {
				assert.NotSame(t, issued[i-1], issued[i])
			}
		})
	}
}

func TestAllocateBudgetExhausted(t *testing.T) {
	p, err := New(Config{BlockCapacity: 2, MaxBlocks: 2, Source: HeapSource{}})
	require.NoError(t, err)
	defer p.Release()

	first, err := p.Allocate()
	require.NoError(t, err)
	first.Event.Size = 42

	for i := 0; i < 3; i++ {
		_, err := p.Allocate()
		require.NoError(t, err)
	}

	_, err = p.Allocate()
	require.ErrorIs(t, err, ErrOutOfMemory)
	assert.Equal(t, 2, p.Blocks())
	assert.Equal(t, int32(42), first.Event.Size)

	// still failing, nothing leaked into the chain
	_, err = p.Allocate()
	require.ErrorIs(t, err, ErrOutOfMemory)
	assert.Equal(t, 4, p.Issued())
}

func TestSourceFailureIsOutOfMemory(t *testing.T) {
	calls := 0
	src := SourceFunc(func(capacity int) ([]Node, func() error, error) {
		calls++
		if calls > 1 {
			return nil, nil, errors.New("no memory")
		}
		return make([]Node, capacity), nil, nil
	})

	p, err := New(Config{BlockCapacity: 1, Source: src})
	require.NoError(t, err)
	defer p.Release()

	_, err = p.Allocate()
	require.NoError(t, err)
	_, err = p.Allocate()
	require.ErrorIs(t, err, ErrOutOfMemory)
}

func TestSourceShortBlockRejected(t *testing.T) {
	src := SourceFunc(func(capacity int) ([]Node, func() error, error) {
		return make([]Node, capacity-1), nil, nil
	})
	_, err := New(Config{BlockCapacity: 4, Source: src})
	require.ErrorIs(t, err, ErrOutOfMemory)
}

func TestReleaseFreesEveryBlockOnce(t *testing.T) {
	var order []int
	next := 0
	src := SourceFunc(func(capacity int) ([]Node, func() error, error) {
		id := next
		next++
		return make([]Node, capacity), func() error {
			order = append(order, id)
			return nil
		}, nil
	})

	p, err := New(Config{BlockCapacity: 2, Source: src})
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		_, err := p.Allocate()
		require.NoError(t, err)
	}

	require.NoError(t, p.Release())
	assert.Equal(t, []int{0, 1, 2}, order)
	assert.True(t, p.Released())
	assert.Equal(t, 0, p.Blocks())

	require.ErrorIs(t, p.Release(), ErrReleased)
	assert.Equal(t, []int{0, 1, 2}, order)

	_, err = p.Allocate()
	require.ErrorIs(t, err, ErrReleased)
}

func TestReleaseCombinesErrors(t *testing.T) {
	src := SourceFunc(func(capacity int) ([]Node, func() error, error) {
		return make([]Node, capacity), func() error { return errors.New("unmap failed") }, nil
	})
	p, err := New(Config{BlockCapacity: 1, Source: src})
	require.NoError(t, err)
	_, err = p.Allocate()
	require.NoError(t, err)
	_, err = p.Allocate()
	require.NoError(t, err)

	err = p.Release()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unmap failed")
}

func TestSourceByName(t *testing.T) {
	assert.IsType(t, HeapSource{}, SourceByName("heap"))
	assert.NotNil(t, SourceByName("mmap"))
	assert.NotNil(t, SourceByName(""))
}
