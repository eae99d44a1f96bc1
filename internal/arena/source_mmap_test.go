//go:build linux || darwin || freebsd

package arena

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMmapSourceBlocks(t *testing.T) {
	p, err := New(Config{BlockCapacity: 128, Source: MmapSource{}})
	require.NoError(t, err)

	var prev *Node
	var first *Node
	for i := 0; i < 1000; i++ {
		n, err := p.Allocate()
		require.NoError(t, err)
		require.Equal(t, Node{}, *n)
		n.Event.Size = int32(i)
		if prev != nil {
			prev.Next = n
		} else {
			first = n
		}
		prev = n
	}

	count := 0
	for n := first; n != nil; n = n.Next {
		assert.Equal(t, int32(count), n.Event.Size)
		count++
	}
	assert.Equal(t, 1000, count)
	assert.Equal(t, 8, p.Blocks())

	require.NoError(t, p.Release())
}

func TestSourceByNameMmap(t *testing.T) {
	assert.IsType(t, MmapSource{}, SourceByName("mmap"))
	assert.IsType(t, MmapSource{}, DefaultSource())
}
