package timeserie

import (
	"testing"

	"github.com/ALEYI17/InfraSight_mpi/internal/arena"
	"github.com/ALEYI17/InfraSight_mpi/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLog(t *testing.T, cfg arena.Config) (*EventLog, *arena.Pool) {
	t.Helper()
	pool, err := arena.New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() {
		if !pool.Released() {
			pool.Release()
		}
	})
	return NewEventLog(pool), pool
}

func TestAppendIterateFIFO(t *testing.T) {
	log, _ := newLog(t, arena.Config{BlockCapacity: 4})

	var host, device []types.Event
	for i := 0; i < 25; i++ {
		ev := types.Event{Start: float64(i), End: float64(i) + 0.25, Size: int32(i), Op: types.OpAllreduce}
		cat := types.CategoryOf(i%3 == 0)
		require.NoError(t, log.Append(cat, ev))
		if cat == types.CategoryDevice {
			device = append(device, ev)
		} else {
			host = append(host, ev)
		}
	}

	assert.Equal(t, host, log.Events(types.CategoryHost))
	assert.Equal(t, device, log.Events(types.CategoryDevice))
	assert.Equal(t, len(host), log.Len(types.CategoryHost))
	assert.Equal(t, len(device), log.Len(types.CategoryDevice))
	assert.Equal(t, 25, log.Total())
}

func TestIterateEmpty(t *testing.T) {
	log, _ := newLog(t, arena.Config{BlockCapacity: 2})

	n := 0
	for range log.Iterate(types.CategoryDevice) {
		n++
	}
	assert.Zero(t, n)
	assert.Empty(t, log.Events(types.CategoryHost))
}

func TestIterateRestartableAndStoppable(t *testing.T) {
	log, _ := newLog(t, arena.Config{BlockCapacity: 2})
	for i := 0; i < 5; i++ {
		require.NoError(t, log.Record(types.Observation{
			Category: types.CategoryHost,
			Event:    types.Event{Size: int32(i)},
		}))
	}

	first := log.Events(types.CategoryHost)
	second := log.Events(types.CategoryHost)
	assert.Equal(t, first, second)

	var seen []int32
	for ev := range log.Iterate(types.CategoryHost) {
		seen = append(seen, ev.Size)
		if len(seen) == 2 {
			break
		}
	}
	assert.Equal(t, []int32{0, 1}, seen)
}

func TestAppendAfterOutOfMemoryKeepsLog(t *testing.T) {
	log, _ := newLog(t, arena.Config{BlockCapacity: 2, MaxBlocks: 1, Source: arena.HeapSource{}})

	require.NoError(t, log.Append(types.CategoryHost, types.Event{Size: 1}))
	require.NoError(t, log.Append(types.CategoryDevice, types.Event{Size: 2}))

	err := log.Append(types.CategoryHost, types.Event{Size: 3})
	require.ErrorIs(t, err, arena.ErrOutOfMemory)

	assert.Equal(t, 1, log.Len(types.CategoryHost))
	assert.Equal(t, []types.Event{{Size: 1}}, log.Events(types.CategoryHost))
	assert.Equal(t, []types.Event{{Size: 2}}, log.Events(types.CategoryDevice))
}

func TestAppendAfterRelease(t *testing.T) {
	log, pool := newLog(t, arena.Config{BlockCapacity: 2})
	require.NoError(t, pool.Release())

	err := log.Append(types.CategoryHost, types.Event{})
	require.ErrorIs(t, err, arena.ErrReleased)
	assert.Zero(t, log.Total())
}
