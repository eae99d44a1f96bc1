package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ALEYI17/InfraSight_mpi/pkg/types"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	blocks, nodes int
	recorded      [types.NumCategories]int64
	dropped       int64
}

func (f *fakeSource) ArenaBlocks() int                  { return f.blocks }
func (f *fakeSource) ArenaNodes() int                   { return f.nodes }
func (f *fakeSource) Recorded(cat types.Category) int64 { return f.recorded[cat] }
func (f *fakeSource) Dropped() int64                    { return f.dropped }

func TestRegistryReadsSource(t *testing.T) {
	src := &fakeSource{blocks: 2, nodes: 9, dropped: 1}
	src.recorded[types.CategoryHost] = 7
	src.recorded[types.CategoryDevice] = 2
	reg := NewRegistry(src, 3)

	expected := `
# HELP collprof_arena_blocks Number of blocks in the event arena.
# TYPE collprof_arena_blocks gauge
collprof_arena_blocks{rank="3"} 2
# HELP collprof_events_recorded_total Collective calls recorded, by buffer locality.
# TYPE collprof_events_recorded_total counter
collprof_events_recorded_total{category="device",rank="3"} 2
collprof_events_recorded_total{category="host",rank="3"} 7
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected),
		"collprof_arena_blocks", "collprof_events_recorded_total"))

	// values follow the source
	src.blocks = 5
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(`
# HELP collprof_arena_blocks Number of blocks in the event arena.
# TYPE collprof_arena_blocks gauge
collprof_arena_blocks{rank="3"} 5
`), "collprof_arena_blocks"))
}

func TestWriteTextfile(t *testing.T) {
	reg := NewRegistry(&fakeSource{nodes: 4}, 0)
	path := filepath.Join(t.TempDir(), "rank0.prom")
	require.NoError(t, WriteTextfile(path, reg))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `collprof_arena_nodes{rank="0"} 4`)
	assert.Contains(t, string(data), `collprof_events_dropped_total{rank="0"} 0`)
}
