package aggregator

import (
	"testing"

	"github.com/ALEYI17/InfraSight_mpi/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistogramThreeEventScenario(t *testing.T) {
	h := NewHistogram()
	events := []types.Event{
		{Start: 1.0, End: 1.001, Size: 100, Op: types.OpAllreduce},
		{Start: 2.0, End: 2.002, Size: 100000, Op: types.OpAllreduce},
		{Start: 3.0, End: 3.0005, Size: 0, Op: types.OpBcast},
	}
	for _, ev := range events {
		require.NoError(t, h.Record(types.Observation{Category: types.CategoryHost, Event: ev}))
	}

	host := h.Buckets[types.CategoryHost]
	assert.Equal(t, int64(1), host[Classify(100)].Count)
	assert.Equal(t, int64(1), host[Classify(100000)].Count)
	assert.Equal(t, int64(1), host[0].Count)
	assert.InDelta(t, 0.001, host[Classify(100)].Time, 1e-9)
	assert.InDelta(t, 0.002, host[Classify(100000)].Time, 1e-9)
	assert.InDelta(t, 0.0005, host[0].Time, 1e-9)

	assert.Equal(t, int64(3), h.Count(types.CategoryHost))
	assert.Equal(t, int64(0), h.Count(types.CategoryDevice))
	assert.Equal(t, int64(2), h.Ops[types.OpAllreduce].Count)
	assert.Equal(t, int64(1), h.Ops[types.OpBcast].Count)
}

func TestHistogramEveryEventHitsOneBucket(t *testing.T) {
	h := NewHistogram()
	for i := int32(0); i < 2000; i += 7 {
		h.Add(types.CategoryDevice, i*1013, 0.01)
	}

	var total int64
	for _, b := range h.Buckets[types.CategoryDevice] {
		total += b.Count
	}
	assert.Equal(t, int64(286), total)
	assert.Equal(t, int64(0), h.Count(types.CategoryHost))
}

func TestHistogramUnknownOperation(t *testing.T) {
	h := NewHistogram()
	h.AddOp(types.Operation(200), 0.5)
	assert.Equal(t, int64(1), h.Ops[types.OpOther].Count)
}

func TestHistogramMerge(t *testing.T) {
	a := NewHistogram()
	b := NewHistogram()
	a.Add(types.CategoryHost, 64, 0.1)
	b.Add(types.CategoryHost, 64, 0.2)
	b.Add(types.CategoryDevice, 1<<20, 0.3)
	b.AddOp(types.OpAlltoall, 0.3)

	a.Merge(b)
	assert.Equal(t, int64(2), a.Buckets[types.CategoryHost][Classify(64)].Count)
	assert.InDelta(t, 0.3, a.Buckets[types.CategoryHost][Classify(64)].Time, 1e-9)
	assert.Equal(t, int64(1), a.Buckets[types.CategoryDevice][Classify(1<<20)].Count)
	assert.Equal(t, int64(1), a.Ops[types.OpAlltoall].Count)
}

func TestHistogramVectorsLoad(t *testing.T) {
	h := NewHistogram()
	h.Add(types.CategoryHost, 5, 1.5)
	h.Add(types.CategoryDevice, 1<<10, 2.5)
	h.AddOp(types.OpReduce, 4)

	counts, times := h.vectors()
	require.Len(t, counts, vectorLen)
	require.Len(t, times, vectorLen)

	var back Histogram
	require.NoError(t, back.load(counts, times))
	assert.Equal(t, *h, back)

	require.Error(t, back.load(counts[:3], times))
}
