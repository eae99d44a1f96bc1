// Package aggregator holds the size-class histogram and its cluster-wide
// reduction.
package aggregator

import (
	"fmt"

	"github.com/ALEYI17/InfraSight_mpi/pkg/types"
)

// Bucket accumulates a call count and the summed duration in seconds.
type Bucket struct {
	Count int64
	Time  float64
}

func (b *Bucket) add(duration float64) {
	b.Count++
	b.Time += duration
}

// Histogram counts calls per size class and category, with a per-operation
// total alongside. Its size is fixed regardless of call volume.
type Histogram struct {
	Buckets [types.NumCategories][NumBuckets]Bucket
	Ops     [types.NumOperations]Bucket
}

func NewHistogram() *Histogram {
	return &Histogram{}
}

// Add records one call of the given size and duration under cat.
func (h *Histogram) Add(cat types.Category, size int32, duration float64) {
	h.Buckets[cat][Classify(size)].add(duration)
}

// AddOp records one call of op in the per-operation totals.
func (h *Histogram) AddOp(op types.Operation, duration float64) {
	if int(op) >= types.NumOperations {
		op = types.OpOther
	}
	h.Ops[op].add(duration)
}

func (h *Histogram) Record(obs types.Observation) error {
	d := obs.Event.Duration()
	h.Add(obs.Category, obs.Event.Size, d)
	h.AddOp(obs.Event.Op, d)
	return nil
}

// Count returns the number of calls recorded under cat.
func (h *Histogram) Count(cat types.Category) int64 {
	var n int64
	for _, b := range h.Buckets[cat] {
		n += b.Count
	}
	return n
}

// Merge adds o into h bucket by bucket.
func (h *Histogram) Merge(o *Histogram) {
	for c := range h.Buckets {
		for i := range h.Buckets[c] {
			h.Buckets[c][i].Count += o.Buckets[c][i].Count
			h.Buckets[c][i].Time += o.Buckets[c][i].Time
		}
	}
	for i := range h.Ops {
		h.Ops[i].Count += o.Ops[i].Count
		h.Ops[i].Time += o.Ops[i].Time
	}
}

// vectorLen is the length of the flat arrays exchanged by Reduce.
const vectorLen = types.NumCategories*NumBuckets + types.NumOperations

// vectors flattens h into the count and time arrays used on the wire:
// category-major buckets first, then operations.
func (h *Histogram) vectors() ([]int64, []float64) {
	counts := make([]int64, 0, vectorLen)
	times := make([]float64, 0, vectorLen)
	for c := range h.Buckets {
		for _, b := range h.Buckets[c] {
			counts = append(counts, b.Count)
			times = append(times, b.Time)
		}
	}
	for _, b := range h.Ops {
		counts = append(counts, b.Count)
		times = append(times, b.Time)
	}
	return counts, times
}

func (h *Histogram) load(counts []int64, times []float64) error {
	if len(counts) != vectorLen || len(times) != vectorLen {
		return fmt.Errorf("aggregator: vector length %d/%d, want %d", len(counts), len(times), vectorLen)
	}
	k := 0
	for c := range h.Buckets {
		for i := range h.Buckets[c] {
			h.Buckets[c][i] = Bucket{Count: counts[k], Time: times[k]}
			k++
		}
	}
	for i := range h.Ops {
		h.Ops[i] = Bucket{Count: counts[k], Time: times[k]}
		k++
	}
	return nil
}
