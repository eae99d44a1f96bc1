package aggregator

import "github.com/ALEYI17/InfraSight_mpi/pkg/types"

// Summary is the cluster-wide view held by the root after Reduce.
type Summary struct {
	Processes int
	Total     Histogram
}

func (s *Summary) avg(v float64) float64 {
	if s.Processes <= 0 {
		return 0
	}
	return v / float64(s.Processes)
}

// AvgCount returns the per-process average call count of bucket i.
func (s *Summary) AvgCount(cat types.Category, i int) float64 {
	return s.avg(float64(s.Total.Buckets[cat][i].Count))
}

// AvgTime returns the per-process average cumulative time of bucket i in
// seconds.
func (s *Summary) AvgTime(cat types.Category, i int) float64 {
	return s.avg(s.Total.Buckets[cat][i].Time)
}

// AvgOpCount returns the per-process average call count of op.
func (s *Summary) AvgOpCount(op types.Operation) float64 {
	return s.avg(float64(s.Total.Ops[op].Count))
}

// AvgOpTime returns the per-process average cumulative time of op in
// seconds.
func (s *Summary) AvgOpTime(op types.Operation) float64 {
	return s.avg(s.Total.Ops[op].Time)
}
