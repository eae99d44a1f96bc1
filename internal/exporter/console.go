package exporter

import (
	"bufio"
	"fmt"
	"io"
	"strconv"

	"github.com/ALEYI17/InfraSight_mpi/internal/collector/aggregator"
	"github.com/ALEYI17/InfraSight_mpi/pkg/types"
)

var sizeSuffixes = []string{"B", "KB", "MB", "GB", "TB"}

// FormatSize renders a byte count with a binary magnitude suffix, e.g.
// 1024 as 1KB. Values not divisible by the next unit keep the smaller one.
func FormatSize(n int64) string {
	i := 0
	for n >= 1024 && n%1024 == 0 && i < len(sizeSuffixes)-1 {
		n /= 1024
		i++
	}
	return strconv.FormatInt(n, 10) + sizeSuffixes[i]
}

var sectionTitles = [types.NumCategories]string{
	types.CategoryHost:   "Host-resident sizes:",
	types.CategoryDevice: "Device-resident sizes:",
}

// WriteSummary prints s with counts and times averaged over the processes,
// times in microseconds: one line per size bucket per category, then one
// line per operation.
func WriteSummary(w io.Writer, s *aggregator.Summary) error {
	bw := bufio.NewWriter(w)
	for _, cat := range categories {
		fmt.Fprintln(bw, sectionTitles[cat])
		for i := 0; i < aggregator.NumBuckets; i++ {
			fmt.Fprintf(bw, "%s count:%s time:%.1f\n",
				FormatSize(aggregator.BucketSize(i)),
				strconv.FormatFloat(s.AvgCount(cat, i), 'f', -1, 64),
				s.AvgTime(cat, i)*1e6)
		}
	}
	fmt.Fprintln(bw, "Operations:")
	for op := types.Operation(0); int(op) < types.NumOperations; op++ {
		if s.Total.Ops[op].Count == 0 {
			continue
		}
		fmt.Fprintf(bw, "%s count:%s time:%.1f\n", op,
			strconv.FormatFloat(s.AvgOpCount(op), 'f', -1, 64),
			s.AvgOpTime(op)*1e6)
	}
	return bw.Flush()
}
