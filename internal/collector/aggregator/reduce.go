package aggregator

import (
	"context"
	"fmt"

	"github.com/ALEYI17/InfraSight_mpi/pkg/logutil"
	"github.com/ALEYI17/InfraSight_mpi/pkg/types"
	"go.uber.org/zap"
)

// Reduce sums local over every rank of comm. It is a collective: each rank
// must call it exactly once, and none returns before all have contributed.
// The root gets the summary; every other rank gets nil. local is not
// modified.
func Reduce(ctx context.Context, comm types.Communicator, root int, local *Histogram) (*Summary, error) {
	if root < 0 || root >= comm.Size() {
		return nil, fmt.Errorf("aggregator: root %d outside job of %d", root, comm.Size())
	}

	counts, times := local.vectors()
	if err := comm.ReduceSum(ctx, root, counts, times); err != nil {
		return nil, fmt.Errorf("aggregator: reduce: %w", err)
	}
	if comm.Rank() != root {
		return nil, nil
	}

	s := &Summary{Processes: comm.Size()}
	if err := s.Total.load(counts, times); err != nil {
		return nil, err
	}

	logutil.GetLogger().Debug("histograms reduced",
		zap.Int("processes", s.Processes),
		zap.Int64("host_calls", s.Total.Count(types.CategoryHost)),
		zap.Int64("device_calls", s.Total.Count(types.CategoryDevice)))
	return s, nil
}
