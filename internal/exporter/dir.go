package exporter

import (
	"context"
	"fmt"
	"os"

	"github.com/ALEYI17/InfraSight_mpi/pkg/types"
	"go.uber.org/multierr"
)

// PrepareDir creates dir on root, then holds every rank at a barrier so no
// rank opens its file before the directory exists. The barrier is entered
// even when creation fails.
func PrepareDir(ctx context.Context, comm types.Communicator, root int, dir string) error {
	var err error
	if comm.Rank() == root {
		if mkErr := os.MkdirAll(dir, 0o755); mkErr != nil {
			err = fmt.Errorf("exporter: create %s: %w", dir, mkErr)
		}
	}
	if bErr := comm.Barrier(ctx); bErr != nil {
		err = multierr.Append(err, fmt.Errorf("exporter: directory barrier: %w", bErr))
	}
	return err
}
