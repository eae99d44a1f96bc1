package main

import (
	"context"
	"io"
	"math/rand/v2"
	"time"

	"github.com/ALEYI17/InfraSight_mpi/internal/collective"
	"github.com/ALEYI17/InfraSight_mpi/internal/config"
	"github.com/ALEYI17/InfraSight_mpi/pkg/profiler"
	"github.com/ALEYI17/InfraSight_mpi/pkg/types"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

type simulation struct {
	ranks   int
	calls   int
	seed    uint64
	workDur time.Duration
	cfg     *config.Config
}

// deviceBit tags synthetic buffer addresses that live in accelerator memory.
const deviceBit uintptr = 1

var simulatedOps = []types.Operation{
	types.OpAllreduce, types.OpBcast, types.OpReduce,
	types.OpAllgather, types.OpAlltoall, types.OpBarrier,
}

func newSimulateCmd() *cobra.Command {
	sim := simulation{cfg: config.Default()}
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run a synthetic job through the profiler",
		Long: `Simulate starts one engine per rank in this process, joined by an
in-memory group, drives a random collective workload through them and
finalizes them together. Rank 0 prints the cluster summary.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return sim.run(cmd.Context(), cmd.OutOrStdout())
		},
	}
	f := cmd.Flags()
	f.IntVar(&sim.ranks, "ranks", 4, "Number of simulated ranks")
	f.IntVar(&sim.calls, "calls", 1000, "Collective calls per rank")
	f.Uint64Var(&sim.seed, "seed", 1, "Workload seed")
	f.DurationVar(&sim.workDur, "work", 0, "Time each synthetic call takes")
	f.StringVar(&sim.cfg.OutputDir, "output-dir", sim.cfg.OutputDir, "Directory for per-rank event logs")
	f.StringVar(&sim.cfg.FilePrefix, "prefix", sim.cfg.FilePrefix, "Per-rank file name prefix")
	f.StringVar(&sim.cfg.Mode, "mode", sim.cfg.Mode, "Recording mode (histogram, log, both)")
	f.StringVar(&sim.cfg.Arena.Backing, "backing", sim.cfg.Arena.Backing, "Arena memory (mmap, heap)")
	f.BoolVar(&sim.cfg.MetricsTextfile, "metrics", false, "Write per-rank metrics textfiles")
	return cmd
}

func (s simulation) run(ctx context.Context, out io.Writer) error {
	comms := collective.NewLocalGroup(s.ranks)
	defer func() {
		for _, c := range comms {
			c.Close()
		}
	}()

	device := types.LocalityFunc(func(addr uintptr) bool { return addr&deviceBit != 0 })
	engines := make([]*profiler.Engine, s.ranks)
	for r := range engines {
		opts := []profiler.Option{profiler.WithCommunicator(comms[r]), profiler.WithClassifier(device)}
		if r == 0 {
			opts = append(opts, profiler.WithOutput(out))
		} else {
			opts = append(opts, profiler.WithOutput(io.Discard))
		}
		e, err := profiler.New(s.cfg, opts...)
		if err != nil {
			return err
		}
		engines[r] = e
	}

	g, gctx := errgroup.WithContext(ctx)
	for r, e := range engines {
		g.Go(func() error {
			s.workload(gctx, e, rand.New(rand.NewPCG(s.seed, uint64(r))))
			return e.Finalize(ctx)
		})
	}
	return g.Wait()
}

func (s simulation) workload(ctx context.Context, e *profiler.Engine, rng *rand.Rand) {
	for i := 0; i < s.calls && ctx.Err() == nil; i++ {
		op := simulatedOps[rng.IntN(len(simulatedOps))]
		count := rng.IntN(1 << 20)
		addr := uintptr(rng.Uint32()) &^ deviceBit
		if rng.IntN(4) == 0 {
			addr |= deviceBit
		}
		e.Observe(op, addr, count, types.DatatypeFloat32, func() error {
			if s.workDur > 0 {
				time.Sleep(s.workDur)
			}
			return nil
		})
	}
}
