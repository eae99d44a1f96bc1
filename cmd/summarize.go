package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/ALEYI17/InfraSight_mpi/internal/collector/aggregator"
	"github.com/ALEYI17/InfraSight_mpi/internal/exporter"
	"github.com/ALEYI17/InfraSight_mpi/pkg/logutil"
	"github.com/ALEYI17/InfraSight_mpi/pkg/types"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newSummarizeCmd() *cobra.Command {
	var allowTruncated bool
	cmd := &cobra.Command{
		Use:   "summarize <file>...",
		Short: "Print the cluster summary of per-rank event logs",
		Long: `Summarize reads the per-rank files written in log mode and prints the
size-class summary the histogram mode would have printed, averaged over
the files given.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			files := make([]*exporter.LocalFile, 0, len(args))
			for _, path := range args {
				lf, err := readLocalFile(path)
				if err != nil {
					if !allowTruncated || !errors.Is(err, exporter.ErrTruncated) {
						return err
					}
					logutil.GetLogger().Warn("using truncated event log", zap.String("path", path))
				}
				files = append(files, lf)
			}
			return exporter.WriteSummary(cmd.OutOrStdout(), summarize(files))
		},
	}
	cmd.Flags().BoolVar(&allowTruncated, "allow-truncated", false, "Accept files that end without a summary line")
	return cmd
}

func readLocalFile(path string) (*exporter.LocalFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	lf, err := exporter.ParseLocal(f)
	if err != nil {
		return lf, fmt.Errorf("%s: %w", path, err)
	}
	return lf, nil
}

// summarize rebuilds each file's histogram and merges them; each file
// counts as one process.
func summarize(files []*exporter.LocalFile) *aggregator.Summary {
	total := aggregator.NewHistogram()
	for _, lf := range files {
		h := aggregator.NewHistogram()
		for cat, evs := range lf.Events {
			for _, ev := range evs {
				h.Record(types.Observation{Category: types.Category(cat), Event: ev})
			}
		}
		total.Merge(h)
	}
	return &aggregator.Summary{Processes: len(files), Total: *total}
}
