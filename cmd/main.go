package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/ALEYI17/InfraSight_mpi/pkg/logutil"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newRootCommand() *cobra.Command {
	var level string
	cmd := &cobra.Command{
		Use:   "collprof",
		Short: "Collective call profiler tools",
		Long: `collprof works with the output of the collective call profiler.

Use 'collprof summarize' to build the cluster summary from per-rank event
logs, and 'collprof simulate' to run a synthetic job through the engine.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if level != "" {
				logutil.SetLevel(level)
			}
		},
	}
	cmd.PersistentFlags().StringVar(&level, "log-level", "", "Log level (debug, info, warn, error)")
	cmd.AddCommand(newSummarizeCmd(), newSimulateCmd())
	return cmd
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	logutil.InitLogger()

	logger := logutil.GetLogger()
	defer logger.Sync()

	go func() {
		sigch := make(chan os.Signal, 1)
		signal.Notify(sigch, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigch
		logger.Info("Received signal, shutting down", zap.String("signal", sig.String()))
		cancel()
	}()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		logutil.GetLogger().Error("command failed", zap.Error(err))
		os.Exit(1)
	}
}
