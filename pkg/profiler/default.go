package profiler

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/ALEYI17/InfraSight_mpi/internal/config"
	"github.com/ALEYI17/InfraSight_mpi/pkg/logutil"
	"github.com/ALEYI17/InfraSight_mpi/pkg/types"
	"go.uber.org/zap"
)

var (
	// ErrInitialized is returned by Initialize when an engine is running.
	ErrInitialized = errors.New("profiler: already initialized")
	// ErrNotInitialized is returned by Finalize without a running engine.
	ErrNotInitialized = errors.New("profiler: not initialized")
)

var std atomic.Pointer[Engine]

// Initialize starts the process-wide engine from COLLPROF_CONFIG and the
// environment. Recording calls made before it, or after Finalize, are
// ignored.
func Initialize(opts ...Option) error {
	logutil.InitLogger()
	cfg := config.LoadConfig()
	if cfg.LogLevel != "" {
		logutil.SetLevel(cfg.LogLevel)
	}

	e, err := New(cfg, opts...)
	if err != nil {
		logutil.GetLogger().Error("profiler not started", zap.Error(err))
		return err
	}
	if !std.CompareAndSwap(nil, e) {
		e.discard()
		return ErrInitialized
	}
	return nil
}

// Default returns the process-wide engine, or nil.
func Default() *Engine { return std.Load() }

func OnCallStart() Timestamp {
	return std.Load().OnCallStart()
}

func OnCallEnd(start Timestamp, size int, device bool) {
	std.Load().OnCallEnd(start, size, device)
}

func OnOperationEnd(op types.Operation, start Timestamp, size int, device bool) {
	std.Load().OnOperationEnd(op, start, size, device)
}

// Finalize finalizes and detaches the process-wide engine.
func Finalize(ctx context.Context) error {
	e := std.Swap(nil)
	if e == nil {
		return ErrNotInitialized
	}
	return e.Finalize(ctx)
}

// discard releases an engine that never recorded without any collective.
func (e *Engine) discard() {
	e.finalized = true
	if e.pool != nil {
		e.pool.Release()
	}
	if e.ownsComm {
		e.comm.Close()
	}
}
