// Package profiler is the recording engine an interception layer drives:
// it times collective calls, files them by buffer locality into an
// arena-backed event log and a size-class histogram, and at shutdown
// writes the per-rank log and reduces the histograms onto the root rank.
//
// An Engine has one producer. Calls from several goroutines must be
// serialized by the caller.
package profiler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/ALEYI17/InfraSight_mpi/internal/arena"
	"github.com/ALEYI17/InfraSight_mpi/internal/collector"
	"github.com/ALEYI17/InfraSight_mpi/internal/collector/aggregator"
	"github.com/ALEYI17/InfraSight_mpi/internal/collector/timeserie"
	"github.com/ALEYI17/InfraSight_mpi/internal/config"
	"github.com/ALEYI17/InfraSight_mpi/internal/exporter"
	"github.com/ALEYI17/InfraSight_mpi/internal/metrics"
	"github.com/ALEYI17/InfraSight_mpi/pkg/logutil"
	"github.com/ALEYI17/InfraSight_mpi/pkg/types"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// ErrFinalized is returned by a second Finalize.
var ErrFinalized = errors.New("profiler: already finalized")

// Timestamp is the opaque start mark returned by OnCallStart.
type Timestamp float64

type Engine struct {
	cfg        config.Config
	logger     *zap.Logger
	comm       types.Communicator
	ownsComm   bool
	out        io.Writer
	classifier types.LocalityClassifier
	sizer      types.MessageSizer

	start     time.Time
	pool      *arena.Pool
	log       *timeserie.EventLog
	hist      *aggregator.Histogram
	set       *collector.Set
	registry  *prometheus.Registry
	finalized bool
}

type Option func(*Engine)

// WithCommunicator makes the engine reduce through c instead of building a
// transport from the configuration. The caller keeps ownership of c.
func WithCommunicator(c types.Communicator) Option {
	return func(e *Engine) { e.comm = c }
}

// WithOutput sets where the root prints the cluster summary (stdout by
// default).
func WithOutput(w io.Writer) Option {
	return func(e *Engine) { e.out = w }
}

// WithLogger replaces the process logger for this engine.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithClassifier sets the buffer locality classifier used by Observe.
func WithClassifier(c types.LocalityClassifier) Option {
	return func(e *Engine) { e.classifier = c }
}

// WithSizer sets the message size computer used by Observe.
func WithSizer(s types.MessageSizer) Option {
	return func(e *Engine) { e.sizer = s }
}

// New initializes an engine: it sets up the transport, allocates the first
// arena block and starts the clock. It must run before any recording call.
func New(cfg *config.Config, opts ...Option) (*Engine, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	e := &Engine{
		cfg:        *cfg,
		out:        os.Stdout,
		classifier: types.HostOnly,
		sizer:      types.ElemSizer{},
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = logutil.GetLogger()
	}

	if e.comm != nil {
		e.cfg.Rank, e.cfg.Size = e.comm.Rank(), e.comm.Size()
		e.cfg.Transport = ""
	}
	if err := e.cfg.Validate(); err != nil {
		return nil, fmt.Errorf("profiler: %w", err)
	}
	if e.comm == nil {
		comm, err := newCommunicator(&e.cfg)
		if err != nil {
			return nil, fmt.Errorf("profiler: communicator: %w", err)
		}
		e.comm = comm
		e.ownsComm = true
	}
	e.logger = e.logger.With(zap.Int("rank", e.cfg.Rank))

	var collectors []types.Collector
	if e.cfg.RecordsLog() {
		pool, err := arena.New(arena.Config{
			BlockCapacity: e.cfg.Arena.BlockCapacity,
			MaxBlocks:     e.cfg.Arena.MaxBlocks,
			Source:        arena.SourceByName(e.cfg.Arena.Backing),
		})
		if err != nil {
			e.logger.Warn("event arena unavailable, event log disabled", zap.Error(err))
		} else {
			e.pool = pool
			e.log = timeserie.NewEventLog(pool)
			collectors = append(collectors, e.log)
		}
	}
	if e.cfg.RecordsHistogram() {
		e.hist = aggregator.NewHistogram()
		collectors = append(collectors, e.hist)
	}
	e.set = collector.NewSet(collectors...)
	e.registry = metrics.NewRegistry(e, e.cfg.Rank)

	e.logger.Debug("profiler initialized",
		zap.Int("size", e.cfg.Size),
		zap.String("mode", e.cfg.Mode),
		zap.String("transport", e.cfg.ResolvedTransport()))
	e.start = time.Now()
	return e, nil
}

func (e *Engine) now() float64 {
	return time.Since(e.start).Seconds()
}

// OnCallStart marks the start of an instrumented call.
func (e *Engine) OnCallStart() Timestamp {
	if e == nil {
		return 0
	}
	return Timestamp(e.now())
}

// OnCallEnd records a call that started at start and moved size bytes.
func (e *Engine) OnCallEnd(start Timestamp, size int, device bool) {
	e.OnOperationEnd(types.OpOther, start, size, device)
}

// OnOperationEnd is OnCallEnd with the collective that was called.
func (e *Engine) OnOperationEnd(op types.Operation, start Timestamp, size int, device bool) {
	if e == nil || e.finalized {
		return
	}
	obs := types.Observation{
		Category: types.CategoryOf(device),
		Event: types.Event{
			Start: float64(start),
			End:   e.now(),
			Size:  clampSize(size),
			Op:    op,
		},
	}
	if err := e.set.Record(obs); err != nil {
		e.logger.Warn("recording disabled for the rest of the run",
			zap.Int64("recorded", e.set.Recorded(types.CategoryHost)+e.set.Recorded(types.CategoryDevice)),
			zap.Error(err))
	}
}

// Observe times call as one op on count elements of dt at buffer address
// buf, classifying the buffer and sizing the message with the engine's
// collaborators. It returns call's error untouched.
func (e *Engine) Observe(op types.Operation, buf uintptr, count int, dt types.Datatype, call func() error) error {
	if e == nil || e.finalized {
		return call()
	}
	size := e.sizer.MessageSize(count, dt)
	device := e.classifier.IsDevice(buf)
	start := e.OnCallStart()
	err := call()
	e.OnOperationEnd(op, start, size, device)
	return err
}

func clampSize(size int) int32 {
	switch {
	case size < 0:
		return 0
	case size > math.MaxInt32:
		return math.MaxInt32
	default:
		return int32(size)
	}
}

// Finalize stops recording, writes this rank's event log, reduces the
// histograms onto the root (which prints the summary) and releases the
// arena. Every rank of the job must call it exactly once. Local export
// failures are logged and returned but never skip the reduction.
func (e *Engine) Finalize(ctx context.Context) error {
	if e == nil {
		return ErrNotInitialized
	}
	if e.finalized {
		return ErrFinalized
	}
	e.finalized = true
	e.set.Disable()
	wall := e.now()

	ctx, cancel := context.WithTimeout(ctx, e.cfg.Timeout)
	defer cancel()

	var err error
	if e.cfg.RecordsLog() || e.cfg.MetricsTextfile {
		if dirErr := exporter.PrepareDir(ctx, e.comm, e.cfg.Root, e.cfg.OutputDir); dirErr != nil {
			e.logger.Error("output directory not ready", zap.String("dir", e.cfg.OutputDir), zap.Error(dirErr))
			err = multierr.Append(err, dirErr)
		}
	}
	if e.cfg.RecordsLog() {
		err = multierr.Append(err, e.exportLocal(wall))
	}
	if e.hist != nil {
		err = multierr.Append(err, e.reduce(ctx))
	}
	if e.cfg.MetricsTextfile {
		path := filepath.Join(e.cfg.OutputDir, fmt.Sprintf("%s_rank%d.prom", e.cfg.FilePrefix, e.cfg.Rank))
		if mErr := metrics.WriteTextfile(path, e.registry); mErr != nil {
			e.logger.Error("metrics textfile not written", zap.String("path", path), zap.Error(mErr))
			err = multierr.Append(err, mErr)
		}
	}

	e.logger.Debug("profiler finalized",
		zap.Float64("wall_time", wall),
		zap.Int64("host_events", e.set.Recorded(types.CategoryHost)),
		zap.Int64("device_events", e.set.Recorded(types.CategoryDevice)),
		zap.Int64("dropped", e.set.Dropped()))

	if e.pool != nil {
		err = multierr.Append(err, e.pool.Release())
	}
	if e.ownsComm {
		err = multierr.Append(err, e.comm.Close())
	}
	return err
}

func (e *Engine) exportLocal(wall float64) error {
	if e.log == nil {
		return nil
	}
	path := exporter.LocalPath(e.cfg.OutputDir, e.cfg.FilePrefix, e.cfg.Rank)
	h := exporter.Header{Rank: e.cfg.Rank, Processes: e.cfg.Size, Wall: wall}
	if err := exporter.ExportLocal(path, h, e.log); err != nil {
		e.logger.Error("event log discarded", zap.String("path", path), zap.Int("events", e.log.Total()), zap.Error(err))
		return err
	}
	return nil
}

func (e *Engine) reduce(ctx context.Context) error {
	summary, err := aggregator.Reduce(ctx, e.comm, e.cfg.Root, e.hist)
	if err != nil {
		e.logger.Error("histogram reduction failed", zap.Error(err))
		return err
	}
	if summary == nil {
		return nil
	}
	if err := exporter.WriteSummary(e.out, summary); err != nil {
		e.logger.Error("summary not printed", zap.Error(err))
		return err
	}
	return nil
}

// Registry returns the engine's self-metrics. Gather it only while no
// recording call is running.
func (e *Engine) Registry() *prometheus.Registry { return e.registry }

// Rank returns the engine's rank in the job.
func (e *Engine) Rank() int { return e.cfg.Rank }

// Size returns the number of ranks in the job.
func (e *Engine) Size() int { return e.cfg.Size }

func (e *Engine) ArenaBlocks() int {
	if e.pool == nil {
		return 0
	}
	return e.pool.Blocks()
}

func (e *Engine) ArenaNodes() int {
	if e.pool == nil {
		return 0
	}
	return e.pool.Issued()
}

// Recorded returns the number of calls of cat recorded so far.
func (e *Engine) Recorded(cat types.Category) int64 { return e.set.Recorded(cat) }

// Dropped returns the number of calls seen while recording was disabled.
func (e *Engine) Dropped() int64 { return e.set.Dropped() }

// RecordingDisabled reports whether an allocation failure stopped recording.
func (e *Engine) RecordingDisabled() bool { return e.set.Err() != nil }
