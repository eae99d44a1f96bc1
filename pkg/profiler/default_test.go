package profiler

import (
	"bytes"
	"context"
	"os"
	"testing"

	"github.com/ALEYI17/InfraSight_mpi/internal/exporter"
	"github.com/ALEYI17/InfraSight_mpi/pkg/logutil"
	"github.com/ALEYI17/InfraSight_mpi/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestProcessWideEngine(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("COLLPROF_CONFIG", "")
	t.Setenv("COLLPROF_OUTPUT_DIR", dir)
	t.Setenv("COLLPROF_ARENA_BACKING", "heap")
	t.Setenv("COLLPROF_RANK", "0")
	t.Setenv("COLLPROF_SIZE", "1")

	OnCallEnd(OnCallStart(), 8, false)
	assert.ErrorIs(t, Finalize(context.Background()), ErrNotInitialized)

	var out bytes.Buffer
	require.NoError(t, Initialize(WithOutput(&out), WithLogger(zap.NewNop())))
	assert.ErrorIs(t, Initialize(WithOutput(&out), WithLogger(zap.NewNop())), ErrInitialized)
	require.NotNil(t, Default())

	OnCallEnd(OnCallStart(), 8, false)
	OnOperationEnd(types.OpAlltoall, OnCallStart(), 8, true)
	require.NoError(t, Finalize(context.Background()))
	assert.Nil(t, Default())
	assert.ErrorIs(t, Finalize(context.Background()), ErrNotInitialized)

	_, err := os.Stat(exporter.LocalPath(dir, "collprof", 0))
	require.NoError(t, err)
	assert.Contains(t, out.String(), "\nAlltoall count:1 ")
	assert.Contains(t, out.String(), "\n8B count:1 ")
}

func TestInitializeKeepsInstalledLogger(t *testing.T) {
	t.Setenv("COLLPROF_CONFIG", "")
	t.Setenv("COLLPROF_OUTPUT_DIR", t.TempDir())
	t.Setenv("COLLPROF_MODE", "histogram")
	t.Setenv("COLLPROF_RANK", "0")
	t.Setenv("COLLPROF_SIZE", "1")
	t.Setenv("COLLPROF_LOG_LEVEL", "debug")

	core, logs := observer.New(zapcore.DebugLevel)
	installed := zap.New(core)
	logutil.SetLogger(installed)
	t.Cleanup(func() { logutil.SetLevel("") })

	require.NoError(t, Initialize(WithOutput(&bytes.Buffer{})))
	assert.Same(t, installed, logutil.GetLogger())
	require.NoError(t, Finalize(context.Background()))

	assert.Equal(t, 1, logs.FilterMessage("profiler initialized").Len())
	assert.Equal(t, 1, logs.FilterMessage("profiler finalized").Len())
}
