// Package exporter writes the per-rank event log file and the root's
// cluster summary, and reads per-rank files back.
package exporter

import (
	"bufio"
	"fmt"
	"io"
	"iter"
	"os"
	"path/filepath"

	"github.com/ALEYI17/InfraSight_mpi/pkg/types"
	"go.uber.org/multierr"
)

// EventSource is the read side of an event log.
type EventSource interface {
	Iterate(cat types.Category) iter.Seq[types.Event]
	Len(cat types.Category) int
}

// Header identifies the rank a local file belongs to.
type Header struct {
	Rank      int
	Processes int
	// Wall is the rank's profiled wall time in seconds.
	Wall float64
}

var categories = [types.NumCategories]types.Category{types.CategoryHost, types.CategoryDevice}

// LocalPath returns <dir>/<prefix>_rank<N>.txt.
func LocalPath(dir, prefix string, rank int) string {
	return filepath.Join(dir, fmt.Sprintf("%s_rank%d.txt", prefix, rank))
}

// WriteLocal writes every event of src, one category section at a time in
// creation order, then the summary line.
func WriteLocal(w io.Writer, h Header, src EventSource) error {
	bw := bufio.NewWriter(w)
	for _, cat := range categories {
		if _, err := fmt.Fprintf(bw, "# %s\n", cat); err != nil {
			return err
		}
		for ev := range src.Iterate(cat) {
			if _, err := fmt.Fprintf(bw, "%d\t%.6f\t%.6f\t%d\n", h.Rank, ev.Start, ev.End, ev.Size); err != nil {
				return err
			}
		}
	}
	if _, err := fmt.Fprintf(bw, "%d\t%d\t%.6f\t%d\t%d\n", h.Rank, h.Processes, h.Wall,
		src.Len(types.CategoryHost), src.Len(types.CategoryDevice)); err != nil {
		return err
	}
	return bw.Flush()
}

// ExportLocal creates path and writes the rank's log into it.
func ExportLocal(path string, h Header, src EventSource) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("exporter: open %s: %w", path, err)
	}
	defer func() {
		err = multierr.Append(err, f.Close())
	}()

	if err := WriteLocal(f, h, src); err != nil {
		return fmt.Errorf("exporter: write %s: %w", path, err)
	}
	return nil
}
