package exporter

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ALEYI17/InfraSight_mpi/pkg/types"
)

// ErrTruncated is returned with the events read so far when a local file
// ends without its summary line.
var ErrTruncated = errors.New("exporter: local file has no summary line")

// LocalFile is the parsed content of one rank's file.
type LocalFile struct {
	Header
	Events [types.NumCategories][]types.Event
	Counts [types.NumCategories]int
}

// ParseLocal reads a file written by WriteLocal. Operation tags are not
// stored in the file; parsed events carry OpOther.
func ParseLocal(r io.Reader) (*LocalFile, error) {
	lf := &LocalFile{}
	cat := types.Category(-1)
	summary := false

	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		if strings.HasPrefix(text, "#") {
			switch strings.TrimSpace(strings.TrimPrefix(text, "#")) {
			case types.CategoryHost.String():
				cat = types.CategoryHost
			case types.CategoryDevice.String():
				cat = types.CategoryDevice
			}
			continue
		}
		if summary {
			return lf, fmt.Errorf("exporter: line %d: data after summary line", line)
		}

		fields := strings.Split(text, "\t")
		switch len(fields) {
		case 4:
			if cat < 0 {
				return lf, fmt.Errorf("exporter: line %d: event before any category header", line)
			}
			ev, rank, err := parseEvent(fields)
			if err != nil {
				return lf, fmt.Errorf("exporter: line %d: %w", line, err)
			}
			lf.Rank = rank
			lf.Events[cat] = append(lf.Events[cat], ev)
		case 5:
			if err := parseSummary(fields, lf); err != nil {
				return lf, fmt.Errorf("exporter: line %d: %w", line, err)
			}
			summary = true
		default:
			return lf, fmt.Errorf("exporter: line %d: %d fields", line, len(fields))
		}
	}
	if err := sc.Err(); err != nil {
		return lf, err
	}
	if !summary {
		return lf, ErrTruncated
	}
	for c := range lf.Events {
		if len(lf.Events[c]) != lf.Counts[c] {
			return lf, fmt.Errorf("exporter: %s section has %d events, summary says %d",
				types.Category(c), len(lf.Events[c]), lf.Counts[c])
		}
	}
	return lf, nil
}

func parseEvent(f []string) (types.Event, int, error) {
	rank, err := strconv.Atoi(f[0])
	if err != nil {
		return types.Event{}, 0, err
	}
	start, err := strconv.ParseFloat(f[1], 64)
	if err != nil {
		return types.Event{}, 0, err
	}
	end, err := strconv.ParseFloat(f[2], 64)
	if err != nil {
		return types.Event{}, 0, err
	}
	size, err := strconv.ParseInt(f[3], 10, 32)
	if err != nil {
		return types.Event{}, 0, err
	}
	return types.Event{Start: start, End: end, Size: int32(size)}, rank, nil
}

func parseSummary(f []string, lf *LocalFile) error {
	var err error
	if lf.Rank, err = strconv.Atoi(f[0]); err != nil {
		return err
	}
	if lf.Processes, err = strconv.Atoi(f[1]); err != nil {
		return err
	}
	if lf.Wall, err = strconv.ParseFloat(f[2], 64); err != nil {
		return err
	}
	if lf.Counts[types.CategoryHost], err = strconv.Atoi(f[3]); err != nil {
		return err
	}
	if lf.Counts[types.CategoryDevice], err = strconv.Atoi(f[4]); err != nil {
		return err
	}
	return nil
}
