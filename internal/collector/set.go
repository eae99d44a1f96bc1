// Package collector fans each observation out to the enabled collectors.
package collector

import (
	"github.com/ALEYI17/InfraSight_mpi/pkg/types"
)

// Set dispatches observations to its collectors in order. The first error
// from any collector disables the whole set, so collectors never disagree
// on which calls were seen; put collectors that can fail first.
type Set struct {
	collectors []types.Collector
	disabled   bool
	err        error
	recorded   [types.NumCategories]int64
	dropped    int64
}

func NewSet(collectors ...types.Collector) *Set {
	s := &Set{}
	for _, c := range collectors {
		if c != nil {
			s.collectors = append(s.collectors, c)
		}
	}
	return s
}

// Record returns the collector error on the call that disables the set and
// nil otherwise; later observations are only counted as dropped.
func (s *Set) Record(obs types.Observation) error {
	if s.disabled {
		s.dropped++
		return nil
	}
	for _, c := range s.collectors {
		if err := c.Record(obs); err != nil {
			s.disabled = true
			s.err = err
			s.dropped++
			return err
		}
	}
	s.recorded[obs.Category]++
	return nil
}

// Disable stops recording without an error.
func (s *Set) Disable() {
	s.disabled = true
}

// Disabled reports whether recording has stopped.
func (s *Set) Disabled() bool { return s.disabled }

// Err returns the error that disabled the set, if any.
func (s *Set) Err() error { return s.err }

// Recorded returns the number of observations of cat every collector took.
func (s *Set) Recorded(cat types.Category) int64 { return s.recorded[cat] }

// Dropped returns the number of observations not recorded.
func (s *Set) Dropped() int64 { return s.dropped }
