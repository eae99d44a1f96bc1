package timeserie

import (
	"iter"

	"github.com/ALEYI17/InfraSight_mpi/pkg/types"
)

// Iterate yields the events of cat in append order. The sequence is lazy
// and can be ranged over any number of times. It must not be used after
// the backing pool is released.
func (l *EventLog) Iterate(cat types.Category) iter.Seq[types.Event] {
	return func(yield func(types.Event) bool) {
		for n := l.heads[cat].Next; n != nil; n = n.Next {
			if !yield(n.Event) {
				return
			}
		}
	}
}

// Events collects Iterate(cat) into a slice.
func (l *EventLog) Events(cat types.Category) []types.Event {
	events := make([]types.Event, 0, l.counts[cat])
	for ev := range l.Iterate(cat) {
		events = append(events, ev)
	}
	return events
}
