// Package timeserie keeps the full per-event log: one append-only linked
// list per category, every node taken from an arena pool.
package timeserie

import (
	"github.com/ALEYI17/InfraSight_mpi/internal/arena"
	"github.com/ALEYI17/InfraSight_mpi/pkg/types"
)

// EventLog is not safe for concurrent use; the owning process is its only
// producer.
type EventLog struct {
	pool   *arena.Pool
	heads  [types.NumCategories]arena.Node
	tails  [types.NumCategories]*arena.Node
	counts [types.NumCategories]int
}

func NewEventLog(pool *arena.Pool) *EventLog {
	l := &EventLog{pool: pool}
	for c := range l.heads {
		l.tails[c] = &l.heads[c]
	}
	return l
}

// Append links a new node holding ev after the tail of cat. On error the
// log is unchanged.
func (l *EventLog) Append(cat types.Category, ev types.Event) error {
	n, err := l.pool.Allocate()
	if err != nil {
		return err
	}
	n.Event = ev
	l.tails[cat].Next = n
	l.tails[cat] = n
	l.counts[cat]++
	return nil
}

func (l *EventLog) Record(obs types.Observation) error {
	return l.Append(obs.Category, obs.Event)
}

// Len returns the number of events appended to cat.
func (l *EventLog) Len(cat types.Category) int {
	return l.counts[cat]
}

// Total returns the number of events across categories.
func (l *EventLog) Total() int {
	total := 0
	for _, c := range l.counts {
		total += c
	}
	return total
}
