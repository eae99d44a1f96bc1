// Package metrics exposes engine self-metrics as a Prometheus registry.
// Values are read from the engine when gathered, never pushed from the
// recording path.
package metrics

import (
	"strconv"

	"github.com/ALEYI17/InfraSight_mpi/pkg/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Source is read at gather time.
type Source interface {
	ArenaBlocks() int
	ArenaNodes() int
	Recorded(cat types.Category) int64
	Dropped() int64
}

// NewRegistry returns a registry holding the engine collectors of one rank.
func NewRegistry(src Source, rank int) *prometheus.Registry {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	labels := prometheus.Labels{"rank": strconv.Itoa(rank)}

	factory.NewGaugeFunc(prometheus.GaugeOpts{
		Name:        "collprof_arena_blocks",
		Help:        "Number of blocks in the event arena.",
		ConstLabels: labels,
	}, func() float64 { return float64(src.ArenaBlocks()) })

	factory.NewGaugeFunc(prometheus.GaugeOpts{
		Name:        "collprof_arena_nodes",
		Help:        "Number of event nodes issued by the arena.",
		ConstLabels: labels,
	}, func() float64 { return float64(src.ArenaNodes()) })

	for _, cat := range []types.Category{types.CategoryHost, types.CategoryDevice} {
		factory.NewCounterFunc(prometheus.CounterOpts{
			Name:        "collprof_events_recorded_total",
			Help:        "Collective calls recorded, by buffer locality.",
			ConstLabels: prometheus.Labels{"rank": strconv.Itoa(rank), "category": cat.String()},
		}, func() float64 { return float64(src.Recorded(cat)) })
	}

	factory.NewCounterFunc(prometheus.CounterOpts{
		Name:        "collprof_events_dropped_total",
		Help:        "Collective calls not recorded because recording was disabled.",
		ConstLabels: labels,
	}, func() float64 { return float64(src.Dropped()) })

	return reg
}

// WriteTextfile writes the registry in the text exposition format, for the
// node exporter textfile collector.
func WriteTextfile(path string, g prometheus.Gatherer) error {
	return prometheus.WriteToTextfile(path, g)
}
