package types

// Collector consumes observations on the recording path. Record must not
// block. A non-nil error disables the collector for the rest of the process.
type Collector interface {
	Record(obs Observation) error
}
