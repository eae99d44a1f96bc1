package types

// Category is the memory locality of the buffer an observed call touched.
type Category int

const (
	CategoryHost Category = iota
	CategoryDevice

	NumCategories = 2
)

func (c Category) String() string {
	switch c {
	case CategoryHost:
		return "host"
	case CategoryDevice:
		return "device"
	default:
		return "unknown"
	}
}

// CategoryOf maps a locality classification to its category.
func CategoryOf(device bool) Category {
	if device {
		return CategoryDevice
	}
	return CategoryHost
}

// Operation identifies the collective that produced an observation.
type Operation uint8

const (
	OpOther Operation = iota
	OpAllreduce
	OpBcast
	OpReduce
	OpAllgather
	OpAlltoall
	OpBarrier

	NumOperations = 7
)

var operationNames = [NumOperations]string{
	OpOther:     "Other",
	OpAllreduce: "Allreduce",
	OpBcast:     "Bcast",
	OpReduce:    "Reduce",
	OpAllgather: "Allgather",
	OpAlltoall:  "Alltoall",
	OpBarrier:   "Barrier",
}

func (o Operation) String() string {
	if int(o) < NumOperations {
		return operationNames[o]
	}
	return operationNames[OpOther]
}

// Event is one completed call. Times are seconds since engine start.
type Event struct {
	Start float64
	End   float64
	Size  int32
	Op    Operation
}

// Duration returns End - Start in seconds.
func (e Event) Duration() float64 {
	return e.End - e.Start
}

// Observation is an event together with the category it was classified into.
type Observation struct {
	Category Category
	Event    Event
}
