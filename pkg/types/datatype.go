package types

// Datatype is an element type of a collective message buffer.
type Datatype int

const (
	DatatypeByte Datatype = iota
	DatatypeChar
	DatatypeInt16
	DatatypeInt32
	DatatypeInt64
	DatatypeFloat16
	DatatypeFloat32
	DatatypeFloat64
	DatatypeComplex64
	DatatypeComplex128
)

var datatypeSizes = map[Datatype]int{
	DatatypeByte:       1,
	DatatypeChar:       1,
	DatatypeInt16:      2,
	DatatypeInt32:      4,
	DatatypeInt64:      8,
	DatatypeFloat16:    2,
	DatatypeFloat32:    4,
	DatatypeFloat64:    8,
	DatatypeComplex64:  8,
	DatatypeComplex128: 16,
}

// ElemSize returns the size in bytes of one element, or 0 if unknown.
func (d Datatype) ElemSize() int {
	return datatypeSizes[d]
}

// ElemSizer computes message sizes from the built-in element sizes.
type ElemSizer struct{}

func (ElemSizer) MessageSize(count int, dt Datatype) int {
	if count <= 0 {
		return 0
	}
	return count * dt.ElemSize()
}
