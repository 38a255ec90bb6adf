package value

// Subtype names a fixed-width numeric array variant. The names match the
// host's array constructor names and appear verbatim on the wire.
type Subtype string

const (
	SubtypeInt8         Subtype = "Int8Array"
	SubtypeUint8        Subtype = "Uint8Array"
	SubtypeUint8Clamped Subtype = "Uint8ClampedArray"
	SubtypeInt16        Subtype = "Int16Array"
	SubtypeUint16       Subtype = "Uint16Array"
	SubtypeInt32        Subtype = "Int32Array"
	SubtypeUint32       Subtype = "Uint32Array"
	SubtypeFloat32      Subtype = "Float32Array"
	SubtypeFloat64      Subtype = "Float64Array"
	SubtypeBigInt64     Subtype = "BigInt64Array"
	SubtypeBigUint64    Subtype = "BigUint64Array"
)

var subtypes = map[Subtype]struct{}{
	SubtypeInt8:         {},
	SubtypeUint8:        {},
	SubtypeUint8Clamped: {},
	SubtypeInt16:        {},
	SubtypeUint16:       {},
	SubtypeInt32:        {},
	SubtypeUint32:       {},
	SubtypeFloat32:      {},
	SubtypeFloat64:      {},
	SubtypeBigInt64:     {},
	SubtypeBigUint64:    {},
}

// LookupSubtype resolves a wire subtype name.
func LookupSubtype(name string) (Subtype, bool) {
	st := Subtype(name)
	_, ok := subtypes[st]
	return st, ok
}

// Is64Bit reports whether elements are 64-bit integers, which the wire format
// carries as decimal strings.
func (s Subtype) Is64Bit() bool {
	return s == SubtypeBigInt64 || s == SubtypeBigUint64
}

// TypedArray is implemented by the eleven fixed-width numeric arrays.
type TypedArray interface {
	Value
	Subtype() Subtype
	Len() int
}

type Int8Array []int8

func (Int8Array) Kind() Kind       { return KindTypedArray }
func (Int8Array) sealed()          {}
func (Int8Array) Subtype() Subtype { return SubtypeInt8 }
func (a Int8Array) Len() int       { return len(a) }

type Uint8Array []uint8

func (Uint8Array) Kind() Kind       { return KindTypedArray }
func (Uint8Array) sealed()          {}
func (Uint8Array) Subtype() Subtype { return SubtypeUint8 }
func (a Uint8Array) Len() int       { return len(a) }

// Uint8ClampedArray stores bytes that saturate instead of wrapping.
type Uint8ClampedArray []uint8

func (Uint8ClampedArray) Kind() Kind       { return KindTypedArray }
func (Uint8ClampedArray) sealed()          {}
func (Uint8ClampedArray) Subtype() Subtype { return SubtypeUint8Clamped }
func (a Uint8ClampedArray) Len() int       { return len(a) }

type Int16Array []int16

func (Int16Array) Kind() Kind       { return KindTypedArray }
func (Int16Array) sealed()          {}
func (Int16Array) Subtype() Subtype { return SubtypeInt16 }
func (a Int16Array) Len() int       { return len(a) }

type Uint16Array []uint16

func (Uint16Array) Kind() Kind       { return KindTypedArray }
func (Uint16Array) sealed()          {}
func (Uint16Array) Subtype() Subtype { return SubtypeUint16 }
func (a Uint16Array) Len() int       { return len(a) }

type Int32Array []int32

func (Int32Array) Kind() Kind       { return KindTypedArray }
func (Int32Array) sealed()          {}
func (Int32Array) Subtype() Subtype { return SubtypeInt32 }
func (a Int32Array) Len() int       { return len(a) }

type Uint32Array []uint32

func (Uint32Array) Kind() Kind       { return KindTypedArray }
func (Uint32Array) sealed()          {}
func (Uint32Array) Subtype() Subtype { return SubtypeUint32 }
func (a Uint32Array) Len() int       { return len(a) }

type Float32Array []float32

func (Float32Array) Kind() Kind       { return KindTypedArray }
func (Float32Array) sealed()          {}
func (Float32Array) Subtype() Subtype { return SubtypeFloat32 }
func (a Float32Array) Len() int       { return len(a) }

type Float64Array []float64

func (Float64Array) Kind() Kind       { return KindTypedArray }
func (Float64Array) sealed()          {}
func (Float64Array) Subtype() Subtype { return SubtypeFloat64 }
func (a Float64Array) Len() int       { return len(a) }

type BigInt64Array []int64

func (BigInt64Array) Kind() Kind       { return KindTypedArray }
func (BigInt64Array) sealed()          {}
func (BigInt64Array) Subtype() Subtype { return SubtypeBigInt64 }
func (a BigInt64Array) Len() int       { return len(a) }

type BigUint64Array []uint64

func (BigUint64Array) Kind() Kind       { return KindTypedArray }
func (BigUint64Array) sealed()          {}
func (BigUint64Array) Subtype() Subtype { return SubtypeBigUint64 }
func (a BigUint64Array) Len() int       { return len(a) }
