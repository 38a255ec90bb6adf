package value

import (
	"math"
)

// Equal reports deep, type-preserving equality. Numbers compare with
// same-value-zero semantics (NaN equals NaN, 0 equals -0). Map and Set
// comparisons respect insertion order.
func Equal(a, b Value) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	switch x := a.(type) {
	case Null:
		_, ok := b.(Null)
		return ok
	case String:
		y, ok := b.(String)
		return ok && x == y
	case Number:
		y, ok := b.(Number)
		return ok && sameFloat(float64(x), float64(y))
	case Bool:
		y, ok := b.(Bool)
		return ok && x == y
	case Object:
		y, ok := b.(Object)
		if !ok || len(x) != len(y) {
			return false
		}
		for k, xv := range x {
			yv, ok := y[k]
			if !ok || !Equal(xv, yv) {
				return false
			}
		}
		return true
	case Array:
		y, ok := b.(Array)
		if !ok || len(x) != len(y) {
			return false
		}
		for i := range x {
			if !Equal(x[i], y[i]) {
				return false
			}
		}
		return true
	case BigInt:
		y, ok := b.(BigInt)
		return ok && x.Cmp(y) == 0
	case *Map:
		y, ok := b.(*Map)
		if !ok || x.Len() != y.Len() {
			return false
		}
		ys := y.Entries()
		for i, e := range x.Entries() {
			if !Equal(e.Key, ys[i].Key) || !Equal(e.Value, ys[i].Value) {
				return false
			}
		}
		return true
	case *Set:
		y, ok := b.(*Set)
		if !ok || x.Len() != y.Len() {
			return false
		}
		ys := y.Members()
		for i, m := range x.Members() {
			if !Equal(m, ys[i]) {
				return false
			}
		}
		return true
	case Int8Array:
		y, ok := b.(Int8Array)
		return ok && equalSlices(x, y)
	case Uint8Array:
		y, ok := b.(Uint8Array)
		return ok && equalSlices(x, y)
	case Uint8ClampedArray:
		y, ok := b.(Uint8ClampedArray)
		return ok && equalSlices(x, y)
	case Int16Array:
		y, ok := b.(Int16Array)
		return ok && equalSlices(x, y)
	case Uint16Array:
		y, ok := b.(Uint16Array)
		return ok && equalSlices(x, y)
	case Int32Array:
		y, ok := b.(Int32Array)
		return ok && equalSlices(x, y)
	case Uint32Array:
		y, ok := b.(Uint32Array)
		return ok && equalSlices(x, y)
	case Float32Array:
		y, ok := b.(Float32Array)
		if !ok || len(x) != len(y) {
			return false
		}
		for i := range x {
			if !sameFloat(float64(x[i]), float64(y[i])) {
				return false
			}
		}
		return true
	case Float64Array:
		y, ok := b.(Float64Array)
		if !ok || len(x) != len(y) {
			return false
		}
		for i := range x {
			if !sameFloat(x[i], y[i]) {
				return false
			}
		}
		return true
	case BigInt64Array:
		y, ok := b.(BigInt64Array)
		return ok && equalSlices(x, y)
	case BigUint64Array:
		y, ok := b.(BigUint64Array)
		return ok && equalSlices(x, y)
	}
	return false
}

func equalSlices[E comparable](a, b []E) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func sameFloat(a, b float64) bool {
	if math.IsNaN(a) && math.IsNaN(b) {
		return true
	}
	return a == b
}
