package value

import (
	"encoding/binary"
	"math"
	"sort"

	"github.com/cespare/xxhash/v2"
)

// digester hashes values so that Equal values always share a digest. Distinct
// values may collide; callers confirm with Equal.
type digester struct {
	d   *xxhash.Digest
	buf [8]byte
}

func digest(v Value) uint64 {
	h := digester{d: xxhash.New()}
	h.value(v)
	return h.d.Sum64()
}

func (h *digester) byte(b byte) {
	h.buf[0] = b
	_, _ = h.d.Write(h.buf[:1])
}

func (h *digester) uint64(u uint64) {
	binary.LittleEndian.PutUint64(h.buf[:], u)
	_, _ = h.d.Write(h.buf[:])
}

func (h *digester) string(s string) {
	h.uint64(uint64(len(s)))
	_, _ = h.d.WriteString(s)
}

// float folds NaN payloads and negative zero the way sameFloat compares.
func (h *digester) float(f float64) {
	switch {
	case math.IsNaN(f):
		h.uint64(math.Float64bits(math.NaN()))
	case f == 0:
		h.uint64(0)
	default:
		h.uint64(math.Float64bits(f))
	}
}

func (h *digester) value(v Value) {
	if v == nil {
		h.byte(0xff)
		return
	}
	h.byte(byte(v.Kind()))
	switch x := v.(type) {
	case String:
		h.string(string(x))
	case Number:
		h.float(float64(x))
	case Bool:
		if x {
			h.byte(1)
		} else {
			h.byte(0)
		}
	case BigInt:
		h.string(x.String())
	case Object:
		names := make([]string, 0, len(x))
		for k := range x {
			names = append(names, k)
		}
		sort.Strings(names)
		h.uint64(uint64(len(names)))
		for _, k := range names {
			h.string(k)
			h.value(x[k])
		}
	case Array:
		h.uint64(uint64(len(x)))
		for _, e := range x {
			h.value(e)
		}
	case *Map:
		entries := x.Entries()
		h.uint64(uint64(len(entries)))
		for _, e := range entries {
			h.value(e.Key)
			h.value(e.Value)
		}
	case *Set:
		members := x.Members()
		h.uint64(uint64(len(members)))
		for _, m := range members {
			h.value(m)
		}
	case Int8Array:
		digestInts(h, x)
	case Uint8Array:
		digestInts(h, x)
	case Uint8ClampedArray:
		digestInts(h, x)
	case Int16Array:
		digestInts(h, x)
	case Uint16Array:
		digestInts(h, x)
	case Int32Array:
		digestInts(h, x)
	case Uint32Array:
		digestInts(h, x)
	case BigInt64Array:
		digestInts(h, x)
	case BigUint64Array:
		digestInts(h, x)
	case Float32Array:
		h.uint64(uint64(len(x)))
		for _, f := range x {
			h.float(float64(f))
		}
	case Float64Array:
		h.uint64(uint64(len(x)))
		for _, f := range x {
			h.float(f)
		}
	}
}

func digestInts[E ~int8 | ~uint8 | ~int16 | ~uint16 | ~int32 | ~uint32 | ~int64 | ~uint64](h *digester, xs []E) {
	h.uint64(uint64(len(xs)))
	for _, x := range xs {
		h.uint64(uint64(x))
	}
}
