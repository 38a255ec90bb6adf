package codec

import (
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"strconv"

	jsoniter "github.com/json-iterator/go"
	"tespkg.in/stash/pkg/value"
)

const (
	nanLiteral    = "NaN"
	posInfLiteral = "Infinity"
	negInfLiteral = "-Infinity"
)

var mask64 = new(big.Int).SetUint64(math.MaxUint64)

func typedPayload(a value.TypedArray) []interface{} {
	var out []interface{}
	switch x := a.(type) {
	case value.Int8Array:
		out = make([]interface{}, len(x))
		for i, e := range x {
			out[i] = intNumber(int64(e))
		}
	case value.Uint8Array:
		out = make([]interface{}, len(x))
		for i, e := range x {
			out[i] = intNumber(int64(e))
		}
	case value.Uint8ClampedArray:
		out = make([]interface{}, len(x))
		for i, e := range x {
			out[i] = intNumber(int64(e))
		}
	case value.Int16Array:
		out = make([]interface{}, len(x))
		for i, e := range x {
			out[i] = intNumber(int64(e))
		}
	case value.Uint16Array:
		out = make([]interface{}, len(x))
		for i, e := range x {
			out[i] = intNumber(int64(e))
		}
	case value.Int32Array:
		out = make([]interface{}, len(x))
		for i, e := range x {
			out[i] = intNumber(int64(e))
		}
	case value.Uint32Array:
		out = make([]interface{}, len(x))
		for i, e := range x {
			out[i] = intNumber(int64(e))
		}
	case value.Float32Array:
		out = make([]interface{}, len(x))
		for i, e := range x {
			out[i] = floatElement(float64(e))
		}
	case value.Float64Array:
		out = make([]interface{}, len(x))
		for i, e := range x {
			out[i] = floatElement(e)
		}
	case value.BigInt64Array:
		// 64-bit elements are strings, JSON numbers would lose precision.
		out = make([]interface{}, len(x))
		for i, e := range x {
			out[i] = strconv.FormatInt(e, 10)
		}
	case value.BigUint64Array:
		out = make([]interface{}, len(x))
		for i, e := range x {
			out[i] = strconv.FormatUint(e, 10)
		}
	}
	if out == nil {
		out = []interface{}{}
	}
	return out
}

func intNumber(i int64) jsoniter.Number {
	return jsoniter.Number(strconv.FormatInt(i, 10))
}

func floatElement(f float64) interface{} {
	switch {
	case math.IsNaN(f):
		return nanLiteral
	case math.IsInf(f, 1):
		return posInfLiteral
	case math.IsInf(f, -1):
		return negInfLiteral
	}
	return jsoniter.Number(formatNumber(f))
}

func typedFromPayload(st value.Subtype, elems []interface{}) (value.TypedArray, error) {
	if st.Is64Bit() {
		words := make([]uint64, len(elems))
		for i, e := range elems {
			w, err := word64(e)
			if err != nil {
				return nil, fmt.Errorf("%s[%d]: %w", st, i, err)
			}
			words[i] = w
		}
		if st == value.SubtypeBigInt64 {
			out := make(value.BigInt64Array, len(words))
			for i, w := range words {
				out[i] = int64(w)
			}
			return out, nil
		}
		return value.BigUint64Array(words), nil
	}

	nums := make([]float64, len(elems))
	for i, e := range elems {
		f, err := elementFloat(e)
		if err != nil {
			return nil, fmt.Errorf("%s[%d]: %w", st, i, err)
		}
		nums[i] = f
	}

	switch st {
	case value.SubtypeInt8:
		out := make(value.Int8Array, len(nums))
		for i, f := range nums {
			out[i] = int8(wrapInt(f, 8))
		}
		return out, nil
	case value.SubtypeUint8:
		out := make(value.Uint8Array, len(nums))
		for i, f := range nums {
			out[i] = uint8(wrapInt(f, 8))
		}
		return out, nil
	case value.SubtypeUint8Clamped:
		out := make(value.Uint8ClampedArray, len(nums))
		for i, f := range nums {
			out[i] = clampByte(f)
		}
		return out, nil
	case value.SubtypeInt16:
		out := make(value.Int16Array, len(nums))
		for i, f := range nums {
			out[i] = int16(wrapInt(f, 16))
		}
		return out, nil
	case value.SubtypeUint16:
		out := make(value.Uint16Array, len(nums))
		for i, f := range nums {
			out[i] = uint16(wrapInt(f, 16))
		}
		return out, nil
	case value.SubtypeInt32:
		out := make(value.Int32Array, len(nums))
		for i, f := range nums {
			out[i] = int32(wrapInt(f, 32))
		}
		return out, nil
	case value.SubtypeUint32:
		out := make(value.Uint32Array, len(nums))
		for i, f := range nums {
			out[i] = uint32(wrapInt(f, 32))
		}
		return out, nil
	case value.SubtypeFloat32:
		out := make(value.Float32Array, len(nums))
		for i, f := range nums {
			out[i] = float32(f)
		}
		return out, nil
	case value.SubtypeFloat64:
		return value.Float64Array(nums), nil
	}
	return nil, fmt.Errorf("%w %q", ErrUnknownSubtype, st)
}

// elementFloat applies the host's number conversion to a payload element.
func elementFloat(e interface{}) (float64, error) {
	switch x := e.(type) {
	case nil:
		return 0, nil
	case bool:
		if x {
			return 1, nil
		}
		return 0, nil
	case json.Number:
		return strconv.ParseFloat(string(x), 64)
	case jsoniter.Number:
		return strconv.ParseFloat(string(x), 64)
	case float64:
		return x, nil
	case string:
		switch x {
		case nanLiteral:
			return math.NaN(), nil
		case posInfLiteral:
			return math.Inf(1), nil
		case negInfLiteral:
			return math.Inf(-1), nil
		}
		return strconv.ParseFloat(x, 64)
	}
	return 0, fmt.Errorf("%w: element is %T", ErrMalformedWrapper, e)
}

// word64 reads a decimal element and keeps its low 64 bits in two's
// complement, matching the host's BigInt.asIntN/asUintN conversion.
func word64(e interface{}) (uint64, error) {
	var s string
	switch x := e.(type) {
	case string:
		s = x
	case json.Number:
		s = string(x)
	case jsoniter.Number:
		s = string(x)
	default:
		return 0, fmt.Errorf("%w: element is %T, want decimal string", ErrMalformedWrapper, e)
	}
	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return 0, fmt.Errorf("%w: invalid integer literal %q", ErrMalformedWrapper, s)
	}
	return n.And(n, mask64).Uint64(), nil
}

// wrapInt truncates f and reduces it modulo 2^bits.
func wrapInt(f float64, bits uint) uint64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	mod := math.Ldexp(1, int(bits))
	m := math.Mod(math.Trunc(f), mod)
	if m < 0 {
		m += mod
	}
	return uint64(m)
}

func clampByte(f float64) uint8 {
	switch {
	case math.IsNaN(f), f <= 0:
		return 0
	case f >= 255:
		return 255
	}
	return uint8(math.RoundToEven(f))
}
