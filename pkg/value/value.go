// Package value defines the closed set of value shapes a stash slot can hold.
//
// Plain JSON shapes (Null, String, Number, Bool, Object, Array) travel through
// the wire format as-is. The extended kinds (BigInt, *Map, *Set and the
// fixed-width numeric arrays) need a tagged wrapper, see package codec.
//
// Value is sealed: adding a kind means adding a type here plus an encode and a
// decode arm in codec.
package value

import (
	"sort"
)

// Kind discriminates the variants of Value.
type Kind int

const (
	KindNull Kind = iota
	KindString
	KindNumber
	KindBool
	KindObject
	KindArray
	KindBigInt
	KindMap
	KindSet
	KindTypedArray
)

var kindNames = [...]string{
	KindNull:       "null",
	KindString:     "string",
	KindNumber:     "number",
	KindBool:       "bool",
	KindObject:     "object",
	KindArray:      "array",
	KindBigInt:     "bigint",
	KindMap:        "map",
	KindSet:        "set",
	KindTypedArray: "typedArray",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// Value is a storable value. Only the types of this package implement it.
type Value interface {
	Kind() Kind
	sealed()
}

// Null is the JSON null.
type Null struct{}

func (Null) Kind() Kind { return KindNull }
func (Null) sealed()    {}

// String is a text value.
type String string

func (String) Kind() Kind { return KindString }
func (String) sealed()    {}

// Number is a double precision number.
type Number float64

func (Number) Kind() Kind { return KindNumber }
func (Number) sealed()    {}

// Bool is a boolean value.
type Bool bool

func (Bool) Kind() Kind { return KindBool }
func (Bool) sealed()    {}

// Object is a plain string-keyed object.
type Object map[string]Value

func (Object) Kind() Kind { return KindObject }
func (Object) sealed()    {}

// Keys returns the field names in lexical order.
func (o Object) Keys() []string {
	keys := make([]string, 0, len(o))
	for k := range o {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Has reports whether the field exists, even when it holds Null.
func (o Object) Has(field string) bool {
	_, ok := o[field]
	return ok
}

// Array is an ordered list of values.
type Array []Value

func (Array) Kind() Kind { return KindArray }
func (Array) sealed()    {}

// IsPlainObject reports whether v is a non-array plain object.
func IsPlainObject(v Value) bool {
	_, ok := v.(Object)
	return ok
}
