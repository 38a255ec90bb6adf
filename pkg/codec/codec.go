// Package codec converts values to and from the wire format persisted in a
// storage area.
//
// The wire format is JSON text. Values JSON cannot carry natively travel as a
// tagged wrapper object, nested anywhere in the tree:
//
//	{"tag":"bigint","payload":"99999999999999999999"}
//	{"tag":"map","payload":[[key,value],...]}
//	{"tag":"set","payload":[member,...]}
//	{"tag":"typedArray","subtype":"BigInt64Array","payload":["1","-2"]}
//
// A decoded object carrying both "tag" and "payload" is always read as a
// wrapper. Plain objects that happen to have both fields are written inside an
// "object" wrapper so they survive a round trip.
//
// Map keys and set members are unique by deep equality (value.Equal). Wire
// text from a writer that keys by reference identity may hold two equal keys
// or members; decoding keeps one of them, the first position with the last
// value for maps, so such entries are lost.
package codec

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"

	jsoniter "github.com/json-iterator/go"
	"tespkg.in/stash/pkg/value"
)

const (
	TagBigInt     = "bigint"
	TagMap        = "map"
	TagSet        = "set"
	TagTypedArray = "typedArray"
	TagObject     = "object"

	fieldTag     = "tag"
	fieldPayload = "payload"
	fieldSubtype = "subtype"
)

var (
	ErrAbsentValue      = errors.New("absent value cannot be stored")
	ErrUnsupportedValue = errors.New("unsupported value type")
	ErrUnknownTag       = errors.New("unknown wrapper tag")
	ErrUnknownSubtype   = errors.New("unknown typed array subtype")
	ErrMalformedWrapper = errors.New("malformed wrapper")
)

var wireJSON = jsoniter.Config{
	EscapeHTML:  false,
	SortMapKeys: true,
	UseNumber:   true,
}.Froze()

// wrapper keeps the field order tag, subtype, payload on the wire.
type wrapper struct {
	Tag     string      `json:"tag"`
	Subtype string      `json:"subtype,omitempty"`
	Payload interface{} `json:"payload"`
}

// Encode renders v as wire text.
func Encode(v value.Value) (string, error) {
	tree, err := toJSON(v)
	if err != nil {
		return "", err
	}
	return wireJSON.MarshalToString(tree)
}

// Decode parses wire text. Text that is not JSON at all is returned verbatim
// as a value.String, since some writers store bare strings.
func Decode(wire string) (value.Value, error) {
	var tree interface{}
	if err := wireJSON.UnmarshalFromString(wire, &tree); err != nil {
		return value.String(wire), nil
	}
	return fromJSON(tree)
}

func toJSON(v value.Value) (interface{}, error) {
	switch x := v.(type) {
	case nil:
		return nil, ErrAbsentValue
	case value.Null:
		return nil, nil
	case value.String:
		return string(x), nil
	case value.Number:
		f := float64(x)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, nil
		}
		return jsoniter.Number(formatNumber(f)), nil
	case value.Bool:
		return bool(x), nil
	case value.Object:
		fields := make(map[string]interface{}, len(x))
		for k, fv := range x {
			jv, err := toJSON(fv)
			if err != nil {
				return nil, fmt.Errorf("object[%q]: %w", k, err)
			}
			fields[k] = jv
		}
		if x.Has(fieldTag) && x.Has(fieldPayload) {
			return wrapper{Tag: TagObject, Payload: fields}, nil
		}
		return fields, nil
	case value.Array:
		items := make([]interface{}, len(x))
		for i, e := range x {
			jv, err := toJSON(e)
			if err != nil {
				return nil, fmt.Errorf("array[%d]: %w", i, err)
			}
			items[i] = jv
		}
		return items, nil
	case value.BigInt:
		return wrapper{Tag: TagBigInt, Payload: x.String()}, nil
	case *value.Map:
		entries := x.Entries()
		pairs := make([]interface{}, len(entries))
		for i, e := range entries {
			k, err := toJSON(e.Key)
			if err != nil {
				return nil, fmt.Errorf("map key %d: %w", i, err)
			}
			mv, err := toJSON(e.Value)
			if err != nil {
				return nil, fmt.Errorf("map value %d: %w", i, err)
			}
			pairs[i] = []interface{}{k, mv}
		}
		return wrapper{Tag: TagMap, Payload: pairs}, nil
	case *value.Set:
		members := x.Members()
		items := make([]interface{}, len(members))
		for i, m := range members {
			jv, err := toJSON(m)
			if err != nil {
				return nil, fmt.Errorf("set member %d: %w", i, err)
			}
			items[i] = jv
		}
		return wrapper{Tag: TagSet, Payload: items}, nil
	case value.TypedArray:
		return wrapper{
			Tag:     TagTypedArray,
			Subtype: string(x.Subtype()),
			Payload: typedPayload(x),
		}, nil
	}
	return nil, fmt.Errorf("%w %T", ErrUnsupportedValue, v)
}

func fromJSON(node interface{}) (value.Value, error) {
	switch x := node.(type) {
	case nil:
		return value.Null{}, nil
	case bool:
		return value.Bool(x), nil
	case string:
		return value.String(x), nil
	case json.Number:
		return parseNumber(string(x))
	case jsoniter.Number:
		return parseNumber(string(x))
	case float64:
		return value.Number(x), nil
	case []interface{}:
		arr := make(value.Array, len(x))
		for i, e := range x {
			v, err := fromJSON(e)
			if err != nil {
				return nil, fmt.Errorf("array[%d]: %w", i, err)
			}
			arr[i] = v
		}
		return arr, nil
	case map[string]interface{}:
		_, hasTag := x[fieldTag]
		_, hasPayload := x[fieldPayload]
		if hasTag && hasPayload {
			return unwrap(x)
		}
		return objectFromJSON(x)
	}
	return nil, fmt.Errorf("%w %T", ErrUnsupportedValue, node)
}

func objectFromJSON(fields map[string]interface{}) (value.Object, error) {
	obj := make(value.Object, len(fields))
	for k, e := range fields {
		v, err := fromJSON(e)
		if err != nil {
			return nil, fmt.Errorf("object[%q]: %w", k, err)
		}
		obj[k] = v
	}
	return obj, nil
}

func unwrap(w map[string]interface{}) (value.Value, error) {
	tag, ok := w[fieldTag].(string)
	if !ok {
		return nil, fmt.Errorf("%w: tag is %T, want string", ErrMalformedWrapper, w[fieldTag])
	}
	payload := w[fieldPayload]

	switch tag {
	case TagBigInt:
		s, ok := payload.(string)
		if !ok {
			return nil, fmt.Errorf("%w: bigint payload is %T", ErrMalformedWrapper, payload)
		}
		b, err := value.ParseBigInt(s)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedWrapper, err)
		}
		return b, nil
	case TagMap:
		pairs, ok := payload.([]interface{})
		if !ok {
			return nil, fmt.Errorf("%w: map payload is %T", ErrMalformedWrapper, payload)
		}
		m := value.NewMap()
		for i, p := range pairs {
			pair, ok := p.([]interface{})
			if !ok || len(pair) != 2 {
				return nil, fmt.Errorf("%w: map entry %d is not a pair", ErrMalformedWrapper, i)
			}
			k, err := fromJSON(pair[0])
			if err != nil {
				return nil, fmt.Errorf("map key %d: %w", i, err)
			}
			v, err := fromJSON(pair[1])
			if err != nil {
				return nil, fmt.Errorf("map value %d: %w", i, err)
			}
			m.Set(k, v)
		}
		return m, nil
	case TagSet:
		members, ok := payload.([]interface{})
		if !ok {
			return nil, fmt.Errorf("%w: set payload is %T", ErrMalformedWrapper, payload)
		}
		s := value.NewSet()
		for i, e := range members {
			v, err := fromJSON(e)
			if err != nil {
				return nil, fmt.Errorf("set member %d: %w", i, err)
			}
			s.Add(v)
		}
		return s, nil
	case TagTypedArray:
		name, _ := w[fieldSubtype].(string)
		st, ok := value.LookupSubtype(name)
		if !ok {
			return nil, fmt.Errorf("%w %q", ErrUnknownSubtype, name)
		}
		elems, ok := payload.([]interface{})
		if !ok {
			return nil, fmt.Errorf("%w: %s payload is %T", ErrMalformedWrapper, st, payload)
		}
		return typedFromPayload(st, elems)
	case TagObject:
		fields, ok := payload.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("%w: object payload is %T", ErrMalformedWrapper, payload)
		}
		return objectFromJSON(fields)
	}
	return nil, fmt.Errorf("%w %q", ErrUnknownTag, tag)
}

func parseNumber(s string) (value.Value, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		var numErr *strconv.NumError
		// Out of range literals saturate to ±Inf like the host parser.
		if errors.As(err, &numErr) && errors.Is(numErr.Err, strconv.ErrRange) {
			return value.Number(f), nil
		}
		return nil, fmt.Errorf("invalid number %q: %w", s, err)
	}
	return value.Number(f), nil
}

// formatNumber prints the shortest representation that parses back to f,
// switching to exponent form outside [1e-6, 1e21) like the host serializer.
func formatNumber(f float64) string {
	if f == 0 {
		return "0"
	}
	abs := math.Abs(f)
	if abs >= 1e-6 && abs < 1e21 {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return strconv.FormatFloat(f, 'e', -1, 64)
}
