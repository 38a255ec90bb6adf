// Package merge applies a partial object onto a stored object.
package merge

import (
	"tespkg.in/stash/pkg/value"
)

// Merge returns target with partial applied field by field. Fields holding
// objects on both sides are merged recursively. Every other field, arrays and
// the extended kinds included, takes the incoming value whole. Nil fields of
// partial are skipped. target is not modified.
func Merge(target, partial value.Object) value.Object {
	out := make(value.Object, len(target)+len(partial))
	for k, v := range target {
		out[k] = v
	}
	for k, incoming := range partial {
		if incoming == nil {
			continue
		}
		out[k] = mergeField(out[k], incoming)
	}
	return out
}

func mergeField(existing, incoming value.Value) value.Value {
	in, ok := incoming.(value.Object)
	if !ok {
		// arrays, maps, sets and typed arrays are atomic
		return incoming
	}
	if ex, ok := existing.(value.Object); ok {
		return Merge(ex, in)
	}
	return in
}
