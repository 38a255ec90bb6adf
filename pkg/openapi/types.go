package openapi

import (
	"reflect"
	"strings"
)

type Field struct {
	Name     string
	Required bool
	rv       reflect.Value
}

type Fields []Field

// typeFields lists the json visible, non struct fields of the struct behind
// rv. Embedded structs are flattened in place, pointers and slices are
// looked through.
func typeFields(rv reflect.Value) Fields {
	rv = elementOf(rv)
	if rv.Kind() != reflect.Struct {
		return nil
	}
	var fields Fields
	t := rv.Type()
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if sf.Anonymous {
			fields = append(fields, typeFields(rv.Field(i))...)
			continue
		}
		if !sf.IsExported() || isStruct(sf.Type) {
			continue
		}
		name, omitempty, skip := jsonName(sf)
		if skip {
			continue
		}
		fields = append(fields, Field{
			Name:     name,
			Required: !omitempty,
			rv:       rv.Field(i),
		})
	}
	return fields
}

func jsonName(sf reflect.StructField) (name string, omitempty, skip bool) {
	tag := sf.Tag.Get("json")
	if tag == "-" {
		return "", false, true
	}
	name, opts, _ := strings.Cut(tag, ",")
	for _, opt := range strings.Split(opts, ",") {
		if opt == "omitempty" {
			omitempty = true
		}
	}
	if name == "" {
		name = sf.Name
	}
	return name, omitempty, false
}

func isStruct(t reflect.Type) bool {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Kind() == reflect.Struct
}

func elementOf(v reflect.Value) reflect.Value {
	switch v.Kind() {
	case reflect.Ptr:
		if v.IsNil() {
			return elementOf(reflect.New(v.Type().Elem()).Elem())
		}
		return elementOf(v.Elem())
	case reflect.Slice, reflect.Array:
		return elementOf(reflect.New(v.Type().Elem()).Elem())
	default:
		return v
	}
}
