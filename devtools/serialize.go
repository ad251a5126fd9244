package devtools

import (
	"fmt"
	"reflect"
	"regexp"
	"time"
)

// Serialize converts v into a tree of maps, slices, and primitives safe to
// hand to encoding/json or msgpack: time.Time values become a {"__date__":
// ...} marker, *regexp.Regexp values become a {"__regexp__": pattern}
// marker, and any reference cycle is cut with a {"__circular__": true}
// marker instead of recursing forever.
func Serialize(v any) any {
	return serializeValue(reflect.ValueOf(v), map[uintptr]bool{})
}

var regexpPtrType = reflect.TypeOf(&regexp.Regexp{})

func serializeValue(rv reflect.Value, seen map[uintptr]bool) any {
	if !rv.IsValid() {
		return nil
	}

	switch rv.Kind() {
	case reflect.Interface:
		if rv.IsNil() {
			return nil
		}
		return serializeValue(rv.Elem(), seen)

	case reflect.Ptr:
		if rv.IsNil() {
			return nil
		}
		if rv.Type() == regexpPtrType {
			return map[string]any{"__regexp__": rv.Interface().(*regexp.Regexp).String()}
		}
		ptr := rv.Pointer()
		if seen[ptr] {
			return map[string]any{"__circular__": true}
		}
		seen[ptr] = true
		defer delete(seen, ptr)
		return serializeValue(rv.Elem(), seen)

	case reflect.Struct:
		if t, ok := rv.Interface().(time.Time); ok {
			return map[string]any{"__date__": t.Format(time.RFC3339Nano)}
		}
		out := map[string]any{}
		rt := rv.Type()
		for i := 0; i < rv.NumField(); i++ {
			f := rt.Field(i)
			if !f.IsExported() {
				continue
			}
			out[f.Name] = serializeValue(rv.Field(i), seen)
		}
		return out

	case reflect.Map:
		if rv.IsNil() {
			return nil
		}
		ptr := rv.Pointer()
		if seen[ptr] {
			return map[string]any{"__circular__": true}
		}
		seen[ptr] = true
		defer delete(seen, ptr)
		out := map[string]any{}
		iter := rv.MapRange()
		for iter.Next() {
			out[fmt.Sprint(iter.Key().Interface())] = serializeValue(iter.Value(), seen)
		}
		return out

	case reflect.Slice:
		if rv.IsNil() {
			return nil
		}
		ptr := rv.Pointer()
		if seen[ptr] {
			return map[string]any{"__circular__": true}
		}
		seen[ptr] = true
		defer delete(seen, ptr)
		return serializeArray(rv, seen)

	case reflect.Array:
		return serializeArray(rv, seen)

	case reflect.Func, reflect.Chan, reflect.UnsafePointer:
		return nil

	default:
		return rv.Interface()
	}
}

func serializeArray(rv reflect.Value, seen map[uintptr]bool) any {
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = serializeValue(rv.Index(i), seen)
	}
	return out
}
