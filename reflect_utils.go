package minimodel

import (
	"reflect"
	"sort"
	"strings"
	"time"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// ResolveStructKey applies the repository-wide rule to resolve a struct field's
// key when a struct is assigned to a model.
// Priority: minimodel:"name=..." > json tag name > field name; "-" disables the field.
func ResolveStructKey(sf reflect.StructField) string {
	if mt := sf.Tag.Get("minimodel"); mt != "" {
		parts := strings.Split(mt, ",")
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p == "-" {
				return "-"
			}
			if strings.HasPrefix(p, "name=") {
				return strings.TrimPrefix(p, "name=")
			}
		}
	}
	if jt := sf.Tag.Get("json"); jt != "" {
		if jt == "-" {
			return "-"
		}
		name := jt
		if i := strings.IndexByte(jt, ','); i >= 0 {
			name = jt[:i]
		}
		if name != "" {
			return name
		}
	}
	return sf.Name
}

var timeType = reflect.TypeOf(time.Time{})

// structToOrdered turns a struct (or a pointer to one) into an ordered
// mapping in field declaration order, and a string-keyed map into one in
// sorted key order. Nested structs are left as values; the receiving nested
// model converts them in turn.
func structToOrdered(rv reflect.Value) (*orderedmap.OrderedMap[string, any], bool) {
	for rv.IsValid() && (rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface) {
		if rv.IsNil() {
			return nil, false
		}
		rv = rv.Elem()
	}
	if !rv.IsValid() {
		return nil, false
	}
	switch rv.Kind() {
	case reflect.Struct:
		if rv.Type() == timeType {
			return nil, false
		}
		rt := rv.Type()
		om := orderedmap.New[string, any](rt.NumField())
		for i := 0; i < rt.NumField(); i++ {
			sf := rt.Field(i)
			if !sf.IsExported() {
				continue
			}
			name := ResolveStructKey(sf)
			if name == "" || name == "-" {
				continue
			}
			om.Set(name, rv.Field(i).Interface())
		}
		return om, true
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, false
		}
		keys := make([]string, 0, rv.Len())
		for _, k := range rv.MapKeys() {
			keys = append(keys, k.String())
		}
		sort.Strings(keys)
		om := orderedmap.New[string, any](len(keys))
		for _, k := range keys {
			om.Set(k, rv.MapIndex(reflect.ValueOf(k).Convert(rv.Type().Key())).Interface())
		}
		return om, true
	}
	return nil, false
}
