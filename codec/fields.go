package codec

import (
	"reflect"
	"strings"
	"sync"
)

// structField is one encodable field of a struct type.
type structField struct {
	name  string
	index int
}

var fieldCache sync.Map // reflect.Type -> []structField

// cachedFields returns the encodable fields of a struct type in declaration
// order. Unexported fields and fields tagged `msgpack:"-"` are skipped; a
// `msgpack:"name"` tag renames the field on the wire.
func cachedFields(t reflect.Type) []structField {
	if cached, ok := fieldCache.Load(t); ok {
		return cached.([]structField)
	}

	var fields []structField
	for i := range t.NumField() {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}

		name := f.Name
		if tag, ok := f.Tag.Lookup("msgpack"); ok {
			tagName, _, _ := strings.Cut(tag, ",")
			if tagName == "-" {
				continue
			}
			if tagName != "" {
				name = tagName
			}
		}

		fields = append(fields, structField{name: name, index: i})
	}

	fieldCache.Store(t, fields)

	return fields
}

// fieldByName finds a field by its wire name.
func fieldByName(fields []structField, name string) (structField, bool) {
	for _, f := range fields {
		if f.name == name {
			return f, true
		}
	}

	return structField{}, false
}
