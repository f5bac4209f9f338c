// Package access provides reflection-based binding between the
// engine's generic map[string]any object graph and user-defined Go
// struct types (spec §9 "Reflection-style field access", strategy (b)).
//
// The driver decodes into map[string]any internally (spec §4.6 "a
// fresh instance of the message type"); callers that want typed structs
// use Bind/Extract to cross the boundary. Field-name-to-struct-field
// resolution is cached per type the way dynamic-ssz caches its
// TypeDescriptor per reflect.Type (_examples/other_examples
// pk910-dynamic-ssz marshal.go), avoiding repeated reflection work
// across many decode calls of the same Go type.
package access

import (
	"reflect"
	"strings"
	"sync"

	"github.com/binframe/codec/errs"
)

type fieldIndex struct {
	byDescriptorName map[string]int
}

var cacheMu sync.RWMutex
var cache = map[reflect.Type]*fieldIndex{}

func indexOf(t reflect.Type) *fieldIndex {
	cacheMu.RLock()
	idx, ok := cache[t]
	cacheMu.RUnlock()
	if ok {
		return idx
	}

	idx = &fieldIndex{byDescriptorName: map[string]int{}}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.PkgPath != "" { // unexported
			continue
		}
		name := f.Tag.Get("wire")
		if name == "" {
			name = lowerFirst(f.Name)
		}
		idx.byDescriptorName[name] = i
	}

	cacheMu.Lock()
	cache[t] = idx
	cacheMu.Unlock()
	return idx
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}

// Bind populates the exported fields of the struct pointed to by dst
// from obj, matching descriptor field names to struct fields either via
// a `wire:"name"` tag or the lower-camel-cased field name.
func Bind(dst any, obj map[string]any) error {
	v := reflect.ValueOf(dst)
	if v.Kind() != reflect.Ptr || v.Elem().Kind() != reflect.Struct {
		return errs.New(errs.KindDecode, "access.Bind requires a pointer to a struct")
	}
	elem := v.Elem()
	idx := indexOf(elem.Type())

	for name, val := range obj {
		fi, ok := idx.byDescriptorName[name]
		if !ok {
			continue
		}
		field := elem.Field(fi)
		if !field.CanSet() {
			continue
		}
		if err := assign(field, val); err != nil {
			return errs.WithField(err, elem.Type().Name(), name)
		}
	}
	return nil
}

// Extract reads the exported fields of src (a struct or pointer to one)
// into a map[string]any keyed the same way Bind resolves names, for
// handing to the driver's Encode entry point.
func Extract(src any) (map[string]any, error) {
	v := reflect.ValueOf(src)
	for v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return nil, errs.New(errs.KindEncode, "access.Extract requires a struct or pointer to a struct")
	}
	idx := indexOf(v.Type())
	out := make(map[string]any, len(idx.byDescriptorName))
	for name, fi := range idx.byDescriptorName {
		out[name] = v.Field(fi).Interface()
	}
	return out, nil
}

func assign(field reflect.Value, val any) error {
	if val == nil {
		return nil
	}
	rv := reflect.ValueOf(val)
	if rv.Type().AssignableTo(field.Type()) {
		field.Set(rv)
		return nil
	}
	if rv.Type().ConvertibleTo(field.Type()) {
		field.Set(rv.Convert(field.Type()))
		return nil
	}
	return errs.Newf(errs.KindDecode, "cannot assign %s to field of type %s", rv.Type(), field.Type())
}
