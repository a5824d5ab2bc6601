package stackvec

import (
	"reflect"
	"sync"
	"unsafe"
)

// hookSet records which lifetime hooks *T implements.
type hookSet uint8

const (
	hookInit hookSet = 1 << iota
	hookDestroy
	hookClone
)

// layout describes how values of one element type are stored.
type layout struct {
	size     uintptr
	align    uintptr
	pointers bool // must live in typed memory the GC can scan
	hooks    hookSet
}

// layouts caches one *layout per element type.
var layouts sync.Map // reflect.Type -> *layout

func layoutOf[T any]() *layout {
	key := reflect.TypeFor[T]()
	if l, ok := layouts.Load(key); ok {
		return l.(*layout)
	}

	var zero T
	l := &layout{
		size:     unsafe.Sizeof(zero),
		align:    unsafe.Alignof(zero),
		pointers: hasPointers(key),
	}
	if _, ok := any((*T)(nil)).(Initializer); ok {
		l.hooks |= hookInit
	}
	if _, ok := any((*T)(nil)).(Destroyer); ok {
		l.hooks |= hookDestroy
	}
	if _, ok := any((*T)(nil)).(Cloner[T]); ok {
		l.hooks |= hookClone
	}

	actual, _ := layouts.LoadOrStore(key, l)
	return actual.(*layout)
}

// hasPointers reports whether values of t hold anything the garbage
// collector has to trace.
func hasPointers(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128:
		return false
	case reflect.Array:
		return t.Len() > 0 && hasPointers(t.Elem())
	case reflect.Struct:
		for i := 0; i < t.NumField(); i++ {
			if hasPointers(t.Field(i).Type) {
				return true
			}
		}
		return false
	default:
		return true
	}
}
