package unionfn

import (
	"reflect"
	"unsafe"
)

// pack stores the bit pattern of args at offset zero of a fresh payload.
// Trailing bytes stay zero. Callers guarantee T fits P in size and alignment.
func pack[P, T any](args T) P {
	var p P
	*(*T)(unsafe.Pointer(&p)) = args
	return p
}

// unpack reinterprets a payload packed for T.
func unpack[T, P any](p *P) T {
	return *(*T)(unsafe.Pointer(p))
}

// pointerFree reports whether values of t can live in untyped payload memory.
// The garbage collector does not scan payload cells, so pointers of any kind
// (strings, slices, maps, interfaces, funcs, chans) are rejected.
func pointerFree(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128:
		return true
	case reflect.Array:
		return pointerFree(t.Elem())
	case reflect.Struct:
		for i := 0; i < t.NumField(); i++ {
			if !pointerFree(t.Field(i).Type) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// alignUp rounds n up to a multiple of align.
func alignUp(n, align uintptr) uintptr {
	if align == 0 {
		return n
	}
	return (n + align - 1) &^ (align - 1)
}

// Layout describes the payload cell of a set against its operations.
type Layout struct {
	// Size and Align of the payload type.
	Size  uintptr
	Align uintptr
	// MaxSize and MaxAlign over all operations' argument types.
	MaxSize  uintptr
	MaxAlign uintptr
}

// Exact reports whether the payload is exactly the union of its operations:
// alignment equal to the largest alignment and size equal to the largest
// size rounded up to that alignment.
func (l Layout) Exact() bool {
	return l.Align == l.MaxAlign && l.Size == alignUp(l.MaxSize, l.MaxAlign)
}
