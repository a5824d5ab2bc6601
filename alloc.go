package stackvec

import "unsafe"

// zeroBase backs every reservation of zero bytes.
var zeroBase uint64

// reserve carves room for n values of T out of the frame. Pointer-free
// types come from the raw byte chunks; the rest from the frame's typed
// region for T so the garbage collector can scan them. The contents of the
// returned memory are unspecified.
func reserve[T any](f *Frame, n int, l *layout) unsafe.Pointer {
	f.panicIfReleased()
	size := f.reserveBytes(n, l.size)
	if size <= 0 {
		return unsafe.Pointer(&zeroBase)
	}
	if !l.pointers {
		return f.allocBytes(size, l.align)
	}

	f.charge(size)
	r := regionFor[T](f, l.size)
	p, ci, off := r.alloc(n)
	f.undo = append(f.undo, undoEntry{region: r, chunk: ci, offset: off})
	return p
}

// Alloc returns a pointer to a zeroed T that lives until s exits.
func Alloc[T any](s Scope) *T {
	if DebugAssertions {
		assert(s.innermost(), "allocation outside the innermost open scope")
	}
	var zero T
	p := (*T)(reserve[T](s.f, 1, layoutOf[T]()))
	*p = zero
	return p
}

// MakeSlice returns a zeroed slice of n elements that lives until s exits.
// Returns nil if n <= 0.
func MakeSlice[T any](s Scope, n int) []T {
	if DebugAssertions {
		assert(s.innermost(), "allocation outside the innermost open scope")
	}
	if n <= 0 {
		return nil
	}
	out := unsafe.Slice((*T)(reserve[T](s.f, n, layoutOf[T]())), n)
	clear(out)
	return out
}
