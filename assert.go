package stackvec

import "unsafe"

// assert panics with msg when cond is false. Call sites guard it with
// DebugAssertions so release builds carry no trace of the check.
func assert(cond bool, msg string) {
	if !cond {
		panic("stackvec: assertion failed: " + msg)
	}
}

// noCopy may be embedded into structs which must not be copied after first
// use. go vet's copylocks check reports copies of it.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// noescape hides a pointer from escape analysis. The vector keeps a pointer
// to itself for copy detection; without this every vector declared as a
// local would move to the heap.
//
//go:nosplit
func noescape(p unsafe.Pointer) unsafe.Pointer {
	x := uintptr(p)
	return unsafe.Pointer(x ^ 0)
}
