// Package stackvec implements a runtime-sized, fixed-capacity vector whose
// storage is reserved from a scope of a per-goroutine frame instead of the
// heap.
//
// # Overview
//
// A Vector is meant for hot paths that need a small array whose maximum
// length is known only at run time, where a make([]T, n) per call costs too
// much. Go offers no way to reserve a runtime-sized block on the caller's
// stack frame, so a Frame plays the stack: a chunked bump allocator that is
// created once per goroutine and reused. A Scope is one activation on that
// frame. Everything reserved while a scope is innermost is reclaimed when
// the scope exits, exactly like locals vanish when a function returns. The
// one difference is that the exit is explicit:
//
//	func hot(f *stackvec.Frame, n int) int {
//		s := f.Enter()
//		defer s.Exit()
//
//		var v stackvec.Vector[int]
//		v.Init(s, n)
//		defer v.Destroy()
//
//		for i := 0; i < n; i++ {
//			v.PushBack(i)
//		}
//		return *v.Back()
//	}
//
// # Lifetimes
//
// The frame owns the memory, the vector owns the elements. Destroy (and
// PopBack) end the life of elements, running Destroyer hooks, but give no
// memory back. Scope.Exit gives memory back but runs no hooks. Creating
// vectors in a loop inside one scope therefore accumulates reservations
// until the scope exits; a frame built with WithMaxBytes panics with
// ErrFrameExhausted once its cap is hit, the way a thread overflows its
// stack.
//
// A Vector must never outlive its scope, be returned from the function that
// opened the scope, or be copied. Pointers and slices obtained from it have
// the same lifetime.
//
// # Element lifetime hooks
//
// Element types may implement Initializer (default construction), Destroyer
// (destruction) and Cloner (copy construction) on their pointer type.
// PushBackMove transfers ownership by zeroing the source, EmplaceBack builds
// the element in place.
//
// # Checked and unchecked access
//
// Index, Front, Back and the mutators trust their preconditions. With
// DebugAssertions set (the default) every precondition is checked and a
// violation panics with a diagnostic. Build with -tags stackvec_release to
// compile the checks out. At is always bounds-checked and reports a
// *RangeError instead of panicking.
//
// # Thread Safety
//
// Neither Vector nor Frame is thread-safe. Pool hands each goroutine a frame
// of its own:
//
//	pool := stackvec.NewPool(stackvec.PoolConfig{})
//	err := pool.Do(func(f *stackvec.Frame) error {
//		s := f.Enter()
//		defer s.Exit()
//		// ...
//		return nil
//	})
//
// # Metrics and Monitoring
//
//	m := frame.Metrics()
//	fmt.Printf("In use: %d of %d bytes, peak %d\n", m.SizeInUse, m.Capacity, m.Peak)
package stackvec
