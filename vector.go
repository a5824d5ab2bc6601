package stackvec

import (
	"iter"
	"unsafe"

	"github.com/pkg/errors"
)

// Vector is a fixed-capacity sequence whose storage is reserved from the
// Scope it was created in. It never grows and never frees: the capacity is
// set once, and the memory comes back to the frame only when that scope
// exits. The vector owns the elements it holds, not the bytes under them.
//
// A Vector must not be copied or moved after Init, and neither it nor any
// pointer or slice obtained from it may outlive its scope. Doing either is
// undefined behavior; debug builds catch both.
//
// Index, Front, Back, PushBack, PushBackMove, EmplaceBack and PopBack do not
// validate their preconditions unless DebugAssertions is set. At always
// does.
type Vector[T any] struct {
	noCopy noCopy

	data  unsafe.Pointer
	size  int
	max   int
	elem  uintptr
	hooks hookSet

	frame  *Frame
	depth  int
	serial uint64
	self   *Vector[T]
}

// New returns a vector for up to maxSize elements reserved from s.
// maxSize must be positive. Declaring a Vector and calling Init keeps the
// vector header itself off the heap as well.
func New[T any](s Scope, maxSize int) *Vector[T] {
	v := new(Vector[T])
	v.Init(s, maxSize)
	return v
}

// NewSized is New followed by default-constructing initialSize elements.
func NewSized[T any](s Scope, maxSize, initialSize int) (*Vector[T], error) {
	v := new(Vector[T])
	if err := v.InitSized(s, maxSize, initialSize); err != nil {
		return nil, err
	}
	return v, nil
}

// Init reserves storage for maxSize elements from s and leaves the vector
// empty. maxSize must be positive.
func (v *Vector[T]) Init(s Scope, maxSize int) {
	if DebugAssertions {
		assert(v.self == nil, "vector initialized twice")
		assert(maxSize > 0, "max size must be positive")
		assert(s.innermost(), "vector created outside the innermost open scope")
	}

	l := layoutOf[T]()
	v.data = reserve[T](s.f, maxSize, l)
	v.size = 0
	v.max = maxSize
	v.elem = l.size
	v.hooks = l.hooks
	v.frame, v.depth, v.serial = s.f, s.depth, s.serial
	v.self = (*Vector[T])(noescape(unsafe.Pointer(v)))

	if DebugAssertions {
		assert(uintptr(v.data)%l.align == 0, "storage is misaligned for the element type")
	}
}

// InitSized is Init followed by default-constructing initialSize leading
// elements. An element is default-constructed by zeroing it and, when *T is
// an Initializer, calling Init. If that fails, the elements built so far are
// destroyed, the vector is left empty and the error is returned.
func (v *Vector[T]) InitSized(s Scope, maxSize, initialSize int) error {
	v.Init(s, maxSize)
	if DebugAssertions {
		assert(initialSize >= 0 && initialSize <= maxSize, "initial size exceeds max size")
	}

	var zero T
	for i := 0; i < initialSize; i++ {
		p := v.slot(v.size)
		*p = zero
		if v.hooks&hookInit != 0 {
			if err := any(p).(Initializer).Init(); err != nil {
				*p = zero
				v.clear()
				return errors.Wrapf(err, "stackvec: default-construct element %d of %d", i, initialSize)
			}
		}
		v.size++
	}
	return nil
}

// Len returns the number of live elements.
func (v *Vector[T]) Len() int { return v.size }

// Cap returns the fixed capacity chosen at Init.
func (v *Vector[T]) Cap() int { return v.max }

// Empty reports whether the vector holds no elements.
func (v *Vector[T]) Empty() bool { return v.size == 0 }

// Full reports whether another push would exceed the capacity.
func (v *Vector[T]) Full() bool { return v.size == v.max }

// Index returns a pointer to the element at i. i must be in [0, Len()).
func (v *Vector[T]) Index(i int) *T {
	if DebugAssertions {
		v.check()
		assert(i >= 0 && i < v.size, "index out of range")
	}
	return v.slot(i)
}

// At is Index with a bounds check that is never compiled out.
func (v *Vector[T]) At(i int) (*T, error) {
	if DebugAssertions {
		v.check()
	}
	if uint(i) >= uint(v.size) {
		return nil, &RangeError{Index: i, Len: v.size, Cap: v.max}
	}
	return v.slot(i), nil
}

// Front returns the first element. The vector must not be empty.
func (v *Vector[T]) Front() *T {
	if DebugAssertions {
		v.check()
		assert(v.size > 0, "front of an empty vector")
	}
	return v.slot(0)
}

// Back returns the last element. The vector must not be empty.
func (v *Vector[T]) Back() *T {
	if DebugAssertions {
		v.check()
		assert(v.size > 0, "back of an empty vector")
	}
	return v.slot(v.size - 1)
}

// Data returns a pointer to the first slot of the storage. Only the first
// Len() slots hold elements.
func (v *Vector[T]) Data() *T {
	return (*T)(v.data)
}

// Slice returns the live elements as a slice sharing the vector's storage.
// Its capacity is clipped so appending to it never writes into the vector.
func (v *Vector[T]) Slice() []T {
	if v.data == nil {
		return nil
	}
	return unsafe.Slice((*T)(v.data), v.size)
}

// All iterates over the live elements in index order.
func (v *Vector[T]) All() iter.Seq2[int, *T] {
	return func(yield func(int, *T) bool) {
		for i := 0; i < v.size; i++ {
			if !yield(i, v.slot(i)) {
				return
			}
		}
	}
}

// Backward iterates over the live elements from the back.
func (v *Vector[T]) Backward() iter.Seq2[int, *T] {
	return func(yield func(int, *T) bool) {
		for i := v.size - 1; i >= 0; i-- {
			if !yield(i, v.slot(i)) {
				return
			}
		}
	}
}

// PushBack appends a copy of x. When *T is a Cloner the stored element is
// x.Clone(). The vector must not be full.
func (v *Vector[T]) PushBack(x T) {
	if DebugAssertions {
		v.check()
		assert(v.size < v.max, "push past capacity")
	}
	p := v.slot(v.size)
	*p = x
	if v.hooks&hookClone != 0 {
		*p = any(p).(Cloner[T]).Clone()
	}
	v.size++
}

// PushBackMove appends *src and leaves src holding the zero value, so the
// vector becomes the only owner of whatever the element refers to. The
// vector must not be full.
func (v *Vector[T]) PushBackMove(src *T) {
	if DebugAssertions {
		v.check()
		assert(v.size < v.max, "push past capacity")
		assert(src != nil, "move from a nil pointer")
	}
	var zero T
	p := v.slot(v.size)
	*p = *src
	*src = zero
	v.size++
}

// EmplaceBack appends an element built in place by construct, which
// receives a pointer to the zeroed slot. If construct panics the element is
// not added. The vector must not be full.
func (v *Vector[T]) EmplaceBack(construct func(*T)) {
	if DebugAssertions {
		v.check()
		assert(v.size < v.max, "push past capacity")
	}
	var zero T
	p := v.slot(v.size)
	*p = zero
	construct(p)
	v.size++
}

// PopBack destroys the last element and removes it. The vector must not be
// empty.
func (v *Vector[T]) PopBack() {
	if DebugAssertions {
		v.check()
		assert(v.size > 0, "pop on an empty vector")
	}
	v.destroyAt(v.size - 1)
	v.size--
}

// Destroy destroys every live element, last first, and leaves the vector
// uninitialized. It does not give memory back; that happens when the scope
// exits. Destroy on a vector that was never initialized does nothing.
func (v *Vector[T]) Destroy() {
	if v.self == nil {
		return
	}
	if DebugAssertions {
		v.check()
	}
	v.clear()
	v.data = nil
	v.max = 0
	v.frame = nil
	v.depth, v.serial = 0, 0
	v.self = nil
}

// clear destroys the live elements from the back.
func (v *Vector[T]) clear() {
	for v.size > 0 {
		v.destroyAt(v.size - 1)
		v.size--
	}
}

func (v *Vector[T]) destroyAt(i int) {
	p := v.slot(i)
	if v.hooks&hookDestroy != 0 {
		any(p).(Destroyer).Destroy()
	}
	var zero T
	*p = zero
}

func (v *Vector[T]) slot(i int) *T {
	return (*T)(unsafe.Add(v.data, uintptr(i)*v.elem))
}

// check asserts the vector is initialized, has not been copied and its
// scope is still open.
func (v *Vector[T]) check() {
	assert(v.self != nil, "vector used before Init or after Destroy")
	assert(v.self == v, "vector copied after Init")
	assert(v.frame.scopeOpen(v.depth, v.serial), "vector used after its scope exited")
}
