package stackvec

// Initializer is implemented by element types whose default value is not
// their zero value. InitSized calls Init on each leading element after
// zeroing it; an error aborts the construction.
type Initializer interface {
	Init() error
}

// Destroyer is implemented by element types that release something when
// they leave a vector. Destroy runs exactly once per element, synchronously,
// from PopBack or Vector.Destroy.
type Destroyer interface {
	Destroy()
}

// Cloner is implemented by element types that need a deep copy. PushBack
// stores the result of Clone instead of a plain assignment.
type Cloner[T any] interface {
	Clone() T
}
