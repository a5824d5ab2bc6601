package stackvec

import (
	"reflect"
	"unsafe"

	"go.uber.org/zap"
)

// typedRegion is the type-erased view a Frame keeps of a region[T].
type typedRegion interface {
	rewind(ci, off int)
	bytesInUse() int
	capacityBytes() int
}

type typedChunk[T any] struct {
	buf []T
	off int
}

// region is a bump allocator over typed chunks. Element types holding
// pointers are reserved here so the garbage collector keeps seeing them.
type region[T any] struct {
	chunks   []typedChunk[T]
	cur      int
	chunkLen int
	elem     uintptr
}

// regionFor returns the frame's region for T, creating it on first use.
func regionFor[T any](f *Frame, elem uintptr) *region[T] {
	key := reflect.TypeFor[T]()
	if r, ok := f.regions[key]; ok {
		return r.(*region[T])
	}

	chunkLen := f.chunkSize / int(elem)
	if chunkLen < 1 {
		chunkLen = 1
	}
	r := &region[T]{chunkLen: chunkLen, elem: elem}
	if f.regions == nil {
		f.regions = make(map[reflect.Type]typedRegion)
	}
	f.regions[key] = r
	if ce := f.log.Check(zap.DebugLevel, "stackvec: typed region created"); ce != nil {
		ce.Write(zap.Stringer("type", key), zap.Int("chunk_len", chunkLen))
	}
	return r
}

// alloc hands out n consecutive slots and reports the position to rewind
// to in order to take them back.
func (r *region[T]) alloc(n int) (p unsafe.Pointer, ci, off int) {
	if len(r.chunks) == 0 {
		r.advance(n)
	}
	ci, off = r.cur, r.chunks[r.cur].off

	c := &r.chunks[r.cur]
	if c.off+n > len(c.buf) {
		r.advance(n)
		c = &r.chunks[r.cur]
	}
	p = unsafe.Pointer(&c.buf[c.off])
	c.off += n
	return p, ci, off
}

// advance makes the first spare chunk with room for n slots current,
// appending one when there is none.
func (r *region[T]) advance(n int) {
	for i := r.cur + 1; i < len(r.chunks); i++ {
		if len(r.chunks[i].buf) >= n {
			r.cur = i
			return
		}
	}
	size := r.chunkLen
	if n > size {
		size = n
	}
	r.chunks = append(r.chunks, typedChunk[T]{buf: make([]T, size)})
	r.cur = len(r.chunks) - 1
}

// rewind takes back every slot handed out after (chunk, offset) and zeroes
// it so the region does not keep stale objects reachable.
func (r *region[T]) rewind(ci, off int) {
	for i := r.cur; i > ci; i-- {
		c := &r.chunks[i]
		clear(c.buf[:c.off])
		c.off = 0
	}
	c := &r.chunks[ci]
	clear(c.buf[off:c.off])
	c.off = off
	r.cur = ci
}

func (r *region[T]) bytesInUse() int {
	n := 0
	for _, c := range r.chunks {
		n += c.off
	}
	return n * int(r.elem)
}

func (r *region[T]) capacityBytes() int {
	n := 0
	for _, c := range r.chunks {
		n += len(c.buf)
	}
	return n * int(r.elem)
}
