package stackvec

import (
	"math"
	"reflect"
	"unsafe"

	"go.uber.org/zap"
)

// DefaultChunkSize is the default chunk size for new frames (64 KiB).
const DefaultChunkSize = 1 << 16

// chunk represents a single memory chunk within a frame.
type chunk struct {
	buf    []byte  // backing memory
	offset uintptr // allocation offset within buf
}

// mark is a frame position recorded by Enter and restored by Exit.
type mark struct {
	chunk  int
	offset uintptr
	undo   int
	inUse  int
}

// undoEntry restores a typed region to where it stood before one
// reservation.
type undoEntry struct {
	region typedRegion
	chunk  int
	offset int
}

// Frame is a chunked bump allocator that stands in for the call stack.
// Vectors reserve their storage from the innermost open Scope and the memory
// comes back only when that Scope exits. Chunks are kept across scopes, so a
// warmed-up frame serves reservations without touching the heap.
//
// A Frame is not goroutine-safe. Give each goroutine its own, see Pool.
type Frame struct {
	chunks    []chunk
	chunkSize int
	cur       int // chunk that serves the next reservation; later chunks are empty

	regions map[reflect.Type]typedRegion
	undo    []undoEntry

	scopes []uint64 // serials of open scopes, innermost last
	serial uint64

	inUse    int
	peak     int
	maxBytes int
	log      *zap.Logger
}

// FrameOption configures a Frame.
type FrameOption func(*Frame)

// WithMaxBytes caps the bytes a frame may hand out at once. A reservation
// past the cap panics with ErrFrameExhausted. Zero means no cap.
func WithMaxBytes(n int) FrameOption {
	return func(f *Frame) {
		if n > 0 {
			f.maxBytes = n
		}
	}
}

// WithFrameLogger sets the logger used for growth and exhaustion events.
func WithFrameLogger(l *zap.Logger) FrameOption {
	return func(f *Frame) {
		if l != nil {
			f.log = l
		}
	}
}

// NewFrame creates a Frame with the specified chunk size.
// If chunkSize <= 0, DefaultChunkSize is used.
func NewFrame(chunkSize int, opts ...FrameOption) *Frame {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	f := &Frame{chunkSize: chunkSize, log: Logger()}
	for _, opt := range opts {
		opt(f)
	}
	f.grow(chunkSize)
	return f
}

// Enter opens a new innermost scope. Every reservation made until the
// matching Exit belongs to it.
func (f *Frame) Enter() Scope {
	f.panicIfReleased()
	f.serial++
	f.scopes = append(f.scopes, f.serial)
	return Scope{
		f:      f,
		depth:  len(f.scopes),
		serial: f.serial,
		m: mark{
			chunk:  f.cur,
			offset: f.chunks[f.cur].offset,
			undo:   len(f.undo),
			inUse:  f.inUse,
		},
	}
}

// Depth returns the number of open scopes.
func (f *Frame) Depth() int {
	return len(f.scopes)
}

// EnsureCapacity makes sure the next n bytes of pointer-free storage can be
// reserved without allocating a new chunk.
func (f *Frame) EnsureCapacity(n int) {
	f.panicIfReleased()
	c := &f.chunks[f.cur]
	if alignOffset(c, maxAlign)+uintptr(n) <= uintptr(len(c.buf)) {
		return
	}
	f.advance(n + int(maxAlign) - 1)
}

// Reset closes every open scope and rewinds the frame to empty, keeping its
// chunks for reuse. Vectors created before the reset must not be used again.
func (f *Frame) Reset() {
	f.panicIfReleased()
	f.rewind(mark{})
	f.scopes = f.scopes[:0]
}

// Release drops all chunks and makes the frame unusable.
// Any subsequent operations will panic.
func (f *Frame) Release() {
	f.chunks = nil
	f.regions = nil
	f.undo = nil
	f.scopes = nil
	f.cur = 0
	f.inUse = 0
}

// maxAlign is the strictest alignment any Go type asks for.
const maxAlign = unsafe.Alignof(complex128(0))

// allocBytes carves n bytes aligned to align out of the byte chunks.
// n must be positive.
func (f *Frame) allocBytes(n int, align uintptr) unsafe.Pointer {
	c := &f.chunks[f.cur]
	off := alignOffset(c, align)
	if off+uintptr(n) <= uintptr(len(c.buf)) {
		used := int(off-c.offset) + n
		f.charge(used)
		c.offset = off + uintptr(n)
		return unsafe.Pointer(&c.buf[off])
	}
	return f.allocBytesSlow(n, align)
}

// allocBytesSlow moves to a chunk that can hold n bytes, growing the frame
// if none of the spare chunks is large enough.
func (f *Frame) allocBytesSlow(n int, align uintptr) unsafe.Pointer {
	f.advance(n + int(align) - 1)
	return f.allocBytes(n, align)
}

// advance makes the first spare chunk with at least min bytes current,
// appending a new chunk when there is none.
func (f *Frame) advance(min int) {
	for i := f.cur + 1; i < len(f.chunks); i++ {
		if len(f.chunks[i].buf) >= min {
			f.cur = i
			return
		}
	}
	f.grow(min)
	f.cur = len(f.chunks) - 1
}

// grow appends a new chunk of at least min bytes.
func (f *Frame) grow(min int) {
	size := f.chunkSize
	if min > size {
		size = min
	}
	f.chunks = append(f.chunks, chunk{buf: make([]byte, size)})
	if ce := f.log.Check(zap.DebugLevel, "stackvec: frame grew"); ce != nil {
		ce.Write(zap.Int("chunk_bytes", size), zap.Int("chunks", len(f.chunks)))
	}
}

// charge accounts n freshly reserved bytes against the frame.
func (f *Frame) charge(n int) {
	if f.maxBytes > 0 && n > f.maxBytes-f.inUse {
		if ce := f.log.Check(zap.ErrorLevel, "stackvec: frame exhausted"); ce != nil {
			ce.Write(zap.Int("requested", n), zap.Int("in_use", f.inUse), zap.Int("max_bytes", f.maxBytes))
		}
		panic(ErrFrameExhausted)
	}
	f.inUse += n
	if f.inUse > f.peak {
		f.peak = f.inUse
	}
}

// reserveBytes checks that n values of size bytes can be accounted for and
// returns the total.
func (f *Frame) reserveBytes(n int, size uintptr) int {
	if size != 0 && uintptr(n) > uintptr(math.MaxInt)/size {
		panic(ErrFrameExhausted)
	}
	return n * int(size)
}

// rewind restores the frame to m, clearing typed memory handed out since.
func (f *Frame) rewind(m mark) {
	for i := len(f.undo) - 1; i >= m.undo; i-- {
		e := f.undo[i]
		e.region.rewind(e.chunk, e.offset)
		f.undo[i] = undoEntry{}
	}
	f.undo = f.undo[:m.undo]

	for i := m.chunk + 1; i <= f.cur; i++ {
		f.chunks[i].offset = 0
	}
	f.chunks[m.chunk].offset = m.offset
	f.cur = m.chunk
	f.inUse = m.inUse
}

// scopeOpen reports whether the scope with the given depth and serial is
// still open.
func (f *Frame) scopeOpen(depth int, serial uint64) bool {
	return depth > 0 && depth <= len(f.scopes) && f.scopes[depth-1] == serial
}

// panicIfReleased panics if the frame has been released.
func (f *Frame) panicIfReleased() {
	if f.chunks == nil {
		panic(ErrReleased)
	}
}

// alignOffset returns the first offset in c at or past c.offset whose
// address is a multiple of align.
func alignOffset(c *chunk, align uintptr) uintptr {
	base := uintptr(unsafe.Pointer(unsafe.SliceData(c.buf)))
	return alignUp(base+c.offset, align) - base
}

// alignUp rounds v up to a multiple of align, which must be a power of two.
func alignUp(v, align uintptr) uintptr {
	mask := align - 1
	return (v + mask) &^ mask
}

// Scope is one open level of a Frame, the analogue of a function
// activation. Memory reserved while it is the innermost scope is reclaimed
// by Exit. Scopes nest strictly: only the innermost one may exit.
//
//	s := f.Enter()
//	defer s.Exit()
type Scope struct {
	f      *Frame
	depth  int
	serial uint64
	m      mark
}

// Exit rewinds the frame to where it stood when the scope was entered.
// Vectors created in the scope, and anything derived from them, are invalid
// afterwards. Destroy them first if their elements hold resources.
func (s Scope) Exit() {
	f := s.f
	if DebugAssertions {
		assert(f != nil, "exit of a zero Scope")
		assert(f.chunks != nil, "exit after the frame was released")
		assert(s.depth == len(f.scopes) && f.scopes[s.depth-1] == s.serial,
			"scope exited out of order or twice")
	}
	f.rewind(s.m)
	f.scopes = f.scopes[:s.depth-1]
}

// Frame returns the frame the scope belongs to.
func (s Scope) Frame() *Frame { return s.f }

// Depth returns the nesting level of the scope, starting at 1.
func (s Scope) Depth() int { return s.depth }

// open reports whether the scope can still back live vectors.
func (s Scope) open() bool {
	return s.f != nil && s.f.chunks != nil && s.f.scopeOpen(s.depth, s.serial)
}

// innermost reports whether the scope may take reservations. Memory reserved
// from an outer scope while an inner one is open would be reclaimed by the
// inner Exit.
func (s Scope) innermost() bool {
	return s.open() && s.depth == len(s.f.scopes)
}
