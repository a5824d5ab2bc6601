package stackvec

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// DefaultMaxIdle is the number of idle frames a pool keeps when
// PoolConfig.MaxIdle is not set.
const DefaultMaxIdle = 64

// PoolConfig configures a Pool.
type PoolConfig struct {
	ChunkSize int         // chunk size of new frames; <= 0 means DefaultChunkSize
	MaxBytes  int         // per-frame cap, see WithMaxBytes; 0 means none
	MaxIdle   int         // idle frames kept for reuse; <= 0 means DefaultMaxIdle
	Logger    *zap.Logger // nil means the package logger
}

// Pool hands each task a Frame of its own and takes it back afterwards, so
// frames are allocated once and reused. The pool is safe for concurrent use;
// the frames it hands out are not.
type Pool struct {
	mu   sync.Mutex
	idle []*Frame
	cfg  PoolConfig
	log  *zap.Logger

	gets, puts, created, discarded uint64
}

// NewPool creates an empty pool.
func NewPool(cfg PoolConfig) *Pool {
	if cfg.MaxIdle <= 0 {
		cfg.MaxIdle = DefaultMaxIdle
	}
	log := cfg.Logger
	if log == nil {
		log = Logger()
	}
	return &Pool{cfg: cfg, log: log}
}

// Get returns an idle frame, or a new one when none is idle.
func (p *Pool) Get() *Frame {
	p.mu.Lock()
	p.gets++
	if n := len(p.idle); n > 0 {
		f := p.idle[n-1]
		p.idle[n-1] = nil
		p.idle = p.idle[:n-1]
		p.mu.Unlock()
		return f
	}
	p.created++
	p.mu.Unlock()

	return NewFrame(p.cfg.ChunkSize, WithMaxBytes(p.cfg.MaxBytes), WithFrameLogger(p.log))
}

// Put resets f and keeps it for reuse. Every scope opened on f must have
// exited. f must not be used by the caller afterwards.
func (p *Pool) Put(f *Frame) {
	if DebugAssertions {
		assert(f.Depth() == 0, "frame returned to the pool with open scopes")
	}
	f.Reset()

	p.mu.Lock()
	p.puts++
	if len(p.idle) >= p.cfg.MaxIdle {
		p.discarded++
		p.mu.Unlock()
		if ce := p.log.Check(zap.DebugLevel, "stackvec: pool full, releasing frame"); ce != nil {
			ce.Write(zap.Int("capacity", f.Capacity()))
		}
		f.Release()
		return
	}
	p.idle = append(p.idle, f)
	p.mu.Unlock()
}

// Do runs fn with a frame from the pool and returns the frame afterwards,
// also when fn panics.
func (p *Pool) Do(fn func(*Frame) error) error {
	f := p.Get()
	defer p.Put(f)
	return fn(f)
}

type frameKey struct{}

// NewContext returns a copy of ctx carrying f.
func NewContext(ctx context.Context, f *Frame) context.Context {
	return context.WithValue(ctx, frameKey{}, f)
}

// FromContext returns the frame stored in ctx by NewContext.
func FromContext(ctx context.Context) (*Frame, bool) {
	f, ok := ctx.Value(frameKey{}).(*Frame)
	return f, ok && f != nil
}
