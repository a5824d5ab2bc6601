package stackvec

import (
	"context"
	"errors"
	"sync"
	"testing"
)

func TestPoolReusesFrames(t *testing.T) {
	p := NewPool(PoolConfig{ChunkSize: 256})

	f := p.Get()
	if f.ChunkSize() != 256 {
		t.Errorf("ChunkSize = %d, want 256", f.ChunkSize())
	}
	s := f.Enter()
	MakeSlice[byte](s, 64)
	s.Exit()
	p.Put(f)

	g := p.Get()
	if g != f {
		t.Error("Get did not hand back the idle frame")
	}
	if g.SizeInUse() != 0 || g.Depth() != 0 {
		t.Errorf("reused frame SizeInUse/Depth = %d/%d, want 0/0", g.SizeInUse(), g.Depth())
	}
}

func TestPoolDiscardsPastMaxIdle(t *testing.T) {
	p := NewPool(PoolConfig{MaxIdle: 2})

	frames := []*Frame{p.Get(), p.Get(), p.Get()}
	for _, f := range frames {
		p.Put(f)
	}

	if got := p.Metrics().Idle; got != 2 {
		t.Errorf("Idle = %d, want 2", got)
	}
	// The last one returned did not fit and was released.
	if frames[2].NumChunks() != 0 {
		t.Errorf("discarded frame still holds %d chunks", frames[2].NumChunks())
	}
}

func TestPoolMaxBytes(t *testing.T) {
	p := NewPool(PoolConfig{ChunkSize: 1024, MaxBytes: 128})

	err := p.Do(func(f *Frame) error {
		s := f.Enter()
		defer s.Exit()

		defer func() {
			if r := recover(); r != ErrFrameExhausted {
				t.Errorf("recover() = %v, want ErrFrameExhausted", r)
			}
		}()
		New[int64](s, 17)
		return nil
	})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
}

func TestPoolDo(t *testing.T) {
	p := NewPool(PoolConfig{})
	errWork := errors.New("work failed")

	err := p.Do(func(f *Frame) error {
		s := f.Enter()
		defer s.Exit()
		v := New[int](s, 3)
		v.PushBack(1)
		return errWork
	})
	if !errors.Is(err, errWork) {
		t.Errorf("Do error = %v, want errWork", err)
	}
	if m := p.Metrics(); m.Gets != 1 || m.Puts != 1 {
		t.Errorf("Gets/Puts = %d/%d, want 1/1", m.Gets, m.Puts)
	}
}

func TestPoolConcurrent(t *testing.T) {
	p := NewPool(PoolConfig{ChunkSize: 4096})

	const workers = 16
	var wg sync.WaitGroup
	sums := make([]int, workers)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for iter := 0; iter < 100; iter++ {
				_ = p.Do(func(f *Frame) error {
					s := f.Enter()
					defer s.Exit()
					var v Vector[int]
					v.Init(s, 64)
					for i := 0; i < 64; i++ {
						v.PushBack(i)
					}
					sum := 0
					for _, x := range v.All() {
						sum += *x
					}
					sums[id] = sum
					return nil
				})
			}
		}(w)
	}
	wg.Wait()

	for id, sum := range sums {
		if sum != 63*64/2 {
			t.Errorf("worker %d sum = %d, want %d", id, sum, 63*64/2)
		}
	}
	m := p.Metrics()
	if m.Gets != workers*100 || m.Puts != workers*100 {
		t.Errorf("Gets/Puts = %d/%d, want %d", m.Gets, m.Puts, workers*100)
	}
	if m.Created > workers {
		t.Errorf("Created = %d, want at most %d", m.Created, workers)
	}
}

func TestPoolPutWithOpenScope(t *testing.T) {
	if !DebugAssertions {
		t.Skip("contract checks compiled out")
	}
	p := NewPool(PoolConfig{})
	f := p.Get()
	f.Enter()

	defer func() {
		if recover() == nil {
			t.Error("Put with an open scope did not panic")
		}
	}()
	p.Put(f)
}

func TestFrameContext(t *testing.T) {
	if _, ok := FromContext(context.Background()); ok {
		t.Error("FromContext on an empty context reported a frame")
	}

	f := NewFrame(0)
	ctx := NewContext(context.Background(), f)
	got, ok := FromContext(ctx)
	if !ok || got != f {
		t.Errorf("FromContext = %p, %v, want %p, true", got, ok, f)
	}

	if _, ok := FromContext(NewContext(context.Background(), nil)); ok {
		t.Error("FromContext reported a nil frame")
	}
}

func BenchmarkPoolDo(b *testing.B) {
	p := NewPool(PoolConfig{})
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			_ = p.Do(func(f *Frame) error {
				s := f.Enter()
				defer s.Exit()
				v := MakeSlice[int](s, 32)
				v[0] = 1
				return nil
			})
		}
	})
}
