package stackvec

import (
	"testing"
)

func TestFrameMetrics(t *testing.T) {
	f := NewFrame(1024)

	if f.SizeInUse() != 0 {
		t.Errorf("Initial SizeInUse = %d, want 0", f.SizeInUse())
	}
	if f.NumChunks() != 1 {
		t.Errorf("Initial NumChunks = %d, want 1", f.NumChunks())
	}
	if f.Capacity() != 1024 {
		t.Errorf("Initial Capacity = %d, want 1024", f.Capacity())
	}
	if f.ChunkSize() != 1024 {
		t.Errorf("ChunkSize = %d, want 1024", f.ChunkSize())
	}
	if f.Utilization() != 0 {
		t.Errorf("Initial Utilization = %f, want 0", f.Utilization())
	}

	s := f.Enter()
	MakeSlice[byte](s, 100)
	MakeSlice[byte](s, 200)

	if f.SizeInUse() != 300 {
		t.Errorf("SizeInUse = %d, want 300", f.SizeInUse())
	}
	utilization := f.Utilization()
	if utilization <= 0 || utilization > 1 {
		t.Errorf("Utilization = %f, want 0 < x <= 1", utilization)
	}

	// Larger than the chunk size.
	MakeSlice[byte](s, 2000)
	if f.NumChunks() != 2 {
		t.Errorf("NumChunks after growth = %d, want 2", f.NumChunks())
	}
	if f.Capacity() != 3024 {
		t.Errorf("Capacity after growth = %d, want 3024", f.Capacity())
	}

	metrics := f.Metrics()
	if metrics.SizeInUse != f.SizeInUse() {
		t.Errorf("Metrics.SizeInUse = %d, want %d", metrics.SizeInUse, f.SizeInUse())
	}
	if metrics.Capacity != f.Capacity() {
		t.Errorf("Metrics.Capacity = %d, want %d", metrics.Capacity, f.Capacity())
	}
	if metrics.NumChunks != f.NumChunks() {
		t.Errorf("Metrics.NumChunks = %d, want %d", metrics.NumChunks, f.NumChunks())
	}
	if metrics.ChunkSize != f.ChunkSize() {
		t.Errorf("Metrics.ChunkSize = %d, want %d", metrics.ChunkSize, f.ChunkSize())
	}
	if metrics.Utilization != f.Utilization() {
		t.Errorf("Metrics.Utilization = %f, want %f", metrics.Utilization, f.Utilization())
	}
	if metrics.Depth != 1 {
		t.Errorf("Metrics.Depth = %d, want 1", metrics.Depth)
	}
	if metrics.Peak != 2300 {
		t.Errorf("Metrics.Peak = %d, want 2300", metrics.Peak)
	}

	s.Exit()
	if f.SizeInUse() != 0 {
		t.Errorf("SizeInUse after Exit = %d, want 0", f.SizeInUse())
	}
	if f.Peak() != 2300 {
		t.Errorf("Peak after Exit = %d, want 2300", f.Peak())
	}
	if f.NumChunks() != 2 {
		t.Errorf("NumChunks after Exit = %d, want 2 (chunks are kept)", f.NumChunks())
	}
}

func TestFrameMetricsTypedRegions(t *testing.T) {
	f := NewFrame(1024)
	s := f.Enter()
	defer s.Exit()

	MakeSlice[string](s, 4)
	MakeSlice[*int](s, 4)
	MakeSlice[int](s, 4)

	m := f.Metrics()
	if m.TypedRegions != 2 {
		t.Errorf("TypedRegions = %d, want 2", m.TypedRegions)
	}
	// 4 strings + 4 pointers + 4 ints.
	want := 4*16 + 4*8 + 4*8
	if m.SizeInUse != want {
		t.Errorf("SizeInUse = %d, want %d", m.SizeInUse, want)
	}
	if m.Capacity <= f.NumChunks()*f.ChunkSize() {
		t.Errorf("Capacity = %d, want typed regions counted on top of %d", m.Capacity, f.NumChunks()*f.ChunkSize())
	}
}

func TestFrameMetricsAfterRelease(t *testing.T) {
	f := NewFrame(1024)
	s := f.Enter()
	MakeSlice[byte](s, 100)

	f.Release()

	if f.SizeInUse() != 0 {
		t.Errorf("SizeInUse after Release = %d, want 0", f.SizeInUse())
	}
	if f.NumChunks() != 0 {
		t.Errorf("NumChunks after Release = %d, want 0", f.NumChunks())
	}
	if f.Capacity() != 0 {
		t.Errorf("Capacity after Release = %d, want 0", f.Capacity())
	}
	if f.Utilization() != 0 {
		t.Errorf("Utilization after Release = %f, want 0", f.Utilization())
	}
}

func TestPoolMetrics(t *testing.T) {
	p := NewPool(PoolConfig{ChunkSize: 512, MaxIdle: 1})

	a := p.Get()
	b := p.Get()
	p.Put(a)
	p.Put(b) // pool already holds one idle frame
	c := p.Get()
	p.Put(c)

	m := p.Metrics()
	want := PoolMetrics{Gets: 3, Puts: 3, Created: 2, Discarded: 1, Idle: 1}
	if m != want {
		t.Errorf("Metrics = %+v, want %+v", m, want)
	}
}

func BenchmarkMetrics(b *testing.B) {
	f := NewFrame(1024 * 1024)
	s := f.Enter()
	defer s.Exit()
	for i := 0; i < 100; i++ {
		MakeSlice[byte](s, 1000)
	}
	MakeSlice[string](s, 100)

	b.Run("SizeInUse", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			f.SizeInUse()
		}
	})

	b.Run("Capacity", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			f.Capacity()
		}
	})

	b.Run("Metrics", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			f.Metrics()
		}
	})
}
