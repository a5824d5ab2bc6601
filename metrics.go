package stackvec

// SizeInUse returns the total number of bytes currently reserved from the
// frame, including alignment padding.
func (f *Frame) SizeInUse() int {
	if f.chunks == nil {
		return 0
	}
	return f.inUse
}

// NumChunks returns the number of raw byte chunks currently allocated by the
// frame. Typed regions are counted by TypedRegions.
func (f *Frame) NumChunks() int {
	if f.chunks == nil {
		return 0
	}
	return len(f.chunks)
}

// Capacity returns the total capacity (in bytes) of the frame's byte chunks
// and typed regions.
func (f *Frame) Capacity() int {
	if f.chunks == nil {
		return 0
	}
	sum := 0
	for _, c := range f.chunks {
		sum += len(c.buf)
	}
	for _, r := range f.regions {
		sum += r.capacityBytes()
	}
	return sum
}

// Utilization returns the ratio of bytes in use to total capacity (0.0 to 1.0).
// Returns 0.0 if the frame has no capacity.
func (f *Frame) Utilization() float64 {
	capacity := f.Capacity()
	if capacity == 0 {
		return 0
	}
	return float64(f.SizeInUse()) / float64(capacity)
}

// ChunkSize returns the default chunk size used by this frame.
func (f *Frame) ChunkSize() int {
	return f.chunkSize
}

// Peak returns the largest SizeInUse the frame has reached.
func (f *Frame) Peak() int {
	return f.peak
}

// TypedRegions returns the number of element types with their own region.
func (f *Frame) TypedRegions() int {
	return len(f.regions)
}

// Metrics returns a snapshot of frame statistics.
func (f *Frame) Metrics() FrameMetrics {
	return FrameMetrics{
		SizeInUse:    f.SizeInUse(),
		Capacity:     f.Capacity(),
		NumChunks:    f.NumChunks(),
		ChunkSize:    f.ChunkSize(),
		Utilization:  f.Utilization(),
		Depth:        f.Depth(),
		Peak:         f.Peak(),
		TypedRegions: f.TypedRegions(),
	}
}

// FrameMetrics contains statistical information about a frame.
type FrameMetrics struct {
	SizeInUse    int     // Bytes currently reserved
	Capacity     int     // Total capacity in bytes
	NumChunks    int     // Number of byte chunks
	ChunkSize    int     // Default chunk size
	Utilization  float64 // Ratio of used to total capacity (0.0-1.0)
	Depth        int     // Open scopes
	Peak         int     // High-water mark of SizeInUse
	TypedRegions int     // Element types with a typed region
}

// PoolMetrics contains counters describing a Pool.
type PoolMetrics struct {
	Gets      uint64 // Frames handed out
	Puts      uint64 // Frames returned
	Created   uint64 // Frames created because none was idle
	Discarded uint64 // Returned frames released because the pool was full
	Idle      int    // Frames waiting to be reused
}

// Metrics returns a snapshot of the pool counters.
func (p *Pool) Metrics() PoolMetrics {
	p.mu.Lock()
	defer p.mu.Unlock()
	return PoolMetrics{
		Gets:      p.gets,
		Puts:      p.puts,
		Created:   p.created,
		Discarded: p.discarded,
		Idle:      len(p.idle),
	}
}
