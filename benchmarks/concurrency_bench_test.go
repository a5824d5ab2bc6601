package stackvec_test

import (
	"fmt"
	"testing"

	"github.com/pavanmanishd/stackvec"
)

// BenchmarkConcurrencyPatterns compares ways of giving goroutines a frame.
func BenchmarkConcurrencyPatterns(b *testing.B) {

	// A frame per goroutine, held for the whole run
	b.Run("Frame_PerGoroutine", func(b *testing.B) {
		b.RunParallel(func(pb *testing.PB) {
			f := stackvec.NewFrame(0)
			defer f.Release()

			for pb.Next() {
				s := f.Enter()
				v := stackvec.New[int](s, 64)
				v.PushBack(1)
				s.Exit()
			}
		})
	})

	// A frame per task, borrowed from a pool
	b.Run("Pool_PerTask", func(b *testing.B) {
		pool := stackvec.NewPool(stackvec.PoolConfig{})
		b.RunParallel(func(pb *testing.PB) {
			for pb.Next() {
				_ = pool.Do(func(f *stackvec.Frame) error {
					s := f.Enter()
					defer s.Exit()
					v := stackvec.New[int](s, 64)
					v.PushBack(1)
					return nil
				})
			}
		})
	})

	// Standard allocation parallel baseline
	b.Run("Builtin_Parallel", func(b *testing.B) {
		b.RunParallel(func(pb *testing.PB) {
			for pb.Next() {
				v := make([]int, 0, 64)
				_ = append(v, 1)
			}
		})
	})

	sizes := []int{32, 512, 8192}
	for _, size := range sizes {
		b.Run(fmt.Sprintf("Pool_Contention_%d", size), func(b *testing.B) {
			pool := stackvec.NewPool(stackvec.PoolConfig{MaxIdle: 4})
			b.RunParallel(func(pb *testing.PB) {
				for pb.Next() {
					f := pool.Get()
					s := f.Enter()
					stackvec.MakeSlice[byte](s, size)
					s.Exit()
					pool.Put(f)
				}
			})
		})
	}
}
