package stackvec_test

import (
	"fmt"
	"runtime"
	"testing"

	"github.com/pavanmanishd/stackvec"
)

var sink int

// BenchmarkVectorSizes creates a vector per call at several capacities.
func BenchmarkVectorSizes(b *testing.B) {
	sizes := []int{8, 64, 512, 4096}
	for _, size := range sizes {
		b.Run(fmt.Sprintf("Vector_%d", size), func(b *testing.B) {
			f := stackvec.NewFrame(0)
			defer f.Release()

			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				s := f.Enter()
				var v stackvec.Vector[int64]
				v.Init(s, size)
				v.PushBack(int64(i))
				sink += int(*v.Back())
				s.Exit()
			}
		})

		b.Run(fmt.Sprintf("Builtin_%d", size), func(b *testing.B) {
			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				v := make([]int64, 0, size)
				v = append(v, int64(i))
				sink += int(v[len(v)-1])
			}
		})
	}
}

// BenchmarkElementTypes compares pointer-free and pointer-holding elements.
func BenchmarkElementTypes(b *testing.B) {
	type SmallStruct struct {
		A, B int32
	}
	type MediumStruct struct {
		ID   int64
		Data [56]byte
	}
	type WithPointers struct {
		Name string
		Next *WithPointers
	}

	b.Run("Vector_SmallStruct", func(b *testing.B) {
		benchVector(b, SmallStruct{A: 1})
	})
	b.Run("Vector_MediumStruct", func(b *testing.B) {
		benchVector(b, MediumStruct{ID: 1})
	})
	b.Run("Vector_WithPointers", func(b *testing.B) {
		benchVector(b, WithPointers{Name: "n"})
	})
	b.Run("Builtin_WithPointers", func(b *testing.B) {
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			v := make([]WithPointers, 0, 32)
			for j := 0; j < 32; j++ {
				v = append(v, WithPointers{Name: "n"})
			}
			sink += len(v)
		}
	})
}

func benchVector[T any](b *testing.B, x T) {
	f := stackvec.NewFrame(0)
	defer f.Release()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s := f.Enter()
		var v stackvec.Vector[T]
		v.Init(s, 32)
		for j := 0; j < 32; j++ {
			v.PushBack(x)
		}
		sink += v.Len()
		v.Destroy()
		s.Exit()
	}
}

// BenchmarkGCPressure keeps the garbage collector busy while vectors are
// created and dropped.
func BenchmarkGCPressure(b *testing.B) {
	b.Run("Vector", func(b *testing.B) {
		f := stackvec.NewFrame(0)
		defer f.Release()
		runtime.GC()

		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			s := f.Enter()
			for j := 0; j < 10; j++ {
				v := stackvec.MakeSlice[byte](s, 1024)
				v[0] = byte(j)
			}
			s.Exit()
		}
	})

	b.Run("Builtin", func(b *testing.B) {
		runtime.GC()

		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			for j := 0; j < 10; j++ {
				v := make([]byte, 1024)
				v[0] = byte(j)
				sink += int(v[0])
			}
		}
	})
}
