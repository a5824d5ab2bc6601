package benchsuite

import (
	"math/rand/v2"

	"github.com/pavanmanishd/stackvec"
)

// Input is the eight operands fed to the compute8 kernel.
type Input [8]int

// NewInput draws eight operands from [lo, hi), with lo in [32, 64) and hi
// in [2048, 4096).
func NewInput(seed uint64) Input {
	rng := rand.New(rand.NewPCG(seed, seed^0x9E3779B97F4A7C15))
	lo := 32 + rng.IntN(32)
	hi := 2048 + rng.IntN(2048)
	var in Input
	for i := range in {
		in[i] = lo + rng.IntN(hi-lo)
	}
	return in
}

// Compute8Vector pushes the eight operands and mixes them in place.
// v must have room for eight more elements and be empty.
func Compute8Vector(v *stackvec.Vector[int], in *Input) {
	for _, x := range in {
		v.PushBack(x)
	}
	e := v.Slice()
	div := e[2]
	if div == 0 {
		div = 1
	}
	e[0] = e[7] % div
	e[1] = e[0] + (e[0]+e[1])/2
	e[2] = e[7] * e[3]
	e[3] = e[6] + e[5] - e[4]*e[3]
	e[4] = e[1] & e[3]
	e[5] = e[4] ^ e[7]
	e[6] = e[1] | e[2]
	e[7] = ^e[0]
}

// Compute8Slice is Compute8Vector over a heap slice.
func Compute8Slice(s []int, in *Input) []int {
	s = append(s, in[:]...)
	div := s[2]
	if div == 0 {
		div = 1
	}
	s[0] = s[7] % div
	s[1] = s[0] + (s[0]+s[1])/2
	s[2] = s[7] * s[3]
	s[3] = s[6] + s[5] - s[4]*s[3]
	s[4] = s[1] & s[3]
	s[5] = s[4] ^ s[7]
	s[6] = s[1] | s[2]
	s[7] = ^s[0]
	return s
}
