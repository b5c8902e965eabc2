package alphabet

import (
	"fmt"
	"math/rand/v2"
)

// Permuter returns a permutation of the integers [0, n).
type Permuter func(n int) []int

// RandomPermuter draws permutations from a process-local source seeded by
// the runtime. Nothing about the seed is persisted.
func RandomPermuter() Permuter {
	rng := rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	return rng.Perm
}

// Identity keeps the order unchanged.
func Identity(n int) []int {
	p := make([]int, n)
	for i := range p {
		p[i] = i
	}
	return p
}

// Shuffle reorders a using perm: position i of the result holds the symbol
// that sat at position perm(n)[i] in a. The value space is untouched; only
// which string spells which ordinal changes.
func Shuffle(a *Alphabet, perm Permuter) (*Alphabet, error) {
	n := a.Size()
	p := perm(n)
	if len(p) != n {
		return nil, fmt.Errorf("permutation has %d entries for %d symbols", len(p), n)
	}
	out := make([]rune, n)
	for i, j := range p {
		if j < 0 || j >= n {
			return nil, fmt.Errorf("permutation index %d out of range [0,%d)", j, n)
		}
		out[i] = a.symbols[j]
	}
	// a repeated index would show up as a duplicate symbol here
	return New(out)
}
