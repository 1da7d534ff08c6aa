// Package random provides deterministic pseudo-random generators (PRGs).
//
// Every random draw made by the simulator goes through a Rand instance that the
// caller injects. Two generators created from the same seed and customizer produce
// identical output streams, which is what makes a trial replayable from its seed.
// This package must not be used where secure randomness is required.
package random

import (
	"encoding/binary"
	"fmt"
)

// Rand is a pseudo random number generator
type Rand interface {
	// Read fills the input slice with random bytes.
	Read([]byte)

	// UintN returns a random number between 0 and N (exclusive).
	// N must be strictly positive.
	UintN(uint64) uint64

	// Bool returns true or false, each with probability 1/2.
	Bool() bool

	// Permutation returns a permutation of the set [0,n-1].
	// The returned error is non-nil if the parameter is a negative integer.
	Permutation(n int) ([]int, error)

	// SubPermutation returns the m first elements of a permutation of [0,n-1].
	// The returned error is non-nil if a parameter is negative or m > n.
	SubPermutation(n int, m int) ([]int, error)

	// Samples picks (m) random ordered elements of a data structure of total size (n). The (m) elements
	// are placed in the indices 0 to (m-1) with in place swapping.
	// The returned error is non-nil if a parameter is negative or m > n.
	Samples(n int, m int, swap func(i, j int)) error
}

// randCore is PRG providing the core Read function of a PRG.
// All other Rand methods use the core Read method.
//
// In order to add a new Rand implementation,
// it should be enough to implement randCore.
type randCore interface {
	// Read fills the input slice with random bytes.
	Read([]byte)
}

// genericPRG implements all the Rand methods using the embedded randCore method.
// All implementations of the Rand interface should embed the genericPRG struct.
type genericPRG struct {
	randCore
}

// UintN returns an uint64 pseudo-random number in [0,n-1],
// using `p` as an entropy source.
//
// Samples are drawn on the bit size of n-1 and rejected when out of range, so the
// output is uniform. Each iteration succeeds with probability above 1/2.
func (p *genericPRG) UintN(n uint64) uint64 {
	if n == 0 {
		panic("random: UintN called with n == 0")
	}
	max := n - 1
	if max == 0 {
		return 0
	}
	mask := uint64(0)
	for max&mask != max {
		mask = (mask << 1) | 1
	}

	bytes := make([]byte, 8)
	for {
		p.Read(bytes)
		random := binary.LittleEndian.Uint64(bytes) & mask
		if random <= max {
			return random
		}
	}
}

// Bool returns the lowest bit of a fresh random byte.
func (p *genericPRG) Bool() bool {
	b := make([]byte, 1)
	p.Read(b)
	return b[0]&1 == 1
}

// Permutation returns a permutation of the set [0,n-1].
// It implements Fisher-Yates Shuffle (inside-out variant) using `p` as a random source.
//
// O(n) space and O(n) time.
func (p *genericPRG) Permutation(n int) ([]int, error) {
	if n < 0 {
		return nil, fmt.Errorf("population size cannot be negative")
	}
	items := make([]int, n)
	for i := 0; i < n; i++ {
		j := p.UintN(uint64(i + 1))
		items[i] = items[j]
		items[j] = i
	}
	return items, nil
}

// SubPermutation returns the `m` first elements of a permutation of [0,n-1].
//
// It implements the first `m` steps of Fisher-Yates Shuffle using `p` as a source of randoms,
// so only `m` values are drawn.
//
// O(n) space and O(m) time
func (p *genericPRG) SubPermutation(n int, m int) ([]int, error) {
	if m < 0 {
		return nil, fmt.Errorf("sample size cannot be negative")
	}
	if n < m {
		return nil, fmt.Errorf("sample size (%d) cannot be larger than entire population (%d)", m, n)
	}
	items := make([]int, n)
	for i := range items {
		items[i] = i
	}
	err := p.Samples(n, m, func(i, j int) {
		items[i], items[j] = items[j], items[i]
	})
	if err != nil {
		return nil, err
	}
	return items[:m], nil
}

// Samples picks randomly m elements out of n elements and places them
// in random order at indices [0,m-1], the swapping being implemented in place.
//
// It implements the first (m) elements of Fisher-Yates Shuffle using `p` as a source of randoms.
//
// O(1) space and O(m) time
func (p *genericPRG) Samples(n int, m int, swap func(i, j int)) error {
	if m < 0 {
		return fmt.Errorf("inputs cannot be negative")
	}
	if n < m {
		return fmt.Errorf("sample size (%d) cannot be larger than entire population (%d)", m, n)
	}
	for i := 0; i < m; i++ {
		j := p.UintN(uint64(n - i))
		swap(i, i+int(j))
	}
	return nil
}
