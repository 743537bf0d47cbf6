// Package assign produces the random row/column digit permutations for a
// board once it fills. The seeded and unseeded paths share one shuffle so a
// seeded run is a faithful replay of production behavior.
package assign

import (
	"fmt"
	"math/rand"
	"time"
)

// Source is the randomness a shuffle draws from. math/rand.Rand satisfies it.
type Source interface {
	Intn(n int) int
}

// Assign returns two independent uniform permutations of 0..size-1, one for
// rows and one for columns. Only 5 and 10 wide boards exist.
func Assign(size int) (rows, cols []int, err error) {
	src := rand.New(rand.NewSource(time.Now().UnixNano()))
	return AssignWith(size, src)
}

// AssignSeeded is the deterministic variant: identical seeds always yield
// identical permutations. Used for audits and tests.
func AssignSeeded(seed string, size int) (rows, cols []int, err error) {
	return AssignWith(size, newLCG(seed))
}

// AssignWith shuffles both axes from the given source. The row axis is
// consumed first, then the column axis, so the two permutations stay
// statistically independent draws from one stream.
func AssignWith(size int, src Source) (rows, cols []int, err error) {
	const op = "assign.AssignWith"

	if size != 5 && size != 10 {
		return nil, nil, fmt.Errorf("%s: unsupported board size %d", op, size)
	}

	rows = shuffle(size, src)
	cols = shuffle(size, src)

	return rows, cols, nil
}

// shuffle is a Fisher-Yates pass over 0..size-1.
func shuffle(size int, src Source) []int {
	nums := make([]int, size)
	for i := range nums {
		nums[i] = i
	}

	for i := size - 1; i > 0; i-- {
		j := src.Intn(i + 1)
		nums[i], nums[j] = nums[j], nums[i]
	}

	return nums
}

// Validate confirms nums is exactly a permutation of 0..size-1. A failure
// here is an internal-consistency bug, never user input: correct shuffling
// cannot produce one.
func Validate(nums []int, size int) error {
	const op = "assign.Validate"

	if len(nums) != size {
		return fmt.Errorf("%s: got %d numbers for axis size %d", op, len(nums), size)
	}

	seen := make([]bool, size)
	for _, n := range nums {
		if n < 0 || n >= size {
			return fmt.Errorf("%s: value %d out of range 0..%d", op, n, size-1)
		}
		if seen[n] {
			return fmt.Errorf("%s: value %d appears more than once", op, n)
		}
		seen[n] = true
	}

	return nil
}

// lcg is a small linear-congruential generator seeded from the character
// codes of the seed string (Numerical Recipes constants).
type lcg struct {
	state uint64
}

func newLCG(seed string) *lcg {
	var s uint64
	for _, c := range seed {
		s = s*31 + uint64(c)
	}
	if s == 0 {
		s = 1
	}
	return &lcg{state: s}
}

func (l *lcg) next() uint64 {
	l.state = l.state*6364136223846793005 + 1442695040888963407
	return l.state
}

func (l *lcg) Intn(n int) int {
	return int((l.next() >> 33) % uint64(n))
}
