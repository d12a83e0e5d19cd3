// Package dice wraps the single seedable generator each game session owns.
package dice

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand/v2"

	"github.com/google/uuid"
)

// Roller is a deterministic random source. It is not safe for concurrent use;
// a session resolves one command at a time.
type Roller struct {
	src *rand.PCG
	r   *rand.Rand
}

// New returns a roller seeded from a single 64-bit seed.
func New(seed uint64) *Roller {
	src := rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)
	return &Roller{src: src, r: rand.New(src)}
}

// NewSeed generates a seed using crypto/rand.
func NewSeed() (uint64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}
	return binary.LittleEndian.Uint64(b[:]), nil
}

// IntN returns a value in [0, n). n <= 0 yields 0.
func (d *Roller) IntN(n int) int {
	if n <= 0 {
		return 0
	}
	return d.r.IntN(n)
}

// Between returns a value in [lo, hi] inclusive.
func (d *Roller) Between(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + d.r.IntN(hi-lo+1)
}

func (d *Roller) Float64() float64 {
	return d.r.Float64()
}

// Chance reports true with probability p.
func (d *Roller) Chance(p float64) bool {
	return d.r.Float64() < p
}

func (d *Roller) Uint64() uint64 {
	return d.r.Uint64()
}

// Perm returns a random permutation of [0, n).
func (d *Roller) Perm(n int) []int {
	return d.r.Perm(n)
}

func (d *Roller) Shuffle(n int, swap func(i, j int)) {
	d.r.Shuffle(n, swap)
}

// Weighted picks an index with probability proportional to weights[i].
// It returns -1 when every weight is zero.
func (d *Roller) Weighted(weights []int) int {
	total := 0
	for _, w := range weights {
		if w > 0 {
			total += w
		}
	}
	if total == 0 {
		return -1
	}
	n := d.r.IntN(total)
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		if n < w {
			return i
		}
		n -= w
	}
	return len(weights) - 1
}

// Read fills p from the generator so seeded ids can be drawn with uuid.
func (d *Roller) Read(p []byte) (int, error) {
	for i := 0; i < len(p); i += 8 {
		var b [8]byte
		binary.LittleEndian.PutUint64(b[:], d.r.Uint64())
		copy(p[i:], b[:])
	}
	return len(p), nil
}

// UUID returns a version 4 uuid drawn from the generator.
func (d *Roller) UUID() uuid.UUID {
	id, err := uuid.NewRandomFromReader(d)
	if err != nil {
		return uuid.New()
	}
	return id
}

// State captures the generator position so a restored session continues the
// same sequence.
func (d *Roller) State() ([]byte, error) {
	b, err := d.src.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("marshal rng state: %w", err)
	}
	return b, nil
}

// Restore rewinds the generator to a state captured by State.
func (d *Roller) Restore(state []byte) error {
	if err := d.src.UnmarshalBinary(state); err != nil {
		return fmt.Errorf("unmarshal rng state: %w", err)
	}
	return nil
}
