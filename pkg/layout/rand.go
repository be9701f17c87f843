package layout

import (
	"math/rand/v2"

	"github.com/iti/rngstream"
)

// RandSource draws uniform integers in [0, n). *rand.Rand satisfies it.
type RandSource interface {
	IntN(n int) int
}

// NewSeededSource returns a PCG-backed source. Equal seeds give equal
// sequences.
func NewSeededSource(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0xdeadbeef))
}

// StreamSource adapts an rngstream stream to RandSource.
type StreamSource struct {
	stream *rngstream.RngStream
}

// NewStreamSource creates a named stream. Streams created in the same order
// produce the same sequences across runs.
func NewStreamSource(name string) *StreamSource {
	return &StreamSource{stream: rngstream.New(name)}
}

// IntN implements RandSource.
func (s *StreamSource) IntN(n int) int {
	if n <= 0 {
		panic("layout: IntN called with non-positive n")
	}
	v := int(s.stream.RandU01() * float64(n))
	return min(max(v, 0), n-1)
}
