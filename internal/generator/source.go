package generator

import (
	crand "crypto/rand"
	"encoding/binary"
	"io"
	"math/rand/v2"
)

// Source is the entropy the generator draws from. Tests substitute a fixed
// sequence; the host uses NewCryptoSource.
type Source interface {
	io.Reader

	// Float64 returns a value in [0.0, 1.0).
	Float64() float64

	// IntN returns a value in [0, n). Panics if n <= 0.
	IntN(n int) int
}

// chachaSource implements Source over a ChaCha8 stream.
type chachaSource struct {
	stream *rand.ChaCha8
	rng    *rand.Rand
}

// NewSource returns a deterministic source: equal seeds yield equal sequences.
func NewSource(seed uint64) Source {
	var key [32]byte
	binary.LittleEndian.PutUint64(key[:8], seed)
	return newChachaSource(key)
}

// NewCryptoSource returns a source keyed from crypto/rand.
// A failing system entropy pool is unrecoverable and panics.
func NewCryptoSource() Source {
	var key [32]byte
	if _, err := crand.Read(key[:]); err != nil {
		panic("generator: read system entropy: " + err.Error())
	}
	return newChachaSource(key)
}

func newChachaSource(key [32]byte) *chachaSource {
	stream := rand.NewChaCha8(key)
	return &chachaSource{
		stream: stream,
		rng:    rand.New(stream),
	}
}

func (s *chachaSource) Read(p []byte) (int, error) {
	return s.stream.Read(p)
}

func (s *chachaSource) Float64() float64 {
	return s.rng.Float64()
}

func (s *chachaSource) IntN(n int) int {
	return s.rng.IntN(n)
}
