// Package entropy supplies the random bytes that pick the key origin and,
// optionally, fill record values.
package entropy

import (
	crand "crypto/rand"
	"encoding/binary"
	"io"
	"math/rand/v2"
)

// Source is a blocking random byte stream. Reads always fill the buffer or
// fail.
type Source struct {
	r      io.Reader
	seeded bool
}

// New returns the OS entropy source when seed is 0 and a reproducible ChaCha8
// stream otherwise.
func New(seed uint64) *Source {
	if seed == 0 {
		return &Source{r: crand.Reader}
	}
	var key [32]byte
	binary.LittleEndian.PutUint64(key[:], seed)
	return &Source{r: rand.NewChaCha8(key), seeded: true}
}

// Seeded reports whether the stream is reproducible.
func (s *Source) Seeded() bool { return s.seeded }

// Read fills p completely.
func (s *Source) Read(p []byte) (int, error) {
	return io.ReadFull(s.r, p)
}
