package benchmark

import (
	"encoding/binary"
	"fmt"
	"io"
)

// KeyStream yields strictly increasing keys starting just after a random
// origin.
type KeyStream struct {
	first   uint64
	current uint64
}

// NewKeyStream draws the origin from r. The top bit is cleared so the stream
// cannot wrap within any feasible run.
func NewKeyStream(r io.Reader) (*KeyStream, error) {
	var buf [8]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return nil, fmt.Errorf("draw key origin: %w", err)
	}
	origin := binary.NativeEndian.Uint64(buf[:]) >> 1
	return &KeyStream{first: origin, current: origin}, nil
}

// Next advances the stream by one and returns the new key.
func (k *KeyStream) Next() uint64 {
	k.current++
	return k.current
}

// First is the origin. It is never used as a key.
func (k *KeyStream) First() uint64 { return k.first }

// Current is the last key handed out, or the origin before the first Next.
func (k *KeyStream) Current() uint64 { return k.current }

// Count is the number of keys handed out.
func (k *KeyStream) Count() uint64 { return k.current - k.first }
