package seed

import (
	"encoding/binary"

	"golang.org/x/crypto/sha3"
)

// Domain separates the seed stream from any other SHAKE256 use of the
// same bytes. Changing it changes every derived key.
const Domain = "chaoscrypt/seed/v1\x00"

// Stream is an unbounded deterministic byte stream keyed by a seed.
type Stream struct {
	xof sha3.ShakeHash
	buf [8]byte
}

func NewStream(seed string) *Stream {
	h := sha3.NewShake256()
	h.Write([]byte(Domain))
	h.Write([]byte(seed))
	return &Stream{xof: h}
}

// Uint64 reads the next eight bytes as a big-endian integer.
func (s *Stream) Uint64() uint64 {
	// ShakeHash.Read never fails.
	_, _ = s.xof.Read(s.buf[:])
	return binary.BigEndian.Uint64(s.buf[:])
}

// Float64 returns a uniform value in [0, 1) built from the top 53 bits
// of the next Uint64.
func (s *Stream) Float64() float64 {
	return float64(s.Uint64()>>11) * (1.0 / (1 << 53))
}
