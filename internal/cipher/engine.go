package cipher

import (
	"context"
	"fmt"

	"github.com/san-kum/chaoscrypt/internal/dynamo"
	"github.com/san-kum/chaoscrypt/internal/keygen"
	"github.com/san-kum/chaoscrypt/internal/systems"
)

// MaxRounds is the largest accepted round count.
const MaxRounds = 64

// parallelChunk is the smallest slice of a buffer handed to one goroutine.
const parallelChunk = 1 << 16

// Schedule holds the per-system round keys and S-boxes. Round r uses
// system (r-1) mod 3. A Schedule is immutable and safe for concurrent use.
type Schedule struct {
	keys     [systems.Count]keygen.Key
	sboxes   [systems.Count]keygen.SBox
	inverses [systems.Count]keygen.SBox
}

// NewSchedule validates every S-box and caches its inverse.
func NewSchedule(keys [systems.Count]keygen.Key, sboxes [systems.Count]keygen.SBox) (*Schedule, error) {
	s := &Schedule{keys: keys, sboxes: sboxes}
	for i, sb := range sboxes {
		if !sb.Valid() {
			return nil, fmt.Errorf("%w: s-box of %s is not a bijection", dynamo.ErrInvalidInput, systems.Kinds[i])
		}
		s.inverses[i] = sb.Inverse()
	}
	return s, nil
}

// FromMaterial builds the schedule for derived material.
func FromMaterial(m *keygen.Material) (*Schedule, error) {
	if m == nil {
		return nil, fmt.Errorf("%w: nil material", dynamo.ErrInvalidInput)
	}
	return NewSchedule(m.Keys, m.SBoxes)
}

// System returns the system index used by round r (1-based).
func System(round int) int { return (round - 1) % systems.Count }

func checkRounds(rounds int) error {
	if rounds < 1 || rounds > MaxRounds {
		return fmt.Errorf("%w: rounds must be in [1, %d], got %d", dynamo.ErrInvalidInput, MaxRounds, rounds)
	}
	return nil
}

// Encrypt applies rounds 1..rounds to a copy of pixels:
//
//	out[i] = S_r[in[i] XOR K_r[i mod 32]]
func (s *Schedule) Encrypt(ctx context.Context, pixels []byte, shape Shape, rounds int) ([]byte, error) {
	if err := shape.Validate(); err != nil {
		return nil, err
	}
	if err := checkRounds(rounds); err != nil {
		return nil, err
	}
	if len(pixels) != shape.Len() {
		return nil, fmt.Errorf("%w: %d bytes for shape %s (want %d)", dynamo.ErrInvalidInput, len(pixels), shape, shape.Len())
	}

	out := make([]byte, len(pixels))
	copy(out, pixels)
	for r := 1; r <= rounds; r++ {
		sys := System(r)
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("encrypt round %d (%s): %w: %w", r, systems.Kinds[sys], dynamo.ErrCanceled, err)
		}
		key, sbox := &s.keys[sys], &s.sboxes[sys]
		dynamo.ParallelFor(len(out), parallelChunk, func(start, end int) {
			for i := start; i < end; i++ {
				out[i] = sbox[out[i]^key[i%keygen.KeySize]]
			}
		})
	}
	return out, nil
}

// Decrypt undoes Encrypt by applying rounds rounds..1:
//
//	out[i] = S_r^-1[in[i]] XOR K_r[i mod 32]
func (s *Schedule) Decrypt(ctx context.Context, data []byte, shape Shape, rounds int) ([]byte, error) {
	if err := shape.Validate(); err != nil {
		return nil, err
	}
	if err := checkRounds(rounds); err != nil {
		return nil, err
	}
	if len(data) != shape.Len() {
		return nil, fmt.Errorf("%w: %d bytes for shape %s (want %d)", dynamo.ErrShapeMismatch, len(data), shape, shape.Len())
	}

	out := make([]byte, len(data))
	copy(out, data)
	for r := rounds; r >= 1; r-- {
		sys := System(r)
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("decrypt round %d (%s): %w: %w", r, systems.Kinds[sys], dynamo.ErrCanceled, err)
		}
		key, inv := &s.keys[sys], &s.inverses[sys]
		dynamo.ParallelFor(len(out), parallelChunk, func(start, end int) {
			for i := start; i < end; i++ {
				out[i] = inv[out[i]] ^ key[i%keygen.KeySize]
			}
		})
	}
	return out, nil
}
