package keygen

import (
	"fmt"

	"github.com/san-kum/chaoscrypt/internal/dynamo"
)

// Bitstream is an ordered sequence of 0/1 values, one per trajectory sample.
type Bitstream []uint8

func (b Bitstream) Ones() int {
	n := 0
	for _, v := range b {
		n += int(v & 1)
	}
	return n
}

// ToBitstream thresholds one coordinate of traj at its trajectory mean:
// bit i is 1 iff sample i is strictly above the mean.
func ToBitstream(traj *dynamo.Trajectory, coord int) (Bitstream, error) {
	if traj == nil || traj.Len() == 0 {
		return nil, fmt.Errorf("%w: empty trajectory", dynamo.ErrInvalidInput)
	}
	if coord < 0 || coord >= dynamo.Dim {
		return nil, fmt.Errorf("%w: coordinate %d out of range", dynamo.ErrInvalidInput, coord)
	}

	mean := traj.Mean(coord)
	bits := make(Bitstream, traj.Len())
	traj.Each(func(i int, s dynamo.State) {
		if s[coord] > mean {
			bits[i] = 1
		}
	})
	return bits, nil
}

// ToBitstreamXOR thresholds each listed coordinate and XORs the results.
// A single coordinate is equivalent to ToBitstream.
func ToBitstreamXOR(traj *dynamo.Trajectory, coords ...int) (Bitstream, error) {
	if len(coords) == 0 {
		return nil, fmt.Errorf("%w: no coordinates", dynamo.ErrInvalidInput)
	}
	out, err := ToBitstream(traj, coords[0])
	if err != nil {
		return nil, err
	}
	for _, c := range coords[1:] {
		b, err := ToBitstream(traj, c)
		if err != nil {
			return nil, err
		}
		for i := range out {
			out[i] ^= b[i]
		}
	}
	return out, nil
}

// DecisionSource yields the bits consumed by the S-box shuffle.
type DecisionSource interface {
	NextBit() uint8
}

// Cycler reads a bitstream sequentially, wrapping to the start when exhausted.
type Cycler struct {
	bits Bitstream
	pos  int
}

func NewCycler(bits Bitstream) (*Cycler, error) {
	if len(bits) == 0 {
		return nil, fmt.Errorf("%w: empty bitstream", dynamo.ErrInvalidInput)
	}
	return &Cycler{bits: bits}, nil
}

func (c *Cycler) NextBit() uint8 {
	b := c.bits[c.pos] & 1
	c.pos++
	if c.pos == len(c.bits) {
		c.pos = 0
	}
	return b
}

// Position is the index of the next bit to be read.
func (c *Cycler) Position() int { return c.pos }
