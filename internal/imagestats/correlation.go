package imagestats

import (
	"fmt"
	"math"

	"github.com/san-kum/chaoscrypt/internal/cipher"
	"github.com/san-kum/chaoscrypt/internal/dynamo"
)

// Direction selects the neighbour used for adjacent-pixel correlation.
type Direction int

const (
	Horizontal Direction = iota
	Vertical
	Diagonal
)

var Directions = []Direction{Horizontal, Vertical, Diagonal}

func (d Direction) String() string {
	switch d {
	case Horizontal:
		return "horizontal"
	case Vertical:
		return "vertical"
	case Diagonal:
		return "diagonal"
	}
	return fmt.Sprintf("direction(%d)", int(d))
}

func (d Direction) offset() (int, int, error) {
	switch d {
	case Horizontal:
		return 0, 1, nil
	case Vertical:
		return 1, 0, nil
	case Diagonal:
		return 1, 1, nil
	}
	return 0, 0, fmt.Errorf("%w: unknown direction %d", dynamo.ErrInvalidInput, int(d))
}

// CorrelationResult holds Pearson coefficients over all valid neighbour
// pairs: one per channel and one for the gray plane.
type CorrelationResult struct {
	Direction string    `json:"direction"`
	Gray      float64   `json:"gray"`
	Channels  []float64 `json:"channels"`
	Pairs     int       `json:"pairs"`
}

// Correlation computes adjacent-pixel correlation in direction d. The gray
// plane is the integer mean of the channels. A constant plane has
// correlation 0.
func Correlation(pixels []byte, shape cipher.Shape, d Direction) (CorrelationResult, error) {
	if err := checkShape(pixels, shape); err != nil {
		return CorrelationResult{}, err
	}
	di, dj, err := d.offset()
	if err != nil {
		return CorrelationResult{}, err
	}

	res := CorrelationResult{Direction: d.String(), Channels: make([]float64, shape.Channels)}
	gray := Gray(pixels, shape)
	res.Gray, res.Pairs = planeCorrelation(func(i, j int) float64 {
		return float64(gray[i*shape.Width+j])
	}, shape.Height, shape.Width, di, dj)

	for c := 0; c < shape.Channels; c++ {
		res.Channels[c], _ = planeCorrelation(func(i, j int) float64 {
			return float64(pixels[(i*shape.Width+j)*shape.Channels+c])
		}, shape.Height, shape.Width, di, dj)
	}
	return res, nil
}

// Gray returns the per-pixel integer mean of the channels.
func Gray(pixels []byte, shape cipher.Shape) []byte {
	n := shape.Height * shape.Width
	gray := make([]byte, n)
	for p := 0; p < n; p++ {
		sum := 0
		for c := 0; c < shape.Channels; c++ {
			sum += int(pixels[p*shape.Channels+c])
		}
		gray[p] = byte(sum / shape.Channels)
	}
	return gray
}

func planeCorrelation(at func(i, j int) float64, h, w, di, dj int) (float64, int) {
	n := (h - di) * (w - dj)
	if n <= 0 {
		return 0, 0
	}

	var sa, sb float64
	for i := 0; i < h-di; i++ {
		for j := 0; j < w-dj; j++ {
			sa += at(i, j)
			sb += at(i+di, j+dj)
		}
	}
	ma, mb := sa/float64(n), sb/float64(n)

	var cov, va, vb float64
	for i := 0; i < h-di; i++ {
		for j := 0; j < w-dj; j++ {
			a := at(i, j) - ma
			b := at(i+di, j+dj) - mb
			cov += a * b
			va += a * a
			vb += b * b
		}
	}
	if va == 0 || vb == 0 {
		return 0, n
	}
	return cov / math.Sqrt(va*vb), n
}
