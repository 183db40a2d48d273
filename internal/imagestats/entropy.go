package imagestats

import (
	"fmt"
	"math"

	"github.com/san-kum/chaoscrypt/internal/cipher"
	"github.com/san-kum/chaoscrypt/internal/dynamo"
)

func checkShape(pixels []byte, shape cipher.Shape) error {
	if err := shape.Validate(); err != nil {
		return err
	}
	if len(pixels) != shape.Len() {
		return fmt.Errorf("%w: %d bytes for shape %s (want %d)", dynamo.ErrInvalidInput, len(pixels), shape, shape.Len())
	}
	return nil
}

// EntropyResult is the Shannon entropy in bits of each channel and of all
// bytes together. Every value lies in [0, 8].
type EntropyResult struct {
	Channels []float64 `json:"channels"`
	Overall  float64   `json:"overall"`
}

func Entropy(pixels []byte, shape cipher.Shape) (EntropyResult, error) {
	if err := checkShape(pixels, shape); err != nil {
		return EntropyResult{}, err
	}

	hists := histograms(pixels, shape.Channels)
	var all [256]int
	res := EntropyResult{Channels: make([]float64, shape.Channels)}
	for c, h := range hists {
		res.Channels[c] = shannon(h[:])
		for v, n := range h {
			all[v] += n
		}
	}
	res.Overall = shannon(all[:])
	return res, nil
}

func shannon(counts []int) float64 {
	total := 0
	for _, c := range counts {
		total += c
	}
	if total == 0 {
		return 0
	}
	h := 0.0
	for _, c := range counts {
		if c == 0 {
			continue
		}
		p := float64(c) / float64(total)
		h -= p * math.Log2(p)
	}
	return h
}
