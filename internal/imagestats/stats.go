package imagestats

import (
	"math"

	"github.com/san-kum/chaoscrypt/internal/cipher"
)

// Histogram is a 256-bin count of byte values.
type Histogram [256]int

func histograms(pixels []byte, channels int) []Histogram {
	hs := make([]Histogram, channels)
	for i, v := range pixels {
		hs[i%channels][v]++
	}
	return hs
}

// Histograms returns one histogram per channel.
func Histograms(pixels []byte, shape cipher.Shape) ([]Histogram, error) {
	if err := checkShape(pixels, shape); err != nil {
		return nil, err
	}
	return histograms(pixels, shape.Channels), nil
}

// Statistics summarizes all bytes of an image. Std and Variance are
// population values.
type Statistics struct {
	Mean     float64 `json:"mean"`
	Std      float64 `json:"std"`
	Variance float64 `json:"variance"`
	Min      int     `json:"min"`
	Max      int     `json:"max"`
	Median   float64 `json:"median"`
}

func ComputeStatistics(pixels []byte, shape cipher.Shape) (Statistics, error) {
	if err := checkShape(pixels, shape); err != nil {
		return Statistics{}, err
	}

	var counts [256]int
	sum := 0.0
	for _, v := range pixels {
		counts[v]++
		sum += float64(v)
	}
	n := len(pixels)
	st := Statistics{Mean: sum / float64(n), Min: -1}

	ss := 0.0
	for v, c := range counts {
		if c == 0 {
			continue
		}
		if st.Min < 0 {
			st.Min = v
		}
		st.Max = v
		d := float64(v) - st.Mean
		ss += float64(c) * d * d
	}
	st.Variance = ss / float64(n)
	st.Std = math.Sqrt(st.Variance)
	st.Median = median(counts[:], n)
	return st, nil
}

// median reads the median off a histogram, averaging the two middle
// values for even counts.
func median(counts []int, n int) float64 {
	lo, hi := (n-1)/2, n/2
	var vlo, vhi int
	seen := 0
	for v, c := range counts {
		if c == 0 {
			continue
		}
		if lo >= seen && lo < seen+c {
			vlo = v
		}
		if hi >= seen && hi < seen+c {
			vhi = v
			break
		}
		seen += c
	}
	return float64(vlo+vhi) / 2
}
