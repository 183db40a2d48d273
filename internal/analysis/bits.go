package analysis

import (
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// BitQuality summarizes how close a bitstream is to fair coin flips.
type BitQuality struct {
	Length  int     `json:"length"`
	Ones    int     `json:"ones"`
	Balance float64 `json:"balance"`
	// Runs is the number of maximal blocks of equal bits.
	Runs    int     `json:"runs"`
	MaxRun  int     `json:"max_run"`
	MeanRun float64 `json:"mean_run"`
	// Autocorrelation[k-1] is the lag-k autocorrelation of the +/-1 sequence.
	Autocorrelation []float64 `json:"autocorrelation"`
	BitEntropy      float64   `json:"bit_entropy"`
	// ByteEntropy is the Shannon entropy of the stream packed MSB-first
	// into whole bytes; trailing bits are dropped.
	ByteEntropy float64 `json:"byte_entropy"`
	// SpectralPeaks is the fraction of the first half of the DFT of the
	// +/-1 sequence below the 95% peak threshold; about 0.95 when random.
	SpectralPeaks  float64 `json:"spectral_peaks"`
	SpectralPValue float64 `json:"spectral_p_value"`
}

// AnalyzeBits computes BitQuality for a 0/1 sequence with autocorrelation
// lags 1..maxLag.
func AnalyzeBits(bits []uint8, maxLag int) BitQuality {
	q := BitQuality{Length: len(bits)}
	if len(bits) == 0 {
		return q
	}

	run := 0
	for i, b := range bits {
		if b != 0 {
			q.Ones++
		}
		if i > 0 && bits[i-1] == b {
			run++
		} else {
			if run > 0 {
				q.Runs++
			}
			run = 1
		}
		q.MaxRun = max(q.MaxRun, run)
	}
	q.Runs++
	q.MeanRun = float64(len(bits)) / float64(q.Runs)

	p := float64(q.Ones) / float64(len(bits))
	q.Balance = p
	q.BitEntropy = binaryEntropy(p)

	q.Autocorrelation = make([]float64, 0, maxLag)
	for k := 1; k <= maxLag && k < len(bits); k++ {
		sum := 0.0
		for i := 0; i+k < len(bits); i++ {
			sum += sign(bits[i]) * sign(bits[i+k])
		}
		q.Autocorrelation = append(q.Autocorrelation, sum/float64(len(bits)-k))
	}

	if n := len(bits) / 8; n > 0 {
		var counts [256]int
		for j := 0; j < n; j++ {
			var v byte
			for _, b := range bits[8*j : 8*j+8] {
				v = v<<1 | b&1
			}
			counts[v]++
		}
		q.ByteEntropy = shannon(counts[:], n)
	}

	if len(bits) >= 2 {
		q.SpectralPeaks, q.SpectralPValue = spectralTest(bits)
	}
	return q
}

// spectralTest is the discrete Fourier transform test: periodic structure
// shows up as too many (or too few) spectral peaks above
// sqrt(ln(20) n).
func spectralTest(bits []uint8) (float64, float64) {
	n := len(bits)
	x := make([]float64, n)
	for i, b := range bits {
		x[i] = sign(b)
	}
	spec := fft.FFTReal(x)

	half := n / 2
	threshold := math.Sqrt(math.Log(1/0.05) * float64(n))
	below := 0
	for _, c := range spec[:half] {
		if cmplx.Abs(c) < threshold {
			below++
		}
	}

	expected := 0.95 * float64(half)
	d := (float64(below) - expected) / math.Sqrt(float64(n)*0.95*0.05/4)
	return float64(below) / float64(half), math.Erfc(math.Abs(d) / math.Sqrt2)
}

func sign(b uint8) float64 {
	if b != 0 {
		return 1
	}
	return -1
}

func binaryEntropy(p float64) float64 {
	if p <= 0 || p >= 1 {
		return 0
	}
	return -p*math.Log2(p) - (1-p)*math.Log2(1-p)
}

func shannon(counts []int, total int) float64 {
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
