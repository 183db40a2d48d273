package analysis

import (
	"crypto/sha256"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnalyzeBits_Alternating(t *testing.T) {
	bits := make([]uint8, 64)
	for i := range bits {
		bits[i] = uint8(i % 2)
	}
	q := AnalyzeBits(bits, 2)

	assert.Equal(t, 64, q.Length)
	assert.Equal(t, 32, q.Ones)
	assert.Equal(t, 0.5, q.Balance)
	assert.Equal(t, 64, q.Runs)
	assert.Equal(t, 1, q.MaxRun)
	assert.Equal(t, 1.0, q.MeanRun)
	assert.Equal(t, 1.0, q.BitEntropy)
	assert.InDeltaSlice(t, []float64{-1, 1}, q.Autocorrelation, 1e-12)
	// 01010101 repeated gives a single byte value.
	assert.Equal(t, 0.0, q.ByteEntropy)
}

func TestAnalyzeBits_Runs(t *testing.T) {
	q := AnalyzeBits([]uint8{1, 1, 1, 0, 0, 1, 0, 0, 0, 0}, 0)

	assert.Equal(t, 4, q.Runs)
	assert.Equal(t, 4, q.MaxRun)
	assert.Equal(t, 2.5, q.MeanRun)
	assert.Equal(t, 4, q.Ones)
	assert.Empty(t, q.Autocorrelation)
	// Only one whole byte is available.
	assert.Equal(t, 0.0, q.ByteEntropy)
}

func TestAnalyzeBits_Constant(t *testing.T) {
	q := AnalyzeBits([]uint8{0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0}, 1)

	assert.Equal(t, 0.0, q.BitEntropy)
	assert.Equal(t, 1, q.Runs)
	assert.Equal(t, 16, q.MaxRun)
	assert.Equal(t, []float64{1}, q.Autocorrelation)
}

func TestAnalyzeBits_ByteEntropy(t *testing.T) {
	var bits []uint8
	for v := 0; v < 256; v++ {
		for q := 7; q >= 0; q-- {
			bits = append(bits, uint8(v>>q)&1)
		}
	}
	q := AnalyzeBits(bits, 1)
	assert.InDelta(t, 8.0, q.ByteEntropy, 1e-12)
	assert.Equal(t, 0.5, q.Balance)
}

func TestAnalyzeBits_Empty(t *testing.T) {
	q := AnalyzeBits(nil, 4)
	assert.Equal(t, BitQuality{}, q)
}

func hashBits(n int) []uint8 {
	bits := make([]uint8, 0, n)
	for i := 0; len(bits) < n; i++ {
		sum := sha256.Sum256([]byte(fmt.Sprintf("block-%d", i)))
		for _, b := range sum {
			for q := 7; q >= 0; q-- {
				bits = append(bits, b>>q&1)
			}
		}
	}
	return bits[:n]
}

func TestAnalyzeBits_SpectralRandom(t *testing.T) {
	q := AnalyzeBits(hashBits(4096), 0)

	assert.InDelta(t, 1942.0/2048.0, q.SpectralPeaks, 1e-12)
	assert.InDelta(t, 0.6057, q.SpectralPValue, 1e-3)
}

func TestAnalyzeBits_SpectralPeriodic(t *testing.T) {
	constant := make([]uint8, 1024)
	for i := range constant {
		constant[i] = 1
	}
	alternating := make([]uint8, 1024)
	for i := range alternating {
		alternating[i] = uint8(i % 2)
	}

	for _, bits := range [][]uint8{constant, alternating} {
		q := AnalyzeBits(bits, 0)
		assert.Less(t, q.SpectralPValue, 1e-6)
		assert.Greater(t, q.SpectralPeaks, 0.99)
	}
}
