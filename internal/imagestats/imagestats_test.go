package imagestats

import (
	"context"
	"encoding/json"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/chaoscrypt/internal/cipher"
	"github.com/san-kum/chaoscrypt/internal/dynamo"
	"github.com/san-kum/chaoscrypt/internal/systems"
)

var rgb16 = cipher.Shape{Height: 16, Width: 16, Channels: 3}

func gradient() []byte {
	px := make([]byte, 0, rgb16.Len())
	for i := 0; i < 16; i++ {
		for j := 0; j < 16; j++ {
			px = append(px, byte(i*17), byte(j*17), 128)
		}
	}
	return px
}

func TestEntropy_Gradient(t *testing.T) {
	e, err := Entropy(gradient(), rgb16)
	require.NoError(t, err)

	assert.InDeltaSlice(t, []float64{4, 4, 0}, e.Channels, 1e-12)
	assert.InDelta(t, 3.5850, e.Overall, 1e-4)
}

func TestEntropy_Uniform(t *testing.T) {
	px := make([]byte, 256*4)
	for i := range px {
		px[i] = byte(i)
	}
	e, err := Entropy(px, cipher.Shape{Height: 32, Width: 32, Channels: 1})
	require.NoError(t, err)
	assert.InDelta(t, 8.0, e.Overall, 1e-12)
	assert.LessOrEqual(t, e.Overall, 8.0)
}

func TestEntropy_ShapeErrors(t *testing.T) {
	_, err := Entropy(make([]byte, 10), rgb16)
	assert.ErrorIs(t, err, dynamo.ErrInvalidInput)

	_, err = Entropy(nil, cipher.Shape{})
	assert.ErrorIs(t, err, dynamo.ErrInvalidInput)
}

func TestCorrelation_Gradient(t *testing.T) {
	h, err := Correlation(gradient(), rgb16, Horizontal)
	require.NoError(t, err)

	assert.Equal(t, "horizontal", h.Direction)
	assert.Equal(t, 16*15, h.Pairs)
	assert.Greater(t, h.Gray, 0.9)
	// Red is constant along rows, blue is constant everywhere.
	assert.InDelta(t, 1.0, h.Channels[0], 1e-12)
	assert.InDelta(t, 1.0, h.Channels[1], 1e-12)
	assert.Equal(t, 0.0, h.Channels[2])

	v, err := Correlation(gradient(), rgb16, Vertical)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, v.Channels[0], 1e-12)

	d, err := Correlation(gradient(), rgb16, Diagonal)
	require.NoError(t, err)
	assert.Equal(t, 15*15, d.Pairs)
	assert.Greater(t, d.Gray, 0.9)
}

func TestCorrelation_AntiCorrelated(t *testing.T) {
	shape := cipher.Shape{Height: 1, Width: 6, Channels: 1}
	c, err := Correlation([]byte{0, 200, 0, 200, 0, 200}, shape, Horizontal)
	require.NoError(t, err)
	assert.InDelta(t, -1.0, c.Gray, 1e-12)

	c, err = Correlation([]byte{0, 200, 0, 200, 0, 200}, shape, Vertical)
	require.NoError(t, err)
	assert.Equal(t, 0, c.Pairs)
	assert.Equal(t, 0.0, c.Gray)
}

func TestCorrelation_UnknownDirection(t *testing.T) {
	_, err := Correlation(gradient(), rgb16, Direction(9))
	assert.ErrorIs(t, err, dynamo.ErrInvalidInput)
}

func TestGray(t *testing.T) {
	g := Gray([]byte{10, 20, 31, 255, 255, 254}, cipher.Shape{Height: 1, Width: 2, Channels: 3})
	assert.Equal(t, []byte{20, 254}, g)
}

func TestHistograms(t *testing.T) {
	hs, err := Histograms(gradient(), rgb16)
	require.NoError(t, err)
	require.Len(t, hs, 3)
	assert.Equal(t, 16, hs[0][0])
	assert.Equal(t, 16, hs[1][255])
	assert.Equal(t, 256, hs[2][128])
}

func TestStatistics(t *testing.T) {
	st, err := ComputeStatistics([]byte{4, 1, 3, 2}, cipher.Shape{Height: 2, Width: 2, Channels: 1})
	require.NoError(t, err)

	assert.Equal(t, 2.5, st.Mean)
	assert.Equal(t, 1.25, st.Variance)
	assert.InDelta(t, math.Sqrt(1.25), st.Std, 1e-12)
	assert.Equal(t, 1, st.Min)
	assert.Equal(t, 4, st.Max)
	assert.Equal(t, 2.5, st.Median)

	st, err = ComputeStatistics([]byte{9, 9, 1}, cipher.Shape{Height: 1, Width: 3, Channels: 1})
	require.NoError(t, err)
	assert.Equal(t, 9.0, st.Median)
}

func TestMSEAndPSNR(t *testing.T) {
	shape := cipher.Shape{Height: 1, Width: 2, Channels: 1}
	mse, err := MSE([]byte{0, 0}, []byte{3, 4}, shape)
	require.NoError(t, err)
	assert.Equal(t, 12.5, mse)

	assert.True(t, math.IsInf(PSNR(0), 1))
	assert.InDelta(t, 20*math.Log10(255/math.Sqrt(12.5)), PSNR(mse), 1e-12)

	_, err = MSE([]byte{0, 0}, []byte{1}, shape)
	assert.ErrorIs(t, err, dynamo.ErrShapeMismatch)
}

func TestSSIM(t *testing.T) {
	px := gradient()
	s, err := SSIM(px, px, rgb16)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, s, 1e-12)

	inverted := make([]byte, len(px))
	for i, v := range px {
		inverted[i] = 255 - v
	}
	s, err = SSIM(px, inverted, rgb16)
	require.NoError(t, err)
	assert.Less(t, s, 0.5)

	small := cipher.Shape{Height: 3, Width: 3, Channels: 1}
	a := []byte{10, 20, 30, 40, 50, 60, 70, 80, 90}
	s, err = SSIM(a, a, small)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, s, 1e-12)
}

func TestSSIM_MatchesDirectWindows(t *testing.T) {
	shape := cipher.Shape{Height: 9, Width: 10, Channels: 1}
	rng := rand.New(rand.NewPCG(3, 4))
	a := make([]byte, shape.Len())
	b := make([]byte, shape.Len())
	for i := range a {
		a[i] = byte(rng.IntN(256))
		b[i] = byte(int(a[i]) / 2)
	}

	want := 0.0
	n := 0
	for i := 0; i+ssimWindow <= shape.Height; i++ {
		for j := 0; j+ssimWindow <= shape.Width; j++ {
			want += windowSSIM(a, b, shape, 0, i, j, ssimWindow, ssimWindow)
			n++
		}
	}
	want /= float64(n)

	got, err := SSIM(a, b, shape)
	require.NoError(t, err)
	assert.InDelta(t, want, got, 1e-9)
}

func TestSaltPepper(t *testing.T) {
	px := gradient()

	salted := SaltPepper(px, NoiseLevel{Salt: 1}, rand.New(rand.NewPCG(1, 2)))
	for _, v := range salted {
		require.Equal(t, byte(255), v)
	}

	peppered := SaltPepper(px, NoiseLevel{Salt: 1, Pepper: 1}, rand.New(rand.NewPCG(1, 2)))
	for _, v := range peppered {
		require.Equal(t, byte(0), v)
	}

	clean := SaltPepper(px, NoiseLevel{}, rand.New(rand.NewPCG(1, 2)))
	assert.Equal(t, px, clean)

	a := SaltPepper(px, NoiseLevel{0.1, 0.1}, rand.New(rand.NewPCG(7, 0)))
	b := SaltPepper(px, NoiseLevel{0.1, 0.1}, rand.New(rand.NewPCG(7, 0)))
	assert.Equal(t, a, b)
	assert.NotEqual(t, px, a)
}

type identityDecrypter struct{}

func (identityDecrypter) Decrypt(_ context.Context, data []byte, _ cipher.Shape, _ int) ([]byte, error) {
	return append([]byte(nil), data...), nil
}

func TestNoiseResistance(t *testing.T) {
	px := gradient()
	levels := []NoiseLevel{{0, 0}, {0.05, 0.05}}

	res, err := NoiseResistance(context.Background(), px, px, rgb16, 1, identityDecrypter{}, levels, 42)
	require.NoError(t, err)
	require.Len(t, res, 2)

	assert.Equal(t, 0.0, res[0].MSE)
	assert.True(t, math.IsInf(res[0].PSNR, 1))
	assert.InDelta(t, 1.0, res[0].SSIM, 1e-12)
	assert.Equal(t, "5.0%", res[1].Level)
	assert.Greater(t, res[1].MSE, 0.0)

	raw, err := json.Marshal(res)
	require.NoError(t, err)
	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Nil(t, decoded[0]["psnr"])
	assert.InDelta(t, res[1].PSNR, decoded[1]["psnr"], 1e-9)
	assert.NotContains(t, decoded[0], "Pixels")

	again, err := NoiseResistance(context.Background(), px, px, rgb16, 1, identityDecrypter{}, levels, 42)
	require.NoError(t, err)
	assert.Equal(t, res[1].MSE, again[1].MSE)

	_, err = NoiseResistance(context.Background(), px, px, rgb16, 1, identityDecrypter{}, []NoiseLevel{{Salt: 2}}, 1)
	assert.ErrorIs(t, err, dynamo.ErrInvalidInput)
}

func TestKeySpace(t *testing.T) {
	ks := ComputeKeySpace(systems.Defaults(), 0)

	assert.Equal(t, 25, ks.TotalElements)
	assert.Equal(t, 12, ks.InitialConditions)
	assert.Equal(t, 13, ks.SystemParameters)
	assert.Equal(t, 15, ks.PrecisionDigits)
	assert.Equal(t, "10^375", ks.Decimal)
	assert.InDelta(t, 375*math.Log2(10), ks.Bits, 1e-9)
	assert.InDelta(t, ks.Bits/256, ks.RatioAES256, 1e-12)
	require.Len(t, ks.Systems, 3)
	assert.Equal(t, 5, ks.Systems[1].Parameters)
}

func TestAnalyze(t *testing.T) {
	px := gradient()
	enc := make([]byte, len(px))
	for i, v := range px {
		enc[i] = v ^ byte(i*131)
	}

	r, err := Analyze(context.Background(), px, enc, px, rgb16, 3, identityDecrypter{}, systems.Defaults(), DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, 0.0, r.MSEPlainDecrypted)
	assert.Greater(t, r.MSEPlainEncrypted, 0.0)
	assert.InDelta(t, 1.0, r.SSIMPlainDecrypted, 1e-12)
	assert.Len(t, r.Original.Correlation, 3)
	assert.Len(t, r.NoiseResistance, len(DefaultNoiseLevels()))
	assert.Equal(t, r.Original.Entropy, r.Decrypted.Entropy)
	assert.Equal(t, 25, r.KeySpace.TotalElements)

	opts := DefaultOptions()
	opts.SkipNoise = true
	r, err = Analyze(context.Background(), px, enc, px, rgb16, 3, nil, systems.Defaults(), opts)
	require.NoError(t, err)
	assert.Empty(t, r.NoiseResistance)

	_, err = Analyze(context.Background(), px, enc, px, rgb16, 3, nil, systems.Defaults(), DefaultOptions())
	assert.ErrorIs(t, err, dynamo.ErrInvalidInput)

	_, err = Analyze(context.Background(), px, enc[:5], px, rgb16, 3, nil, systems.Defaults(), opts)
	assert.ErrorIs(t, err, dynamo.ErrShapeMismatch)
}
