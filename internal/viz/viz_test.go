package viz

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/chaoscrypt/internal/analysis"
	"github.com/san-kum/chaoscrypt/internal/dynamo"
	"github.com/san-kum/chaoscrypt/internal/imagestats"
	"github.com/san-kum/chaoscrypt/internal/systems"
)

func TestCanvas_SetAndClear(t *testing.T) {
	c := NewCanvas(2, 1)
	c.Set(0, 0)
	c.Set(3, 3)
	c.Set(-1, 0)
	c.Set(10, 10)

	assert.Equal(t, rune(brailleBlank|0x1), c.Grid[0][0])
	assert.Equal(t, rune(brailleBlank|0x80), c.Grid[0][1])

	c.Clear()
	assert.Equal(t, "⠀⠀\n", c.String())
}

func TestCanvas_DrawLine(t *testing.T) {
	c := NewCanvas(4, 1)
	c.DrawLine(0, 0, 7, 0)
	for _, r := range c.Grid[0] {
		assert.Equal(t, rune(brailleBlank|0x1|0x8), r)
	}
}

func TestPhasePortrait(t *testing.T) {
	traj := dynamo.NewTrajectory("chen", 0.01, 1, []dynamo.State{
		{0, 0, 0, 0},
		{1, 1, 0, 0},
		{2, 0, 0, 0},
	})
	out := PhasePortrait(traj, 0, 1, 10, 5)
	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	require.Len(t, lines, 5)
	for _, l := range lines {
		assert.Equal(t, 10, utf8.RuneCountInString(l))
	}
	assert.NotEqual(t, strings.Repeat("⠀", 10), lines[0], "top row holds the peak")
	assert.NotEqual(t, strings.Repeat("⠀", 10), lines[4], "bottom row holds the ends")
}

func TestSparkline(t *testing.T) {
	assert.Equal(t, "▁▄█", Sparkline([]float64{0, 0.5, 1}, 3))
	assert.Equal(t, "───", Sparkline(nil, 3))
	assert.Equal(t, 4, utf8.RuneCountInString(Sparkline(make([]float64, 100), 4)))
}

func TestGetTheme(t *testing.T) {
	assert.Equal(t, "ocean", GetTheme("ocean").Name)
	assert.Equal(t, "cyberpunk", GetTheme("nope").Name)
	assert.Equal(t, []string{"cyberpunk", "minimal", "ocean"}, ThemeNames())
}

func TestRenderSpectra(t *testing.T) {
	s := NewStyles(ThemeMinimal)
	out := s.RenderSpectra([]analysis.Spectrum{{
		System:       "rossler",
		Sorted:       [dynamo.Dim]float64{0.1365, 0.0126, 0, -21},
		Positive:     2,
		Hyperchaotic: true,
	}})
	assert.Contains(t, out, "rossler")
	assert.Contains(t, out, "+0.1365")
	assert.Contains(t, out, "hyperchaotic")
}

func TestRenderSpecs(t *testing.T) {
	out := NewStyles(ThemeMinimal).RenderSpecs(systems.Defaults())
	assert.Contains(t, out, "sigma=10")
	assert.Contains(t, out, "r=28")
	assert.Contains(t, out, "-10 -6 0 10")
}

func TestRenderReport(t *testing.T) {
	r := &imagestats.Report{
		Rounds: 3,
		Original: imagestats.ImageSummary{
			Entropy:     imagestats.EntropyResult{Channels: []float64{4}, Overall: 4},
			Correlation: []imagestats.CorrelationResult{{Direction: "horizontal", Gray: 0.99}},
		},
		Encrypted: imagestats.ImageSummary{
			Entropy:     imagestats.EntropyResult{Channels: []float64{7.2}, Overall: 7.2},
			Correlation: []imagestats.CorrelationResult{{Direction: "horizontal", Gray: 0.01}},
		},
		NoiseResistance: []imagestats.NoiseResult{{Level: "1.0%", MSE: 12, PSNR: 37, SSIM: 0.9}},
	}
	out := NewStyles(ThemeMinimal).RenderReport(r)
	for _, want := range []string{"entropy", "7.2000", "horizontal", "+0.9900", "exact", "1.0%"} {
		assert.Contains(t, out, want)
	}
}

func TestPlotHistogram(t *testing.T) {
	var h imagestats.Histogram
	h[10], h[200] = 5, 9
	out := PlotHistogram(h, "channel 0", 5)
	assert.Contains(t, out, "channel 0")
	assert.Empty(t, PlotSeries(nil, "x", 5, 10))
}

func TestWriteTrajectorySVG(t *testing.T) {
	traj := dynamo.NewTrajectory("lorenz", 0.01, 1, []dynamo.State{
		{0, 0, 0, 0},
		{1, 0, 2, 0},
	})

	var b strings.Builder
	require.NoError(t, WriteTrajectorySVG(&b, traj, 0, 2, 120, 60, "#00ffff"))
	out := b.String()
	assert.True(t, strings.HasPrefix(out, "<?xml"))
	assert.Contains(t, out, `stroke="#00ffff"`)
	assert.Contains(t, out, "M10.0,55.0 L110.0,5.0")

	short := dynamo.NewTrajectory("lorenz", 0.01, 1, []dynamo.State{{0, 0, 0, 0}})
	assert.ErrorIs(t, WriteTrajectorySVG(&b, short, 0, 1, 10, 10, "#fff"), dynamo.ErrInvalidInput)
	assert.ErrorIs(t, WriteTrajectorySVG(&b, traj, 0, 4, 10, 10, "#fff"), dynamo.ErrInvalidInput)
}
