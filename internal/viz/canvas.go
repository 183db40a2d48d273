package viz

import (
	"math"
	"strings"

	"github.com/san-kum/chaoscrypt/internal/dynamo"
)

// Braille cells hold 2x4 dots:
//
//	1 4
//	2 5
//	3 6
//	7 8
//
// starting at U+2800.
var pixelMap = [4][2]rune{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

const brailleBlank = 0x2800

// Canvas is a character grid addressed in sub-pixels: (Width*2) x (Height*4).
type Canvas struct {
	Width, Height int
	Grid          [][]rune
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{
		Width:  w,
		Height: h,
		Grid:   make([][]rune, h),
	}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
	}
	c.Clear()
	return c
}

func (c *Canvas) Set(x, y int) {
	if x < 0 || y < 0 {
		return
	}
	col, row := x/2, y/4
	if col >= c.Width || row >= c.Height {
		return
	}
	c.Grid[row][col] |= pixelMap[y%4][x%2]
}

func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = brailleBlank
		}
	}
}

// DrawLine draws a line using Bresenham's algorithm.
func (c *Canvas) DrawLine(x0, y0, x1, y1 int) {
	dx := absInt(x1 - x0)
	dy := absInt(y1 - y0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy

	for {
		c.Set(x0, y0)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row))
		b.WriteByte('\n')
	}
	return b.String()
}

// PhasePortrait projects a trajectory onto components (xi, yi) and traces
// it on a w x h character canvas, y growing upwards.
func PhasePortrait(traj *dynamo.Trajectory, xi, yi, w, h int) string {
	c := NewCanvas(w, h)
	if traj.Len() == 0 {
		return c.String()
	}

	xs, ys := traj.Component(xi), traj.Component(yi)
	xmin, xmax := span(xs)
	ymin, ymax := span(ys)
	px := func(v float64) int { return int((v - xmin) / (xmax - xmin) * float64(w*2-1)) }
	py := func(v float64) int { return h*4 - 1 - int((v-ymin)/(ymax-ymin)*float64(h*4-1)) }

	prevX, prevY := px(xs[0]), py(ys[0])
	c.Set(prevX, prevY)
	for i := 1; i < len(xs); i++ {
		x, y := px(xs[i]), py(ys[i])
		c.DrawLine(prevX, prevY, x, y)
		prevX, prevY = x, y
	}
	return c.String()
}

// span returns the range of vs, widened when degenerate.
func span(vs []float64) (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, v := range vs {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if hi-lo < 1e-12 {
		lo, hi = lo-1, hi+1
	}
	return lo, hi
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
