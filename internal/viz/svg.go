package viz

import (
	"fmt"
	"io"
	"strings"

	"github.com/san-kum/chaoscrypt/internal/dynamo"
)

// WriteTrajectorySVG writes the (xi, yi) projection of traj as a single SVG
// path with 10% padding on every side.
func WriteTrajectorySVG(w io.Writer, traj *dynamo.Trajectory, xi, yi, width, height int, stroke string) error {
	if traj.Len() < 2 {
		return fmt.Errorf("%w: need at least 2 samples to draw, got %d", dynamo.ErrInvalidInput, traj.Len())
	}
	if xi < 0 || xi >= dynamo.Dim || yi < 0 || yi >= dynamo.Dim {
		return fmt.Errorf("%w: axes (%d, %d) out of range", dynamo.ErrInvalidInput, xi, yi)
	}

	xs, ys := traj.Component(xi), traj.Component(yi)
	minX, maxX := span(xs)
	minY, maxY := span(ys)
	padX, padY := (maxX-minX)*0.1, (maxY-minY)*0.1
	minX, maxX = minX-padX, maxX+padX
	minY, maxY = minY-padY, maxY+padY

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<path fill="none" stroke="%s" stroke-width="0.8" d="M`,
		width, height, width, height, stroke)

	for i := range xs {
		x := (xs[i] - minX) / (maxX - minX) * float64(width)
		y := float64(height) - (ys[i]-minY)/(maxY-minY)*float64(height)
		if i == 0 {
			fmt.Fprintf(&sb, "%.1f,%.1f", x, y)
		} else {
			fmt.Fprintf(&sb, " L%.1f,%.1f", x, y)
		}
	}

	sb.WriteString("\"/>\n</svg>\n")
	_, err := io.WriteString(w, sb.String())
	return err
}
