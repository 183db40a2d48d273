package imagestats

import (
	"fmt"
	"math"

	"github.com/san-kum/chaoscrypt/internal/cipher"
	"github.com/san-kum/chaoscrypt/internal/dynamo"
)

const (
	ssimWindow = 7
	ssimK1     = 0.01
	ssimK2     = 0.03
	dataRange  = 255.0
)

func checkPair(a, b []byte, shape cipher.Shape) error {
	if err := checkShape(a, shape); err != nil {
		return err
	}
	if len(b) != len(a) {
		return fmt.Errorf("%w: images differ in size (%d vs %d bytes)", dynamo.ErrShapeMismatch, len(a), len(b))
	}
	return nil
}

// MSE is the mean squared difference over all bytes.
func MSE(a, b []byte, shape cipher.Shape) (float64, error) {
	if err := checkPair(a, b, shape); err != nil {
		return 0, err
	}
	sum := 0.0
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return sum / float64(len(a)), nil
}

// PSNR converts an MSE into decibels; identical images give +Inf.
func PSNR(mse float64) float64 {
	if mse == 0 {
		return math.Inf(1)
	}
	return 20 * math.Log10(dataRange/math.Sqrt(mse))
}

// SSIM is the structural similarity index averaged over channels. Each
// channel uses a 7x7 uniform window with sample covariance, averaged over
// every window that fits inside the image. Images smaller than the window
// in either dimension fall back to a single global window.
func SSIM(a, b []byte, shape cipher.Shape) (float64, error) {
	if err := checkPair(a, b, shape); err != nil {
		return 0, err
	}
	total := 0.0
	for c := 0; c < shape.Channels; c++ {
		total += channelSSIM(a, b, shape, c)
	}
	return total / float64(shape.Channels), nil
}

func channelSSIM(a, b []byte, shape cipher.Shape, c int) float64 {
	h, w, ch := shape.Height, shape.Width, shape.Channels
	win := ssimWindow
	if h < win || w < win {
		return windowSSIM(a, b, shape, c, 0, 0, h, w)
	}

	// Summed-area tables of x, y, x^2, y^2 and xy, (h+1) x (w+1).
	stride := w + 1
	sx := make([]float64, (h+1)*stride)
	sy := make([]float64, (h+1)*stride)
	sxx := make([]float64, (h+1)*stride)
	syy := make([]float64, (h+1)*stride)
	sxy := make([]float64, (h+1)*stride)
	for i := 0; i < h; i++ {
		for j := 0; j < w; j++ {
			x := float64(a[(i*w+j)*ch+c])
			y := float64(b[(i*w+j)*ch+c])
			k := (i+1)*stride + j + 1
			up, left, diag := k-stride, k-1, k-stride-1
			sx[k] = x + sx[up] + sx[left] - sx[diag]
			sy[k] = y + sy[up] + sy[left] - sy[diag]
			sxx[k] = x*x + sxx[up] + sxx[left] - sxx[diag]
			syy[k] = y*y + syy[up] + syy[left] - syy[diag]
			sxy[k] = x*y + sxy[up] + sxy[left] - sxy[diag]
		}
	}
	box := func(t []float64, i, j int) float64 {
		i2, j2 := i+win, j+win
		return t[i2*stride+j2] - t[i*stride+j2] - t[i2*stride+j] + t[i*stride+j]
	}

	np := float64(win * win)
	sum := 0.0
	count := 0
	for i := 0; i+win <= h; i++ {
		for j := 0; j+win <= w; j++ {
			sum += ssimFromMoments(
				box(sx, i, j)/np, box(sy, i, j)/np,
				box(sxx, i, j)/np, box(syy, i, j)/np, box(sxy, i, j)/np, np)
			count++
		}
	}
	return sum / float64(count)
}

func windowSSIM(a, b []byte, shape cipher.Shape, c, i0, j0, h, w int) float64 {
	var mx, my, mxx, myy, mxy float64
	for i := i0; i < i0+h; i++ {
		for j := j0; j < j0+w; j++ {
			p := (i*shape.Width+j)*shape.Channels + c
			x, y := float64(a[p]), float64(b[p])
			mx += x
			my += y
			mxx += x * x
			myy += y * y
			mxy += x * y
		}
	}
	np := float64(h * w)
	return ssimFromMoments(mx/np, my/np, mxx/np, myy/np, mxy/np, np)
}

func ssimFromMoments(ux, uy, uxx, uyy, uxy, np float64) float64 {
	covNorm := 1.0
	if np > 1 {
		covNorm = np / (np - 1)
	}
	vx := covNorm * (uxx - ux*ux)
	vy := covNorm * (uyy - uy*uy)
	vxy := covNorm * (uxy - ux*uy)

	c1 := (ssimK1 * dataRange) * (ssimK1 * dataRange)
	c2 := (ssimK2 * dataRange) * (ssimK2 * dataRange)

	num := (2*ux*uy + c1) * (2*vxy + c2)
	den := (ux*ux + uy*uy + c1) * (vx + vy + c2)
	return num / den
}
