package imagestats

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"math/rand/v2"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/chaoscrypt/internal/cipher"
	"github.com/san-kum/chaoscrypt/internal/dynamo"
)

// NoiseLevel is a salt and pepper probability pair applied per byte.
type NoiseLevel struct {
	Salt   float64 `json:"salt" yaml:"salt"`
	Pepper float64 `json:"pepper" yaml:"pepper"`
}

func (l NoiseLevel) String() string { return fmt.Sprintf("%.1f%%", l.Salt*100) }

func DefaultNoiseLevels() []NoiseLevel {
	return []NoiseLevel{
		{0.001, 0.001},
		{0.005, 0.005},
		{0.01, 0.01},
		{0.02, 0.02},
		{0.05, 0.05},
	}
}

// SaltPepper returns a copy of pixels where each byte is set to 255 with
// probability salt, then to 0 with probability pepper.
func SaltPepper(pixels []byte, level NoiseLevel, rng *rand.Rand) []byte {
	out := make([]byte, len(pixels))
	copy(out, pixels)
	for i := range out {
		if rng.Float64() < level.Salt {
			out[i] = 255
		}
	}
	for i := range out {
		if rng.Float64() < level.Pepper {
			out[i] = 0
		}
	}
	return out
}

// Decrypter inverts the cipher for a given shape and round count.
type Decrypter interface {
	Decrypt(ctx context.Context, data []byte, shape cipher.Shape, rounds int) ([]byte, error)
}

// NoiseResult measures how well the plaintext survives decryption of a
// noisy ciphertext.
type NoiseResult struct {
	Level  string     `json:"noise_level"`
	Noise  NoiseLevel `json:"noise"`
	MSE    float64    `json:"mse"`
	SSIM   float64    `json:"ssim"`
	PSNR   float64    `json:"psnr"`
	Pixels []byte     `json:"-"`
}

// MarshalJSON encodes an infinite PSNR (noise-free decryption) as null.
func (n NoiseResult) MarshalJSON() ([]byte, error) {
	type plain NoiseResult
	out := struct {
		plain
		PSNR *float64 `json:"psnr"`
	}{plain: plain(n)}
	if !math.IsInf(n.PSNR, 0) {
		out.PSNR = &n.PSNR
	}
	return json.Marshal(out)
}

// NoiseResistance adds salt and pepper noise to the ciphertext at each
// level, decrypts it and compares the result with the original. Levels run
// concurrently; the noise for level i comes from a PCG source seeded with
// (seed, i), so results are reproducible.
func NoiseResistance(ctx context.Context, original, encrypted []byte, shape cipher.Shape, rounds int,
	dec Decrypter, levels []NoiseLevel, seed uint64) ([]NoiseResult, error) {
	if err := checkPair(original, encrypted, shape); err != nil {
		return nil, err
	}
	for _, l := range levels {
		if l.Salt < 0 || l.Salt > 1 || l.Pepper < 0 || l.Pepper > 1 {
			return nil, fmt.Errorf("%w: noise probabilities must be in [0, 1], got %+v", dynamo.ErrInvalidInput, l)
		}
	}

	results := make([]NoiseResult, len(levels))
	g, gctx := errgroup.WithContext(ctx)
	for i, level := range levels {
		g.Go(func() error {
			rng := rand.New(rand.NewPCG(seed, uint64(i)))
			noisy := SaltPepper(encrypted, level, rng)

			plain, err := dec.Decrypt(gctx, noisy, shape, rounds)
			if err != nil {
				return fmt.Errorf("noise level %s: %w", level, err)
			}
			mse, err := MSE(original, plain, shape)
			if err != nil {
				return err
			}
			ssim, err := SSIM(original, plain, shape)
			if err != nil {
				return err
			}
			results[i] = NoiseResult{
				Level:  level.String(),
				Noise:  level,
				MSE:    mse,
				SSIM:   ssim,
				PSNR:   PSNR(mse),
				Pixels: plain,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
