package imagestats

import (
	"context"
	"fmt"

	"github.com/san-kum/chaoscrypt/internal/cipher"
	"github.com/san-kum/chaoscrypt/internal/dynamo"
	"github.com/san-kum/chaoscrypt/internal/systems"
)

// Options controls which parts of a Report are computed.
type Options struct {
	NoiseLevels     []NoiseLevel `json:"noise_levels" yaml:"noise_levels"`
	NoiseSeed       uint64       `json:"noise_seed" yaml:"noise_seed"`
	SkipNoise       bool         `json:"skip_noise" yaml:"skip_noise"`
	PrecisionDigits int          `json:"precision_digits" yaml:"precision_digits"`
}

func DefaultOptions() Options {
	return Options{
		NoiseLevels:     DefaultNoiseLevels(),
		NoiseSeed:       1,
		PrecisionDigits: DefaultPrecisionDigits,
	}
}

// ImageSummary groups the single-image statistics.
type ImageSummary struct {
	Entropy     EntropyResult       `json:"entropy"`
	Correlation []CorrelationResult `json:"correlation"`
	Histograms  []Histogram         `json:"histograms"`
	Statistics  Statistics          `json:"statistics"`
}

// Report aggregates the cipher quality metrics of one encryption.
type Report struct {
	Shape  cipher.Shape `json:"shape"`
	Rounds int          `json:"rounds"`

	Original  ImageSummary `json:"original"`
	Encrypted ImageSummary `json:"encrypted"`
	Decrypted ImageSummary `json:"decrypted"`

	MSEPlainEncrypted  float64 `json:"mse_plain_encrypted"`
	MSEPlainDecrypted  float64 `json:"mse_plain_decrypted"`
	PSNRPlainEncrypted float64 `json:"psnr_plain_encrypted"`
	SSIMPlainEncrypted float64 `json:"ssim_plain_encrypted"`
	SSIMPlainDecrypted float64 `json:"ssim_plain_decrypted"`

	NoiseResistance []NoiseResult `json:"noise_resistance,omitempty"`
	KeySpace        KeySpace      `json:"key_space"`
}

// Summarize computes entropy, correlation in all directions, histograms
// and statistics for one image.
func Summarize(pixels []byte, shape cipher.Shape) (ImageSummary, error) {
	var s ImageSummary
	var err error
	if s.Entropy, err = Entropy(pixels, shape); err != nil {
		return s, err
	}
	for _, d := range Directions {
		c, err := Correlation(pixels, shape, d)
		if err != nil {
			return s, err
		}
		s.Correlation = append(s.Correlation, c)
	}
	if s.Histograms, err = Histograms(pixels, shape); err != nil {
		return s, err
	}
	s.Statistics, err = ComputeStatistics(pixels, shape)
	return s, err
}

// Analyze builds a Report for an original image, its ciphertext and the
// decryption of that ciphertext. dec is only used for noise resistance and
// may be nil when opts.SkipNoise is set.
func Analyze(ctx context.Context, original, encrypted, decrypted []byte, shape cipher.Shape, rounds int,
	dec Decrypter, specs [systems.Count]systems.Spec, opts Options) (*Report, error) {
	if err := checkPair(original, encrypted, shape); err != nil {
		return nil, err
	}
	if err := checkPair(original, decrypted, shape); err != nil {
		return nil, err
	}
	if !opts.SkipNoise && dec == nil {
		return nil, fmt.Errorf("%w: noise resistance needs a decrypter", dynamo.ErrInvalidInput)
	}

	r := &Report{Shape: shape, Rounds: rounds}
	var err error
	for _, part := range []struct {
		dst *ImageSummary
		px  []byte
	}{
		{&r.Original, original},
		{&r.Encrypted, encrypted},
		{&r.Decrypted, decrypted},
	} {
		if *part.dst, err = Summarize(part.px, shape); err != nil {
			return nil, err
		}
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%w: %w", dynamo.ErrCanceled, err)
		}
	}

	if r.MSEPlainEncrypted, err = MSE(original, encrypted, shape); err != nil {
		return nil, err
	}
	if r.MSEPlainDecrypted, err = MSE(original, decrypted, shape); err != nil {
		return nil, err
	}
	r.PSNRPlainEncrypted = PSNR(r.MSEPlainEncrypted)
	if r.SSIMPlainEncrypted, err = SSIM(original, encrypted, shape); err != nil {
		return nil, err
	}
	if r.SSIMPlainDecrypted, err = SSIM(original, decrypted, shape); err != nil {
		return nil, err
	}

	if !opts.SkipNoise {
		levels := opts.NoiseLevels
		if len(levels) == 0 {
			levels = DefaultNoiseLevels()
		}
		r.NoiseResistance, err = NoiseResistance(ctx, original, encrypted, shape, rounds, dec, levels, opts.NoiseSeed)
		if err != nil {
			return nil, err
		}
	}

	r.KeySpace = ComputeKeySpace(specs, opts.PrecisionDigits)
	return r, nil
}
