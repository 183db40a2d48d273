package cipher

import (
	"fmt"

	"github.com/san-kum/chaoscrypt/internal/dynamo"
)

// MaxChannels bounds the interleaved channel count (gray, gray+alpha,
// RGB, RGBA).
const MaxChannels = 4

// Shape describes an interleaved raster: Height rows of Width pixels with
// Channels bytes each.
type Shape struct {
	Height   int `json:"height"`
	Width    int `json:"width"`
	Channels int `json:"channels"`
}

func (s Shape) Len() int { return s.Height * s.Width * s.Channels }

func (s Shape) Validate() error {
	if s.Height < 1 || s.Width < 1 {
		return fmt.Errorf("%w: image dimensions must be positive, got %dx%d", dynamo.ErrInvalidInput, s.Width, s.Height)
	}
	if s.Channels < 1 || s.Channels > MaxChannels {
		return fmt.Errorf("%w: channels must be in [1, %d], got %d", dynamo.ErrInvalidInput, MaxChannels, s.Channels)
	}
	return nil
}

func (s Shape) String() string {
	return fmt.Sprintf("%dx%dx%d", s.Height, s.Width, s.Channels)
}
