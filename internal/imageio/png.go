// Package imageio converts between PNG files and the interleaved 8-bit
// pixel buffers the cipher operates on.
package imageio

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"image"
	"image/color"
	"image/png"
	"os"
	"strconv"

	"github.com/san-kum/chaoscrypt/internal/cipher"
	"github.com/san-kum/chaoscrypt/internal/dynamo"
)

// channelsKey is the tEXt keyword WritePNG uses to record the channel
// count. The PNG encoder drops an all-255 alpha plane, so without it a
// four-channel ciphertext can read back as three channels.
const channelsKey = "chaoscrypt:channels"

const (
	pngSignatureLen = 8
	// IHDR is always first: length, type, 13 data bytes, CRC.
	ihdrEnd = pngSignatureLen + 4 + 4 + 13 + 4
)

// ReadPNG decodes a PNG into interleaved 8-bit pixels. The channel count
// recorded by WritePNG wins; otherwise gray images keep one channel, opaque
// color images three and translucent ones four.
func ReadPNG(path string) ([]byte, cipher.Shape, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, cipher.Shape{}, err
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, cipher.Shape{}, fmt.Errorf("decode %s: %w", path, err)
	}

	ch := guessChannels(img)
	if v, ok := textChunk(data, channelsKey); ok {
		n, err := strconv.Atoi(v)
		if err != nil || (n != 1 && n != 3 && n != 4) {
			return nil, cipher.Shape{}, fmt.Errorf("%w: %s: bad %s %q", dynamo.ErrInvalidInput, path, channelsKey, v)
		}
		ch = n
	}
	px, shape := flatten(img, ch)
	return px, shape, nil
}

// FromImage flattens img row by row with the guessed channel count.
func FromImage(img image.Image) ([]byte, cipher.Shape) {
	return flatten(img, guessChannels(img))
}

func guessChannels(img image.Image) int {
	if _, ok := img.(*image.Gray); ok {
		return 1
	}
	if o, ok := img.(interface{ Opaque() bool }); ok && o.Opaque() {
		return 3
	}
	return 4
}

func flatten(img image.Image, channels int) ([]byte, cipher.Shape) {
	b := img.Bounds()
	shape := cipher.Shape{Height: b.Dy(), Width: b.Dx(), Channels: channels}
	px := make([]byte, 0, shape.Len())

	if channels == 1 {
		if g, ok := img.(*image.Gray); ok {
			for y := b.Min.Y; y < b.Max.Y; y++ {
				px = append(px, g.Pix[g.PixOffset(b.Min.X, y):g.PixOffset(b.Max.X, y)]...)
			}
			return px, shape
		}
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				px = append(px, color.GrayModel.Convert(img.At(x, y)).(color.Gray).Y)
			}
		}
		return px, shape
	}

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			px = append(px, c.R, c.G, c.B)
			if channels == 4 {
				px = append(px, c.A)
			}
		}
	}
	return px, shape
}

func ToImage(px []byte, shape cipher.Shape) (image.Image, error) {
	if err := shape.Validate(); err != nil {
		return nil, err
	}
	if len(px) != shape.Len() {
		return nil, fmt.Errorf("%w: %d bytes for shape %s", dynamo.ErrShapeMismatch, len(px), shape)
	}
	rect := image.Rect(0, 0, shape.Width, shape.Height)

	switch shape.Channels {
	case 1:
		g := image.NewGray(rect)
		copy(g.Pix, px)
		return g, nil
	case 3, 4:
		img := image.NewNRGBA(rect)
		for i := 0; i < shape.Height*shape.Width; i++ {
			src := px[i*shape.Channels:]
			dst := img.Pix[i*4:]
			dst[0], dst[1], dst[2], dst[3] = src[0], src[1], src[2], 255
			if shape.Channels == 4 {
				dst[3] = src[3]
			}
		}
		return img, nil
	}
	return nil, fmt.Errorf("%w: cannot write %d-channel image as PNG", dynamo.ErrInvalidInput, shape.Channels)
}

// WritePNG encodes px and records shape.Channels in a tEXt chunk.
func WritePNG(path string, px []byte, shape cipher.Shape) error {
	img, err := ToImage(px, shape)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return err
	}
	encoded := buf.Bytes()

	out := make([]byte, 0, len(encoded)+64)
	out = append(out, encoded[:ihdrEnd]...)
	out = appendTextChunk(out, channelsKey, strconv.Itoa(shape.Channels))
	out = append(out, encoded[ihdrEnd:]...)
	return os.WriteFile(path, out, 0o644)
}

func appendTextChunk(dst []byte, key, value string) []byte {
	body := make([]byte, 0, 4+len(key)+1+len(value))
	body = append(body, "tEXt"...)
	body = append(body, key...)
	body = append(body, 0)
	body = append(body, value...)

	dst = binary.BigEndian.AppendUint32(dst, uint32(len(body)-4))
	dst = append(dst, body...)
	return binary.BigEndian.AppendUint32(dst, crc32.ChecksumIEEE(body))
}

// textChunk returns the value of the first tEXt chunk with keyword key.
func textChunk(data []byte, key string) (string, bool) {
	for off := pngSignatureLen; off+8 <= len(data); {
		n := int(binary.BigEndian.Uint32(data[off:]))
		typ := string(data[off+4 : off+8])
		end := off + 8 + n + 4
		if n < 0 || end > len(data) || typ == "IEND" {
			return "", false
		}
		if typ == "tEXt" {
			k, v, ok := bytes.Cut(data[off+8:off+8+n], []byte{0})
			if ok && string(k) == key {
				return string(v), true
			}
		}
		off = end
	}
	return "", false
}
