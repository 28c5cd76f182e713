package quadcast

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"io"
	"os"

	"golang.org/x/image/bmp"
)

// Frame is one rendered image: tightly packed RGBA rows, top row first.
type Frame struct {
	width  int
	height int
	data   []uint8 // RGBA format, 4 bytes per pixel
}

// NewFrame creates a transparent frame with the given dimensions.
func NewFrame(width, height int) *Frame {
	return &Frame{
		width:  width,
		height: height,
		data:   make([]uint8, width*height*4),
	}
}

// Width returns the width of the frame.
func (f *Frame) Width() int {
	return f.width
}

// Height returns the height of the frame.
func (f *Frame) Height() int {
	return f.height
}

// Data returns the raw pixel data (RGBA format).
func (f *Frame) Data() []uint8 {
	return f.data
}

// Pixel returns the color of a single pixel, or transparent black outside
// the frame.
func (f *Frame) Pixel(x, y int) color.NRGBA {
	if x < 0 || x >= f.width || y < 0 || y >= f.height {
		return color.NRGBA{}
	}
	i := (y*f.width + x) * 4
	return color.NRGBA{R: f.data[i+0], G: f.data[i+1], B: f.data[i+2], A: f.data[i+3]}
}

// ToImage returns the frame as an image.NRGBA sharing no memory with f.
// Frame pixels are not premultiplied, so the copy is byte for byte.
func (f *Frame) ToImage() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, f.width, f.height))
	copy(img.Pix, f.data)
	return img
}

// At implements the image.Image interface.
func (f *Frame) At(x, y int) color.Color {
	return f.Pixel(x, y)
}

// Bounds implements the image.Image interface.
func (f *Frame) Bounds() image.Rectangle {
	return image.Rect(0, 0, f.width, f.height)
}

// ColorModel implements the image.Image interface.
func (f *Frame) ColorModel() color.Model {
	return color.NRGBAModel
}

// EncodeBMP writes the frame to w as a BMP image.
func (f *Frame) EncodeBMP(w io.Writer) error {
	if err := bmp.Encode(w, f.ToImage()); err != nil {
		return fmt.Errorf("encode bmp: %w", err)
	}
	return nil
}

// BMP returns the frame encoded as a BMP image.
func (f *Frame) BMP() ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(f.width*f.height*4 + 54)
	if err := f.EncodeBMP(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Base64 returns the BMP encoding of the frame as standard base64 with no
// data URI prefix.
func (f *Frame) Base64() (string, error) {
	b, err := f.BMP()
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(b), nil
}

// SaveBMP saves the frame to a BMP file.
func (f *Frame) SaveBMP(path string) error {
	file, err := os.Create(path) //nolint:gosec // path is user-provided intentionally
	if err != nil {
		return err
	}
	if err := f.EncodeBMP(file); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}

// DataURI prefixes a base64 BMP string so it can be used as an image
// source, for example in an HTML img tag.
func DataURI(b64 string) string {
	return "data:image/bmp;base64," + b64
}
