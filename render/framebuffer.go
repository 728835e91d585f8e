// Copyright 2026 The epdcal Authors
// SPDX-License-Identifier: MIT

package render

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"

	"github.com/AmnesiaBeing/epdcal/geom"
	"github.com/AmnesiaBeing/epdcal/palette"
)

// Sink receives pixels. Implementations ignore coordinates outside Bounds.
type Sink interface {
	Bounds() geom.Rect
	SetPixel(x, y int, c palette.Color)
}

// Framebuffer is an in-memory Sink holding one ink per pixel.
// The zero ink is White, so a new Framebuffer is blank paper.
type Framebuffer struct {
	width  int
	height int
	pix    []palette.Color
}

// NewFramebuffer creates a blank framebuffer.
func NewFramebuffer(width, height int) *Framebuffer {
	return &Framebuffer{
		width:  width,
		height: height,
		pix:    make([]palette.Color, width*height),
	}
}

// Width returns the width of the framebuffer.
func (f *Framebuffer) Width() int { return f.width }

// Height returns the height of the framebuffer.
func (f *Framebuffer) Height() int { return f.height }

// Bounds implements Sink.
func (f *Framebuffer) Bounds() geom.Rect { return geom.R(0, 0, f.width, f.height) }

// SetPixel implements Sink.
func (f *Framebuffer) SetPixel(x, y int, c palette.Color) {
	if x < 0 || x >= f.width || y < 0 || y >= f.height {
		return
	}
	f.pix[y*f.width+x] = c
}

// Pixel returns the ink at (x, y), or White outside the bounds.
func (f *Framebuffer) Pixel(x, y int) palette.Color {
	if x < 0 || x >= f.width || y < 0 || y >= f.height {
		return palette.White
	}
	return f.pix[y*f.width+x]
}

// Clear fills the framebuffer with one ink.
func (f *Framebuffer) Clear(c palette.Color) {
	for i := range f.pix {
		f.pix[i] = c
	}
}

// CopyFrom copies rect r of src into f at the same position.
func (f *Framebuffer) CopyFrom(src *Framebuffer, r geom.Rect) error {
	if src.width != f.width || src.height != f.height {
		return fmt.Errorf("%w: %dx%d into %dx%d", ErrSizeMismatch, src.width, src.height, f.width, f.height)
	}
	r = r.Intersect(f.Bounds())
	for y := r.Y; y < r.Y+r.H; y++ {
		row := y * f.width
		copy(f.pix[row+r.X:row+r.X+r.W], src.pix[row+r.X:row+r.X+r.W])
	}
	return nil
}

// Diff returns the bounding rectangle of the pixels that differ between f
// and other, or the zero Rect when they are equal.
func (f *Framebuffer) Diff(other *Framebuffer) (geom.Rect, error) {
	if other.width != f.width || other.height != f.height {
		return geom.Rect{}, ErrSizeMismatch
	}
	x0, y0, x1, y1 := f.width, f.height, -1, -1
	for y := 0; y < f.height; y++ {
		row := y * f.width
		for x := 0; x < f.width; x++ {
			if f.pix[row+x] != other.pix[row+x] {
				x0, x1 = min(x0, x), max(x1, x)
				y0, y1 = min(y0, y), max(y1, y)
			}
		}
	}
	if x1 < 0 {
		return geom.Rect{}, nil
	}
	return geom.R(x0, y0, x1-x0+1, y1-y0+1), nil
}

// Blit copies rect r of src to dst pixel by pixel.
func Blit(dst Sink, src *Framebuffer, r geom.Rect) {
	r = r.Intersect(src.Bounds())
	for y := r.Y; y < r.Y+r.H; y++ {
		for x := r.X; x < r.X+r.W; x++ {
			dst.SetPixel(x, y, src.pix[y*src.width+x])
		}
	}
}

// Planes splits the framebuffer into one 1-bit plane per ink, the layout
// multi-color panels expect: row-major, most significant bit first, rows
// padded to whole bytes, a set bit meaning the ink is present.
func (f *Framebuffer) Planes() (black, red, yellow []byte) {
	stride := (f.width + 7) / 8
	black = make([]byte, stride*f.height)
	red = make([]byte, stride*f.height)
	yellow = make([]byte, stride*f.height)
	for y := 0; y < f.height; y++ {
		for x := 0; x < f.width; x++ {
			var plane []byte
			switch f.pix[y*f.width+x] {
			case palette.Black:
				plane = black
			case palette.Red:
				plane = red
			case palette.Yellow:
				plane = yellow
			default:
				continue
			}
			plane[y*stride+x/8] |= 0x80 >> (x % 8)
		}
	}
	return black, red, yellow
}

// Image returns an image.Image view of the framebuffer.
func (f *Framebuffer) Image() image.Image { return imageView{f} }

// EncodePNG writes the framebuffer as a paletted PNG.
func (f *Framebuffer) EncodePNG(w io.Writer) error {
	img := image.NewPaletted(image.Rect(0, 0, f.width, f.height), palette.Model)
	for i, c := range f.pix {
		img.Pix[i] = uint8(c)
	}
	return png.Encode(w, img)
}

// SavePNG saves the framebuffer to a PNG file.
func (f *Framebuffer) SavePNG(path string) error {
	file, err := os.Create(path) //nolint:gosec // path is user-provided intentionally
	if err != nil {
		return err
	}
	if err := f.EncodePNG(file); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}

// imageView adapts a Framebuffer to image.Image.
type imageView struct{ f *Framebuffer }

func (v imageView) At(x, y int) color.Color { return v.f.Pixel(x, y).RGBA() }

func (v imageView) Bounds() image.Rectangle { return v.f.Bounds().Image() }

func (v imageView) ColorModel() color.Model { return palette.Model }
