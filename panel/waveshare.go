// Copyright 2026 The epdcal Authors
// SPDX-License-Identifier: MIT

package panel

import (
	"context"
	"image"
	"image/color"
	"image/draw"

	"github.com/disintegration/imaging"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/devices/v3/ssd1306/image1bit"
	"periph.io/x/devices/v3/waveshare2in13v4"

	"github.com/AmnesiaBeing/epdcal/geom"
	"github.com/AmnesiaBeing/epdcal/palette"
	"github.com/AmnesiaBeing/epdcal/render"
)

// epd is the subset of the periph e-paper driver the adapter drives.
type epd interface {
	Init() error
	Clear(c color.Color) error
	Draw(dst image.Rectangle, src image.Image, sp image.Point) error
	Sleep() error
	Halt() error
	Bounds() image.Rectangle
}

// Waveshare drives a Waveshare 2.13" V4 e-paper HAT over SPI. The panel is
// monochrome: every ink other than White is shown as black.
//
// With rotate set, the back buffer is landscape and frames are turned a
// quarter counter-clockwise onto the portrait controller.
type Waveshare struct {
	dev    epd
	back   *render.Framebuffer
	rotate bool
	awake  bool
}

// NewWaveshare opens the HAT on port, initializes the controller and
// clears the glass to white.
func NewWaveshare(port spi.Port, rotate bool) (*Waveshare, error) {
	opts := waveshare2in13v4.EPD2in13v4
	dev, err := waveshare2in13v4.NewHat(port, &opts)
	if err != nil {
		return nil, opError("open", err)
	}
	return newWaveshare(dev, rotate)
}

func newWaveshare(dev epd, rotate bool) (*Waveshare, error) {
	size := dev.Bounds().Size()
	w, h := size.X, size.Y
	if rotate {
		w, h = h, w
	}
	p := &Waveshare{
		dev:    dev,
		back:   render.NewFramebuffer(w, h),
		rotate: rotate,
	}
	if err := p.wake(); err != nil {
		return nil, err
	}
	if err := dev.Clear(color.White); err != nil {
		return nil, opError("clear", err)
	}
	return p, nil
}

// Bounds implements render.Sink.
func (p *Waveshare) Bounds() geom.Rect { return p.back.Bounds() }

// SetPixel implements render.Sink.
func (p *Waveshare) SetPixel(x, y int, c palette.Color) { p.back.SetPixel(x, y, c) }

// Clear implements Panel.
func (p *Waveshare) Clear(c palette.Color) { p.back.Clear(c) }

// FlushFull implements Panel.
func (p *Waveshare) FlushFull(ctx context.Context) error {
	return p.flush(ctx, p.back.Bounds())
}

// FlushPartial implements Panel.
func (p *Waveshare) FlushPartial(ctx context.Context, rect geom.Rect) error {
	rect = rect.Intersect(p.back.Bounds())
	if rect.Empty() {
		return nil
	}
	return p.flush(ctx, rect)
}

func (p *Waveshare) flush(ctx context.Context, rect geom.Rect) error {
	if p.dev == nil {
		return ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return opError("flush", err)
	}
	if err := p.wake(); err != nil {
		return err
	}
	frame := p.frame()
	dst := rect
	if p.rotate {
		dst = rotateRect(rect, p.back.Width())
	}
	if err := p.dev.Draw(dst.Image(), frame, image.Pt(dst.X, dst.Y)); err != nil {
		return opError("draw", err)
	}
	return nil
}

// frame converts the back buffer into the controller's bit layout.
func (p *Waveshare) frame() image.Image {
	mono := image.NewGray(p.back.Bounds().Image())
	for y := 0; y < p.back.Height(); y++ {
		for x := 0; x < p.back.Width(); x++ {
			if p.back.Pixel(x, y) == palette.White {
				mono.Pix[y*mono.Stride+x] = 0xff
			}
		}
	}
	var src image.Image = mono
	if p.rotate {
		src = imaging.Rotate90(mono)
	}
	out := image1bit.NewVerticalLSB(p.dev.Bounds())
	draw.Draw(out, out.Bounds(), src, image.Point{}, draw.Src)
	return out
}

// rotateRect maps a rectangle through a quarter counter-clockwise turn of
// an image of the given width.
func rotateRect(r geom.Rect, width int) geom.Rect {
	return geom.R(r.Y, width-r.X-r.W, r.H, r.W)
}

func (p *Waveshare) wake() error {
	if p.awake {
		return nil
	}
	if err := p.dev.Init(); err != nil {
		return opError("init", err)
	}
	p.awake = true
	return nil
}

// Sleep implements Panel.
func (p *Waveshare) Sleep() error {
	if p.dev == nil || !p.awake {
		return nil
	}
	p.awake = false
	return opError("sleep", p.dev.Sleep())
}

// Halt releases the controller. The panel is unusable afterwards.
func (p *Waveshare) Halt() error {
	if p.dev == nil {
		return nil
	}
	err := p.dev.Halt()
	p.dev = nil
	return opError("halt", err)
}
