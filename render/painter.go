// Copyright 2026 The epdcal Authors
// SPDX-License-Identifier: MIT

package render

import (
	"github.com/AmnesiaBeing/epdcal/geom"
	"github.com/AmnesiaBeing/epdcal/palette"
)

// Stroke thickness limits in pixels.
const (
	MinThickness = 1
	MaxThickness = 3
)

// ClampThickness limits t to [MinThickness, MaxThickness].
func ClampThickness(t int) int {
	return geom.Clamp(t, MinThickness, MaxThickness)
}

// Edges holds independent widths of the four sides of a border.
// A zero width draws no segment.
type Edges struct {
	Top, Right, Bottom, Left int
}

// Painter draws primitives into a Sink, discarding pixels outside Clip.
type Painter struct {
	dst  Sink
	clip geom.Rect
}

// NewPainter returns a Painter clipped to the sink bounds.
func NewPainter(dst Sink) *Painter {
	return &Painter{dst: dst, clip: dst.Bounds()}
}

// Clip returns the current clip rectangle.
func (p *Painter) Clip() geom.Rect { return p.clip }

// WithClip returns a Painter whose clip is the intersection of the current
// clip and r.
func (p *Painter) WithClip(r geom.Rect) *Painter {
	return &Painter{dst: p.dst, clip: p.clip.Intersect(r)}
}

// SetPixel paints one pixel if it lies inside the clip.
func (p *Painter) SetPixel(x, y int, c palette.Color) {
	if p.clip.Contains(x, y) {
		p.dst.SetPixel(x, y, c)
	}
}

// FillRect paints every pixel of r.
func (p *Painter) FillRect(r geom.Rect, c palette.Color) {
	r = r.Intersect(p.clip)
	for y := r.Y; y < r.Y+r.H; y++ {
		for x := r.X; x < r.X+r.W; x++ {
			p.dst.SetPixel(x, y, c)
		}
	}
}

// Rect strokes the outline of r. The stroke lies inside r.
func (p *Painter) Rect(r geom.Rect, thickness int, c palette.Color) {
	t := ClampThickness(thickness)
	p.Border(r, Edges{Top: t, Right: t, Bottom: t, Left: t}, c)
}

// Border draws the four sides of r as independent segments, so the sides
// may have different widths. Widths above MaxThickness are clamped.
func (p *Painter) Border(r geom.Rect, e Edges, c palette.Color) {
	if r.Empty() {
		return
	}
	clampEdge := func(w int) int { return geom.Clamp(w, 0, MaxThickness) }
	top, right, bottom, left := clampEdge(e.Top), clampEdge(e.Right), clampEdge(e.Bottom), clampEdge(e.Left)

	p.FillRect(geom.R(r.X, r.Y, r.W, top), c)
	p.FillRect(geom.R(r.X, r.Y+r.H-bottom, r.W, bottom), c)
	p.FillRect(geom.R(r.X, r.Y, left, r.H), c)
	p.FillRect(geom.R(r.X+r.W-right, r.Y, right, r.H), c)
}

// Line draws a segment from a to b with Bresenham's algorithm, stamping a
// square brush of the clamped thickness at every step.
func (p *Painter) Line(a, b geom.Point, thickness int, c palette.Color) {
	t := ClampThickness(thickness)
	lo := -(t - 1) / 2

	dx := abs(b.X - a.X)
	dy := -abs(b.Y - a.Y)
	sx, sy := sign(b.X-a.X), sign(b.Y-a.Y)
	err := dx + dy
	x, y := a.X, a.Y
	for {
		if t == 1 {
			p.SetPixel(x, y, c)
		} else {
			p.FillRect(geom.R(x+lo, y+lo, t, t), c)
		}
		if x == b.X && y == b.Y {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x += sx
		}
		if e2 <= dx {
			err += dx
			y += sy
		}
	}
}

// Circle strokes a circle of the given radius around center. The stroke
// grows inward from the radius.
func (p *Painter) Circle(center geom.Point, radius, thickness int, c palette.Color) {
	if radius < 0 {
		return
	}
	t := ClampThickness(thickness)
	outer := radius*radius + radius
	inner := -1
	if in := radius - t; in >= 0 {
		inner = in*in + in
	}
	p.disc(center, radius, func(d2 int) bool { return d2 <= outer && d2 > inner }, c)
}

// FillCircle paints the disc of the given radius around center.
func (p *Painter) FillCircle(center geom.Point, radius int, c palette.Color) {
	if radius < 0 {
		return
	}
	outer := radius*radius + radius
	p.disc(center, radius, func(d2 int) bool { return d2 <= outer }, c)
}

// disc visits the bounding box of a circle and paints the pixels whose
// squared distance from center satisfies in.
func (p *Painter) disc(center geom.Point, radius int, in func(d2 int) bool, c palette.Color) {
	box := geom.R(center.X-radius, center.Y-radius, 2*radius+1, 2*radius+1).Intersect(p.clip)
	for y := box.Y; y < box.Y+box.H; y++ {
		dy := y - center.Y
		for x := box.X; x < box.X+box.W; x++ {
			dx := x - center.X
			if in(dx*dx + dy*dy) {
				p.dst.SetPixel(x, y, c)
			}
		}
	}
}

// Bitmap paints the set bits of a 1-bit bitmap with its top-left corner at
// (x, y). Rows are most significant bit first and padded to whole bytes.
// Unset bits leave the destination untouched.
func (p *Painter) Bitmap(x, y, w, h int, bits []byte, c palette.Color) {
	stride := (w + 7) / 8
	for row := 0; row < h; row++ {
		for col := 0; col < w; col++ {
			i := row*stride + col/8
			if i >= len(bits) {
				return
			}
			if bits[i]&(0x80>>(col%8)) != 0 {
				p.SetPixel(x+col, y+row, c)
			}
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}
