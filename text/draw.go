// Copyright 2026 The epdcal Authors
// SPDX-License-Identifier: MIT

package text

import (
	"github.com/AmnesiaBeing/epdcal/geom"
	"github.com/AmnesiaBeing/epdcal/palette"
)

// Target receives glyph pixels. Clipping is the target's job.
type Target interface {
	SetPixel(x, y int, c palette.Color)
}

// Align is the horizontal placement of a line inside its box.
type Align uint8

const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
)

// Draw paints lines into box, one line per LineMetrics.Height starting at
// the box top. Within a line each glyph bitmap is placed at
// (penX+BearingX, baseline-BearingY) and the pen advances by AdvanceX plus
// CharSpacing. Spaces advance by the width Wrap measured them with. Glyphs
// missing from the font advance by DefaultWidth and draw nothing. Only set
// bits are painted; the background is left alone.
func (s *Shaper) Draw(dst Target, lines []Line, box geom.Rect, size FontSize, c palette.Color, align Align) {
	lm := s.Fonts.LineMetrics(size)
	m := measurer{sh: s, size: size}
	space := m.space()
	top := box.Y
	for _, line := range lines {
		penX := box.X
		switch align {
		case AlignCenter:
			penX += max(0, (box.W-line.Width)/2)
		case AlignRight:
			penX += max(0, box.W-line.Width)
		}
		baseline := top + lm.Ascent
		for _, r := range line.Runes {
			if r == ' ' {
				penX += space
				continue
			}
			gm, ok := s.Fonts.GlyphMetrics(size, r)
			if !ok {
				penX += s.DefaultWidth + s.CharSpacing
				continue
			}
			if bits, ok := s.Fonts.GlyphBitmap(size, r); ok {
				drawGlyph(dst, bits, gm, penX+int(gm.BearingX), baseline-int(gm.BearingY), c)
			}
			penX += int(gm.AdvanceX) + s.CharSpacing
		}
		top += lm.Height
	}
}

// Height returns the pixel height of n lines.
func (s *Shaper) Height(n int, size FontSize) int {
	return n * s.Fonts.LineMetrics(size).Height
}

func drawGlyph(dst Target, bits []byte, gm GlyphMetrics, x0, y0 int, c palette.Color) {
	stride := gm.Stride()
	for y := 0; y < int(gm.Height); y++ {
		for x := 0; x < int(gm.Width); x++ {
			if bitAt(bits, stride, x, y) {
				dst.SetPixel(x0+x, y0+y, c)
			}
		}
	}
}
