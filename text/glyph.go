// Copyright 2026 The epdcal Authors
// SPDX-License-Identifier: MIT

package text

// FontSize is a logical font identifier. Layout nodes name fonts by size
// and the provider maps each size to concrete glyph data.
type FontSize uint8

// GlyphMetrics describes one glyph bitmap and where it sits relative to the
// pen position on the baseline.
type GlyphMetrics struct {
	// Offset is the byte offset of the bitmap inside the font blob.
	Offset uint32
	// Width and Height are the bitmap dimensions in pixels.
	Width, Height uint16
	// BearingX is the distance from the pen to the bitmap's left edge.
	BearingX int16
	// BearingY is the distance from the baseline up to the bitmap's top.
	BearingY int16
	// AdvanceX moves the pen to the next glyph.
	AdvanceX int16
}

// Stride returns the number of bytes per bitmap row.
func (m GlyphMetrics) Stride() int { return (int(m.Width) + 7) / 8 }

// BitmapLen returns the number of bytes of the glyph bitmap.
func (m GlyphMetrics) BitmapLen() int { return m.Stride() * int(m.Height) }

// LineMetrics holds the vertical metrics shared by every line of a size.
type LineMetrics struct {
	// Ascent is the distance from the line top to the baseline.
	Ascent int
	// Height is the distance between consecutive line tops.
	Height int
}

// Provider supplies glyph metrics and 1-bit bitmaps.
//
// Bitmaps are row-major, one bit per pixel, most significant bit first,
// with each row padded to a whole byte.
type Provider interface {
	GlyphMetrics(size FontSize, r rune) (GlyphMetrics, bool)
	GlyphBitmap(size FontSize, r rune) ([]byte, bool)
	LineMetrics(size FontSize) LineMetrics
}

// bitAt reports whether pixel (x, y) is set in a padded 1-bit bitmap.
func bitAt(bits []byte, stride, x, y int) bool {
	i := y*stride + x/8
	if i >= len(bits) {
		return false
	}
	return bits[i]&(0x80>>(x%8)) != 0
}
