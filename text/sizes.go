// Copyright 2026 The epdcal Authors
// SPDX-License-Identifier: MIT

package text

// Sizes serves each font size from its own Provider, so one layout can mix
// typefaces. Sizes without an entry have no glyphs and zero line metrics.
type Sizes map[FontSize]Provider

// GlyphMetrics implements Provider.
func (s Sizes) GlyphMetrics(size FontSize, r rune) (GlyphMetrics, bool) {
	p, ok := s[size]
	if !ok {
		return GlyphMetrics{}, false
	}
	return p.GlyphMetrics(size, r)
}

// GlyphBitmap implements Provider.
func (s Sizes) GlyphBitmap(size FontSize, r rune) ([]byte, bool) {
	p, ok := s[size]
	if !ok {
		return nil, false
	}
	return p.GlyphBitmap(size, r)
}

// LineMetrics implements Provider.
func (s Sizes) LineMetrics(size FontSize) LineMetrics {
	p, ok := s[size]
	if !ok {
		return LineMetrics{}
	}
	return p.LineMetrics(size)
}
