// Copyright 2026 The epdcal Authors
// SPDX-License-Identifier: MIT

package text

import "fmt"

// BitmapFont is an in-memory table of pre-rasterized glyphs. Each size has
// a metrics map and a single bitmap blob that GlyphMetrics.Offset indexes.
//
// BitmapFont is not safe for concurrent modification; fill it before use.
type BitmapFont struct {
	sizes map[FontSize]*bitmapSize
}

type bitmapSize struct {
	line    LineMetrics
	metrics map[rune]GlyphMetrics
	blob    []byte
}

// NewBitmapFont returns an empty font.
func NewBitmapFont() *BitmapFont {
	return &BitmapFont{sizes: make(map[FontSize]*bitmapSize)}
}

// AddSize declares a size with its line metrics.
func (f *BitmapFont) AddSize(size FontSize, lm LineMetrics) {
	if s, ok := f.sizes[size]; ok {
		s.line = lm
		return
	}
	f.sizes[size] = &bitmapSize{line: lm, metrics: make(map[rune]GlyphMetrics)}
}

// AddGlyph appends a glyph bitmap to the size's blob and records its
// metrics. m.Offset is ignored and set from the blob position.
func (f *BitmapFont) AddGlyph(size FontSize, r rune, m GlyphMetrics, bits []byte) error {
	s, ok := f.sizes[size]
	if !ok {
		return fmt.Errorf("text: size %d not declared", size)
	}
	if len(bits) != m.BitmapLen() {
		return fmt.Errorf("%w: glyph %U has %d bytes, want %d", ErrBadBitmap, r, len(bits), m.BitmapLen())
	}
	m.Offset = uint32(len(s.blob))
	s.blob = append(s.blob, bits...)
	s.metrics[r] = m
	return nil
}

// GlyphMetrics implements Provider.
func (f *BitmapFont) GlyphMetrics(size FontSize, r rune) (GlyphMetrics, bool) {
	s, ok := f.sizes[size]
	if !ok {
		return GlyphMetrics{}, false
	}
	m, ok := s.metrics[r]
	return m, ok
}

// GlyphBitmap implements Provider.
func (f *BitmapFont) GlyphBitmap(size FontSize, r rune) ([]byte, bool) {
	s, ok := f.sizes[size]
	if !ok {
		return nil, false
	}
	m, ok := s.metrics[r]
	if !ok {
		return nil, false
	}
	end := int(m.Offset) + m.BitmapLen()
	if end > len(s.blob) {
		return nil, false
	}
	return s.blob[m.Offset:end], true
}

// LineMetrics implements Provider.
func (f *BitmapFont) LineMetrics(size FontSize) LineMetrics {
	if s, ok := f.sizes[size]; ok {
		return s.line
	}
	return LineMetrics{}
}
