// Copyright 2026 The epdcal Authors
// SPDX-License-Identifier: MIT

package text

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/go-text/typesetting/di"
	gotext "github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/language"
	"github.com/go-text/typesetting/shaping"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"

	"github.com/AmnesiaBeing/epdcal/internal/cache"
)

// glyphCacheSize bounds the rasterized glyphs kept per FaceFont.
const glyphCacheSize = 1024

// FaceFont is a Provider that rasterizes glyphs from golang.org/x/image
// faces on first use. Coverage is thresholded at 50% to produce 1-bit
// bitmaps suitable for an e-ink panel; there is no anti-aliasing.
//
// FaceFont is safe for concurrent use.
type FaceFont struct {
	// mu guards the faces and shaping state: font.Face, sfnt.Buffer and
	// the HarfBuzz shaper are not safe for concurrent use.
	mu     sync.Mutex
	faces  map[FontSize]sizedFace
	otf    *opentype.Font // nil for basicfont
	buf    sfnt.Buffer
	gt     *gotext.Face // nil for basicfont
	hb     shaping.HarfbuzzShaper
	basic  *basicfont.Face
	glyphs *cache.Cache[glyphKey, rasterGlyph]
}

type sizedFace struct {
	face   font.Face
	points float64
}

type glyphKey struct {
	size FontSize
	r    rune
}

type rasterGlyph struct {
	m    GlyphMetrics
	bits []byte
	ok   bool
}

// NewFaceFont parses TrueType or OpenType data and creates one face per
// entry of sizes, which maps logical sizes to point sizes at 72 DPI.
func NewFaceFont(data []byte, sizes map[FontSize]float64) (*FaceFont, error) {
	if len(data) == 0 {
		return nil, ErrEmptyFontData
	}
	if len(sizes) == 0 {
		return nil, ErrNoSizes
	}
	otf, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("text: parse font: %w", err)
	}
	gt, err := gotext.ParseTTF(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("text: parse font for shaping: %w", err)
	}

	f := newFaceFont()
	f.otf = otf
	f.gt = gt
	for size, points := range sizes {
		face, err := opentype.NewFace(otf, &opentype.FaceOptions{
			Size:    points,
			DPI:     72,
			Hinting: font.HintingFull,
		})
		if err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("text: face for size %d: %w", size, err)
		}
		f.faces[size] = sizedFace{face: face, points: points}
	}
	return f, nil
}

// LoadFaceFont reads a font file and calls NewFaceFont.
func LoadFaceFont(path string, sizes map[FontSize]float64) (*FaceFont, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("text: read font: %w", err)
	}
	return NewFaceFont(data, sizes)
}

// NewGoRegular returns a FaceFont using the embedded Go Regular typeface.
func NewGoRegular(sizes map[FontSize]float64) (*FaceFont, error) {
	return NewFaceFont(goregular.TTF, sizes)
}

// NewBasicFont returns a FaceFont that serves the fixed 7x13 bitmap face
// for every listed size.
func NewBasicFont(sizes ...FontSize) (*FaceFont, error) {
	if len(sizes) == 0 {
		return nil, ErrNoSizes
	}
	f := newFaceFont()
	f.basic = basicfont.Face7x13
	for _, size := range sizes {
		f.faces[size] = sizedFace{face: basicfont.Face7x13, points: 13}
	}
	return f, nil
}

func newFaceFont() *FaceFont {
	return &FaceFont{
		faces:  make(map[FontSize]sizedFace),
		glyphs: cache.New[glyphKey, rasterGlyph](glyphCacheSize),
	}
}

// Close releases the faces. The glyph cache is cleared before f.mu is
// taken since lookups hold the cache lock while rasterizing under f.mu.
func (f *FaceFont) Close() error {
	f.glyphs.Clear()
	f.mu.Lock()
	defer f.mu.Unlock()
	var errs []error
	if f.basic == nil {
		for _, sf := range f.faces {
			errs = append(errs, sf.face.Close())
		}
	}
	f.faces = map[FontSize]sizedFace{}
	return errors.Join(errs...)
}

// CacheStats returns the glyph cache counters.
func (f *FaceFont) CacheStats() cache.Stats { return f.glyphs.Stats() }

// GlyphMetrics implements Provider.
func (f *FaceFont) GlyphMetrics(size FontSize, r rune) (GlyphMetrics, bool) {
	g := f.glyph(size, r)
	return g.m, g.ok
}

// GlyphBitmap implements Provider.
func (f *FaceFont) GlyphBitmap(size FontSize, r rune) ([]byte, bool) {
	g := f.glyph(size, r)
	return g.bits, g.ok
}

// LineMetrics implements Provider.
func (f *FaceFont) LineMetrics(size FontSize) LineMetrics {
	f.mu.Lock()
	defer f.mu.Unlock()
	sf, ok := f.faces[size]
	if !ok {
		return LineMetrics{}
	}
	m := sf.face.Metrics()
	return LineMetrics{Ascent: m.Ascent.Ceil(), Height: m.Height.Ceil()}
}

func (f *FaceFont) glyph(size FontSize, r rune) rasterGlyph {
	g, _ := f.glyphs.GetOrCreate(glyphKey{size, r}, func() (rasterGlyph, error) {
		return f.rasterize(size, r), nil
	})
	return g
}

// rasterize renders r with the pen at the origin. Absent glyphs are
// cached as not ok so the lookup is not repeated.
func (f *FaceFont) rasterize(size FontSize, r rune) rasterGlyph {
	f.mu.Lock()
	defer f.mu.Unlock()

	sf, ok := f.faces[size]
	if !ok || !f.covers(r) {
		return rasterGlyph{}
	}
	dr, mask, maskp, adv, ok := sf.face.Glyph(fixed.Point26_6{}, r)
	if !ok {
		return rasterGlyph{}
	}
	m := GlyphMetrics{
		Width:    uint16(dr.Dx()),
		Height:   uint16(dr.Dy()),
		BearingX: int16(dr.Min.X),
		BearingY: int16(-dr.Min.Y),
		AdvanceX: int16(adv.Round()),
	}
	if a, ok := f.shapedAdvance(sf, r); ok {
		m.AdvanceX = int16(a)
	}

	bits := make([]byte, m.BitmapLen())
	stride := m.Stride()
	for y := 0; y < int(m.Height); y++ {
		for x := 0; x < int(m.Width); x++ {
			_, _, _, a := mask.At(maskp.X+x, maskp.Y+y).RGBA()
			if a >= 0x8000 {
				bits[y*stride+x/8] |= 0x80 >> (x % 8)
			}
		}
	}
	return rasterGlyph{m: m, bits: bits, ok: true}
}

// covers reports whether the font has a real glyph for r rather than a
// fallback. Caller must hold f.mu.
func (f *FaceFont) covers(r rune) bool {
	if f.otf != nil {
		idx, err := f.otf.GlyphIndex(&f.buf, r)
		return err == nil && idx != 0
	}
	if f.basic != nil {
		for _, rr := range f.basic.Ranges {
			if r >= rr.Low && r < rr.High {
				return true
			}
		}
	}
	return false
}

// shapedAdvance returns the HarfBuzz advance of r in whole pixels.
// Caller must hold f.mu.
func (f *FaceFont) shapedAdvance(sf sizedFace, r rune) (int, bool) {
	if f.gt == nil {
		return 0, false
	}
	runes := []rune{r}
	out := f.hb.Shape(shaping.Input{
		Text:      runes,
		RunStart:  0,
		RunEnd:    len(runes),
		Direction: di.DirectionLTR,
		Face:      f.gt,
		Size:      fixed.Int26_6(sf.points * 64),
		Script:    language.LookupScript(r),
		Language:  language.NewLanguage("en"),
	})
	if len(out.Glyphs) == 0 {
		return 0, false
	}
	var adv fixed.Int26_6
	for _, g := range out.Glyphs {
		adv += g.Advance
	}
	return adv.Round(), true
}
