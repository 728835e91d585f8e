// Copyright 2026 The epdcal Authors
// SPDX-License-Identifier: MIT

package text

import (
	"errors"
	"strings"
	"unicode"
)

// Options tune measurement and wrapping.
type Options struct {
	// SpaceWidth is the width of an inter-word space. Zero uses the
	// advance of ' ' from the font, or DefaultWidth if the font has none.
	SpaceWidth int
	// CharSpacing is added after every glyph advance.
	CharSpacing int
	// DefaultWidth is the advance of a glyph missing from the font.
	DefaultWidth int
	// MaxLines drops lines beyond this count. Zero keeps all lines.
	MaxLines int
}

// DefaultOptions returns the options used when none are configured.
func DefaultOptions() Options {
	return Options{
		DefaultWidth: 8,
		MaxLines:     0,
	}
}

// Shaper wraps and draws text with glyphs from Fonts. A Shaper is a value:
// copy it and change Options to wrap with different limits.
type Shaper struct {
	Fonts Provider
	Options
}

// NewShaper returns a Shaper over fonts.
func NewShaper(fonts Provider, opts Options) Shaper {
	return Shaper{Fonts: fonts, Options: opts}
}

// Line is one wrapped output line.
type Line struct {
	Runes []rune
	// Width is the pen advance of the whole line in pixels.
	Width int
}

// String returns the line text.
func (l Line) String() string { return string(l.Runes) }

// Result is the outcome of Wrap.
type Result struct {
	Lines []Line
	// Missing lists each rune absent from the font once, in order of
	// first appearance.
	Missing []rune
	// Truncated reports that lines were dropped by MaxLines.
	Truncated bool
	size      FontSize
}

// Err joins a GlyphMissingError per missing rune, or returns nil.
func (r Result) Err() error {
	if len(r.Missing) == 0 {
		return nil
	}
	errs := make([]error, len(r.Missing))
	for i, m := range r.Missing {
		errs[i] = &GlyphMissingError{Rune: m, Size: r.size}
	}
	return errors.Join(errs...)
}

// Width returns the widest line.
func (r Result) Width() int {
	w := 0
	for _, l := range r.Lines {
		w = max(w, l.Width)
	}
	return w
}

// measurer accumulates glyph advances and records missing runes.
type measurer struct {
	sh      *Shaper
	size    FontSize
	missing []rune
	seen    map[rune]bool
}

// advance measures r the way Draw places it; spaces use space.
func (m *measurer) advance(r rune) int {
	if r == ' ' {
		return m.space()
	}
	gm, ok := m.sh.Fonts.GlyphMetrics(m.size, r)
	if !ok {
		if !m.seen[r] {
			if m.seen == nil {
				m.seen = make(map[rune]bool)
			}
			m.seen[r] = true
			m.missing = append(m.missing, r)
		}
		return m.sh.DefaultWidth + m.sh.CharSpacing
	}
	return int(gm.AdvanceX) + m.sh.CharSpacing
}

func (m *measurer) width(rs []rune) int {
	w := 0
	for _, r := range rs {
		w += m.advance(r)
	}
	return w
}

func (m *measurer) space() int {
	if m.sh.SpaceWidth > 0 {
		return m.sh.SpaceWidth
	}
	if gm, ok := m.sh.Fonts.GlyphMetrics(m.size, ' '); ok {
		return int(gm.AdvanceX) + m.sh.CharSpacing
	}
	return m.sh.DefaultWidth + m.sh.CharSpacing
}

// Measure returns the single-line width of s.
func (s *Shaper) Measure(str string, size FontSize) int {
	m := measurer{sh: s, size: size}
	return m.width([]rune(str))
}

// Wrap breaks str into lines no wider than maxWidth.
//
// Hard newlines split paragraphs. A paragraph containing whitespace wraps
// at word boundaries and a word wider than maxWidth sits alone on its line
// without being split. A paragraph without whitespace wraps per character.
// A maxWidth of zero or less disables wrapping.
func (s *Shaper) Wrap(str string, size FontSize, maxWidth int) Result {
	m := measurer{sh: s, size: size}
	res := Result{size: size}

	for _, para := range strings.Split(str, "\n") {
		para = strings.TrimRight(para, "\r")
		var lines []Line
		switch {
		case maxWidth <= 0:
			rs := []rune(para)
			lines = []Line{{Runes: rs, Width: m.width(rs)}}
		case strings.IndexFunc(para, unicode.IsSpace) >= 0:
			lines = m.wrapWords(para, maxWidth)
		default:
			lines = m.wrapChars([]rune(para), maxWidth)
		}
		res.Lines = append(res.Lines, lines...)
	}

	if s.MaxLines > 0 && len(res.Lines) > s.MaxLines {
		res.Lines = res.Lines[:s.MaxLines]
		res.Truncated = true
	}
	res.Missing = m.missing
	return res
}

func (m *measurer) wrapWords(para string, maxWidth int) []Line {
	words := strings.Fields(para)
	if len(words) == 0 {
		return []Line{{}}
	}
	space := m.space()

	var (
		lines []Line
		cur   Line
	)
	for _, word := range words {
		rs := []rune(word)
		w := m.width(rs)
		switch {
		case len(cur.Runes) == 0:
			cur = Line{Runes: rs, Width: w}
		case cur.Width+space+w <= maxWidth:
			cur.Runes = append(append(cur.Runes, ' '), rs...)
			cur.Width += space + w
		default:
			lines = append(lines, cur)
			cur = Line{Runes: rs, Width: w}
		}
	}
	return append(lines, cur)
}

func (m *measurer) wrapChars(rs []rune, maxWidth int) []Line {
	if len(rs) == 0 {
		return []Line{{}}
	}
	var (
		lines []Line
		cur   Line
	)
	for _, r := range rs {
		w := m.advance(r)
		if len(cur.Runes) > 0 && cur.Width+w > maxWidth {
			lines = append(lines, cur)
			cur = Line{}
		}
		cur.Runes = append(cur.Runes, r)
		cur.Width += w
	}
	return append(lines, cur)
}
