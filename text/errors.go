// Copyright 2026 The epdcal Authors
// SPDX-License-Identifier: MIT

package text

import (
	"errors"
	"fmt"
)

// Sentinel errors for text package.
var (
	// ErrEmptyFontData is returned when font data is empty.
	ErrEmptyFontData = errors.New("text: empty font data")

	// ErrNoSizes is returned when a font is created without any size.
	ErrNoSizes = errors.New("text: no font sizes")

	// ErrBadBitmap is returned when glyph bits do not match the metrics.
	ErrBadBitmap = errors.New("text: bitmap size does not match metrics")
)

// GlyphMissingError reports a character absent from the font. It is not
// fatal: the character degrades to the default width and is not drawn.
type GlyphMissingError struct {
	Rune rune
	Size FontSize
}

func (e *GlyphMissingError) Error() string {
	return fmt.Sprintf("text: glyph %U %q missing at size %d", e.Rune, e.Rune, e.Size)
}
