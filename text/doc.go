// Copyright 2026 The epdcal Authors
// SPDX-License-Identifier: MIT

// Package text word-wraps strings and places 1-bit glyph bitmaps using
// per-character metrics.
//
// Fonts are reached through the Provider interface, keyed by a logical
// FontSize. Two providers are included:
//
//   - BitmapFont: a pre-rasterized metrics table plus bitmap blob, the form
//     an offline asset pipeline produces.
//   - FaceFont: glyphs rasterized on demand from a golang.org/x/image face
//     (TrueType via opentype, or basicfont), thresholded to 1 bit and kept
//     in an LRU cache. TrueType advances come from HarfBuzz shaping.
//
// # Example usage
//
//	fonts, err := text.NewGoRegular(map[text.FontSize]float64{1: 12, 2: 20})
//	if err != nil {
//	    return err
//	}
//	sh := text.NewShaper(fonts, text.DefaultOptions())
//	res := sh.Wrap("Friday, 16 October", 1, 120)
//	sh.Draw(dst, res.Lines, box, 1, palette.Black, text.AlignCenter)
//
// Missing glyphs never abort a line: they advance by Options.DefaultWidth,
// are skipped when drawing and are reported in Result.Missing.
package text
