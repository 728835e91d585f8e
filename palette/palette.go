// Copyright 2026 The epdcal Authors
// SPDX-License-Identifier: MIT

// Package palette defines the fixed ink colors of the multi-color e-ink panel
// and the semantic importance levels that map onto them.
package palette

import (
	"image/color"
	"strings"
)

const unknownStr = "Unknown"

// Color is one of the inks the panel can show.
// The zero value is White, the paper color.
type Color uint8

const (
	// White is the unpainted paper color.
	White Color = iota
	// Black is the primary ink.
	Black
	// Red is the accent ink used for critical content.
	Red
	// Yellow is the accent ink used for warnings.
	Yellow
)

// NumColors is the number of inks, including White.
const NumColors = 4

// String returns the color name.
func (c Color) String() string {
	switch c {
	case White:
		return "White"
	case Black:
		return "Black"
	case Red:
		return "Red"
	case Yellow:
		return "Yellow"
	default:
		return unknownStr
	}
}

// RGBA returns the on-screen approximation of the ink.
func (c Color) RGBA() color.RGBA {
	switch c {
	case Black:
		return color.RGBA{R: 0, G: 0, B: 0, A: 255}
	case Red:
		return color.RGBA{R: 200, G: 30, B: 30, A: 255}
	case Yellow:
		return color.RGBA{R: 240, G: 200, B: 0, A: 255}
	default:
		return color.RGBA{R: 255, G: 255, B: 255, A: 255}
	}
}

// Model is a color.Palette indexed by Color, usable as an image color model.
var Model = color.Palette{
	White.RGBA(),
	Black.RGBA(),
	Red.RGBA(),
	Yellow.RGBA(),
}

// FromColor returns the ink closest to an arbitrary color.
func FromColor(c color.Color) Color {
	return Color(Model.Index(c))
}

// Importance is the semantic severity of an element.
type Importance uint8

const (
	// Normal content is drawn in black.
	Normal Importance = iota
	// Warning content is drawn in yellow.
	Warning
	// Critical content is drawn in red.
	Critical
)

// Color maps the importance onto its fixed ink.
func (i Importance) Color() Color {
	switch i {
	case Warning:
		return Yellow
	case Critical:
		return Red
	default:
		return Black
	}
}

// String returns the importance name.
func (i Importance) String() string {
	switch i {
	case Normal:
		return "Normal"
	case Warning:
		return "Warning"
	case Critical:
		return "Critical"
	default:
		return unknownStr
	}
}

// ParseImportance parses a case-insensitive importance name.
// Unknown names map to Normal.
func ParseImportance(s string) Importance {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "warning":
		return Warning
	case "critical":
		return Critical
	default:
		return Normal
	}
}
