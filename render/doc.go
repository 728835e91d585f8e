// Copyright 2026 The epdcal Authors
// SPDX-License-Identifier: MIT

// Package render draws 1-bit primitives in the panel's fixed inks.
//
// Everything is drawn through the Sink interface, one pixel at a time.
// Framebuffer is the in-memory Sink the layout engine renders into before
// a frame is copied to the panel. Painter adds clipping and the primitives:
// lines, rectangles, circles, asymmetric borders and 1-bit bitmaps.
//
// Stroke thickness is clamped to [MinThickness, MaxThickness]. There is no
// anti-aliasing.
package render
