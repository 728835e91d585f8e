// Copyright 2026 The epdcal Authors
// SPDX-License-Identifier: MIT

package layout

import (
	"math"

	"github.com/AmnesiaBeing/epdcal/geom"
	"github.com/AmnesiaBeing/epdcal/node"
)

// ResolveAnchor converts a declared position into an absolute rectangle.
// pos is relative to origin and names the anchor point of an element of the
// given size; the top-left corner is pos+origin minus size times the anchor
// factors, clamped to the screen.
func ResolveAnchor(pos geom.Point, size geom.Size, a node.Anchor, origin geom.Point, screen geom.Rect) geom.Rect {
	h, v := a.Factors()
	x := origin.X + pos.X - int(float64(size.W)*h)
	y := origin.Y + pos.Y - int(float64(size.H)*v)
	return geom.Rect{
		X: geom.Clamp(x, screen.X, screen.X+screen.W),
		Y: geom.Clamp(y, screen.Y, screen.Y+screen.H),
		W: size.W,
		H: size.H,
	}
}

// Distribute splits extent among weights: share i is
// floor(extent * w[i] / sum(w)). Shares are consumed in order and the last
// ones are cut so the total never exceeds extent.
func Distribute(extent int, weights []float32) ([]int, error) {
	var sum float64
	for _, w := range weights {
		if !(w > 0) {
			return nil, ErrInvalidWeight
		}
		sum += float64(w)
	}
	shares := make([]int, len(weights))
	used := 0
	for i, w := range weights {
		n := int(math.Floor(float64(extent) * float64(w) / sum))
		n = min(n, extent-used)
		shares[i] = max(n, 0)
		used += shares[i]
	}
	return shares, nil
}

// fill replaces zero dimensions of size with the slot's.
func fill(size geom.Size, slot geom.Rect) geom.Size {
	if size.W == 0 {
		size.W = slot.W
	}
	if size.H == 0 {
		size.H = slot.H
	}
	return size
}
