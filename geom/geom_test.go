// Copyright 2026 The epdcal Authors
// SPDX-License-Identifier: MIT

package geom

import "testing"

func TestRectUnion(t *testing.T) {
	tests := []struct {
		name string
		a, b Rect
		want Rect
	}{
		{"disjoint", R(0, 0, 100, 50), R(200, 200, 50, 50), R(0, 0, 250, 250)},
		{"nested", R(0, 0, 100, 100), R(10, 10, 5, 5), R(0, 0, 100, 100)},
		{"empty left", Rect{}, R(3, 4, 5, 6), R(3, 4, 5, 6)},
		{"empty right", R(3, 4, 5, 6), Rect{}, R(3, 4, 5, 6)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Union(tt.b); got != tt.want {
				t.Errorf("Union() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRectIntersect(t *testing.T) {
	got := R(0, 0, 10, 10).Intersect(R(5, 5, 10, 10))
	if got != R(5, 5, 5, 5) {
		t.Errorf("Intersect() = %v", got)
	}
	if !R(0, 0, 10, 10).Intersect(R(10, 0, 5, 5)).Empty() {
		t.Error("touching rects must not intersect")
	}
	if R(0, 0, 10, 10).Overlaps(R(10, 10, 1, 1)) {
		t.Error("Overlaps() = true for corner-adjacent rects")
	}
}

func TestRectInset(t *testing.T) {
	got := R(10, 10, 100, 50).Inset(1, 2, 3, 4)
	if got != R(14, 11, 94, 46) {
		t.Errorf("Inset() = %v", got)
	}
	if got := R(0, 0, 2, 2).Inset(5, 5, 5, 5); got.W != 0 || got.H != 0 {
		t.Errorf("Inset() over-shrunk = %v", got)
	}
}

func TestRectContains(t *testing.T) {
	r := R(1, 1, 2, 2)
	if !r.Contains(1, 1) || !r.Contains(2, 2) {
		t.Error("Contains() missed inner pixel")
	}
	if r.Contains(3, 1) || r.Contains(0, 1) {
		t.Error("Contains() accepted outer pixel")
	}
}

func TestClamp(t *testing.T) {
	if Clamp(-5, 0, 10) != 0 || Clamp(15, 0, 10) != 10 || Clamp(7, 0, 10) != 7 {
		t.Error("Clamp() out of range")
	}
}

func TestImageRoundTrip(t *testing.T) {
	r := R(3, 4, 5, 6)
	if got := FromImage(r.Image()); got != r {
		t.Errorf("FromImage(Image()) = %v, want %v", got, r)
	}
}
