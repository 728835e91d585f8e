// Copyright 2026 The epdcal Authors
// SPDX-License-Identifier: MIT

package icon

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

// checker returns a w x h image: black left half, white right half, with a
// transparent top row.
func checker(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := color.NRGBA{R: 255, G: 255, B: 255, A: 255}
			if x < w/2 {
				c = color.NRGBA{A: 255}
			}
			if y == 0 {
				c.A = 0
			}
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func bit(bm Bitmap, x, y int) bool {
	stride := (bm.Width + 7) / 8
	return bm.Bits[y*stride+x/8]&(0x80>>(x%8)) != 0
}

func TestFromImage(t *testing.T) {
	bm := FromImage(checker(10, 4), 0, DefaultThreshold)
	if bm.Width != 10 || bm.Height != 4 || len(bm.Bits) != 8 {
		t.Fatalf("FromImage() = %dx%d with %d bytes", bm.Width, bm.Height, len(bm.Bits))
	}
	for x := 0; x < 10; x++ {
		if bit(bm, x, 0) {
			t.Errorf("transparent pixel (%d,0) became ink", x)
		}
		if got, want := bit(bm, x, 2), x < 5; got != want {
			t.Errorf("pixel (%d,2) ink = %v, want %v", x, got, want)
		}
	}
}

func TestFromImageFits(t *testing.T) {
	bm := FromImage(checker(64, 32), 16, DefaultThreshold)
	if bm.Width != 16 || bm.Height != 8 {
		t.Errorf("FromImage(fit 16) = %dx%d, want 16x8", bm.Width, bm.Height)
	}
}

func writePNG(t *testing.T, p string, img image.Image) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatal(err)
	}
	f, err := os.Create(p)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}

func TestLoadDir(t *testing.T) {
	root := t.TempDir()
	writePNG(t, filepath.Join(root, "weather", "rain.png"), checker(8, 8))
	writePNG(t, filepath.Join(root, "battery.png"), checker(4, 4))
	if err := os.WriteFile(filepath.Join(root, "README.txt"), []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}

	s, err := LoadDir(root, 0, DefaultThreshold)
	if err != nil {
		t.Fatal(err)
	}
	if s.Len() != 2 {
		t.Errorf("Len() = %d, want 2", s.Len())
	}
	if bm, ok := s.Icon("weather/rain"); !ok || bm.Width != 8 {
		t.Errorf("Icon(weather/rain) = %+v, %v", bm, ok)
	}
	if _, ok := s.Icon("battery"); !ok {
		t.Error("Icon(battery) missing")
	}
}

func TestDir(t *testing.T) {
	root := t.TempDir()
	writePNG(t, filepath.Join(root, "weather", "sun.png"), checker(6, 6))

	d := NewDir(root, 0, DefaultThreshold)
	if bm, ok := d.Icon("weather/sun"); !ok || bm.Width != 6 {
		t.Fatalf("Icon(weather/sun) = %+v, %v", bm, ok)
	}
	for _, key := range []string{"weather/fog", "", "../weather/sun", "weather/../weather/sun"} {
		if _, ok := d.Icon(key); ok {
			t.Errorf("Icon(%q) found", key)
		}
	}
	if d.icons.Len() != 5 {
		t.Errorf("cached %d lookups, want 5", d.icons.Len())
	}
}
