// Copyright 2026 The epdcal Authors
// SPDX-License-Identifier: MIT

// Package icon provides 1-bit icon bitmaps looked up by key.
//
// Keys are slash-separated names such as "weather/rain". Set holds icons in
// memory; Dir decodes image files from a directory on first use.
package icon

import (
	"errors"
	"fmt"
	"image"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"

	"github.com/AmnesiaBeing/epdcal/internal/cache"
)

// ErrNotFound is returned when no icon exists for a key.
var ErrNotFound = errors.New("icon: not found")

// DefaultThreshold is the gray level below which a pixel becomes ink.
const DefaultThreshold = 128

// Bitmap is a 1-bit icon, row-major, most significant bit first, rows
// padded to whole bytes.
type Bitmap struct {
	Width, Height int
	Bits          []byte
}

// Provider returns the icon for a key.
type Provider interface {
	Icon(key string) (Bitmap, bool)
}

// FromImage converts img to a Bitmap. The image is scaled down with
// Lanczos resampling to fit within size x size (never up), converted to
// grayscale and thresholded. Transparent pixels stay paper. A size of zero
// keeps the original dimensions.
func FromImage(img image.Image, size int, threshold uint8) Bitmap {
	if size > 0 {
		img = imaging.Fit(img, size, size, imaging.Lanczos)
	}
	gray := imaging.Grayscale(img)
	b := gray.Bounds()

	bm := Bitmap{Width: b.Dx(), Height: b.Dy()}
	stride := (bm.Width + 7) / 8
	bm.Bits = make([]byte, stride*bm.Height)
	for y := 0; y < bm.Height; y++ {
		for x := 0; x < bm.Width; x++ {
			i := gray.PixOffset(b.Min.X+x, b.Min.Y+y)
			luma, alpha := gray.Pix[i], gray.Pix[i+3]
			if alpha >= 128 && luma < threshold {
				bm.Bits[y*stride+x/8] |= 0x80 >> (x % 8)
			}
		}
	}
	return bm
}

// Set is an in-memory Provider.
type Set struct {
	icons map[string]Bitmap
}

// NewSet returns an empty Set.
func NewSet() *Set {
	return &Set{icons: make(map[string]Bitmap)}
}

// Add stores bm under key.
func (s *Set) Add(key string, bm Bitmap) { s.icons[key] = bm }

// Icon implements Provider.
func (s *Set) Icon(key string) (Bitmap, bool) {
	bm, ok := s.icons[key]
	return bm, ok
}

// Len returns the number of icons.
func (s *Set) Len() int { return len(s.icons) }

var imageExts = map[string]bool{".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".bmp": true}

// LoadDir decodes every image below root into a Set. The key of a file is
// its slash-separated path relative to root without extension.
func LoadDir(root string, size int, threshold uint8) (*Set, error) {
	s := NewSet()
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !imageExts[strings.ToLower(filepath.Ext(p))] {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		img, err := imaging.Open(p)
		if err != nil {
			return fmt.Errorf("icon: decode %s: %w", rel, err)
		}
		key := strings.TrimSuffix(filepath.ToSlash(rel), filepath.Ext(rel))
		s.Add(key, FromImage(img, size, threshold))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("icon: load %s: %w", root, err)
	}
	return s, nil
}

// dirCacheSize bounds the decoded icons kept by a Dir.
const dirCacheSize = 128

// Dir is a Provider that decodes "<root>/<key>.png" on first lookup and
// keeps the result, including misses, in an LRU cache.
//
// Dir is safe for concurrent use.
type Dir struct {
	root      string
	size      int
	threshold uint8
	icons     *cache.Cache[string, dirEntry]
}

type dirEntry struct {
	bm Bitmap
	ok bool
}

// NewDir returns a Dir reading from root.
func NewDir(root string, size int, threshold uint8) *Dir {
	return &Dir{
		root:      root,
		size:      size,
		threshold: threshold,
		icons:     cache.New[string, dirEntry](dirCacheSize),
	}
}

// Icon implements Provider.
func (d *Dir) Icon(key string) (Bitmap, bool) {
	e, _ := d.icons.GetOrCreate(key, func() (dirEntry, error) {
		bm, err := d.load(key)
		return dirEntry{bm: bm, ok: err == nil}, nil
	})
	return e.bm, e.ok
}

func (d *Dir) load(key string) (Bitmap, error) {
	clean := path.Clean("/" + key)[1:]
	if clean == "" || clean != key {
		return Bitmap{}, fmt.Errorf("%w: bad key %q", ErrNotFound, key)
	}
	p := filepath.Join(d.root, filepath.FromSlash(clean)+".png")
	if _, err := os.Stat(p); err != nil {
		return Bitmap{}, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	img, err := imaging.Open(p)
	if err != nil {
		return Bitmap{}, fmt.Errorf("icon: decode %s: %w", key, err)
	}
	return FromImage(img, d.size, d.threshold), nil
}
