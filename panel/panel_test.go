// Copyright 2026 The epdcal Authors
// SPDX-License-Identifier: MIT

package panel

import (
	"context"
	"errors"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/AmnesiaBeing/epdcal/geom"
	"github.com/AmnesiaBeing/epdcal/palette"
	"github.com/AmnesiaBeing/epdcal/render"
)

var (
	_ Panel = (*Memory)(nil)
	_ Panel = (*Waveshare)(nil)
)

func TestMemoryFlush(t *testing.T) {
	var hooked []Flush
	m := NewMemory(20, 10, WithFlushHook(func(f Flush) { hooked = append(hooked, f) }))
	ctx := context.Background()

	m.SetPixel(1, 1, palette.Red)
	m.SetPixel(15, 5, palette.Black)
	if m.Glass().Pixel(1, 1) != palette.White {
		t.Fatal("glass changed before flush")
	}

	if err := m.FlushPartial(ctx, geom.R(0, 0, 5, 5)); err != nil {
		t.Fatal(err)
	}
	g := m.Glass()
	if g.Pixel(1, 1) != palette.Red || g.Pixel(15, 5) != palette.White {
		t.Error("partial flush copied the wrong area")
	}

	if err := m.FlushFull(ctx); err != nil {
		t.Fatal(err)
	}
	if m.Glass().Pixel(15, 5) != palette.Black {
		t.Error("full flush did not copy everything")
	}

	want := []Flush{
		{Seq: 1, Rect: geom.R(0, 0, 5, 5)},
		{Seq: 2, Full: true, Rect: geom.R(0, 0, 20, 10)},
	}
	if diff := cmp.Diff(want, m.History()); diff != "" {
		t.Errorf("History() mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(want, hooked); diff != "" {
		t.Errorf("hook mismatch (-want +got):\n%s", diff)
	}
	if full, partial := m.Counts(); full != 1 || partial != 1 {
		t.Errorf("Counts() = %d, %d", full, partial)
	}
}

func TestMemorySleepAndCancel(t *testing.T) {
	m := NewMemory(4, 4)
	if err := m.Sleep(); err != nil {
		t.Fatal(err)
	}
	if !m.Sleeping() {
		t.Error("Sleeping() = false after Sleep")
	}
	if err := m.FlushFull(context.Background()); err != nil {
		t.Fatal(err)
	}
	if m.Sleeping() {
		t.Error("flush did not wake the panel")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := m.FlushFull(ctx)
	var re *render.Error
	if !errors.As(err, &re) || !errors.Is(err, context.Canceled) {
		t.Errorf("FlushFull(canceled) error = %v", err)
	}
	if len(m.History()) != 1 {
		t.Error("canceled flush was recorded")
	}
}

func TestMemorySnapshots(t *testing.T) {
	dir := t.TempDir()
	m := NewMemory(4, 4, WithSnapshotDir(dir))
	m.Clear(palette.Yellow)
	if err := m.FlushFull(context.Background()); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(dir, "frame-0001.png")); err != nil {
		t.Error(err)
	}

	bad := NewMemory(4, 4, WithSnapshotDir(filepath.Join(dir, "missing")))
	var re *render.Error
	if err := bad.FlushFull(context.Background()); !errors.As(err, &re) || re.Op != "snapshot" {
		t.Errorf("FlushFull() error = %v, want snapshot error", err)
	}
}

// fakeEPD records driver calls.
type fakeEPD struct {
	bounds image.Rectangle
	calls  []string
	draws  []image.Rectangle
	last   image.Image
	fail   error
}

func (f *fakeEPD) Init() error {
	f.calls = append(f.calls, "init")
	return f.fail
}

func (f *fakeEPD) Clear(color.Color) error {
	f.calls = append(f.calls, "clear")
	return nil
}

func (f *fakeEPD) Sleep() error {
	f.calls = append(f.calls, "sleep")
	return nil
}

func (f *fakeEPD) Halt() error {
	f.calls = append(f.calls, "halt")
	return nil
}

func (f *fakeEPD) Bounds() image.Rectangle { return f.bounds }

func (f *fakeEPD) Draw(r image.Rectangle, src image.Image, _ image.Point) error {
	f.calls = append(f.calls, "draw")
	f.draws = append(f.draws, r)
	f.last = src
	return nil
}

func white(img image.Image, x, y int) bool {
	r, _, _, _ := img.At(x, y).RGBA()
	return r > 0x8000
}

func TestWaveshare(t *testing.T) {
	dev := &fakeEPD{bounds: image.Rect(0, 0, 122, 250)}
	p, err := newWaveshare(dev, false)
	if err != nil {
		t.Fatal(err)
	}
	if p.Bounds() != geom.R(0, 0, 122, 250) {
		t.Errorf("Bounds() = %v", p.Bounds())
	}
	p.SetPixel(3, 4, palette.Red)
	p.SetPixel(5, 4, palette.Yellow)
	ctx := context.Background()
	if err := p.FlushFull(ctx); err != nil {
		t.Fatal(err)
	}
	if white(dev.last, 3, 4) || white(dev.last, 5, 4) || !white(dev.last, 4, 4) {
		t.Error("inks not mapped to black on white")
	}

	if err := p.Sleep(); err != nil {
		t.Fatal(err)
	}
	if err := p.FlushPartial(ctx, geom.R(100, 240, 50, 50)); err != nil {
		t.Fatal(err)
	}
	if err := p.FlushPartial(ctx, geom.R(500, 500, 5, 5)); err != nil {
		t.Fatal(err)
	}
	if err := p.Halt(); err != nil {
		t.Fatal(err)
	}
	if err := p.FlushFull(ctx); !errors.Is(err, ErrClosed) {
		t.Errorf("FlushFull after Halt error = %v", err)
	}

	wantCalls := []string{"init", "clear", "draw", "sleep", "init", "draw", "halt"}
	if diff := cmp.Diff(wantCalls, dev.calls); diff != "" {
		t.Errorf("driver calls mismatch (-want +got):\n%s", diff)
	}
	wantDraws := []image.Rectangle{image.Rect(0, 0, 122, 250), image.Rect(100, 240, 122, 250)}
	if diff := cmp.Diff(wantDraws, dev.draws); diff != "" {
		t.Errorf("draw rects mismatch (-want +got):\n%s", diff)
	}
}

func TestWaveshareRotated(t *testing.T) {
	dev := &fakeEPD{bounds: image.Rect(0, 0, 122, 250)}
	p, err := newWaveshare(dev, true)
	if err != nil {
		t.Fatal(err)
	}
	if p.Bounds() != geom.R(0, 0, 250, 122) {
		t.Fatalf("Bounds() = %v, want landscape", p.Bounds())
	}
	// Top-right of the landscape frame lands top-left on the controller.
	p.SetPixel(249, 0, palette.Black)
	if err := p.FlushPartial(context.Background(), geom.R(240, 0, 10, 5)); err != nil {
		t.Fatal(err)
	}
	if white(dev.last, 0, 0) {
		t.Error("pixel not rotated onto the controller origin")
	}
	if got, want := dev.draws[0], image.Rect(0, 0, 5, 10); got != want {
		t.Errorf("draw rect = %v, want %v", got, want)
	}
}

func TestWaveshareInitError(t *testing.T) {
	dev := &fakeEPD{bounds: image.Rect(0, 0, 8, 8), fail: errors.New("spi: no device")}
	_, err := newWaveshare(dev, false)
	var re *render.Error
	if !errors.As(err, &re) || re.Op != "init" {
		t.Errorf("newWaveshare() error = %v, want init error", err)
	}
}
