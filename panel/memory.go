// Copyright 2026 The epdcal Authors
// SPDX-License-Identifier: MIT

package panel

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/AmnesiaBeing/epdcal/geom"
	"github.com/AmnesiaBeing/epdcal/palette"
	"github.com/AmnesiaBeing/epdcal/render"
)

// Flush describes one completed push to a Memory panel.
type Flush struct {
	Seq  int
	Full bool
	Rect geom.Rect
}

// Memory is a Panel backed by framebuffers. The glass is a second
// framebuffer that only changes on flush, so tests and previews see exactly
// what a physical panel would show.
//
// The back buffer is owned by the engine task; the glass and the flush
// history may be read from other goroutines.
type Memory struct {
	back *render.Framebuffer

	mu       sync.Mutex
	glass    *render.Framebuffer
	history  []Flush
	sleeping bool
	dir      string
	onFlush  func(Flush)
}

// MemoryOption configures a Memory panel.
type MemoryOption func(*Memory)

// WithSnapshotDir writes a PNG of the glass to dir after every flush.
func WithSnapshotDir(dir string) MemoryOption {
	return func(m *Memory) { m.dir = dir }
}

// WithFlushHook calls fn after every flush, outside the panel lock.
func WithFlushHook(fn func(Flush)) MemoryOption {
	return func(m *Memory) { m.onFlush = fn }
}

// NewMemory returns a blank width x height panel.
func NewMemory(width, height int, opts ...MemoryOption) *Memory {
	m := &Memory{
		back:  render.NewFramebuffer(width, height),
		glass: render.NewFramebuffer(width, height),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Bounds implements render.Sink.
func (m *Memory) Bounds() geom.Rect { return m.back.Bounds() }

// SetPixel implements render.Sink.
func (m *Memory) SetPixel(x, y int, c palette.Color) { m.back.SetPixel(x, y, c) }

// Clear implements Panel.
func (m *Memory) Clear(c palette.Color) { m.back.Clear(c) }

// FlushFull implements Panel.
func (m *Memory) FlushFull(ctx context.Context) error {
	return m.flush(ctx, true, m.back.Bounds())
}

// FlushPartial implements Panel.
func (m *Memory) FlushPartial(ctx context.Context, rect geom.Rect) error {
	return m.flush(ctx, false, rect.Intersect(m.back.Bounds()))
}

func (m *Memory) flush(ctx context.Context, full bool, rect geom.Rect) error {
	if err := ctx.Err(); err != nil {
		return opError("flush", err)
	}
	m.mu.Lock()
	if err := m.glass.CopyFrom(m.back, rect); err != nil {
		m.mu.Unlock()
		return opError("flush", err)
	}
	f := Flush{Seq: len(m.history) + 1, Full: full, Rect: rect}
	m.history = append(m.history, f)
	m.sleeping = false
	var err error
	if m.dir != "" {
		err = m.glass.SavePNG(filepath.Join(m.dir, fmt.Sprintf("frame-%04d.png", f.Seq)))
	}
	m.mu.Unlock()

	if err != nil {
		return opError("snapshot", err)
	}
	if m.onFlush != nil {
		m.onFlush(f)
	}
	return nil
}

// Sleep implements Panel.
func (m *Memory) Sleep() error {
	m.mu.Lock()
	m.sleeping = true
	m.mu.Unlock()
	return nil
}

// Sleeping reports whether Sleep was called since the last flush.
func (m *Memory) Sleeping() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sleeping
}

// Glass returns a copy of what the panel currently shows.
func (m *Memory) Glass() *render.Framebuffer {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := render.NewFramebuffer(m.glass.Width(), m.glass.Height())
	_ = out.CopyFrom(m.glass, m.glass.Bounds())
	return out
}

// History returns every flush so far, oldest first.
func (m *Memory) History() []Flush {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Flush(nil), m.history...)
}

// Counts returns the number of full and partial flushes.
func (m *Memory) Counts() (full, partial int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, f := range m.history {
		if f.Full {
			full++
		} else {
			partial++
		}
	}
	return full, partial
}
