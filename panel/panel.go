// Copyright 2026 The epdcal Authors
// SPDX-License-Identifier: MIT

// Package panel adapts physical and virtual e-ink displays to the render
// pipeline.
//
// A Panel is a pixel sink with a back buffer: the engine writes pixels,
// then asks the panel to push either the whole buffer or one rectangle of
// it to the glass. Pushes are not interruptible once started; a context is
// only consulted before the transfer begins.
package panel

import (
	"context"
	"errors"

	"github.com/AmnesiaBeing/epdcal/geom"
	"github.com/AmnesiaBeing/epdcal/palette"
	"github.com/AmnesiaBeing/epdcal/render"
)

// ErrClosed is returned by operations on a halted panel.
var ErrClosed = errors.New("panel: closed")

// Panel is a display the engine flushes frames to.
type Panel interface {
	render.Sink

	// Clear fills the back buffer with c without flushing.
	Clear(c palette.Color)

	// FlushFull pushes the whole back buffer with a full refresh.
	FlushFull(ctx context.Context) error

	// FlushPartial pushes rect of the back buffer with a partial refresh.
	FlushPartial(ctx context.Context, rect geom.Rect) error

	// Sleep puts the controller into its low-power state. The next flush
	// wakes it.
	Sleep() error
}

// opError wraps a transport failure as a render error.
func opError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &render.Error{Op: op, Err: err}
}
