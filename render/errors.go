// Copyright 2026 The epdcal Authors
// SPDX-License-Identifier: MIT

package render

import "errors"

// ErrSizeMismatch is returned when two framebuffers of different sizes are
// combined.
var ErrSizeMismatch = errors.New("render: framebuffer size mismatch")

// Error reports a failure of the pixel sink or panel transport. It aborts
// the refresh cycle it occurs in.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string {
	return "render: " + e.Op + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }
