// Copyright 2026 The epdcal Authors
// SPDX-License-Identifier: MIT

package layout

import (
	"errors"
	"fmt"

	"github.com/AmnesiaBeing/epdcal/node"
)

// Sentinel errors for layout package. They abort the current render.
var (
	// ErrNestingTooDeep is returned when containers nest beyond node.MaxDepth.
	ErrNestingTooDeep = errors.New("layout: nesting too deep")

	// ErrInvalidNode is returned for a child id outside the pool.
	ErrInvalidNode = errors.New("layout: invalid node reference")

	// ErrInvalidWeight is returned for a relative child without a positive weight.
	ErrInvalidWeight = errors.New("layout: non-positive weight")
)

// Error attaches the failing node to a layout error.
type Error struct {
	Node node.ID
	Name string
	Err  error
}

func (e *Error) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("layout: node %d (%s): %v", e.Node, e.Name, e.Err)
	}
	return fmt.Sprintf("layout: node %d: %v", e.Node, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }
