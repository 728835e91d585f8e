// Copyright 2026 The epdcal Authors
// SPDX-License-Identifier: MIT

package node

import "errors"

// Sentinel errors for the node package.
var (
	// ErrInvalidPool is wrapped by every structural validation failure.
	ErrInvalidPool = errors.New("node: invalid pool")

	// ErrBadMagic is returned when decoding data that is not a compiled pool.
	ErrBadMagic = errors.New("node: bad magic")

	// ErrUnsupportedVersion is returned for pools written by a newer compiler.
	ErrUnsupportedVersion = errors.New("node: unsupported pool version")

	// ErrCorrupt is returned when encoded data ends early or holds
	// out-of-range values.
	ErrCorrupt = errors.New("node: corrupt pool data")
)
