// Copyright 2026 The epdcal Authors
// SPDX-License-Identifier: MIT

// Package node is the flattened layout graph consumed by the renderer.
//
// A compiled screen is a Pool: a flat slice of nodes addressed by small
// integer IDs. Containers refer to their children by ID, never by pointer,
// so the graph is trivially copyable, serializable and bounded in size.
// The pool is produced offline, loaded once at startup and never mutated.
//
// # Variants
//
// Node is a closed set of six variants:
//
//	*Container  children with weights, direction and an optional border
//	*Text       placeholder-bearing string drawn with a bitmap font
//	*Icon       bitmap looked up by key
//	*Line       straight segment
//	*Rectangle  outline and/or fill
//	*Circle     outline and/or fill
//
// # Loading
//
//	pool, err := node.Load("screen.epdl")
//	if err != nil {
//	    log.Fatal(err) // malformed pools prevent startup
//	}
//	root, _ := pool.Node(pool.Root)
package node
