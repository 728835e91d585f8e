// Copyright 2026 The epdcal Authors
// SPDX-License-Identifier: MIT

// Package layout walks a node pool and draws it.
//
// The traversal starts at the pool root with the screen as the parent
// slot. Every element resolves its declared position against its parent
// slot with [ResolveAnchor]. A container splits its inner extent (its
// rectangle minus the border) among relative children with [Distribute]
// and hands each one a slot along its direction; absolute children are
// positioned against the screen and take no share.
//
// Conditions are evaluated before anything is drawn; a hidden node hides
// its whole subtree. Text content and icon keys go through placeholder
// substitution. Unresolved variables degrade the output by default, and
// [WithSkipOnMissing] turns them into a skipped element instead.
//
// Structural problems abort the render with an [*Error]: nesting deeper
// than node.MaxDepth, dangling child references, non-positive weights,
// malformed placeholders and oversized content.
package layout
