// Copyright 2026 The epdcal Authors
// SPDX-License-Identifier: MIT

// Package cache provides a generic thread-safe LRU cache.
//
// It backs the rasterized glyph cache of text.FaceFont and the decoded
// icon cache of icon.Dir:
//
//	c := cache.New[string, int](100)
//	c.Set("key", 42)
//	value, ok := c.Get("key")
package cache
