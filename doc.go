// Copyright 2026 The epdcal Authors
// SPDX-License-Identifier: MIT

// Package epdcal renders a declarative calendar layout onto a tri-color
// e-ink panel.
//
// # Overview
//
// A layout is a compiled [node.Pool]: containers, text, icons and simple
// shapes addressed by small integer ids. Text and icon keys carry
// {{component.field}} placeholders resolved against a value provider at
// every render. The [Engine] renders the pool into a scratch frame, asks the
// refresh scheduler whether the change needs a full or a partial panel
// refresh, and flushes the panel.
//
// # Quick Start
//
//	pool, _ := node.Load("calendar.pool")
//	values := eval.NewStore()
//	fonts, _ := text.NewGoRegular(map[text.FontSize]float64{1: 12, 2: 16})
//	p := panel.NewMemory(250, 122)
//
//	e, err := epdcal.New(pool, p, layout.Resources{Values: values, Fonts: fonts})
//	if err != nil {
//	    return err
//	}
//	events := make(chan epdcal.Event)
//	go e.Run(ctx, events)
//	events <- epdcal.UpdateComponent("date", map[string]eval.Value{"day": eval.Int(16)})
//
// # Refresh Policy
//
// The first frame and every [FullRefresh] event use a full refresh. Other
// changes are flushed as a partial refresh of the union of the dirty
// regions. Once any region has taken the configured number of partial
// refreshes, the next update is promoted to a full refresh to clear ghosting.
// A change outside every region, or a failed flush, also promotes the next
// update.
//
// # Coordinate System
//
//   - Origin (0,0) at top-left of the panel
//   - X increases right
//   - Y increases down
//   - Relative children are placed in slots of their parent container;
//     absolute children are placed against the screen
package epdcal

// Version is the current version of the library.
const Version = "0.1.0"
