// Copyright 2026 The epdcal Authors
// SPDX-License-Identifier: MIT

package app

import (
	"github.com/AmnesiaBeing/epdcal/geom"
	"github.com/AmnesiaBeing/epdcal/node"
	"github.com/AmnesiaBeing/epdcal/palette"
)

// DemoPool returns the built-in layout used when no pool file is
// configured: a header with weekday and clock, the day of month, the ISO
// date, an optional weather icon with its description and an alert marker
// in the bottom-right corner.
func DemoPool() *node.Pool {
	var b node.Builder

	weekday := b.Add(&node.Text{Base: node.Base{ID: "weekday"}, Content: "{{date.weekday}}", Font: 2})
	clock := b.Add(&node.Text{Base: node.Base{ID: "clock"}, Content: "{{time.clock}}", Font: 2, Align: node.AlignRight})
	header := b.Add(&node.Container{
		Children: []node.ChildLayout{{Node: weekday, Weight: 1}, {Node: clock, Weight: 1}},
		Border:   node.Border{Bottom: 1},
	})

	day := b.Add(&node.Text{
		Base:    node.Base{ID: "day"},
		Content: "{{date.day}}",
		Font:    3,
		Align:   node.AlignCenter,
	})
	iso := b.Add(&node.Text{Base: node.Base{ID: "iso"}, Content: "{{date.iso}}", Font: 1})
	weatherIcon := b.Add(&node.Icon{
		Base:       node.Base{ID: "weather-icon", Condition: "{{weather.code}} != ''"},
		Key:        "weather/{{weather.code}}",
		Importance: palette.Warning,
	})
	weatherText := b.Add(&node.Text{
		Base:       node.Base{ID: "weather", Condition: "{{weather.code}} != ''"},
		Content:    "{{weather.code}}",
		Font:       1,
		Importance: palette.Warning,
	})
	side := b.Add(&node.Container{
		Direction: node.Vertical,
		Children: []node.ChildLayout{
			{Node: iso, Weight: 1},
			{Node: weatherIcon, Weight: 2},
			{Node: weatherText, Weight: 1},
		},
	})
	body := b.Add(&node.Container{
		Children: []node.ChildLayout{{Node: day, Weight: 1}, {Node: side, Weight: 1}},
	})

	alert := b.Add(&node.Rectangle{
		Base:       node.Base{ID: "alert", Condition: "{{alert.active}} == true"},
		Position:   geom.Pt(248, 120),
		Anchor:     node.BottomRight,
		Size:       geom.Size{W: 8, H: 8},
		Importance: palette.Critical,
		Filled:     true,
		Fill:       palette.Critical,
	})

	root := b.Add(&node.Container{
		Direction: node.Vertical,
		Children: []node.ChildLayout{
			{Node: header, Weight: 1},
			{Node: body, Weight: 3},
			{Node: alert, IsAbsolute: true},
		},
	})
	p, err := b.Build(root)
	if err != nil {
		panic("app: demo pool: " + err.Error())
	}
	return p
}
