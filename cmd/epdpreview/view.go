// Copyright 2026 The epdcal Authors
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/AmnesiaBeing/epdcal"
	"github.com/AmnesiaBeing/epdcal/eval"
	"github.com/AmnesiaBeing/epdcal/palette"
	"github.com/AmnesiaBeing/epdcal/panel"
	"github.com/AmnesiaBeing/epdcal/render"
)

const upperHalf = "▀"

var (
	frameStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	helpText    = "f full · p partial · w weather · a alert · q quit"
)

// weatherCodes cycles through the demo weather states.
var weatherCodes = []string{"", "sun", "rain", "snow"}

// flushMsg reports a panel flush.
type flushMsg panel.Flush

// sentMsg reports the result of queueing an event.
type sentMsg struct {
	ev  epdcal.Event
	err error
}

// model is the preview TUI: the panel glass drawn with half blocks plus a
// status line.
type model struct {
	ctx    context.Context
	mem    *panel.Memory
	events chan<- epdcal.Event

	frame   string
	status  string
	err     error
	weather int
	alert   bool
}

func newModel(ctx context.Context, mem *panel.Memory, events chan<- epdcal.Event) model {
	return model{
		ctx:    ctx,
		mem:    mem,
		events: events,
		frame:  halfBlocks(mem.Glass()),
		status: "waiting for the first frame",
	}
}

// Init implements tea.Model.
func (m model) Init() tea.Cmd { return nil }

// Update implements tea.Model.
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case flushMsg:
		m.frame = halfBlocks(m.mem.Glass())
		kind := "partial"
		if msg.Full {
			kind = "full"
		}
		full, partial := m.mem.Counts()
		m.status = fmt.Sprintf("#%d %s %v · %d full, %d partial", msg.Seq, kind, msg.Rect, full, partial)
		m.err = nil
	case sentMsg:
		m.err = msg.err
	}
	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "f":
		return m, m.send(epdcal.FullRefresh())
	case "p":
		return m, m.send(epdcal.PartialRefresh(""))
	case "w":
		m.weather = (m.weather + 1) % len(weatherCodes)
		return m, m.send(epdcal.UpdateComponent("weather", map[string]eval.Value{
			"code": eval.String(weatherCodes[m.weather]),
		}))
	case "a":
		m.alert = !m.alert
		return m, m.send(epdcal.UpdateComponent("alert", map[string]eval.Value{
			"active": eval.Bool(m.alert),
		}))
	}
	return m, nil
}

// send queues ev for the engine without blocking the UI loop.
func (m model) send(ev epdcal.Event) tea.Cmd {
	ctx, events := m.ctx, m.events
	return func() tea.Msg {
		select {
		case events <- ev:
			return sentMsg{ev: ev}
		case <-ctx.Done():
			return sentMsg{ev: ev, err: ctx.Err()}
		}
	}
}

// View implements tea.Model.
func (m model) View() string {
	status := statusStyle.Render(m.status)
	if m.err != nil {
		status = errorStyle.Render(m.err.Error())
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		frameStyle.Render(m.frame),
		status,
		statusStyle.Render(helpText),
	)
}

// cellStyles holds one style per (top, bottom) ink pair.
var cellStyles = func() (s [palette.NumColors][palette.NumColors]lipgloss.Style) {
	for top := range palette.NumColors {
		for bottom := range palette.NumColors {
			s[top][bottom] = lipgloss.NewStyle().
				Foreground(inkColor(palette.Color(top))).
				Background(inkColor(palette.Color(bottom)))
		}
	}
	return s
}()

func inkColor(c palette.Color) lipgloss.Color {
	rgba := c.RGBA()
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", rgba.R, rgba.G, rgba.B))
}

// halfBlocks draws fb two pixel rows per text line: the upper half block
// takes the top pixel as foreground and the bottom pixel as background.
// Runs of equal cells share one styled span.
func halfBlocks(fb *render.Framebuffer) string {
	var b strings.Builder
	for y := 0; y < fb.Height(); y += 2 {
		if y > 0 {
			b.WriteByte('\n')
		}
		run, runTop, runBottom := 0, palette.White, palette.White
		flush := func() {
			if run > 0 {
				b.WriteString(cellStyles[runTop][runBottom].Render(strings.Repeat(upperHalf, run)))
			}
		}
		for x := 0; x < fb.Width(); x++ {
			top, bottom := fb.Pixel(x, y), palette.White
			if y+1 < fb.Height() {
				bottom = fb.Pixel(x, y+1)
			}
			if run > 0 && (top != runTop || bottom != runBottom) {
				flush()
				run = 0
			}
			runTop, runBottom = top, bottom
			run++
		}
		flush()
	}
	return b.String()
}
