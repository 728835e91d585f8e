// Copyright 2026 The epdcal Authors
// SPDX-License-Identifier: MIT

package layout

import (
	"errors"
	"log/slog"

	"github.com/AmnesiaBeing/epdcal/eval"
	"github.com/AmnesiaBeing/epdcal/geom"
	"github.com/AmnesiaBeing/epdcal/icon"
	"github.com/AmnesiaBeing/epdcal/node"
	"github.com/AmnesiaBeing/epdcal/render"
	"github.com/AmnesiaBeing/epdcal/text"
)

// Resources are the external providers a render reads from.
type Resources struct {
	Values eval.Provider
	Fonts  text.Provider
	Icons  icon.Provider
}

// Option configures an Engine.
type Option func(*Engine)

// WithSkipOnMissing makes a Text or Icon node whose placeholders do not
// resolve be skipped instead of drawn with empty substitutions.
func WithSkipOnMissing(skip bool) Option {
	return func(e *Engine) { e.skipOnMissing = skip }
}

// WithTextOptions sets the shaper options.
func WithTextOptions(o text.Options) Option {
	return func(e *Engine) { e.shaper.Options = o }
}

// WithLogger sets the logger for recoverable problems.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// Engine renders a node pool. It is not safe for concurrent use.
type Engine struct {
	pool          *node.Pool
	res           Resources
	shaper        text.Shaper
	skipOnMissing bool
	log           *slog.Logger

	screen  geom.Rect
	root    *render.Painter
	bounds  map[string]geom.Rect
	slots   map[string]geom.Rect
	showAll bool
}

// New returns an Engine over pool. The pool must have passed node.Validate.
func New(pool *node.Pool, res Resources, opts ...Option) *Engine {
	e := &Engine{
		pool:   pool,
		res:    res,
		shaper: text.NewShaper(res.Fonts, text.DefaultOptions()),
		log:    slog.New(slog.DiscardHandler),
		bounds: make(map[string]geom.Rect),
		slots:  make(map[string]geom.Rect),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Pool returns the node pool.
func (e *Engine) Pool() *node.Pool { return e.pool }

// Render draws the pool into dst, starting at the root with the sink
// bounds as the parent rectangle.
//
// Missing variables and glyphs degrade the output and are logged. Invalid
// references, nesting beyond node.MaxDepth, bad weights and oversized or
// malformed content return an *Error and leave dst partially drawn; render
// into a scratch buffer to discard such frames.
func (e *Engine) Render(dst render.Sink) error {
	e.screen = dst.Bounds()
	e.root = render.NewPainter(dst)
	clear(e.bounds)
	clear(e.slots)
	return e.visit(e.root, e.pool.Root, e.screen, 0)
}

// RenderAll is Render with every condition treated as true. It finds where
// conditional nodes land before their values exist.
func (e *Engine) RenderAll(dst render.Sink) error {
	e.showAll = true
	defer func() { e.showAll = false }()
	return e.Render(dst)
}

// Bounds returns the rectangle computed for the named node by the last
// Render. Hidden and unnamed nodes have none.
func (e *Engine) Bounds(name string) (geom.Rect, bool) {
	r, ok := e.bounds[name]
	return r, ok
}

// Slot returns the rectangle the parent gave the named node in the last
// Render, clipped to the screen. Hidden nodes inside a drawn container
// have one; absolute children get the whole screen.
func (e *Engine) Slot(name string) (geom.Rect, bool) {
	r, ok := e.slots[name]
	return r, ok
}

func (e *Engine) visit(p *render.Painter, id node.ID, slot geom.Rect, depth int) error {
	if depth > node.MaxDepth {
		return &Error{Node: id, Err: ErrNestingTooDeep}
	}
	n, ok := e.pool.Node(id)
	if !ok {
		return &Error{Node: id, Err: ErrInvalidNode}
	}
	meta := n.Meta()
	if meta.ID != "" {
		e.slots[meta.ID] = slot.Intersect(e.screen)
	}
	if meta.Condition != "" && !e.showAll {
		visible, err := eval.Condition(meta.Condition, e.res.Values)
		if err != nil {
			e.log.Debug("condition treated as visible", "node", id, "name", meta.ID, "err", err)
		}
		if !visible {
			return nil
		}
	}

	var (
		r   geom.Rect
		err error
	)
	switch n := n.(type) {
	case *node.Container:
		r, err = e.container(p, id, n, slot, depth)
	case *node.Text:
		r, err = e.text(p, n, slot)
	case *node.Icon:
		r, err = e.icon(p, n, slot)
	case *node.Line:
		r = e.line(p, n, slot)
	case *node.Rectangle:
		r = e.rectangle(p, n, slot)
	case *node.Circle:
		r = e.circle(p, n, slot)
	}
	if err != nil {
		var le *Error
		if errors.As(err, &le) {
			return err
		}
		return &Error{Node: id, Name: meta.ID, Err: err}
	}
	if meta.ID != "" && !r.Empty() {
		e.bounds[meta.ID] = r.Intersect(e.screen)
	}
	return nil
}

func (e *Engine) container(p *render.Painter, id node.ID, c *node.Container, slot geom.Rect, depth int) (geom.Rect, error) {
	r := ResolveAnchor(c.Position, fill(c.Size, slot), c.Anchor, slot.Min(), e.screen)
	if !c.Border.IsZero() {
		p.Border(r, render.Edges{
			Top:    int(c.Border.Top),
			Right:  int(c.Border.Right),
			Bottom: int(c.Border.Bottom),
			Left:   int(c.Border.Left),
		}, c.Border.Importance.Color())
	}
	inner := r.Inset(int(c.Border.Top), int(c.Border.Right), int(c.Border.Bottom), int(c.Border.Left))

	var weights []float32
	for _, ch := range c.Children {
		if !ch.IsAbsolute {
			weights = append(weights, ch.Weight)
		}
	}
	extent := inner.W
	if c.Direction == node.Vertical {
		extent = inner.H
	}
	shares, err := Distribute(extent, weights)
	if err != nil {
		return r, &Error{Node: id, Name: c.ID, Err: err}
	}

	cp := p.WithClip(r)
	offset, rel := 0, 0
	for _, ch := range c.Children {
		if ch.IsAbsolute {
			if err := e.visit(e.root, ch.Node, e.screen, depth+1); err != nil {
				return r, err
			}
			continue
		}
		childSlot := geom.R(inner.X+offset, inner.Y, shares[rel], inner.H)
		if c.Direction == node.Vertical {
			childSlot = geom.R(inner.X, inner.Y+offset, inner.W, shares[rel])
		}
		offset += shares[rel]
		rel++
		if err := e.visit(cp.WithClip(childSlot), ch.Node, childSlot, depth+1); err != nil {
			return r, err
		}
	}
	return r, nil
}

// substitute resolves placeholders in s. skip reports that the node should
// not be drawn.
func (e *Engine) substitute(s string, n node.Node) (out string, skip bool, err error) {
	out, err = eval.Substitute(s, e.res.Values)
	if err == nil {
		return out, false, nil
	}
	if !errors.Is(err, eval.ErrVariableNotFound) {
		return "", true, err
	}
	if e.skipOnMissing {
		e.log.Warn("node skipped: missing variable", "name", n.Meta().ID, "err", err)
		return "", true, nil
	}
	e.log.Warn("missing variable rendered empty", "name", n.Meta().ID, "err", err)
	return out, false, nil
}

func (e *Engine) text(p *render.Painter, t *node.Text, slot geom.Rect) (geom.Rect, error) {
	content, skip, err := e.substitute(t.Content, t)
	if skip || err != nil {
		return geom.Rect{}, err
	}

	sh := e.shaper
	if t.MaxLines > 0 {
		sh.MaxLines = int(t.MaxLines)
	}
	size := text.FontSize(t.Font)
	width := t.Size.W
	if width == 0 {
		width = max(slot.W-t.Position.X, 0)
	}
	res := sh.Wrap(content, size, width)
	if err := res.Err(); err != nil {
		e.log.Debug("missing glyphs", "name", t.ID, "err", err)
	}

	box := geom.Size{W: width, H: t.Size.H}
	if box.H == 0 {
		box.H = sh.Height(len(res.Lines), size)
	}
	r := ResolveAnchor(t.Position, box, t.Anchor, slot.Min(), e.screen)
	sh.Draw(p.WithClip(r), res.Lines, r, size, t.Importance.Color(), text.Align(t.Align))
	return r, nil
}

func (e *Engine) icon(p *render.Painter, ic *node.Icon, slot geom.Rect) (geom.Rect, error) {
	key, skip, err := e.substitute(ic.Key, ic)
	if skip || err != nil {
		return geom.Rect{}, err
	}
	if e.res.Icons == nil {
		return geom.Rect{}, nil
	}
	bm, ok := e.res.Icons.Icon(key)
	if !ok {
		e.log.Warn("icon not found", "name", ic.ID, "key", key)
		return geom.Rect{}, nil
	}
	r := ResolveAnchor(ic.Position, geom.Size{W: bm.Width, H: bm.Height}, ic.Anchor, slot.Min(), e.screen)
	p.Bitmap(r.X, r.Y, bm.Width, bm.Height, bm.Bits, ic.Importance.Color())
	return r, nil
}

func (e *Engine) line(p *render.Painter, l *node.Line, slot geom.Rect) geom.Rect {
	clampPt := func(pt geom.Point) geom.Point {
		pt = slot.Min().Add(pt)
		return geom.Pt(
			geom.Clamp(pt.X, e.screen.X, e.screen.X+e.screen.W-1),
			geom.Clamp(pt.Y, e.screen.Y, e.screen.Y+e.screen.H-1),
		)
	}
	a, b := clampPt(l.Start), clampPt(l.End)
	p.Line(a, b, int(l.Thickness), l.Importance.Color())

	t := render.ClampThickness(int(l.Thickness))
	x0, y0 := min(a.X, b.X), min(a.Y, b.Y)
	return geom.R(x0, y0, max(a.X, b.X)-x0+1, max(a.Y, b.Y)-y0+1).Inset(-t/2, -t/2, -t/2, -t/2)
}

func (e *Engine) rectangle(p *render.Painter, rc *node.Rectangle, slot geom.Rect) geom.Rect {
	r := ResolveAnchor(rc.Position, fill(rc.Size, slot), rc.Anchor, slot.Min(), e.screen)
	if rc.Filled {
		p.FillRect(r, rc.Fill.Color())
	}
	if rc.Thickness > 0 {
		p.Rect(r, int(rc.Thickness), rc.Importance.Color())
	}
	return r
}

func (e *Engine) circle(p *render.Painter, c *node.Circle, slot geom.Rect) geom.Rect {
	radius := int(c.Radius)
	d := 2*radius + 1
	r := ResolveAnchor(c.Position, geom.Size{W: d, H: d}, c.Anchor, slot.Min(), e.screen)
	center := geom.Pt(r.X+radius, r.Y+radius)
	if c.Filled {
		p.FillCircle(center, radius, c.Fill.Color())
	}
	if c.Thickness > 0 {
		p.Circle(center, radius, int(c.Thickness), c.Importance.Color())
	}
	return r
}
