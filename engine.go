// Copyright 2026 The epdcal Authors
// SPDX-License-Identifier: MIT

package epdcal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/AmnesiaBeing/epdcal/eval"
	"github.com/AmnesiaBeing/epdcal/geom"
	"github.com/AmnesiaBeing/epdcal/layout"
	"github.com/AmnesiaBeing/epdcal/node"
	"github.com/AmnesiaBeing/epdcal/palette"
	"github.com/AmnesiaBeing/epdcal/panel"
	"github.com/AmnesiaBeing/epdcal/refresh"
	"github.com/AmnesiaBeing/epdcal/render"
)

var (
	// ErrUnknownEvent is returned for an Event with an invalid kind.
	ErrUnknownEvent = errors.New("epdcal: unknown event")

	// ErrReadOnlyValues is returned for a component update when the value
	// provider does not implement eval.Updater.
	ErrReadOnlyValues = errors.New("epdcal: value provider is read-only")

	// ErrNoPanel is returned by New without a panel.
	ErrNoPanel = errors.New("epdcal: no panel")
)

// Engine owns the layout pool, the refresh scheduler and the panel. Events
// are processed one at a time to completion: render into a scratch frame,
// plan, copy to the panel, flush, settle.
//
// An Engine is not safe for concurrent use. Run is the single consumer;
// other goroutines talk to it through the event channel and the value
// provider.
type Engine struct {
	pool  *node.Pool
	panel panel.Panel
	res   layout.Resources
	opts  options
	log   *slog.Logger

	layout  *layout.Engine
	sched   *refresh.Scheduler
	scratch *render.Framebuffer
	shown   *render.Framebuffer

	// components maps a data component to the regions showing it.
	components map[string][]string
}

// New validates pool and builds an engine drawing to p.
//
// Without WithRegions, every named node whose content, icon key or
// condition has placeholders becomes a region with the bounds of a first
// dry render that shows every conditional node. Component updates mark the
// regions that show or gate on the component's values.
func New(pool *node.Pool, p panel.Panel, res layout.Resources, opts ...Option) (*Engine, error) {
	if err := node.Validate(pool); err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrNoPanel
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	log := o.logger
	if log == nil {
		log = packageLogger()
	}

	b := p.Bounds()
	e := &Engine{
		pool:       pool,
		panel:      p,
		res:        res,
		opts:       o,
		log:        log,
		scratch:    render.NewFramebuffer(b.W, b.H),
		shown:      render.NewFramebuffer(b.W, b.H),
		components: make(map[string][]string),
	}
	e.layout = layout.New(pool, res,
		layout.WithSkipOnMissing(o.skipOnMissing),
		layout.WithTextOptions(o.textOpts),
		layout.WithLogger(log),
	)
	e.sched = refresh.New(o.maxPartial,
		refresh.WithClock(o.now),
		refresh.WithFullInterval(o.fullInterval),
		refresh.WithLogger(log),
	)
	if err := e.registerRegions(); err != nil {
		return nil, err
	}
	return e, nil
}

// boundNode is a named node that shows placeholder values.
type boundNode struct {
	name       string
	bounds     geom.Rect
	components []string
}

// valuePaths returns the placeholder paths n reads from its content, icon
// key and condition.
func valuePaths(n node.Node) []string {
	var paths []string
	switch n := n.(type) {
	case *node.Text:
		paths, _ = eval.Paths(n.Content)
	case *node.Icon:
		paths, _ = eval.Paths(n.Key)
	}
	if p, ok := eval.ConditionPath(n.Meta().Condition); ok {
		paths = append(paths, p)
	}
	return paths
}

// registerRegions dry-renders the pool with every condition shown to find
// where value-bearing nodes land, then registers the scheduler regions and
// the component map. A node that draws nothing without its values falls
// back to the slot its container gave it.
func (e *Engine) registerRegions() error {
	if err := e.layout.RenderAll(e.scratch); err != nil {
		return fmt.Errorf("epdcal: initial layout: %w", err)
	}
	var bound []boundNode
	for _, n := range e.pool.Nodes {
		name := n.Meta().ID
		if name == "" {
			continue
		}
		paths := valuePaths(n)
		if len(paths) == 0 {
			continue
		}
		r, ok := e.layout.Bounds(name)
		if !ok {
			r, ok = e.layout.Slot(name)
		}
		if !ok || r.Empty() {
			e.log.Debug("bound node not reached by the initial layout", "name", name)
			continue
		}
		bn := boundNode{name: name, bounds: r}
		for _, p := range paths {
			c, _, _ := strings.Cut(p, ".")
			if !slices.Contains(bn.components, c) {
				bn.components = append(bn.components, c)
			}
		}
		bound = append(bound, bn)
	}

	link := func(component, region string) {
		if !slices.Contains(e.components[component], region) {
			e.components[component] = append(e.components[component], region)
		}
	}
	regions := e.opts.regions
	if len(regions) == 0 {
		for _, bn := range bound {
			regions = append(regions, Region{ID: bn.name, Bounds: bn.bounds})
			for _, c := range bn.components {
				link(c, bn.name)
			}
		}
	} else {
		for _, bn := range bound {
			for _, r := range regions {
				if r.Bounds.Overlaps(bn.bounds) {
					for _, c := range bn.components {
						link(c, r.ID)
					}
				}
			}
		}
	}
	for _, r := range regions {
		if err := e.sched.Register(r.ID, r.Bounds); err != nil {
			return fmt.Errorf("epdcal: %w", err)
		}
	}
	e.log.Info("regions registered", "count", len(regions), "derived", len(e.opts.regions) == 0)
	return nil
}

// Regions returns a snapshot of the scheduler regions.
func (e *Engine) Regions() []refresh.Region { return e.sched.Regions() }

// Components returns the regions marked by updates to component.
func (e *Engine) Components(component string) []string {
	return slices.Clone(e.components[component])
}

// Run processes events until ctx is done or events is closed. A failed
// event is logged and the loop continues; the panel keeps showing the last
// good frame.
func (e *Engine) Run(ctx context.Context, events <-chan Event) error {
	e.log.Info("engine started")
	defer e.log.Info("engine stopped")
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if err := e.Handle(ctx, ev); err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				e.log.Warn("event failed", "event", ev.String(), "err", err)
			}
		}
	}
}

// Handle runs one refresh cycle for ev.
//
// A render error aborts the cycle before the scheduler or the panel is
// touched. A flush error forces the next cycle to be a full refresh. The
// flush itself ignores cancellation of ctx; the settle wait does not.
func (e *Engine) Handle(ctx context.Context, ev Event) error {
	e.log.Debug("event", "event", ev.String())

	var marks []string
	switch ev.Kind {
	case EventFullRefresh:
	case EventPartialRefresh:
		if ev.Target != "" {
			if _, ok := e.sched.Region(ev.Target); !ok {
				return fmt.Errorf("epdcal: %w: %q", refresh.ErrUnknownRegion, ev.Target)
			}
			marks = append(marks, ev.Target)
		}
	case EventUpdateComponent:
		u, ok := e.res.Values.(eval.Updater)
		if !ok {
			return ErrReadOnlyValues
		}
		u.Update(ev.Target, ev.Data)
		marks = e.components[ev.Target]
	default:
		return fmt.Errorf("%w: %d", ErrUnknownEvent, ev.Kind)
	}

	e.scratch.Clear(palette.White)
	if err := e.layout.Render(e.scratch); err != nil {
		return err
	}

	if ev.Kind == EventFullRefresh {
		e.sched.RequestGlobal()
	}
	for _, id := range marks {
		if err := e.sched.MarkDirty(id); err != nil {
			return err
		}
	}
	diff, err := e.scratch.Diff(e.shown)
	if err != nil {
		return err
	}
	if !diff.Empty() && e.sched.MarkRect(diff) == 0 {
		e.log.Debug("change outside every region", "rect", diff.String())
		e.sched.RequestGlobal()
	}

	plan := e.sched.Plan()
	rect := e.scratch.Bounds()
	flushCtx := context.WithoutCancel(ctx)
	switch plan.Kind {
	case refresh.NoUpdate:
		return nil
	case refresh.Global:
		render.Blit(e.panel, e.scratch, rect)
		err = e.panel.FlushFull(flushCtx)
	case refresh.Partial:
		rect = plan.Rect.Union(diff).Intersect(rect)
		render.Blit(e.panel, e.scratch, rect)
		err = e.panel.FlushPartial(flushCtx, rect)
	}
	if err != nil {
		e.sched.RequestGlobal()
		return err
	}
	if err := e.shown.CopyFrom(e.scratch, rect); err != nil {
		return err
	}
	e.log.Debug("flushed", "plan", plan.String(), "rect", rect.String())

	if err := e.opts.wait(ctx, e.opts.settle); err != nil {
		return err
	}
	if e.opts.sleepAfter {
		if err := e.panel.Sleep(); err != nil {
			e.log.Warn("panel sleep failed", "err", err)
		}
	}
	return nil
}
