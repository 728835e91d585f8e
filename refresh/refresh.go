// Copyright 2026 The epdcal Authors
// SPDX-License-Identifier: MIT

// Package refresh decides how much of an e-ink panel to redraw.
//
// A Scheduler tracks named screen regions and their dirty state. It starts
// in global mode so the first frame is a full paint; after that it plans
// partial updates bounded by the union of dirty regions until one region
// has been partially refreshed too often, at which point it forces a full
// repaint and starts counting again.
package refresh

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/AmnesiaBeing/epdcal/geom"
)

var (
	// ErrUnknownRegion is returned for a region id that was never registered.
	ErrUnknownRegion = errors.New("refresh: unknown region")

	// ErrDuplicateRegion is returned when an id is registered twice.
	ErrDuplicateRegion = errors.New("refresh: duplicate region")

	// ErrEmptyRegion is returned when a region has no area.
	ErrEmptyRegion = errors.New("refresh: empty region")
)

// PlanKind is the decision of one refresh cycle.
type PlanKind uint8

const (
	// NoUpdate leaves the panel untouched.
	NoUpdate PlanKind = iota
	// Global repaints the whole panel.
	Global
	// Partial repaints Plan.Rect only.
	Partial
)

// String returns the plan kind name.
func (k PlanKind) String() string {
	switch k {
	case NoUpdate:
		return "NoUpdate"
	case Global:
		return "Global"
	case Partial:
		return "Partial"
	default:
		return "Unknown"
	}
}

// Plan is the outcome of Scheduler.Plan. Rect is set for Partial plans.
type Plan struct {
	Kind PlanKind
	Rect geom.Rect
}

func (p Plan) String() string {
	if p.Kind == Partial {
		return fmt.Sprintf("Partial%v", p.Rect)
	}
	return p.Kind.String()
}

// Region is a named screen rectangle tracked independently of the layout.
type Region struct {
	ID                  string
	Bounds              geom.Rect
	LastUpdate          time.Time // last MarkDirty
	PartialRefreshCount int
	Dirty               bool
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) {
		if now != nil {
			s.now = now
		}
	}
}

// WithFullInterval forces a global cycle once d has passed since the last
// one, regardless of partial counters. Zero disables the timer.
func WithFullInterval(d time.Duration) Option {
	return func(s *Scheduler) { s.fullInterval = d }
}

// WithLogger sets the logger plans are reported to at debug level.
func WithLogger(l *slog.Logger) Option {
	return func(s *Scheduler) {
		if l != nil {
			s.log = l
		}
	}
}

// Scheduler is the refresh state machine. It is not safe for concurrent
// use; the engine task owns it.
type Scheduler struct {
	maxPartial   int
	fullInterval time.Duration
	now          func() time.Time
	log          *slog.Logger

	regions []*Region
	index   map[string]int

	global     bool
	lastGlobal time.Time
}

// New returns a Scheduler in global mode. A region whose partial counter
// reaches maxPartial forces the next plan to be Global; maxPartial <= 0
// makes every plan Global.
func New(maxPartial int, opts ...Option) *Scheduler {
	s := &Scheduler{
		maxPartial: maxPartial,
		now:        time.Now,
		log:        slog.New(slog.DiscardHandler),
		index:      make(map[string]int),
		global:     true,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register adds a region. Regions are registered once at startup.
func (s *Scheduler) Register(id string, bounds geom.Rect) error {
	if bounds.Empty() {
		return fmt.Errorf("%w: %q %v", ErrEmptyRegion, id, bounds)
	}
	if _, ok := s.index[id]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateRegion, id)
	}
	s.index[id] = len(s.regions)
	s.regions = append(s.regions, &Region{ID: id, Bounds: bounds})
	return nil
}

// MarkDirty flags a region for the next plan and records the time.
// Marking a dirty region again only updates the timestamp.
func (s *Scheduler) MarkDirty(id string) error {
	i, ok := s.index[id]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownRegion, id)
	}
	r := s.regions[i]
	r.Dirty = true
	r.LastUpdate = s.now()
	return nil
}

// MarkRect marks every region overlapping r and returns how many matched.
func (s *Scheduler) MarkRect(r geom.Rect) int {
	n := 0
	for _, reg := range s.regions {
		if reg.Bounds.Overlaps(r) {
			reg.Dirty = true
			reg.LastUpdate = s.now()
			n++
		}
	}
	return n
}

// RequestGlobal makes the next plan Global.
func (s *Scheduler) RequestGlobal() {
	s.global = true
}

// Pending reports whether the next plan would do anything.
func (s *Scheduler) Pending() bool {
	if s.global || s.fullDue() || s.exhausted() {
		return true
	}
	for _, r := range s.regions {
		if r.Dirty {
			return true
		}
	}
	return false
}

// Regions returns a copy of the region table in registration order.
func (s *Scheduler) Regions() []Region {
	out := make([]Region, len(s.regions))
	for i, r := range s.regions {
		out[i] = *r
	}
	return out
}

// Region returns a copy of one region.
func (s *Scheduler) Region(id string) (Region, bool) {
	i, ok := s.index[id]
	if !ok {
		return Region{}, false
	}
	return *s.regions[i], true
}

// Plan advances the state machine by one cycle.
//
// In global mode, or when any region's partial counter has reached the
// maximum, every dirty flag and counter is reset and the plan is Global.
// Otherwise no dirty region yields NoUpdate, and dirty regions yield a
// Partial plan over the union of their bounds; their flags are cleared and
// their counters incremented.
func (s *Scheduler) Plan() Plan {
	p := s.plan()
	s.log.Debug("refresh plan", "plan", p.String())
	return p
}

func (s *Scheduler) plan() Plan {
	if s.global || s.fullDue() || s.exhausted() {
		for _, r := range s.regions {
			r.Dirty = false
			r.PartialRefreshCount = 0
		}
		s.global = false
		s.lastGlobal = s.now()
		return Plan{Kind: Global}
	}

	var (
		rect  geom.Rect
		dirty bool
	)
	for _, r := range s.regions {
		if !r.Dirty {
			continue
		}
		rect = rect.Union(r.Bounds)
		r.Dirty = false
		r.PartialRefreshCount++
		dirty = true
	}
	if !dirty {
		return Plan{Kind: NoUpdate}
	}
	return Plan{Kind: Partial, Rect: rect}
}

func (s *Scheduler) exhausted() bool {
	if s.maxPartial <= 0 {
		return true
	}
	return slices.ContainsFunc(s.regions, func(r *Region) bool {
		return r.PartialRefreshCount >= s.maxPartial
	})
}

func (s *Scheduler) fullDue() bool {
	return s.fullInterval > 0 && !s.lastGlobal.IsZero() && s.now().Sub(s.lastGlobal) >= s.fullInterval
}
