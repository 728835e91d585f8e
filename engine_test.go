// Copyright 2026 The epdcal Authors
// SPDX-License-Identifier: MIT

package epdcal

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/AmnesiaBeing/epdcal/eval"
	"github.com/AmnesiaBeing/epdcal/geom"
	"github.com/AmnesiaBeing/epdcal/layout"
	"github.com/AmnesiaBeing/epdcal/node"
	"github.com/AmnesiaBeing/epdcal/palette"
	"github.com/AmnesiaBeing/epdcal/panel"
	"github.com/AmnesiaBeing/epdcal/refresh"
	"github.com/AmnesiaBeing/epdcal/text"
)

// blockFont draws every printable ASCII glyph as a solid 4x6 block with
// advance 5 and line height 8.
func blockFont(t *testing.T) *text.BitmapFont {
	t.Helper()
	f := text.NewBitmapFont()
	f.AddSize(1, text.LineMetrics{Ascent: 6, Height: 8})
	bits := []byte{0xF0, 0xF0, 0xF0, 0xF0, 0xF0, 0xF0}
	for r := rune(0x21); r < 0x7f; r++ {
		m := text.GlyphMetrics{Width: 4, Height: 6, BearingY: 6, AdvanceX: 5}
		if err := f.AddGlyph(1, r, m, bits); err != nil {
			t.Fatal(err)
		}
	}
	return f
}

// calendarPool lays out two text fields side by side on a 100x40 screen:
// "day" at (0,0,50,8) and "weather" at (50,0,50,8).
func calendarPool(t *testing.T) *node.Pool {
	t.Helper()
	var b node.Builder
	day := b.Add(&node.Text{Base: node.Base{ID: "day"}, Content: "{{date.day}}", Font: 1})
	weather := b.Add(&node.Text{Base: node.Base{ID: "weather"}, Content: "{{weather.code}}", Font: 1, Importance: palette.Warning})
	root := b.Add(&node.Container{Children: []node.ChildLayout{
		{Node: day, Weight: 1},
		{Node: weather, Weight: 1},
	}})
	p, err := b.Build(root)
	if err != nil {
		t.Fatal(err)
	}
	return p
}

type fixture struct {
	engine *Engine
	panel  *panel.Memory
	values *eval.Store
	waits  []time.Duration
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	f := &fixture{panel: panel.NewMemory(100, 40), values: eval.NewStore()}
	f.values.Set("date.day", eval.Int(16))
	f.values.Set("weather.code", eval.String("rain"))
	wait := func(_ context.Context, d time.Duration) error {
		f.waits = append(f.waits, d)
		return nil
	}
	opts = append([]Option{withClock(time.Now, wait)}, opts...)
	e, err := New(calendarPool(t), f.panel, layout.Resources{Values: f.values, Fonts: blockFont(t)}, opts...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	f.engine = e
	return f
}

func (f *fixture) handle(t *testing.T, ev Event) {
	t.Helper()
	if err := f.engine.Handle(context.Background(), ev); err != nil {
		t.Fatalf("Handle(%v) error = %v", ev, err)
	}
}

func (f *fixture) update(t *testing.T, component, key string, v eval.Value) {
	t.Helper()
	f.handle(t, UpdateComponent(component, map[string]eval.Value{key: v}))
}

func kinds(h []panel.Flush) string {
	var b strings.Builder
	for _, f := range h {
		if f.Full {
			b.WriteByte('F')
		} else {
			b.WriteByte('P')
		}
	}
	return b.String()
}

func TestDerivedRegions(t *testing.T) {
	f := newFixture(t)
	var got []refresh.Region
	for _, r := range f.engine.Regions() {
		got = append(got, refresh.Region{ID: r.ID, Bounds: r.Bounds})
	}
	want := []refresh.Region{
		{ID: "day", Bounds: geom.R(0, 0, 50, 8)},
		{ID: "weather", Bounds: geom.R(50, 0, 50, 8)},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Regions() mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"day"}, f.engine.Components("date")); diff != "" {
		t.Errorf("Components(date) mismatch (-want +got):\n%s", diff)
	}
}

func TestConditionalRegions(t *testing.T) {
	var b node.Builder
	day := b.Add(&node.Text{Base: node.Base{ID: "day"}, Content: "{{date.day}}", Font: 1})
	note := b.Add(&node.Text{Base: node.Base{ID: "note", Condition: "{{note.text}} != ''"}, Content: "{{note.text}}", Font: 1})
	warn := b.Add(&node.Rectangle{
		Base:     node.Base{ID: "warn", Condition: "{{alert.active}} == true"},
		Position: geom.Pt(90, 30),
		Size:     geom.Size{W: 4, H: 4},
		Filled:   true,
		Fill:     palette.Critical,
	})
	root := b.Add(&node.Container{Children: []node.ChildLayout{
		{Node: day, Weight: 1},
		{Node: note, Weight: 1},
		{Node: warn, IsAbsolute: true},
	}})
	pool, err := b.Build(root)
	if err != nil {
		t.Fatal(err)
	}
	values := eval.NewStore()
	values.Set("date.day", eval.Int(16))
	mem := panel.NewMemory(100, 40)
	e, err := New(pool, mem, layout.Resources{Values: values, Fonts: blockFont(t)}, WithSettleDelay(0))
	if err != nil {
		t.Fatal(err)
	}

	var got []refresh.Region
	for _, r := range e.Regions() {
		got = append(got, refresh.Region{ID: r.ID, Bounds: r.Bounds})
	}
	want := []refresh.Region{
		{ID: "day", Bounds: geom.R(0, 0, 50, 8)},
		{ID: "note", Bounds: geom.R(50, 0, 50, 8)},
		{ID: "warn", Bounds: geom.R(90, 30, 4, 4)},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Regions() mismatch (-want +got):\n%s", diff)
	}

	ctx := context.Background()
	for _, ev := range []Event{
		FullRefresh(),
		UpdateComponent("note", map[string]eval.Value{"text": eval.String("hi")}),
		UpdateComponent("alert", map[string]eval.Value{"active": eval.Bool(true)}),
	} {
		if err := e.Handle(ctx, ev); err != nil {
			t.Fatalf("Handle(%v) error = %v", ev, err)
		}
	}
	h := mem.History()
	if kinds(h) != "FPP" {
		t.Fatalf("flushes = %s, want FPP", kinds(h))
	}
	if h[1].Rect != geom.R(50, 0, 50, 8) || h[2].Rect != geom.R(90, 30, 4, 4) {
		t.Errorf("partial rects = %v, %v", h[1].Rect, h[2].Rect)
	}
	if mem.Glass().Pixel(91, 31) != palette.Red {
		t.Error("warning marker not shown")
	}
}

func TestExplicitRegions(t *testing.T) {
	f := newFixture(t, WithRegions(
		Region{ID: "top", Bounds: geom.R(0, 0, 100, 20)},
		Region{ID: "bottom", Bounds: geom.R(0, 20, 100, 20)},
	))
	if n := len(f.engine.Regions()); n != 2 {
		t.Fatalf("len(Regions()) = %d, want 2", n)
	}
	for _, c := range []string{"date", "weather"} {
		if diff := cmp.Diff([]string{"top"}, f.engine.Components(c)); diff != "" {
			t.Errorf("Components(%s) mismatch (-want +got):\n%s", c, diff)
		}
	}
}

func TestFirstFrameIsFull(t *testing.T) {
	f := newFixture(t, WithSettleDelay(time.Second))
	f.handle(t, PartialRefresh(""))

	want := []panel.Flush{{Seq: 1, Full: true, Rect: geom.R(0, 0, 100, 40)}}
	if diff := cmp.Diff(want, f.panel.History()); diff != "" {
		t.Fatalf("History() mismatch (-want +got):\n%s", diff)
	}
	g := f.panel.Glass()
	if g.Pixel(0, 0) != palette.Black || g.Pixel(50, 0) != palette.Yellow || g.Pixel(0, 20) != palette.White {
		t.Error("glass does not show the rendered frame")
	}
	if diff := cmp.Diff([]time.Duration{time.Second}, f.waits); diff != "" {
		t.Errorf("settle waits mismatch (-want +got):\n%s", diff)
	}
}

func TestComponentUpdateIsPartial(t *testing.T) {
	f := newFixture(t)
	f.handle(t, FullRefresh())
	f.update(t, "date", "day", eval.Int(5))

	h := f.panel.History()
	if kinds(h) != "FP" {
		t.Fatalf("flushes = %s, want FP", kinds(h))
	}
	if h[1].Rect != geom.R(0, 0, 50, 8) {
		t.Errorf("partial rect = %v, want the day region", h[1].Rect)
	}
	if got := f.panel.Glass().Pixel(5, 0); got != palette.White {
		t.Errorf("second digit still shown: %v", got)
	}
	if v, _ := f.values.Value("date.day"); v.Int() != 5 {
		t.Errorf("store not updated: %v", v)
	}
}

func TestNoChangeNoUpdate(t *testing.T) {
	f := newFixture(t)
	f.handle(t, FullRefresh())
	f.handle(t, PartialRefresh(""))
	if kinds(f.panel.History()) != "F" {
		t.Errorf("flushes = %s, want F", kinds(f.panel.History()))
	}
	if len(f.waits) != 1 {
		t.Errorf("settled %d times, want 1", len(f.waits))
	}

	// Naming a region forces it into a partial update.
	f.handle(t, PartialRefresh("weather"))
	h := f.panel.History()
	if kinds(h) != "FP" || h[1].Rect != geom.R(50, 0, 50, 8) {
		t.Errorf("forced region flush = %+v", h)
	}
}

func TestHysteresisForcesFull(t *testing.T) {
	f := newFixture(t, WithMaxPartialRefreshes(2))
	f.handle(t, FullRefresh())
	for _, day := range []int64{5, 16, 5, 16} {
		f.update(t, "date", "day", eval.Int(day))
	}
	if got := kinds(f.panel.History()); got != "FPPFP" {
		t.Errorf("flushes = %s, want FPPFP", got)
	}
}

func TestRenderErrorAbortsCycle(t *testing.T) {
	f := newFixture(t)
	f.handle(t, FullRefresh())
	before := f.engine.Regions()

	long := eval.String(strings.Repeat("x", eval.MaxContentLen+1))
	err := f.engine.Handle(context.Background(), UpdateComponent("weather", map[string]eval.Value{"code": long}))
	if !errors.Is(err, eval.ErrContentTooLong) {
		t.Fatalf("Handle() error = %v, want ErrContentTooLong", err)
	}
	var le *layout.Error
	if !errors.As(err, &le) || le.Name != "weather" {
		t.Errorf("error does not carry the node: %v", err)
	}
	if kinds(f.panel.History()) != "F" {
		t.Errorf("panel touched by an aborted cycle: %s", kinds(f.panel.History()))
	}
	if diff := cmp.Diff(before, f.engine.Regions()); diff != "" {
		t.Errorf("scheduler touched by an aborted cycle (-before +after):\n%s", diff)
	}
	if f.panel.Glass().Pixel(50, 0) != palette.Yellow {
		t.Error("previous image not kept")
	}

	f.update(t, "weather", "code", eval.String("sun"))
	if got := kinds(f.panel.History()); got != "FP" {
		t.Errorf("flushes after recovery = %s, want FP", got)
	}
}

// flakyPanel fails the next partial flush.
type flakyPanel struct {
	*panel.Memory
	fail bool
}

func (p *flakyPanel) FlushPartial(ctx context.Context, r geom.Rect) error {
	if p.fail {
		p.fail = false
		return errors.New("spi: timeout")
	}
	return p.Memory.FlushPartial(ctx, r)
}

func TestFlushErrorForcesFull(t *testing.T) {
	values := eval.NewStore()
	values.Set("date.day", eval.Int(16))
	values.Set("weather.code", eval.String("rain"))
	p := &flakyPanel{Memory: panel.NewMemory(100, 40)}
	e, err := New(calendarPool(t), p, layout.Resources{Values: values, Fonts: blockFont(t)},
		WithSettleDelay(0), WithSleepAfterFlush(true))
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	if err := e.Handle(ctx, FullRefresh()); err != nil {
		t.Fatal(err)
	}
	if !p.Sleeping() {
		t.Error("panel not put to sleep after flush")
	}

	p.fail = true
	if err := e.Handle(ctx, UpdateComponent("date", map[string]eval.Value{"day": eval.Int(5)})); err == nil {
		t.Fatal("Handle() error = nil, want flush failure")
	}
	if err := e.Handle(ctx, PartialRefresh("")); err != nil {
		t.Fatal(err)
	}
	if got := kinds(p.History()); got != "FF" {
		t.Errorf("flushes = %s, want FF", got)
	}
}

func TestHandleErrors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	if err := f.engine.Handle(ctx, PartialRefresh("clock")); !errors.Is(err, refresh.ErrUnknownRegion) {
		t.Errorf("Handle(unknown region) error = %v", err)
	}
	if err := f.engine.Handle(ctx, Event{}); !errors.Is(err, ErrUnknownEvent) {
		t.Errorf("Handle(zero event) error = %v", err)
	}

	ro := eval.ProviderFunc(func(path string) (eval.Value, error) { return eval.String(path), nil })
	e, err := New(calendarPool(t), panel.NewMemory(100, 40), layout.Resources{Values: ro, Fonts: blockFont(t)})
	if err != nil {
		t.Fatal(err)
	}
	if err := e.Handle(ctx, UpdateComponent("date", nil)); !errors.Is(err, ErrReadOnlyValues) {
		t.Errorf("Handle(update read-only) error = %v", err)
	}
}

func TestNewErrors(t *testing.T) {
	res := layout.Resources{Values: eval.NewStore(), Fonts: blockFont(t)}
	if _, err := New(&node.Pool{}, panel.NewMemory(10, 10), res); !errors.Is(err, node.ErrInvalidPool) {
		t.Errorf("New(empty pool) error = %v", err)
	}
	if _, err := New(calendarPool(t), nil, res); !errors.Is(err, ErrNoPanel) {
		t.Errorf("New(nil panel) error = %v", err)
	}
	_, err := New(calendarPool(t), panel.NewMemory(10, 10), res,
		WithRegions(Region{ID: "a", Bounds: geom.R(0, 0, 1, 1)}, Region{ID: "a", Bounds: geom.R(0, 0, 1, 1)}))
	if !errors.Is(err, refresh.ErrDuplicateRegion) {
		t.Errorf("New(duplicate regions) error = %v", err)
	}
	_, err = New(calendarPool(t), panel.NewMemory(10, 10), res, WithRegions(Region{ID: "a", Bounds: geom.R(10, 10, 0, 5)}))
	if !errors.Is(err, refresh.ErrEmptyRegion) {
		t.Errorf("New(empty region) error = %v", err)
	}
}

func TestRun(t *testing.T) {
	var buf bytes.Buffer
	f := newFixture(t, WithLogger(slog.New(slog.NewTextHandler(&buf, nil))))
	long := eval.String(strings.Repeat("x", eval.MaxContentLen+1))

	events := make(chan Event, 4)
	events <- FullRefresh()
	events <- UpdateComponent("weather", map[string]eval.Value{"code": long})
	events <- UpdateComponent("weather", map[string]eval.Value{"code": eval.String("sun")})
	close(events)

	if err := f.engine.Run(context.Background(), events); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if got := kinds(f.panel.History()); got != "FP" {
		t.Errorf("flushes = %s, want FP", got)
	}
	if !strings.Contains(buf.String(), "event failed") {
		t.Errorf("aborted cycle not logged: %s", buf.String())
	}
}

func TestRunCanceled(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := f.engine.Run(ctx, make(chan Event)); !errors.Is(err, context.Canceled) {
		t.Errorf("Run() error = %v, want context.Canceled", err)
	}
}
