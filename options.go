// Copyright 2026 The epdcal Authors
// SPDX-License-Identifier: MIT

package epdcal

import (
	"context"
	"log/slog"
	"time"

	"github.com/AmnesiaBeing/epdcal/config"
	"github.com/AmnesiaBeing/epdcal/geom"
	"github.com/AmnesiaBeing/epdcal/text"
)

// Option configures an Engine during creation.
//
// Example:
//
//	e, err := epdcal.New(pool, p, res,
//	    epdcal.WithMaxPartialRefreshes(3),
//	    epdcal.WithSettleDelay(2*time.Second),
//	)
type Option func(*options)

// Region names a screen rectangle the scheduler tracks.
type Region struct {
	ID     string
	Bounds geom.Rect
}

// options holds optional configuration for Engine creation.
type options struct {
	maxPartial    int
	settle        time.Duration
	fullInterval  time.Duration
	regions       []Region
	textOpts      text.Options
	skipOnMissing bool
	sleepAfter    bool
	logger        *slog.Logger
	now           func() time.Time
	wait          func(ctx context.Context, d time.Duration) error
}

// defaultOptions returns the default engine options.
func defaultOptions() options {
	return options{
		maxPartial: 5,
		settle:     2 * time.Second,
		textOpts:   text.DefaultOptions(),
		now:        time.Now,
		wait:       sleepCtx,
	}
}

// WithMaxPartialRefreshes sets how many partial refreshes a region takes
// before a full refresh is forced.
func WithMaxPartialRefreshes(n int) Option {
	return func(o *options) { o.maxPartial = n }
}

// WithSettleDelay sets the pause after every flush.
func WithSettleDelay(d time.Duration) Option {
	return func(o *options) { o.settle = d }
}

// WithFullRefreshInterval forces a full refresh once d has passed since the
// last one. Zero disables it.
func WithFullRefreshInterval(d time.Duration) Option {
	return func(o *options) { o.fullInterval = d }
}

// WithRegions registers explicit scheduler regions. Without it regions are
// derived from named nodes whose content has placeholders.
func WithRegions(regions ...Region) Option {
	return func(o *options) { o.regions = append(o.regions, regions...) }
}

// WithTextOptions sets wrapping and measurement options.
func WithTextOptions(t text.Options) Option {
	return func(o *options) { o.textOpts = t }
}

// WithSkipOnMissing skips elements whose placeholders do not resolve
// instead of drawing them with empty substitutions.
func WithSkipOnMissing(skip bool) Option {
	return func(o *options) { o.skipOnMissing = skip }
}

// WithSleepAfterFlush puts the panel to sleep after every settled flush.
func WithSleepAfterFlush(sleep bool) Option {
	return func(o *options) { o.sleepAfter = sleep }
}

// WithLogger sets the engine logger. The default follows SetLogger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// withClock replaces time.Now and the settle wait. Tests only.
func withClock(now func() time.Time, wait func(context.Context, time.Duration) error) Option {
	return func(o *options) {
		o.now = now
		o.wait = wait
	}
}

// ConfigOptions translates a validated configuration into engine options.
func ConfigOptions(cfg *config.Config) []Option {
	opts := []Option{
		WithMaxPartialRefreshes(cfg.Refresh.MaxPartialRefreshes),
		WithSettleDelay(cfg.Refresh.SettleDelay.Duration),
		WithFullRefreshInterval(cfg.Refresh.FullRefreshInterval.Duration),
		WithTextOptions(text.Options{
			SpaceWidth:   cfg.Text.SpaceWidth,
			CharSpacing:  cfg.Text.CharSpacing,
			DefaultWidth: cfg.Text.DefaultWidth,
			MaxLines:     cfg.Text.MaxLines,
		}),
		WithSkipOnMissing(cfg.Text.SkipOnMissing),
		WithSleepAfterFlush(cfg.Panel.Driver == config.DriverWaveshare),
	}
	for _, r := range cfg.Regions {
		opts = append(opts, WithRegions(Region{ID: r.ID, Bounds: r.Rect()}))
	}
	return opts
}

// sleepCtx waits for d or until ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
