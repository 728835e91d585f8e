// Copyright 2026 The epdcal Authors
// SPDX-License-Identifier: MIT

package app

import (
	"context"
	"time"

	"github.com/AmnesiaBeing/epdcal"
	"github.com/AmnesiaBeing/epdcal/eval"
)

var now = time.Now

// DateValues returns the "date" component for t.
func DateValues(t time.Time) map[string]eval.Value {
	return map[string]eval.Value{
		"year":    eval.Int(int64(t.Year())),
		"month":   eval.Int(int64(t.Month())),
		"day":     eval.Int(int64(t.Day())),
		"weekday": eval.String(t.Weekday().String()[:3]),
		"iso":     eval.String(t.Format(time.DateOnly)),
	}
}

// TimeValues returns the "time" component for t.
func TimeValues(t time.Time) map[string]eval.Value {
	return map[string]eval.Value{
		"hour":   eval.Int(int64(t.Hour())),
		"minute": eval.Int(int64(t.Minute())),
		"clock":  eval.String(t.Format("15:04")),
	}
}

// PublishClock writes the date and time components for t into s.
func PublishClock(s *eval.Store, t time.Time) {
	s.Update("date", DateValues(t))
	s.Update("time", TimeValues(t))
}

// Tick sends a time update every interval and a date update whenever the
// day changes, until ctx is done. The first tick is a full refresh.
func Tick(ctx context.Context, events chan<- epdcal.Event, interval time.Duration) error {
	if interval <= 0 {
		interval = time.Minute
	}
	send := func(ev epdcal.Event) error {
		select {
		case events <- ev:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if err := send(epdcal.FullRefresh()); err != nil {
		return err
	}

	last := now()
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
		}
		cur := now()
		if cur.YearDay() != last.YearDay() || cur.Year() != last.Year() {
			if err := send(epdcal.UpdateComponent("date", DateValues(cur))); err != nil {
				return err
			}
		}
		if err := send(epdcal.UpdateComponent("time", TimeValues(cur))); err != nil {
			return err
		}
		last = cur
	}
}
