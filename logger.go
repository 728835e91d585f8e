// Copyright 2026 The epdcal Authors
// SPDX-License-Identifier: MIT

package epdcal

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// nopHandler is a slog.Handler that silently discards all log records.
// Enabled returns false so callers skip message formatting entirely.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

// newNopLogger creates a logger that silently discards all output.
func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

// loggerPtr stores the active logger. Accessed atomically so that
// SetLogger can be called concurrently with logging from any goroutine.
var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(newNopLogger())
}

// SetLogger configures the logger for epdcal and the engines it builds.
// By default epdcal produces no log output.
//
// SetLogger is safe for concurrent use. Engines created earlier pick up the
// new logger on their next record. Pass nil to restore silence.
//
// Log levels used by epdcal:
//   - [slog.LevelDebug]: refresh plans, permissive conditions, missing glyphs
//   - [slog.LevelInfo]: lifecycle (engine start and stop, derived regions)
//   - [slog.LevelWarn]: missing variables and icons, aborted refresh cycles
//
// Example:
//
//	epdcal.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)
}

// Logger returns the current logger.
//
// Logger is safe for concurrent use.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}

// forwardHandler resolves the package logger on every call, so the
// sub-package loggers handed out at construction follow SetLogger.
type forwardHandler struct {
	ops []func(slog.Handler) slog.Handler
}

func (h forwardHandler) handler() slog.Handler {
	out := Logger().Handler()
	for _, op := range h.ops {
		out = op(out)
	}
	return out
}

func (h forwardHandler) Enabled(ctx context.Context, l slog.Level) bool {
	return h.handler().Enabled(ctx, l)
}

func (h forwardHandler) Handle(ctx context.Context, r slog.Record) error {
	return h.handler().Handle(ctx, r)
}

func (h forwardHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return h.with(func(next slog.Handler) slog.Handler { return next.WithAttrs(attrs) })
}

func (h forwardHandler) WithGroup(name string) slog.Handler {
	return h.with(func(next slog.Handler) slog.Handler { return next.WithGroup(name) })
}

func (h forwardHandler) with(op func(slog.Handler) slog.Handler) forwardHandler {
	ops := make([]func(slog.Handler) slog.Handler, len(h.ops), len(h.ops)+1)
	copy(ops, h.ops)
	return forwardHandler{ops: append(ops, op)}
}

// packageLogger returns a logger bound to SetLogger.
func packageLogger() *slog.Logger { return slog.New(forwardHandler{}) }
