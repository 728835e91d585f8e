// Copyright 2026 The epdcal Authors
// SPDX-License-Identifier: MIT

// Command epdpreview shows the calendar in a terminal. It renders into an
// in-memory panel and draws the glass with colored half blocks after every
// flush, so refresh plans can be checked without hardware.
//
// Usage:
//
//	epdpreview [-config file] [-log file]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"

	"github.com/AmnesiaBeing/epdcal"
	"github.com/AmnesiaBeing/epdcal/config"
	"github.com/AmnesiaBeing/epdcal/internal/app"
	"github.com/AmnesiaBeing/epdcal/panel"
)

func main() {
	var (
		configPath = flag.String("config", "", "Path to a YAML configuration file")
		logPath    = flag.String("log", "", "Write debug logs to this file")
	)
	flag.Parse()

	if err := run(*configPath, *logPath); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "epdpreview: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, logPath string) (err error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	cfg.Panel.Driver = config.DriverMemory
	if err := cfg.Validate(); err != nil {
		return err
	}

	log := slog.New(slog.DiscardHandler)
	if logPath != "" {
		f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return err
		}
		defer f.Close()
		log = slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	epdcal.SetLogger(log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var prog *tea.Program
	mem := panel.NewMemory(cfg.Panel.Width, cfg.Panel.Height, panel.WithFlushHook(func(f panel.Flush) {
		if prog != nil {
			prog.Send(flushMsg(f))
		}
	}))
	a, err := app.New(cfg, mem, log)
	if err != nil {
		return err
	}
	defer func() { err = errors.Join(err, a.Close()) }()

	events := make(chan epdcal.Event)
	prog = tea.NewProgram(newModel(ctx, mem, events), tea.WithAltScreen(), tea.WithContext(ctx))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return a.Engine.Run(gctx, events) })
	g.Go(func() error { return app.Tick(gctx, events, cfg.Refresh.TickInterval.Duration) })
	g.Go(func() error {
		defer cancel()
		_, err := prog.Run()
		if errors.Is(err, tea.ErrProgramKilled) {
			return nil
		}
		return err
	})
	return g.Wait()
}
