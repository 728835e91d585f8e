// Copyright 2026 The epdcal Authors
// SPDX-License-Identifier: MIT

// Command epdcal drives an e-ink calendar: it loads the configuration and
// layout, opens the panel and refreshes it as the clock advances.
//
// Usage:
//
//	epdcal [flags]
//
// Flags:
//
//	-config string   Path to a YAML configuration file
//	-dump-config     Print the effective configuration and exit
//	-once            Render one full frame and exit
//	-version         Print version and exit
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/AmnesiaBeing/epdcal"
	"github.com/AmnesiaBeing/epdcal/config"
	"github.com/AmnesiaBeing/epdcal/internal/app"
)

func main() {
	var (
		configPath  = flag.String("config", "", "Path to a YAML configuration file")
		dumpConfig  = flag.Bool("dump-config", false, "Print the effective configuration and exit")
		once        = flag.Bool("once", false, "Render one full frame and exit")
		showVersion = flag.Bool("version", false, "Print version and exit")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("epdcal %s\n", epdcal.Version)
		return
	}

	cfg, err := config.Load(*configPath)
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "epdcal: %v\n", err)
		os.Exit(1)
	}

	if *dumpConfig {
		if err := yaml.NewEncoder(os.Stdout).Encode(cfg); err != nil {
			fmt.Fprintf(os.Stderr, "epdcal: %v\n", err)
			os.Exit(1)
		}
		return
	}

	level, _ := cfg.LogLevel()
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	epdcal.SetLogger(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log, *once); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("epdcal failed", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log *slog.Logger, once bool) (err error) {
	a, err := app.New(cfg, nil, log)
	if err != nil {
		return err
	}
	defer func() { err = errors.Join(err, a.Close()) }()

	if once {
		return a.Engine.Handle(ctx, epdcal.FullRefresh())
	}

	events := make(chan epdcal.Event)
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return a.Engine.Run(ctx, events)
	})
	g.Go(func() error {
		return app.Tick(ctx, events, cfg.Refresh.TickInterval.Duration)
	})
	return g.Wait()
}
