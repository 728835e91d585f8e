// Copyright 2026 The epdcal Authors
// SPDX-License-Identifier: MIT

// Package app wires a configuration into a running calendar: fonts, icons,
// the panel, the layout pool and the engine.
package app

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"

	"github.com/AmnesiaBeing/epdcal"
	"github.com/AmnesiaBeing/epdcal/config"
	"github.com/AmnesiaBeing/epdcal/eval"
	"github.com/AmnesiaBeing/epdcal/icon"
	"github.com/AmnesiaBeing/epdcal/layout"
	"github.com/AmnesiaBeing/epdcal/node"
	"github.com/AmnesiaBeing/epdcal/panel"
	"github.com/AmnesiaBeing/epdcal/text"
)

// basicFontPath selects the fixed 7x13 face in a font entry.
const basicFontPath = "basic"

// App is a wired calendar.
type App struct {
	Config *config.Config
	Values *eval.Store
	Panel  panel.Panel
	Engine *epdcal.Engine

	closers []io.Closer
}

// New builds an App from cfg. A nil p opens the panel cfg names; the App
// then owns it and closes it in Close.
func New(cfg *config.Config, p panel.Panel, log *slog.Logger) (_ *App, err error) {
	a := &App{Config: cfg, Values: eval.NewStore()}
	defer func() {
		if err != nil {
			err = errors.Join(err, a.Close())
		}
	}()

	fonts, closers, err := Fonts(cfg.Fonts)
	a.closers = append(a.closers, closers...)
	if err != nil {
		return nil, err
	}
	icons, err := Icons(cfg.Icons)
	if err != nil {
		return nil, err
	}
	pool := DemoPool()
	if cfg.Layout.PoolPath != "" {
		if pool, err = node.Load(cfg.Layout.PoolPath); err != nil {
			return nil, err
		}
	}
	if p == nil {
		var c io.Closer
		if p, c, err = OpenPanel(cfg.Panel); err != nil {
			return nil, err
		}
		a.closers = append(a.closers, c)
	}
	a.Panel = p

	PublishClock(a.Values, now())
	opts := append(epdcal.ConfigOptions(cfg), epdcal.WithLogger(log))
	a.Engine, err = epdcal.New(pool, p, layout.Resources{Values: a.Values, Fonts: fonts, Icons: icons}, opts...)
	if err != nil {
		return nil, err
	}
	log.Info("calendar ready",
		"driver", cfg.Panel.Driver,
		"nodes", pool.Len(),
		"regions", len(a.Engine.Regions()),
	)
	return a, nil
}

// Close releases fonts and an owned panel in reverse order of creation.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

// Fonts builds one FaceFont per distinct font file and maps every
// configured size onto it. The returned closers release the fonts, also
// when an error is returned.
func Fonts(cfgs []config.FontConfig) (text.Sizes, []io.Closer, error) {
	byPath := make(map[string]map[text.FontSize]float64)
	var order []string
	for _, f := range cfgs {
		if _, ok := byPath[f.Path]; !ok {
			byPath[f.Path] = make(map[text.FontSize]float64)
			order = append(order, f.Path)
		}
		byPath[f.Path][text.FontSize(f.Size)] = f.Points
	}

	sizes := make(text.Sizes, len(cfgs))
	var closers []io.Closer
	for _, path := range order {
		points := byPath[path]
		var (
			ff  *text.FaceFont
			err error
		)
		switch path {
		case "":
			ff, err = text.NewGoRegular(points)
		case basicFontPath:
			list := make([]text.FontSize, 0, len(points))
			for s := range points {
				list = append(list, s)
			}
			ff, err = text.NewBasicFont(list...)
		default:
			ff, err = text.LoadFaceFont(path, points)
		}
		if err != nil {
			return nil, closers, fmt.Errorf("app: font %q: %w", path, err)
		}
		closers = append(closers, ff)
		for s := range points {
			sizes[s] = ff
		}
	}
	return sizes, closers, nil
}

// Icons returns the icon provider cfg describes, or nil without a
// directory.
func Icons(cfg config.IconsConfig) (icon.Provider, error) {
	if cfg.Dir == "" {
		return nil, nil
	}
	if cfg.Preload {
		return icon.LoadDir(cfg.Dir, cfg.Size, cfg.Threshold)
	}
	return icon.NewDir(cfg.Dir, cfg.Size, cfg.Threshold), nil
}

// OpenPanel opens the panel driver cfg names. The closer releases the
// hardware.
func OpenPanel(cfg config.PanelConfig) (panel.Panel, io.Closer, error) {
	switch cfg.Driver {
	case config.DriverMemory:
		var opts []panel.MemoryOption
		if cfg.SnapshotDir != "" {
			opts = append(opts, panel.WithSnapshotDir(cfg.SnapshotDir))
		}
		return panel.NewMemory(cfg.Width, cfg.Height, opts...), closeFunc(func() error { return nil }), nil
	case config.DriverWaveshare:
		if _, err := host.Init(); err != nil {
			return nil, nil, fmt.Errorf("app: host init: %w", err)
		}
		port, err := spireg.Open(cfg.SPIPort)
		if err != nil {
			return nil, nil, fmt.Errorf("app: open spi %q: %w", cfg.SPIPort, err)
		}
		p, err := panel.NewWaveshare(port, cfg.Rotate)
		if err != nil {
			return nil, nil, errors.Join(err, port.Close())
		}
		return p, closeFunc(func() error {
			return errors.Join(p.Halt(), port.Close())
		}), nil
	default:
		return nil, nil, fmt.Errorf("%w: unknown panel driver %q", config.ErrInvalid, cfg.Driver)
	}
}

type closeFunc func() error

func (f closeFunc) Close() error { return f() }
