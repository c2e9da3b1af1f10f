package main

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/Catdevzsh/flame64/internal/config"
	"github.com/Catdevzsh/flame64/internal/core"
	"github.com/Catdevzsh/flame64/internal/library"
	"github.com/Catdevzsh/flame64/internal/ui"
)

func runCmd() *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "open the launcher window",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "rom",
				Usage: "ROM image to load on start (.n64/.z64/.v64)",
			},
			&cli.StringFlag{
				Name:  "config",
				Usage: "settings file path",
				Value: config.DefaultPath(),
			},
			&cli.IntFlag{
				Name:  "scale",
				Usage: "window scale override",
			},
			&cli.StringFlag{
				Name:  "title",
				Usage: "window title override",
			},
			&cli.StringFlag{
				Name:  "roms-dir",
				Usage: "ROM directory override",
			},
			&cli.IntFlag{
				Name:  "seed",
				Usage: "noise seed (0 = time-seeded)",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfgPath := cmd.String("config")
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return err
			}
			if cmd.IsSet("scale") {
				cfg.Scale = int(cmd.Int("scale"))
			}
			if cmd.IsSet("title") {
				cfg.Title = cmd.String("title")
			}
			if cmd.IsSet("roms-dir") {
				cfg.ROMsDir = cmd.String("roms-dir")
			}
			if cmd.IsSet("seed") {
				cfg.Seed = cmd.Int("seed")
			}

			m := core.New(core.Config{Seed: cfg.Seed})

			lib, err := library.Open(cfg.LibraryPath)
			if err != nil {
				return err
			}
			defer lib.Close()

			if res, err := lib.Scan(cfg.ROMsDir, false); err != nil {
				log.Warnf("initial library scan: %s", err)
			} else if res.Added > 0 {
				log.Infof("library scan: %d new ROMs", res.Added)
			}

			watchCtx, cancel := context.WithCancel(ctx)
			defer cancel()
			go func() {
				if err := lib.Watch(watchCtx, cfg.ROMsDir); err != nil && watchCtx.Err() == nil {
					log.Warnf("library watcher stopped: %s", err)
				}
			}()

			if romPath := cmd.String("rom"); romPath != "" {
				if err := m.LoadROMFromFile(romPath); err != nil {
					return err
				}
				if info, ok := m.ROMInfo(); ok {
					log.Infof("ROM: %q %d bytes %s", info.Name, info.Size, info.Order)
				}
				_ = lib.Touch(romPath)
			}

			app := ui.NewApp(&cfg, cfgPath, m, lib)
			return app.Run()
		},
	}
}
