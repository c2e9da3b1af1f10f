package main

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/Catdevzsh/flame64/internal/config"
	"github.com/Catdevzsh/flame64/internal/library"
)

func dbFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:  "db",
		Usage: "catalog database path",
	}
}

func libraryCmd() *cli.Command {
	return &cli.Command{
		Name:  "library",
		Usage: "maintain the ROM catalog",
		Commands: []*cli.Command{
			{
				Name:  "scan",
				Usage: "scan a directory for ROM images",
				Flags: []cli.Flag{
					dbFlag(),
					&cli.StringFlag{
						Name:  "dir",
						Usage: "directory to scan",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					lib, cfg, err := openLibrary(cmd)
					if err != nil {
						return err
					}
					defer lib.Close()

					dir := cmd.String("dir")
					if dir == "" {
						dir = cfg.ROMsDir
					}
					res, err := lib.Scan(dir, true)
					if err != nil {
						return err
					}
					log.Infof("scan complete: %d added, %d updated, %d pruned",
						res.Added, res.Updated, res.Pruned)
					return nil
				},
			},
			{
				Name:  "list",
				Usage: "list cataloged ROMs",
				Flags: []cli.Flag{
					dbFlag(),
					&cli.StringFlag{
						Name:  "search",
						Usage: "filter by name or path substring",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					lib, _, err := openLibrary(cmd)
					if err != nil {
						return err
					}
					defer lib.Close()

					var entries []library.Entry
					if q := cmd.String("search"); q != "" {
						entries, err = lib.Search(q)
					} else {
						entries, err = lib.List()
					}
					if err != nil {
						return err
					}
					if len(entries) == 0 {
						fmt.Println("no ROMs cataloged")
						return nil
					}
					for _, e := range entries {
						played := "never"
						if !e.LastPlayed.IsZero() {
							played = e.LastPlayed.Format("2006-01-02 15:04")
						}
						fmt.Printf("%-24s %8d KiB  %-20s plays=%d last=%s\n",
							e.Name, e.Size/1024, e.ByteOrder, e.PlayCount, played)
					}
					return nil
				},
			},
		},
	}
}

func openLibrary(cmd *cli.Command) (*library.Library, config.Settings, error) {
	cfg, err := config.Load(config.DefaultPath())
	if err != nil {
		return nil, cfg, err
	}
	dbPath := cmd.String("db")
	if dbPath == "" {
		dbPath = cfg.LibraryPath
	}
	lib, err := library.Open(dbPath)
	if err != nil {
		return nil, cfg, err
	}
	return lib, cfg, nil
}
