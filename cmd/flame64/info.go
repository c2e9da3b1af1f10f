package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/Catdevzsh/flame64/internal/rom"
)

func infoCmd() *cli.Command {
	return &cli.Command{
		Name:      "info",
		Usage:     "print cartridge header fields for one or more images",
		ArgsUsage: "<rom>...",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			paths := cmd.Args().Slice()
			if len(paths) == 0 {
				return errors.New("at least one ROM path is required")
			}
			for _, path := range paths {
				if err := printInfo(path); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func printInfo(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	normalized, order := rom.Normalize(data)

	fmt.Printf("%s\n", path)
	fmt.Printf("  size:   %d bytes\n", len(data))
	fmt.Printf("  order:  %s\n", order)

	h, err := rom.ParseHeader(normalized)
	if err != nil {
		fmt.Printf("  header: %s\n", err)
		return nil
	}
	fmt.Printf("  name:   %q\n", h.Name)
	fmt.Printf("  crc:    %08X / %08X\n", h.CRC1, h.CRC2)
	fmt.Printf("  code:   %s\n", h.GameCode)
	fmt.Printf("  region: %s\n", rom.RegionString(h.Region))
	fmt.Printf("  ver:    %d\n", h.Version)
	return nil
}
