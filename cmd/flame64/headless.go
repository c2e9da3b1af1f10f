package main

import (
	"context"
	"fmt"
	"hash/crc32"
	"image"
	"image/png"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/Catdevzsh/flame64/internal/chaos"
	"github.com/Catdevzsh/flame64/internal/config"
	"github.com/Catdevzsh/flame64/internal/core"
)

func headlessCmd() *cli.Command {
	return &cli.Command{
		Name:  "headless",
		Usage: "run without a window and verify the framebuffer",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "rom",
				Usage: "ROM image to load (.n64/.z64/.v64)",
			},
			&cli.IntFlag{
				Name:  "frames",
				Usage: "generations to run",
				Value: 300,
			},
			&cli.StringFlag{
				Name:  "outpng",
				Usage: "write last framebuffer to PNG at path",
			},
			&cli.StringFlag{
				Name:  "expect",
				Usage: "assert framebuffer CRC32 (hex)",
			},
			&cli.IntFlag{
				Name:  "seed",
				Usage: "noise seed (0 = time-seeded)",
			},
			&cli.BoolFlag{
				Name:  "limit-fps",
				Usage: "throttle to ~60 Hz (defaults to the settings file value)",
			},
			&cli.StringFlag{
				Name:  "config",
				Usage: "settings file path",
				Value: config.DefaultPath(),
			},
			&cli.BoolFlag{
				Name:  "fixed-clock",
				Usage: "freeze the palette clock for reproducible frames",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			settings, err := config.Load(cmd.String("config"))
			if err != nil {
				return err
			}

			seed := settings.Seed
			if cmd.IsSet("seed") {
				seed = cmd.Int("seed")
			}
			limitFPS := settings.LimitFPS
			if cmd.IsSet("limit-fps") {
				limitFPS = cmd.Bool("limit-fps")
			}

			cfg := core.Config{Seed: seed}
			if cmd.Bool("fixed-clock") {
				epoch := time.Unix(0, 0)
				cfg.Now = func() time.Time { return epoch }
			}
			m := core.New(cfg)

			if romPath := cmd.String("rom"); romPath != "" {
				if err := m.LoadROMFromFile(romPath); err != nil {
					return err
				}
				if info, ok := m.ROMInfo(); ok {
					log.Infof("ROM: %q %d bytes %s", info.Name, info.Size, info.Order)
				}
			}

			frames := int(cmd.Int("frames"))
			if frames <= 0 {
				frames = 1
			}

			start := time.Now()
			if err := runFrames(m, frames, limitFPS); err != nil {
				return err
			}
			dur := time.Since(start)

			fb := make([]byte, chaos.FrameW*chaos.FrameH*4)
			m.CopyFrame(fb)
			crc := crc32.ChecksumIEEE(fb)
			fps := float64(frames) / dur.Seconds()

			log.Infof("headless: frames=%d elapsed=%s fps=%.2f fb_crc32=%08x",
				frames, dur.Truncate(time.Millisecond), fps, crc)

			if pngPath := cmd.String("outpng"); pngPath != "" {
				if err := saveFramePNG(fb, pngPath); err != nil {
					return fmt.Errorf("write PNG: %w", err)
				}
				log.Infof("wrote %s", pngPath)
			}

			if expect := cmd.String("expect"); expect != "" {
				want := strings.TrimPrefix(strings.ToLower(expect), "0x")
				got := fmt.Sprintf("%08x", crc)
				if got != want {
					return fmt.Errorf("checksum mismatch: got %s, want %s", got, want)
				}
			}
			return nil
		},
	}
}

// runFrames steps the machine frames times, pacing to ~60 Hz when limitFPS
// is set.
func runFrames(m *core.Machine, frames int, limitFPS bool) error {
	var ticker *time.Ticker
	if limitFPS {
		ticker = time.NewTicker(16 * time.Millisecond)
		defer ticker.Stop()
	}
	for i := 0; i < frames; i++ {
		if err := m.StepFrame(); err != nil {
			return err
		}
		if ticker != nil {
			<-ticker.C
		}
	}
	return nil
}

func saveFramePNG(pix []byte, path string) error {
	img := &image.RGBA{
		Pix:    make([]byte, len(pix)),
		Stride: 4 * chaos.FrameW,
		Rect:   image.Rect(0, 0, chaos.FrameW, chaos.FrameH),
	}
	copy(img.Pix, pix)
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, img)
}
