package ui

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/Catdevzsh/flame64/internal/chaos"
	"github.com/Catdevzsh/flame64/internal/config"
	"github.com/Catdevzsh/flame64/internal/core"
	"github.com/Catdevzsh/flame64/internal/library"
)

// App is the windowed launcher front end. It drives the machine one
// generation per tick and draws the chaos framebuffer plus menu overlays.
type App struct {
	cfg     *config.Settings
	cfgPath string
	m       *core.Machine
	lib     *library.Library

	tex    *ebiten.Image
	fb     []byte
	paused bool
	fast   bool

	// overlay/menu
	showMenu bool
	menuMode string // "main", "rom", "settings", "debug", "inspect"
	menuIdx  int

	romList []library.Entry
	romSel  int
	romOff  int

	editingROMDir bool
	romDirInput   string

	inspectOff int

	toastMsg   string
	toastUntil time.Time

	showStats  bool
	curW, curH int
}

func NewApp(cfg *config.Settings, cfgPath string, m *core.Machine, lib *library.Library) *App {
	if cfg.Scale <= 0 {
		cfg.Scale = 2
	}
	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowSize(chaos.FrameW*cfg.Scale, chaos.FrameH*cfg.Scale)
	return &App{
		cfg:       cfg,
		cfgPath:   cfgPath,
		m:         m,
		lib:       lib,
		fb:        make([]byte, chaos.FrameW*chaos.FrameH*4),
		menuMode:  "main",
		showStats: cfg.ShowStats,
		curW:      chaos.FrameW,
		curH:      chaos.FrameH,
	}
}

func (a *App) Run() error { return ebiten.RunGame(a) }

func (a *App) Update() error {
	// Toggle menu (Escape). While the ROMs dir field is being edited the
	// settings handler owns Escape.
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) && !a.editingROMDir {
		if a.showMenu && a.menuMode != "main" {
			a.menuMode = "main"
		} else {
			a.showMenu = !a.showMenu
			a.menuMode = "main"
			a.menuIdx = 0
		}
	}

	if a.showMenu {
		switch a.menuMode {
		case "main":
			a.updateMainMenu()
		case "rom":
			a.updateRomMenu()
		case "settings":
			a.updateSettingsMenu()
		case "debug":
			a.updateDebugOverlay()
		case "inspect":
			a.updateInspectOverlay()
		}
	} else {
		// Pause toggle (P)
		if inpututil.IsKeyJustPressed(ebiten.KeyP) {
			a.paused = !a.paused
		}

		// Fast-forward (Tab): while held, run multiple generations per update
		a.fast = ebiten.IsKeyPressed(ebiten.KeyTab)

		// Reset (R)
		if inpututil.IsKeyJustPressed(ebiten.KeyR) {
			a.m.Reset()
			a.toast("Entropy reset")
		}

		// Frame-step when paused (N)
		if a.paused && inpututil.IsKeyJustPressed(ebiten.KeyN) {
			_ = a.m.StepFrame()
		}

		// Stats overlay (D)
		if inpututil.IsKeyJustPressed(ebiten.KeyD) {
			a.showStats = !a.showStats
		}

		// Screenshot (F12)
		if inpututil.IsKeyJustPressed(ebiten.KeyF12) {
			if err := a.saveScreenshot(); err != nil {
				a.toast("Screenshot failed: " + err.Error())
			} else {
				a.toast("Screenshot saved")
			}
		}
	}

	// The chaos keeps evolving under the menu, as the original launcher's
	// background thread did.
	if !a.paused {
		steps := 1
		if a.fast && !a.showMenu {
			steps = 4
		}
		for i := 0; i < steps; i++ {
			_ = a.m.StepFrame()
		}
	}
	return nil
}

func (a *App) Draw(screen *ebiten.Image) {
	if a.tex == nil {
		a.tex = ebiten.NewImage(chaos.FrameW, chaos.FrameH)
	}
	a.m.CopyFrame(a.fb)
	a.tex.WritePixels(a.fb)
	screen.DrawImage(a.tex, nil)

	if a.showMenu {
		switch a.menuMode {
		case "main":
			a.drawMainMenu(screen)
		case "rom":
			a.drawRomMenu(screen)
		case "settings":
			a.drawSettingsMenu(screen)
		case "debug":
			a.drawDebugOverlay(screen)
		case "inspect":
			a.drawInspectOverlay(screen)
		}
	} else if a.showStats {
		a.drawStats(screen)
	}

	if a.paused && !a.showMenu {
		ebitenutil.DebugPrintAt(screen, "PAUSED (N: step)", 10, a.curH-28)
	}
	if a.toastMsg != "" && time.Now().Before(a.toastUntil) {
		ebitenutil.DebugPrintAt(screen, a.toastMsg, 10, a.curH-14)
	}
}

func (a *App) Layout(outW, outH int) (int, int) { return chaos.FrameW, chaos.FrameH }

func (a *App) toast(msg string) {
	a.toastMsg = msg
	a.toastUntil = time.Now().Add(2 * time.Second)
}

func (a *App) applyWindowSize() {
	ebiten.SetWindowSize(chaos.FrameW*a.cfg.Scale, chaos.FrameH*a.cfg.Scale)
}

func (a *App) saveSettings() {
	if a.cfgPath == "" {
		return
	}
	a.cfg.ShowStats = a.showStats
	_ = a.cfg.Save(a.cfgPath)
}

func (a *App) saveScreenshot() error {
	a.m.CopyFrame(a.fb)
	img := &image.RGBA{
		Pix:    make([]byte, len(a.fb)),
		Stride: 4 * chaos.FrameW,
		Rect:   image.Rect(0, 0, chaos.FrameW, chaos.FrameH),
	}
	copy(img.Pix, a.fb)
	ts := time.Now().Format("20060102_150405")
	name := fmt.Sprintf("screenshot_%s.png", ts)
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, img)
}

func truncateText(s string, maxChars int) string {
	if maxChars < 1 || len(s) <= maxChars {
		return s
	}
	if maxChars <= 3 {
		return s[:maxChars]
	}
	return s[:maxChars-3] + "..."
}
