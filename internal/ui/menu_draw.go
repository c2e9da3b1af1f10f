package ui

import (
	"fmt"
	"image/color"
	"path/filepath"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"

	"github.com/Catdevzsh/flame64/internal/chaos"
	"github.com/Catdevzsh/flame64/internal/core"
	"github.com/Catdevzsh/flame64/internal/rom"
)

// inspectWindow is how many memory bytes the inspector shows at once.
const inspectWindow = 0x100

func (a *App) drawOverlayBackground(screen *ebiten.Image) {
	overlay := ebiten.NewImage(chaos.FrameW, chaos.FrameH)
	overlay.Fill(color.RGBA{0, 0, 0, 160})
	screen.DrawImage(overlay, nil)
}

func (a *App) drawMainMenu(screen *ebiten.Image) {
	a.drawOverlayBackground(screen)
	lines := []string{
		"FLAME64:",
		"  Load ROM",
		"  Reset Entropy",
		"  Debugger",
		"  Inspector",
		"  Settings",
		"  Close",
	}
	for i, s := range lines {
		prefix := "  "
		if i == a.menuIdx+1 {
			prefix = "> "
		}
		ebitenutil.DebugPrintAt(screen, prefix+s, 10, 10+i*14)
	}
	hint := "P: Pause  Tab: Fast  R: Reset  D: Stats  F12: Screenshot"
	ebitenutil.DebugPrintAt(screen, hint, 10, 10+len(lines)*14+14)
}

func (a *App) drawRomMenu(screen *ebiten.Image) {
	a.drawOverlayBackground(screen)
	ebitenutil.DebugPrintAt(screen, "Select ROM (Enter to load, Backspace to return)", 10, 10)
	ebitenutil.DebugPrintAt(screen, truncateText("Dir: "+a.cfg.ROMsDir, 50), 10, 24)
	if len(a.romList) == 0 {
		ebitenutil.DebugPrintAt(screen, "No ROMs found", 10, 40)
		return
	}
	baseY := 40
	maxRows := (a.curH - baseY) / 14
	if maxRows < 1 {
		maxRows = 1
	}
	end := a.romOff + maxRows
	if end > len(a.romList) {
		end = len(a.romList)
	}
	for i, e := range a.romList[a.romOff:end] {
		name := e.Name
		if name == "" {
			name = filepath.Base(e.Path)
		}
		label := fmt.Sprintf("%s (%d KiB)", truncateText(name, 34), e.Size/1024)
		prefix := "  "
		if a.romOff+i == a.romSel {
			prefix = "> "
		}
		ebitenutil.DebugPrintAt(screen, prefix+label, 10, baseY+i*14)
	}
	if a.romOff > 0 {
		ebitenutil.DebugPrintAt(screen, "^", 2, baseY)
	}
	if end < len(a.romList) {
		ebitenutil.DebugPrintAt(screen, "v", 2, baseY+(maxRows-1)*14)
	}
}

func (a *App) drawSettingsMenu(screen *ebiten.Image) {
	a.drawOverlayBackground(screen)
	ebitenutil.DebugPrintAt(screen, "Settings (Up/Down select; Left/Right change; Enter: edit)", 10, 10)

	romDir := a.cfg.ROMsDir
	if a.editingROMDir {
		romDir = a.romDirInput + "_"
	}
	items := []string{
		fmt.Sprintf("Scale: %dx", a.cfg.Scale),
		fmt.Sprintf("ROMs Dir: %s", truncateText(romDir, 36)),
		fmt.Sprintf("Stats Overlay: %s", map[bool]string{true: "On", false: "Off"}[a.showStats]),
		fmt.Sprintf("Limit FPS: %s", map[bool]string{true: "On", false: "Off"}[a.cfg.LimitFPS]),
		"Back",
	}
	for i, s := range items {
		prefix := "  "
		if i == a.menuIdx {
			prefix = "> "
		}
		ebitenutil.DebugPrintAt(screen, prefix+s, 10, 28+i*14)
	}
}

func (a *App) drawDebugOverlay(screen *ebiten.Image) {
	a.drawOverlayBackground(screen)
	snap := a.m.DebugSnapshot()
	lines := []string{
		"Chaos Debugger",
		fmt.Sprintf("Generation: %d", snap.Generation),
		fmt.Sprintf("Grid min/mean/max: %.4f / %.4f / %.4f",
			snap.Stats.Min, snap.Stats.Mean, snap.Stats.Max),
		fmt.Sprintf("Grid entropy: %.3f bits", snap.Stats.Entropy),
	}
	if snap.Loaded {
		name := snap.ROM.Name
		if name == "" {
			name = filepath.Base(snap.ROM.Path)
		}
		lines = append(lines,
			fmt.Sprintf("ROM: %s (%d bytes, %s)", name, snap.ROM.Size, snap.ROM.Order),
		)
		if h := snap.ROM.Header; h != nil {
			lines = append(lines,
				fmt.Sprintf("CRC: %08X / %08X", h.CRC1, h.CRC2),
				fmt.Sprintf("Code: %s  Region: %s  v%d", h.GameCode, rom.RegionString(h.Region), h.Version),
			)
		}
	} else {
		lines = append(lines, "ROM: none loaded")
	}
	lines = append(lines, "", "Enter/Backspace: back")
	for i, s := range lines {
		ebitenutil.DebugPrintAt(screen, s, 10, 10+i*14)
	}
}

func (a *App) drawInspectOverlay(screen *ebiten.Image) {
	a.drawOverlayBackground(screen)
	ebitenutil.DebugPrintAt(screen, "Chaos Inspector (Up/Down/PgUp/PgDn: scroll)", 10, 10)

	data, err := a.m.InspectMemory(a.inspectOff, inspectWindow)
	if err != nil {
		ebitenutil.DebugPrintAt(screen, "Inspect error: "+err.Error(), 10, 28)
		return
	}
	baseY := 28
	maxRows := (a.curH - baseY) / 14
	lines := core.HexDump(a.inspectOff, data)
	if len(lines) > maxRows {
		lines = lines[:maxRows]
	}
	for i, s := range lines {
		ebitenutil.DebugPrintAt(screen, truncateText(s, 52), 10, baseY+i*14)
	}
}

func (a *App) drawStats(screen *ebiten.Image) {
	snap := a.m.DebugSnapshot()
	line := fmt.Sprintf("gen=%d mean=%.3f H=%.2f", snap.Generation, snap.Stats.Mean, snap.Stats.Entropy)
	ebitenutil.DebugPrintAt(screen, line, 10, 10)
}
