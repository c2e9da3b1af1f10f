package ui

import (
	"path/filepath"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/Catdevzsh/flame64/internal/chaos"
)

func (a *App) updateMainMenu() {
	max := 5
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowUp) && a.menuIdx > 0 {
		a.menuIdx--
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowDown) && a.menuIdx < max {
		a.menuIdx++
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEnter) {
		switch a.menuIdx {
		case 0: // Load ROM
			a.refreshROMList()
			a.romSel = 0
			a.romOff = 0
			a.menuMode = "rom"
		case 1: // Reset Entropy
			a.m.Reset()
			a.toast("Entropy reset")
			a.showMenu = false
		case 2: // Debugger
			a.menuMode = "debug"
		case 3: // Inspector
			a.inspectOff = 0
			a.menuMode = "inspect"
		case 4: // Settings
			a.menuMode = "settings"
			a.menuIdx = 0
			a.editingROMDir = false
		case 5: // Close
			a.showMenu = false
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyBackspace) {
		a.showMenu = false
	}
}

func (a *App) refreshROMList() {
	if a.lib == nil {
		a.romList = nil
		return
	}
	if _, err := a.lib.Scan(a.cfg.ROMsDir, false); err != nil {
		a.toast("Scan failed: " + err.Error())
	}
	entries, err := a.lib.List()
	if err != nil {
		a.toast("Library error: " + err.Error())
		return
	}
	a.romList = entries
}

func (a *App) updateRomMenu() {
	n := len(a.romList)
	if n == 0 {
		if inpututil.IsKeyJustPressed(ebiten.KeyEnter) || inpututil.IsKeyJustPressed(ebiten.KeyBackspace) {
			a.menuMode = "main"
		}
		return
	}
	baseY := 40
	maxRows := (a.curH - baseY) / 14
	if maxRows < 1 {
		maxRows = 1
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowUp) && a.romSel > 0 {
		a.romSel--
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowDown) && a.romSel < n-1 {
		a.romSel++
	}
	if a.romSel < a.romOff {
		a.romOff = a.romSel
	}
	if a.romSel >= a.romOff+maxRows {
		a.romOff = a.romSel - maxRows + 1
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEnter) {
		entry := a.romList[a.romSel]
		if err := a.m.LoadROMFromFile(entry.Path); err == nil {
			a.toast("Loaded: " + filepath.Base(entry.Path))
			if a.lib != nil {
				_ = a.lib.Touch(entry.Path)
			}
			title := a.cfg.Title
			if info, ok := a.m.ROMInfo(); ok && info.Name != "" {
				title = a.cfg.Title + " - [" + info.Name + "]"
			}
			ebiten.SetWindowTitle(title)
		} else {
			a.toast("ROM load failed: " + err.Error())
		}
		a.menuMode = "main"
		a.showMenu = false
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyBackspace) {
		a.menuMode = "main"
	}
}

func (a *App) updateSettingsMenu() {
	// Items order:
	// 0 Scale
	// 1 ROMs Dir
	// 2 Stats Overlay
	// 3 Limit FPS
	// 4 Back
	const items = 5
	if !a.editingROMDir {
		if inpututil.IsKeyJustPressed(ebiten.KeyArrowUp) && a.menuIdx > 0 {
			a.menuIdx--
		}
		if inpututil.IsKeyJustPressed(ebiten.KeyArrowDown) && a.menuIdx < items-1 {
			a.menuIdx++
		}
	}
	switch a.menuIdx {
	case 0: // Scale
		if inpututil.IsKeyJustPressed(ebiten.KeyArrowLeft) && a.cfg.Scale > 1 {
			a.cfg.Scale--
			a.applyWindowSize()
			a.saveSettings()
		}
		if inpututil.IsKeyJustPressed(ebiten.KeyArrowRight) && a.cfg.Scale < 8 {
			a.cfg.Scale++
			a.applyWindowSize()
			a.saveSettings()
		}
	case 1: // ROMs Dir edit mode
		if !a.editingROMDir {
			if inpututil.IsKeyJustPressed(ebiten.KeyEnter) {
				a.editingROMDir = true
				a.romDirInput = a.cfg.ROMsDir
			}
		} else {
			for _, r := range ebiten.InputChars() {
				if r != '\n' && r != '\r' {
					a.romDirInput += string(r)
				}
			}
			if inpututil.IsKeyJustPressed(ebiten.KeyBackspace) && len(a.romDirInput) > 0 {
				a.romDirInput = a.romDirInput[:len(a.romDirInput)-1]
			}
			if inpututil.IsKeyJustPressed(ebiten.KeyEnter) {
				val := strings.TrimSpace(a.romDirInput)
				if val != "" {
					a.cfg.ROMsDir = val
					a.saveSettings()
					a.toast("ROMs dir set")
				}
				a.editingROMDir = false
			}
			if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
				a.editingROMDir = false
				a.romDirInput = a.cfg.ROMsDir
			}
			return
		}
	case 2: // Stats Overlay
		if inpututil.IsKeyJustPressed(ebiten.KeyArrowLeft) || inpututil.IsKeyJustPressed(ebiten.KeyArrowRight) || inpututil.IsKeyJustPressed(ebiten.KeyEnter) {
			a.showStats = !a.showStats
			a.saveSettings()
		}
	case 3: // Limit FPS
		if inpututil.IsKeyJustPressed(ebiten.KeyArrowLeft) || inpututil.IsKeyJustPressed(ebiten.KeyArrowRight) || inpututil.IsKeyJustPressed(ebiten.KeyEnter) {
			a.cfg.LimitFPS = !a.cfg.LimitFPS
			a.saveSettings()
		}
	case 4: // Back
		if inpututil.IsKeyJustPressed(ebiten.KeyEnter) {
			a.menuMode = "main"
			a.menuIdx = 0
		}
	}
	if !a.editingROMDir && inpututil.IsKeyJustPressed(ebiten.KeyBackspace) {
		a.menuMode = "main"
		a.menuIdx = 0
	}
}

func (a *App) updateDebugOverlay() {
	if inpututil.IsKeyJustPressed(ebiten.KeyEnter) || inpututil.IsKeyJustPressed(ebiten.KeyBackspace) {
		a.menuMode = "main"
	}
}

func (a *App) updateInspectOverlay() {
	const step = 0x40
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowUp) && a.inspectOff >= step {
		a.inspectOff -= step
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowDown) && a.inspectOff+step < chaos.MemorySize-inspectWindow {
		a.inspectOff += step
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyPageUp) {
		a.inspectOff -= step * 16
		if a.inspectOff < 0 {
			a.inspectOff = 0
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyPageDown) {
		a.inspectOff += step * 16
		if a.inspectOff > chaos.MemorySize-inspectWindow {
			a.inspectOff = chaos.MemorySize - inspectWindow
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEnter) || inpututil.IsKeyJustPressed(ebiten.KeyBackspace) {
		a.menuMode = "main"
	}
}
