package core

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Catdevzsh/flame64/internal/chaos"
	"github.com/Catdevzsh/flame64/internal/rom"
)

func fixedClock() time.Time { return time.Unix(1700000000, 0) }

// buildZ64 makes a minimal big-endian image with a named header.
func buildZ64(name string, size int) []byte {
	img := make([]byte, size)
	binary.BigEndian.PutUint32(img[0x00:], 0x80371240)
	binary.BigEndian.PutUint32(img[0x10:], 0x12345678)
	binary.BigEndian.PutUint32(img[0x14:], 0x9ABCDEF0)
	for i := 0x20; i < 0x34; i++ {
		img[i] = ' '
	}
	copy(img[0x20:], name)
	copy(img[0x3B:], "NFLE")
	return img
}

func TestLoadROM_ParsesHeader(t *testing.T) {
	m := New(Config{Seed: 1, Now: fixedClock})
	if err := m.LoadROM(buildZ64("CHAOS CART", 0x1000)); err != nil {
		t.Fatalf("LoadROM: %v", err)
	}

	info, ok := m.ROMInfo()
	if !ok {
		t.Fatalf("ROMInfo reports nothing loaded")
	}
	if info.Name != "CHAOS CART" {
		t.Fatalf("Name = %q, want %q", info.Name, "CHAOS CART")
	}
	if info.Order != rom.OrderBigEndian {
		t.Fatalf("Order = %v, want big-endian", info.Order)
	}
	if info.Size != 0x1000 {
		t.Fatalf("Size = %d, want %d", info.Size, 0x1000)
	}
	if info.Header == nil || info.Header.CRC1 != 0x12345678 {
		t.Fatalf("header not parsed: %+v", info.Header)
	}
}

func TestLoadROM_HeaderlessStillLoads(t *testing.T) {
	m := New(Config{Seed: 1, Now: fixedClock})
	if err := m.LoadROM([]byte{1, 2, 3}); err != nil {
		t.Fatalf("LoadROM on headerless image: %v", err)
	}
	info, ok := m.ROMInfo()
	if !ok || info.Header != nil || info.Order != rom.OrderUnknown {
		t.Fatalf("headerless load info = %+v ok=%v", info, ok)
	}
}

func TestLoadROM_Empty(t *testing.T) {
	m := New(Config{Seed: 1, Now: fixedClock})
	if err := m.LoadROM(nil); err == nil {
		t.Fatalf("expected error on empty image")
	}
}

func TestLoadROMFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.z64")
	if err := os.WriteFile(path, buildZ64("FILECART", 0x800), 0644); err != nil {
		t.Fatal(err)
	}

	m := New(Config{Seed: 1, Now: fixedClock})
	if err := m.LoadROMFromFile(path); err != nil {
		t.Fatalf("LoadROMFromFile: %v", err)
	}
	if m.ROMPath() != path {
		t.Fatalf("ROMPath = %q, want %q", m.ROMPath(), path)
	}

	if err := m.LoadROMFromFile(filepath.Join(dir, "missing.z64")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestStepFrame_AdvancesGeneration(t *testing.T) {
	m := New(Config{Seed: 1, Now: fixedClock})
	for i := 0; i < 5; i++ {
		if err := m.StepFrame(); err != nil {
			t.Fatalf("StepFrame %d: %v", i, err)
		}
	}
	if m.Generation() != 5 {
		t.Fatalf("Generation = %d, want 5", m.Generation())
	}
}

func TestRunStop(t *testing.T) {
	m := New(Config{Seed: 1, Now: fixedClock})
	m.Run(context.Background())
	if !m.Running() {
		t.Fatalf("Running = false after Run")
	}

	// StepFrame must refuse to overlap the loop.
	if err := m.StepFrame(); !errors.Is(err, ErrRunning) {
		t.Fatalf("StepFrame while running = %v, want ErrRunning", err)
	}

	deadline := time.After(2 * time.Second)
	for m.Generation() == 0 {
		select {
		case <-deadline:
			t.Fatalf("run loop produced no generations")
		case <-time.After(5 * time.Millisecond):
		}
	}

	m.Stop()
	if m.Running() {
		t.Fatalf("Running = true after Stop")
	}
	gen := m.Generation()
	time.Sleep(50 * time.Millisecond)
	if m.Generation() != gen {
		t.Fatalf("engine still stepping after Stop")
	}

	// Stop is idempotent.
	m.Stop()
}

func TestRun_ContextCancel(t *testing.T) {
	m := New(Config{Seed: 1, Now: fixedClock})
	ctx, cancel := context.WithCancel(context.Background())
	m.Run(ctx)
	cancel()
	// Stop still joins cleanly after the context already ended the loop.
	m.Stop()
	if m.Running() {
		t.Fatalf("Running = true after context cancel and Stop")
	}
}

func TestRun_ParentCancelClearsRunning(t *testing.T) {
	m := New(Config{Seed: 1, Now: fixedClock})
	ctx, cancel := context.WithCancel(context.Background())
	m.Run(ctx)
	cancel()

	// Without calling Stop, the loop's exit must clear the running state.
	deadline := time.After(2 * time.Second)
	for m.Running() {
		select {
		case <-deadline:
			t.Fatalf("Running still true after parent context cancel")
		case <-time.After(5 * time.Millisecond):
		}
	}

	if err := m.StepFrame(); err != nil {
		t.Fatalf("StepFrame after cancel: %v", err)
	}

	// Stop remains safe after the loop already tore itself down.
	m.Stop()
}

func TestHeadlessDeterminism(t *testing.T) {
	run := func() uint32 {
		m := New(Config{Seed: 99, Now: fixedClock})
		if err := m.LoadROM(buildZ64("DETERMINISM", 0x400)); err != nil {
			t.Fatal(err)
		}
		for i := 0; i < 30; i++ {
			if err := m.StepFrame(); err != nil {
				t.Fatal(err)
			}
		}
		fb := make([]byte, chaos.FrameW*chaos.FrameH*4)
		m.CopyFrame(fb)
		return crc32.ChecksumIEEE(fb)
	}
	if a, b := run(), run(); a != b {
		t.Fatalf("framebuffer CRC differs across identical runs: %08x vs %08x", a, b)
	}
}

func TestSaveLoadState(t *testing.T) {
	dir := t.TempDir()
	statePath := filepath.Join(dir, "slot0.savestate")

	m := New(Config{Seed: 4, Now: fixedClock})
	if err := m.LoadROM(buildZ64("STATECART", 0x400)); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 7; i++ {
		if err := m.StepFrame(); err != nil {
			t.Fatal(err)
		}
	}
	want := make([]byte, chaos.FrameW*chaos.FrameH*4)
	m.CopyFrame(want)

	if err := m.SaveStateToFile(statePath); err != nil {
		t.Fatalf("SaveStateToFile: %v", err)
	}

	for i := 0; i < 3; i++ {
		if err := m.StepFrame(); err != nil {
			t.Fatal(err)
		}
	}
	if err := m.LoadStateFromFile(statePath); err != nil {
		t.Fatalf("LoadStateFromFile: %v", err)
	}
	if m.Generation() != 7 {
		t.Fatalf("Generation = %d after load, want 7", m.Generation())
	}

	got := make([]byte, chaos.FrameW*chaos.FrameH*4)
	m.CopyFrame(got)
	if !bytes.Equal(want, got) {
		t.Fatalf("framebuffer differs after state round trip")
	}
}

func TestLoadState_BadVersion(t *testing.T) {
	dir := t.TempDir()
	statePath := filepath.Join(dir, "bad.savestate")

	m := New(Config{Seed: 4, Now: fixedClock})
	if err := m.SaveStateToFile(statePath); err != nil {
		t.Fatal(err)
	}
	// Corrupt the file wholesale; decode must fail, not panic.
	if err := os.WriteFile(statePath, []byte("not a savestate"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := m.LoadStateFromFile(statePath); err == nil {
		t.Fatalf("expected error loading corrupted state")
	}
}

func TestDebugSnapshotAndInspect(t *testing.T) {
	m := New(Config{Seed: 2, Now: fixedClock})
	img := buildZ64("DEBUGCART", 0x200)
	if err := m.LoadROM(img); err != nil {
		t.Fatal(err)
	}
	if err := m.StepFrame(); err != nil {
		t.Fatal(err)
	}

	snap := m.DebugSnapshot()
	if snap.Generation != 1 || !snap.Loaded {
		t.Fatalf("snapshot = %+v", snap)
	}
	if snap.Stats.Min < 0 || snap.Stats.Max >= 1 {
		t.Fatalf("stats out of range: %+v", snap.Stats)
	}

	mem, err := m.InspectMemory(0, 4)
	if err != nil {
		t.Fatalf("InspectMemory: %v", err)
	}
	if !bytes.Equal(mem, img[:4]) {
		t.Fatalf("memory = % x, want % x", mem, img[:4])
	}

	if _, err := m.InspectMemory(-1, 4); err == nil {
		t.Fatalf("expected error for negative offset")
	}
}

func TestHexDump(t *testing.T) {
	lines := HexDump(0x40, []byte("ABCDEFGHIJKLMNOPQR"))
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}
	if lines[0][:8] != "00000040" {
		t.Fatalf("first line offset = %q", lines[0][:8])
	}
	if lines[1][:8] != "00000050" {
		t.Fatalf("second line offset = %q", lines[1][:8])
	}
}
