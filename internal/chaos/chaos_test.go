package chaos

import (
	"bytes"
	"math"
	"testing"
	"time"
)

func fixedClock() time.Time { return time.Unix(1700000000, 0) }

func TestSeed_GridMapping(t *testing.T) {
	e := New(Config{Seed: 1, Now: fixedClock})

	rom := make([]byte, 16)
	rom[0] = 255
	rom[1] = 0
	rom[2] = 51 // 51/255 = 0.2
	e.Seed(rom)

	grid, gen := e.Snapshot()
	if gen != 0 {
		t.Fatalf("generation after seed = %d, want 0", gen)
	}
	if grid[0] != 1.0 {
		t.Fatalf("grid[0] = %v, want 1.0", grid[0])
	}
	if grid[1] != 0.0 {
		t.Fatalf("grid[1] = %v, want 0.0", grid[1])
	}
	if got, want := grid[2], 51.0/255.0; got != want {
		t.Fatalf("grid[2] = %v, want %v", got, want)
	}
	// Bytes past the ROM are zero-padded.
	if grid[16] != 0 || grid[GridSize*GridSize-1] != 0 {
		t.Fatalf("expected zero padding beyond ROM length")
	}
}

func TestSeed_TruncatesAtMemorySize(t *testing.T) {
	e := New(Config{Seed: 1, Now: fixedClock})
	rom := make([]byte, MemorySize+100)
	for i := range rom {
		rom[i] = 0xAB
	}
	e.Seed(rom)

	mem, err := e.ReadMemory(MemorySize-4, 4)
	if err != nil {
		t.Fatalf("ReadMemory: %v", err)
	}
	for _, b := range mem {
		if b != 0xAB {
			t.Fatalf("memory tail = % x, want AB AB AB AB", mem)
		}
	}
}

func TestStep_Deterministic(t *testing.T) {
	rom := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	a := New(Config{Seed: 42, Now: fixedClock})
	b := New(Config{Seed: 42, Now: fixedClock})
	a.Seed(rom)
	b.Seed(rom)

	for i := 0; i < 10; i++ {
		a.Step()
		b.Step()
	}

	fa := make([]byte, FrameW*FrameH*4)
	fb := make([]byte, FrameW*FrameH*4)
	a.CopyFrame(fa)
	b.CopyFrame(fb)
	if !bytes.Equal(fa, fb) {
		t.Fatalf("identical seeds diverged after 10 generations")
	}
	if a.Generation() != 10 {
		t.Fatalf("generation = %d, want 10", a.Generation())
	}
}

func TestStep_ValuesStayInRange(t *testing.T) {
	e := New(Config{Seed: 7, Now: fixedClock})
	for i := 0; i < 25; i++ {
		e.Step()
	}
	grid, _ := e.Snapshot()
	for i, v := range grid {
		if v < 0 || v >= 1 {
			t.Fatalf("grid[%d] = %v, want [0,1)", i, v)
		}
	}
}

func TestStep_FrameAlphaOpaque(t *testing.T) {
	e := New(Config{Seed: 3, Now: fixedClock})
	e.Step()
	frame := make([]byte, FrameW*FrameH*4)
	if n := e.CopyFrame(frame); n != len(frame) {
		t.Fatalf("CopyFrame copied %d bytes, want %d", n, len(frame))
	}
	for i := 3; i < len(frame); i += 4 {
		if frame[i] != 0xFF {
			t.Fatalf("alpha at pixel %d = %#x, want 0xFF", i/4, frame[i])
		}
	}
}

func TestReset_ClearsFrame(t *testing.T) {
	e := New(Config{Seed: 9, Now: fixedClock})
	e.Step()
	e.Reset()

	frame := make([]byte, FrameW*FrameH*4)
	e.CopyFrame(frame)
	for i, b := range frame {
		if b != 0 {
			t.Fatalf("frame[%d] = %#x after reset, want 0", i, b)
		}
	}
	if e.Generation() != 0 {
		t.Fatalf("generation after reset = %d, want 0", e.Generation())
	}
}

func TestReadMemory_Bounds(t *testing.T) {
	e := New(Config{Seed: 1, Now: fixedClock})
	if _, err := e.ReadMemory(-1, 8); err == nil {
		t.Fatalf("expected error for negative offset")
	}
	if _, err := e.ReadMemory(MemorySize-4, 8); err == nil {
		t.Fatalf("expected error for range past end of memory")
	}
	if _, err := e.ReadMemory(0, 16); err != nil {
		t.Fatalf("ReadMemory(0,16): %v", err)
	}
}

func TestStats_UniformGrid(t *testing.T) {
	e := New(Config{Seed: 1, Now: fixedClock})
	rom := make([]byte, GridSize*GridSize)
	for i := range rom {
		rom[i] = 128
	}
	e.Seed(rom)

	s := e.Stats()
	want := 128.0 / 255.0
	if s.Min != want || s.Max != want {
		t.Fatalf("uniform grid stats = %+v, want min=max=%v", s, want)
	}
	if math.Abs(s.Mean-want) > 1e-12 {
		t.Fatalf("uniform grid mean = %v, want %v", s.Mean, want)
	}
	if s.Entropy != 0 {
		t.Fatalf("uniform grid entropy = %v, want 0", s.Entropy)
	}
}

func TestSnapshotRestore_RoundTrip(t *testing.T) {
	e := New(Config{Seed: 5, Now: fixedClock})
	for i := 0; i < 3; i++ {
		e.Step()
	}
	grid, gen := e.Snapshot()
	frame := make([]byte, FrameW*FrameH*4)
	e.CopyFrame(frame)

	e.Step()
	e.Step()
	if err := e.Restore(grid, gen); err != nil {
		t.Fatalf("Restore: %v", err)
	}

	got := make([]byte, FrameW*FrameH*4)
	e.CopyFrame(got)
	if !bytes.Equal(frame, got) {
		t.Fatalf("frame differs after snapshot/restore round trip")
	}
	if e.Generation() != gen {
		t.Fatalf("generation = %d, want %d", e.Generation(), gen)
	}

	if err := e.Restore(make([]float64, 3), 0); err == nil {
		t.Fatalf("expected error restoring wrong-size grid")
	}
}
