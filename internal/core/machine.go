package core

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/Catdevzsh/flame64/internal/chaos"
	"github.com/Catdevzsh/flame64/internal/rom"
)

// frameInterval is the tick of the background run loop (~60 Hz).
const frameInterval = 16 * time.Millisecond

// ErrRunning is returned by operations that must not overlap the
// background run loop.
var ErrRunning = errors.New("machine is running")

// ROMInfo describes the currently loaded image.
type ROMInfo struct {
	Path   string
	Name   string
	Size   int
	Order  rom.ByteOrder
	Header *rom.Header // nil when the image has no parseable header
}

// Machine owns the chaos engine and the loaded ROM. It either runs
// continuously on its own goroutine (Run) or is stepped one frame at a
// time by a frontend (StepFrame).
type Machine struct {
	engine *chaos.Engine

	mu      sync.Mutex
	info    ROMInfo
	loaded  bool
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// Config contains settings that affect machine behavior.
type Config struct {
	Seed int64            // noise seed for the engine; 0 means time-seeded
	Now  func() time.Time // palette clock override, nil means wall clock
}

func New(cfg Config) *Machine {
	return &Machine{
		engine: chaos.New(chaos.Config{Seed: cfg.Seed, Now: cfg.Now}),
	}
}

// LoadROM normalizes the image to big-endian, parses its header when
// present, and seeds the engine. Images without a recognizable header are
// still accepted; the original loader took any file.
func (m *Machine) LoadROM(data []byte) error {
	if len(data) == 0 {
		return errors.New("empty ROM image")
	}
	normalized, order := rom.Normalize(data)

	info := ROMInfo{Size: len(data), Order: order}
	if h, err := rom.ParseHeader(normalized); err == nil {
		info.Header = h
		info.Name = h.Name
	}

	m.engine.Seed(normalized)

	m.mu.Lock()
	m.info = info
	m.loaded = true
	m.mu.Unlock()
	return nil
}

// LoadROMFromFile reads an image from disk and loads it.
func (m *Machine) LoadROMFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read ROM: %w", err)
	}
	if err := m.LoadROM(data); err != nil {
		return err
	}
	m.mu.Lock()
	m.info.Path = path
	m.mu.Unlock()
	return nil
}

// ROMInfo returns metadata for the loaded image; ok is false when nothing
// has been loaded yet.
func (m *Machine) ROMInfo() (ROMInfo, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.info, m.loaded
}

// ROMPath returns the path of the loaded image, if it came from disk.
func (m *Machine) ROMPath() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.info.Path
}

// Reset returns the grid to a fresh random state and clears the frame.
// The loaded ROM stays associated with the machine but does not reseed.
func (m *Machine) Reset() {
	m.engine.Reset()
}

// StepFrame advances exactly one generation. It refuses to overlap the
// background run loop.
func (m *Machine) StepFrame() error {
	m.mu.Lock()
	running := m.running
	m.mu.Unlock()
	if running {
		return ErrRunning
	}
	m.engine.Step()
	return nil
}

// Run evolves the engine at ~60 Hz until ctx is canceled or Stop is
// called. A second Run stops the previous loop before starting.
func (m *Machine) Run(ctx context.Context) {
	m.Stop()

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	m.mu.Lock()
	m.running = true
	m.cancel = cancel
	m.done = done
	m.mu.Unlock()

	go func() {
		defer close(done)
		ticker := time.NewTicker(frameInterval)
		defer ticker.Stop()
		for {
			select {
			case <-runCtx.Done():
				// Clear the running state so StepFrame works again after
				// a parent-context cancel, but only if Stop has not
				// already swapped in a new loop.
				m.mu.Lock()
				if m.done == done {
					m.running = false
					m.cancel = nil
					m.done = nil
				}
				m.mu.Unlock()
				return
			case <-ticker.C:
				m.engine.Step()
			}
		}
	}()
}

// Stop halts the run loop and waits for it to exit. Safe to call when not
// running.
func (m *Machine) Stop() {
	m.mu.Lock()
	cancel := m.cancel
	done := m.done
	m.cancel = nil
	m.done = nil
	m.running = false
	m.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

// Running reports whether the background loop is active.
func (m *Machine) Running() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

// Generation returns the engine generation counter.
func (m *Machine) Generation() uint64 { return m.engine.Generation() }

// CopyFrame copies the current RGBA framebuffer into dst.
func (m *Machine) CopyFrame(dst []byte) int { return m.engine.CopyFrame(dst) }
