package chaos

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sync"
	"time"
)

const (
	// GridSize is the edge length of the square cell grid.
	GridSize = 64
	// FrameW and FrameH are the output framebuffer dimensions.
	FrameW = 320
	FrameH = 240
	// MemorySize is the ROM memory window the engine keeps (4 MiB).
	MemorySize = 4 * 1024 * 1024

	seedBytes = GridSize * GridSize // first 4096 ROM bytes feed the grid
)

// Config contains settings that affect engine behavior.
type Config struct {
	Seed int64            // noise RNG seed; 0 means time-seeded
	Now  func() time.Time // clock for palette modulation; nil means time.Now
}

// Stats summarizes the current grid for debug overlays.
type Stats struct {
	Min     float64
	Max     float64
	Mean    float64
	Entropy float64 // Shannon entropy over a 64-bin histogram, in bits
}

// Engine evolves a 64x64 cell grid and renders each generation into a
// 320x240 RGBA framebuffer. All exported methods are safe for concurrent
// use.
type Engine struct {
	mu         sync.Mutex
	grid       []float64 // GridSize*GridSize, values in [0,1)
	scratch    []float64 // reused between generations
	memory     []byte    // MemorySize ROM window
	frame      []byte    // FrameW*FrameH*4 RGBA
	generation uint64

	rng *rand.Rand
	now func() time.Time
}

// New creates an engine with a randomized grid and a black framebuffer.
func New(cfg Config) *Engine {
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	e := &Engine{
		grid:    make([]float64, GridSize*GridSize),
		scratch: make([]float64, GridSize*GridSize),
		memory:  make([]byte, MemorySize),
		frame:   make([]byte, FrameW*FrameH*4),
		rng:     rand.New(rand.NewSource(seed)),
		now:     now,
	}
	e.randomize()
	return e
}

// Seed copies rom into the engine memory (truncated at 4 MiB) and folds the
// first 4096 bytes, zero-padded, into the cell grid.
func (e *Engine) Seed(rom []byte) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if len(rom) > MemorySize {
		rom = rom[:MemorySize]
	}
	copy(e.memory, rom)
	for i := len(rom); i < MemorySize; i++ {
		e.memory[i] = 0
	}

	for i := 0; i < seedBytes; i++ {
		var b byte
		if i < len(rom) {
			b = rom[i]
		}
		e.grid[i] = float64(b) / 255.0
	}
	e.generation = 0
}

// Reset re-randomizes the grid and clears the framebuffer.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.randomize()
	for i := range e.frame {
		e.frame[i] = 0
	}
	e.generation = 0
}

func (e *Engine) randomize() {
	for i := range e.grid {
		e.grid[i] = e.rng.Float64()
	}
}

// Step advances the grid by one generation and renders the new frame.
// Each cell takes a tenth of its 3x3 neighborhood sum (center excluded,
// clamped at the grid edges) plus a small noise term, wrapped into [0,1).
func (e *Engine) Step() {
	e.mu.Lock()
	defer e.mu.Unlock()

	for i := 0; i < GridSize; i++ {
		for j := 0; j < GridSize; j++ {
			var sum float64
			for di := -1; di <= 1; di++ {
				ni := i + di
				if ni < 0 || ni >= GridSize {
					continue
				}
				for dj := -1; dj <= 1; dj++ {
					nj := j + dj
					if nj < 0 || nj >= GridSize {
						continue
					}
					sum += e.grid[ni*GridSize+nj]
				}
			}
			cell := e.grid[i*GridSize+j]
			neighbors := sum - cell
			v := math.Mod(cell+neighbors*0.1+e.rng.Float64()*0.05, 1.0)
			e.scratch[i*GridSize+j] = v
		}
	}
	e.grid, e.scratch = e.scratch, e.grid
	e.generation++
	e.render()
}

// render maps the grid onto the framebuffer with a time-modulated palette.
// Callers must hold e.mu.
func (e *Engine) render() {
	t := float64(e.now().UnixNano()) / float64(time.Second)
	rMod := 1 + math.Sin(t)
	gMod := 1 + math.Cos(t*1.1)
	bMod := 1 + math.Sin(t*1.2)
	for y := 0; y < FrameH; y++ {
		sy := y * GridSize / FrameH
		row := y * FrameW * 4
		for x := 0; x < FrameW; x++ {
			sx := x * GridSize / FrameW
			val := e.grid[sy*GridSize+sx] * 127.5
			o := row + x*4
			e.frame[o] = clamp255(val * rMod)
			e.frame[o+1] = clamp255(val * gMod)
			e.frame[o+2] = clamp255(val * bMod)
			e.frame[o+3] = 0xFF
		}
	}
}

func clamp255(v float64) byte {
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return byte(v)
}

// CopyFrame copies the current framebuffer into dst, which must be at least
// FrameW*FrameH*4 bytes. It returns the number of bytes copied.
func (e *Engine) CopyFrame(dst []byte) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return copy(dst, e.frame)
}

// Generation returns the number of generations since the last seed or reset.
func (e *Engine) Generation() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.generation
}

// Stats computes summary statistics over the current grid.
func (e *Engine) Stats() Stats {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := Stats{Min: math.Inf(1), Max: math.Inf(-1)}
	var hist [64]int
	var sum float64
	for _, v := range e.grid {
		if v < s.Min {
			s.Min = v
		}
		if v > s.Max {
			s.Max = v
		}
		sum += v
		bin := int(v * 64)
		if bin > 63 {
			bin = 63
		}
		hist[bin]++
	}
	n := float64(len(e.grid))
	s.Mean = sum / n
	for _, c := range hist {
		if c == 0 {
			continue
		}
		p := float64(c) / n
		s.Entropy -= p * math.Log2(p)
	}
	return s
}

// ReadMemory copies n bytes of engine memory starting at off. Used by the
// inspector; out-of-range requests are errors rather than truncated reads.
func (e *Engine) ReadMemory(off, n int) ([]byte, error) {
	if off < 0 || n < 0 {
		return nil, errors.New("negative memory range")
	}
	if off+n > MemorySize {
		return nil, fmt.Errorf("memory range %#x..%#x exceeds %#x", off, off+n, MemorySize)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]byte, n)
	copy(out, e.memory[off:off+n])
	return out, nil
}

// Snapshot captures the grid and generation for savestates.
func (e *Engine) Snapshot() ([]float64, uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	grid := make([]float64, len(e.grid))
	copy(grid, e.grid)
	return grid, e.generation
}

// Restore replaces the grid and generation from a snapshot and re-renders.
func (e *Engine) Restore(grid []float64, generation uint64) error {
	if len(grid) != GridSize*GridSize {
		return fmt.Errorf("snapshot grid has %d cells, want %d", len(grid), GridSize*GridSize)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	copy(e.grid, grid)
	e.generation = generation
	e.render()
	return nil
}
