package core

import (
	"encoding/gob"
	"fmt"
	"os"

	"github.com/Catdevzsh/flame64/internal/rom"
)

const stateVersion = 1

// savedState is the gob payload for savestates.
type savedState struct {
	Version    int
	Generation uint64
	Grid       []float64
	ROMPath    string
	ROMName    string
	ROMSize    int
	Order      rom.ByteOrder
}

// SaveStateToFile snapshots the grid and ROM metadata to path.
func (m *Machine) SaveStateToFile(path string) error {
	grid, gen := m.engine.Snapshot()

	m.mu.Lock()
	st := savedState{
		Version:    stateVersion,
		Generation: gen,
		Grid:       grid,
		ROMPath:    m.info.Path,
		ROMName:    m.info.Name,
		ROMSize:    m.info.Size,
		Order:      m.info.Order,
	}
	m.mu.Unlock()

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create state file: %w", err)
	}
	defer f.Close()
	if err := gob.NewEncoder(f).Encode(&st); err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	return nil
}

// LoadStateFromFile restores a snapshot written by SaveStateToFile. The
// machine must not be running.
func (m *Machine) LoadStateFromFile(path string) error {
	if m.Running() {
		return ErrRunning
	}
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open state file: %w", err)
	}
	defer f.Close()

	var st savedState
	if err := gob.NewDecoder(f).Decode(&st); err != nil {
		return fmt.Errorf("decode state: %w", err)
	}
	if st.Version != stateVersion {
		return fmt.Errorf("state version %d not supported (want %d)", st.Version, stateVersion)
	}
	if err := m.engine.Restore(st.Grid, st.Generation); err != nil {
		return err
	}

	m.mu.Lock()
	m.info.Path = st.ROMPath
	m.info.Name = st.ROMName
	m.info.Size = st.ROMSize
	m.info.Order = st.Order
	m.loaded = st.ROMSize > 0
	m.mu.Unlock()
	return nil
}
