package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Settings contains window, engine and library related options.
type Settings struct {
	Title       string `toml:"title"`        // window title
	Scale       int    `toml:"scale"`        // integer upscaling factor
	ROMsDir     string `toml:"roms_dir"`     // directory to browse for ROMs
	LibraryPath string `toml:"library_path"` // catalog database file
	LimitFPS    bool   `toml:"limit_fps"`    // throttle headless runs to ~60 Hz
	Seed        int64  `toml:"seed"`         // noise seed; 0 means time-seeded
	ShowStats   bool   `toml:"show_stats"`   // grid stats overlay on start
}

// Defaults fills missing fields with reasonable defaults.
func (s *Settings) Defaults() {
	if s.Title == "" {
		s.Title = "FLAME64"
	}
	if s.Scale <= 0 {
		s.Scale = 2
	}
	if s.ROMsDir == "" {
		s.ROMsDir = "roms"
	}
	if s.LibraryPath == "" {
		s.LibraryPath = "flame64.db"
	}
}

// Load reads settings from path. A missing file is not an error; defaults
// are returned so first launch works without any setup.
func Load(path string) (Settings, error) {
	var s Settings
	if _, err := toml.DecodeFile(path, &s); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.Defaults()
			return s, nil
		}
		return s, fmt.Errorf("load settings %s: %w", path, err)
	}
	s.Defaults()
	return s, nil
}

// Save writes settings as TOML, creating parent directories as needed.
func (s Settings) Save(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("save settings: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	defer f.Close()
	if err := toml.NewEncoder(f).Encode(s); err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	return nil
}

// DefaultPath places the settings file under the user config directory,
// falling back to the working directory when that is unavailable.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "flame64.toml"
	}
	return filepath.Join(dir, "flame64", "config.toml")
}
