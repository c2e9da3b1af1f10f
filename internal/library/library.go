package library

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/schollz/progressbar/v3"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Catdevzsh/flame64/internal/rom"
)

// Entry is one cataloged ROM image.
type Entry struct {
	gorm.Model

	Path       string `gorm:"unique"`
	Name       string
	Size       int64
	ByteOrder  string
	CRC1       uint32
	CRC2       uint32
	PlayCount  int
	LastPlayed time.Time
}

// ScanResult summarizes one Scan pass.
type ScanResult struct {
	Added   int
	Updated int
	Pruned  int
}

// Library is the sqlite-backed ROM catalog.
type Library struct {
	db *gorm.DB
}

// Open connects to (or creates) the catalog database at filePath and runs
// migrations.
func Open(filePath string) (*Library, error) {
	db, err := gorm.Open(sqlite.Open(filePath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open catalog %s: %w", filePath, err)
	}
	if err := db.AutoMigrate(&Entry{}); err != nil {
		return nil, fmt.Errorf("catalog migration: %w", err)
	}
	return &Library{db: db}, nil
}

// Close releases the underlying database handle.
func (l *Library) Close() error {
	inner, err := l.db.DB()
	if err != nil {
		return fmt.Errorf("catalog close: %w", err)
	}
	return inner.Close()
}

// Scan walks dir for N64 images, upserts catalog rows from their headers,
// and prunes rows whose files no longer exist. With progress set, a bar is
// drawn on stderr for interactive scans.
func (l *Library) Scan(dir string, progress bool) (ScanResult, error) {
	var res ScanResult

	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !rom.HasROMExtension(d.Name()) {
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return res, fmt.Errorf("walk %s: %w", dir, err)
	}

	var bar *progressbar.ProgressBar
	if progress {
		bar = progressbar.Default(int64(len(paths)))
	}

	for _, path := range paths {
		added, updated, err := l.upsertFile(path)
		if err != nil {
			return res, err
		}
		if added {
			res.Added++
		} else if updated {
			res.Updated++
		}
		if bar != nil {
			_ = bar.Add(1)
		}
	}

	pruned, err := l.prune()
	if err != nil {
		return res, err
	}
	res.Pruned = pruned
	return res, nil
}

func (l *Library) upsertFile(path string) (added, updated bool, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return false, false, fmt.Errorf("read %s: %w", path, err)
	}
	normalized, order := rom.Normalize(data)

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	var crc1, crc2 uint32
	if h, err := rom.ParseHeader(normalized); err == nil {
		if h.Name != "" {
			name = h.Name
		}
		crc1, crc2 = h.CRC1, h.CRC2
	}

	var existing Entry
	err = l.db.Where("path = ?", path).First(&existing).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		entry := Entry{
			Path:      path,
			Name:      name,
			Size:      int64(len(data)),
			ByteOrder: order.String(),
			CRC1:      crc1,
			CRC2:      crc2,
		}
		if err := l.db.Create(&entry).Error; err != nil {
			return false, false, fmt.Errorf("create entry %s: %w", path, err)
		}
		return true, false, nil
	case err != nil:
		return false, false, fmt.Errorf("lookup entry %s: %w", path, err)
	}

	if existing.Name == name && existing.Size == int64(len(data)) &&
		existing.CRC1 == crc1 && existing.CRC2 == crc2 {
		return false, false, nil
	}
	existing.Name = name
	existing.Size = int64(len(data))
	existing.ByteOrder = order.String()
	existing.CRC1 = crc1
	existing.CRC2 = crc2
	if err := l.db.Save(&existing).Error; err != nil {
		return false, false, fmt.Errorf("update entry %s: %w", path, err)
	}
	return false, true, nil
}

func (l *Library) prune() (int, error) {
	var entries []Entry
	if err := l.db.Find(&entries).Error; err != nil {
		return 0, fmt.Errorf("list entries: %w", err)
	}
	pruned := 0
	for _, e := range entries {
		if _, err := os.Stat(e.Path); errors.Is(err, os.ErrNotExist) {
			if err := l.db.Unscoped().Delete(&e).Error; err != nil {
				return pruned, fmt.Errorf("prune entry %s: %w", e.Path, err)
			}
			pruned++
		}
	}
	return pruned, nil
}

// List returns all entries ordered by name.
func (l *Library) List() ([]Entry, error) {
	var entries []Entry
	if err := l.db.Order("name").Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	return entries, nil
}

// likeEscaper neutralizes LIKE metacharacters so a query containing
// % or _ matches literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Search returns entries whose name or path contains q, ordered by name.
func (l *Library) Search(q string) ([]Entry, error) {
	var entries []Entry
	pattern := "%" + likeEscaper.Replace(q) + "%"
	err := l.db.Where(`name LIKE ? ESCAPE '\' OR path LIKE ? ESCAPE '\'`, pattern, pattern).
		Order("name").Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("search entries: %w", err)
	}
	return entries, nil
}

// Touch records a launch: bumps the play count and stamps last played.
func (l *Library) Touch(path string) error {
	var entry Entry
	if err := l.db.Where("path = ?", path).First(&entry).Error; err != nil {
		return fmt.Errorf("touch %s: %w", path, err)
	}
	entry.PlayCount++
	entry.LastPlayed = time.Now()
	if err := l.db.Save(&entry).Error; err != nil {
		return fmt.Errorf("touch %s: %w", path, err)
	}
	return nil
}
