package core

import (
	"fmt"
	"strings"

	"github.com/Catdevzsh/flame64/internal/chaos"
)

// DebugSnapshot is a point-in-time view for the debugger overlay.
type DebugSnapshot struct {
	Generation uint64
	Stats      chaos.Stats
	ROM        ROMInfo
	Loaded     bool
}

// DebugSnapshot collects generation, grid statistics and ROM metadata.
func (m *Machine) DebugSnapshot() DebugSnapshot {
	info, loaded := m.ROMInfo()
	return DebugSnapshot{
		Generation: m.engine.Generation(),
		Stats:      m.engine.Stats(),
		ROM:        info,
		Loaded:     loaded,
	}
}

// InspectMemory returns n bytes of engine memory starting at off.
func (m *Machine) InspectMemory(off, n int) ([]byte, error) {
	return m.engine.ReadMemory(off, n)
}

// HexDump formats data as 16-byte rows with offsets and an ASCII gutter,
// for the inspector overlay and the CLI.
func HexDump(base int, data []byte) []string {
	lines := make([]string, 0, (len(data)+15)/16)
	for off := 0; off < len(data); off += 16 {
		end := off + 16
		if end > len(data) {
			end = len(data)
		}
		row := data[off:end]

		var hexpart strings.Builder
		var ascii strings.Builder
		for i := 0; i < 16; i++ {
			if i < len(row) {
				fmt.Fprintf(&hexpart, "%02X ", row[i])
				c := row[i]
				if c < 0x20 || c > 0x7E {
					c = '.'
				}
				ascii.WriteByte(c)
			} else {
				hexpart.WriteString("   ")
			}
		}
		lines = append(lines, fmt.Sprintf("%08X  %s %s", base+off, hexpart.String(), ascii.String()))
	}
	return lines
}
