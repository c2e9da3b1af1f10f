package rom

import (
	"encoding/binary"
	"errors"
	"strings"
)

const (
	// HeaderSize is the number of bytes the cartridge header occupies.
	HeaderSize = 0x40

	nameStart = 0x20
	nameEnd   = 0x34
)

// ByteOrder identifies the storage order of an N64 ROM image.
type ByteOrder int

const (
	OrderUnknown      ByteOrder = iota
	OrderBigEndian              // .z64, native
	OrderByteSwapped            // .v64, 16-bit pairs swapped
	OrderLittleEndian           // .n64, 32-bit words reversed
)

func (o ByteOrder) String() string {
	switch o {
	case OrderBigEndian:
		return "big-endian (z64)"
	case OrderByteSwapped:
		return "byte-swapped (v64)"
	case OrderLittleEndian:
		return "little-endian (n64)"
	default:
		return "unknown"
	}
}

// Header holds the cartridge header fields of a big-endian image.
type Header struct {
	Name     string // internal name, 0x20-0x33 (trimmed ASCII)
	CRC1     uint32 // 0x10
	CRC2     uint32 // 0x14
	GameCode string // 0x3B-0x3E (media + ID + country)
	Region   byte   // 0x3E country code
	Version  byte   // 0x3F
}

// DetectOrder inspects the first word of an image. Images shorter than four
// bytes or with an unrecognized magic report OrderUnknown.
func DetectOrder(data []byte) ByteOrder {
	if len(data) < 4 {
		return OrderUnknown
	}
	switch binary.BigEndian.Uint32(data) {
	case 0x80371240:
		return OrderBigEndian
	case 0x37804012:
		return OrderByteSwapped
	case 0x40123780:
		return OrderLittleEndian
	default:
		return OrderUnknown
	}
}

// Normalize returns a big-endian copy of the image along with the order it
// was stored in. Unknown-order images are copied unchanged; callers decide
// whether that matters.
func Normalize(data []byte) ([]byte, ByteOrder) {
	order := DetectOrder(data)
	out := make([]byte, len(data))
	copy(out, data)
	switch order {
	case OrderByteSwapped:
		for i := 0; i+1 < len(out); i += 2 {
			out[i], out[i+1] = out[i+1], out[i]
		}
	case OrderLittleEndian:
		for i := 0; i+3 < len(out); i += 4 {
			out[i], out[i+3] = out[i+3], out[i]
			out[i+1], out[i+2] = out[i+2], out[i+1]
		}
	}
	return out, order
}

// ParseHeader reads cartridge header fields from a big-endian image.
func ParseHeader(data []byte) (*Header, error) {
	if len(data) < HeaderSize {
		return nil, errors.New("image too small to contain header")
	}

	name := strings.TrimRight(string(data[nameStart:nameEnd]), " \x00")

	return &Header{
		Name:     name,
		CRC1:     binary.BigEndian.Uint32(data[0x10:0x14]),
		CRC2:     binary.BigEndian.Uint32(data[0x14:0x18]),
		GameCode: string(data[0x3B:0x3F]),
		Region:   data[0x3E],
		Version:  data[0x3F],
	}, nil
}

// HasROMExtension reports whether the file name carries a known N64 image
// extension (.n64, .z64, .v64), matching case-insensitively.
func HasROMExtension(name string) bool {
	lower := strings.ToLower(name)
	return strings.HasSuffix(lower, ".n64") ||
		strings.HasSuffix(lower, ".z64") ||
		strings.HasSuffix(lower, ".v64")
}

// RegionString decodes the country code byte into a readable region name.
func RegionString(code byte) string {
	switch code {
	case 'E':
		return "NTSC (North America)"
	case 'J':
		return "NTSC (Japan)"
	case 'P':
		return "PAL (Europe)"
	case 'U':
		return "PAL (Australia)"
	case 'D':
		return "PAL (Germany)"
	case 'F':
		return "PAL (France)"
	default:
		return "Other/unknown"
	}
}
