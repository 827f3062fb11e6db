package bcn

import (
	"encoding/binary"
	"fmt"
)

const (
	ddsMagic      = 0x20534444 // "DDS "
	ddsHeaderSize = 124
	ddsPFSize     = 32
	ddsDX10Size   = 20
	ddsFileStart  = 4 + ddsHeaderSize
	fourCCDX10    = "DX10"

	ddsdCaps        = 0x1
	ddsdHeight      = 0x2
	ddsdWidth       = 0x4
	ddsdPixelFormat = 0x1000
	ddsdMipMapCount = 0x20000
	ddsdLinearSize  = 0x80000

	ddpfFourCC = 0x4

	ddsCapsComplex = 0x8
	ddsCapsTexture = 0x1000
	ddsCapsMipMap  = 0x400000

	d3d10ResourceTexture2D = 3

	// Larger dimensions would overflow the level size computation.
	ddsMaxDimension = 1 << 24
)

// DXGI format values for the block formats this package reads and writes.
const (
	dxgiBC1     = 71
	dxgiBC1SRGB = 72
	dxgiBC2     = 74
	dxgiBC2SRGB = 75
	dxgiBC3     = 77
	dxgiBC3SRGB = 78
	dxgiBC4     = 80
	dxgiBC5     = 83
	dxgiBC7     = 98
	dxgiBC7SRGB = 99
)

// DDSHeader describes a 2D block-compressed DDS texture.
type DDSHeader struct {
	Width    int
	Height   int
	MipCount int // 0 and 1 both mean a single level
	Format   Format
}

func (h DDSHeader) String() string {
	return fmt.Sprintf("DDS %s %dx%d, %d mips", h.Format, h.Width, h.Height, h.levels())
}

func (h DDSHeader) levels() int {
	if h.MipCount < 1 {
		return 1
	}
	return h.MipCount
}

func (h DDSHeader) validate() error {
	if h.Format.BlockSize() == 0 {
		return newError(ErrUnsupportedFormat, fmt.Sprintf("bcn: dds: unsupported format %d", uint8(h.Format)))
	}
	if h.Width <= 0 || h.Height <= 0 {
		return newError(ErrBadContainer, "bcn: dds: zero image dimension")
	}
	if h.Width > ddsMaxDimension || h.Height > ddsMaxDimension {
		return newError(ErrBadContainer, fmt.Sprintf("bcn: dds: image %dx%d exceeds %d", h.Width, h.Height, ddsMaxDimension))
	}
	if h.MipCount < 0 || h.MipCount > 32 {
		return newError(ErrBadContainer, fmt.Sprintf("bcn: dds: invalid mip count %d", h.MipCount))
	}
	return nil
}

// LevelSize returns the width, height and compressed byte size of mip level i.
func (h DDSHeader) LevelSize(i int) (width, height, size int) {
	width = max(1, h.Width>>i)
	height = max(1, h.Height>>i)
	bx, by := BlockCount(width, height)
	return width, height, bx * by * h.Format.BlockSize()
}

func ddsFourCC(f Format) string {
	switch f {
	case FormatBC1:
		return "DXT1"
	case FormatBC2:
		return "DXT3"
	case FormatBC3:
		return "DXT5"
	case FormatBC4:
		return "ATI1"
	case FormatBC5:
		return "ATI2"
	default:
		return fourCCDX10
	}
}

func formatFromFourCC(cc string) (Format, bool) {
	switch cc {
	case "DXT1":
		return FormatBC1, true
	case "DXT2", "DXT3":
		return FormatBC2, true
	case "DXT4", "DXT5":
		return FormatBC3, true
	case "ATI1", "BC4U":
		return FormatBC4, true
	case "ATI2", "BC5U":
		return FormatBC5, true
	}
	return 0, false
}

func formatFromDXGI(v uint32) (Format, bool) {
	switch v {
	case dxgiBC1, dxgiBC1SRGB:
		return FormatBC1, true
	case dxgiBC2, dxgiBC2SRGB:
		return FormatBC2, true
	case dxgiBC3, dxgiBC3SRGB:
		return FormatBC3, true
	case dxgiBC4:
		return FormatBC4, true
	case dxgiBC5:
		return FormatBC5, true
	case dxgiBC7, dxgiBC7SRGB:
		return FormatBC7, true
	}
	return 0, false
}

// MarshalDDS builds a DDS file from a header and one compressed buffer per mip level.
// BC7 is written with a DX10 extension header; the other formats use legacy FourCCs.
func MarshalDDS(h DDSHeader, levels [][]byte) ([]byte, error) {
	if err := h.validate(); err != nil {
		return nil, err
	}
	if len(levels) != h.levels() {
		return nil, newError(ErrBadParam, fmt.Sprintf("bcn: dds: want %d levels, got %d", h.levels(), len(levels)))
	}
	total := 0
	for i, lv := range levels {
		_, _, size := h.LevelSize(i)
		if len(lv) != size {
			return nil, newError(ErrBadDataSize, fmt.Sprintf("bcn: dds: level %d: want %d bytes, got %d", i, size, len(lv)))
		}
		total += size
	}

	cc := ddsFourCC(h.Format)
	start := ddsFileStart
	if cc == fourCCDX10 {
		start += ddsDX10Size
	}
	out := make([]byte, start, start+total)
	put := func(off int, v uint32) { binary.LittleEndian.PutUint32(out[off:], v) }

	_, _, top := h.LevelSize(0)
	flags := uint32(ddsdCaps | ddsdHeight | ddsdWidth | ddsdPixelFormat | ddsdLinearSize)
	caps := uint32(ddsCapsTexture)
	if h.levels() > 1 {
		flags |= ddsdMipMapCount
		caps |= ddsCapsComplex | ddsCapsMipMap
	}

	put(0, ddsMagic)
	put(4, ddsHeaderSize)
	put(8, flags)
	put(12, uint32(h.Height))
	put(16, uint32(h.Width))
	put(20, uint32(top))
	put(28, uint32(h.levels()))
	put(76, ddsPFSize)
	put(80, ddpfFourCC)
	copy(out[84:88], cc)
	put(108, caps)

	if cc == fourCCDX10 {
		put(ddsFileStart, dxgiBC7)
		put(ddsFileStart+4, d3d10ResourceTexture2D)
		put(ddsFileStart+12, 1) // array size
	}

	for _, lv := range levels {
		out = append(out, lv...)
	}
	return out, nil
}

// ParseDDS reads a 2D block-compressed DDS file and returns its header and the
// compressed data of every mip level. Trailing bytes after the last level are ignored.
func ParseDDS(data []byte) (DDSHeader, [][]byte, error) {
	var h DDSHeader
	if len(data) < ddsFileStart {
		return h, nil, containerEOF("dds header", ddsFileStart, len(data))
	}
	get := func(off int) uint32 { return binary.LittleEndian.Uint32(data[off:]) }
	if get(0) != ddsMagic {
		return h, nil, newError(ErrBadContainer, "bcn: dds: bad magic")
	}
	if get(4) != ddsHeaderSize || get(76) != ddsPFSize {
		return h, nil, newError(ErrBadContainer, "bcn: dds: bad header size")
	}
	if get(80)&ddpfFourCC == 0 {
		return h, nil, newError(ErrUnsupportedFormat, "bcn: dds: not a block-compressed texture")
	}

	h.Height = int(get(12))
	h.Width = int(get(16))
	h.MipCount = int(get(28))
	if get(8)&ddsdMipMapCount == 0 {
		h.MipCount = 1
	}

	start := ddsFileStart
	cc := string(data[84:88])
	if cc == fourCCDX10 {
		start += ddsDX10Size
		if len(data) < start {
			return h, nil, containerEOF("dds dx10 header", start, len(data))
		}
		dxgi := get(ddsFileStart)
		f, ok := formatFromDXGI(dxgi)
		if !ok {
			return h, nil, newError(ErrUnsupportedFormat, fmt.Sprintf("bcn: dds: unsupported DXGI format %d", dxgi))
		}
		if dim := get(ddsFileStart + 4); dim != d3d10ResourceTexture2D {
			return h, nil, newError(ErrUnsupportedFormat, fmt.Sprintf("bcn: dds: unsupported resource dimension %d", dim))
		}
		if n := get(ddsFileStart + 12); n > 1 {
			return h, nil, newError(ErrUnsupportedFormat, fmt.Sprintf("bcn: dds: texture arrays are not supported (size %d)", n))
		}
		h.Format = f
	} else {
		f, ok := formatFromFourCC(cc)
		if !ok {
			return h, nil, newError(ErrUnsupportedFormat, fmt.Sprintf("bcn: dds: unsupported FourCC %q", cc))
		}
		h.Format = f
	}
	if err := h.validate(); err != nil {
		return h, nil, err
	}

	levels := make([][]byte, h.levels())
	off := start
	for i := range levels {
		_, _, size := h.LevelSize(i)
		if size < 0 || len(data)-off < size {
			return h, nil, containerEOF(fmt.Sprintf("dds level %d", i), size, len(data)-off)
		}
		levels[i] = data[off : off+size : off+size]
		off += size
	}
	return h, levels, nil
}

func containerEOF(what string, want, got int) error {
	return &Error{Code: ErrBadContainer, Msg: fmt.Sprintf("bcn: %s: unexpected EOF: want %d bytes, got %d", what, want, got)}
}
