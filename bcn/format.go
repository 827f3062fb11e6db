package bcn

import (
	"fmt"
	"runtime"
)

// Format selects a block compression format.
type Format uint8

const (
	// FormatBC1 is DXT1: 565 color endpoints, 2-bit indices, optional 1-bit alpha.
	FormatBC1 Format = iota
	// FormatBC2 is DXT3: explicit 4-bit alpha plus a BC1 color block.
	FormatBC2
	// FormatBC3 is DXT5: interpolated 8-bit alpha plus a BC1 color block.
	FormatBC3
	// FormatBC4 is a single interpolated channel (red or luminance).
	FormatBC4
	// FormatBC5 is two interpolated channels (red and green).
	FormatBC5
	// FormatBC7 is the 8-mode RGBA format.
	FormatBC7
)

func (f Format) String() string {
	switch f {
	case FormatBC1:
		return "BC1"
	case FormatBC2:
		return "BC2"
	case FormatBC3:
		return "BC3"
	case FormatBC4:
		return "BC4"
	case FormatBC5:
		return "BC5"
	case FormatBC7:
		return "BC7"
	default:
		return fmt.Sprintf("Format(%d)", uint8(f))
	}
}

// BlockSize returns the packed size of one 4x4 tile in bytes, or 0 for unknown formats.
func (f Format) BlockSize() int {
	switch f {
	case FormatBC1, FormatBC4:
		return 8
	case FormatBC2, FormatBC3, FormatBC5, FormatBC7:
		return 16
	default:
		return 0
	}
}

// Quality selects how much search the encoder performs per tile.
type Quality uint8

const (
	// QualityFast packs a direct endpoint estimate with little or no search.
	QualityFast Quality = iota
	// QualityBalanced runs a bounded endpoint search.
	QualityBalanced
	// QualityBestQuality runs the widest search.
	QualityBestQuality
)

func (q Quality) String() string {
	switch q {
	case QualityFast:
		return "fast"
	case QualityBalanced:
		return "balanced"
	case QualityBestQuality:
		return "bestquality"
	default:
		return fmt.Sprintf("Quality(%d)", uint8(q))
	}
}

// Options configures encoding and decoding.
type Options struct {
	Format  Format
	Quality Quality

	// Alpha1Bit enables BC1 punch-through alpha. Only valid with FormatBC1.
	Alpha1Bit bool

	// LuminanceAsRed stores luminance in the BC4 channel and decodes it as gray.
	// Only valid with FormatBC4.
	LuminanceAsRed bool

	// Workers overrides the worker count. Zero picks a per-format default.
	Workers int

	// BC7 overrides the BC7 search budget of the Quality tier. Lower tiers, which
	// are searched first, keep their defaults. Nil uses DefaultBC7Tuning(Quality).
	BC7 *BC7Tuning

	// SkipInvalidBlocks decodes reserved BC7 blocks as transparent black
	// instead of failing the whole buffer.
	SkipInvalidBlocks bool
}

func (o Options) validate() error {
	if o.Format.BlockSize() == 0 {
		return newError(ErrUnsupportedFormat, fmt.Sprintf("bcn: unsupported format %d", uint8(o.Format)))
	}
	if o.Quality > QualityBestQuality {
		return newError(ErrBadParam, fmt.Sprintf("bcn: invalid quality %d", uint8(o.Quality)))
	}
	if o.Alpha1Bit && o.Format != FormatBC1 {
		return newError(ErrUnsupportedFormat, "bcn: 1-bit alpha is only supported by BC1, got "+o.Format.String())
	}
	if o.LuminanceAsRed && o.Format != FormatBC4 {
		return newError(ErrUnsupportedFormat, "bcn: luminance mode is only supported by BC4, got "+o.Format.String())
	}
	if o.Workers < 0 {
		return newError(ErrBadParam, "bcn: negative worker count")
	}
	if o.BC7 != nil {
		if err := o.BC7.validate(); err != nil {
			return err
		}
	}
	return nil
}

// workerCount returns the number of goroutines to use for n tiles.
func (o Options) workerCount(n int) int {
	procs := o.Workers
	if procs == 0 {
		procs = runtime.GOMAXPROCS(0)
		// The fixed formats are cheap per tile; more goroutines only add contention.
		if o.Format != FormatBC7 && procs > 4 {
			procs = 4
		}
	}
	if procs > n {
		procs = n
	}
	if procs < 1 {
		procs = 1
	}
	return procs
}
