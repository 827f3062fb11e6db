package main

import (
	"bytes"
	"encoding/hex"
	"flag"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/am-sokolov/go-bcn-encoder/bcn"
	"github.com/klauspost/compress/zstd"

	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

func main() {
	var (
		inPath    string
		outPath   string
		format    string
		quality   string
		mips      int
		workers   int
		alpha1Bit bool
		lumAsRed  bool
		skipBad   bool
		encode    bool
		decode    bool
		dumpInfo  bool
		dumpBlock bool
		verbose   bool
	)
	flag.StringVar(&inPath, "in", "", "input file")
	flag.StringVar(&outPath, "out", "", "output file (.dds or .dds.zst when encoding, .png when decoding)")
	flag.StringVar(&format, "format", "bc7", "block format: bc1|bc2|bc3|bc4|bc5|bc7")
	flag.StringVar(&quality, "quality", "balanced", "encode quality: fast|balanced|best")
	flag.IntVar(&mips, "mips", 1, "mip levels to write (0 = full chain)")
	flag.IntVar(&workers, "workers", 0, "worker goroutines (0 = default)")
	flag.BoolVar(&alpha1Bit, "alpha1bit", false, "BC1 punch-through alpha")
	flag.BoolVar(&lumAsRed, "luminance", false, "BC4: store luminance and decode as gray")
	flag.BoolVar(&skipBad, "skip-invalid", false, "decode reserved BC7 blocks as transparent black")
	flag.BoolVar(&encode, "encode", false, "encode input image -> .dds")
	flag.BoolVar(&decode, "decode", false, "decode input .dds -> .png")
	flag.BoolVar(&dumpInfo, "info", false, "print .dds header info and exit")
	flag.BoolVar(&dumpBlock, "dump-first-block", false, "dump the first block of level 0 as hex and exit")
	flag.BoolVar(&verbose, "v", false, "log progress to stderr")
	flag.Parse()

	if inPath == "" {
		fmt.Fprintln(os.Stderr, "usage: bcnencgo -in <input> [-out <output>] [-encode|-decode] [-format bc7] [-quality balanced]")
		os.Exit(2)
	}

	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	inData, err := os.ReadFile(inPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if dumpInfo || dumpBlock {
		h, levels, err := parseContainer(inPath, inData)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		fmt.Println(h.String())
		if dumpBlock {
			bs := h.Format.BlockSize()
			if len(levels[0]) < bs {
				fmt.Fprintln(os.Stderr, "bcn: missing first block")
				os.Exit(1)
			}
			fmt.Println(hex.EncodeToString(levels[0][:bs]))
		}
		return
	}

	if encode == decode {
		fmt.Fprintln(os.Stderr, "specify exactly one of -encode or -decode")
		os.Exit(2)
	}
	if outPath == "" {
		fmt.Fprintln(os.Stderr, "missing -out")
		os.Exit(2)
	}

	formatVal, err := parseFormat(format)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	qualityVal, err := parseQuality(quality)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	opts := bcn.Options{
		Format:            formatVal,
		Quality:           qualityVal,
		Alpha1Bit:         alpha1Bit,
		LuminanceAsRed:    lumAsRed,
		Workers:           workers,
		SkipInvalidBlocks: skipBad,
	}

	if encode {
		img, kind, err := image.Decode(bytes.NewReader(inData))
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		b := img.Bounds()
		log.Debug("decoded input", "path", inPath, "kind", kind, "width", b.Dx(), "height", b.Dy())

		chain := bcn.GenerateMips(img, mips)
		levels := make([][]byte, len(chain))
		for i, m := range chain {
			start := time.Now()
			levels[i], err = bcn.EncodeImage(m, opts)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
			log.Debug("encoded level", "level", i, "size", m.Bounds().Size(), "bytes", len(levels[i]), "elapsed", time.Since(start))
		}

		hdr := bcn.DDSHeader{Width: b.Dx(), Height: b.Dy(), MipCount: len(levels), Format: formatVal}
		file, err := bcn.MarshalDDS(hdr, levels)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		if isZstd(outPath) {
			raw := len(file)
			file, err = compressZstd(file)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
			log.Debug("compressed container", "raw", raw, "zstd", len(file))
		}
		if err := os.WriteFile(outPath, file, 0o644); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		log.Info("wrote", "path", outPath, "header", hdr.String())
		return
	}

	// decode
	hdr, levels, err := parseContainer(inPath, inData)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log.Debug("parsed container", "header", hdr.String())
	// The container decides the format; the flags only contribute decode options.
	opts.Format = hdr.Format
	if hdr.Format != bcn.FormatBC1 {
		opts.Alpha1Bit = false
	}
	if hdr.Format != bcn.FormatBC4 {
		opts.LuminanceAsRed = false
	}

	img, err := bcn.DecodeImage(levels[0], hdr.Width, hdr.Height, opts)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	out, err := os.Create(outPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := png.Encode(out, img); err != nil {
		_ = out.Close()
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := out.Close(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func isZstd(path string) bool {
	return strings.HasSuffix(strings.ToLower(path), ".zst")
}

func parseContainer(path string, data []byte) (bcn.DDSHeader, [][]byte, error) {
	if isZstd(path) {
		raw, err := decompressZstd(data)
		if err != nil {
			return bcn.DDSHeader{}, nil, fmt.Errorf("bcnencgo: %s: %w", path, err)
		}
		data = raw
	}
	return bcn.ParseDDS(data)
}

func compressZstd(raw []byte) ([]byte, error) {
	enc, err := zstd.NewWriter(nil,
		zstd.WithEncoderConcurrency(runtime.NumCPU()),
		zstd.WithEncoderLevel(zstd.SpeedBetterCompression),
	)
	if err != nil {
		return nil, err
	}
	defer enc.Close()
	return enc.EncodeAll(raw, make([]byte, 0, len(raw)/2)), nil
}

func decompressZstd(data []byte) ([]byte, error) {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, err
	}
	defer dec.Close()
	return dec.DecodeAll(data, nil)
}

func parseFormat(s string) (bcn.Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "bc1", "dxt1":
		return bcn.FormatBC1, nil
	case "bc2", "dxt3":
		return bcn.FormatBC2, nil
	case "bc3", "dxt5":
		return bcn.FormatBC3, nil
	case "bc4", "ati1":
		return bcn.FormatBC4, nil
	case "bc5", "ati2":
		return bcn.FormatBC5, nil
	case "bc7":
		return bcn.FormatBC7, nil
	default:
		return 0, fmt.Errorf("invalid -format %q (want bc1|bc2|bc3|bc4|bc5|bc7)", s)
	}
}

func parseQuality(s string) (bcn.Quality, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "fast":
		return bcn.QualityFast, nil
	case "balanced", "medium":
		return bcn.QualityBalanced, nil
	case "best", "bestquality":
		return bcn.QualityBestQuality, nil
	default:
		return 0, fmt.Errorf("invalid -quality %q (want fast|balanced|best)", s)
	}
}
