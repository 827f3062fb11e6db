package main

import (
	"encoding/hex"
	"flag"
	"fmt"
	"os"
	"runtime"
	"runtime/pprof"
	"strings"
	"time"

	"github.com/am-sokolov/go-bcn-encoder/bcn"
	"github.com/klauspost/compress/zstd"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	switch os.Args[1] {
	case "decode":
		decodeCmd(os.Args[2:])
	case "encode":
		encodeCmd(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage:")
	fmt.Fprintln(os.Stderr, "  bcnbench decode -in <file.dds> [-iters N] [-workers N] [-checksum fnv|none]")
	fmt.Fprintln(os.Stderr, "  bcnbench encode -w W -h H [-format bc1|bc2|bc3|bc4|bc5|bc7] [-quality fast|balanced|best] [-iters N] [-workers N] [-out file.dds] [-zstd] [-checksum fnv|none]")
}

func decodeCmd(args []string) {
	fs := flag.NewFlagSet("decode", flag.ExitOnError)
	var (
		inPath      string
		iters       int
		workers     int
		checksumOpt string
		cpuprofile  string
		memprofile  string
		memprofRate int
	)
	fs.StringVar(&inPath, "in", "", "input .dds file")
	fs.IntVar(&iters, "iters", 200, "iterations")
	fs.IntVar(&workers, "workers", 0, "worker goroutines (0 = default)")
	fs.StringVar(&checksumOpt, "checksum", "fnv", "checksum: fnv|none (for benchmarking)")
	fs.StringVar(&cpuprofile, "cpuprofile", "", "optional CPU profile output path")
	fs.StringVar(&memprofile, "memprofile", "", "optional memory profile output path")
	fs.IntVar(&memprofRate, "memprofilerate", 0, "optional runtime.MemProfileRate override (0 = default)")
	_ = fs.Parse(args)

	if inPath == "" {
		fmt.Fprintln(os.Stderr, "missing -in")
		os.Exit(2)
	}
	if iters <= 0 {
		fmt.Fprintln(os.Stderr, "iters must be > 0")
		os.Exit(2)
	}

	data, err := os.ReadFile(inPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	hdr, levels, err := bcn.ParseDDS(data)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	opts := bcn.Options{Format: hdr.Format, Workers: workers}

	if memprofRate > 0 {
		runtime.MemProfileRate = memprofRate
	}
	stop := startCPUProfile(cpuprofile)
	defer stop()

	start := time.Now()
	var checksum uint64
	doChecksum := strings.ToLower(strings.TrimSpace(checksumOpt)) != "none"
	for i := 0; i < iters; i++ {
		pix, err := bcn.DecodeRGBA8(levels[0], hdr.Width, hdr.Height, opts)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		if doChecksum {
			checksum = fnv1a64(checksum, pix)
		}
	}
	dur := time.Since(start)

	if memprofile != "" {
		f, err := os.Create(memprofile)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		defer f.Close()
		if err := pprof.WriteHeapProfile(f); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}

	texels := float64(hdr.Width*hdr.Height) * float64(iters)
	fmt.Printf("RESULT mode=decode format=%s size=%dx%d iters=%d seconds=%.6f mpix/s=%.3f checksum=%s\n",
		hdr.Format,
		hdr.Width, hdr.Height,
		iters,
		dur.Seconds(),
		texels/dur.Seconds()/1e6,
		checksumString(checksum, doChecksum),
	)
}

func encodeCmd(args []string) {
	fs := flag.NewFlagSet("encode", flag.ExitOnError)
	var (
		width       int
		height      int
		format      string
		quality     string
		iters       int
		workers     int
		outPath     string
		withZstd    bool
		checksumOpt string
		cpuprofile  string
	)
	fs.IntVar(&width, "w", 256, "width")
	fs.IntVar(&height, "h", 256, "height")
	fs.StringVar(&format, "format", "bc7", "format: bc1|bc2|bc3|bc4|bc5|bc7")
	fs.StringVar(&quality, "quality", "balanced", "quality: fast|balanced|best")
	fs.IntVar(&iters, "iters", 20, "iterations")
	fs.IntVar(&workers, "workers", 0, "worker goroutines (0 = default)")
	fs.StringVar(&outPath, "out", "", "optional output .dds path (writes last iteration)")
	fs.BoolVar(&withZstd, "zstd", false, "report the zstd-compressed size of the output")
	fs.StringVar(&checksumOpt, "checksum", "fnv", "checksum: fnv|none (for benchmarking)")
	fs.StringVar(&cpuprofile, "cpuprofile", "", "optional CPU profile output path")
	_ = fs.Parse(args)

	if width <= 0 || height <= 0 {
		fmt.Fprintln(os.Stderr, "invalid dimensions")
		os.Exit(2)
	}
	if iters <= 0 {
		fmt.Fprintln(os.Stderr, "iters must be > 0")
		os.Exit(2)
	}
	f, err := parseFormat(format)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	q, err := parseQuality(quality)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	opts := bcn.Options{Format: f, Quality: q, Workers: workers}

	pix := make([]byte, width*height*4)
	fillPatternRGBA8(pix, width, height)

	stop := startCPUProfile(cpuprofile)
	defer stop()

	start := time.Now()
	var checksum uint64
	doChecksum := strings.ToLower(strings.TrimSpace(checksumOpt)) != "none"
	var last []byte
	for i := 0; i < iters; i++ {
		out, err := bcn.EncodeRGBA8(pix, width, height, opts)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		if doChecksum {
			checksum = fnv1a64(checksum, out)
		}
		last = out
	}
	dur := time.Since(start)

	if outPath != "" {
		file, err := bcn.MarshalDDS(bcn.DDSHeader{Width: width, Height: height, Format: f}, [][]byte{last})
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		if err := os.WriteFile(outPath, file, 0o644); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}

	zsize := "-"
	if withZstd {
		enc, err := zstd.NewWriter(nil, zstd.WithEncoderConcurrency(1))
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		zsize = fmt.Sprint(len(enc.EncodeAll(last, nil)))
		_ = enc.Close()
	}

	texels := float64(width*height) * float64(iters)
	fmt.Printf("RESULT mode=encode format=%s quality=%s size=%dx%d iters=%d seconds=%.6f mpix/s=%.3f bytes=%d zstd=%s checksum=%s\n",
		f,
		q,
		width, height,
		iters,
		dur.Seconds(),
		texels/dur.Seconds()/1e6,
		len(last),
		zsize,
		checksumString(checksum, doChecksum),
	)
}

// startCPUProfile starts a CPU profile when path is set and returns its stop func.
func startCPUProfile(path string) func() {
	if path == "" {
		return func() {}
	}
	f, err := os.Create(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := pprof.StartCPUProfile(f); err != nil {
		_ = f.Close()
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	return func() {
		pprof.StopCPUProfile()
		_ = f.Close()
	}
}

func parseFormat(s string) (bcn.Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "bc1":
		return bcn.FormatBC1, nil
	case "bc2":
		return bcn.FormatBC2, nil
	case "bc3":
		return bcn.FormatBC3, nil
	case "bc4":
		return bcn.FormatBC4, nil
	case "bc5":
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
	case "balanced":
		return bcn.QualityBalanced, nil
	case "best", "bestquality":
		return bcn.QualityBestQuality, nil
	default:
		return 0, fmt.Errorf("invalid -quality %q (want fast|balanced|best)", s)
	}
}

// fillPatternRGBA8 writes a deterministic mix of gradients, hard edges and alpha.
func fillPatternRGBA8(pix []byte, width, height int) {
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			off := (y*width + x) * 4
			pix[off+0] = uint8(x*3 + y*5)
			pix[off+1] = uint8(x*11 + y*13)
			pix[off+2] = uint8(x ^ y)
			pix[off+3] = 255 - uint8((x*5+y*7)&0xFF)
		}
	}
}

func fnv1a64(seed uint64, data []byte) uint64 {
	const (
		offset64 = 14695981039346656037
		prime64  = 1099511628211
	)
	h := seed
	if h == 0 {
		h = offset64
	}
	for _, b := range data {
		h ^= uint64(b)
		h *= prime64
	}
	return h
}

func checksumString(v uint64, enabled bool) string {
	if !enabled {
		return "none"
	}
	var b [8]byte
	for i := 0; i < 8; i++ {
		b[7-i] = byte(v >> uint(i*8))
	}
	return hex.EncodeToString(b[:])
}
