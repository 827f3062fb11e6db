package bcn

import (
	"context"
	"fmt"
	"image"
	"sync"
	"sync/atomic"

	"golang.org/x/image/draw"
)

// EncodeTiles compresses tiles in order. The result holds len(tiles)*BlockSize bytes.
func EncodeTiles(tiles []Tile, opts Options) ([]byte, error) {
	return EncodeTilesContext(context.Background(), tiles, opts)
}

// EncodeTilesContext is EncodeTiles with cancellation. Workers stop taking new
// tiles once ctx is done and the call returns an ErrCanceled error wrapping ctx.Err().
func EncodeTilesContext(ctx context.Context, tiles []Tile, opts Options) ([]byte, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	bs := opts.Format.BlockSize()
	out := make([]byte, len(tiles)*bs)

	err := forEachBlock(len(tiles), opts.workerCount(len(tiles)), func(i int) error {
		if err := ctx.Err(); err != nil {
			return &Error{Code: ErrCanceled, Msg: "bcn: encode canceled: " + err.Error(), Err: err}
		}
		encodeTile(out[i*bs:(i+1)*bs], &tiles[i], opts)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// EncodeRGBA8 compresses a non-premultiplied RGBA8 image. Partial edge tiles are
// padded by repeating the last column and row.
func EncodeRGBA8(pix []byte, width, height int, opts Options) ([]byte, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	tiles, _, _, err := TilesFromRGBA8(pix, width, height)
	if err != nil {
		return nil, err
	}
	return EncodeTiles(tiles, opts)
}

// EncodeImage compresses any image.Image, converting it to non-premultiplied RGBA8 first.
func EncodeImage(img image.Image, opts Options) ([]byte, error) {
	if img == nil {
		return nil, newError(ErrBadParam, "bcn: nil image")
	}
	nrgba := toNRGBA(img)
	b := nrgba.Bounds()
	return EncodeRGBA8(nrgba.Pix, b.Dx(), b.Dy(), opts)
}

// toNRGBA returns img as a tightly packed *image.NRGBA with its origin at (0, 0).
func toNRGBA(img image.Image) *image.NRGBA {
	b := img.Bounds()
	if n, ok := img.(*image.NRGBA); ok && b.Min == (image.Point{}) && n.Stride == b.Dx()*4 {
		return n
	}
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}

// DecodeTiles decompresses count blocks from data.
func DecodeTiles(data []byte, count int, opts Options) ([]Tile, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if count < 0 {
		return nil, newError(ErrBadParam, "bcn: negative block count")
	}
	bs := opts.Format.BlockSize()
	if len(data) != count*bs {
		return nil, newError(ErrBadDataSize, fmt.Sprintf("bcn: %s data: want %d bytes, got %d", opts.Format, count*bs, len(data)))
	}

	tiles := make([]Tile, count)
	err := forEachBlock(count, opts.workerCount(count), func(i int) error {
		return decodeTile(&tiles[i], data[i*bs:(i+1)*bs], opts)
	})
	if err != nil {
		return nil, err
	}
	return tiles, nil
}

// DecodeRGBA8 decompresses an image of the given size into a width*height*4 buffer.
func DecodeRGBA8(data []byte, width, height int, opts Options) ([]byte, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if width <= 0 || height <= 0 {
		return nil, newError(ErrBadParam, "bcn: invalid image dimensions")
	}
	bx, by := BlockCount(width, height)
	bs := opts.Format.BlockSize()
	if want := bx * by * bs; len(data) != want {
		return nil, newError(ErrBadDataSize, fmt.Sprintf("bcn: %s data for %dx%d: want %d bytes, got %d", opts.Format, width, height, want, len(data)))
	}

	pix := make([]byte, width*height*4)
	err := forEachBlock(bx*by, opts.workerCount(bx*by), func(i int) error {
		var t Tile
		if err := decodeTile(&t, data[i*bs:(i+1)*bs], opts); err != nil {
			return err
		}
		storeTileRGBA8(pix, width, height, (i%bx)*4, (i/bx)*4, &t)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return pix, nil
}

// DecodeImage is DecodeRGBA8 returning an *image.NRGBA.
func DecodeImage(data []byte, width, height int, opts Options) (*image.NRGBA, error) {
	pix, err := DecodeRGBA8(data, width, height, opts)
	if err != nil {
		return nil, err
	}
	return &image.NRGBA{Pix: pix, Stride: width * 4, Rect: image.Rect(0, 0, width, height)}, nil
}

// EncodeBlock compresses a single tile. The first n bytes of the result are the block.
func EncodeBlock(t *Tile, opts Options) (block [16]byte, n int, err error) {
	if t == nil {
		return block, 0, newError(ErrBadParam, "bcn: nil tile")
	}
	if err := opts.validate(); err != nil {
		return block, 0, err
	}
	n = opts.Format.BlockSize()
	encodeTile(block[:n], t, opts)
	return block, n, nil
}

// DecodeBlock decompresses one block. Extra trailing bytes are ignored.
func DecodeBlock(block []byte, opts Options) (Tile, error) {
	var t Tile
	if err := opts.validate(); err != nil {
		return t, err
	}
	if bs := opts.Format.BlockSize(); len(block) < bs {
		return t, newError(ErrBadDataSize, fmt.Sprintf("bcn: %s block: want %d bytes, got %d", opts.Format, bs, len(block)))
	}
	err := decodeTile(&t, block, opts)
	return t, err
}

// encodeTile encodes t at every tier from QualityFast up to opts.Quality and keeps
// the block with the lowest reconstruction error, so raising the quality never
// makes a tile worse.
func encodeTile(dst []byte, t *Tile, opts Options) {
	if opts.Format == FormatBC7 {
		p := encodeBC7Tiers(t, opts.Quality, opts.bc7Tuning())
		encodeBC7Params(dst, &p)
		return
	}

	encodeTileAt(dst, t, opts, QualityFast)
	if opts.Quality == QualityFast {
		return
	}
	var decoded Tile
	decodeTile(&decoded, dst, opts)
	bestErr := reconstructionError(t, &decoded, opts)

	var buf [16]byte
	cand := buf[:len(dst)]
	for q := QualityBalanced; q <= opts.Quality; q++ {
		encodeTileAt(cand, t, opts, q)
		decodeTile(&decoded, cand, opts)
		if e := reconstructionError(t, &decoded, opts); e < bestErr {
			copy(dst, cand)
			bestErr = e
		}
	}
}

func encodeTileAt(dst []byte, t *Tile, opts Options, q Quality) {
	switch opts.Format {
	case FormatBC1:
		encodeBC1(dst, t, q, opts.Alpha1Bit)
	case FormatBC2:
		encodeBC2(dst, t, q)
	case FormatBC3:
		encodeBC3(dst, t, q)
	case FormatBC4:
		encodeBC4(dst, t, q, opts.LuminanceAsRed)
	case FormatBC5:
		encodeBC5(dst, t, q)
	}
}

// reconstructionError is the summed squared difference between t and its decoded
// block over the channels the format stores.
func reconstructionError(t, decoded *Tile, opts Options) int {
	sq := func(a, b uint8) int {
		d := int(a) - int(b)
		return d * d
	}
	sum := 0
	for i := range t {
		c, d := t[i], decoded[i]
		switch {
		case opts.Format == FormatBC4 && opts.LuminanceAsRed:
			sum += sq(luminance(c), d.R)
		case opts.Format == FormatBC4:
			sum += sq(c.R, d.R)
		case opts.Format == FormatBC5:
			sum += sq(c.R, d.R) + sq(c.G, d.G)
		case opts.Format == FormatBC1 && !opts.Alpha1Bit:
			sum += sq(c.R, d.R) + sq(c.G, d.G) + sq(c.B, d.B)
		default:
			sum += sq(c.R, d.R) + sq(c.G, d.G) + sq(c.B, d.B) + sq(c.A, d.A)
		}
	}
	return sum
}

func decodeTile(dst *Tile, src []byte, opts Options) error {
	switch opts.Format {
	case FormatBC1:
		decodeBC1(dst, src, opts.Alpha1Bit)
	case FormatBC2:
		decodeBC2(dst, src)
	case FormatBC3:
		decodeBC3(dst, src)
	case FormatBC4:
		decodeBC4(dst, src, opts.LuminanceAsRed)
	case FormatBC5:
		decodeBC5(dst, src)
	case FormatBC7:
		return decodeBC7(dst, src, opts.SkipInvalidBlocks)
	default:
		return newError(ErrUnsupportedFormat, "bcn: unsupported format "+opts.Format.String())
	}
	return nil
}

// forEachBlock calls fn for 0..n-1 on procs goroutines and returns the first error.
// Every index is handled by exactly one call; once an error is seen no new indices
// are started.
func forEachBlock(n, procs int, fn func(i int) error) error {
	// Small jobs are faster sequentially.
	if procs <= 1 || n < 32 {
		for i := 0; i < n; i++ {
			if err := fn(i); err != nil {
				return err
			}
		}
		return nil
	}

	var next uint32
	var stop uint32
	var firstErr error
	var errOnce sync.Once

	var wg sync.WaitGroup
	wg.Add(procs)
	for w := 0; w < procs; w++ {
		go func() {
			defer wg.Done()
			for {
				if atomic.LoadUint32(&stop) != 0 {
					return
				}
				idx := int(atomic.AddUint32(&next, 1) - 1)
				if idx >= n {
					return
				}
				if err := fn(idx); err != nil {
					errOnce.Do(func() {
						firstErr = err
						atomic.StoreUint32(&stop, 1)
					})
					return
				}
			}
		}()
	}
	wg.Wait()
	return firstErr
}
