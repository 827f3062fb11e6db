package bcn

import "image/color"

// Tile is a 4x4 block of texels in row-major order (index y*4+x).
type Tile [16]color.NRGBA

// At returns the texel at column x and row y.
func (t *Tile) At(x, y int) color.NRGBA { return t[y*4+x] }

// Set stores the texel at column x and row y.
func (t *Tile) Set(x, y int, c color.NRGBA) { t[y*4+x] = c }

// HasTransparent reports whether any texel has alpha below 255.
func (t *Tile) HasTransparent() bool {
	for i := range t {
		if t[i].A < 255 {
			return true
		}
	}
	return false
}

// solid reports whether all 16 texels are identical.
func (t *Tile) solid() bool {
	for i := 1; i < 16; i++ {
		if t[i] != t[0] {
			return false
		}
	}
	return true
}

// TileError returns the perceptual distance between two tiles.
//
// Both tiles are converted to Y/Cb/Cr plus alpha, luma differences are weighted by 2,
// and squared channel differences are summed over all 16 texels.
func TileError(a, b *Tile) float32 {
	return tileErrorWeighted(a, b, 2, 1)
}

func tileErrorWeighted(a, b *Tile, yMul, aMul float32) float32 {
	var yErr, cbErr, crErr, aErr float32
	for i := 0; i < 16; i++ {
		c1 := toYCbCrAlpha(a[i])
		c2 := toYCbCrAlpha(b[i])

		ye := (c1.y - c2.y) * yMul
		cbe := c1.cb - c2.cb
		cre := c1.cr - c2.cr
		ae := (c1.a - c2.a) * aMul

		yErr += ye * ye
		cbErr += cbe * cbe
		crErr += cre * cre
		aErr += ae * ae
	}
	return yErr + cbErr + crErr + aErr
}

// BlockCount returns the number of 4x4 tiles along each axis for an image.
func BlockCount(width, height int) (blocksX, blocksY int) {
	return (width + 3) / 4, (height + 3) / 4
}

// TilesFromRGBA8 splits a non-premultiplied RGBA8 buffer into tiles in row-major tile order.
//
// Images whose dimensions are not multiples of 4 are padded by repeating the last
// column and row.
func TilesFromRGBA8(pix []byte, width, height int) (tiles []Tile, blocksX, blocksY int, err error) {
	if width <= 0 || height <= 0 {
		return nil, 0, 0, newError(ErrBadParam, "bcn: invalid image dimensions")
	}
	if len(pix) != width*height*4 {
		return nil, 0, 0, newError(ErrBadParam, "bcn: invalid RGBA8 buffer length")
	}

	blocksX, blocksY = BlockCount(width, height)
	tiles = make([]Tile, blocksX*blocksY)
	for by := 0; by < blocksY; by++ {
		for bx := 0; bx < blocksX; bx++ {
			extractTileRGBA8(pix, width, height, bx*4, by*4, &tiles[by*blocksX+bx])
		}
	}
	return tiles, blocksX, blocksY, nil
}

func extractTileRGBA8(pix []byte, width, height, x0, y0 int, dst *Tile) {
	for ty := 0; ty < 4; ty++ {
		y := y0 + ty
		if y >= height {
			y = height - 1
		}
		row := y * width * 4
		for tx := 0; tx < 4; tx++ {
			x := x0 + tx
			if x >= width {
				x = width - 1
			}
			src := row + x*4
			dst[ty*4+tx] = color.NRGBA{R: pix[src], G: pix[src+1], B: pix[src+2], A: pix[src+3]}
		}
	}
}

// storeTileRGBA8 writes the visible part of a tile at (x0, y0) into pix.
func storeTileRGBA8(pix []byte, width, height, x0, y0 int, t *Tile) {
	for ty := 0; ty < 4; ty++ {
		y := y0 + ty
		if y >= height {
			return
		}
		row := y * width * 4
		for tx := 0; tx < 4; tx++ {
			x := x0 + tx
			if x >= width {
				break
			}
			c := t[ty*4+tx]
			off := row + x*4
			pix[off+0] = c.R
			pix[off+1] = c.G
			pix[off+2] = c.B
			pix[off+3] = c.A
		}
	}
}
