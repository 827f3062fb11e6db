package bcn_test

import (
	"bytes"
	"encoding/binary"
	"image"
	"testing"

	"github.com/am-sokolov/go-bcn-encoder/bcn"
)

func encodeChain(t *testing.T, img image.Image, levels int, opts bcn.Options) [][]byte {
	t.Helper()
	mips := bcn.GenerateMips(img, levels)
	out := make([][]byte, len(mips))
	for i, m := range mips {
		data, err := bcn.EncodeImage(m, opts)
		if err != nil {
			t.Fatalf("EncodeImage(level %d): %v", i, err)
		}
		out[i] = data
	}
	return out
}

func TestDDS_RoundTrip(t *testing.T) {
	const w, h = 20, 9
	img := &image.NRGBA{Pix: gradientRGBA8(w, h), Stride: w * 4, Rect: image.Rect(0, 0, w, h)}

	for _, f := range allFormats {
		for _, mips := range []int{1, bcn.MipCount(w, h)} {
			opts := bcn.Options{Format: f, Quality: bcn.QualityFast}
			levels := encodeChain(t, img, mips, opts)
			hdr := bcn.DDSHeader{Width: w, Height: h, MipCount: mips, Format: f}

			file, err := bcn.MarshalDDS(hdr, levels)
			if err != nil {
				t.Fatalf("MarshalDDS(%s): %v", hdr, err)
			}
			if string(file[:4]) != "DDS " {
				t.Fatalf("MarshalDDS(%s): bad magic %q", hdr, file[:4])
			}

			got, gotLevels, err := bcn.ParseDDS(file)
			if err != nil {
				t.Fatalf("ParseDDS(%s): %v", hdr, err)
			}
			if got != hdr {
				t.Fatalf("ParseDDS: header got %v want %v", got, hdr)
			}
			if len(gotLevels) != len(levels) {
				t.Fatalf("ParseDDS(%s): got %d levels want %d", hdr, len(gotLevels), len(levels))
			}
			for i := range levels {
				if !bytes.Equal(gotLevels[i], levels[i]) {
					t.Fatalf("ParseDDS(%s): level %d differs", hdr, i)
				}
				lw, lh, size := got.LevelSize(i)
				if len(gotLevels[i]) != size {
					t.Fatalf("level %d: %d bytes, LevelSize says %d", i, len(gotLevels[i]), size)
				}
				if _, err := bcn.DecodeRGBA8(gotLevels[i], lw, lh, opts); err != nil {
					t.Fatalf("DecodeRGBA8(level %d %dx%d): %v", i, lw, lh, err)
				}
			}
		}
	}
}

func TestDDS_BC7UsesDX10(t *testing.T) {
	hdr := bcn.DDSHeader{Width: 4, Height: 4, Format: bcn.FormatBC7}
	file, err := bcn.MarshalDDS(hdr, [][]byte{make([]byte, 16)})
	if err != nil {
		t.Fatalf("MarshalDDS: %v", err)
	}
	if len(file) != 4+124+20+16 {
		t.Fatalf("MarshalDDS: got %d bytes want %d", len(file), 4+124+20+16)
	}
	if cc := string(file[84:88]); cc != "DX10" {
		t.Fatalf("FourCC: got %q want DX10", cc)
	}
	if dxgi := binary.LittleEndian.Uint32(file[128:]); dxgi != 98 {
		t.Fatalf("DXGI format: got %d want 98", dxgi)
	}
}

func TestDDS_Errors(t *testing.T) {
	hdr := bcn.DDSHeader{Width: 8, Height: 8, Format: bcn.FormatBC1}
	good, err := bcn.MarshalDDS(hdr, [][]byte{make([]byte, 32)})
	if err != nil {
		t.Fatalf("MarshalDDS: %v", err)
	}

	badMagic := append([]byte{}, good...)
	copy(badMagic, "XXXX")
	badFourCC := append([]byte{}, good...)
	copy(badFourCC[84:88], "ZZZZ")
	huge := append([]byte{}, good...)
	binary.LittleEndian.PutUint32(huge[12:], 0x80000000)
	binary.LittleEndian.PutUint32(huge[16:], 0xFFFFFFFF)
	wide := append([]byte{}, good...)
	binary.LittleEndian.PutUint32(wide[16:], 1<<24+1)

	cases := []struct {
		name string
		data []byte
		code bcn.ErrorCode
	}{
		{"empty", nil, bcn.ErrBadContainer},
		{"short header", good[:100], bcn.ErrBadContainer},
		{"bad magic", badMagic, bcn.ErrBadContainer},
		{"truncated level", good[:len(good)-1], bcn.ErrBadContainer},
		{"unknown fourcc", badFourCC, bcn.ErrUnsupportedFormat},
		{"huge dimensions", huge, bcn.ErrBadContainer},
		{"too wide", wide, bcn.ErrBadContainer},
	}
	for _, c := range cases {
		if _, _, err := bcn.ParseDDS(c.data); bcn.ErrorCodeOf(err) != c.code {
			t.Fatalf("ParseDDS(%s): got %v want %v", c.name, err, c.code)
		}
	}

	if _, err := bcn.MarshalDDS(hdr, [][]byte{make([]byte, 31)}); bcn.ErrorCodeOf(err) != bcn.ErrBadDataSize {
		t.Fatalf("MarshalDDS(short level): got %v want %v", err, bcn.ErrBadDataSize)
	}
	if _, err := bcn.MarshalDDS(hdr, nil); bcn.ErrorCodeOf(err) != bcn.ErrBadParam {
		t.Fatalf("MarshalDDS(no levels): got %v want %v", err, bcn.ErrBadParam)
	}
}

func TestDDSHeader_LevelSize(t *testing.T) {
	hdr := bcn.DDSHeader{Width: 37, Height: 5, MipCount: bcn.MipCount(37, 5), Format: bcn.FormatBC3}
	cases := []struct {
		level      int
		w, h, size int
	}{
		{0, 37, 5, 10 * 2 * 16},
		{1, 18, 2, 5 * 1 * 16},
		{2, 9, 1, 3 * 1 * 16},
		{5, 1, 1, 16},
	}
	for _, c := range cases {
		w, h, size := hdr.LevelSize(c.level)
		if w != c.w || h != c.h || size != c.size {
			t.Fatalf("LevelSize(%d): got %dx%d %d want %dx%d %d", c.level, w, h, size, c.w, c.h, c.size)
		}
	}
}
