package bcn

import (
	"image/color"
	"math"
)

// vec4 is an RGBA vector with channels in [0,1].
type vec4 [4]float32

func colorVec(c color.NRGBA) vec4 {
	return vec4{float32(c.R) / 255, float32(c.G) / 255, float32(c.B) / 255, float32(c.A) / 255}
}

func (v vec4) sub(o vec4) vec4 { return vec4{v[0] - o[0], v[1] - o[1], v[2] - o[2], v[3] - o[3]} }
func (v vec4) add(o vec4) vec4 { return vec4{v[0] + o[0], v[1] + o[1], v[2] + o[2], v[3] + o[3]} }
func (v vec4) mul(s float32) vec4 {
	return vec4{v[0] * s, v[1] * s, v[2] * s, v[3] * s}
}
func (v vec4) dot(o vec4) float32 { return v[0]*o[0] + v[1]*o[1] + v[2]*o[2] + v[3]*o[3] }

func (v vec4) normalize() vec4 {
	l := float32(math.Sqrt(float64(v.dot(v))))
	if l == 0 {
		return v
	}
	return v.mul(1 / l)
}

// covariance returns the mean and the sample covariance matrix of colors.
func covariance(colors []color.NRGBA) (mean vec4, cov [4][4]float32) {
	n := len(colors)
	if n == 0 {
		return mean, cov
	}
	var buf [16]vec4
	vecs := buf[:0]
	for _, c := range colors {
		v := colorVec(c)
		vecs = append(vecs, v)
		mean = mean.add(v)
	}
	mean = mean.mul(1 / float32(n))

	for _, v := range vecs {
		d := v.sub(mean)
		for i := 0; i < 4; i++ {
			for j := i; j < 4; j++ {
				cov[i][j] += d[i] * d[j]
			}
		}
	}
	// A single sample has no spread; keep the zero matrix instead of dividing by zero.
	if n > 1 {
		s := 1 / float32(n-1)
		for i := 0; i < 4; i++ {
			for j := i; j < 4; j++ {
				cov[i][j] *= s
			}
		}
	}
	for i := 0; i < 4; i++ {
		for j := 0; j < i; j++ {
			cov[i][j] = cov[j][i]
		}
	}
	return mean, cov
}

// principalAxis runs power iteration from the green axis. When green has no
// variance it starts from the channel with the largest variance instead.
func principalAxis(cov *[4][4]float32) vec4 {
	mulCov := func(v vec4) vec4 {
		var d vec4
		for r := 0; r < 4; r++ {
			d[r] = v[0]*cov[0][r] + v[1]*cov[1][r] + v[2]*cov[2][r] + v[3]*cov[3][r]
		}
		return d
	}

	v := vec4{0, 1, 0, 0}
	if cov[1][1] < 1e-9 {
		ch := 0
		for i := 1; i < 4; i++ {
			if cov[i][i] > cov[ch][ch] {
				ch = i
			}
		}
		if cov[ch][ch] == 0 {
			return v
		}
		v = vec4{}
		v[ch] = 1
	}
	for i := 0; i < 30; i++ {
		d := mulCov(v)
		if d.dot(d) == 0 {
			break
		}
		d = d.normalize()
		if v.dot(d) > 0.999999 {
			v = d
			break
		}
		v = d
	}
	return v
}

// pcaRGB returns the RGB mean and the RGB part of the principal axis, normalized.
func pcaRGB(colors []color.NRGBA) (mean, axis vec4) {
	mean, cov := covariance(colors)
	axis = principalAxis(&cov)
	axis[3] = 0
	mean[3] = 0
	if axis.dot(axis) == 0 {
		axis = vec4{0, 1, 0, 0}
	} else {
		axis = axis.normalize()
	}
	return mean, axis
}

// pcaRGBA returns the mean and principal axis over all four channels.
func pcaRGBA(colors []color.NRGBA) (mean, axis vec4) {
	mean, cov := covariance(colors)
	return mean, principalAxis(&cov)
}

// extremeProjections returns the smallest and largest signed distances along axis,
// both starting from zero.
func extremeProjections(colors []color.NRGBA, mean, axis vec4, withAlpha bool) (minD, maxD float32) {
	for _, c := range colors {
		v := colorVec(c)
		if !withAlpha {
			v[3] = 0
		}
		d := v.sub(mean).dot(axis)
		if d < minD {
			minD = d
		}
		if d > maxD {
			maxD = d
		}
	}
	return minD, maxD
}

// pcaEndpointsRGBA returns the two extreme points of colors along the RGBA principal axis.
func pcaEndpointsRGBA(colors []color.NRGBA) (lo, hi color.NRGBA) {
	mean, axis := pcaRGBA(colors)
	minD, maxD := extremeProjections(colors, mean, axis, true)
	return vecToNRGBA(mean.add(axis.mul(minD))), vecToNRGBA(mean.add(axis.mul(maxD)))
}

func vecToNRGBA(v vec4) color.NRGBA {
	return color.NRGBA{
		R: clampByte(int(v[0] * 255)),
		G: clampByte(int(v[1] * 255)),
		B: clampByte(int(v[2] * 255)),
		A: clampByte(int(v[3] * 255)),
	}
}

// pcaMinMax565 returns inset 565 endpoints along the RGB principal axis.
func pcaMinMax565(colors []color.NRGBA) (lo, hi rgb565) {
	mean, axis := pcaRGB(colors)
	minD, maxD := extremeProjections(colors, mean, axis, false)
	minD *= 15.0 / 16
	maxD *= 15.0 / 16

	minV := mean.add(axis.mul(minD))
	maxV := mean.add(axis.mul(maxD))
	return quantize565(minV), quantize565(maxV)
}

func quantize565(v vec4) rgb565 {
	r := clampInt(int(v[0]*255), 0, 255)
	g := clampInt(int(v[1]*255), 0, 255)
	b := clampInt(int(v[2]*255), 0, 255)
	return newRGB565(round565Channel(r, 5), round565Channel(g, 6), round565Channel(b, 5))
}

// round565Channel replicates the top bits into the bits the 565 quantization drops.
func round565Channel(v, bits int) uint8 {
	if bits == 6 {
		return uint8((v & 0xFC) | (v >> 6))
	}
	return uint8((v & 0xF8) | (v >> 5))
}
