package bcn

import (
	"image/color"
	"math"
)

const clusterConvergence = 0.1

type clusterCenter struct {
	labXY
	count int
}

func (c *clusterCenter) add(p labXY) {
	c.l += p.l
	c.a += p.a
	c.b += p.b
	c.x += p.x
	c.y += p.y
	c.count++
}

// dist combines color and spatial distance; m weights compactness against color.
func (c *clusterCenter) dist(p labXY, m, s float32) float32 {
	dl, da, db := float64(c.l-p.l), float64(c.a-p.a), float64(c.b-p.b)
	dx, dy := float64(c.x-p.x), float64(c.y-p.y)
	dLab := float32(math.Sqrt(dl*dl + da*da + db*db))
	dXY := float32(math.Sqrt(dx*dx + dy*dy))
	return dLab + m/s*dXY
}

// clusterPixels segments a width x height image into k clusters by simple linear
// iterative clustering in Lab+XY space. It returns one label per pixel.
// maxIterations <= 0 iterates until the centers settle.
func clusterPixels(pixels []color.NRGBA, width, height, k int, m float32, maxIterations int, connectivity bool) ([]int, error) {
	if k < 2 {
		return nil, newError(ErrBadParam, "bcn: clustering needs at least 2 clusters")
	}
	if width <= 0 || height <= 0 || len(pixels) < width*height {
		return nil, newError(ErrBadDataSize, "bcn: clustering input too small")
	}
	n := width * height
	s := float32(math.Sqrt(float64(n) / float64(k)))

	points := make([]labXY, n)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			i := x + y*width
			l, a, b := toLab(pixels[i])
			points[i] = labXY{l: l, a: a, b: b, x: float32(x), y: float32(y)}
		}
	}

	centers := seedCenters(points, width, height, k, s)
	prev := make([]clusterCenter, k)
	labels := make([]int, n)

	movement := float32(999)
	for iter := 0; movement > clusterConvergence; iter++ {
		if maxIterations > 0 && iter >= maxIterations {
			break
		}
		copy(prev, centers)
		for i := range labels {
			labels[i] = -1
		}

		// Each center searches a 2S x 2S neighborhood around itself.
		for j := range centers {
			c := &centers[j]
			x0 := max(0, int(c.x-2*s))
			x1 := min(width, int(c.x+2*s))
			y0 := max(0, int(c.y-2*s))
			y1 := min(height, int(c.y+2*s))
			for x := x0; x < x1; x++ {
				for y := y0; y < y1; y++ {
					i := x + y*width
					if labels[i] == -1 || c.dist(points[i], m, s) < centers[labels[i]].dist(points[i], m, s) {
						labels[i] = j
					}
				}
			}
		}
		movement = recenter(centers, prev, points, labels, m, s)
	}

	if connectivity {
		labels = enforceConnectivity(labels, width, height, k)
	}
	return labels, nil
}

func seedCenters(points []labXY, width, height, k int, s float32) []clusterCenter {
	centers := make([]clusterCenter, k)
	at := func(fx, fy float32) clusterCenter {
		x := int(math.Floor(float64(float32(width) * fx)))
		y := int(math.Floor(float64(float32(height) * fy)))
		return clusterCenter{labXY: points[x+y*width]}
	}
	switch k {
	case 2:
		centers[0] = at(0.333, 0.333)
		centers[1] = at(0.666, 0.666)
	case 3:
		centers[0] = at(0.333, 0.333)
		centers[1] = at(0.666, 0.333)
		centers[2] = at(0.5, 0.666)
	default:
		next := 0
		for x := s / 2; x < float32(width); x += s {
			for y := s / 2; y < float32(height) && next < k; y += s {
				centers[next] = clusterCenter{labXY: points[int(x)+int(y)*width]}
				next++
			}
		}
	}
	return centers
}

// recenter moves every center to the mean of its members and returns the mean
// movement. Pixels outside every search window join the nearest previous center.
func recenter(centers, prev []clusterCenter, points []labXY, labels []int, m, s float32) float32 {
	for j := range centers {
		centers[j] = clusterCenter{}
	}
	for i, p := range points {
		if labels[i] == -1 {
			best, bestDist := 0, prev[0].dist(p, m, s)
			for j := 1; j < len(prev); j++ {
				if d := prev[j].dist(p, m, s); d < bestDist {
					best, bestDist = j, d
				}
			}
			labels[i] = best
		}
		centers[labels[i]].add(p)
	}

	var movement float32
	for j := range centers {
		c := &centers[j]
		if c.count == 0 {
			continue
		}
		inv := float32(c.count)
		c.l /= inv
		c.a /= inv
		c.b /= inv
		c.x /= inv
		c.y /= inv
		movement += c.dist(prev[j].labXY, m, s)
	}
	return movement / float32(len(centers))
}

var (
	neighborDX = [4]int{-1, 0, 1, 0}
	neighborDY = [4]int{0, -1, 0, 1}
)

// enforceConnectivity relabels 4-connected regions that are too small, or that reuse
// a label already claimed by an earlier region, to the label of an adjacent region.
func enforceConnectivity(old []int, width, height, k int) []int {
	minSize := width * height / k / 4
	used := make([]bool, k)
	labels := make([]int, len(old))
	for i := range labels {
		labels[i] = -1
	}

	region := make([]int, 0, width*height)
	adjacent := 0
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			start := x + y*width
			if labels[start] >= 0 {
				continue
			}
			label := old[start]
			labels[start] = label
			region = append(region[:0], start)

			for d := 0; d < 4; d++ {
				nx, ny := x+neighborDX[d], y+neighborDY[d]
				if nx >= 0 && nx < width && ny >= 0 && ny < height && labels[nx+ny*width] >= 0 {
					adjacent = labels[nx+ny*width]
					break
				}
			}

			for c := 0; c < len(region); c++ {
				cx, cy := region[c]%width, region[c]/width
				for d := 0; d < 4; d++ {
					nx, ny := cx+neighborDX[d], cy+neighborDY[d]
					if nx < 0 || nx >= width || ny < 0 || ny >= height {
						continue
					}
					ni := nx + ny*width
					if labels[ni] == -1 && old[ni] == label {
						labels[ni] = label
						region = append(region, ni)
					}
				}
			}

			if len(region) < minSize || used[label] {
				for _, i := range region {
					labels[i] = adjacent
				}
			} else {
				used[label] = true
			}
		}
	}
	return labels
}

// clusterTile clusters the texels of t into k groups with the parameters the BC7
// partition search uses, then compacts the labels.
func clusterTile(t *Tile, k int) (labels [16]int, distinct int) {
	out, err := clusterPixels(t[:], 4, 4, k, 1, 10, false)
	if err != nil {
		return labels, 1
	}
	copy(labels[:], out)
	distinct = countClusters(&labels)
	if distinct < k {
		labels, distinct = reduceClusters(&labels)
	}
	return labels, distinct
}
