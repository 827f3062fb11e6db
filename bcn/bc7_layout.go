package bcn

// bc7PBitKind describes how a BC7 mode stores parity bits.
type bc7PBitKind uint8

const (
	pbitNone        bc7PBitKind = iota
	pbitShared                  // one p-bit per subset, shared by both endpoints
	pbitPerEndpoint             // one p-bit per endpoint
)

// bc7Layout is the constant bit layout of one BC7 mode. Fields appear in the block
// in declaration order after the unary mode tag.
type bc7Layout struct {
	subsets       int
	partitionBits uint
	rotationBits  uint
	indexModeBits uint
	colorBits     uint // stored bits per color channel, without the p-bit
	alphaBits     uint // stored bits for alpha; 0 when the mode has no alpha
	pbits         bc7PBitKind
	indexBits     [2]uint // primary and secondary index stream widths; secondary 0 if absent
}

var bc7Layouts = [8]bc7Layout{
	{subsets: 3, partitionBits: 4, colorBits: 4, pbits: pbitPerEndpoint, indexBits: [2]uint{3, 0}},
	{subsets: 2, partitionBits: 6, colorBits: 6, pbits: pbitShared, indexBits: [2]uint{3, 0}},
	{subsets: 3, partitionBits: 6, colorBits: 5, indexBits: [2]uint{2, 0}},
	{subsets: 2, partitionBits: 6, colorBits: 7, pbits: pbitPerEndpoint, indexBits: [2]uint{2, 0}},
	{subsets: 1, rotationBits: 2, indexModeBits: 1, colorBits: 5, alphaBits: 6, indexBits: [2]uint{2, 3}},
	{subsets: 1, rotationBits: 2, colorBits: 7, alphaBits: 8, indexBits: [2]uint{2, 2}},
	{subsets: 1, colorBits: 7, alphaBits: 7, pbits: pbitPerEndpoint, indexBits: [2]uint{4, 0}},
	{subsets: 2, partitionBits: 6, colorBits: 5, alphaBits: 5, pbits: pbitPerEndpoint, indexBits: [2]uint{2, 0}},
}

func (l *bc7Layout) endpointCount() int { return 2 * l.subsets }

func (l *bc7Layout) hasPBits() bool { return l.pbits != pbitNone }

func (l *bc7Layout) hasAlpha() bool { return l.alphaBits > 0 }

func (l *bc7Layout) splitIndices() bool { return l.indexBits[1] > 0 }

// colorPrecision returns the color channel precision including the p-bit.
func (l *bc7Layout) colorPrecision() uint {
	if l.hasPBits() {
		return l.colorBits + 1
	}
	return l.colorBits
}

// alphaPrecision returns the alpha precision including the p-bit, or 0.
func (l *bc7Layout) alphaPrecision() uint {
	if l.alphaBits == 0 {
		return 0
	}
	if l.hasPBits() {
		return l.alphaBits + 1
	}
	return l.alphaBits
}

// colorIndexBits returns the color index width for the given index mode.
func (l *bc7Layout) colorIndexBits(indexMode uint8) uint {
	if indexMode == 1 && l.splitIndices() {
		return l.indexBits[1]
	}
	return l.indexBits[0]
}

// alphaIndexBits returns the alpha index width. Single-stream modes with alpha share
// the color indices; modes without alpha have no alpha indices.
func (l *bc7Layout) alphaIndexBits(indexMode uint8) uint {
	switch {
	case !l.hasAlpha():
		return 0
	case !l.splitIndices():
		return l.indexBits[0]
	case indexMode == 1:
		return l.indexBits[0]
	default:
		return l.indexBits[1]
	}
}

// bc7Subset returns the subset of texel i for the given subset count and partition.
func bc7Subset(subsets, partition, i int) int {
	switch subsets {
	case 2:
		return int(bc7Partitions2[partition][i])
	case 3:
		return int(bc7Partitions3[partition][i])
	default:
		return 0
	}
}

// bc7Anchor returns the anchor texel of a subset. Subset 0 is always anchored at texel 0.
func bc7Anchor(subsets, partition, subset int) int {
	switch {
	case subset == 0:
		return 0
	case subsets == 2:
		return int(bc7Anchors2[partition])
	case subset == 1:
		return int(bc7Anchors3Second[partition])
	default:
		return int(bc7Anchors3Third[partition])
	}
}

// bc7IsAnchor reports whether texel i is the anchor of any subset.
func bc7IsAnchor(subsets, partition, i int) bool {
	if i == 0 {
		return true
	}
	switch subsets {
	case 2:
		return i == int(bc7Anchors2[partition])
	case 3:
		return i == int(bc7Anchors3Second[partition]) || i == int(bc7Anchors3Third[partition])
	default:
		return false
	}
}
