package bcn

import (
	"fmt"
	"math"
)

// BC7Tuning bounds the BC7 trial-and-select search for one tile.
type BC7Tuning struct {
	// ErrorThreshold ends the search as soon as a candidate's TileError falls below it.
	ErrorThreshold float32

	// MaxTries ends the search once more than MaxTries candidates were scored.
	MaxTries int
}

// DefaultBC7Tuning returns the search budget used for a quality tier.
func DefaultBC7Tuning(q Quality) BC7Tuning {
	switch q {
	case QualityFast:
		return BC7Tuning{ErrorThreshold: 0.005, MaxTries: 5}
	case QualityBestQuality:
		return BC7Tuning{ErrorThreshold: 0.001, MaxTries: 40}
	default:
		return BC7Tuning{ErrorThreshold: 0.005, MaxTries: 25}
	}
}

func (t *BC7Tuning) validate() error {
	if math.IsNaN(float64(t.ErrorThreshold)) || t.ErrorThreshold < 0 {
		return newError(ErrBadParam, fmt.Sprintf("bcn: invalid BC7 error threshold %v", t.ErrorThreshold))
	}
	if t.MaxTries < 1 {
		return newError(ErrBadParam, fmt.Sprintf("bcn: invalid BC7 try budget %d", t.MaxTries))
	}
	return nil
}

func (o Options) bc7Tuning() BC7Tuning {
	if o.BC7 != nil {
		return *o.BC7
	}
	return DefaultBC7Tuning(o.Quality)
}

// partitionSource says which ranking feeds a per-rank attempt its partition.
type partitionSource uint8

const (
	partitionNone partitionSource = iota
	partitionRank2
	partitionRank3
)

// bc7Attempt is one candidate encoding in a tier's search order.
type bc7Attempt struct {
	mode      int
	variation int
	source    partitionSource
	// fallback replaces a mode 0 attempt whose partition is beyond mode 0's 16.
	// Nil skips the attempt instead.
	fallback *bc7Attempt
}

// bc7Plan is the ordered search for one tier: head attempts once, then the per-rank
// attempts for each rank position 0..63.
type bc7Plan struct {
	head    []bc7Attempt
	perRank []bc7Attempt
}

var bc7Plans = [3][2]bc7Plan{
	QualityFast: {
		{
			head: []bc7Attempt{{mode: 6, variation: 6}},
			perRank: []bc7Attempt{
				{mode: 0, variation: 3, source: partitionRank3},
				{mode: 1, variation: 4, source: partitionRank2},
			},
		},
		{
			head: []bc7Attempt{{mode: 6, variation: 5}, {mode: 5, variation: 3}},
		},
	},
	QualityBalanced: {
		{
			head: []bc7Attempt{{mode: 6, variation: 6}, {mode: 5, variation: 4}, {mode: 4, variation: 4}},
			perRank: []bc7Attempt{
				{mode: 0, variation: 3, source: partitionRank3, fallback: &bc7Attempt{mode: 2, variation: 5, source: partitionRank3}},
				{mode: 1, variation: 4, source: partitionRank2},
			},
		},
		{
			head:    []bc7Attempt{{mode: 6, variation: 6}, {mode: 5, variation: 4}, {mode: 4, variation: 4}},
			perRank: []bc7Attempt{{mode: 7, variation: 3, source: partitionRank2}},
		},
	},
	QualityBestQuality: {
		{
			head: []bc7Attempt{{mode: 6, variation: 8}, {mode: 5, variation: 5}, {mode: 4, variation: 5}},
			perRank: []bc7Attempt{
				{mode: 0, variation: 4, source: partitionRank3},
				{mode: 2, variation: 5, source: partitionRank3},
				{mode: 1, variation: 4, source: partitionRank2},
				{mode: 3, variation: 5, source: partitionRank2},
			},
		},
		{
			head:    []bc7Attempt{{mode: 6, variation: 8}, {mode: 5, variation: 5}, {mode: 4, variation: 5}},
			perRank: []bc7Attempt{{mode: 7, variation: 4, source: partitionRank2}},
		},
	},
}

// bc7PlanFor returns the search order for a tier. Unknown tiers behave like balanced.
func bc7PlanFor(q Quality, alpha bool) *bc7Plan {
	if q > QualityBestQuality {
		q = QualityBalanced
	}
	if alpha {
		return &bc7Plans[q][1]
	}
	return &bc7Plans[q][0]
}
