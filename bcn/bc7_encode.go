package bcn

// bc7Search keeps the best candidate seen so far and decides when to stop.
type bc7Search struct {
	tile    *Tile
	tuning  BC7Tuning
	best    bc7Params
	bestErr float32
	tries   int
}

// try scores a candidate and reports whether the search should stop.
func (s *bc7Search) try(p bc7Params) bool {
	decoded := p.decode()
	err := TileError(s.tile, &decoded)
	s.tries++
	if err < s.bestErr {
		s.best, s.bestErr = p, err
	}
	return err < s.tuning.ErrorThreshold || s.tries > s.tuning.MaxTries
}

func (a *bc7Attempt) encode(t *Tile, partition int) bc7Params {
	switch a.mode {
	case 0:
		return encodeMode0(t, a.variation, partition)
	case 1:
		return encodeMode1(t, a.variation, partition)
	case 2:
		return encodeMode2(t, a.variation, partition)
	case 3:
		return encodeMode3(t, a.variation, partition)
	case 4:
		return encodeMode4(t, a.variation)
	case 5:
		return encodeMode5(t, a.variation)
	case 6:
		return encodeMode6(t, a.variation)
	default:
		return encodeMode7(t, a.variation, partition)
	}
}

// tilePartitionRanks clusters t into 2 and 3 groups and ranks the partition tables
// against each. A 2-cluster result that collapses to one label borrows the
// 3-cluster labels.
func tilePartitionRanks(t *Tile) (rank2, rank3 [64]int) {
	labels2, n2 := clusterTile(t, 2)
	labels3, _ := clusterTile(t, 3)
	if n2 < 2 {
		labels2 = labels3
	}
	return rankPartitions(&labels2, 2), rankPartitions(&labels3, 3)
}

// searchBC7 runs the tier's attempt list over t and returns the best block found.
// A non-nil seed is the starting best, so the result never scores worse than it.
func searchBC7(t *Tile, q Quality, tuning BC7Tuning, seed *bc7Params) bc7Params {
	if t.solid() {
		return solidBC7(t[0])
	}

	s := bc7Search{tile: t, tuning: tuning, bestErr: 99999}
	if seed != nil {
		decoded := seed.decode()
		s.best, s.bestErr = *seed, TileError(t, &decoded)
		if s.bestErr < tuning.ErrorThreshold {
			return s.best
		}
	}

	plan := bc7PlanFor(q, t.HasTransparent())
	for i := range plan.head {
		if s.try(plan.head[i].encode(t, 0)) {
			return s.best
		}
	}
	if len(plan.perRank) == 0 {
		return s.best
	}

	rank2, rank3 := tilePartitionRanks(t)
	for i := 0; i < 64; i++ {
		for j := range plan.perRank {
			a := &plan.perRank[j]
			partition := rank2[i]
			if a.source == partitionRank3 {
				partition = rank3[i]
			}
			if a.mode == 0 && partition >= 16 {
				if a.fallback == nil {
					continue
				}
				a = a.fallback
			}
			if s.try(a.encode(t, partition)) {
				return s.best
			}
		}
	}
	return s.best
}

// encodeBC7Tiers searches every tier up to q, each seeded with the previous tier's
// winner, and returns the block with the lowest reconstruction error. tuning is the
// budget of tier q; lower tiers use their defaults.
func encodeBC7Tiers(t *Tile, q Quality, tuning BC7Tuning) bc7Params {
	opts := Options{Format: FormatBC7}
	var best bc7Params
	var bestErr int
	for tier := QualityFast; tier <= q; tier++ {
		tt := DefaultBC7Tuning(tier)
		if tier == q {
			tt = tuning
		}
		var seed *bc7Params
		if tier > QualityFast {
			seed = &best
		}
		p := searchBC7(t, tier, tt, seed)
		decoded := p.decode()
		if e := reconstructionError(t, &decoded, opts); tier == QualityFast || e < bestErr {
			best, bestErr = p, e
		}
	}
	return best
}
