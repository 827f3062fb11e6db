package bcn

import "sort"

// countClusters returns the number of distinct labels in a tile.
func countClusters(labels *[16]int) int {
	var seen [16]int
	n := 0
outer:
	for _, l := range labels {
		for _, s := range seen[:n] {
			if s == l {
				continue outer
			}
		}
		seen[n] = l
		n++
	}
	return n
}

// reduceClusters renumbers labels to 0..n-1 in order of first appearance.
func reduceClusters(labels *[16]int) (out [16]int, n int) {
	var keys [16]int
outer:
	for i, l := range labels {
		for j := 0; j < n; j++ {
			if keys[j] == l {
				out[i] = j
				continue outer
			}
		}
		keys[n] = l
		out[i] = n
		n++
	}
	return out, n
}

// partitionDisagreement counts texels whose cluster differs from the majority cluster
// of their subset under the given partition. Labels must be below 16.
func partitionDisagreement(labels *[16]int, subsets, partition int) int {
	var counts [3][16]int
	var majority [3]int
	for i, l := range labels {
		s := bc7Subset(subsets, partition, i)
		counts[s][l]++
		if counts[s][l] > counts[s][majority[s]] {
			majority[s] = l
		}
	}
	errs := 0
	for i, l := range labels {
		if l != majority[bc7Subset(subsets, partition, i)] {
			errs++
		}
	}
	return errs
}

// rankPartitions returns all 64 partition indices for the subset count, ordered by
// ascending disagreement with the cluster labels. Ties keep index order.
func rankPartitions(labels *[16]int, subsets int) [64]int {
	var order [64]int
	var score [64]int
	for p := range order {
		order[p] = p
		score[p] = partitionDisagreement(labels, subsets, p)
	}
	sort.SliceStable(order[:], func(i, j int) bool {
		return score[order[i]] < score[order[j]]
	})
	return order
}
