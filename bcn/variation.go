package bcn

// Signed per-channel moves applied to the raw 565 endpoints during local search.
// Entries 0..7 move both endpoints, 8..15 only endpoint 0 and 16..23 only endpoint 1.
var (
	varPatternEp0R = [24]int{1, 1, 0, 0, -1, 0, 0, -1, 1, -1, 1, 0, 0, -1, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0}
	varPatternEp0G = [24]int{1, 0, 1, 0, 0, -1, 0, -1, 1, -1, 0, 1, 0, 0, -1, 0, 0, 0, 0, 0, 0, 0, 0, 0}
	varPatternEp0B = [24]int{1, 0, 0, 1, 0, 0, -1, -1, 1, -1, 0, 0, 1, 0, 0, -1, 0, 0, 0, 0, 0, 0, 0, 0}
	varPatternEp1R = [24]int{-1, -1, 0, 0, 1, 0, 0, 1, 0, 0, 0, 0, 0, 0, 0, 0, 1, -1, 1, 0, 0, -1, 0, 0}
	varPatternEp1G = [24]int{-1, 0, -1, 0, 0, 1, 0, 1, 0, 0, 0, 0, 0, 0, 0, 0, 1, -1, 0, 1, 0, 0, -1, 0}
	varPatternEp1B = [24]int{-1, 0, 0, -1, 0, 0, 1, 1, 0, 0, 0, 0, 0, 0, 0, 0, 1, -1, 0, 0, 1, 0, 0, -1}
)

const varPatternCount = len(varPatternEp0R)

// variate565 applies move i (mod 24) to both endpoints, clamping each raw channel.
func variate565(c0, c1 rgb565, i int) (rgb565, rgb565) {
	idx := i % varPatternCount
	n0 := c0.withRaw(c0.r5()+varPatternEp0R[idx], c0.g6()+varPatternEp0G[idx], c0.b5()+varPatternEp0B[idx])
	n1 := c1.withRaw(c1.r5()+varPatternEp1R[idx], c1.g6()+varPatternEp1G[idx], c1.b5()+varPatternEp1B[idx])
	return n0, n1
}
