package scenario

import (
	"math/rand"
	"time"
)

// submitStagger is the fixed gap between immediate-pattern submissions,
// enough to avoid a synchronized connection burst without changing the
// pattern's character.
const submitStagger = 100 * time.Millisecond

// startOffsets computes each file's scheduled start relative to run start.
//
//   - immediate: i×100ms, everything at once modulo the anti-burst gap.
//   - staggered: files spread evenly over the budget, each start pushed by a
//     uniform jitter in [0, 0.3×interval) so wall clocks never align.
//   - random: starts drawn independently and uniformly over the budget.
func startOffsets(s Scenario, n int, rng *rand.Rand) []time.Duration {
	offsets := make([]time.Duration, n)
	if n == 0 {
		return offsets
	}
	if s.Duration <= 0 && s.Pattern != PatternImmediate {
		return offsets
	}
	switch s.Pattern {
	case PatternStaggered:
		interval := s.Duration / time.Duration(n)
		for i := range offsets {
			jitter := time.Duration(rng.Int63n(int64(3*interval/10) + 1))
			offsets[i] = time.Duration(i)*interval + jitter
		}
	case PatternRandom:
		for i := range offsets {
			offsets[i] = time.Duration(rng.Int63n(int64(s.Duration)))
		}
	default: // immediate
		stagger := s.SubmitStagger
		if stagger <= 0 {
			stagger = submitStagger
		}
		for i := range offsets {
			offsets[i] = time.Duration(i) * stagger
		}
	}
	return offsets
}
