package scenario

import (
	"math/rand"
	"testing"
	"time"
)

func TestImmediateOffsets(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	s := Scenario{Pattern: PatternImmediate, Duration: 5 * time.Minute}

	offsets := startOffsets(s, 5, rng)
	for i, offset := range offsets {
		if want := time.Duration(i) * submitStagger; offset != want {
			t.Errorf("offset[%d] = %v, want %v", i, offset, want)
		}
	}
}

func TestStaggeredOffsetsRespectJitterBound(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	s := Scenario{Pattern: PatternStaggered, Duration: 600 * time.Second}

	offsets := startOffsets(s, 10, rng)
	interval := 60 * time.Second
	for i, offset := range offsets {
		base := time.Duration(i) * interval
		jitter := offset - base
		if jitter < 0 {
			t.Errorf("offset[%d] = %v before its slot %v", i, offset, base)
		}
		// 30% jitter bound: each start lands within 18s of its slot.
		if jitter > 18*time.Second {
			t.Errorf("offset[%d] jitter %v exceeds 18s", i, jitter)
		}
	}
}

func TestRandomOffsetsStayInsideBudget(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	s := Scenario{Pattern: PatternRandom, Duration: 10 * time.Minute}

	offsets := startOffsets(s, 50, rng)
	for i, offset := range offsets {
		if offset < 0 || offset >= s.Duration {
			t.Errorf("offset[%d] = %v outside [0, %v)", i, offset, s.Duration)
		}
	}
}

func TestRandomOffsetsAreIndependentDraws(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	s := Scenario{Pattern: PatternRandom, Duration: 10 * time.Minute}

	offsets := startOffsets(s, 20, rng)
	distinct := make(map[time.Duration]bool, len(offsets))
	for _, offset := range offsets {
		distinct[offset] = true
	}
	if len(distinct) < 15 {
		t.Fatalf("expected mostly distinct draws, got %d of %d", len(distinct), len(offsets))
	}
}

func TestZeroDurationYieldsZeroOffsets(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for _, pattern := range []string{PatternStaggered, PatternRandom} {
		offsets := startOffsets(Scenario{Pattern: pattern}, 3, rng)
		for i, offset := range offsets {
			if offset != 0 {
				t.Errorf("%s offset[%d] = %v, want 0", pattern, i, offset)
			}
		}
	}
}

func TestDeterministicWithFixedSeed(t *testing.T) {
	s := Scenario{Pattern: PatternStaggered, Duration: 600 * time.Second}
	a := startOffsets(s, 10, rand.New(rand.NewSource(99)))
	b := startOffsets(s, 10, rand.New(rand.NewSource(99)))
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("offsets diverged at %d: %v vs %v", i, a[i], b[i])
		}
	}
}
