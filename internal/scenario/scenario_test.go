package scenario

import (
	"math/rand"
	"testing"
	"time"

	"sermonbench/internal/catalog"
	"sermonbench/internal/config"
)

func TestBuiltInScenarios(t *testing.T) {
	scenarios := BuiltIn()
	if len(scenarios) != 4 {
		t.Fatalf("expected 4 built-in scenarios, got %d", len(scenarios))
	}
	names := make(map[string]bool)
	for _, s := range scenarios {
		if names[s.Name] {
			t.Errorf("duplicate scenario name %q", s.Name)
		}
		names[s.Name] = true
		if s.FileCount <= 0 || s.MaxConcurrency <= 0 || s.Duration <= 0 {
			t.Errorf("scenario %q has zero sizing: %+v", s.Name, s)
		}
		switch s.Pattern {
		case PatternImmediate, PatternStaggered, PatternRandom:
		default:
			t.Errorf("scenario %q has unknown pattern %q", s.Name, s.Pattern)
		}
	}
	if !names["sunday-with-network-issues"] {
		t.Fatal("expected the network issues scenario")
	}
}

func TestAllMergesConfigScenarios(t *testing.T) {
	cfg := &config.Config{
		Scenarios: []config.Scenario{
			{
				Name:              "midweek-batch",
				FileCount:         5,
				ConcurrentUploads: 2,
				DurationMinutes:   3,
				Pattern:           PatternImmediate,
			},
			{
				// Overrides the built-in of the same name.
				Name:              "sunday-peak-load",
				FileCount:         50,
				ConcurrentUploads: 25,
				DurationMinutes:   10,
				Pattern:           PatternRandom,
			},
		},
	}

	scenarios := All(cfg)
	if len(scenarios) != 5 {
		t.Fatalf("expected 5 scenarios, got %d", len(scenarios))
	}

	peak, err := Find(cfg, "sunday-peak-load")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if peak.FileCount != 50 {
		t.Fatalf("config override not applied: %+v", peak)
	}

	custom, err := Find(cfg, "midweek-batch")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if custom.Duration != 3*time.Minute || custom.MaxConcurrency != 2 {
		t.Fatalf("unexpected config scenario: %+v", custom)
	}

	if _, err := Find(cfg, "no-such-scenario"); err == nil {
		t.Fatal("expected error for unknown scenario")
	}
}

func catalogFixture() []catalog.TestFile {
	var files []catalog.TestFile
	add := func(n int, category catalog.Category, size int64) {
		for i := 0; i < n; i++ {
			files = append(files, catalog.TestFile{Category: category, Size: size})
		}
	}
	add(4, catalog.CategorySmall, 50<<20)
	add(5, catalog.CategoryMedium, 200<<20)
	add(12, catalog.CategoryLarge, 700<<20)
	add(6, catalog.CategoryXLarge, 2<<30)
	return files
}

func TestSelectFilesLargePreference(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	s := Scenario{FileCount: 10, SizePreference: "large"}

	selected := SelectFiles(catalogFixture(), s, rng)
	if len(selected) != 10 {
		t.Fatalf("expected 10 files, got %d", len(selected))
	}
	for _, f := range selected {
		if f.Category != catalog.CategoryLarge && f.Category != catalog.CategoryXLarge {
			t.Errorf("unexpected category %s in large selection", f.Category)
		}
	}
}

func TestSelectFilesXLargeOnly(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	s := Scenario{FileCount: 20, SizePreference: "xlarge"}

	selected := SelectFiles(catalogFixture(), s, rng)
	if len(selected) != 6 {
		t.Fatalf("expected all 6 xlarge files, got %d", len(selected))
	}
}

func TestSelectFilesMixedCapsPerCategory(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	s := Scenario{FileCount: 30, SizePreference: "mixed"}

	selected := SelectFiles(catalogFixture(), s, rng)
	counts := make(map[catalog.Category]int)
	for _, f := range selected {
		counts[f.Category]++
	}
	if counts[catalog.CategorySmall] > 2 || counts[catalog.CategoryMedium] > 3 ||
		counts[catalog.CategoryLarge] > 10 || counts[catalog.CategoryXLarge] > 5 {
		t.Fatalf("mixed selection exceeded category caps: %v", counts)
	}
}

func TestSelectFilesLimitsToFileCount(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	s := Scenario{FileCount: 3, SizePreference: "large"}
	if got := len(SelectFiles(catalogFixture(), s, rng)); got != 3 {
		t.Fatalf("expected 3 files, got %d", got)
	}
}

func TestFromConfig(t *testing.T) {
	s := FromConfig(config.Scenario{
		Name:                  "custom",
		FileCount:             8,
		ConcurrentUploads:     4,
		DurationMinutes:       2,
		Pattern:               PatternStaggered,
		SizePreference:        "mixed",
		SimulateInterruptions: true,
		NetworkDelayMS:        250,
		UploadMethod:          MethodDirect,
		CheckDuplicates:       true,
	})
	if s.Duration != 2*time.Minute {
		t.Fatalf("unexpected duration %v", s.Duration)
	}
	if s.NetworkDelay != 250*time.Millisecond {
		t.Fatalf("unexpected network delay %v", s.NetworkDelay)
	}
	if !s.SimulateInterruptions {
		t.Fatal("interruption flag lost")
	}
	if s.Method != MethodDirect {
		t.Fatalf("unexpected method %q", s.Method)
	}
	if !s.CheckDuplicates {
		t.Fatal("duplicate check flag lost")
	}
}

func TestMethodDefaultsToPresigned(t *testing.T) {
	if got := (Scenario{}).method(); got != MethodPresigned {
		t.Fatalf("expected presigned default, got %q", got)
	}
	if got := (Scenario{Method: MethodBatch}).method(); got != MethodBatch {
		t.Fatalf("expected batch method preserved, got %q", got)
	}
}
