package scenario

import (
	"fmt"
	"math/rand"
	"time"

	"sermonbench/internal/catalog"
	"sermonbench/internal/config"
)

// Submission patterns.
const (
	PatternImmediate = "immediate"
	PatternStaggered = "staggered"
	PatternRandom    = "random"
)

// Scenario describes one stress run: how many files, how hard, and under
// which temporal pattern.
type Scenario struct {
	Name                  string        `json:"name"`
	Description           string        `json:"description"`
	FileCount             int           `json:"file_count"`
	MaxConcurrency        int           `json:"max_concurrency"`
	Duration              time.Duration `json:"duration"`
	Pattern               string        `json:"pattern"`
	SizePreference        string        `json:"size_preference"`
	SimulateInterruptions bool          `json:"simulate_interruptions"`
	NetworkDelay          time.Duration `json:"network_delay,omitempty"`

	// Method selects the upload flow: direct multipart, presigned per file,
	// or one batch presign for the whole run. Empty means presigned.
	Method string `json:"method,omitempty"`

	// CheckDuplicates hashes each file and asks the API before transferring,
	// mirroring the uploader's own deduplication.
	CheckDuplicates bool `json:"check_duplicates,omitempty"`

	// SubmitStagger overrides the gap between immediate-pattern submissions.
	// Zero means the built-in default.
	SubmitStagger time.Duration `json:"-"`
}

func (s Scenario) method() string {
	if s.Method == "" {
		return MethodPresigned
	}
	return s.Method
}

// BuiltIn returns the standard Sunday morning scenario set, ordered from
// worst case to most chaotic.
func BuiltIn() []Scenario {
	return []Scenario{
		{
			Name:           "sunday-immediate-rush",
			Description:    "Everyone uploads immediately after service (worst case)",
			FileCount:      25,
			MaxConcurrency: 15,
			Duration:       5 * time.Minute,
			Pattern:        PatternImmediate,
			SizePreference: "large",
		},
		{
			Name:           "sunday-staggered-upload",
			Description:    "Staff uploads files over 15 minutes (typical case)",
			FileCount:      20,
			MaxConcurrency: 8,
			Duration:       15 * time.Minute,
			Pattern:        PatternStaggered,
			SizePreference: "mixed",
		},
		{
			Name:                  "sunday-with-network-issues",
			Description:           "Uploads with simulated network instability",
			FileCount:             15,
			MaxConcurrency:        6,
			Duration:              20 * time.Minute,
			Pattern:               PatternStaggered,
			SizePreference:        "large",
			SimulateInterruptions: true,
			NetworkDelay:          500 * time.Millisecond,
		},
		{
			Name:           "sunday-peak-load",
			Description:    "Maximum realistic load - sermon + music + backup files",
			FileCount:      30,
			MaxConcurrency: 20,
			Duration:       10 * time.Minute,
			Pattern:        PatternRandom,
			SizePreference: "mixed",
		},
	}
}

// FromConfig converts a user-defined scenario from the config file.
func FromConfig(cfg config.Scenario) Scenario {
	return Scenario{
		Name:                  cfg.Name,
		Description:           cfg.Description,
		FileCount:             cfg.FileCount,
		MaxConcurrency:        cfg.ConcurrentUploads,
		Duration:              time.Duration(cfg.DurationMinutes) * time.Minute,
		Pattern:               cfg.Pattern,
		SizePreference:        cfg.SizePreference,
		SimulateInterruptions: cfg.SimulateInterruptions,
		NetworkDelay:          time.Duration(cfg.NetworkDelayMS) * time.Millisecond,
		Method:                cfg.UploadMethod,
		CheckDuplicates:       cfg.CheckDuplicates,
	}
}

// All merges the built-in set with config-defined scenarios. Config entries
// with a built-in name replace the built-in.
func All(cfg *config.Config) []Scenario {
	scenarios := BuiltIn()
	index := make(map[string]int, len(scenarios))
	for i, s := range scenarios {
		index[s.Name] = i
	}
	for _, entry := range cfg.Scenarios {
		s := FromConfig(entry)
		if i, ok := index[s.Name]; ok {
			scenarios[i] = s
			continue
		}
		index[s.Name] = len(scenarios)
		scenarios = append(scenarios, s)
	}
	if cfg.Testing.SubmitStaggerMS > 0 {
		stagger := time.Duration(cfg.Testing.SubmitStaggerMS) * time.Millisecond
		for i := range scenarios {
			scenarios[i].SubmitStagger = stagger
		}
	}
	return scenarios
}

// Find returns the named scenario from the merged set.
func Find(cfg *config.Config, name string) (Scenario, error) {
	for _, s := range All(cfg) {
		if s.Name == name {
			return s, nil
		}
	}
	return Scenario{}, fmt.Errorf("unknown scenario %q", name)
}

// SelectFiles picks files matching the scenario's size preference, shuffled
// and limited to the scenario's file count. Mixed preference weights the
// selection toward larger files, which dominate real Sunday batches.
func SelectFiles(files []catalog.TestFile, s Scenario, rng *rand.Rand) []catalog.TestFile {
	var selected []catalog.TestFile
	switch s.SizePreference {
	case "small", "medium":
		want := catalog.Category(s.SizePreference)
		for _, f := range files {
			if f.Category == want {
				selected = append(selected, f)
			}
		}
	case "large":
		for _, f := range files {
			if f.Category == catalog.CategoryLarge || f.Category == catalog.CategoryXLarge {
				selected = append(selected, f)
			}
		}
	case "xlarge":
		for _, f := range files {
			if f.Category == catalog.CategoryXLarge {
				selected = append(selected, f)
			}
		}
	default: // mixed
		selected = mixedSelection(files)
	}

	rng.Shuffle(len(selected), func(i, j int) {
		selected[i], selected[j] = selected[j], selected[i]
	})
	if s.FileCount > 0 && len(selected) > s.FileCount {
		selected = selected[:s.FileCount]
	}
	return selected
}

func mixedSelection(files []catalog.TestFile) []catalog.TestFile {
	limits := map[catalog.Category]int{
		catalog.CategorySmall:  2,
		catalog.CategoryMedium: 3,
		catalog.CategoryLarge:  10,
		catalog.CategoryXLarge: 5,
	}
	taken := make(map[catalog.Category]int)
	var selected []catalog.TestFile
	for _, f := range files {
		if taken[f.Category] >= limits[f.Category] {
			continue
		}
		taken[f.Category]++
		selected = append(selected, f)
	}
	return selected
}
