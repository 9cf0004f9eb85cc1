package catalog

import (
	"strings"
	"testing"
)

func TestCategorizeThresholds(t *testing.T) {
	tests := []struct {
		name string
		size int64
		want Category
	}{
		{"tiny", 5 * mebibyte, CategorySmall},
		{"just under small cap", 99 * mebibyte, CategorySmall},
		{"medium", 100 * mebibyte, CategoryMedium},
		{"large", 500 * mebibyte, CategoryLarge},
		{"just under xlarge", 999 * mebibyte, CategoryLarge},
		{"xlarge", 1000 * mebibyte, CategoryXLarge},
		{"huge", 4 * 1024 * mebibyte, CategoryXLarge},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Categorize(tc.size); got != tc.want {
				t.Fatalf("Categorize(%d) = %s, want %s", tc.size, got, tc.want)
			}
		})
	}
}

func TestParseListing(t *testing.T) {
	output := strings.Join([]string{
		"/data/sermon 2024-01-07.wav|734003200",
		"/data/music (piano).wav|52428800",
		"/data/empty.wav|0",
		"not a listing line",
		"/data/broken.wav|notanumber",
		"",
	}, "\n")

	files := parseListing(output)
	if len(files) != 2 {
		t.Fatalf("expected 2 parsed files, got %d", len(files))
	}

	byName := make(map[string]TestFile, len(files))
	for _, f := range files {
		byName[f.Name] = f
	}

	sermon, ok := byName["sermon 2024-01-07.wav"]
	if !ok {
		t.Fatal("sermon file missing from listing")
	}
	if sermon.Category != CategoryLarge {
		t.Fatalf("expected large sermon, got %s", sermon.Category)
	}
	if sermon.RemotePath != "/data/sermon 2024-01-07.wav" {
		t.Fatalf("unexpected remote path: %q", sermon.RemotePath)
	}

	music, ok := byName["music (piano).wav"]
	if !ok {
		t.Fatal("music file missing from listing")
	}
	if music.Category != CategorySmall {
		t.Fatalf("expected small music file, got %s", music.Category)
	}
}

func TestDistribute(t *testing.T) {
	files := []TestFile{
		{Size: 10 * mebibyte, Category: CategorySmall},
		{Size: 200 * mebibyte, Category: CategoryMedium},
		{Size: 700 * mebibyte, Category: CategoryLarge},
		{Size: 700 * mebibyte, Category: CategoryLarge},
		{Size: 2048 * mebibyte, Category: CategoryXLarge},
	}
	dist := Distribute(files)
	if dist.Small != 1 || dist.Medium != 1 || dist.Large != 2 || dist.XLarge != 1 {
		t.Fatalf("unexpected distribution: %+v", dist)
	}
	want := int64(10+200+700+700+2048) * mebibyte
	if dist.TotalBytes != want {
		t.Fatalf("expected total %d, got %d", want, dist.TotalBytes)
	}
}

func TestShellQuoteEscapesSingleQuotes(t *testing.T) {
	quoted := shellQuote("/data/it's here")
	if quoted != `'/data/it'\''s here'` {
		t.Fatalf("unexpected quoting: %s", quoted)
	}
}

func TestParseCategory(t *testing.T) {
	if _, ok := ParseCategory("huge"); ok {
		t.Fatal("expected unknown category to be rejected")
	}
	got, ok := ParseCategory("xlarge")
	if !ok || got != CategoryXLarge {
		t.Fatalf("expected xlarge, got %q ok=%v", got, ok)
	}
}
