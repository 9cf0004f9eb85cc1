package catalog

import "fmt"

// Category buckets test files by size so scenarios can select realistic mixes.
type Category string

const (
	CategorySmall  Category = "small"  // < 100 MB
	CategoryMedium Category = "medium" // 100-500 MB
	CategoryLarge  Category = "large"  // 500 MB - 1 GB
	CategoryXLarge Category = "xlarge" // > 1 GB
)

const mebibyte = 1024 * 1024

// Categorize maps a file size in bytes onto its category.
func Categorize(size int64) Category {
	mb := size / mebibyte
	switch {
	case mb < 100:
		return CategorySmall
	case mb < 500:
		return CategoryMedium
	case mb < 1000:
		return CategoryLarge
	default:
		return CategoryXLarge
	}
}

// ParseCategory converts a string into a known Category.
func ParseCategory(value string) (Category, bool) {
	switch Category(value) {
	case CategorySmall, CategoryMedium, CategoryLarge, CategoryXLarge:
		return Category(value), true
	default:
		return "", false
	}
}

// TestFile describes one WAV file discovered on the recording host.
// Instances are immutable after discovery.
type TestFile struct {
	Name       string
	RemotePath string
	Size       int64
	Category   Category
}

// SizeMB returns the file size in mebibytes.
func (f TestFile) SizeMB() float64 {
	return float64(f.Size) / mebibyte
}

// Distribution counts files per category.
type Distribution struct {
	Small      int
	Medium     int
	Large      int
	XLarge     int
	TotalBytes int64
}

// Distribute summarizes a file list per category.
func Distribute(files []TestFile) Distribution {
	var dist Distribution
	for _, file := range files {
		dist.TotalBytes += file.Size
		switch file.Category {
		case CategorySmall:
			dist.Small++
		case CategoryMedium:
			dist.Medium++
		case CategoryLarge:
			dist.Large++
		case CategoryXLarge:
			dist.XLarge++
		}
	}
	return dist
}

// String renders the distribution for log output.
func (d Distribution) String() string {
	return fmt.Sprintf("small=%d medium=%d large=%d xlarge=%d total_gb=%.2f",
		d.Small, d.Medium, d.Large, d.XLarge, float64(d.TotalBytes)/(1024*1024*1024))
}
