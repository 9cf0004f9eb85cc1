package catalog

import (
	"fmt"
	"log/slog"
	"path"
	"sort"
	"strconv"
	"strings"
)

// Discover lists WAV files under the configured root and classifies them by
// size. Entries that fail to parse are skipped; zero-byte files are ignored.
func (c *Client) Discover() ([]TestFile, error) {
	command := fmt.Sprintf("find %s -name '*.wav' -type f -printf '%%p|%%s\\n'", shellQuote(c.cfg.RootDir))

	output, err := c.run(command)
	if err != nil {
		return nil, fmt.Errorf("%w: list %s: %v", ErrDiscovery, c.cfg.RootDir, err)
	}

	files := parseListing(string(output))
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: nothing under %s", ErrDiscovery, c.cfg.RootDir)
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })

	c.logger.Info("discovered test files",
		slog.Int("count", len(files)),
		slog.String("distribution", Distribute(files).String()),
	)
	return files, nil
}

func parseListing(output string) []TestFile {
	var files []TestFile
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		idx := strings.LastIndexByte(line, '|')
		if idx <= 0 || idx == len(line)-1 {
			continue
		}
		remotePath := line[:idx]
		size, err := strconv.ParseInt(line[idx+1:], 10, 64)
		if err != nil || size <= 0 {
			continue
		}
		files = append(files, TestFile{
			Name:       path.Base(remotePath),
			RemotePath: remotePath,
			Size:       size,
			Category:   Categorize(size),
		})
	}
	return files
}

func shellQuote(value string) string {
	return "'" + strings.ReplaceAll(value, "'", `'\''`) + "'"
}
