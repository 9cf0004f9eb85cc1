package progress

import (
	"fmt"
	"strings"
	"time"
)

// Discord embed colors.
const (
	colorError      = 0xff0000
	colorComplete   = 0x00ff00
	colorInProgress = 0xffaa00
)

// Embed is the renderable shape of a progress message. The messenger decides
// how it goes over the wire.
type Embed struct {
	Title     string
	Color     int
	Fields    []Field
	Footer    string
	Timestamp time.Time
}

// Field is one titled block inside an embed.
type Field struct {
	Name   string
	Value  string
	Inline bool
}

// fileState is the tracked per-file detail rendered into the embed.
type fileState struct {
	Stage    Stage
	Size     int64
	Duration time.Duration
	Error    string
}

// renderEmbed builds the full progress embed for a batch. Order is the
// submission order of files; color follows the worst state present.
func renderEmbed(title string, order []string, files map[string]*fileState) Embed {
	var completed, errored int
	for _, state := range files {
		switch state.Stage {
		case StageCompleted:
			completed++
		case StageError:
			errored++
		}
	}

	color := colorInProgress
	switch {
	case errored > 0:
		color = colorError
	case completed == len(files) && len(files) > 0:
		color = colorComplete
	}

	fields := make([]Field, 0, len(order)+1)
	for _, name := range order {
		state, ok := files[name]
		if !ok {
			continue
		}
		fields = append(fields, Field{
			Name:  "📄 " + truncate(name, 50),
			Value: renderFileValue(state),
		})
	}

	summary := fmt.Sprintf("**Total:** %d files\n**Completed:** %d", len(files), completed)
	if errored > 0 {
		summary += fmt.Sprintf("\n**Errors:** %d", errored)
	}
	fields = append(fields, Field{Name: "📊 Summary", Value: summary, Inline: true})

	now := time.Now()
	return Embed{
		Title:     title,
		Color:     color,
		Fields:    fields,
		Footer:    "Sermon Upload Harness • " + now.Format("03:04 PM"),
		Timestamp: now,
	}
}

func renderFileValue(state *fileState) string {
	var b strings.Builder
	b.WriteString(progressBar(state.Stage))
	b.WriteString("\n**Status:** ")
	b.WriteString(state.Stage.String())
	if state.Size > 0 {
		b.WriteString("\n**Size:** ")
		b.WriteString(formatSize(state.Size))
	}
	if state.Duration > 0 {
		fmt.Fprintf(&b, "\n**Duration:** %.1fs", state.Duration.Seconds())
	}
	if state.Error != "" {
		b.WriteString("\n**Error:** ")
		b.WriteString(truncate(state.Error, 200))
	}
	return b.String()
}

// progressBar renders a ten-cell bar, two cells per completed stage.
func progressBar(stage Stage) string {
	if stage == StageError {
		return "❌ ░░░░░░░░░░ Error"
	}
	filled := int(stage) + 1
	if filled > 5 {
		filled = 5
	}
	return strings.Repeat("█", filled*2) + strings.Repeat("░", (5-filled)*2)
}

func formatSize(size int64) string {
	value := float64(size)
	for _, unit := range []string{"B", "KB", "MB", "GB"} {
		if value < 1024 {
			return fmt.Sprintf("%.1f %s", value, unit)
		}
		value /= 1024
	}
	return fmt.Sprintf("%.1f TB", value)
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit]
}
