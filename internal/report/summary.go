package report

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Summary renders the executive console summary for a report.
func Summary(r Report) string {
	printer := message.NewPrinter(language.English)

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Scenario", "Files", "Success", "Data (GB)", "Avg MB/s", "p95 (s)"})

	var totalFiles, totalOK int
	var totalGB float64
	for _, s := range r.Scenarios {
		tw.AppendRow(table.Row{
			s.Name,
			printer.Sprintf("%d", s.FilesTested),
			fmt.Sprintf("%.1f%%", s.SuccessRatePercent),
			fmt.Sprintf("%.2f", s.TotalDataGB),
			fmt.Sprintf("%.2f", s.AvgThroughputMBps),
			fmt.Sprintf("%.1f", s.Performance.P95UploadTime),
		})
		totalFiles += s.FilesTested
		totalOK += s.SuccessfulUploads
		totalGB += s.TotalDataGB
	}

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignLeft, AlignHeader: text.AlignLeft},
		{Number: 2, Align: text.AlignRight, AlignHeader: text.AlignLeft},
		{Number: 3, Align: text.AlignRight, AlignHeader: text.AlignLeft},
		{Number: 4, Align: text.AlignRight, AlignHeader: text.AlignLeft},
		{Number: 5, Align: text.AlignRight, AlignHeader: text.AlignLeft},
		{Number: 6, Align: text.AlignRight, AlignHeader: text.AlignLeft},
	})

	var b strings.Builder
	b.WriteString("Upload Test Summary\n")
	fmt.Fprintf(&b, "API: %s   Source: %s\n", r.Environment.APIEndpoint, r.Environment.RemoteHost)
	b.WriteString(tw.Render())
	b.WriteString("\n")
	printer.Fprintf(&b, "Total: %d files, %d successful, %.2f GB transferred\n", totalFiles, totalOK, totalGB)

	var failures int
	for _, s := range r.Scenarios {
		failures += len(s.Failures)
	}
	if failures > 0 {
		printer.Fprintf(&b, "Failures: %d (see report for detail)\n", failures)
	}
	return b.String()
}
