package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"sermonbench/internal/metrics"
	"sermonbench/internal/scenario"
)

// Environment identifies what was tested and from where.
type Environment struct {
	APIEndpoint string `json:"api_endpoint"`
	RemoteHost  string `json:"remote_host"`
}

// Report is the persisted artifact for one harness invocation.
type Report struct {
	GeneratedAt    time.Time        `json:"generated_at"`
	Environment    Environment      `json:"environment"`
	TotalScenarios int              `json:"total_scenarios"`
	Scenarios      []ScenarioReport `json:"scenario_results"`
}

// ScenarioReport is the per-scenario breakdown.
type ScenarioReport struct {
	Name               string                  `json:"name"`
	Description        string                  `json:"description,omitempty"`
	RunID              string                  `json:"run_id"`
	DurationSeconds    float64                 `json:"duration_seconds"`
	FilesTested        int                     `json:"files_tested"`
	SuccessfulUploads  int                     `json:"successful_uploads"`
	FailedUploads      int                     `json:"failed_uploads"`
	SuccessRatePercent float64                 `json:"success_rate_percent"`
	TotalDataGB        float64                 `json:"total_data_gb"`
	AvgThroughputMBps  float64                 `json:"avg_throughput_mbps"`
	PeakThroughputMBps float64                 `json:"peak_throughput_mbps"`
	Performance        Performance             `json:"performance_metrics"`
	Failures           []Failure               `json:"failed_uploads_detail"`
	Results            []scenario.UploadResult `json:"detailed_results"`
}

// Performance carries upload-duration percentiles and API latency, all in
// seconds for cross-run comparison.
type Performance struct {
	MinUploadTime      float64 `json:"min_upload_time"`
	MaxUploadTime      float64 `json:"max_upload_time"`
	MedianUploadTime   float64 `json:"median_upload_time"`
	P95UploadTime      float64 `json:"p95_upload_time"`
	P99UploadTime      float64 `json:"p99_upload_time"`
	AvgAPIResponseTime float64 `json:"avg_api_response_time"`
}

// Failure is one failed upload in compact form.
type Failure struct {
	File   string `json:"file"`
	Error  string `json:"error"`
	Method string `json:"method"`
}

// RunMetrics pairs a finished batch with its aggregation.
type RunMetrics struct {
	Run     scenario.BatchRun
	Metrics metrics.Metrics
}

// Build assembles the report. Identical inputs produce identical output
// except for the GeneratedAt timestamp.
func Build(env Environment, runs []RunMetrics) Report {
	r := Report{
		GeneratedAt:    time.Now().UTC(),
		Environment:    env,
		TotalScenarios: len(runs),
		Scenarios:      make([]ScenarioReport, 0, len(runs)),
	}

	for _, rm := range runs {
		m := rm.Metrics
		sr := ScenarioReport{
			Name:               rm.Run.Scenario.Name,
			Description:        rm.Run.Scenario.Description,
			RunID:              rm.Run.ID,
			DurationSeconds:    m.TotalDuration.Seconds(),
			FilesTested:        m.TotalFiles,
			SuccessfulUploads:  m.SuccessfulUploads,
			FailedUploads:      m.FailedUploads,
			SuccessRatePercent: m.SuccessRate,
			TotalDataGB:        float64(m.TotalBytes) / (1 << 30),
			AvgThroughputMBps:  m.AvgThroughputMBps,
			PeakThroughputMBps: m.PeakThroughputMBps,
			Performance: Performance{
				MinUploadTime:      m.MinDuration.Seconds(),
				MaxUploadTime:      m.MaxDuration.Seconds(),
				MedianUploadTime:   m.P50Duration.Seconds(),
				P95UploadTime:      m.P95Duration.Seconds(),
				P99UploadTime:      m.P99Duration.Seconds(),
				AvgAPIResponseTime: m.AvgAPIResponseTime.Seconds(),
			},
			Failures: make([]Failure, 0),
			Results:  rm.Run.Results,
		}
		for _, res := range rm.Run.Results {
			if res.Success {
				continue
			}
			sr.Failures = append(sr.Failures, Failure{
				File:   res.FileName,
				Error:  res.Error,
				Method: res.Method,
			})
		}
		r.Scenarios = append(r.Scenarios, sr)
	}
	return r
}

// Write persists the report as indented JSON.
func (r Report) Write(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create report directory: %w", err)
		}
	}

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// DefaultPath names a report file inside dir, keyed by timestamp so repeated
// runs never clobber each other.
func DefaultPath(dir string, now time.Time) string {
	return filepath.Join(dir, fmt.Sprintf("upload_test_report_%s.json", now.Format("20060102_150405")))
}
