package metrics

import (
	"sort"
	"time"

	"sermonbench/internal/scenario"
)

// Sample-count floors below which high percentiles degrade to the maximum.
// A p99 over a dozen samples is noise dressed up as precision.
const (
	p95MinSamples = 20
	p99MinSamples = 100
)

// Metrics summarizes one scenario run.
type Metrics struct {
	TestName  string    `json:"test_name"`
	StartedAt time.Time `json:"started_at"`
	EndedAt   time.Time `json:"ended_at"`

	TotalFiles        int           `json:"total_files"`
	SuccessfulUploads int           `json:"successful_uploads"`
	FailedUploads     int           `json:"failed_uploads"`
	SuccessRate       float64       `json:"success_rate"`
	TotalBytes        int64         `json:"total_bytes"`
	TotalDuration     time.Duration `json:"total_duration"`

	AvgThroughputMBps  float64 `json:"avg_throughput_mbps"`
	PeakThroughputMBps float64 `json:"peak_throughput_mbps"`
	MinThroughputMBps  float64 `json:"min_throughput_mbps"`

	MinDuration time.Duration `json:"min_duration"`
	MaxDuration time.Duration `json:"max_duration"`
	P50Duration time.Duration `json:"p50_duration"`
	P95Duration time.Duration `json:"p95_duration"`
	P99Duration time.Duration `json:"p99_duration"`

	AvgAPIResponseTime time.Duration `json:"avg_api_response_time"`
	MinAPIResponseTime time.Duration `json:"min_api_response_time"`
	MaxAPIResponseTime time.Duration `json:"max_api_response_time"`
}

// Aggregate computes run statistics from upload results. Empty input yields
// all-zero metrics with only the name and window filled in. Total bytes count
// successful uploads only; duration percentiles cover every result with a
// positive duration, failures included.
func Aggregate(name string, start, end time.Time, results []scenario.UploadResult) Metrics {
	m := Metrics{
		TestName:      name,
		StartedAt:     start,
		EndedAt:       end,
		TotalFiles:    len(results),
		TotalDuration: end.Sub(start),
	}
	if len(results) == 0 {
		m.TotalDuration = 0
		return m
	}

	var durations []time.Duration
	var apiTimes []time.Duration
	var throughputSum float64
	var throughputCount int

	for _, r := range results {
		if r.Duration > 0 {
			durations = append(durations, r.Duration)
		}
		if r.APIResponseTime > 0 {
			apiTimes = append(apiTimes, r.APIResponseTime)
		}
		if !r.Success {
			m.FailedUploads++
			continue
		}
		m.SuccessfulUploads++
		m.TotalBytes += r.FileSize
		if r.ThroughputMBps > 0 {
			throughputSum += r.ThroughputMBps
			throughputCount++
			if r.ThroughputMBps > m.PeakThroughputMBps {
				m.PeakThroughputMBps = r.ThroughputMBps
			}
			if m.MinThroughputMBps == 0 || r.ThroughputMBps < m.MinThroughputMBps {
				m.MinThroughputMBps = r.ThroughputMBps
			}
		}
	}

	m.SuccessRate = float64(m.SuccessfulUploads) / float64(len(results)) * 100
	if throughputCount > 0 {
		m.AvgThroughputMBps = throughputSum / float64(throughputCount)
	}

	if len(durations) > 0 {
		sort.Slice(durations, func(i, j int) bool { return durations[i] < durations[j] })
		m.MinDuration = durations[0]
		m.MaxDuration = durations[len(durations)-1]
		m.P50Duration = median(durations)
		m.P95Duration = percentileOrMax(durations, 0.95, p95MinSamples)
		m.P99Duration = percentileOrMax(durations, 0.99, p99MinSamples)
	}

	if len(apiTimes) > 0 {
		sort.Slice(apiTimes, func(i, j int) bool { return apiTimes[i] < apiTimes[j] })
		m.MinAPIResponseTime = apiTimes[0]
		m.MaxAPIResponseTime = apiTimes[len(apiTimes)-1]
		var sum time.Duration
		for _, t := range apiTimes {
			sum += t
		}
		m.AvgAPIResponseTime = sum / time.Duration(len(apiTimes))
	}

	return m
}

// median of a sorted slice; even lengths average the two middle values.
func median(sorted []time.Duration) time.Duration {
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// percentileOrMax returns the nearest-rank percentile of a sorted slice, or
// the maximum when there are fewer than minSamples values.
func percentileOrMax(sorted []time.Duration, q float64, minSamples int) time.Duration {
	n := len(sorted)
	if n < minSamples {
		return sorted[n-1]
	}
	rank := int(float64(n)*q + 0.5)
	if rank < 1 {
		rank = 1
	}
	if rank > n {
		rank = n
	}
	return sorted[rank-1]
}
