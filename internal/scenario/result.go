package scenario

import "time"

// Upload methods recorded on results.
const (
	MethodDirect    = "direct"
	MethodPresigned = "presigned"
	MethodBatch     = "batch_presigned"
)

// Error kinds recorded on failed results.
const (
	ErrKindTimeout = "timeout"
)

// UploadResult records one attempted upload. Failed attempts carry the error
// text; successful ones carry throughput and timing breakdowns.
type UploadResult struct {
	ID              string        `json:"id"`
	FileName        string        `json:"file_name"`
	FileSize        int64         `json:"file_size"`
	Method          string        `json:"method"`
	Success         bool          `json:"success"`
	Duration        time.Duration `json:"duration"`
	Error           string        `json:"error,omitempty"`
	ThroughputMBps  float64       `json:"throughput_mbps,omitempty"`
	APIResponseTime time.Duration `json:"api_response_time,omitempty"`
	UploadTime      time.Duration `json:"upload_time,omitempty"`
}

// BatchRun is one completed scenario execution: every result collected before
// the duration budget expired, plus timeout placeholders for work that never
// finished.
type BatchRun struct {
	ID        string         `json:"id"`
	Scenario  Scenario       `json:"scenario"`
	StartedAt time.Time      `json:"started_at"`
	EndedAt   time.Time      `json:"ended_at"`
	Results   []UploadResult `json:"results"`
}
