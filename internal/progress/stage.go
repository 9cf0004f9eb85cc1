package progress

// Stage is a file's position in the upload pipeline. Stages only move
// forward; StageError is terminal and reachable from any non-terminal stage.
type Stage int

const (
	StageDetected Stage = iota
	StageUploading
	StageUploaded
	StageProcessing
	StageCompleted
	StageError
)

var stageLabels = map[Stage]string{
	StageDetected:   "File Detected",
	StageUploading:  "Uploading to MinIO",
	StageUploaded:   "Upload Complete",
	StageProcessing: "Converting to AAC",
	StageCompleted:  "Processing Complete",
	StageError:      "Error Occurred",
}

func (s Stage) String() string {
	if label, ok := stageLabels[s]; ok {
		return label
	}
	return "Unknown"
}

// Terminal reports whether no further transitions are allowed from s.
func (s Stage) Terminal() bool {
	return s == StageCompleted || s == StageError
}

// canTransition reports whether moving from one stage to another is legal.
// Regressions and transitions out of a terminal stage are rejected; late
// updates arriving out of order are simply dropped by the tracker.
func canTransition(from, to Stage) bool {
	if from.Terminal() {
		return false
	}
	if to == StageError {
		return true
	}
	return to > from && to <= StageCompleted
}
