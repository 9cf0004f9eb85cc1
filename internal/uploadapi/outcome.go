package uploadapi

import "time"

// Outcome is the result of one API operation. Success reports whether the
// server accepted the request; Err carries the failure description when it
// did not. Transport problems and non-2xx statuses both land in Err so the
// caller never has to distinguish them.
type Outcome struct {
	Success bool
	Payload map[string]any
	Elapsed time.Duration
	Err     string
}

// UploadURL extracts the presigned upload URL from a PresignURL payload.
func (o Outcome) UploadURL() (string, bool) {
	url, ok := o.Payload["upload_url"].(string)
	return url, ok && url != ""
}

// BatchURLs extracts the filename-to-URL map from a PresignBatch payload.
func (o Outcome) BatchURLs() map[string]string {
	raw, ok := o.Payload["urls"].(map[string]any)
	if !ok {
		return nil
	}
	urls := make(map[string]string, len(raw))
	for name, value := range raw {
		if url, ok := value.(string); ok && url != "" {
			urls[name] = url
		}
	}
	return urls
}

// IsDuplicate reports whether a CheckDuplicate payload flagged the hash as
// already uploaded.
func (o Outcome) IsDuplicate() bool {
	dup, ok := o.Payload["duplicate"].(bool)
	return ok && dup
}
