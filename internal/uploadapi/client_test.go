package uploadapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"sermonbench/internal/config"
)

func newTestClient(t *testing.T, baseURL string, retries int) *Client {
	t.Helper()
	client := New(config.API{
		BaseURL:        baseURL,
		ConnectTimeout: 1,
		RequestTimeout: 5,
		RetryAttempts:  retries,
	}, nil)
	client.http.RetryWaitMin = time.Millisecond
	client.http.RetryWaitMax = 5 * time.Millisecond
	return client
}

func TestHealthSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/health" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_, _ = io.WriteString(w, `{"status":"ok"}`)
	}))
	defer server.Close()

	outcome := newTestClient(t, server.URL, 0).Health(context.Background())
	if !outcome.Success {
		t.Fatalf("expected healthy outcome, got err %q", outcome.Err)
	}
	if outcome.Payload["status"] != "ok" {
		t.Fatalf("expected parsed payload, got %v", outcome.Payload)
	}
	if outcome.Elapsed <= 0 {
		t.Fatal("expected elapsed time to be recorded")
	}
}

func TestUploadDirectSendsMultipartFilesField(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			t.Fatalf("parse multipart: %v", err)
		}
		headers, ok := r.MultipartForm.File["files"]
		if !ok || len(headers) != 1 {
			t.Fatalf("expected one part named files, got %v", r.MultipartForm.File)
		}
		part := headers[0]
		if part.Filename != "sermon.wav" {
			t.Errorf("unexpected filename %q", part.Filename)
		}
		if got := part.Header.Get("Content-Type"); got != "audio/wav" {
			t.Errorf("unexpected part content type %q", got)
		}
		file, err := part.Open()
		if err != nil {
			t.Fatalf("open part: %v", err)
		}
		defer file.Close()
		data, _ := io.ReadAll(file)
		if string(data) != "RIFFdata" {
			t.Errorf("unexpected body %q", data)
		}
		_, _ = io.WriteString(w, `{"message":"uploaded"}`)
	}))
	defer server.Close()

	outcome := newTestClient(t, server.URL, 0).UploadDirect(context.Background(), []byte("RIFFdata"), "sermon.wav")
	if !outcome.Success {
		t.Fatalf("expected success, got err %q", outcome.Err)
	}
}

func TestRetriesServerErrorsThenSucceeds(t *testing.T) {
	var attempts int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = io.WriteString(w, `{}`)
	}))
	defer server.Close()

	outcome := newTestClient(t, server.URL, 3).Health(context.Background())
	if !outcome.Success {
		t.Fatalf("expected eventual success, got err %q", outcome.Err)
	}
	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}
}

func TestClientErrorBecomesOutcome(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, "no such endpoint")
	}))
	defer server.Close()

	outcome := newTestClient(t, server.URL, 3).PresignURL(context.Background(), "sermon.wav")
	if outcome.Success {
		t.Fatal("expected failure outcome")
	}
	if !strings.Contains(outcome.Err, "HTTP 404") || !strings.Contains(outcome.Err, "no such endpoint") {
		t.Fatalf("unexpected error text: %q", outcome.Err)
	}
}

func TestTransportFailureBecomesOutcome(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	outcome := newTestClient(t, server.URL, 0).Health(context.Background())
	if outcome.Success {
		t.Fatal("expected failure against closed server")
	}
	if outcome.Err == "" {
		t.Fatal("expected transport error text")
	}
}

func TestPresignURLPayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req["filename"] != "sermon.wav" {
			t.Errorf("unexpected request body %v", req)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"upload_url": "http://minio.local/bucket/sermon.wav"})
	}))
	defer server.Close()

	outcome := newTestClient(t, server.URL, 0).PresignURL(context.Background(), "sermon.wav")
	if !outcome.Success {
		t.Fatalf("expected success, got err %q", outcome.Err)
	}
	url, ok := outcome.UploadURL()
	if !ok || url != "http://minio.local/bucket/sermon.wav" {
		t.Fatalf("unexpected upload url %q ok=%v", url, ok)
	}
}

func TestPresignBatchPayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Filenames []string `json:"filenames"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		urls := make(map[string]string, len(req.Filenames))
		for _, name := range req.Filenames {
			urls[name] = "http://minio.local/bucket/" + name
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"urls": urls})
	}))
	defer server.Close()

	outcome := newTestClient(t, server.URL, 0).PresignBatch(context.Background(), []string{"a.wav", "b.wav"})
	if !outcome.Success {
		t.Fatalf("expected success, got err %q", outcome.Err)
	}
	urls := outcome.BatchURLs()
	if len(urls) != 2 || urls["a.wav"] == "" || urls["b.wav"] == "" {
		t.Fatalf("unexpected batch urls %v", urls)
	}
}

func TestPutPresignedAcceptsNoContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Errorf("unexpected method %s", r.Method)
		}
		if got := r.Header.Get("Content-Type"); got != "audio/wav" {
			t.Errorf("unexpected content type %q", got)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	outcome := newTestClient(t, server.URL, 0).PutPresigned(context.Background(), server.URL+"/bucket/sermon.wav", []byte("RIFF"))
	if !outcome.Success {
		t.Fatalf("expected 204 to count as success, got err %q", outcome.Err)
	}
}
