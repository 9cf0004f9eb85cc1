package uploadapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"sermonbench/internal/config"
	"sermonbench/internal/logging"
)

const wavContentType = "audio/wav"

// Client talks to the sermon upload API. Retries for 429/5xx responses and
// transport errors happen inside the underlying retryable client; callers see
// only the final Outcome.
type Client struct {
	baseURL string
	http    *retryablehttp.Client
	logger  *slog.Logger
}

// New builds a Client from the API configuration section.
func New(cfg config.API, logger *slog.Logger) *Client {
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logger.With(slog.String(logging.FieldComponent, "uploadapi"))

	connectTimeout := time.Duration(cfg.ConnectTimeout) * time.Second
	if connectTimeout <= 0 {
		connectTimeout = 30 * time.Second
	}
	requestTimeout := time.Duration(cfg.RequestTimeout) * time.Second
	if requestTimeout <= 0 {
		requestTimeout = 300 * time.Second
	}
	retries := cfg.RetryAttempts
	if retries < 0 {
		retries = 0
	}

	rc := retryablehttp.NewClient()
	rc.RetryMax = retries
	rc.RetryWaitMin = 1 * time.Second
	rc.RetryWaitMax = 30 * time.Second
	rc.Logger = nil
	rc.HTTPClient.Timeout = requestTimeout
	if transport, ok := rc.HTTPClient.Transport.(*http.Transport); ok {
		transport.DialContext = (&net.Dialer{Timeout: connectTimeout}).DialContext
		transport.MaxIdleConnsPerHost = 20
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    rc,
		logger:  logger,
	}
}

// Health reports whether the API answers its health endpoint with 200.
func (c *Client) Health(ctx context.Context) Outcome {
	return c.do(ctx, http.MethodGet, c.baseURL+"/api/health", nil, "", nil)
}

// UploadDirect posts the file as a multipart request to the direct upload
// endpoint. The API expects the multipart field to be named "files" even for
// a single file.
func (c *Client) UploadDirect(ctx context.Context, data []byte, filename string) Outcome {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="files"; filename=%q`, filename))
	header.Set("Content-Type", wavContentType)
	part, err := writer.CreatePart(header)
	if err == nil {
		_, err = part.Write(data)
	}
	if err == nil {
		err = writer.Close()
	}
	if err != nil {
		return Outcome{Err: fmt.Sprintf("build multipart body: %v", err)}
	}

	return c.do(ctx, http.MethodPost, c.baseURL+"/api/upload", body.Bytes(), writer.FormDataContentType(), nil)
}

// PresignURL requests a presigned upload URL for a single filename.
func (c *Client) PresignURL(ctx context.Context, filename string) Outcome {
	return c.doJSON(ctx, c.baseURL+"/api/upload/presigned", map[string]any{"filename": filename}, nil)
}

// PutPresigned uploads raw WAV bytes to a previously issued presigned URL.
// Object stores answer these PUTs with 200 or 204.
func (c *Client) PutPresigned(ctx context.Context, url string, data []byte) Outcome {
	return c.do(ctx, http.MethodPut, url, data, wavContentType, []int{http.StatusOK, http.StatusNoContent})
}

// PresignBatch requests presigned upload URLs for a set of filenames in one
// round trip. The payload carries a "urls" map of filename to URL.
func (c *Client) PresignBatch(ctx context.Context, filenames []string) Outcome {
	return c.doJSON(ctx, c.baseURL+"/api/upload/presigned-batch", map[string]any{"filenames": filenames}, nil)
}

// CheckDuplicate asks the API whether a file with this SHA-256 already exists.
func (c *Client) CheckDuplicate(ctx context.Context, hash string) Outcome {
	return c.doJSON(ctx, c.baseURL+"/api/check-duplicate", map[string]any{"hash": hash}, nil)
}

func (c *Client) doJSON(ctx context.Context, url string, payload map[string]any, okStatuses []int) Outcome {
	body, err := json.Marshal(payload)
	if err != nil {
		return Outcome{Err: fmt.Sprintf("encode request: %v", err)}
	}
	return c.do(ctx, http.MethodPost, url, body, "application/json", okStatuses)
}

// do runs one request and folds every failure mode into the Outcome. okStatuses
// defaults to just 200.
func (c *Client) do(ctx context.Context, method, url string, body []byte, contentType string, okStatuses []int) Outcome {
	start := time.Now()

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := retryablehttp.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return Outcome{Elapsed: time.Since(start), Err: fmt.Sprintf("build request: %v", err)}
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.http.Do(req)
	elapsed := time.Since(start)
	if err != nil {
		c.logger.Debug("request failed",
			slog.String("method", method),
			slog.String("url", url),
			slog.String("error", err.Error()),
		)
		return Outcome{Elapsed: elapsed, Err: err.Error()}
	}
	defer resp.Body.Close()

	respBody, readErr := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if readErr != nil {
		return Outcome{Elapsed: elapsed, Err: fmt.Sprintf("read response: %v", readErr)}
	}

	if !statusAccepted(resp.StatusCode, okStatuses) {
		return Outcome{
			Elapsed: elapsed,
			Err:     fmt.Sprintf("HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody))),
		}
	}

	payload := map[string]any{}
	if len(respBody) > 0 {
		// Presigned PUTs answer with empty or non-JSON bodies; that is
		// still a success.
		_ = json.Unmarshal(respBody, &payload)
	}
	return Outcome{Success: true, Payload: payload, Elapsed: elapsed}
}

func statusAccepted(status int, okStatuses []int) bool {
	if len(okStatuses) == 0 {
		return status == http.StatusOK
	}
	for _, ok := range okStatuses {
		if status == ok {
			return true
		}
	}
	return false
}
