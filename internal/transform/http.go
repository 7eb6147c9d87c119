package transform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"review-transformer/internal/domain"
)

// TransformError is a batch-level failure with optional upstream context.
type TransformError struct {
	Message    string `json:"message"`
	StatusCode int    `json:"statusCode,omitempty"`
	Err        error  `json:"-"`
}

// Error formats transformation failures for logs and diagnostics.
func (e *TransformError) Error() string {
	if e == nil {
		return ""
	}
	if e.StatusCode == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s (status=%d)", e.Message, e.StatusCode)
}

// Unwrap exposes the underlying error for errors.Is / errors.As.
func (e *TransformError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// HTTPClient submits batches to the transformation service over HTTP.
type HTTPClient struct {
	url string
	hc  *http.Client
	do  func(*http.Request) (*http.Response, error)
}

// maxResponseBytes bounds how much of a response body is read. Batches are
// capped at tens of items, so anything larger is malformed.
const maxResponseBytes = 4 << 20

// NewHTTPClient creates a client for the given endpoint with a hard request
// timeout. The timeout is the only bound on how long a stuck batch can
// block a session.
func NewHTTPClient(url string, timeout time.Duration) *HTTPClient {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	hc := &http.Client{Timeout: timeout}
	return &HTTPClient{
		url: strings.TrimRight(url, "/"),
		hc:  hc,
		do:  hc.Do,
	}
}

// Transform posts one batch and decodes the strict response schema. Any
// transport error, non-2xx status, or schema violation is returned as an
// error, which the scheduler treats as a wholesale batch failure.
func (c *HTTPClient) Transform(ctx context.Context, items []domain.Item, opts domain.Options) (BatchResponse, error) {
	reqItems := make([]RequestItem, 0, len(items))
	for _, item := range items {
		reqItems = append(reqItems, RequestItem{
			ID:      item.ID,
			Author:  item.Author,
			Content: item.Content,
		})
	}

	body, err := json.Marshal(BatchRequest{
		Items: reqItems,
		Options: RequestOptions{
			Kind:           opts.Kind,
			TargetLanguage: opts.TargetLanguage,
			Style:          opts.Style,
		},
	})
	if err != nil {
		return BatchResponse{}, &TransformError{Message: "encode batch request", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return BatchResponse{}, &TransformError{Message: "build batch request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.do(req)
	if err != nil {
		return BatchResponse{}, &TransformError{Message: "transform request failed", Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return BatchResponse{}, &TransformError{Message: "read response body", StatusCode: resp.StatusCode, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return BatchResponse{}, &TransformError{
			Message:    "transform service returned error: " + truncate(string(raw), 200),
			StatusCode: resp.StatusCode,
		}
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	var out BatchResponse
	if err := dec.Decode(&out); err != nil {
		return BatchResponse{}, &TransformError{
			Message:    "decode response",
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("%w: %v", ErrResponseInvalid, err),
		}
	}

	if err := out.Validate(items); err != nil {
		return BatchResponse{}, &TransformError{
			Message:    "validate response",
			StatusCode: resp.StatusCode,
			Err:        err,
		}
	}

	return out, nil
}

// truncate bounds upstream error text embedded in our own messages.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
