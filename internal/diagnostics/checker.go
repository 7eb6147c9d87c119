// Package diagnostics validates the orchestrator's external collaborators
// before sessions are accepted.
package diagnostics

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"review-transformer/internal/domain"
)

// Checker validates the transformation service endpoint and the record
// store location.
type Checker struct {
	do       func(*http.Request) (*http.Response, error)
	stat     func(string) (os.FileInfo, error)
	mkdirAll func(string, os.FileMode) error
	timeout  time.Duration
}

// NewChecker builds a checker using real HTTP and OS dependencies.
func NewChecker() *Checker {
	hc := &http.Client{Timeout: 5 * time.Second}
	return &Checker{
		do:       hc.Do,
		stat:     os.Stat,
		mkdirAll: os.MkdirAll,
		timeout:  5 * time.Second,
	}
}

// Run executes all startup checks and returns a combined report.
func (c *Checker) Run(settings domain.Settings) domain.DiagnosticReport {
	items := []domain.DiagnosticItem{
		c.checkServiceURL(settings.ServiceURL),
		c.checkStorePath(settings.StorePath),
	}

	hasFailures := false
	for _, item := range items {
		if item.Status == domain.DiagnosticStatusFail {
			hasFailures = true
			break
		}
	}

	return domain.DiagnosticReport{
		GeneratedAt: time.Now().UTC(),
		HasFailures: hasFailures,
		Items:       items,
	}
}

// checkServiceURL validates the configured transformation endpoint and
// probes it for reachability.
func (c *Checker) checkServiceURL(raw string) domain.DiagnosticItem {
	item := domain.DiagnosticItem{
		ID:   "service_url",
		Name: "Transformation service",
	}

	parsed, err := url.Parse(raw)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		item.Status = domain.DiagnosticStatusFail
		item.Message = fmt.Sprintf("Invalid service URL: %s", raw)
		item.Hint = "Set serviceUrl to the transformation service's full HTTP endpoint."
		return item
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, raw, nil)
	if err != nil {
		item.Status = domain.DiagnosticStatusFail
		item.Message = fmt.Sprintf("Cannot build probe request: %v", err)
		return item
	}

	resp, err := c.do(req)
	if err != nil {
		item.Status = domain.DiagnosticStatusFail
		item.Message = fmt.Sprintf("Service unreachable: %v", err)
		item.Hint = "Sessions started while the service is down will fail every batch."
		return item
	}
	resp.Body.Close()

	item.Status = domain.DiagnosticStatusPass
	item.Message = fmt.Sprintf("Reachable (status %d)", resp.StatusCode)
	return item
}

// checkStorePath verifies the record store's parent directory is usable.
func (c *Checker) checkStorePath(path string) domain.DiagnosticItem {
	item := domain.DiagnosticItem{
		ID:   "store_path",
		Name: "Record store path",
	}

	if path == "" {
		item.Status = domain.DiagnosticStatusFail
		item.Message = "Store path is not configured"
		item.Hint = "Set storePath to the database file location."
		return item
	}

	dir := filepath.Dir(path)
	if err := c.mkdirAll(dir, 0o755); err != nil {
		item.Status = domain.DiagnosticStatusFail
		item.Message = fmt.Sprintf("Cannot create store directory: %v", err)
		return item
	}

	if info, err := c.stat(path); err == nil && info.IsDir() {
		item.Status = domain.DiagnosticStatusFail
		item.Message = fmt.Sprintf("Store path is a directory: %s", path)
		return item
	}

	item.Status = domain.DiagnosticStatusPass
	item.Message = fmt.Sprintf("Writable at %s", dir)
	return item
}

// NewCheckerForTests constructs a checker with injectable dependencies.
func NewCheckerForTests(
	do func(*http.Request) (*http.Response, error),
	stat func(string) (os.FileInfo, error),
	mkdirAll func(string, os.FileMode) error,
) *Checker {
	return &Checker{do: do, stat: stat, mkdirAll: mkdirAll, timeout: time.Second}
}
