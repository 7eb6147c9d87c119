package diagnostics

import (
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"review-transformer/internal/domain"
)

// okProbe returns a successful HEAD response for any request.
func okProbe(*http.Request) (*http.Response, error) {
	return &http.Response{
		StatusCode: http.StatusOK,
		Body:       io.NopCloser(strings.NewReader("")),
	}, nil
}

// TestCheckerRunAllPass validates happy-path diagnostics report.
func TestCheckerRunAllPass(t *testing.T) {
	checker := NewCheckerForTests(okProbe, os.Stat, os.MkdirAll)

	report := checker.Run(domain.Settings{
		ServiceURL: "http://localhost:8090/transform",
		StorePath:  filepath.Join(t.TempDir(), "records.db"),
	})

	if report.HasFailures {
		t.Fatalf("expected no failures, got %+v", report.Items)
	}
	if len(report.Items) != 2 {
		t.Fatalf("items = %d, want 2", len(report.Items))
	}
}

// TestCheckerRunUnreachableService validates failure reporting.
func TestCheckerRunUnreachableService(t *testing.T) {
	checker := NewCheckerForTests(
		func(*http.Request) (*http.Response, error) { return nil, errors.New("connection refused") },
		os.Stat,
		os.MkdirAll,
	)

	report := checker.Run(domain.Settings{
		ServiceURL: "http://localhost:1/transform",
		StorePath:  filepath.Join(t.TempDir(), "records.db"),
	})

	if !report.HasFailures {
		t.Fatal("expected failures")
	}
}

// TestCheckerRunInvalidURL validates URL parsing failure path.
func TestCheckerRunInvalidURL(t *testing.T) {
	checker := NewCheckerForTests(okProbe, os.Stat, os.MkdirAll)

	report := checker.Run(domain.Settings{
		ServiceURL: "not-a-url",
		StorePath:  filepath.Join(t.TempDir(), "records.db"),
	})

	if !report.HasFailures {
		t.Fatal("expected failures for invalid url")
	}
}

// TestCheckerRunEmptyStorePath validates missing store configuration.
func TestCheckerRunEmptyStorePath(t *testing.T) {
	checker := NewCheckerForTests(okProbe, os.Stat, os.MkdirAll)

	report := checker.Run(domain.Settings{
		ServiceURL: "http://localhost:8090/transform",
		StorePath:  "",
	})

	if !report.HasFailures {
		t.Fatal("expected failures for empty store path")
	}
}
