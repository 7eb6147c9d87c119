package transform

import (
	"errors"
	"testing"

	"review-transformer/internal/domain"
)

// TestDeriveStatsCountsResults verifies fallback counting when the service
// omits stats.
func TestDeriveStatsCountsResults(t *testing.T) {
	resp := BatchResponse{
		Success: true,
		Results: []domain.ItemResult{
			{ID: "a", Success: true, TransformedContent: "x"},
			{ID: "b", Success: false, Error: "failed"},
			{ID: "c", Success: true, TransformedContent: "y"},
		},
	}

	stats := resp.DeriveStats()
	want := domain.BatchStats{SuccessCount: 2, ErrorCount: 1, Total: 3}
	if stats != want {
		t.Fatalf("stats = %+v, want %+v", stats, want)
	}
}

// TestDeriveStatsPrefersReported verifies service-reported stats win.
func TestDeriveStatsPrefersReported(t *testing.T) {
	reported := domain.BatchStats{SuccessCount: 3, Total: 3}
	resp := BatchResponse{Success: true, Stats: &reported}

	if got := resp.DeriveStats(); got != reported {
		t.Fatalf("stats = %+v, want %+v", got, reported)
	}
}

// TestValidateAcceptsReorderedResults verifies the service may reorder
// results within a batch.
func TestValidateAcceptsReorderedResults(t *testing.T) {
	items := []domain.Item{{ID: "a"}, {ID: "b"}}
	resp := BatchResponse{
		Success: true,
		Results: []domain.ItemResult{
			{ID: "b", Success: true, TransformedContent: "y"},
			{ID: "a", Success: true, TransformedContent: "x"},
		},
	}

	if err := resp.Validate(items); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

// TestValidateRejectsSchemaViolations covers strict boundary checks.
func TestValidateRejectsSchemaViolations(t *testing.T) {
	items := []domain.Item{{ID: "a"}, {ID: "b"}}

	tests := []struct {
		name string
		resp BatchResponse
	}{
		{
			name: "service reported failure",
			resp: BatchResponse{Success: false},
		},
		{
			name: "unknown item id",
			resp: BatchResponse{Success: true, Results: []domain.ItemResult{
				{ID: "zzz", Success: true, TransformedContent: "x"},
				{ID: "a", Success: true, TransformedContent: "x"},
			}},
		},
		{
			name: "duplicate item id",
			resp: BatchResponse{Success: true, Results: []domain.ItemResult{
				{ID: "a", Success: true, TransformedContent: "x"},
				{ID: "a", Success: true, TransformedContent: "x"},
			}},
		},
		{
			name: "missing results",
			resp: BatchResponse{Success: true, Results: []domain.ItemResult{
				{ID: "a", Success: true, TransformedContent: "x"},
			}},
		},
		{
			name: "successful item without content",
			resp: BatchResponse{Success: true, Results: []domain.ItemResult{
				{ID: "a", Success: true},
				{ID: "b", Success: true, TransformedContent: "x"},
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.resp.Validate(items); !errors.Is(err, ErrResponseInvalid) {
				t.Fatalf("err = %v, want %v", err, ErrResponseInvalid)
			}
		})
	}
}

// TestApproxTokenEstimator verifies the bytes-per-token fallback.
func TestApproxTokenEstimator(t *testing.T) {
	est := ApproxTokenEstimator(4)
	if got := est(""); got != 0 {
		t.Fatalf("empty = %d, want 0", got)
	}
	if got := est("abcd"); got != 1 {
		t.Fatalf("abcd = %d, want 1", got)
	}
	if got := est("abcde"); got != 2 {
		t.Fatalf("abcde = %d, want 2", got)
	}
}
