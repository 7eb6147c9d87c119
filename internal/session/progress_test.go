package session

import (
	"testing"

	"review-transformer/internal/domain"
)

// TestProgressPercentCappedWhileRunning verifies the pre-completion cap.
func TestProgressPercentCappedWhileRunning(t *testing.T) {
	p := NewProgressAggregator(10, 1)
	p.Merge(domain.BatchStats{SuccessCount: 10, Total: 10})

	if got := p.Percent(); got != 95 {
		t.Fatalf("percent = %d, want 95", got)
	}

	p.MarkDone()
	if got := p.Percent(); got != 100 {
		t.Fatalf("percent after done = %d, want 100", got)
	}
}

// TestProgressPercentRounds verifies intermediate rounding.
func TestProgressPercentRounds(t *testing.T) {
	p := NewProgressAggregator(3, 3)
	p.Merge(domain.BatchStats{SuccessCount: 1, Total: 1})

	// 1/3 rounds to 33.
	if got := p.Percent(); got != 33 {
		t.Fatalf("percent = %d, want 33", got)
	}

	p.Merge(domain.BatchStats{ErrorCount: 1, Total: 1})
	if got := p.Percent(); got != 67 {
		t.Fatalf("percent = %d, want 67", got)
	}
}

// TestProgressStatsInvariant verifies success+errors==total after merges.
func TestProgressStatsInvariant(t *testing.T) {
	p := NewProgressAggregator(12, 2)
	p.Merge(domain.BatchStats{SuccessCount: 8, ErrorCount: 2, Total: 10})
	p.Merge(domain.BatchStats{SuccessCount: 2, Total: 2})

	stats := p.Stats()
	if stats.SuccessCount+stats.ErrorCount != stats.Total {
		t.Fatalf("invariant broken: %+v", stats)
	}
	if stats.Total != 12 {
		t.Fatalf("total = %d, want 12", stats.Total)
	}
	if p.Processed() != 12 {
		t.Fatalf("processed = %d, want 12", p.Processed())
	}
}

// TestProgressMessage verifies the batch position status line.
func TestProgressMessage(t *testing.T) {
	p := NewProgressAggregator(25, 3)
	if got := p.Message(); got != "starting" {
		t.Fatalf("message = %q, want starting", got)
	}

	p.BatchStarted(2)
	if got := p.Message(); got != "batch 2 of 3" {
		t.Fatalf("message = %q, want batch 2 of 3", got)
	}

	p.Merge(domain.BatchStats{SuccessCount: 20, ErrorCount: 5, Total: 25})
	p.MarkDone()
	if got := p.Message(); got != "20 of 25 succeeded" {
		t.Fatalf("message = %q, want 20 of 25 succeeded", got)
	}
}
