package session

import (
	"fmt"
	"math"
	"sync"

	"review-transformer/internal/domain"
)

// runningPercentCap keeps the displayed percentage below 100 until the final
// batch has been durably processed.
const runningPercentCap = 95

// ProgressAggregator merges per-batch outcomes into running session totals
// and derives a display-ready percentage and status message.
type ProgressAggregator struct {
	mu           sync.Mutex
	totalItems   int
	totalBatches int
	currentBatch int
	processed    int
	stats        domain.SessionStats
	done         bool
}

// NewProgressAggregator creates an aggregator for a session over totalItems
// items split into totalBatches batches.
func NewProgressAggregator(totalItems, totalBatches int) *ProgressAggregator {
	return &ProgressAggregator{totalItems: totalItems, totalBatches: totalBatches}
}

// BatchStarted records that batch index (1-based) is now in flight.
func (p *ProgressAggregator) BatchStarted(index int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.currentBatch = index
}

// Merge folds one batch's stats into the session totals.
func (p *ProgressAggregator) Merge(stats domain.BatchStats) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stats.Add(stats)
	p.processed += stats.Total
}

// MarkDone releases the percentage cap after final-batch persistence.
func (p *ProgressAggregator) MarkDone() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.done = true
}

// Percent returns the capped progress percentage while running, and exactly
// 100 after MarkDone.
func (p *ProgressAggregator) Percent() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.done {
		return 100
	}
	if p.totalItems <= 0 {
		return 0
	}
	pct := int(math.Round(float64(p.processed) / float64(p.totalItems) * 100))
	if pct > runningPercentCap {
		pct = runningPercentCap
	}
	return pct
}

// Message returns a human-readable status line for the current batch.
func (p *ProgressAggregator) Message() string {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.done {
		return fmt.Sprintf("%d of %d succeeded", p.stats.SuccessCount, p.stats.Total)
	}
	if p.currentBatch == 0 {
		return "starting"
	}
	return fmt.Sprintf("batch %d of %d", p.currentBatch, p.totalBatches)
}

// Stats returns a snapshot of the merged session stats.
func (p *ProgressAggregator) Stats() domain.SessionStats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stats
}

// Processed returns how many items have been attempted so far.
func (p *ProgressAggregator) Processed() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.processed
}
