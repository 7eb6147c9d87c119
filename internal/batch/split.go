// Package batch splits item collections into bounded batches and drives
// them sequentially through the transformation service.
package batch

import (
	"review-transformer/internal/domain"
	"review-transformer/internal/transform"
)

// Limit bounds how many items may share one batch.
type Limit struct {
	// MaxItems caps the item count per batch. Values <= 0 fall back to 10.
	MaxItems int
	// MaxTokens caps the approximate token cost per batch. 0 disables the
	// token cap.
	MaxTokens int
	// Estimate converts text to an approximate token count. Required when
	// MaxTokens > 0.
	Estimate transform.TokenEstimator
}

const fallbackMaxItems = 10

// Split partitions items into ordered batches. Every item appears in
// exactly one batch, in original relative order. An item whose token cost
// alone exceeds MaxTokens still forms its own batch; items are never
// dropped.
func Split(items []domain.Item, limit Limit) [][]domain.Item {
	if len(items) == 0 {
		return nil
	}

	maxItems := limit.MaxItems
	if maxItems <= 0 {
		maxItems = fallbackMaxItems
	}

	var batches [][]domain.Item
	var current []domain.Item
	currentTokens := 0

	for _, item := range items {
		itemTokens := 0
		if limit.MaxTokens > 0 && limit.Estimate != nil {
			itemTokens = limit.Estimate(item.Content)
		}

		full := len(current) >= maxItems
		if !full && limit.MaxTokens > 0 && len(current) > 0 {
			full = currentTokens+itemTokens > limit.MaxTokens
		}
		if full {
			batches = append(batches, current)
			current = nil
			currentTokens = 0
		}

		current = append(current, item)
		currentTokens += itemTokens
	}

	if len(current) > 0 {
		batches = append(batches, current)
	}
	return batches
}
