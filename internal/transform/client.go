// Package transform defines the contract with the external AI transformation
// service and its production HTTP implementation.
package transform

import (
	"context"
	"errors"
	"fmt"

	"review-transformer/internal/domain"
)

// ErrResponseInvalid marks a service response that violates the wire schema.
var ErrResponseInvalid = errors.New("transform response invalid")

// Client submits one batch of items for transformation. A returned error
// means the whole batch failed; per-item failures are reported inside
// BatchResponse instead.
type Client interface {
	Transform(ctx context.Context, items []domain.Item, opts domain.Options) (BatchResponse, error)
}

// BatchRequest is the wire request for one batch.
type BatchRequest struct {
	Items   []RequestItem  `json:"items"`
	Options RequestOptions `json:"options"`
}

// RequestItem is the per-item payload sent to the service.
type RequestItem struct {
	ID      string `json:"id"`
	Author  string `json:"author,omitempty"`
	Content string `json:"content"`
}

// RequestOptions carries the transformation parameters for one batch.
type RequestOptions struct {
	Kind           domain.TransformKind `json:"kind"`
	TargetLanguage string               `json:"targetLanguage,omitempty"`
	Style          string               `json:"style,omitempty"`
}

// BatchResponse is the wire response for one batch. Stats is optional; when
// the service omits it the caller derives counts from Results.
type BatchResponse struct {
	Success bool                `json:"success"`
	Results []domain.ItemResult `json:"results"`
	Stats   *domain.BatchStats  `json:"stats,omitempty"`
}

// DeriveStats returns reported stats, or counts success flags when absent.
func (r BatchResponse) DeriveStats() domain.BatchStats {
	if r.Stats != nil {
		return *r.Stats
	}

	var stats domain.BatchStats
	for _, res := range r.Results {
		stats.Total++
		if res.Success {
			stats.SuccessCount++
		} else {
			stats.ErrorCount++
		}
	}
	return stats
}

// Validate checks the response against the item set it answers for. Every
// result must reference a requested item id, with no duplicates.
func (r BatchResponse) Validate(items []domain.Item) error {
	if !r.Success {
		return fmt.Errorf("%w: service reported failure", ErrResponseInvalid)
	}

	requested := make(map[string]bool, len(items))
	for _, item := range items {
		requested[item.ID] = true
	}

	seen := make(map[string]bool, len(r.Results))
	for _, res := range r.Results {
		if !requested[res.ID] {
			return fmt.Errorf("%w: result for unknown item %q", ErrResponseInvalid, res.ID)
		}
		if seen[res.ID] {
			return fmt.Errorf("%w: duplicate result for item %q", ErrResponseInvalid, res.ID)
		}
		if res.Success && res.TransformedContent == "" {
			return fmt.Errorf("%w: empty content for successful item %q", ErrResponseInvalid, res.ID)
		}
		seen[res.ID] = true
	}

	if len(r.Results) != len(items) {
		return fmt.Errorf("%w: got %d results for %d items", ErrResponseInvalid, len(r.Results), len(items))
	}
	return nil
}
