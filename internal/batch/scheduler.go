package batch

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"review-transformer/internal/domain"
	"review-transformer/internal/store"
	"review-transformer/internal/transform"
)

// Request contains one session's input and execution callbacks.
type Request struct {
	SessionID string
	Items     []domain.Item
	Options   domain.Options
	Limit     Limit

	// OnBatchStart fires before each batch call (index is 1-based).
	OnBatchStart func(index, total int)
	// OnBatchDone fires after each batch's bookkeeping, successful or not.
	OnBatchDone func(index, total int, stats domain.BatchStats)
	// OnSuccess fires for each item whose result was durably written.
	OnSuccess func(id string)
}

// Scheduler drives batches strictly sequentially through the
// transformation client, persisting successes as they arrive. The external
// service is rate-limited per caller, so batches never run concurrently and
// a fixed delay separates consecutive calls.
type Scheduler struct {
	client  transform.Client
	records store.RecordStore
	delay   time.Duration
	log     zerolog.Logger

	// sleep is injectable for tests.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewScheduler constructs a scheduler over the given client and record
// store with the configured inter-batch delay.
func NewScheduler(client transform.Client, records store.RecordStore, delay time.Duration, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		client:  client,
		records: records,
		delay:   delay,
		log:     log,
		sleep:   sleepCtx,
	}
}

// Run attempts every batch in order and returns the summed stats. A batch
// that fails wholesale marks all of its items as failed and the run
// continues; there is no early exit and no re-submission of a failed
// batch. The returned error is non-nil only when ctx ends the run before
// all batches were attempted.
func (s *Scheduler) Run(ctx context.Context, req Request) (domain.SessionStats, error) {
	var total domain.SessionStats

	batches := Split(req.Items, req.Limit)
	if len(batches) == 0 {
		return total, nil
	}

	for i, items := range batches {
		if err := ctx.Err(); err != nil {
			return total, err
		}

		if req.OnBatchStart != nil {
			req.OnBatchStart(i+1, len(batches))
		}

		stats := s.runBatch(ctx, items, req)
		total.Add(stats)

		s.log.Info().
			Int("batch", i+1).
			Int("batches", len(batches)).
			Int("success", stats.SuccessCount).
			Int("errors", stats.ErrorCount).
			Msg("batch attempted")

		if req.OnBatchDone != nil {
			req.OnBatchDone(i+1, len(batches), stats)
		}

		if i < len(batches)-1 && s.delay > 0 {
			if err := s.sleep(ctx, s.delay); err != nil {
				return total, err
			}
		}
	}

	return total, nil
}

// runBatch invokes the client for one batch and applies its bookkeeping.
// Never returns an error: a wholesale failure degrades every item in the
// batch to a failure and the caller moves on.
func (s *Scheduler) runBatch(ctx context.Context, items []domain.Item, req Request) domain.BatchStats {
	resp, err := s.client.Transform(ctx, items, req.Options)
	if err != nil {
		s.log.Warn().Err(err).Int("items", len(items)).Msg("batch failed wholesale")
		return domain.BatchStats{ErrorCount: len(items), Total: len(items)}
	}

	var stats domain.BatchStats
	for _, res := range resp.Results {
		stats.Total++
		if !res.Success {
			stats.ErrorCount++
			continue
		}

		// Persist as results arrive so partial work survives interruption;
		// the consumer reload notification is still deferred to session end.
		if err := s.records.UpdateContent(ctx, res.ID, res.TransformedContent); err != nil {
			s.log.Warn().Err(err).Str("id", res.ID).Msg("record write failed")
			stats.ErrorCount++
			continue
		}

		stats.SuccessCount++
		if req.OnSuccess != nil {
			req.OnSuccess(res.ID)
		}
	}

	if reported := resp.DeriveStats(); reported.Total != stats.Total {
		s.log.Debug().
			Int("reported", reported.Total).
			Int("counted", stats.Total).
			Msg("service stats disagree with results")
	}

	return stats
}

// sleepCtx waits for d or until ctx is done, whichever comes first.
func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
