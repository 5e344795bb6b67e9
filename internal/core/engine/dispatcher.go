package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/time/rate"

	"github.com/TimurBerdyyev/seller-apis/internal/core/models"
	"github.com/TimurBerdyyev/seller-apis/pkg/logger"
)

const (
	defaultRetryAttempts     = 3
	defaultBackoffBase       = 500 * time.Millisecond
	defaultBackoffMultiplier = 2.0
)

// RetryPolicy bounds how hard transient failures are retried.
// Attempts counts the first try as well.
type RetryPolicy struct {
	Attempts          int
	BackoffBase       time.Duration
	BackoffMultiplier float64
}

func (p RetryPolicy) withDefaults() RetryPolicy {
	if p.Attempts == 0 {
		p.Attempts = defaultRetryAttempts
	}
	if p.BackoffBase == 0 {
		p.BackoffBase = defaultBackoffBase
	}
	if p.BackoffMultiplier == 0 {
		p.BackoffMultiplier = defaultBackoffMultiplier
	}
	return p
}

func (p RetryPolicy) validate() error {
	if p.Attempts < 0 {
		return &ConfigError{Reason: fmt.Sprintf("retry attempts must be >= 0, got %d", p.Attempts)}
	}
	if p.BackoffBase < 0 {
		return &ConfigError{Reason: fmt.Sprintf("retry backoff base must be >= 0, got %s", p.BackoffBase)}
	}
	if p.BackoffMultiplier < 0 || (p.BackoffMultiplier > 0 && p.BackoffMultiplier < 1) {
		return &ConfigError{Reason: fmt.Sprintf("retry backoff multiplier must be >= 1, got %g", p.BackoffMultiplier)}
	}
	return nil
}

// Dispatcher executes batches against one adapter sequentially, spacing the
// calls by the adapter's request interval floor and retrying transient
// failures. It is the only place in the core that sleeps.
type Dispatcher struct {
	retry RetryPolicy
	log   logger.Logger
}

func NewDispatcher(retry RetryPolicy, writer io.Writer) *Dispatcher {
	return &Dispatcher{
		retry: retry.withDefaults(),
		log:   logger.NewLogger(writer, "[dispatcher]"),
	}
}

// Dispatch pushes batches in order and returns one OutcomeRecord per input
// item, preserving batch order. It never returns an error: every item is
// accounted for in the records.
func (d *Dispatcher) Dispatch(ctx context.Context, batches []models.Batch, adapter MarketplaceAdapter) []models.OutcomeRecord {
	var records []models.OutcomeRecord
	limiter := rate.NewLimiter(rate.Every(adapter.RequestIntervalFloor()), 1)

	skipReason := ""
	for _, batch := range batches {
		if skipReason == "" && ctx.Err() != nil {
			skipReason = "run cancelled"
		}
		if skipReason != "" {
			records = append(records, batchOutcomes(batch, models.StatusSkipped, skipReason, 0)...)
			continue
		}
		if err := limiter.Wait(ctx); err != nil {
			skipReason = "run cancelled"
			records = append(records, batchOutcomes(batch, models.StatusSkipped, skipReason, 0)...)
			continue
		}

		recs, attempts, err := d.pushWithRetry(ctx, adapter, batch)
		if err == nil {
			for i := range recs {
				recs[i].BatchSeq = batch.Seq
				recs[i].Attempts = attempts
				if attempts > 1 && recs[i].Status == models.StatusSucceeded {
					recs[i].Status = models.StatusRetried
				}
			}
			records = append(records, recs...)
			continue
		}

		var auth *AuthError
		if errors.As(err, &auth) {
			// дальнейшие пакеты не отправляем: ключ не оживёт в середине цикла
			d.log.Log("%s: aborting after batch %d: %v", adapter.ID(), batch.Seq, err)
			skipReason = err.Error()
			records = append(records, batchOutcomes(batch, models.StatusSkipped, skipReason, 0)...)
			continue
		}

		d.log.Log("%s: batch %d failed after %d attempt(s): %v", adapter.ID(), batch.Seq, attempts, err)
		records = append(records, batchOutcomes(batch, models.StatusFailed, err.Error(), attempts)...)
	}
	return records
}

// FetchBaseline reads the adapter's baseline, retrying transient failures
// with the same policy as pushes.
func (d *Dispatcher) FetchBaseline(ctx context.Context, adapter MarketplaceAdapter) (map[string]models.RemoteItem, error) {
	var baseline map[string]models.RemoteItem
	err := d.retryTransient(ctx, func() error {
		var err error
		baseline, err = adapter.FetchBaseline(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return baseline, nil
}

// pushWithRetry re-sends the whole batch on transient errors. Partial
// re-send is never attempted: marketplace APIs are idempotent per
// (sku, value) pair, so replaying the full batch is safe.
func (d *Dispatcher) pushWithRetry(ctx context.Context, adapter MarketplaceAdapter, batch models.Batch) ([]models.OutcomeRecord, int, error) {
	var recs []models.OutcomeRecord
	attempts := 0
	err := d.retryTransient(ctx, func() error {
		attempts++
		out, err := adapter.PushBatch(ctx, batch)
		if err != nil {
			return err
		}
		recs = out
		return nil
	})
	if err != nil {
		return nil, attempts, err
	}
	return recs, attempts, nil
}

func (d *Dispatcher) retryTransient(ctx context.Context, op func() error) error {
	wrapped := func() error {
		err := op()
		if err == nil {
			return nil
		}
		var transient *TransientError
		if errors.As(err, &transient) {
			return err
		}
		return backoff.Permanent(err)
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = d.retry.BackoffBase
	bo.Multiplier = d.retry.BackoffMultiplier
	bo.MaxElapsedTime = 0 // attempts bound the retries, not elapsed time

	var maxRetries uint64
	if d.retry.Attempts > 1 {
		maxRetries = uint64(d.retry.Attempts - 1)
	}
	policy := backoff.WithContext(backoff.WithMaxRetries(bo, maxRetries), ctx)
	return backoff.Retry(wrapped, policy)
}

func batchOutcomes(batch models.Batch, status models.Status, detail string, attempts int) []models.OutcomeRecord {
	out := make([]models.OutcomeRecord, 0, len(batch.Entries))
	for _, entry := range batch.Entries {
		out = append(out, models.OutcomeRecord{
			SKU:         entry.SKU,
			BatchSeq:    batch.Seq,
			Status:      status,
			Attempts:    attempts,
			ErrorDetail: detail,
		})
	}
	return out
}
