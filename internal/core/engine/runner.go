package engine

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/TimurBerdyyev/seller-apis/internal/core/models"
	"github.com/TimurBerdyyev/seller-apis/pkg/logger"
)

// Options collects the run-level tunables. The zero value is usable.
type Options struct {
	Differ Differ
	Retry  RetryPolicy
	// MaxBatchSize caps batch sizes below what adapters declare; 0 means
	// use each adapter's own limit.
	MaxBatchSize int
}

// Runner orchestrates one full cycle: diff, batch and dispatch per adapter,
// then aggregate everything into a SyncReport. Stateless between runs.
type Runner struct {
	opts       Options
	dispatcher *Dispatcher
	log        logger.Logger
	writer     io.Writer
}

func NewRunner(opts Options, writer io.Writer) *Runner {
	return &Runner{
		opts:       opts,
		dispatcher: NewDispatcher(opts.Retry, writer),
		log:        logger.NewLogger(writer, "[runner]"),
		writer:     writer,
	}
}

// RunCycle runs the pipeline independently per adapter. Adapters are
// isolated: one adapter's failure never blocks the others, and partial
// failure is a valid report, not an error. Only configuration problems are
// fatal, and those surface before any network call.
func (r *Runner) RunCycle(ctx context.Context, desired []models.InventoryItem, adapters []MarketplaceAdapter) (*models.SyncReport, error) {
	if err := r.validateConfig(adapters); err != nil {
		return nil, err
	}

	report := &models.SyncReport{
		RunID:          uuid.NewString(),
		StartedAt:      time.Now().UTC(),
		PerMarketplace: make(map[string]*models.MarketplaceResult, len(adapters)),
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	for _, adapter := range adapters {
		wg.Add(1)
		go func(adapter MarketplaceAdapter) {
			defer wg.Done()
			result := r.runAdapter(ctx, desired, adapter)
			mu.Lock()
			report.PerMarketplace[adapter.ID()] = result
			mu.Unlock()
		}(adapter)
	}
	wg.Wait()

	report.FinishedAt = time.Now().UTC()
	report.Recount()
	return report, nil
}

func (r *Runner) validateConfig(adapters []MarketplaceAdapter) error {
	if err := r.opts.Differ.validate(); err != nil {
		return err
	}
	if err := r.opts.Retry.validate(); err != nil {
		return err
	}
	if r.opts.MaxBatchSize < 0 {
		return &ConfigError{Reason: fmt.Sprintf("max batch size override must be >= 0, got %d", r.opts.MaxBatchSize)}
	}
	for _, adapter := range adapters {
		if r.batchSizeFor(adapter) <= 0 {
			return &ConfigError{Reason: fmt.Sprintf("%s declares max batch size %d", adapter.ID(), adapter.MaxBatchSize())}
		}
	}
	return nil
}

func (r *Runner) batchSizeFor(adapter MarketplaceAdapter) int {
	size := adapter.MaxBatchSize()
	if r.opts.MaxBatchSize > 0 && r.opts.MaxBatchSize < size {
		size = r.opts.MaxBatchSize
	}
	return size
}

func (r *Runner) runAdapter(ctx context.Context, desired []models.InventoryItem, adapter MarketplaceAdapter) *models.MarketplaceResult {
	log := logger.NewLogger(r.writer, fmt.Sprintf("[%s]", adapter.ID()))

	baseline, err := r.dispatcher.FetchBaseline(ctx, adapter)
	if err != nil {
		log.Log("baseline fetch failed: %v", err)
		return &models.MarketplaceResult{Err: fmt.Errorf("fetch baseline: %w", err)}
	}

	changes, err := r.opts.Differ.ComputeChanges(desired, baseline)
	if err != nil {
		return &models.MarketplaceResult{Err: err}
	}
	if len(changes) == 0 {
		log.Log("nothing to push: %d desired items match the baseline", len(desired))
		return &models.MarketplaceResult{}
	}

	batches, err := MakeBatches(adapter.ID(), changes, r.batchSizeFor(adapter))
	if err != nil {
		return &models.MarketplaceResult{Err: err}
	}
	log.Log("pushing %d change(s) in %d batch(es)", len(changes), len(batches))

	records := r.dispatcher.Dispatch(ctx, batches, adapter)
	return &models.MarketplaceResult{Records: records}
}
