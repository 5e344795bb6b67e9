package engine

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TimurBerdyyev/seller-apis/internal/core/models"
)

func testRunner(opts Options) *Runner {
	if opts.Retry == (RetryPolicy{}) {
		opts.Retry = testRetryPolicy()
	}
	return NewRunner(opts, io.Discard)
}

func TestRunCycleSingleStockChange(t *testing.T) {
	adapter := &fakeAdapter{
		id:       "ozon",
		baseline: map[string]models.RemoteItem{"A": {SKU: "A", Stock: 3, Price: 10.00}},
	}
	desired := []models.InventoryItem{{SKU: "A", Stock: 5, Price: 10.00}}

	report, err := testRunner(Options{}).RunCycle(context.Background(), desired, []MarketplaceAdapter{adapter})
	require.NoError(t, err)

	assert.Equal(t, models.Totals{Succeeded: 1, Failed: 0, Skipped: 0}, report.Totals)
	assert.True(t, report.Clean())
	assert.NotEmpty(t, report.RunID)
	assert.False(t, report.FinishedAt.Before(report.StartedAt))

	require.Len(t, adapter.calls, 1)
	require.Len(t, adapter.calls[0].Entries, 1)
	entry := adapter.calls[0].Entries[0]
	assert.Equal(t, models.FieldStock, entry.Field)
	assert.Equal(t, 3, entry.OldStock)
	assert.Equal(t, 5, entry.NewStock)
}

func TestRunCycleEmptyDesiredPushesNothing(t *testing.T) {
	adapter := &fakeAdapter{}

	report, err := testRunner(Options{}).RunCycle(context.Background(), nil, []MarketplaceAdapter{adapter})
	require.NoError(t, err)

	assert.Equal(t, models.Totals{}, report.Totals)
	assert.True(t, report.Clean())
	assert.Empty(t, adapter.calls, "pushBatch must not be invoked")
}

func TestRunCycleAdaptersAreIsolated(t *testing.T) {
	broken := &fakeAdapter{
		id:          "ozon",
		baselineErr: &AuthError{Marketplace: "ozon", Err: errors.New("bad key")},
	}
	healthy := &fakeAdapter{id: "yandex-market"}
	desired := []models.InventoryItem{{SKU: "A", Stock: 2, Price: 15}}

	report, err := testRunner(Options{}).RunCycle(context.Background(), desired, []MarketplaceAdapter{broken, healthy})
	require.NoError(t, err, "adapter failures never fail the cycle")

	require.Contains(t, report.PerMarketplace, "ozon")
	require.Contains(t, report.PerMarketplace, "yandex-market")
	assert.Error(t, report.PerMarketplace["ozon"].Err)
	assert.Empty(t, report.PerMarketplace["ozon"].Records)
	assert.NoError(t, report.PerMarketplace["yandex-market"].Err)
	assert.Len(t, report.PerMarketplace["yandex-market"].Records, 1)
	assert.False(t, report.Clean())
}

func TestRunCycleBaselineFetchRetriesTransient(t *testing.T) {
	calls := 0
	adapter := &countingBaselineAdapter{
		fakeAdapter: fakeAdapter{id: "ozon"},
		fetch: func() (map[string]models.RemoteItem, error) {
			calls++
			if calls == 1 {
				return nil, &TransientError{Err: errors.New("timeout")}
			}
			return map[string]models.RemoteItem{}, nil
		},
	}
	desired := []models.InventoryItem{{SKU: "A", Stock: 2, Price: 15}}

	report, err := testRunner(Options{}).RunCycle(context.Background(), desired, []MarketplaceAdapter{adapter})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.NoError(t, report.PerMarketplace["ozon"].Err)
	assert.Equal(t, 1, report.Totals.Succeeded)
}

type countingBaselineAdapter struct {
	fakeAdapter
	fetch func() (map[string]models.RemoteItem, error)
}

func (a *countingBaselineAdapter) FetchBaseline(ctx context.Context) (map[string]models.RemoteItem, error) {
	return a.fetch()
}

func TestRunCycleTotalsMatchChangeSetSize(t *testing.T) {
	adapter := &fakeAdapter{
		id:       "ozon",
		maxBatch: 2,
		pushHook: func(call int, batch models.Batch) error {
			if batch.Seq == 2 {
				return &AuthError{Marketplace: "ozon", Err: errors.New("revoked")}
			}
			return nil
		},
	}
	desired := []models.InventoryItem{
		{SKU: "A", Stock: 1, Price: 10},
		{SKU: "B", Stock: 2, Price: 20},
		{SKU: "C", Stock: 3, Price: 30},
		{SKU: "D", Stock: 4, Price: 40},
		{SKU: "E", Stock: 5, Price: 50},
	}

	report, err := testRunner(Options{}).RunCycle(context.Background(), desired, []MarketplaceAdapter{adapter})
	require.NoError(t, err)

	total := report.Totals.Succeeded + report.Totals.Failed + report.Totals.Skipped
	assert.Equal(t, len(desired), total)
	assert.Equal(t, models.Totals{Succeeded: 2, Failed: 0, Skipped: 3}, report.Totals)
}

func TestRunCycleFatalOnBadConfig(t *testing.T) {
	adapter := &fakeAdapter{}
	var cfgErr *ConfigError

	_, err := testRunner(Options{MaxBatchSize: -1}).RunCycle(context.Background(), nil, []MarketplaceAdapter{adapter})
	assert.ErrorAs(t, err, &cfgErr)

	_, err = testRunner(Options{Differ: Differ{PricePrecision: -2}}).RunCycle(context.Background(), nil, []MarketplaceAdapter{adapter})
	assert.ErrorAs(t, err, &cfgErr)

	_, err = testRunner(Options{Retry: RetryPolicy{Attempts: -1}}).RunCycle(context.Background(), nil, []MarketplaceAdapter{adapter})
	assert.ErrorAs(t, err, &cfgErr)

	assert.Empty(t, adapter.calls, "config errors abort before any network call")
}

func TestRunCycleBatchSizeOverrideCapsAdapterLimit(t *testing.T) {
	adapter := &fakeAdapter{maxBatch: 100}
	desired := []models.InventoryItem{
		{SKU: "A", Stock: 1, Price: 10},
		{SKU: "B", Stock: 2, Price: 20},
		{SKU: "C", Stock: 3, Price: 30},
	}

	_, err := testRunner(Options{MaxBatchSize: 2}).RunCycle(context.Background(), desired, []MarketplaceAdapter{adapter})
	require.NoError(t, err)

	require.Len(t, adapter.calls, 2)
	assert.Len(t, adapter.calls[0].Entries, 2)
	assert.Len(t, adapter.calls[1].Entries, 1)
}
