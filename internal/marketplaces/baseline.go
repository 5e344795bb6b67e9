package marketplaces

import (
	"context"

	"github.com/TimurBerdyyev/seller-apis/internal/core/engine"
	"github.com/TimurBerdyyev/seller-apis/internal/core/models"
	"github.com/TimurBerdyyev/seller-apis/pkg/logger"
)

// PersistBaseline records the accepted entries of a pushed batch so the next
// cycle diffs against them. Store failures are logged, not propagated: the
// marketplace already holds the values and the next run recovers by
// re-pushing whatever the store missed.
func PersistBaseline(ctx context.Context, store engine.BaselineStore, marketplace string, batch models.Batch, itemErrs map[string]string, log logger.Logger) {
	if store == nil {
		return
	}
	var pushed []models.RemoteItem
	var removed []string
	for _, entry := range batch.Entries {
		if _, failed := itemErrs[entry.SKU]; failed {
			continue
		}
		if entry.Field == models.FieldRemoved {
			removed = append(removed, entry.SKU)
			continue
		}
		pushed = append(pushed, models.RemoteItem{SKU: entry.SKU, Stock: entry.NewStock, Price: entry.NewPrice})
	}
	if len(pushed) > 0 {
		if err := store.Save(ctx, marketplace, pushed); err != nil {
			log.Log("failed to save baseline for batch %d: %v", batch.Seq, err)
		}
	}
	if len(removed) > 0 {
		if err := store.Delete(ctx, marketplace, removed); err != nil {
			log.Log("failed to delete baseline rows for batch %d: %v", batch.Seq, err)
		}
	}
}
