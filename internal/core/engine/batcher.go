package engine

import (
	"fmt"

	"github.com/TimurBerdyyev/seller-apis/internal/core/models"
)

// MakeBatches splits a ChangeSet into consecutive groups of at most
// maxBatchSize entries, preserving order. Marketplaces rate-limit by request
// count, not payload size, so no packing optimization is attempted.
// An empty ChangeSet yields an empty batch sequence.
func MakeBatches(marketplace string, changes models.ChangeSet, maxBatchSize int) ([]models.Batch, error) {
	if maxBatchSize <= 0 {
		return nil, &ConfigError{Reason: fmt.Sprintf("max batch size must be positive, got %d", maxBatchSize)}
	}

	var batches []models.Batch
	for start := 0; start < len(changes); start += maxBatchSize {
		end := start + maxBatchSize
		if end > len(changes) {
			end = len(changes)
		}
		entries := make([]models.Change, end-start)
		copy(entries, changes[start:end])
		batches = append(batches, models.Batch{
			Seq:         len(batches) + 1,
			Marketplace: marketplace,
			Entries:     entries,
		})
	}
	return batches, nil
}
