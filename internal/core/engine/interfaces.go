package engine

import (
	"context"
	"time"

	"github.com/TimurBerdyyev/seller-apis/internal/core/models"
)

// MarketplaceAdapter translates generic update requests into one
// marketplace's wire format and declares that marketplace's limits.
type MarketplaceAdapter interface {
	// ID identifies the marketplace in reports and the baseline store.
	ID() string

	// FetchBaseline fetches or reconstructs the last known remote state.
	// Read-only; may fail with *TransientError or *AuthError.
	FetchBaseline(ctx context.Context) (map[string]models.RemoteItem, error)

	// PushBatch sends one batch. On success it returns exactly one record
	// per batch entry, in entry order; per-item marketplace rejections come
	// back as Failed records, not an error. A non-nil error means the whole
	// call failed and nothing per-item is known; the dispatcher accounts
	// for every entry itself in that case.
	PushBatch(ctx context.Context, batch models.Batch) ([]models.OutcomeRecord, error)

	// MaxBatchSize is the largest number of entries one PushBatch accepts.
	MaxBatchSize() int

	// RequestIntervalFloor is the minimum spacing between PushBatch calls.
	RequestIntervalFloor() time.Duration
}

// InventorySource is the authoritative local source collaborator.
type InventorySource interface {
	ListItems(ctx context.Context) ([]models.InventoryItem, error)
}

// BaselineStore is the durable "last pushed" state collaborator. The engine
// never touches it directly; adapters read it in FetchBaseline and update it
// after successful pushes.
type BaselineStore interface {
	Load(ctx context.Context, marketplace string) (map[string]models.RemoteItem, error)
	Save(ctx context.Context, marketplace string, items []models.RemoteItem) error
	Delete(ctx context.Context, marketplace string, skus []string) error
}
