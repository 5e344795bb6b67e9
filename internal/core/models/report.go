package models

import "time"

type Status string

const (
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
	// StatusRetried — успех после как минимум одной повторной отправки пакета.
	// Counts as succeeded in report totals.
	StatusRetried Status = "retried"
	StatusSkipped Status = "skipped"
)

// OutcomeRecord is the per-item result of one attempted push.
type OutcomeRecord struct {
	SKU         string `json:"sku"`
	BatchSeq    int    `json:"batch_seq"`
	Status      Status `json:"status"`
	Attempts    int    `json:"attempts,omitempty"`
	ErrorDetail string `json:"error_detail,omitempty"`
}

// MarketplaceResult holds everything one adapter produced during a cycle.
// Err is set only for adapter-level failures where no items were attempted
// (e.g. the baseline could not be fetched); Records stay empty in that case.
type MarketplaceResult struct {
	Records []OutcomeRecord `json:"records"`
	Err     error           `json:"-"`
}

type Totals struct {
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
	Skipped   int `json:"skipped"`
}

// SyncReport is the sole source of truth for what happened during one cycle.
type SyncReport struct {
	RunID          string                        `json:"run_id"`
	StartedAt      time.Time                     `json:"started_at"`
	FinishedAt     time.Time                     `json:"finished_at"`
	PerMarketplace map[string]*MarketplaceResult `json:"per_marketplace"`
	Totals         Totals                        `json:"totals"`
}

// Recount recomputes Totals from the per-marketplace records.
func (r *SyncReport) Recount() {
	totals := Totals{}
	for _, res := range r.PerMarketplace {
		for _, rec := range res.Records {
			switch rec.Status {
			case StatusSucceeded, StatusRetried:
				totals.Succeeded++
			case StatusFailed:
				totals.Failed++
			case StatusSkipped:
				totals.Skipped++
			}
		}
	}
	r.Totals = totals
}

// Clean reports whether the cycle finished with no failed or skipped items
// and no adapter-level errors. The process exit code is derived from this.
func (r *SyncReport) Clean() bool {
	if r.Totals.Failed > 0 || r.Totals.Skipped > 0 {
		return false
	}
	for _, res := range r.PerMarketplace {
		if res.Err != nil {
			return false
		}
	}
	return true
}
