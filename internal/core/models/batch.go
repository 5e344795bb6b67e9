package models

// Batch is one API call worth of changes for a single marketplace.
// Seq numbers are 1-based and deterministic for a given ChangeSet, so
// re-batching the same changes yields identical batches.
type Batch struct {
	Seq         int      `json:"seq"`
	Marketplace string   `json:"marketplace"`
	Entries     []Change `json:"entries"`
}
