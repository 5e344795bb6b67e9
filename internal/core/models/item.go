package models

// InventoryItem — снимок товара из локального источника на момент запуска цикла.
// Snapshot is immutable for the duration of a run.
type InventoryItem struct {
	SKU   string  `json:"sku"`
	Stock int     `json:"stock"`
	Price float64 `json:"price"`
}

// RemoteItem is the last state of an item known to exist on a marketplace,
// either loaded from the durable baseline store or reconstructed by a fetch.
type RemoteItem struct {
	SKU   string  `json:"sku"`
	Stock int     `json:"stock"`
	Price float64 `json:"price"`
}
