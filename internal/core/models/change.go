package models

// ChangeField marks which item fields a single change touches.
type ChangeField string

const (
	FieldStock   ChangeField = "stock"
	FieldPrice   ChangeField = "price"
	FieldBoth    ChangeField = "both"
	FieldRemoved ChangeField = "removed"
)

// Change is one field-level difference between the desired snapshot and the
// marketplace baseline. Old/New values are kept for both fields so a "both"
// change stays a single entry per sku.
type Change struct {
	SKU      string      `json:"sku"`
	Field    ChangeField `json:"field"`
	OldStock int         `json:"old_stock"`
	NewStock int         `json:"new_stock"`
	OldPrice float64     `json:"old_price"`
	NewPrice float64     `json:"new_price"`
}

// ChangeSet is ordered: entries follow the desired snapshot ordering, with
// removal markers appended last, sorted by sku.
type ChangeSet []Change
