package engine

import (
	"fmt"
	"math"
	"sort"

	"github.com/TimurBerdyyev/seller-apis/internal/core/models"
)

// MissingSKUPolicy controls what happens to desired items the baseline has
// never seen.
type MissingSKUPolicy string

const (
	// MissingAsChange diffs unknown skus against a zero baseline, so their
	// non-zero fields are pushed.
	MissingAsChange MissingSKUPolicy = "treat-missing-as-change"
	// MissingSkip leaves unknown skus alone.
	MissingSkip MissingSKUPolicy = "skip-missing"
)

const defaultPricePrecision = 2

// Differ computes the minimal ChangeSet between a desired snapshot and a
// baseline. Pure: no side effects, deterministic output.
type Differ struct {
	// PricePrecision — число знаков после запятой при сравнении цен,
	// чтобы плавающая точка не давала ложных изменений.
	PricePrecision  int
	MissingSKUs     MissingSKUPolicy
	IncludeRemovals bool
}

func (d Differ) validate() error {
	if d.PricePrecision < 0 {
		return &ConfigError{Reason: fmt.Sprintf("price precision must be >= 0, got %d", d.PricePrecision)}
	}
	switch d.MissingSKUs {
	case "", MissingAsChange, MissingSkip:
	default:
		return &ConfigError{Reason: fmt.Sprintf("unknown missing-sku policy %q", d.MissingSKUs)}
	}
	return nil
}

// ComputeChanges diffs desired against baseline. Output follows the desired
// ordering; duplicate skus keep their first occurrence only, so no batch can
// ever carry the same sku twice. Removal markers, when enabled, are appended
// after value changes sorted by sku.
func (d Differ) ComputeChanges(desired []models.InventoryItem, baseline map[string]models.RemoteItem) (models.ChangeSet, error) {
	if err := d.validate(); err != nil {
		return nil, err
	}

	precision := d.PricePrecision
	if precision == 0 {
		precision = defaultPricePrecision
	}

	seen := make(map[string]bool, len(desired))
	var changes models.ChangeSet
	for _, item := range desired {
		if item.SKU == "" || seen[item.SKU] {
			continue
		}
		seen[item.SKU] = true

		base, known := baseline[item.SKU]
		if !known {
			if d.MissingSKUs == MissingSkip {
				continue
			}
			base = models.RemoteItem{SKU: item.SKU}
		}

		stockChanged := item.Stock != base.Stock
		priceChanged := !priceEqual(item.Price, base.Price, precision)
		if !stockChanged && !priceChanged {
			continue
		}

		field := models.FieldBoth
		if !priceChanged {
			field = models.FieldStock
		} else if !stockChanged {
			field = models.FieldPrice
		}
		changes = append(changes, models.Change{
			SKU:      item.SKU,
			Field:    field,
			OldStock: base.Stock,
			NewStock: item.Stock,
			OldPrice: base.Price,
			NewPrice: item.Price,
		})
	}

	if d.IncludeRemovals {
		var removed []string
		for sku := range baseline {
			if !seen[sku] {
				removed = append(removed, sku)
			}
		}
		sort.Strings(removed)
		for _, sku := range removed {
			base := baseline[sku]
			changes = append(changes, models.Change{
				SKU:      sku,
				Field:    models.FieldRemoved,
				OldStock: base.Stock,
				OldPrice: base.Price,
			})
		}
	}

	return changes, nil
}

func priceEqual(a, b float64, precision int) bool {
	factor := math.Pow(10, float64(precision))
	return math.Round(a*factor) == math.Round(b*factor)
}
