package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TimurBerdyyev/seller-apis/internal/core/models"
)

func TestComputeChangesNoopWhenBaselineMatches(t *testing.T) {
	desired := []models.InventoryItem{
		{SKU: "A", Stock: 5, Price: 10.00},
		{SKU: "B", Stock: 0, Price: 99.90},
	}
	baseline := map[string]models.RemoteItem{
		"A": {SKU: "A", Stock: 5, Price: 10.00},
		"B": {SKU: "B", Stock: 0, Price: 99.90},
	}

	changes, err := Differ{}.ComputeChanges(desired, baseline)
	require.NoError(t, err)
	assert.Empty(t, changes)
}

func TestComputeChangesSingleFieldDiffs(t *testing.T) {
	baseline := map[string]models.RemoteItem{
		"A": {SKU: "A", Stock: 3, Price: 10.00},
		"B": {SKU: "B", Stock: 7, Price: 20.00},
		"C": {SKU: "C", Stock: 1, Price: 30.00},
	}
	desired := []models.InventoryItem{
		{SKU: "A", Stock: 5, Price: 10.00},  // stock only
		{SKU: "B", Stock: 7, Price: 25.50},  // price only
		{SKU: "C", Stock: 2, Price: 31.00},  // both
	}

	changes, err := Differ{}.ComputeChanges(desired, baseline)
	require.NoError(t, err)
	require.Len(t, changes, 3)

	assert.Equal(t, models.Change{SKU: "A", Field: models.FieldStock, OldStock: 3, NewStock: 5, OldPrice: 10.00, NewPrice: 10.00}, changes[0])
	assert.Equal(t, models.FieldPrice, changes[1].Field)
	assert.Equal(t, 25.50, changes[1].NewPrice)
	assert.Equal(t, models.FieldBoth, changes[2].Field)
}

func TestComputeChangesPricePrecision(t *testing.T) {
	baseline := map[string]models.RemoteItem{
		"A": {SKU: "A", Stock: 1, Price: 10.00},
	}
	desired := []models.InventoryItem{
		// float noise below the default 2-digit precision is not a change
		{SKU: "A", Stock: 1, Price: 10.0000001},
	}

	changes, err := Differ{}.ComputeChanges(desired, baseline)
	require.NoError(t, err)
	assert.Empty(t, changes)

	changes, err = Differ{PricePrecision: 4}.ComputeChanges(
		[]models.InventoryItem{{SKU: "A", Stock: 1, Price: 10.0001}}, baseline)
	require.NoError(t, err)
	assert.Len(t, changes, 1)
}

func TestComputeChangesMissingSKUPolicies(t *testing.T) {
	desired := []models.InventoryItem{{SKU: "NEW", Stock: 4, Price: 100}}
	baseline := map[string]models.RemoteItem{}

	changes, err := Differ{MissingSKUs: MissingAsChange}.ComputeChanges(desired, baseline)
	require.NoError(t, err)
	require.Len(t, changes, 1)
	assert.Equal(t, models.FieldBoth, changes[0].Field)
	assert.Equal(t, 0, changes[0].OldStock)

	changes, err = Differ{MissingSKUs: MissingSkip}.ComputeChanges(desired, baseline)
	require.NoError(t, err)
	assert.Empty(t, changes)

	// only the non-zero field of a new sku is a change
	changes, err = Differ{}.ComputeChanges([]models.InventoryItem{{SKU: "NEW", Stock: 0, Price: 100}}, baseline)
	require.NoError(t, err)
	require.Len(t, changes, 1)
	assert.Equal(t, models.FieldPrice, changes[0].Field)
}

func TestComputeChangesRemovals(t *testing.T) {
	desired := []models.InventoryItem{{SKU: "A", Stock: 1, Price: 10}}
	baseline := map[string]models.RemoteItem{
		"A": {SKU: "A", Stock: 1, Price: 10},
		"Z": {SKU: "Z", Stock: 4, Price: 40},
		"B": {SKU: "B", Stock: 2, Price: 20},
	}

	changes, err := Differ{}.ComputeChanges(desired, baseline)
	require.NoError(t, err)
	assert.Empty(t, changes, "removals are off by default")

	changes, err = Differ{IncludeRemovals: true}.ComputeChanges(desired, baseline)
	require.NoError(t, err)
	require.Len(t, changes, 2)
	// removal markers come last, sorted by sku
	assert.Equal(t, "B", changes[0].SKU)
	assert.Equal(t, "Z", changes[1].SKU)
	assert.Equal(t, models.FieldRemoved, changes[0].Field)
}

func TestComputeChangesDuplicateSKUKeepsFirst(t *testing.T) {
	desired := []models.InventoryItem{
		{SKU: "A", Stock: 5, Price: 10},
		{SKU: "A", Stock: 9, Price: 90},
	}

	changes, err := Differ{}.ComputeChanges(desired, map[string]models.RemoteItem{})
	require.NoError(t, err)
	require.Len(t, changes, 1)
	assert.Equal(t, 5, changes[0].NewStock)
}

func TestComputeChangesDeterministic(t *testing.T) {
	desired := []models.InventoryItem{
		{SKU: "B", Stock: 2, Price: 20},
		{SKU: "A", Stock: 1, Price: 10},
	}
	baseline := map[string]models.RemoteItem{
		"X": {SKU: "X", Stock: 1, Price: 1},
		"Y": {SKU: "Y", Stock: 2, Price: 2},
	}
	d := Differ{IncludeRemovals: true}

	first, err := d.ComputeChanges(desired, baseline)
	require.NoError(t, err)
	second, err := d.ComputeChanges(desired, baseline)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	// value changes follow desired order, not sku order
	assert.Equal(t, "B", first[0].SKU)
	assert.Equal(t, "A", first[1].SKU)
}

func TestComputeChangesRejectsBadConfig(t *testing.T) {
	_, err := Differ{PricePrecision: -1}.ComputeChanges(nil, nil)
	var cfgErr *ConfigError
	assert.ErrorAs(t, err, &cfgErr)

	_, err = Differ{MissingSKUs: "whatever"}.ComputeChanges(nil, nil)
	assert.ErrorAs(t, err, &cfgErr)
}
